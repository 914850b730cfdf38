package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuote_EffectiveCreatorRole_Default(t *testing.T) {
	q := Quote{}
	assert.Equal(t, RoleDealerStaff, q.EffectiveCreatorRole())
}

func TestQuote_EffectiveCreatorRole_Explicit(t *testing.T) {
	q := Quote{CreatorRole: RoleDealerManager}
	assert.Equal(t, RoleDealerManager, q.EffectiveCreatorRole())
}

func TestQuote_PendingApprovalStatus(t *testing.T) {
	staff := Quote{CreatorRole: RoleDealerStaff}
	assert.Equal(t, QuoteApprovalPendingDealerManager, staff.PendingApprovalStatus())

	manager := Quote{CreatorRole: RoleDealerManager}
	assert.Equal(t, QuoteApprovalPendingEVM, manager.PendingApprovalStatus())

	legacy := Quote{}
	assert.Equal(t, QuoteApprovalPendingDealerManager, legacy.PendingApprovalStatus())
}

func TestQuote_IsPendingApproval(t *testing.T) {
	assert.True(t, Quote{ApprovalStatus: QuoteApprovalPendingDealerManager}.IsPendingApproval())
	assert.True(t, Quote{ApprovalStatus: QuoteApprovalPendingEVM}.IsPendingApproval())
	assert.False(t, Quote{ApprovalStatus: QuoteApprovalDraft}.IsPendingApproval())
	assert.False(t, Quote{ApprovalStatus: QuoteApprovalApproved}.IsPendingApproval())
	assert.False(t, Quote{ApprovalStatus: QuoteApprovalInsufficientInventory}.IsPendingApproval())
}

func TestQuote_IsApprovalTerminal(t *testing.T) {
	assert.True(t, Quote{ApprovalStatus: QuoteApprovalApproved}.IsApprovalTerminal())
	assert.True(t, Quote{ApprovalStatus: QuoteApprovalRejected}.IsApprovalTerminal())
	assert.False(t, Quote{ApprovalStatus: QuoteApprovalPendingEVM}.IsApprovalTerminal())
}

func TestQuote_ReadyForOrder(t *testing.T) {
	ready := Quote{Status: QuoteStatusAccepted, ApprovalStatus: QuoteApprovalApproved}
	assert.True(t, ready.ReadyForOrder())

	stillDraft := Quote{Status: QuoteStatusDraft, ApprovalStatus: QuoteApprovalApproved}
	assert.False(t, stillDraft.ReadyForOrder())

	pending := Quote{Status: QuoteStatusDraft, ApprovalStatus: QuoteApprovalPendingEVM}
	assert.False(t, pending.ReadyForOrder())
}

func TestQuote_TotalAmount(t *testing.T) {
	q := Quote{
		Items: []QuoteItem{
			{VehicleID: 1, Quantity: 2, UnitPrice: 15000.0},
			{VehicleID: 2, Quantity: 1, UnitPrice: 22000.0},
		},
	}
	assert.Equal(t, 52000.0, q.TotalAmount())
}
