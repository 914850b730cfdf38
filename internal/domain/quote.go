package domain

import "time"

type Quote struct {
	ID             uint
	CustomerID     *uint
	CreatorRole    Role
	OwnerID        uint
	Status         string
	ApprovalStatus string
	ApprovedBy     *uint
	ApprovalNotes  *string
	RejectedReason *string
	FinalTotal     float64

	// Last inventory check snapshot. Advisory only; approval re-validates
	// sufficiency inside its own transaction.
	InvChecked    bool
	InvSufficient bool
	InvMessage    *string
	InvCheckedAt  *time.Time

	Items     []QuoteItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

type QuoteItem struct {
	ID        uint
	QuoteID   uint
	VehicleID int
	Quantity  int
	UnitPrice float64
}

const (
	QuoteStatusDraft    = "DRAFT"
	QuoteStatusAccepted = "ACCEPTED"
	QuoteStatusExpired  = "EXPIRED"
)

const (
	QuoteApprovalDraft                 = "DRAFT"
	QuoteApprovalPendingDealerManager  = "PENDING_DEALER_MANAGER_APPROVAL"
	QuoteApprovalPendingEVM            = "PENDING_EVM_APPROVAL"
	QuoteApprovalApproved              = "APPROVED"
	QuoteApprovalRejected              = "REJECTED"
	QuoteApprovalInsufficientInventory = "INSUFFICIENT_INVENTORY"
)

// EffectiveCreatorRole normalizes the creator role. Legacy quotes exist
// without one; they are treated as dealer-staff created.
func (q Quote) EffectiveCreatorRole() Role {
	if q.CreatorRole == "" {
		return RoleDealerStaff
	}
	return q.CreatorRole
}

// PendingApprovalStatus returns the pending state this quote belongs in,
// derived from its creator role.
func (q Quote) PendingApprovalStatus() string {
	if q.EffectiveCreatorRole() == RoleDealerManager {
		return QuoteApprovalPendingEVM
	}
	return QuoteApprovalPendingDealerManager
}

// IsPendingApproval reports whether the quote sits in one of the two
// pending states.
func (q Quote) IsPendingApproval() bool {
	return q.ApprovalStatus == QuoteApprovalPendingDealerManager ||
		q.ApprovalStatus == QuoteApprovalPendingEVM
}

// IsApprovalTerminal reports whether no further approval transition is
// permitted.
func (q Quote) IsApprovalTerminal() bool {
	return q.ApprovalStatus == QuoteApprovalApproved || q.ApprovalStatus == QuoteApprovalRejected
}

// ReadyForOrder reports whether the quote can be consumed into an order.
func (q Quote) ReadyForOrder() bool {
	return q.ApprovalStatus == QuoteApprovalApproved && q.Status == QuoteStatusAccepted
}

// TotalAmount sums the line items.
func (q Quote) TotalAmount() float64 {
	total := 0.0
	for _, item := range q.Items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total
}
