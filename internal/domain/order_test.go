package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrder_EffectiveTrack_Explicit(t *testing.T) {
	customerID := uint(7)
	o := Order{Track: TrackManufacturer, CustomerID: &customerID}
	assert.Equal(t, TrackManufacturer, o.EffectiveTrack())
}

func TestOrder_EffectiveTrack_LegacyFallback(t *testing.T) {
	noCustomer := Order{}
	assert.Equal(t, TrackManufacturer, noCustomer.EffectiveTrack())

	customerID := uint(7)
	withCustomer := Order{CustomerID: &customerID}
	assert.Equal(t, TrackDealer, withCustomer.EffectiveTrack())
}

func TestOrder_CanBeApprovedBy_DealerTrack(t *testing.T) {
	customerID := uint(7)
	o := Order{
		Track:          TrackDealer,
		CustomerID:     &customerID,
		Status:         OrderStatusPending,
		ApprovalStatus: OrderApprovalPending,
	}

	assert.True(t, o.CanBeApprovedBy(RoleDealerManager))
	assert.False(t, o.CanBeApprovedBy(RoleEVMManager))
	assert.False(t, o.CanBeApprovedBy(RoleAdmin))
	assert.False(t, o.CanBeApprovedBy(RoleDealerStaff))
}

func TestOrder_CanBeApprovedBy_ManufacturerTrack(t *testing.T) {
	o := Order{
		Track:          TrackManufacturer,
		Status:         OrderStatusPending,
		ApprovalStatus: OrderApprovalPending,
	}

	assert.True(t, o.CanBeApprovedBy(RoleEVMManager))
	assert.True(t, o.CanBeApprovedBy(RoleAdmin))
	assert.False(t, o.CanBeApprovedBy(RoleDealerManager))
}

func TestOrder_CanBeApprovedBy_TerminalStates(t *testing.T) {
	terminal := []Order{
		{Track: TrackDealer, Status: OrderStatusPending, ApprovalStatus: OrderApprovalApproved},
		{Track: TrackDealer, Status: OrderStatusPending, ApprovalStatus: OrderApprovalRejected},
		{Track: TrackDealer, Status: OrderStatusDelivered, ApprovalStatus: OrderApprovalApproved},
		{Track: TrackManufacturer, Status: OrderStatusCancelled, ApprovalStatus: OrderApprovalPending},
	}

	for _, o := range terminal {
		assert.False(t, o.CanBeApprovedBy(RoleDealerManager))
		assert.False(t, o.CanBeApprovedBy(RoleEVMManager))
		assert.False(t, o.CanBeApprovedBy(RoleAdmin))
	}
}

func TestRemainingAmount(t *testing.T) {
	assert.Equal(t, 500.0, RemainingAmount(1500.0, 1000.0))
	assert.Equal(t, 0.0, RemainingAmount(1000.0, 1000.0))
	assert.Equal(t, 0.0, RemainingAmount(1000.0, 1200.0))
}

func TestRole_CheckLocation(t *testing.T) {
	assert.Equal(t, LocationDealer, RoleDealerManager.CheckLocation())
	assert.Equal(t, LocationDealer, RoleDealerStaff.CheckLocation())
	assert.Equal(t, LocationFactory, RoleEVMManager.CheckLocation())
	assert.Equal(t, LocationFactory, RoleAdmin.CheckLocation())
}
