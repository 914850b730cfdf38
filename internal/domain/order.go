package domain

import "time"

type Order struct {
	ID             uint
	QuoteID        uint
	CustomerID     *uint
	Track          WorkflowTrack
	Status         string
	ApprovalStatus string
	ApprovedBy     *uint
	RejectedReason *string
	TotalAmount    float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

const (
	OrderStatusPending   = "PENDING"
	OrderStatusConfirmed = "CONFIRMED"
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCancelled = "CANCELLED"
)

const (
	OrderApprovalPending  = "PENDING_APPROVAL"
	OrderApprovalApproved = "APPROVED"
	OrderApprovalRejected = "REJECTED"
)

// EffectiveTrack resolves the workflow track. Legacy orders predate the
// explicit track column; for those the nullable customer is the signal:
// no customer means the order came from a dealer-manager quote routed to
// the manufacturer.
func (o Order) EffectiveTrack() WorkflowTrack {
	if o.Track != "" {
		return o.Track
	}
	if o.CustomerID == nil {
		return TrackManufacturer
	}
	return TrackDealer
}

// IsTerminal reports whether the order can no longer be approved or
// rejected.
func (o Order) IsTerminal() bool {
	if o.ApprovalStatus == OrderApprovalApproved || o.ApprovalStatus == OrderApprovalRejected {
		return true
	}
	return o.Status == OrderStatusDelivered || o.Status == OrderStatusCancelled
}

// CanBeApprovedBy reports whether an actor with the given role may decide
// this order: dealer managers own dealer-track orders, EVM roles own
// manufacturer-track orders, and terminal orders are owned by nobody.
func (o Order) CanBeApprovedBy(role Role) bool {
	if o.IsTerminal() {
		return false
	}
	if o.ApprovalStatus != OrderApprovalPending {
		return false
	}
	if o.EffectiveTrack() == TrackManufacturer {
		return role.IsManufacturerSide()
	}
	return role == RoleDealerManager
}
