package dto

import "time"

type CreateQuoteRequest struct {
	CustomerID *uint              `json:"customerId,omitempty"`
	Items      []QuoteItemRequest `json:"items"`
}

type QuoteItemRequest struct {
	VehicleID int     `json:"vehicleId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type ApproveQuoteRequest struct {
	Notes string `json:"notes"`
}

type RejectQuoteRequest struct {
	Reason string `json:"reason"`
}

// InventoryCheckResult is the advisory snapshot a stock check returns.
// It never mutates approval state by itself.
type InventoryCheckResult struct {
	Sufficient bool      `json:"sufficient"`
	Location   string    `json:"location"`
	Message    string    `json:"message"`
	CheckedAt  time.Time `json:"checkedAt"`
}

type QuoteResponse struct {
	ID             uint                `json:"id"`
	CustomerID     *uint               `json:"customerId,omitempty"`
	CreatorRole    string              `json:"creatorRole"`
	OwnerID        uint                `json:"ownerId"`
	Status         string              `json:"status"`
	ApprovalStatus string              `json:"approvalStatus"`
	ApprovedBy     *uint               `json:"approvedBy,omitempty"`
	RejectedReason *string             `json:"rejectedReason,omitempty"`
	FinalTotal     float64             `json:"finalTotal"`
	Items          []QuoteItemResponse `json:"items"`
	CreatedAt      time.Time           `json:"createdAt"`
}

type QuoteItemResponse struct {
	VehicleID int     `json:"vehicleId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}
