package dto

import "time"

type CreateOrderRequest struct {
	QuoteID    uint  `json:"quoteId"`
	CustomerID *uint `json:"customerId,omitempty"`
}

type ApproveOrderRequest struct {
	Notes string `json:"notes"`
}

type RejectOrderRequest struct {
	Reason string `json:"reason"`
}

type OrderResponse struct {
	ID              uint      `json:"id"`
	QuoteID         uint      `json:"quoteId"`
	CustomerID      *uint     `json:"customerId,omitempty"`
	Track           string    `json:"track"`
	Status          string    `json:"status"`
	ApprovalStatus  string    `json:"approvalStatus"`
	TotalAmount     float64   `json:"totalAmount"`
	PaidAmount      float64   `json:"paidAmount"`
	RemainingAmount float64   `json:"remainingAmount"`
	CreatedAt       time.Time `json:"createdAt"`
}
