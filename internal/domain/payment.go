package domain

import "time"

type Payment struct {
	ID        uint
	OrderID   uint
	Amount    float64
	Method    string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	PaymentMethodCash     = "CASH"
	PaymentMethodTransfer = "TRANSFER"
	PaymentMethodVNPay    = "VNPAY"
)

const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusFailed    = "FAILED"
)

// RemainingAmount is what is still owed on an order given the sum of its
// completed payments. Never negative.
func RemainingAmount(totalAmount, paidAmount float64) float64 {
	remaining := totalAmount - paidAmount
	if remaining < 0 {
		return 0
	}
	return remaining
}
