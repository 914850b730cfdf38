package domain

import "time"

// InstallmentPlan is the persisted amortization schedule attached to a
// payment. The plan is immutable once generated; only its installments
// move from PENDING to PAID.
type InstallmentPlan struct {
	ID             uint
	PaymentID      uint
	Principal      float64
	AnnualRate     float64
	VATAmount      float64
	InterestAmount float64
	TotalPayable   float64
	MonthlyPayment float64
	Months         int
	FirstDueDate   time.Time
	Installments   []Installment
	CreatedAt      time.Time
}

type Installment struct {
	ID                uint
	PlanID            uint
	InstallmentNumber int
	DueDate           time.Time
	Amount            float64
	Status            string
	PaidAt            *time.Time
}

const (
	InstallmentStatusPending = "PENDING"
	InstallmentStatusPaid    = "PAID"
)
