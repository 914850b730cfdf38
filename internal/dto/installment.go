package dto

import "time"

// PreviewPlanRequest feeds the calculator without persisting anything.
// Months is restricted to the configured allowed terms by the plan
// manager, not by the calculator.
type PreviewPlanRequest struct {
	Principal         float64 `json:"principal" validate:"required,gt=0"`
	Months            int     `json:"months" validate:"required,gt=0"`
	AnnualRatePercent float64 `json:"annualRatePercent" validate:"gte=0"`
	FirstDueDate      string  `json:"firstDueDate" validate:"required"`
}

type CreatePlanRequest struct {
	PaymentID         uint    `json:"paymentId" validate:"required"`
	Months            int     `json:"months" validate:"required,gt=0"`
	AnnualRatePercent float64 `json:"annualRatePercent" validate:"gte=0"`
	FirstDueDate      string  `json:"firstDueDate" validate:"required"`
}

type RecordPaymentRequest struct {
	OrderID uint    `json:"orderId" validate:"required"`
	Amount  float64 `json:"amount" validate:"required,gt=0"`
	Method  string  `json:"method" validate:"required,oneof=CASH TRANSFER VNPAY"`
}

type PlanPreviewResponse struct {
	VATAmount      float64               `json:"vatAmount"`
	InterestAmount float64               `json:"interestAmount"`
	TotalPayable   float64               `json:"totalPayable"`
	MonthlyPayment float64               `json:"monthlyPayment"`
	Schedule       []InstallmentResponse `json:"schedule"`
}

type PlanResponse struct {
	ID             uint                  `json:"id"`
	PaymentID      uint                  `json:"paymentId"`
	Principal      float64               `json:"principal"`
	VATAmount      float64               `json:"vatAmount"`
	InterestAmount float64               `json:"interestAmount"`
	TotalPayable   float64               `json:"totalPayable"`
	MonthlyPayment float64               `json:"monthlyPayment"`
	Months         int                   `json:"months"`
	Installments   []InstallmentResponse `json:"installments"`
}

type InstallmentResponse struct {
	InstallmentNumber int        `json:"installmentNumber"`
	DueDate           time.Time  `json:"dueDate"`
	Amount            float64    `json:"amount"`
	Status            string     `json:"status"`
	PaidAt            *time.Time `json:"paidAt,omitempty"`
}

type PaymentResponse struct {
	ID      uint    `json:"id"`
	OrderID uint    `json:"orderId"`
	Amount  float64 `json:"amount"`
	Method  string  `json:"method"`
	Status  string  `json:"status"`
}

type LedgerResponse struct {
	OrderID         uint    `json:"orderId"`
	TotalAmount     float64 `json:"totalAmount"`
	PaidAmount      float64 `json:"paidAmount"`
	RemainingAmount float64 `json:"remainingAmount"`
}
