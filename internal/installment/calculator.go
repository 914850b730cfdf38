package installment

import (
	"time"

	"evdms/internal/domain"
	apperrors "evdms/internal/errors"

	"github.com/shopspring/decimal"
)

// ScheduleEntry is one computed installment before persistence.
type ScheduleEntry struct {
	InstallmentNumber int
	DueDate           time.Time
	Amount            decimal.Decimal
	Status            string
}

// Result carries the full amortization outcome. The sum of all schedule
// amounts equals TotalPayable exactly; the last installment absorbs any
// cent remainder left by the equal-payment rounding.
type Result struct {
	VATAmount      decimal.Decimal
	InterestAmount decimal.Decimal
	TotalPayable   decimal.Decimal
	MonthlyPayment decimal.Decimal
	Schedule       []ScheduleEntry
}

var (
	hundred      = decimal.NewFromInt(100)
	monthsInYear = decimal.NewFromInt(12)
)

// ComputeSchedule turns a principal, a term in months, an annual simple
// interest rate and an optional VAT percentage into a payment schedule.
// Pure: identical inputs always produce identical output. Due dates step
// by calendar month from firstDueDate, not by a fixed day count.
func ComputeSchedule(
	principal decimal.Decimal,
	months int,
	annualRatePercent decimal.Decimal,
	vatPercent decimal.Decimal,
	firstDueDate time.Time,
) (*Result, error) {
	if principal.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.NewInvalidInstallmentInputError("principal", "must be greater than zero")
	}
	if months <= 0 {
		return nil, apperrors.NewInvalidInstallmentInputError("months", "must be a positive integer")
	}
	if annualRatePercent.IsNegative() {
		return nil, apperrors.NewInvalidInstallmentInputError("annualRatePercent", "must not be negative")
	}
	if vatPercent.IsNegative() {
		return nil, apperrors.NewInvalidInstallmentInputError("vatPercent", "must not be negative")
	}
	if firstDueDate.IsZero() {
		return nil, apperrors.NewInvalidInstallmentInputError("firstDueDate", "must be a valid date")
	}

	monthsDec := decimal.NewFromInt(int64(months))

	// Simple interest over the whole term.
	interest := principal.
		Mul(annualRatePercent).Div(hundred).
		Mul(monthsDec).Div(monthsInYear).
		Round(2)

	vat := principal.Mul(vatPercent).Div(hundred).Round(2)

	totalPayable := principal.Add(vat).Add(interest)
	monthlyPayment := totalPayable.Div(monthsDec).Round(2)

	schedule := make([]ScheduleEntry, months)
	scheduled := decimal.Zero
	for i := 0; i < months; i++ {
		amount := monthlyPayment
		if i == months-1 {
			amount = totalPayable.Sub(scheduled)
		}
		scheduled = scheduled.Add(amount)

		schedule[i] = ScheduleEntry{
			InstallmentNumber: i + 1,
			DueDate:           firstDueDate.AddDate(0, i, 0),
			Amount:            amount,
			Status:            domain.InstallmentStatusPending,
		}
	}

	return &Result{
		VATAmount:      vat,
		InterestAmount: interest,
		TotalPayable:   totalPayable,
		MonthlyPayment: monthlyPayment,
		Schedule:       schedule,
	}, nil
}
