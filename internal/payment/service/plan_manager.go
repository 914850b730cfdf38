package service

import (
	"context"
	"fmt"
	"time"

	"evdms/internal/domain"
	"evdms/internal/dto"
	apperrors "evdms/internal/errors"
	"evdms/internal/installment"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const dueDateLayout = "2006-01-02"

type PlanRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.InstallmentPlan, error)
	FindByPaymentID(ctx context.Context, paymentID uint) (*domain.InstallmentPlan, error)
	Create(ctx context.Context, plan *domain.InstallmentPlan) (uint, error)
	PayInstallmentCAS(ctx context.Context, planID uint, installmentNumber int, paidAt time.Time) error
	CountPending(ctx context.Context, planID uint) (int, error)
}

// PlanManager owns the installment plan lifecycle: preview, creation and
// per-installment payment. One plan per payment, immutable once created.
type PlanManager struct {
	planRepo      PlanRepository
	paymentRepo   PaymentRepository
	validate      *validator.Validate
	logger        *zap.Logger
	vatPercent    decimal.Decimal
	allowedMonths []int
}

func NewPlanManager(
	planRepo PlanRepository,
	paymentRepo PaymentRepository,
	logger *zap.Logger,
	vatPercent float64,
	allowedMonths []int,
) *PlanManager {
	return &PlanManager{
		planRepo:      planRepo,
		paymentRepo:   paymentRepo,
		validate:      validator.New(),
		logger:        logger,
		vatPercent:    decimal.NewFromFloat(vatPercent),
		allowedMonths: allowedMonths,
	}
}

// Preview computes a schedule without persisting anything.
func (m *PlanManager) Preview(ctx context.Context, req dto.PreviewPlanRequest) (*dto.PlanPreviewResponse, error) {
	if err := m.validate.Struct(req); err != nil {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "body",
			Message: err.Error(),
		})
	}

	result, err := m.compute(req.Principal, req.Months, req.AnnualRatePercent, req.FirstDueDate)
	if err != nil {
		return nil, err
	}

	return &dto.PlanPreviewResponse{
		VATAmount:      result.VATAmount.InexactFloat64(),
		InterestAmount: result.InterestAmount.InexactFloat64(),
		TotalPayable:   result.TotalPayable.InexactFloat64(),
		MonthlyPayment: result.MonthlyPayment.InexactFloat64(),
		Schedule:       toScheduleResponses(result.Schedule),
	}, nil
}

// CreatePlan attaches a schedule to an existing payment. The payment's
// amount is the principal.
func (m *PlanManager) CreatePlan(ctx context.Context, req dto.CreatePlanRequest) (*domain.InstallmentPlan, error) {
	if err := m.validate.Struct(req); err != nil {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "body",
			Message: err.Error(),
		})
	}

	payment, err := m.paymentRepo.FindByID(ctx, req.PaymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status == domain.PaymentStatusFailed {
		return nil, apperrors.NewInvalidStateTransitionError("payment", payment.ID, "planned", payment.Status, "")
	}

	if existing, err := m.planRepo.FindByPaymentID(ctx, req.PaymentID); err == nil {
		return nil, apperrors.NewConflictError(
			fmt.Sprintf("payment %d already has installment plan %d", req.PaymentID, existing.ID))
	} else if _, ok := apperrors.IsNotFoundError(err); !ok {
		return nil, err
	}

	result, err := m.compute(payment.Amount, req.Months, req.AnnualRatePercent, req.FirstDueDate)
	if err != nil {
		return nil, err
	}

	firstDueDate, _ := time.Parse(dueDateLayout, req.FirstDueDate)

	plan := &domain.InstallmentPlan{
		PaymentID:      payment.ID,
		Principal:      payment.Amount,
		AnnualRate:     req.AnnualRatePercent,
		VATAmount:      result.VATAmount.InexactFloat64(),
		InterestAmount: result.InterestAmount.InexactFloat64(),
		TotalPayable:   result.TotalPayable.InexactFloat64(),
		MonthlyPayment: result.MonthlyPayment.InexactFloat64(),
		Months:         req.Months,
		FirstDueDate:   firstDueDate,
	}
	for _, entry := range result.Schedule {
		plan.Installments = append(plan.Installments, domain.Installment{
			InstallmentNumber: entry.InstallmentNumber,
			DueDate:           entry.DueDate,
			Amount:            entry.Amount.InexactFloat64(),
			Status:            entry.Status,
		})
	}

	id, err := m.planRepo.Create(ctx, plan)
	if err != nil {
		return nil, err
	}

	m.logger.Info("installment plan created",
		zap.Uint("planId", id),
		zap.Uint("paymentId", payment.ID),
		zap.Int("months", req.Months))

	return m.planRepo.FindByID(ctx, id)
}

// GetPlan loads one plan with its installments.
func (m *PlanManager) GetPlan(ctx context.Context, planID uint) (*domain.InstallmentPlan, error) {
	return m.planRepo.FindByID(ctx, planID)
}

// PayInstallment settles one installment. When the last installment of a
// plan is paid, a still-pending payment is completed.
func (m *PlanManager) PayInstallment(ctx context.Context, planID uint, installmentNumber int) (*domain.InstallmentPlan, error) {
	plan, err := m.planRepo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	if installmentNumber < 1 || installmentNumber > plan.Months {
		return nil, apperrors.NewNotFoundError(
			fmt.Sprintf("plan %d has no installment %d", planID, installmentNumber))
	}

	if err := m.planRepo.PayInstallmentCAS(ctx, planID, installmentNumber, time.Now().UTC()); err != nil {
		return nil, err
	}

	pending, err := m.planRepo.CountPending(ctx, planID)
	if err != nil {
		return nil, err
	}
	if pending == 0 {
		payment, err := m.paymentRepo.FindByID(ctx, plan.PaymentID)
		if err != nil {
			return nil, err
		}
		if payment.Status == domain.PaymentStatusPending {
			if err := m.paymentRepo.UpdateStatusCAS(ctx, payment.ID, domain.PaymentStatusPending, domain.PaymentStatusCompleted); err != nil {
				return nil, err
			}
			m.logger.Info("payment completed by final installment",
				zap.Uint("paymentId", payment.ID), zap.Uint("planId", planID))
		}
	}

	return m.planRepo.FindByID(ctx, planID)
}

func (m *PlanManager) compute(principal float64, months int, annualRatePercent float64, firstDueDate string) (*installment.Result, error) {
	if !m.monthsAllowed(months) {
		return nil, apperrors.NewInvalidInstallmentInputError("months",
			fmt.Sprintf("term must be one of %v months", m.allowedMonths))
	}

	dueDate, err := time.Parse(dueDateLayout, firstDueDate)
	if err != nil {
		return nil, apperrors.NewInvalidInstallmentInputError("firstDueDate", "must be a date in YYYY-MM-DD format")
	}

	return installment.ComputeSchedule(
		decimal.NewFromFloat(principal),
		months,
		decimal.NewFromFloat(annualRatePercent),
		m.vatPercent,
		dueDate,
	)
}

func (m *PlanManager) monthsAllowed(months int) bool {
	for _, allowed := range m.allowedMonths {
		if months == allowed {
			return true
		}
	}
	return false
}

func toScheduleResponses(entries []installment.ScheduleEntry) []dto.InstallmentResponse {
	responses := make([]dto.InstallmentResponse, len(entries))
	for i, entry := range entries {
		responses[i] = dto.InstallmentResponse{
			InstallmentNumber: entry.InstallmentNumber,
			DueDate:           entry.DueDate,
			Amount:            entry.Amount.InexactFloat64(),
			Status:            entry.Status,
		}
	}
	return responses
}
