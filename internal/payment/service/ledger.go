package service

import (
	"context"

	"evdms/internal/domain"
	"evdms/internal/dto"
	apperrors "evdms/internal/errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type PaymentRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.Payment, error)
	FindByOrderID(ctx context.Context, orderID uint) ([]domain.Payment, error)
	Create(ctx context.Context, payment *domain.Payment) (uint, error)
	SumCompletedByOrder(ctx context.Context, orderID uint) (float64, error)
	UpdateStatusCAS(ctx context.Context, id uint, expected, next string) error
}

type OrderReader interface {
	FindByID(ctx context.Context, id uint) (*domain.Order, error)
}

// Ledger records payments against orders and answers paid/remaining
// questions. Paid amounts are always computed from completed payment rows
// at read time, never stored on the order.
type Ledger struct {
	paymentRepo PaymentRepository
	orderRepo   OrderReader
	validate    *validator.Validate
	logger      *zap.Logger
}

func NewLedger(paymentRepo PaymentRepository, orderRepo OrderReader, logger *zap.Logger) *Ledger {
	return &Ledger{
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		validate:    validator.New(),
		logger:      logger,
	}
}

// RecordPayment books a payment against a confirmed or delivered order.
// Cash and transfer payments complete immediately; VNPAY payments stay
// pending until their installment plan closes or the gateway confirms.
func (l *Ledger) RecordPayment(ctx context.Context, req dto.RecordPaymentRequest) (*domain.Payment, error) {
	if err := l.validate.Struct(req); err != nil {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "body",
			Message: err.Error(),
		})
	}

	order, err := l.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	if order.Status != domain.OrderStatusConfirmed && order.Status != domain.OrderStatusDelivered {
		return nil, apperrors.NewInvalidStateTransitionError("order", order.ID, "paid", order.Status, order.ApprovalStatus)
	}

	paid, err := l.paymentRepo.SumCompletedByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if req.Amount > domain.RemainingAmount(order.TotalAmount, paid) {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "amount",
			Message: "amount exceeds the remaining balance of the order",
		})
	}

	status := domain.PaymentStatusCompleted
	if req.Method == domain.PaymentMethodVNPay {
		status = domain.PaymentStatusPending
	}

	payment := &domain.Payment{
		OrderID: req.OrderID,
		Amount:  req.Amount,
		Method:  req.Method,
		Status:  status,
	}

	id, err := l.paymentRepo.Create(ctx, payment)
	if err != nil {
		return nil, err
	}

	l.logger.Info("payment recorded",
		zap.Uint("paymentId", id),
		zap.Uint("orderId", req.OrderID),
		zap.Float64("amount", req.Amount),
		zap.String("method", req.Method),
		zap.String("status", status))

	return l.paymentRepo.FindByID(ctx, id)
}

// PaidAmount sums the completed payments of an order.
func (l *Ledger) PaidAmount(ctx context.Context, orderID uint) (float64, error) {
	return l.paymentRepo.SumCompletedByOrder(ctx, orderID)
}

// OrderLedger summarizes what an order owes and has paid.
func (l *Ledger) OrderLedger(ctx context.Context, orderID uint) (*dto.LedgerResponse, error) {
	order, err := l.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	paid, err := l.paymentRepo.SumCompletedByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return &dto.LedgerResponse{
		OrderID:         orderID,
		TotalAmount:     order.TotalAmount,
		PaidAmount:      paid,
		RemainingAmount: domain.RemainingAmount(order.TotalAmount, paid),
	}, nil
}

// Payments lists all payments booked against an order, any status.
func (l *Ledger) Payments(ctx context.Context, orderID uint) ([]domain.Payment, error) {
	if _, err := l.orderRepo.FindByID(ctx, orderID); err != nil {
		return nil, err
	}
	return l.paymentRepo.FindByOrderID(ctx, orderID)
}
