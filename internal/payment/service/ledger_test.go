package service

import (
	"context"
	"testing"

	"evdms/internal/domain"
	"evdms/internal/dto"
	apperrors "evdms/internal/errors"

	"go.uber.org/zap"
)

type mockPaymentRepo struct {
	findByIDFn        func(ctx context.Context, id uint) (*domain.Payment, error)
	findByOrderIDFn   func(ctx context.Context, orderID uint) ([]domain.Payment, error)
	createFn          func(ctx context.Context, payment *domain.Payment) (uint, error)
	sumCompletedFn    func(ctx context.Context, orderID uint) (float64, error)
	updateStatusCASFn func(ctx context.Context, id uint, expected, next string) error
}

func (m *mockPaymentRepo) FindByID(ctx context.Context, id uint) (*domain.Payment, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockPaymentRepo) FindByOrderID(ctx context.Context, orderID uint) ([]domain.Payment, error) {
	return m.findByOrderIDFn(ctx, orderID)
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *domain.Payment) (uint, error) {
	return m.createFn(ctx, payment)
}

func (m *mockPaymentRepo) SumCompletedByOrder(ctx context.Context, orderID uint) (float64, error) {
	return m.sumCompletedFn(ctx, orderID)
}

func (m *mockPaymentRepo) UpdateStatusCAS(ctx context.Context, id uint, expected, next string) error {
	return m.updateStatusCASFn(ctx, id, expected, next)
}

type mockOrderReader struct {
	findByIDFn func(ctx context.Context, id uint) (*domain.Order, error)
}

func (m *mockOrderReader) FindByID(ctx context.Context, id uint) (*domain.Order, error) {
	return m.findByIDFn(ctx, id)
}

func confirmedOrder(id uint, total float64) *domain.Order {
	return &domain.Order{
		ID:             id,
		Status:         domain.OrderStatusConfirmed,
		ApprovalStatus: domain.OrderApprovalApproved,
		TotalAmount:    total,
	}
}

func TestRecordPayment_CashCompletesImmediately(t *testing.T) {
	var created *domain.Payment
	paymentRepo := &mockPaymentRepo{
		sumCompletedFn: func(ctx context.Context, orderID uint) (float64, error) {
			return 0, nil
		},
		createFn: func(ctx context.Context, payment *domain.Payment) (uint, error) {
			created = payment
			return 21, nil
		},
		findByIDFn: func(ctx context.Context, id uint) (*domain.Payment, error) {
			created.ID = id
			return created, nil
		},
	}
	orderRepo := &mockOrderReader{
		findByIDFn: func(ctx context.Context, id uint) (*domain.Order, error) {
			return confirmedOrder(15, 30000), nil
		},
	}

	ledger := NewLedger(paymentRepo, orderRepo, zap.NewNop())

	payment, err := ledger.RecordPayment(context.Background(), dto.RecordPaymentRequest{
		OrderID: 15, Amount: 10000, Method: domain.PaymentMethodCash,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if payment.Status != domain.PaymentStatusCompleted {
		t.Errorf("expected cash payment completed, got %s", payment.Status)
	}
}

func TestRecordPayment_VNPayStaysPending(t *testing.T) {
	var created *domain.Payment
	paymentRepo := &mockPaymentRepo{
		sumCompletedFn: func(ctx context.Context, orderID uint) (float64, error) {
			return 0, nil
		},
		createFn: func(ctx context.Context, payment *domain.Payment) (uint, error) {
			created = payment
			return 22, nil
		},
		findByIDFn: func(ctx context.Context, id uint) (*domain.Payment, error) {
			return created, nil
		},
	}
	orderRepo := &mockOrderReader{
		findByIDFn: func(ctx context.Context, id uint) (*domain.Order, error) {
			return confirmedOrder(15, 30000), nil
		},
	}

	ledger := NewLedger(paymentRepo, orderRepo, zap.NewNop())

	payment, err := ledger.RecordPayment(context.Background(), dto.RecordPaymentRequest{
		OrderID: 15, Amount: 30000, Method: domain.PaymentMethodVNPay,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if payment.Status != domain.PaymentStatusPending {
		t.Errorf("expected VNPAY payment pending, got %s", payment.Status)
	}
}

func TestRecordPayment_OverpayRejected(t *testing.T) {
	paymentRepo := &mockPaymentRepo{
		sumCompletedFn: func(ctx context.Context, orderID uint) (float64, error) {
			return 25000, nil
		},
	}
	orderRepo := &mockOrderReader{
		findByIDFn: func(ctx context.Context, id uint) (*domain.Order, error) {
			return confirmedOrder(15, 30000), nil
		},
	}

	ledger := NewLedger(paymentRepo, orderRepo, zap.NewNop())

	_, err := ledger.RecordPayment(context.Background(), dto.RecordPaymentRequest{
		OrderID: 15, Amount: 10000, Method: domain.PaymentMethodCash,
	})
	if _, ok := apperrors.IsValidationError(err); !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestRecordPayment_PendingOrderCannotBePaid(t *testing.T) {
	orderRepo := &mockOrderReader{
		findByIDFn: func(ctx context.Context, id uint) (*domain.Order, error) {
			return &domain.Order{
				ID:             15,
				Status:         domain.OrderStatusPending,
				ApprovalStatus: domain.OrderApprovalPending,
				TotalAmount:    30000,
			}, nil
		},
	}

	ledger := NewLedger(&mockPaymentRepo{}, orderRepo, zap.NewNop())

	_, err := ledger.RecordPayment(context.Background(), dto.RecordPaymentRequest{
		OrderID: 15, Amount: 10000, Method: domain.PaymentMethodCash,
	})
	if _, ok := apperrors.IsInvalidStateTransitionError(err); !ok {
		t.Fatalf("expected InvalidStateTransitionError, got %v", err)
	}
}

func TestRecordPayment_UnknownMethodRejected(t *testing.T) {
	ledger := NewLedger(&mockPaymentRepo{}, &mockOrderReader{}, zap.NewNop())

	_, err := ledger.RecordPayment(context.Background(), dto.RecordPaymentRequest{
		OrderID: 15, Amount: 10000, Method: "BARTER",
	})
	if _, ok := apperrors.IsValidationError(err); !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestOrderLedger_ComputesRemaining(t *testing.T) {
	paymentRepo := &mockPaymentRepo{
		sumCompletedFn: func(ctx context.Context, orderID uint) (float64, error) {
			return 12000, nil
		},
	}
	orderRepo := &mockOrderReader{
		findByIDFn: func(ctx context.Context, id uint) (*domain.Order, error) {
			return confirmedOrder(15, 30000), nil
		},
	}

	ledger := NewLedger(paymentRepo, orderRepo, zap.NewNop())

	summary, err := ledger.OrderLedger(context.Background(), 15)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if summary.PaidAmount != 12000 {
		t.Errorf("expected paid 12000, got %f", summary.PaidAmount)
	}
	if summary.RemainingAmount != 18000 {
		t.Errorf("expected remaining 18000, got %f", summary.RemainingAmount)
	}
}
