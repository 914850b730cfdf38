package usecase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"evdms/internal/domain"
	"evdms/internal/dto"
	apperrors "evdms/internal/errors"
	"evdms/internal/routing"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type OrderRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.Order, error)
	FindByQuoteID(ctx context.Context, quoteID uint) (*domain.Order, error)
	Create(ctx context.Context, order *domain.Order) (uint, error)
	ApproveCAS(ctx context.Context, tx *sql.Tx, id uint, approvedBy uint) error
	RejectCAS(ctx context.Context, id uint, reason string) error
	UpdateStatusCAS(ctx context.Context, id uint, expected, next string) error
	UpdateStatusCASTx(ctx context.Context, tx *sql.Tx, id uint, expected, next string) error
}

type QuoteReader interface {
	FindByID(ctx context.Context, id uint) (*domain.Quote, error)
}

type StockAllocator interface {
	CommitAllocation(ctx context.Context, tx *sql.Tx, location domain.StockLocation, lines []dto.StockLine) error
	ReleaseAllocation(ctx context.Context, tx *sql.Tx, location domain.StockLocation, lines []dto.StockLine) error
	Restock(ctx context.Context, tx *sql.Tx, location domain.StockLocation, lines []dto.StockLine) error
}

// Lifecycle drives orders from creation off an approved quote through
// confirmation, delivery or cancellation. Stock adjustments always ride
// in the same transaction as the status flip they belong to.
type Lifecycle struct {
	db               TransactionManager
	orderRepo        OrderRepository
	quoteRepo        QuoteReader
	stockRepo        StockAllocator
	logger           *zap.Logger
	txTimeout        time.Duration
	maxRetryAttempts int
}

func NewLifecycle(
	db TransactionManager,
	orderRepo OrderRepository,
	quoteRepo QuoteReader,
	stockRepo StockAllocator,
	logger *zap.Logger,
	maxRetryAttempts int,
) *Lifecycle {
	return &Lifecycle{
		db:               db,
		orderRepo:        orderRepo,
		quoteRepo:        quoteRepo,
		stockRepo:        stockRepo,
		logger:           logger,
		txTimeout:        5 * time.Second,
		maxRetryAttempts: maxRetryAttempts,
	}
}

// Get loads one order.
func (l *Lifecycle) Get(ctx context.Context, orderID uint) (*domain.Order, error) {
	return l.orderRepo.FindByID(ctx, orderID)
}

// CreateFromQuote converts an approved, accepted quote into exactly one
// order. The quote's creator role decides the track: dealer-track orders
// must name an end customer, manufacturer-track orders never carry one.
func (l *Lifecycle) CreateFromQuote(ctx context.Context, actor domain.Actor, req dto.CreateOrderRequest) (*domain.Order, error) {
	if !routing.CapabilitiesFor(actor.Role).CreateOrder {
		return nil, apperrors.NewRoleNotPermittedError("order", 0, "create", string(actor.Role))
	}

	quote, err := l.quoteRepo.FindByID(ctx, req.QuoteID)
	if err != nil {
		return nil, err
	}

	if !quote.ReadyForOrder() {
		return nil, apperrors.NewQuoteNotReadyError(quote.ID, quote.Status, quote.ApprovalStatus)
	}

	if existing, err := l.orderRepo.FindByQuoteID(ctx, req.QuoteID); err == nil {
		return nil, apperrors.NewConflictError(
			fmt.Sprintf("quote %d already has order %d", quote.ID, existing.ID))
	} else if _, ok := apperrors.IsNotFoundError(err); !ok {
		return nil, err
	}

	decision := routing.Route(quote.EffectiveCreatorRole(), routing.KindOrder)

	order := &domain.Order{
		QuoteID:        quote.ID,
		Track:          decision.Track,
		Status:         domain.OrderStatusPending,
		ApprovalStatus: domain.OrderApprovalPending,
		TotalAmount:    quote.FinalTotal,
	}

	if decision.Track == domain.TrackDealer {
		customerID := req.CustomerID
		if customerID == nil {
			customerID = quote.CustomerID
		}
		if customerID == nil {
			return nil, apperrors.NewCustomerRequiredError(quote.ID)
		}
		order.CustomerID = customerID
	}

	id, err := l.orderRepo.Create(ctx, order)
	if err != nil {
		return nil, err
	}

	l.logger.Info("order created",
		zap.Uint("orderId", id),
		zap.Uint("quoteId", quote.ID),
		zap.String("track", string(decision.Track)))

	return l.orderRepo.FindByID(ctx, id)
}

// Approve confirms a pending order. The quote's reserved stock is
// committed (on-hand and reserved both shrink) in the same transaction as
// the approval flip, with deadlock retry.
func (l *Lifecycle) Approve(ctx context.Context, orderID uint, actor domain.Actor) (*domain.Order, error) {
	order, err := l.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.IsTerminal() {
		return nil, apperrors.NewInvalidStateTransitionError("order", orderID, "approved", order.Status, order.ApprovalStatus)
	}
	if !order.CanBeApprovedBy(actor.Role) {
		return nil, apperrors.NewRoleNotPermittedError("order", orderID, "approve", string(actor.Role))
	}

	lines, err := l.quoteLines(ctx, order.QuoteID)
	if err != nil {
		return nil, err
	}
	location := trackLocation(order.EffectiveTrack())

	err = l.withDeadlockRetry(ctx, orderID, func() error {
		txCtx, cancel := context.WithTimeout(ctx, l.txTimeout)
		defer cancel()

		tx, err := l.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if err := l.stockRepo.CommitAllocation(txCtx, tx, location, lines); err != nil {
			return err
		}
		if err := l.orderRepo.ApproveCAS(txCtx, tx, orderID, actor.ID); err != nil {
			return err
		}

		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("order approved",
		zap.Uint("orderId", orderID),
		zap.Uint("approverId", actor.ID),
		zap.String("track", string(order.EffectiveTrack())))

	return l.orderRepo.FindByID(ctx, orderID)
}

// Reject cancels a pending order and releases the reservation its quote
// holds. The reason is mandatory.
func (l *Lifecycle) Reject(ctx context.Context, orderID uint, actor domain.Actor, reason string) (*domain.Order, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "reason",
			Message: "rejection reason is required",
		})
	}

	order, err := l.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.IsTerminal() {
		return nil, apperrors.NewInvalidStateTransitionError("order", orderID, "rejected", order.Status, order.ApprovalStatus)
	}
	if !order.CanBeApprovedBy(actor.Role) {
		return nil, apperrors.NewRoleNotPermittedError("order", orderID, "reject", string(actor.Role))
	}

	if err := l.orderRepo.RejectCAS(ctx, orderID, reason); err != nil {
		return nil, err
	}

	if err := l.releaseReservation(ctx, order); err != nil {
		// The rejection committed; a failed release is an inventory
		// correction problem, not a lifecycle one.
		l.logger.Error("failed to release reservation after rejection",
			zap.Uint("orderId", orderID), zap.Error(err))
	}

	l.logger.Info("order rejected",
		zap.Uint("orderId", orderID),
		zap.Uint("approverId", actor.ID),
		zap.String("reason", reason))

	return l.orderRepo.FindByID(ctx, orderID)
}

// Deliver completes a confirmed order.
func (l *Lifecycle) Deliver(ctx context.Context, orderID uint, actor domain.Actor) (*domain.Order, error) {
	order, err := l.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.ApprovalStatus != domain.OrderApprovalApproved || order.Status != domain.OrderStatusConfirmed {
		return nil, apperrors.NewInvalidStateTransitionError("order", orderID, "delivered", order.Status, order.ApprovalStatus)
	}

	if err := l.orderRepo.UpdateStatusCAS(ctx, orderID, domain.OrderStatusConfirmed, domain.OrderStatusDelivered); err != nil {
		return nil, err
	}

	l.logger.Info("order delivered", zap.Uint("orderId", orderID), zap.Uint("actorId", actor.ID))

	return l.orderRepo.FindByID(ctx, orderID)
}

// Cancel aborts an order before delivery. A pending order releases its
// quote's reservation; a confirmed order restocks the units its approval
// committed.
func (l *Lifecycle) Cancel(ctx context.Context, orderID uint, actor domain.Actor) (*domain.Order, error) {
	order, err := l.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status == domain.OrderStatusDelivered || order.Status == domain.OrderStatusCancelled {
		return nil, apperrors.NewInvalidStateTransitionError("order", orderID, "cancelled", order.Status, order.ApprovalStatus)
	}

	lines, err := l.quoteLines(ctx, order.QuoteID)
	if err != nil {
		return nil, err
	}
	location := trackLocation(order.EffectiveTrack())

	txCtx, cancel := context.WithTimeout(ctx, l.txTimeout)
	defer cancel()

	tx, err := l.db.BeginTx(txCtx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := l.orderRepo.UpdateStatusCASTx(txCtx, tx, orderID, order.Status, domain.OrderStatusCancelled); err != nil {
		return nil, err
	}

	switch order.ApprovalStatus {
	case domain.OrderApprovalApproved:
		if err := l.stockRepo.Restock(txCtx, tx, location, lines); err != nil {
			return nil, err
		}
	case domain.OrderApprovalPending:
		if err := l.stockRepo.ReleaseAllocation(txCtx, tx, location, lines); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	l.logger.Info("order cancelled", zap.Uint("orderId", orderID), zap.Uint("actorId", actor.ID))

	return l.orderRepo.FindByID(ctx, orderID)
}

func (l *Lifecycle) releaseReservation(ctx context.Context, order *domain.Order) error {
	lines, err := l.quoteLines(ctx, order.QuoteID)
	if err != nil {
		return err
	}

	txCtx, cancel := context.WithTimeout(ctx, l.txTimeout)
	defer cancel()

	tx, err := l.db.BeginTx(txCtx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := l.stockRepo.ReleaseAllocation(txCtx, tx, trackLocation(order.EffectiveTrack()), lines); err != nil {
		return err
	}

	return tx.Commit()
}

// quoteLines returns the quote's stock lines ordered by vehicleId. The
// ordering keeps lock acquisition deterministic across transactions.
func (l *Lifecycle) quoteLines(ctx context.Context, quoteID uint) ([]dto.StockLine, error) {
	quote, err := l.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	lines := make([]dto.StockLine, len(quote.Items))
	for i, item := range quote.Items {
		lines[i] = dto.StockLine{VehicleID: item.VehicleID, Quantity: item.Quantity}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].VehicleID < lines[j].VehicleID })

	return lines, nil
}

func (l *Lifecycle) withDeadlockRetry(ctx context.Context, orderID uint, fn func() error) error {
	maxAttempts := l.maxRetryAttempts
	// Backoff intervals: attempt 1 (0ms), attempt 2 (100ms), attempt 3 (200ms).
	backoffs := []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		if isDeadlockError(err) {
			if attempt < maxAttempts {
				// Jitter: ±20% of backoff base.
				jitter := backoffs[attempt-1] * time.Duration(0.8+rand.Float64()*0.4)
				time.Sleep(backoffs[attempt-1] + jitter)
				l.logger.Warn("deadlock detected, retrying",
					zap.Int("attempt", attempt),
					zap.Int("maxAttempts", maxAttempts),
					zap.Uint("orderId", orderID))
				continue
			}
			break
		}

		return err
	}

	return apperrors.NewDeadlockError("max retries exceeded")
}

func isDeadlockError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
	}
	return false
}

func trackLocation(track domain.WorkflowTrack) domain.StockLocation {
	if track == domain.TrackManufacturer {
		return domain.LocationFactory
	}
	return domain.LocationDealer
}
