package repository

import (
	"context"
	"database/sql"
	"fmt"

	"evdms/internal/domain"
	apperrors "evdms/internal/errors"
)

type MySQLOrderRepository struct {
	db *sql.DB
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

const orderColumns = `
	id, quoteId, customerId, track, status, approvalStatus,
	approvedBy, rejectedReason, totalAmount, createdAt, updatedAt
`

func scanOrder(row *sql.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID, &o.QuoteID, &o.CustomerID, &o.Track, &o.Status, &o.ApprovalStatus,
		&o.ApprovedBy, &o.RejectedReason, &o.TotalAmount, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *MySQLOrderRepository) FindByID(ctx context.Context, id uint) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM Orders WHERE id = ?`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}

	return order, nil
}

// FindByQuoteID enforces the one-order-per-quote rule at read time. Not
// found is expected during order creation.
func (r *MySQLOrderRepository) FindByQuoteID(ctx context.Context, quoteID uint) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM Orders WHERE quoteId = ?`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, quoteID))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no order exists for quote %d", quoteID))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by quote id: %w", err)
	}

	return order, nil
}

func (r *MySQLOrderRepository) Create(ctx context.Context, order *domain.Order) (uint, error) {
	query := `
		INSERT INTO Orders (quoteId, customerId, track, status, approvalStatus, totalAmount)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		order.QuoteID, order.CustomerID, order.Track,
		order.Status, order.ApprovalStatus, order.TotalAmount,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting order: %w", err)
	}

	orderID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return uint(orderID), nil
}

// ApproveCAS confirms the order inside the caller's transaction, guarded
// on the pending approval status.
func (r *MySQLOrderRepository) ApproveCAS(ctx context.Context, tx *sql.Tx, id uint, approvedBy uint) error {
	query := `
		UPDATE Orders
		SET approvalStatus = ?, status = ?, approvedBy = ?
		WHERE id = ? AND approvalStatus = ?
	`

	result, err := tx.ExecContext(ctx, query,
		domain.OrderApprovalApproved, domain.OrderStatusConfirmed, approvedBy,
		id, domain.OrderApprovalPending,
	)
	if err != nil {
		return fmt.Errorf("approving order: %w", err)
	}

	return requireCAS(result, id, domain.OrderApprovalPending)
}

// RejectCAS marks the order rejected and cancelled, guarded on the
// pending approval status.
func (r *MySQLOrderRepository) RejectCAS(ctx context.Context, id uint, reason string) error {
	query := `
		UPDATE Orders
		SET approvalStatus = ?, status = ?, rejectedReason = ?
		WHERE id = ? AND approvalStatus = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		domain.OrderApprovalRejected, domain.OrderStatusCancelled, reason,
		id, domain.OrderApprovalPending,
	)
	if err != nil {
		return fmt.Errorf("rejecting order: %w", err)
	}

	return requireCAS(result, id, domain.OrderApprovalPending)
}

// UpdateStatusCAS flips the fulfilment status, guarded on the expected
// current status.
func (r *MySQLOrderRepository) UpdateStatusCAS(ctx context.Context, id uint, expected, next string) error {
	query := `UPDATE Orders SET status = ? WHERE id = ? AND status = ?`

	result, err := r.db.ExecContext(ctx, query, next, id, expected)
	if err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}

	return requireCAS(result, id, expected)
}

// UpdateStatusCASTx is UpdateStatusCAS inside an existing transaction,
// used when a status flip must ride with stock adjustments.
func (r *MySQLOrderRepository) UpdateStatusCASTx(ctx context.Context, tx *sql.Tx, id uint, expected, next string) error {
	query := `UPDATE Orders SET status = ? WHERE id = ? AND status = ?`

	result, err := tx.ExecContext(ctx, query, next, id, expected)
	if err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}

	return requireCAS(result, id, expected)
}

func requireCAS(result sql.Result, id uint, expected string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewConcurrentModificationError("order", id, expected)
	}
	return nil
}
