package repository

import (
	"context"
	"database/sql"
	"fmt"

	"evdms/internal/domain"
	apperrors "evdms/internal/errors"
)

type MySQLPaymentRepository struct {
	db *sql.DB
}

func NewMySQLPaymentRepository(db *sql.DB) *MySQLPaymentRepository {
	return &MySQLPaymentRepository{db: db}
}

func (r *MySQLPaymentRepository) FindByID(ctx context.Context, id uint) (*domain.Payment, error) {
	query := `
		SELECT id, orderId, amount, method, status, createdAt, updatedAt
		FROM Payments
		WHERE id = ?
	`

	var p domain.Payment
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.OrderID, &p.Amount, &p.Method, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("payment with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying payment by id: %w", err)
	}

	return &p, nil
}

func (r *MySQLPaymentRepository) FindByOrderID(ctx context.Context, orderID uint) ([]domain.Payment, error) {
	query := `
		SELECT id, orderId, amount, method, status, createdAt, updatedAt
		FROM Payments
		WHERE orderId = ?
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying payments by order: %w", err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.OrderID, &p.Amount, &p.Method, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}
		payments = append(payments, p)
	}

	return payments, rows.Err()
}

func (r *MySQLPaymentRepository) Create(ctx context.Context, payment *domain.Payment) (uint, error) {
	query := `INSERT INTO Payments (orderId, amount, method, status) VALUES (?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, payment.OrderID, payment.Amount, payment.Method, payment.Status)
	if err != nil {
		return 0, fmt.Errorf("inserting payment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return uint(id), nil
}

// SumCompletedByOrder computes the paid amount at read time. Derived
// state is never stored on the order row.
func (r *MySQLPaymentRepository) SumCompletedByOrder(ctx context.Context, orderID uint) (float64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM Payments
		WHERE orderId = ? AND status = ?
	`

	var total float64
	err := r.db.QueryRowContext(ctx, query, orderID, domain.PaymentStatusCompleted).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("summing completed payments: %w", err)
	}

	return total, nil
}

// UpdateStatusCAS flips a payment's status, guarded on the expected
// current value.
func (r *MySQLPaymentRepository) UpdateStatusCAS(ctx context.Context, id uint, expected, next string) error {
	query := `UPDATE Payments SET status = ? WHERE id = ? AND status = ?`

	result, err := r.db.ExecContext(ctx, query, next, id, expected)
	if err != nil {
		return fmt.Errorf("updating payment status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewConcurrentModificationError("payment", id, expected)
	}

	return nil
}
