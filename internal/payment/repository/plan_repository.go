package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"evdms/internal/domain"
	apperrors "evdms/internal/errors"
)

type MySQLPlanRepository struct {
	db *sql.DB
}

func NewMySQLPlanRepository(db *sql.DB) *MySQLPlanRepository {
	return &MySQLPlanRepository{db: db}
}

const planColumns = `
	id, paymentId, principal, annualRate, vatAmount, interestAmount,
	totalPayable, monthlyPayment, months, firstDueDate, createdAt
`

func scanPlan(row *sql.Row) (*domain.InstallmentPlan, error) {
	var p domain.InstallmentPlan
	err := row.Scan(
		&p.ID, &p.PaymentID, &p.Principal, &p.AnnualRate, &p.VATAmount, &p.InterestAmount,
		&p.TotalPayable, &p.MonthlyPayment, &p.Months, &p.FirstDueDate, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *MySQLPlanRepository) FindByID(ctx context.Context, id uint) (*domain.InstallmentPlan, error) {
	query := `SELECT ` + planColumns + ` FROM InstallmentPlans WHERE id = ?`

	plan, err := scanPlan(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("installment plan with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying plan by id: %w", err)
	}

	installments, err := r.findInstallments(ctx, id)
	if err != nil {
		return nil, err
	}
	plan.Installments = installments

	return plan, nil
}

func (r *MySQLPlanRepository) FindByPaymentID(ctx context.Context, paymentID uint) (*domain.InstallmentPlan, error) {
	query := `SELECT ` + planColumns + ` FROM InstallmentPlans WHERE paymentId = ?`

	plan, err := scanPlan(r.db.QueryRowContext(ctx, query, paymentID))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no installment plan exists for payment %d", paymentID))
	}
	if err != nil {
		return nil, fmt.Errorf("querying plan by payment id: %w", err)
	}

	installments, err := r.findInstallments(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	plan.Installments = installments

	return plan, nil
}

func (r *MySQLPlanRepository) findInstallments(ctx context.Context, planID uint) ([]domain.Installment, error) {
	query := `
		SELECT id, planId, installmentNumber, dueDate, amount, status, paidAt
		FROM Installments
		WHERE planId = ?
		ORDER BY installmentNumber ASC
	`

	rows, err := r.db.QueryContext(ctx, query, planID)
	if err != nil {
		return nil, fmt.Errorf("querying installments: %w", err)
	}
	defer rows.Close()

	var installments []domain.Installment
	for rows.Next() {
		var inst domain.Installment
		if err := rows.Scan(&inst.ID, &inst.PlanID, &inst.InstallmentNumber, &inst.DueDate, &inst.Amount, &inst.Status, &inst.PaidAt); err != nil {
			return nil, fmt.Errorf("scanning installment: %w", err)
		}
		installments = append(installments, inst)
	}

	return installments, rows.Err()
}

// Create inserts the plan and all its installments atomically.
func (r *MySQLPlanRepository) Create(ctx context.Context, plan *domain.InstallmentPlan) (uint, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	insertPlan := `
		INSERT INTO InstallmentPlans
			(paymentId, principal, annualRate, vatAmount, interestAmount, totalPayable, monthlyPayment, months, firstDueDate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, insertPlan,
		plan.PaymentID, plan.Principal, plan.AnnualRate, plan.VATAmount, plan.InterestAmount,
		plan.TotalPayable, plan.MonthlyPayment, plan.Months, plan.FirstDueDate,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting plan: %w", err)
	}

	planID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	insertInstallment := `
		INSERT INTO Installments (planId, installmentNumber, dueDate, amount, status)
		VALUES (?, ?, ?, ?, ?)
	`
	for _, inst := range plan.Installments {
		if _, err := tx.ExecContext(ctx, insertInstallment, planID, inst.InstallmentNumber, inst.DueDate, inst.Amount, inst.Status); err != nil {
			return 0, fmt.Errorf("inserting installment %d: %w", inst.InstallmentNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing plan insert: %w", err)
	}

	return uint(planID), nil
}

// PayInstallmentCAS marks one installment paid, guarded on it still being
// pending. Paying the same installment twice loses the guard.
func (r *MySQLPlanRepository) PayInstallmentCAS(ctx context.Context, planID uint, installmentNumber int, paidAt time.Time) error {
	query := `
		UPDATE Installments
		SET status = ?, paidAt = ?
		WHERE planId = ? AND installmentNumber = ? AND status = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		domain.InstallmentStatusPaid, paidAt, planID, installmentNumber, domain.InstallmentStatusPending,
	)
	if err != nil {
		return fmt.Errorf("paying installment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewConcurrentModificationError("installment", planID, domain.InstallmentStatusPending)
	}

	return nil
}

// CountPending reports how many installments of a plan are still open.
func (r *MySQLPlanRepository) CountPending(ctx context.Context, planID uint) (int, error) {
	query := `SELECT COUNT(*) FROM Installments WHERE planId = ? AND status = ?`

	var count int
	if err := r.db.QueryRowContext(ctx, query, planID, domain.InstallmentStatusPending).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting pending installments: %w", err)
	}

	return count, nil
}
