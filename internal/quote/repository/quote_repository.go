package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"evdms/internal/domain"
	"evdms/internal/dto"
	apperrors "evdms/internal/errors"
)

type MySQLQuoteRepository struct {
	db *sql.DB
}

func NewMySQLQuoteRepository(db *sql.DB) *MySQLQuoteRepository {
	return &MySQLQuoteRepository{db: db}
}

const quoteColumns = `
	id, customerId, creatorRole, ownerId, status, approvalStatus,
	approvedBy, approvalNotes, rejectedReason, finalTotal,
	invChecked, invSufficient, invMessage, invCheckedAt,
	createdAt, updatedAt
`

func (r *MySQLQuoteRepository) scanQuote(row *sql.Row) (*domain.Quote, error) {
	var q domain.Quote
	err := row.Scan(
		&q.ID, &q.CustomerID, &q.CreatorRole, &q.OwnerID, &q.Status, &q.ApprovalStatus,
		&q.ApprovedBy, &q.ApprovalNotes, &q.RejectedReason, &q.FinalTotal,
		&q.InvChecked, &q.InvSufficient, &q.InvMessage, &q.InvCheckedAt,
		&q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *MySQLQuoteRepository) FindByID(ctx context.Context, id uint) (*domain.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM Quotes WHERE id = ?`

	quote, err := r.scanQuote(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("quote with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying quote by id: %w", err)
	}

	items, err := r.findItems(ctx, id)
	if err != nil {
		return nil, err
	}
	quote.Items = items

	return quote, nil
}

func (r *MySQLQuoteRepository) findItems(ctx context.Context, quoteID uint) ([]domain.QuoteItem, error) {
	query := `
		SELECT id, quoteId, vehicleId, quantity, unitPrice
		FROM QuoteItems
		WHERE quoteId = ?
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, quoteID)
	if err != nil {
		return nil, fmt.Errorf("querying quote items: %w", err)
	}
	defer rows.Close()

	var items []domain.QuoteItem
	for rows.Next() {
		var item domain.QuoteItem
		if err := rows.Scan(&item.ID, &item.QuoteID, &item.VehicleID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("scanning quote item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// Create inserts the quote and its line items atomically.
func (r *MySQLQuoteRepository) Create(ctx context.Context, quote *domain.Quote) (uint, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	insertQuote := `
		INSERT INTO Quotes (customerId, creatorRole, ownerId, status, approvalStatus, finalTotal)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, insertQuote,
		quote.CustomerID, quote.CreatorRole, quote.OwnerID,
		quote.Status, quote.ApprovalStatus, quote.FinalTotal,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting quote: %w", err)
	}

	quoteID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	insertItem := `INSERT INTO QuoteItems (quoteId, vehicleId, quantity, unitPrice) VALUES (?, ?, ?, ?)`
	for _, item := range quote.Items {
		if _, err := tx.ExecContext(ctx, insertItem, quoteID, item.VehicleID, item.Quantity, item.UnitPrice); err != nil {
			return 0, fmt.Errorf("inserting quote item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing quote insert: %w", err)
	}

	return uint(quoteID), nil
}

// ListPending returns the approval queue for one pending status, filtered
// by creator role. The filter is the cross-track leakage guard: a dealer
// manager queue only ever contains staff-created quotes and the EVM queue
// only manager-created ones.
func (r *MySQLQuoteRepository) ListPending(ctx context.Context, pendingStatus string, creatorRoles []string) ([]domain.Quote, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(creatorRoles)), ",")
	query := `SELECT ` + quoteColumns + ` FROM Quotes
		WHERE approvalStatus = ? AND creatorRole IN (` + placeholders + `)
		ORDER BY createdAt ASC`

	args := make([]interface{}, 0, len(creatorRoles)+1)
	args = append(args, pendingStatus)
	for _, role := range creatorRoles {
		args = append(args, role)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying pending quotes: %w", err)
	}
	defer rows.Close()

	var quotes []domain.Quote
	for rows.Next() {
		var q domain.Quote
		err := rows.Scan(
			&q.ID, &q.CustomerID, &q.CreatorRole, &q.OwnerID, &q.Status, &q.ApprovalStatus,
			&q.ApprovedBy, &q.ApprovalNotes, &q.RejectedReason, &q.FinalTotal,
			&q.InvChecked, &q.InvSufficient, &q.InvMessage, &q.InvCheckedAt,
			&q.CreatedAt, &q.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning pending quote: %w", err)
		}
		quotes = append(quotes, q)
	}

	return quotes, rows.Err()
}

// SubmitCAS flips approvalStatus only if the row still holds the expected
// value. Zero affected rows means another request got there first.
func (r *MySQLQuoteRepository) SubmitCAS(ctx context.Context, id uint, expected, next string) error {
	query := `UPDATE Quotes SET approvalStatus = ? WHERE id = ? AND approvalStatus = ?`

	result, err := r.db.ExecContext(ctx, query, next, id, expected)
	if err != nil {
		return fmt.Errorf("submitting quote: %w", err)
	}

	return requireCAS(result, "quote", id, expected)
}

// ApproveCAS commits an approval inside the caller's transaction, guarded
// on the expected pending status.
func (r *MySQLQuoteRepository) ApproveCAS(ctx context.Context, tx *sql.Tx, id uint, expected string, approvedBy uint, notes *string) error {
	query := `
		UPDATE Quotes
		SET approvalStatus = ?, status = ?, approvedBy = ?, approvalNotes = ?
		WHERE id = ? AND approvalStatus = ?
	`

	result, err := tx.ExecContext(ctx, query,
		domain.QuoteApprovalApproved, domain.QuoteStatusAccepted, approvedBy, notes, id, expected,
	)
	if err != nil {
		return fmt.Errorf("approving quote: %w", err)
	}

	return requireCAS(result, "quote", id, expected)
}

// RejectCAS marks the quote rejected, guarded on the expected status.
func (r *MySQLQuoteRepository) RejectCAS(ctx context.Context, id uint, expected, reason string) error {
	query := `
		UPDATE Quotes
		SET approvalStatus = ?, rejectedReason = ?
		WHERE id = ? AND approvalStatus = ?
	`

	result, err := r.db.ExecContext(ctx, query, domain.QuoteApprovalRejected, reason, id, expected)
	if err != nil {
		return fmt.Errorf("rejecting quote: %w", err)
	}

	return requireCAS(result, "quote", id, expected)
}

// RecordInventoryCheck persists the advisory snapshot together with the
// approval status it implies (a failed check parks a pending quote in
// INSUFFICIENT_INVENTORY; a passing re-check restores the pending status).
func (r *MySQLQuoteRepository) RecordInventoryCheck(ctx context.Context, id uint, check dto.InventoryCheckResult, approvalStatus string) error {
	query := `
		UPDATE Quotes
		SET invChecked = 1, invSufficient = ?, invMessage = ?, invCheckedAt = ?, approvalStatus = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, check.Sufficient, check.Message, check.CheckedAt, approvalStatus, id)
	if err != nil {
		return fmt.Errorf("recording inventory check: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("quote with id %d not found", id))
	}

	return nil
}

// RecordInventoryCheckTx is RecordInventoryCheck inside an existing
// transaction, used when an approval's commit-time re-check fails.
func (r *MySQLQuoteRepository) RecordInventoryCheckTx(ctx context.Context, tx *sql.Tx, id uint, check dto.InventoryCheckResult, approvalStatus string) error {
	query := `
		UPDATE Quotes
		SET invChecked = 1, invSufficient = ?, invMessage = ?, invCheckedAt = ?, approvalStatus = ?
		WHERE id = ?
	`

	if _, err := tx.ExecContext(ctx, query, check.Sufficient, check.Message, check.CheckedAt, approvalStatus, id); err != nil {
		return fmt.Errorf("recording inventory check: %w", err)
	}

	return nil
}

func requireCAS(result sql.Result, entity string, id uint, expected string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewConcurrentModificationError(entity, id, expected)
	}
	return nil
}
