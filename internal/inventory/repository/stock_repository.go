package repository

import (
	"context"
	"database/sql"
	"fmt"

	"evdms/internal/domain"
	"evdms/internal/dto"
	apperrors "evdms/internal/errors"
)

type MySQLStockRepository struct {
	db *sql.DB
}

func NewMySQLStockRepository(db *sql.DB) *MySQLStockRepository {
	return &MySQLStockRepository{db: db}
}

// FindByVehicleAndLocation reads a stock row without locking it. Used by
// advisory sufficiency checks.
func (r *MySQLStockRepository) FindByVehicleAndLocation(ctx context.Context, vehicleID int, location domain.StockLocation) (*domain.VehicleStock, error) {
	query := `
		SELECT vehicleId, location, quantity, reserved
		FROM VehicleStock
		WHERE vehicleId = ? AND location = ?
	`

	var stock domain.VehicleStock
	err := r.db.QueryRowContext(ctx, query, vehicleID, location).Scan(
		&stock.VehicleID, &stock.Location, &stock.Quantity, &stock.Reserved,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no stock record for vehicle %d at %s", vehicleID, location))
	}
	if err != nil {
		return nil, fmt.Errorf("querying stock: %w", err)
	}

	return &stock, nil
}

// FindForUpdate locks a stock row inside the caller's transaction.
func (r *MySQLStockRepository) FindForUpdate(ctx context.Context, tx *sql.Tx, vehicleID int, location domain.StockLocation) (*domain.VehicleStock, error) {
	query := `
		SELECT vehicleId, location, quantity, reserved
		FROM VehicleStock
		WHERE vehicleId = ? AND location = ?
		FOR UPDATE
	`

	var stock domain.VehicleStock
	err := tx.QueryRowContext(ctx, query, vehicleID, location).Scan(
		&stock.VehicleID, &stock.Location, &stock.Quantity, &stock.Reserved,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no stock record for vehicle %d at %s", vehicleID, location))
	}
	if err != nil {
		return nil, fmt.Errorf("querying stock for update: %w", err)
	}

	return &stock, nil
}

// Reserve bumps the reserved counter for each line. Callers must have
// verified availability under the same transaction's locks.
func (r *MySQLStockRepository) Reserve(ctx context.Context, tx *sql.Tx, location domain.StockLocation, lines []dto.StockLine) error {
	query := `UPDATE VehicleStock SET reserved = reserved + ? WHERE vehicleId = ? AND location = ?`

	for _, line := range lines {
		result, err := tx.ExecContext(ctx, query, line.Quantity, line.VehicleID, location)
		if err != nil {
			return fmt.Errorf("reserving stock for vehicle %d: %w", line.VehicleID, err)
		}
		if err := requireRow(result, line.VehicleID, location); err != nil {
			return err
		}
	}

	return nil
}

// CommitAllocation converts reserved units into delivered stock: both the
// on-hand quantity and the reservation shrink together.
func (r *MySQLStockRepository) CommitAllocation(ctx context.Context, tx *sql.Tx, location domain.StockLocation, lines []dto.StockLine) error {
	query := `
		UPDATE VehicleStock
		SET quantity = quantity - ?, reserved = reserved - ?
		WHERE vehicleId = ? AND location = ? AND reserved >= ?
	`

	for _, line := range lines {
		result, err := tx.ExecContext(ctx, query, line.Quantity, line.Quantity, line.VehicleID, location, line.Quantity)
		if err != nil {
			return fmt.Errorf("committing allocation for vehicle %d: %w", line.VehicleID, err)
		}
		if err := requireRow(result, line.VehicleID, location); err != nil {
			return err
		}
	}

	return nil
}

// ReleaseAllocation frees reserved units without touching on-hand stock.
func (r *MySQLStockRepository) ReleaseAllocation(ctx context.Context, tx *sql.Tx, location domain.StockLocation, lines []dto.StockLine) error {
	query := `
		UPDATE VehicleStock
		SET reserved = reserved - ?
		WHERE vehicleId = ? AND location = ? AND reserved >= ?
	`

	for _, line := range lines {
		result, err := tx.ExecContext(ctx, query, line.Quantity, line.VehicleID, location, line.Quantity)
		if err != nil {
			return fmt.Errorf("releasing allocation for vehicle %d: %w", line.VehicleID, err)
		}
		if err := requireRow(result, line.VehicleID, location); err != nil {
			return err
		}
	}

	return nil
}

// Restock returns delivered units to on-hand stock. Used when a
// confirmed order is cancelled after its allocation was committed.
func (r *MySQLStockRepository) Restock(ctx context.Context, tx *sql.Tx, location domain.StockLocation, lines []dto.StockLine) error {
	query := `UPDATE VehicleStock SET quantity = quantity + ? WHERE vehicleId = ? AND location = ?`

	for _, line := range lines {
		result, err := tx.ExecContext(ctx, query, line.Quantity, line.VehicleID, location)
		if err != nil {
			return fmt.Errorf("restocking vehicle %d: %w", line.VehicleID, err)
		}
		if err := requireRow(result, line.VehicleID, location); err != nil {
			return err
		}
	}

	return nil
}

func requireRow(result sql.Result, vehicleID int, location domain.StockLocation) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("no adjustable stock record for vehicle %d at %s", vehicleID, location))
	}
	return nil
}
