package repository

import (
	"context"
	"testing"

	"evdms/internal/domain"
	"evdms/internal/dto"
	apperrors "evdms/internal/errors"
	"evdms/internal/testutil"
)

func TestStockRepository_ReserveAndCommitRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	if _, err := db.Exec(`INSERT INTO VehicleStock (vehicleId, location, quantity, reserved) VALUES (1, 'DEALER', 10, 0)`); err != nil {
		t.Fatalf("failed to seed stock: %v", err)
	}

	repo := NewMySQLStockRepository(db)
	ctx := context.Background()
	lines := []dto.StockLine{{VehicleID: 1, Quantity: 3}}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("failed to begin tx: %v", err)
	}
	if err := repo.Reserve(ctx, tx, domain.LocationDealer, lines); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	stock, err := repo.FindByVehicleAndLocation(ctx, 1, domain.LocationDealer)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if stock.Reserved != 3 || stock.Available() != 7 {
		t.Errorf("expected reserved=3 available=7, got reserved=%d available=%d", stock.Reserved, stock.Available())
	}

	tx, err = db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("failed to begin tx: %v", err)
	}
	if err := repo.CommitAllocation(ctx, tx, domain.LocationDealer, lines); err != nil {
		t.Fatalf("commit allocation failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	stock, err = repo.FindByVehicleAndLocation(ctx, 1, domain.LocationDealer)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if stock.Quantity != 7 || stock.Reserved != 0 {
		t.Errorf("expected quantity=7 reserved=0, got quantity=%d reserved=%d", stock.Quantity, stock.Reserved)
	}
}

func TestStockRepository_CommitWithoutReservationFails(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	if _, err := db.Exec(`INSERT INTO VehicleStock (vehicleId, location, quantity, reserved) VALUES (2, 'FACTORY', 5, 0)`); err != nil {
		t.Fatalf("failed to seed stock: %v", err)
	}

	repo := NewMySQLStockRepository(db)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("failed to begin tx: %v", err)
	}
	defer tx.Rollback()

	err = repo.CommitAllocation(ctx, tx, domain.LocationFactory, []dto.StockLine{{VehicleID: 2, Quantity: 3}})
	if _, ok := apperrors.IsNotFoundError(err); !ok {
		t.Fatalf("expected NotFoundError for unreserved commit, got %v", err)
	}
}

func TestStockRepository_MissingRowIsNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	repo := NewMySQLStockRepository(db)

	_, err := repo.FindByVehicleAndLocation(context.Background(), 404, domain.LocationDealer)
	if _, ok := apperrors.IsNotFoundError(err); !ok {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
