package repository

import (
	"context"
	"testing"

	"evdms/internal/domain"
	apperrors "evdms/internal/errors"
	"evdms/internal/testutil"
)

func seedOrder(t *testing.T, repo *MySQLOrderRepository, quoteID uint) uint {
	t.Helper()

	cid := uint(77)
	order := &domain.Order{
		QuoteID:        quoteID,
		CustomerID:     &cid,
		Track:          domain.TrackDealer,
		Status:         domain.OrderStatusPending,
		ApprovalStatus: domain.OrderApprovalPending,
		TotalAmount:    30000,
	}

	id, err := repo.Create(context.Background(), order)
	if err != nil {
		t.Fatalf("failed to seed order: %v", err)
	}
	return id
}

func TestOrderRepository_CreateAndFind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	repo := NewMySQLOrderRepository(db)
	id := seedOrder(t, repo, 3)

	order, err := repo.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if order.QuoteID != 3 || order.Track != domain.TrackDealer {
		t.Errorf("unexpected order %+v", order)
	}
}

func TestOrderRepository_FindByQuoteID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	repo := NewMySQLOrderRepository(db)
	id := seedOrder(t, repo, 5)

	order, err := repo.FindByQuoteID(context.Background(), 5)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if order.ID != id {
		t.Errorf("expected order %d, got %d", id, order.ID)
	}

	_, err = repo.FindByQuoteID(context.Background(), 999999)
	if _, ok := apperrors.IsNotFoundError(err); !ok {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestOrderRepository_ApproveCASOnlyOnceWins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	repo := NewMySQLOrderRepository(db)
	id := seedOrder(t, repo, 7)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("failed to begin tx: %v", err)
	}
	if err := repo.ApproveCAS(ctx, tx, id, 11); err != nil {
		t.Fatalf("first approval should win: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	tx, err = db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("failed to begin tx: %v", err)
	}
	defer tx.Rollback()

	err = repo.ApproveCAS(ctx, tx, id, 12)
	if _, ok := apperrors.IsConcurrentModificationError(err); !ok {
		t.Fatalf("expected ConcurrentModificationError, got %v", err)
	}

	order, err := repo.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if order.ApprovedBy == nil || *order.ApprovedBy != 11 {
		t.Errorf("expected first approver to stick, got %v", order.ApprovedBy)
	}
	if order.Status != domain.OrderStatusConfirmed {
		t.Errorf("expected CONFIRMED, got %s", order.Status)
	}
}

func TestOrderRepository_StatusCASGuardsDeliver(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	repo := NewMySQLOrderRepository(db)
	id := seedOrder(t, repo, 9)
	ctx := context.Background()

	err := repo.UpdateStatusCAS(ctx, id, domain.OrderStatusConfirmed, domain.OrderStatusDelivered)
	if _, ok := apperrors.IsConcurrentModificationError(err); !ok {
		t.Fatalf("expected ConcurrentModificationError for pending order, got %v", err)
	}
}
