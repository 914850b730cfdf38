package repository

import (
	"context"
	"testing"
	"time"

	"evdms/internal/domain"
	"evdms/internal/dto"
	apperrors "evdms/internal/errors"
	"evdms/internal/testutil"
)

func seedQuote(t *testing.T, repo *MySQLQuoteRepository, creatorRole domain.Role, approvalStatus string) uint {
	t.Helper()

	quote := &domain.Quote{
		CreatorRole:    creatorRole,
		OwnerID:        10,
		Status:         domain.QuoteStatusDraft,
		ApprovalStatus: approvalStatus,
		FinalTotal:     30000,
		Items: []domain.QuoteItem{
			{VehicleID: 1, Quantity: 2, UnitPrice: 15000},
		},
	}

	id, err := repo.Create(context.Background(), quote)
	if err != nil {
		t.Fatalf("failed to seed quote: %v", err)
	}
	return id
}

func TestQuoteRepository_CreateAndFind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	repo := NewMySQLQuoteRepository(db)
	id := seedQuote(t, repo, domain.RoleDealerStaff, domain.QuoteApprovalPendingDealerManager)

	quote, err := repo.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if quote.ApprovalStatus != domain.QuoteApprovalPendingDealerManager {
		t.Errorf("unexpected approvalStatus %s", quote.ApprovalStatus)
	}
	if len(quote.Items) != 1 || quote.Items[0].VehicleID != 1 {
		t.Errorf("unexpected items %v", quote.Items)
	}
}

func TestQuoteRepository_FindMissingQuote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	repo := NewMySQLQuoteRepository(db)

	_, err := repo.FindByID(context.Background(), 999999)
	if _, ok := apperrors.IsNotFoundError(err); !ok {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestQuoteRepository_SubmitCASLosesWhenStatusMoved(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	repo := NewMySQLQuoteRepository(db)
	id := seedQuote(t, repo, domain.RoleDealerManager, domain.QuoteApprovalDraft)

	if err := repo.SubmitCAS(context.Background(), id, domain.QuoteApprovalDraft, domain.QuoteApprovalPendingEVM); err != nil {
		t.Fatalf("first submit should win: %v", err)
	}

	err := repo.SubmitCAS(context.Background(), id, domain.QuoteApprovalDraft, domain.QuoteApprovalPendingEVM)
	if _, ok := apperrors.IsConcurrentModificationError(err); !ok {
		t.Fatalf("expected ConcurrentModificationError, got %v", err)
	}
}

func TestQuoteRepository_RejectCASRecordsReason(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	repo := NewMySQLQuoteRepository(db)
	id := seedQuote(t, repo, domain.RoleDealerStaff, domain.QuoteApprovalPendingDealerManager)

	if err := repo.RejectCAS(context.Background(), id, domain.QuoteApprovalPendingDealerManager, "price too low"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	quote, err := repo.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if quote.ApprovalStatus != domain.QuoteApprovalRejected {
		t.Errorf("expected REJECTED, got %s", quote.ApprovalStatus)
	}
	if quote.RejectedReason == nil || *quote.RejectedReason != "price too low" {
		t.Errorf("expected reason persisted, got %v", quote.RejectedReason)
	}
}

func TestQuoteRepository_ListPendingFiltersCreatorRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	repo := NewMySQLQuoteRepository(db)
	seedQuote(t, repo, domain.RoleDealerStaff, domain.QuoteApprovalPendingDealerManager)
	seedQuote(t, repo, "", domain.QuoteApprovalPendingDealerManager)
	seedQuote(t, repo, domain.RoleDealerManager, domain.QuoteApprovalPendingEVM)

	dealerQueue, err := repo.ListPending(context.Background(), domain.QuoteApprovalPendingDealerManager,
		[]string{string(domain.RoleDealerStaff), ""})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(dealerQueue) != 2 {
		t.Errorf("expected 2 dealer-manager queue entries, got %d", len(dealerQueue))
	}

	evmQueue, err := repo.ListPending(context.Background(), domain.QuoteApprovalPendingEVM,
		[]string{string(domain.RoleDealerManager)})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(evmQueue) != 1 {
		t.Errorf("expected 1 EVM queue entry, got %d", len(evmQueue))
	}
}

func TestQuoteRepository_RecordInventoryCheckRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	repo := NewMySQLQuoteRepository(db)
	id := seedQuote(t, repo, domain.RoleDealerStaff, domain.QuoteApprovalPendingDealerManager)

	check := dto.InventoryCheckResult{
		Sufficient: false,
		Location:   string(domain.LocationDealer),
		Message:    "insufficient stock at DEALER location: vehicle 1: need 2, have 1",
		CheckedAt:  time.Now().UTC(),
	}
	if err := repo.RecordInventoryCheck(context.Background(), id, check, domain.QuoteApprovalInsufficientInventory); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	quote, err := repo.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !quote.InvChecked || quote.InvSufficient {
		t.Errorf("expected checked and insufficient, got checked=%v sufficient=%v", quote.InvChecked, quote.InvSufficient)
	}
	if quote.ApprovalStatus != domain.QuoteApprovalInsufficientInventory {
		t.Errorf("expected INSUFFICIENT_INVENTORY, got %s", quote.ApprovalStatus)
	}
}
