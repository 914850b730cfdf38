package usecase

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"evdms/internal/domain"
	"evdms/internal/dto"
	apperrors "evdms/internal/errors"
	"evdms/internal/routing"

	"go.uber.org/zap"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type QuoteRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.Quote, error)
	Create(ctx context.Context, quote *domain.Quote) (uint, error)
	ListPending(ctx context.Context, pendingStatus string, creatorRoles []string) ([]domain.Quote, error)
	SubmitCAS(ctx context.Context, id uint, expected, next string) error
	ApproveCAS(ctx context.Context, tx *sql.Tx, id uint, expected string, approvedBy uint, notes *string) error
	RejectCAS(ctx context.Context, id uint, expected, reason string) error
	RecordInventoryCheck(ctx context.Context, id uint, check dto.InventoryCheckResult, approvalStatus string) error
	RecordInventoryCheckTx(ctx context.Context, tx *sql.Tx, id uint, check dto.InventoryCheckResult, approvalStatus string) error
}

type InventoryGate interface {
	CheckSufficiency(ctx context.Context, entity string, entityID uint, location domain.StockLocation, lines []dto.StockLine) (*dto.InventoryCheckResult, error)
	SufficientForUpdate(ctx context.Context, tx *sql.Tx, location domain.StockLocation, lines []dto.StockLine) (bool, string, error)
}

type StockReserver interface {
	Reserve(ctx context.Context, tx *sql.Tx, location domain.StockLocation, lines []dto.StockLine) error
}

// Lifecycle drives a quote from creation through the role-routed approval
// states. Every transition is a single request against persisted state;
// approval-status flips are guarded updates so concurrent approvers cannot
// both win.
type Lifecycle struct {
	db        TransactionManager
	quoteRepo QuoteRepository
	gate      InventoryGate
	stockRepo StockReserver
	logger    *zap.Logger
	txTimeout time.Duration
}

func NewLifecycle(
	db TransactionManager,
	quoteRepo QuoteRepository,
	gate InventoryGate,
	stockRepo StockReserver,
	logger *zap.Logger,
) *Lifecycle {
	return &Lifecycle{
		db:        db,
		quoteRepo: quoteRepo,
		gate:      gate,
		stockRepo: stockRepo,
		logger:    logger,
		txTimeout: 5 * time.Second,
	}
}

// Create builds a new quote for the acting user. Staff-created quotes are
// submitted into the dealer-manager queue immediately; manager-created
// quotes stay in DRAFT until an explicit Submit routes them to the EVM.
func (l *Lifecycle) Create(ctx context.Context, actor domain.Actor, req dto.CreateQuoteRequest) (*domain.Quote, error) {
	if !routing.CapabilitiesFor(actor.Role).SubmitQuote {
		return nil, apperrors.NewRoleNotPermittedError("quote", 0, "create", string(actor.Role))
	}

	if len(req.Items) == 0 {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "items",
			Message: "items must not be empty",
		})
	}
	for _, item := range req.Items {
		if item.VehicleID <= 0 || item.Quantity <= 0 || item.UnitPrice < 0 {
			return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
				Field:   "items",
				Message: "each item needs a vehicleId, a positive quantity and a non-negative unitPrice",
			})
		}
	}

	quote := &domain.Quote{
		CustomerID:     req.CustomerID,
		CreatorRole:    actor.Role,
		OwnerID:        actor.ID,
		Status:         domain.QuoteStatusDraft,
		ApprovalStatus: domain.QuoteApprovalDraft,
	}
	for _, item := range req.Items {
		quote.Items = append(quote.Items, domain.QuoteItem{
			VehicleID: item.VehicleID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	quote.FinalTotal = quote.TotalAmount()

	if actor.Role == domain.RoleDealerStaff {
		quote.ApprovalStatus = domain.QuoteApprovalPendingDealerManager
	}

	id, err := l.quoteRepo.Create(ctx, quote)
	if err != nil {
		return nil, err
	}

	l.logger.Info("quote created",
		zap.Uint("quoteId", id),
		zap.String("creatorRole", string(actor.Role)),
		zap.String("approvalStatus", quote.ApprovalStatus))

	return l.quoteRepo.FindByID(ctx, id)
}

// Get loads one quote with its items.
func (l *Lifecycle) Get(ctx context.Context, quoteID uint) (*domain.Quote, error) {
	return l.quoteRepo.FindByID(ctx, quoteID)
}

// Submit routes a DRAFT quote into its pending queue. Manager-created
// quotes go to the EVM; a legacy staff draft lands back in the
// dealer-manager queue, the deterministic default track.
func (l *Lifecycle) Submit(ctx context.Context, quoteID uint, actor domain.Actor) (*domain.Quote, error) {
	quote, err := l.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	if quote.OwnerID != actor.ID {
		return nil, apperrors.NewForbiddenError("only the quote owner may submit it")
	}

	if quote.ApprovalStatus == domain.QuoteApprovalPendingEVM {
		return nil, apperrors.NewAlreadySubmittedError(quoteID)
	}
	if quote.ApprovalStatus != domain.QuoteApprovalDraft || quote.Status != domain.QuoteStatusDraft {
		return nil, apperrors.NewInvalidStateTransitionError("quote", quoteID, "submitted", quote.Status, quote.ApprovalStatus)
	}

	decision := routing.Route(quote.EffectiveCreatorRole(), routing.KindQuote)
	target := domain.QuoteApprovalPendingDealerManager
	if decision.Track == domain.TrackManufacturer {
		target = domain.QuoteApprovalPendingEVM
	}

	if err := l.quoteRepo.SubmitCAS(ctx, quoteID, domain.QuoteApprovalDraft, target); err != nil {
		return nil, err
	}

	l.logger.Info("quote submitted",
		zap.Uint("quoteId", quoteID),
		zap.String("track", string(decision.Track)),
		zap.String("approvalStatus", target))

	return l.quoteRepo.FindByID(ctx, quoteID)
}

// CheckInventory runs the advisory stock check at the location the acting
// approver is responsible for. It records the snapshot on the quote and
// moves a pending quote into INSUFFICIENT_INVENTORY on a failed check, or
// restores the pending status when a re-check passes again.
func (l *Lifecycle) CheckInventory(ctx context.Context, quoteID uint, actor domain.Actor) (*dto.InventoryCheckResult, error) {
	if !routing.CapabilitiesFor(actor.Role).CheckInventory {
		return nil, apperrors.NewRoleNotPermittedError("quote", quoteID, "inventory-check", string(actor.Role))
	}

	quote, err := l.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	if quote.IsApprovalTerminal() {
		return nil, apperrors.NewInvalidStateTransitionError("quote", quoteID, "inventory-checked", quote.Status, quote.ApprovalStatus)
	}

	location := actor.Role.CheckLocation()
	result, err := l.gate.CheckSufficiency(ctx, "quote", quoteID, location, stockLines(quote))
	if err != nil {
		return nil, err
	}

	next := quote.ApprovalStatus
	if quote.IsPendingApproval() && !result.Sufficient {
		next = domain.QuoteApprovalInsufficientInventory
	}
	if quote.ApprovalStatus == domain.QuoteApprovalInsufficientInventory && result.Sufficient {
		next = quote.PendingApprovalStatus()
	}

	if err := l.quoteRepo.RecordInventoryCheck(ctx, quoteID, *result, next); err != nil {
		return nil, err
	}

	return result, nil
}

// Approve commits an approval. The recorded advisory check must exist and
// be sufficient; sufficiency is then re-verified under row locks inside
// the approval transaction, stock is reserved, and the approval status is
// flipped with a guarded update.
func (l *Lifecycle) Approve(ctx context.Context, quoteID uint, actor domain.Actor, notes string) (*domain.Quote, error) {
	quote, err := l.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	if quote.ApprovalStatus == domain.QuoteApprovalInsufficientInventory {
		return nil, apperrors.NewInsufficientInventoryError("quote", quoteID, string(actor.Role.CheckLocation()), invMessage(quote))
	}
	if !quote.IsPendingApproval() {
		return nil, apperrors.NewInvalidStateTransitionError("quote", quoteID, "approved", quote.Status, quote.ApprovalStatus)
	}

	if _, err := routing.AuthorizeDecision(quote.EffectiveCreatorRole(), actor, routing.KindQuote, quoteID, "approve"); err != nil {
		return nil, err
	}

	if !quote.InvChecked {
		return nil, apperrors.NewInventoryNotCheckedError("quote", quoteID)
	}
	if !quote.InvSufficient {
		return nil, apperrors.NewInsufficientInventoryError("quote", quoteID, string(actor.Role.CheckLocation()), invMessage(quote))
	}

	txCtx, cancel := context.WithTimeout(ctx, l.txTimeout)
	defer cancel()

	tx, err := l.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		l.logger.Error("failed to begin approval transaction", zap.Uint("quoteId", quoteID), zap.Error(err))
		return nil, err
	}
	// Rollback is a no-op once committed.
	defer tx.Rollback()

	location := actor.Role.CheckLocation()
	lines := stockLines(quote)

	// Advisory snapshots go stale; re-verify at commit time.
	sufficient, message, err := l.gate.SufficientForUpdate(txCtx, tx, location, lines)
	if err != nil {
		return nil, err
	}
	if !sufficient {
		check := dto.InventoryCheckResult{
			Sufficient: false,
			Location:   string(location),
			Message:    message,
			CheckedAt:  time.Now().UTC(),
		}
		if err := l.quoteRepo.RecordInventoryCheckTx(txCtx, tx, quoteID, check, domain.QuoteApprovalInsufficientInventory); err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		l.logger.Warn("approval blocked by commit-time stock re-check",
			zap.Uint("quoteId", quoteID), zap.String("location", string(location)))
		return nil, apperrors.NewInsufficientInventoryError("quote", quoteID, string(location), message)
	}

	if err := l.stockRepo.Reserve(txCtx, tx, location, lines); err != nil {
		return nil, err
	}

	var notesPtr *string
	if trimmed := strings.TrimSpace(notes); trimmed != "" {
		notesPtr = &trimmed
	}

	if err := l.quoteRepo.ApproveCAS(txCtx, tx, quoteID, quote.ApprovalStatus, actor.ID, notesPtr); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		l.logger.Error("failed to commit approval", zap.Uint("quoteId", quoteID), zap.Error(err))
		return nil, err
	}

	l.logger.Info("quote approved",
		zap.Uint("quoteId", quoteID),
		zap.Uint("approverId", actor.ID),
		zap.String("approverRole", string(actor.Role)))

	return l.quoteRepo.FindByID(ctx, quoteID)
}

// Reject terminates a pending (or inventory-blocked) quote. The reason is
// mandatory and persisted verbatim.
func (l *Lifecycle) Reject(ctx context.Context, quoteID uint, actor domain.Actor, reason string) (*domain.Quote, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "reason",
			Message: "rejection reason is required",
		})
	}

	quote, err := l.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	if !quote.IsPendingApproval() && quote.ApprovalStatus != domain.QuoteApprovalInsufficientInventory {
		return nil, apperrors.NewInvalidStateTransitionError("quote", quoteID, "rejected", quote.Status, quote.ApprovalStatus)
	}

	if _, err := routing.AuthorizeDecision(quote.EffectiveCreatorRole(), actor, routing.KindQuote, quoteID, "reject"); err != nil {
		return nil, err
	}

	if err := l.quoteRepo.RejectCAS(ctx, quoteID, quote.ApprovalStatus, reason); err != nil {
		return nil, err
	}

	l.logger.Info("quote rejected",
		zap.Uint("quoteId", quoteID),
		zap.Uint("approverId", actor.ID),
		zap.String("reason", reason))

	return l.quoteRepo.FindByID(ctx, quoteID)
}

// PendingQueue lists the quotes awaiting the actor's decision. Dealer
// managers only ever see staff-created quotes; the EVM queue only ever
// holds dealer-manager quotes. Legacy quotes without a creator role are
// staff-track and appear in the dealer-manager queue.
func (l *Lifecycle) PendingQueue(ctx context.Context, actor domain.Actor) ([]domain.Quote, error) {
	switch {
	case actor.Role == domain.RoleDealerManager:
		return l.quoteRepo.ListPending(ctx, domain.QuoteApprovalPendingDealerManager,
			[]string{string(domain.RoleDealerStaff), ""})
	case actor.Role.IsManufacturerSide():
		return l.quoteRepo.ListPending(ctx, domain.QuoteApprovalPendingEVM,
			[]string{string(domain.RoleDealerManager)})
	default:
		return nil, apperrors.NewRoleNotPermittedError("quote", 0, "list pending", string(actor.Role))
	}
}

func stockLines(quote *domain.Quote) []dto.StockLine {
	lines := make([]dto.StockLine, len(quote.Items))
	for i, item := range quote.Items {
		lines[i] = dto.StockLine{VehicleID: item.VehicleID, Quantity: item.Quantity}
	}
	return lines
}

func invMessage(quote *domain.Quote) string {
	if quote.InvMessage != nil {
		return *quote.InvMessage
	}
	return "inventory check last returned insufficient stock"
}
