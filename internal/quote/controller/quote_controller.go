package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"evdms/internal/domain"
	"evdms/internal/dto"
	apperrors "evdms/internal/errors"
	"evdms/internal/server/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type QuoteLifecycle interface {
	Create(ctx context.Context, actor domain.Actor, req dto.CreateQuoteRequest) (*domain.Quote, error)
	Submit(ctx context.Context, quoteID uint, actor domain.Actor) (*domain.Quote, error)
	CheckInventory(ctx context.Context, quoteID uint, actor domain.Actor) (*dto.InventoryCheckResult, error)
	Approve(ctx context.Context, quoteID uint, actor domain.Actor, notes string) (*domain.Quote, error)
	Reject(ctx context.Context, quoteID uint, actor domain.Actor, reason string) (*domain.Quote, error)
	PendingQueue(ctx context.Context, actor domain.Actor) ([]domain.Quote, error)
	Get(ctx context.Context, quoteID uint) (*domain.Quote, error)
}

type QuoteController struct {
	useCase QuoteLifecycle
	logger  *zap.Logger
}

func NewQuoteController(useCase QuoteLifecycle, logger *zap.Logger) *QuoteController {
	return &QuoteController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *QuoteController) Create(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		c.writeError(w, traceID, http.StatusUnauthorized, "UNAUTHORIZED", "no authenticated actor")
		return
	}

	var req dto.CreateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	quote, err := c.useCase.Create(r.Context(), actor, req)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusCreated, toQuoteResponse(quote))
}

func (c *QuoteController) Get(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	quoteID, ok := c.quoteID(w, r, traceID)
	if !ok {
		return
	}

	quote, err := c.useCase.Get(r.Context(), quoteID)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, toQuoteResponse(quote))
}

func (c *QuoteController) Submit(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, "submit", func(ctx context.Context, quoteID uint, actor domain.Actor) (*domain.Quote, error) {
		return c.useCase.Submit(ctx, quoteID, actor)
	})
}

func (c *QuoteController) Approve(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, "approve", func(ctx context.Context, quoteID uint, actor domain.Actor) (*domain.Quote, error) {
		var req dto.ApproveQuoteRequest
		if r.Body != nil {
			// Body is optional; notes default to empty.
			_ = json.NewDecoder(r.Body).Decode(&req)
		}
		return c.useCase.Approve(ctx, quoteID, actor, req.Notes)
	})
}

func (c *QuoteController) Reject(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, "reject", func(ctx context.Context, quoteID uint, actor domain.Actor) (*domain.Quote, error) {
		var req dto.RejectQuoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, apperrors.NewValidationError("invalid JSON body", apperrors.ValidationDetail{
				Field:   "body",
				Message: "request body must be valid JSON",
			})
		}
		return c.useCase.Reject(ctx, quoteID, actor, req.Reason)
	})
}

func (c *QuoteController) CheckInventory(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		c.writeError(w, traceID, http.StatusUnauthorized, "UNAUTHORIZED", "no authenticated actor")
		return
	}

	quoteID, ok := c.quoteID(w, r, traceID)
	if !ok {
		return
	}

	result, err := c.useCase.CheckInventory(r.Context(), quoteID, actor)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, result)
}

func (c *QuoteController) ListPending(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		c.writeError(w, traceID, http.StatusUnauthorized, "UNAUTHORIZED", "no authenticated actor")
		return
	}

	quotes, err := c.useCase.PendingQueue(r.Context(), actor)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	responses := make([]dto.QuoteResponse, len(quotes))
	for i := range quotes {
		responses[i] = toQuoteResponse(&quotes[i])
	}

	c.writeJSON(w, http.StatusOK, responses)
}

func (c *QuoteController) transition(
	w http.ResponseWriter,
	r *http.Request,
	name string,
	fn func(ctx context.Context, quoteID uint, actor domain.Actor) (*domain.Quote, error),
) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID), zap.String("transition", name))

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		c.writeError(w, traceID, http.StatusUnauthorized, "UNAUTHORIZED", "no authenticated actor")
		return
	}

	quoteID, ok := c.quoteID(w, r, traceID)
	if !ok {
		return
	}

	quote, err := fn(r.Context(), quoteID, actor)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, toQuoteResponse(quote))
}

func (c *QuoteController) quoteID(w http.ResponseWriter, r *http.Request, traceID string) (uint, bool) {
	idStr := chi.URLParam(r, "quoteId")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || id == 0 {
		c.writeValidationError(w, traceID, "invalid quoteId", apperrors.ValidationDetail{
			Field:   "quoteId",
			Message: "quoteId must be a positive integer",
		})
		return 0, false
	}
	return uint(id), true
}

func (c *QuoteController) handleUseCaseError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return
	}
	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeError(w, traceID, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}
	if _, ok := apperrors.IsForbiddenError(err); ok {
		c.writeError(w, traceID, http.StatusForbidden, "FORBIDDEN", err.Error())
		return
	}
	if _, ok := apperrors.IsRoleNotPermittedError(err); ok {
		c.writeError(w, traceID, http.StatusForbidden, "ROLE_NOT_PERMITTED", err.Error())
		return
	}
	if _, ok := apperrors.IsAlreadySubmittedError(err); ok {
		c.writeError(w, traceID, http.StatusConflict, "ALREADY_SUBMITTED", err.Error())
		return
	}
	if _, ok := apperrors.IsInvalidStateTransitionError(err); ok {
		c.writeError(w, traceID, http.StatusConflict, "INVALID_STATE_TRANSITION", err.Error())
		return
	}
	if _, ok := apperrors.IsConcurrentModificationError(err); ok {
		c.writeError(w, traceID, http.StatusConflict, "CONCURRENT_MODIFICATION", err.Error())
		return
	}
	if _, ok := apperrors.IsConflictError(err); ok {
		c.writeError(w, traceID, http.StatusConflict, "CONFLICT", err.Error())
		return
	}
	if _, ok := apperrors.IsInventoryNotCheckedError(err); ok {
		c.writeError(w, traceID, http.StatusUnprocessableEntity, "INVENTORY_NOT_CHECKED", err.Error())
		return
	}
	if _, ok := apperrors.IsInsufficientInventoryError(err); ok {
		c.writeError(w, traceID, http.StatusUnprocessableEntity, "INSUFFICIENT_INVENTORY", err.Error())
		return
	}
	if _, ok := apperrors.IsInventoryCheckTimeoutError(err); ok {
		c.writeError(w, traceID, http.StatusGatewayTimeout, "INVENTORY_CHECK_TIMEOUT", err.Error())
		return
	}
	if _, ok := apperrors.IsDeadlockError(err); ok {
		c.writeError(w, traceID, http.StatusConflict, "DEADLOCK", err.Error())
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	c.writeError(w, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
}

func toQuoteResponse(quote *domain.Quote) dto.QuoteResponse {
	items := make([]dto.QuoteItemResponse, len(quote.Items))
	for i, item := range quote.Items {
		items[i] = dto.QuoteItemResponse{
			VehicleID: item.VehicleID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}

	return dto.QuoteResponse{
		ID:             quote.ID,
		CustomerID:     quote.CustomerID,
		CreatorRole:    string(quote.EffectiveCreatorRole()),
		OwnerID:        quote.OwnerID,
		Status:         quote.Status,
		ApprovalStatus: quote.ApprovalStatus,
		ApprovedBy:     quote.ApprovedBy,
		RejectedReason: quote.RejectedReason,
		FinalTotal:     quote.FinalTotal,
		Items:          items,
		CreatedAt:      quote.CreatedAt,
	}
}

type errorResponse struct {
	TraceID   string    `json:"traceId"`
	Status    int       `json:"status"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type validationErrorResponse struct {
	TraceID string                       `json:"traceId"`
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *QuoteController) writeError(w http.ResponseWriter, traceID string, statusCode int, code, message string) {
	c.writeJSON(w, statusCode, errorResponse{
		TraceID:   traceID,
		Status:    statusCode,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

func (c *QuoteController) writeValidationError(w http.ResponseWriter, traceID, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		TraceID: traceID,
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *QuoteController) writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
