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

type OrderLifecycle interface {
	Get(ctx context.Context, orderID uint) (*domain.Order, error)
	CreateFromQuote(ctx context.Context, actor domain.Actor, req dto.CreateOrderRequest) (*domain.Order, error)
	Approve(ctx context.Context, orderID uint, actor domain.Actor) (*domain.Order, error)
	Reject(ctx context.Context, orderID uint, actor domain.Actor, reason string) (*domain.Order, error)
	Deliver(ctx context.Context, orderID uint, actor domain.Actor) (*domain.Order, error)
	Cancel(ctx context.Context, orderID uint, actor domain.Actor) (*domain.Order, error)
}

type PaymentLedger interface {
	PaidAmount(ctx context.Context, orderID uint) (float64, error)
}

type OrderController struct {
	useCase OrderLifecycle
	ledger  PaymentLedger
	logger  *zap.Logger
}

func NewOrderController(useCase OrderLifecycle, ledger PaymentLedger, logger *zap.Logger) *OrderController {
	return &OrderController{
		useCase: useCase,
		ledger:  ledger,
		logger:  logger,
	}
}

func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		c.writeError(w, traceID, http.StatusUnauthorized, "UNAUTHORIZED", "no authenticated actor")
		return
	}

	var req dto.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}
	if req.QuoteID == 0 {
		c.writeValidationError(w, traceID, "validation failed", apperrors.ValidationDetail{
			Field:   "quoteId",
			Message: "quoteId is required",
		})
		return
	}

	order, err := c.useCase.CreateFromQuote(r.Context(), actor, req)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	c.writeOrder(w, r.Context(), http.StatusCreated, order, traceID, logger)
}

func (c *OrderController) Get(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := c.orderID(w, r, traceID)
	if !ok {
		return
	}

	order, err := c.useCase.Get(r.Context(), orderID)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	c.writeOrder(w, r.Context(), http.StatusOK, order, traceID, logger)
}

func (c *OrderController) Approve(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, "approve", func(ctx context.Context, orderID uint, actor domain.Actor) (*domain.Order, error) {
		return c.useCase.Approve(ctx, orderID, actor)
	})
}

func (c *OrderController) Reject(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, "reject", func(ctx context.Context, orderID uint, actor domain.Actor) (*domain.Order, error) {
		var req dto.RejectOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, apperrors.NewValidationError("invalid JSON body", apperrors.ValidationDetail{
				Field:   "body",
				Message: "request body must be valid JSON",
			})
		}
		return c.useCase.Reject(ctx, orderID, actor, req.Reason)
	})
}

func (c *OrderController) Deliver(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, "deliver", func(ctx context.Context, orderID uint, actor domain.Actor) (*domain.Order, error) {
		return c.useCase.Deliver(ctx, orderID, actor)
	})
}

func (c *OrderController) Cancel(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, "cancel", func(ctx context.Context, orderID uint, actor domain.Actor) (*domain.Order, error) {
		return c.useCase.Cancel(ctx, orderID, actor)
	})
}

func (c *OrderController) transition(
	w http.ResponseWriter,
	r *http.Request,
	name string,
	fn func(ctx context.Context, orderID uint, actor domain.Actor) (*domain.Order, error),
) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID), zap.String("transition", name))

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		c.writeError(w, traceID, http.StatusUnauthorized, "UNAUTHORIZED", "no authenticated actor")
		return
	}

	orderID, ok := c.orderID(w, r, traceID)
	if !ok {
		return
	}

	order, err := fn(r.Context(), orderID, actor)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	c.writeOrder(w, r.Context(), http.StatusOK, order, traceID, logger)
}

func (c *OrderController) orderID(w http.ResponseWriter, r *http.Request, traceID string) (uint, bool) {
	idStr := chi.URLParam(r, "orderId")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || id == 0 {
		c.writeValidationError(w, traceID, "invalid orderId", apperrors.ValidationDetail{
			Field:   "orderId",
			Message: "orderId must be a positive integer",
		})
		return 0, false
	}
	return uint(id), true
}

func (c *OrderController) writeOrder(w http.ResponseWriter, ctx context.Context, statusCode int, order *domain.Order, traceID string, logger *zap.Logger) {
	paid, err := c.ledger.PaidAmount(ctx, order.ID)
	if err != nil {
		logger.Error("failed to read paid amount", zap.Uint("orderId", order.ID), zap.Error(err))
		c.writeError(w, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
		return
	}

	c.writeJSON(w, statusCode, dto.OrderResponse{
		ID:              order.ID,
		QuoteID:         order.QuoteID,
		CustomerID:      order.CustomerID,
		Track:           string(order.EffectiveTrack()),
		Status:          order.Status,
		ApprovalStatus:  order.ApprovalStatus,
		TotalAmount:     order.TotalAmount,
		PaidAmount:      paid,
		RemainingAmount: domain.RemainingAmount(order.TotalAmount, paid),
		CreatedAt:       order.CreatedAt,
	})
}

func (c *OrderController) handleUseCaseError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return
	}
	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeError(w, traceID, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}
	if _, ok := apperrors.IsRoleNotPermittedError(err); ok {
		c.writeError(w, traceID, http.StatusForbidden, "ROLE_NOT_PERMITTED", err.Error())
		return
	}
	if _, ok := apperrors.IsForbiddenError(err); ok {
		c.writeError(w, traceID, http.StatusForbidden, "FORBIDDEN", err.Error())
		return
	}
	if _, ok := apperrors.IsQuoteNotReadyError(err); ok {
		c.writeError(w, traceID, http.StatusUnprocessableEntity, "QUOTE_NOT_READY", err.Error())
		return
	}
	if _, ok := apperrors.IsCustomerRequiredError(err); ok {
		c.writeError(w, traceID, http.StatusUnprocessableEntity, "CUSTOMER_REQUIRED", err.Error())
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
	if _, ok := apperrors.IsDeadlockError(err); ok {
		c.writeError(w, traceID, http.StatusConflict, "DEADLOCK", err.Error())
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	c.writeError(w, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
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

func (c *OrderController) writeError(w http.ResponseWriter, traceID string, statusCode int, code, message string) {
	c.writeJSON(w, statusCode, errorResponse{
		TraceID:   traceID,
		Status:    statusCode,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

func (c *OrderController) writeValidationError(w http.ResponseWriter, traceID, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		TraceID: traceID,
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *OrderController) writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
