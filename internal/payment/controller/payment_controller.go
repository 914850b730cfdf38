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

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PaymentLedger interface {
	RecordPayment(ctx context.Context, req dto.RecordPaymentRequest) (*domain.Payment, error)
	OrderLedger(ctx context.Context, orderID uint) (*dto.LedgerResponse, error)
	Payments(ctx context.Context, orderID uint) ([]domain.Payment, error)
}

type InstallmentPlanManager interface {
	Preview(ctx context.Context, req dto.PreviewPlanRequest) (*dto.PlanPreviewResponse, error)
	CreatePlan(ctx context.Context, req dto.CreatePlanRequest) (*domain.InstallmentPlan, error)
	GetPlan(ctx context.Context, planID uint) (*domain.InstallmentPlan, error)
	PayInstallment(ctx context.Context, planID uint, installmentNumber int) (*domain.InstallmentPlan, error)
}

type PaymentController struct {
	ledger      PaymentLedger
	planManager InstallmentPlanManager
	logger      *zap.Logger
}

func NewPaymentController(ledger PaymentLedger, planManager InstallmentPlanManager, logger *zap.Logger) *PaymentController {
	return &PaymentController{
		ledger:      ledger,
		planManager: planManager,
		logger:      logger,
	}
}

func (c *PaymentController) RecordPayment(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	payment, err := c.ledger.RecordPayment(r.Context(), req)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusCreated, toPaymentResponse(payment))
}

func (c *PaymentController) OrderLedger(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := c.pathID(w, r, traceID, "orderId")
	if !ok {
		return
	}

	summary, err := c.ledger.OrderLedger(r.Context(), orderID)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, summary)
}

func (c *PaymentController) ListPayments(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := c.pathID(w, r, traceID, "orderId")
	if !ok {
		return
	}

	payments, err := c.ledger.Payments(r.Context(), orderID)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	responses := make([]dto.PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = toPaymentResponse(&payments[i])
	}

	c.writeJSON(w, http.StatusOK, responses)
}

func (c *PaymentController) PreviewPlan(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.PreviewPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	preview, err := c.planManager.Preview(r.Context(), req)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, preview)
}

func (c *PaymentController) CreatePlan(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	plan, err := c.planManager.CreatePlan(r.Context(), req)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusCreated, toPlanResponse(plan))
}

func (c *PaymentController) GetPlan(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	planID, ok := c.pathID(w, r, traceID, "planId")
	if !ok {
		return
	}

	plan, err := c.planManager.GetPlan(r.Context(), planID)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, toPlanResponse(plan))
}

func (c *PaymentController) PayInstallment(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	planID, ok := c.pathID(w, r, traceID, "planId")
	if !ok {
		return
	}

	numberStr := chi.URLParam(r, "installmentNumber")
	number, err := strconv.Atoi(numberStr)
	if err != nil || number <= 0 {
		c.writeValidationError(w, traceID, "invalid installmentNumber", apperrors.ValidationDetail{
			Field:   "installmentNumber",
			Message: "installmentNumber must be a positive integer",
		})
		return
	}

	plan, err := c.planManager.PayInstallment(r.Context(), planID, number)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, toPlanResponse(plan))
}

func (c *PaymentController) pathID(w http.ResponseWriter, r *http.Request, traceID, param string) (uint, bool) {
	idStr := chi.URLParam(r, param)
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || id == 0 {
		c.writeValidationError(w, traceID, "invalid "+param, apperrors.ValidationDetail{
			Field:   param,
			Message: param + " must be a positive integer",
		})
		return 0, false
	}
	return uint(id), true
}

func (c *PaymentController) handleUseCaseError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return
	}
	if iie, ok := apperrors.IsInvalidInstallmentInputError(err); ok {
		c.writeValidationError(w, traceID, "validation failed", apperrors.ValidationDetail{
			Field:   iie.Field,
			Message: iie.Message,
		})
		return
	}
	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeError(w, traceID, http.StatusNotFound, "NOT_FOUND", err.Error())
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

	logger.Error("unexpected error", zap.Error(err))
	c.writeError(w, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
}

func toPaymentResponse(payment *domain.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:      payment.ID,
		OrderID: payment.OrderID,
		Amount:  payment.Amount,
		Method:  payment.Method,
		Status:  payment.Status,
	}
}

func toPlanResponse(plan *domain.InstallmentPlan) dto.PlanResponse {
	installments := make([]dto.InstallmentResponse, len(plan.Installments))
	for i, inst := range plan.Installments {
		installments[i] = dto.InstallmentResponse{
			InstallmentNumber: inst.InstallmentNumber,
			DueDate:           inst.DueDate,
			Amount:            inst.Amount,
			Status:            inst.Status,
			PaidAt:            inst.PaidAt,
		}
	}

	return dto.PlanResponse{
		ID:             plan.ID,
		PaymentID:      plan.PaymentID,
		Principal:      plan.Principal,
		VATAmount:      plan.VATAmount,
		InterestAmount: plan.InterestAmount,
		TotalPayable:   plan.TotalPayable,
		MonthlyPayment: plan.MonthlyPayment,
		Months:         plan.Months,
		Installments:   installments,
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

func (c *PaymentController) writeError(w http.ResponseWriter, traceID string, statusCode int, code, message string) {
	c.writeJSON(w, statusCode, errorResponse{
		TraceID:   traceID,
		Status:    statusCode,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

func (c *PaymentController) writeValidationError(w http.ResponseWriter, traceID, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		TraceID: traceID,
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *PaymentController) writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
