package payment

import (
	"database/sql"

	"evdms/internal/config"
	orderrepo "evdms/internal/order/repository"
	"evdms/internal/payment/controller"
	"evdms/internal/payment/repository"
	"evdms/internal/payment/service"

	"go.uber.org/zap"
)

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger) *controller.PaymentController {
	paymentRepo := repository.NewMySQLPaymentRepository(db)
	planRepo := repository.NewMySQLPlanRepository(db)
	orderRepo := orderrepo.NewMySQLOrderRepository(db)

	ledger := service.NewLedger(paymentRepo, orderRepo, logger)
	planManager := service.NewPlanManager(
		planRepo,
		paymentRepo,
		logger,
		cfg.Installment.VATPercent,
		cfg.Installment.AllowedMonths,
	)

	return controller.NewPaymentController(ledger, planManager, logger)
}
