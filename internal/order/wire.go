package order

import (
	"database/sql"

	"evdms/internal/config"
	invrepo "evdms/internal/inventory/repository"
	"evdms/internal/order/controller"
	orderrepo "evdms/internal/order/repository"
	"evdms/internal/order/usecase"
	paymentrepo "evdms/internal/payment/repository"
	paymentservice "evdms/internal/payment/service"
	quoterepo "evdms/internal/quote/repository"

	"go.uber.org/zap"
)

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger) *controller.OrderController {
	orderRepo := orderrepo.NewMySQLOrderRepository(db)
	quoteRepo := quoterepo.NewMySQLQuoteRepository(db)
	stockRepo := invrepo.NewMySQLStockRepository(db)
	paymentRepo := paymentrepo.NewMySQLPaymentRepository(db)

	lifecycle := usecase.NewLifecycle(
		db,
		orderRepo,
		quoteRepo,
		stockRepo,
		logger,
		cfg.Order.MaxRetryAttempts,
	)

	ledger := paymentservice.NewLedger(paymentRepo, orderRepo, logger)

	return controller.NewOrderController(lifecycle, ledger, logger)
}
