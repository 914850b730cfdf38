package quote

import (
	"database/sql"

	"evdms/internal/config"
	invrepo "evdms/internal/inventory/repository"
	invservice "evdms/internal/inventory/service"
	"evdms/internal/quote/controller"
	"evdms/internal/quote/repository"
	"evdms/internal/quote/usecase"

	"go.uber.org/zap"
)

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger) *controller.QuoteController {
	quoteRepo := repository.NewMySQLQuoteRepository(db)
	stockRepo := invrepo.NewMySQLStockRepository(db)
	gate := invservice.NewGate(stockRepo, logger, cfg.Inventory.CheckTimeout)

	lifecycle := usecase.NewLifecycle(db, quoteRepo, gate, stockRepo, logger)

	return controller.NewQuoteController(lifecycle, logger)
}
