package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"evdms/internal/commons"
	"evdms/internal/config"
	"evdms/internal/infrastructure/logger"
	"evdms/internal/infrastructure/mysql"
	"evdms/internal/order"
	"evdms/internal/payment"
	"evdms/internal/quote"
	"evdms/internal/server"

	"go.uber.org/zap"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	quoteCtrl := quote.NewModule(db, cfg, zapLogger)
	orderCtrl := order.NewModule(db, cfg, zapLogger)
	paymentCtrl := payment.NewModule(db, cfg, zapLogger)

	router := server.NewRouter(quoteCtrl, orderCtrl, paymentCtrl, cfg.Auth.JWTSecret, zapLogger)

	srv := server.New(cfg.Server.Port, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}

// loadConfig prefers a mounted yaml file when CONFIG_FILE is set and
// falls back to environment variables.
func loadConfig() (*config.Config, error) {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		return commons.LoadConfig(path)
	}
	return config.Load()
}
