package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/jmukasa/savings-challenge-engine/internal/config"
	"github.com/jmukasa/savings-challenge-engine/internal/events"
	eventskafka "github.com/jmukasa/savings-challenge-engine/internal/events/kafka"
	"github.com/jmukasa/savings-challenge-engine/internal/handler"
	"github.com/jmukasa/savings-challenge-engine/internal/logging"
	"github.com/jmukasa/savings-challenge-engine/internal/middleware"
	"github.com/jmukasa/savings-challenge-engine/internal/repository"
	"github.com/jmukasa/savings-challenge-engine/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("savings-api", cfg.LogLevel, cfg.AppEnv)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	})
	cancel()
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := eventskafka.NewPublisher(cfg.KafkaBrokers)
		defer kp.Close()
		publisher = kp
		slog.Info("kafka publisher enabled", "brokers", cfg.KafkaBrokers)
	}

	entries := repository.NewEntryRepository(db)
	investments := repository.NewInvestmentRepository(db)
	requests := repository.NewRequestRepository(db)

	recorder := service.NewRecorder(entries, publisher)
	investmentSvc := service.NewInvestmentService(investments, recorder, publisher, cfg.SweepConcurrency)
	balanceSvc := service.NewBalanceService(entries, investments, requests)
	approvalSvc := service.NewApprovalService(requests, recorder, balanceSvc, investmentSvc)

	ledgerHandler := handler.NewLedgerHandler(recorder, balanceSvc)
	investmentHandler := handler.NewInvestmentHandler(investmentSvc)
	requestHandler := handler.NewRequestHandler(approvalSvc)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handleHealth)

	mux.HandleFunc("POST /api/v1/accounts/{accountID}/deposits", ledgerHandler.CreateDeposit)
	mux.HandleFunc("GET /api/v1/accounts/{accountID}/statement", ledgerHandler.GetStatement)
	mux.HandleFunc("GET /api/v1/accounts/{accountID}/entries", ledgerHandler.ListEntries)

	mux.HandleFunc("POST /api/v1/accounts/{accountID}/investments", investmentHandler.Open)
	mux.HandleFunc("GET /api/v1/accounts/{accountID}/investments", investmentHandler.List)
	mux.HandleFunc("GET /api/v1/investments/{investmentID}", investmentHandler.Get)
	mux.HandleFunc("POST /api/v1/investments/{investmentID}/check-maturity", investmentHandler.CheckMaturity)

	mux.HandleFunc("POST /api/v1/accounts/{accountID}/requests", requestHandler.Submit)
	mux.HandleFunc("POST /api/v1/requests/{requestID}/approve", requestHandler.Approve)
	mux.HandleFunc("POST /api/v1/requests/{requestID}/reject", requestHandler.Reject)

	var root http.Handler = mux
	root = middleware.Recovery(root)
	root = middleware.Logging(root)
	root = middleware.RequestID(root)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
		slog.Error("failed to write health response", "error", err)
	}
}
