package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/vaish4596/banking-app/internal/config"
	"github.com/vaish4596/banking-app/internal/events"
	kafkaevents "github.com/vaish4596/banking-app/internal/events/kafka"
	"github.com/vaish4596/banking-app/internal/gateway"
	"github.com/vaish4596/banking-app/internal/handler"
	"github.com/vaish4596/banking-app/internal/logging"
	"github.com/vaish4596/banking-app/internal/middleware"
	"github.com/vaish4596/banking-app/internal/repository"
	"github.com/vaish4596/banking-app/internal/service"
	"github.com/vaish4596/banking-app/internal/service/billpay"
	"github.com/vaish4596/banking-app/internal/service/movement"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("banking-api", cfg.LogLevel, cfg.AppEnv)

	ctx := context.Background()
	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := kafkaevents.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kp.Close()
		publisher = kp
		slog.Info("kafka publisher enabled", "topic", cfg.KafkaTopic)
	}

	srv := buildServer(cfg, db, publisher)

	go func() {
		slog.Info("server started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func buildServer(cfg *config.Config, db *sql.DB, publisher events.Publisher) *http.Server {
	users := repository.NewUserRepository(db)
	accounts := repository.NewAccountRepository(db)
	ledger := repository.NewLedgerRepository(db)
	bills := repository.NewBillRepository(db)
	payees := repository.NewPayeeRepository(db)

	var gw gateway.Gateway = gateway.NewRandomGateway(cfg.GatewaySuccessRate)
	if cfg.GatewayURL != "" {
		gw = gateway.NewHTTPGateway(cfg.GatewayURL)
		slog.Info("http gateway enabled", "url", cfg.GatewayURL)
	}

	accountSvc := service.NewAccountService(users, accounts, ledger)
	movementSvc := movement.NewService(accounts, ledger, publisher, db)
	billpaySvc := billpay.NewService(bills, accounts, ledger, gw, db)

	jwtExpiry := time.Duration(cfg.JWTExpiryMin) * time.Minute
	authHandler := handler.NewAuthHandler(users, accountSvc, cfg.JWTSecret, jwtExpiry)
	accountHandler := handler.NewAccountHandler(accountSvc)
	movementHandler := handler.NewMovementHandler(movementSvc, accountSvc)
	billHandler := handler.NewBillHandler(bills, payees, billpaySvc)
	payeeHandler := handler.NewPayeeHandler(payees)
	healthHandler := handler.NewHealthHandler(db)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)
	mux.HandleFunc("POST /api/v1/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	authed := middleware.Auth(cfg.JWTSecret)
	mux.Handle("GET /api/v1/accounts", authed(http.HandlerFunc(accountHandler.List)))
	mux.Handle("GET /api/v1/accounts/{id}", authed(http.HandlerFunc(accountHandler.Get)))
	mux.Handle("GET /api/v1/accounts/{id}/ledger", authed(http.HandlerFunc(accountHandler.Ledger)))
	mux.Handle("GET /api/v1/entries/{reference}", authed(http.HandlerFunc(accountHandler.Entry)))
	mux.Handle("POST /api/v1/accounts/{id}/deposit", authed(http.HandlerFunc(movementHandler.Deposit)))
	mux.Handle("POST /api/v1/accounts/{id}/withdraw", authed(http.HandlerFunc(movementHandler.Withdraw)))
	mux.Handle("POST /api/v1/transfers", authed(http.HandlerFunc(movementHandler.Transfer)))
	mux.Handle("GET /api/v1/payees", authed(http.HandlerFunc(payeeHandler.List)))
	mux.Handle("POST /api/v1/payees", authed(http.HandlerFunc(payeeHandler.Create)))
	mux.Handle("GET /api/v1/bills", authed(http.HandlerFunc(billHandler.List)))
	mux.Handle("POST /api/v1/bills", authed(http.HandlerFunc(billHandler.Create)))
	mux.Handle("POST /api/v1/bills/{id}/pay", authed(http.HandlerFunc(billHandler.Pay)))

	root := middleware.Tracing(middleware.Logging(middleware.Recovery(mux)))

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
