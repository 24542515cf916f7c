package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tiendazen/payment-service/internal/application"
	"github.com/tiendazen/payment-service/internal/application/services"
	"github.com/tiendazen/payment-service/internal/config"
	"github.com/tiendazen/payment-service/internal/infrastructure/gateway"
	"github.com/tiendazen/payment-service/internal/infrastructure/persistence/postgres"
	"github.com/tiendazen/payment-service/internal/interfaces/rest/handlers"
	"github.com/tiendazen/payment-service/internal/interfaces/rest/middleware"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting payment service",
		"port", cfg.Server.Port,
		"log_level", cfg.Logger.Level,
	)

	ctx := context.Background()
	db, err := postgres.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	orderRepo := postgres.NewOrderRepository(db)

	var gatewayClient application.GatewayClient
	if cfg.Gateway.Simulated() {
		// Never silent: a production deployment without credentials
		// would otherwise confirm payments that never happened.
		logger.Warn("gateway credentials absent, running in SIMULATED mode",
			"env", cfg.Primary.Env,
		)
		gatewayClient = gateway.NewSimulatedClient(cfg.Commerce, logger)
	} else {
		gatewayClient = gateway.NewGatewayClient(cfg.Gateway, cfg.Commerce)
	}

	checkoutService := services.NewCheckoutService(orderRepo, gatewayClient, cfg.Commerce, logger)
	confirmationService := services.NewConfirmationService(orderRepo, gatewayClient, cfg.Gateway.SecretKey, logger)

	h := handlers.NewHandlers(
		checkoutService,
		confirmationService,
		cfg.Commerce.StoreBaseURL,
		logger,
	)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	handler := middleware.Recovery(logger)(mux)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Timeout(cfg.Server.ReadTimeout)(handler)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
