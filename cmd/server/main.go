package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	"github.com/Simplici0/propostas-ti/internal/config"
	"github.com/Simplici0/propostas-ti/internal/db"
	"github.com/Simplici0/propostas-ti/internal/migrations"
	"github.com/Simplici0/propostas-ti/internal/observability"
	"github.com/Simplici0/propostas-ti/internal/quote"
	"github.com/Simplici0/propostas-ti/internal/seed"
	"github.com/Simplici0/propostas-ti/internal/store"
)

func main() {
	cfg := config.Load()

	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	for _, warning := range cfg.Warnings() {
		logger.Warn("configuration warning", zap.String("warning", warning))
	}
	logger.Info("configuration loaded",
		zap.String("app_env", cfg.AppEnv),
		zap.String("db_path", cfg.DBPath),
		zap.String("port", cfg.Port),
		zap.Float64("labor_markup", cfg.LaborMarkup),
		zap.Float64("printer_monthly_volume", cfg.PrinterMonthlyVolume),
		zap.Float64("energy_tariff", cfg.EnergyTariff),
	)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	ctx := context.Background()
	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer database.Close()

	if cfg.IsDev() {
		applied, err := migrations.Up(ctx, database, cfg.MigrationsDir)
		if err != nil {
			logger.Fatal("failed to run database migrations", zap.Error(err))
		}
		logger.Info("migrations applied", zap.Int64s("versions", applied))

		stats, err := seed.Run(ctx, database, seed.Config{
			AdminEmail:    cfg.AdminEmail,
			AdminPassword: cfg.AdminPassword,
			LaborMarkup:   cfg.LaborMarkup,
		})
		if err != nil {
			logger.Fatal("failed to seed database", zap.Error(err))
		}
		logger.Info("seed completed", zap.Int("inserts", stats.Inserts), zap.Int("updates", stats.Updates))
	}

	sessionSecret := cfg.SessionSecret
	if sessionSecret == "" {
		// Sessions do not survive a restart without a configured secret.
		sessionSecret = uuid.NewString()
	}

	st := store.New(database)
	metrics := observability.NewMetrics()
	srv := &server{
		auth:        newAuthService(st, sessionSecret),
		store:       st,
		quotes:      quote.NewService(st, st, cfg.PrinterAssumptions(), metrics, logger),
		metrics:     metrics,
		logger:      logger,
		laborMarkup: cfg.LaborMarkup,
	}

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}
