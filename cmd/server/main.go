package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrcapitals/fundledger-backend/internal/adapter/httpapi"
	"github.com/mrcapitals/fundledger-backend/internal/adapter/repository/postgres"
	"github.com/mrcapitals/fundledger-backend/internal/config"
	"github.com/mrcapitals/fundledger-backend/internal/logging"
	"github.com/mrcapitals/fundledger-backend/internal/usecase/audit"
	"github.com/mrcapitals/fundledger-backend/internal/usecase/ledger"
	"github.com/mrcapitals/fundledger-backend/internal/usecase/nav"
	"github.com/mrcapitals/fundledger-backend/internal/usecase/registry"
	"github.com/mrcapitals/fundledger-backend/internal/usecase/report"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. Configuration and logging
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.Pretty)

	// 2. Database
	db, err := postgres.NewDB(cfg.ConnectionString())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := db.InitSchema(context.Background()); err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize schema")
	}

	// 3. Repositories
	userRepo := postgres.NewUserRepository(db)
	accountRepo := postgres.NewAccountRepository(db)
	fundRepo := postgres.NewFundRepository(db)
	movementRepo := postgres.NewMovementRepository(db)
	positionRepo := postgres.NewPositionRepository(db)
	navRepo := postgres.NewNavRepository(db)
	auditRepo := postgres.NewAuditRepository(db)
	reportRepo := postgres.NewReportRepository(db)

	// 4. Services (use cases)
	services := httpapi.Services{
		Ledger:   ledger.NewService(accountRepo, fundRepo, movementRepo, positionRepo, logger),
		Nav:      nav.NewService(fundRepo, navRepo, logger),
		Report:   report.NewService(reportRepo),
		Registry: registry.NewService(userRepo, accountRepo, fundRepo, logger),
		Audit:    audit.NewService(auditRepo),
	}

	// 5. HTTP server
	router := httpapi.NewRouter(services, userRepo, httpapi.Options{
		CORSOrigins:   cfg.CORSOrigins,
		JWTSecret:     cfg.JWTSecret,
		DevMode:       cfg.DevMode,
		DevUserID:     cfg.DevUserID,
		RatePerSecond: cfg.RateLimitPerIP,
		RateBurst:     cfg.RateLimitBurst,
	}, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Port).Bool("dev_mode", cfg.DevMode).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(server, logger)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully drains the server
func waitForShutdown(server *http.Server, logger zerolog.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logger.Info().Str("signal", sig.String()).Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown did not complete cleanly")
	}
	logger.Info().Msg("http server stopped")
}
