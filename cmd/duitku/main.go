package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"duitku/internal/amqp"
	"duitku/internal/auth"
	"duitku/internal/cache"
	"duitku/internal/config"
	apphttp "duitku/internal/http"
	"duitku/internal/log"
	"duitku/internal/services"
	"duitku/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())

	logger.Info("Starting duitku API server")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// AMQP is optional: without it, writes land in SQLite only and the
	// spreadsheet mirror falls behind until the worker's pending sweep.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without mirror notifications", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled - transactions will not mirror to the spreadsheet")
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.SessionExpiry)

	identity := services.NewIdentityService(repo, tokens, logger)
	family := services.NewFamilyService(repo, logger)
	reports := services.NewReportsService(repo, family, logger)
	ledger := services.NewLedgerService(repo, amqpClient, family, reports, logger)
	recurring := services.NewRecurringService(repo, amqpClient, family, reports, logger)
	budgets := services.NewBudgetService(repo, family, logger)
	goals := services.NewGoalService(repo, logger)
	catalog := services.NewCatalogService(repo, logger)

	cacheManager := cache.NewManager()
	cacheManager.Register(reports.Cache())
	cacheManager.StartCleanup(time.Minute)
	defer cacheManager.Stop()

	server := apphttp.NewServer(cfg.Port, apphttp.Deps{
		Tokens:        tokens,
		SessionExpiry: cfg.SessionExpiry,
		Identity:      identity,
		Family:        family,
		Ledger:        ledger,
		Reports:       reports,
		Recurring:     recurring,
		Budgets:       budgets,
		Goals:         goals,
		Catalog:       catalog,
		Logger:        logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Start()
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
