package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Triple-C-BE/wimood/internal/config"
	"github.com/Triple-C-BE/wimood/internal/monitor"
	"github.com/Triple-C-BE/wimood/internal/repository/postgres"
	"github.com/Triple-C-BE/wimood/internal/shopify"
	"github.com/Triple-C-BE/wimood/internal/syncer"
	"github.com/Triple-C-BE/wimood/internal/wimood"
)

func main() {
	once := flag.Bool("once", false, "run a single sync cycle and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.Environment == "production" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	logger.Info("Starting Wimood order sync",
		zap.String("environment", cfg.Environment),
		zap.Duration("interval", cfg.Sync.Interval),
	)

	// Initialize database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx := context.Background()
	if err := postgres.EnsureSchema(ctx, db, "migrations/000001_init_schema.up.sql", logger); err != nil {
		logger.Fatal("Failed to ensure database schema", zap.Error(err))
	}

	repos := postgres.NewRepositories(db, logger)

	// Initialize API clients
	wimoodClient := wimood.NewClient(cfg.Wimood, logger)
	shopifyClient := shopify.NewClient(cfg.Shopify, logger)

	// Pre-flight checks
	if err := shopifyClient.CheckConnection(ctx); err != nil {
		logger.Fatal("Shopify connection check failed", zap.Error(err))
	}

	// Without a reachable order API, orders are mirrored but never
	// submitted or polled.
	var supplier syncer.SupplierOrderAPI
	if err := wimoodClient.CheckOrderAPI(ctx); err != nil {
		logger.Warn("Wimood order API unreachable, running in mirror-only mode", zap.Error(err))
	} else {
		supplier = wimoodClient
	}

	orderSyncer := syncer.NewOrderSyncer(
		shopifyClient, supplier,
		repos.Order, repos.Mapping, repos.SubmissionAttempt,
		logger,
	)

	status := monitor.NewStatus()
	var monitorSrv *monitor.Server
	if cfg.MonitorPort != "" {
		monitorSrv = monitor.NewServer(cfg.MonitorPort, cfg.Environment, status, logger)
		go func() {
			if err := monitorSrv.Start(); err != nil {
				logger.Error("Monitor server failed", zap.Error(err))
			}
		}()
	}

	runCycle := func() {
		results, err := orderSyncer.Run(ctx)
		if err != nil {
			logger.Error("Order cycle failed", zap.Error(err))
		}
		status.RecordOrderCycle(results, err)
	}

	runCycle()
	if *once {
		shutdownMonitor(monitorSrv, logger)
		return
	}

	ticker := time.NewTicker(cfg.Sync.Interval)
	defer ticker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			runCycle()
		case sig := <-quit:
			logger.Info("Shutting down order sync", zap.String("signal", sig.String()))
			shutdownMonitor(monitorSrv, logger)
			return
		}
	}
}

func shutdownMonitor(srv *monitor.Server, logger *zap.Logger) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Monitor server forced to shutdown", zap.Error(err))
	}
}
