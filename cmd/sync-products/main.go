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
	"github.com/Triple-C-BE/wimood/internal/scrape"
	"github.com/Triple-C-BE/wimood/internal/shopify"
	"github.com/Triple-C-BE/wimood/internal/syncer"
	"github.com/Triple-C-BE/wimood/internal/wimood"
)

func main() {
	once := flag.Bool("once", false, "run a single sync cycle and exit")
	mode := flag.String("mode", "", "override SYNC_PRODUCT_MODE (full or quick)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *mode != "" {
		if *mode != config.ProductModeFull && *mode != config.ProductModeQuick {
			log.Fatalf("Invalid -mode %q", *mode)
		}
		cfg.Sync.ProductMode = *mode
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.Environment == "production" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	logger.Info("Starting Wimood product sync",
		zap.String("environment", cfg.Environment),
		zap.String("mode", cfg.Sync.ProductMode),
		zap.String("scrape_mode", cfg.Sync.ScrapeMode),
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

	// Pre-flight checks: fail fast on bad credentials instead of per cycle
	if err := wimoodClient.CheckFeed(ctx); err != nil {
		logger.Fatal("Wimood feed check failed", zap.Error(err))
	}
	if err := shopifyClient.CheckConnection(ctx); err != nil {
		logger.Fatal("Shopify connection check failed", zap.Error(err))
	}

	var enrich *scrape.Service
	if cfg.Sync.ScrapeMode != config.ScrapeModeOff {
		cache := scrape.NewCache(cfg.Sync.ScrapeCacheDir, logger)
		enrich = scrape.NewService(nil, cache, cfg.Sync.ScrapeMaxAge, logger)
	}

	productSyncer := syncer.NewProductSyncer(
		shopifyClient, repos.Mapping, enrich,
		cfg.Sync.ProductMode, cfg.Sync.ScrapeMode, logger,
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
		candidates, err := wimoodClient.FetchProducts(ctx)
		if err != nil {
			logger.Error("Product cycle aborted, feed unavailable", zap.Error(err))
			status.RecordProductCycle(syncer.ProductResults{}, err)
			return
		}
		results, err := productSyncer.Run(ctx, candidates)
		if err != nil {
			logger.Error("Product cycle failed", zap.Error(err))
		}
		status.RecordProductCycle(results, err)
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
			logger.Info("Shutting down product sync", zap.String("signal", sig.String()))
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
