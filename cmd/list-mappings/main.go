package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Triple-C-BE/wimood/internal/config"
	"github.com/Triple-C-BE/wimood/internal/repository/postgres"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, logger)

	mappings, err := repos.Mapping.GetAll(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list mappings: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("📋 Product mappings:")
	for _, m := range mappings {
		costSynced := " "
		if m.CostSynced {
			costSynced = "✓"
		}
		fmt.Printf("  %-12s -> %-16d sku=%-20s price=%-8s stock=%-5d cost[%s] %s\n",
			m.WimoodProductID, m.ShopifyProductID, m.SKU, m.Price, m.Stock, costSynced, m.Title)
	}

	if len(mappings) == 0 {
		fmt.Println("❌ No mappings found. Run cmd/sync-products first.")
	} else {
		fmt.Printf("✅ Found %d mapping(s)\n", len(mappings))
	}
}
