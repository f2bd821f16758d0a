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

	orders, err := repos.Order.GetAll(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list orders: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("📋 Orders in sync store:")
	for i, o := range orders {
		fmt.Printf("Order #%d:\n", i+1)
		fmt.Printf("  Shopify Order ID: %d\n", o.ShopifyOrderID)
		fmt.Printf("  Order Number: %s\n", o.OrderNumber)
		fmt.Printf("  Fulfillment Status: %s\n", o.FulfillmentStatus)
		if o.DropshipSubmitted {
			if o.WimoodOrderID == 0 {
				fmt.Println("  Dropship: nothing to dropship")
			} else {
				fmt.Printf("  Wimood Order ID: %d (status %q)\n", o.WimoodOrderID, o.WimoodStatus)
			}
		} else {
			fmt.Println("  Dropship: not submitted")
		}
		if o.TrackingNumber != "" {
			fmt.Printf("  Tracking: %s %s\n", o.TrackingNumber, o.TrackingURL)
		}
		fmt.Printf("  Created: %s\n", o.CreatedAt)
		fmt.Println()
	}

	if len(orders) == 0 {
		fmt.Println("❌ No orders found. Run cmd/sync-orders first.")
	} else {
		fmt.Printf("✅ Found %d order(s)\n", len(orders))
	}
}
