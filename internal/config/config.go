package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string
	LogLevel    string
	Database    DatabaseConfig
	Wimood      WimoodConfig
	Shopify     ShopifyConfig
	Sync        SyncConfig
	MonitorPort string // empty disables the status monitor server
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// WimoodConfig covers both the XML product feed and the REST order API.
type WimoodConfig struct {
	FeedURL     string // e.g. https://www.wimood.nl/xml_feed
	APIKey      string // feed query param and X-AUTH-TOKEN for the order API
	CustomerID  string // klantnummer feed query param
	OrderAPIURL string // e.g. https://api.wimood.nl/v1
	Timeout     time.Duration
}

type ShopifyConfig struct {
	StoreURL    string // e.g. https://my-store.myshopify.com
	AccessToken string
	APIVersion  string
	VendorTag   string // tag/vendor marking products owned by this sync
	Timeout     time.Duration
}

// SyncConfig controls cycle cadence and reconciliation modes.
type SyncConfig struct {
	Interval       time.Duration
	ProductMode    string // "full" or "quick"
	ScrapeMode     string // "off", "full" or "new_only"
	ScrapeCacheDir string
	ScrapeMaxAge   time.Duration
}

const (
	ProductModeFull  = "full"
	ProductModeQuick = "quick"

	ScrapeModeOff     = "off"
	ScrapeModeFull    = "full"
	ScrapeModeNewOnly = "new_only"
)

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("SYNC_INTERVAL_SECONDS", 3600)
	viper.SetDefault("SYNC_PRODUCT_MODE", ProductModeFull)
	viper.SetDefault("SCRAPE_MODE", ScrapeModeOff)
	viper.SetDefault("SCRAPE_CACHE_DIR", "data")
	viper.SetDefault("SCRAPE_MAX_AGE_DAYS", 7)
	viper.SetDefault("HTTP_TIMEOUT_SECONDS", 30)
	viper.SetDefault("SHOPIFY_API_VERSION", "2023-04")
	viper.SetDefault("SHOPIFY_VENDOR_TAG", "Wimood_Sync")
	viper.SetDefault("WIMOOD_ORDER_API_URL", "https://api.wimood.nl/v1")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	timeout := time.Duration(viper.GetInt("HTTP_TIMEOUT_SECONDS")) * time.Second

	cfg := &Config{
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrViper("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "wimood_sync"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Wimood: WimoodConfig{
			FeedURL:     strings.TrimSpace(getEnvOrViper("WIMOOD_API_URL", "")),
			APIKey:      strings.TrimSpace(getEnvOrViper("WIMOOD_API_KEY", "")),
			CustomerID:  strings.TrimSpace(getEnvOrViper("WIMOOD_CUSTOMER_ID", "")),
			OrderAPIURL: strings.TrimSuffix(getEnvOrViper("WIMOOD_ORDER_API_URL", "https://api.wimood.nl/v1"), "/"),
			Timeout:     timeout,
		},
		Shopify: ShopifyConfig{
			StoreURL:    strings.TrimSuffix(strings.TrimSpace(getEnvOrViper("SHOPIFY_STORE_URL", "")), "/"),
			AccessToken: strings.TrimSpace(getEnvOrViper("SHOPIFY_ACCESS_TOKEN", "")),
			APIVersion:  getEnvOrViper("SHOPIFY_API_VERSION", "2023-04"),
			VendorTag:   getEnvOrViper("SHOPIFY_VENDOR_TAG", "Wimood_Sync"),
			Timeout:     timeout,
		},
		Sync: SyncConfig{
			Interval:       time.Duration(viper.GetInt("SYNC_INTERVAL_SECONDS")) * time.Second,
			ProductMode:    getEnvOrViper("SYNC_PRODUCT_MODE", ProductModeFull),
			ScrapeMode:     getEnvOrViper("SCRAPE_MODE", ScrapeModeOff),
			ScrapeCacheDir: getEnvOrViper("SCRAPE_CACHE_DIR", "data"),
			ScrapeMaxAge:   time.Duration(viper.GetInt("SCRAPE_MAX_AGE_DAYS")) * 24 * time.Hour,
		},
		MonitorPort: getEnvOrViper("MONITOR_PORT", ""),
	}

	// Validate required fields
	if cfg.Wimood.FeedURL == "" {
		return nil, fmt.Errorf("WIMOOD_API_URL is required")
	}
	if cfg.Wimood.APIKey == "" {
		return nil, fmt.Errorf("WIMOOD_API_KEY is required")
	}
	if cfg.Wimood.CustomerID == "" {
		return nil, fmt.Errorf("WIMOOD_CUSTOMER_ID is required")
	}
	if cfg.Shopify.StoreURL == "" {
		return nil, fmt.Errorf("SHOPIFY_STORE_URL is required")
	}
	if cfg.Shopify.AccessToken == "" {
		return nil, fmt.Errorf("SHOPIFY_ACCESS_TOKEN is required")
	}
	if cfg.Sync.ProductMode != ProductModeFull && cfg.Sync.ProductMode != ProductModeQuick {
		return nil, fmt.Errorf("SYNC_PRODUCT_MODE must be %q or %q, got %q",
			ProductModeFull, ProductModeQuick, cfg.Sync.ProductMode)
	}
	switch cfg.Sync.ScrapeMode {
	case ScrapeModeOff, ScrapeModeFull, ScrapeModeNewOnly:
	default:
		return nil, fmt.Errorf("SCRAPE_MODE must be %q, %q or %q, got %q",
			ScrapeModeOff, ScrapeModeFull, ScrapeModeNewOnly, cfg.Sync.ScrapeMode)
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
