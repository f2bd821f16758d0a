package domain

import (
	"time"
)

// ProductMapping links a Wimood product to the Shopify product created for
// it, plus a snapshot of the last synced feed values so quick mode can diff
// without refetching the catalog.
type ProductMapping struct {
	WimoodProductID  string
	ShopifyProductID int64
	SKU              string

	// Last-synced snapshot, refreshed after every create/update
	Title          string
	Price          string
	WholesalePrice string
	Stock          int
	Brand          string
	EAN            string
	CostSynced     bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Order mirrors a Shopify order through the dropship pipeline.
// WimoodOrderID 0 with DropshipSubmitted true is the sentinel for
// "evaluated, nothing to dropship".
type Order struct {
	ShopifyOrderID    int64
	OrderNumber       string
	FulfillmentStatus FulfillmentStatus
	CreatedAt         string // Shopify timestamp, kept verbatim
	TrackingNumber    string
	TrackingURL       string
	WimoodOrderID     int64
	WimoodStatus      string
	DropshipSubmitted bool
	SyncedAt          time.Time
	UpdatedAt         time.Time
}

// CandidateProduct is the per-cycle, feed-sourced view of one product,
// optionally enriched by the scraper before diffing. Never persisted as-is.
type CandidateProduct struct {
	WimoodProductID string
	SKU             string
	Title           string
	Brand           string
	EAN             string
	Price           string
	WholesalePrice  string
	Stock           int

	// Enrichment fields, empty unless the scraper ran or the cache hit
	Description string
	Images      []string
	Specs       map[string]string
}

// ScrapedData is what the enricher produces for one product.
type ScrapedData struct {
	Description string            `json:"description"`
	Images      []string          `json:"images"`
	Specs       map[string]string `json:"specs"`
}

// Tracking carries the track-and-trace info Wimood reports for an order.
type Tracking struct {
	Code string
	URL  string
}

// SubmissionAttempt is the write-ahead marker persisted before calling the
// Wimood order API, so a crash between "order created at Wimood" and
// "submitted flag stored locally" is detectable on the next cycle.
type SubmissionAttempt struct {
	ShopifyOrderID int64
	AttemptKey     string
	AttemptedAt    time.Time
}
