package repository

import (
	"context"

	"github.com/Triple-C-BE/wimood/internal/domain"
)

// MappingRepository defines product mapping data access methods
type MappingRepository interface {
	GetByWimoodID(ctx context.Context, wimoodProductID string) (*domain.ProductMapping, error)
	GetBySKU(ctx context.Context, sku string) (*domain.ProductMapping, error)
	GetAll(ctx context.Context) ([]*domain.ProductMapping, error)
	// Upsert stores the mapping and refreshes the snapshot fields so the
	// next cycle's quick-mode diff sees current feed values.
	Upsert(ctx context.Context, m *domain.ProductMapping) error
	Remove(ctx context.Context, wimoodProductID string) (bool, error)
	IsCostSynced(ctx context.Context, sku string) (bool, error)
	MarkCostSynced(ctx context.Context, sku string) error
	Count(ctx context.Context) (int, error)
}

// OrderRepository defines order store data access methods
type OrderRepository interface {
	// Upsert inserts a new order or refreshes the fulfillment mirror of an
	// existing one. It never touches dropship_submitted or wimood_order_id.
	Upsert(ctx context.Context, o *domain.Order) error
	Get(ctx context.Context, shopifyOrderID int64) (*domain.Order, error)
	GetAll(ctx context.Context) ([]*domain.Order, error)
	// GetActive returns orders that still need submission or polling:
	// everything not delivered and not cancelled, oldest first.
	GetActive(ctx context.Context) ([]*domain.Order, error)
	// MarkSubmitted sets dropship_submitted and the Wimood order id.
	// dropship_submitted is monotonic; there is no way to clear it.
	MarkSubmitted(ctx context.Context, shopifyOrderID, wimoodOrderID int64) error
	UpdateWimoodStatus(ctx context.Context, shopifyOrderID int64, status string, tracking domain.Tracking) error
	// UpdateFulfillment advances the local fulfillment state. Backward
	// transitions are rejected with ErrInvalidStateTransition.
	UpdateFulfillment(ctx context.Context, shopifyOrderID int64, status domain.FulfillmentStatus, tracking domain.Tracking) error
}

// SubmissionAttemptRepository persists write-ahead markers for dropship
// submissions, so a crash between the Wimood create-order call and
// MarkSubmitted is visible on the next cycle instead of silently producing
// a duplicate supplier order.
type SubmissionAttemptRepository interface {
	Get(ctx context.Context, shopifyOrderID int64) (*domain.SubmissionAttempt, error)
	Record(ctx context.Context, attempt *domain.SubmissionAttempt) error
	Clear(ctx context.Context, shopifyOrderID int64) error
}

// Repositories aggregates all repositories
type Repositories struct {
	Mapping           MappingRepository
	Order             OrderRepository
	SubmissionAttempt SubmissionAttemptRepository
}
