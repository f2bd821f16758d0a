package postgres

import (
	"context"
	"database/sql"
	"strconv"

	"go.uber.org/zap"

	"github.com/Triple-C-BE/wimood/internal/domain"
	"github.com/Triple-C-BE/wimood/pkg/errors"
)

type orderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order store repository
func NewOrderRepository(db *sql.DB, logger *zap.Logger) *orderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

func formatOrderID(id int64) string {
	return strconv.FormatInt(id, 10)
}

const orderColumns = `
	shopify_order_id, order_number, fulfillment_status, created_at,
	tracking_number, tracking_url, wimood_order_id, wimood_status,
	dropship_submitted, synced_at, updated_at
`

func scanOrder(row interface{ Scan(...interface{}) error }) (*domain.Order, error) {
	var o domain.Order
	var wimoodOrderID sql.NullInt64
	err := row.Scan(
		&o.ShopifyOrderID,
		&o.OrderNumber,
		&o.FulfillmentStatus,
		&o.CreatedAt,
		&o.TrackingNumber,
		&o.TrackingURL,
		&wimoodOrderID,
		&o.WimoodStatus,
		&o.DropshipSubmitted,
		&o.SyncedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if wimoodOrderID.Valid {
		o.WimoodOrderID = wimoodOrderID.Int64
	}
	return &o, nil
}

func (r *orderRepository) Upsert(ctx context.Context, o *domain.Order) error {
	if o.FulfillmentStatus == "" {
		o.FulfillmentStatus = domain.FulfillmentUnfulfilled
	}

	query := `
		INSERT INTO orders (shopify_order_id, order_number, fulfillment_status, created_at,
			tracking_number, tracking_url, synced_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		ON CONFLICT (shopify_order_id) DO UPDATE SET
			fulfillment_status = EXCLUDED.fulfillment_status,
			tracking_number = EXCLUDED.tracking_number,
			tracking_url = EXCLUDED.tracking_url,
			updated_at = now()
	`

	_, err := r.db.ExecContext(ctx, query,
		o.ShopifyOrderID,
		o.OrderNumber,
		o.FulfillmentStatus,
		o.CreatedAt,
		o.TrackingNumber,
		o.TrackingURL,
	)
	if err != nil {
		r.logger.Error("Failed to upsert order",
			zap.Int64("shopify_order_id", o.ShopifyOrderID),
			zap.Error(err),
		)
		return err
	}

	r.logger.Debug("Upserted order",
		zap.Int64("shopify_order_id", o.ShopifyOrderID),
		zap.String("order_number", o.OrderNumber),
	)
	return nil
}

func (r *orderRepository) Get(ctx context.Context, shopifyOrderID int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE shopify_order_id = $1`

	o, err := scanOrder(r.db.QueryRowContext(ctx, query, shopifyOrderID))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: formatOrderID(shopifyOrderID)}
	}
	if err != nil {
		r.logger.Error("Failed to get order", zap.Error(err))
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) GetAll(ctx context.Context) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	return r.queryOrders(ctx, query)
}

func (r *orderRepository) GetActive(ctx context.Context) ([]*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE fulfillment_status NOT IN ($1, $2)
		ORDER BY created_at
	`
	return r.queryOrders(ctx, query, domain.FulfillmentDelivered, domain.FulfillmentCancelled)
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...interface{}) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *orderRepository) MarkSubmitted(ctx context.Context, shopifyOrderID, wimoodOrderID int64) error {
	query := `
		UPDATE orders SET
			dropship_submitted = TRUE,
			wimood_order_id = $1,
			updated_at = now()
		WHERE shopify_order_id = $2
	`
	if _, err := r.db.ExecContext(ctx, query, wimoodOrderID, shopifyOrderID); err != nil {
		r.logger.Error("Failed to mark order submitted",
			zap.Int64("shopify_order_id", shopifyOrderID),
			zap.Error(err),
		)
		return err
	}

	r.logger.Info("Order marked as submitted",
		zap.Int64("shopify_order_id", shopifyOrderID),
		zap.Int64("wimood_order_id", wimoodOrderID),
	)
	return nil
}

func (r *orderRepository) UpdateWimoodStatus(ctx context.Context, shopifyOrderID int64, status string, tracking domain.Tracking) error {
	query := `
		UPDATE orders SET
			wimood_status = $1,
			tracking_number = $2,
			tracking_url = $3,
			updated_at = now()
		WHERE shopify_order_id = $4
	`
	if _, err := r.db.ExecContext(ctx, query, status, tracking.Code, tracking.URL, shopifyOrderID); err != nil {
		r.logger.Error("Failed to update Wimood status",
			zap.Int64("shopify_order_id", shopifyOrderID),
			zap.Error(err),
		)
		return err
	}

	r.logger.Debug("Updated Wimood status",
		zap.Int64("shopify_order_id", shopifyOrderID),
		zap.String("wimood_status", status),
	)
	return nil
}

// UpdateFulfillment advances the local state machine. The current status is
// read and checked first; backward or terminal-state transitions are
// rejected so repeated polls can never regress an order.
func (r *orderRepository) UpdateFulfillment(ctx context.Context, shopifyOrderID int64, status domain.FulfillmentStatus, tracking domain.Tracking) error {
	current, err := r.Get(ctx, shopifyOrderID)
	if err != nil {
		return err
	}

	if !current.FulfillmentStatus.CanTransitionTo(status) {
		return &errors.ErrInvalidStateTransition{
			From: current.FulfillmentStatus,
			To:   status,
		}
	}

	query := `
		UPDATE orders SET
			fulfillment_status = $1,
			tracking_number = $2,
			tracking_url = $3,
			updated_at = now()
		WHERE shopify_order_id = $4
	`
	if _, err := r.db.ExecContext(ctx, query, status, tracking.Code, tracking.URL, shopifyOrderID); err != nil {
		r.logger.Error("Failed to update fulfillment status",
			zap.Int64("shopify_order_id", shopifyOrderID),
			zap.Error(err),
		)
		return err
	}

	r.logger.Debug("Updated fulfillment status",
		zap.Int64("shopify_order_id", shopifyOrderID),
		zap.String("from", string(current.FulfillmentStatus)),
		zap.String("to", string(status)),
	)
	return nil
}
