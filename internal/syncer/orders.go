package syncer

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Triple-C-BE/wimood/internal/domain"
	"github.com/Triple-C-BE/wimood/internal/repository"
	"github.com/Triple-C-BE/wimood/internal/shopify"
	"github.com/Triple-C-BE/wimood/internal/wimood"
	pkgerrors "github.com/Triple-C-BE/wimood/pkg/errors"
)

// OrderResults counts the outcome of one order sync cycle.
type OrderResults struct {
	New        int
	Submitted  int
	InProgress int
	Fulfilled  int
	Delivered  int
	Cancelled  int
	Polled     int
	Errors     int
	Duration   time.Duration
}

// OrderSyncer mirrors unfulfilled Shopify orders into the order store,
// submits their Wimood line items as dropship orders and polls Wimood order
// status to drive Shopify fulfillment.
type OrderSyncer struct {
	storefront StorefrontOrderAPI
	supplier   SupplierOrderAPI
	orders     repository.OrderRepository
	mappings   repository.MappingRepository
	attempts   repository.SubmissionAttemptRepository
	logger     *zap.Logger
}

// NewOrderSyncer creates an order syncer. supplier and mappings may be nil
// when no Wimood order API is configured, in which case orders are only
// mirrored, never submitted or polled.
func NewOrderSyncer(storefront StorefrontOrderAPI, supplier SupplierOrderAPI, orders repository.OrderRepository, mappings repository.MappingRepository, attempts repository.SubmissionAttemptRepository, logger *zap.Logger) *OrderSyncer {
	return &OrderSyncer{
		storefront: storefront,
		supplier:   supplier,
		orders:     orders,
		mappings:   mappings,
		attempts:   attempts,
		logger:     logger,
	}
}

// Run executes one order cycle: ingest the unfulfilled order feed, then
// take exactly one action (submit, poll or skip) per active order.
// Per-order failures are counted and never abort the batch; only a failed
// order feed fetch is fatal for the cycle.
func (s *OrderSyncer) Run(ctx context.Context) (OrderResults, error) {
	start := time.Now()
	var results OrderResults

	feed, err := s.storefront.ListUnfulfilledOrders(ctx)
	if err != nil {
		results.Duration = time.Since(start)
		return results, err
	}

	// New-vs-existing is decided against a single snapshot of stored ids so
	// the new count is stable within the cycle.
	known, err := s.knownOrderIDs(ctx)
	if err != nil {
		results.Duration = time.Since(start)
		return results, err
	}

	for i := range feed {
		order := &feed[i]
		if !known[order.ID] {
			results.New++
		}
		if err := s.ingestOrder(ctx, order); err != nil {
			s.logger.Error("Failed to upsert order",
				zap.Int64("shopify_order_id", order.ID), zap.Error(err))
			results.Errors++
		}
	}

	active, err := s.orders.GetActive(ctx)
	if err != nil {
		results.Duration = time.Since(start)
		return results, err
	}

	for _, order := range active {
		switch {
		case !order.DropshipSubmitted && s.supplier != nil && s.mappings != nil:
			s.submitOrder(ctx, order, &results)
		case order.DropshipSubmitted && order.WimoodOrderID > 0 && s.supplier != nil:
			s.pollOrder(ctx, order, &results)
		default:
			s.logger.Debug("No action for order",
				zap.Int64("shopify_order_id", order.ShopifyOrderID),
				zap.Bool("dropship_submitted", order.DropshipSubmitted),
				zap.Int64("wimood_order_id", order.WimoodOrderID))
		}
	}

	results.Duration = time.Since(start)
	s.logger.Info("Order sync cycle complete",
		zap.Int("new", results.New),
		zap.Int("submitted", results.Submitted),
		zap.Int("in_progress", results.InProgress),
		zap.Int("fulfilled", results.Fulfilled),
		zap.Int("delivered", results.Delivered),
		zap.Int("cancelled", results.Cancelled),
		zap.Int("polled", results.Polled),
		zap.Int("errors", results.Errors),
		zap.Duration("duration", results.Duration),
	)
	return results, nil
}

func (s *OrderSyncer) knownOrderIDs(ctx context.Context) (map[int64]bool, error) {
	stored, err := s.orders.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[int64]bool, len(stored))
	for _, o := range stored {
		ids[o.ShopifyOrderID] = true
	}
	return ids, nil
}

func (s *OrderSyncer) ingestOrder(ctx context.Context, order *shopify.Order) error {
	status := domain.FulfillmentStatus(order.FulfillmentStatus)
	if !status.IsValid() {
		status = domain.FulfillmentUnfulfilled
	}

	number := order.Name
	if number == "" && order.OrderNumber != 0 {
		number = strconv.FormatInt(order.OrderNumber, 10)
	}

	return s.orders.Upsert(ctx, &domain.Order{
		ShopifyOrderID:    order.ID,
		OrderNumber:       number,
		FulfillmentStatus: status,
		CreatedAt:         order.CreatedAt,
	})
}

// submitOrder forwards an order's Wimood line items to the Wimood order
// API. Line items whose SKU has no mapping are not Wimood products and are
// excluded without comment; an order with nothing to dropship is marked
// submitted with the 0 sentinel so it is never reconsidered.
func (s *OrderSyncer) submitOrder(ctx context.Context, order *domain.Order, results *OrderResults) {
	if attempt, err := s.attempts.Get(ctx, order.ShopifyOrderID); err == nil && attempt != nil {
		// A previous cycle wrote the marker, called Wimood and never came
		// back to record the result. The order at Wimood may or may not
		// exist; resubmitting risks a duplicate shipment, so flag it for
		// manual review instead of retrying blindly.
		s.logger.Warn("Previous dropship submission did not complete, possible duplicate at Wimood",
			zap.Int64("shopify_order_id", order.ShopifyOrderID),
			zap.String("attempt_key", attempt.AttemptKey),
			zap.Time("attempted_at", attempt.AttemptedAt))
	}

	detail, err := s.storefront.GetOrder(ctx, order.ShopifyOrderID)
	if err != nil {
		s.logger.Error("Failed to fetch order detail",
			zap.Int64("shopify_order_id", order.ShopifyOrderID), zap.Error(err))
		results.Errors++
		return
	}

	items, err := s.mapLineItems(ctx, detail.LineItems)
	if err != nil {
		s.logger.Error("Failed to map order line items",
			zap.Int64("shopify_order_id", order.ShopifyOrderID), zap.Error(err))
		results.Errors++
		return
	}

	if len(items) == 0 {
		s.logger.Info("Order has no Wimood products, marking as nothing to dropship",
			zap.Int64("shopify_order_id", order.ShopifyOrderID))
		if err := s.orders.MarkSubmitted(ctx, order.ShopifyOrderID, 0); err != nil {
			s.logger.Error("Failed to record dropship sentinel",
				zap.Int64("shopify_order_id", order.ShopifyOrderID), zap.Error(err))
			results.Errors++
		}
		return
	}

	if detail.ShippingAddress == nil {
		s.logger.Error("Order has no shipping address, cannot submit dropshipment",
			zap.Int64("shopify_order_id", order.ShopifyOrderID))
		results.Errors++
		return
	}

	req := wimood.CreateOrderRequest{
		Reference:       order.OrderNumber,
		CustomerAddress: MapShippingAddress(detail.ShippingAddress),
		Order:           items,
	}

	// Write-ahead marker: if the process dies between CreateOrder and
	// MarkSubmitted, the leftover marker surfaces the gap next cycle.
	if err := s.attempts.Record(ctx, &domain.SubmissionAttempt{
		ShopifyOrderID: order.ShopifyOrderID,
		AttemptKey:     uuid.NewString(),
		AttemptedAt:    time.Now().UTC(),
	}); err != nil {
		s.logger.Error("Failed to record submission attempt",
			zap.Int64("shopify_order_id", order.ShopifyOrderID), zap.Error(err))
		results.Errors++
		return
	}

	wimoodOrderID, err := s.supplier.CreateOrder(ctx, req)
	if err != nil {
		s.logger.Error("Failed to create Wimood order",
			zap.Int64("shopify_order_id", order.ShopifyOrderID), zap.Error(err))
		results.Errors++
		return
	}

	if err := s.orders.MarkSubmitted(ctx, order.ShopifyOrderID, wimoodOrderID); err != nil {
		// The Wimood order exists but the local flag is not set; the marker
		// stays in place so the next cycle warns instead of resubmitting
		// silently.
		s.logger.Error("Wimood order created but local submission flag not stored",
			zap.Int64("shopify_order_id", order.ShopifyOrderID),
			zap.Int64("wimood_order_id", wimoodOrderID),
			zap.Error(err))
		results.Errors++
		return
	}

	if err := s.attempts.Clear(ctx, order.ShopifyOrderID); err != nil {
		s.logger.Warn("Failed to clear submission attempt marker",
			zap.Int64("shopify_order_id", order.ShopifyOrderID), zap.Error(err))
	}

	s.logger.Info("Submitted dropship order to Wimood",
		zap.Int64("shopify_order_id", order.ShopifyOrderID),
		zap.Int64("wimood_order_id", wimoodOrderID),
		zap.Int("items", len(items)))
	results.Submitted++
}

// mapLineItems translates Shopify line items to Wimood order items via the
// SKU mapping. Unmapped SKUs are skipped silently; a mapping store failure
// or a malformed stored product id fails the whole order.
func (s *OrderSyncer) mapLineItems(ctx context.Context, lineItems []shopify.LineItem) ([]wimood.OrderItem, error) {
	var items []wimood.OrderItem
	for _, li := range lineItems {
		sku := strings.TrimSpace(li.SKU)
		if sku == "" {
			continue
		}

		mapping, err := s.mappings.GetBySKU(ctx, sku)
		if err != nil {
			var notFound *pkgerrors.ErrNotFound
			if errors.As(err, &notFound) {
				s.logger.Debug("Line item SKU not mapped, excluding from dropshipment",
					zap.String("sku", sku))
				continue
			}
			return nil, err
		}

		productID, err := strconv.ParseInt(mapping.WimoodProductID, 10, 64)
		if err != nil {
			return nil, err
		}

		items = append(items, wimood.OrderItem{
			ProductID: productID,
			Quantity:  li.Quantity,
		})
	}
	return items, nil
}

// pollOrder fetches the Wimood order status and advances the local and
// Shopify state. The latest status and tracking are persisted before any
// Shopify call so a downstream failure never loses them; transitions are
// guarded by the local status so repeated polls of the same supplier
// status stay idempotent.
func (s *OrderSyncer) pollOrder(ctx context.Context, order *domain.Order, results *OrderResults) {
	results.Polled++

	status, err := s.supplier.GetOrderStatus(ctx, order.WimoodOrderID)
	if err != nil {
		s.logger.Error("Failed to fetch Wimood order status",
			zap.Int64("wimood_order_id", order.WimoodOrderID), zap.Error(err))
		results.Errors++
		return
	}

	var tracking domain.Tracking
	if status.TrackAndTrace != nil {
		tracking = domain.Tracking{Code: status.TrackAndTrace.Code, URL: status.TrackAndTrace.URL}
	}

	if err := s.orders.UpdateWimoodStatus(ctx, order.ShopifyOrderID, status.Status, tracking); err != nil {
		s.logger.Error("Failed to store Wimood order status",
			zap.Int64("shopify_order_id", order.ShopifyOrderID), zap.Error(err))
		results.Errors++
		return
	}

	switch status.Status {
	case domain.WimoodStatusCancelled:
		if !order.FulfillmentStatus.CanTransitionTo(domain.FulfillmentCancelled) {
			break
		}
		if err := s.storefront.CancelOrder(ctx, order.ShopifyOrderID); err != nil {
			s.logger.Error("Failed to cancel Shopify order",
				zap.Int64("shopify_order_id", order.ShopifyOrderID), zap.Error(err))
			results.Errors++
			return
		}
		if s.advance(ctx, order, domain.FulfillmentCancelled, tracking, results) {
			results.Cancelled++
		}

	case domain.WimoodStatusPending:
		if !order.FulfillmentStatus.CanTransitionTo(domain.FulfillmentInProgress) {
			break
		}
		if err := s.storefront.MarkInProgress(ctx, order.ShopifyOrderID); err != nil {
			s.logger.Error("Failed to mark Shopify order in progress",
				zap.Int64("shopify_order_id", order.ShopifyOrderID), zap.Error(err))
			results.Errors++
			return
		}
		if s.advance(ctx, order, domain.FulfillmentInProgress, tracking, results) {
			results.InProgress++
		}

	case domain.WimoodStatusShipped:
		if !order.FulfillmentStatus.CanTransitionTo(domain.FulfillmentFulfilled) {
			break
		}
		if err := s.storefront.CreateFulfillment(ctx, order.ShopifyOrderID, tracking); err != nil {
			s.logger.Error("Failed to create Shopify fulfillment",
				zap.Int64("shopify_order_id", order.ShopifyOrderID), zap.Error(err))
			results.Errors++
			return
		}
		if s.advance(ctx, order, domain.FulfillmentFulfilled, tracking, results) {
			results.Fulfilled++
		}

	case domain.WimoodStatusDelivered:
		if !order.FulfillmentStatus.CanTransitionTo(domain.FulfillmentDelivered) {
			break
		}
		if err := s.storefront.MarkDelivered(ctx, order.ShopifyOrderID); err != nil {
			s.logger.Error("Failed to mark Shopify order delivered",
				zap.Int64("shopify_order_id", order.ShopifyOrderID), zap.Error(err))
			results.Errors++
			return
		}
		if s.advance(ctx, order, domain.FulfillmentDelivered, tracking, results) {
			results.Delivered++
		}

	default:
		s.logger.Debug("No fulfillment action for Wimood status",
			zap.Int64("shopify_order_id", order.ShopifyOrderID),
			zap.String("wimood_status", status.Status),
			zap.String("fulfillment_status", string(order.FulfillmentStatus)))
	}
}

func (s *OrderSyncer) advance(ctx context.Context, order *domain.Order, status domain.FulfillmentStatus, tracking domain.Tracking, results *OrderResults) bool {
	if err := s.orders.UpdateFulfillment(ctx, order.ShopifyOrderID, status, tracking); err != nil {
		s.logger.Error("Failed to advance local fulfillment status",
			zap.Int64("shopify_order_id", order.ShopifyOrderID),
			zap.String("to", string(status)),
			zap.Error(err))
		results.Errors++
		return false
	}
	order.FulfillmentStatus = status
	return true
}
