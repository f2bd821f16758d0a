package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/Triple-C-BE/wimood/internal/domain"
)

// ListUnfulfilledOrders fetches open orders that are not yet fulfilled.
// The feed-level view lacks line items; GetOrder fills those in.
func (c *Client) ListUnfulfilledOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	url := fmt.Sprintf("%s/orders.json?status=open&fulfillment_status=unfulfilled&limit=250", c.baseURL)

	for url != "" {
		body, headers, err := c.do(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to list unfulfilled orders: %w", err)
		}

		var env ordersEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("failed to parse orders page: %w", err)
		}
		orders = append(orders, env.Orders...)

		url = nextPageURL(headers)
	}

	c.logger.Info("Fetched unfulfilled Shopify orders", zap.Int("count", len(orders)))
	return orders, nil
}

// GetOrder fetches the full order detail including line items and the
// shipping address.
func (c *Client) GetOrder(ctx context.Context, orderID int64) (*Order, error) {
	url := fmt.Sprintf("%s/orders/%d.json", c.baseURL, orderID)

	body, _, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get order %d: %w", orderID, err)
	}

	var env orderEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to parse order: %w", err)
	}
	return &env.Order, nil
}

// CreateFulfillment creates a fulfillment for the whole order with the
// given tracking info and notifies the customer.
func (c *Client) CreateFulfillment(ctx context.Context, orderID int64, tracking domain.Tracking) error {
	locationID, err := c.getLocationID(ctx)
	if err != nil {
		return err
	}

	payload := createFulfillmentRequest{
		Fulfillment: fulfillmentPayload{
			LocationID:     locationID,
			TrackingNumber: tracking.Code,
			NotifyCustomer: true,
		},
	}
	if tracking.URL != "" {
		payload.Fulfillment.TrackingURLs = []string{tracking.URL}
	}

	url := fmt.Sprintf("%s/orders/%d/fulfillments.json", c.baseURL, orderID)
	if _, _, err := c.do(ctx, http.MethodPost, url, payload); err != nil {
		return fmt.Errorf("failed to create fulfillment for order %d: %w", orderID, err)
	}

	c.logger.Info("Created fulfillment in Shopify",
		zap.Int64("shopify_order_id", orderID),
		zap.String("tracking_number", tracking.Code),
	)
	return nil
}

// MarkInProgress notes on the order that the dropshipment is being picked
// at Wimood. Shopify has no native in-progress state for an order, so the
// marker is an order note update.
func (c *Client) MarkInProgress(ctx context.Context, orderID int64) error {
	payload := map[string]interface{}{
		"order": map[string]interface{}{
			"id":   orderID,
			"note": "Wimood dropshipment in progress",
		},
	}

	url := fmt.Sprintf("%s/orders/%d.json", c.baseURL, orderID)
	if _, _, err := c.do(ctx, http.MethodPut, url, payload); err != nil {
		return fmt.Errorf("failed to mark order %d in progress: %w", orderID, err)
	}

	c.logger.Info("Marked order in progress", zap.Int64("shopify_order_id", orderID))
	return nil
}

// CancelOrder cancels the order in Shopify.
func (c *Client) CancelOrder(ctx context.Context, orderID int64) error {
	url := fmt.Sprintf("%s/orders/%d/cancel.json", c.baseURL, orderID)
	if _, _, err := c.do(ctx, http.MethodPost, url, struct{}{}); err != nil {
		return fmt.Errorf("failed to cancel order %d: %w", orderID, err)
	}

	c.logger.Info("Cancelled order in Shopify", zap.Int64("shopify_order_id", orderID))
	return nil
}

// MarkDelivered records a delivered event on the order's fulfillment and
// closes the order.
func (c *Client) MarkDelivered(ctx context.Context, orderID int64) error {
	listURL := fmt.Sprintf("%s/orders/%d/fulfillments.json", c.baseURL, orderID)
	body, _, err := c.do(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return fmt.Errorf("failed to list fulfillments for order %d: %w", orderID, err)
	}

	var env fulfillmentsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("failed to parse fulfillments: %w", err)
	}

	if len(env.Fulfillments) > 0 {
		var event fulfillmentEventRequest
		event.Event.Status = "delivered"
		eventURL := fmt.Sprintf("%s/orders/%d/fulfillments/%d/events.json",
			c.baseURL, orderID, env.Fulfillments[0].ID)
		if _, _, err := c.do(ctx, http.MethodPost, eventURL, event); err != nil {
			return fmt.Errorf("failed to create delivered event for order %d: %w", orderID, err)
		}
	}

	closeURL := fmt.Sprintf("%s/orders/%d/close.json", c.baseURL, orderID)
	if _, _, err := c.do(ctx, http.MethodPost, closeURL, struct{}{}); err != nil {
		return fmt.Errorf("failed to close order %d: %w", orderID, err)
	}

	c.logger.Info("Marked order delivered", zap.Int64("shopify_order_id", orderID))
	return nil
}
