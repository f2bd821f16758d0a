package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Triple-C-BE/wimood/internal/config"
	apperrors "github.com/Triple-C-BE/wimood/pkg/errors"
)

// Shopify allows 2 req/sec on the REST Admin API; we pace every call.
const rateLimitDelay = 500 * time.Millisecond

// Client talks to the Shopify REST Admin API.
type Client struct {
	baseURL     string
	accessToken string
	vendorTag   string
	httpClient  *http.Client
	logger      *zap.Logger

	// Primary location id, fetched lazily and held for the client lifetime.
	locationID int64
}

// NewClient creates a new Shopify REST Admin client
func NewClient(cfg config.ShopifyConfig, logger *zap.Logger) *Client {
	storeURL := strings.TrimSuffix(cfg.StoreURL, "/")

	return &Client{
		baseURL:     fmt.Sprintf("%s/admin/api/%s", storeURL, cfg.APIVersion),
		accessToken: cfg.AccessToken,
		vendorTag:   cfg.VendorTag,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// VendorTag returns the tag marking products owned by this sync.
func (c *Client) VendorTag() string {
	return c.vendorTag
}

// CheckConnection verifies the store URL and access token via GET /shop.json.
func (c *Client) CheckConnection(ctx context.Context) error {
	body, _, err := c.do(ctx, http.MethodGet, c.baseURL+"/shop.json", nil)
	if err != nil {
		return fmt.Errorf("shopify pre-flight failed: %w", err)
	}

	var env shopEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("shopify pre-flight: failed to parse response: %w", err)
	}
	if env.Shop == nil {
		return &apperrors.ErrAPIError{Service: "shopify", Status: http.StatusOK, Message: "response missing shop data"}
	}

	c.logger.Info("Shopify pre-flight OK",
		zap.String("shop", env.Shop.Name),
		zap.Int64("shop_id", env.Shop.ID),
	)
	return nil
}

// do executes one paced, authenticated request and returns the response
// body and headers. A response body carrying an "errors" field is a
// failure even when the HTTP status is 2xx.
func (c *Client) do(ctx context.Context, method, url string, payload interface{}) ([]byte, http.Header, error) {
	time.Sleep(rateLimitDelay)

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("Shopify request", zap.String("method", method), zap.String("url", url))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}

	if limit := resp.Header.Get("X-Shopify-Shop-Api-Call-Limit"); limit != "" {
		c.logger.Debug("Shopify rate limit", zap.String("used", limit))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, &apperrors.ErrAPIError{
			Service: "shopify",
			Status:  resp.StatusCode,
			Message: truncate(string(body), 500),
		}
	}

	if msg, found := bodyErrors(body); found {
		return nil, nil, &apperrors.ErrAPIError{
			Service: "shopify",
			Status:  resp.StatusCode,
			Message: msg,
		}
	}

	return body, resp.Header, nil
}

// bodyErrors reports whether a JSON response body carries an "errors" field.
func bodyErrors(body []byte) (string, bool) {
	var probe struct {
		Errors json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return "", false
	}
	if len(probe.Errors) == 0 || string(probe.Errors) == "null" {
		return "", false
	}
	return truncate(string(probe.Errors), 500), true
}

// nextPageURL extracts the next page URL from Shopify's Link header.
func nextPageURL(headers http.Header) string {
	link := headers.Get("Link")
	if !strings.Contains(link, `rel="next"`) {
		return ""
	}
	for _, part := range strings.Split(link, ",") {
		if !strings.Contains(part, `rel="next"`) {
			continue
		}
		start := strings.Index(part, "<")
		end := strings.Index(part, ">")
		if start >= 0 && end > start {
			return part[start+1 : end]
		}
	}
	return ""
}

// getLocationID fetches and memoizes the store's primary location id.
func (c *Client) getLocationID(ctx context.Context) (int64, error) {
	if c.locationID != 0 {
		return c.locationID, nil
	}

	body, _, err := c.do(ctx, http.MethodGet, c.baseURL+"/locations.json", nil)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch locations: %w", err)
	}

	var env locationsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return 0, fmt.Errorf("failed to parse locations: %w", err)
	}
	if len(env.Locations) == 0 {
		return 0, &apperrors.ErrAPIError{Service: "shopify", Status: http.StatusOK, Message: "store has no locations"}
	}

	c.locationID = env.Locations[0].ID
	c.logger.Debug("Cached Shopify location", zap.Int64("location_id", c.locationID))
	return c.locationID, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
