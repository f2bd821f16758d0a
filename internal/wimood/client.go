package wimood

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Triple-C-BE/wimood/internal/config"
	"github.com/Triple-C-BE/wimood/internal/domain"
	apperrors "github.com/Triple-C-BE/wimood/pkg/errors"
)

// Client talks to the Wimood XML product feed and the Wimood REST order API.
type Client struct {
	feedURL     string
	apiKey      string
	customerID  string
	orderAPIURL string
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewClient creates a new Wimood client
func NewClient(cfg config.WimoodConfig, logger *zap.Logger) *Client {
	return &Client{
		feedURL:     strings.TrimSuffix(cfg.FeedURL, "/"),
		apiKey:      cfg.APIKey,
		customerID:  cfg.CustomerID,
		orderAPIURL: strings.TrimSuffix(cfg.OrderAPIURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

func (c *Client) fullFeedURL() string {
	return fmt.Sprintf("%s/index.php?api_key=%s&klantnummer=%s", c.feedURL, c.apiKey, c.customerID)
}

// CheckFeed is the pre-flight check for the product feed: reachable, valid
// key, parseable XML with at least one product.
func (c *Client) CheckFeed(ctx context.Context) error {
	products, err := c.FetchProducts(ctx)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		return &apperrors.ErrFeedUnavailable{Reason: "feed contains no products"}
	}
	c.logger.Info("Wimood feed pre-flight OK", zap.Int("products", len(products)))
	return nil
}

// FetchProducts downloads and parses the XML product feed. A feed with zero
// <product> elements is a valid empty feed; an invalid key marker, non-200
// status or XML parse failure is a hard failure for this fetch.
func (c *Client) FetchProducts(ctx context.Context) ([]domain.CandidateProduct, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.fullFeedURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create feed request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &apperrors.ErrFeedUnavailable{Reason: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperrors.ErrFeedUnavailable{Reason: fmt.Sprintf("failed to read feed body: %v", err)}
	}

	if resp.StatusCode == http.StatusUnauthorized || bytes.Contains(body, []byte("Invalid API Key")) {
		return nil, &apperrors.ErrFeedUnavailable{Reason: "invalid API key"}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &apperrors.ErrFeedUnavailable{Reason: fmt.Sprintf("feed returned status %d", resp.StatusCode)}
	}

	products, err := parseFeed(body)
	if err != nil {
		return nil, &apperrors.ErrFeedUnavailable{Reason: fmt.Sprintf("XML parse failure: %v", err)}
	}

	c.logger.Info("Fetched Wimood product feed", zap.Int("products", len(products)))
	return products, nil
}

// parseFeed walks the XML token stream and decodes every <product> element
// regardless of nesting depth, mirroring a findall(".//product") lookup.
func parseFeed(body []byte) ([]domain.CandidateProduct, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))
	products := []domain.CandidateProduct{}

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "product" {
			continue
		}

		var fp feedProduct
		if err := decoder.DecodeElement(&fp, &start); err != nil {
			return nil, err
		}

		stock, _ := strconv.Atoi(strings.TrimSpace(fp.Stock))
		products = append(products, domain.CandidateProduct{
			WimoodProductID: strings.TrimSpace(fp.ProductID),
			SKU:             strings.TrimSpace(fp.ProductCode),
			Title:           strings.TrimSpace(fp.ProductName),
			Brand:           strings.TrimSpace(fp.Brand),
			EAN:             strings.TrimSpace(fp.EAN),
			Price:           defaultPrice(fp.MSRP),
			WholesalePrice:  defaultPrice(fp.WholesalePrice),
			Stock:           stock,
		})
	}

	return products, nil
}

func defaultPrice(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "0.00"
	}
	return s
}

func (c *Client) orderHeaders(req *http.Request) {
	req.Header.Set("X-AUTH-TOKEN", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
}

// CheckOrderAPI is the pre-flight check for the REST order API.
func (c *Client) CheckOrderAPI(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.orderAPIURL+"/orders", nil)
	if err != nil {
		return err
	}
	c.orderHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("wimood order API unreachable: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return &apperrors.ErrAPIError{Service: "wimood", Status: resp.StatusCode, Message: "auth error"}
	}

	c.logger.Info("Wimood order API pre-flight OK", zap.Int("status", resp.StatusCode))
	return nil
}

// CreateOrder creates a dropship order at Wimood and returns the Wimood
// order number.
func (c *Client) CreateOrder(ctx context.Context, order CreateOrderRequest) (int64, error) {
	// Fixed dropship flags for every order
	order.Shipment = true
	order.Payment = true
	order.Dropshipment = true
	order.Split = true

	payload, err := json.Marshal(order)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal order: %w", err)
	}

	c.logger.Info("Creating Wimood order",
		zap.String("reference", order.Reference),
		zap.Int("items", len(order.Order)),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.orderAPIURL+"/orders", bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	c.orderHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to create Wimood order: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read order response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return 0, &apperrors.ErrAPIError{
			Service: "wimood",
			Status:  resp.StatusCode,
			Message: truncate(string(body), 500),
		}
	}

	var created createOrderResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return 0, fmt.Errorf("failed to parse order response: %w", err)
	}

	orderID := created.orderID()
	if orderID == 0 {
		return 0, &apperrors.ErrAPIError{
			Service: "wimood",
			Status:  resp.StatusCode,
			Message: "order response missing order id",
		}
	}

	c.logger.Info("Wimood order created",
		zap.Int64("wimood_order_id", orderID),
		zap.String("reference", order.Reference),
	)
	return orderID, nil
}

// GetOrderStatus fetches the status and tracking info of a Wimood order.
func (c *Client) GetOrderStatus(ctx context.Context, wimoodOrderID int64) (*OrderStatusResponse, error) {
	url := fmt.Sprintf("%s/orders/%d", c.orderAPIURL, wimoodOrderID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.orderHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Wimood order status: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read status response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &apperrors.ErrAPIError{
			Service: "wimood",
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("order status failed for %d", wimoodOrderID),
		}
	}

	var status OrderStatusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status response: %w", err)
	}

	return &status, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
