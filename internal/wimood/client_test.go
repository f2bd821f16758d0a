package wimood

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Triple-C-BE/wimood/internal/config"
	apperrors "github.com/Triple-C-BE/wimood/pkg/errors"
)

func testClient(feedURL, orderURL string) *Client {
	return NewClient(config.WimoodConfig{
		FeedURL:     feedURL,
		APIKey:      "test-key",
		CustomerID:  "12345",
		OrderAPIURL: orderURL,
		Timeout:     5 * time.Second,
	}, zap.NewNop())
}

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<products>
  <product>
    <product_id>101</product_id>
    <product_code>W101</product_code>
    <product_name> Hanglamp Wood </product_name>
    <brand>Wimood</brand>
    <ean>8719325000001</ean>
    <msrp>199.9</msrp>
    <prijs>89.50</prijs>
    <stock>12</stock>
  </product>
  <product>
    <product_id>102</product_id>
    <product_code>W102</product_code>
    <product_name>Tafellamp</product_name>
    <msrp></msrp>
    <prijs></prijs>
    <stock>not-a-number</stock>
  </product>
</products>`

func TestFetchProducts(t *testing.T) {
	t.Run("parses feed and trims fields", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/index.php", r.URL.Path)
			assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
			assert.Equal(t, "12345", r.URL.Query().Get("klantnummer"))
			w.Write([]byte(sampleFeed))
		}))
		defer srv.Close()

		products, err := testClient(srv.URL, srv.URL).FetchProducts(context.Background())
		require.NoError(t, err)
		require.Len(t, products, 2)

		assert.Equal(t, "101", products[0].WimoodProductID)
		assert.Equal(t, "W101", products[0].SKU)
		assert.Equal(t, "Hanglamp Wood", products[0].Title)
		assert.Equal(t, "199.9", products[0].Price)
		assert.Equal(t, "89.50", products[0].WholesalePrice)
		assert.Equal(t, 12, products[0].Stock)

		// Empty prices default to 0.00, unparseable stock to 0.
		assert.Equal(t, "0.00", products[1].Price)
		assert.Equal(t, "0.00", products[1].WholesalePrice)
		assert.Equal(t, 0, products[1].Stock)
	})

	t.Run("zero products is a valid empty feed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<?xml version="1.0"?><products></products>`))
		}))
		defer srv.Close()

		products, err := testClient(srv.URL, srv.URL).FetchProducts(context.Background())
		require.NoError(t, err)
		assert.Empty(t, products)
	})

	t.Run("invalid api key marker is a hard failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("Invalid API Key"))
		}))
		defer srv.Close()

		_, err := testClient(srv.URL, srv.URL).FetchProducts(context.Background())
		var feedErr *apperrors.ErrFeedUnavailable
		require.ErrorAs(t, err, &feedErr)
	})

	t.Run("malformed xml is a hard failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<products><product><product_id>1</product_id>`))
		}))
		defer srv.Close()

		_, err := testClient(srv.URL, srv.URL).FetchProducts(context.Background())
		var feedErr *apperrors.ErrFeedUnavailable
		require.ErrorAs(t, err, &feedErr)
	})

	t.Run("non-200 status is a hard failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := testClient(srv.URL, srv.URL).FetchProducts(context.Background())
		var feedErr *apperrors.ErrFeedUnavailable
		require.ErrorAs(t, err, &feedErr)
	})
}

func TestCreateOrder(t *testing.T) {
	t.Run("forces dropship flags and reads the order number", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/orders", r.URL.Path)
			assert.Equal(t, "test-key", r.Header.Get("X-AUTH-TOKEN"))

			var req CreateOrderRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.True(t, req.Shipment)
			assert.True(t, req.Payment)
			assert.True(t, req.Dropshipment)
			assert.True(t, req.Split)
			assert.Equal(t, "#1001", req.Reference)

			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"order_number": 5001}`))
		}))
		defer srv.Close()

		id, err := testClient(srv.URL, srv.URL).CreateOrder(context.Background(), CreateOrderRequest{
			Reference: "#1001",
			Order:     []OrderItem{{ProductID: 101, Quantity: 2}},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(5001), id)
	})

	t.Run("falls back through order id field variants", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id": 7007}`))
		}))
		defer srv.Close()

		id, err := testClient(srv.URL, srv.URL).CreateOrder(context.Background(), CreateOrderRequest{})
		require.NoError(t, err)
		assert.Equal(t, int64(7007), id)
	})

	t.Run("response without an order id is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"message": "accepted"}`))
		}))
		defer srv.Close()

		_, err := testClient(srv.URL, srv.URL).CreateOrder(context.Background(), CreateOrderRequest{})
		var apiErr *apperrors.ErrAPIError
		require.ErrorAs(t, err, &apiErr)
	})
}

func TestGetOrderStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/5001", r.URL.Path)
		w.Write([]byte(`{"status": "shipped", "track_and_trace": {"code": "3S123", "url": "https://track.example/3S123"}}`))
	}))
	defer srv.Close()

	status, err := testClient(srv.URL, srv.URL).GetOrderStatus(context.Background(), 5001)
	require.NoError(t, err)
	assert.Equal(t, "shipped", status.Status)
	require.NotNil(t, status.TrackAndTrace)
	assert.Equal(t, "3S123", status.TrackAndTrace.Code)
}
