package syncer

import (
	"context"

	"github.com/Triple-C-BE/wimood/internal/domain"
	"github.com/Triple-C-BE/wimood/internal/shopify"
	"github.com/Triple-C-BE/wimood/internal/wimood"
)

// CatalogAPI is the slice of the Shopify client the product syncer needs.
type CatalogAPI interface {
	ListProducts(ctx context.Context) ([]shopify.Product, error)
	GetProduct(ctx context.Context, productID int64) (*shopify.Product, error)
	CreateProduct(ctx context.Context, candidate domain.CandidateProduct) (*shopify.Product, error)
	UpdateProduct(ctx context.Context, productID, variantID int64, candidate domain.CandidateProduct) (*shopify.Product, error)
	DeactivateProduct(ctx context.Context, productID int64) error
	SetInventoryLevel(ctx context.Context, inventoryItemID int64, quantity int) error
	SetInventoryCost(ctx context.Context, inventoryItemID int64, cost string) error
}

// StorefrontOrderAPI is the slice of the Shopify client the order syncer needs.
type StorefrontOrderAPI interface {
	ListUnfulfilledOrders(ctx context.Context) ([]shopify.Order, error)
	GetOrder(ctx context.Context, orderID int64) (*shopify.Order, error)
	CreateFulfillment(ctx context.Context, orderID int64, tracking domain.Tracking) error
	MarkInProgress(ctx context.Context, orderID int64) error
	CancelOrder(ctx context.Context, orderID int64) error
	MarkDelivered(ctx context.Context, orderID int64) error
}

// SupplierOrderAPI is the slice of the Wimood client the order syncer needs.
type SupplierOrderAPI interface {
	CreateOrder(ctx context.Context, order wimood.CreateOrderRequest) (int64, error)
	GetOrderStatus(ctx context.Context, wimoodOrderID int64) (*wimood.OrderStatusResponse, error)
}
