package syncer

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Triple-C-BE/wimood/internal/domain"
	"github.com/Triple-C-BE/wimood/internal/shopify"
	"github.com/Triple-C-BE/wimood/internal/wimood"
	pkgerrors "github.com/Triple-C-BE/wimood/pkg/errors"
)

// fakeCatalog is an in-memory stand-in for the Shopify product API.
type fakeCatalog struct {
	products map[int64]*shopify.Product
	nextID   int64

	listCalls   int
	getCalls    int
	stockSet    map[int64]int
	costSet     map[int64]int // inventory item id -> times cost was set
	failCreate  map[string]bool
	failUpdate  map[int64]bool
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		products:   map[int64]*shopify.Product{},
		nextID:     1000,
		stockSet:   map[int64]int{},
		costSet:    map[int64]int{},
		failCreate: map[string]bool{},
		failUpdate: map[int64]bool{},
	}
}

func (f *fakeCatalog) add(p shopify.Product) *shopify.Product {
	cp := p
	f.products[cp.ID] = &cp
	return &cp
}

func (f *fakeCatalog) ListProducts(ctx context.Context) ([]shopify.Product, error) {
	f.listCalls++
	out := make([]shopify.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeCatalog) GetProduct(ctx context.Context, productID int64) (*shopify.Product, error) {
	f.getCalls++
	p, ok := f.products[productID]
	if !ok {
		return nil, &pkgerrors.ErrNotFound{Resource: "product", ID: strconv.FormatInt(productID, 10)}
	}
	cp := *p
	return &cp, nil
}

func (f *fakeCatalog) CreateProduct(ctx context.Context, candidate domain.CandidateProduct) (*shopify.Product, error) {
	if f.failCreate[candidate.SKU] {
		return nil, fmt.Errorf("create failed for %s", candidate.SKU)
	}
	f.nextID++
	p := &shopify.Product{
		ID:       f.nextID,
		Title:    candidate.Title,
		BodyHTML: candidate.Description,
		Status:   "active",
		Variants: []shopify.Variant{{
			ID:              f.nextID + 500000,
			SKU:             candidate.SKU,
			Price:           candidate.Price,
			InventoryItemID: f.nextID + 900000,
		}},
	}
	for _, src := range candidate.Images {
		p.Images = append(p.Images, shopify.Image{Src: src})
	}
	f.products[p.ID] = p
	cp := *p
	return &cp, nil
}

func (f *fakeCatalog) UpdateProduct(ctx context.Context, productID, variantID int64, candidate domain.CandidateProduct) (*shopify.Product, error) {
	if f.failUpdate[productID] {
		return nil, fmt.Errorf("update failed for %d", productID)
	}
	p, ok := f.products[productID]
	if !ok {
		return nil, &pkgerrors.ErrNotFound{Resource: "product", ID: strconv.FormatInt(productID, 10)}
	}
	p.Title = candidate.Title
	p.Status = "active"
	if candidate.Description != "" {
		p.BodyHTML = candidate.Description
	}
	if len(candidate.Images) > len(p.Images) {
		p.Images = nil
		for _, src := range candidate.Images {
			p.Images = append(p.Images, shopify.Image{Src: src})
		}
	}
	if len(p.Variants) > 0 {
		p.Variants[0].Price = candidate.Price
	}
	cp := *p
	return &cp, nil
}

func (f *fakeCatalog) DeactivateProduct(ctx context.Context, productID int64) error {
	p, ok := f.products[productID]
	if !ok {
		return &pkgerrors.ErrNotFound{Resource: "product", ID: strconv.FormatInt(productID, 10)}
	}
	p.Status = "draft"
	return nil
}

func (f *fakeCatalog) SetInventoryLevel(ctx context.Context, inventoryItemID int64, quantity int) error {
	f.stockSet[inventoryItemID] = quantity
	return nil
}

func (f *fakeCatalog) SetInventoryCost(ctx context.Context, inventoryItemID int64, cost string) error {
	f.costSet[inventoryItemID]++
	return nil
}

// fakeMappings is an in-memory mapping store.
type fakeMappings struct {
	byWimoodID map[string]*domain.ProductMapping
	costSynced map[string]bool
}

func newFakeMappings() *fakeMappings {
	return &fakeMappings{
		byWimoodID: map[string]*domain.ProductMapping{},
		costSynced: map[string]bool{},
	}
}

func (f *fakeMappings) GetByWimoodID(ctx context.Context, wimoodProductID string) (*domain.ProductMapping, error) {
	m, ok := f.byWimoodID[wimoodProductID]
	if !ok {
		return nil, &pkgerrors.ErrNotFound{Resource: "product_mapping", ID: wimoodProductID}
	}
	cp := *m
	cp.CostSynced = f.costSynced[m.SKU]
	return &cp, nil
}

func (f *fakeMappings) GetBySKU(ctx context.Context, sku string) (*domain.ProductMapping, error) {
	for _, m := range f.byWimoodID {
		if m.SKU == sku {
			cp := *m
			cp.CostSynced = f.costSynced[sku]
			return &cp, nil
		}
	}
	return nil, &pkgerrors.ErrNotFound{Resource: "product_mapping", ID: sku}
}

func (f *fakeMappings) GetAll(ctx context.Context) ([]*domain.ProductMapping, error) {
	out := make([]*domain.ProductMapping, 0, len(f.byWimoodID))
	for _, m := range f.byWimoodID {
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeMappings) Upsert(ctx context.Context, m *domain.ProductMapping) error {
	cp := *m
	f.byWimoodID[m.WimoodProductID] = &cp
	return nil
}

func (f *fakeMappings) Remove(ctx context.Context, wimoodProductID string) (bool, error) {
	_, ok := f.byWimoodID[wimoodProductID]
	delete(f.byWimoodID, wimoodProductID)
	return ok, nil
}

func (f *fakeMappings) IsCostSynced(ctx context.Context, sku string) (bool, error) {
	return f.costSynced[sku], nil
}

func (f *fakeMappings) MarkCostSynced(ctx context.Context, sku string) error {
	f.costSynced[sku] = true
	return nil
}

func (f *fakeMappings) Count(ctx context.Context) (int, error) {
	return len(f.byWimoodID), nil
}

// fakeOrderStore is an in-memory order store with the same transition rules
// as the postgres implementation.
type fakeOrderStore struct {
	orders map[int64]*domain.Order
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: map[int64]*domain.Order{}}
}

func (f *fakeOrderStore) Upsert(ctx context.Context, o *domain.Order) error {
	if existing, ok := f.orders[o.ShopifyOrderID]; ok {
		existing.OrderNumber = o.OrderNumber
		return nil
	}
	cp := *o
	f.orders[o.ShopifyOrderID] = &cp
	return nil
}

func (f *fakeOrderStore) Get(ctx context.Context, shopifyOrderID int64) (*domain.Order, error) {
	o, ok := f.orders[shopifyOrderID]
	if !ok {
		return nil, &pkgerrors.ErrNotFound{Resource: "order", ID: strconv.FormatInt(shopifyOrderID, 10)}
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderStore) GetAll(ctx context.Context) ([]*domain.Order, error) {
	out := make([]*domain.Order, 0, len(f.orders))
	for _, o := range f.orders {
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeOrderStore) GetActive(ctx context.Context) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, o := range f.orders {
		if o.FulfillmentStatus == domain.FulfillmentDelivered || o.FulfillmentStatus == domain.FulfillmentCancelled {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeOrderStore) MarkSubmitted(ctx context.Context, shopifyOrderID, wimoodOrderID int64) error {
	o, ok := f.orders[shopifyOrderID]
	if !ok {
		return &pkgerrors.ErrNotFound{Resource: "order", ID: strconv.FormatInt(shopifyOrderID, 10)}
	}
	o.DropshipSubmitted = true
	o.WimoodOrderID = wimoodOrderID
	return nil
}

func (f *fakeOrderStore) UpdateWimoodStatus(ctx context.Context, shopifyOrderID int64, status string, tracking domain.Tracking) error {
	o, ok := f.orders[shopifyOrderID]
	if !ok {
		return &pkgerrors.ErrNotFound{Resource: "order", ID: strconv.FormatInt(shopifyOrderID, 10)}
	}
	o.WimoodStatus = status
	if tracking.Code != "" {
		o.TrackingNumber = tracking.Code
		o.TrackingURL = tracking.URL
	}
	return nil
}

func (f *fakeOrderStore) UpdateFulfillment(ctx context.Context, shopifyOrderID int64, status domain.FulfillmentStatus, tracking domain.Tracking) error {
	o, ok := f.orders[shopifyOrderID]
	if !ok {
		return &pkgerrors.ErrNotFound{Resource: "order", ID: strconv.FormatInt(shopifyOrderID, 10)}
	}
	if !o.FulfillmentStatus.CanTransitionTo(status) {
		return &pkgerrors.ErrInvalidStateTransition{From: o.FulfillmentStatus, To: status}
	}
	o.FulfillmentStatus = status
	if tracking.Code != "" {
		o.TrackingNumber = tracking.Code
		o.TrackingURL = tracking.URL
	}
	return nil
}

// fakeAttempts is an in-memory submission attempt store.
type fakeAttempts struct {
	attempts map[int64]*domain.SubmissionAttempt
}

func newFakeAttempts() *fakeAttempts {
	return &fakeAttempts{attempts: map[int64]*domain.SubmissionAttempt{}}
}

func (f *fakeAttempts) Get(ctx context.Context, shopifyOrderID int64) (*domain.SubmissionAttempt, error) {
	a, ok := f.attempts[shopifyOrderID]
	if !ok {
		return nil, &pkgerrors.ErrNotFound{Resource: "submission_attempt", ID: strconv.FormatInt(shopifyOrderID, 10)}
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAttempts) Record(ctx context.Context, attempt *domain.SubmissionAttempt) error {
	cp := *attempt
	f.attempts[attempt.ShopifyOrderID] = &cp
	return nil
}

func (f *fakeAttempts) Clear(ctx context.Context, shopifyOrderID int64) error {
	delete(f.attempts, shopifyOrderID)
	return nil
}

// fakeStorefront is an in-memory Shopify order API.
type fakeStorefront struct {
	unfulfilled []shopify.Order
	details     map[int64]*shopify.Order

	fulfillments map[int64]int
	inProgress   map[int64]int
	cancelled    map[int64]int
	delivered    map[int64]int
	failFulfill  map[int64]bool
}

func newFakeStorefront() *fakeStorefront {
	return &fakeStorefront{
		details:      map[int64]*shopify.Order{},
		fulfillments: map[int64]int{},
		inProgress:   map[int64]int{},
		cancelled:    map[int64]int{},
		delivered:    map[int64]int{},
		failFulfill:  map[int64]bool{},
	}
}

func (f *fakeStorefront) ListUnfulfilledOrders(ctx context.Context) ([]shopify.Order, error) {
	return f.unfulfilled, nil
}

func (f *fakeStorefront) GetOrder(ctx context.Context, orderID int64) (*shopify.Order, error) {
	o, ok := f.details[orderID]
	if !ok {
		return nil, &pkgerrors.ErrNotFound{Resource: "order", ID: strconv.FormatInt(orderID, 10)}
	}
	cp := *o
	return &cp, nil
}

func (f *fakeStorefront) CreateFulfillment(ctx context.Context, orderID int64, tracking domain.Tracking) error {
	if f.failFulfill[orderID] {
		return fmt.Errorf("fulfillment failed for %d", orderID)
	}
	f.fulfillments[orderID]++
	return nil
}

func (f *fakeStorefront) MarkInProgress(ctx context.Context, orderID int64) error {
	f.inProgress[orderID]++
	return nil
}

func (f *fakeStorefront) CancelOrder(ctx context.Context, orderID int64) error {
	f.cancelled[orderID]++
	return nil
}

func (f *fakeStorefront) MarkDelivered(ctx context.Context, orderID int64) error {
	f.delivered[orderID]++
	return nil
}

// fakeSupplier is an in-memory Wimood order API.
type fakeSupplier struct {
	nextOrderID int64
	created     []wimood.CreateOrderRequest
	statuses    map[int64]*wimood.OrderStatusResponse
	failCreate  bool
}

func newFakeSupplier() *fakeSupplier {
	return &fakeSupplier{
		nextOrderID: 5000,
		statuses:    map[int64]*wimood.OrderStatusResponse{},
	}
}

func (f *fakeSupplier) CreateOrder(ctx context.Context, order wimood.CreateOrderRequest) (int64, error) {
	if f.failCreate {
		return 0, fmt.Errorf("wimood order create failed")
	}
	f.created = append(f.created, order)
	f.nextOrderID++
	return f.nextOrderID, nil
}

func (f *fakeSupplier) GetOrderStatus(ctx context.Context, wimoodOrderID int64) (*wimood.OrderStatusResponse, error) {
	s, ok := f.statuses[wimoodOrderID]
	if !ok {
		return nil, fmt.Errorf("unknown wimood order %d", wimoodOrderID)
	}
	return s, nil
}
