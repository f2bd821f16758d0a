package shopify

// Product is the diff-relevant projection of a Shopify product.
type Product struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	BodyHTML string    `json:"body_html"`
	Vendor   string    `json:"vendor"`
	Tags     string    `json:"tags"`
	Status   string    `json:"status"`
	Variants []Variant `json:"variants"`
	Images   []Image   `json:"images"`
}

// FirstVariant returns the product's first variant, or nil. The sync only
// ever manages single-variant products.
func (p *Product) FirstVariant() *Variant {
	if len(p.Variants) == 0 {
		return nil
	}
	return &p.Variants[0]
}

// SKU returns the first variant's SKU, empty if there is none.
func (p *Product) SKU() string {
	if v := p.FirstVariant(); v != nil {
		return v.SKU
	}
	return ""
}

type Variant struct {
	ID                  int64  `json:"id"`
	SKU                 string `json:"sku"`
	Price               string `json:"price"`
	Barcode             string `json:"barcode,omitempty"`
	InventoryItemID     int64  `json:"inventory_item_id,omitempty"`
	InventoryManagement string `json:"inventory_management,omitempty"`
}

type Image struct {
	ID  int64  `json:"id,omitempty"`
	Src string `json:"src"`
}

// Metafield carries structured product data (brand, EAN, MSRP, specs).
type Metafield struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	Type      string `json:"type"`
}

// Order is the feed-level view of a Shopify order; LineItems and
// ShippingAddress are only populated by GetOrder.
type Order struct {
	ID                int64            `json:"id"`
	OrderNumber       int64            `json:"order_number"`
	Name              string           `json:"name"`
	FulfillmentStatus string           `json:"fulfillment_status"`
	CreatedAt         string           `json:"created_at"`
	LineItems         []LineItem       `json:"line_items"`
	ShippingAddress   *ShippingAddress `json:"shipping_address"`
}

type LineItem struct {
	ID       int64  `json:"id"`
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

type ShippingAddress struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Company     string `json:"company"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2"`
	Zip         string `json:"zip"`
	City        string `json:"city"`
	CountryCode string `json:"country_code"`
}

// Request/response envelopes per operation.

type productEnvelope struct {
	Product Product `json:"product"`
}

type productsEnvelope struct {
	Products []Product `json:"products"`
}

type ordersEnvelope struct {
	Orders []Order `json:"orders"`
}

type orderEnvelope struct {
	Order Order `json:"order"`
}

type createProductRequest struct {
	Product productPayload `json:"product"`
}

type productPayload struct {
	ID         int64            `json:"id,omitempty"`
	Title      string           `json:"title,omitempty"`
	BodyHTML   string           `json:"body_html,omitempty"`
	Vendor     string           `json:"vendor,omitempty"`
	Tags       string           `json:"tags,omitempty"`
	Status     string           `json:"status,omitempty"`
	Variants   []Variant        `json:"variants,omitempty"`
	Images     []Image          `json:"images,omitempty"`
	Metafields []Metafield      `json:"metafields,omitempty"`
}

type updateVariantRequest struct {
	Variant variantPayload `json:"variant"`
}

type variantPayload struct {
	ID    int64  `json:"id"`
	Price string `json:"price"`
}

type setInventoryLevelRequest struct {
	LocationID      int64 `json:"location_id"`
	InventoryItemID int64 `json:"inventory_item_id"`
	Available       int   `json:"available"`
}

type updateInventoryItemRequest struct {
	InventoryItem inventoryItemPayload `json:"inventory_item"`
}

type inventoryItemPayload struct {
	ID   int64  `json:"id"`
	Cost string `json:"cost"`
}

type locationsEnvelope struct {
	Locations []struct {
		ID int64 `json:"id"`
	} `json:"locations"`
}

type shopEnvelope struct {
	Shop *struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"shop"`
}

type createFulfillmentRequest struct {
	Fulfillment fulfillmentPayload `json:"fulfillment"`
}

type fulfillmentPayload struct {
	LocationID     int64    `json:"location_id"`
	TrackingNumber string   `json:"tracking_number,omitempty"`
	TrackingURLs   []string `json:"tracking_urls,omitempty"`
	NotifyCustomer bool     `json:"notify_customer"`
}

type fulfillmentsEnvelope struct {
	Fulfillments []struct {
		ID int64 `json:"id"`
	} `json:"fulfillments"`
}

type fulfillmentEventRequest struct {
	Event struct {
		Status string `json:"status"`
	} `json:"event"`
}
