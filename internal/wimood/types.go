package wimood

// feedProduct is one <product> element in the Wimood XML feed.
// Field names follow the feed's Dutch element names where they differ.
type feedProduct struct {
	ProductID      string `xml:"product_id"`
	ProductCode    string `xml:"product_code"`
	ProductName    string `xml:"product_name"`
	Brand          string `xml:"brand"`
	EAN            string `xml:"ean"`
	MSRP           string `xml:"msrp"`
	WholesalePrice string `xml:"prijs"`
	Stock          string `xml:"stock"`
}

// CustomerAddress is the shipping address shape the Wimood order API expects.
// All fields are sent, empty strings for anything missing, never null.
type CustomerAddress struct {
	Company       string `json:"company"`
	ContactPerson string `json:"contact_person"`
	Street        string `json:"street"`
	Housenumber   string `json:"housenumber"`
	Postcode      string `json:"postcode"`
	City          string `json:"city"`
	Country       string `json:"country"`
}

// OrderItem is one dropship line in a Wimood order.
type OrderItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// CreateOrderRequest is the payload for POST /orders.
type CreateOrderRequest struct {
	Shipment        bool            `json:"shipment"`
	Payment         bool            `json:"payment"`
	Dropshipment    bool            `json:"dropshipment"`
	Split           bool            `json:"split"`
	Reference       string          `json:"reference"`
	Remark          string          `json:"remark,omitempty"`
	CustomerAddress CustomerAddress `json:"customer_address"`
	Order           []OrderItem     `json:"order"`
}

// createOrderResponse covers the id field variants Wimood has been seen
// returning for a created order.
type createOrderResponse struct {
	OrderNumber int64 `json:"order_number"`
	OrderID     int64 `json:"order_id"`
	ID          int64 `json:"id"`
}

func (r createOrderResponse) orderID() int64 {
	if r.OrderNumber != 0 {
		return r.OrderNumber
	}
	if r.OrderID != 0 {
		return r.OrderID
	}
	return r.ID
}

// TrackAndTrace is the tracking block on an order status response.
type TrackAndTrace struct {
	Code string `json:"code"`
	URL  string `json:"url"`
}

// OrderStatusResponse is the response of GET /orders/{id}.
type OrderStatusResponse struct {
	Status        string         `json:"status"`
	TrackAndTrace *TrackAndTrace `json:"track_and_trace"`
}
