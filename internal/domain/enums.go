package domain

// FulfillmentStatus represents the local fulfillment state of a Shopify order
type FulfillmentStatus string

const (
	// UNFULFILLED - order observed, nothing shipped yet
	FulfillmentUnfulfilled FulfillmentStatus = "unfulfilled"
	// IN_PROGRESS - Wimood accepted the order, picking/packing
	FulfillmentInProgress FulfillmentStatus = "in_progress"
	// FULFILLED - shipped, fulfillment created in Shopify with tracking
	FulfillmentFulfilled FulfillmentStatus = "fulfilled"
	// DELIVERED - confirmed delivered; polling stops here
	FulfillmentDelivered FulfillmentStatus = "delivered"
	// CANCELLED - cancelled at Wimood and in Shopify
	FulfillmentCancelled FulfillmentStatus = "cancelled"
)

// IsValid checks if the fulfillment status is a known value
func (s FulfillmentStatus) IsValid() bool {
	switch s {
	case FulfillmentUnfulfilled,
		FulfillmentInProgress,
		FulfillmentFulfilled,
		FulfillmentDelivered,
		FulfillmentCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is allowed
func (s FulfillmentStatus) IsTerminal() bool {
	return s == FulfillmentDelivered || s == FulfillmentCancelled
}

// rank orders the forward progression. Cancelled sits outside the chain.
func (s FulfillmentStatus) rank() int {
	switch s {
	case FulfillmentUnfulfilled:
		return 0
	case FulfillmentInProgress:
		return 1
	case FulfillmentFulfilled:
		return 2
	case FulfillmentDelivered:
		return 3
	default:
		return -1
	}
}

// CanTransitionTo checks if a status transition is valid. Forward moves
// along unfulfilled -> in_progress -> fulfilled -> delivered may skip
// intermediate states (Wimood can report shipped before we ever observed
// pending); backward moves are never valid. Cancellation is allowed from
// any non-terminal state.
func (s FulfillmentStatus) CanTransitionTo(next FulfillmentStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == FulfillmentCancelled {
		return true
	}
	return next.rank() > s.rank()
}

// Wimood order statuses as reported by the order status endpoint.
const (
	WimoodStatusPending   = "pending"
	WimoodStatusShipped   = "shipped"
	WimoodStatusDelivered = "delivered"
	WimoodStatusCancelled = "cancelled"
)
