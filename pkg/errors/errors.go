package errors

import (
	"fmt"

	"github.com/Triple-C-BE/wimood/internal/domain"
)

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrFeedUnavailable is returned when the Wimood feed cannot be fetched or
// parsed. It aborts the current cycle; the next interval retries from scratch.
type ErrFeedUnavailable struct {
	Reason string
}

func (e *ErrFeedUnavailable) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("wimood feed unavailable: %s", e.Reason)
	}
	return "wimood feed unavailable"
}

// ErrAPIError is returned when a Shopify or Wimood call succeeds at the
// transport level but the response body signals failure (an "errors" field,
// an invalid-key marker, a non-2xx status).
type ErrAPIError struct {
	Service string
	Status  int
	Message string
}

func (e *ErrAPIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Service, e.Status, e.Message)
}

// ErrInvalidStateTransition is returned when a backward fulfillment
// transition is attempted against the order store
type ErrInvalidStateTransition struct {
	From domain.FulfillmentStatus
	To   domain.FulfillmentStatus
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid fulfillment transition from %s to %s", e.From, e.To)
}
