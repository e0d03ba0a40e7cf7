package application

import "errors"

var (
	ErrInvalidRequest     = errors.New("invalid checkout request")
	ErrInvalidQuantity    = errors.New("quantity must be between 1 and 99")
	ErrMissingFields      = errors.New("name, email and address are required")
	ErrProductUnavailable = errors.New("product unavailable")
	ErrPaymentSession     = errors.New("payment session could not be created")

	ErrNotFound   = errors.New("order not found")
	ErrStaleOrder = errors.New("order changed concurrently")
	// ErrStaleEvent marks a payment signal older than the one already
	// applied. Callers treat it as an acknowledged no-op.
	ErrStaleEvent = errors.New("stale payment event")
)
