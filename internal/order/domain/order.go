package domain

import (
	"fmt"
	"time"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentApproved PaymentStatus = "approved"
	PaymentRejected PaymentStatus = "rejected"
)

type FulfillmentStatus string

const (
	FulfillmentPending      FulfillmentStatus = "pending"
	FulfillmentConfirmed    FulfillmentStatus = "confirmed"
	FulfillmentInProduction FulfillmentStatus = "in_production"
	FulfillmentShipped      FulfillmentStatus = "shipped"
	FulfillmentDelivered    FulfillmentStatus = "delivered"
	FulfillmentCancelled    FulfillmentStatus = "cancelled"
)

// ParseFulfillmentStatus validates an externally supplied status value
// against the closed set. Free-form values are rejected.
func ParseFulfillmentStatus(s string) (FulfillmentStatus, error) {
	switch st := FulfillmentStatus(s); st {
	case FulfillmentPending, FulfillmentConfirmed, FulfillmentInProduction,
		FulfillmentShipped, FulfillmentDelivered, FulfillmentCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown fulfillment status %q", s)
}

const (
	MinQuantity = 1
	MaxQuantity = 99
)

type Customer struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// Order is one customer's purchase of a quantity of a single product.
// TotalCents is computed from the product price at creation time and never
// changes afterwards. PaymentEventAt records the event time of the last
// applied payment signal; older signals must not overwrite newer ones.
type Order struct {
	ID                string
	Customer          Customer
	ProductID         string
	Quantity          int
	TotalCents        int64
	FulfillmentStatus FulfillmentStatus
	PaymentStatus     PaymentStatus
	PaymentID         string
	PreferenceID      string
	PaymentEventAt    *time.Time
	Version           int64
	CreatedAt         time.Time
}

func NewOrder(id string, c Customer, productID string, quantity int, unitPriceCents int64) Order {
	return Order{
		ID:                id,
		Customer:          c,
		ProductID:         productID,
		Quantity:          quantity,
		TotalCents:        unitPriceCents * int64(quantity),
		FulfillmentStatus: FulfillmentPending,
		PaymentStatus:     PaymentPending,
		Version:           1,
		CreatedAt:         time.Now().UTC(),
	}
}
