package application

import (
	"context"
	"time"

	orderdomain "github.com/ateliemimos/store/internal/order/domain"
	"github.com/ateliemimos/store/internal/payment/domain"
)

// OrderLedger is the slice of the order repository reconciliation needs.
type OrderLedger interface {
	ApplyPaymentEvent(ctx context.Context, orderID string, st orderdomain.PaymentStatus, paymentID string, confirmFulfillment bool, eventAt time.Time, eventType string, payload []byte, headers map[string]string, traceparent string) error
}

// ProcessorClient fetches full payment details for a webhook-reported id.
type ProcessorClient interface {
	Payment(ctx context.Context, id string) (domain.Payment, error)
}

// Deduper tracks applied processor notifications so redeliveries are
// skipped. Mark is called only after a successful apply; a notification
// that failed mid-flight stays unmarked and its redelivery is processed.
type Deduper interface {
	Key(paymentID, status string) string
	Seen(ctx context.Context, key string) (bool, error)
	Mark(ctx context.Context, key string) error
}
