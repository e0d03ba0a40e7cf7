package application

import (
	"context"
	"time"

	catalogdomain "github.com/ateliemimos/store/internal/catalog/domain"
	"github.com/ateliemimos/store/internal/order/domain"
)

type OrderRepository interface {
	CreateWithOutbox(ctx context.Context, o domain.Order, eventType string, payload []byte, headers map[string]string, traceparent string) error
	SetPreference(ctx context.Context, orderID, preferenceID string) error
	// DeleteWithOutbox is the checkout compensation: the order row and its
	// still-pending OrderPlaced event are removed together, and when that
	// event already left through the relay a compensating event is written
	// instead. Deleting an absent order is a no-op.
	DeleteWithOutbox(ctx context.Context, orderID, eventType string, payload []byte, headers map[string]string, traceparent string) error
	Get(ctx context.Context, id string) (domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	SetFulfillment(ctx context.Context, id string, st domain.FulfillmentStatus, expectedVersion int64) error
	ApplyPaymentEvent(ctx context.Context, orderID string, st domain.PaymentStatus, paymentID string, confirmFulfillment bool, eventAt time.Time, eventType string, payload []byte, headers map[string]string, traceparent string) error
}

type CatalogReader interface {
	Product(ctx context.Context, id string) (catalogdomain.Product, error)
}

// PreferenceRequest describes the payment session asked of the processor.
// The order id doubles as the correlation reference embedded in the session.
type PreferenceRequest struct {
	OrderID        string
	Title          string
	Quantity       int
	UnitPriceCents int64
	PayerName      string
	PayerEmail     string
	PayerPhone     string
}

type Preference struct {
	ID        string
	InitPoint string
}

type PaymentGateway interface {
	CreatePreference(ctx context.Context, req PreferenceRequest) (Preference, error)
}
