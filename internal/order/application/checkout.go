package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	catalogapp "github.com/ateliemimos/store/internal/catalog/application"
	"github.com/ateliemimos/store/internal/order/domain"
	"github.com/ateliemimos/store/pkg/tracing"
)

// CheckoutRequest carries the raw form submission. Parsing and validation
// happen here so no client-supplied value is trusted; in particular any
// price or total sent by the client is ignored.
type CheckoutRequest struct {
	ProductID string
	Quantity  string
	Name      string
	Email     string
	Phone     string
	Address   string
}

type CheckoutResult struct {
	OrderID string
	// PaymentURL is the processor-hosted checkout page. Empty when no
	// processor is configured: the order was kept and the store will
	// contact the customer.
	PaymentURL string
}

// Service is the checkout orchestrator and the admin-facing order
// operations. gateway may be nil (degraded mode, no online payment).
type Service struct {
	log     *slog.Logger
	catalog CatalogReader
	repo    OrderRepository
	gateway PaymentGateway
}

func NewService(log *slog.Logger, catalog CatalogReader, repo OrderRepository, gateway PaymentGateway) *Service {
	return &Service{log: log, catalog: catalog, repo: repo, gateway: gateway}
}

// PlaceOrder validates the submission, persists the order together with its
// OrderPlaced event, and drives payment-session creation. If the processor
// call fails the tentative order is deleted again: an order must never
// outlive a failed session creation.
func (s *Service) PlaceOrder(ctx context.Context, req CheckoutRequest) (CheckoutResult, error) {
	productID, err := uuid.Parse(strings.TrimSpace(req.ProductID))
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("%w: bad product id", ErrInvalidRequest)
	}
	quantity, err := strconv.Atoi(strings.TrimSpace(req.Quantity))
	if err != nil || quantity < domain.MinQuantity || quantity > domain.MaxQuantity {
		return CheckoutResult{}, ErrInvalidQuantity
	}
	customer := domain.Customer{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
	}
	if customer.Name == "" || customer.Email == "" || customer.Address == "" {
		return CheckoutResult{}, ErrMissingFields
	}

	product, err := s.catalog.Product(ctx, productID.String())
	if err != nil {
		if errors.Is(err, catalogapp.ErrNotFound) {
			return CheckoutResult{}, ErrProductUnavailable
		}
		return CheckoutResult{}, err
	}
	if !product.Available {
		return CheckoutResult{}, ErrProductUnavailable
	}

	o := domain.NewOrder(uuid.NewString(), customer, product.ID, quantity, product.PriceCents)
	placed := domain.OrderPlaced{
		OrderID:       o.ID,
		ProductID:     o.ProductID,
		Quantity:      o.Quantity,
		TotalCents:    o.TotalCents,
		CustomerEmail: o.Customer.Email,
	}
	payload, err := json.Marshal(placed)
	if err != nil {
		return CheckoutResult{}, err
	}
	headers := map[string]string{"source": "storefront"}
	if err := s.repo.CreateWithOutbox(ctx, o, "OrderPlaced", payload, headers, tracing.Traceparent(ctx)); err != nil {
		return CheckoutResult{}, err
	}

	if s.gateway == nil {
		s.log.Info("order placed without payment session", "order_id", o.ID)
		return CheckoutResult{OrderID: o.ID}, nil
	}

	pref, err := s.gateway.CreatePreference(ctx, PreferenceRequest{
		OrderID:        o.ID,
		Title:          product.Name,
		Quantity:       o.Quantity,
		UnitPriceCents: product.PriceCents,
		PayerName:      customer.Name,
		PayerEmail:     customer.Email,
		PayerPhone:     customer.Phone,
	})
	if err != nil {
		s.compensate(ctx, o.ID)
		s.log.Error("payment session creation failed", "order_id", o.ID, "err", err)
		return CheckoutResult{}, fmt.Errorf("%w: %v", ErrPaymentSession, err)
	}
	if err := s.repo.SetPreference(ctx, o.ID, pref.ID); err != nil {
		s.compensate(ctx, o.ID)
		s.log.Error("persisting preference failed", "order_id", o.ID, "err", err)
		return CheckoutResult{}, fmt.Errorf("%w: %v", ErrPaymentSession, err)
	}

	s.log.Info("order placed", "order_id", o.ID, "preference_id", pref.ID, "total_cents", o.TotalCents)
	return CheckoutResult{OrderID: o.ID, PaymentURL: pref.InitPoint}, nil
}

func (s *Service) compensate(ctx context.Context, orderID string) {
	cancelled := domain.OrderCancelled{
		OrderID:     orderID,
		Reason:      "payment session failed",
		CancelledAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(cancelled)
	if err != nil {
		s.log.Error("checkout compensation failed", "order_id", orderID, "err", err)
		return
	}
	headers := map[string]string{"source": "storefront"}
	if err := s.repo.DeleteWithOutbox(ctx, orderID, "OrderCancelled", payload, headers, tracing.Traceparent(ctx)); err != nil {
		s.log.Error("checkout compensation failed", "order_id", orderID, "err", err)
	}
}

func (s *Service) Order(ctx context.Context, id string) (domain.Order, error) {
	return s.repo.Get(ctx, id)
}

// Orders lists every order, newest first.
func (s *Service) Orders(ctx context.Context) ([]domain.Order, error) {
	return s.repo.List(ctx)
}

// OverrideFulfillment is the admin status override. Only values from the
// closed fulfillment set are accepted; the version check guards against a
// concurrent payment update between read and write.
func (s *Service) OverrideFulfillment(ctx context.Context, id, status string) error {
	st, err := domain.ParseFulfillmentStatus(status)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.SetFulfillment(ctx, o.ID, st, o.Version)
}
