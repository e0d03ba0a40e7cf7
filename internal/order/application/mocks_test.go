package application

import (
	"context"
	"time"

	catalogapp "github.com/ateliemimos/store/internal/catalog/application"
	catalogdomain "github.com/ateliemimos/store/internal/catalog/domain"
	"github.com/ateliemimos/store/internal/order/domain"
)

// mockCatalog implements CatalogReader for testing
type mockCatalog struct {
	products map[string]catalogdomain.Product
	err      error
}

func (m *mockCatalog) Product(_ context.Context, id string) (catalogdomain.Product, error) {
	if m.err != nil {
		return catalogdomain.Product{}, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return catalogdomain.Product{}, catalogapp.ErrNotFound
	}
	return p, nil
}

type fulfillmentCall struct {
	ID      string
	Status  domain.FulfillmentStatus
	Version int64
}

// mockOrderRepo implements OrderRepository for testing
type mockOrderRepo struct {
	created      *domain.Order // captures the order passed to CreateWithOutbox
	createdEvent string
	createErr    error
	prefOrderID  string
	prefID       string
	prefErr      error
	deleted      []string
	deletedEvent string
	orders       map[string]domain.Order
	listed       []domain.Order
	fulfillment  *fulfillmentCall
}

func (m *mockOrderRepo) CreateWithOutbox(_ context.Context, o domain.Order, eventType string, _ []byte, _ map[string]string, _ string) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = &o
	m.createdEvent = eventType
	return nil
}

func (m *mockOrderRepo) SetPreference(_ context.Context, orderID, preferenceID string) error {
	if m.prefErr != nil {
		return m.prefErr
	}
	m.prefOrderID = orderID
	m.prefID = preferenceID
	return nil
}

func (m *mockOrderRepo) DeleteWithOutbox(_ context.Context, orderID, eventType string, _ []byte, _ map[string]string, _ string) error {
	m.deleted = append(m.deleted, orderID)
	m.deletedEvent = eventType
	return nil
}

func (m *mockOrderRepo) Get(_ context.Context, id string) (domain.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return domain.Order{}, ErrNotFound
	}
	return o, nil
}

func (m *mockOrderRepo) List(_ context.Context) ([]domain.Order, error) {
	return m.listed, nil
}

func (m *mockOrderRepo) SetFulfillment(_ context.Context, id string, st domain.FulfillmentStatus, expectedVersion int64) error {
	m.fulfillment = &fulfillmentCall{ID: id, Status: st, Version: expectedVersion}
	return nil
}

func (m *mockOrderRepo) ApplyPaymentEvent(_ context.Context, _ string, _ domain.PaymentStatus, _ string, _ bool, _ time.Time, _ string, _ []byte, _ map[string]string, _ string) error {
	return nil
}

// mockGateway implements PaymentGateway for testing
type mockGateway struct {
	pref   Preference
	err    error
	gotReq *PreferenceRequest
}

func (m *mockGateway) CreatePreference(_ context.Context, req PreferenceRequest) (Preference, error) {
	m.gotReq = &req
	if m.err != nil {
		return Preference{}, m.err
	}
	return m.pref, nil
}
