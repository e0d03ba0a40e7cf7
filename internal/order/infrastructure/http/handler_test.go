package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogapp "github.com/ateliemimos/store/internal/catalog/application"
	catalogdomain "github.com/ateliemimos/store/internal/catalog/domain"
	"github.com/ateliemimos/store/internal/order/application"
	orderdomain "github.com/ateliemimos/store/internal/order/domain"
	paymentapp "github.com/ateliemimos/store/internal/payment/application"
	paymentdomain "github.com/ateliemimos/store/internal/payment/domain"
	"github.com/ateliemimos/store/internal/web"
)

// stubProductRepo implements catalogapp.ProductRepository for testing
type stubProductRepo struct {
	products map[string]catalogdomain.Product
}

func (s *stubProductRepo) Create(context.Context, catalogdomain.Product) error { return nil }
func (s *stubProductRepo) Update(context.Context, catalogdomain.Product) error { return nil }
func (s *stubProductRepo) Delete(context.Context, string) error                { return nil }

func (s *stubProductRepo) Get(_ context.Context, id string) (catalogdomain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return catalogdomain.Product{}, catalogapp.ErrNotFound
	}
	return p, nil
}

func (s *stubProductRepo) List(context.Context, bool, string) ([]catalogdomain.Product, error) {
	return nil, nil
}

func (s *stubProductRepo) Featured(context.Context, int) ([]catalogdomain.Product, error) {
	return nil, nil
}

func (s *stubProductRepo) Categories(context.Context) ([]string, error) { return nil, nil }

type ledgerCall struct {
	OrderID string
	Status  orderdomain.PaymentStatus
	Confirm bool
}

// stubOrderRepo implements application.OrderRepository for testing
type stubOrderRepo struct {
	created []orderdomain.Order
	applied []ledgerCall
	deleted []string
	err     error
}

func (s *stubOrderRepo) CreateWithOutbox(_ context.Context, o orderdomain.Order, _ string, _ []byte, _ map[string]string, _ string) error {
	s.created = append(s.created, o)
	return nil
}

func (s *stubOrderRepo) SetPreference(context.Context, string, string) error { return nil }

func (s *stubOrderRepo) DeleteWithOutbox(_ context.Context, orderID, _ string, _ []byte, _ map[string]string, _ string) error {
	s.deleted = append(s.deleted, orderID)
	return nil
}

func (s *stubOrderRepo) Get(context.Context, string) (orderdomain.Order, error) {
	return orderdomain.Order{}, application.ErrNotFound
}

func (s *stubOrderRepo) List(context.Context) ([]orderdomain.Order, error) { return nil, nil }

func (s *stubOrderRepo) SetFulfillment(context.Context, string, orderdomain.FulfillmentStatus, int64) error {
	return nil
}

func (s *stubOrderRepo) ApplyPaymentEvent(_ context.Context, orderID string, st orderdomain.PaymentStatus, _ string, confirm bool, _ time.Time, _ string, _ []byte, _ map[string]string, _ string) error {
	if s.err != nil {
		return s.err
	}
	s.applied = append(s.applied, ledgerCall{OrderID: orderID, Status: st, Confirm: confirm})
	return nil
}

// stubGateway implements application.PaymentGateway for testing
type stubGateway struct{}

func (stubGateway) CreatePreference(_ context.Context, req application.PreferenceRequest) (application.Preference, error) {
	return application.Preference{ID: "pref-1", InitPoint: "https://mp.example/init/" + req.OrderID}, nil
}

// stubProcessor implements paymentapp.ProcessorClient for testing
type stubProcessor struct {
	payments map[string]paymentdomain.Payment
	calls    int
}

func (s *stubProcessor) Payment(_ context.Context, id string) (paymentdomain.Payment, error) {
	s.calls++
	return s.payments[id], nil
}

type stubDeduper struct {
	seen map[string]bool
}

func (s *stubDeduper) Key(paymentID, status string) string { return paymentID + ":" + status }

func (s *stubDeduper) Seen(_ context.Context, key string) (bool, error) {
	return s.seen[key], nil
}

func (s *stubDeduper) Mark(_ context.Context, key string) error {
	if s.seen == nil {
		s.seen = map[string]bool{}
	}
	s.seen[key] = true
	return nil
}

type fixture struct {
	router    chi.Router
	orders    *stubOrderRepo
	processor *stubProcessor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := slog.New(slog.DiscardHandler)

	products := &stubProductRepo{products: map[string]catalogdomain.Product{
		"0b2f8f1c-3d9e-4a6b-8c1d-2e3f4a5b6c7d": {
			ID:         "0b2f8f1c-3d9e-4a6b-8c1d-2e3f4a5b6c7d",
			Name:       "Caneca pintada",
			PriceCents: 4990,
			Available:  true,
		},
	}}
	catalogSvc := catalogapp.NewService(log, products)

	orders := &stubOrderRepo{}
	checkout := application.NewService(log, catalogSvc, orders, stubGateway{})

	processor := &stubProcessor{payments: map[string]paymentdomain.Payment{}}
	reconciler := paymentapp.NewReconciler(log, orders, processor, &stubDeduper{})

	render, err := web.NewRenderer(log)
	require.NoError(t, err)

	r := chi.NewRouter()
	NewHandler(log, checkout, reconciler, catalogSvc, render).Register(r)
	return &fixture{router: r, orders: orders, processor: processor}
}

func postWebhook(t *testing.T, f *fixture, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook/mercadopago", strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func webhookStatus(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out["status"]
}

func TestWebhook_MalformedPayload(t *testing.T) {
	f := newFixture(t)
	rec := postWebhook(t, f, `{"type": `)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "error", webhookStatus(t, rec))
}

func TestWebhook_IrrelevantTypeAcknowledged(t *testing.T) {
	f := newFixture(t)
	rec := postWebhook(t, f, `{"type":"plan","data":{"id":1}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", webhookStatus(t, rec))
	assert.Zero(t, f.processor.calls)
}

func TestWebhook_ApprovedAndReplay(t *testing.T) {
	f := newFixture(t)
	f.processor.payments["12345"] = paymentdomain.Payment{
		ID: "12345", Status: "approved", ExternalReference: "ord-1",
	}

	body := `{"type":"payment","data":{"id":12345}}`
	rec := postWebhook(t, f, body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", webhookStatus(t, rec))

	// processor redelivery: acknowledged but applied only once
	rec = postWebhook(t, f, body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", webhookStatus(t, rec))

	require.Len(t, f.orders.applied, 1)
	assert.Equal(t, ledgerCall{OrderID: "ord-1", Status: orderdomain.PaymentApproved, Confirm: true}, f.orders.applied[0])
}

func TestWebhook_LedgerFaultReturnsError(t *testing.T) {
	f := newFixture(t)
	f.orders.err = context.DeadlineExceeded
	f.processor.payments["12345"] = paymentdomain.Payment{
		ID: "12345", Status: "approved", ExternalReference: "ord-1",
	}

	rec := postWebhook(t, f, `{"type":"payment","data":{"id":12345}}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "error", webhookStatus(t, rec))
}

func TestPaymentRedirect_Success(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/pagamento/sucesso/ord-1", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, f.orders.applied, 1)
	assert.Equal(t, ledgerCall{OrderID: "ord-1", Status: orderdomain.PaymentApproved, Confirm: true}, f.orders.applied[0])
}

func TestPaymentRedirect_UnknownResult(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/pagamento/cancelado/ord-1", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, f.orders.applied)
}

func TestSubmitOrder_RedirectsToPayment(t *testing.T) {
	f := newFixture(t)

	form := url.Values{
		"produto_id": {"0b2f8f1c-3d9e-4a6b-8c1d-2e3f4a5b6c7d"},
		"quantidade": {"2"},
		"nome":       {"Maria"},
		"email":      {"maria@example.com"},
		"endereco":   {"Rua das Flores 10"},
	}
	req := httptest.NewRequest(http.MethodPost, "/finalizar-compra", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Len(t, f.orders.created, 1)
	assert.Equal(t, "https://mp.example/init/"+f.orders.created[0].ID, rec.Header().Get("Location"))
}

func TestSubmitOrder_InvalidQuantityRedirectsBack(t *testing.T) {
	f := newFixture(t)

	form := url.Values{
		"produto_id": {"0b2f8f1c-3d9e-4a6b-8c1d-2e3f4a5b6c7d"},
		"quantidade": {"0"},
		"nome":       {"Maria"},
		"email":      {"maria@example.com"},
		"endereco":   {"Rua das Flores 10"},
	}
	req := httptest.NewRequest(http.MethodPost, "/finalizar-compra", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/finalizar-compra", loc.Path)
	assert.NotEmpty(t, loc.Query().Get("erro"))
	assert.Empty(t, f.orders.created)
}

func TestCheckoutForm(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/finalizar-compra?produto_id=0b2f8f1c-3d9e-4a6b-8c1d-2e3f4a5b6c7d", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Caneca pintada")
}
