package mercadopago

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderapp "github.com/ateliemimos/store/internal/order/application"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(slog.New(slog.DiscardHandler), "test-token", "https://loja.example")
	c.baseURL = srv.URL
	return c
}

func TestCreatePreference(t *testing.T) {
	var got preferenceRequest
	var idempotencyKey string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/checkout/preferences", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		idempotencyKey = r.Header.Get("X-Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(preferenceResponse{ID: "pref-1", InitPoint: "https://mp.example/init/pref-1"})
	})

	pref, err := c.CreatePreference(context.Background(), orderapp.PreferenceRequest{
		OrderID:        "ord-1",
		Title:          "Caneca pintada",
		Quantity:       2,
		UnitPriceCents: 4990,
		PayerName:      "Maria",
		PayerEmail:     "maria@example.com",
		PayerPhone:     "11999999999",
	})
	require.NoError(t, err)
	assert.Equal(t, "pref-1", pref.ID)
	assert.Equal(t, "https://mp.example/init/pref-1", pref.InitPoint)

	assert.NotEmpty(t, idempotencyKey)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 49.90, got.Items[0].UnitPrice)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.Equal(t, "BRL", got.Items[0].CurrencyID)
	assert.Equal(t, "ord-1", got.ExternalReference)
	assert.Equal(t, "https://loja.example/pagamento/sucesso/ord-1", got.BackURLs.Success)
	assert.Equal(t, "https://loja.example/pagamento/falha/ord-1", got.BackURLs.Failure)
	assert.Equal(t, "https://loja.example/pagamento/pendente/ord-1", got.BackURLs.Pending)
	assert.Equal(t, "https://loja.example/webhook/mercadopago", got.NotificationURL)
	assert.Equal(t, "approved", got.AutoReturn)
}

func TestCreatePreference_MalformedResponse(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(preferenceResponse{ID: "", InitPoint: ""})
	})

	_, err := c.CreatePreference(context.Background(), orderapp.PreferenceRequest{OrderID: "ord-1", Quantity: 1})
	assert.ErrorContains(t, err, "malformed preference response")
}

func TestCreatePreference_APIError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(apiError{Message: "invalid items", Status: 400})
	})

	_, err := c.CreatePreference(context.Background(), orderapp.PreferenceRequest{OrderID: "ord-1", Quantity: 1})
	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid items")
}

func TestPayment(t *testing.T) {
	updated := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/payments/12345", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Empty(t, r.Header.Get("X-Idempotency-Key"))
		// numeric id, as the live API returns it
		_, _ = w.Write([]byte(`{"id":12345,"status":"approved","external_reference":"ord-1","date_last_updated":"2026-03-10T12:00:00Z"}`))
	})

	p, err := c.Payment(context.Background(), "12345")
	require.NoError(t, err)
	assert.Equal(t, "12345", p.ID)
	assert.Equal(t, "approved", p.Status)
	assert.Equal(t, "ord-1", p.ExternalReference)
	assert.Equal(t, updated, p.LastUpdated)
}

func TestPayment_NotFound(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(apiError{Message: "Payment not found", Status: 404})
	})

	_, err := c.Payment(context.Background(), "999")
	require.Error(t, err)
	assert.ErrorContains(t, err, "Payment not found")
}
