package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	orderapp "github.com/ateliemimos/store/internal/order/application"
	"github.com/ateliemimos/store/internal/payment/domain"
)

const (
	defaultBaseURL = "https://api.mercadopago.com"
	currencyID     = "BRL"
)

// Client talks to the Mercado Pago REST API. It implements both the
// checkout gateway (preference creation) and the reconciliation lookup
// (payment details). Calls are bounded by the injected http.Client timeout
// and retried once on transport errors; preference creation reuses the same
// idempotency key on retry so a duplicate request cannot open two sessions.
type Client struct {
	log     *slog.Logger
	token   string
	baseURL string
	appURL  string
	httpc   *http.Client
}

func NewClient(log *slog.Logger, token, appURL string) *Client {
	return &Client{
		log:     log,
		token:   token,
		baseURL: defaultBaseURL,
		appURL:  appURL,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

type preferenceItem struct {
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id"`
}

type preferencePhone struct {
	Number string `json:"number,omitempty"`
}

type preferencePayer struct {
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Phone preferencePhone `json:"phone,omitempty"`
}

type preferenceBackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

type preferenceRequest struct {
	Items             []preferenceItem   `json:"items"`
	Payer             preferencePayer    `json:"payer"`
	BackURLs          preferenceBackURLs `json:"back_urls"`
	AutoReturn        string             `json:"auto_return"`
	ExternalReference string             `json:"external_reference"`
	NotificationURL   string             `json:"notification_url"`
}

type preferenceResponse struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

type paymentResponse struct {
	ID                json.Number `json:"id"`
	Status            string      `json:"status"`
	ExternalReference string      `json:"external_reference"`
	DateLastUpdated   time.Time   `json:"date_last_updated"`
}

type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Status  int    `json:"status"`
}

// CreatePreference opens a processor-hosted payment session for one order.
// The order id travels as external_reference, the correlation key webhooks
// report back.
func (c *Client) CreatePreference(ctx context.Context, req orderapp.PreferenceRequest) (orderapp.Preference, error) {
	body := preferenceRequest{
		Items: []preferenceItem{{
			Title:      req.Title,
			Quantity:   req.Quantity,
			UnitPrice:  float64(req.UnitPriceCents) / 100,
			CurrencyID: currencyID,
		}},
		Payer: preferencePayer{
			Name:  req.PayerName,
			Email: req.PayerEmail,
			Phone: preferencePhone{Number: req.PayerPhone},
		},
		BackURLs: preferenceBackURLs{
			Success: c.appURL + "/pagamento/sucesso/" + req.OrderID,
			Failure: c.appURL + "/pagamento/falha/" + req.OrderID,
			Pending: c.appURL + "/pagamento/pendente/" + req.OrderID,
		},
		AutoReturn:        "approved",
		ExternalReference: req.OrderID,
		NotificationURL:   c.appURL + "/webhook/mercadopago",
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return orderapp.Preference{}, err
	}

	idempotencyKey := uuid.NewString()
	var resp preferenceResponse
	if err := c.do(ctx, http.MethodPost, "/checkout/preferences", payload, idempotencyKey, &resp); err != nil {
		return orderapp.Preference{}, err
	}
	if resp.ID == "" || resp.InitPoint == "" {
		return orderapp.Preference{}, fmt.Errorf("malformed preference response: id=%q", resp.ID)
	}
	return orderapp.Preference{ID: resp.ID, InitPoint: resp.InitPoint}, nil
}

// Payment fetches full details for a webhook-reported payment id.
func (c *Client) Payment(ctx context.Context, id string) (domain.Payment, error) {
	var resp paymentResponse
	if err := c.do(ctx, http.MethodGet, "/v1/payments/"+url.PathEscape(id), nil, "", &resp); err != nil {
		return domain.Payment{}, err
	}
	return domain.Payment{
		ID:                resp.ID.String(),
		Status:            resp.Status,
		ExternalReference: resp.ExternalReference,
		LastUpdated:       resp.DateLastUpdated,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, idempotencyKey string, out any) error {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			c.log.Warn("retrying processor call", "method", method, "path", path, "err", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(500 * time.Millisecond):
			}
		}

		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if idempotencyKey != "" {
			req.Header.Set("X-Idempotency-Key", idempotencyKey)
		}

		httpResp, err := c.httpc.Do(req)
		if err != nil {
			// transport failure: worth one retry, the idempotency key
			// makes the replayed POST safe
			lastErr = err
			continue
		}

		respBody, err := io.ReadAll(httpResp.Body)
		_ = httpResp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
			var apiErr apiError
			if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
				return fmt.Errorf("mercadopago %s %s: %s (%d)", method, path, apiErr.Message, httpResp.StatusCode)
			}
			return fmt.Errorf("mercadopago %s %s: status %d", method, path, httpResp.StatusCode)
		}

		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("mercadopago %s %s: decode response: %w", method, path, err)
		}
		return nil
	}
	return fmt.Errorf("mercadopago %s %s: %w", method, path, lastErr)
}
