package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	catalogapp "github.com/ateliemimos/store/internal/catalog/application"
	"github.com/ateliemimos/store/internal/order/application"
	paymentapp "github.com/ateliemimos/store/internal/payment/application"
	paymentdomain "github.com/ateliemimos/store/internal/payment/domain"
	"github.com/ateliemimos/store/internal/web"
)

// Handler serves checkout, the three payment redirect callbacks and the
// processor webhook.
type Handler struct {
	log        *slog.Logger
	checkout   *application.Service
	reconciler *paymentapp.Reconciler
	catalog    *catalogapp.Service
	render     *web.Renderer
	tracer     trace.Tracer
}

func NewHandler(log *slog.Logger, checkout *application.Service, reconciler *paymentapp.Reconciler, catalog *catalogapp.Service, render *web.Renderer) *Handler {
	return &Handler{
		log:        log,
		checkout:   checkout,
		reconciler: reconciler,
		catalog:    catalog,
		render:     render,
		tracer:     otel.Tracer("order-http"),
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/finalizar-compra", h.checkoutForm)
	r.Post("/finalizar-compra", h.submitOrder)
	r.Get("/pagamento/{resultado}/{orderID}", h.paymentRedirect)
	r.Post("/webhook/mercadopago", h.webhook)
}

func (h *Handler) checkoutForm(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CheckoutForm")
	defer span.End()

	data := map[string]any{
		"ProductID": r.URL.Query().Get("produto_id"),
		"Quantity":  r.URL.Query().Get("quantidade"),
		"Error":     r.URL.Query().Get("erro"),
	}
	if data["Quantity"] == "" {
		data["Quantity"] = "1"
	}
	if id, ok := data["ProductID"].(string); ok && id != "" {
		if p, err := h.catalog.PublicProduct(ctx, id); err == nil {
			data["Product"] = p
		}
	}
	h.render.Render(w, http.StatusOK, "checkout.html", data)
}

func (h *Handler) submitOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SubmitOrder")
	defer span.End()

	if err := r.ParseForm(); err != nil {
		h.redirectError(w, r, "", "dados do pedido inválidos")
		return
	}
	req := application.CheckoutRequest{
		ProductID: r.PostFormValue("produto_id"),
		Quantity:  r.PostFormValue("quantidade"),
		Name:      r.PostFormValue("nome"),
		Email:     r.PostFormValue("email"),
		Phone:     r.PostFormValue("telefone"),
		Address:   r.PostFormValue("endereco"),
	}

	result, err := h.checkout.PlaceOrder(ctx, req)
	if err != nil {
		h.redirectError(w, r, req.ProductID, userMessage(err))
		return
	}

	if result.PaymentURL != "" {
		http.Redirect(w, r, result.PaymentURL, http.StatusSeeOther)
		return
	}
	// degraded mode: order kept, payment arranged offline
	http.Redirect(w, r, "/?msg="+url.QueryEscape("Pedido recebido! Entraremos em contato para combinar o pagamento."), http.StatusSeeOther)
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, application.ErrInvalidQuantity):
		return "A quantidade deve ser entre 1 e 99."
	case errors.Is(err, application.ErrMissingFields):
		return "Preencha nome, e-mail e endereço."
	case errors.Is(err, application.ErrProductUnavailable):
		return "Este produto não está disponível no momento."
	case errors.Is(err, application.ErrPaymentSession):
		return "Não foi possível iniciar o pagamento. Tente novamente ou entre em contato."
	case errors.Is(err, application.ErrInvalidRequest):
		return "Pedido inválido."
	}
	return "Não foi possível concluir o pedido. Tente novamente."
}

func (h *Handler) redirectError(w http.ResponseWriter, r *http.Request, productID, msg string) {
	target := "/finalizar-compra?erro=" + url.QueryEscape(msg)
	if productID != "" {
		target += "&produto_id=" + url.QueryEscape(productID)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

var redirectPages = map[paymentapp.RedirectSignal][2]string{
	paymentapp.RedirectSuccess: {"Pagamento aprovado", "Obrigada! Sua encomenda foi confirmada e já entrou na fila de produção."},
	paymentapp.RedirectFailure: {"Pagamento não aprovado", "O pagamento não foi concluído. Você pode tentar novamente a qualquer momento."},
	paymentapp.RedirectPending: {"Pagamento em análise", "Assim que o pagamento for confirmado, sua encomenda entra em produção."},
}

// paymentRedirect handles the browser coming back from the processor.
// Advisory only: the webhook remains the authoritative channel.
func (h *Handler) paymentRedirect(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PaymentRedirect")
	defer span.End()

	sig := paymentapp.RedirectSignal(chi.URLParam(r, "resultado"))
	orderID := chi.URLParam(r, "orderID")

	page, ok := redirectPages[sig]
	if !ok {
		http.NotFound(w, r)
		return
	}

	if err := h.reconciler.ApplyRedirect(ctx, orderID, sig); err != nil {
		if errors.Is(err, application.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.log.Error("redirect reconciliation failed", "order_id", orderID, "signal", sig, "err", err)
		http.Error(w, "erro interno", http.StatusInternalServerError)
		return
	}

	h.render.Render(w, http.StatusOK, "pagamento.html", map[string]any{
		"Title":   page[0],
		"Detail":  page[1],
		"OrderID": orderID,
	})
}

type webhookBody struct {
	Type string `json:"type"`
	Data struct {
		ID json.Number `json:"id"`
	} `json:"data"`
}

// webhook is the processor's server-to-server notification endpoint. The
// processor retries until it gets a 2xx, so the contract is strict: a
// deterministic {"status":"ok"} for anything handled (including no-ops) and
// {"status":"error"} with a 500 for genuine faults. Nothing may panic out.
func (h *Handler) webhook(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PaymentWebhook")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")

	var body webhookBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.log.Error("webhook payload unreadable", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "error"})
		return
	}

	ev := paymentdomain.WebhookEvent{Type: body.Type, DataID: body.Data.ID.String()}
	if err := h.reconciler.HandleWebhook(ctx, ev); err != nil {
		h.log.Error("webhook processing failed", "type", ev.Type, "data_id", ev.DataID, "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "error"})
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
