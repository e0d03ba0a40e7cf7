package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ateliemimos/store/internal/catalog/application"
	"github.com/ateliemimos/store/internal/web"
)

// Handler serves the public storefront pages and the product JSON API.
type Handler struct {
	log    *slog.Logger
	svc    *application.Service
	render *web.Renderer
	tracer trace.Tracer
}

func NewHandler(log *slog.Logger, svc *application.Service, render *web.Renderer) *Handler {
	return &Handler{
		log:    log,
		svc:    svc,
		render: render,
		tracer: otel.Tracer("catalog-http"),
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.index)
	r.Get("/produtos", h.listing)
	r.Get("/produto/{id}", h.detail)
	r.Get("/carrinho", h.cart)
	r.Get("/api/produtos", h.apiProducts)
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Index")
	defer span.End()

	products, err := h.svc.Featured(ctx)
	if err != nil {
		h.log.Error("featured listing failed", "err", err)
		http.Error(w, "erro interno", http.StatusInternalServerError)
		return
	}
	h.render.Render(w, http.StatusOK, "index.html", map[string]any{
		"Products": products,
		"Message":  r.URL.Query().Get("msg"),
	})
}

func (h *Handler) listing(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Listing")
	defer span.End()

	category := r.URL.Query().Get("categoria")
	products, err := h.svc.Listing(ctx, category)
	if err != nil {
		h.log.Error("catalog listing failed", "err", err)
		http.Error(w, "erro interno", http.StatusInternalServerError)
		return
	}
	categories, err := h.svc.Categories(ctx)
	if err != nil {
		h.log.Error("category listing failed", "err", err)
		http.Error(w, "erro interno", http.StatusInternalServerError)
		return
	}
	h.render.Render(w, http.StatusOK, "produtos.html", map[string]any{
		"Products":   products,
		"Categories": categories,
	})
}

func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ProductDetail")
	defer span.End()

	p, err := h.svc.PublicProduct(ctx, chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	h.render.Render(w, http.StatusOK, "produto.html", map[string]any{"Product": p})
}

func (h *Handler) cart(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "carrinho.html", nil)
}

type apiProduct struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	LeadTimeDays int     `json:"lead_time_days"`
	Available    bool    `json:"available"`
}

// apiProducts lists available products only; unavailable entries never
// leave the server.
func (h *Handler) apiProducts(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "APIProducts")
	defer span.End()

	products, err := h.svc.Listing(ctx, "")
	if err != nil {
		h.log.Error("api listing failed", "err", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "error"})
		return
	}

	out := make([]apiProduct, 0, len(products))
	for _, p := range products {
		out = append(out, apiProduct{
			ID:           p.ID,
			Name:         p.Name,
			Price:        float64(p.PriceCents) / 100,
			LeadTimeDays: p.LeadTimeDays,
			Available:    p.Available,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}
