package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ateliemimos/store/internal/admin/application"
	catalogapp "github.com/ateliemimos/store/internal/catalog/application"
	catalogdomain "github.com/ateliemimos/store/internal/catalog/domain"
	orderapp "github.com/ateliemimos/store/internal/order/application"
	orderdomain "github.com/ateliemimos/store/internal/order/domain"
	"github.com/ateliemimos/store/internal/web"
)

const sessionCookie = "admin_session"

// Handler is the protected admin panel: login, password change, catalog
// CRUD and order management.
type Handler struct {
	log     *slog.Logger
	admin   *application.Service
	catalog *catalogapp.Service
	orders  *orderapp.Service
	render  *web.Renderer
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, admin *application.Service, catalog *catalogapp.Service, orders *orderapp.Service, render *web.Renderer) *Handler {
	return &Handler{
		log:     log,
		admin:   admin,
		catalog: catalog,
		orders:  orders,
		render:  render,
		tracer:  otel.Tracer("admin-http"),
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Get("/login", h.loginForm)
		r.Post("/login", h.login)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAdmin)
			r.Get("/logout", h.logout)
			r.Get("/alterar-senha", h.changePasswordForm)
			r.Post("/alterar-senha", h.changePassword)
			r.Get("/produtos", h.products)
			r.Get("/produto/novo", h.newProductForm)
			r.Post("/produto/novo", h.createProduct)
			r.Get("/produto/editar/{id}", h.editProductForm)
			r.Post("/produto/editar/{id}", h.updateProduct)
			r.Get("/produto/deletar/{id}", h.deleteProduct)
			r.Get("/pedidos", h.ordersList)
			r.Get("/pedido/{id}/status/{status}", h.overrideStatus)
		})
	})
}

func (h *Handler) loginForm(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "admin_login.html", map[string]any{
		"Next":  r.URL.Query().Get("next"),
		"Error": r.URL.Query().Get("erro"),
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AdminLogin")
	defer span.End()

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/admin/login?erro="+url.QueryEscape("requisição inválida"), http.StatusSeeOther)
		return
	}
	next := sanitizeNext(r.PostFormValue("next"))

	token, err := h.admin.Login(ctx, r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		target := "/admin/login?erro=" + url.QueryEscape("Usuário ou senha incorretos.")
		if next != "" {
			target += "&next=" + url.QueryEscape(next)
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	if next == "" {
		next = "/admin/produtos"
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		_ = h.admin.Logout(r.Context(), c.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) changePasswordForm(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "admin_senha.html", map[string]any{
		"Error":   r.URL.Query().Get("erro"),
		"Message": r.URL.Query().Get("msg"),
	})
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AdminChangePassword")
	defer span.End()

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/admin/alterar-senha?erro="+url.QueryEscape("requisição inválida"), http.StatusSeeOther)
		return
	}
	username, _ := ctx.Value(usernameKey).(string)

	err := h.admin.ChangePassword(ctx, username,
		r.PostFormValue("senha_atual"),
		r.PostFormValue("nova_senha"),
		r.PostFormValue("confirmar_senha"))
	if err != nil {
		http.Redirect(w, r, "/admin/alterar-senha?erro="+url.QueryEscape(passwordMessage(err)), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin/alterar-senha?msg="+url.QueryEscape("Senha alterada com sucesso."), http.StatusSeeOther)
}

func passwordMessage(err error) string {
	switch {
	case errors.Is(err, application.ErrCurrentPassword):
		return "A senha atual está incorreta."
	case errors.Is(err, application.ErrPasswordTooShort):
		return "A nova senha precisa ter pelo menos 6 caracteres."
	case errors.Is(err, application.ErrPasswordMismatch):
		return "A confirmação não confere com a nova senha."
	}
	return "Não foi possível alterar a senha."
}

func (h *Handler) products(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AdminProducts")
	defer span.End()

	products, err := h.catalog.AdminListing(ctx)
	if err != nil {
		h.log.Error("admin product listing failed", "err", err)
		http.Error(w, "erro interno", http.StatusInternalServerError)
		return
	}
	h.render.Render(w, http.StatusOK, "admin_produtos.html", map[string]any{
		"Products": products,
		"Message":  r.URL.Query().Get("msg"),
	})
}

func (h *Handler) newProductForm(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "admin_produto_form.html", map[string]any{
		"Title":   "Novo produto",
		"Action":  "/admin/produto/novo",
		"Product": catalogdomain.Product{Available: true},
		"Error":   r.URL.Query().Get("erro"),
	})
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AdminCreateProduct")
	defer span.End()

	p, err := productFromForm(r)
	if err != nil {
		http.Redirect(w, r, "/admin/produto/novo?erro="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}
	if _, err := h.catalog.Create(ctx, p); err != nil {
		http.Redirect(w, r, "/admin/produto/novo?erro="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin/produtos?msg="+url.QueryEscape("Produto criado."), http.StatusSeeOther)
}

func (h *Handler) editProductForm(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AdminEditProductForm")
	defer span.End()

	id := chi.URLParam(r, "id")
	p, err := h.catalog.Product(ctx, id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	h.render.Render(w, http.StatusOK, "admin_produto_form.html", map[string]any{
		"Title":   "Editar produto",
		"Action":  "/admin/produto/editar/" + id,
		"Product": p,
		"Error":   r.URL.Query().Get("erro"),
	})
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AdminUpdateProduct")
	defer span.End()

	id := chi.URLParam(r, "id")
	p, err := productFromForm(r)
	if err != nil {
		http.Redirect(w, r, "/admin/produto/editar/"+id+"?erro="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}
	p.ID = id
	if err := h.catalog.Update(ctx, p); err != nil {
		http.Redirect(w, r, "/admin/produto/editar/"+id+"?erro="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin/produtos?msg="+url.QueryEscape("Produto atualizado."), http.StatusSeeOther)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AdminDeleteProduct")
	defer span.End()

	msg := "Produto removido."
	switch err := h.catalog.Delete(ctx, chi.URLParam(r, "id")); {
	case errors.Is(err, catalogapp.ErrProductInUse):
		msg = "Produto possui pedidos e não pode ser removido. Marque-o como indisponível."
	case err != nil:
		msg = "Produto não encontrado."
	}
	http.Redirect(w, r, "/admin/produtos?msg="+url.QueryEscape(msg), http.StatusSeeOther)
}

func (h *Handler) ordersList(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AdminOrders")
	defer span.End()

	orders, err := h.orders.Orders(ctx)
	if err != nil {
		h.log.Error("order listing failed", "err", err)
		http.Error(w, "erro interno", http.StatusInternalServerError)
		return
	}
	h.render.Render(w, http.StatusOK, "admin_pedidos.html", map[string]any{
		"Orders": orders,
		"Statuses": []orderdomain.FulfillmentStatus{
			orderdomain.FulfillmentConfirmed,
			orderdomain.FulfillmentInProduction,
			orderdomain.FulfillmentShipped,
			orderdomain.FulfillmentDelivered,
			orderdomain.FulfillmentCancelled,
		},
		"Message": r.URL.Query().Get("msg"),
		"Error":   r.URL.Query().Get("erro"),
	})
}

func (h *Handler) overrideStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AdminOverrideStatus")
	defer span.End()

	err := h.orders.OverrideFulfillment(ctx, chi.URLParam(r, "id"), chi.URLParam(r, "status"))
	switch {
	case err == nil:
		http.Redirect(w, r, "/admin/pedidos?msg="+url.QueryEscape("Status atualizado."), http.StatusSeeOther)
	case errors.Is(err, orderapp.ErrInvalidRequest):
		http.Redirect(w, r, "/admin/pedidos?erro="+url.QueryEscape("Status inválido."), http.StatusSeeOther)
	case errors.Is(err, orderapp.ErrNotFound):
		http.NotFound(w, r)
	case errors.Is(err, orderapp.ErrStaleOrder):
		http.Redirect(w, r, "/admin/pedidos?erro="+url.QueryEscape("O pedido mudou, tente novamente."), http.StatusSeeOther)
	default:
		h.log.Error("status override failed", "err", err)
		http.Error(w, "erro interno", http.StatusInternalServerError)
	}
}

func productFromForm(r *http.Request) (catalogdomain.Product, error) {
	if err := r.ParseForm(); err != nil {
		return catalogdomain.Product{}, errors.New("requisição inválida")
	}
	priceCents, err := catalogdomain.ParsePriceCents(r.PostFormValue("preco"))
	if err != nil {
		return catalogdomain.Product{}, errors.New("preço inválido")
	}
	leadTime := 0
	if v := strings.TrimSpace(r.PostFormValue("prazo")); v != "" {
		leadTime, err = strconv.Atoi(v)
		if err != nil || leadTime < 0 {
			return catalogdomain.Product{}, errors.New("prazo inválido")
		}
	}
	return catalogdomain.Product{
		Name:         r.PostFormValue("nome"),
		Description:  r.PostFormValue("descricao"),
		PriceCents:   priceCents,
		ImageURL:     r.PostFormValue("imagem_url"),
		LeadTimeDays: leadTime,
		Category:     r.PostFormValue("categoria"),
		Available:    r.PostFormValue("disponivel") == "1",
	}, nil
}

// sanitizeNext keeps the post-login redirect on this site.
func sanitizeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return ""
	}
	return next
}
