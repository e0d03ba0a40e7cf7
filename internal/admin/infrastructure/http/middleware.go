package http

import (
	"context"
	"net/http"
	"net/url"
)

type contextKey string

const usernameKey contextKey = "admin-username"

// requireAdmin gates the mutating admin routes. Unauthenticated requests
// are sent to the login form with the original target preserved in `next`.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if c, err := r.Cookie(sessionCookie); err == nil {
			token = c.Value
		}
		username, err := h.admin.Authenticate(r.Context(), token)
		if err != nil {
			http.Redirect(w, r, "/admin/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
			return
		}
		ctx := context.WithValue(r.Context(), usernameKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
