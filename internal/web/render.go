package web

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	catalogdomain "github.com/ateliemimos/store/internal/catalog/domain"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Renderer wraps the embedded page templates. Layout and styling live in
// the templates; handlers only pick a page name and hand over data.
type Renderer struct {
	log *slog.Logger
	t   *template.Template
}

func NewRenderer(log *slog.Logger) (*Renderer, error) {
	t, err := template.New("").Funcs(template.FuncMap{
		"price": catalogdomain.FormatCents,
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{log: log, t: t}, nil
}

func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data map[string]any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := r.t.ExecuteTemplate(w, page, data); err != nil {
		r.log.Error("template render failed", "page", page, "err", err)
	}
}
