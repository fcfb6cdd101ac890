// Package pages renders the server-side HTML of the donation site.
package pages

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	Form           = "form.html"
	Thanks         = "thanks.html"
	AdminLogin     = "admin_login.html"
	AdminDashboard = "admin_dashboard.html"
	AdminEdit      = "admin_edit.html"
	CreditCard     = "credit_card.html"
	PaymentSuccess = "payment_success.html"
	PaymentCancel  = "payment_cancel.html"
)

type Renderer struct {
	tmpl *template.Template
	log  *zap.Logger
}

func NewRenderer(log *zap.Logger) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{tmpl: tmpl, log: log}, nil
}

// Render executes into a buffer first so a template error never leaves a
// half-written page.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		r.log.Error("failed to render page", zap.String("page", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
