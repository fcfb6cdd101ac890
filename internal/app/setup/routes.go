package setup

import (
	"fmt"
	"net/http"

	"github.com/LavaJover/shvark-donation-service/internal/delivery/http/handlers"
	"github.com/LavaJover/shvark-donation-service/internal/delivery/http/middleware"
	"github.com/LavaJover/shvark-donation-service/internal/delivery/http/pages"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const donationFormPath = "/donation"

type httpHandlers struct {
	submit      *handlers.SubmitHandler
	download    *handlers.DownloadHandler
	payment     *handlers.PaymentHandler
	admin       *handlers.AdminHandler
	diagnostics *handlers.DiagnosticsHandler
	static      *handlers.StaticHandler
}

// NewRouter mounts the donation routes at the root and again under the
// public prefix, so the app works both directly and behind a path based
// reverse proxy.
func NewRouter(deps *Dependencies, ucs *UseCases) (http.Handler, error) {
	cfg := deps.Config
	log := deps.Log.Named("http")

	renderer, err := pages.NewRenderer(log)
	if err != nil {
		return nil, fmt.Errorf("page templates: %w", err)
	}
	links := handlers.LinkResolver{
		BaseURL: cfg.HTTPServer.PublicBaseURL,
		Prefix:  cfg.HTTPServer.PublicPrefix,
	}

	h := &httpHandlers{
		submit:      handlers.NewSubmitHandler(ucs.SubmissionUsecase, renderer, links, log),
		download:    handlers.NewDownloadHandler(deps.Storage, deps.Location, log),
		payment:     handlers.NewPaymentHandler(ucs.PaymentUsecase, renderer, links, log),
		admin:       handlers.NewAdminHandler(ucs.AdminUsecase, deps.Sessions, renderer, links, deps.Location, log),
		diagnostics: handlers.NewDiagnosticsHandler(ucs.AdminUsecase, log),
		static:      handlers.NewStaticHandler(cfg.HTTPServer.PublicWebDir),
	}
	formAuth := middleware.BasicAuth(cfg.Dashboard.AdminUsername, cfg.Dashboard.AdminPassword)
	requireLogin := middleware.RequireDashboardLogin(deps.Sessions, links.AdminPath("/login"))

	r := chi.NewRouter()
	middleware.Apply(r, log)

	r.Handle("/metrics", promhttp.Handler())
	r.Group(func(r chi.Router) {
		r.Use(middleware.QueryTimeout())
		r.Get("/db-check", h.diagnostics.DBCheck)
		r.Get("/db-check/receipts", h.diagnostics.Receipts)
	})

	r.Get("/", h.static.Index)
	r.Get("/index.html", h.static.Index)
	r.Get("/*", h.static.Files)

	prefix := cfg.HTTPServer.PublicPrefix
	if prefix != donationFormPath {
		r.With(formAuth).Get(donationFormPath, h.submit.FormPage)
		r.With(formAuth).Get(donationFormPath+"/", h.submit.FormPage)
	}

	h.mount(r, requireLogin)
	if prefix != "" {
		r.Route(prefix, func(r chi.Router) {
			if prefix == donationFormPath {
				r.With(formAuth).Get("/", h.submit.FormPage)
			}
			h.mount(r, requireLogin)
		})
	}

	return r, nil
}

func (h *httpHandlers) mount(r chi.Router, requireLogin func(http.Handler) http.Handler) {
	r.Post("/submit", h.submit.Submit)
	r.Post("/submit/", h.submit.Submit)
	r.Get("/download/{token}", h.download.Download)

	r.Post("/api/stripe/checkout-session", h.payment.CreateCheckoutSession)
	r.Post("/api/stripe/webhook", h.payment.Webhook)
	r.Get("/payment/credit-card", h.payment.CreditCardPage)
	r.Get("/payment/success", h.payment.SuccessPage)
	r.Get("/payment/cancel", h.payment.CancelPage)

	r.Get("/admin/login", h.admin.LoginPage)
	r.Post("/admin/login", h.admin.Login)
	r.Post("/admin/logout", h.admin.Logout)
	r.Group(func(r chi.Router) {
		r.Use(middleware.QueryTimeout(), requireLogin)
		r.Get("/admin", h.admin.Dashboard)
		r.Get("/admin/", h.admin.Dashboard)
		r.Post("/admin/confirm/{id}", h.admin.Confirm)
		r.Post("/admin/delete/{id}", h.admin.Delete)
		r.Get("/admin/edit/{id}", h.admin.EditPage)
		r.Post("/admin/edit/{id}", h.admin.Edit)
	})
}
