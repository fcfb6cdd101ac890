package setup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/LavaJover/shvark-donation-service/internal/config"
	"github.com/LavaJover/shvark-donation-service/internal/domain"
	"github.com/LavaJover/shvark-donation-service/internal/infrastructure/security"
	"github.com/LavaJover/shvark-donation-service/internal/usecase/admin"
	"github.com/LavaJover/shvark-donation-service/internal/usecase/payment"
	"github.com/LavaJover/shvark-donation-service/internal/usecase/submission"
	"github.com/LavaJover/shvark-donation-service/internal/usecase/usecasetest"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T, adminPassword string) http.Handler {
	t.Helper()

	webDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(webDir, "index.html"), []byte("<h1>hokkori</h1>"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	if err := os.WriteFile(filepath.Join(webDir, "style.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatalf("write css: %v", err)
	}
	if err := os.WriteFile(filepath.Join(webDir, ".env"), []byte("ADMIN_PASSWORD=secret"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}

	cfg := &config.DonationConfig{
		HTTPServer: config.HTTPServer{
			PublicPrefix: "/donation",
			PublicWebDir: webDir,
		},
		Dashboard: config.Dashboard{
			AdminUsername: "admin",
			AdminPassword: adminPassword,
		},
	}

	repo := usecasetest.NewMemoryRepository()
	schema := &usecasetest.SchemaGuard{}
	receiptStorage := usecasetest.NewStorage()

	deps := &Dependencies{
		Config:   cfg,
		Log:      zap.NewNop(),
		Location: time.UTC,
		Storage:  receiptStorage,
		Sessions: security.NewSessionManager("test-secret", time.Hour),
	}
	ucs := &UseCases{
		SubmissionUsecase: submission.NewDefaultSubmissionUsecase(
			schema, repo, &usecasetest.Renderer{}, &usecasetest.Mailer{}, receiptStorage, nil, nil, nil, submission.Settings{},
		),
		PaymentUsecase: payment.NewDefaultPaymentUsecase(
			usecasetest.NewGateway(), repo, schema, nil, nil, nil, payment.Settings{
				Amounts: domain.AmountRange{Min: 1000, Max: 1000000},
			},
		),
		AdminUsecase: admin.NewDefaultAdminUsecase(cfg.Dashboard.Users(), repo, schema, nil, 100, time.UTC),
	}

	router, err := NewRouter(deps, ucs)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	return router
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestDonationFormRequiresBasicAuth(t *testing.T) {
	router := newTestRouter(t, "secret")

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/donation", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("without credentials: got %d", rec.Code)
	}

	for _, path := range []string{"/donation", "/donation/"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.SetBasicAuth("admin", "secret")
		rec = serve(router, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s with credentials: got %d", path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `action="/donation/submit"`) {
			t.Fatalf("%s: form must post under the prefix", path)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/donation", nil)
	req.SetBasicAuth("admin", "wrong")
	if rec := serve(router, req); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: got %d", rec.Code)
	}
}

func TestDonationFormClosedWithoutAdminPassword(t *testing.T) {
	router := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/donation", nil)
	req.SetBasicAuth("admin", "")
	if rec := serve(router, req); rec.Code != http.StatusUnauthorized {
		t.Fatalf("empty admin password must reject, got %d", rec.Code)
	}
}

func TestSubmitMountedAtRootAndPrefix(t *testing.T) {
	router := newTestRouter(t, "secret")

	form := url.Values{
		"name":           {"山田太郎"},
		"postal_code":    {"612-8403"},
		"address":        {"京都市伏見区"},
		"email":          {"taro@example.com"},
		"amount":         {"5000"},
		"payment_method": {string(domain.MethodCash)},
	}
	for _, path := range []string{"/submit", "/donation/submit", "/donation/submit/"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := serve(router, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: got %d body=%s", path, rec.Code, rec.Body.String())
		}
	}
}

func TestSubmitCompletesAfterClientDisconnects(t *testing.T) {
	router := newTestRouter(t, "secret")

	form := url.Values{
		"name":           {"山田太郎"},
		"postal_code":    {"612-8403"},
		"address":        {"京都市伏見区"},
		"email":          {"taro@example.com"},
		"amount":         {"5000"},
		"payment_method": {string(domain.MethodCash)},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/donation/submit", strings.NewReader(form.Encode())).WithContext(ctx)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := serve(router, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestAdminRedirectsToPrefixedLogin(t *testing.T) {
	router := newTestRouter(t, "secret")

	for _, path := range []string{"/admin", "/donation/admin"} {
		rec := serve(router, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusFound {
			t.Fatalf("%s: got %d", path, rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/donation/admin/login" {
			t.Fatalf("%s: redirect to %q", path, loc)
		}
	}

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/donation/admin/login", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("login page: got %d", rec.Code)
	}
}

func TestStaticSiteAndMetrics(t *testing.T) {
	router := newTestRouter(t, "secret")

	for _, path := range []string{"/", "/index.html"} {
		rec := serve(router, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "hokkori") {
			t.Fatalf("%s: got %d body=%q", path, rec.Code, rec.Body.String())
		}
	}

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/style.css", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "body{}" {
		t.Fatalf("asset: got %d body=%q", rec.Code, rec.Body.String())
	}

	for _, path := range []string{"/missing.js", "/.env", "/donation/.env"} {
		rec = serve(router, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: got %d", path, rec.Code)
		}
	}

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: got %d", rec.Code)
	}
}

func TestPaymentPagesUnderPrefix(t *testing.T) {
	router := newTestRouter(t, "secret")

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/donation/payment/cancel", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel page: got %d", rec.Code)
	}
	rec = serve(router, httptest.NewRequest(http.MethodGet, "/payment/credit-card?certificate_no=RCPT-2025-000001&receipt_id=1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("credit card page: got %d", rec.Code)
	}
}
