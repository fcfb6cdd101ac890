package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func newStaticSite(t *testing.T) *StaticHandler {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"index.html":          "<h1>top</h1>",
		"style.css":           "body{}",
		".env":                "STRIPE_SECRET_KEY=sk_live_x",
		"config.yaml":         "smtp: {}",
		"images/logo.png":     "png",
		"images/.DS_Store":    "junk",
		"meishi/index.html":   "<h1>meishi</h1>",
		"chirashi/flyer.pdf":  "%PDF",
		"private/report.html": "secret",
	}
	for name, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return NewStaticHandler(dir)
}

func TestStaticFilesServesAllowlist(t *testing.T) {
	h := newStaticSite(t)

	for path, want := range map[string]string{
		"/style.css":          "body{}",
		"/images/logo.png":    "png",
		"/meishi/":            "<h1>meishi</h1>",
		"/chirashi/flyer.pdf": "%PDF",
	} {
		rr := httptest.NewRecorder()
		h.Files(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK || rr.Body.String() != want {
			t.Fatalf("%s: got %d body=%q", path, rr.Code, rr.Body.String())
		}
	}
}

func TestStaticFilesHidesEverythingElse(t *testing.T) {
	h := newStaticSite(t)

	for _, path := range []string{
		"/.env",
		"/config.yaml",
		"/images/.DS_Store",
		"/images/",
		"/chirashi/",
		"/private/report.html",
		"/images/../.env",
		"/images/..%2f.env",
	} {
		rr := httptest.NewRecorder()
		h.Files(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusNotFound {
			t.Fatalf("%s: got %d body=%q", path, rr.Code, rr.Body.String())
		}
	}
}
