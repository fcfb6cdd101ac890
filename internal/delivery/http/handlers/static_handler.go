package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Only these top-level entries of PUBLIC_WEB_DIR are public. Anything else,
// dotfiles included, answers 404.
var (
	publicFiles = map[string]bool{
		"style.css":     true,
		"main.js":       true,
		"jquery.min.js": true,
		"favicon.ico":   true,
	}
	publicDirs = map[string]bool{
		"images":   true,
		"meishi":   true,
		"chirashi": true,
	}
)

// StaticHandler serves the public landing site from PUBLIC_WEB_DIR.
type StaticHandler struct {
	dir   string
	files http.Handler
}

func NewStaticHandler(dir string) *StaticHandler {
	return &StaticHandler{dir: dir, files: http.FileServer(http.Dir(dir))}
}

// Index serves index.html for both "/" and "/index.html".
func (h *StaticHandler) Index(w http.ResponseWriter, r *http.Request) {
	f, err := os.Open(filepath.Join(h.dir, "index.html"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeContent(w, r, "index.html", info.ModTime(), f)
}

// Files serves allowlisted assets. Directories are served only through their
// index.html, never as a listing.
func (h *StaticHandler) Files(w http.ResponseWriter, r *http.Request) {
	if !h.allowed(r.URL.Path) {
		http.NotFound(w, r)
		return
	}
	h.files.ServeHTTP(w, r)
}

func (h *StaticHandler) allowed(urlPath string) bool {
	if strings.Contains(urlPath, "\\") {
		return false
	}
	rel := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if rel == "" {
		return false
	}
	segments := strings.Split(rel, "/")
	for _, s := range segments {
		if strings.HasPrefix(s, ".") {
			return false
		}
	}

	switch {
	case len(segments) == 1 && publicFiles[rel]:
	case publicDirs[segments[0]]:
	default:
		return false
	}

	info, err := os.Stat(filepath.Join(h.dir, filepath.FromSlash(rel)))
	if err != nil {
		return false
	}
	if info.IsDir() {
		index, err := os.Stat(filepath.Join(h.dir, filepath.FromSlash(rel), "index.html"))
		return err == nil && !index.IsDir()
	}
	return true
}
