package handlers

import (
	"net/http"
	"strings"

	"github.com/LavaJover/shvark-donation-service/internal/usecase/links"
)

// LinkResolver builds public URLs from PUBLIC_BASE_URL when set, otherwise
// from the scheme and host the reverse proxy forwarded.
type LinkResolver struct {
	BaseURL string
	Prefix  string
}

func (l LinkResolver) For(r *http.Request) links.Builder {
	origin := strings.TrimRight(l.BaseURL, "/")
	if origin == "" {
		origin = requestOrigin(r)
	}
	return links.Builder{Origin: origin, Prefix: l.Prefix}
}

// AdminPath is always under the public prefix, whichever mount served the
// request.
func (l LinkResolver) AdminPath(path string) string {
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return l.Prefix + "/admin" + path
}

func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := firstHeaderValue(r.Header.Get("X-Forwarded-Proto")); proto != "" {
		scheme = proto
	}
	host := r.Host
	if forwarded := firstHeaderValue(r.Header.Get("X-Forwarded-Host")); forwarded != "" {
		host = forwarded
	}
	return scheme + "://" + host
}

func firstHeaderValue(v string) string {
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}
