package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/LavaJover/shvark-donation-service/internal/infrastructure/security"
)

const SessionCookieName = "dashboard_session"

type ctxKey struct{}

func WithDashboardUser(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, ctxKey{}, username)
}

func DashboardUser(ctx context.Context) string {
	username, _ := ctx.Value(ctxKey{}).(string)
	return username
}

// SessionUser returns the username of a valid session cookie, or "".
func SessionUser(r *http.Request, sessions *security.SessionManager) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	username, err := sessions.Parse(cookie.Value)
	if err != nil {
		return ""
	}
	return username
}

// RequireDashboardLogin redirects to loginPath unless the request carries a
// valid session cookie.
func RequireDashboardLogin(sessions *security.SessionManager, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username := SessionUser(r, sessions)
			if username == "" {
				http.Redirect(w, r, loginPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithDashboardUser(r.Context(), username)))
		})
	}
}

func SetSessionCookie(w http.ResponseWriter, r *http.Request, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   isHTTPS(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isHTTPS(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}
