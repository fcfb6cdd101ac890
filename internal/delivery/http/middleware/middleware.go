package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type chiRouter interface {
	Use(middlewares ...func(http.Handler) http.Handler)
}

func Apply(r chiRouter, log *zap.Logger) {
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(log))
}

const queryTimeout = 60 * time.Second

// QueryTimeout bounds read-mostly routes such as the dashboard. Submission,
// checkout and webhook routes are left without one.
func QueryTimeout() func(http.Handler) http.Handler {
	return chimiddleware.Timeout(queryTimeout)
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			if log != nil {
				log.Info("http_request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.String("request_id", chimiddleware.GetReqID(r.Context())),
					zap.Duration("duration", time.Since(start)),
				)
			}
		})
	}
}

// BasicAuth gates the public donation form with the admin credentials. An
// unset password rejects every request.
func BasicAuth(username, password string) func(http.Handler) http.Handler {
	creds := map[string]string{}
	if password != "" {
		creds[username] = password
	}
	return chimiddleware.BasicAuth("Donation Site", creds)
}
