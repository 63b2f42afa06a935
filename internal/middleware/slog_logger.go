package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// requestLog collects fields that inner middleware learn about a request
// after the logger has wrapped it.
type requestLog struct {
	userID string
}

type requestLogKey struct{}

// NewSlogLogger returns a middleware that logs each request as a structured
// JSON line via the provided slog.Logger. It captures method, path, HTTP
// status, duration, the request ID set by chi's RequestID middleware, and the
// user ID set by the auth middleware when the request was authenticated.
//
// Wire it after chimiddleware.RequestID so the request ID is available.
func NewSlogLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rl := &requestLog{}
			r = r.WithContext(context.WithValue(r.Context(), requestLogKey{}, rl))

			// WrapResponseWriter intercepts WriteHeader so we can read the
			// status code after the downstream handler has run.
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", chimiddleware.GetReqID(r.Context()),
			}
			if rl.userID != "" {
				attrs = append(attrs, "user_id", rl.userID)
			}
			log.InfoContext(r.Context(), "request", attrs...)
		})
	}
}

func noteUserID(ctx context.Context, userID string) {
	if rl, ok := ctx.Value(requestLogKey{}).(*requestLog); ok {
		rl.userID = userID
	}
}
