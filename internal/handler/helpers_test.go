package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/internal/handler"
	"github.com/pkordes/trip-planner/internal/middleware"
)

const owner = "user-1"

// fakeAuth stands in for middleware.NewAuthHandler: every request is made by
// owner unless it carries X-Test-Anonymous.
func fakeAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Test-Anonymous") == "" {
			r = r.WithContext(middleware.WithUserID(r.Context(), owner))
		}
		next.ServeHTTP(w, r)
	})
}

// newHTTPHandler wires a Server with the given mocks into the router.
// This mirrors how main.go wires it in production, minus real auth.
func newHTTPHandler(svc handler.Services) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return handler.NewServer(svc, log).Routes(fakeAuth)
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// do sends req through h and returns the recorder.
func do(h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}
