package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Timeout bounds each request with a deadline on its context. If the
// handler has not written anything by the deadline a 504 is sent; if it
// already started writing, the response is left to the handler.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			rec := &writeTracker{ResponseWriter: w}
			done := make(chan struct{})
			go func() {
				defer close(done)
				next.ServeHTTP(rec, r.WithContext(ctx))
			}()

			select {
			case <-done:
			case <-ctx.Done():
				if rec.wrote {
					return
				}
				slog.Warn("request timed out",
					"method", r.Method,
					"path", r.URL.Path,
					"timeout", timeout,
				)
				http.Error(w, `{"error":"request timeout"}`, http.StatusGatewayTimeout)
			}
		})
	}
}

type writeTracker struct {
	http.ResponseWriter
	wrote bool
}

func (t *writeTracker) WriteHeader(code int) {
	t.wrote = true
	t.ResponseWriter.WriteHeader(code)
}

func (t *writeTracker) Write(b []byte) (int, error) {
	t.wrote = true
	return t.ResponseWriter.Write(b)
}
