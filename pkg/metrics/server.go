package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const landingPage = `<html><body><h1>LinkRanker Metrics</h1><p><a href="/metrics">/metrics</a></p></body></html>`

// StartServer serves /metrics on its own port, away from the rank API, so
// Prometheus scrapes are unaffected by the request timeout middleware. The
// returned function shuts the server down.
func StartServer(port int) (shutdown func(context.Context) error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, landingPage)
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("metrics server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server error", "error", err)
		}
	}()
	return server.Shutdown
}
