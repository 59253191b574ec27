package main

import (
	"net/http"

	"github.com/angeloszaimis/ollama-proxy/internal/handler"
	"github.com/angeloszaimis/ollama-proxy/internal/metrics"
)

// setupRouter registers the local endpoints and the authenticated catch-all
// proxy route. Root and health are unauthenticated and never reach a backend.
func setupRouter(proxyHandler *handler.ProxyHandler, metricsCollector *metrics.Collector) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", proxyHandler.Root)
	mux.HandleFunc("GET /health", proxyHandler.Health)
	mux.HandleFunc("GET /metrics", metricsCollector.Handler())
	mux.HandleFunc("/", proxyHandler.ServeHTTP)

	return mux
}
