package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/angeloszaimis/ollama-proxy/internal/auth"
	"github.com/angeloszaimis/ollama-proxy/internal/forward"
	"github.com/angeloszaimis/ollama-proxy/internal/metrics"
	"github.com/angeloszaimis/ollama-proxy/internal/registry"
	"github.com/angeloszaimis/ollama-proxy/internal/route"
)

// ProxyHandler is the authenticated catch-all that forwards requests to the
// resolved Ollama instance.
type ProxyHandler struct {
	logger           *slog.Logger
	registry         *registry.Registry
	auth             *auth.Authenticator
	engine           *forward.Engine
	metricsCollector *metrics.Collector
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (p *ProxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.logger.Info("Received request",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("from", r.RemoteAddr),
		slog.String("user_agent", r.UserAgent()))

	if err := p.auth.Authorize(r.Header.Get("Authorization")); err != nil {
		p.emitEvent(metrics.MetricEvent{
			Type:      metrics.EventAuthDenied,
			Timestamp: time.Now(),
		})
		p.writeAuthError(w, err)
		return
	}

	// The bare root and top-level health path are answered locally even on
	// the catch-all route, for methods the dedicated endpoints do not cover.
	trimmed := strings.TrimPrefix(r.URL.Path, "/")
	if trimmed == "" || trimmed == "health" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	res := route.Resolve(p.registry, r.URL.Path)
	targetURL := res.BaseURL + "/" + res.ForwardPath

	req, err := forward.NewRequest(r, targetURL)
	if err != nil {
		p.logger.Error("failed to read request body", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"detail": "Proxy error: could not read request body",
		})
		return
	}

	p.emitEvent(metrics.MetricEvent{
		Type:      metrics.EventRequestReceived,
		Timestamp: time.Now(),
		Instance:  res.Instance,
	})
	p.emitEvent(metrics.MetricEvent{
		Type:      metrics.EventInstanceSelected,
		Timestamp: time.Now(),
		Instance:  res.Instance,
	})

	p.logger.Info("Forwarding to instance",
		slog.String("instance", res.Instance),
		slog.String("method", r.Method),
		slog.String("target", targetURL),
		slog.Bool("stream", req.Stream))

	start := time.Now()
	wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

	ferr := p.engine.Forward(r.Context(), wrapped, req)

	statusCode := wrapped.statusCode
	if ferr != nil {
		statusCode = ferr.Code
		p.logger.Error("Error proxying request",
			slog.String("instance", res.Instance),
			slog.String("target", targetURL),
			slog.Int("status", ferr.Code),
			slog.Any("err", ferr.Err))
		writeJSON(w, ferr.Code, map[string]string{"detail": ferr.Detail})
	}

	p.emitEvent(metrics.MetricEvent{
		Type:       metrics.EventResponseCompleted,
		Timestamp:  time.Now(),
		Instance:   res.Instance,
		Duration:   time.Since(start),
		StatusCode: statusCode,
	})
}

// Root answers the unauthenticated service metadata endpoint.
func (p *ProxyHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":        "Ollama Proxy",
		"status":         "running",
		"backends":       p.registry.Names(),
		"authentication": authLabel(p.auth.Enabled()),
	})
}

// Health answers the unauthenticated liveness endpoint without touching
// any backend.
func (p *ProxyHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":         "healthy",
		"authentication": authLabel(p.auth.Enabled()),
	})
}

func (p *ProxyHandler) writeAuthError(w http.ResponseWriter, err error) {
	switch err {
	case auth.ErrMissingCredential:
		w.Header().Set("WWW-Authenticate", auth.Scheme)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": err.Error()})
	default:
		writeJSON(w, http.StatusForbidden, map[string]string{"detail": err.Error()})
	}
}

func (p *ProxyHandler) emitEvent(event metrics.MetricEvent) {
	if p.metricsCollector == nil {
		return
	}

	select {
	case p.metricsCollector.EventChannel() <- event:
	default:
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func authLabel(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps the streaming relay working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func NewProxyHandler(
	logger *slog.Logger,
	reg *registry.Registry,
	authenticator *auth.Authenticator,
	engine *forward.Engine,
	collector *metrics.Collector,
) *ProxyHandler {
	return &ProxyHandler{
		logger:           logger,
		registry:         reg,
		auth:             authenticator,
		engine:           engine,
		metricsCollector: collector,
	}
}
