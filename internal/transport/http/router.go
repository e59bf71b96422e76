// Package http assembles the HTTP surface: middleware chain, domain handler
// mounts, health and metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"intake/internal/platform/metrics"
	"intake/internal/platform/middleware"
)

// Registrar is implemented by every domain handler.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck pings one backing service for the health endpoint.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// RouterConfig collects everything the router mounts.
type RouterConfig struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// JSON handlers run behind the JSON content-type guard.
	JSON []Registrar
	// Multipart handlers (document upload) sit outside it.
	Multipart []Registrar

	HealthChecks []HealthCheck

	RequestTimeout time.Duration
}

// NewRouter builds the chi router with the shared middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Latency(cfg.Metrics))
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/healthz", healthHandler(cfg.Logger, cfg.HealthChecks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		for _, h := range cfg.JSON {
			h.Register(r)
		}
	})
	for _, h := range cfg.Multipart {
		h.Register(r)
	}

	return r
}

// healthHandler pings every configured dependency and reports 503 with the
// failing names when any of them is unreachable.
func healthHandler(logger *slog.Logger, checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		var failing []string
		for _, check := range checks {
			if err := check.Check(ctx); err != nil {
				logger.WarnContext(ctx, "health check failed", "component", check.Name, "error", err.Error())
				failing = append(failing, check.Name)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if len(failing) > 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "degraded", "failing": failing})
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
