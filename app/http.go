package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Black-And-White-Club/truthtable/app/shared/attr"
	"github.com/Black-And-White-Club/truthtable/app/shared/httpapi"
	"github.com/Black-And-White-Club/truthtable/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// mounter is implemented by every module's HTTP handlers.
type mounter interface {
	Mount(r chi.Router)
}

// healthFunc reports whether a dependency is usable.
type healthFunc func(ctx context.Context) error

// newHTTPHandler builds the API router. /metrics is served here unless a
// separate metrics address is configured.
func newHTTPHandler(cfg config.Config, logger *slog.Logger, registry *prometheus.Registry, checks map[string]healthFunc, modules ...mounter) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httpapi.Correlation)

	r.Get("/healthz", healthHandler(logger, checks))
	if cfg.Observability.MetricsAddress == "" {
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	limiter := httpapi.NewClientRateLimiter(rate.Limit(cfg.HTTP.RateLimitRPS), cfg.HTTP.RateLimitBurst)
	r.Route("/api", func(r chi.Router) {
		r.Use(httpapi.CORS(cfg.HTTP.CORSAllowedOrigins))
		if cfg.HTTP.RateLimitRPS > 0 {
			r.Use(httpapi.RateLimit(limiter))
		}
		for _, m := range modules {
			m.Mount(r)
		}
	})
	return r
}

func healthHandler(logger *slog.Logger, checks map[string]healthFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{}
		code := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.WarnContext(ctx, "Health check failed", attr.String("dependency", name), attr.Error(err))
				status[name] = "unavailable"
				code = http.StatusServiceUnavailable
				continue
			}
			status[name] = "ok"
		}
		httpapi.WriteJSON(w, code, status)
	}
}

func newMetricsServer(addr string, registry *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}
