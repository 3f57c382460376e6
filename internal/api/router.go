package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/castwatch/stream-health/internal/api/handler"
	apimw "github.com/castwatch/stream-health/internal/api/middleware"
)

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(probe *handler.ProbeHandler, reg prometheus.Gatherer, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)     // recover panics, return 500
	r.Use(chimw.RealIP)        // trust X-Forwarded-For / X-Real-IP
	r.Use(apimw.CorrelationID) // X-Correlation-ID inject / echo

	// --- routes ---

	// Raw Prometheus scrape endpoint. Scrapes are infrequent enough to log.
	r.With(apimw.RequestLogger(logger)).
		Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// The probe answers every GET path with the same report, so a
	// misconfigured poll target still gets a truthful answer. These routes
	// carry no request logging: the endpoint exists to be polled constantly
	// and logging each hit would drown everything else.
	r.Get("/", probe.Probe)
	r.Get("/*", probe.Probe)

	return r
}
