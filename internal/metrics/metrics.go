package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/castwatch/stream-health/internal/health"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	ProbeChecks      *prometheus.CounterVec
	ProcessUp        *prometheus.GaugeVec
	SnapshotFailures prometheus.Counter
	SnapshotDuration prometheus.Histogram
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ProbeChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "probe_checks_total",
			Help: "Total number of health checks served, by resulting verdict.",
		}, []string{"verdict"}),

		ProcessUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "process_up",
			Help: "Whether a required pipeline process was found in the last snapshot (1) or not (0).",
		}, []string{"process"}),

		SnapshotFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "snapshot_failures_total",
			Help: "Total number of process snapshot acquisitions that failed.",
		}),

		SnapshotDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "snapshot_duration_seconds",
			Help:    "Time spent acquiring the process snapshot.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		m.ProbeChecks,
		m.ProcessUp,
		m.SnapshotFailures,
		m.SnapshotDuration,
	)

	return m
}

// CheckerHooks returns the callbacks expected by health.MetricHooks.
// Centralises the prometheus observation calls so the health package stays
// free of metrics imports.
func (m *Metrics) CheckerHooks() health.MetricHooks {
	return health.MetricHooks{
		OnSnapshot: func(took time.Duration, err error) {
			m.SnapshotDuration.Observe(took.Seconds())
			if err != nil {
				m.SnapshotFailures.Inc()
			}
		},
		OnCheck: func(r health.Report) {
			m.ProbeChecks.WithLabelValues(r.Status()).Inc()

			for label, present := range r.Processes {
				v := 0.0
				if present {
					v = 1.0
				}
				m.ProcessUp.WithLabelValues(label).Set(v)
			}
		},
	}
}
