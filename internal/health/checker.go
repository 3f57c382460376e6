package health

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/castwatch/stream-health/internal/procscan"
)

// Wire values for the aggregate verdict.
const (
	StatusStreaming = "streaming"
	StatusDegraded  = "degraded"
)

// Report is the outcome of a single health check. It is built per request and
// discarded with the response; nothing about it survives across checks.
type Report struct {
	// Processes holds the per-marker presence flags.
	Processes procscan.Presence
	// Healthy is true only when every required process was found.
	Healthy bool
}

// Status renders the verdict as its wire value.
func (r Report) Status() string {
	if r.Healthy {
		return StatusStreaming
	}
	return StatusDegraded
}

// MetricHooks lets the caller observe check outcomes without this package
// importing any metrics library. Nil funcs are skipped.
type MetricHooks struct {
	// OnSnapshot fires after every snapshot attempt, successful or not.
	OnSnapshot func(took time.Duration, err error)
	// OnCheck fires with the final report of every check.
	OnCheck func(r Report)
}

// Checker samples the process table and derives the streaming pipeline's
// health verdict. A snapshot failure is absorbed here: the check still
// succeeds, reporting every process as absent.
type Checker struct {
	snap    procscan.Snapshotter
	timeout time.Duration
	hooks   MetricHooks
	logger  *zap.Logger
}

// NewChecker builds a Checker. timeout bounds each snapshot acquisition;
// zero means the snapshot runs under the request context alone.
func NewChecker(snap procscan.Snapshotter, timeout time.Duration, hooks MetricHooks, logger *zap.Logger) *Checker {
	return &Checker{snap: snap, timeout: timeout, hooks: hooks, logger: logger}
}

// Check acquires a process snapshot and returns the resulting Report.
// It never returns an error: an unavailable snapshot yields an all-absent,
// unhealthy report. The failure is logged at Debug only, so the frequently
// polled probe stays silent under the default log level.
func (c *Checker) Check(ctx context.Context) Report {
	sctx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		sctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	snapshot, err := c.snap.Snapshot(sctx)
	if c.hooks.OnSnapshot != nil {
		c.hooks.OnSnapshot(time.Since(start), err)
	}

	var r Report
	if err != nil {
		c.logger.Debug("process snapshot unavailable", zap.Error(err))
		r = Report{Processes: procscan.Empty()}
	} else {
		procs := procscan.Detect(snapshot)
		healthy := true
		for _, present := range procs {
			healthy = healthy && present
		}
		r = Report{Processes: procs, Healthy: healthy}
	}

	if c.hooks.OnCheck != nil {
		c.hooks.OnCheck(r)
	}
	return r
}
