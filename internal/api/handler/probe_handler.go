package handler

import (
	"net/http"

	"github.com/castwatch/stream-health/internal/health"
	"github.com/castwatch/stream-health/internal/procscan"
)

// HealthResponse is the wire format of the probe. Field order is fixed by the
// struct (status, processes, target); the processes map serializes with its
// keys in alphabetical order.
type HealthResponse struct {
	Status    string            `json:"status"`
	Processes procscan.Presence `json:"processes"`
	Target    string            `json:"target"`
}

// ProbeHandler serves the pipeline liveness report. The target string is
// captured once at construction; it is informational only and never
// influences the verdict.
type ProbeHandler struct {
	checker *health.Checker
	target  string
}

func NewProbeHandler(checker *health.Checker, target string) *ProbeHandler {
	return &ProbeHandler{checker: checker, target: target}
}

// Probe handles GET on every path.
//
// @Summary  Streaming pipeline liveness report
// @Tags     system
// @Produce  json
// @Success  200  {object}  handler.HealthResponse  "All pipeline processes running"
// @Failure  503  {object}  handler.HealthResponse  "At least one process missing"
// @Router   / [get]
func (h *ProbeHandler) Probe(w http.ResponseWriter, r *http.Request) {
	report := h.checker.Check(r.Context())

	code := http.StatusOK
	if !report.Healthy {
		code = http.StatusServiceUnavailable
	}

	respondJSON(w, code, HealthResponse{
		Status:    report.Status(),
		Processes: report.Processes,
		Target:    h.target,
	})
}
