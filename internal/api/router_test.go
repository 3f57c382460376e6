package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/castwatch/stream-health/internal/api"
	"github.com/castwatch/stream-health/internal/api/handler"
	"github.com/castwatch/stream-health/internal/health"
	"github.com/castwatch/stream-health/internal/metrics"
	"github.com/castwatch/stream-health/internal/procscan"
)

// stubSnapshotter returns a canned blob or a canned error.
type stubSnapshotter struct {
	blob string
	err  error
}

func (s stubSnapshotter) Snapshot(context.Context) (string, error) {
	return s.blob, s.err
}

func newRouter(snap procscan.Snapshotter, target string) http.Handler {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	checker := health.NewChecker(snap, 0, m.CheckerHooks(), zap.NewNop())
	probe := handler.NewProbeHandler(checker, target)
	return api.NewRouter(probe, reg, zap.NewNop())
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) handler.HealthResponse {
	t.Helper()
	var body handler.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body %q: %v", rec.Body.String(), err)
	}
	return body
}

const healthyBlob = "root 101 /usr/bin/chromium --headless\n" +
	"root 102 ffmpeg -i rtmp://in -f flv rtmp://out\n" +
	"root 103 Xvfb :99 -screen 0 1920x1080x24\n"

func TestProbe_AllProcessesRunning(t *testing.T) {
	r := newRouter(stubSnapshotter{blob: healthyBlob}, "rtmp://live.example.com/app")

	rec := get(t, r, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected application/json, got %q", ct)
	}

	body := decodeBody(t, rec)
	if body.Status != health.StatusStreaming {
		t.Errorf("expected status streaming, got %q", body.Status)
	}
	for _, label := range []string{"chromium", "ffmpeg", "xvfb"} {
		if !body.Processes[label] {
			t.Errorf("%s: expected true", label)
		}
	}
	if body.Target != "rtmp://live.example.com/app" {
		t.Errorf("unexpected target %q", body.Target)
	}
}

func TestProbe_MissingProcess(t *testing.T) {
	r := newRouter(stubSnapshotter{blob: "root 102 ffmpeg -i rtmp://in\n"}, "")

	rec := get(t, r, "/")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body.Status != health.StatusDegraded {
		t.Errorf("expected status degraded, got %q", body.Status)
	}
	if !body.Processes["ffmpeg"] {
		t.Error("ffmpeg: expected true")
	}
	if body.Processes["chromium"] || body.Processes["xvfb"] {
		t.Error("expected chromium and xvfb false")
	}
}

func TestProbe_SnapshotFailure(t *testing.T) {
	r := newRouter(stubSnapshotter{err: errors.New("ps exploded")}, "")

	rec := get(t, r, "/")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected application/json, got %q", ct)
	}

	body := decodeBody(t, rec)
	if body.Status != health.StatusDegraded {
		t.Errorf("expected status degraded, got %q", body.Status)
	}
	for label, present := range body.Processes {
		if present {
			t.Errorf("%s: expected false on snapshot failure", label)
		}
	}
}

func TestProbe_TargetEchoedRegardlessOfVerdict(t *testing.T) {
	tests := []struct {
		name string
		snap stubSnapshotter
	}{
		{"healthy", stubSnapshotter{blob: healthyBlob}},
		{"degraded", stubSnapshotter{blob: ""}},
		{"snapshot failure", stubSnapshotter{err: errors.New("nope")}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newRouter(tc.snap, "rtmp://a/b?key=s3cret")
			body := decodeBody(t, get(t, r, "/"))
			if body.Target != "rtmp://a/b?key=s3cret" {
				t.Errorf("unexpected target %q", body.Target)
			}
		})
	}
}

func TestProbe_EmptyTargetWhenUnset(t *testing.T) {
	r := newRouter(stubSnapshotter{blob: healthyBlob}, "")
	body := decodeBody(t, get(t, r, "/"))
	if body.Target != "" {
		t.Errorf("expected empty target, got %q", body.Target)
	}
}

func TestProbe_ServesEveryGETPath(t *testing.T) {
	r := newRouter(stubSnapshotter{blob: healthyBlob}, "")
	for _, path := range []string{"/", "/health", "/healthz", "/some/deep/path"} {
		rec := get(t, r, path)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestProbe_BodyKeyOrder(t *testing.T) {
	r := newRouter(stubSnapshotter{blob: healthyBlob}, "rtmp://x")
	raw := get(t, r, "/").Body.String()

	status := strings.Index(raw, `"status"`)
	processes := strings.Index(raw, `"processes"`)
	target := strings.Index(raw, `"target"`)
	if status == -1 || processes == -1 || target == -1 {
		t.Fatalf("missing keys in body %q", raw)
	}
	if !(status < processes && processes < target) {
		t.Errorf("expected key order status, processes, target in %q", raw)
	}
}

func TestProbe_CorrelationIDEchoed(t *testing.T) {
	r := newRouter(stubSnapshotter{blob: healthyBlob}, "")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Correlation-ID", "probe-42")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Correlation-ID"); got != "probe-42" {
		t.Errorf("expected correlation ID echoed, got %q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := newRouter(stubSnapshotter{blob: healthyBlob}, "")

	// A probe hit first, so the instruments carry observations.
	get(t, r, "/")

	rec := get(t, r, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "probe_checks_total") {
		t.Error("expected probe_checks_total in scrape output")
	}
	if !strings.Contains(rec.Body.String(), "process_up") {
		t.Error("expected process_up in scrape output")
	}
}

func TestNonGETLeftToRouterDefaults(t *testing.T) {
	r := newRouter(stubSnapshotter{blob: healthyBlob}, "")

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
