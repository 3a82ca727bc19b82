package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func staticCheck(status Status) Check {
	return func(ctx context.Context) ComponentHealth {
		return ComponentHealth{Status: status}
	}
}

func TestRunAggregatesWorstStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses map[string]Status
		want     Status
	}{
		{"all up", map[string]Status{"postgres": StatusUp, "redis": StatusUp}, StatusUp},
		{"one degraded", map[string]Status{"postgres": StatusUp, "redis": StatusDegraded}, StatusDegraded},
		{"one down", map[string]Status{"postgres": StatusDown, "redis": StatusDegraded}, StatusDown},
		{"no checks", map[string]Status{}, StatusUp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewChecker()
			for name, status := range tt.statuses {
				checker.Register(name, staticCheck(status))
			}
			report := checker.Run(context.Background())
			if report.Status != tt.want {
				t.Errorf("Status = %q, want %q", report.Status, tt.want)
			}
			if len(report.Components) != len(tt.statuses) {
				t.Errorf("got %d components, want %d", len(report.Components), len(tt.statuses))
			}
		})
	}
}

func TestRunFillsProbeLatency(t *testing.T) {
	checker := NewChecker()
	checker.Register("snapshot", staticCheck(StatusUp))
	report := checker.Run(context.Background())
	if report.Components["snapshot"].Latency == "" {
		t.Error("component latency not recorded")
	}
}

func TestReadyHandlerStatusCodes(t *testing.T) {
	checker := NewChecker()
	checker.Register("postgres", staticCheck(StatusUp))

	rec := httptest.NewRecorder()
	checker.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("ready status = %d, want 200", rec.Code)
	}

	checker.Register("redis", staticCheck(StatusDown))
	rec = httptest.NewRecorder()
	checker.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("ready status = %d, want 503", rec.Code)
	}
}
