package endpoint

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/voicemap/component"
)

func get(t *testing.T, h gin.HandlerFunc, out any) int {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rr := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rr)
	c.Request = httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	h(c)
	if err := json.Unmarshal(rr.Body.Bytes(), out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	return rr.Code
}

func TestOverall(t *testing.T) {
	tests := []struct {
		name string
		in   []component.Health
		want component.HealthStatus
	}{
		{"empty", nil, component.StatusHealthy},
		{"all healthy", []component.Health{component.Healthy("storage")}, component.StatusHealthy},
		{"degraded gateway", []component.Health{component.Healthy("storage"), component.Degraded("explorer", "gateway unreachable")}, component.StatusDegraded},
		{"unhealthy wins", []component.Health{component.Degraded("explorer", "x"), component.Unhealthy("storage", "y")}, component.StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overall(tt.in); got != tt.want {
				t.Errorf("Overall = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	var report HealthReport
	code := get(t, Health("voicemap", func(context.Context) []component.Health {
		return []component.Health{component.Degraded("explorer", "gateway unreachable")}
	}), &report)
	if code != http.StatusOK {
		t.Errorf("degraded should answer 200, got %d", code)
	}
	if report.Status != component.StatusDegraded || report.Service != "voicemap" || len(report.Components) != 1 {
		t.Errorf("unexpected report %+v", report)
	}

	code = get(t, Health("voicemap", nil), &report)
	if code != http.StatusOK || report.Status != component.StatusHealthy {
		t.Errorf("no checker: %d %+v", code, report)
	}
}

func TestMetrics(t *testing.T) {
	var body struct {
		Runtime RuntimeStats   `json:"runtime"`
		App     map[string]any `json:"app"`
	}
	get(t, Metrics(func(context.Context) map[string]any { return map[string]any{"sessions": 2} }), &body)
	if body.Runtime.Goroutines == 0 {
		t.Error("expected goroutine count")
	}
	if body.App["sessions"] != float64(2) {
		t.Errorf("unexpected gauges %v", body.App)
	}
}

func TestInfo(t *testing.T) {
	var report map[string]any
	get(t, Info("voicemap"), &report)
	for _, key := range []string{"service", "version", "go_version", "uptime"} {
		if _, ok := report[key]; !ok {
			t.Errorf("missing %q in %v", key, report)
		}
	}
}
