package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/voicemap/component"
)

// HealthChecker collects the health of every registered component.
type HealthChecker func(ctx context.Context) []component.Health

// HealthReport is the /health body.
type HealthReport struct {
	Status     component.HealthStatus `json:"status"`
	Service    string                 `json:"service"`
	Timestamp  string                 `json:"timestamp"`
	Components []component.Health     `json:"components"`
}

// Overall folds component states: any unhealthy wins, then any degraded.
func Overall(components []component.Health) component.HealthStatus {
	status := component.StatusHealthy
	for _, h := range components {
		switch h.Status {
		case component.StatusUnhealthy:
			return component.StatusUnhealthy
		case component.StatusDegraded:
			status = component.StatusDegraded
		}
	}
	return status
}

// Health answers 503 while any component is unhealthy. A degraded diarization
// gateway still answers 200 so the explorer stays reachable.
func Health(service string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := HealthReport{
			Service:    service,
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
			Components: []component.Health{},
		}
		if checker != nil {
			report.Components = checker(c.Request.Context())
		}
		report.Status = Overall(report.Components)

		code := http.StatusOK
		if report.Status == component.StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, report)
	}
}
