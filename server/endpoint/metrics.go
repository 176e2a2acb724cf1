package endpoint

import (
	"context"
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
)

// Gauges reports application values such as the live session count.
type Gauges func(ctx context.Context) map[string]any

// RuntimeStats is the process section of /metrics, sizes in MiB.
type RuntimeStats struct {
	Goroutines int    `json:"goroutines"`
	HeapMB     uint64 `json:"heap_mb"`
	SysMB      uint64 `json:"sys_mb"`
	GCRuns     uint32 `json:"gc_runs"`
}

func readRuntime() RuntimeStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return RuntimeStats{
		Goroutines: runtime.NumGoroutine(),
		HeapMB:     m.HeapAlloc >> 20,
		SysMB:      m.Sys >> 20,
		GCRuns:     m.NumGC,
	}
}

// Metrics serves a JSON snapshot for humans. OTLP export is configured
// separately by the observability package.
func Metrics(gauges Gauges) gin.HandlerFunc {
	return func(c *gin.Context) {
		app := map[string]any{}
		if gauges != nil {
			app = gauges(c.Request.Context())
		}
		c.JSON(http.StatusOK, gin.H{"runtime": readRuntime(), "app": app})
	}
}
