package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/voicemap/version"
)

var started = time.Now()

// InfoReport is the /info body: build metadata plus process uptime.
type InfoReport struct {
	Service string `json:"service"`
	version.Info
	Uptime string `json:"uptime"`
}

// Info reports build metadata and uptime for service.
func Info(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, InfoReport{
			Service: service,
			Info:    version.Get(),
			Uptime:  time.Since(started).Round(time.Second).String(),
		})
	}
}

// Version reports build metadata only.
func Version() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, version.Get())
	}
}
