package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/imagefeed/version"
)

var startedAt = time.Now()

// InfoResponse is the /info body.
type InfoResponse struct {
	Service string `json:"service"`
	version.Info
	Uptime  string `json:"uptime"`
	Started string `json:"started"`
}

// Info reports the build and how long the process has been up.
func Info(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, InfoResponse{
			Service: serviceName,
			Info:    version.Get(),
			Uptime:  time.Since(startedAt).Round(time.Second).String(),
			Started: startedAt.UTC().Format(time.RFC3339),
		})
	}
}
