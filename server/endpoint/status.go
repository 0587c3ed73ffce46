package endpoint

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/imagefeed/component"
	"github.com/kbukum/imagefeed/version"
)

// StatusResponse is the body of /livez and /readyz.
type StatusResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

// Liveness answers 200 while the process can serve HTTP.
func Liveness(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, statusBody("alive", serviceName))
	}
}

// Readiness answers 503 while any component is unhealthy. A degraded
// component still takes traffic.
func Readiness(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if checker != nil && Aggregate(checker(c.Request.Context())) == component.StatusUnhealthy {
			c.JSON(http.StatusServiceUnavailable, statusBody("not_ready", serviceName))
			return
		}
		c.JSON(http.StatusOK, statusBody("ready", serviceName))
	}
}

// Version reports the build without uptime.
func Version() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, version.Get())
	}
}

// RuntimeResponse is the /debug/runtime body.
type RuntimeResponse struct {
	Timestamp  string `json:"timestamp"`
	Goroutines int    `json:"goroutines"`
	HeapAlloc  uint64 `json:"heap_alloc_bytes"`
	HeapSys    uint64 `json:"heap_sys_bytes"`
	NumGC      uint32 `json:"num_gc"`
}

// Runtime reports goroutine and heap counters. Each open event stream holds
// goroutines, so the count tracks connected subscribers.
func Runtime() gin.HandlerFunc {
	return func(c *gin.Context) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		c.JSON(http.StatusOK, RuntimeResponse{
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
			Goroutines: runtime.NumGoroutine(),
			HeapAlloc:  m.HeapAlloc,
			HeapSys:    m.HeapSys,
			NumGC:      m.NumGC,
		})
	}
}

func statusBody(status, serviceName string) StatusResponse {
	return StatusResponse{
		Status:    status,
		Service:   serviceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
