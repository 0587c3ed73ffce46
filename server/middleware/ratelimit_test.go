package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/imagefeed/server/middleware"
)

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	now := time.Date(2024, 3, 9, 13, 30, 0, 0, time.UTC)
	engine := gin.New()
	engine.POST("/send", middleware.RateLimit(middleware.RateLimitConfig{
		Requests: 2,
		Window:   time.Minute,
		Now:      func() time.Time { return now },
	}), func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/send", http.NoBody)
		req.RemoteAddr = ip + ":40000"
		rr := httptest.NewRecorder()
		engine.ServeHTTP(rr, req)
		return rr
	}

	for i := 0; i < 2; i++ {
		if rr := send("10.0.0.1"); rr.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, rr.Code)
		}
	}

	now = now.Add(20 * time.Second)
	rr := send("10.0.0.1")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: status = %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "40" {
		t.Errorf("Retry-After = %q", rr.Header().Get("Retry-After"))
	}
	if !strings.Contains(rr.Body.String(), `"code":"RATE_LIMITED"`) {
		t.Errorf("body = %s", rr.Body.String())
	}

	if rr := send("10.0.0.2"); rr.Code != http.StatusOK {
		t.Errorf("other client: status = %d", rr.Code)
	}

	now = now.Add(41 * time.Second)
	if rr := send("10.0.0.1"); rr.Code != http.StatusOK {
		t.Errorf("after the window: status = %d", rr.Code)
	}
}
