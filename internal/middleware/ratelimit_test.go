package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func limitedRouter(rl *RateLimiter) *gin.Engine {
	router := gin.New()
	router.Use(rl.Middleware())
	router.POST("/submit", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	return router
}

func TestRateLimitAllowsNormalTraffic(t *testing.T) {
	router := limitedRouter(NewRateLimiter(10, 10))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/submit", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRateLimitBlocksBurst(t *testing.T) {
	router := limitedRouter(NewRateLimiter(1, 2))

	var lastCode int
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/submit", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		router.ServeHTTP(w, req)
		lastCode = w.Code
	}

	if lastCode != http.StatusTooManyRequests {
		t.Errorf("status after burst = %d, want %d", lastCode, http.StatusTooManyRequests)
	}
}

func TestRateLimitIsPerIP(t *testing.T) {
	router := limitedRouter(NewRateLimiter(1, 1))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/submit", nil)
	req.RemoteAddr = "10.0.0.2:12345"
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("first IP first request = %d, want 200", w.Code)
	}

	// Exhaust the first IP.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/submit", nil)
	req.RemoteAddr = "10.0.0.2:12345"
	router.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("first IP second request = %d, want 429", w.Code)
	}

	// A different IP is untouched.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/submit", nil)
	req.RemoteAddr = "10.0.0.3:12345"
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("second IP = %d, want 200", w.Code)
	}
}
