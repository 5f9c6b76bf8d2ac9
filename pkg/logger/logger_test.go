package logger

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// captureLog swaps the package logger for a buffer-backed one.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := log
	log = zerolog.New(&buf).With().Str("service", serviceName).Logger()
	t.Cleanup(func() { log = previous })
	return &buf
}

func TestGinLoggerTagsService(t *testing.T) {
	buf := captureLog(t)

	r := gin.New()
	r.Use(GinLogger())
	r.GET("/api/reports/catalogs", func(c *gin.Context) { c.Status(200) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/reports/catalogs", nil)
	r.ServeHTTP(w, req)

	out := buf.String()
	if !strings.Contains(out, `"service":"wpr"`) {
		t.Errorf("request log missing service tag: %s", out)
	}
	if !strings.Contains(out, `"path":"/api/reports/catalogs"`) {
		t.Errorf("request log missing path: %s", out)
	}
}

func TestGinLoggerSkipsHealthProbes(t *testing.T) {
	buf := captureLog(t)

	r := gin.New()
	r.Use(GinLogger())
	r.GET("/health", func(c *gin.Context) { c.Status(200) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	r.ServeHTTP(w, req)

	if buf.Len() != 0 {
		t.Errorf("healthy probe should not be logged, got %s", buf.String())
	}

	// A failing probe is still worth a line.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/health?fail=1", nil)
	r2 := gin.New()
	r2.Use(GinLogger())
	r2.GET("/health", func(c *gin.Context) { c.Status(500) })
	r2.ServeHTTP(w, req)

	if !strings.Contains(buf.String(), `"status":500`) {
		t.Errorf("failing probe should be logged, got %s", buf.String())
	}
}
