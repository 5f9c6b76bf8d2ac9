package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/iolph/wpr/internal/config"
	"github.com/iolph/wpr/internal/models"
	"github.com/iolph/wpr/internal/services"
)

// HealthHandler reports subsystem status for probes and debugging.
type HealthHandler struct {
	cfg *config.Config
}

func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{cfg: cfg}
}

// CheckHealth handles GET /health.
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	dbStatus := "ok"
	sqlDB, err := models.GetDB().DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	queueMode := "sync"
	if q := services.GetTaskQueue(); q != nil && q.IsAsync() {
		queueMode = "async (redis)"
	}

	var reportCount int64
	models.GetDB().Model(&models.Report{}).Count(&reportCount)

	c.JSON(200, gin.H{
		"status":  overall,
		"service": "wpr",
		"components": gin.H{
			"database": dbStatus,
			"queue":    queueMode,
			"ai":       h.cfg.AI.Enabled(),
			"email":    h.cfg.Email.Enabled(),
		},
		"reports": reportCount,
	})
}
