package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/iolph/wpr/internal/services"
	"github.com/iolph/wpr/pkg/response"
)

type DashboardHandler struct {
	dashboard *services.DashboardService
}

func NewDashboardHandler(dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// GetStats handles GET /api/dashboard/stats.
func (h *DashboardHandler) GetStats(c *gin.Context) {
	response.Success(c, h.dashboard.GetStats())
}

// Refresh handles POST /api/dashboard/refresh: drops the aggregate cache.
func (h *DashboardHandler) Refresh(c *gin.Context) {
	h.dashboard.Invalidate()
	response.Success(c, h.dashboard.GetStats())
}
