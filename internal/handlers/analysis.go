package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/iolph/wpr/internal/services"
	"github.com/iolph/wpr/pkg/response"
)

type AnalysisHandler struct {
	analyses *services.AnalysisService
}

func NewAnalysisHandler(analyses *services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analyses: analyses}
}

// History handles GET /api/analyses/:name.
func (h *AnalysisHandler) History(c *gin.Context) {
	name := c.Param("name")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	response.Success(c, h.analyses.HistoryFor(name, limit))
}

// ByWeek handles GET /api/analyses/week.
func (h *AnalysisHandler) ByWeek(c *gin.Context) {
	week, _ := strconv.Atoi(c.Query("week"))
	year, _ := strconv.Atoi(c.Query("year"))
	if week == 0 || year == 0 {
		response.BadRequest(c, "week and year are required")
		return
	}
	response.Success(c, h.analyses.ListByWeek(week, year))
}
