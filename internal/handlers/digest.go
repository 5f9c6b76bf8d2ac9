package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/iolph/wpr/internal/services"
	"github.com/iolph/wpr/pkg/response"
)

type DigestHandler struct {
	digests *services.DigestService
}

func NewDigestHandler(digests *services.DigestService) *DigestHandler {
	return &DigestHandler{digests: digests}
}

// List handles GET /api/digests.
func (h *DigestHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))
	response.Success(c, h.digests.ListDigests(limit))
}

// Generate handles POST /api/digests/generate: builds and sends the digest
// for a specific week on demand.
func (h *DigestHandler) Generate(c *gin.Context) {
	week, _ := strconv.Atoi(c.Query("week"))
	year, _ := strconv.Atoi(c.Query("year"))
	if week == 0 || year == 0 {
		response.BadRequest(c, "week and year are required")
		return
	}

	if err := h.digests.GenerateAndSend(week, year); err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"sent": true})
}
