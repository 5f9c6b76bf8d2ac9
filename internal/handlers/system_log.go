package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/iolph/wpr/internal/services"
	"github.com/iolph/wpr/pkg/response"
)

type SystemLogHandler struct {
	logService *services.SystemLogService
}

func NewSystemLogHandler(logService *services.SystemLogService) *SystemLogHandler {
	return &SystemLogHandler{logService: logService}
}

// List handles GET /api/admin/logs.
func (h *SystemLogHandler) List(c *gin.Context) {
	var req services.SystemLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.logService.List(&req)
	if err != nil {
		response.ServerError(c, "failed to list logs")
		return
	}
	response.Success(c, resp)
}

// Modules handles GET /api/admin/logs/modules.
func (h *SystemLogHandler) Modules(c *gin.Context) {
	modules, err := h.logService.GetModules()
	if err != nil {
		response.ServerError(c, "failed to list modules")
		return
	}
	response.Success(c, modules)
}
