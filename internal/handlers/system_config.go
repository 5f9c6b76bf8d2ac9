package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/iolph/wpr/internal/services"
	"github.com/iolph/wpr/pkg/response"
)

type SystemConfigHandler struct {
	configService *services.SystemConfigService
}

func NewSystemConfigHandler(configService *services.SystemConfigService) *SystemConfigHandler {
	return &SystemConfigHandler{configService: configService}
}

// GetByGroup handles GET /api/admin/configs/:group.
func (h *SystemConfigHandler) GetByGroup(c *gin.Context) {
	configs, err := h.configService.GetByGroup(c.Param("group"))
	if err != nil {
		response.ServerError(c, "failed to load configs")
		return
	}
	response.Success(c, configs)
}

type UpdateConfigRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value"`
}

// Update handles PUT /api/admin/configs.
func (h *SystemConfigHandler) Update(c *gin.Context) {
	var req UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.configService.Set(req.Key, req.Value); err != nil {
		response.ServerError(c, "failed to update config")
		return
	}
	response.Success(c, gin.H{"key": req.Key, "value": req.Value})
}
