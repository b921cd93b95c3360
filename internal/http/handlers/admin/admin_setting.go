package admin

import (
	"github.com/piezasya/loyalty/internal/http/response"
	"github.com/piezasya/loyalty/internal/service"

	"github.com/gin-gonic/gin"
)

// GetLoyaltySetting 获取积分计划设置
func (h *Handler) GetLoyaltySetting(c *gin.Context) {
	setting, err := h.SettingService.GetLoyaltySetting()
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}
	response.Success(c, setting)
}

// UpdateLoyaltySetting 保存积分计划设置
func (h *Handler) UpdateLoyaltySetting(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req service.LoyaltySetting
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.settings_invalid", nil)
		return
	}
	setting, err := h.SettingService.UpdateLoyaltySetting(adminID, req)
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}
	response.Success(c, setting)
}
