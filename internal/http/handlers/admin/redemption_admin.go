package admin

import (
	"strconv"

	handlershared "github.com/piezasya/loyalty/internal/http/handlers/shared"
	"github.com/piezasya/loyalty/internal/http/response"
	"github.com/piezasya/loyalty/internal/repository"
	"github.com/piezasya/loyalty/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateRedemptionRequest 更新兑换单请求
type UpdateRedemptionRequest struct {
	Status         string `json:"status" binding:"required"`
	TrackingNumber string `json:"tracking_number"`
	AdminNote      string `json:"admin_note"`
}

// ListRedemptions 兑换单列表
func (h *Handler) ListRedemptions(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)
	rewardID, _ := strconv.ParseUint(c.Query("reward_id"), 10, 64)
	createdFrom, err := parseTimeNullable(c.Query("created_from"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	createdTo, err := parseTimeNullable(c.Query("created_to"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	items, total, err := h.RedemptionService.List(repository.RedemptionListFilter{
		Page:         page,
		PageSize:     pageSize,
		UserID:       uint(userID),
		RewardID:     uint(rewardID),
		Status:       c.Query("status"),
		RedemptionNo: c.Query("redemption_no"),
		CreatedFrom:  createdFrom,
		CreatedTo:    createdTo,
	})
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}
	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// UpdateRedemption 推进兑换单状态
func (h *Handler) UpdateRedemption(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateRedemptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	redemption, err := h.RedemptionService.UpdateStatus(c.Request.Context(), adminID, id, service.UpdateRedemptionInput{
		Status:         req.Status,
		TrackingNumber: req.TrackingNumber,
		AdminNote:      req.AdminNote,
	})
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}
	response.Success(c, redemption)
}
