package admin

import (
	"strconv"

	handlershared "github.com/piezasya/loyalty/internal/http/handlers/shared"
	"github.com/piezasya/loyalty/internal/http/response"
	"github.com/piezasya/loyalty/internal/i18n"
	"github.com/piezasya/loyalty/internal/models"
	"github.com/piezasya/loyalty/internal/queue"
	"github.com/piezasya/loyalty/internal/repository"
	"github.com/piezasya/loyalty/internal/service"

	"github.com/gin-gonic/gin"
)

// AdjustPointsRequest 手动调整积分请求
type AdjustPointsRequest struct {
	Points int    `json:"points" binding:"required"`
	Remark string `json:"remark"`
}

// ReferralRegisteredRequest 推荐注册成功通知
type ReferralRegisteredRequest struct {
	ReferralCode string `json:"referral_code" binding:"required"`
	NewUserID    uint   `json:"new_user_id" binding:"required"`
}

// UpdateUserStatusRequest 启用或停用会员
type UpdateUserStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderCompletedRequest 门店订单完成通知，金额为十进制字符串
type OrderCompletedRequest struct {
	UserID   uint   `json:"user_id" binding:"required"`
	OrderRef string `json:"order_ref" binding:"required"`
	Amount   string `json:"amount" binding:"required"`
}

// ListUsers 会员列表
func (h *Handler) ListUsers(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	referredBy, _ := strconv.ParseUint(c.Query("referred_by"), 10, 64)
	users, total, err := h.UserRepo.List(repository.UserListFilter{
		Page:         page,
		PageSize:     pageSize,
		Keyword:      c.Query("keyword"),
		LoyaltyLevel: c.Query("loyalty_level"),
		ReferredBy:   uint(referredBy),
	})
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}
	response.SuccessWithPage(c, users, response.BuildPagination(page, pageSize, total))
}

// AdjustUserPoints 手动调整用户积分
func (h *Handler) AdjustUserPoints(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	userID, ok := parseID(c)
	if !ok {
		return
	}
	var req AdjustPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.points_invalid", nil)
		return
	}
	change, err := h.PointsService.AdjustPoints(c.Request.Context(), adminID, userID, req.Points, req.Remark)
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "message.points_adjusted"), change)
}

// ReferralRegistered 推荐注册成功后发放奖励（幂等）
func (h *Handler) ReferralRegistered(c *gin.Context) {
	var req ReferralRegisteredRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if h.QueueClient.Enabled() {
		payload := queue.ReferralRegisteredPayload{ReferralCode: req.ReferralCode, NewUserID: req.NewUserID}
		if err := h.QueueClient.EnqueueReferralRegistered(payload); err != nil {
			respondError(c, response.CodeInternal, "error.internal_error", err)
			return
		}
		response.Success(c, gin.H{"queued": true, "new_user_id": req.NewUserID})
		return
	}
	bonus, err := h.ReferralService.TrackSuccessfulReferral(c.Request.Context(), req.ReferralCode, req.NewUserID)
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}
	response.Success(c, bonus)
}

// UpdateUserStatus 启用或停用会员账号
func (h *Handler) UpdateUserStatus(c *gin.Context) {
	userID, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.user_status_invalid", nil)
		return
	}
	user, err := h.AuthService.SetUserStatus(c.Request.Context(), userID, req.Status)
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "message.user_status_updated"), user)
}

// OrderCompleted 补录订单消费并发放购物积分（按订单号幂等）
func (h *Handler) OrderCompleted(c *gin.Context) {
	var req OrderCompletedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	amount, err := models.ParseMoney(req.Amount)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.purchase_amount_invalid", nil)
		return
	}
	if h.QueueClient.Enabled() {
		payload := queue.OrderCompletedPayload{UserID: req.UserID, OrderRef: req.OrderRef, Amount: amount.String()}
		if err := h.QueueClient.EnqueueOrderCompleted(payload); err != nil {
			respondError(c, response.CodeInternal, "error.internal_error", err)
			return
		}
		response.Success(c, gin.H{"queued": true, "order_ref": req.OrderRef})
		return
	}
	purchase, created, err := h.PointsService.RecordPurchase(c.Request.Context(), service.PurchaseInput{
		UserID:   req.UserID,
		OrderRef: req.OrderRef,
		Amount:   amount,
	})
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}
	response.Success(c, gin.H{"purchase": purchase, "duplicate": !created})
}
