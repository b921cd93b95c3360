package public

import (
	"strings"

	"github.com/piezasya/loyalty/internal/constants"
	handlershared "github.com/piezasya/loyalty/internal/http/handlers/shared"
	"github.com/piezasya/loyalty/internal/http/response"
	"github.com/piezasya/loyalty/internal/i18n"
	"github.com/piezasya/loyalty/internal/service"

	"github.com/gin-gonic/gin"
)

// RedeemRequest 兑换奖励请求
type RedeemRequest struct {
	RewardID        uint   `json:"reward_id" binding:"required"`
	ShippingAddress string `json:"shipping_address"`
}

// ReviewRequest 提交评价请求
type ReviewRequest struct {
	ProductID string `json:"product_id"`
	OrderID   string `json:"order_id"`
	Rating    int    `json:"rating" binding:"required"`
	Title     string `json:"title"`
	Comment   string `json:"comment" binding:"required"`
	Category  string `json:"category" binding:"required"`
}

// VerifyReferralRequest 校验推荐码请求，code 为正式字段，referral_code 兼容旧客户端
type VerifyReferralRequest struct {
	Code           string                              `json:"code"`
	ReferralCode   string                              `json:"referral_code"`
	CaptchaPayload handlershared.CaptchaPayloadRequest `json:"captcha_payload"`
}

func (req VerifyReferralRequest) code() string {
	if code := strings.TrimSpace(req.Code); code != "" {
		return code
	}
	return strings.TrimSpace(req.ReferralCode)
}

// TrackShareRequest 分享追踪请求
type TrackShareRequest struct {
	Platform  string `json:"platform"`
	ShareURL  string `json:"share_url"`
	ShareText string `json:"share_text"`
}

// ReportReviewRequest 举报评价请求
type ReportReviewRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// GetStats 获取当前用户积分统计
func (h *Handler) GetStats(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	stats, err := h.StatsService.GetLoyaltyStats(c.Request.Context(), principal)
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}
	response.Success(c, stats)
}

// ListRewards 获取可兑换奖励列表
func (h *Handler) ListRewards(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	rewards, err := h.RewardService.ListAvailable(c.Request.Context(), principal)
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}
	response.Success(c, rewards)
}

// Redeem 兑换奖励
func (h *Handler) Redeem(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	redemption, err := h.RedemptionService.Redeem(c.Request.Context(), principal, service.RedeemInput{
		RewardID:        req.RewardID,
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		handlershared.RespondRedeemError(c, err)
		return
	}
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "message.redeem_success"), redemption)
}

// SubmitReview 提交评价并发放积分
func (h *Handler) SubmitReview(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	result, err := h.ReviewService.ProcessReview(c.Request.Context(), principal, service.ReviewInput{
		ProductID: req.ProductID,
		OrderID:   req.OrderID,
		Rating:    req.Rating,
		Title:     req.Title,
		Comment:   req.Comment,
		Category:  req.Category,
	})
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}
	msg := i18n.Sprintf(i18n.ResolveLocale(c), "message.review_success", result.PointsEarned)
	response.SuccessWithMsg(c, msg, result)
}

// GetReferralCode 获取（首次访问时生成）推荐码
func (h *Handler) GetReferralCode(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	result, err := h.ReferralService.GetOrCreateReferralCode(c.Request.Context(), principal)
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}
	response.Success(c, result)
}

// VerifyReferralCode 校验推荐码
func (h *Handler) VerifyReferralCode(c *gin.Context) {
	var req VerifyReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	code := req.code()
	if code == "" {
		respondError(c, response.CodeBadRequest, "error.referral_code_required", nil)
		return
	}
	if h.CaptchaService != nil {
		if err := h.CaptchaService.Verify(constants.CaptchaSceneVerifyReferral, req.CaptchaPayload.ToServicePayload()); err != nil {
			respondLoyaltyError(c, err)
			return
		}
	}
	referrer, err := h.ReferralService.VerifyReferralCode(code)
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "message.referral_valid"), gin.H{
		"valid":    true,
		"referrer": referrer,
	})
}

// RedemptionHistory 获取兑换记录
func (h *Handler) RedemptionHistory(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePagination(c)
	items, total, err := h.RedemptionService.ListHistory(principal, page, pageSize)
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}
	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// ListMyReviews 获取我的评价
func (h *Handler) ListMyReviews(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePagination(c)
	items, total, err := h.ReviewService.ListUserReviews(principal, page, pageSize)
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}
	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// ReportReview 举报评价
func (h *Handler) ReportReview(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	reviewID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req ReportReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Reason) == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.ReviewService.ReportReview(principal, reviewID, req.Reason); err != nil {
		respondLoyaltyError(c, err)
		return
	}
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "message.report_submitted"), nil)
}

// TrackShare 记录推荐分享
func (h *Handler) TrackShare(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	var req TrackShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	tracking, err := h.ReferralService.TrackReferralShare(c.Request.Context(), principal, service.ShareInput{
		Platform:  req.Platform,
		ShareURL:  req.ShareURL,
		ShareText: req.ShareText,
	})
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "message.share_tracked"), tracking)
}

// TrackingStats 获取推荐追踪统计
func (h *Handler) TrackingStats(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	stats, err := h.StatsService.GetReferralTrackingStats(c.Request.Context(), principal)
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}
	response.Success(c, stats)
}

// ListActivities 获取积分流水
func (h *Handler) ListActivities(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePagination(c)
	items, total, err := h.PointsService.ListActivities(principal, strings.TrimSpace(c.Query("type")), page, pageSize)
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}
	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// TrackClick 记录推荐链接点击（公开接口）
func (h *Handler) TrackClick(c *gin.Context) {
	code := strings.TrimSpace(c.Param("referralCode"))
	if code == "" {
		respondError(c, response.CodeBadRequest, "error.referral_code_required", nil)
		return
	}
	if err := h.ReferralService.TrackReferralClick(c.Request.Context(), code); err != nil {
		respondLoyaltyError(c, err)
		return
	}
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "message.click_tracked"), nil)
}
