package admin

import (
	"strconv"

	handlershared "github.com/piezasya/loyalty/internal/http/handlers/shared"
	"github.com/piezasya/loyalty/internal/http/response"
	"github.com/piezasya/loyalty/internal/repository"

	"github.com/gin-gonic/gin"
)

// ReplyReviewRequest 回复评价请求
type ReplyReviewRequest struct {
	Reply string `json:"reply" binding:"required"`
}

// ListReviews 评价列表
func (h *Handler) ListReviews(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)
	reviews, total, err := h.ReviewService.ListReviews(repository.ReviewListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uint(userID),
		Category: c.Query("category"),
	})
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}
	response.SuccessWithPage(c, reviews, response.BuildPagination(page, pageSize, total))
}

// ReplyReview 回复评价
func (h *Handler) ReplyReview(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req ReplyReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.review_reply_required", nil)
		return
	}
	review, err := h.ReviewService.ReplyReview(adminID, id, req.Reply)
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}
	response.Success(c, review)
}
