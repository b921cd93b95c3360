package admin

import (
	handlershared "github.com/piezasya/loyalty/internal/http/handlers/shared"
	"github.com/piezasya/loyalty/internal/http/response"
	"github.com/piezasya/loyalty/internal/models"
	"github.com/piezasya/loyalty/internal/repository"
	"github.com/piezasya/loyalty/internal/service"

	"github.com/gin-gonic/gin"
)

// RewardRequest 创建/更新奖励请求
type RewardRequest struct {
	Name           string       `json:"name" binding:"required"`
	Description    string       `json:"description"`
	ImageURL       string       `json:"image_url"`
	PointsRequired int          `json:"points_required"`
	CashRequired   models.Money `json:"cash_required"`
	Category       string       `json:"category" binding:"required"`
	Stock          int          `json:"stock"`
	IsActive       *bool        `json:"is_active"`
	StartDate      string       `json:"start_date"`
	EndDate        string       `json:"end_date"`
}

func (req RewardRequest) toInput() (service.RewardInput, error) {
	startDate, err := parseTimeNullable(req.StartDate)
	if err != nil {
		return service.RewardInput{}, err
	}
	endDate, err := parseTimeNullable(req.EndDate)
	if err != nil {
		return service.RewardInput{}, err
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	return service.RewardInput{
		Name:           req.Name,
		Description:    req.Description,
		ImageURL:       req.ImageURL,
		PointsRequired: req.PointsRequired,
		CashRequired:   req.CashRequired,
		Category:       req.Category,
		Stock:          req.Stock,
		IsActive:       isActive,
		StartDate:      startDate,
		EndDate:        endDate,
	}, nil
}

// ListRewards 奖励列表
func (h *Handler) ListRewards(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	filter := repository.RewardListFilter{
		Page:     page,
		PageSize: pageSize,
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}
	switch c.Query("is_active") {
	case "true", "1":
		active := true
		filter.IsActive = &active
	case "false", "0":
		active := false
		filter.IsActive = &active
	}
	rewards, total, err := h.RewardService.List(filter)
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}
	response.SuccessWithPage(c, rewards, response.BuildPagination(page, pageSize, total))
}

// GetReward 奖励详情
func (h *Handler) GetReward(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	reward, err := h.RewardService.Get(id)
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}
	response.Success(c, reward)
}

// CreateReward 创建奖励
func (h *Handler) CreateReward(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req RewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	reward, err := h.RewardService.Create(c.Request.Context(), adminID, input)
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}
	response.Created(c, reward)
}

// UpdateReward 更新奖励
func (h *Handler) UpdateReward(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req RewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	reward, err := h.RewardService.Update(c.Request.Context(), id, input)
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}
	response.Success(c, reward)
}
