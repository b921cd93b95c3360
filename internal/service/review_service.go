package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/piezasya/loyalty/internal/logger"
	"github.com/piezasya/loyalty/internal/metrics"
	"github.com/piezasya/loyalty/internal/models"
	"github.com/piezasya/loyalty/internal/repository"

	"gorm.io/gorm"
)

// ReviewService 评价与评价奖励服务
type ReviewService struct {
	reviewRepo repository.ReviewRepository
	pointsSvc  *PointsService
	metrics    *metrics.Metrics
}

// ReviewInput 提交评价输入
type ReviewInput struct {
	ProductID string
	OrderID   string
	Rating    int
	Title     string
	Comment   string
	Category  string
}

// ReviewResult 提交评价结果
type ReviewResult struct {
	Review       *models.Review `json:"review"`
	PointsEarned int            `json:"points_earned"`
}

// NewReviewService 创建评价服务
func NewReviewService(reviewRepo repository.ReviewRepository, pointsSvc *PointsService, m *metrics.Metrics) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		pointsSvc:  pointsSvc,
		metrics:    m,
	}
}

// ProcessReview 创建已验证评价并按类别与星级发放积分
func (s *ReviewService) ProcessReview(ctx context.Context, principal Principal, input ReviewInput) (*ReviewResult, error) {
	if !principal.Valid() {
		return nil, ErrUserNotFound
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrReviewRatingInvalid
	}
	comment := strings.TrimSpace(input.Comment)
	if comment == "" {
		return nil, ErrReviewCommentRequired
	}
	category := strings.ToLower(strings.TrimSpace(input.Category))
	if !isReviewCategory(category) {
		return nil, ErrReviewCategoryInvalid
	}

	points := s.pointsSvc.Rules().ReviewPoints(input.Rating, category)
	review := &models.Review{
		UserID:       principal.UserID,
		ProductID:    strings.TrimSpace(input.ProductID),
		OrderID:      strings.TrimSpace(input.OrderID),
		Rating:       input.Rating,
		Title:        strings.TrimSpace(input.Title),
		Comment:      comment,
		Category:     category,
		PointsEarned: points,
		IsVerified:   true,
	}
	var change *PointsChange
	err := s.reviewRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.reviewRepo.WithTx(tx).Create(review); err != nil {
			return fmt.Errorf("create review: %w", err)
		}
		var err error
		change, err = s.pointsSvc.AddPointsTx(tx, AddPointsInput{
			UserID:      principal.UserID,
			Points:      points,
			Description: fmt.Sprintf("Review reward (%s, %d stars)", category, input.Rating),
			Payload: models.ReviewRewardPayload{
				ReviewID: review.ID,
				Rating:   input.Rating,
				Category: category,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.pointsSvc.recordMetrics(change.Activity)
	s.metrics.Review(category)
	s.pointsSvc.NotifyChanged(ctx, principal.UserID)
	logger.Infow("loyalty_review_rewarded", "user_id", principal.UserID, "review_id", review.ID, "points", points)
	return &ReviewResult{Review: review, PointsEarned: points}, nil
}

// ListUserReviews 查询当前用户的评价
func (s *ReviewService) ListUserReviews(principal Principal, page, pageSize int) ([]models.Review, int64, error) {
	if !principal.Valid() {
		return nil, 0, ErrUserNotFound
	}
	return s.reviewRepo.List(repository.ReviewListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   principal.UserID,
	})
}

// ListReviews 管理端查询评价
func (s *ReviewService) ListReviews(filter repository.ReviewListFilter) ([]models.Review, int64, error) {
	return s.reviewRepo.List(filter)
}

// ReportReview 举报评价，每个用户对同一评价仅可举报一次
func (s *ReviewService) ReportReview(principal Principal, reviewID uint, reason string) error {
	if !principal.Valid() {
		return ErrUserNotFound
	}
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		return err
	}
	if review == nil {
		return ErrReviewNotFound
	}
	if review.UserID == principal.UserID {
		return ErrReviewReportOwn
	}
	exists, err := s.reviewRepo.ReportExists(reviewID, principal.UserID)
	if err != nil {
		return err
	}
	if exists {
		return ErrReviewAlreadyReported
	}
	err = s.reviewRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.reviewRepo.WithTx(tx)
		if err := repo.CreateReport(&models.ReviewReport{
			ReviewID:   reviewID,
			ReporterID: principal.UserID,
			Reason:     strings.TrimSpace(reason),
		}); err != nil {
			return err
		}
		return repo.IncrementReportCount(reviewID)
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return ErrReviewAlreadyReported
		}
		return err
	}
	logger.Infow("loyalty_review_reported", "review_id", reviewID, "reporter_id", principal.UserID)
	return nil
}

// ReplyReview 管理员回复评价
func (s *ReviewService) ReplyReview(adminID, reviewID uint, reply string) (*models.Review, error) {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil, ErrReviewReplyRequired
	}
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, ErrReviewNotFound
	}
	now := time.Now()
	if err := s.reviewRepo.SaveReply(reviewID, adminID, reply, now); err != nil {
		return nil, err
	}
	review.Reply = reply
	review.RepliedBy = &adminID
	review.RepliedAt = &now
	return review, nil
}
