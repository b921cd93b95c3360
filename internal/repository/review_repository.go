package repository

import (
	"time"

	"github.com/piezasya/loyalty/internal/models"

	"gorm.io/gorm"
)

// ReviewRepository 评价数据访问接口
type ReviewRepository interface {
	Create(review *models.Review) error
	GetByID(id uint) (*models.Review, error)
	List(filter ReviewListFilter) ([]models.Review, int64, error)
	SummaryByUser(userID uint) (ReviewSummary, error)
	CreateReport(report *models.ReviewReport) error
	ReportExists(reviewID, reporterID uint) (bool, error)
	IncrementReportCount(reviewID uint) error
	SaveReply(reviewID, adminID uint, reply string, at time.Time) error
	WithTx(tx *gorm.DB) *GormReviewRepository
	Transaction(fn func(tx *gorm.DB) error) error
}

// GormReviewRepository GORM 实现
type GormReviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository 创建评价仓库
func NewReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// WithTx 绑定事务
func (r *GormReviewRepository) WithTx(tx *gorm.DB) *GormReviewRepository {
	if tx == nil {
		return r
	}
	return &GormReviewRepository{db: tx}
}

// Transaction 在事务中执行
func (r *GormReviewRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// Create 创建评价
func (r *GormReviewRepository) Create(review *models.Review) error {
	return r.db.Create(review).Error
}

// GetByID 根据 ID 获取评价
func (r *GormReviewRepository) GetByID(id uint) (*models.Review, error) {
	if id == 0 {
		return nil, nil
	}
	return firstOrNil[models.Review](r.db, id)
}

// List 评价列表
func (r *GormReviewRepository) List(filter ReviewListFilter) ([]models.Review, int64, error) {
	query := r.db.Model(&models.Review{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	return findPage[models.Review](query, filter.Page, filter.PageSize, "id DESC")
}

// SummaryByUser 统计用户评价数量、平均评分与获得积分
func (r *GormReviewRepository) SummaryByUser(userID uint) (ReviewSummary, error) {
	var row struct {
		Count         int64
		AverageRating float64
		PointsEarned  int64
	}
	err := r.db.Model(&models.Review{}).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS average_rating, COALESCE(SUM(points_earned), 0) AS points_earned").
		Where("user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return ReviewSummary{}, err
	}
	return ReviewSummary{
		Count:         row.Count,
		AverageRating: row.AverageRating,
		PointsEarned:  row.PointsEarned,
	}, nil
}

// CreateReport 创建举报记录
func (r *GormReviewRepository) CreateReport(report *models.ReviewReport) error {
	return r.db.Create(report).Error
}

// ReportExists 用户是否已举报该评价
func (r *GormReviewRepository) ReportExists(reviewID, reporterID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.ReviewReport{}).
		Where("review_id = ? AND reporter_id = ?", reviewID, reporterID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// IncrementReportCount 举报计数 +1
func (r *GormReviewRepository) IncrementReportCount(reviewID uint) error {
	return r.db.Model(&models.Review{}).Where("id = ?", reviewID).
		UpdateColumn("report_count", gorm.Expr("report_count + 1")).Error
}

// SaveReply 保存管理员回复
func (r *GormReviewRepository) SaveReply(reviewID, adminID uint, reply string, at time.Time) error {
	return r.db.Model(&models.Review{}).Where("id = ?", reviewID).Updates(map[string]interface{}{
		"reply":      reply,
		"replied_by": adminID,
		"replied_at": at,
		"updated_at": at,
	}).Error
}
