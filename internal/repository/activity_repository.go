package repository

import (
	"github.com/piezasya/loyalty/internal/models"

	"gorm.io/gorm"
)

// ActivityRepository 积分流水数据访问接口
type ActivityRepository interface {
	Create(activity *models.Activity) error
	List(filter ActivityListFilter) ([]models.Activity, int64, error)
	Recent(userID uint, limit int) ([]models.Activity, error)
	WithTx(tx *gorm.DB) *GormActivityRepository
}

// GormActivityRepository GORM 实现
type GormActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository 创建积分流水仓库
func NewActivityRepository(db *gorm.DB) *GormActivityRepository {
	return &GormActivityRepository{db: db}
}

// WithTx 绑定事务
func (r *GormActivityRepository) WithTx(tx *gorm.DB) *GormActivityRepository {
	if tx == nil {
		return r
	}
	return &GormActivityRepository{db: tx}
}

// Create 追加流水
func (r *GormActivityRepository) Create(activity *models.Activity) error {
	return r.db.Create(activity).Error
}

// List 流水列表
func (r *GormActivityRepository) List(filter ActivityListFilter) ([]models.Activity, int64, error) {
	query := r.db.Model(&models.Activity{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	return findPage[models.Activity](query, filter.Page, filter.PageSize, "id DESC")
}

// Recent 最近的流水
func (r *GormActivityRepository) Recent(userID uint, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = 10
	}
	var activities []models.Activity
	if err := r.db.Where("user_id = ?", userID).Order("id DESC").Limit(limit).Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}
