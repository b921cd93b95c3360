package repository

import (
	"strings"
	"time"

	"github.com/piezasya/loyalty/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RewardRepository 奖励目录数据访问接口
type RewardRepository interface {
	GetByID(id uint) (*models.Reward, error)
	GetByIDForUpdate(id uint) (*models.Reward, error)
	SlugExists(slug string, excludeID uint) (bool, error)
	Create(reward *models.Reward) error
	Update(reward *models.Reward) error
	List(filter RewardListFilter) ([]models.Reward, int64, error)
	DecrementStock(id uint) (bool, error)
	IncrementStock(id uint) error
	DeactivateExpired(now time.Time) (int64, error)
	WithTx(tx *gorm.DB) *GormRewardRepository
}

// GormRewardRepository GORM 实现
type GormRewardRepository struct {
	db *gorm.DB
}

// NewRewardRepository 创建奖励仓库
func NewRewardRepository(db *gorm.DB) *GormRewardRepository {
	return &GormRewardRepository{db: db}
}

// WithTx 绑定事务
func (r *GormRewardRepository) WithTx(tx *gorm.DB) *GormRewardRepository {
	if tx == nil {
		return r
	}
	return &GormRewardRepository{db: tx}
}

// GetByID 根据 ID 获取奖励
func (r *GormRewardRepository) GetByID(id uint) (*models.Reward, error) {
	if id == 0 {
		return nil, nil
	}
	return firstOrNil[models.Reward](r.db, id)
}

// GetByIDForUpdate 加锁获取奖励
func (r *GormRewardRepository) GetByIDForUpdate(id uint) (*models.Reward, error) {
	if id == 0 {
		return nil, nil
	}
	return firstOrNil[models.Reward](r.db.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

// SlugExists 判断 slug 是否已被其他奖励占用
func (r *GormRewardRepository) SlugExists(slug string, excludeID uint) (bool, error) {
	query := r.db.Unscoped().Model(&models.Reward{}).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create 创建奖励
func (r *GormRewardRepository) Create(reward *models.Reward) error {
	return r.db.Create(reward).Error
}

// Update 更新奖励
func (r *GormRewardRepository) Update(reward *models.Reward) error {
	return r.db.Save(reward).Error
}

// List 奖励列表
func (r *GormRewardRepository) List(filter RewardListFilter) ([]models.Reward, int64, error) {
	query := r.db.Model(&models.Reward{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		condition, argCount := buildLikeCondition(r.db, []string{"name", "slug", "description"})
		query = query.Where(condition, repeatLikeArgs(escapeLike(search), argCount)...)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.OnlyValid {
		at := filter.At
		if at.IsZero() {
			at = time.Now()
		}
		query = query.Where("is_active = ? AND stock > 0", true).
			Where("start_date IS NULL OR start_date <= ?", at).
			Where("end_date IS NULL OR end_date >= ?", at)
	}
	return findPage[models.Reward](query, filter.Page, filter.PageSize, "points_required ASC, id ASC")
}

// DecrementStock 条件扣减库存，库存为 0 时返回 false
func (r *GormRewardRepository) DecrementStock(id uint) (bool, error) {
	result := r.db.Model(&models.Reward{}).
		Where("id = ? AND stock > 0", id).
		UpdateColumn("stock", gorm.Expr("stock - 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// IncrementStock 回补库存
func (r *GormRewardRepository) IncrementStock(id uint) error {
	return r.db.Model(&models.Reward{}).Where("id = ?", id).UpdateColumn("stock", gorm.Expr("stock + 1")).Error
}

// DeactivateExpired 下架已过截止时间的奖励
func (r *GormRewardRepository) DeactivateExpired(now time.Time) (int64, error) {
	result := r.db.Model(&models.Reward{}).
		Where("is_active = ? AND end_date IS NOT NULL AND end_date < ?", true, now).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}
