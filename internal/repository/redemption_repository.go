package repository

import (

	"github.com/piezasya/loyalty/internal/constants"
	"github.com/piezasya/loyalty/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RedemptionRepository 兑换单数据访问接口
type RedemptionRepository interface {
	Create(redemption *models.RewardRedemption) error
	GetByID(id uint) (*models.RewardRedemption, error)
	GetByIDForUpdate(id uint) (*models.RewardRedemption, error)
	Update(redemption *models.RewardRedemption) error
	List(filter RedemptionListFilter) ([]models.RewardRedemption, int64, error)
	SummaryByUser(userID uint) (RedemptionSummary, error)
	WithTx(tx *gorm.DB) *GormRedemptionRepository
}

// GormRedemptionRepository GORM 实现
type GormRedemptionRepository struct {
	db *gorm.DB
}

// NewRedemptionRepository 创建兑换单仓库
func NewRedemptionRepository(db *gorm.DB) *GormRedemptionRepository {
	return &GormRedemptionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormRedemptionRepository) WithTx(tx *gorm.DB) *GormRedemptionRepository {
	if tx == nil {
		return r
	}
	return &GormRedemptionRepository{db: tx}
}

// Create 创建兑换单
func (r *GormRedemptionRepository) Create(redemption *models.RewardRedemption) error {
	return r.db.Omit(clause.Associations).Create(redemption).Error
}

// GetByID 根据 ID 获取兑换单
func (r *GormRedemptionRepository) GetByID(id uint) (*models.RewardRedemption, error) {
	if id == 0 {
		return nil, nil
	}
	return firstOrNil[models.RewardRedemption](r.db.Preload("Reward"), id)
}

// GetByIDForUpdate 加锁获取兑换单
func (r *GormRedemptionRepository) GetByIDForUpdate(id uint) (*models.RewardRedemption, error) {
	if id == 0 {
		return nil, nil
	}
	return firstOrNil[models.RewardRedemption](r.db.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

// Update 更新兑换单
func (r *GormRedemptionRepository) Update(redemption *models.RewardRedemption) error {
	return r.db.Omit(clause.Associations).Save(redemption).Error
}

// List 兑换单列表
func (r *GormRedemptionRepository) List(filter RedemptionListFilter) ([]models.RewardRedemption, int64, error) {
	query := r.db.Model(&models.RewardRedemption{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.RewardID != 0 {
		query = query.Where("reward_id = ?", filter.RewardID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.RedemptionNo != "" {
		query = query.Where("redemption_no = ?", filter.RedemptionNo)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}
	return findPage[models.RewardRedemption](query, filter.Page, filter.PageSize, "id DESC", preloadReward)
}

func preloadReward(db *gorm.DB) *gorm.DB {
	return db.Preload("Reward")
}

// SummaryByUser 统计用户兑换数量、消耗积分与待处理数量
func (r *GormRedemptionRepository) SummaryByUser(userID uint) (RedemptionSummary, error) {
	var row struct {
		Count        int64
		PointsSpent  int64
		PendingCount int64
	}
	err := r.db.Model(&models.RewardRedemption{}).
		Select(
			"COUNT(*) AS count, COALESCE(SUM(points_spent), 0) AS points_spent, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS pending_count",
			constants.RedemptionStatusPending,
		).
		Where("user_id = ? AND status <> ?", userID, constants.RedemptionStatusRejected).
		Scan(&row).Error
	if err != nil {
		return RedemptionSummary{}, err
	}
	return RedemptionSummary{
		Count:        row.Count,
		PointsSpent:  row.PointsSpent,
		PendingCount: row.PendingCount,
	}, nil
}
