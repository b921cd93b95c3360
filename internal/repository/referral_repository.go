package repository

import (
	"time"

	"github.com/piezasya/loyalty/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReferralRepository 推荐追踪与推荐奖励数据访问接口
type ReferralRepository interface {
	GetTrackingByCode(code string) (*models.ReferralTracking, error)
	GetTrackingByCodeForUpdate(code string) (*models.ReferralTracking, error)
	GetTrackingByReferrer(referrerID uint) (*models.ReferralTracking, error)
	CreateTracking(tracking *models.ReferralTracking) error
	UpdateTracking(tracking *models.ReferralTracking) error
	IncrementClicks(code string) (bool, error)
	RecordRegistration(code string, referrerPoints int) error
	AddPointsSpent(referrerID uint, points int) error
	GetBonusByNewUser(newUserID uint) (*models.ReferralBonus, error)
	CreateBonus(bonus *models.ReferralBonus) error
	WithTx(tx *gorm.DB) *GormReferralRepository
	Transaction(fn func(tx *gorm.DB) error) error
}

// GormReferralRepository GORM 实现
type GormReferralRepository struct {
	db *gorm.DB
}

// NewReferralRepository 创建推荐仓库
func NewReferralRepository(db *gorm.DB) *GormReferralRepository {
	return &GormReferralRepository{db: db}
}

// WithTx 绑定事务
func (r *GormReferralRepository) WithTx(tx *gorm.DB) *GormReferralRepository {
	if tx == nil {
		return r
	}
	return &GormReferralRepository{db: tx}
}

// Transaction 在事务中执行
func (r *GormReferralRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// GetTrackingByCode 根据推荐码获取追踪记录
func (r *GormReferralRepository) GetTrackingByCode(code string) (*models.ReferralTracking, error) {
	if code == "" {
		return nil, nil
	}
	return firstOrNil[models.ReferralTracking](r.db.Where("referral_code = ?", code))
}

// GetTrackingByCodeForUpdate 加锁获取追踪记录
func (r *GormReferralRepository) GetTrackingByCodeForUpdate(code string) (*models.ReferralTracking, error) {
	if code == "" {
		return nil, nil
	}
	return firstOrNil[models.ReferralTracking](r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("referral_code = ?", code))
}

// GetTrackingByReferrer 获取推荐人的追踪记录
func (r *GormReferralRepository) GetTrackingByReferrer(referrerID uint) (*models.ReferralTracking, error) {
	if referrerID == 0 {
		return nil, nil
	}
	return firstOrNil[models.ReferralTracking](r.db.Where("referrer_id = ?", referrerID).Order("id ASC"))
}

// CreateTracking 创建追踪记录
func (r *GormReferralRepository) CreateTracking(tracking *models.ReferralTracking) error {
	return r.db.Create(tracking).Error
}

// UpdateTracking 更新追踪记录
func (r *GormReferralRepository) UpdateTracking(tracking *models.ReferralTracking) error {
	return r.db.Save(tracking).Error
}

// IncrementClicks 原子累加点击数，记录不存在时返回 false
func (r *GormReferralRepository) IncrementClicks(code string) (bool, error) {
	result := r.db.Model(&models.ReferralTracking{}).
		Where("referral_code = ?", code).
		Updates(map[string]interface{}{
			"clicks":     gorm.Expr("clicks + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// RecordRegistration 累加注册数、成功推荐数与推荐人获得积分
func (r *GormReferralRepository) RecordRegistration(code string, referrerPoints int) error {
	return r.db.Model(&models.ReferralTracking{}).
		Where("referral_code = ?", code).
		Updates(map[string]interface{}{
			"registrations":            gorm.Expr("registrations + 1"),
			"successful_registrations": gorm.Expr("successful_registrations + 1"),
			"total_points_earned":      gorm.Expr("total_points_earned + ?", referrerPoints),
			"updated_at":               time.Now(),
		}).Error
}

// AddPointsSpent 累加推荐人名下用户的积分消耗
func (r *GormReferralRepository) AddPointsSpent(referrerID uint, points int) error {
	return r.db.Model(&models.ReferralTracking{}).
		Where("referrer_id = ?", referrerID).
		Updates(map[string]interface{}{
			"total_points_spent": gorm.Expr("total_points_spent + ?", points),
			"updated_at":         time.Now(),
		}).Error
}

// GetBonusByNewUser 获取新用户的推荐奖励记录
func (r *GormReferralRepository) GetBonusByNewUser(newUserID uint) (*models.ReferralBonus, error) {
	return firstOrNil[models.ReferralBonus](r.db.Where("new_user_id = ?", newUserID))
}

// CreateBonus 写入推荐奖励记录（new_user_id 唯一）
func (r *GormReferralRepository) CreateBonus(bonus *models.ReferralBonus) error {
	return r.db.Create(bonus).Error
}
