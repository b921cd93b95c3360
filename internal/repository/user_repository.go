package repository

import (
	"strings"
	"time"

	"github.com/piezasya/loyalty/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository 用户积分数据访问接口
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
	GetByIDForUpdate(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByReferralCode(code string) (*models.User, error)
	ReferralCodeExists(code string) (bool, error)
	ListByIDs(ids []uint) ([]models.User, error)
	List(filter UserListFilter) ([]models.User, int64, error)
	Create(user *models.User) error
	AddPoints(id uint, delta int) (bool, error)
	UpdateLevel(id uint, level string) error
	AssignReferralCode(id uint, code string) (bool, error)
	SetReferredBy(id uint, referrerID uint) (bool, error)
	AddPurchase(id uint, amount models.Money) error
	UpdateStatus(id uint, status string, invalidBefore time.Time) (bool, error)
	CountReferredBy(referrerID uint) (int64, error)
	WithTx(tx *gorm.DB) *GormUserRepository
	Transaction(fn func(tx *gorm.DB) error) error
}

// GormUserRepository GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// WithTx 绑定事务
func (r *GormUserRepository) WithTx(tx *gorm.DB) *GormUserRepository {
	if tx == nil {
		return r
	}
	return &GormUserRepository{db: tx}
}

// Transaction 在事务中执行
func (r *GormUserRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// GetByID 根据 ID 获取用户
func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	if id == 0 {
		return nil, nil
	}
	return firstOrNil[models.User](r.db, id)
}

// GetByIDForUpdate 加锁获取用户（sqlite 下退化为普通查询）
func (r *GormUserRepository) GetByIDForUpdate(id uint) (*models.User, error) {
	if id == 0 {
		return nil, nil
	}
	return firstOrNil[models.User](r.db.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

// GetByEmail 根据邮箱获取用户
func (r *GormUserRepository) GetByEmail(email string) (*models.User, error) {
	return firstOrNil[models.User](r.db.Where("email = ?", strings.TrimSpace(email)))
}

// GetByReferralCode 根据推荐码获取用户
func (r *GormUserRepository) GetByReferralCode(code string) (*models.User, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, nil
	}
	return firstOrNil[models.User](r.db.Where("referral_code = ?", code))
}

// ReferralCodeExists 推荐码是否已被占用
func (r *GormUserRepository) ReferralCodeExists(code string) (bool, error) {
	var count int64
	if err := r.db.Unscoped().Model(&models.User{}).Where("referral_code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByIDs 批量获取用户
func (r *GormUserRepository) ListByIDs(ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	var users []models.User
	if err := r.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// List 用户列表
func (r *GormUserRepository) List(filter UserListFilter) ([]models.User, int64, error) {
	query := r.db.Model(&models.User{})
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		condition, argCount := buildLikeCondition(r.db, []string{"email", "display_name"})
		args := append(repeatLikeArgs(escapeLike(keyword), argCount), strings.ToUpper(keyword))
		query = query.Where("("+condition+") OR referral_code = ?", args...)
	}
	if filter.LoyaltyLevel != "" {
		query = query.Where("loyalty_level = ?", filter.LoyaltyLevel)
	}
	if filter.ReferredBy != 0 {
		query = query.Where("referred_by = ?", filter.ReferredBy)
	}
	return findPage[models.User](query, filter.Page, filter.PageSize, "id DESC")
}

// Create 创建用户
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// AddPoints 原子增减积分，余额不足时不更新并返回 false
func (r *GormUserRepository) AddPoints(id uint, delta int) (bool, error) {
	result := r.db.Model(&models.User{}).
		Where("id = ? AND points + ? >= 0", id, delta).
		UpdateColumn("points", gorm.Expr("points + ?", delta))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// UpdateLevel 更新会员等级
func (r *GormUserRepository) UpdateLevel(id uint, level string) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).UpdateColumn("loyalty_level", level).Error
}

// AssignReferralCode 仅在用户尚无推荐码时写入
func (r *GormUserRepository) AssignReferralCode(id uint, code string) (bool, error) {
	result := r.db.Model(&models.User{}).
		Where("id = ? AND referral_code IS NULL", id).
		UpdateColumn("referral_code", code)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// SetReferredBy 仅在用户尚未绑定推荐人时写入
func (r *GormUserRepository) SetReferredBy(id uint, referrerID uint) (bool, error) {
	result := r.db.Model(&models.User{}).
		Where("id = ? AND referred_by IS NULL", id).
		UpdateColumn("referred_by", referrerID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// AddPurchase 累计消费金额与购买次数
func (r *GormUserRepository) AddPurchase(id uint, amount models.Money) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).UpdateColumns(map[string]interface{}{
		"total_spent":     gorm.Expr("total_spent + ?", amount.String()),
		"total_purchases": gorm.Expr("total_purchases + 1"),
	}).Error
}

// CountReferredBy 统计某推荐人带来的用户数
func (r *GormUserRepository) CountReferredBy(referrerID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.User{}).Where("referred_by = ?", referrerID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// UpdateStatus 更新用户状态并使已签发的 Token 失效
func (r *GormUserRepository) UpdateStatus(id uint, status string, invalidBefore time.Time) (bool, error) {
	result := r.db.Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":               status,
		"token_version":        gorm.Expr("token_version + 1"),
		"token_invalid_before": invalidBefore,
	})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
