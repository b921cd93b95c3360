package repository

import (

	"github.com/piezasya/loyalty/internal/models"

	"gorm.io/gorm"
)

// PurchaseRepository 已计分订单数据访问接口
type PurchaseRepository interface {
	GetByOrderRef(orderRef string) (*models.LoyaltyPurchase, error)
	Create(purchase *models.LoyaltyPurchase) error
	WithTx(tx *gorm.DB) *GormPurchaseRepository
}

// GormPurchaseRepository GORM 实现
type GormPurchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository 创建已计分订单仓库
func NewPurchaseRepository(db *gorm.DB) *GormPurchaseRepository {
	return &GormPurchaseRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPurchaseRepository) WithTx(tx *gorm.DB) *GormPurchaseRepository {
	if tx == nil {
		return r
	}
	return &GormPurchaseRepository{db: tx}
}

// GetByOrderRef 根据订单号获取记录
func (r *GormPurchaseRepository) GetByOrderRef(orderRef string) (*models.LoyaltyPurchase, error) {
	return firstOrNil[models.LoyaltyPurchase](r.db.Where("order_ref = ?", orderRef))
}

// Create 写入记录（order_ref 唯一）
func (r *GormPurchaseRepository) Create(purchase *models.LoyaltyPurchase) error {
	return r.db.Create(purchase).Error
}
