package models

import "time"

// LoyaltyPurchase 已计入积分的订单（以订单号保证幂等）
type LoyaltyPurchase struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                   // 主键
	OrderRef  string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"order_ref"` // 商城订单号
	UserID    uint      `gorm:"not null;index" json:"user_id"`                          // 用户ID
	Amount    Money     `gorm:"type:decimal(20,2);not null" json:"amount"`              // 订单金额
	Points    int       `gorm:"not null;default:0" json:"points"`                       // 发放积分
	CreatedAt time.Time `gorm:"index" json:"created_at"`                                // 创建时间
}

// TableName 指定表名
func (LoyaltyPurchase) TableName() string {
	return "loyalty_purchases"
}
