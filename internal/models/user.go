package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户表（账号由商城认证服务维护，本服务维护积分相关字段）
type User struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                                            // 主键
	Email              string         `gorm:"uniqueIndex;not null" json:"email"`                               // 邮箱
	DisplayName        string         `gorm:"default:''" json:"display_name"`                                  // 昵称
	Locale             string         `gorm:"default:'es-ES'" json:"locale"`                                   // 语言偏好
	Status             string         `gorm:"default:'active'" json:"status"`                                  // 账号状态
	TokenVersion       uint64         `gorm:"not null;default:0" json:"-"`                                     // Token 版本（用于全量失效）
	TokenInvalidBefore *time.Time     `gorm:"index" json:"-"`                                                  // 该时间点前签发的 Token 失效
	Points             int            `gorm:"not null;default:0" json:"points"`                                // 积分余额（不小于 0）
	LoyaltyLevel       string         `gorm:"type:varchar(20);not null;default:'bronze'" json:"loyalty_level"` // 会员等级
	TotalSpent         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_spent"`        // 累计消费金额
	TotalPurchases     int            `gorm:"not null;default:0" json:"total_purchases"`                       // 累计购买次数
	ReferralCode       *string        `gorm:"type:varchar(16);uniqueIndex" json:"referral_code"`               // 推荐码（首次访问时生成）
	ReferredBy         *uint          `gorm:"index" json:"referred_by"`                                        // 推荐人用户ID
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                                         // 创建时间
	UpdatedAt          time.Time      `gorm:"index" json:"updated_at"`                                         // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                                                  // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// Name 展示名称，未设置昵称时使用邮箱
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}

// ReferralCodeValue 返回推荐码字符串（未生成时为空）
func (u User) ReferralCodeValue() string {
	if u.ReferralCode == nil {
		return ""
	}
	return *u.ReferralCode
}
