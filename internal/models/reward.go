package models

import (
	"time"

	"gorm.io/gorm"
)

// Reward 积分奖励目录
type Reward struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                      // 主键
	Name           string         `gorm:"type:varchar(120);not null" json:"name"`                    // 奖励名称
	Slug           string         `gorm:"type:varchar(160);uniqueIndex;not null" json:"slug"`        // URL 标识
	Description    string         `gorm:"type:text" json:"description"`                              // 描述
	ImageURL       string         `gorm:"type:varchar(500)" json:"image_url"`                        // 图片地址
	PointsRequired int            `gorm:"not null;default:0" json:"points_required"`                 // 所需积分
	CashRequired   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"cash_required"` // 额外现金
	Category       string         `gorm:"type:varchar(20);not null;index" json:"category"`           // 奖励类别
	Stock          int            `gorm:"not null;default:0" json:"stock"`                           // 库存
	IsActive       bool           `gorm:"not null;index" json:"is_active"`                           // 是否上架
	StartDate      *time.Time     `gorm:"index" json:"start_date"`                                   // 生效时间
	EndDate        *time.Time     `gorm:"index" json:"end_date"`                                     // 截止时间
	CreatedBy      uint           `gorm:"index" json:"created_by"`                                   // 创建管理员ID
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt      time.Time      `json:"updated_at"`                                                // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间
}

// TableName 指定表名
func (Reward) TableName() string {
	return "rewards"
}

// NotStarted 是否尚未到生效时间
func (r Reward) NotStarted(now time.Time) bool {
	return r.StartDate != nil && now.Before(*r.StartDate)
}

// Expired 是否已过截止时间
func (r Reward) Expired(now time.Time) bool {
	return r.EndDate != nil && now.After(*r.EndDate)
}

// Available 是否可兑换（上架、有库存且处于有效期内）
func (r Reward) Available(now time.Time) bool {
	return r.IsActive && r.Stock > 0 && !r.NotStarted(now) && !r.Expired(now)
}
