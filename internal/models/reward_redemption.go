package models

import "time"

// RewardRedemption 奖励兑换单
type RewardRedemption struct {
	ID              uint       `gorm:"primarykey" json:"id"`                                       // 主键
	RedemptionNo    string     `gorm:"type:varchar(40);uniqueIndex;not null" json:"redemption_no"` // 兑换单号
	UserID          uint       `gorm:"not null;index" json:"user_id"`                              // 用户ID
	RewardID        uint       `gorm:"not null;index" json:"reward_id"`                            // 奖励ID
	PointsSpent     int        `gorm:"not null" json:"points_spent"`                               // 消耗积分
	CashSpent       Money      `gorm:"type:decimal(20,2);not null;default:0" json:"cash_spent"`    // 额外现金
	Status          string     `gorm:"type:varchar(20);not null;index" json:"status"`              // 兑换状态
	ShippingAddress string     `gorm:"type:text" json:"shipping_address,omitempty"`                // 收货地址
	TrackingNumber  string     `gorm:"type:varchar(100)" json:"tracking_number,omitempty"`         // 物流单号
	AdminNote       string     `gorm:"type:varchar(500)" json:"admin_note,omitempty"`              // 管理员备注
	ProcessedBy     *uint      `json:"processed_by,omitempty"`                                     // 处理管理员ID
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`                                     // 处理时间
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt       time.Time  `json:"updated_at"`                                                 // 更新时间

	Reward *Reward `gorm:"foreignKey:RewardID" json:"reward,omitempty"` // 关联奖励
}

// TableName 指定表名
func (RewardRedemption) TableName() string {
	return "reward_redemptions"
}
