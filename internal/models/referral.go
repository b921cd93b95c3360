package models

import "time"

// ReferralTracking 推荐分享追踪（每个推荐码一行）
type ReferralTracking struct {
	ID                      uint       `gorm:"primarykey" json:"id"`                                       // 主键
	ReferralCode            string     `gorm:"type:varchar(16);uniqueIndex;not null" json:"referral_code"` // 推荐码
	ReferrerID              uint       `gorm:"not null;index" json:"referrer_id"`                          // 推荐人ID
	Platform                string     `gorm:"type:varchar(20);not null;default:'other'" json:"platform"`  // 最近分享平台
	ShareURL                string     `gorm:"type:varchar(500)" json:"share_url"`                         // 分享链接
	ShareText               string     `gorm:"type:text" json:"share_text"`                                // 分享文案
	Shares                  int        `gorm:"not null;default:0" json:"shares"`                           // 分享次数
	Clicks                  int        `gorm:"not null;default:0" json:"clicks"`                           // 点击次数
	Registrations           int        `gorm:"not null;default:0" json:"registrations"`                    // 注册次数
	SuccessfulRegistrations int        `gorm:"not null;default:0" json:"successful_registrations"`         // 成功推荐次数
	TotalPointsEarned       int        `gorm:"not null;default:0" json:"total_points_earned"`              // 推荐人累计获得积分
	TotalPointsSpent        int        `gorm:"not null;default:0" json:"total_points_spent"`               // 被推荐用户累计消耗积分
	IsActive                bool       `gorm:"not null" json:"is_active"`                                  // 是否有效
	LastSharedAt            *time.Time `json:"last_shared_at,omitempty"`                                   // 最近分享时间
	CreatedAt               time.Time  `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt               time.Time  `json:"updated_at"`                                                 // 更新时间
}

// TableName 指定表名
func (ReferralTracking) TableName() string {
	return "referral_trackings"
}

// ReferralBonus 推荐奖励发放记录（以新用户ID保证幂等）
type ReferralBonus struct {
	ID             uint      `gorm:"primarykey" json:"id"`                          // 主键
	NewUserID      uint      `gorm:"not null;uniqueIndex" json:"new_user_id"`       // 新用户ID
	ReferrerID     uint      `gorm:"not null;index" json:"referrer_id"`             // 推荐人ID
	ReferralCode   string    `gorm:"type:varchar(16);not null" json:"referral_code"` // 使用的推荐码
	ReferrerPoints int       `gorm:"not null" json:"referrer_points"`               // 推荐人获得积分
	RefereePoints  int       `gorm:"not null" json:"referee_points"`                // 新用户获得积分
	CreatedAt      time.Time `gorm:"index" json:"created_at"`                       // 创建时间
}

// TableName 指定表名
func (ReferralBonus) TableName() string {
	return "referral_bonuses"
}
