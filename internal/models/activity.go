package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/piezasya/loyalty/internal/constants"
)

// ErrUnknownActivityType 未注册的活动类型
var ErrUnknownActivityType = errors.New("unknown activity type")

// Activity 积分活动流水（只追加）
type Activity struct {
	ID          uint      `gorm:"primarykey" json:"id"`                        // 主键
	UserID      uint      `gorm:"not null;index" json:"user_id"`               // 用户ID
	Type        string    `gorm:"type:varchar(32);not null;index" json:"type"` // 活动类型
	Description string    `gorm:"type:varchar(255)" json:"description"`        // 描述
	Points      int       `gorm:"not null;default:0" json:"points"`            // 积分变动
	Metadata    JSON      `gorm:"type:json" json:"metadata"`                   // 类型化载荷
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                     // 创建时间
}

// TableName 指定表名
func (Activity) TableName() string {
	return "loyalty_activities"
}

// ActivityPayload 活动载荷，每种活动类型对应一个结构体
type ActivityPayload interface {
	ActivityType() string
}

// PointsAdjustedPayload 管理员手动调整积分
type PointsAdjustedPayload struct {
	AdminID uint   `json:"admin_id"`
	Remark  string `json:"remark"`
}

// ReviewRewardPayload 评价奖励
type ReviewRewardPayload struct {
	ReviewID uint   `json:"review_id"`
	Rating   int    `json:"rating"`
	Category string `json:"category"`
}

// RewardRedeemedPayload 兑换奖励
type RewardRedeemedPayload struct {
	RedemptionID uint   `json:"redemption_id"`
	RedemptionNo string `json:"redemption_no"`
	RewardID     uint   `json:"reward_id"`
	RewardName   string `json:"reward_name"`
}

// RedemptionRefundedPayload 兑换驳回退还积分
type RedemptionRefundedPayload struct {
	RedemptionID uint   `json:"redemption_id"`
	RedemptionNo string `json:"redemption_no"`
	RewardID     uint   `json:"reward_id"`
	AdminID      uint   `json:"admin_id"`
}

// ReferralBonusPayload 推荐人奖励
type ReferralBonusPayload struct {
	NewUserID    uint   `json:"new_user_id"`
	ReferralCode string `json:"referral_code"`
}

// ReferralWelcomePayload 被推荐新用户奖励
type ReferralWelcomePayload struct {
	ReferrerID   uint   `json:"referrer_id"`
	ReferralCode string `json:"referral_code"`
}

// PurchaseRewardPayload 消费奖励
type PurchaseRewardPayload struct {
	OrderRef string `json:"order_ref"`
	Amount   Money  `json:"amount"`
}

func (PointsAdjustedPayload) ActivityType() string { return constants.ActivityTypePointsAdjusted }
func (ReviewRewardPayload) ActivityType() string { return constants.ActivityTypeReviewReward }
func (RewardRedeemedPayload) ActivityType() string { return constants.ActivityTypeRewardRedeemed }
func (RedemptionRefundedPayload) ActivityType() string {
	return constants.ActivityTypeRedemptionRefunded
}
func (ReferralBonusPayload) ActivityType() string { return constants.ActivityTypeReferralBonus }
func (ReferralWelcomePayload) ActivityType() string { return constants.ActivityTypeReferralWelcome }
func (PurchaseRewardPayload) ActivityType() string { return constants.ActivityTypePurchaseReward }

// EncodeActivityPayload 将载荷编码为活动类型与 JSON 元数据
func EncodeActivityPayload(payload ActivityPayload) (string, JSON, error) {
	if payload == nil {
		return "", nil, ErrUnknownActivityType
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", nil, fmt.Errorf("encode activity payload: %w", err)
	}
	meta := JSON{}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return "", nil, fmt.Errorf("encode activity payload: %w", err)
	}
	return payload.ActivityType(), meta, nil
}

// DecodeActivityPayload 按活动类型还原载荷
func DecodeActivityPayload(activityType string, meta JSON) (ActivityPayload, error) {
	var target ActivityPayload
	switch activityType {
	case constants.ActivityTypePointsAdjusted:
		target = &PointsAdjustedPayload{}
	case constants.ActivityTypeReviewReward:
		target = &ReviewRewardPayload{}
	case constants.ActivityTypeRewardRedeemed:
		target = &RewardRedeemedPayload{}
	case constants.ActivityTypeRedemptionRefunded:
		target = &RedemptionRefundedPayload{}
	case constants.ActivityTypeReferralBonus:
		target = &ReferralBonusPayload{}
	case constants.ActivityTypeReferralWelcome:
		target = &ReferralWelcomePayload{}
	case constants.ActivityTypePurchaseReward:
		target = &PurchaseRewardPayload{}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownActivityType, activityType)
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("decode activity payload: %w", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("decode activity payload: %w", err)
	}
	return target, nil
}

// Payload 解析当前活动的类型化载荷
func (a Activity) Payload() (ActivityPayload, error) {
	return DecodeActivityPayload(a.Type, a.Metadata)
}
