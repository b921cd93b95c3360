package queue

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/piezasya/loyalty/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskReferralRegistered 被推荐用户注册成功任务
	TaskReferralRegistered = constants.TaskReferralRegistered
	// TaskOrderCompleted 订单完成任务
	TaskOrderCompleted = constants.TaskOrderCompleted
	// TaskStatsRefresh 会员统计刷新任务
	TaskStatsRefresh = constants.TaskLoyaltyStatsRefresh
)

// ReferralRegisteredPayload 推荐注册任务载荷
type ReferralRegisteredPayload struct {
	ReferralCode string `json:"referral_code"`
	NewUserID    uint   `json:"new_user_id"`
}

// OrderCompletedPayload 订单完成任务载荷，金额为十进制字符串
type OrderCompletedPayload struct {
	UserID   uint   `json:"user_id"`
	OrderRef string `json:"order_ref"`
	Amount   string `json:"amount"`
}

// StatsRefreshPayload 统计刷新任务载荷
type StatsRefreshPayload struct {
	UserIDs []uint `json:"user_ids"`
}

// NewReferralRegisteredTask 创建推荐注册任务
func NewReferralRegisteredTask(payload ReferralRegisteredPayload) (*asynq.Task, error) {
	if strings.TrimSpace(payload.ReferralCode) == "" || payload.NewUserID == 0 {
		return nil, fmt.Errorf("invalid referral registered payload")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReferralRegistered, body), nil
}

// NewOrderCompletedTask 创建订单完成任务
func NewOrderCompletedTask(payload OrderCompletedPayload) (*asynq.Task, error) {
	if payload.UserID == 0 || strings.TrimSpace(payload.OrderRef) == "" {
		return nil, fmt.Errorf("invalid order completed payload")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderCompleted, body), nil
}

// NewStatsRefreshTask 创建统计刷新任务
func NewStatsRefreshTask(payload StatsRefreshPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStatsRefresh, body), nil
}
