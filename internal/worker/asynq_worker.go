package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/piezasya/loyalty/internal/logger"
	"github.com/piezasya/loyalty/internal/models"
	"github.com/piezasya/loyalty/internal/provider"
	"github.com/piezasya/loyalty/internal/queue"
	"github.com/piezasya/loyalty/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskReferralRegistered, c.handleReferralRegistered)
	mux.HandleFunc(queue.TaskOrderCompleted, c.handleOrderCompleted)
	mux.HandleFunc(queue.TaskStatsRefresh, c.handleStatsRefresh)
}

// handleReferralRegistered 被推荐用户注册成功后发放双方奖励
func (c *Consumer) handleReferralRegistered(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil || c.ReferralService == nil {
		logger.Debugw("worker_referral_registered_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.ReferralRegisteredPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_referral_registered_unmarshal_failed", "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	code := strings.TrimSpace(payload.ReferralCode)
	if code == "" || payload.NewUserID == 0 {
		logger.Debugw("worker_referral_registered_skip_invalid_payload", "referral_code", code, "new_user_id", payload.NewUserID)
		return nil
	}

	bonus, err := c.ReferralService.TrackSuccessfulReferral(ctx, code, payload.NewUserID)
	if err != nil {
		if isPermanentReferralError(err) {
			logger.Infow("worker_referral_registered_skipped",
				"referral_code", code,
				"new_user_id", payload.NewUserID,
				"reason", err.Error(),
			)
			return nil
		}
		logger.Warnw("worker_referral_registered_failed", "referral_code", code, "new_user_id", payload.NewUserID, "error", err)
		return err
	}
	logger.Infow("worker_referral_registered_done",
		"referral_code", code,
		"new_user_id", payload.NewUserID,
		"referrer_id", bonus.ReferrerID,
	)
	return nil
}

// handleOrderCompleted 订单完成后累计消费并发放购物积分
func (c *Consumer) handleOrderCompleted(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil || c.PointsService == nil {
		logger.Debugw("worker_order_completed_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderCompletedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_completed_unmarshal_failed", "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	amount, err := models.ParseMoney(payload.Amount)
	if err != nil {
		logger.Warnw("worker_order_completed_amount_invalid", "order_ref", payload.OrderRef, "amount", payload.Amount)
		return fmt.Errorf("invalid amount %q: %w", payload.Amount, asynq.SkipRetry)
	}

	purchase, created, err := c.PointsService.RecordPurchase(ctx, service.PurchaseInput{
		UserID:   payload.UserID,
		OrderRef: payload.OrderRef,
		Amount:   amount,
	})
	if err != nil {
		if errors.Is(err, service.ErrOrderRefRequired) ||
			errors.Is(err, service.ErrPurchaseAmountInvalid) ||
			errors.Is(err, service.ErrUserNotFound) {
			logger.Warnw("worker_order_completed_rejected", "order_ref", payload.OrderRef, "user_id", payload.UserID, "error", err)
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		logger.Warnw("worker_order_completed_failed", "order_ref", payload.OrderRef, "user_id", payload.UserID, "error", err)
		return err
	}
	logger.Infow("worker_order_completed_done",
		"order_ref", purchase.OrderRef,
		"user_id", purchase.UserID,
		"points", purchase.Points,
		"duplicate", !created,
	)
	return nil
}

// handleStatsRefresh 重建用户会员统计缓存
func (c *Consumer) handleStatsRefresh(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil || c.StatsService == nil {
		logger.Debugw("worker_stats_refresh_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.StatsRefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_stats_refresh_unmarshal_failed", "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	var firstErr error
	for _, userID := range uniqueUserIDs(payload.UserIDs) {
		if _, err := c.StatsService.RefreshLoyaltyStats(ctx, userID); err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				continue
			}
			logger.Warnw("worker_stats_refresh_failed", "user_id", userID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func isPermanentReferralError(err error) bool {
	return errors.Is(err, service.ErrReferralCodeNotFound) ||
		errors.Is(err, service.ErrReferralCodeRequired) ||
		errors.Is(err, service.ErrReferralSelf) ||
		errors.Is(err, service.ErrReferralAlreadyReferred) ||
		errors.Is(err, service.ErrReferralAlreadyProcessed) ||
		errors.Is(err, service.ErrUserNotFound)
}

func uniqueUserIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	result := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
