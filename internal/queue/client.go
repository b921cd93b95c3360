package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/piezasya/loyalty/internal/config"
	"github.com/piezasya/loyalty/internal/constants"
	"github.com/piezasya/loyalty/internal/logger"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 统计刷新等可延后任务
	DefaultQueue = constants.QueueDefault
	// CriticalQueue 积分发放相关的高优先级队列
	CriticalQueue = constants.QueueCritical

	defaultMaxRetry        = 8
	defaultConcurrency     = 10
	defaultShutdownTimeout = 10 * time.Second
	awardTaskRetention     = 24 * time.Hour
	statsRefreshUniqueTTL  = 30 * time.Second
)

// Client 积分任务投递客户端，队列未启用时投递为空操作
type Client struct {
	inner    *asynq.Client
	maxRetry int
}

// NewClient 创建投递客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{}, nil
	}
	return &Client{
		inner:    asynq.NewClient(redisOpt(cfg)),
		maxRetry: resolveMaxRetry(cfg),
	}, nil
}

// Enabled 是否真正投递到 Redis
func (c *Client) Enabled() bool {
	return c != nil && c.inner != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.inner.Close()
}

// EnqueueReferralRegistered 投递推荐注册奖励任务，同一新用户只入队一次
func (c *Client) EnqueueReferralRegistered(payload ReferralRegisteredPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewReferralRegisteredTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(task, c.awardOptions(fmt.Sprintf("referral:%d", payload.NewUserID), opts)...)
}

// EnqueueOrderCompleted 投递订单完成任务，同一订单号只入队一次
func (c *Client) EnqueueOrderCompleted(payload OrderCompletedPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewOrderCompletedTask(payload)
	if err != nil {
		return err
	}
	ref := strings.ToUpper(strings.TrimSpace(payload.OrderRef))
	return c.enqueue(task, c.awardOptions("order:"+ref, opts)...)
}

// EnqueueStatsRefresh 投递统计缓存刷新任务，短时间内相同载荷去重
func (c *Client) EnqueueStatsRefresh(payload StatsRefreshPayload, opts ...asynq.Option) error {
	if !c.Enabled() || len(payload.UserIDs) == 0 {
		return nil
	}
	task, err := NewStatsRefreshTask(payload)
	if err != nil {
		return err
	}
	options := append([]asynq.Option{
		asynq.Queue(DefaultQueue),
		asynq.MaxRetry(3),
		asynq.Unique(statsRefreshUniqueTTL),
	}, opts...)
	return c.enqueue(task, options...)
}

func (c *Client) awardOptions(taskID string, extra []asynq.Option) []asynq.Option {
	options := []asynq.Option{
		asynq.Queue(CriticalQueue),
		asynq.TaskID(taskID),
		asynq.MaxRetry(c.maxRetry),
		asynq.Retention(awardTaskRetention),
	}
	return append(options, extra...)
}

// enqueue 任务 ID 冲突或唯一键冲突视为已入队
func (c *Client) enqueue(task *asynq.Task, opts ...asynq.Option) error {
	info, err := c.inner.Enqueue(task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
		logger.Debugw("queue_task_duplicate", "task_type", task.Type())
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}
	logger.Debugw("queue_task_enqueued", "task_type", task.Type(), "task_id", info.ID, "queue", info.Queue)
	return nil
}

// BuildServerConfig 生成 worker 端配置，未配置权重时积分发放优先
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	concurrency := defaultConcurrency
	queues := map[string]int{CriticalQueue: 6, DefaultQueue: 3}
	shutdown := defaultShutdownTimeout
	if cfg != nil {
		if cfg.Concurrency > 0 {
			concurrency = cfg.Concurrency
		}
		if len(cfg.Queues) > 0 {
			queues = cfg.Queues
		}
		if cfg.ShutdownTimeoutSeconds > 0 {
			shutdown = time.Duration(cfg.ShutdownTimeoutSeconds) * time.Second
		}
	}
	return redisOpt(cfg), asynq.Config{
		Concurrency:     concurrency,
		Queues:          queues,
		ShutdownTimeout: shutdown,
		ErrorHandler:    asynq.ErrorHandlerFunc(logTaskFailure),
	}
}

func logTaskFailure(ctx context.Context, task *asynq.Task, err error) {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	fields := []interface{}{"task_type", task.Type(), "retried", retried, "max_retry", maxRetry, "error", err}
	if retried >= maxRetry {
		logger.Errorw("queue_task_exhausted", fields...)
		return
	}
	logger.Warnw("queue_task_failed", fields...)
}

func resolveMaxRetry(cfg *config.QueueConfig) int {
	if cfg != nil && cfg.MaxRetry > 0 {
		return cfg.MaxRetry
	}
	return defaultMaxRetry
}

func redisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	opt := asynq.RedisClientOpt{Addr: "127.0.0.1:6379"}
	if cfg == nil {
		return opt
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	opt.Addr = fmt.Sprintf("%s:%d", host, port)
	opt.Password = cfg.Password
	opt.DB = cfg.DB
	return opt
}
