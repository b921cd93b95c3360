package worker

import (
	"context"
	"errors"
	"time"

	"github.com/piezasya/loyalty/internal/logger"

	"github.com/go-co-op/gocron"
)

const defaultRewardSweepInterval = 5 * time.Minute

// RewardSweeper 奖励过期下架能力
type RewardSweeper interface {
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

// Scheduler 周期任务服务（奖励有效期巡检）
type Scheduler struct {
	name      string
	interval  time.Duration
	sweeper   RewardSweeper
	scheduler *gocron.Scheduler
	now       func() time.Time
}

// NewScheduler 创建周期任务服务，interval 不大于 0 时使用默认间隔
func NewScheduler(sweeper RewardSweeper, interval time.Duration) (*Scheduler, error) {
	if sweeper == nil {
		return nil, errors.New("reward sweeper is nil")
	}
	if interval <= 0 {
		interval = defaultRewardSweepInterval
	}
	return &Scheduler{
		name:      "scheduler",
		interval:  interval,
		sweeper:   sweeper,
		scheduler: gocron.NewScheduler(time.UTC),
		now:       time.Now,
	}, nil
}

// Name 服务名称
func (s *Scheduler) Name() string {
	if s == nil || s.name == "" {
		return "scheduler"
	}
	return s.name
}

// Start 启动调度并阻塞到 ctx 结束
func (s *Scheduler) Start(ctx context.Context) error {
	if s == nil || s.scheduler == nil {
		return errors.New("scheduler not initialized")
	}
	if _, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.sweepRewards, ctx); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	logger.Infow("worker_scheduler_started", "reward_sweep_interval", s.interval.String())
	<-ctx.Done()
	return nil
}

// Stop 停止调度
func (s *Scheduler) Stop(ctx context.Context) error {
	if s == nil || s.scheduler == nil {
		return nil
	}
	s.scheduler.Stop()
	return nil
}

func (s *Scheduler) sweepRewards(ctx context.Context) {
	affected, err := s.sweeper.SweepExpired(ctx, s.now())
	if err != nil {
		logger.Warnw("worker_reward_sweep_failed", "error", err)
		return
	}
	if affected > 0 {
		logger.Infow("worker_reward_sweep_deactivated", "count", affected)
	}
}
