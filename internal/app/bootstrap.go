package app

import (
	"errors"
	"time"

	"github.com/piezasya/loyalty/internal/config"
	"github.com/piezasya/loyalty/internal/logger"
	"github.com/piezasya/loyalty/internal/provider"
	"github.com/piezasya/loyalty/internal/router"
	"github.com/piezasya/loyalty/internal/worker"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, container *provider.Container, mode Mode) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if container == nil {
		return nil, errors.New("container is nil")
	}

	var services []Service

	// 初始化 HTTP 服务
	if mode.servesHTTP() {
		engine := router.SetupRouter(cfg, container)
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		services = append(services, NewHTTPService(addr, engine))
	}

	// 初始化 Worker 服务：队列消费 + 周期任务
	if mode.runsBackground() {
		if cfg.Queue.Enabled {
			workerService, err := worker.NewService(&cfg.Queue, worker.NewConsumer(container))
			if err != nil {
				return nil, err
			}
			services = append(services, workerService)
		} else if mode == ModeWorker {
			return nil, errors.New("worker mode requires queue.enabled")
		} else {
			logger.Warnw("app_queue_disabled", "mode", string(mode))
		}

		interval := time.Duration(cfg.Loyalty.RewardSweepIntervalSeconds) * time.Second
		scheduler, err := worker.NewScheduler(container.RewardService, interval)
		if err != nil {
			return nil, err
		}
		services = append(services, scheduler)
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}

	return NewRunner(services...), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	if opts.Config == nil {
		return errors.New("config is nil")
	}
	mode, err := ParseMode(string(opts.Mode))
	if err != nil {
		return err
	}
	opts.Mode = mode
	opts = normalizeOptions(opts)

	container := provider.NewContainer(opts.Config)
	defer container.Close()

	runner, err := BuildRunner(opts.Config, container, opts.Mode)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", string(opts.Mode), "shutdown_timeout", opts.ShutdownTimeout.String())
	return RunWithOptions(runner, opts)
}
