package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/piezasya/loyalty/internal/config"
	"github.com/piezasya/loyalty/internal/logger"

	"go.uber.org/zap"
)

// Mode 进程启动模式
type Mode string

const (
	// ModeAll API 与后台任务同进程运行
	ModeAll Mode = "all"
	// ModeAPI 只提供 HTTP 接口
	ModeAPI Mode = "api"
	// ModeWorker 只消费积分任务并执行奖励巡检
	ModeWorker Mode = "worker"
)

const defaultShutdownTimeout = 10 * time.Second

// ParseMode 解析启动模式，空值视为 all
func ParseMode(raw string) (Mode, error) {
	mode := Mode(strings.ToLower(strings.TrimSpace(raw)))
	switch mode {
	case "":
		return ModeAll, nil
	case ModeAll, ModeAPI, ModeWorker:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want all, api or worker)", raw)
	}
}

func (m Mode) servesHTTP() bool {
	return m == ModeAll || m == ModeAPI
}

func (m Mode) runsBackground() bool {
	return m == ModeAll || m == ModeWorker
}

// Options 启动选项
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            Mode
}

// normalizeOptions 停机等待时间至少覆盖队列配置的任务收尾时间
func normalizeOptions(opts Options) Options {
	if opts.Logger == nil {
		opts.Logger = logger.S()
	}
	if opts.Mode == "" {
		opts.Mode = ModeAll
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
		if opts.Config != nil && opts.Mode.runsBackground() {
			queueWait := time.Duration(opts.Config.Queue.ShutdownTimeoutSeconds)*time.Second + 2*time.Second
			if queueWait > opts.ShutdownTimeout {
				opts.ShutdownTimeout = queueWait
			}
		}
	}
	return opts
}
