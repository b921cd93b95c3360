package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/piezasya/loyalty/internal/logger"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB 全局连接，仅供 cmd 入口装配使用
var DB *gorm.DB

const defaultSlowQuery = 200 * time.Millisecond

// DBOptions 连接池与 SQL 日志配置，零值表示沿用驱动默认
type DBOptions struct {
	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetimeSeconds int
	ConnMaxIdleTimeSeconds int
	SlowQueryMs            int
	LogAllQueries          bool
}

// zapPrinter 把 gorm 日志转给 zap
type zapPrinter struct{}

func (zapPrinter) Printf(format string, args ...interface{}) {
	logger.SW("component", "gorm").Warnf(format, args...)
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite":
		return sqlite.Open(dsn), nil
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// newSQLLogger 默认只记录慢查询与错误，找不到记录不算错误
func newSQLLogger(opts DBOptions) gormlogger.Interface {
	slow := defaultSlowQuery
	if opts.SlowQueryMs > 0 {
		slow = time.Duration(opts.SlowQueryMs) * time.Millisecond
	}
	level := gormlogger.Warn
	if opts.LogAllQueries {
		level = gormlogger.Info
	}
	return gormlogger.New(zapPrinter{}, gormlogger.Config{
		SlowThreshold:             slow,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		ParameterizedQueries:      !opts.LogAllQueries,
	})
}

// InitDB 打开数据库、应用连接池并写入全局 DB
func InitDB(driver, dsn string, opts DBOptions) error {
	dialector, err := dialectorFor(driver, dsn)
	if err != nil {
		return err
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: newSQLLogger(opts)})
	if err != nil {
		return fmt.Errorf("open %s: %w", dialector.Name(), err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns >= 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetimeSeconds > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(opts.ConnMaxLifetimeSeconds) * time.Second)
	}
	if opts.ConnMaxIdleTimeSeconds > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(opts.ConnMaxIdleTimeSeconds) * time.Second)
	}
	DB = db
	logger.Infow("database_connected", "driver", dialector.Name())
	return nil
}
