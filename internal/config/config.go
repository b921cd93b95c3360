package config

import (
	"fmt"
	"strings"

	"github.com/piezasya/loyalty/internal/logger"
	"github.com/piezasya/loyalty/internal/models"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	UserJWT  JWTConfig      `mapstructure:"user_jwt"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Security SecurityConfig `mapstructure:"security"`
	Captcha  CaptchaConfig  `mapstructure:"captcha"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Loyalty  LoyaltyConfig  `mapstructure:"loyalty"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Stdout     bool   `mapstructure:"stdout"`
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Level:      c.Level,
		Stdout:     c.Stdout,
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver      string             `mapstructure:"driver"`        // 数据库驱动（sqlite/postgres）
	DSN         string             `mapstructure:"dsn"`           // 数据库连接串
	Pool        DatabasePoolConfig `mapstructure:"pool"`
	SlowQueryMs int                `mapstructure:"slow_query_ms"` // 超过该耗时的 SQL 记 warn
	LogQueries  bool               `mapstructure:"log_queries"`   // 记录全部 SQL
}

// ToDBOptions 转换为 models 连接配置
func (c DatabaseConfig) ToDBOptions() models.DBOptions {
	return models.DBOptions{
		MaxOpenConns:           c.Pool.MaxOpenConns,
		MaxIdleConns:           c.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: c.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: c.Pool.ConnMaxIdleTimeSeconds,
		SlowQueryMs:            c.SlowQueryMs,
		LogAllQueries:          c.LogQueries,
	}
}

// JWTConfig JWT 配置
type JWTConfig struct {
	SecretKey   string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
	PoolSize int    `mapstructure:"pool_size"` // 0 表示使用 go-redis 默认值
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
	MaxRetry    int            `mapstructure:"max_retry"`
	// ShutdownTimeoutSeconds 停机时等待进行中任务的秒数
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	LoginRateLimit RateLimitConfig `mapstructure:"login_rate_limit"`
	ClickRateLimit RateLimitConfig `mapstructure:"click_rate_limit"`
}

// RateLimitConfig 固定窗口限流配置
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxRequests   int `mapstructure:"max_requests"`
	BlockSeconds  int `mapstructure:"block_seconds"`
}

// CaptchaConfig 验证码配置
type CaptchaConfig struct {
	Provider string             `mapstructure:"provider"`
	Scenes   CaptchaSceneConfig `mapstructure:"scenes"`
	Image    CaptchaImageConfig `mapstructure:"image"`
}

// CaptchaSceneConfig 验证码场景开关
type CaptchaSceneConfig struct {
	VerifyReferral bool `mapstructure:"verify_referral"`
	AdminLogin     bool `mapstructure:"admin_login"`
}

// CaptchaImageConfig 图片验证码配置
type CaptchaImageConfig struct {
	Length        int `mapstructure:"length"`
	Width         int `mapstructure:"width"`
	Height        int `mapstructure:"height"`
	NoiseCount    int `mapstructure:"noise_count"`
	ShowLine      int `mapstructure:"show_line"`
	ExpireSeconds int `mapstructure:"expire_seconds"`
	MaxStore      int `mapstructure:"max_store"`
}

// MetricsConfig 指标暴露配置
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoyaltyTierConfig 单个会员等级门槛
type LoyaltyTierConfig struct {
	Points int     `mapstructure:"points"`
	Spent  float64 `mapstructure:"spent"`
}

// LoyaltyTiersConfig 会员等级门槛表
type LoyaltyTiersConfig struct {
	Silver   LoyaltyTierConfig `mapstructure:"silver"`
	Gold     LoyaltyTierConfig `mapstructure:"gold"`
	Platinum LoyaltyTierConfig `mapstructure:"platinum"`
}

// LoyaltyConfig 积分与推荐计划配置
type LoyaltyConfig struct {
	Tiers                      LoyaltyTiersConfig `mapstructure:"tiers"`
	ReferrerBonusPoints        int                `mapstructure:"referrer_bonus_points"`
	RefereeBonusPoints         int                `mapstructure:"referee_bonus_points"`
	ReviewBasePoints           map[string]int     `mapstructure:"review_base_points"`
	ReviewDefaultBasePoints    int                `mapstructure:"review_default_base_points"`
	ReferralCodeMaxAttempts    int                `mapstructure:"referral_code_max_attempts"`
	PurchasePointsRate         float64            `mapstructure:"purchase_points_rate"`
	RewardSweepIntervalSeconds int                `mapstructure:"reward_sweep_interval_seconds"`
	StatsCacheTTLSeconds       int                `mapstructure:"stats_cache_ttl_seconds"`
	CatalogCacheTTLSeconds     int                `mapstructure:"catalog_cache_ttl_seconds"`
	CatalogLocalCacheSize      int                `mapstructure:"catalog_local_cache_size"`
	RecentActivityLimit        int                `mapstructure:"recent_activity_limit"`
}

// Load 从 .env 与 config.yml 加载配置
func Load() *Config {
	// 本地开发可通过 .env 注入环境变量，文件不存在时忽略
	if err := godotenv.Load(); err == nil {
		logger.Infow("dotenv_loaded", "file", ".env")
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")   // 如果从 cmd/server 运行
	viper.AddConfigPath("./etc") // etc 文件夹

	setDefaults(viper.GetViper())

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // server.port -> SERVER_PORT

	if err := viper.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", viper.ConfigFileUsed())
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}

	return &cfg
}

// Default 返回仅包含默认值的配置（用于测试与命令行工具）
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Errorf("默认配置解析失败: %w", err))
	}
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.level", "")
	v.SetDefault("log.stdout", false)
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "loyalty.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/loyalty.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	v.SetDefault("database.slow_query_ms", 200)
	v.SetDefault("database.log_queries", false)
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("user_jwt.secret", "user-change-me-in-production")
	v.SetDefault("user_jwt.expire_hours", 168)
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "pya")
	v.SetDefault("redis.pool_size", 0)
	v.SetDefault("queue.enabled", true)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 10)
	v.SetDefault("queue.max_retry", 8)
	v.SetDefault("queue.shutdown_timeout_seconds", 10)
	v.SetDefault("queue.queues", map[string]int{
		"default":  10,
		"critical": 5,
	})
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Accept-Language",
		"Authorization",
		"Cache-Control",
		"X-Requested-With",
		"X-Request-ID",
	})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("security.login_rate_limit.window_seconds", 300)
	v.SetDefault("security.login_rate_limit.max_requests", 5)
	v.SetDefault("security.login_rate_limit.block_seconds", 900)
	v.SetDefault("security.click_rate_limit.window_seconds", 60)
	v.SetDefault("security.click_rate_limit.max_requests", 30)
	v.SetDefault("security.click_rate_limit.block_seconds", 0)
	v.SetDefault("captcha.provider", "none")
	v.SetDefault("captcha.scenes.verify_referral", false)
	v.SetDefault("captcha.scenes.admin_login", false)
	v.SetDefault("captcha.image.length", 5)
	v.SetDefault("captcha.image.width", 240)
	v.SetDefault("captcha.image.height", 80)
	v.SetDefault("captcha.image.noise_count", 2)
	v.SetDefault("captcha.image.show_line", 2)
	v.SetDefault("captcha.image.expire_seconds", 300)
	v.SetDefault("captcha.image.max_store", 10240)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("loyalty.tiers.silver.points", 2000)
	v.SetDefault("loyalty.tiers.silver.spent", 200)
	v.SetDefault("loyalty.tiers.gold.points", 5000)
	v.SetDefault("loyalty.tiers.gold.spent", 500)
	v.SetDefault("loyalty.tiers.platinum.points", 10000)
	v.SetDefault("loyalty.tiers.platinum.spent", 1000)
	v.SetDefault("loyalty.referrer_bonus_points", 500)
	v.SetDefault("loyalty.referee_bonus_points", 200)
	v.SetDefault("loyalty.review_base_points", map[string]int{
		"product":  50,
		"service":  75,
		"delivery": 25,
		"app":      100,
	})
	v.SetDefault("loyalty.review_default_base_points", 50)
	v.SetDefault("loyalty.referral_code_max_attempts", 10)
	v.SetDefault("loyalty.purchase_points_rate", 1.0)
	v.SetDefault("loyalty.reward_sweep_interval_seconds", 300)
	v.SetDefault("loyalty.stats_cache_ttl_seconds", 120)
	v.SetDefault("loyalty.catalog_cache_ttl_seconds", 60)
	v.SetDefault("loyalty.catalog_local_cache_size", 256)
	v.SetDefault("loyalty.recent_activity_limit", 10)
}
