package provider

import (
	"time"

	"github.com/piezasya/loyalty/internal/authz"
	"github.com/piezasya/loyalty/internal/cache"
	"github.com/piezasya/loyalty/internal/config"
	"github.com/piezasya/loyalty/internal/logger"
	"github.com/piezasya/loyalty/internal/metrics"
	"github.com/piezasya/loyalty/internal/models"
	"github.com/piezasya/loyalty/internal/queue"
	"github.com/piezasya/loyalty/internal/repository"
	"github.com/piezasya/loyalty/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Metrics     *metrics.Metrics

	// Repositories
	AdminRepo      repository.AdminRepository
	UserRepo       repository.UserRepository
	ActivityRepo   repository.ActivityRepository
	PurchaseRepo   repository.PurchaseRepository
	ReviewRepo     repository.ReviewRepository
	RewardRepo     repository.RewardRepository
	RedemptionRepo repository.RedemptionRepository
	ReferralRepo   repository.ReferralRepository
	SettingRepo    repository.SettingRepository

	// Services
	AuthzService      *authz.Service
	AuthService       *service.AuthService
	CaptchaService    *service.CaptchaService
	SettingService    *service.SettingService
	PointsService     *service.PointsService
	ReviewService     *service.ReviewService
	RewardService     *service.RewardService
	RedemptionService *service.RedemptionService
	ReferralService   *service.ReferralService
	StatsService      *service.StatsService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitLocal(cfg.Loyalty.CatalogLocalCacheSize); err != nil {
		logger.Warnw("provider_init_local_cache_failed", "error", err)
	}
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_redis_unavailable_using_local_cache", "error", err)
	}

	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient = nil
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Metrics:     metrics.Default(),
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

// Close 释放容器持有的外部连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.ActivityRepo = repository.NewActivityRepository(db)
	c.PurchaseRepo = repository.NewPurchaseRepository(db)
	c.ReviewRepo = repository.NewReviewRepository(db)
	c.RewardRepo = repository.NewRewardRepository(db)
	c.RedemptionRepo = repository.NewRedemptionRepository(db)
	c.ReferralRepo = repository.NewReferralRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	loyaltyCfg := c.Config.Loyalty
	c.SettingService = service.NewSettingService(c.SettingRepo, service.NewLoyaltyRules(loyaltyCfg))
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo, c.UserRepo)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.PointsService = service.NewPointsService(c.UserRepo, c.ActivityRepo, c.PurchaseRepo, c.SettingService, c.Metrics, c.QueueClient)
	c.ReviewService = service.NewReviewService(c.ReviewRepo, c.PointsService, c.Metrics)
	c.RewardService = service.NewRewardService(c.RewardRepo, c.UserRepo, seconds(loyaltyCfg.CatalogCacheTTLSeconds))
	c.RedemptionService = service.NewRedemptionService(c.UserRepo, c.RewardRepo, c.RedemptionRepo, c.ReferralRepo, c.PointsService, c.Metrics)
	c.ReferralService = service.NewReferralService(c.UserRepo, c.ReferralRepo, c.PointsService, c.Metrics)
	c.StatsService = service.NewStatsService(c.UserRepo, c.ReviewRepo, c.RedemptionRepo, c.ActivityRepo, c.ReferralRepo, c.PointsService, service.StatsOptions{
		CacheTTL:    seconds(loyaltyCfg.StatsCacheTTLSeconds),
		RecentLimit: loyaltyCfg.RecentActivityLimit,
	})
}

func seconds(value int) time.Duration {
	if value <= 0 {
		return 0
	}
	return time.Duration(value) * time.Second
}
