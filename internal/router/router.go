package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/piezasya/loyalty/internal/authz"
	"github.com/piezasya/loyalty/internal/cache"
	"github.com/piezasya/loyalty/internal/config"
	"github.com/piezasya/loyalty/internal/constants"
	adminhandlers "github.com/piezasya/loyalty/internal/http/handlers/admin"
	publichandlers "github.com/piezasya/loyalty/internal/http/handlers/public"
	"github.com/piezasya/loyalty/internal/http/response"
	"github.com/piezasya/loyalty/internal/logger"
	"github.com/piezasya/loyalty/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	adminLoginRule := buildRateLimitRule(redisPrefix, "admin_login", cfg.Security.LoginRateLimit)
	clickRule := buildRateLimitRule(redisPrefix, "referral_click", cfg.Security.ClickRateLimit)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log, "/health", metricsPath(cfg.Metrics)))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/captcha/image", publicHandler.GetImageCaptcha)
		}

		// 推荐链接点击（匿名访问，按推荐码 + IP 限流）
		apiV1.GET("/loyalty/track-click/:referralCode",
			RateLimitMiddleware(redisClient, clickRule, KeyByIPAndParam("referralCode")),
			publicHandler.TrackClick,
		)

		// 用户积分接口（需鉴权）
		loyalty := apiV1.Group("/loyalty")
		loyalty.Use(UserJWTAuthMiddleware(c.AuthService))
		{
			loyalty.GET("/stats", publicHandler.GetStats)
			loyalty.GET("/rewards", publicHandler.ListRewards)
			loyalty.POST("/redeem", publicHandler.Redeem)
			loyalty.POST("/review", publicHandler.SubmitReview)
			loyalty.GET("/reviews", publicHandler.ListMyReviews)
			loyalty.POST("/reviews/:id/report", publicHandler.ReportReview)
			loyalty.GET("/referral-code", publicHandler.GetReferralCode)
			loyalty.POST("/verify-referral", publicHandler.VerifyReferralCode)
			loyalty.GET("/redemption-history", publicHandler.RedemptionHistory)
			loyalty.POST("/track-share", publicHandler.TrackShare)
			loyalty.GET("/tracking-stats", publicHandler.TrackingStats)
			loyalty.GET("/activities", publicHandler.ListActivities)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIPAndJSONField("username")), adminHandler.AdminLogin)

			// 需要鉴权的接口
			authorized := admin.Group("")
			authorized.Use(JWTAuthMiddleware(c.AuthService), AdminRBACMiddleware(c.AuthzService))
			{
				// 奖励目录
				authorized.GET("/rewards", adminHandler.ListRewards)
				authorized.POST("/rewards", adminHandler.CreateReward)
				authorized.GET("/rewards/:id", adminHandler.GetReward)
				authorized.PUT("/rewards/:id", adminHandler.UpdateReward)

				// 兑换单
				authorized.GET("/redemptions", adminHandler.ListRedemptions)
				authorized.PATCH("/redemptions/:id", adminHandler.UpdateRedemption)

				// 用户与积分
				authorized.GET("/users", adminHandler.ListUsers)
				authorized.POST("/users/:id/points", adminHandler.AdjustUserPoints)
				authorized.PATCH("/users/:id/status", adminHandler.UpdateUserStatus)
				authorized.POST("/referrals/registered", adminHandler.ReferralRegistered)
				authorized.POST("/orders/completed", adminHandler.OrderCompleted)

				// 评价
				authorized.GET("/reviews", adminHandler.ListReviews)
				authorized.POST("/reviews/:id/reply", adminHandler.ReplyReview)

				// 积分规则设置
				authorized.GET("/settings/loyalty", adminHandler.GetLoyaltySetting)
				authorized.PUT("/settings/loyalty", adminHandler.UpdateLoyaltySetting)

				// 权限管理
				authorized.GET("/authz/roles", adminHandler.ListRoles)
				authorized.GET("/authz/admins/:id/roles", adminHandler.GetAdminRoles)
				authorized.PUT("/authz/admins/:id/roles", adminHandler.SetAdminRoles)
				authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})
			}
		}
	}

	if cfg.Metrics.Enabled && c.Metrics != nil {
		r.GET(metricsPath(cfg.Metrics), gin.WrapH(c.Metrics.Handler()))
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

func buildRateLimitRule(prefix, name string, cfg config.RateLimitConfig) RateLimitRule {
	return RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:%s", prefix, name),
		WindowSeconds: cfg.WindowSeconds,
		MaxRequests:   cfg.MaxRequests,
		BlockSeconds:  cfg.BlockSeconds,
		MessageKey:    "error.rate_limited",
	}
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		if item.Path == "/api/v1/admin/login" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}

func metricsPath(cfg config.MetricsConfig) string {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return "/metrics"
	}
	return path
}
