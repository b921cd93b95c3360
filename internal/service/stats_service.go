package service

import (
	"context"
	"time"

	"github.com/piezasya/loyalty/internal/cache"
	"github.com/piezasya/loyalty/internal/logger"
	"github.com/piezasya/loyalty/internal/models"
	"github.com/piezasya/loyalty/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	defaultStatsCacheTTL       = 2 * time.Minute
	defaultRecentActivityLimit = 10
)

// StatsService 会员统计聚合服务
type StatsService struct {
	userRepo       repository.UserRepository
	reviewRepo     repository.ReviewRepository
	redemptionRepo repository.RedemptionRepository
	activityRepo   repository.ActivityRepository
	referralRepo   repository.ReferralRepository
	pointsSvc      *PointsService
	cacheTTL       time.Duration
	recentLimit    int
}

// StatsOptions 统计服务参数
type StatsOptions struct {
	CacheTTL    time.Duration
	RecentLimit int
}

// LoyaltyStats 会员积分统计
type LoyaltyStats struct {
	Points           int               `json:"points"`
	LoyaltyLevel     string            `json:"loyalty_level"`
	TotalSpent       models.Money      `json:"total_spent"`
	TotalPurchases   int               `json:"total_purchases"`
	NextLevel        *LevelProgress    `json:"next_level"`
	Reviews          ReviewStats       `json:"reviews"`
	Redemptions      RedemptionStats   `json:"redemptions"`
	ReferralCount    int64             `json:"referral_count"`
	ReferralCode     string            `json:"referral_code"`
	RecentActivities []models.Activity `json:"recent_activities"`
	GeneratedAt      time.Time         `json:"generated_at"`
}

// ReviewStats 评价汇总
type ReviewStats struct {
	Count         int64   `json:"count"`
	AverageRating float64 `json:"average_rating"`
	PointsEarned  int64   `json:"points_earned"`
}

// RedemptionStats 兑换汇总
type RedemptionStats struct {
	Count        int64 `json:"count"`
	PointsSpent  int64 `json:"points_spent"`
	PendingCount int64 `json:"pending_count"`
}

// ReferralTrackingStats 推荐追踪统计
type ReferralTrackingStats struct {
	ReferralCode            string     `json:"referral_code"`
	Platform                string     `json:"platform"`
	Shares                  int        `json:"shares"`
	Clicks                  int        `json:"clicks"`
	Registrations           int        `json:"registrations"`
	SuccessfulRegistrations int        `json:"successful_registrations"`
	TotalPointsEarned       int        `json:"total_points_earned"`
	TotalPointsSpent        int        `json:"total_points_spent"`
	ConversionRate          float64    `json:"conversion_rate"`
	LastSharedAt            *time.Time `json:"last_shared_at,omitempty"`
}

// NewStatsService 创建统计服务
func NewStatsService(
	userRepo repository.UserRepository,
	reviewRepo repository.ReviewRepository,
	redemptionRepo repository.RedemptionRepository,
	activityRepo repository.ActivityRepository,
	referralRepo repository.ReferralRepository,
	pointsSvc *PointsService,
	options StatsOptions,
) *StatsService {
	if options.CacheTTL <= 0 {
		options.CacheTTL = defaultStatsCacheTTL
	}
	if options.RecentLimit <= 0 {
		options.RecentLimit = defaultRecentActivityLimit
	}
	return &StatsService{
		userRepo:       userRepo,
		reviewRepo:     reviewRepo,
		redemptionRepo: redemptionRepo,
		activityRepo:   activityRepo,
		referralRepo:   referralRepo,
		pointsSvc:      pointsSvc,
		cacheTTL:       options.CacheTTL,
		recentLimit:    options.RecentLimit,
	}
}

// GetLoyaltyStats 获取会员统计（带缓存）
func (s *StatsService) GetLoyaltyStats(ctx context.Context, principal Principal) (*LoyaltyStats, error) {
	if !principal.Valid() {
		return nil, ErrUserNotFound
	}
	var cached LoyaltyStats
	hit, err := cache.GetLoyaltyStats(ctx, principal.UserID, &cached)
	if err != nil {
		logger.Warnw("loyalty_stats_cache_read_failed", "user_id", principal.UserID, "error", err)
	}
	if hit {
		return &cached, nil
	}
	return s.RefreshLoyaltyStats(ctx, principal.UserID)
}

// RefreshLoyaltyStats 重新聚合并写入缓存
func (s *StatsService) RefreshLoyaltyStats(ctx context.Context, userID uint) (*LoyaltyStats, error) {
	stats, err := s.buildLoyaltyStats(userID)
	if err != nil {
		return nil, err
	}
	if err := cache.SetLoyaltyStats(ctx, userID, stats, s.cacheTTL); err != nil {
		logger.Warnw("loyalty_stats_cache_write_failed", "user_id", userID, "error", err)
	}
	return stats, nil
}

func (s *StatsService) buildLoyaltyStats(userID uint) (*LoyaltyStats, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	reviewSummary, err := s.reviewRepo.SummaryByUser(user.ID)
	if err != nil {
		return nil, err
	}
	redemptionSummary, err := s.redemptionRepo.SummaryByUser(user.ID)
	if err != nil {
		return nil, err
	}
	referralCount, err := s.userRepo.CountReferredBy(user.ID)
	if err != nil {
		return nil, err
	}
	recent, err := s.activityRepo.Recent(user.ID, s.recentLimit)
	if err != nil {
		return nil, err
	}

	return &LoyaltyStats{
		Points:         user.Points,
		LoyaltyLevel:   user.LoyaltyLevel,
		TotalSpent:     user.TotalSpent,
		TotalPurchases: user.TotalPurchases,
		NextLevel:      s.pointsSvc.Rules().NextLevel(user.Points, user.TotalSpent.Decimal),
		Reviews: ReviewStats{
			Count:         reviewSummary.Count,
			AverageRating: decimal.NewFromFloat(reviewSummary.AverageRating).Round(2).InexactFloat64(),
			PointsEarned:  reviewSummary.PointsEarned,
		},
		Redemptions: RedemptionStats{
			Count:        redemptionSummary.Count,
			PointsSpent:  redemptionSummary.PointsSpent,
			PendingCount: redemptionSummary.PendingCount,
		},
		ReferralCount:    referralCount,
		ReferralCode:     user.ReferralCodeValue(),
		RecentActivities: recent,
		GeneratedAt:      time.Now(),
	}, nil
}

// GetReferralTrackingStats 获取推荐追踪统计
func (s *StatsService) GetReferralTrackingStats(ctx context.Context, principal Principal) (*ReferralTrackingStats, error) {
	user, err := s.userRepo.GetByID(principal.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	code := user.ReferralCodeValue()
	stats := &ReferralTrackingStats{ReferralCode: code}
	if code == "" {
		return stats, nil
	}
	tracking, err := s.referralRepo.GetTrackingByCode(code)
	if err != nil {
		return nil, err
	}
	if tracking == nil {
		return stats, nil
	}
	stats.Platform = tracking.Platform
	stats.Shares = tracking.Shares
	stats.Clicks = tracking.Clicks
	stats.Registrations = tracking.Registrations
	stats.SuccessfulRegistrations = tracking.SuccessfulRegistrations
	stats.TotalPointsEarned = tracking.TotalPointsEarned
	stats.TotalPointsSpent = tracking.TotalPointsSpent
	stats.ConversionRate = conversionRate(tracking.SuccessfulRegistrations, tracking.Clicks)
	stats.LastSharedAt = tracking.LastSharedAt
	return stats, nil
}

// conversionRate 成功注册数 / 点击数 × 100，保留两位小数
func conversionRate(successful, clicks int) float64 {
	if clicks <= 0 {
		return 0
	}
	rate := decimal.NewFromInt(int64(successful)).
		Div(decimal.NewFromInt(int64(clicks))).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	return rate.InexactFloat64()
}
