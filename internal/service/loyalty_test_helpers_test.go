package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/piezasya/loyalty/internal/cache"
	"github.com/piezasya/loyalty/internal/constants"
	"github.com/piezasya/loyalty/internal/metrics"
	"github.com/piezasya/loyalty/internal/models"
	"github.com/piezasya/loyalty/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type loyaltyTestEnv struct {
	db          *gorm.DB
	metrics     *metrics.Metrics
	userRepo    *repository.GormUserRepository
	rewardRepo  *repository.GormRewardRepository
	points      *PointsService
	reviews     *ReviewService
	rewards     *RewardService
	redemptions *RedemptionService
	referrals   *ReferralService
	stats       *StatsService
	settings    *SettingService
}

func setupLoyaltyServiceTest(t *testing.T) *loyaltyTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:loyalty_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	models.DB = db
	if err := cache.InitLocal(64); err != nil {
		t.Fatalf("init local cache failed: %v", err)
	}

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg, reg)
	if err != nil {
		t.Fatalf("init metrics failed: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	rewardRepo := repository.NewRewardRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	redemptionRepo := repository.NewRedemptionRepository(db)
	referralRepo := repository.NewReferralRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	settings := NewSettingService(settingRepo, DefaultLoyaltyRules())
	points := NewPointsService(userRepo, activityRepo, purchaseRepo, settings, m, nil)
	return &loyaltyTestEnv{
		db:          db,
		metrics:     m,
		userRepo:    userRepo,
		rewardRepo:  rewardRepo,
		points:      points,
		reviews:     NewReviewService(reviewRepo, points, m),
		rewards:     NewRewardService(rewardRepo, userRepo, time.Minute),
		redemptions: NewRedemptionService(userRepo, rewardRepo, redemptionRepo, referralRepo, points, m),
		referrals:   NewReferralService(userRepo, referralRepo, points, m),
		stats:       NewStatsService(userRepo, reviewRepo, redemptionRepo, activityRepo, referralRepo, points, StatsOptions{}),
		settings:    settings,
	}
}

func (env *loyaltyTestEnv) createUser(t *testing.T, email string, points int) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		Status:       constants.UserStatusActive,
		Points:       points,
		LoyaltyLevel: constants.LoyaltyLevelBronze,
	}
	if err := env.db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func (env *loyaltyTestEnv) createReward(t *testing.T, reward models.Reward) *models.Reward {
	t.Helper()
	if reward.Name == "" {
		reward.Name = "Test reward"
	}
	if reward.Slug == "" {
		reward.Slug = fmt.Sprintf("test-reward-%d", time.Now().UnixNano())
	}
	if reward.Category == "" {
		reward.Category = constants.RewardCategoryDiscount
	}
	if err := env.db.Create(&reward).Error; err != nil {
		t.Fatalf("create reward failed: %v", err)
	}
	return &reward
}

func (env *loyaltyTestEnv) reloadUser(t *testing.T, id uint) *models.User {
	t.Helper()
	user, err := env.userRepo.GetByID(id)
	if err != nil || user == nil {
		t.Fatalf("reload user failed: user=%v err=%v", user, err)
	}
	return user
}

func (env *loyaltyTestEnv) reloadReward(t *testing.T, id uint) *models.Reward {
	t.Helper()
	reward, err := env.rewardRepo.GetByID(id)
	if err != nil || reward == nil {
		t.Fatalf("reload reward failed: reward=%v err=%v", reward, err)
	}
	return reward
}

func (env *loyaltyTestEnv) countRows(t *testing.T, model interface{}) int64 {
	t.Helper()
	var count int64
	if err := env.db.Model(model).Count(&count).Error; err != nil {
		t.Fatalf("count rows failed: %v", err)
	}
	return count
}
