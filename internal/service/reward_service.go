package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/piezasya/loyalty/internal/cache"
	"github.com/piezasya/loyalty/internal/logger"
	"github.com/piezasya/loyalty/internal/models"
	"github.com/piezasya/loyalty/internal/repository"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

const (
	rewardCatalogMaxItems   = 500
	rewardSlugMaxAttempts   = 20
	defaultCatalogCacheTTL  = time.Minute
	rewardDefaultSlugPrefix = "reward"
)

// RewardService 奖励目录服务
type RewardService struct {
	rewardRepo repository.RewardRepository
	userRepo   repository.UserRepository
	catalogTTL time.Duration
}

// RewardInput 管理端创建/更新奖励输入
type RewardInput struct {
	Name           string
	Description    string
	ImageURL       string
	PointsRequired int
	CashRequired   models.Money
	Category       string
	Stock          int
	IsActive       bool
	StartDate      *time.Time
	EndDate        *time.Time
}

// AvailableReward 可兑换奖励（附带当前用户是否负担得起）
type AvailableReward struct {
	models.Reward
	CanAfford bool `json:"can_afford"`
}

// NewRewardService 创建奖励服务
func NewRewardService(rewardRepo repository.RewardRepository, userRepo repository.UserRepository, catalogTTL time.Duration) *RewardService {
	if catalogTTL <= 0 {
		catalogTTL = defaultCatalogCacheTTL
	}
	return &RewardService{
		rewardRepo: rewardRepo,
		userRepo:   userRepo,
		catalogTTL: catalogTTL,
	}
}

// Create 创建奖励
func (s *RewardService) Create(ctx context.Context, adminID uint, input RewardInput) (*models.Reward, error) {
	if err := validateRewardInput(input); err != nil {
		return nil, err
	}
	rewardSlug, err := s.uniqueSlug(input.Name, 0)
	if err != nil {
		return nil, err
	}
	reward := &models.Reward{CreatedBy: adminID, Slug: rewardSlug}
	applyRewardInput(reward, input)
	if err := s.rewardRepo.Create(reward); err != nil {
		return nil, fmt.Errorf("create reward: %w", err)
	}
	s.invalidateCatalog(ctx)
	logger.Infow("loyalty_reward_created", "reward_id", reward.ID, "admin_id", adminID, "slug", reward.Slug)
	return reward, nil
}

// Update 更新奖励
func (s *RewardService) Update(ctx context.Context, id uint, input RewardInput) (*models.Reward, error) {
	if err := validateRewardInput(input); err != nil {
		return nil, err
	}
	reward, err := s.rewardRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if reward == nil {
		return nil, ErrRewardNotFound
	}
	if strings.TrimSpace(input.Name) != reward.Name {
		rewardSlug, err := s.uniqueSlug(input.Name, reward.ID)
		if err != nil {
			return nil, err
		}
		reward.Slug = rewardSlug
	}
	applyRewardInput(reward, input)
	if err := s.rewardRepo.Update(reward); err != nil {
		return nil, fmt.Errorf("update reward: %w", err)
	}
	s.invalidateCatalog(ctx)
	return reward, nil
}

// Get 获取奖励
func (s *RewardService) Get(id uint) (*models.Reward, error) {
	reward, err := s.rewardRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if reward == nil {
		return nil, ErrRewardNotFound
	}
	return reward, nil
}

// List 管理端奖励列表
func (s *RewardService) List(filter repository.RewardListFilter) ([]models.Reward, int64, error) {
	return s.rewardRepo.List(filter)
}

// ListAvailable 可兑换奖励列表，标注当前用户积分是否足够
func (s *RewardService) ListAvailable(ctx context.Context, principal Principal) ([]AvailableReward, error) {
	user, err := s.userRepo.GetByID(principal.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	rewards, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	items := make([]AvailableReward, 0, len(rewards))
	for _, reward := range rewards {
		// 缓存期内可能跨过有效期边界，再按当前时间过滤一次
		if !reward.Available(now) {
			continue
		}
		items = append(items, AvailableReward{
			Reward:    reward,
			CanAfford: user.Points >= reward.PointsRequired,
		})
	}
	return items, nil
}

// SweepExpired 下架已过截止时间的奖励
func (s *RewardService) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	affected, err := s.rewardRepo.DeactivateExpired(now)
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		s.invalidateCatalog(ctx)
		logger.Infow("loyalty_reward_sweep_done", "deactivated", affected)
	}
	return affected, nil
}

func (s *RewardService) catalog(ctx context.Context) ([]models.Reward, error) {
	var cached []models.Reward
	hit, err := cache.GetRewardCatalog(ctx, &cached)
	if err != nil {
		logger.Warnw("loyalty_reward_catalog_cache_read_failed", "error", err)
	}
	if hit {
		return cached, nil
	}
	rewards, _, err := s.rewardRepo.List(repository.RewardListFilter{
		Page:      1,
		PageSize:  rewardCatalogMaxItems,
		OnlyValid: true,
		At:        time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := cache.SetRewardCatalog(ctx, rewards, s.catalogTTL); err != nil {
		logger.Warnw("loyalty_reward_catalog_cache_write_failed", "error", err)
	}
	return rewards, nil
}

func (s *RewardService) invalidateCatalog(ctx context.Context) {
	if err := cache.DelRewardCatalog(ctx); err != nil {
		logger.Warnw("loyalty_reward_catalog_cache_invalidate_failed", "error", err)
	}
}

func (s *RewardService) uniqueSlug(name string, excludeID uint) (string, error) {
	base := slug.Make(strings.TrimSpace(name))
	if base == "" {
		base = rewardDefaultSlugPrefix
	}
	candidate := base
	for i := 2; i <= rewardSlugMaxAttempts+1; i++ {
		exists, err := s.rewardRepo.SlugExists(candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", ErrRewardInvalid
}

func validateRewardInput(input RewardInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return ErrRewardInvalid
	}
	if input.PointsRequired < 0 || input.Stock < 0 {
		return ErrRewardInvalid
	}
	if input.CashRequired.Decimal.LessThan(decimal.Zero) {
		return ErrRewardInvalid
	}
	if !isRewardCategory(strings.ToLower(strings.TrimSpace(input.Category))) {
		return ErrRewardInvalid
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return ErrRewardInvalid
	}
	return nil
}

func applyRewardInput(reward *models.Reward, input RewardInput) {
	reward.Name = strings.TrimSpace(input.Name)
	reward.Description = strings.TrimSpace(input.Description)
	reward.ImageURL = strings.TrimSpace(input.ImageURL)
	reward.PointsRequired = input.PointsRequired
	reward.CashRequired = models.NewMoneyFromDecimal(input.CashRequired.Decimal)
	reward.Category = strings.ToLower(strings.TrimSpace(input.Category))
	reward.Stock = input.Stock
	reward.IsActive = input.IsActive
	reward.StartDate = input.StartDate
	reward.EndDate = input.EndDate
}
