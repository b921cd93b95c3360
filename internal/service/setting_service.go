package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/piezasya/loyalty/internal/constants"
	"github.com/piezasya/loyalty/internal/logger"
	"github.com/piezasya/loyalty/internal/models"
	"github.com/piezasya/loyalty/internal/repository"

	"github.com/shopspring/decimal"
)

const settingCacheTTL = 30 * time.Second

// SettingService 设置业务服务，负责积分规则的运行时覆盖
type SettingService struct {
	repo repository.SettingRepository
	base LoyaltyRules

	mu       sync.RWMutex
	cached   LoyaltyRules
	cachedAt time.Time
}

// LoyaltyTierSetting 单个等级门槛设置
type LoyaltyTierSetting struct {
	Points int          `json:"points"`
	Spent  models.Money `json:"spent"`
}

// LoyaltyTiersSetting 等级门槛设置
type LoyaltyTiersSetting struct {
	Silver   LoyaltyTierSetting `json:"silver"`
	Gold     LoyaltyTierSetting `json:"gold"`
	Platinum LoyaltyTierSetting `json:"platinum"`
}

// LoyaltySetting 积分计划设置
type LoyaltySetting struct {
	Tiers                   LoyaltyTiersSetting `json:"tiers"`
	ReferrerBonusPoints     int                 `json:"referrer_bonus_points"`
	RefereeBonusPoints      int                 `json:"referee_bonus_points"`
	ReviewBasePoints        map[string]int      `json:"review_base_points"`
	ReviewDefaultBasePoints int                 `json:"review_default_base_points"`
	PurchasePointsRate      decimal.Decimal     `json:"purchase_points_rate"`
}

// NewSettingService 创建设置服务
func NewSettingService(repo repository.SettingRepository, base LoyaltyRules) *SettingService {
	return &SettingService{repo: repo, base: base.Clone()}
}

// LoyaltyRules 返回当前生效规则（配置默认值合并后台覆盖项）
func (s *SettingService) LoyaltyRules() LoyaltyRules {
	if s == nil {
		return DefaultLoyaltyRules()
	}
	s.mu.RLock()
	if !s.cachedAt.IsZero() && time.Since(s.cachedAt) < settingCacheTTL {
		rules := s.cached
		s.mu.RUnlock()
		return rules
	}
	s.mu.RUnlock()

	rules, err := s.loadRules()
	if err != nil {
		logger.Warnw("loyalty_setting_load_failed", "error", err)
		return s.base.Clone()
	}
	s.mu.Lock()
	s.cached = rules
	s.cachedAt = time.Now()
	s.mu.Unlock()
	return rules
}

// GetLoyaltySetting 获取当前生效的积分设置
func (s *SettingService) GetLoyaltySetting() (*LoyaltySetting, error) {
	rules, err := s.loadRules()
	if err != nil {
		return nil, err
	}
	setting := settingFromRules(rules)
	return &setting, nil
}

// UpdateLoyaltySetting 保存积分设置覆盖项
func (s *SettingService) UpdateLoyaltySetting(adminID uint, input LoyaltySetting) (*LoyaltySetting, error) {
	if err := validateLoyaltySetting(&input); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}
	value := models.JSON{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, err
	}
	if _, err := s.repo.Upsert(constants.SettingKeyLoyaltyConfig, value, adminID); err != nil {
		return nil, err
	}
	s.invalidate()
	logger.Infow("loyalty_setting_updated", "admin_id", adminID)
	return s.GetLoyaltySetting()
}

func (s *SettingService) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cachedAt = time.Time{}
}

func (s *SettingService) loadRules() (LoyaltyRules, error) {
	rules := s.base.Clone()
	setting, err := s.repo.GetByKey(constants.SettingKeyLoyaltyConfig)
	if err != nil {
		return rules, err
	}
	if setting == nil || len(setting.ValueJSON) == 0 {
		return rules, nil
	}
	raw, err := json.Marshal(setting.ValueJSON)
	if err != nil {
		return rules, err
	}
	var override LoyaltySetting
	if err := json.Unmarshal(raw, &override); err != nil {
		return rules, fmt.Errorf("decode loyalty setting: %w", err)
	}
	if err := validateLoyaltySetting(&override); err != nil {
		return rules, err
	}
	return applyLoyaltySetting(rules, override), nil
}

func settingFromRules(rules LoyaltyRules) LoyaltySetting {
	setting := LoyaltySetting{
		ReferrerBonusPoints:     rules.ReferrerBonusPoints,
		RefereeBonusPoints:      rules.RefereeBonusPoints,
		ReviewBasePoints:        map[string]int{},
		ReviewDefaultBasePoints: rules.ReviewDefaultBasePoints,
		PurchasePointsRate:      rules.PurchasePointsRate,
	}
	for k, v := range rules.ReviewBasePoints {
		setting.ReviewBasePoints[k] = v
	}
	for _, tier := range rules.Tiers {
		item := LoyaltyTierSetting{Points: tier.Points, Spent: models.NewMoneyFromDecimal(tier.Spent)}
		switch tier.Level {
		case constants.LoyaltyLevelSilver:
			setting.Tiers.Silver = item
		case constants.LoyaltyLevelGold:
			setting.Tiers.Gold = item
		case constants.LoyaltyLevelPlatinum:
			setting.Tiers.Platinum = item
		}
	}
	return setting
}

func applyLoyaltySetting(rules LoyaltyRules, setting LoyaltySetting) LoyaltyRules {
	rules.Tiers = []TierThreshold{
		{Level: constants.LoyaltyLevelPlatinum, Points: setting.Tiers.Platinum.Points, Spent: setting.Tiers.Platinum.Spent.Decimal},
		{Level: constants.LoyaltyLevelGold, Points: setting.Tiers.Gold.Points, Spent: setting.Tiers.Gold.Spent.Decimal},
		{Level: constants.LoyaltyLevelSilver, Points: setting.Tiers.Silver.Points, Spent: setting.Tiers.Silver.Spent.Decimal},
	}
	rules.ReferrerBonusPoints = setting.ReferrerBonusPoints
	rules.RefereeBonusPoints = setting.RefereeBonusPoints
	for k, v := range setting.ReviewBasePoints {
		rules.ReviewBasePoints[k] = v
	}
	if setting.ReviewDefaultBasePoints > 0 {
		rules.ReviewDefaultBasePoints = setting.ReviewDefaultBasePoints
	}
	rules.PurchasePointsRate = setting.PurchasePointsRate
	return rules
}

// validateLoyaltySetting 校验并规范化设置：非负、等级门槛逐级递增
func validateLoyaltySetting(setting *LoyaltySetting) error {
	if setting.ReferrerBonusPoints < 0 || setting.RefereeBonusPoints < 0 || setting.ReviewDefaultBasePoints < 0 {
		return ErrSettingsInvalid
	}
	if setting.PurchasePointsRate.LessThan(decimal.Zero) {
		return ErrSettingsInvalid
	}
	tiers := []LoyaltyTierSetting{setting.Tiers.Silver, setting.Tiers.Gold, setting.Tiers.Platinum}
	for i, tier := range tiers {
		if tier.Points <= 0 || tier.Spent.Decimal.LessThan(decimal.Zero) {
			return ErrSettingsInvalid
		}
		if i > 0 && (tier.Points <= tiers[i-1].Points || tier.Spent.Decimal.LessThan(tiers[i-1].Spent.Decimal)) {
			return ErrSettingsInvalid
		}
	}
	normalized := make(map[string]int, len(setting.ReviewBasePoints))
	for category, base := range setting.ReviewBasePoints {
		category = strings.ToLower(strings.TrimSpace(category))
		if !isReviewCategory(category) || base < 0 {
			return ErrSettingsInvalid
		}
		normalized[category] = base
	}
	setting.ReviewBasePoints = normalized
	return nil
}
