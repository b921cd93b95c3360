package service

import (
	"strings"

	"github.com/piezasya/loyalty/internal/config"
	"github.com/piezasya/loyalty/internal/constants"

	"github.com/shopspring/decimal"
)

// TierThreshold 会员等级门槛，积分与累计消费需同时满足
type TierThreshold struct {
	Level  string          `json:"level"`
	Points int             `json:"points"`
	Spent  decimal.Decimal `json:"spent"`
}

// LoyaltyRules 积分计划规则（等级门槛、评价积分、推荐奖励等）
type LoyaltyRules struct {
	Tiers                   []TierThreshold // 从高到低
	ReferrerBonusPoints     int
	RefereeBonusPoints      int
	ReviewBasePoints        map[string]int
	ReviewDefaultBasePoints int
	PurchasePointsRate      decimal.Decimal
	ReferralCodeMaxAttempts int
}

// LoyaltyRulesSource 提供当前生效的积分规则
type LoyaltyRulesSource interface {
	LoyaltyRules() LoyaltyRules
}

type staticRules struct {
	rules LoyaltyRules
}

func (s staticRules) LoyaltyRules() LoyaltyRules {
	return s.rules
}

// StaticRules 固定规则源
func StaticRules(rules LoyaltyRules) LoyaltyRulesSource {
	return staticRules{rules: rules}
}

// DefaultLoyaltyRules 默认规则
func DefaultLoyaltyRules() LoyaltyRules {
	return LoyaltyRules{
		Tiers: []TierThreshold{
			{Level: constants.LoyaltyLevelPlatinum, Points: 10000, Spent: decimal.NewFromInt(1000)},
			{Level: constants.LoyaltyLevelGold, Points: 5000, Spent: decimal.NewFromInt(500)},
			{Level: constants.LoyaltyLevelSilver, Points: 2000, Spent: decimal.NewFromInt(200)},
		},
		ReferrerBonusPoints: 500,
		RefereeBonusPoints:  200,
		ReviewBasePoints: map[string]int{
			constants.ReviewCategoryProduct:  50,
			constants.ReviewCategoryService:  75,
			constants.ReviewCategoryDelivery: 25,
			constants.ReviewCategoryApp:      100,
		},
		ReviewDefaultBasePoints: 50,
		PurchasePointsRate:      decimal.NewFromInt(1),
		ReferralCodeMaxAttempts: 10,
	}
}

// NewLoyaltyRules 从配置构建规则，缺省项回退到默认值
func NewLoyaltyRules(cfg config.LoyaltyConfig) LoyaltyRules {
	rules := DefaultLoyaltyRules()
	tiers := []struct {
		level string
		tier  config.LoyaltyTierConfig
	}{
		{constants.LoyaltyLevelPlatinum, cfg.Tiers.Platinum},
		{constants.LoyaltyLevelGold, cfg.Tiers.Gold},
		{constants.LoyaltyLevelSilver, cfg.Tiers.Silver},
	}
	for i, item := range tiers {
		if item.tier.Points > 0 {
			rules.Tiers[i].Points = item.tier.Points
		}
		if item.tier.Spent > 0 {
			rules.Tiers[i].Spent = decimal.NewFromFloat(item.tier.Spent)
		}
	}
	if cfg.ReferrerBonusPoints > 0 {
		rules.ReferrerBonusPoints = cfg.ReferrerBonusPoints
	}
	if cfg.RefereeBonusPoints > 0 {
		rules.RefereeBonusPoints = cfg.RefereeBonusPoints
	}
	for category, base := range cfg.ReviewBasePoints {
		category = strings.ToLower(strings.TrimSpace(category))
		if isReviewCategory(category) && base > 0 {
			rules.ReviewBasePoints[category] = base
		}
	}
	if cfg.ReviewDefaultBasePoints > 0 {
		rules.ReviewDefaultBasePoints = cfg.ReviewDefaultBasePoints
	}
	if cfg.PurchasePointsRate > 0 {
		rules.PurchasePointsRate = decimal.NewFromFloat(cfg.PurchasePointsRate)
	}
	if cfg.ReferralCodeMaxAttempts > 0 {
		rules.ReferralCodeMaxAttempts = cfg.ReferralCodeMaxAttempts
	}
	return rules
}

// Clone 深拷贝规则
func (r LoyaltyRules) Clone() LoyaltyRules {
	cloned := r
	cloned.Tiers = append([]TierThreshold(nil), r.Tiers...)
	cloned.ReviewBasePoints = make(map[string]int, len(r.ReviewBasePoints))
	for k, v := range r.ReviewBasePoints {
		cloned.ReviewBasePoints[k] = v
	}
	return cloned
}

// LevelFor 按门槛从高到低计算会员等级
func (r LoyaltyRules) LevelFor(points int, totalSpent decimal.Decimal) string {
	for _, tier := range r.Tiers {
		if points >= tier.Points && totalSpent.GreaterThanOrEqual(tier.Spent) {
			return tier.Level
		}
	}
	return constants.LoyaltyLevelBronze
}

// LevelProgress 距下一等级的差距
type LevelProgress struct {
	NextLevel     string          `json:"next_level"`
	PointsNeeded  int             `json:"points_needed"`
	SpentNeeded   decimal.Decimal `json:"spent_needed"`
	PointsPercent float64         `json:"points_percent"`
}

// NextLevel 计算下一等级进度，已是最高等级时返回 nil
func (r LoyaltyRules) NextLevel(points int, totalSpent decimal.Decimal) *LevelProgress {
	current := r.LevelFor(points, totalSpent)
	// Tiers 从高到低，倒序遍历找到比当前等级高的最低一档
	currentRank := levelRank(current)
	for i := len(r.Tiers) - 1; i >= 0; i-- {
		tier := r.Tiers[i]
		if levelRank(tier.Level) <= currentRank {
			continue
		}
		progress := &LevelProgress{NextLevel: tier.Level}
		if points < tier.Points {
			progress.PointsNeeded = tier.Points - points
		}
		if totalSpent.LessThan(tier.Spent) {
			progress.SpentNeeded = tier.Spent.Sub(totalSpent).Round(2)
		} else {
			progress.SpentNeeded = decimal.Zero
		}
		if tier.Points > 0 {
			percent := float64(points) / float64(tier.Points) * 100
			if percent > 100 {
				percent = 100
			}
			progress.PointsPercent = decimal.NewFromFloat(percent).Round(2).InexactFloat64()
		}
		return progress
	}
	return nil
}

// ReviewPoints 评价积分 = 类别基础分 × 星级
func (r LoyaltyRules) ReviewPoints(rating int, category string) int {
	base, ok := r.ReviewBasePoints[strings.ToLower(strings.TrimSpace(category))]
	if !ok {
		base = r.ReviewDefaultBasePoints
	}
	return base * rating
}

// PurchasePoints 消费积分，向下取整
func (r LoyaltyRules) PurchasePoints(amount decimal.Decimal) int {
	if amount.LessThanOrEqual(decimal.Zero) || r.PurchasePointsRate.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	return int(amount.Mul(r.PurchasePointsRate).Floor().IntPart())
}

// LoyaltyLevelFor 使用默认门槛计算会员等级
func LoyaltyLevelFor(points int, totalSpent decimal.Decimal) string {
	return DefaultLoyaltyRules().LevelFor(points, totalSpent)
}

// CalculateReviewPoints 使用默认基础分计算评价积分
func CalculateReviewPoints(rating int, category string) int {
	return DefaultLoyaltyRules().ReviewPoints(rating, category)
}

func levelRank(level string) int {
	switch level {
	case constants.LoyaltyLevelSilver:
		return 1
	case constants.LoyaltyLevelGold:
		return 2
	case constants.LoyaltyLevelPlatinum:
		return 3
	default:
		return 0
	}
}

func isReviewCategory(category string) bool {
	switch category {
	case constants.ReviewCategoryProduct,
		constants.ReviewCategoryService,
		constants.ReviewCategoryDelivery,
		constants.ReviewCategoryApp:
		return true
	}
	return false
}

func isRewardCategory(category string) bool {
	switch category {
	case constants.RewardCategoryDiscount,
		constants.RewardCategoryProduct,
		constants.RewardCategoryService,
		constants.RewardCategoryShipping,
		constants.RewardCategoryExclusive:
		return true
	}
	return false
}

func isSharePlatform(platform string) bool {
	switch platform {
	case constants.SharePlatformWhatsApp,
		constants.SharePlatformFacebook,
		constants.SharePlatformTwitter,
		constants.SharePlatformInstagram,
		constants.SharePlatformTelegram,
		constants.SharePlatformEmail,
		constants.SharePlatformSMS,
		constants.SharePlatformCopyLink,
		constants.SharePlatformOther:
		return true
	}
	return false
}
