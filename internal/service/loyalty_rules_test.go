package service

import (
	"testing"

	"github.com/piezasya/loyalty/internal/config"
	"github.com/piezasya/loyalty/internal/constants"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoyaltyLevelForThresholds(t *testing.T) {
	cases := []struct {
		name   string
		points int
		spent  int64
		want   string
	}{
		{"new user", 0, 0, constants.LoyaltyLevelBronze},
		{"points without spend", 12000, 100, constants.LoyaltyLevelBronze},
		{"silver boundary", 2000, 200, constants.LoyaltyLevelSilver},
		{"gold boundary", 5000, 500, constants.LoyaltyLevelGold},
		{"gold points platinum spend", 9999, 5000, constants.LoyaltyLevelGold},
		{"platinum boundary", 10000, 1000, constants.LoyaltyLevelPlatinum},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, LoyaltyLevelFor(tc.points, decimal.NewFromInt(tc.spent)))
		})
	}
}

func TestCalculateReviewPoints(t *testing.T) {
	assert.Equal(t, 150, CalculateReviewPoints(3, constants.ReviewCategoryProduct))
	assert.Equal(t, 500, CalculateReviewPoints(5, constants.ReviewCategoryApp))
	assert.Equal(t, 25, CalculateReviewPoints(1, constants.ReviewCategoryDelivery))
	assert.Equal(t, 300, CalculateReviewPoints(4, constants.ReviewCategoryService))
	assert.Equal(t, 100, CalculateReviewPoints(2, "unknown"))
}

func TestNextLevelProgress(t *testing.T) {
	rules := DefaultLoyaltyRules()

	progress := rules.NextLevel(1500, decimal.NewFromInt(250))
	require.NotNil(t, progress)
	assert.Equal(t, constants.LoyaltyLevelSilver, progress.NextLevel)
	assert.Equal(t, 500, progress.PointsNeeded)
	assert.True(t, progress.SpentNeeded.IsZero())
	assert.Equal(t, 75.0, progress.PointsPercent)

	progress = rules.NextLevel(6000, decimal.NewFromInt(600))
	require.NotNil(t, progress)
	assert.Equal(t, constants.LoyaltyLevelPlatinum, progress.NextLevel)
	assert.Equal(t, 4000, progress.PointsNeeded)
	assert.True(t, progress.SpentNeeded.Equal(decimal.NewFromInt(400)))

	assert.Nil(t, rules.NextLevel(20000, decimal.NewFromInt(2000)))
}

func TestNewLoyaltyRulesFromConfig(t *testing.T) {
	rules := NewLoyaltyRules(config.LoyaltyConfig{
		Tiers: config.LoyaltyTiersConfig{
			Silver: config.LoyaltyTierConfig{Points: 1000, Spent: 100},
		},
		ReferrerBonusPoints: 700,
		ReviewBasePoints:    map[string]int{" App ": 120, "bogus": 999},
		PurchasePointsRate:  2.5,
	})
	assert.Equal(t, constants.LoyaltyLevelSilver, rules.LevelFor(1000, decimal.NewFromInt(100)))
	assert.Equal(t, 700, rules.ReferrerBonusPoints)
	assert.Equal(t, 200, rules.RefereeBonusPoints)
	assert.Equal(t, 600, rules.ReviewPoints(5, constants.ReviewCategoryApp))
	assert.Equal(t, 50, rules.ReviewPoints(1, "bogus"))
	assert.Equal(t, 27, rules.PurchasePoints(decimal.RequireFromString("10.99")))
}

func TestPurchasePointsFloors(t *testing.T) {
	rules := DefaultLoyaltyRules()
	assert.Equal(t, 42, rules.PurchasePoints(decimal.RequireFromString("42.99")))
	assert.Equal(t, 0, rules.PurchasePoints(decimal.Zero))
}
