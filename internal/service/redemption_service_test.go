package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/piezasya/loyalty/internal/constants"
	"github.com/piezasya/loyalty/internal/models"
)

func TestRedeemEndToEndSingleStock(t *testing.T) {
	env := setupLoyaltyServiceTest(t)
	ctx := context.Background()
	reward := env.createReward(t, models.Reward{PointsRequired: 500, Stock: 1, IsActive: true})
	first := env.createUser(t, "first@example.com", 600)
	second := env.createUser(t, "second@example.com", 900)

	redemption, err := env.redemptions.Redeem(ctx, NewPrincipal(first.ID), RedeemInput{RewardID: reward.ID, ShippingAddress: " Calle Mayor 1 "})
	if err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	if redemption.Status != constants.RedemptionStatusPending || redemption.PointsSpent != 500 {
		t.Fatalf("unexpected redemption: %+v", redemption)
	}
	if redemption.ShippingAddress != "Calle Mayor 1" {
		t.Fatalf("shipping address not trimmed: %q", redemption.ShippingAddress)
	}
	if got := env.reloadUser(t, first.ID).Points; got != 100 {
		t.Fatalf("points want 100 got %d", got)
	}
	if got := env.reloadReward(t, reward.ID).Stock; got != 0 {
		t.Fatalf("stock want 0 got %d", got)
	}

	if _, err := env.redemptions.Redeem(ctx, NewPrincipal(second.ID), RedeemInput{RewardID: reward.ID}); !errors.Is(err, ErrRewardOutOfStock) {
		t.Fatalf("want ErrRewardOutOfStock got %v", err)
	}
	if got := env.reloadUser(t, second.ID).Points; got != 900 {
		t.Fatalf("rejected redemption must not debit, got %d", got)
	}
	if count := env.countRows(t, &models.RewardRedemption{}); count != 1 {
		t.Fatalf("redemptions want 1 got %d", count)
	}
}

func TestRedeemPreconditionOrder(t *testing.T) {
	env := setupLoyaltyServiceTest(t)
	ctx := context.Background()
	past := time.Now().Add(-48 * time.Hour)
	yesterday := time.Now().Add(-24 * time.Hour)
	tomorrow := time.Now().Add(24 * time.Hour)
	user := env.createUser(t, "order@example.com", 300)

	cases := []struct {
		name   string
		reward models.Reward
		want   error
	}{
		{"inactive wins over stock", models.Reward{PointsRequired: 100, Stock: 0, IsActive: false}, ErrRewardInactive},
		{"stock before points", models.Reward{PointsRequired: 1000, Stock: 0, IsActive: true}, ErrRewardOutOfStock},
		{"points before window", models.Reward{PointsRequired: 1000, Stock: 5, IsActive: true, EndDate: &yesterday}, ErrInsufficientPoints},
		{"not started", models.Reward{PointsRequired: 100, Stock: 5, IsActive: true, StartDate: &tomorrow}, ErrRewardNotStarted},
		{"expired", models.Reward{PointsRequired: 100, Stock: 5, IsActive: true, StartDate: &past, EndDate: &yesterday}, ErrRewardExpired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reward := env.createReward(t, tc.reward)
			_, err := env.redemptions.Redeem(ctx, NewPrincipal(user.ID), RedeemInput{RewardID: reward.ID})
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v got %v", tc.want, err)
			}
			if got := env.reloadReward(t, reward.ID).Stock; got != tc.reward.Stock {
				t.Fatalf("stock changed on rejection: %d", got)
			}
		})
	}
	if got := env.reloadUser(t, user.ID).Points; got != 300 {
		t.Fatalf("points changed on rejection: %d", got)
	}
	if _, err := env.redemptions.Redeem(ctx, NewPrincipal(user.ID), RedeemInput{RewardID: 424242}); !errors.Is(err, ErrRewardNotFound) {
		t.Fatalf("want ErrRewardNotFound got %v", err)
	}
	if _, err := env.redemptions.Redeem(ctx, NewPrincipal(424242), RedeemInput{RewardID: 1}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound got %v", err)
	}
}

func TestRedemptionRejectRefundsAndRestocks(t *testing.T) {
	env := setupLoyaltyServiceTest(t)
	ctx := context.Background()
	referrer := env.createUser(t, "ref@example.com", 0)
	user := env.createUser(t, "refund@example.com", 800)
	if err := env.db.Model(&models.User{}).Where("id = ?", user.ID).Update("referred_by", referrer.ID).Error; err != nil {
		t.Fatalf("bind referrer failed: %v", err)
	}
	if err := env.db.Create(&models.ReferralTracking{ReferralCode: "AAAA0001", ReferrerID: referrer.ID, IsActive: true}).Error; err != nil {
		t.Fatalf("create tracking failed: %v", err)
	}
	reward := env.createReward(t, models.Reward{PointsRequired: 300, Stock: 2, IsActive: true})

	redemption, err := env.redemptions.Redeem(ctx, NewPrincipal(user.ID), RedeemInput{RewardID: reward.ID})
	if err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	var tracking models.ReferralTracking
	env.db.Where("referral_code = ?", "AAAA0001").First(&tracking)
	if tracking.TotalPointsSpent != 300 {
		t.Fatalf("referral spent want 300 got %d", tracking.TotalPointsSpent)
	}

	if _, err := env.redemptions.UpdateStatus(ctx, 7, redemption.ID, UpdateRedemptionInput{Status: constants.RedemptionStatusDelivered}); !errors.Is(err, ErrRedemptionStatusInvalid) {
		t.Fatalf("pending -> delivered must be rejected, got %v", err)
	}
	updated, err := env.redemptions.UpdateStatus(ctx, 7, redemption.ID, UpdateRedemptionInput{Status: constants.RedemptionStatusRejected, AdminNote: "address missing"})
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if updated.Status != constants.RedemptionStatusRejected || updated.ProcessedBy == nil || *updated.ProcessedBy != 7 {
		t.Fatalf("unexpected redemption after reject: %+v", updated)
	}
	if got := env.reloadUser(t, user.ID).Points; got != 800 {
		t.Fatalf("points want 800 after refund got %d", got)
	}
	if got := env.reloadReward(t, reward.ID).Stock; got != 2 {
		t.Fatalf("stock want 2 after refund got %d", got)
	}
	env.db.Where("referral_code = ?", "AAAA0001").First(&tracking)
	if tracking.TotalPointsSpent != 0 {
		t.Fatalf("referral spent want 0 after refund got %d", tracking.TotalPointsSpent)
	}
	if _, err := env.redemptions.UpdateStatus(ctx, 7, redemption.ID, UpdateRedemptionInput{Status: constants.RedemptionStatusApproved}); !errors.Is(err, ErrRedemptionStatusInvalid) {
		t.Fatalf("rejected is terminal, got %v", err)
	}
}

func TestRedemptionHappyPathTransitions(t *testing.T) {
	env := setupLoyaltyServiceTest(t)
	ctx := context.Background()
	user := env.createUser(t, "ship@example.com", 100)
	reward := env.createReward(t, models.Reward{PointsRequired: 100, Stock: 1, IsActive: true, Category: constants.RewardCategoryProduct})
	redemption, err := env.redemptions.Redeem(ctx, NewPrincipal(user.ID), RedeemInput{RewardID: reward.ID})
	if err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	for _, status := range []string{constants.RedemptionStatusApproved, constants.RedemptionStatusShipped, constants.RedemptionStatusDelivered} {
		updated, err := env.redemptions.UpdateStatus(ctx, 1, redemption.ID, UpdateRedemptionInput{Status: status, TrackingNumber: "TRK-1"})
		if err != nil {
			t.Fatalf("transition to %s failed: %v", status, err)
		}
		if updated.Status != status {
			t.Fatalf("status want %s got %s", status, updated.Status)
		}
	}

	items, total, err := env.redemptions.ListHistory(NewPrincipal(user.ID), 1, 20)
	if err != nil || total != 1 || len(items) != 1 {
		t.Fatalf("history failed: total=%d len=%d err=%v", total, len(items), err)
	}
	if items[0].Reward == nil || items[0].Reward.ID != reward.ID || items[0].TrackingNumber != "TRK-1" {
		t.Fatalf("unexpected history item: %+v", items[0])
	}
}
