package service

import (
	"context"
	"errors"
	"testing"

	"github.com/piezasya/loyalty/internal/constants"
	"github.com/piezasya/loyalty/internal/models"

	"github.com/shopspring/decimal"
)

func TestPointsServiceAddPointsUpdatesBalanceLevelAndActivity(t *testing.T) {
	env := setupLoyaltyServiceTest(t)
	user := env.createUser(t, "points@example.com", 1900)
	if err := env.db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("total_spent", "250.00").Error; err != nil {
		t.Fatalf("seed total spent failed: %v", err)
	}

	change, err := env.points.AdjustPoints(context.Background(), 1, user.ID, 100, "goodwill")
	if err != nil {
		t.Fatalf("adjust points failed: %v", err)
	}
	if change.User.Points != 2000 {
		t.Fatalf("points want 2000 got %d", change.User.Points)
	}
	reloaded := env.reloadUser(t, user.ID)
	if reloaded.Points != 2000 || reloaded.LoyaltyLevel != constants.LoyaltyLevelSilver {
		t.Fatalf("unexpected user after add: points=%d level=%s", reloaded.Points, reloaded.LoyaltyLevel)
	}

	payload, err := change.Activity.Payload()
	if err != nil {
		t.Fatalf("decode payload failed: %v", err)
	}
	adjusted, ok := payload.(*models.PointsAdjustedPayload)
	if !ok || adjusted.AdminID != 1 || adjusted.Remark != "goodwill" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

func TestPointsServiceAddPointsErrors(t *testing.T) {
	env := setupLoyaltyServiceTest(t)
	user := env.createUser(t, "errors@example.com", 50)
	ctx := context.Background()

	if _, err := env.points.AddPoints(ctx, AddPointsInput{UserID: 9999, Points: 10, Payload: models.PointsAdjustedPayload{}}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound got %v", err)
	}
	if _, err := env.points.AddPoints(ctx, AddPointsInput{UserID: user.ID, Points: 0, Payload: models.PointsAdjustedPayload{}}); !errors.Is(err, ErrPointsInvalid) {
		t.Fatalf("want ErrPointsInvalid got %v", err)
	}
	if _, err := env.points.AddPoints(ctx, AddPointsInput{UserID: user.ID, Points: -60, Payload: models.PointsAdjustedPayload{}}); !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("want ErrInsufficientPoints got %v", err)
	}
	if got := env.reloadUser(t, user.ID).Points; got != 50 {
		t.Fatalf("failed debit must not change balance, got %d", got)
	}
	if count := env.countRows(t, &models.Activity{}); count != 0 {
		t.Fatalf("failed calls must not log activity, got %d", count)
	}
}

func TestPointsServiceRecordPurchaseIsIdempotent(t *testing.T) {
	env := setupLoyaltyServiceTest(t)
	user := env.createUser(t, "buyer@example.com", 0)
	ctx := context.Background()
	input := PurchaseInput{
		UserID:   user.ID,
		OrderRef: "ORD-1001",
		Amount:   models.NewMoneyFromDecimal(decimal.RequireFromString("120.75")),
	}

	purchase, created, err := env.points.RecordPurchase(ctx, input)
	if err != nil || !created {
		t.Fatalf("record purchase failed: created=%v err=%v", created, err)
	}
	if purchase.Points != 120 {
		t.Fatalf("purchase points want 120 got %d", purchase.Points)
	}
	_, created, err = env.points.RecordPurchase(ctx, input)
	if err != nil || created {
		t.Fatalf("replay should be a no-op: created=%v err=%v", created, err)
	}

	reloaded := env.reloadUser(t, user.ID)
	if reloaded.Points != 120 || reloaded.TotalPurchases != 1 {
		t.Fatalf("unexpected totals: points=%d purchases=%d", reloaded.Points, reloaded.TotalPurchases)
	}
	if !reloaded.TotalSpent.Decimal.Equal(decimal.RequireFromString("120.75")) {
		t.Fatalf("total spent want 120.75 got %s", reloaded.TotalSpent.String())
	}
}

func TestPointsServiceRecordPurchaseValidation(t *testing.T) {
	env := setupLoyaltyServiceTest(t)
	ctx := context.Background()
	if _, _, err := env.points.RecordPurchase(ctx, PurchaseInput{UserID: 1, Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(10))}); !errors.Is(err, ErrOrderRefRequired) {
		t.Fatalf("want ErrOrderRefRequired got %v", err)
	}
	if _, _, err := env.points.RecordPurchase(ctx, PurchaseInput{UserID: 1, OrderRef: "X"}); !errors.Is(err, ErrPurchaseAmountInvalid) {
		t.Fatalf("want ErrPurchaseAmountInvalid got %v", err)
	}
}

func TestPointsServiceListActivitiesFiltersByType(t *testing.T) {
	env := setupLoyaltyServiceTest(t)
	ctx := context.Background()
	user := env.createUser(t, "ledger@example.com", 0)
	other := env.createUser(t, "other@example.com", 0)

	for _, delta := range []int{100, 50} {
		if _, err := env.points.AdjustPoints(ctx, 1, user.ID, delta, "manual"); err != nil {
			t.Fatalf("adjust points failed: %v", err)
		}
	}
	if _, _, err := env.points.RecordPurchase(ctx, PurchaseInput{UserID: user.ID, OrderRef: "PYA-LEDGER-1", Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(30))}); err != nil {
		t.Fatalf("record purchase failed: %v", err)
	}
	if _, err := env.points.AdjustPoints(ctx, 1, other.ID, 10, "manual"); err != nil {
		t.Fatalf("adjust other user failed: %v", err)
	}

	items, total, err := env.points.ListActivities(NewPrincipal(user.ID), "", 1, 20)
	if err != nil {
		t.Fatalf("list activities failed: %v", err)
	}
	if total != 3 || len(items) != 3 {
		t.Fatalf("activities want 3 got total=%d len=%d", total, len(items))
	}

	items, total, err = env.points.ListActivities(NewPrincipal(user.ID), constants.ActivityTypePointsAdjusted, 1, 1)
	if err != nil {
		t.Fatalf("list filtered activities failed: %v", err)
	}
	if total != 2 || len(items) != 1 || items[0].Type != constants.ActivityTypePointsAdjusted {
		t.Fatalf("unexpected filtered page: total=%d items=%+v", total, items)
	}
}
