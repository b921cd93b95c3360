package service

import (
	"context"
	"errors"
	"testing"

	"github.com/piezasya/loyalty/internal/constants"
	"github.com/piezasya/loyalty/internal/models"
)

func TestProcessReviewAwardsPoints(t *testing.T) {
	env := setupLoyaltyServiceTest(t)
	user := env.createUser(t, "reviewer@example.com", 0)

	result, err := env.reviews.ProcessReview(context.Background(), NewPrincipal(user.ID), ReviewInput{
		ProductID: "sku-42",
		Rating:    5,
		Title:     " Great ",
		Comment:   "Works perfectly",
		Category:  "App",
	})
	if err != nil {
		t.Fatalf("process review failed: %v", err)
	}
	if result.PointsEarned != 500 || !result.Review.IsVerified || result.Review.Category != constants.ReviewCategoryApp {
		t.Fatalf("unexpected result: points=%d review=%+v", result.PointsEarned, result.Review)
	}
	if got := env.reloadUser(t, user.ID).Points; got != 500 {
		t.Fatalf("points want 500 got %d", got)
	}

	var activity models.Activity
	if err := env.db.Where("user_id = ?", user.ID).First(&activity).Error; err != nil {
		t.Fatalf("load activity failed: %v", err)
	}
	payload, err := activity.Payload()
	if err != nil {
		t.Fatalf("decode payload failed: %v", err)
	}
	reviewPayload, ok := payload.(*models.ReviewRewardPayload)
	if !ok || reviewPayload.ReviewID != result.Review.ID || reviewPayload.Rating != 5 {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

func TestProcessReviewValidation(t *testing.T) {
	env := setupLoyaltyServiceTest(t)
	user := env.createUser(t, "invalid-review@example.com", 0)
	ctx := context.Background()
	cases := []struct {
		name  string
		input ReviewInput
		want  error
	}{
		{"rating zero", ReviewInput{Rating: 0, Comment: "x", Category: "product"}, ErrReviewRatingInvalid},
		{"rating six", ReviewInput{Rating: 6, Comment: "x", Category: "product"}, ErrReviewRatingInvalid},
		{"blank comment", ReviewInput{Rating: 3, Comment: "  ", Category: "product"}, ErrReviewCommentRequired},
		{"missing category", ReviewInput{Rating: 3, Comment: "ok"}, ErrReviewCategoryInvalid},
		{"unknown category", ReviewInput{Rating: 3, Comment: "ok", Category: "shipping"}, ErrReviewCategoryInvalid},
	}
	for _, tc := range cases {
		if _, err := env.reviews.ProcessReview(ctx, NewPrincipal(user.ID), tc.input); !errors.Is(err, tc.want) {
			t.Fatalf("%s: want %v got %v", tc.name, tc.want, err)
		}
	}
	if count := env.countRows(t, &models.Review{}); count != 0 {
		t.Fatalf("invalid reviews must not be stored, got %d", count)
	}
}

func TestProcessReviewUnknownUserRollsBack(t *testing.T) {
	env := setupLoyaltyServiceTest(t)
	_, err := env.reviews.ProcessReview(context.Background(), NewPrincipal(777), ReviewInput{Rating: 4, Comment: "ok", Category: "service"})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound got %v", err)
	}
	if count := env.countRows(t, &models.Review{}); count != 0 {
		t.Fatalf("review must be rolled back, got %d", count)
	}
}

func TestReportAndReplyReview(t *testing.T) {
	env := setupLoyaltyServiceTest(t)
	ctx := context.Background()
	author := env.createUser(t, "author@example.com", 0)
	reporter := env.createUser(t, "reporter@example.com", 0)
	result, err := env.reviews.ProcessReview(ctx, NewPrincipal(author.ID), ReviewInput{Rating: 2, Comment: "meh", Category: "delivery"})
	if err != nil {
		t.Fatalf("process review failed: %v", err)
	}
	reviewID := result.Review.ID

	if err := env.reviews.ReportReview(NewPrincipal(author.ID), reviewID, "spam"); !errors.Is(err, ErrReviewReportOwn) {
		t.Fatalf("want ErrReviewReportOwn got %v", err)
	}
	if err := env.reviews.ReportReview(NewPrincipal(reporter.ID), reviewID, "spam"); err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if err := env.reviews.ReportReview(NewPrincipal(reporter.ID), reviewID, "spam again"); !errors.Is(err, ErrReviewAlreadyReported) {
		t.Fatalf("want ErrReviewAlreadyReported got %v", err)
	}

	if _, err := env.reviews.ReplyReview(1, reviewID, "   "); !errors.Is(err, ErrReviewReplyRequired) {
		t.Fatalf("want ErrReviewReplyRequired got %v", err)
	}
	replied, err := env.reviews.ReplyReview(1, reviewID, "Sorry for the delay")
	if err != nil {
		t.Fatalf("reply failed: %v", err)
	}
	if replied.Reply != "Sorry for the delay" {
		t.Fatalf("unexpected reply: %q", replied.Reply)
	}

	items, total, err := env.reviews.ListUserReviews(NewPrincipal(author.ID), 1, 10)
	if err != nil || total != 1 {
		t.Fatalf("list reviews failed: total=%d err=%v", total, err)
	}
	if items[0].ReportCount != 1 || items[0].Reply == "" {
		t.Fatalf("unexpected review state: %+v", items[0])
	}
}
