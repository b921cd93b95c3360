package shared

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/piezasya/loyalty/internal/logger"
	"github.com/piezasya/loyalty/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParsePagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		url         string
		page, limit int
	}{
		{"/", 1, 20},
		{"/?page=3&limit=5", 3, 5},
		{"/?page=2&page_size=50", 2, 50},
		{"/?page=-1&limit=1000", 1, 100},
		{"/?limit=abc", 1, 20},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, tc.url, nil)
		page, limit := ParsePagination(c)
		if page != tc.page || limit != tc.limit {
			t.Fatalf("%s: want %d/%d got %d/%d", tc.url, tc.page, tc.limit, page, limit)
		}
	}
}

func TestRespondLoyaltyErrorMapsSentinels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{service.ErrInsufficientPoints, http.StatusBadRequest, "Insufficient points"},
		{fmt.Errorf("redeem: %w", service.ErrRewardNotFound), http.StatusNotFound, "Reward not found"},
		{service.ErrReferralCodeNotFound, http.StatusNotFound, "Referral code not found"},
		{fmt.Errorf("db down"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/?lang=en-US", nil)
		RespondLoyaltyError(c, tc.err)
		if w.Code != tc.status {
			t.Fatalf("%v: status want %d got %d", tc.err, tc.status, w.Code)
		}
		var body struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode body failed: %v", err)
		}
		if body.Success || body.Message != tc.msg {
			t.Fatalf("%v: unexpected body %+v", tc.err, body)
		}
	}
}

func TestParseUintParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: "0"}}
	if _, ok := ParseUintParam(c, "id"); ok || w.Code != http.StatusBadRequest {
		t.Fatalf("zero id must be rejected, status=%d", w.Code)
	}
	c2, _ := gin.CreateTestContext(httptest.NewRecorder())
	c2.Params = gin.Params{{Key: "id", Value: "42"}}
	if id, ok := ParseUintParam(c2, "id"); !ok || id != 42 {
		t.Fatalf("want 42 got %d", id)
	}
}

func TestRespondRedeemErrorTreatsMissingAsBadRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("redeem: %w", service.ErrRewardNotFound), http.StatusBadRequest},
		{service.ErrUserNotFound, http.StatusBadRequest},
		{service.ErrRewardOutOfStock, http.StatusBadRequest},
		{fmt.Errorf("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/?lang=en-US", nil)
		RespondRedeemError(c, tc.err)
		if w.Code != tc.status {
			t.Fatalf("%v: status want %d got %d", tc.err, tc.status, w.Code)
		}
	}
}

func TestMappedErrorLoggedAsRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	previous := logger.L
	logger.L = zap.New(core)
	t.Cleanup(func() { logger.L = previous })

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	RespondLoyaltyError(c, service.ErrInsufficientPoints)

	rejected := logs.FilterMessage("handler_rejected").All()
	if len(rejected) != 1 {
		t.Fatalf("handler_rejected entries want 1 got %d", len(rejected))
	}
	if rejected[0].Level != zapcore.WarnLevel {
		t.Fatalf("level want warn got %s", rejected[0].Level)
	}
	if got := rejected[0].ContextMap()["key"]; got != "error.insufficient_points" {
		t.Fatalf("key field want error.insufficient_points got %v", got)
	}
}
