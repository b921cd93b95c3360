package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/piezasya/loyalty/internal/config"
	"github.com/piezasya/loyalty/internal/constants"
	"github.com/piezasya/loyalty/internal/models"
	"github.com/piezasya/loyalty/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type apiTestEnv struct {
	db        *gorm.DB
	engine    *gin.Engine
	container *provider.Container
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func setupAPITest(t *testing.T) *apiTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:router_api_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	models.DB = db

	cfg := config.Default()
	cfg.Redis.Enabled = false
	cfg.Queue.Enabled = false
	cfg.Metrics.Enabled = false
	cfg.JWT.SecretKey = "api-admin-secret"
	cfg.UserJWT.SecretKey = "api-user-secret"

	container := provider.NewContainer(cfg)
	t.Cleanup(container.Close)
	return &apiTestEnv{db: db, engine: SetupRouter(cfg, container), container: container}
}

func (env *apiTestEnv) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, apiEnvelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)

	var envelope apiEnvelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	}
	return w, envelope
}

func (env *apiTestEnv) userToken(t *testing.T, email string, points int) (*models.User, string) {
	t.Helper()
	user := &models.User{Email: email, Status: constants.UserStatusActive, Points: points, LoyaltyLevel: constants.LoyaltyLevelBronze}
	require.NoError(t, env.db.Create(user).Error)
	token, _, err := env.container.AuthService.GenerateUserJWT(user, 1)
	require.NoError(t, err)
	return user, token
}

func (env *apiTestEnv) adminToken(t *testing.T) string {
	t.Helper()
	require.NoError(t, models.InitDefaultAdmin(env.db, "operador", "Clave-Segura-2026"))
	w, body := env.do(t, http.MethodPost, "/api/v1/admin/login", "", gin.H{"username": "operador", "password": "Clave-Segura-2026"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &login))
	require.NotEmpty(t, login.Token)
	return login.Token
}

func TestLoyaltyAPIRedeemAndAdminReject(t *testing.T) {
	env := setupAPITest(t)
	user, token := env.userToken(t, "cliente@example.com", 1000)
	reward := models.Reward{Name: "Aceite sintético", Slug: "aceite-sintetico", Category: constants.RewardCategoryProduct, PointsRequired: 600, Stock: 2, IsActive: true}
	require.NoError(t, env.db.Create(&reward).Error)

	w, body := env.do(t, http.MethodGet, "/api/v1/loyalty/rewards", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var rewards []struct {
		ID        uint `json:"id"`
		CanAfford bool `json:"can_afford"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &rewards))
	require.Len(t, rewards, 1)
	assert.True(t, rewards[0].CanAfford)

	w, body = env.do(t, http.MethodPost, "/api/v1/loyalty/redeem", token, gin.H{"reward_id": reward.ID, "shipping_address": "Av. Libertador 100"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var redemption struct {
		ID     uint   `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &redemption))
	assert.Equal(t, constants.RedemptionStatusPending, redemption.Status)

	// 余额不足
	w, body = env.do(t, http.MethodPost, "/api/v1/loyalty/redeem", token, gin.H{"reward_id": reward.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, body.Success)

	path := fmt.Sprintf("/api/v1/admin/redemptions/%d", redemption.ID)
	w, _ = env.do(t, http.MethodPatch, path, env.adminToken(t), gin.H{"status": constants.RedemptionStatusRejected, "admin_note": "sin stock en bodega"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var refreshed models.User
	require.NoError(t, env.db.First(&refreshed, user.ID).Error)
	assert.Equal(t, 1000, refreshed.Points)
	var restocked models.Reward
	require.NoError(t, env.db.First(&restocked, reward.ID).Error)
	assert.Equal(t, 2, restocked.Stock)
}

func TestLoyaltyAPIDisableUserRevokesToken(t *testing.T) {
	env := setupAPITest(t)
	user, token := env.userToken(t, "suspendido@example.com", 50)

	w, _ := env.do(t, http.MethodGet, "/api/v1/loyalty/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	adminToken := env.adminToken(t)

	path := fmt.Sprintf("/api/v1/admin/users/%d/status", user.ID)
	w, _ = env.do(t, http.MethodPatch, path, adminToken, gin.H{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do(t, http.MethodPatch, path, adminToken, gin.H{"status": constants.UserStatusDisabled})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, _ = env.do(t, http.MethodGet, "/api/v1/loyalty/stats", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = env.do(t, http.MethodPatch, path, adminToken, gin.H{"status": constants.UserStatusActive})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, _ = env.do(t, http.MethodGet, "/api/v1/loyalty/stats", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var refreshed models.User
	require.NoError(t, env.db.First(&refreshed, user.ID).Error)
	fresh, _, err := env.container.AuthService.GenerateUserJWT(&refreshed, 1)
	require.NoError(t, err)
	w, _ = env.do(t, http.MethodGet, "/api/v1/loyalty/stats", fresh, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestLoyaltyAPIOrderCompletedIsIdempotent(t *testing.T) {
	env := setupAPITest(t)
	user, _ := env.userToken(t, "comprador@example.com", 0)
	adminToken := env.adminToken(t)

	w, _ := env.do(t, http.MethodPost, "/api/v1/admin/orders/completed", adminToken, gin.H{"user_id": user.ID, "order_ref": "PYA-2001", "amount": "abc"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var result struct {
		Duplicate bool `json:"duplicate"`
	}
	for i, wantDuplicate := range []bool{false, true} {
		w, body := env.do(t, http.MethodPost, "/api/v1/admin/orders/completed", adminToken, gin.H{"user_id": user.ID, "order_ref": "PYA-2001", "amount": "120.50"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		require.NoError(t, json.Unmarshal(body.Data, &result))
		assert.Equal(t, wantDuplicate, result.Duplicate, "attempt %d", i)
	}

	var refreshed models.User
	require.NoError(t, env.db.First(&refreshed, user.ID).Error)
	assert.Equal(t, 1, refreshed.TotalPurchases)
}

func TestLoyaltyAPIReferralFlow(t *testing.T) {
	env := setupAPITest(t)
	_, token := env.userToken(t, "referente@example.com", 0)

	w, body := env.do(t, http.MethodGet, "/api/v1/loyalty/referral-code", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var code struct {
		ReferralCode string `json:"referral_code"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &code))
	require.Len(t, code.ReferralCode, 8)

	w, _ = env.do(t, http.MethodGet, "/api/v1/loyalty/track-click/"+code.ReferralCode, "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, _ = env.do(t, http.MethodGet, "/api/v1/loyalty/track-click/FFFFFFFF", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body = env.do(t, http.MethodGet, "/api/v1/loyalty/tracking-stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var stats struct {
		Clicks int `json:"clicks"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &stats))
	assert.Equal(t, 1, stats.Clicks)

	w, _ = env.do(t, http.MethodPost, "/api/v1/loyalty/verify-referral", token, gin.H{"code": code.ReferralCode})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, _ = env.do(t, http.MethodPost, "/api/v1/loyalty/verify-referral", token, gin.H{"referral_code": code.ReferralCode})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, _ = env.do(t, http.MethodPost, "/api/v1/loyalty/verify-referral", token, gin.H{"code": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = env.do(t, http.MethodPost, "/api/v1/loyalty/verify-referral", token, gin.H{"code": "ABCDEF12"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLoyaltyAPIRedeemMissingRewardIsBadRequest(t *testing.T) {
	env := setupAPITest(t)
	_, token := env.userToken(t, "sin-recompensa@example.com", 600)

	w, body := env.do(t, http.MethodPost, "/api/v1/loyalty/redeem", token, gin.H{"reward_id": 424242})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.False(t, body.Success)
	assert.NotEmpty(t, body.Message)

	w, _ = env.do(t, http.MethodGet, "/api/v1/admin/rewards/424242", env.adminToken(t), nil)
	assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
}

func TestLoyaltyAPIReviewValidation(t *testing.T) {
	env := setupAPITest(t)
	_, token := env.userToken(t, "resena@example.com", 0)

	w, body := env.do(t, http.MethodPost, "/api/v1/loyalty/review", token, gin.H{"rating": 4, "comment": "Llegó rápido", "category": "delivery"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, body.Success)

	w, _ = env.do(t, http.MethodPost, "/api/v1/loyalty/review", token, gin.H{"rating": 9, "comment": "x", "category": "delivery"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do(t, http.MethodGet, "/api/v1/loyalty/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
