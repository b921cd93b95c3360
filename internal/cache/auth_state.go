package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/piezasya/loyalty/internal/models"
)

const (
	authStateTTL       = 10 * time.Minute
	userAuthKeyPrefix  = "loyalty:auth:user"
	adminAuthKeyPrefix = "loyalty:auth:admin"
)

// UserAuthState 会员鉴权快照，token_invalid_before 为 Unix 秒，0 表示未设置
type UserAuthState struct {
	UserID             uint   `json:"user_id"`
	Status             string `json:"status"`
	TokenVersion       uint64 `json:"token_version"`
	TokenInvalidBefore int64  `json:"token_invalid_before"`
	CachedAt           int64  `json:"cached_at"`
}

// AdminAuthState 后台管理员鉴权快照
type AdminAuthState struct {
	AdminID      uint   `json:"admin_id"`
	Username     string `json:"username"`
	TokenVersion uint64 `json:"token_version"`
	IsSuper      bool   `json:"is_super"`
	CachedAt     int64  `json:"cached_at"`
}

func authStateKey(prefix string, id uint) string {
	return fmt.Sprintf("%s:%d", prefix, id)
}

// BuildUserAuthState 由会员记录生成快照
func BuildUserAuthState(user *models.User) *UserAuthState {
	if user == nil {
		return nil
	}
	state := &UserAuthState{
		UserID:       user.ID,
		Status:       user.Status,
		TokenVersion: user.TokenVersion,
		CachedAt:     time.Now().Unix(),
	}
	if user.TokenInvalidBefore != nil {
		state.TokenInvalidBefore = user.TokenInvalidBefore.Unix()
	}
	return state
}

// BuildAdminAuthState 由管理员记录生成快照
func BuildAdminAuthState(admin *models.Admin) *AdminAuthState {
	if admin == nil {
		return nil
	}
	return &AdminAuthState{
		AdminID:      admin.ID,
		Username:     admin.Username,
		TokenVersion: admin.TokenVersion,
		IsSuper:      admin.IsSuper,
		CachedAt:     time.Now().Unix(),
	}
}

func loadAuthState[T any](ctx context.Context, prefix string, id uint) (*T, bool, error) {
	if id == 0 {
		return nil, false, nil
	}
	state := new(T)
	hit, err := GetJSON(ctx, authStateKey(prefix, id), state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return state, true, nil
}

// GetUserAuthState 读取会员快照
func GetUserAuthState(ctx context.Context, userID uint) (*UserAuthState, bool, error) {
	return loadAuthState[UserAuthState](ctx, userAuthKeyPrefix, userID)
}

// SetUserAuthState 写入会员快照
func SetUserAuthState(ctx context.Context, state *UserAuthState) error {
	if state == nil || state.UserID == 0 {
		return nil
	}
	return SetJSON(ctx, authStateKey(userAuthKeyPrefix, state.UserID), state, authStateTTL)
}

// DelUserAuthState 状态或 Token 版本变更后清除会员快照
func DelUserAuthState(ctx context.Context, userIDs ...uint) error {
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if id != 0 {
			keys = append(keys, authStateKey(userAuthKeyPrefix, id))
		}
	}
	return Del(ctx, keys...)
}

// GetAdminAuthState 读取管理员快照
func GetAdminAuthState(ctx context.Context, adminID uint) (*AdminAuthState, bool, error) {
	return loadAuthState[AdminAuthState](ctx, adminAuthKeyPrefix, adminID)
}

// SetAdminAuthState 写入管理员快照
func SetAdminAuthState(ctx context.Context, state *AdminAuthState) error {
	if state == nil || state.AdminID == 0 {
		return nil
	}
	return SetJSON(ctx, authStateKey(adminAuthKeyPrefix, state.AdminID), state, authStateTTL)
}
