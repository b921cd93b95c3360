package service

import (
	"context"
	"errors"
	"testing"

	"github.com/piezasya/loyalty/internal/config"
	"github.com/piezasya/loyalty/internal/constants"
	"github.com/piezasya/loyalty/internal/models"
	"github.com/piezasya/loyalty/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(t *testing.T, env *loyaltyTestEnv) *AuthService {
	t.Helper()
	cfg := config.Default()
	cfg.JWT.SecretKey = "admin-test-secret"
	cfg.UserJWT.SecretKey = "user-test-secret"
	return NewAuthService(cfg, repository.NewAdminRepository(env.db), env.userRepo)
}

func TestAuthServiceAdminLogin(t *testing.T) {
	env := setupLoyaltyServiceTest(t)
	auth := newTestAuthService(t, env)
	require.NoError(t, models.InitDefaultAdmin(env.db, "operador", "Clave-Segura-2026"))

	_, _, _, err := auth.Login(context.Background(), "operador", "wrong")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
	_, _, _, err = auth.Login(context.Background(), "nobody", "Clave-Segura-2026")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	admin, token, expiresAt, err := auth.Login(context.Background(), " operador ", "Clave-Segura-2026")
	require.NoError(t, err)
	require.NotNil(t, admin.LastLoginAt)
	assert.False(t, expiresAt.IsZero())

	claims, err := auth.ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, claims.AdminID)
	assert.Equal(t, "operador", claims.Username)

	state, err := auth.ResolveAdminAuthState(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.True(t, state.IsSuper)
}

func TestAuthServiceUserTokenRoundTrip(t *testing.T) {
	env := setupLoyaltyServiceTest(t)
	auth := newTestAuthService(t, env)
	user := env.createUser(t, "token@example.com", 0)

	token, _, err := auth.GenerateUserJWT(user, 2)
	require.NoError(t, err)

	claims, err := auth.ParseUserJWT(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "token@example.com", claims.Email)

	// 用户 token 不能当作管理员 token 使用
	_, err = auth.ParseJWT(token)
	assert.Error(t, err)

	state, err := auth.ResolveUserAuthState(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, state.UserID)

	_, err = auth.ResolveUserAuthState(context.Background(), user.ID+100)
	assert.True(t, errors.Is(err, ErrUserNotFound))
}

func TestAuthServiceSetUserStatusRevokesTokens(t *testing.T) {
	env := setupLoyaltyServiceTest(t)
	auth := newTestAuthService(t, env)
	user := env.createUser(t, "bloqueo@example.com", 0)

	before, err := auth.ResolveUserAuthState(context.Background(), user.ID)
	require.NoError(t, err)

	_, err = auth.SetUserStatus(context.Background(), user.ID, "banned")
	assert.True(t, errors.Is(err, ErrUserStatusInvalid))
	_, err = auth.SetUserStatus(context.Background(), user.ID+100, constants.UserStatusDisabled)
	assert.True(t, errors.Is(err, ErrUserNotFound))

	updated, err := auth.SetUserStatus(context.Background(), user.ID, " Disabled ")
	require.NoError(t, err)
	assert.Equal(t, constants.UserStatusDisabled, updated.Status)
	assert.Equal(t, before.TokenVersion+1, updated.TokenVersion)
	require.NotNil(t, updated.TokenInvalidBefore)

	after, err := auth.ResolveUserAuthState(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.UserStatusDisabled, after.Status)
	assert.Equal(t, updated.TokenVersion, after.TokenVersion)
}

func TestResolveExpireHours(t *testing.T) {
	assert.Equal(t, 12, resolveExpireHours(config.JWTConfig{ExpireHours: 12}, 24))
	assert.Equal(t, 24, resolveExpireHours(config.JWTConfig{}, 24))
}
