package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLoyaltyConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 500, cfg.Loyalty.ReferrerBonusPoints)
	assert.Equal(t, 200, cfg.Loyalty.RefereeBonusPoints)
	assert.Equal(t, 2000, cfg.Loyalty.Tiers.Silver.Points)
	assert.Equal(t, 1000.0, cfg.Loyalty.Tiers.Platinum.Spent)
	assert.Equal(t, 100, cfg.Loyalty.ReviewBasePoints["app"])
	assert.Equal(t, 5, cfg.Security.LoginRateLimit.MaxRequests)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, 5, cfg.Queue.Queues["critical"])

	dbOpts := cfg.Database.ToDBOptions()
	assert.Equal(t, 200, dbOpts.SlowQueryMs)
	assert.False(t, dbOpts.LogAllQueries)
	assert.Equal(t, 1, dbOpts.MaxOpenConns)
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
server:
  port: "9090"
loyalty:
  referrer_bonus_points: 750
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), content, 0o600))

	t.Chdir(dir)
	t.Setenv("USER_JWT_SECRET", "from-env-secret")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 750, cfg.Loyalty.ReferrerBonusPoints)
	assert.Equal(t, 200, cfg.Loyalty.RefereeBonusPoints)
	assert.Equal(t, "from-env-secret", cfg.UserJWT.SecretKey)
}

func TestLogConfigToLoggerOptions(t *testing.T) {
	opts := LogConfig{Level: "warn", Stdout: true, Dir: "/var/log/pya", Filename: "api.log", MaxSizeMB: 10, MaxBackups: 2, MaxAgeDays: 3, Compress: true}.ToLoggerOptions()
	assert.Equal(t, "warn", opts.Level)
	assert.True(t, opts.Stdout)
	assert.Equal(t, "/var/log/pya", opts.Dir)
	assert.Equal(t, "api.log", opts.Filename)
	assert.Equal(t, 10, opts.MaxSizeMB)
	assert.True(t, opts.Compress)
}
