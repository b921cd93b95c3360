package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/piezasya/loyalty/internal/config"
	"github.com/piezasya/loyalty/internal/constants"

	"github.com/redis/go-redis/v9"
)

const redisPingTimeout = 2 * time.Second

var (
	redisClient  *redis.Client
	redisPrefix  = constants.RedisPrefixDefault
	redisEnabled bool
)

// InitRedis 连接 Redis 并探活；失败时关闭连接、保持禁用，调用方继续使用进程内缓存
func InitRedis(cfg *config.RedisConfig) error {
	redisEnabled = false
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	redisPrefix = strings.TrimSpace(cfg.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	client := redis.NewClient(redisOptions(cfg))
	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("ping redis %s: %w", client.Options().Addr, err)
	}
	redisClient = client
	redisEnabled = true
	return nil
}

func redisOptions(cfg *config.RedisConfig) *redis.Options {
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	return &redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}
}

// Close 关闭 Redis 客户端
func Close() error {
	if redisClient == nil {
		return nil
	}
	err := redisClient.Close()
	redisClient = nil
	redisEnabled = false
	return err
}

// Enabled Redis 已连通
func Enabled() bool {
	return redisEnabled && redisClient != nil
}

// Client 未启用时返回 nil，限流器据此退回本地令牌桶
func Client() *redis.Client {
	if !Enabled() {
		return nil
	}
	return redisClient
}

// GetJSON 读取 JSON 缓存，Redis 未启用时读进程内缓存
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !Enabled() {
		return localGet(key, dest)
	}
	val, err := redisClient.Get(ctx, BuildKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 写入 JSON 缓存
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if !Enabled() {
		localSet(key, payload, ttl)
		return nil
	}
	return redisClient.Set(ctx, BuildKey(key), payload, ttl).Err()
}

// Del 删除缓存
func Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if !Enabled() {
		for _, key := range keys {
			localDel(key)
		}
		return nil
	}
	full := make([]string, len(keys))
	for i, key := range keys {
		full[i] = BuildKey(key)
	}
	return redisClient.Del(ctx, full...).Err()
}

// BuildKey 加上全局前缀
func BuildKey(key string) string {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return redisPrefix
	}
	return redisPrefix + ":" + trimmed
}
