package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/piezasya/loyalty/internal/http/response"
	"github.com/piezasya/loyalty/internal/i18n"
	"github.com/piezasya/loyalty/internal/logger"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const localLimiterCacheSize = 4096

// RateLimitKeyFunc 生成限流 key 的函数
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 限流规则
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	BlockSeconds  int
	MessageKey    string
}

func (r RateLimitRule) enabled() bool {
	return r.WindowSeconds > 0 && r.MaxRequests > 0
}

// 超限后 key 的过期时间被延长到封禁时长
var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
if tonumber(ARGV[3]) > 0 and current == tonumber(ARGV[2]) + 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[3])
end
local ttl = redis.call("TTL", KEYS[1])
return {current, ttl}
`)

// RateLimitMiddleware 频率限制中间件：Redis 可用时使用固定窗口计数，否则退化为进程内令牌桶
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	if !rule.enabled() {
		return func(c *gin.Context) { c.Next() }
	}
	var local *localLimiter
	if client == nil {
		local = newLocalLimiter(rule)
	}

	return func(c *gin.Context) {
		key := ""
		if keyFunc != nil {
			key = strings.TrimSpace(keyFunc(c))
		}
		if key == "" {
			key = c.ClientIP()
		}
		if rule.Prefix != "" {
			key = fmt.Sprintf("%s:%s", rule.Prefix, key)
		}

		var (
			waitSeconds int
			limited     bool
		)
		if local != nil {
			waitSeconds, limited = local.take(key, time.Now())
		} else {
			var err error
			waitSeconds, limited, err = redisTake(c, client, rule, key)
			if err != nil {
				// Redis 故障时放行
				logger.Warnw("rate_limit_redis_failed", "key", key, "error", err)
				c.Next()
				return
			}
		}

		if limited {
			msgKey := strings.TrimSpace(rule.MessageKey)
			if msgKey == "" {
				msgKey = "error.rate_limited"
			}
			c.Header("Retry-After", fmt.Sprintf("%d", waitSeconds))
			msg := i18n.Sprintf(i18n.ResolveLocale(c), msgKey, waitSeconds)
			response.AbortError(c, response.CodeTooManyRequests, msg)
			return
		}

		c.Next()
	}
}

func redisTake(c *gin.Context, client *redis.Client, rule RateLimitRule, key string) (int, bool, error) {
	result, err := rateLimitScript.Run(c.Request.Context(), client, []string{key}, rule.WindowSeconds, rule.MaxRequests, rule.BlockSeconds).Result()
	if err != nil {
		return 0, false, err
	}
	values, ok := result.([]interface{})
	if !ok || len(values) < 2 {
		return 0, false, fmt.Errorf("unexpected rate limit script result: %v", result)
	}
	count, ok := toInt64(values[0])
	if !ok {
		return 0, false, fmt.Errorf("unexpected rate limit counter: %v", values[0])
	}
	if count <= int64(rule.MaxRequests) {
		return 0, false, nil
	}
	ttlSeconds, _ := toInt64(values[1])
	return resolveWaitSeconds(int(ttlSeconds), rule), true, nil
}

func resolveWaitSeconds(ttlSeconds int, rule RateLimitRule) int {
	wait := ttlSeconds
	if wait < 1 {
		wait = rule.BlockSeconds
	}
	if wait < 1 {
		wait = rule.WindowSeconds
	}
	if wait < 1 {
		wait = 1
	}
	return wait
}

// localLimiter 进程内限流器，按 key 维护令牌桶并在超限后封禁
type localLimiter struct {
	rule     RateLimitRule
	mu       sync.Mutex
	limiters *lru.Cache[string, *localBucket]
}

type localBucket struct {
	limiter      *rate.Limiter
	blockedUntil time.Time
}

func newLocalLimiter(rule RateLimitRule) *localLimiter {
	limiters, _ := lru.New[string, *localBucket](localLimiterCacheSize)
	return &localLimiter{rule: rule, limiters: limiters}
}

func (l *localLimiter) take(key string, now time.Time) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	bucket, ok := l.limiters.Get(key)
	if !ok {
		every := time.Duration(l.rule.WindowSeconds) * time.Second / time.Duration(l.rule.MaxRequests)
		bucket = &localBucket{limiter: rate.NewLimiter(rate.Every(every), l.rule.MaxRequests)}
		l.limiters.Add(key, bucket)
	}
	if now.Before(bucket.blockedUntil) {
		return int(math.Ceil(bucket.blockedUntil.Sub(now).Seconds())), true
	}
	if bucket.limiter.AllowN(now, 1) {
		return 0, false
	}
	if l.rule.BlockSeconds > 0 {
		bucket.blockedUntil = now.Add(time.Duration(l.rule.BlockSeconds) * time.Second)
		return l.rule.BlockSeconds, true
	}
	reservation := bucket.limiter.ReserveN(now, 1)
	wait := reservation.DelayFrom(now)
	reservation.CancelAt(now)
	return resolveWaitSeconds(int(math.Ceil(wait.Seconds())), l.rule), true
}

// KeyByIP 使用 IP 作为限流 key
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByIPAndParam 使用 IP + 路径参数作为限流 key
func KeyByIPAndParam(name string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.ToUpper(strings.TrimSpace(c.Param(name)))
		if value == "" {
			return c.ClientIP()
		}
		return fmt.Sprintf("%s|%s", value, c.ClientIP())
	}
}

// KeyByIPAndJSONField 使用 IP + JSON 字段作为限流 key
func KeyByIPAndJSONField(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.ToLower(strings.TrimSpace(readJSONField(c, field)))
		if value == "" {
			return c.ClientIP()
		}
		return fmt.Sprintf("%s|%s", value, c.ClientIP())
	}
}

func readJSONField(c *gin.Context, field string) string {
	if c == nil || c.Request == nil || c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
	if len(body) == 0 {
		return ""
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if text, ok := payload[field].(string); ok {
		return strings.TrimSpace(text)
	}
	return ""
}

func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint64:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint8:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
