package router

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/piezasya/loyalty/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

var (
	defaultCORSMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodOptions}
	defaultCORSHeaders = []string{"Content-Type", "Authorization", "Accept-Language", requestIDHeader}
)

// corsPolicy 启动时预先计算好的跨域响应头
type corsPolicy struct {
	anyOrigin   bool
	origins     map[string]struct{}
	credentials bool
	methods     string
	headers     string
	maxAge      string
}

func newCORSPolicy(cfg config.CORSConfig) *corsPolicy {
	policy := &corsPolicy{
		origins:     make(map[string]struct{}, len(cfg.AllowedOrigins)),
		credentials: cfg.AllowCredentials,
		methods:     strings.Join(orDefault(cfg.AllowedMethods, defaultCORSMethods), ", "),
		headers:     strings.Join(orDefault(cfg.AllowedHeaders, defaultCORSHeaders), ", "),
	}
	for _, origin := range cfg.AllowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			policy.anyOrigin = true
			continue
		}
		if origin != "" {
			policy.origins[strings.ToLower(origin)] = struct{}{}
		}
	}
	if len(cfg.AllowedOrigins) == 0 {
		policy.anyOrigin = true
	}
	if cfg.MaxAge > 0 {
		policy.maxAge = strconv.Itoa(cfg.MaxAge)
	}
	return policy
}

// allowOrigin 返回应写入 Access-Control-Allow-Origin 的值，空串表示不放行。
// 携带凭证时不能返回 *，改为回显请求来源
func (p *corsPolicy) allowOrigin(origin string) string {
	if p.anyOrigin {
		if p.credentials && origin != "" {
			return origin
		}
		return "*"
	}
	if origin == "" {
		return ""
	}
	if _, ok := p.origins[strings.ToLower(origin)]; ok {
		return origin
	}
	return ""
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	return newCORSPolicy(config.CORSConfig{AllowedOrigins: allowedOrigins, AllowCredentials: allowCredentials}).allowOrigin(origin)
}

// CORSMiddleware 跨域中间件，预检请求直接返回 204
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	policy := newCORSPolicy(cfg)
	return func(c *gin.Context) {
		header := c.Writer.Header()
		if allowed := policy.allowOrigin(c.GetHeader("Origin")); allowed != "" {
			header.Set("Access-Control-Allow-Origin", allowed)
			if allowed != "*" {
				header.Add("Vary", "Origin")
			}
			if policy.credentials {
				header.Set("Access-Control-Allow-Credentials", "true")
			}
			header.Set("Access-Control-Expose-Headers", requestIDHeader)
		}

		if c.Request.Method != http.MethodOptions || c.GetHeader("Access-Control-Request-Method") == "" {
			c.Next()
			return
		}
		header.Set("Access-Control-Allow-Methods", policy.methods)
		header.Set("Access-Control-Allow-Headers", policy.headers)
		if policy.maxAge != "" {
			header.Set("Access-Control-Max-Age", policy.maxAge)
		}
		c.AbortWithStatus(http.StatusNoContent)
	}
}

func orDefault(values, fallback []string) []string {
	if len(values) == 0 {
		return fallback
	}
	return values
}

// RequestIDMiddleware 透传或生成 X-Request-ID
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 访问日志，按状态码分级；skipPaths 中的探活与指标路径不记录
func LoggerMiddleware(log *zap.Logger, skipPaths ...string) gin.HandlerFunc {
	if log == nil {
		log = zap.L()
	}
	sugar := log.Sugar()
	skip := make(map[string]struct{}, len(skipPaths))
	for _, path := range skipPaths {
		skip[path] = struct{}{}
	}
	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		fields := []interface{}{
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"route", route,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if adminID := c.GetUint("admin_id"); adminID != 0 {
			fields = append(fields, "admin_id", adminID)
		}
		if userID := c.GetUint("user_id"); userID != 0 {
			fields = append(fields, "user_id", userID)
		}
		switch {
		case len(c.Errors) > 0 || status >= http.StatusInternalServerError:
			sugar.Errorw("http_request", append(fields, "errors", c.Errors.String())...)
		case status >= http.StatusBadRequest:
			sugar.Warnw("http_request", fields...)
		default:
			sugar.Infow("http_request", fields...)
		}
	}
}

func getRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
