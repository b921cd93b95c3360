package shared

import (
	"errors"
	"net/http"

	"github.com/piezasya/loyalty/internal/http/response"
	"github.com/piezasya/loyalty/internal/i18n"
	"github.com/piezasya/loyalty/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 返回带 request_id 的日志实例
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if id := c.GetString("request_id"); id != "" {
		return logger.SW("request_id", id)
	}
	return logger.S()
}

// RespondError 按 key 返回本地化错误；err 非空时记录日志，5xx 记为 error，其余记为 warn
func RespondError(c *gin.Context, code int, key string, err error) {
	msg := i18n.T(i18n.ResolveLocale(c), key)
	if err != nil {
		fields := []interface{}{
			"status", code,
			"key", key,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		}
		if code >= http.StatusInternalServerError {
			RequestLog(c).Errorw("handler_error", fields...)
		} else {
			RequestLog(c).Warnw("handler_rejected", fields...)
		}
	}
	response.Error(c, code, msg)
}

// MappedError 业务错误到接口错误响应的映射规则。
type MappedError struct {
	Target error
	Code   int
	Key    string
}

// RespondWithMappedError 按规则表返回错误，命中规则记 warn，未命中按兜底分类记 error。
func RespondWithMappedError(c *gin.Context, err error, rules []MappedError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			RespondError(c, rule.Code, rule.Key, err)
			return
		}
	}
	RespondError(c, fallbackCode, fallbackKey, err)
}
