package admin

import (
	"time"

	handlershared "github.com/piezasya/loyalty/internal/http/handlers/shared"
	"github.com/piezasya/loyalty/internal/provider"

	"github.com/gin-gonic/gin"
)

// Handler 积分运营后台接口，依赖统一从容器取
type Handler struct {
	*provider.Container
}

// New 创建后台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, "admin_id", "error.unauthorized", "error.internal_error")
}

func parseID(c *gin.Context) (uint, bool) {
	return handlershared.ParseUintParam(c, "id")
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondLoyaltyError(c *gin.Context, err error) {
	handlershared.RespondLoyaltyError(c, err)
}

// parseTimeNullable 空串视为未设置，其余按 RFC3339 解析
func parseTimeNullable(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
