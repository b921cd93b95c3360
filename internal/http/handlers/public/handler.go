package public

import (
	handlershared "github.com/piezasya/loyalty/internal/http/handlers/shared"
	"github.com/piezasya/loyalty/internal/provider"
	"github.com/piezasya/loyalty/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler 用户侧积分接口与公开接口
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, "user_id", "error.unauthorized", "error.internal_error")
}

// getPrincipal 读取鉴权中间件写入的当前用户
func getPrincipal(c *gin.Context) (service.Principal, bool) {
	userID, ok := getUserID(c)
	if !ok {
		return service.Principal{}, false
	}
	return service.NewPrincipal(userID), true
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondLoyaltyError(c *gin.Context, err error) {
	handlershared.RespondLoyaltyError(c, err)
}
