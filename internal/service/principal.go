package service

// Principal 已认证的调用用户，由鉴权中间件解析后显式传入服务层
type Principal struct {
	UserID uint
}

// NewPrincipal 根据用户 ID 构造调用方
func NewPrincipal(userID uint) Principal {
	return Principal{UserID: userID}
}

// Valid 是否为有效调用方
func (p Principal) Valid() bool {
	return p.UserID != 0
}
