package admin

import (
	"errors"

	"github.com/piezasya/loyalty/internal/authz"
	"github.com/piezasya/loyalty/internal/http/response"

	"github.com/gin-gonic/gin"
)

// SetAdminRolesRequest 设置管理员角色请求
type SetAdminRolesRequest struct {
	Roles []string `json:"roles"`
}

// ListRoles 角色列表（含继承关系与策略）
func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.AuthzService.DescribeRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.Success(c, roles)
}

// GetAdminRoles 查询管理员角色
func (h *Handler) GetAdminRoles(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(id)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.Success(c, gin.H{"admin_id": id, "roles": roles})
}

// SetAdminRoles 覆盖设置管理员角色
func (h *Handler) SetAdminRoles(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req SetAdminRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	admin, err := h.AdminRepo.GetByID(id)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	if admin == nil {
		respondError(c, response.CodeNotFound, "error.admin_not_found", nil)
		return
	}
	if err := h.AuthzService.SetAdminRoles(id, req.Roles); err != nil {
		switch {
		case errors.Is(err, authz.ErrRoleNotFound):
			respondError(c, response.CodeNotFound, "error.role_not_found", nil)
		case errors.Is(err, authz.ErrRoleRequired), errors.Is(err, authz.ErrRoleReserved):
			respondError(c, response.CodeBadRequest, "error.role_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal_error", err)
		}
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(id)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.Success(c, gin.H{"admin_id": id, "roles": roles})
}
