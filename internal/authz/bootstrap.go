package authz

import "fmt"

// 预置角色
const (
	RoleLoyaltyAuditor  = "loyalty_auditor"
	RoleLoyaltyOperator = "loyalty_operator"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds 积分后台预置角色矩阵
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: RoleLoyaltyAuditor,
			Policies: []Policy{
				{Object: "/admin/*", Action: "GET"},
			},
		},
		{
			Role:     RoleLoyaltyOperator,
			Inherits: []string{RoleLoyaltyAuditor},
			Policies: []Policy{
				{Object: "/admin/rewards", Action: "POST"},
				{Object: "/admin/rewards/:id", Action: "PUT"},
				{Object: "/admin/redemptions/:id", Action: "PATCH"},
				{Object: "/admin/reviews/:id/reply", Action: "POST"},
				{Object: "/admin/users/:id/points", Action: "POST"},
				{Object: "/admin/users/:id/status", Action: "PATCH"},
				{Object: "/admin/referrals/registered", Action: "POST"},
				{Object: "/admin/orders/completed", Action: "POST"},
			},
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略（幂等）
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return errUnavailable
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return err
		}
		for _, parent := range seed.Inherits {
			parentRole, err := s.EnsureRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}
		for _, policy := range seed.Policies {
			if err := s.GrantRolePolicy(role, policy.Object, policy.Action); err != nil {
				return fmt.Errorf("builtin policy %s %s: %w", role, policy.Object, err)
			}
		}
	}
	return nil
}
