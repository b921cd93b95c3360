package authz

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:authz_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	return svc
}

func TestEnforceAdminWithRolePolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("rewards_editor", "/admin/rewards/:id", "PUT"); err != nil {
		t.Fatalf("grant role policy failed: %v", err)
	}
	if err := svc.SetAdminRoles(1, []string{"rewards_editor"}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}

	allow, err := svc.EnforceAdmin(1, "/api/v1/admin/rewards/42", "put")
	if err != nil {
		t.Fatalf("enforce allow failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected allow=true")
	}

	allow, err = svc.EnforceAdmin(1, "/api/v1/admin/rewards/42", "DELETE")
	if err != nil {
		t.Fatalf("enforce deny failed: %v", err)
	}
	if allow {
		t.Fatalf("expected allow=false")
	}
}

func TestSetAdminRolesOverride(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	if err := svc.SetAdminRoles(2, []string{RoleLoyaltyOperator}); err != nil {
		t.Fatalf("set first role failed: %v", err)
	}
	if err := svc.SetAdminRoles(2, []string{RoleLoyaltyAuditor}); err != nil {
		t.Fatalf("set second role failed: %v", err)
	}
	roles, err := svc.GetAdminRoles(2)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:loyalty_auditor" {
		t.Fatalf("roles want [role:loyalty_auditor], got=%v", roles)
	}
	allow, err := svc.EnforceAdmin(2, "/admin/redemptions/5", "PATCH")
	if err != nil {
		t.Fatalf("enforce old role failed: %v", err)
	}
	if allow {
		t.Fatalf("expected operator permission removed")
	}
}

func TestNormalizeObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "/api/v1/admin/rewards/:id", want: "/admin/rewards/:id"},
		{in: "/admin/rewards/:id", want: "/admin/rewards/:id"},
		{in: "admin/rewards", want: "/admin/rewards"},
		{in: "/api/v1", want: "/"},
		{in: "", want: "/"},
	}
	for _, item := range cases {
		got := NormalizeObject(item.in)
		if got != item.want {
			t.Fatalf("normalize object failed, in=%q want=%q got=%q", item.in, item.want, got)
		}
	}
}

func TestBootstrapBuiltinRoles(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap must be idempotent: %v", err)
	}

	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	if len(roles) != 2 || roles[0] != "role:loyalty_auditor" || roles[1] != "role:loyalty_operator" {
		t.Fatalf("unexpected builtin roles: %v", roles)
	}

	if err := svc.SetAdminRoles(3, []string{RoleLoyaltyOperator}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}
	cases := []struct {
		obj, act string
		want     bool
	}{
		{"/api/v1/admin/settings/loyalty", "GET", true},
		{"/api/v1/admin/settings/loyalty", "PUT", false},
		{"/api/v1/admin/rewards", "POST", true},
		{"/api/v1/admin/redemptions/9", "PATCH", true},
		{"/api/v1/admin/users/4/points", "POST", true},
	}
	for _, tc := range cases {
		allow, err := svc.EnforceAdmin(3, tc.obj, tc.act)
		if err != nil {
			t.Fatalf("enforce %s %s failed: %v", tc.act, tc.obj, err)
		}
		if allow != tc.want {
			t.Fatalf("enforce %s %s want %v got %v", tc.act, tc.obj, tc.want, allow)
		}
	}
}

func TestSetAdminRolesValidatesRoles(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	if err := svc.SetAdminRoles(0, nil); !errors.Is(err, ErrAdminIDRequired) {
		t.Fatalf("want ErrAdminIDRequired, got %v", err)
	}
	if err := svc.SetAdminRoles(4, []string{"ghost"}); !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("want ErrRoleNotFound, got %v", err)
	}
	if err := svc.SetAdminRoles(4, []string{"  "}); !errors.Is(err, ErrRoleRequired) {
		t.Fatalf("want ErrRoleRequired, got %v", err)
	}
	if err := svc.SetAdminRoles(4, []string{"__anchor__"}); !errors.Is(err, ErrRoleReserved) {
		t.Fatalf("want ErrRoleReserved, got %v", err)
	}

	if err := svc.SetAdminRoles(4, []string{"Loyalty Auditor", "role:loyalty_auditor"}); err != nil {
		t.Fatalf("set roles failed: %v", err)
	}
	roles, err := svc.GetAdminRoles(4)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:loyalty_auditor" {
		t.Fatalf("roles want [role:loyalty_auditor], got=%v", roles)
	}
}

func TestDescribeRoles(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	details, err := svc.DescribeRoles()
	if err != nil {
		t.Fatalf("describe roles failed: %v", err)
	}
	if len(details) != 2 {
		t.Fatalf("want 2 roles, got %d", len(details))
	}
	auditor, operator := details[0], details[1]
	if auditor.Role != "role:loyalty_auditor" || len(auditor.Inherits) != 0 || len(auditor.Policies) == 0 {
		t.Fatalf("unexpected auditor detail: %+v", auditor)
	}
	if operator.Role != "role:loyalty_operator" || len(operator.Inherits) != 1 || operator.Inherits[0] != "role:loyalty_auditor" {
		t.Fatalf("unexpected operator detail: %+v", operator)
	}
	found := false
	for _, policy := range operator.Policies {
		if policy.Object == "/admin/redemptions/:id" && policy.Action == "PATCH" {
			found = true
		}
	}
	if !found {
		t.Fatalf("operator policies missing redemption patch: %+v", operator.Policies)
	}
}
