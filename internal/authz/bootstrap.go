package authz

import "fmt"

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds 系统预置角色矩阵
// 普通管理员默认授予 admin 角色；超级管理员在中间件中直接放行
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "readonly_auditor",
			Policies: []Policy{
				{Object: "/admin/*", Action: "GET"},
			},
		},
		{
			Role:     "influencer_manager",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/influencers", Action: "*"},
				{Object: "/admin/influencers/:id", Action: "*"},
				{Object: "/admin/influencers/import", Action: "POST"},
				{Object: "/admin/influencers/export", Action: "GET"},
				{Object: "/admin/influencers/:id/stats", Action: "GET"},
			},
		},
		{
			Role:     "billing",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/invoices", Action: "*"},
				{Object: "/admin/invoices/:id", Action: "*"},
				{Object: "/admin/invoices/:id/status", Action: "PATCH"},
				{Object: "/admin/invoices/:id/pdf", Action: "GET"},
				{Object: "/admin/settings/*", Action: "*"},
				{Object: "/admin/email-logs", Action: "GET"},
			},
		},
		{
			Role:     "admin",
			Inherits: []string{"influencer_manager", "billing"},
			Policies: []Policy{
				{Object: "/admin/diagnostics/*", Action: "*"},
			},
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return err
		}

		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}
	return nil
}
