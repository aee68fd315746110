package authz

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:authz_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("init authz service failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}
	return svc
}

func mustEnforce(t *testing.T, svc *Service, adminID uint, obj, act string) bool {
	t.Helper()
	allowed, err := svc.EnforceAdmin(adminID, obj, act)
	if err != nil {
		t.Fatalf("enforce %s %s failed: %v", act, obj, err)
	}
	return allowed
}

func TestBuiltinAdminRoleCoversSettingsWrites(t *testing.T) {
	svc := setupAuthzTest(t)
	if err := svc.SetAdminRoles(7, []string{"admin"}); err != nil {
		t.Fatalf("set roles failed: %v", err)
	}

	// 设置子路由的写操作对预置 admin 角色放行
	for _, obj := range []string{
		"/api/v1/admin/settings/invoice",
		"/api/v1/admin/settings/company",
		"/api/v1/admin/settings/site",
	} {
		if !mustEnforce(t, svc, 7, obj, "PUT") {
			t.Errorf("expected admin role to allow PUT %s", obj)
		}
	}
	if !mustEnforce(t, svc, 7, "/api/v1/admin/influencers", "POST") {
		t.Errorf("expected admin role to allow influencer create")
	}
	if !mustEnforce(t, svc, 7, "/api/v1/admin/diagnostics/ledger", "GET") {
		t.Errorf("expected admin role to allow diagnostics")
	}
}

func TestBuiltinBillingRoleScope(t *testing.T) {
	svc := setupAuthzTest(t)
	if err := svc.SetAdminRoles(8, []string{"billing"}); err != nil {
		t.Fatalf("set roles failed: %v", err)
	}

	if !mustEnforce(t, svc, 8, "/api/v1/admin/settings/invoice", "PUT") {
		t.Errorf("expected billing role to allow settings update")
	}
	if !mustEnforce(t, svc, 8, "/api/v1/admin/invoices/:id/status", "PATCH") {
		t.Errorf("expected billing role to allow invoice status change")
	}
	if mustEnforce(t, svc, 8, "/api/v1/admin/influencers", "POST") {
		t.Errorf("billing role must not create influencers")
	}
}

func TestBuiltinReadonlyAuditorIsReadOnly(t *testing.T) {
	svc := setupAuthzTest(t)
	if err := svc.SetAdminRoles(9, []string{"readonly_auditor"}); err != nil {
		t.Fatalf("set roles failed: %v", err)
	}

	if !mustEnforce(t, svc, 9, "/api/v1/admin/settings/invoice", "GET") {
		t.Errorf("expected auditor to read settings")
	}
	if mustEnforce(t, svc, 9, "/api/v1/admin/settings/invoice", "PUT") {
		t.Errorf("auditor must not update settings")
	}
	if mustEnforce(t, svc, 9, "/api/v1/admin/invoices/:id/status", "PATCH") {
		t.Errorf("auditor must not change invoice status")
	}
}
