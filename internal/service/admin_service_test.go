package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/promolink-next/internal/authz"
	"github.com/promolink-next/internal/config"
	"github.com/promolink-next/internal/constants"
	"github.com/promolink-next/internal/models"
	"github.com/promolink-next/internal/repository"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupAdminServiceTest(t *testing.T) (*AdminService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:admin_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Admin{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	authzService, err := authz.NewService(db)
	if err != nil {
		t.Fatalf("init authz failed: %v", err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap roles failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.Security.PasswordPolicy.MinLength = 8
	return NewAdminService(cfg, repository.NewAdminRepository(db), authzService), db
}

func seedSuperAdmin(t *testing.T, db *gorm.DB) *models.Admin {
	t.Helper()
	admin := &models.Admin{
		Username:     "root",
		PasswordHash: "x",
		Role:         constants.AdminRoleSuper,
		Status:       constants.AdminStatusActive,
		IsSuper:      true,
	}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("seed super admin failed: %v", err)
	}
	return admin
}

func TestAdminCreateAssignsRoleAndAudit(t *testing.T) {
	svc, _ := setupAdminServiceTest(t)

	admin, err := svc.Create(AdminInput{
		Username: "ops",
		Password: "Passw0rdOK",
		Email:    "OPS@Example.com",
		Role:     "admin",
	}, 1)
	if err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	if admin.CreatedBy == nil || *admin.CreatedBy != 1 {
		t.Errorf("expected created_by 1, got %v", admin.CreatedBy)
	}
	if admin.Status != constants.AdminStatusActive {
		t.Errorf("expected active status, got %s", admin.Status)
	}
	if admin.Email != "ops@example.com" {
		t.Errorf("expected lowercased email, got %s", admin.Email)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("Passw0rdOK")); err != nil {
		t.Errorf("password hash mismatch: %v", err)
	}

	roles, err := svc.GetRoles(admin.ID)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:admin" {
		t.Errorf("expected role:admin assigned, got %v", roles)
	}
}

func TestAdminCreateValidation(t *testing.T) {
	svc, _ := setupAdminServiceTest(t)

	if _, err := svc.Create(AdminInput{Username: "", Password: "Passw0rdOK"}, 1); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty username, got %v", err)
	}
	if _, err := svc.Create(AdminInput{Username: "ops", Password: "short"}, 1); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}

	if _, err := svc.Create(AdminInput{Username: "ops", Password: "Passw0rdOK"}, 1); err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	if _, err := svc.Create(AdminInput{Username: "ops", Password: "Passw0rdOK"}, 1); !errors.Is(err, ErrDuplicateUsername) {
		t.Errorf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestAdminUpdateStatusGuards(t *testing.T) {
	svc, db := setupAdminServiceTest(t)
	super := seedSuperAdmin(t, db)

	admin, err := svc.Create(AdminInput{Username: "ops", Password: "Passw0rdOK"}, super.ID)
	if err != nil {
		t.Fatalf("create admin failed: %v", err)
	}

	// 不能停用自己
	if err := svc.UpdateStatus(admin.ID, constants.AdminStatusDisabled, admin.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied for self-disable, got %v", err)
	}
	// 超级管理员不可被停用
	if err := svc.UpdateStatus(super.ID, constants.AdminStatusDisabled, admin.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied for super target, got %v", err)
	}
	if err := svc.UpdateStatus(admin.ID, "frozen", super.ID); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for unknown status, got %v", err)
	}

	if err := svc.UpdateStatus(admin.ID, constants.AdminStatusDisabled, super.ID); err != nil {
		t.Fatalf("disable failed: %v", err)
	}
	reloaded, err := svc.GetByID(admin.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Status != constants.AdminStatusDisabled {
		t.Errorf("expected disabled status, got %s", reloaded.Status)
	}
}

func TestAdminResetPasswordBumpsTokenVersion(t *testing.T) {
	svc, db := setupAdminServiceTest(t)
	super := seedSuperAdmin(t, db)

	admin, err := svc.Create(AdminInput{Username: "ops", Password: "Passw0rdOK"}, super.ID)
	if err != nil {
		t.Fatalf("create admin failed: %v", err)
	}

	if err := svc.ResetPassword(admin.ID, "short", super.ID); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}
	if err := svc.ResetPassword(super.ID, "Another0K!", admin.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied for super target, got %v", err)
	}

	before := admin.TokenVersion
	if err := svc.ResetPassword(admin.ID, "NewPassw0rd", super.ID); err != nil {
		t.Fatalf("reset password failed: %v", err)
	}
	reloaded, err := svc.GetByID(admin.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.TokenVersion != before+1 {
		t.Errorf("expected token version bump, got %d -> %d", before, reloaded.TokenVersion)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(reloaded.PasswordHash), []byte("NewPassw0rd")); err != nil {
		t.Errorf("new password hash mismatch: %v", err)
	}
}

func TestAdminSetRoles(t *testing.T) {
	svc, db := setupAdminServiceTest(t)
	super := seedSuperAdmin(t, db)

	admin, err := svc.Create(AdminInput{Username: "ops", Password: "Passw0rdOK", Role: "admin"}, super.ID)
	if err != nil {
		t.Fatalf("create admin failed: %v", err)
	}

	if err := svc.SetRoles(super.ID, []string{"billing"}); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied for super target, got %v", err)
	}

	if err := svc.SetRoles(admin.ID, []string{"billing"}); err != nil {
		t.Fatalf("set roles failed: %v", err)
	}
	roles, err := svc.GetRoles(admin.ID)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:billing" {
		t.Errorf("expected role:billing only, got %v", roles)
	}
}
