package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/promolink-next/internal/config"
	"github.com/promolink-next/internal/constants"
	"github.com/promolink-next/internal/models"
	"github.com/promolink-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthServiceTest(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:auth_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Admin{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	cfg := &config.Config{}
	cfg.JWT.SecretKey = "test-secret"
	cfg.JWT.ExpireHours = 24
	cfg.Security.PasswordPolicy.MinLength = 8

	return NewAuthService(cfg, repository.NewAdminRepository(db)), db
}

func seedAdmin(t *testing.T, svc *AuthService, db *gorm.DB, username, password, status string) *models.Admin {
	t.Helper()
	hash, err := svc.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	admin := &models.Admin{
		Username:     username,
		PasswordHash: hash,
		Role:         constants.AdminRoleAdmin,
		Status:       status,
	}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	return admin
}

func TestAdminLoginIssuesJWT(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	seedAdmin(t, svc, db, "admin", "Passw0rdOK", constants.AdminStatusActive)

	admin, token, expiresAt, err := svc.Login("admin", "Passw0rdOK")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}
	if !expiresAt.After(time.Now()) {
		t.Errorf("expected future expiry, got %v", expiresAt)
	}
	if admin.LastLoginAt == nil {
		t.Errorf("expected last login timestamp set")
	}

	claims, err := svc.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.AdminID != admin.ID || claims.Username != "admin" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.TokenVersion != admin.TokenVersion {
		t.Errorf("token version mismatch: %d vs %d", claims.TokenVersion, admin.TokenVersion)
	}
}

func TestAdminLoginRejections(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	seedAdmin(t, svc, db, "admin", "Passw0rdOK", constants.AdminStatusActive)
	seedAdmin(t, svc, db, "frozen", "Passw0rdOK", constants.AdminStatusDisabled)

	if _, _, _, err := svc.Login("admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, _, _, err := svc.Login("ghost", "Passw0rdOK"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown username, got %v", err)
	}
	if _, _, _, err := svc.Login("frozen", "Passw0rdOK"); !errors.Is(err, ErrAccountDisabled) {
		t.Errorf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestParseJWTRejectsTampered(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	seedAdmin(t, svc, db, "admin", "Passw0rdOK", constants.AdminStatusActive)

	_, token, _, err := svc.Login("admin", "Passw0rdOK")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if _, err := svc.ParseJWT(token + "x"); err == nil {
		t.Errorf("expected tampered token rejected")
	}

	other := NewAuthService(func() *config.Config {
		cfg := &config.Config{}
		cfg.JWT.SecretKey = "other-secret"
		cfg.JWT.ExpireHours = 24
		return cfg
	}(), nil)
	if _, err := other.ParseJWT(token); err == nil {
		t.Errorf("expected token signed with different secret rejected")
	}
}

func TestAdminChangePasswordBumpsTokenVersion(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	admin := seedAdmin(t, svc, db, "admin", "OldPassw0rd", constants.AdminStatusActive)
	before := admin.TokenVersion

	if err := svc.ChangePassword(admin.ID, "wrong", "NewPassw0rd"); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("expected ErrInvalidPassword, got %v", err)
	}
	if err := svc.ChangePassword(admin.ID, "OldPassw0rd", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}
	if err := svc.ChangePassword(admin.ID, "OldPassw0rd", "NewPassw0rd"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	var reloaded models.Admin
	if err := db.First(&reloaded, admin.ID).Error; err != nil {
		t.Fatalf("reload admin failed: %v", err)
	}
	if reloaded.TokenVersion != before+1 {
		t.Errorf("expected token version bump, got %d", reloaded.TokenVersion)
	}
	if reloaded.TokenInvalidBefore == nil {
		t.Errorf("expected token invalidation watermark set")
	}
	if err := svc.VerifyPassword(reloaded.PasswordHash, "NewPassw0rd"); err != nil {
		t.Errorf("new password not persisted: %v", err)
	}
}
