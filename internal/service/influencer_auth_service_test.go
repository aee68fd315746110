package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/promolink-next/internal/config"
	"github.com/promolink-next/internal/constants"
	"github.com/promolink-next/internal/models"
	"github.com/promolink-next/internal/queue"
	"github.com/promolink-next/internal/repository"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupInfluencerAuthTest(t *testing.T) (*InfluencerAuthService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:influencer_auth_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Influencer{}, &models.Session{}, &models.ResetToken{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	cfg := &config.Config{}
	cfg.App.BaseURL = "http://localhost:8080"
	cfg.Session.ExpireHours = 72
	cfg.Security.PasswordPolicy.MinLength = 8
	cfg.Security.ResetToken.ExpireMinutes = 30

	queueClient, _ := queue.NewClient(&config.QueueConfig{Enabled: false})
	svc := NewInfluencerAuthService(
		cfg,
		repository.NewInfluencerRepository(db),
		repository.NewSessionRepository(db),
		repository.NewResetTokenRepository(db),
		queueClient,
	)
	return svc, db
}

func seedAuthInfluencer(t *testing.T, db *gorm.DB, email, password, status string) *models.Influencer {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	influencer := &models.Influencer{
		Reference:    "REF" + fmt.Sprintf("%d", time.Now().UnixNano()%100000),
		Name:         "测试达人",
		Email:        email,
		PasswordHash: string(hash),
		Status:       status,
	}
	if err := db.Create(influencer).Error; err != nil {
		t.Fatalf("create influencer failed: %v", err)
	}
	return influencer
}

func TestInfluencerLoginAndAuthenticate(t *testing.T) {
	svc, db := setupInfluencerAuthTest(t)
	seedAuthInfluencer(t, db, "alice@example.com", "Passw0rdOK", constants.InfluencerStatusActive)

	influencer, session, err := svc.Login("alice@example.com", "Passw0rdOK", "127.0.0.1", "test-agent")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if session.Token == "" || len(session.Token) != 64 {
		t.Errorf("expected 64-char hex token, got %q", session.Token)
	}
	if session.InfluencerID != influencer.ID {
		t.Errorf("session bound to wrong influencer")
	}

	authed, _, err := svc.Authenticate(session.Token)
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if authed.ID != influencer.ID {
		t.Errorf("authenticated wrong influencer")
	}
}

func TestInfluencerLoginFailuresIndistinguishable(t *testing.T) {
	svc, db := setupInfluencerAuthTest(t)
	seedAuthInfluencer(t, db, "alice@example.com", "Passw0rdOK", constants.InfluencerStatusActive)

	// 密码错误与邮箱不存在返回同一错误
	_, _, errWrongPassword := svc.Login("alice@example.com", "wrong-password", "", "")
	_, _, errUnknownEmail := svc.Login("nobody@example.com", "Passw0rdOK", "", "")

	if !errors.Is(errWrongPassword, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", errWrongPassword)
	}
	if !errors.Is(errUnknownEmail, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", errUnknownEmail)
	}
}

func TestInfluencerLoginInactiveAccount(t *testing.T) {
	svc, db := setupInfluencerAuthTest(t)
	seedAuthInfluencer(t, db, "alice@example.com", "Passw0rdOK", constants.InfluencerStatusInactive)

	if _, _, err := svc.Login("alice@example.com", "Passw0rdOK", "", ""); !errors.Is(err, ErrAccountDisabled) {
		t.Errorf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestAuthenticateExpiredSession(t *testing.T) {
	svc, db := setupInfluencerAuthTest(t)
	influencer := seedAuthInfluencer(t, db, "alice@example.com", "Passw0rdOK", constants.InfluencerStatusActive)

	expired := &models.Session{
		Token:        "expiredtoken",
		InfluencerID: influencer.ID,
		ExpiresAt:    time.Now().Add(-time.Hour),
	}
	if err := db.Create(expired).Error; err != nil {
		t.Fatalf("seed session failed: %v", err)
	}

	if _, _, err := svc.Authenticate("expiredtoken"); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}

	// 过期会话应被顺带删除
	var count int64
	db.Model(&models.Session{}).Where("token = ?", "expiredtoken").Count(&count)
	if count != 0 {
		t.Errorf("expected expired session removed, found %d", count)
	}

	if _, _, err := svc.Authenticate("no-such-token"); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("expected ErrSessionExpired for unknown token, got %v", err)
	}
}

func TestLogoutDeletesSession(t *testing.T) {
	svc, db := setupInfluencerAuthTest(t)
	seedAuthInfluencer(t, db, "alice@example.com", "Passw0rdOK", constants.InfluencerStatusActive)

	_, session, err := svc.Login("alice@example.com", "Passw0rdOK", "", "")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := svc.Logout(session.Token); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, _, err := svc.Authenticate(session.Token); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("expected ErrSessionExpired after logout, got %v", err)
	}
}

func TestForgotPasswordSilentOnUnknownEmail(t *testing.T) {
	svc, db := setupInfluencerAuthTest(t)

	if err := svc.ForgotPassword("nobody@example.com"); err != nil {
		t.Fatalf("expected silent success for unknown email, got %v", err)
	}
	var count int64
	db.Model(&models.ResetToken{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no token created, got %d", count)
	}
}

func TestForgotPasswordInvalidatesPreviousTokens(t *testing.T) {
	svc, db := setupInfluencerAuthTest(t)
	influencer := seedAuthInfluencer(t, db, "alice@example.com", "Passw0rdOK", constants.InfluencerStatusActive)

	if err := svc.ForgotPassword("alice@example.com"); err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	if err := svc.ForgotPassword("alice@example.com"); err != nil {
		t.Fatalf("second request failed: %v", err)
	}

	var usable int64
	db.Model(&models.ResetToken{}).
		Where("influencer_id = ? AND used = ?", influencer.ID, false).
		Count(&usable)
	if usable != 1 {
		t.Errorf("expected exactly 1 usable token, got %d", usable)
	}
}

func TestResetPasswordSingleUse(t *testing.T) {
	svc, db := setupInfluencerAuthTest(t)
	influencer := seedAuthInfluencer(t, db, "alice@example.com", "OldPassw0rd", constants.InfluencerStatusActive)

	// 既有会话在重置后必须失效
	_, session, err := svc.Login("alice@example.com", "OldPassw0rd", "", "")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := svc.ForgotPassword("alice@example.com"); err != nil {
		t.Fatalf("forgot password failed: %v", err)
	}
	var record models.ResetToken
	if err := db.Where("influencer_id = ?", influencer.ID).First(&record).Error; err != nil {
		t.Fatalf("load token failed: %v", err)
	}

	if err := svc.ResetPassword(record.Token, "NewPassw0rd"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	if _, _, err := svc.Login("alice@example.com", "NewPassw0rd", "", ""); err != nil {
		t.Errorf("login with new password failed: %v", err)
	}
	if _, _, err := svc.Login("alice@example.com", "OldPassw0rd", "", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("old password still accepted: %v", err)
	}
	if _, _, err := svc.Authenticate(session.Token); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("expected old session invalidated, got %v", err)
	}

	// 令牌一次性
	if err := svc.ResetPassword(record.Token, "AnotherPassw0rd1"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid on token reuse, got %v", err)
	}
}

func TestResetPasswordRejectsExpiredAndUnknownToken(t *testing.T) {
	svc, db := setupInfluencerAuthTest(t)
	influencer := seedAuthInfluencer(t, db, "alice@example.com", "Passw0rdOK", constants.InfluencerStatusActive)

	expired := &models.ResetToken{
		Token:        "expired-token",
		Email:        influencer.Email,
		InfluencerID: influencer.ID,
		ExpiresAt:    time.Now().Add(-time.Minute),
	}
	if err := db.Create(expired).Error; err != nil {
		t.Fatalf("seed token failed: %v", err)
	}

	if err := svc.ResetPassword("expired-token", "NewPassw0rd"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid for expired token, got %v", err)
	}
	if err := svc.ResetPassword("no-such-token", "NewPassw0rd"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid for unknown token, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, db := setupInfluencerAuthTest(t)
	influencer := seedAuthInfluencer(t, db, "alice@example.com", "OldPassw0rd", constants.InfluencerStatusActive)

	if err := svc.ChangePassword(influencer.ID, "wrong", "NewPassw0rd"); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("expected ErrInvalidPassword, got %v", err)
	}
	if err := svc.ChangePassword(influencer.ID, "OldPassw0rd", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}
	if err := svc.ChangePassword(influencer.ID, "OldPassw0rd", "NewPassw0rd"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	if _, _, err := svc.Login("alice@example.com", "NewPassw0rd", "", ""); err != nil {
		t.Errorf("login with new password failed: %v", err)
	}
}
