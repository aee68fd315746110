package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/promolink-next/internal/config"
	"github.com/promolink-next/internal/constants"
	"github.com/promolink-next/internal/logger"
	"github.com/promolink-next/internal/models"
	"github.com/promolink-next/internal/queue"
	"github.com/promolink-next/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// InfluencerAuthService 达人端认证服务（不透明会话令牌）
type InfluencerAuthService struct {
	cfg            *config.Config
	influencerRepo repository.InfluencerRepository
	sessionRepo    repository.SessionRepository
	resetTokenRepo repository.ResetTokenRepository
	queueClient    *queue.Client
}

// NewInfluencerAuthService 创建达人认证服务实例
func NewInfluencerAuthService(
	cfg *config.Config,
	influencerRepo repository.InfluencerRepository,
	sessionRepo repository.SessionRepository,
	resetTokenRepo repository.ResetTokenRepository,
	queueClient *queue.Client,
) *InfluencerAuthService {
	return &InfluencerAuthService{
		cfg:            cfg,
		influencerRepo: influencerRepo,
		sessionRepo:    sessionRepo,
		resetTokenRepo: resetTokenRepo,
		queueClient:    queueClient,
	}
}

// generateToken 生成不透明随机令牌
func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Login 达人登录，成功后创建会话并顺带清理过期会话
func (s *InfluencerAuthService) Login(email, password, clientIP, userAgent string) (*models.Influencer, *models.Session, error) {
	influencer, err := s.influencerRepo.GetByEmail(email)
	if err != nil {
		return nil, nil, err
	}
	if influencer == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(influencer.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if influencer.Status == constants.InfluencerStatusInactive {
		return nil, nil, ErrAccountDisabled
	}

	// 登录时顺带清理全表过期会话
	if swept, err := s.sessionRepo.DeleteExpired(time.Now()); err != nil {
		logger.Warnw("session_sweep_failed", "error", err)
	} else if swept > 0 {
		logger.Infow("session_sweep", "removed", swept)
	}

	token, err := generateToken()
	if err != nil {
		return nil, nil, err
	}

	expireHours := s.cfg.Session.ExpireHours
	if expireHours <= 0 {
		expireHours = 72
	}
	session := &models.Session{
		Token:        token,
		InfluencerID: influencer.ID,
		ExpiresAt:    time.Now().Add(time.Duration(expireHours) * time.Hour),
		ClientIP:     clientIP,
		UserAgent:    userAgent,
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, nil, err
	}

	return influencer, session, nil
}

// Authenticate 根据会话令牌解析达人身份
// 过期会话视同不存在并被删除
func (s *InfluencerAuthService) Authenticate(token string) (*models.Influencer, *models.Session, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil, ErrSessionExpired
	}
	session, err := s.sessionRepo.GetByToken(token)
	if err != nil {
		return nil, nil, err
	}
	if session == nil {
		return nil, nil, ErrSessionExpired
	}
	if session.Expired(time.Now()) {
		_ = s.sessionRepo.DeleteByToken(token)
		return nil, nil, ErrSessionExpired
	}

	influencer, err := s.influencerRepo.GetByID(session.InfluencerID)
	if err != nil {
		return nil, nil, err
	}
	if influencer == nil {
		_ = s.sessionRepo.DeleteByToken(token)
		return nil, nil, ErrSessionExpired
	}
	if influencer.Status == constants.InfluencerStatusInactive {
		return nil, nil, ErrAccountDisabled
	}
	return influencer, session, nil
}

// Logout 注销会话
func (s *InfluencerAuthService) Logout(token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	return s.sessionRepo.DeleteByToken(token)
}

// ForgotPassword 申请密码重置
// 邮箱不存在时静默成功，避免探测注册邮箱
func (s *InfluencerAuthService) ForgotPassword(email string) error {
	influencer, err := s.influencerRepo.GetByEmail(email)
	if err != nil {
		return err
	}
	if influencer == nil {
		logger.Infow("password_reset_unknown_email", "email", email)
		return nil
	}

	// 作废此前未使用的令牌，保证同一时间只有一个有效令牌
	now := time.Now()
	if err := s.resetTokenRepo.InvalidateByInfluencer(influencer.ID, now); err != nil {
		return err
	}

	token, err := generateToken()
	if err != nil {
		return err
	}

	expireMinutes := s.cfg.Security.ResetToken.ExpireMinutes
	if expireMinutes <= 0 {
		expireMinutes = 30
	}
	record := &models.ResetToken{
		Token:        token,
		Email:        influencer.Email,
		InfluencerID: influencer.ID,
		ExpiresAt:    now.Add(time.Duration(expireMinutes) * time.Minute),
	}
	if err := s.resetTokenRepo.Create(record); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(s.cfg.App.BaseURL, "/"), token)
	if err := s.queueClient.EnqueueEmailDispatch(queue.EmailDispatchPayload{
		Template:  constants.EmailTemplatePasswordReset,
		Recipient: influencer.Email,
		Params: map[string]string{
			"name":           influencer.Name,
			"reset_url":      resetURL,
			"expire_minutes": fmt.Sprintf("%d", expireMinutes),
		},
	}); err != nil {
		logger.Errorw("password_reset_email_enqueue_failed", "error", err, "influencer_id", influencer.ID)
	}

	return nil
}

// ResetPassword 使用重置令牌设置新密码
// 令牌一次性，成功后作废全部会话
func (s *InfluencerAuthService) ResetPassword(token, newPassword string) error {
	record, err := s.resetTokenRepo.GetByToken(token)
	if err != nil {
		return err
	}
	if record == nil {
		return ErrTokenInvalid
	}
	now := time.Now()
	if !record.Usable(now) {
		return ErrTokenInvalid
	}

	if err := validatePassword(s.cfg.Security.PasswordPolicy, newPassword); err != nil {
		return err
	}

	influencer, err := s.influencerRepo.GetByID(record.InfluencerID)
	if err != nil {
		return err
	}
	if influencer == nil {
		return ErrTokenInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.resetTokenRepo.MarkUsed(record.ID, now); err != nil {
		return err
	}

	influencer.PasswordHash = string(hash)
	if err := s.influencerRepo.Update(influencer); err != nil {
		return err
	}

	// 密码已变更，作废全部既有会话
	if err := s.sessionRepo.DeleteByInfluencer(influencer.ID); err != nil {
		logger.Warnw("session_invalidate_failed", "error", err, "influencer_id", influencer.ID)
	}

	logger.Infow("password_reset_done", "influencer_id", influencer.ID)
	return nil
}

// ChangePassword 登录态下修改密码
func (s *InfluencerAuthService) ChangePassword(influencerID uint, oldPassword, newPassword string) error {
	influencer, err := s.influencerRepo.GetByID(influencerID)
	if err != nil {
		return err
	}
	if influencer == nil {
		return ErrNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(influencer.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidPassword
	}

	if err := validatePassword(s.cfg.Security.PasswordPolicy, newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	influencer.PasswordHash = string(hash)
	if err := s.influencerRepo.Update(influencer); err != nil {
		return err
	}
	return s.sessionRepo.DeleteByInfluencer(influencerID)
}
