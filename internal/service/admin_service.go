package service

import (
	"context"
	"strings"

	"github.com/promolink-next/internal/authz"
	"github.com/promolink-next/internal/cache"
	"github.com/promolink-next/internal/config"
	"github.com/promolink-next/internal/constants"
	"github.com/promolink-next/internal/logger"
	"github.com/promolink-next/internal/models"
	"github.com/promolink-next/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// AdminService 管理员账号管理服务（仅超级管理员可用）
type AdminService struct {
	cfg       *config.Config
	adminRepo repository.AdminRepository
	authz     *authz.Service
}

// NewAdminService 创建管理员管理服务实例
func NewAdminService(cfg *config.Config, adminRepo repository.AdminRepository, authzService *authz.Service) *AdminService {
	return &AdminService{
		cfg:       cfg,
		adminRepo: adminRepo,
		authz:     authzService,
	}
}

// AdminInput 创建/更新管理员的输入
type AdminInput struct {
	Username string
	Password string
	Email    string
	Role     string
}

// Create 创建管理员账号
func (s *AdminService) Create(input AdminInput, createdBy uint) (*models.Admin, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, ErrInvalidInput
	}

	existing, err := s.adminRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateUsername
	}

	if err := validatePassword(s.cfg.Security.PasswordPolicy, input.Password); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := strings.TrimSpace(input.Role)
	if role == "" {
		role = constants.AdminRoleAdmin
	}

	admin := &models.Admin{
		Username:     username,
		PasswordHash: string(hash),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		Role:         role,
		Status:       constants.AdminStatusActive,
	}
	if createdBy > 0 {
		admin.CreatedBy = &createdBy
	}
	if err := s.adminRepo.Create(admin); err != nil {
		return nil, mapDuplicateError(err)
	}

	if s.authz != nil && role != constants.AdminRoleSuper {
		if err := s.authz.SetAdminRoles(admin.ID, []string{role}); err != nil {
			logger.Errorw("admin_role_assign_failed", "error", err, "admin_id", admin.ID)
		}
	}

	logger.Infow("admin_created", "admin_id", admin.ID, "username", username, "created_by", createdBy)
	return admin, nil
}

// GetByID 获取管理员
func (s *AdminService) GetByID(id uint) (*models.Admin, error) {
	admin, err := s.adminRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrNotFound
	}
	return admin, nil
}

// List 管理员列表
func (s *AdminService) List(filter repository.AdminListFilter) ([]models.Admin, int64, error) {
	return s.adminRepo.List(filter)
}

// UpdateStatus 启用/禁用管理员，禁用即时失效其令牌
// 管理员不做物理删除
func (s *AdminService) UpdateStatus(id uint, status string, operatorID uint) error {
	if id == operatorID {
		return ErrPermissionDenied
	}
	admin, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if admin.IsSuper {
		return ErrPermissionDenied
	}
	if status != constants.AdminStatusActive && status != constants.AdminStatusDisabled {
		return ErrInvalidInput
	}

	if err := s.adminRepo.UpdateStatus(id, status); err != nil {
		return err
	}
	_ = cache.DelAdminAuthState(context.Background(), id)

	logger.Infow("admin_status_changed", "admin_id", id, "status", status, "operator_id", operatorID)
	return nil
}

// ResetPassword 超级管理员重置他人密码
func (s *AdminService) ResetPassword(id uint, newPassword string, operatorID uint) error {
	admin, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if admin.IsSuper && id != operatorID {
		return ErrPermissionDenied
	}

	if err := validatePassword(s.cfg.Security.PasswordPolicy, newPassword); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin.PasswordHash = string(hash)
	admin.TokenVersion++
	if err := s.adminRepo.Update(admin); err != nil {
		return err
	}
	_ = cache.SetAdminAuthState(context.Background(), cache.BuildAdminAuthState(admin))

	logger.Infow("admin_password_reset", "admin_id", id, "operator_id", operatorID)
	return nil
}

// SetRoles 设置管理员授权角色
func (s *AdminService) SetRoles(id uint, roles []string) error {
	admin, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if admin.IsSuper {
		return ErrPermissionDenied
	}
	if s.authz == nil {
		return nil
	}
	return s.authz.SetAdminRoles(id, roles)
}

// GetRoles 查询管理员授权角色
func (s *AdminService) GetRoles(id uint) ([]string, error) {
	if s.authz == nil {
		return []string{}, nil
	}
	return s.authz.GetAdminRoles(id)
}
