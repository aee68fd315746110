package admin

import (
	"errors"

	"github.com/promolink-next/internal/http/response"
	"github.com/promolink-next/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token     string                 `json:"token"`
	User      map[string]interface{} `json:"user"`
	ExpiresAt string                 `json:"expires_at"`
}

// AdminLogin 管理员登录
func (h *Handler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	if h.CaptchaService != nil {
		if captchaErr := h.CaptchaService.Verify(req.CaptchaID, req.CaptchaCode); captchaErr != nil {
			if errors.Is(captchaErr, service.ErrCaptchaRequired) || errors.Is(captchaErr, service.ErrCaptchaInvalid) {
				response.BadRequest(c, captchaErr.Error())
				return
			}
			respondError(c, response.CodeInternal, "验证码校验失败", captchaErr)
			return
		}
	}

	admin, token, expiresAt, err := h.AuthService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) || errors.Is(err, service.ErrAccountDisabled) {
			respondServiceError(c, err)
			return
		}
		respondError(c, response.CodeInternal, "登录失败", err)
		return
	}

	requestLog(c).Infow("admin_login", "admin_id", admin.ID, "username", admin.Username)
	response.Success(c, LoginResponse{
		Token: token,
		User: map[string]interface{}{
			"id":       admin.ID,
			"username": admin.Username,
			"is_super": admin.IsSuper,
		},
		ExpiresAt: expiresAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// UpdatePasswordRequest 修改密码请求
type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UpdateAdminPassword 修改当前管理员密码
func (h *Handler) UpdateAdminPassword(c *gin.Context) {
	id, ok := getAdminID(c)
	if !ok {
		return
	}

	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	if err := h.AuthService.ChangePassword(id, req.OldPassword, req.NewPassword); err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, nil)
}

// GetAdminMe 获取当前管理员信息与授权角色
func (h *Handler) GetAdminMe(c *gin.Context) {
	id, ok := getAdminID(c)
	if !ok {
		return
	}

	admin, err := h.AdminService.GetByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	roles, err := h.AdminService.GetRoles(id)
	if err != nil {
		respondError(c, response.CodeInternal, "读取角色失败", err)
		return
	}

	response.Success(c, gin.H{
		"id":            admin.ID,
		"username":      admin.Username,
		"email":         admin.Email,
		"role":          admin.Role,
		"is_super":      admin.IsSuper,
		"status":        admin.Status,
		"roles":         roles,
		"last_login_at": admin.LastLoginAt,
	})
}
