package public

import (
	"github.com/promolink-next/internal/http/handlers/shared"
	"github.com/promolink-next/internal/http/response"
	"github.com/promolink-next/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterRequest 达人注册请求
type RegisterRequest struct {
	Reference string `json:"reference" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Phone     string `json:"phone"`
	Instagram string `json:"instagram"`
	TikTok    string `json:"tiktok"`
	YouTube   string `json:"youtube"`
}

// Register 达人自助注册，初始状态为待审核
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	influencer, err := h.InfluencerService.Register(service.InfluencerInput{
		Reference: req.Reference,
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
		Instagram: req.Instagram,
		TikTok:    req.TikTok,
		YouTube:   req.YouTube,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	requestLog(c).Infow("influencer_registered", "influencer_id", influencer.ID, "reference", influencer.Reference)
	response.Success(c, gin.H{
		"id":        influencer.ID,
		"reference": influencer.Reference,
		"status":    influencer.Status,
	})
}

// InfluencerLoginRequest 达人登录请求
type InfluencerLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 达人登录
func (h *Handler) Login(c *gin.Context) {
	var req InfluencerLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	influencer, session, err := h.InfluencerAuthService.Login(req.Email, req.Password, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, gin.H{
		"token":      session.Token,
		"expires_at": session.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"),
		"influencer": gin.H{
			"id":        influencer.ID,
			"reference": influencer.Reference,
			"name":      influencer.Name,
			"email":     influencer.Email,
			"status":    influencer.Status,
		},
	})
}

// Logout 注销当前会话
func (h *Handler) Logout(c *gin.Context) {
	token := shared.GetSessionToken(c)
	if err := h.InfluencerAuthService.Logout(token); err != nil {
		respondError(c, response.CodeInternal, "注销失败", err)
		return
	}
	response.Success(c, nil)
}

// ForgotPasswordRequest 申请密码重置请求
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

// ForgotPassword 申请密码重置
// 无论邮箱是否存在均返回成功，避免探测注册邮箱
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	if err := h.InfluencerAuthService.ForgotPassword(req.Email); err != nil {
		respondError(c, response.CodeInternal, "申请失败", err)
		return
	}
	response.SuccessWithMsg(c, "如果该邮箱已注册，重置邮件将在几分钟内送达", nil)
}

// ResetPasswordRequest 重置密码请求
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ResetPassword 使用重置令牌设置新密码
func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	if err := h.InfluencerAuthService.ResetPassword(req.Token, req.NewPassword); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// ChangePasswordRequest 登录态修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePassword 登录态下修改密码
func (h *Handler) ChangePassword(c *gin.Context) {
	influencer, ok := shared.GetInfluencer(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	if err := h.InfluencerAuthService.ChangePassword(influencer.ID, req.OldPassword, req.NewPassword); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
