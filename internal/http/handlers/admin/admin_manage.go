package admin

import (
	handlershared "github.com/promolink-next/internal/http/handlers/shared"
	"github.com/promolink-next/internal/http/response"
	"github.com/promolink-next/internal/repository"
	"github.com/promolink-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateAdminRequest 创建管理员请求
type CreateAdminRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// CreateAdmin 创建管理员（仅超级管理员）
func (h *Handler) CreateAdmin(c *gin.Context) {
	operatorID, ok := getAdminID(c)
	if !ok {
		return
	}
	if !isSuperAdmin(c) {
		response.Forbidden(c, "没有权限执行该操作")
		return
	}

	var req CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	admin, err := h.AdminService.Create(service.AdminInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Role:     req.Role,
	}, operatorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, admin)
}

// ListAdmins 管理员列表（仅超级管理员）
func (h *Handler) ListAdmins(c *gin.Context) {
	if !isSuperAdmin(c) {
		response.Forbidden(c, "没有权限执行该操作")
		return
	}

	page, pageSize := handlershared.ParsePagination(c)
	filter := repository.AdminListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  c.Query("keyword"),
		Status:   c.Query("status"),
		Role:     c.Query("role"),
	}

	admins, total, err := h.AdminService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "读取管理员列表失败", err)
		return
	}
	response.SuccessWithPage(c, admins, response.BuildPagination(page, pageSize, total))
}

// UpdateAdminStatusRequest 启用/禁用管理员请求
type UpdateAdminStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateAdminStatus 启用/禁用管理员（仅超级管理员）
func (h *Handler) UpdateAdminStatus(c *gin.Context) {
	operatorID, ok := getAdminID(c)
	if !ok {
		return
	}
	if !isSuperAdmin(c) {
		response.Forbidden(c, "没有权限执行该操作")
		return
	}

	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "参数无效")
		return
	}

	var req UpdateAdminStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	if err := h.AdminService.UpdateStatus(id, req.Status, operatorID); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// ResetAdminPasswordRequest 重置管理员密码请求
type ResetAdminPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required"`
}

// ResetAdminPassword 重置管理员密码（仅超级管理员）
func (h *Handler) ResetAdminPassword(c *gin.Context) {
	operatorID, ok := getAdminID(c)
	if !ok {
		return
	}
	if !isSuperAdmin(c) {
		response.Forbidden(c, "没有权限执行该操作")
		return
	}

	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "参数无效")
		return
	}

	var req ResetAdminPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	if err := h.AdminService.ResetPassword(id, req.NewPassword, operatorID); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// ListRoles 可授权角色列表
func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "读取角色列表失败", err)
		return
	}
	response.Success(c, roles)
}

// GetAdminRoles 查询管理员授权角色
func (h *Handler) GetAdminRoles(c *gin.Context) {
	if !isSuperAdmin(c) {
		response.Forbidden(c, "没有权限执行该操作")
		return
	}

	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "参数无效")
		return
	}

	roles, err := h.AdminService.GetRoles(id)
	if err != nil {
		respondError(c, response.CodeInternal, "读取角色失败", err)
		return
	}
	response.Success(c, gin.H{"roles": roles})
}

// SetAdminRolesRequest 设置管理员角色请求
type SetAdminRolesRequest struct {
	Roles []string `json:"roles"`
}

// SetAdminRoles 设置管理员授权角色（仅超级管理员）
func (h *Handler) SetAdminRoles(c *gin.Context) {
	if !isSuperAdmin(c) {
		response.Forbidden(c, "没有权限执行该操作")
		return
	}

	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "参数无效")
		return
	}

	var req SetAdminRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	if err := h.AdminService.SetRoles(id, req.Roles); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
