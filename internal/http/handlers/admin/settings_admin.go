package admin

import (
	"github.com/promolink-next/internal/http/response"
	"github.com/promolink-next/internal/models"
	"github.com/promolink-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetInvoiceSettings 获取账单设置
func (h *Handler) GetInvoiceSettings(c *gin.Context) {
	settings, err := h.SettingService.GetInvoiceSettings()
	if err != nil {
		respondError(c, response.CodeInternal, "读取设置失败", err)
		return
	}
	response.Success(c, settings)
}

// UpdateInvoiceSettings 更新账单设置
func (h *Handler) UpdateInvoiceSettings(c *gin.Context) {
	var req service.InvoiceSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	settings, err := h.SettingService.UpdateInvoiceSettings(req)
	if err != nil {
		respondError(c, response.CodeInternal, "保存设置失败", err)
		return
	}
	response.Success(c, settings)
}

// GetCompanySettings 获取公司抬头设置
func (h *Handler) GetCompanySettings(c *gin.Context) {
	settings, err := h.SettingService.GetCompanySettings()
	if err != nil {
		respondError(c, response.CodeInternal, "读取设置失败", err)
		return
	}
	response.Success(c, settings)
}

// UpdateCompanySettings 更新公司抬头设置
func (h *Handler) UpdateCompanySettings(c *gin.Context) {
	var req service.CompanySettings
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	settings, err := h.SettingService.UpdateCompanySettings(req)
	if err != nil {
		respondError(c, response.CodeInternal, "保存设置失败", err)
		return
	}
	response.Success(c, settings)
}

// GetSiteSettings 获取站点设置
func (h *Handler) GetSiteSettings(c *gin.Context) {
	settings, err := h.SettingService.GetSiteSettings()
	if err != nil {
		respondError(c, response.CodeInternal, "读取设置失败", err)
		return
	}
	response.Success(c, settings)
}

// UpdateSiteSettings 更新站点设置
func (h *Handler) UpdateSiteSettings(c *gin.Context) {
	var req models.JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	if err := h.SettingService.UpdateSiteSettings(req); err != nil {
		respondError(c, response.CodeInternal, "保存设置失败", err)
		return
	}
	response.Success(c, req)
}
