package public

import (
	"fmt"

	"github.com/promolink-next/internal/http/handlers/shared"
	"github.com/promolink-next/internal/http/response"
	"github.com/promolink-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetMe 获取当前达人资料
func (h *Handler) GetMe(c *gin.Context) {
	influencer, ok := shared.GetInfluencer(c)
	if !ok {
		return
	}
	response.Success(c, influencer)
}

// UpdateProfileRequest 自助更新资料请求
type UpdateProfileRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Instagram string `json:"instagram"`
	TikTok    string `json:"tiktok"`
	YouTube   string `json:"youtube"`
}

// UpdateProfile 达人自助更新资料
func (h *Handler) UpdateProfile(c *gin.Context) {
	influencer, ok := shared.GetInfluencer(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	updated, err := h.InfluencerService.UpdateProfile(influencer.ID, service.InfluencerInput{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Instagram: req.Instagram,
		TikTok:    req.TikTok,
		YouTube:   req.YouTube,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, updated)
}

// GetMyStats 当前达人的业绩统计
func (h *Handler) GetMyStats(c *gin.Context) {
	influencer, ok := shared.GetInfluencer(c)
	if !ok {
		return
	}

	from, to, err := parseDateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		response.BadRequest(c, "日期格式错误")
		return
	}

	stats := h.ReconciliationService.ComputeStats(c.Request.Context(), influencer.Reference, influencer.CommissionRate.Decimal, from, to)
	response.Success(c, stats)
}

// ListMyInvoices 当前达人名下账单
func (h *Handler) ListMyInvoices(c *gin.Context) {
	influencer, ok := shared.GetInfluencer(c)
	if !ok {
		return
	}

	invoices, err := h.InvoiceService.ListByReference(influencer.Reference)
	if err != nil {
		respondError(c, response.CodeInternal, "读取账单失败", err)
		return
	}
	response.Success(c, invoices)
}

// GetMyInvoice 当前达人的单张账单详情
func (h *Handler) GetMyInvoice(c *gin.Context) {
	influencer, ok := shared.GetInfluencer(c)
	if !ok {
		return
	}
	id, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "参数无效")
		return
	}

	invoice, err := h.InvoiceService.GetByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	// 只能访问自己名下的账单
	if invoice.InfluencerReference != influencer.Reference {
		response.NotFound(c, "记录不存在")
		return
	}
	response.Success(c, invoice)
}

// DownloadMyInvoicePDF 下载当前达人的账单 PDF
func (h *Handler) DownloadMyInvoicePDF(c *gin.Context) {
	influencer, ok := shared.GetInfluencer(c)
	if !ok {
		return
	}
	id, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "参数无效")
		return
	}

	invoice, err := h.InvoiceService.GetByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if invoice.InfluencerReference != influencer.Reference {
		response.NotFound(c, "记录不存在")
		return
	}

	data, err := h.PDFService.RenderInvoice(invoice)
	if err != nil {
		respondError(c, response.CodeInternal, "PDF 生成失败", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, invoice.InvoiceNumber))
	c.Data(200, "application/pdf", data)
}
