package admin

import (
	"fmt"
	"time"

	handlershared "github.com/promolink-next/internal/http/handlers/shared"
	"github.com/promolink-next/internal/http/response"
	"github.com/promolink-next/internal/repository"
	"github.com/promolink-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest 创建账单请求
type CreateInvoiceRequest struct {
	Reference    string                  `json:"reference" binding:"required"`
	PeriodStart  string                  `json:"period_start" binding:"required"` // 2006-01-02
	PeriodEnd    string                  `json:"period_end" binding:"required"`
	AutoGenerate bool                    `json:"auto_generate"`
	ManualItems  []ManualLineItemRequest `json:"manual_items"`
	Notes        string                  `json:"notes"`
}

// ManualLineItemRequest 手工账单行请求
type ManualLineItemRequest struct {
	Description string  `json:"description" binding:"required"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price" binding:"required"`
	OrderID     string  `json:"order_id"`
}

// CreateInvoice 创建账单
func (h *Handler) CreateInvoice(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	periodStart, err := time.Parse("2006-01-02", req.PeriodStart)
	if err != nil {
		response.BadRequest(c, "账期开始日期格式错误")
		return
	}
	periodEnd, err := time.Parse("2006-01-02", req.PeriodEnd)
	if err != nil {
		response.BadRequest(c, "账期结束日期格式错误")
		return
	}
	// 账期结束取当天结束，覆盖当日订单
	periodEnd = periodEnd.Add(24*time.Hour - time.Second)

	input := service.CreateInvoiceInput{
		Reference:    req.Reference,
		PeriodStart:  periodStart,
		PeriodEnd:    periodEnd,
		AutoGenerate: req.AutoGenerate,
		Notes:        req.Notes,
	}
	for _, item := range req.ManualItems {
		input.ManualItems = append(input.ManualItems, service.ManualLineItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   decimal.NewFromFloat(item.UnitPrice),
			OrderID:     item.OrderID,
		})
	}

	invoice, err := h.InvoiceService.Create(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, invoice)
}

// ListInvoices 账单列表
func (h *Handler) ListInvoices(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	filter := repository.InvoiceListFilter{
		Page:                page,
		PageSize:            pageSize,
		InfluencerReference: c.Query("reference"),
		Status:              c.Query("status"),
		InvoiceNumber:       c.Query("invoice_number"),
	}

	invoices, total, err := h.InvoiceService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "读取账单列表失败", err)
		return
	}
	response.SuccessWithPage(c, invoices, response.BuildPagination(page, pageSize, total))
}

// GetInvoice 账单详情
func (h *Handler) GetInvoice(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "参数无效")
		return
	}

	invoice, err := h.InvoiceService.GetByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, invoice)
}

// UpdateInvoiceStatusRequest 账单状态变更请求
type UpdateInvoiceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateInvoiceStatus 变更账单状态
func (h *Handler) UpdateInvoiceStatus(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "参数无效")
		return
	}

	var req UpdateInvoiceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	invoice, err := h.InvoiceService.UpdateStatus(id, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, invoice)
}

// DownloadInvoicePDF 下载账单 PDF
func (h *Handler) DownloadInvoicePDF(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "参数无效")
		return
	}

	invoice, err := h.InvoiceService.GetByID(id)
	if err != nil {
		respondServiceError(c, err)
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

// DeleteInvoice 删除账单（仅草稿与已取消）
func (h *Handler) DeleteInvoice(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "参数无效")
		return
	}

	if err := h.InvoiceService.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
