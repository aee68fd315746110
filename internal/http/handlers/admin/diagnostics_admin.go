package admin

import (
	handlershared "github.com/promolink-next/internal/http/handlers/shared"
	"github.com/promolink-next/internal/http/response"
	"github.com/promolink-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListEmailLogs 邮件发送记录
func (h *Handler) ListEmailLogs(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	filter := repository.EmailLogListFilter{
		Page:      page,
		PageSize:  pageSize,
		Template:  c.Query("template"),
		Recipient: c.Query("recipient"),
		Status:    c.Query("status"),
	}

	logs, total, err := h.EmailLogRepo.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "读取邮件记录失败", err)
		return
	}
	response.SuccessWithPage(c, logs, response.BuildPagination(page, pageSize, total))
}

// PingLedger 探测订单台账连通性
func (h *Handler) PingLedger(c *gin.Context) {
	count, err := h.ReconciliationService.Ping(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"records": count})
}

// TestEmailRequest 测试邮件请求
type TestEmailRequest struct {
	Recipient string `json:"recipient" binding:"required"`
}

// SendTestEmail 发送测试邮件
func (h *Handler) SendTestEmail(c *gin.Context) {
	var req TestEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	if err := h.EmailService.SendTest(req.Recipient); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
