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

// InfluencerRequest 创建/更新达人请求
type InfluencerRequest struct {
	Reference      string   `json:"reference"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Password       string   `json:"password"`
	Phone          string   `json:"phone"`
	Instagram      string   `json:"instagram"`
	TikTok         string   `json:"tiktok"`
	YouTube        string   `json:"youtube"`
	CommissionRate *float64 `json:"commission_rate"`
	Status         string   `json:"status"`
	Notes          string   `json:"notes"`
}

func (r InfluencerRequest) toInput() service.InfluencerInput {
	input := service.InfluencerInput{
		Reference: r.Reference,
		Name:      r.Name,
		Email:     r.Email,
		Password:  r.Password,
		Phone:     r.Phone,
		Instagram: r.Instagram,
		TikTok:    r.TikTok,
		YouTube:   r.YouTube,
		Status:    r.Status,
		Notes:     r.Notes,
	}
	if r.CommissionRate != nil {
		rate := decimal.NewFromFloat(*r.CommissionRate)
		input.CommissionRate = &rate
	}
	return input
}

// ListInfluencers 达人列表
func (h *Handler) ListInfluencers(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	filter := repository.InfluencerListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  c.Query("keyword"),
		Status:   c.Query("status"),
	}

	influencers, total, err := h.InfluencerService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "读取达人列表失败", err)
		return
	}
	response.SuccessWithPage(c, influencers, response.BuildPagination(page, pageSize, total))
}

// GetInfluencer 达人详情
func (h *Handler) GetInfluencer(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "参数无效")
		return
	}

	influencer, err := h.InfluencerService.GetByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, influencer)
}

// CreateInfluencer 创建达人
func (h *Handler) CreateInfluencer(c *gin.Context) {
	var req InfluencerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	influencer, err := h.InfluencerService.Create(req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, influencer)
}

// UpdateInfluencer 更新达人
func (h *Handler) UpdateInfluencer(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "参数无效")
		return
	}

	var req InfluencerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	influencer, err := h.InfluencerService.Update(id, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, influencer)
}

// DeleteInfluencer 删除达人
func (h *Handler) DeleteInfluencer(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "参数无效")
		return
	}

	if err := h.InfluencerService.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// GetInfluencerStats 达人业绩统计
// 支持 from/to 查询参数限定统计窗口（格式 2006-01-02）
func (h *Handler) GetInfluencerStats(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "参数无效")
		return
	}

	influencer, err := h.InfluencerService.GetByID(id)
	if err != nil {
		respondServiceError(c, err)
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

// ImportInfluencers CSV 批量导入达人
func (h *Handler) ImportInfluencers(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "缺少上传文件")
		return
	}
	reader, err := file.Open()
	if err != nil {
		respondError(c, response.CodeBadRequest, "文件读取失败", err)
		return
	}
	defer reader.Close()

	result, err := h.InfluencerService.ImportCSV(reader)
	if err != nil {
		respondError(c, response.CodeBadRequest, "CSV 导入失败", err)
		return
	}
	response.Success(c, result)
}

// ExportInfluencers 导出达人 CSV
func (h *Handler) ExportInfluencers(c *gin.Context) {
	data, err := h.InfluencerService.ExportCSV()
	if err != nil {
		respondError(c, response.CodeInternal, "导出失败", err)
		return
	}

	filename := fmt.Sprintf("influencers_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(200, "text/csv; charset=utf-8", data)
}

func parseDateRange(fromRaw, toRaw string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if fromRaw != "" {
		parsed, err := time.Parse("2006-01-02", fromRaw)
		if err != nil {
			return nil, nil, err
		}
		from = &parsed
	}
	if toRaw != "" {
		parsed, err := time.Parse("2006-01-02", toRaw)
		if err != nil {
			return nil, nil, err
		}
		// 截止日期取当天结束
		end := parsed.Add(24*time.Hour - time.Second)
		to = &end
	}
	return from, to, nil
}
