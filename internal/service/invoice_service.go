package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/promolink-next/internal/constants"
	"github.com/promolink-next/internal/logger"
	"github.com/promolink-next/internal/models"
	"github.com/promolink-next/internal/queue"
	"github.com/promolink-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceService 账单服务
type InvoiceService struct {
	invoiceRepo    repository.InvoiceRepository
	settingRepo    repository.SettingRepository
	influencerRepo repository.InfluencerRepository
	reconciliation *ReconciliationService
	settingService *SettingService
	queueClient    *queue.Client
}

// NewInvoiceService 创建账单服务实例
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	settingRepo repository.SettingRepository,
	influencerRepo repository.InfluencerRepository,
	reconciliation *ReconciliationService,
	settingService *SettingService,
	queueClient *queue.Client,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:    invoiceRepo,
		settingRepo:    settingRepo,
		influencerRepo: influencerRepo,
		reconciliation: reconciliation,
		settingService: settingService,
		queueClient:    queueClient,
	}
}

// ManualLineItem 手工录入的账单行
type ManualLineItem struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	OrderID     string          `json:"order_id,omitempty"`
}

// CreateInvoiceInput 创建账单输入
type CreateInvoiceInput struct {
	Reference    string
	PeriodStart  time.Time
	PeriodEnd    time.Time
	AutoGenerate bool
	ManualItems  []ManualLineItem
	Notes        string
}

// Create 创建账单
// 编号分配、表头与行项目写入在同一事务内完成
func (s *InvoiceService) Create(ctx context.Context, input CreateInvoiceInput) (*models.Invoice, error) {
	reference := strings.ToUpper(strings.TrimSpace(input.Reference))
	if reference == "" || input.PeriodStart.IsZero() || input.PeriodEnd.IsZero() {
		return nil, ErrInvalidInput
	}
	if input.PeriodEnd.Before(input.PeriodStart) {
		return nil, ErrInvalidInput
	}

	influencer, err := s.influencerRepo.GetByReference(reference)
	if err != nil {
		return nil, err
	}
	if influencer == nil {
		return nil, ErrNotFound
	}

	// 自动行在事务外计算，外部台账调用不进事务
	items := make([]models.InvoiceItem, 0, len(input.ManualItems))
	var autoLines []CommissionLine
	if input.AutoGenerate {
		from, to := input.PeriodStart, input.PeriodEnd
		lines, err := s.reconciliation.CommissionLines(ctx, reference, influencer.CommissionRate.Decimal, &from, &to)
		if err != nil {
			return nil, err
		}
		autoLines = lines
		for _, line := range lines {
			items = append(items, models.InvoiceItem{
				// PDF 信头使用内置拉丁字体，行描述保持 ASCII
				Description: fmt.Sprintf("Commission for order %s (%s)", line.OrderID, line.Date.Format("2006-01-02")),
				Quantity:    1,
				UnitPrice:   models.NewMoneyFromDecimal(line.Commission),
				TotalPrice:  models.NewMoneyFromDecimal(line.Commission),
				OrderID:     line.OrderID,
			})
		}
	}
	for _, manual := range input.ManualItems {
		if strings.TrimSpace(manual.Description) == "" {
			return nil, ErrInvalidInput
		}
		quantity := manual.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		total := manual.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
		items = append(items, models.InvoiceItem{
			Description: strings.TrimSpace(manual.Description),
			Quantity:    quantity,
			UnitPrice:   models.NewMoneyFromDecimal(manual.UnitPrice),
			TotalPrice:  models.NewMoneyFromDecimal(total),
			OrderID:     strings.TrimSpace(manual.OrderID),
		})
	}

	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.TotalPrice.Decimal)
	}

	var invoice *models.Invoice
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		invoiceRepo := s.invoiceRepo.WithTx(tx)
		settingRepo := s.settingRepo.WithTx(tx)

		settings, err := s.settingService.getInvoiceSettings(settingRepo)
		if err != nil {
			return err
		}

		number := fmt.Sprintf("%s%06d", settings.NumberPrefix, settings.NextInvoiceNumber)
		settings.NextInvoiceNumber++
		if _, err := s.settingService.saveInvoiceSettings(settingRepo, *settings); err != nil {
			return err
		}

		taxRate := decimal.NewFromFloat(settings.TaxRatePercent)
		taxAmount := subtotal.Mul(taxRate).Div(decimal.NewFromInt(100)).Round(2)

		now := time.Now()
		invoice = &models.Invoice{
			InvoiceNumber:       number,
			InfluencerReference: reference,
			InfluencerName:      influencer.Name,
			InfluencerEmail:     influencer.Email,
			PeriodStart:         input.PeriodStart,
			PeriodEnd:           input.PeriodEnd,
			IssueDate:           now,
			DueDate:             now.AddDate(0, 0, settings.DueDays),
			Status:              constants.InvoiceStatusDraft,
			Subtotal:            models.NewMoneyFromDecimal(subtotal),
			TaxRatePercent:      models.NewMoneyFromDecimal(taxRate),
			TaxAmount:           models.NewMoneyFromDecimal(taxAmount),
			TotalAmount:         models.NewMoneyFromDecimal(subtotal.Add(taxAmount)),
			Notes:               input.Notes,
		}
		return invoiceRepo.Create(invoice, items)
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("invoice_created",
		"invoice_id", invoice.ID,
		"invoice_number", invoice.InvoiceNumber,
		"reference", reference,
		"items", len(items),
		"total", invoice.TotalAmount.String(),
	)

	// 自动生成的账单逐单通知达人佣金入账
	for _, line := range autoLines {
		if err := s.queueClient.EnqueueEmailDispatch(queue.EmailDispatchPayload{
			Template:  constants.EmailTemplateCommissionNotification,
			Recipient: influencer.Email,
			InvoiceID: invoice.ID,
			Params: map[string]string{
				"name":       influencer.Name,
				"order_id":   line.OrderID,
				"amount":     line.Amount.StringFixed(2),
				"commission": line.Commission.StringFixed(2),
			},
		}); err != nil {
			logger.Errorw("commission_email_enqueue_failed",
				"error", err,
				"invoice_id", invoice.ID,
				"order_id", line.OrderID,
			)
		}
	}

	return s.GetByID(invoice.ID)
}

// GetByID 获取账单
func (s *InvoiceService) GetByID(id uint) (*models.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, ErrNotFound
	}
	return invoice, nil
}

// List 账单列表
func (s *InvoiceService) List(filter repository.InvoiceListFilter) ([]models.Invoice, int64, error) {
	return s.invoiceRepo.List(filter)
}

// ListByReference 达人名下账单
func (s *InvoiceService) ListByReference(reference string) ([]models.Invoice, error) {
	return s.invoiceRepo.ListByReference(strings.ToUpper(strings.TrimSpace(reference)))
}

// allowedTransitions 账单状态机
// draft→sent→paid；sent→overdue→paid；非终态可取消
var allowedTransitions = map[string][]string{
	constants.InvoiceStatusDraft:   {constants.InvoiceStatusSent, constants.InvoiceStatusCancelled},
	constants.InvoiceStatusSent:    {constants.InvoiceStatusPaid, constants.InvoiceStatusOverdue, constants.InvoiceStatusCancelled},
	constants.InvoiceStatusOverdue: {constants.InvoiceStatusPaid, constants.InvoiceStatusCancelled},
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// UpdateStatus 变更账单状态，非法迁移被拒绝
func (s *InvoiceService) UpdateStatus(id uint, target string) (*models.Invoice, error) {
	invoice, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !transitionAllowed(invoice.Status, target) {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	updates := map[string]interface{}{}
	switch target {
	case constants.InvoiceStatusSent:
		updates["sent_at"] = now
	case constants.InvoiceStatusPaid:
		updates["paid_at"] = now
	}

	if err := s.invoiceRepo.UpdateStatus(id, target, updates); err != nil {
		return nil, err
	}

	logger.Infow("invoice_status_changed",
		"invoice_id", id,
		"from", invoice.Status,
		"to", target,
	)

	if target == constants.InvoiceStatusSent {
		if err := s.queueClient.EnqueueEmailDispatch(queue.EmailDispatchPayload{
			Template:  constants.EmailTemplateInvoiceIssued,
			Recipient: invoice.InfluencerEmail,
			InvoiceID: invoice.ID,
			Params: map[string]string{
				"name":           invoice.InfluencerName,
				"invoice_number": invoice.InvoiceNumber,
				"total":          invoice.TotalAmount.String(),
				"due_date":       invoice.DueDate.Format("2006-01-02"),
			},
		}); err != nil {
			logger.Errorw("invoice_email_enqueue_failed", "error", err, "invoice_id", invoice.ID)
		}
	}

	return s.GetByID(id)
}

// Delete 删除账单（仅草稿与已取消）
func (s *InvoiceService) Delete(id uint) error {
	invoice, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if invoice.Status != constants.InvoiceStatusDraft && invoice.Status != constants.InvoiceStatusCancelled {
		return ErrInvalidTransition
	}
	return s.invoiceRepo.Delete(id)
}

// ScanOverdue 将超过付款期限的已发送账单标记为逾期
// 由后台周期任务触发，返回标记数量
func (s *InvoiceService) ScanOverdue(now time.Time) (int, error) {
	candidates, err := s.invoiceRepo.ListOverdueCandidates(now)
	if err != nil {
		return 0, err
	}
	marked := 0
	for _, invoice := range candidates {
		if err := s.invoiceRepo.UpdateStatus(invoice.ID, constants.InvoiceStatusOverdue, nil); err != nil {
			logger.Errorw("invoice_overdue_mark_failed", "error", err, "invoice_id", invoice.ID)
			continue
		}
		marked++
	}
	if marked > 0 {
		logger.Infow("invoice_overdue_scan", "marked", marked)
	}
	return marked, nil
}
