package repository

import (
	"errors"
	"time"

	"github.com/promolink-next/internal/constants"
	"github.com/promolink-next/internal/models"

	"gorm.io/gorm"
)

// InvoiceRepository 账单数据访问接口
type InvoiceRepository interface {
	Create(invoice *models.Invoice, items []models.InvoiceItem) error
	GetByID(id uint) (*models.Invoice, error)
	GetByNumber(number string) (*models.Invoice, error)
	List(filter InvoiceListFilter) ([]models.Invoice, int64, error)
	ListByReference(reference string) ([]models.Invoice, error)
	UpdateStatus(id uint, status string, updates map[string]interface{}) error
	ListOverdueCandidates(now time.Time) ([]models.Invoice, error)
	Delete(id uint) error
	WithTx(tx *gorm.DB) *GormInvoiceRepository
}

// GormInvoiceRepository GORM 实现
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository 创建账单仓库
func NewInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// WithTx 绑定事务
func (r *GormInvoiceRepository) WithTx(tx *gorm.DB) *GormInvoiceRepository {
	if tx == nil {
		return r
	}
	return &GormInvoiceRepository{db: tx}
}

// Create 创建账单与行项目
func (r *GormInvoiceRepository) Create(invoice *models.Invoice, items []models.InvoiceItem) error {
	if err := r.db.Create(invoice).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].InvoiceID = invoice.ID
	}
	if len(items) > 0 {
		if err := r.db.Create(&items).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetByID 根据 ID 获取账单（含行项目）
func (r *GormInvoiceRepository) GetByID(id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.db.Preload("Items").First(&invoice, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

// GetByNumber 根据账单编号获取账单（含行项目）
func (r *GormInvoiceRepository) GetByNumber(number string) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.db.Preload("Items").Where("invoice_number = ?", number).First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

// List 账单列表
func (r *GormInvoiceRepository) List(filter InvoiceListFilter) ([]models.Invoice, int64, error) {
	query := r.db.Model(&models.Invoice{})

	if filter.InfluencerReference != "" {
		query = query.Where("influencer_reference = ?", filter.InfluencerReference)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.InvoiceNumber != "" {
		query = query.Where("invoice_number LIKE ?", "%"+filter.InvoiceNumber+"%")
	}
	if filter.IssuedFrom != nil {
		query = query.Where("issue_date >= ?", *filter.IssuedFrom)
	}
	if filter.IssuedTo != nil {
		query = query.Where("issue_date <= ?", *filter.IssuedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var invoices []models.Invoice
	if err := query.Order("id DESC").Find(&invoices).Error; err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

// ListByReference 获取达人名下全部账单
func (r *GormInvoiceRepository) ListByReference(reference string) ([]models.Invoice, error) {
	var invoices []models.Invoice
	if err := r.db.Where("influencer_reference = ?", reference).Order("issue_date DESC").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// UpdateStatus 更新账单状态
func (r *GormInvoiceRepository) UpdateStatus(id uint, status string, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = status
	updates["updated_at"] = time.Now()
	return r.db.Model(&models.Invoice{}).Where("id = ?", id).Updates(updates).Error
}

// ListOverdueCandidates 列出已发送且超过付款期限的账单
func (r *GormInvoiceRepository) ListOverdueCandidates(now time.Time) ([]models.Invoice, error) {
	var invoices []models.Invoice
	if err := r.db.Where("status = ? AND due_date < ?", constants.InvoiceStatusSent, now).Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// Delete 删除账单及其行项目
func (r *GormInvoiceRepository) Delete(id uint) error {
	if err := r.db.Where("invoice_id = ?", id).Delete(&models.InvoiceItem{}).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.Invoice{}, id).Error
}
