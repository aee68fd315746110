package repository

import (
	"github.com/promolink-next/internal/models"

	"gorm.io/gorm"
)

// EmailLogRepository 邮件发送记录数据访问接口
type EmailLogRepository interface {
	Create(log *models.EmailLog) error
	List(filter EmailLogListFilter) ([]models.EmailLog, int64, error)
}

// GormEmailLogRepository GORM 实现
type GormEmailLogRepository struct {
	db *gorm.DB
}

// NewEmailLogRepository 创建邮件记录仓库
func NewEmailLogRepository(db *gorm.DB) *GormEmailLogRepository {
	return &GormEmailLogRepository{db: db}
}

// Create 写入发送记录
func (r *GormEmailLogRepository) Create(log *models.EmailLog) error {
	return r.db.Create(log).Error
}

// List 发送记录列表
func (r *GormEmailLogRepository) List(filter EmailLogListFilter) ([]models.EmailLog, int64, error) {
	query := r.db.Model(&models.EmailLog{})

	if filter.Template != "" {
		query = query.Where("template = ?", filter.Template)
	}
	if filter.Recipient != "" {
		query = query.Where("recipient LIKE ?", "%"+filter.Recipient+"%")
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var logs []models.EmailLog
	if err := query.Order("id DESC").Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
