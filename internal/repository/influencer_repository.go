package repository

import (
	"errors"
	"strings"

	"github.com/promolink-next/internal/models"

	"gorm.io/gorm"
)

// InfluencerRepository 达人数据访问接口
type InfluencerRepository interface {
	GetByID(id uint) (*models.Influencer, error)
	GetByEmail(email string) (*models.Influencer, error)
	GetByReference(reference string) (*models.Influencer, error)
	Create(influencer *models.Influencer) error
	Update(influencer *models.Influencer) error
	Delete(id uint) error
	List(filter InfluencerListFilter) ([]models.Influencer, int64, error)
	ListAll() ([]models.Influencer, error)
	CountByStatus(status string) (int64, error)
}

// GormInfluencerRepository GORM 实现
type GormInfluencerRepository struct {
	db *gorm.DB
}

// NewInfluencerRepository 创建达人仓库
func NewInfluencerRepository(db *gorm.DB) *GormInfluencerRepository {
	return &GormInfluencerRepository{db: db}
}

// GetByID 根据 ID 获取达人
func (r *GormInfluencerRepository) GetByID(id uint) (*models.Influencer, error) {
	var influencer models.Influencer
	if err := r.db.First(&influencer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &influencer, nil
}

// GetByEmail 根据邮箱获取达人（不区分大小写）
func (r *GormInfluencerRepository) GetByEmail(email string) (*models.Influencer, error) {
	var influencer models.Influencer
	normalized := strings.ToLower(strings.TrimSpace(email))
	if err := r.db.Where("LOWER(email) = ?", normalized).First(&influencer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &influencer, nil
}

// GetByReference 根据推广编码获取达人（不区分大小写，编码统一大写存储）
func (r *GormInfluencerRepository) GetByReference(reference string) (*models.Influencer, error) {
	var influencer models.Influencer
	normalized := strings.ToUpper(strings.TrimSpace(reference))
	if err := r.db.Where("reference = ?", normalized).First(&influencer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &influencer, nil
}

// Create 创建达人
func (r *GormInfluencerRepository) Create(influencer *models.Influencer) error {
	return r.db.Create(influencer).Error
}

// Update 更新达人
func (r *GormInfluencerRepository) Update(influencer *models.Influencer) error {
	return r.db.Save(influencer).Error
}

// Delete 删除达人
func (r *GormInfluencerRepository) Delete(id uint) error {
	return r.db.Delete(&models.Influencer{}, id).Error
}

// List 达人列表
func (r *GormInfluencerRepository) List(filter InfluencerListFilter) ([]models.Influencer, int64, error) {
	query := r.db.Model(&models.Influencer{})

	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		query = query.Where("name LIKE ? OR email LIKE ? OR reference LIKE ?", like, like, strings.ToUpper(like))
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

	var influencers []models.Influencer
	if err := query.Order("id DESC").Find(&influencers).Error; err != nil {
		return nil, 0, err
	}
	return influencers, total, nil
}

// ListAll 获取全部达人（导出用）
func (r *GormInfluencerRepository) ListAll() ([]models.Influencer, error) {
	var influencers []models.Influencer
	if err := r.db.Order("id ASC").Find(&influencers).Error; err != nil {
		return nil, err
	}
	return influencers, nil
}

// CountByStatus 按状态统计达人数量
func (r *GormInfluencerRepository) CountByStatus(status string) (int64, error) {
	var count int64
	query := r.db.Model(&models.Influencer{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
