package repository

import (
	"errors"
	"time"

	"github.com/promolink-next/internal/models"

	"gorm.io/gorm"
)

// ResetTokenRepository 密码重置令牌数据访问接口
type ResetTokenRepository interface {
	Create(token *models.ResetToken) error
	GetByToken(token string) (*models.ResetToken, error)
	MarkUsed(id uint, usedAt time.Time) error
	InvalidateByInfluencer(influencerID uint, at time.Time) error
	DeleteExpired(now time.Time) (int64, error)
}

// GormResetTokenRepository GORM 实现
type GormResetTokenRepository struct {
	db *gorm.DB
}

// NewResetTokenRepository 创建重置令牌仓库
func NewResetTokenRepository(db *gorm.DB) *GormResetTokenRepository {
	return &GormResetTokenRepository{db: db}
}

// Create 创建重置令牌
func (r *GormResetTokenRepository) Create(token *models.ResetToken) error {
	return r.db.Create(token).Error
}

// GetByToken 根据令牌值获取重置令牌
func (r *GormResetTokenRepository) GetByToken(token string) (*models.ResetToken, error) {
	var record models.ResetToken
	if err := r.db.Where("token = ?", token).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// MarkUsed 标记令牌已使用（一次性）
func (r *GormResetTokenRepository) MarkUsed(id uint, usedAt time.Time) error {
	return r.db.Model(&models.ResetToken{}).
		Where("id = ? AND used = ?", id, false).
		Updates(map[string]interface{}{
			"used":    true,
			"used_at": usedAt,
		}).Error
}

// InvalidateByInfluencer 作废达人名下未使用的令牌（重新申请时调用）
func (r *GormResetTokenRepository) InvalidateByInfluencer(influencerID uint, at time.Time) error {
	return r.db.Model(&models.ResetToken{}).
		Where("influencer_id = ? AND used = ?", influencerID, false).
		Updates(map[string]interface{}{
			"used":    true,
			"used_at": at,
		}).Error
}

// DeleteExpired 清理过期令牌，返回清理条数
func (r *GormResetTokenRepository) DeleteExpired(now time.Time) (int64, error) {
	result := r.db.Where("expires_at <= ?", now).Delete(&models.ResetToken{})
	return result.RowsAffected, result.Error
}
