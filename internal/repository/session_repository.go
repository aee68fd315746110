package repository

import (
	"errors"
	"time"

	"github.com/promolink-next/internal/models"

	"gorm.io/gorm"
)

// SessionRepository 达人会话数据访问接口
type SessionRepository interface {
	Create(session *models.Session) error
	GetByToken(token string) (*models.Session, error)
	DeleteByToken(token string) error
	DeleteByInfluencer(influencerID uint) error
	DeleteExpired(now time.Time) (int64, error)
}

// GormSessionRepository GORM 实现
type GormSessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository 创建会话仓库
func NewSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

// Create 创建会话
func (r *GormSessionRepository) Create(session *models.Session) error {
	return r.db.Create(session).Error
}

// GetByToken 根据令牌获取会话
func (r *GormSessionRepository) GetByToken(token string) (*models.Session, error) {
	var session models.Session
	if err := r.db.Where("token = ?", token).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// DeleteByToken 删除指定令牌的会话
func (r *GormSessionRepository) DeleteByToken(token string) error {
	return r.db.Where("token = ?", token).Delete(&models.Session{}).Error
}

// DeleteByInfluencer 删除达人的全部会话
func (r *GormSessionRepository) DeleteByInfluencer(influencerID uint) error {
	return r.db.Where("influencer_id = ?", influencerID).Delete(&models.Session{}).Error
}

// DeleteExpired 清理过期会话，返回清理条数
func (r *GormSessionRepository) DeleteExpired(now time.Time) (int64, error) {
	result := r.db.Where("expires_at <= ?", now).Delete(&models.Session{})
	return result.RowsAffected, result.Error
}
