package models

import "time"

// Session 达人端会话表
// 令牌为不透明随机串；过期会话在鉴权时拒绝，并在登录时顺带清理
type Session struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                // 主键
	Token        string    `gorm:"type:varchar(128);not null;uniqueIndex" json:"-"`     // 会话令牌
	InfluencerID uint      `gorm:"not null;index" json:"influencer_id"`                 // 所属达人
	ExpiresAt    time.Time `gorm:"not null;index" json:"expires_at"`                    // 过期时间
	ClientIP     string    `gorm:"type:varchar(64)" json:"client_ip,omitempty"`         // 客户端 IP
	UserAgent    string    `gorm:"type:varchar(500)" json:"user_agent,omitempty"`       // 客户端 UA
	CreatedAt    time.Time `gorm:"index" json:"created_at"`                             // 创建时间
}

// TableName 指定表名
func (Session) TableName() string {
	return "sessions"
}

// Expired 判断会话是否已过期
func (s *Session) Expired(now time.Time) bool {
	return s == nil || !s.ExpiresAt.After(now)
}
