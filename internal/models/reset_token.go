package models

import "time"

// ResetToken 密码重置令牌表
// 一次性、限时有效；使用或过期后再次提交必须被拒绝
type ResetToken struct {
	ID           uint       `gorm:"primarykey" json:"id"`                            // 主键
	Token        string     `gorm:"type:varchar(128);not null;uniqueIndex" json:"-"` // 重置令牌
	Email        string     `gorm:"type:varchar(200);not null;index" json:"email"`   // 申请邮箱
	InfluencerID uint       `gorm:"not null;index" json:"influencer_id"`             // 所属达人
	ExpiresAt    time.Time  `gorm:"not null;index" json:"expires_at"`                // 过期时间
	Used         bool       `gorm:"not null;default:false" json:"used"`              // 是否已使用
	UsedAt       *time.Time `json:"used_at,omitempty"`                               // 使用时间
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`                         // 创建时间
}

// TableName 指定表名
func (ResetToken) TableName() string {
	return "reset_tokens"
}

// Usable 判断令牌当前是否可用
func (t *ResetToken) Usable(now time.Time) bool {
	return t != nil && !t.Used && t.ExpiresAt.After(now)
}
