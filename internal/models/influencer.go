package models

import (
	"time"

	"gorm.io/gorm"
)

// Influencer 达人（推广合作方）表
// reference 是达人的唯一推广编码，同时是外部订单台账的匹配键
type Influencer struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                     // 主键
	Reference      string         `gorm:"type:varchar(64);not null;uniqueIndex" json:"reference"`   // 推广编码（大写存储）
	Name           string         `gorm:"type:varchar(200);not null" json:"name"`                   // 姓名
	Email          string         `gorm:"type:varchar(200);not null;uniqueIndex" json:"email"`      // 邮箱
	PasswordHash   string         `gorm:"type:varchar(200)" json:"-"`                               // 密码哈希（自助登录用，可为空）
	Phone          string         `gorm:"type:varchar(64)" json:"phone"`                            // 电话
	Instagram      string         `gorm:"type:varchar(200)" json:"instagram"`                       // Instagram 账号
	TikTok         string         `gorm:"type:varchar(200)" json:"tiktok"`                          // TikTok 账号
	YouTube        string         `gorm:"type:varchar(200)" json:"youtube"`                         // YouTube 账号
	CommissionRate Money          `gorm:"type:decimal(10,2);not null;default:0" json:"commission_rate"` // 佣金比例（百分比）
	Status         string         `gorm:"type:varchar(20);not null;index" json:"status"`            // 状态（active/inactive/pending）
	Notes          string         `gorm:"type:text" json:"notes"`                                   // 备注
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                  // 创建时间
	UpdatedAt      time.Time      `json:"updated_at"`                                               // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                           // 软删除时间
}

// TableName 指定表名
func (Influencer) TableName() string {
	return "influencers"
}
