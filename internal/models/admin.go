package models

import (
	"time"

	"gorm.io/gorm"
)

// Admin 管理员表
// 管理员永不硬删除，停用通过 status 标记
type Admin struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                          // 主键
	Username           string         `gorm:"uniqueIndex;not null" json:"username"`          // 管理员账号
	PasswordHash       string         `gorm:"not null" json:"-"`                             // 密码哈希（不返回给前端）
	Email              string         `gorm:"type:varchar(200)" json:"email"`                // 联系邮箱
	Role               string         `gorm:"type:varchar(32);not null;index" json:"role"`   // 角色（admin/super_admin）
	Status             string         `gorm:"type:varchar(20);not null;index" json:"status"` // 账号状态
	IsSuper            bool           `gorm:"not null;default:false;index" json:"is_super"`  // 是否超级管理员（免权限校验）
	CreatedBy          *uint          `gorm:"index" json:"created_by,omitempty"`             // 创建管理员ID
	TokenVersion       uint64         `gorm:"not null;default:0" json:"-"`                   // Token 版本（用于全量失效）
	TokenInvalidBefore *time.Time     `gorm:"index" json:"-"`                                // 该时间点前签发的 Token 失效
	LastLoginAt        *time.Time     `json:"last_login_at"`                                 // 最后登录时间
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                       // 创建时间
	UpdatedAt          time.Time      `json:"updated_at"`                                    // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                                // 软删除时间
}

// TableName 指定表名
func (Admin) TableName() string {
	return "admins"
}
