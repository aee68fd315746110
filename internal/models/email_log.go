package models

import "time"

// EmailLog 邮件发送记录表
type EmailLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`                          // 主键
	Template  string    `gorm:"type:varchar(64);not null;index" json:"template"` // 模板名
	Recipient string    `gorm:"type:varchar(200);not null;index" json:"recipient"` // 收件人
	Subject   string    `gorm:"type:varchar(500)" json:"subject"`              // 主题
	MessageID string    `gorm:"type:varchar(128)" json:"message_id"`           // 投递消息 ID
	Status    string    `gorm:"type:varchar(20);not null;index" json:"status"` // 发送状态（sent/failed）
	Error     string    `gorm:"type:varchar(500)" json:"error,omitempty"`      // 失败原因
	CreatedAt time.Time `gorm:"index" json:"created_at"`                       // 创建时间
}

// TableName 指定表名
func (EmailLog) TableName() string {
	return "email_logs"
}
