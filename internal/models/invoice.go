package models

import (
	"time"

	"gorm.io/gorm"
)

// Invoice 账单表
// 达人信息在开票时冗余一份（姓名/邮箱），与达人表之间不做外键约束
type Invoice struct {
	ID                  uint           `gorm:"primarykey" json:"id"`                                        // 主键
	InvoiceNumber       string         `gorm:"type:varchar(64);not null;uniqueIndex" json:"invoice_number"` // 账单编号（单调递增分配）
	InfluencerReference string         `gorm:"type:varchar(64);not null;index" json:"influencer_reference"` // 达人推广编码
	InfluencerName      string         `gorm:"type:varchar(200);not null" json:"influencer_name"`           // 达人姓名（开票时冗余）
	InfluencerEmail     string         `gorm:"type:varchar(200);not null" json:"influencer_email"`          // 达人邮箱（开票时冗余）
	PeriodStart         time.Time      `gorm:"not null;index" json:"period_start"`                          // 结算周期开始
	PeriodEnd           time.Time      `gorm:"not null;index" json:"period_end"`                            // 结算周期结束
	IssueDate           time.Time      `gorm:"not null" json:"issue_date"`                                  // 开票日期
	DueDate             time.Time      `gorm:"not null;index" json:"due_date"`                              // 付款期限
	Status              string         `gorm:"type:varchar(20);not null;index" json:"status"`               // 状态（draft/sent/paid/overdue/cancelled）
	Subtotal            Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`       // 小计
	TaxRatePercent      Money          `gorm:"type:decimal(10,2);not null;default:0" json:"tax_rate_percent"` // 税率（百分比）
	TaxAmount           Money          `gorm:"type:decimal(20,2);not null;default:0" json:"tax_amount"`     // 税额
	TotalAmount         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`   // 合计
	Notes               string         `gorm:"type:text" json:"notes"`                                      // 备注
	SentAt              *time.Time     `json:"sent_at,omitempty"`                                           // 发送时间
	PaidAt              *time.Time     `json:"paid_at,omitempty"`                                           // 支付时间
	CreatedAt           time.Time      `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt           time.Time      `json:"updated_at"`                                                  // 更新时间
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`                                              // 软删除时间

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"` // 账单行项目
}

// TableName 指定表名
func (Invoice) TableName() string {
	return "invoices"
}

// InvoiceItem 账单行项目表
type InvoiceItem struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                   // 主键
	InvoiceID   uint      `gorm:"not null;index" json:"invoice_id"`                       // 所属账单
	Description string    `gorm:"type:varchar(500);not null" json:"description"`          // 描述
	Quantity    int       `gorm:"not null;default:1" json:"quantity"`                     // 数量
	UnitPrice   Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"` // 单价
	TotalPrice  Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"` // 行合计
	OrderID     string    `gorm:"type:varchar(100)" json:"order_id,omitempty"`            // 关联台账订单号
	CreatedAt   time.Time `json:"created_at"`                                             // 创建时间
}

// TableName 指定表名
func (InvoiceItem) TableName() string {
	return "invoice_items"
}
