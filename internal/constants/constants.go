package constants

// 达人状态常量
const (
	InfluencerStatusActive   = "active"
	InfluencerStatusInactive = "inactive"
	InfluencerStatusPending  = "pending"
)

// 管理员角色常量
const (
	AdminRoleAdmin = "admin"
	AdminRoleSuper = "super_admin"
)

// 管理员状态常量
const (
	AdminStatusActive   = "active"
	AdminStatusDisabled = "disabled"
)

// 账单状态常量
const (
	InvoiceStatusDraft     = "draft"
	InvoiceStatusSent      = "sent"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusOverdue   = "overdue"
	InvoiceStatusCancelled = "cancelled"
)

// 邮件模板常量
const (
	EmailTemplateWelcome                = "welcome"
	EmailTemplatePasswordReset          = "password_reset"
	EmailTemplateCommissionNotification = "commission_notification"
	EmailTemplateInvoiceIssued          = "invoice_issued"
)

// 邮件发送状态常量
const (
	EmailStatusSent   = "sent"
	EmailStatusFailed = "failed"
)

// 设置键常量
const (
	SettingKeySiteConfig    = "site_config"
	SettingKeyInvoiceConfig = "invoice_config"
	SettingKeyCompanyConfig = "company_config"
)

// 账单设置字段常量
const (
	SettingFieldNextInvoiceNumber     = "next_invoice_number"
	SettingFieldNumberPrefix          = "number_prefix"
	SettingFieldTaxRatePercent        = "tax_rate_percent"
	SettingFieldDefaultCommissionRate = "default_commission_rate"
	SettingFieldMissingAmountFallback = "missing_amount_fallback"
	SettingFieldDueDays               = "due_days"
)

// 异步任务类型常量
const (
	TaskEmailDispatch      = "email:dispatch"
	TaskInvoiceOverdueScan = "invoice:overdue_scan"
)

// 队列名称常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 统计相关常量
const (
	// RecentOrdersLimit 统计结果携带的最近订单数上限
	RecentOrdersLimit = 10
)
