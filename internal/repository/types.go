package repository

import "time"

// InfluencerListFilter 查询达人列表的过滤条件
type InfluencerListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// AdminListFilter 查询管理员列表的过滤条件
type AdminListFilter struct {
	Page     int
	PageSize int
	Keyword  string
	Status   string
	Role     string
}

// InvoiceListFilter 查询账单列表的过滤条件
type InvoiceListFilter struct {
	Page                int
	PageSize            int
	InfluencerReference string
	Status              string
	InvoiceNumber       string
	IssuedFrom          *time.Time
	IssuedTo            *time.Time
}

// EmailLogListFilter 查询邮件发送记录的过滤条件
type EmailLogListFilter struct {
	Page        int
	PageSize    int
	Template    string
	Recipient   string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
