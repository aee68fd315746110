package queue

import (
	"encoding/json"

	"github.com/promolink-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskEmailDispatch 模板邮件发送任务
	TaskEmailDispatch = constants.TaskEmailDispatch
	// TaskInvoiceOverdueScan 逾期账单扫描任务
	TaskInvoiceOverdueScan = constants.TaskInvoiceOverdueScan
)

// EmailDispatchPayload 模板邮件任务载荷
type EmailDispatchPayload struct {
	Template  string            `json:"template"`
	Recipient string            `json:"recipient"`
	Params    map[string]string `json:"params,omitempty"`
	InvoiceID uint              `json:"invoice_id,omitempty"`
}

// InvoiceOverdueScanPayload 逾期账单扫描任务载荷
type InvoiceOverdueScanPayload struct {
	TriggeredAt int64 `json:"triggered_at"`
}

// NewEmailDispatchTask 创建模板邮件任务
func NewEmailDispatchTask(payload EmailDispatchPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskEmailDispatch, body), nil
}

// NewInvoiceOverdueScanTask 创建逾期账单扫描任务
func NewInvoiceOverdueScanTask(payload InvoiceOverdueScanPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskInvoiceOverdueScan, body), nil
}
