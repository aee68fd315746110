package worker

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/promolink-next/internal/logger"
	"github.com/promolink-next/internal/provider"
	"github.com/promolink-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskEmailDispatch, c.handleEmailDispatch)
	mux.HandleFunc(queue.TaskInvoiceOverdueScan, c.handleInvoiceOverdueScan)
}

func (c *Consumer) handleEmailDispatch(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_email_dispatch_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.EmailDispatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_email_dispatch_unmarshal_failed", "error", err)
		return err
	}
	if !emailPayloadValid(payload) {
		logger.Debugw("worker_email_dispatch_skip_invalid_payload", "template", payload.Template, "recipient", payload.Recipient)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_email_dispatch_skip_email_service_nil", "template", payload.Template)
		return nil
	}
	status, err := c.EmailService.Dispatch(payload.Template, payload.Recipient, payload.Params)
	if err != nil {
		logger.Warnw("worker_email_dispatch_failed",
			"template", payload.Template,
			"recipient", payload.Recipient,
			"status", status,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handleInvoiceOverdueScan(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_invoice_overdue_scan_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.InvoiceOverdueScanPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_invoice_overdue_scan_unmarshal_failed", "error", err)
		return err
	}
	if c.InvoiceService == nil {
		logger.Warnw("worker_invoice_overdue_scan_skip_invoice_service_nil")
		return nil
	}
	count, err := c.InvoiceService.ScanOverdue(time.Now())
	if err != nil {
		logger.Warnw("worker_invoice_overdue_scan_failed", "error", err)
		return err
	}
	if count > 0 {
		logger.Infow("worker_invoice_overdue_scan_done", "marked", count)
	}
	return nil
}

func emailPayloadValid(payload queue.EmailDispatchPayload) bool {
	if strings.TrimSpace(payload.Template) == "" {
		return false
	}
	return strings.TrimSpace(payload.Recipient) != ""
}
