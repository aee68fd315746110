package worker

import (
	"context"
	"errors"
	"time"

	"github.com/promolink-next/internal/config"
	"github.com/promolink-next/internal/logger"
	"github.com/promolink-next/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	overdueScanInterval = time.Hour
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.InvoiceService != nil {
		go s.runOverdueScanLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

func (s *Service) runOverdueScanLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.InvoiceService == nil {
		return
	}
	runOnce := func() {
		count, err := s.consumer.InvoiceService.ScanOverdue(time.Now())
		if err != nil {
			logger.Warnw("worker_overdue_scan_failed", "error", err)
			return
		}
		if count > 0 {
			logger.Infow("worker_overdue_scan_done", "marked", count)
		}
	}
	runOnce()

	ticker := time.NewTicker(overdueScanInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
