package provider

import (
	"time"

	"github.com/promolink-next/internal/authz"
	"github.com/promolink-next/internal/cache"
	"github.com/promolink-next/internal/config"
	"github.com/promolink-next/internal/ledger"
	"github.com/promolink-next/internal/ledger/sheets"
	"github.com/promolink-next/internal/logger"
	"github.com/promolink-next/internal/models"
	"github.com/promolink-next/internal/queue"
	"github.com/promolink-next/internal/repository"
	"github.com/promolink-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config       *config.Config
	QueueClient  *queue.Client
	LedgerSource ledger.Source

	// Repositories
	AdminRepo      repository.AdminRepository
	InfluencerRepo repository.InfluencerRepository
	SessionRepo    repository.SessionRepository
	ResetTokenRepo repository.ResetTokenRepository
	InvoiceRepo    repository.InvoiceRepository
	SettingRepo    repository.SettingRepository
	EmailLogRepo   repository.EmailLogRepository

	// Services
	AuthzService          *authz.Service
	AuthService           *service.AuthService
	AdminService          *service.AdminService
	InfluencerAuthService *service.InfluencerAuthService
	InfluencerService     *service.InfluencerService
	ReconciliationService *service.ReconciliationService
	SettingService        *service.SettingService
	InvoiceService        *service.InvoiceService
	EmailService          *service.EmailService
	PDFService            *service.PDFService
	CaptchaService        *service.CaptchaService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端（未启用时降级为同步发送）
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化外部台账数据源
	c.initLedgerSource()

	// 2. 初始化 Repositories
	c.initRepositories()

	// 3. 初始化 Services
	c.initServices()

	// 队列未启用时邮件改为请求内同步发送
	c.QueueClient.SetEmailFallback(func(payload queue.EmailDispatchPayload) {
		if c.EmailService == nil {
			return
		}
		if _, err := c.EmailService.Dispatch(payload.Template, payload.Recipient, payload.Params); err != nil {
			logger.Warnw("email_inline_dispatch_failed",
				"template", payload.Template,
				"recipient", payload.Recipient,
				"error", err,
			)
		}
	})

	return c
}

func (c *Container) initLedgerSource() {
	source, err := sheets.NewClient(sheets.Config{
		BaseURL:       c.Config.Ledger.BaseURL,
		SpreadsheetID: c.Config.Ledger.SpreadsheetID,
		Range:         c.Config.Ledger.Range,
		APIKey:        c.Config.Ledger.APIKey,
		Timeout:       time.Duration(c.Config.Ledger.TimeoutMS) * time.Millisecond,
	})
	if err != nil {
		// 台账未配置时读取路径降级为全零统计
		logger.Warnw("provider_init_ledger_failed", "error", err)
		return
	}
	c.LedgerSource = source
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.InfluencerRepo = repository.NewInfluencerRepository(db)
	c.SessionRepo = repository.NewSessionRepository(db)
	c.ResetTokenRepo = repository.NewResetTokenRepository(db)
	c.InvoiceRepo = repository.NewInvoiceRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
	c.EmailLogRepo = repository.NewEmailLogRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.SettingService = service.NewSettingService(c.Config, c.SettingRepo)
	// 账单设置行在启动时落库，运行期缺行按配置错误处理
	if _, err := c.SettingService.EnsureInvoiceSettings(); err != nil {
		logger.Errorw("provider_ensure_invoice_settings_failed", "error", err)
	}
	c.EmailService = service.NewEmailService(&c.Config.Email, c.Config.App.Name, c.EmailLogRepo)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.AdminService = service.NewAdminService(c.Config, c.AdminRepo, c.AuthzService)
	c.InfluencerAuthService = service.NewInfluencerAuthService(c.Config, c.InfluencerRepo, c.SessionRepo, c.ResetTokenRepo, c.QueueClient)
	c.InfluencerService = service.NewInfluencerService(c.Config, c.InfluencerRepo, c.QueueClient)
	c.ReconciliationService = service.NewReconciliationService(c.Config, c.LedgerSource, c.SettingService)
	c.InvoiceService = service.NewInvoiceService(c.InvoiceRepo, c.SettingRepo, c.InfluencerRepo, c.ReconciliationService, c.SettingService, c.QueueClient)
	c.PDFService = service.NewPDFService(c.SettingService)
}
