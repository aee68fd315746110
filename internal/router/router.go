package router

import (
	"fmt"
	"strings"

	"github.com/promolink-next/internal/cache"
	"github.com/promolink-next/internal/config"
	adminhandlers "github.com/promolink-next/internal/http/handlers/admin"
	publichandlers "github.com/promolink-next/internal/http/handlers/public"
	"github.com/promolink-next/internal/logger"
	"github.com/promolink-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按达人端/管理端分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "pl"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		Message:       "登录尝试过于频繁",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		Message:       "登录尝试过于频繁",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/captcha/image", publicHandler.GetImageCaptcha)
		}

		// 达人认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.Register)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.Login)
			auth.POST("/forgot-password", publicHandler.ForgotPassword)
			auth.POST("/reset-password", publicHandler.ResetPassword)
		}

		// 达人接口（需会话鉴权）
		me := apiV1.Group("")
		me.Use(InfluencerSessionMiddleware(c.InfluencerAuthService))
		{
			me.GET("/me", publicHandler.GetMe)
			me.PUT("/me/profile", publicHandler.UpdateProfile)
			me.PUT("/me/password", publicHandler.ChangePassword)
			me.POST("/logout", publicHandler.Logout)
			me.GET("/me/stats", publicHandler.GetMyStats)
			me.GET("/me/invoices", publicHandler.ListMyInvoices)
			me.GET("/me/invoices/:id", publicHandler.GetMyInvoice)
			me.GET("/me/invoices/:id/pdf", publicHandler.DownloadMyInvoicePDF)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.AdminLogin)

			// 需要鉴权的接口
			authorized := admin.Use(AdminJWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.GET("/me", adminHandler.GetAdminMe)
				authorized.PUT("/password", adminHandler.UpdateAdminPassword)

				// 达人管理
				authorized.GET("/influencers", adminHandler.ListInfluencers)
				authorized.POST("/influencers", adminHandler.CreateInfluencer)
				authorized.POST("/influencers/import", adminHandler.ImportInfluencers)
				authorized.GET("/influencers/export", adminHandler.ExportInfluencers)
				authorized.GET("/influencers/:id", adminHandler.GetInfluencer)
				authorized.PUT("/influencers/:id", adminHandler.UpdateInfluencer)
				authorized.DELETE("/influencers/:id", adminHandler.DeleteInfluencer)
				authorized.GET("/influencers/:id/stats", adminHandler.GetInfluencerStats)

				// 账单管理
				authorized.GET("/invoices", adminHandler.ListInvoices)
				authorized.POST("/invoices", adminHandler.CreateInvoice)
				authorized.GET("/invoices/:id", adminHandler.GetInvoice)
				authorized.PATCH("/invoices/:id/status", adminHandler.UpdateInvoiceStatus)
				authorized.GET("/invoices/:id/pdf", adminHandler.DownloadInvoicePDF)
				authorized.DELETE("/invoices/:id", adminHandler.DeleteInvoice)

				// 设置管理
				authorized.GET("/settings/invoice", adminHandler.GetInvoiceSettings)
				authorized.PUT("/settings/invoice", adminHandler.UpdateInvoiceSettings)
				authorized.GET("/settings/company", adminHandler.GetCompanySettings)
				authorized.PUT("/settings/company", adminHandler.UpdateCompanySettings)
				authorized.GET("/settings/site", adminHandler.GetSiteSettings)
				authorized.PUT("/settings/site", adminHandler.UpdateSiteSettings)

				// 管理员与权限管理（仅超级管理员）
				authorized.GET("/admins", adminHandler.ListAdmins)
				authorized.POST("/admins", adminHandler.CreateAdmin)
				authorized.PATCH("/admins/:id/status", adminHandler.UpdateAdminStatus)
				authorized.POST("/admins/:id/reset-password", adminHandler.ResetAdminPassword)
				authorized.GET("/admins/:id/roles", adminHandler.GetAdminRoles)
				authorized.PUT("/admins/:id/roles", adminHandler.SetAdminRoles)
				authorized.GET("/roles", adminHandler.ListRoles)

				// 邮件记录与诊断
				authorized.GET("/email-logs", adminHandler.ListEmailLogs)
				authorized.GET("/diagnostics/ledger", adminHandler.PingLedger)
				authorized.POST("/diagnostics/email-test", adminHandler.SendTestEmail)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
