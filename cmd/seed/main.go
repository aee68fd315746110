package main

import (
	"fmt"

	"github.com/promolink-next/internal/config"
	"github.com/promolink-next/internal/constants"
	"github.com/promolink-next/internal/logger"
	"github.com/promolink-next/internal/models"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	_ = godotenv.Load()
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加演示达人
	demoPasswordHash, err := bcrypt.GenerateFromPassword([]byte("promolink-demo"), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("Failed to hash demo password: %v", err)
	}

	influencers := []models.Influencer{
		{
			Reference:      "ALICE",
			Name:           "Alice Chen",
			Email:          "alice@example.com",
			PasswordHash:   string(demoPasswordHash),
			Phone:          "+86 138 0000 0001",
			Instagram:      "alice.chen",
			TikTok:         "alicechen",
			CommissionRate: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
			Status:         constants.InfluencerStatusActive,
			Notes:          "演示数据：美妆垂类",
		},
		{
			Reference:      "BOB",
			Name:           "Bob Lin",
			Email:          "bob@example.com",
			PasswordHash:   string(demoPasswordHash),
			YouTube:        "boblin-tech",
			CommissionRate: models.NewMoneyFromDecimal(decimal.NewFromFloat(12.5)),
			Status:         constants.InfluencerStatusActive,
			Notes:          "演示数据：数码测评",
		},
		{
			Reference:      "CARA",
			Name:           "Cara Wu",
			Email:          "cara@example.com",
			Instagram:      "cara.wu",
			CommissionRate: models.NewMoneyFromDecimal(decimal.NewFromInt(8)),
			Status:         constants.InfluencerStatusPending,
			Notes:          "演示数据：待审核账号",
		},
	}

	for _, inf := range influencers {
		var existing models.Influencer
		if err := models.DB.Where("reference = ?", inf.Reference).First(&existing).Error; err != nil {
			if err := models.DB.Create(&inf).Error; err != nil {
				stdLog.Printf("Failed to create influencer %s: %v", inf.Reference, err)
			} else {
				stdLog.Printf("Created influencer: %s", inf.Reference)
			}
		} else {
			stdLog.Printf("Influencer already exists: %s", inf.Reference)
		}
	}

	// 初始化开票配置
	invoiceConfig := map[string]interface{}{
		constants.SettingFieldNumberPrefix:          cfg.Invoice.NumberPrefix,
		constants.SettingFieldTaxRatePercent:        cfg.Invoice.TaxRatePercent,
		constants.SettingFieldDefaultCommissionRate: cfg.Invoice.DefaultCommissionRate,
		constants.SettingFieldMissingAmountFallback: cfg.Invoice.MissingAmountFallback,
		constants.SettingFieldDueDays:               cfg.Invoice.DueDays,
	}
	upsertSetting(stdLog.Printf, constants.SettingKeyInvoiceConfig, invoiceConfig)

	// 初始化公司抬头
	companyConfig := map[string]interface{}{
		"name":    "PromoLink Demo Ltd.",
		"address": "100 Demo Street, Shanghai",
		"email":   "billing@example.com",
		"phone":   "+86 21 0000 0000",
		"tax_id":  "DEMO-TAX-001",
	}
	upsertSetting(stdLog.Printf, constants.SettingKeyCompanyConfig, companyConfig)

	// 初始化站点配置
	siteConfig := map[string]interface{}{
		"contact": map[string]string{
			"telegram": "https://t.me/promolink",
			"email":    "support@example.com",
		},
	}
	upsertSetting(stdLog.Printf, constants.SettingKeySiteConfig, siteConfig)

	fmt.Println("\n✅ Demo data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 3 Influencers (2 active + 1 pending)")
	fmt.Println("- Invoice / company / site settings")
}

func upsertSetting(printf func(string, ...interface{}), key string, value map[string]interface{}) {
	var setting models.Setting
	if err := models.DB.Where("key = ?", key).First(&setting).Error; err != nil {
		setting = models.Setting{
			Key:       key,
			ValueJSON: models.JSON(value),
		}
		if err := models.DB.Create(&setting).Error; err != nil {
			printf("Failed to create setting %s: %v", key, err)
		} else {
			printf("Created setting: %s", key)
		}
		return
	}
	setting.ValueJSON = models.JSON(value)
	if err := models.DB.Save(&setting).Error; err != nil {
		printf("Failed to update setting %s: %v", key, err)
	} else {
		printf("Updated setting: %s", key)
	}
}
