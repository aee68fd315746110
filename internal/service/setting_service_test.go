package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/promolink-next/internal/config"
	"github.com/promolink-next/internal/models"
	"github.com/promolink-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupSettingServiceTest(t *testing.T) (*SettingService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:setting_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Setting{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.Invoice.NumberPrefix = "INV-"
	cfg.Invoice.TaxRatePercent = 5
	cfg.Invoice.DefaultCommissionRate = 10
	cfg.Invoice.MissingAmountFallback = 2.5
	cfg.Invoice.DueDays = 14
	return NewSettingService(cfg, repository.NewSettingRepository(db)), db
}

func TestGetInvoiceSettingsMissingRowIsError(t *testing.T) {
	svc, _ := setupSettingServiceTest(t)

	if _, err := svc.GetInvoiceSettings(); !errors.Is(err, ErrSettingsMissing) {
		t.Fatalf("expected ErrSettingsMissing without seeded row, got %v", err)
	}
}

func TestEnsureInvoiceSettingsSeedsDefaults(t *testing.T) {
	svc, _ := setupSettingServiceTest(t)

	settings, err := svc.EnsureInvoiceSettings()
	if err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	if settings.NextInvoiceNumber != 1 || settings.NumberPrefix != "INV-" {
		t.Errorf("unexpected seeded defaults: %+v", settings)
	}
	if settings.MissingAmountFallback != 2.5 || settings.DueDays != 14 {
		t.Errorf("unexpected seeded defaults: %+v", settings)
	}

	// 落库后读取不再报缺失
	loaded, err := svc.GetInvoiceSettings()
	if err != nil {
		t.Fatalf("get after ensure failed: %v", err)
	}
	if loaded.TaxRatePercent != 5 {
		t.Errorf("expected tax rate 5, got %v", loaded.TaxRatePercent)
	}

	// 已有设置行时 Ensure 不覆盖
	loaded.TaxRatePercent = 20
	if _, err := svc.UpdateInvoiceSettings(*loaded); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	again, err := svc.EnsureInvoiceSettings()
	if err != nil {
		t.Fatalf("second ensure failed: %v", err)
	}
	if again.TaxRatePercent != 20 {
		t.Errorf("ensure overwrote existing settings: %+v", again)
	}
}
