package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/promolink-next/internal/config"
	"github.com/promolink-next/internal/ledger"
	"github.com/promolink-next/internal/models"
	"github.com/promolink-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fakeLedgerSource struct {
	records []ledger.OrderRecord
	err     error
}

func (f *fakeLedgerSource) FetchOrders(ctx context.Context) ([]ledger.OrderRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func amountPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func newReconciliationTest(records []ledger.OrderRecord, err error, fallback float64) *ReconciliationService {
	cfg := &config.Config{}
	cfg.Invoice.MissingAmountFallback = fallback
	return NewReconciliationService(cfg, &fakeLedgerSource{records: records, err: err}, nil)
}

func TestComputeStatsCaseInsensitiveMatch(t *testing.T) {
	records := []ledger.OrderRecord{
		{Date: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), Reference: "ALICE", OrderID: "O-1", Amount: amountPtr("100")},
		{Date: time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC), Reference: "ALICE", OrderID: "O-2", Amount: amountPtr("50")},
		{Date: time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC), Reference: "BOB", OrderID: "O-3", Amount: amountPtr("999")},
	}
	svc := newReconciliationTest(records, nil, 0)

	stats := svc.ComputeStats(context.Background(), "alice", decimal.NewFromInt(10), nil, nil)

	if stats.TotalSales != 2 {
		t.Fatalf("expected 2 sales, got %d", stats.TotalSales)
	}
	if stats.TotalRevenue.String() != "150.00" {
		t.Errorf("expected revenue 150.00, got %s", stats.TotalRevenue.String())
	}
	if stats.TotalCommission.String() != "15.00" {
		t.Errorf("expected commission 15.00, got %s", stats.TotalCommission.String())
	}
	if stats.AverageOrderValue.String() != "75.00" {
		t.Errorf("expected average 75.00, got %s", stats.AverageOrderValue.String())
	}
	if stats.LastSaleDate == nil || !stats.LastSaleDate.Equal(time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected last sale date: %v", stats.LastSaleDate)
	}
	if len(stats.RecentOrders) != 2 {
		t.Errorf("expected 2 recent orders, got %d", len(stats.RecentOrders))
	}
	if stats.RecentOrders[0].OrderID != "O-2" {
		t.Errorf("expected most recent order first, got %s", stats.RecentOrders[0].OrderID)
	}
	monthly, ok := stats.Monthly["2026-01"]
	if !ok {
		t.Fatalf("missing monthly bucket")
	}
	if monthly.Sales != 2 || monthly.Revenue.String() != "150.00" {
		t.Errorf("unexpected monthly stats: %+v", monthly)
	}
}

func TestComputeStatsNoMatchesReturnsZeroResult(t *testing.T) {
	svc := newReconciliationTest(nil, nil, 0)

	stats := svc.ComputeStats(context.Background(), "nobody", decimal.NewFromInt(15), nil, nil)

	if stats.TotalSales != 0 {
		t.Errorf("expected 0 sales, got %d", stats.TotalSales)
	}
	if stats.TotalRevenue.String() != "0.00" || stats.TotalCommission.String() != "0.00" {
		t.Errorf("expected zero revenue/commission, got %s / %s", stats.TotalRevenue.String(), stats.TotalCommission.String())
	}
	if stats.RecentOrders == nil || stats.Monthly == nil {
		t.Errorf("expected non-nil empty collections")
	}
}

func TestComputeStatsDegradesOnLedgerFailure(t *testing.T) {
	svc := newReconciliationTest(nil, errors.New("boom"), 0)

	stats := svc.ComputeStats(context.Background(), "alice", decimal.NewFromInt(10), nil, nil)

	if stats == nil {
		t.Fatalf("expected well-formed stats on ledger failure")
	}
	if stats.TotalSales != 0 || stats.TotalRevenue.String() != "0.00" {
		t.Errorf("expected zero-filled stats, got %+v", stats)
	}
}

func TestComputeStatsMissingAmountFallback(t *testing.T) {
	records := []ledger.OrderRecord{
		{Date: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), Reference: "ALICE", OrderID: "O-1", Amount: amountPtr("100")},
		{Date: time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), Reference: "ALICE", OrderID: "O-2", Amount: nil},
	}
	svc := newReconciliationTest(records, nil, 25)

	stats := svc.ComputeStats(context.Background(), "ALICE", decimal.NewFromInt(10), nil, nil)

	if stats.TotalSales != 2 {
		t.Fatalf("expected 2 sales, got %d", stats.TotalSales)
	}
	if stats.TotalRevenue.String() != "125.00" {
		t.Errorf("expected fallback applied, revenue 125.00, got %s", stats.TotalRevenue.String())
	}
}

func TestComputeStatsFallbackFromSettingsRow(t *testing.T) {
	dsn := fmt.Sprintf("file:reconciliation_settings_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Setting{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.Invoice.MissingAmountFallback = 5
	settingSvc := NewSettingService(cfg, repository.NewSettingRepository(db))
	settings, err := settingSvc.EnsureInvoiceSettings()
	if err != nil {
		t.Fatalf("ensure settings failed: %v", err)
	}
	settings.MissingAmountFallback = 30
	if _, err := settingSvc.UpdateInvoiceSettings(*settings); err != nil {
		t.Fatalf("update settings failed: %v", err)
	}

	records := []ledger.OrderRecord{
		{Date: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), Reference: "ALICE", OrderID: "O-1", Amount: amountPtr("100")},
		{Date: time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), Reference: "ALICE", OrderID: "O-2", Amount: nil},
	}
	svc := NewReconciliationService(cfg, &fakeLedgerSource{records: records}, settingSvc)

	// 设置行的兜底值覆盖静态配置的 5
	stats := svc.ComputeStats(context.Background(), "ALICE", decimal.NewFromInt(10), nil, nil)
	if stats.TotalRevenue.String() != "130.00" {
		t.Fatalf("expected revenue 130.00 with settings fallback, got %s", stats.TotalRevenue.String())
	}

	// 后台改兜底值后立即生效
	settings.MissingAmountFallback = 40
	if _, err := settingSvc.UpdateInvoiceSettings(*settings); err != nil {
		t.Fatalf("update settings failed: %v", err)
	}
	stats = svc.ComputeStats(context.Background(), "ALICE", decimal.NewFromInt(10), nil, nil)
	if stats.TotalRevenue.String() != "140.00" {
		t.Errorf("expected revenue 140.00 after fallback change, got %s", stats.TotalRevenue.String())
	}
}

func TestComputeStatsDateWindow(t *testing.T) {
	records := []ledger.OrderRecord{
		{Date: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), Reference: "ALICE", OrderID: "O-1", Amount: amountPtr("10")},
		{Date: time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC), Reference: "ALICE", OrderID: "O-2", Amount: amountPtr("20")},
		{Date: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), Reference: "ALICE", OrderID: "O-3", Amount: amountPtr("40")},
	}
	svc := newReconciliationTest(records, nil, 0)

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	stats := svc.ComputeStats(context.Background(), "alice", decimal.NewFromInt(10), &from, &to)

	if stats.TotalSales != 1 {
		t.Fatalf("expected 1 sale inside window, got %d", stats.TotalSales)
	}
	if stats.TotalRevenue.String() != "20.00" {
		t.Errorf("expected revenue 20.00, got %s", stats.TotalRevenue.String())
	}
}

func TestCommissionLines(t *testing.T) {
	records := []ledger.OrderRecord{
		{Date: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), Reference: "ALICE", OrderID: "O-1", Amount: amountPtr("120")},
		{Date: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), Reference: "alice", OrderID: "O-2", Amount: amountPtr("80")},
	}
	svc := newReconciliationTest(records, nil, 0)

	lines, err := svc.CommissionLines(context.Background(), "Alice", decimal.NewFromInt(10), nil, nil)
	if err != nil {
		t.Fatalf("CommissionLines failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].OrderID != "O-2" {
		t.Errorf("expected lines ordered by date ascending, got %s first", lines[0].OrderID)
	}
	if !lines[0].Commission.Equal(decimal.RequireFromString("8")) {
		t.Errorf("expected commission 8 for O-2, got %s", lines[0].Commission)
	}
	if !lines[1].Commission.Equal(decimal.RequireFromString("12")) {
		t.Errorf("expected commission 12 for O-1, got %s", lines[1].Commission)
	}
}

func TestCommissionLinesPropagatesLedgerError(t *testing.T) {
	svc := newReconciliationTest(nil, errors.New("unreachable"), 0)
	if _, err := svc.CommissionLines(context.Background(), "alice", decimal.NewFromInt(10), nil, nil); !errors.Is(err, ErrLedgerUnavailable) {
		t.Fatalf("expected ErrLedgerUnavailable, got %v", err)
	}
}
