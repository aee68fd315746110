package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/promolink-next/internal/cache"
	"github.com/promolink-next/internal/config"
	"github.com/promolink-next/internal/constants"
	"github.com/promolink-next/internal/ledger"
	"github.com/promolink-next/internal/logger"
	"github.com/promolink-next/internal/models"

	"github.com/shopspring/decimal"
)

const statsCacheTTL = 60 * time.Second

// ReconciliationService 对账与统计服务
// 将外部台账订单按推广编码聚合为达人业绩
type ReconciliationService struct {
	cfg      *config.Config
	source   ledger.Source
	settings *SettingService
}

// NewReconciliationService 创建对账服务实例
func NewReconciliationService(cfg *config.Config, source ledger.Source, settings *SettingService) *ReconciliationService {
	return &ReconciliationService{
		cfg:      cfg,
		source:   source,
		settings: settings,
	}
}

// OrderSummary 统计结果中的订单摘要
type OrderSummary struct {
	Date    time.Time    `json:"date"`
	OrderID string       `json:"order_id"`
	Amount  models.Money `json:"amount"`
}

// MonthlyStats 按月聚合
type MonthlyStats struct {
	Sales   int          `json:"sales"`
	Revenue models.Money `json:"revenue"`
}

// Stats 达人业绩统计
type Stats struct {
	Reference         string                  `json:"reference"`
	TotalSales        int                     `json:"total_sales"`
	TotalRevenue      models.Money            `json:"total_revenue"`
	TotalCommission   models.Money            `json:"total_commission"`
	AverageOrderValue models.Money            `json:"average_order_value"`
	CommissionRate    models.Money            `json:"commission_rate"`
	LastSaleDate      *time.Time              `json:"last_sale_date,omitempty"`
	RecentOrders      []OrderSummary          `json:"recent_orders"`
	Monthly           map[string]MonthlyStats `json:"monthly"`
}

func emptyStats(reference string, rate decimal.Decimal) *Stats {
	return &Stats{
		Reference:         strings.ToUpper(strings.TrimSpace(reference)),
		TotalRevenue:      models.NewMoneyFromFloat(0),
		TotalCommission:   models.NewMoneyFromFloat(0),
		AverageOrderValue: models.NewMoneyFromFloat(0),
		CommissionRate:    models.NewMoneyFromDecimal(rate),
		RecentOrders:      []OrderSummary{},
		Monthly:           map[string]MonthlyStats{},
	}
}

// missingAmountFallback 金额缺失兜底值，优先读后台可改的设置行
func (s *ReconciliationService) missingAmountFallback() float64 {
	if s.settings != nil {
		if settings, err := s.settings.GetInvoiceSettings(); err == nil {
			return settings.MissingAmountFallback
		}
	}
	return s.cfg.Invoice.MissingAmountFallback
}

// resolveAmount 取订单金额，缺失时按兜底值计入
func (s *ReconciliationService) resolveAmount(record ledger.OrderRecord, fallback float64) decimal.Decimal {
	if record.Amount != nil {
		return *record.Amount
	}
	logger.Warnw("ledger_amount_missing",
		"reference", record.Reference,
		"order_id", record.OrderID,
		"fallback", fallback,
	)
	return decimal.NewFromFloat(fallback)
}

func (s *ReconciliationService) fetchOrders(ctx context.Context) ([]ledger.OrderRecord, error) {
	if s.source == nil {
		return nil, fmt.Errorf("%w: 未配置台账数据源", ErrLedgerUnavailable)
	}
	records, err := s.source.FetchOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	return records, nil
}

// ComputeStats 计算达人在指定时间窗口内的业绩统计
// 台账不可用时降级为全零结果，不向调用方传播错误
func (s *ReconciliationService) ComputeStats(ctx context.Context, reference string, rate decimal.Decimal, from, to *time.Time) *Stats {
	normalized := strings.ToUpper(strings.TrimSpace(reference))
	cacheKey := statsCacheKey(normalized, from, to)

	var cached Stats
	if hit, err := cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
		return &cached
	}

	records, err := s.fetchOrders(ctx)
	if err != nil {
		logger.Errorw("ledger_fetch_failed", "error", err, "reference", normalized)
		return emptyStats(normalized, rate)
	}

	stats := s.Aggregate(normalized, rate, records, from, to)
	if err := cache.SetJSON(ctx, cacheKey, stats, statsCacheTTL); err != nil {
		logger.Warnw("stats_cache_write_failed", "error", err)
	}
	return stats
}

// MatchOrders 过滤出指定编码在时间窗口内的台账订单
func (s *ReconciliationService) MatchOrders(reference string, records []ledger.OrderRecord, from, to *time.Time) []ledger.OrderRecord {
	normalized := strings.ToUpper(strings.TrimSpace(reference))
	matched := make([]ledger.OrderRecord, 0)
	for _, record := range records {
		if !strings.EqualFold(record.Reference, normalized) {
			continue
		}
		if from != nil && record.Date.Before(*from) {
			continue
		}
		if to != nil && record.Date.After(*to) {
			continue
		}
		matched = append(matched, record)
	}
	return matched
}

// Aggregate 对匹配订单做纯内存聚合
// 零匹配返回全零结果而非错误
func (s *ReconciliationService) Aggregate(reference string, rate decimal.Decimal, records []ledger.OrderRecord, from, to *time.Time) *Stats {
	matched := s.MatchOrders(reference, records, from, to)
	stats := emptyStats(reference, rate)
	if len(matched) == 0 {
		return stats
	}

	// 按日期倒序，取最近订单
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Date.After(matched[j].Date)
	})

	fallback := s.missingAmountFallback()
	totalRevenue := decimal.Zero
	for _, record := range matched {
		amount := s.resolveAmount(record, fallback)
		totalRevenue = totalRevenue.Add(amount)

		monthKey := record.Date.Format("2006-01")
		monthly := stats.Monthly[monthKey]
		monthly.Sales++
		monthly.Revenue = models.NewMoneyFromDecimal(monthly.Revenue.Decimal.Add(amount))
		stats.Monthly[monthKey] = monthly

		if len(stats.RecentOrders) < constants.RecentOrdersLimit {
			stats.RecentOrders = append(stats.RecentOrders, OrderSummary{
				Date:    record.Date,
				OrderID: record.OrderID,
				Amount:  models.NewMoneyFromDecimal(amount),
			})
		}
	}

	lastSale := matched[0].Date
	stats.LastSaleDate = &lastSale
	stats.TotalSales = len(matched)
	stats.TotalRevenue = models.NewMoneyFromDecimal(totalRevenue)
	stats.TotalCommission = models.NewMoneyFromDecimal(totalRevenue.Mul(rate).Div(decimal.NewFromInt(100)))
	stats.AverageOrderValue = models.NewMoneyFromDecimal(totalRevenue.Div(decimal.NewFromInt(int64(len(matched)))))
	return stats
}

// CommissionLine 单笔订单的佣金行，用于账单生成
type CommissionLine struct {
	OrderID    string
	Date       time.Time
	Amount     decimal.Decimal
	Commission decimal.Decimal
}

// CommissionLines 计算时间窗口内每笔匹配订单的佣金
func (s *ReconciliationService) CommissionLines(ctx context.Context, reference string, rate decimal.Decimal, from, to *time.Time) ([]CommissionLine, error) {
	records, err := s.fetchOrders(ctx)
	if err != nil {
		return nil, err
	}

	matched := s.MatchOrders(reference, records, from, to)
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Date.Before(matched[j].Date)
	})

	fallback := s.missingAmountFallback()
	lines := make([]CommissionLine, 0, len(matched))
	for _, record := range matched {
		amount := s.resolveAmount(record, fallback)
		lines = append(lines, CommissionLine{
			OrderID:    record.OrderID,
			Date:       record.Date,
			Amount:     amount,
			Commission: amount.Mul(rate).Div(decimal.NewFromInt(100)).Round(2),
		})
	}
	return lines, nil
}

// Ping 探测台账连通性（诊断接口用）
func (s *ReconciliationService) Ping(ctx context.Context) (int, error) {
	records, err := s.fetchOrders(ctx)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func statsCacheKey(reference string, from, to *time.Time) string {
	fromPart, toPart := "-", "-"
	if from != nil {
		fromPart = from.Format("20060102")
	}
	if to != nil {
		toPart = to.Format("20060102")
	}
	return fmt.Sprintf("stats:%s:%s:%s", reference, fromPart, toPart)
}
