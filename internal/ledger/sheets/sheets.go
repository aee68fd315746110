package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/promolink-next/internal/ledger"
	"github.com/promolink-next/internal/logger"

	"github.com/shopspring/decimal"
)

var (
	ErrConfigInvalid   = errors.New("sheets config invalid")
	ErrRequestFailed   = errors.New("sheets request failed")
	ErrResponseInvalid = errors.New("sheets response invalid")
)

// 台账表列布局：日期、推广编码、订单号、金额
const (
	colDate = iota
	colReference
	colOrderID
	colAmount
)

// 日期列兼容的格式，按顺序尝试
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Config Google Sheets 台账配置
type Config struct {
	BaseURL       string // API 地址，默认官方网关
	SpreadsheetID string // 表格 ID
	Range         string // 读取范围，如 Orders!A:D
	APIKey        string // API Key
	Timeout       time.Duration
}

func (c *Config) normalize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.SpreadsheetID = strings.TrimSpace(c.SpreadsheetID)
	c.Range = strings.TrimSpace(c.Range)
	c.APIKey = strings.TrimSpace(c.APIKey)
	if c.BaseURL == "" {
		c.BaseURL = "https://sheets.googleapis.com"
	}
	if c.Range == "" {
		c.Range = "Orders!A:D"
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
}

// Client 只读的 Sheets 台账客户端，实现 ledger.Source
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient 创建台账客户端
func NewClient(cfg Config) (*Client, error) {
	cfg.normalize()
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("%w: spreadsheet_id is required", ErrConfigInvalid)
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type valuesResponse struct {
	Range          string     `json:"range"`
	MajorDimension string     `json:"majorDimension"`
	Values         [][]string `json:"values"`
}

// FetchOrders 拉取台账全量订单记录
// 首行视为表头跳过；有效列不足两列的行直接丢弃
func (c *Client) FetchOrders(ctx context.Context) ([]ledger.OrderRecord, error) {
	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s",
		c.cfg.BaseURL,
		url.PathEscape(c.cfg.SpreadsheetID),
		url.PathEscape(c.cfg.Range),
	)
	if c.cfg.APIKey != "" {
		endpoint += "?key=" + url.QueryEscape(c.cfg.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: http status %d", ErrRequestFailed, resp.StatusCode)
	}

	var parsed valuesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}

	return parseRows(parsed.Values), nil
}

// parseRows 将表格行转换为订单记录，跳过表头与残缺行
func parseRows(rows [][]string) []ledger.OrderRecord {
	records := make([]ledger.OrderRecord, 0, len(rows))
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if populatedCells(row) < 2 {
			continue
		}
		record := ledger.OrderRecord{}
		if len(row) > colDate {
			record.Date = parseDate(row[colDate])
		}
		if len(row) > colReference {
			record.Reference = strings.ToUpper(strings.TrimSpace(row[colReference]))
		}
		if len(row) > colOrderID {
			record.OrderID = strings.TrimSpace(row[colOrderID])
		}
		if len(row) > colAmount {
			record.Amount = parseAmount(row[colAmount])
		}
		if record.Reference == "" {
			continue
		}
		records = append(records, record)
	}
	return records
}

func populatedCells(row []string) int {
	count := 0
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			count++
		}
	}
	return count
}

func parseDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	logger.Warnw("ledger_date_parse_failed", "raw", raw)
	return time.Time{}
}

// parseAmount 解析金额列，剥离货币符号与千分位；无法解析视为缺失
func parseAmount(raw string) *decimal.Decimal {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimLeft(cleaned, "$€£¥ ")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return nil
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		logger.Warnw("ledger_amount_parse_failed", "raw", raw)
		return nil
	}
	return &d
}
