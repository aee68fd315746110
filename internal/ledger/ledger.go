package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// OrderRecord 台账中的一条订单记录
// Amount 为 nil 表示该行缺少金额列，由对账侧按配置兜底
type OrderRecord struct {
	Date      time.Time        // 订单日期
	Reference string           // 达人推广编码（已去空格、转大写）
	OrderID   string           // 订单编号
	Amount    *decimal.Decimal // 订单金额，缺失为 nil
}

// Source 订单台账数据源
type Source interface {
	FetchOrders(ctx context.Context) ([]OrderRecord, error)
}
