package model

import "gorm.io/datatypes"

// DecisionEventModel is one append-only journal row for a TRIGGER,
// SKIP_BELOW_TP or TRADE_CLOSE decision.
type DecisionEventModel struct {
	ID        int64          `gorm:"column:id;primaryKey"`
	EventID   string         `gorm:"column:event_uuid;index"`
	Type      string         `gorm:"column:type;index"`
	Symbol    string         `gorm:"column:symbol;index"`
	Payload   datatypes.JSON `gorm:"column:payload"`
	CreatedTS int64          `gorm:"column:created_ts;index"`
}

func (DecisionEventModel) TableName() string { return "decision_events" }

// ClosedTradeModel archives a closed paper trade for the HTTP surface; the
// JSON trades file stays the durable source of truth.
type ClosedTradeModel struct {
	ID                int64   `gorm:"column:id;primaryKey"`
	TradeID           string  `gorm:"column:trade_id;uniqueIndex"`
	Symbol            string  `gorm:"column:symbol;index"`
	Side              string  `gorm:"column:side"`
	NotionalUSDT      float64 `gorm:"column:notional_usdt"`
	Qty               float64 `gorm:"column:qty"`
	Entry             float64 `gorm:"column:entry"`
	TP                float64 `gorm:"column:tp"`
	SL                float64 `gorm:"column:sl"`
	LocalHigh         float64 `gorm:"column:local_high"`
	FundingRateAtOpen float64 `gorm:"column:funding_rate_at_open"`
	OpenTS            int64   `gorm:"column:open_ts;index"`
	CloseTS           int64   `gorm:"column:close_ts"`
	CloseReason       string  `gorm:"column:close_reason"`
	ClosePrice        float64 `gorm:"column:close_price"`
	PnL               float64 `gorm:"column:pnl"`
}

func (ClosedTradeModel) TableName() string { return "closed_trades" }
