package trader

import "fmt"

type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

type CloseReason string

const (
	ReasonNone         CloseReason = ""
	ReasonTP           CloseReason = "TP"
	ReasonSL           CloseReason = "SL"
	ReasonFundingGuard CloseReason = "FUNDING_GUARD"
)

// Trade is one simulated short position. Once Status is CLOSED the record is
// immutable: close fields are set exactly once and never cleared.
type Trade struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Status Status `json:"status"`
	Side   string `json:"side"` // always SHORT
	OpenTS int64  `json:"open_ts"`

	NotionalUSDT float64 `json:"notional_usdt"`
	Qty          float64 `json:"qty"`

	Entry     float64 `json:"entry"`
	TP        float64 `json:"tp"`
	SL        float64 `json:"sl"`
	LocalHigh float64 `json:"local_high"`

	FundingRateAtOpen   float64 `json:"funding_rate_at_open"`
	NextFundingMsAtOpen int64   `json:"next_funding_ms_at_open"`

	CloseTS     int64       `json:"close_ts,omitempty"`
	CloseReason CloseReason `json:"close_reason,omitempty"`
	ClosePrice  float64     `json:"close_price,omitempty"`
}

func (t *Trade) IsOpen() bool { return t.Status == StatusOpen }

// PnL returns the realized result using the short convention
// (entry - close) * qty. Defined only for closed trades with a close price.
func (t *Trade) PnL() (float64, bool) {
	if t.Status != StatusClosed || t.ClosePrice <= 0 {
		return 0, false
	}
	return (t.Entry - t.ClosePrice) * t.Qty, true
}

func (t *Trade) close(now int64, reason CloseReason, price float64) {
	t.Status = StatusClosed
	t.CloseTS = now
	t.CloseReason = reason
	t.ClosePrice = price
}

// Book is the full trade list, open and closed.
type Book []*Trade

func (b Book) OpenCount() int {
	n := 0
	for _, t := range b {
		if t.IsOpen() {
			n++
		}
	}
	return n
}

func (b Book) ClosedCount() int {
	n := 0
	for _, t := range b {
		if t.Status == StatusClosed {
			n++
		}
	}
	return n
}

func (b Book) HasOpen(symbol string) bool {
	for _, t := range b {
		if t.Symbol == symbol && t.IsOpen() {
			return true
		}
	}
	return false
}

func tradeID(symbol string, openTS int64) string {
	return fmt.Sprintf("%s:%d", symbol, openTS)
}
