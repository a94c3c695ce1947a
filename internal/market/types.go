package market

import (
	"context"
	"errors"
	"fmt"
)

// Candle is one closed OHLC bar for a symbol/timeframe.
type Candle struct {
	OpenTimeMs int64   `json:"open_time_ms"`
	Open       float64 `json:"open"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Close      float64 `json:"close"`
}

// TickerSnapshot is one row of the full-market snapshot taken each cycle.
// Numeric fields that fail to parse upstream arrive here as 0 and fall out of
// the candidate filter on the positivity checks.
type TickerSnapshot struct {
	Symbol        string
	Last          float64
	High24h       float64
	Low24h        float64
	Turnover24h   float64
	FundingRate   float64
	NextFundingMs int64
}

// Source supplies exchange market data. Implementations live under
// internal/gateway and must be safe for sequential reuse across cycles.
type Source interface {
	Name() string

	// ListTickers returns the full ticker snapshot for the configured
	// category. A non-success upstream response is a *SourceError.
	ListTickers(ctx context.Context) ([]TickerSnapshot, error)

	// LastClosedCandle returns the most recently completed bar, or
	// (nil, nil) when the exchange has no data for the symbol.
	LastClosedCandle(ctx context.Context, symbol, timeframe string) (*Candle, error)
}

// SourceError marks a recoverable upstream market-data failure. The cycle
// loop logs it and retries after a backoff instead of terminating.
type SourceError struct {
	Exchange string
	Op       string
	Err      error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Exchange, e.Op, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// IsSourceError reports whether err is (or wraps) a SourceError.
func IsSourceError(err error) bool {
	var se *SourceError
	return errors.As(err, &se)
}
