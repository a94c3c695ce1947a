package scanner

import (
	"strings"

	"fadebot/internal/config"
	"fadebot/internal/market"
)

// Candidate is a ticker row that passed every pump filter, carrying the
// computed pump metrics. Recomputed fresh each cycle, never persisted.
type Candidate struct {
	Symbol           string
	Last             float64
	High24h          float64
	Low24h           float64
	Turnover         float64
	PumpFromLow24Pct float64
	NearHighRatio    float64
	FundingRate      float64
	NextFundingMs    int64
}

// Filter applies the static pump thresholds to single ticker rows.
type Filter struct {
	cfg config.FilterConfig
}

func NewFilter(cfg config.FilterConfig) Filter {
	return Filter{cfg: cfg}
}

// Classify reports whether the ticker qualifies as a pump candidate. All
// numeric thresholds are AND-conditions. Zeroed (unparseable) prices fail the
// positivity checks, which is how malformed rows get excluded.
func (f Filter) Classify(t market.TickerSnapshot) (Candidate, bool) {
	if !strings.HasSuffix(t.Symbol, f.cfg.Quote) {
		return Candidate{}, false
	}
	if t.Last <= 0 || t.High24h <= 0 || t.Low24h <= 0 {
		return Candidate{}, false
	}
	if t.Turnover24h < f.cfg.MinTurnoverUSDT {
		return Candidate{}, false
	}
	pump := (t.Last - t.Low24h) / t.Low24h * 100.0
	if pump < f.cfg.MinPumpFromLow24Pct {
		return Candidate{}, false
	}
	nearHigh := t.Last / t.High24h
	if nearHigh < f.cfg.NearHighRatio {
		return Candidate{}, false
	}
	return Candidate{
		Symbol:           t.Symbol,
		Last:             t.Last,
		High24h:          t.High24h,
		Low24h:           t.Low24h,
		Turnover:         t.Turnover24h,
		PumpFromLow24Pct: pump,
		NearHighRatio:    nearHigh,
		FundingRate:      t.FundingRate,
		NextFundingMs:    t.NextFundingMs,
	}, true
}
