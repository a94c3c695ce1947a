package scanner

import (
	"testing"

	"fadebot/internal/config"
	"fadebot/internal/market"

	"github.com/stretchr/testify/assert"
)

func testFilterConfig() config.FilterConfig {
	return config.FilterConfig{
		Quote:               "USDT",
		MinPumpFromLow24Pct: 35.0,
		NearHighRatio:       0.88,
		MinTurnoverUSDT:     5_000_000,
	}
}

func pumpTicker() market.TickerSnapshot {
	// low 1.0 -> last 1.5 is a 50% pump sitting at 93.75% of the 24h high
	return market.TickerSnapshot{
		Symbol:      "ABCUSDT",
		Last:        1.5,
		High24h:     1.6,
		Low24h:      1.0,
		Turnover24h: 12_000_000,
		FundingRate: -0.0001,
	}
}

func TestClassifyAccepts(t *testing.T) {
	f := NewFilter(testFilterConfig())
	c, ok := f.Classify(pumpTicker())
	assert.True(t, ok)
	assert.Equal(t, "ABCUSDT", c.Symbol)
	assert.InDelta(t, 50.0, c.PumpFromLow24Pct, 1e-9)
	assert.InDelta(t, 0.9375, c.NearHighRatio, 1e-9)
}

func TestClassifyRejects(t *testing.T) {
	f := NewFilter(testFilterConfig())

	cases := []struct {
		name   string
		mutate func(*market.TickerSnapshot)
	}{
		{"wrong quote", func(t *market.TickerSnapshot) { t.Symbol = "ABCBTC" }},
		{"zero last", func(t *market.TickerSnapshot) { t.Last = 0 }},
		{"zero high24", func(t *market.TickerSnapshot) { t.High24h = 0 }},
		{"zero low24", func(t *market.TickerSnapshot) { t.Low24h = 0 }},
		{"thin turnover", func(t *market.TickerSnapshot) { t.Turnover24h = 4_999_999 }},
		{"weak pump", func(t *market.TickerSnapshot) { t.Last = 1.3 }}, // 30% < 35%
		{"far from high", func(t *market.TickerSnapshot) { t.High24h = 2.0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tick := pumpTicker()
			tc.mutate(&tick)
			_, ok := f.Classify(tick)
			assert.False(t, ok)
		})
	}
}

// Unparseable upstream numerics arrive as 0 and must fall out on the
// positivity checks rather than erroring.
func TestClassifyMalformedRow(t *testing.T) {
	f := NewFilter(testFilterConfig())
	_, ok := f.Classify(market.TickerSnapshot{Symbol: "XYZUSDT"})
	assert.False(t, ok)
}
