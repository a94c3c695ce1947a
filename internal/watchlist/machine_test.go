package watchlist

import (
	"testing"

	"fadebot/internal/config"
	"fadebot/internal/market"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMachine(entries map[string]*Entry) *Machine {
	return NewMachine(
		config.WatchConfig{StallCandles: 2, TTLHours: 24},
		config.TradeConfig{NotionalUSDT: 20, TPFromHighPct: 0.30, SLMult: 2.0},
		entries,
	)
}

func candle(high, close float64) market.Candle {
	return market.Candle{High: high, Low: close, Close: close}
}

func TestRisingHighsNeverTrigger(t *testing.T) {
	m := newTestMachine(nil)
	require.True(t, m.Admit("AAAUSDT", 100, 1000))

	highs := []float64{101, 102, 103, 104, 105}
	for i, h := range highs {
		d := m.Evaluate("AAAUSDT", candle(h, h-1), h-0.5, true, int64(1000+i))
		assert.Equal(t, ActionNone, d.Action)
	}
	st, ok := m.StateOf("AAAUSDT")
	require.True(t, ok)
	assert.Equal(t, Rising, st)
}

func TestStallReachesThresholdExactly(t *testing.T) {
	m := newTestMachine(nil)
	require.True(t, m.Admit("AAAUSDT", 100, 1000))

	// first stalled candle: count 1, still Rising
	d := m.Evaluate("AAAUSDT", candle(99, 95), 95, true, 1001)
	assert.Equal(t, ActionNone, d.Action)
	st, _ := m.StateOf("AAAUSDT")
	assert.Equal(t, Rising, st)

	// second stalled candle hits the threshold and triggers: entry 95 is
	// above TP-from-high 70
	d = m.Evaluate("AAAUSDT", candle(98, 95), 95, true, 1002)
	assert.Equal(t, ActionTrigger, d.Action)
	assert.InDelta(t, 95.0, d.Entry, 1e-9)
	assert.InDelta(t, 70.0, d.TPFromHigh, 1e-9)
	assert.InDelta(t, 100.0, d.LocalHigh, 1e-9)
	assert.False(t, m.Has("AAAUSDT"), "trigger must remove the entry")
}

func TestBlockedWhenEntryAtOrBelowTP(t *testing.T) {
	m := newTestMachine(nil)
	require.True(t, m.Admit("AAAUSDT", 100, 1000))

	m.Evaluate("AAAUSDT", candle(99, 95), 95, true, 1001)
	// stalled at threshold but the market already fell to 65 <= TP 70
	d := m.Evaluate("AAAUSDT", candle(98, 66), 65, true, 1002)
	assert.Equal(t, ActionSkipBelowTP, d.Action)
	assert.True(t, m.Has("AAAUSDT"), "blocked entry stays watched")
	st, _ := m.StateOf("AAAUSDT")
	assert.Equal(t, Blocked, st)

	// still blocked: further stalling emits nothing
	d = m.Evaluate("AAAUSDT", candle(97, 64), 64, true, 1003)
	assert.Equal(t, ActionNone, d.Action)

	// a fresh high resets to Rising and unblocks
	d = m.Evaluate("AAAUSDT", candle(120, 118), 118, true, 1004)
	assert.Equal(t, ActionNone, d.Action)
	st, _ = m.StateOf("AAAUSDT")
	assert.Equal(t, Rising, st)
}

func TestLocalHighMonotone(t *testing.T) {
	entries := map[string]*Entry{}
	m := newTestMachine(entries)
	require.True(t, m.Admit("AAAUSDT", 100, 1000))

	m.Evaluate("AAAUSDT", candle(110, 108), 108, true, 1001)
	assert.InDelta(t, 110.0, entries["AAAUSDT"].LocalHigh, 1e-9)
	m.Evaluate("AAAUSDT", candle(105, 104), 104, true, 1002)
	assert.InDelta(t, 110.0, entries["AAAUSDT"].LocalHigh, 1e-9)
}

func TestTickerFallbackToCandleClose(t *testing.T) {
	m := newTestMachine(nil)
	require.True(t, m.Admit("AAAUSDT", 100, 1000))
	m.Evaluate("AAAUSDT", candle(99, 95), 0, false, 1001)
	d := m.Evaluate("AAAUSDT", candle(98, 95), 0, false, 1002)
	assert.Equal(t, ActionTrigger, d.Action)
	assert.InDelta(t, 95.0, d.Entry, 1e-9)
}

func TestExpireStale(t *testing.T) {
	m := newTestMachine(nil)
	require.True(t, m.Admit("OLDUSDT", 100, 0))
	require.True(t, m.Admit("NEWUSDT", 100, 80_000))

	removed := m.ExpireStale(86_400) // exactly the 24h TTL after OLDUSDT
	assert.Equal(t, 1, removed)
	assert.False(t, m.Has("OLDUSDT"))
	assert.True(t, m.Has("NEWUSDT"))
}

func TestAdmitDuplicate(t *testing.T) {
	m := newTestMachine(nil)
	require.True(t, m.Admit("AAAUSDT", 100, 1000))
	assert.False(t, m.Admit("AAAUSDT", 120, 1001))
	assert.Equal(t, 1, m.Len())
}
