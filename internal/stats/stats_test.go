package stats

import (
	"math"
	"testing"

	"fadebot/internal/trader"

	"github.com/stretchr/testify/assert"
)

func closed(entry, closePrice, qty float64) *trader.Trade {
	return &trader.Trade{Status: trader.StatusClosed, Entry: entry, ClosePrice: closePrice, Qty: qty}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.Closed)
	assert.Equal(t, "[STATS] closed=0", s.String())
}

func TestSummarizeIgnoresOpenTrades(t *testing.T) {
	b := trader.Book{
		{Status: trader.StatusOpen, Entry: 100, Qty: 1},
		closed(100, 90, 1),
	}
	s := Summarize(b)
	assert.Equal(t, 1, s.Closed)
	assert.Equal(t, 1, s.Wins)
}

func TestSummarizeMixed(t *testing.T) {
	b := trader.Book{
		closed(100, 90, 1),  // +10
		closed(100, 105, 1), // -5
		closed(50, 48, 2),   // +4
	}
	s := Summarize(b)
	assert.Equal(t, 3, s.Closed)
	assert.Equal(t, 2, s.Wins)
	assert.Equal(t, 1, s.Losses)
	assert.InDelta(t, 66.666, s.WinRatePct, 0.01)
	assert.InDelta(t, 9.0, s.TotalPnL, 1e-9)
	assert.InDelta(t, 3.0, s.AvgPnL, 1e-9)
	assert.InDelta(t, 2.8, s.ProfitFactor, 1e-9) // 14 / 5
}

func TestProfitFactorInfiniteWithoutLosses(t *testing.T) {
	s := Summarize(trader.Book{closed(100, 90, 1), closed(100, 95, 1)})
	assert.True(t, math.IsInf(s.ProfitFactor, 1))
}

func TestProfitFactorZeroWithoutWins(t *testing.T) {
	s := Summarize(trader.Book{closed(100, 110, 1)})
	assert.Equal(t, 0.0, s.ProfitFactor)
	assert.InDelta(t, -10.0, s.TotalPnL, 1e-9)
}

// A breakeven close counts against the win rate, same as a loss.
func TestBreakevenCountsAsLoss(t *testing.T) {
	s := Summarize(trader.Book{closed(100, 100, 1)})
	assert.Equal(t, 1, s.Losses)
	assert.Equal(t, 0.0, s.WinRatePct)
}
