package stats

import (
	"fmt"
	"math"

	"fadebot/internal/trader"

	"github.com/shopspring/decimal"
)

// Summary is a read-only aggregate over the closed subset of a trade book.
type Summary struct {
	Closed       int     `json:"closed"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	WinRatePct   float64 `json:"win_rate_pct"`
	TotalPnL     float64 `json:"total_pnl"`
	AvgPnL       float64 `json:"avg_pnl"`
	ProfitFactor float64 `json:"profit_factor"`
}

// Summarize never mutates the book. PnL sums run through decimal so a long
// history of tiny fills doesn't drift. Profit factor is +Inf when there are
// wins and no losing money.
func Summarize(trades trader.Book) Summary {
	var (
		total  = decimal.Zero
		winSum = decimal.Zero
		losSum = decimal.Zero
		s      Summary
	)
	for _, t := range trades {
		pnl, ok := t.PnL()
		if !ok {
			continue
		}
		s.Closed++
		d := decimal.NewFromFloat(pnl)
		total = total.Add(d)
		if pnl > 0 {
			s.Wins++
			winSum = winSum.Add(d)
		} else {
			s.Losses++
			losSum = losSum.Add(d)
		}
	}
	if s.Closed == 0 {
		return s
	}
	s.WinRatePct = float64(s.Wins) / float64(s.Closed) * 100.0
	s.TotalPnL, _ = total.Float64()
	s.AvgPnL, _ = total.Div(decimal.NewFromInt(int64(s.Closed))).Float64()
	switch {
	case !losSum.IsZero():
		pf, _ := winSum.Div(losSum.Abs()).Float64()
		s.ProfitFactor = pf
	case s.Wins > 0:
		s.ProfitFactor = math.Inf(1)
	}
	return s
}

// String renders the console stats line.
func (s Summary) String() string {
	if s.Closed == 0 {
		return "[STATS] closed=0"
	}
	return fmt.Sprintf("[STATS] closed=%d winrate=%.1f%% totalPnL=%.2f avgPnL=%.2f PF=%.2f",
		s.Closed, s.WinRatePct, s.TotalPnL, s.AvgPnL, s.ProfitFactor)
}
