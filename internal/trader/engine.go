package trader

import (
	"math"

	"fadebot/internal/config"
	"fadebot/internal/market"
)

// Engine owns the paper-trade lifecycle rules: opening from trigger
// decisions and the per-cycle TP/SL/funding-guard evaluation of open trades.
type Engine struct {
	trade   config.TradeConfig
	funding config.FundingConfig
}

func NewEngine(trade config.TradeConfig, funding config.FundingConfig) *Engine {
	return &Engine{trade: trade, funding: funding}
}

// Open creates a new short at the given market entry. TP derives from the
// local high, SL from the entry. Funding terms are captured at open so the
// close record can be audited later.
func (e *Engine) Open(symbol string, entry, localHigh float64, tick market.TickerSnapshot, now int64) *Trade {
	return &Trade{
		ID:     tradeID(symbol, now),
		Symbol: symbol,
		Status: StatusOpen,
		Side:   "SHORT",
		OpenTS: now,

		NotionalUSDT: e.trade.NotionalUSDT,
		Qty:          e.trade.NotionalUSDT / entry,

		Entry:     entry,
		TP:        localHigh * (1.0 - e.trade.TPFromHighPct),
		SL:        entry * e.trade.SLMult,
		LocalHigh: localHigh,

		FundingRateAtOpen:   tick.FundingRate,
		NextFundingMsAtOpen: tick.NextFundingMs,
	}
}

// Evaluate advances one open trade by one closed candle plus the live ticker.
// The funding guard runs first and closes at the mark price; otherwise the
// candle range decides TP/SL hits, and a candle touching both resolves to SL
// (the intrabar order is unknowable, so the losing side wins the tie).
// Closed trades and trades without a candle this cycle are left untouched.
func (e *Engine) Evaluate(tr *Trade, c *market.Candle, tick market.TickerSnapshot, haveTick bool, now int64) (CloseReason, bool) {
	if tr == nil || !tr.IsOpen() || c == nil {
		return ReasonNone, false
	}

	mark := c.Close
	rate := 0.0
	if haveTick {
		if tick.Last > 0 {
			mark = tick.Last
		}
		rate = tick.FundingRate
	}

	if e.shouldExitFunding(tr, rate, mark) {
		tr.close(now, ReasonFundingGuard, mark)
		return ReasonFundingGuard, true
	}

	hitTP := c.Low <= tr.TP
	hitSL := c.High >= tr.SL
	switch {
	case hitSL: // covers the both-hit tie as well
		tr.close(now, ReasonSL, tr.SL)
		return ReasonSL, true
	case hitTP:
		tr.close(now, ReasonTP, tr.TP)
		return ReasonTP, true
	default:
		return ReasonNone, false
	}
}

// shouldExitFunding implements the funding guard: with a negative rate the
// short pays, and if the next payment would erase at least guard_ratio of the
// profit still outstanding to TP, paying it is not worth the wait.
func (e *Engine) shouldExitFunding(tr *Trade, rate, mark float64) bool {
	if !e.funding.EnableGuard {
		return false
	}
	if rate >= 0 {
		return false // shorts receive or are neutral
	}
	remaining := remainingProfitToTP(tr, mark)
	if remaining <= 0 {
		return false // at/past TP already, the TP check handles it
	}
	expected := tr.NotionalUSDT * rate // negative when the short pays
	return math.Abs(expected) >= remaining*e.funding.GuardRatio
}

// remainingProfitToTP is the unrealized profit still to be earned before the
// short reaches its target; zero when the mark already sits at or past TP.
func remainingProfitToTP(tr *Trade, mark float64) float64 {
	if mark <= tr.TP {
		return 0
	}
	return (mark - tr.TP) * tr.Qty
}
