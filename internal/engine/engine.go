package engine

import (
	"context"
	"sort"
	"sync"
	"time"

	"fadebot/internal/config"
	"fadebot/internal/logger"
	"fadebot/internal/market"
	"fadebot/internal/scanner"
	"fadebot/internal/scheduler"
	"fadebot/internal/stats"
	"fadebot/internal/store"
	"fadebot/internal/trader"
	"fadebot/internal/watchlist"
)

const (
	errorBackoff = 3 * time.Second
	cycleTimeout = 2 * time.Minute
)

// Status is the read-only per-cycle summary exposed to the HTTP surface.
type Status struct {
	CycleTS      int64         `json:"cycle_ts"`
	BarCloseMs   int64         `json:"bar_close_ms"`
	Exchange     string        `json:"exchange"`
	Candidates   int           `json:"candidates"`
	WatchSize    int           `json:"watch_size"`
	OpenTrades   int           `json:"open_trades"`
	ClosedTrades int           `json:"closed_trades"`
	Stats        stats.Summary `json:"stats"`
	Events       []Event       `json:"events"`
}

// Engine runs the scan-evaluate-persist cycle. All trading state is owned by
// the single cycle goroutine; the HTTP surface only ever reads the status
// snapshot behind the mutex.
type Engine struct {
	cfg       *config.Config
	src       market.Source
	journal   *store.Journal
	filter    scanner.Filter
	lifecycle *trader.Engine

	bar     time.Duration
	state   *State
	machine *watchlist.Machine
	trades  trader.Book

	mu     sync.RWMutex
	status Status
}

func New(cfg *config.Config, src market.Source, journal *store.Journal) (*Engine, error) {
	bar, err := scheduler.ParseTimeframe(cfg.Market.Timeframe)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:       cfg,
		src:       src,
		journal:   journal,
		filter:    scanner.NewFilter(cfg.Filter),
		lifecycle: trader.NewEngine(cfg.Trade, cfg.Funding),
		bar:       bar,
	}, nil
}

// Run drives cycles until ctx is cancelled. The in-flight cycle always runs
// to completion: in-cycle work uses a detached context so an interrupt never
// abandons a half-evaluated pass.
func (e *Engine) Run(ctx context.Context) error {
	e.loadDurable()
	logger.Infof("loaded trades=%d open=%d watch=%d (exchange=%s tf=%s)",
		len(e.trades), e.trades.OpenCount(), e.machine.Len(), e.src.Name(), e.cfg.Market.Timeframe)

	wake := e.cfg.Market.WakeInterval()
	for {
		if ctx.Err() != nil {
			logger.Infof("[EXIT] shutting down")
			return nil
		}
		cycleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cycleTimeout)
		err := e.cycle(cycleCtx, time.Now())
		cancel()

		delay := wake
		if err != nil {
			logger.Errorf("[ERROR] %v", err)
			delay = errorBackoff
		}
		if !sleepWithContext(ctx, delay) {
			logger.Infof("[EXIT] shutting down")
			return nil
		}
	}
}

func (e *Engine) loadDurable() {
	state := NewState()
	if store.LoadJSON(e.cfg.Store.StateFile, state) {
		state.normalize()
	}
	e.state = state

	var trades trader.Book
	store.LoadJSON(e.cfg.Store.TradesFile, &trades)
	e.trades = trades

	e.machine = watchlist.NewMachine(e.cfg.Watch, e.cfg.Trade, e.state.Watch)
}

// cycle is one full scan-evaluate-persist pass.
func (e *Engine) cycle(ctx context.Context, now time.Time) error {
	nowTS := now.Unix()

	barClose := now.UnixMilli()
	if e.cfg.Market.OnlyOnBarClose {
		barClose = scheduler.BarCloseMillis(e.bar, now)
		if e.state.LastBarCloseMs != nil && *e.state.LastBarCloseMs == barClose {
			return nil // bar already processed, wait for the next close
		}
	}
	e.state.LastBarCloseMs = &barClose

	tickers, err := e.src.ListTickers(ctx)
	if err != nil {
		return err
	}

	tickMap := make(map[string]market.TickerSnapshot, len(tickers))
	var candidates []scanner.Candidate
	for _, t := range tickers {
		if t.Symbol == "" {
			continue
		}
		tickMap[t.Symbol] = t
		if c, ok := e.filter.Classify(t); ok {
			candidates = append(candidates, c)
		}
	}

	e.updateOpenTrades(ctx, tickMap, nowTS)
	e.saveTrades()

	summary := stats.Summarize(e.trades)
	logger.Infof("[SCAN] cand=%d watch=%d open=%d closed=%d",
		len(candidates), e.machine.Len(), e.trades.OpenCount(), e.trades.ClosedCount())
	logger.Infof("%s", summary)

	if removed := e.machine.ExpireStale(nowTS); removed > 0 {
		logger.Infof("[WATCH] removed_by_ttl=%d", removed)
	}

	added := e.admitCandidates(ctx, candidates, nowTS)
	triggered, skipped := e.evaluateWatchlist(ctx, tickMap, nowTS)

	e.saveState()
	e.saveTrades()

	if added > 0 {
		logger.Infof("[WATCH] added=%d", added)
	}
	if skipped > 0 {
		logger.Infof("[WATCH] skipped_below_tp=%d", skipped)
	}
	if triggered == 0 {
		logger.Infof("[INFO] no triggers this bar")
	}

	e.publishStatus(Status{
		CycleTS:      nowTS,
		BarCloseMs:   barClose,
		Exchange:     e.src.Name(),
		Candidates:   len(candidates),
		WatchSize:    e.machine.Len(),
		OpenTrades:   e.trades.OpenCount(),
		ClosedTrades: e.trades.ClosedCount(),
		Stats:        summary,
		Events:       e.state.RecentEvents(50),
	})
	return nil
}

// updateOpenTrades evaluates every open trade against its latest closed
// candle and the live ticker. A symbol without a candle this cycle is left
// untouched.
func (e *Engine) updateOpenTrades(ctx context.Context, tickMap map[string]market.TickerSnapshot, now int64) {
	for _, tr := range e.trades {
		if !tr.IsOpen() {
			continue
		}
		candle := e.lastCandle(ctx, tr.Symbol)
		if candle == nil {
			continue
		}
		tick, haveTick := tickMap[tr.Symbol]
		reason, closed := e.lifecycle.Evaluate(tr, candle, tick, haveTick, now)
		if !closed {
			continue
		}
		pnl, _ := tr.PnL()
		logger.Infof("[PAPER] CLOSE %s reason=%s price=%.6f pnl=%.4f", tr.Symbol, reason, tr.ClosePrice, pnl)
		e.state.AppendEvent(Event{
			TS:          now,
			Type:        EventTradeClose,
			Symbol:      tr.Symbol,
			Entry:       tr.Entry,
			TP:          tr.TP,
			SL:          tr.SL,
			CloseReason: string(reason),
			ClosePrice:  tr.ClosePrice,
		})
		e.journalTradeClose(ctx, tr, now)
	}
}

// admitCandidates starts watching qualifying candidates that are not already
// watched, cooling down, or carrying an open trade.
func (e *Engine) admitCandidates(ctx context.Context, candidates []scanner.Candidate, now int64) int {
	added := 0
	for _, c := range candidates {
		if e.machine.Has(c.Symbol) {
			continue
		}
		if e.state.InCooldown(c.Symbol, now, e.cfg.Trade.Cooldown()) {
			continue
		}
		if e.trades.HasOpen(c.Symbol) {
			continue
		}
		candle := e.lastCandle(ctx, c.Symbol)
		if candle == nil {
			continue
		}
		if e.machine.Admit(c.Symbol, candle.High, now) {
			added++
		}
	}
	return added
}

// evaluateWatchlist advances the stall machine for every watched symbol and
// acts on its decision.
func (e *Engine) evaluateWatchlist(ctx context.Context, tickMap map[string]market.TickerSnapshot, now int64) (triggered, skipped int) {
	symbols := e.machine.Symbols()
	sort.Strings(symbols)

	for _, sym := range symbols {
		candle := e.lastCandle(ctx, sym)
		if candle == nil {
			continue
		}
		tick, haveTick := tickMap[sym]
		d := e.machine.Evaluate(sym, *candle, tick.Last, haveTick, now)
		switch d.Action {
		case watchlist.ActionSkipBelowTP:
			skipped++
			logger.Infof("[SKIP] %s entry=%.6f <= TP(fromHigh)=%.6f -> keep watching (blocked until new high)",
				sym, d.Entry, d.TPFromHigh)
			evt := Event{
				TS:        now,
				Type:      EventSkipBelowTP,
				Symbol:    sym,
				Entry:     d.Entry,
				TP:        d.TPFromHigh,
				LocalHigh: d.LocalHigh,
			}
			e.state.AppendEvent(evt)
			e.journalEvent(ctx, evt)

		case watchlist.ActionTrigger:
			tr := e.lifecycle.Open(sym, d.Entry, d.LocalHigh, tick, now)
			e.trades = append(e.trades, tr)
			e.state.SetCooldown(sym, now)
			triggered++
			logger.Infof("[PAPER] TRIGGER %s entry(MKT)=%.6f TP(fromHigh)=%.6f SL=%.6f localHigh=%.6f funding=%.6f",
				sym, tr.Entry, tr.TP, tr.SL, tr.LocalHigh, tr.FundingRateAtOpen)
			evt := Event{
				TS:          now,
				Type:        EventTrigger,
				Symbol:      sym,
				Entry:       tr.Entry,
				TP:          tr.TP,
				SL:          tr.SL,
				LocalHigh:   tr.LocalHigh,
				FundingRate: tr.FundingRateAtOpen,
			}
			e.state.AppendEvent(evt)
			e.journalEvent(ctx, evt)
		}
	}
	return triggered, skipped
}

// lastCandle fetches the latest closed candle for a symbol; missing data or
// a per-symbol fetch failure just skips the symbol for this cycle.
func (e *Engine) lastCandle(ctx context.Context, symbol string) *market.Candle {
	c, err := e.src.LastClosedCandle(ctx, symbol, e.cfg.Market.Timeframe)
	if err != nil {
		logger.Debugf("kline fetch %s failed: %v", symbol, err)
		return nil
	}
	return c
}

func (e *Engine) saveState() {
	if err := store.SaveJSON(e.cfg.Store.StateFile, e.state); err != nil {
		logger.Errorf("persist state: %v", err)
	}
}

func (e *Engine) saveTrades() {
	if err := store.SaveJSON(e.cfg.Store.TradesFile, e.trades); err != nil {
		logger.Errorf("persist trades: %v", err)
	}
}

func (e *Engine) journalEvent(ctx context.Context, evt Event) {
	if e.journal == nil {
		return
	}
	err := e.journal.AppendEvent(ctx, store.EventRecord{
		Type:   evt.Type,
		Symbol: evt.Symbol,
		Payload: map[string]any{
			"entry":      evt.Entry,
			"tp":         evt.TP,
			"sl":         evt.SL,
			"local_high": evt.LocalHigh,
		},
		CreatedTS: evt.TS,
	})
	if err != nil {
		logger.Warnf("journal event: %v", err)
	}
}

func (e *Engine) journalTradeClose(ctx context.Context, tr *trader.Trade, now int64) {
	if e.journal == nil {
		return
	}
	if err := e.journal.ArchiveTrade(ctx, tr); err != nil {
		logger.Warnf("journal trade archive: %v", err)
	}
	pnl, _ := tr.PnL()
	err := e.journal.AppendEvent(ctx, store.EventRecord{
		Type:   EventTradeClose,
		Symbol: tr.Symbol,
		Payload: map[string]any{
			"reason":      string(tr.CloseReason),
			"close_price": tr.ClosePrice,
			"pnl":         pnl,
		},
		CreatedTS: now,
	})
	if err != nil {
		logger.Warnf("journal event: %v", err)
	}
}

func (e *Engine) publishStatus(st Status) {
	e.mu.Lock()
	e.status = st
	e.mu.Unlock()
}

// StatusSnapshot returns the last published cycle summary.
func (e *Engine) StatusSnapshot() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
