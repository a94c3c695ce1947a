package watchlist

import (
	"fadebot/internal/config"
	"fadebot/internal/market"
)

// State is the derived per-entry variant of the stall state machine.
type State int

const (
	// Rising: still printing new local highs, not eligible to trigger.
	Rising State = iota
	// Stalling: stall count reached the threshold, eligible to trigger.
	Stalling
	// Blocked: stalled but price already sits at/below the would-be take
	// profit; suppressed until a fresh local high resets the entry.
	Blocked
)

func (s State) String() string {
	switch s {
	case Stalling:
		return "STALLING"
	case Blocked:
		return "BLOCKED"
	default:
		return "RISING"
	}
}

// Entry is one watched symbol. LocalHigh is monotonically non-decreasing for
// the lifetime of the entry; Stall counts consecutive cycles without a new
// high.
type Entry struct {
	LocalHigh float64 `json:"local_high"`
	Stall     int     `json:"stall"`
	Blocked   bool    `json:"blocked"`
	CreatedTS int64   `json:"created_ts"`
	UpdatedTS int64   `json:"updated_ts"`
}

// Action is the per-cycle outcome of evaluating one watched symbol.
type Action int

const (
	ActionNone Action = iota
	// ActionSkipBelowTP: stalled but the prospective entry already moved
	// past the target; entry stays watched in Blocked state.
	ActionSkipBelowTP
	// ActionTrigger: open a short at Entry; the watch entry is removed.
	ActionTrigger
)

// Decision carries the trigger prices for the lifecycle engine and the event
// log.
type Decision struct {
	Action     Action
	Symbol     string
	Entry      float64
	TPFromHigh float64
	LocalHigh  float64
}

// Machine owns the watch map. It is pure state: candle and ticker data are
// fed in by the cycle loop, and persistence happens through the map it was
// constructed with.
type Machine struct {
	stallCandles  int
	tpFromHighPct float64
	ttlSeconds    int64
	entries       map[string]*Entry
}

// NewMachine wraps an existing (possibly restored) watch map. The map is
// mutated in place so the caller can persist it between cycles.
func NewMachine(watch config.WatchConfig, trade config.TradeConfig, entries map[string]*Entry) *Machine {
	if entries == nil {
		entries = make(map[string]*Entry)
	}
	return &Machine{
		stallCandles:  watch.StallCandles,
		tpFromHighPct: trade.TPFromHighPct,
		ttlSeconds:    int64(watch.TTL().Seconds()),
		entries:       entries,
	}
}

func (m *Machine) Len() int { return len(m.entries) }

func (m *Machine) Has(symbol string) bool {
	_, ok := m.entries[symbol]
	return ok
}

// Symbols returns the watched symbols in map order.
func (m *Machine) Symbols() []string {
	out := make([]string, 0, len(m.entries))
	for sym := range m.entries {
		out = append(out, sym)
	}
	return out
}

// StateOf derives the enum state for a watched symbol.
func (m *Machine) StateOf(symbol string) (State, bool) {
	e, ok := m.entries[symbol]
	if !ok {
		return Rising, false
	}
	switch {
	case e.Blocked:
		return Blocked, true
	case e.Stall >= m.stallCandles:
		return Stalling, true
	default:
		return Rising, true
	}
}

// ExpireStale removes every entry whose age reached the watch TTL,
// independent of its state. Returns the number removed.
func (m *Machine) ExpireStale(now int64) int {
	removed := 0
	for sym, e := range m.entries {
		if now-e.CreatedTS >= m.ttlSeconds {
			delete(m.entries, sym)
			removed++
		}
	}
	return removed
}

// Admit starts watching a symbol in Rising state. The initial local high is
// the high of the most recent closed candle, not the 24h high. Returns false
// when the symbol is already watched; cooldown and open-trade guards are the
// caller's responsibility.
func (m *Machine) Admit(symbol string, candleHigh float64, now int64) bool {
	if _, ok := m.entries[symbol]; ok {
		return false
	}
	m.entries[symbol] = &Entry{
		LocalHigh: candleHigh,
		CreatedTS: now,
		UpdatedTS: now,
	}
	return true
}

// Evaluate advances one watched symbol by one closed candle and returns the
// trigger decision. tickLast is the live price used as prospective entry;
// when haveTick is false the candle close is used instead. On ActionTrigger
// the entry is removed unconditionally, whether or not the caller manages to
// open the trade.
func (m *Machine) Evaluate(symbol string, c market.Candle, tickLast float64, haveTick bool, now int64) Decision {
	e, ok := m.entries[symbol]
	if !ok {
		return Decision{Action: ActionNone, Symbol: symbol}
	}
	wasBlocked := e.Blocked

	if c.High > e.LocalHigh {
		e.LocalHigh = c.High
		e.Stall = 0
		e.Blocked = false
		wasBlocked = false
	} else {
		e.Stall++
	}
	e.UpdatedTS = now

	if e.Stall < m.stallCandles || wasBlocked {
		return Decision{Action: ActionNone, Symbol: symbol}
	}

	entry := c.Close
	if haveTick && tickLast > 0 {
		entry = tickLast
	}
	tpFromHigh := e.LocalHigh * (1.0 - m.tpFromHighPct)

	// No edge left: the market already traded through the target. Keep
	// watching but stay quiet until a new high resets the entry.
	if entry <= tpFromHigh {
		e.Blocked = true
		return Decision{
			Action:     ActionSkipBelowTP,
			Symbol:     symbol,
			Entry:      entry,
			TPFromHigh: tpFromHigh,
			LocalHigh:  e.LocalHigh,
		}
	}

	delete(m.entries, symbol)
	return Decision{
		Action:     ActionTrigger,
		Symbol:     symbol,
		Entry:      entry,
		TPFromHigh: tpFromHigh,
		LocalHigh:  e.LocalHigh,
	}
}
