package engine

import (
	"time"

	"fadebot/internal/watchlist"
)

// maxEvents bounds the in-state decision ring; oldest entries drop first.
const maxEvents = 500

const (
	EventSkipBelowTP = "SKIP_BELOW_TP"
	EventTrigger     = "TRIGGER"
	EventTradeClose  = "TRADE_CLOSE"
)

// Event is one discrete decision record kept in the bounded ring for
// observability.
type Event struct {
	TS          int64   `json:"ts"`
	Type        string  `json:"type"`
	Symbol      string  `json:"symbol"`
	Entry       float64 `json:"entry,omitempty"`
	TP          float64 `json:"tp,omitempty"`
	SL          float64 `json:"sl,omitempty"`
	LocalHigh   float64 `json:"local_high,omitempty"`
	FundingRate float64 `json:"funding_rate,omitempty"`
	CloseReason string  `json:"close_reason,omitempty"`
	ClosePrice  float64 `json:"close_price,omitempty"`
}

// State is the durable process-wide engine state: bar dedup cursor, cooldown
// map, watch map and the recent-events ring. Persisted atomically to the
// state file at cycle checkpoints.
type State struct {
	LastBarCloseMs *int64                      `json:"last_bar_close_ms"`
	Cooldowns      map[string]int64            `json:"cooldowns"`
	Watch          map[string]*watchlist.Entry `json:"watch"`
	LastEvents     []Event                     `json:"last_events"`
}

func NewState() *State {
	return &State{
		Cooldowns: make(map[string]int64),
		Watch:     make(map[string]*watchlist.Entry),
	}
}

// normalize repairs nil maps after a JSON load of a partial file.
func (s *State) normalize() {
	if s.Cooldowns == nil {
		s.Cooldowns = make(map[string]int64)
	}
	if s.Watch == nil {
		s.Watch = make(map[string]*watchlist.Entry)
	}
}

func (s *State) AppendEvent(e Event) {
	s.LastEvents = append(s.LastEvents, e)
	if n := len(s.LastEvents); n > maxEvents {
		s.LastEvents = s.LastEvents[n-maxEvents:]
	}
}

// RecentEvents returns up to n of the newest events, newest last.
func (s *State) RecentEvents(n int) []Event {
	if n <= 0 || n > len(s.LastEvents) {
		n = len(s.LastEvents)
	}
	out := make([]Event, n)
	copy(out, s.LastEvents[len(s.LastEvents)-n:])
	return out
}

func (s *State) InCooldown(symbol string, now int64, window time.Duration) bool {
	last, ok := s.Cooldowns[symbol]
	if !ok {
		return false
	}
	return now-last < int64(window.Seconds())
}

func (s *State) SetCooldown(symbol string, now int64) {
	s.Cooldowns[symbol] = now
}
