package config

import (
	"fmt"
	"strings"

	"fadebot/internal/scheduler"
)

// ValidationError marks a configuration problem that must stop startup.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Msg)
}

func invalid(field, format string, v ...any) error {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, v...)}
}

func validate(cfg *Config) error {
	switch strings.ToLower(strings.TrimSpace(cfg.Market.Exchange)) {
	case "bybit", "binance":
	default:
		return invalid("market.exchange", "must be bybit or binance, got %q", cfg.Market.Exchange)
	}
	if cfg.Market.APIKey == "" || cfg.Market.APISecret == "" {
		return invalid("market.api_key", "exchange credentials are required (set %s_API_KEY / %s_API_SECRET)",
			strings.ToUpper(cfg.Market.Exchange), strings.ToUpper(cfg.Market.Exchange))
	}
	if _, err := scheduler.ParseTimeframe(cfg.Market.Timeframe); err != nil {
		return invalid("market.timeframe", "%v", err)
	}
	if cfg.Market.WakeSeconds <= 0 {
		return invalid("market.wake_seconds", "must be positive")
	}
	if strings.TrimSpace(cfg.Filter.Quote) == "" {
		return invalid("filter.quote", "quote suffix is required")
	}
	if cfg.Filter.MinTurnoverUSDT < 0 {
		return invalid("filter.min_turnover_usdt", "must not be negative")
	}
	if cfg.Filter.NearHighRatio <= 0 || cfg.Filter.NearHighRatio > 1 {
		return invalid("filter.near_high_ratio", "must be in (0, 1], got %v", cfg.Filter.NearHighRatio)
	}
	if cfg.Watch.StallCandles <= 0 {
		return invalid("watch.stall_candles", "must be positive")
	}
	if cfg.Watch.TTLHours <= 0 {
		return invalid("watch.ttl_hours", "must be positive")
	}
	if cfg.Trade.NotionalUSDT <= 0 {
		return invalid("trade.notional_usdt", "must be positive")
	}
	if cfg.Trade.TPFromHighPct <= 0 || cfg.Trade.TPFromHighPct >= 1 {
		return invalid("trade.tp_from_high_pct", "must be in (0, 1), got %v", cfg.Trade.TPFromHighPct)
	}
	// SL above entry: this is a short, the stop has to sit on the losing side.
	if cfg.Trade.SLMult <= 1 {
		return invalid("trade.sl_mult", "must be > 1, got %v", cfg.Trade.SLMult)
	}
	if cfg.Trade.CooldownMinutes < 0 {
		return invalid("trade.cooldown_minutes", "must not be negative")
	}
	if cfg.Funding.EnableGuard && cfg.Funding.GuardRatio <= 0 {
		return invalid("funding.guard_ratio", "must be positive when the guard is enabled")
	}
	if strings.TrimSpace(cfg.Store.StateFile) == "" || strings.TrimSpace(cfg.Store.TradesFile) == "" {
		return invalid("store", "state_file and trades_file are required")
	}
	return nil
}
