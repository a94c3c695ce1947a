package config

import "github.com/spf13/viper"

// 缺省参数与原始策略保持一致：15m bar、USDT 永续、24h watch TTL。
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.log_level", "info")

	v.SetDefault("market.exchange", "bybit")
	v.SetDefault("market.category", "linear")
	v.SetDefault("market.timeframe", "15m")
	v.SetDefault("market.wake_seconds", 5)
	v.SetDefault("market.only_on_bar_close", true)
	v.SetDefault("market.http_timeout_seconds", 10)

	v.SetDefault("filter.quote", "USDT")
	v.SetDefault("filter.min_pump_from_low24_pct", 35.0)
	v.SetDefault("filter.near_high_ratio", 0.88)
	v.SetDefault("filter.min_turnover_usdt", 5_000_000.0)

	v.SetDefault("watch.stall_candles", 2)
	v.SetDefault("watch.ttl_hours", 24)

	v.SetDefault("trade.notional_usdt", 20.0)
	v.SetDefault("trade.tp_from_high_pct", 0.30)
	v.SetDefault("trade.sl_mult", 2.0)
	v.SetDefault("trade.cooldown_minutes", 60)

	v.SetDefault("funding.enable_guard", true)
	v.SetDefault("funding.guard_ratio", 1.0)

	v.SetDefault("store.state_file", "data/state.json")
	v.SetDefault("store.trades_file", "data/trades.json")
	v.SetDefault("store.journal_file", "data/journal.db")
}
