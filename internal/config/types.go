package config

import "time"

// Config 是 fadebot 的主配置载体。加载后不可变。
type Config struct {
	App     AppConfig     `toml:"app"`
	Market  MarketConfig  `toml:"market"`
	Filter  FilterConfig  `toml:"filter"`
	Watch   WatchConfig   `toml:"watch"`
	Trade   TradeConfig   `toml:"trade"`
	Funding FundingConfig `toml:"funding"`
	Store   StoreConfig   `toml:"store"`
}

type AppConfig struct {
	LogLevel string `toml:"log_level"`
	LogPath  string `toml:"log_path"`
	HTTPAddr string `toml:"http_addr"`
}

// MarketConfig 描述行情来源与扫描节奏。
type MarketConfig struct {
	Exchange           string `toml:"exchange"` // "bybit" | "binance"
	Category           string `toml:"category"` // USDT perp = "linear"
	Timeframe          string `toml:"timeframe"`
	WakeSeconds        int    `toml:"wake_seconds"`
	OnlyOnBarClose     bool   `toml:"only_on_bar_close"`
	RESTBaseURL        string `toml:"rest_base_url"`
	HTTPTimeoutSeconds int    `toml:"http_timeout_seconds"`
	APIKey             string `toml:"api_key"`
	APISecret          string `toml:"api_secret"`
}

func (m MarketConfig) WakeInterval() time.Duration {
	return time.Duration(m.WakeSeconds) * time.Second
}

func (m MarketConfig) HTTPTimeout() time.Duration {
	return time.Duration(m.HTTPTimeoutSeconds) * time.Second
}

// FilterConfig holds the pump-candidate thresholds applied to every ticker row.
type FilterConfig struct {
	Quote               string  `toml:"quote"`
	MinPumpFromLow24Pct float64 `toml:"min_pump_from_low24_pct"`
	NearHighRatio       float64 `toml:"near_high_ratio"`
	MinTurnoverUSDT     float64 `toml:"min_turnover_usdt"`
}

// WatchConfig controls the stall state machine and watchlist expiry.
type WatchConfig struct {
	StallCandles int `toml:"stall_candles"`
	TTLHours     int `toml:"ttl_hours"`
}

func (w WatchConfig) TTL() time.Duration {
	return time.Duration(w.TTLHours) * time.Hour
}

// TradeConfig 控制模拟空单的下单与退出参数。
type TradeConfig struct {
	NotionalUSDT    float64 `toml:"notional_usdt"`
	TPFromHighPct   float64 `toml:"tp_from_high_pct"` // TP = local_high * (1 - pct)
	SLMult          float64 `toml:"sl_mult"`          // SL = entry * mult, mult > 1
	CooldownMinutes int     `toml:"cooldown_minutes"`
}

func (t TradeConfig) Cooldown() time.Duration {
	return time.Duration(t.CooldownMinutes) * time.Minute
}

// FundingConfig controls the funding-cost early-exit rule for open shorts.
type FundingConfig struct {
	EnableGuard bool    `toml:"enable_guard"`
	GuardRatio  float64 `toml:"guard_ratio"`
}

type StoreConfig struct {
	StateFile   string `toml:"state_file"`
	TradesFile  string `toml:"trades_file"`
	JournalFile string `toml:"journal_file"`
}
