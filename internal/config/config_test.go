package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func setBybitCreds(t *testing.T) {
	t.Helper()
	t.Setenv("BYBIT_API_KEY", "test-key")
	t.Setenv("BYBIT_API_SECRET", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setBybitCreds(t)
	cfg, err := Load(writeConfig(t, "app:\n  log_level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "bybit", cfg.Market.Exchange)
	assert.Equal(t, "linear", cfg.Market.Category)
	assert.Equal(t, "15m", cfg.Market.Timeframe)
	assert.Equal(t, 5*time.Second, cfg.Market.WakeInterval())
	assert.True(t, cfg.Market.OnlyOnBarClose)
	assert.Equal(t, "USDT", cfg.Filter.Quote)
	assert.InDelta(t, 35.0, cfg.Filter.MinPumpFromLow24Pct, 1e-9)
	assert.InDelta(t, 0.88, cfg.Filter.NearHighRatio, 1e-9)
	assert.InDelta(t, 5_000_000.0, cfg.Filter.MinTurnoverUSDT, 1e-9)
	assert.Equal(t, 2, cfg.Watch.StallCandles)
	assert.Equal(t, 24*time.Hour, cfg.Watch.TTL())
	assert.InDelta(t, 20.0, cfg.Trade.NotionalUSDT, 1e-9)
	assert.InDelta(t, 0.30, cfg.Trade.TPFromHighPct, 1e-9)
	assert.InDelta(t, 2.0, cfg.Trade.SLMult, 1e-9)
	assert.Equal(t, 60*time.Minute, cfg.Trade.Cooldown())
	assert.True(t, cfg.Funding.EnableGuard)
	assert.InDelta(t, 1.0, cfg.Funding.GuardRatio, 1e-9)
	assert.Equal(t, "data/state.json", cfg.Store.StateFile)
}

func TestLoadMissingFileRunsOnDefaults(t *testing.T) {
	setBybitCreds(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "bybit", cfg.Market.Exchange)
	assert.Equal(t, "test-key", cfg.Market.APIKey)
}

func TestLoadOverrides(t *testing.T) {
	setBybitCreds(t)
	cfg, err := Load(writeConfig(t, `
market:
  exchange: binance
  timeframe: 1h
filter:
  min_pump_from_low24_pct: 50
trade:
  sl_mult: 3.0
`))
	require.NoError(t, err)
	assert.Equal(t, "binance", cfg.Market.Exchange)
	assert.Equal(t, "1h", cfg.Market.Timeframe)
	assert.InDelta(t, 50.0, cfg.Filter.MinPumpFromLow24Pct, 1e-9)
	assert.InDelta(t, 3.0, cfg.Trade.SLMult, 1e-9)
}

func TestCredentialsFromEnvForBinance(t *testing.T) {
	t.Setenv("BINANCE_API_KEY", "bk")
	t.Setenv("BINANCE_API_SECRET", "bs")
	cfg, err := Load(writeConfig(t, "market:\n  exchange: binance\n"))
	require.NoError(t, err)
	assert.Equal(t, "bk", cfg.Market.APIKey)
	assert.Equal(t, "bs", cfg.Market.APISecret)
}

func TestCredentialsExpandEnvReferences(t *testing.T) {
	t.Setenv("MY_KEY", "expanded-key")
	t.Setenv("MY_SECRET", "expanded-secret")
	cfg, err := Load(writeConfig(t, `
market:
  api_key: ${MY_KEY}
  api_secret: ${MY_SECRET}
`))
	require.NoError(t, err)
	assert.Equal(t, "expanded-key", cfg.Market.APIKey)
	assert.Equal(t, "expanded-secret", cfg.Market.APISecret)
}

func TestMissingCredentialsFail(t *testing.T) {
	t.Setenv("BYBIT_API_KEY", "")
	t.Setenv("BYBIT_API_SECRET", "")
	_, err := Load(writeConfig(t, ""))
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "market.api_key", verr.Field)
}

func TestValidationRejections(t *testing.T) {
	setBybitCreds(t)
	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"unknown exchange", "market:\n  exchange: kraken\n", "market.exchange"},
		{"bad timeframe", "market:\n  timeframe: 15x\n", "market.timeframe"},
		{"zero wake", "market:\n  wake_seconds: 0\n", "market.wake_seconds"},
		{"empty quote", "filter:\n  quote: \"\"\n", "filter.quote"},
		{"near-high out of range", "filter:\n  near_high_ratio: 1.5\n", "filter.near_high_ratio"},
		{"zero stall", "watch:\n  stall_candles: 0\n", "watch.stall_candles"},
		{"tp out of range", "trade:\n  tp_from_high_pct: 1.0\n", "trade.tp_from_high_pct"},
		{"sl at entry", "trade:\n  sl_mult: 1.0\n", "trade.sl_mult"},
		{"guard ratio", "funding:\n  guard_ratio: 0\n", "funding.guard_ratio"},
		{"missing state file", "store:\n  state_file: \"\"\n", "store"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestLoadEmptyPath(t *testing.T) {
	_, err := Load("  ")
	assert.Error(t, err)
}
