package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Load reads the YAML config file at path, applies defaults and validates the
// result. The returned Config is treated as immutable for the process lifetime.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("config path cannot be empty")
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file failed (%s): %w", path, err)
		}
		// missing file runs on defaults + env credentials
	}
	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "toml"
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	resolveCredentials(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// resolveCredentials expands ${ENV} references and falls back to the
// conventional env var pair for the selected exchange.
func resolveCredentials(cfg *Config) {
	cfg.Market.APIKey = strings.TrimSpace(os.ExpandEnv(cfg.Market.APIKey))
	cfg.Market.APISecret = strings.TrimSpace(os.ExpandEnv(cfg.Market.APISecret))
	if cfg.Market.APIKey != "" && cfg.Market.APISecret != "" {
		return
	}
	var keyEnv, secretEnv string
	switch strings.ToLower(strings.TrimSpace(cfg.Market.Exchange)) {
	case "binance":
		keyEnv, secretEnv = "BINANCE_API_KEY", "BINANCE_API_SECRET"
	default:
		keyEnv, secretEnv = "BYBIT_API_KEY", "BYBIT_API_SECRET"
	}
	if cfg.Market.APIKey == "" {
		cfg.Market.APIKey = strings.TrimSpace(os.Getenv(keyEnv))
	}
	if cfg.Market.APISecret == "" {
		cfg.Market.APISecret = strings.TrimSpace(os.Getenv(secretEnv))
	}
}
