package binance

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fadebot/internal/market"
	"fadebot/internal/scheduler"

	"github.com/adshao/go-binance/v2/futures"
)

// Config describes access to the Binance USDⓈ-M futures REST API.
type Config struct {
	APIKey      string
	APISecret   string
	RESTBaseURL string
	HTTPTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 10 * time.Second
	}
	return c
}

// Source 基于 go-binance SDK 实现 market.Source。24h 统计与 premium index
// （资金费率）合并成一份 TickerSnapshot。
type Source struct {
	cfg    Config
	client *futures.Client
}

func New(cfg Config) *Source {
	final := cfg.withDefaults()
	client := futures.NewClient(final.APIKey, final.APISecret)
	if base := strings.TrimSpace(final.RESTBaseURL); base != "" {
		client.BaseURL = base
	}
	client.HTTPClient = &http.Client{Timeout: final.HTTPTimeout}
	return &Source{cfg: final, client: client}
}

func (s *Source) Name() string { return "binance" }

func (s *Source) ListTickers(ctx context.Context) ([]market.TickerSnapshot, error) {
	stats, err := s.client.NewListPriceChangeStatsService().Do(ctx)
	if err != nil {
		return nil, &market.SourceError{Exchange: "binance", Op: "ticker24h", Err: err}
	}
	premiums, err := s.client.NewPremiumIndexService().Do(ctx)
	if err != nil {
		return nil, &market.SourceError{Exchange: "binance", Op: "premiumIndex", Err: err}
	}
	funding := make(map[string]*futures.PremiumIndex, len(premiums))
	for _, p := range premiums {
		if p != nil {
			funding[p.Symbol] = p
		}
	}
	out := make([]market.TickerSnapshot, 0, len(stats))
	for _, st := range stats {
		if st == nil || st.Symbol == "" {
			continue
		}
		t := market.TickerSnapshot{
			Symbol:      st.Symbol,
			Last:        parseFloat(st.LastPrice),
			High24h:     parseFloat(st.HighPrice),
			Low24h:      parseFloat(st.LowPrice),
			Turnover24h: parseFloat(st.QuoteVolume),
		}
		if p, ok := funding[st.Symbol]; ok {
			t.FundingRate = parseFloat(p.LastFundingRate)
			t.NextFundingMs = p.NextFundingTime
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Source) LastClosedCandle(ctx context.Context, symbol, timeframe string) (*market.Candle, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, nil
	}
	kls, err := s.client.NewKlinesService().
		Symbol(symbol).
		Interval(strings.ToLower(strings.TrimSpace(timeframe))).
		Limit(5).
		Do(ctx)
	if err != nil {
		return nil, &market.SourceError{Exchange: "binance", Op: "klines", Err: err}
	}
	bar, _ := scheduler.ParseTimeframe(timeframe)
	now := time.Now()
	// oldest first, the trailing kline is usually still forming
	for i := len(kls) - 1; i >= 0; i-- {
		kl := kls[i]
		if kl == nil || !scheduler.BarClosed(kl.OpenTime, bar, now) {
			continue
		}
		return &market.Candle{
			OpenTimeMs: kl.OpenTime,
			Open:       parseFloat(kl.Open),
			High:       parseFloat(kl.High),
			Low:        parseFloat(kl.Low),
			Close:      parseFloat(kl.Close),
		}, nil
	}
	return nil, nil
}

func parseFloat(v string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return f
}
