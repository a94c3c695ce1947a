package bybit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fadebot/internal/market"
	"fadebot/internal/scheduler"

	"github.com/tidwall/gjson"
)

const defaultBaseURL = "https://api.bybit.com"

// Config 描述 Bybit v5 公共行情接口的访问方式。
type Config struct {
	BaseURL  string
	Category string
	Timeout  time.Duration
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.BaseURL) == "" {
		c.BaseURL = defaultBaseURL
	}
	if strings.TrimSpace(c.Category) == "" {
		c.Category = "linear"
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	return c
}

// Source implements market.Source over the Bybit v5 REST API. Responses are
// decoded with gjson; numeric fields that fail to parse become 0 so malformed
// rows drop out downstream instead of failing the cycle.
type Source struct {
	cfg    Config
	client *http.Client
}

func New(cfg Config) *Source {
	final := cfg.withDefaults()
	return &Source{
		cfg:    final,
		client: &http.Client{Timeout: final.Timeout},
	}
}

func (s *Source) Name() string { return "bybit" }

func (s *Source) ListTickers(ctx context.Context) ([]market.TickerSnapshot, error) {
	body, err := s.get(ctx, "/v5/market/tickers", url.Values{"category": {s.cfg.Category}})
	if err != nil {
		return nil, &market.SourceError{Exchange: "bybit", Op: "tickers", Err: err}
	}
	if code := gjson.GetBytes(body, "retCode").Int(); code != 0 {
		msg := gjson.GetBytes(body, "retMsg").String()
		return nil, &market.SourceError{Exchange: "bybit", Op: "tickers",
			Err: fmt.Errorf("retCode=%d retMsg=%s", code, msg)}
	}
	rows := gjson.GetBytes(body, "result.list").Array()
	out := make([]market.TickerSnapshot, 0, len(rows))
	for _, row := range rows {
		sym := row.Get("symbol").String()
		if sym == "" {
			continue
		}
		out = append(out, market.TickerSnapshot{
			Symbol:        sym,
			Last:          row.Get("lastPrice").Float(),
			High24h:       row.Get("highPrice24h").Float(),
			Low24h:        row.Get("lowPrice24h").Float(),
			Turnover24h:   row.Get("turnover24h").Float(),
			FundingRate:   row.Get("fundingRate").Float(),
			NextFundingMs: row.Get("nextFundingTime").Int(),
		})
	}
	return out, nil
}

func (s *Source) LastClosedCandle(ctx context.Context, symbol, timeframe string) (*market.Candle, error) {
	interval, err := bybitInterval(timeframe)
	if err != nil {
		return nil, err
	}
	q := url.Values{
		"category": {s.cfg.Category},
		"symbol":   {symbol},
		"interval": {interval},
		"limit":    {"5"},
	}
	body, err := s.get(ctx, "/v5/market/kline", q)
	if err != nil {
		return nil, &market.SourceError{Exchange: "bybit", Op: "kline", Err: err}
	}
	if gjson.GetBytes(body, "retCode").Int() != 0 {
		// treat upstream refusal like missing data: the caller skips the
		// symbol for this cycle instead of aborting the whole scan
		return nil, nil
	}
	rows := gjson.GetBytes(body, "result.list").Array()
	if len(rows) == 0 {
		return nil, nil
	}
	bar, _ := scheduler.ParseTimeframe(timeframe)
	now := time.Now()
	// newest first; skip the still-forming bar
	for _, row := range rows {
		vals := row.Array()
		if len(vals) < 5 {
			continue
		}
		openMs := vals[0].Int()
		if !scheduler.BarClosed(openMs, bar, now) {
			continue
		}
		return &market.Candle{
			OpenTimeMs: openMs,
			Open:       vals[1].Float(),
			High:       vals[2].Float(),
			Low:        vals[3].Float(),
			Close:      vals[4].Float(),
		}, nil
	}
	return nil, nil
}

func (s *Source) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

// bybitInterval maps "15m"/"1h"/"1d" onto Bybit kline interval codes.
func bybitInterval(timeframe string) (string, error) {
	d, err := scheduler.ParseTimeframe(timeframe)
	if err != nil {
		return "", err
	}
	switch {
	case d == 24*time.Hour:
		return "D", nil
	case d%time.Minute == 0 && d < 24*time.Hour:
		return fmt.Sprintf("%d", int(d/time.Minute)), nil
	default:
		return "", fmt.Errorf("unsupported timeframe %q for bybit", timeframe)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
