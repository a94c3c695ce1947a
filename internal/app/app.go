package app

import (
	"context"
	"strings"

	"fadebot/internal/config"
	"fadebot/internal/engine"
	"fadebot/internal/gateway/binance"
	"fadebot/internal/gateway/bybit"
	"fadebot/internal/logger"
	"fadebot/internal/market"
	"fadebot/internal/store"
	statushttp "fadebot/internal/transport/http"

	"golang.org/x/sync/errgroup"
)

// App 把行情网关、扫描引擎与观测 HTTP 服务装配在一起。
type App struct {
	cfg     *config.Config
	engine  *engine.Engine
	server  *statushttp.Server
	journal *store.Journal
}

func New(cfg *config.Config) (*App, error) {
	src := buildSource(cfg)

	var journal *store.Journal
	if path := strings.TrimSpace(cfg.Store.JournalFile); path != "" {
		j, err := store.OpenJournal(path)
		if err != nil {
			return nil, err
		}
		journal = j
	}

	eng, err := engine.New(cfg, src, journal)
	if err != nil {
		return nil, err
	}

	var server *statushttp.Server
	if addr := strings.TrimSpace(cfg.App.HTTPAddr); addr != "" {
		server = statushttp.NewServer(addr, eng, journal)
	}

	return &App{cfg: cfg, engine: eng, server: server, journal: journal}, nil
}

// Run blocks until ctx is cancelled or a component fails.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.engine.Run(ctx) })
	if a.server != nil {
		g.Go(func() error { return a.server.Start(ctx) })
	}
	err := g.Wait()
	if a.journal != nil {
		if cerr := a.journal.Close(); cerr != nil {
			logger.Warnf("closing journal: %v", cerr)
		}
	}
	return err
}

func buildSource(cfg *config.Config) market.Source {
	switch strings.ToLower(strings.TrimSpace(cfg.Market.Exchange)) {
	case "binance":
		return binance.New(binance.Config{
			APIKey:      cfg.Market.APIKey,
			APISecret:   cfg.Market.APISecret,
			RESTBaseURL: cfg.Market.RESTBaseURL,
			HTTPTimeout: cfg.Market.HTTPTimeout(),
		})
	default:
		return bybit.New(bybit.Config{
			BaseURL:  cfg.Market.RESTBaseURL,
			Category: cfg.Market.Category,
			Timeout:  cfg.Market.HTTPTimeout(),
		})
	}
}
