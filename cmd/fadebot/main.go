package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"fadebot/internal/app"
	"fadebot/internal/config"
	"fadebot/internal/logger"
)

func main() {
	cfgPath := os.Getenv("FADEBOT_CONFIG")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logFile, err := logger.Setup(cfg.App.LogLevel, cfg.App.LogPath)
	if err != nil {
		log.Fatalf("log setup: %v", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}
	logger.Infof("config loaded (exchange=%s tf=%s quote=%s)",
		cfg.Market.Exchange, cfg.Market.Timeframe, cfg.Filter.Quote)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	if err := application.Run(ctx); err != nil {
		log.Fatalf("run: %v", err)
	}
}
