package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/himdisplay/internal/config"
	"github.com/danmuck/himdisplay/internal/observability"
	"github.com/danmuck/himdisplay/internal/receiver"
)

func main() {
	configPath := flag.String("config", "cmd/screenctl/config.toml", "screen config path (toml)")
	httpAddr := flag.String("http", "", "http listen address, overrides http_addr")
	noDiscovery := flag.Bool("no-mdns", false, "do not advertise over mDNS")
	flag.Parse()

	logger := observability.InitLogger("screenctl")

	cfg, err := config.LoadScreenConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "screenctl: %v\n", err)
		os.Exit(1)
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}
	if *noDiscovery {
		cfg.Discovery.Enabled = false
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := receiver.New(cfg, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("screen receiver stopped")
		os.Exit(1)
	}
	logger.Info().Msg("screen receiver stopped")
}
