package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/danmuck/himdisplay/internal/capture"
	"github.com/danmuck/himdisplay/internal/config"
	"github.com/danmuck/himdisplay/internal/observability"
	"github.com/danmuck/himdisplay/internal/protocol"
	"github.com/danmuck/himdisplay/internal/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "himdctl: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "decode config path (toml)")
	input := flag.String("input", "", "capture file, overrides input.path")
	format := flag.String("format", "", "capture format: "+strings.Join(capture.Formats(), "|"))
	kind := flag.String("transport", "", "event transport: "+strings.Join(transport.Kinds(), "|"))
	target := flag.String("target", "", "transport target, overrides transport.target")
	discover := flag.Bool("discover", false, "find the screen receiver over mDNS")
	annotations := flag.Bool("annotations", false, "print annotations to stdout")
	metricsAddr := flag.String("metrics", "", "serve /metrics on this address until interrupted")
	flag.Parse()

	logger := observability.InitLogger("himdctl")

	cfg, err := loadDecodeConfig(*configPath)
	if err != nil {
		return err
	}
	cfg = applyFlags(cfg, flagOverrides{
		input:    *input,
		format:   *format,
		kind:     *kind,
		target:   *target,
		discover: *discover,
		metrics:  *metricsAddr,
	})
	if err := config.ValidateDecodeConfig(cfg); err != nil {
		return err
	}
	if cfg.Input.Path == "" && flag.NArg() > 0 {
		cfg.Input.Path = flag.Arg(0)
	}
	if cfg.Input.Path == "" {
		return errors.New("no capture given: use -input or input.path")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	observability.RegisterMetrics()
	var metricsSrv *http.Server
	if cfg.Metrics.Addr != "" {
		metricsSrv = serveMetrics(cfg.Metrics.Addr, logger)
	}

	var extra protocol.Sink
	if *annotations {
		extra = printSink(os.Stdout)
	}
	sum, err := decodeCapture(ctx, cfg, logger, extra)
	if err != nil {
		return err
	}
	sum.write(os.Stdout)

	if metricsSrv != nil {
		logger.Info().Str("addr", cfg.Metrics.Addr).Msg("decode finished, serving metrics until interrupted")
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	return nil
}

type flagOverrides struct {
	input, format, kind, target, metrics string
	discover                             bool
}

func applyFlags(cfg config.DecodeConfig, f flagOverrides) config.DecodeConfig {
	if f.input != "" {
		cfg.Input.Path = f.input
	}
	if f.format != "" {
		cfg.Input.Format = strings.ToLower(f.format)
	}
	if f.kind != "" {
		cfg.Transport.Kind = strings.ToLower(f.kind)
	}
	if f.target != "" {
		cfg.Transport.Target = f.target
	}
	if f.discover {
		cfg.Transport.Discover = true
	}
	if f.metrics != "" {
		cfg.Metrics.Addr = f.metrics
	}
	return cfg
}

func serveMetrics(addr string, logger zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("addr", addr).Msg("metrics server failed")
		}
	}()
	return srv
}

// printSink writes one line per annotation: span, category, text.
func printSink(w io.Writer) protocol.Sink {
	return protocol.SinkFunc(func(a protocol.Annotation) {
		fmt.Fprintf(w, "%10d %10d %-8s %s\n", a.Start, a.End, a.Category, a.Text())
	})
}
