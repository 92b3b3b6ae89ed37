package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/danmuck/himdisplay/internal/capture"
	"github.com/danmuck/himdisplay/internal/config"
	"github.com/danmuck/himdisplay/internal/decoder"
	"github.com/danmuck/himdisplay/internal/discovery"
	"github.com/danmuck/himdisplay/internal/observability"
	"github.com/danmuck/himdisplay/internal/protocol"
	"github.com/danmuck/himdisplay/internal/transport"
)

const closeTimeout = 10 * time.Second

// summary is what one decode run produced.
type summary struct {
	Decoder   decoder.Stats
	Publisher transport.PublisherStats
	Transport string
	Target    string
	Stream    string
}

func (s summary) write(w io.Writer) {
	fmt.Fprintf(w, "bytes=%d frames=%d prologues=%d commands=%d events=%d\n",
		s.Decoder.Bytes, s.Decoder.Frames, s.Decoder.Prologues, s.Decoder.Commands, s.Decoder.Events)
	fmt.Fprintf(w, "checksum_errors=%d truncated=%d unknown_opcodes=%d\n",
		s.Decoder.ChecksumErrors, s.Decoder.TruncatedCommands, s.Decoder.UnknownOpcodes)
	fmt.Fprintf(w, "transport=%s target=%s stream=%s sent=%d failed=%d dropped=%d\n",
		s.Transport, s.Target, s.Stream, s.Publisher.Sent, s.Publisher.Failed, s.Publisher.Dropped)
}

func transportConfig(cfg config.DecodeConfig) transport.Config {
	t := cfg.Transport
	return transport.Config{
		ConnectTimeout:     time.Duration(t.ConnectTimeoutMS) * time.Millisecond,
		WriteTimeout:       time.Duration(t.WriteTimeoutMS) * time.Millisecond,
		MaxConnectAttempts: t.MaxConnectAttempts,
		QueueSize:          t.QueueSize,
	}.WithDefaults()
}

// resolveTarget returns the configured target, or browses mDNS for a screen
// receiver when discovery is on.
func resolveTarget(ctx context.Context, cfg config.DecodeConfig, logger zerolog.Logger) (string, error) {
	t := cfg.Transport
	if !t.Discover || t.Kind == transport.KindDiscard {
		return t.Target, nil
	}
	timeout := time.Duration(t.DiscoverTimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ep, err := discovery.Find(ctx, discovery.DefaultDomain)
	if err != nil {
		return "", fmt.Errorf("discover screen receiver: %w", err)
	}
	target := ep.HTTPURL()
	if t.Kind == transport.KindStream {
		target = ep.StreamAddr()
		if target == "" {
			return "", fmt.Errorf("discover screen receiver: %s has no stream port", ep.Instance)
		}
	}
	logger.Info().Str("instance", ep.Instance).Str("target", target).Msg("discovered screen receiver")
	return target, nil
}

// decodeCapture replays the capture named by cfg through the decoder and
// publishes every event. extra, if set, also receives annotations.
func decodeCapture(ctx context.Context, cfg config.DecodeConfig, logger zerolog.Logger, extra protocol.Sink) (summary, error) {
	samples, err := capture.Open(cfg.Input.Path, cfg.Input.Format)
	if err != nil {
		return summary{}, err
	}
	logger.Info().Str("path", cfg.Input.Path).Int("samples", len(samples)).Msg("capture loaded")

	target, err := resolveTarget(ctx, cfg, logger)
	if err != nil {
		return summary{}, err
	}
	tcfg := transportConfig(cfg)
	sender, err := transport.New(cfg.Transport.Kind, target, tcfg)
	if err != nil {
		return summary{}, err
	}
	switch s := sender.(type) {
	case *transport.HTTPSender:
		target = s.Target()
	case *transport.StreamSender:
		target = s.Addr()
	}

	pub := transport.NewPublisher(sender, tcfg, logger)
	stream := pub.Restart()

	d := decoder.New(
		decoder.WithEmitter(pub),
		decoder.WithSink(observability.MetricsSink(protocol.Tee(observability.LogSink(logger), extra))),
	)
	d.DecodeAll(samples)

	closeCtx, cancel := context.WithTimeout(ctx, closeTimeout)
	defer cancel()
	if err := pub.Close(closeCtx); err != nil {
		logger.Warn().Err(err).Msg("publisher close failed")
	}

	st := d.Stats()
	observability.RecordDecode(st.Bytes, st.Frames, st.ChecksumErrors)
	return summary{
		Decoder:   st,
		Publisher: pub.Stats(),
		Transport: sender.Name(),
		Target:    target,
		Stream:    stream,
	}, nil
}
