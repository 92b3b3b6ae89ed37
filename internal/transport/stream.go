package transport

import (
	"context"
	"math/rand"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/himdisplay/internal/protocol/event"
	"github.com/danmuck/himdisplay/internal/protocol/stream"
)

// StreamSender writes framed envelopes over one TCP connection, dialing
// lazily and again after any write failure.
type StreamSender struct {
	addr   string
	cfg    Config
	limits stream.Limits
	rng    *rand.Rand

	mu     sync.Mutex
	conn   net.Conn
	closed bool
}

func NewStreamSender(addr string, cfg Config) (*StreamSender, error) {
	if addr == "" {
		return nil, ErrTargetRequired
	}
	return &StreamSender{
		addr:   addr,
		cfg:    cfg.WithDefaults(),
		limits: stream.DefaultLimits(),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

func (s *StreamSender) Name() string { return KindStream }

func (s *StreamSender) Addr() string { return s.addr }

func (s *StreamSender) Send(ctx context.Context, env event.Envelope) error {
	msg, err := stream.EncodeEnvelope(env)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.conn == nil {
		conn, err := s.connect(ctx)
		if err != nil {
			return err
		}
		s.conn = conn
	}

	_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	if err := stream.WriteMessage(s.conn, msg, s.limits); err != nil {
		_ = s.conn.Close()
		s.conn = nil
		return err
	}
	return nil
}

func (s *StreamSender) connect(ctx context.Context) (net.Conn, error) {
	dialer := net.Dialer{Timeout: s.cfg.ConnectTimeout}
	var attempt int
	for {
		attempt++
		conn, err := dialer.DialContext(ctx, "tcp", s.addr)
		if err == nil {
			return conn, nil
		}
		log.Debug().Err(err).Int("attempt", attempt).Str("addr", s.addr).Msg("stream dial failed")
		if attempt >= s.cfg.MaxConnectAttempts {
			return nil, err
		}
		if err := sleepContext(ctx, NextBackoffDelay(s.cfg.Backoff, attempt, s.rng)); err != nil {
			return nil, err
		}
	}
}

func (s *StreamSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
