// Package transport delivers decoded events to a renderer. Delivery is fire
// and forget: failures are logged and counted, never fed back to decoding.
package transport

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/danmuck/himdisplay/internal/protocol/event"
)

const (
	KindHTTP    = "http"
	KindStream  = "stream"
	KindDiscard = "discard"

	DefaultHTTPTarget   = "http://localhost:36002/"
	DefaultStreamTarget = "localhost:36003"
)

var (
	ErrUnknownTransport = errors.New("transport: unknown transport")
	ErrTargetRequired   = errors.New("transport: target required")
	ErrRejected         = errors.New("transport: delivery rejected")
	ErrClosed           = errors.New("transport: sender closed")
)

// Sender delivers one envelope.
type Sender interface {
	Name() string
	Send(ctx context.Context, env event.Envelope) error
	Close() error
}

// Kinds lists the supported transport names.
func Kinds() []string {
	return []string{KindHTTP, KindStream, KindDiscard}
}

// New builds the sender named by kind. An empty target selects the kind's
// default.
func New(kind, target string, cfg Config) (Sender, error) {
	target = strings.TrimSpace(target)
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindHTTP:
		if target == "" {
			target = DefaultHTTPTarget
		}
		return NewHTTPSender(target, cfg)
	case KindStream:
		if target == "" {
			target = DefaultStreamTarget
		}
		return NewStreamSender(target, cfg)
	case KindDiscard, "":
		return Discard{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, kind)
	}
}

// Discard drops every envelope.
type Discard struct{}

func (Discard) Name() string                               { return KindDiscard }
func (Discard) Send(context.Context, event.Envelope) error { return nil }
func (Discard) Close() error                               { return nil }
