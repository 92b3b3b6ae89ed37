package decoder

import (
	"github.com/danmuck/himdisplay/internal/protocol"
	"github.com/danmuck/himdisplay/internal/protocol/event"
)

// Emitter receives display events in the order they were decoded.
type Emitter interface {
	Emit(event.Event)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(event.Event)

func (f EmitterFunc) Emit(ev event.Event) {
	f(ev)
}

// DiscardEvents drops every event.
var DiscardEvents Emitter = EmitterFunc(func(event.Event) {})

// Option configures a Decoder.
type Option func(*Decoder)

// WithRegistry replaces the built-in command table.
func WithRegistry(r *Registry) Option {
	return func(d *Decoder) {
		if r != nil {
			d.registry = r
		}
	}
}

// WithSink routes annotations to s.
func WithSink(s protocol.Sink) Option {
	return func(d *Decoder) {
		if s != nil {
			d.sink = s
		}
	}
}

// WithEmitter routes display events to e.
func WithEmitter(e Emitter) Option {
	return func(d *Decoder) {
		if e != nil {
			d.emitter = e
		}
	}
}
