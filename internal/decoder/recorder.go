package decoder

import (
	"errors"

	"github.com/danmuck/himdisplay/internal/protocol"
	"github.com/danmuck/himdisplay/internal/protocol/event"
)

// Recorder keeps everything a decoder produces in memory. It is both a
// protocol.Sink and an Emitter.
type Recorder struct {
	Annotations []protocol.Annotation
	Events      []event.Event
}

func (r *Recorder) Annotate(a protocol.Annotation) {
	r.Annotations = append(r.Annotations, a)
}

func (r *Recorder) Emit(ev event.Event) {
	r.Events = append(r.Events, ev)
}

// Category returns the annotations of one category in order.
func (r *Recorder) Category(cat protocol.Category) []protocol.Annotation {
	var out []protocol.Annotation
	for _, a := range r.Annotations {
		if a.Category == cat {
			out = append(out, a)
		}
	}
	return out
}

// Errors returns the annotations whose Err matches target.
func (r *Recorder) Errors(target error) []protocol.Annotation {
	var out []protocol.Annotation
	for _, a := range r.Annotations {
		if a.Err != nil && errors.Is(a.Err, target) {
			out = append(out, a)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.Annotations = nil
	r.Events = nil
}

// NewRecording returns a decoder wired to a fresh recorder.
func NewRecording(opts ...Option) (*Decoder, *Recorder) {
	rec := &Recorder{}
	opts = append([]Option{WithSink(rec), WithEmitter(rec)}, opts...)
	return New(opts...), rec
}
