package observability

import (
	"github.com/rs/zerolog"

	"github.com/danmuck/himdisplay/internal/protocol"
)

// LogSink writes annotations to logger. Errors log at warn, command and state
// changes at info, the rest at debug.
func LogSink(logger zerolog.Logger) protocol.Sink {
	return protocol.SinkFunc(func(a protocol.Annotation) {
		var ev *zerolog.Event
		switch a.Category {
		case protocol.CategoryError:
			ev = logger.Warn()
		case protocol.CategoryCommand, protocol.CategoryState:
			ev = logger.Info()
		default:
			ev = logger.Debug()
		}
		if a.Err != nil {
			ev = ev.Err(a.Err)
		}
		ev.
			Str("category", string(a.Category)).
			Uint64("start", uint64(a.Start)).
			Uint64("end", uint64(a.End)).
			Msg(a.Text())
	})
}

// MetricsSink counts annotations by category and protocol errors by kind,
// then forwards to next.
func MetricsSink(next protocol.Sink) protocol.Sink {
	if next == nil {
		next = protocol.Discard
	}
	return protocol.SinkFunc(func(a protocol.Annotation) {
		RecordAnnotation(string(a.Category))
		if a.Err != nil {
			RecordProtocolError(protocol.ErrorKind(a.Err))
		}
		next.Annotate(a)
	})
}
