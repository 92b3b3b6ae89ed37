package protocol

// Timestamp is an opaque, ordered capture position (usually a sample number).
// It only ever bounds annotation ranges.
type Timestamp uint64

// Sample is one observed bus byte with the interval it occupied.
type Sample struct {
	Value byte
	Start Timestamp
	End   Timestamp
}

// Category selects the annotation row a diagnostic belongs to.
type Category string

const (
	CategoryState   Category = "state"
	CategoryDebug   Category = "debug"
	CategoryASCII   Category = "ascii-echo"
	CategoryCommand Category = "command"
	CategoryError   Category = "error"
)

// Categories lists every annotation category in display order.
func Categories() []Category {
	return []Category{CategoryState, CategoryDebug, CategoryASCII, CategoryCommand, CategoryError}
}

// Annotation is one human-readable fact covering [Start, End].
//
// Messages holds 1-3 renderings of the same fact, longest first, so viewers can
// pick one that fits the current zoom level. Err is set for protocol errors and
// wraps one of the sentinel errors of this package.
type Annotation struct {
	Start    Timestamp
	End      Timestamp
	Category Category
	Messages []string
	Err      error
}

// Text returns the longest rendering.
func (a Annotation) Text() string {
	if len(a.Messages) == 0 {
		return ""
	}
	return a.Messages[0]
}

// Sink receives annotations in the order their triggering bytes were consumed.
type Sink interface {
	Annotate(Annotation)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Annotation)

func (f SinkFunc) Annotate(a Annotation) {
	f(a)
}

// Discard drops every annotation.
var Discard Sink = SinkFunc(func(Annotation) {})

// Tee fans annotations out to every non-nil sink in order.
func Tee(sinks ...Sink) Sink {
	out := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return SinkFunc(func(a Annotation) {
		for _, s := range out {
			s.Annotate(a)
		}
	})
}
