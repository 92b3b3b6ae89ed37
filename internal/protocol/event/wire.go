package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrMissingType = errors.New("event: missing type")
	ErrUnknownType = errors.New("event: unknown type")
	ErrNilEvent    = errors.New("event: nil event")
)

// Envelope carries one event with its delivery metadata. Seq increases by one
// per event within a Stream so receivers can spot loss and reordering.
type Envelope struct {
	Seq    uint64
	Stream string
	Event  Event
}

type header struct {
	Type   Kind   `json:"type"`
	Seq    uint64 `json:"seq,omitempty"`
	Stream string `json:"stream,omitempty"`
}

// MarshalJSON writes one flat object: the header fields followed by the
// variant fields.
func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.Event == nil {
		return nil, ErrNilEvent
	}
	head, err := json.Marshal(header{Type: e.Event.Kind(), Seq: e.Seq, Stream: e.Stream})
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(e.Event)
	if err != nil {
		return nil, err
	}
	body = bytes.TrimSpace(body)
	if len(body) <= 2 {
		return head, nil
	}
	out := make([]byte, 0, len(head)+len(body))
	out = append(out, head[:len(head)-1]...)
	out = append(out, ',')
	out = append(out, body[1:]...)
	return out, nil
}

func (e *Envelope) UnmarshalJSON(data []byte) error {
	var head header
	if err := json.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("event: decode header: %w", err)
	}
	if head.Type == "" {
		return ErrMissingType
	}
	ptr, ok := New(head.Type)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownType, head.Type)
	}
	if err := json.Unmarshal(data, ptr); err != nil {
		return fmt.Errorf("event: decode %s: %w", head.Type, err)
	}
	e.Seq = head.Seq
	e.Stream = head.Stream
	e.Event = deref(ptr)
	return nil
}

// Marshal encodes a bare event (no delivery metadata).
func Marshal(ev Event) ([]byte, error) {
	return json.Marshal(Envelope{Event: ev})
}

// Unmarshal decodes one envelope.
func Unmarshal(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}

func deref(ev Event) Event {
	switch v := ev.(type) {
	case *Display:
		return *v
	case *Clear:
		return *v
	case *Invert:
		return *v
	case *ScrollBar:
		return *v
	case *TrackBar:
		return *v
	case *Bar:
		return *v
	case *Format:
		return *v
	case *Groups:
		return *v
	case *Glyph:
		return *v
	case *PlayMode:
		return *v
	case *Battery:
		return *v
	case *Limit:
		return *v
	case *Init:
		return *v
	default:
		return ev
	}
}
