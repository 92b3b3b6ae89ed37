// Package stream frames event envelopes for byte-stream transports: a fixed
// big-endian header followed by the JSON envelope.
package stream

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/himdisplay/internal/protocol/event"
)

const (
	Magic          uint32 = 0x48494D44 // "HIMD"
	Version        uint16 = 1
	FixedHeaderLen uint16 = 32

	// FlagStreamStart marks the first message of a new stream.
	FlagStreamStart uint32 = 0x01
)

var (
	ErrShortHeader        = errors.New("stream: short fixed header")
	ErrBadMagic           = errors.New("stream: bad magic")
	ErrUnsupportedVersion = errors.New("stream: unsupported version")
	ErrHeaderLenMismatch  = errors.New("stream: unexpected header_len")
	ErrPayloadTooLarge    = errors.New("stream: payload too large")
	ErrKindMismatch       = errors.New("stream: message type does not match payload")
)

// Header is the fixed wire header. Seq and Kind repeat what the payload
// carries so readers can route and count without decoding JSON.
type Header struct {
	Magic      uint32
	Version    uint16
	HeaderLen  uint16
	Seq        uint64
	Kind       uint32
	Flags      uint32
	PayloadLen uint64
}

// Message is one complete wire message.
type Message struct {
	Header  Header
	Payload []byte
}

// Limits constrains decode and encode memory use.
type Limits struct {
	MaxPayloadBytes uint64
}

func DefaultLimits() Limits {
	return Limits{MaxPayloadBytes: 64 * 1024}
}

func ReadMessage(r io.Reader, limits Limits) (Message, error) {
	var fixed [FixedHeaderLen]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Message{}, ErrShortHeader
		}
		return Message{}, err
	}

	h, err := DecodeHeader(fixed[:])
	if err != nil {
		return Message{}, err
	}
	if h.Magic != Magic {
		return Message{}, fmt.Errorf("%w: 0x%08x", ErrBadMagic, h.Magic)
	}
	if h.Version != Version {
		return Message{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if h.HeaderLen != FixedHeaderLen {
		return Message{}, fmt.Errorf("%w: %d", ErrHeaderLenMismatch, h.HeaderLen)
	}
	if h.PayloadLen > limits.MaxPayloadBytes {
		return Message{}, ErrPayloadTooLarge
	}

	payload := make([]byte, h.PayloadLen)
	if h.PayloadLen > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return Message{}, err
		}
	}
	return Message{Header: h, Payload: payload}, nil
}

func WriteMessage(w io.Writer, m Message, limits Limits) error {
	payloadLen := uint64(len(m.Payload))
	if payloadLen > limits.MaxPayloadBytes {
		return ErrPayloadTooLarge
	}

	h := m.Header
	h.Magic = Magic
	h.Version = Version
	h.HeaderLen = FixedHeaderLen
	h.PayloadLen = payloadLen

	buf := make([]byte, 0, int(FixedHeaderLen)+len(m.Payload))
	buf = append(buf, EncodeHeader(h)...)
	buf = append(buf, m.Payload...)
	_, err := w.Write(buf)
	return err
}

func EncodeHeader(h Header) []byte {
	buf := make([]byte, FixedHeaderLen)
	binary.BigEndian.PutUint32(buf[0:4], h.Magic)
	binary.BigEndian.PutUint16(buf[4:6], h.Version)
	binary.BigEndian.PutUint16(buf[6:8], h.HeaderLen)
	binary.BigEndian.PutUint64(buf[8:16], h.Seq)
	binary.BigEndian.PutUint32(buf[16:20], h.Kind)
	binary.BigEndian.PutUint32(buf[20:24], h.Flags)
	binary.BigEndian.PutUint64(buf[24:32], h.PayloadLen)
	return buf
}

func DecodeHeader(b []byte) (Header, error) {
	if len(b) != int(FixedHeaderLen) {
		return Header{}, fmt.Errorf("stream: invalid fixed header length: %d", len(b))
	}
	return Header{
		Magic:      binary.BigEndian.Uint32(b[0:4]),
		Version:    binary.BigEndian.Uint16(b[4:6]),
		HeaderLen:  binary.BigEndian.Uint16(b[6:8]),
		Seq:        binary.BigEndian.Uint64(b[8:16]),
		Kind:       binary.BigEndian.Uint32(b[16:20]),
		Flags:      binary.BigEndian.Uint32(b[20:24]),
		PayloadLen: binary.BigEndian.Uint64(b[24:32]),
	}, nil
}

// EncodeEnvelope builds the message for env. Init events start a stream.
func EncodeEnvelope(env event.Envelope) (Message, error) {
	payload, err := json.Marshal(env)
	if err != nil {
		return Message{}, err
	}
	kind := env.Event.Kind()
	h := Header{Seq: env.Seq, Kind: kind.Code()}
	if kind == event.KindInit {
		h.Flags |= FlagStreamStart
	}
	return Message{Header: h, Payload: payload}, nil
}

// DecodeEnvelope parses m's payload and checks it against the header.
func DecodeEnvelope(m Message) (event.Envelope, error) {
	env, err := event.Unmarshal(m.Payload)
	if err != nil {
		return event.Envelope{}, err
	}
	if env.Event.Kind().Code() != m.Header.Kind || env.Seq != m.Header.Seq {
		return event.Envelope{}, fmt.Errorf("%w: header %d/%d payload %s/%d",
			ErrKindMismatch, m.Header.Kind, m.Header.Seq, env.Event.Kind(), env.Seq)
	}
	return env, nil
}
