// Package text turns display text payloads into tokens: plain runs go through
// one of the selectable byte encodings, escape pairs become named symbols.
package text

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/danmuck/himdisplay/internal/protocol"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
)

// Encoding is the selector byte carried by text commands.
type Encoding byte

const (
	EncodingLatin1   Encoding = 0x00
	EncodingUTF16BE  Encoding = 0x10
	EncodingShiftJIS Encoding = 0x90

	// DefaultEncoding is substituted for unknown selectors.
	DefaultEncoding = EncodingLatin1
)

var encodings = map[Encoding]encoding.Encoding{
	EncodingLatin1:   charmap.ISO8859_1,
	EncodingUTF16BE:  unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
	EncodingShiftJIS: japanese.ShiftJIS,
}

func (e Encoding) String() string {
	switch e {
	case EncodingLatin1:
		return "latin-1"
	case EncodingUTF16BE:
		return "utf-16-be"
	case EncodingShiftJIS:
		return "shift-jis"
	default:
		return fmt.Sprintf("unknown(0x%02x)", byte(e))
	}
}

// Supported reports whether e maps to a known encoding.
func (e Encoding) Supported() bool {
	_, ok := encodings[e]
	return ok
}

// Decode converts raw into tokens using the encoding picked by selector.
//
// Problems never abort decoding; each one is returned as an error wrapping a
// protocol sentinel (unknown encoding, decode failure, unknown escape) and the
// output carries a best-effort substitute in its place.
func Decode(raw []byte, selector byte) (Text, []error) {
	var issues []error
	enc := Encoding(selector)
	codec, ok := encodings[enc]
	if !ok {
		issues = append(issues, fmt.Errorf("%w: selector 0x%02x, using %s", protocol.ErrUnknownEncoding, selector, DefaultEncoding))
		codec = encodings[DefaultEncoding]
	}

	out := make(Text, 0, len(raw))
	start := 0
	flush := func(end int) {
		if end <= start {
			return
		}
		s, err := decodeRun(codec, raw[start:end])
		if err != nil {
			issues = append(issues, err)
		}
		for _, r := range s {
			out = append(out, Char(r))
		}
	}

	for i := 0; i < len(raw); i++ {
		lead := raw[i]
		if !IsEscapeLead(lead) {
			continue
		}
		flush(i)
		if i+1 >= len(raw) {
			issues = append(issues, fmt.Errorf("%w: lone lead byte 0x%02x", protocol.ErrUnknownEscape, lead))
			out = append(out, Placeholder(lead))
			start = len(raw)
			break
		}
		code := raw[i+1]
		if name, ok := LookupEscape(lead, code); ok {
			out = append(out, Symbol(name))
		} else {
			issues = append(issues, fmt.Errorf("%w: 0x%02x 0x%02x", protocol.ErrUnknownEscape, lead, code))
			out = append(out, Placeholder(lead, code))
		}
		i++
		start = i + 1
	}
	flush(len(raw))
	return out, issues
}

// decodeRun decodes a plain run. Invalid input is replaced with U+FFFD and
// reported; the replacement text is still returned.
func decodeRun(codec encoding.Encoding, run []byte) (string, error) {
	out, err := codec.NewDecoder().Bytes(run)
	if err != nil {
		return lossy(run), fmt.Errorf("%w: % x: %v", protocol.ErrTextDecode, run, err)
	}
	s := string(out)
	if strings.ContainsRune(s, utf8.RuneError) {
		return s, fmt.Errorf("%w: % x", protocol.ErrTextDecode, run)
	}
	return s, nil
}

func lossy(run []byte) string {
	var sb strings.Builder
	for _, b := range run {
		if b < utf8.RuneSelf {
			sb.WriteByte(b)
			continue
		}
		sb.WriteRune(utf8.RuneError)
	}
	return sb.String()
}
