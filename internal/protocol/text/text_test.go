package text

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/danmuck/himdisplay/internal/protocol"
)

func TestDecodeWideDigitThenASCII(t *testing.T) {
	got, issues := Decode([]byte{0xFD, 0x6C, 'A'}, byte(EncodingLatin1))
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
	want := Text{Symbol("big 7"), Char('A')}
	assertText(t, got, want)
}

func TestDecodeUnknownEscapeEmitsPlaceholder(t *testing.T) {
	got, issues := Decode([]byte{'x', 0xFD, 0x99, 'y'}, byte(EncodingLatin1))
	if len(issues) != 1 || !errors.Is(issues[0], protocol.ErrUnknownEscape) {
		t.Fatalf("expected one unknown escape issue, got %v", issues)
	}
	want := Text{Char('x'), Placeholder(0xFD, 0x99), Char('y')}
	assertText(t, got, want)
	if got[1].String() != "<fd 99>" {
		t.Fatalf("placeholder form: got=%q", got[1].String())
	}
}

func TestDecodeLoneLeadByteAtEnd(t *testing.T) {
	got, issues := Decode([]byte{'a', 0xFA}, byte(EncodingLatin1))
	if len(issues) != 1 || !errors.Is(issues[0], protocol.ErrUnknownEscape) {
		t.Fatalf("expected unknown escape issue, got %v", issues)
	}
	assertText(t, got, Text{Char('a'), Placeholder(0xFA)})
}

func TestDecodeColonAndIcons(t *testing.T) {
	raw := []byte{0xFD, 0x65, 0xFA, 0x55, 0xFD, 0x66, ' ', 0xFD, 0x86, 0xFD, 0x93, 0xFD, 0x70, 0xFD, 0x6F}
	got, issues := Decode(raw, byte(EncodingLatin1))
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
	want := Text{
		Symbol("big 0"), Symbol("big :"), Symbol("big 1"), Char(' '),
		Symbol("music note"), Symbol("folder"), Symbol("volume icon"), Symbol("minidisc"),
	}
	assertText(t, got, want)
}

func TestDecodeUnknownEncodingFallsBackToLatin1(t *testing.T) {
	got, issues := Decode([]byte("Hi\xe9"), 0x42)
	if len(issues) != 1 || !errors.Is(issues[0], protocol.ErrUnknownEncoding) {
		t.Fatalf("expected unknown encoding issue, got %v", issues)
	}
	assertText(t, got, FromString("Hié"))
}

func TestDecodeShiftJIS(t *testing.T) {
	// "A" + hiragana "a" (0x82A0) + half-width katakana "a" (0xB1)
	got, issues := Decode([]byte{'A', 0x82, 0xA0, 0xB1}, byte(EncodingShiftJIS))
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
	assertText(t, got, FromString("Aあｱ"))
}

func TestDecodeUTF16BE(t *testing.T) {
	got, issues := Decode([]byte{0x00, 'O', 0x00, 'K', 0x30, 0x42}, byte(EncodingUTF16BE))
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
	assertText(t, got, FromString("OKあ"))
}

func TestDecodeFailureIsLossyAndReported(t *testing.T) {
	got, issues := Decode([]byte{0x00, 'O', 0x00}, byte(EncodingUTF16BE))
	if len(issues) != 1 || !errors.Is(issues[0], protocol.ErrTextDecode) {
		t.Fatalf("expected decode failure issue, got %v", issues)
	}
	assertText(t, got, FromString("O�"))
}

func TestDecodeEmpty(t *testing.T) {
	got, issues := Decode(nil, byte(EncodingLatin1))
	if len(got) != 0 || len(issues) != 0 {
		t.Fatalf("expected empty output, got=%v issues=%v", got, issues)
	}
}

func TestTokenJSONRoundTrip(t *testing.T) {
	in := Text{Char('A'), Symbol("big 7"), Placeholder(0xFD, 0x99), Char('<')}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `["A","big 7","\u003cfd 99\u003e","\u003c"]` {
		t.Fatalf("unexpected json: %s", data)
	}
	var out Text
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	assertText(t, out, in)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "hello", "<zz>"} {
		if _, err := ParseToken(s); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}

func TestTextString(t *testing.T) {
	txt := Text{Char('1'), Symbol("music note"), Placeholder(0xFA, 0x01)}
	if got := txt.String(); got != "1{music note}<fa 01>" {
		t.Fatalf("string: got=%q", got)
	}
}

func assertText(t *testing.T, got, want Text) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("token count: got=%d (%s) want=%d (%s)", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i].String() != want[i].String() || got[i].Kind != want[i].Kind {
			t.Fatalf("token %d: got=%q kind=%d want=%q kind=%d", i, got[i].String(), got[i].Kind, want[i].String(), want[i].Kind)
		}
	}
}
