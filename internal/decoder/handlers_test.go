package decoder

import (
	"reflect"
	"testing"

	"github.com/danmuck/himdisplay/internal/protocol"
	"github.com/danmuck/himdisplay/internal/protocol/event"
)

func TestFixedLengthHandlers(t *testing.T) {
	cases := []struct {
		name string
		body []byte
		want event.Event
	}{
		{"bar", []byte{OpTopBar, 0x01}, event.Bar{Enabled: true}},
		{"groups", []byte{OpGroups, 0x00}, event.Groups{Enabled: false}},
		{"format", []byte{OpFormat, 0x02}, event.Format{Hi: false, MD: true}},
		{"glyph", []byte{OpGlyph, 0x02}, event.Glyph{Name: "pause"}},
		{
			"battery",
			[]byte{OpBattery, 0b00110101},
			event.Battery{Outline: true, Charging: true, Segments: []bool{true, false, true, false}},
		},
		{"play mode", []byte{OpPlayMode, 0b1010}, event.PlayMode{Entries: []string{"repeat one", "program"}}},
		{"play mode none", []byte{OpPlayMode, 0x00}, event.PlayMode{Entries: []string{}}},
		{"limit", []byte{OpLimit, 0b11, 2, 17, 0}, event.Limit{Rows: []int{0, 1}, Start: 2, End: 17}},
		{"scrollbar", []byte{OpScrollBar, 3, 9, 0, 1}, event.ScrollBar{From: 3, To: 9, Enabled: true}},
		{"trackbar", []byte{OpTrackBar, 0x08, 1, 12, 0}, event.TrackBar{Row: 3, From: 1, To: 12, Enabled: false}},
	}
	for _, tc := range cases {
		d, rec := NewRecording()
		feed(d, frame(tc.body...)...)
		if len(rec.Events) != 1 {
			t.Fatalf("%s: events got=%d want=1", tc.name, len(rec.Events))
		}
		if !reflect.DeepEqual(rec.Events[0], tc.want) {
			t.Fatalf("%s: got=%#v want=%#v", tc.name, rec.Events[0], tc.want)
		}
		if len(rec.Category(protocol.CategoryCommand)) != 1 {
			t.Fatalf("%s: expected one command annotation", tc.name)
		}
	}
}

func TestGlyphIndexOutOfRange(t *testing.T) {
	d, rec := NewRecording()
	feed(d, frame(OpGlyph, 0x08)...)
	if len(rec.Events) != 0 {
		t.Fatalf("events: got=%#v want none", rec.Events)
	}
	if got := len(rec.Errors(protocol.ErrInvalidGlyph)); got != 1 {
		t.Fatalf("invalid glyph annotations: got=%d want=1", got)
	}
}

func TestTrackBarRejectsMultiBitRow(t *testing.T) {
	d, rec := NewRecording()
	feed(d, frame(OpTrackBar, 0x06, 0, 1, 1)...)
	if len(rec.Events) != 0 {
		t.Fatalf("events: got=%#v want none", rec.Events)
	}
	if got := len(rec.Errors(protocol.ErrInvalidRow)); got != 1 {
		t.Fatalf("invalid row annotations: got=%d want=1", got)
	}
}

func TestUnknownCommandDumpsBytes(t *testing.T) {
	d, rec := NewRecording()
	feed(d, frame(OpUnknown50, 0x01, 0xAB, 0x02, 0x03)...)
	if len(rec.Events) != 0 {
		t.Fatalf("events: got=%#v want none", rec.Events)
	}
	notes := rec.Category(protocol.CategoryCommand)
	if len(notes) != 1 {
		t.Fatalf("command annotations: got=%d want=1", len(notes))
	}
	want := []string{"Command: '50 01 ab 02 03'", "50 01 ab 02 03"}
	if !reflect.DeepEqual(notes[0].Messages, want) {
		t.Fatalf("messages: got=%v want=%v", notes[0].Messages, want)
	}
}

func TestRowFromOneHot(t *testing.T) {
	for row := 0; row < protocol.Rows; row++ {
		got, err := rowFromOneHot(1 << row)
		if err != nil || got != row {
			t.Fatalf("row %d: got=%d err=%v", row, got, err)
		}
	}
	for _, b := range []byte{0x00, 0x03, 0x40, 0x80} {
		if _, err := rowFromOneHot(b); err == nil {
			t.Fatalf("0x%02x accepted as a row", b)
		}
	}
}
