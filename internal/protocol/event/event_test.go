package event

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/danmuck/himdisplay/internal/protocol/text"
)

func TestEnvelopeIsFlat(t *testing.T) {
	data, err := json.Marshal(Envelope{Seq: 7, Stream: "s1", Event: Clear{Rows: []int{0, 2}}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"type":"clear","seq":7,"stream":"s1","rows":[0,2]}`
	if string(data) != want {
		t.Fatalf("json: got=%s want=%s", data, want)
	}
}

func TestDisplayWireShape(t *testing.T) {
	ev := Display{Row: 2, Col: 4, Data: text.Text{text.Symbol("big 7"), text.Char('A')}, ClearRemaining: true}
	data, err := Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"type":"display","row":2,"col":4,"data":["big 7","A"],"clearRemaining":true}`
	if string(data) != want {
		t.Fatalf("json: got=%s want=%s", data, want)
	}
}

func TestInitHasOnlyType(t *testing.T) {
	data, err := Marshal(Init{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"type":"init"}` {
		t.Fatalf("json: got=%s", data)
	}
}

func TestUnmarshalEveryKind(t *testing.T) {
	events := []Event{
		Display{Row: 1, Data: text.FromString("hi")},
		Clear{Rows: []int{1}},
		Invert{Rows: []int{0, 5}},
		ScrollBar{From: 3, To: 40, Enabled: true},
		TrackBar{From: 1, To: 20, Row: 3, Enabled: true},
		Bar{Enabled: true},
		Format{Hi: true},
		Groups{Enabled: true},
		Glyph{Name: "play"},
		PlayMode{Entries: []string{"repeat", "shuffle"}},
		Battery{Outline: true, Segments: []bool{true, true, false, false}},
		Limit{Rows: []int{2}, Start: 4, End: 100},
		Init{},
	}
	for i, ev := range events {
		data, err := json.Marshal(Envelope{Seq: uint64(i + 1), Stream: "x", Event: ev})
		if err != nil {
			t.Fatalf("marshal %s: %v", ev.Kind(), err)
		}
		env, err := Unmarshal(data)
		if err != nil {
			t.Fatalf("unmarshal %s: %v", ev.Kind(), err)
		}
		if env.Seq != uint64(i+1) || env.Stream != "x" {
			t.Fatalf("%s metadata: got seq=%d stream=%q", ev.Kind(), env.Seq, env.Stream)
		}
		if env.Event.Kind() != ev.Kind() {
			t.Fatalf("kind: got=%s want=%s", env.Event.Kind(), ev.Kind())
		}
		if ev.Kind() != KindDisplay && !reflect.DeepEqual(env.Event, ev) {
			t.Fatalf("%s: got=%+v want=%+v", ev.Kind(), env.Event, ev)
		}
	}
}

func TestUnmarshalErrors(t *testing.T) {
	if _, err := Unmarshal([]byte(`{"rows":[1]}`)); !errors.Is(err, ErrMissingType) {
		t.Fatalf("expected ErrMissingType, got %v", err)
	}
	if _, err := Unmarshal([]byte(`{"type":"sparkle"}`)); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
	if _, err := json.Marshal(Envelope{}); err == nil {
		t.Fatalf("expected error for nil event")
	}
}

func TestKindCodes(t *testing.T) {
	seen := map[uint32]Kind{}
	for _, k := range Kinds() {
		code := k.Code()
		if code == 0 {
			t.Fatalf("kind %s has no code", k)
		}
		if prev, dup := seen[code]; dup {
			t.Fatalf("code %d shared by %s and %s", code, prev, k)
		}
		seen[code] = k
		back, ok := KindFromCode(code)
		if !ok || back != k {
			t.Fatalf("code %d: got=%s want=%s", code, back, k)
		}
	}
	if _, ok := KindFromCode(0); ok {
		t.Fatalf("code 0 must not resolve")
	}
	if Kind("nope").Code() != 0 {
		t.Fatalf("unknown kind must map to 0")
	}
}
