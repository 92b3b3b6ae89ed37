// Package event defines the display-update events the decoder hands to the
// renderer, and their flat JSON wire form.
package event

import (
	"github.com/danmuck/himdisplay/internal/protocol/text"
)

// Kind is the wire discriminator of an event.
type Kind string

const (
	KindDisplay   Kind = "display"
	KindClear     Kind = "clear"
	KindInvert    Kind = "invert"
	KindScrollBar Kind = "scrollbar"
	KindTrackBar  Kind = "trackbar"
	KindBar       Kind = "bar"
	KindFormat    Kind = "format"
	KindGroups    Kind = "groups"
	KindGlyph     Kind = "glyph"
	KindPlayMode  Kind = "playmode"
	KindBattery   Kind = "battery"
	KindLimit     Kind = "limit"
	KindInit      Kind = "init"
)

// kinds fixes the numeric code of each kind; codes are 1-based positions.
var kinds = []Kind{
	KindDisplay, KindClear, KindInvert, KindScrollBar, KindTrackBar, KindBar,
	KindFormat, KindGroups, KindGlyph, KindPlayMode, KindBattery, KindLimit, KindInit,
}

// Kinds lists every event kind.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// Code returns the numeric message type used by binary transports, 0 if the
// kind is unknown.
func (k Kind) Code() uint32 {
	for i, v := range kinds {
		if v == k {
			return uint32(i + 1)
		}
	}
	return 0
}

// KindFromCode reverses Kind.Code.
func KindFromCode(code uint32) (Kind, bool) {
	if code == 0 || int(code) > len(kinds) {
		return "", false
	}
	return kinds[code-1], true
}

// Event is one effect on the display.
type Event interface {
	Kind() Kind
}

// Display writes Data on Row starting at Col. With ClearRemaining the rest of
// the row after the text is blanked.
type Display struct {
	Row            int       `json:"row"`
	Col            int       `json:"col"`
	Data           text.Text `json:"data"`
	ClearRemaining bool      `json:"clearRemaining"`
}

type Clear struct {
	Rows []int `json:"rows"`
}

type Invert struct {
	Rows []int `json:"rows"`
}

type ScrollBar struct {
	From    int  `json:"from"`
	To      int  `json:"to"`
	Enabled bool `json:"enabled"`
}

type TrackBar struct {
	From    int  `json:"from"`
	To      int  `json:"to"`
	Row     int  `json:"row"`
	Enabled bool `json:"enabled"`
}

// Bar toggles the line under the status row.
type Bar struct {
	Enabled bool `json:"enabled"`
}

// Format drives the Hi-MD / MD format icons.
type Format struct {
	Hi bool `json:"hi"`
	MD bool `json:"md"`
}

type Groups struct {
	Enabled bool `json:"enabled"`
}

type Glyph struct {
	Name string `json:"name"`
}

type PlayMode struct {
	Entries []string `json:"entries"`
}

type Battery struct {
	Outline  bool   `json:"outline"`
	Charging bool   `json:"charging"`
	Segments []bool `json:"segments"`
}

type Limit struct {
	Rows  []int `json:"rows"`
	Start int   `json:"start"`
	End   int   `json:"end"`
}

// Init tells the renderer to drop its state.
type Init struct{}

func (Display) Kind() Kind   { return KindDisplay }
func (Clear) Kind() Kind     { return KindClear }
func (Invert) Kind() Kind    { return KindInvert }
func (ScrollBar) Kind() Kind { return KindScrollBar }
func (TrackBar) Kind() Kind  { return KindTrackBar }
func (Bar) Kind() Kind       { return KindBar }
func (Format) Kind() Kind    { return KindFormat }
func (Groups) Kind() Kind    { return KindGroups }
func (Glyph) Kind() Kind     { return KindGlyph }
func (PlayMode) Kind() Kind  { return KindPlayMode }
func (Battery) Kind() Kind   { return KindBattery }
func (Limit) Kind() Kind     { return KindLimit }
func (Init) Kind() Kind      { return KindInit }

// New returns a zero event of kind k, as a pointer suitable for unmarshaling.
func New(k Kind) (Event, bool) {
	switch k {
	case KindDisplay:
		return &Display{}, true
	case KindClear:
		return &Clear{}, true
	case KindInvert:
		return &Invert{}, true
	case KindScrollBar:
		return &ScrollBar{}, true
	case KindTrackBar:
		return &TrackBar{}, true
	case KindBar:
		return &Bar{}, true
	case KindFormat:
		return &Format{}, true
	case KindGroups:
		return &Groups{}, true
	case KindGlyph:
		return &Glyph{}, true
	case KindPlayMode:
		return &PlayMode{}, true
	case KindBattery:
		return &Battery{}, true
	case KindLimit:
		return &Limit{}, true
	case KindInit:
		return &Init{}, true
	default:
		return nil, false
	}
}
