// Package screen models the player's display as explicit values. Apply is
// pure: it never mutates its input.
package screen

import (
	"fmt"
	"slices"

	"github.com/danmuck/himdisplay/internal/protocol"
	"github.com/danmuck/himdisplay/internal/protocol/event"
)

// Row is one text line. Cells hold token wire strings; "" is blank.
type Row struct {
	Cells    [protocol.Columns]string `json:"cells"`
	Inverted bool                     `json:"inverted"`
}

// Bar is a scroll or track bar extent.
type Bar struct {
	From    int  `json:"from"`
	To      int  `json:"to"`
	Enabled bool `json:"enabled"`
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

// State is everything the display shows.
type State struct {
	Rows        [protocol.Rows]Row `json:"rows"`
	TopBar      bool               `json:"topBar"`
	ScrollBar   Bar                `json:"scrollBar"`
	TrackBar    Bar                `json:"trackBar"`
	TrackBarRow int                `json:"trackBarRow"`
	Hi          bool               `json:"hi"`
	MD          bool               `json:"md"`
	Groups      bool               `json:"groups"`
	Glyph       string             `json:"glyph"`
	PlayMode    []string           `json:"playMode"`
	Battery     Battery            `json:"battery"`
	Limit       Limit              `json:"limit"`
	Message     string             `json:"message"`
}

// New returns a blank display.
func New() State {
	return State{
		Glyph:    "none",
		PlayMode: []string{},
		Battery:  Battery{Segments: make([]bool, 4)},
		Limit:    Limit{Rows: []int{}},
		Message:  "<unset>",
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.PlayMode = slices.Clone(s.PlayMode)
	out.Battery.Segments = slices.Clone(s.Battery.Segments)
	out.Limit.Rows = slices.Clone(s.Limit.Rows)
	return out
}

func validRow(r int) bool {
	return r >= 0 && r < protocol.Rows
}

// Apply returns the state after ev. Rows or columns outside the display are
// ignored.
func Apply(s State, ev event.Event) State {
	next := s.Clone()
	switch e := ev.(type) {
	case event.Display:
		if !validRow(e.Row) || e.Col < 0 || e.Col >= protocol.Columns {
			next.Message = fmt.Sprintf("Ignored write to row=%d col=%d", e.Row, e.Col)
			return next
		}
		row := &next.Rows[e.Row]
		col := e.Col
		for _, tok := range e.Data {
			if col >= protocol.Columns {
				break
			}
			row.Cells[col] = tok.String()
			col++
		}
		if e.ClearRemaining {
			for ; col < protocol.Columns; col++ {
				row.Cells[col] = ""
			}
		}
		next.Message = fmt.Sprintf("Set row=%d to %v", e.Row, e.Data.Strings())
	case event.Clear:
		for _, r := range e.Rows {
			if validRow(r) {
				next.Rows[r].Cells = [protocol.Columns]string{}
			}
		}
		next.Message = fmt.Sprintf("Clear rows: %v", e.Rows)
	case event.Invert:
		for r := range next.Rows {
			next.Rows[r].Inverted = slices.Contains(e.Rows, r)
		}
		next.Message = fmt.Sprintf("Invert rows: %v", e.Rows)
	case event.ScrollBar:
		next.ScrollBar = Bar{From: e.From, To: e.To, Enabled: e.Enabled}
		next.Message = "Scrollbar"
	case event.TrackBar:
		next.TrackBar = Bar{From: e.From, To: e.To, Enabled: e.Enabled}
		if validRow(e.Row) {
			next.TrackBarRow = e.Row
		}
		next.Message = "Trackbar"
	case event.Bar:
		next.TopBar = e.Enabled
		next.Message = "Top bar"
	case event.Format:
		next.Hi, next.MD = e.Hi, e.MD
		next.Message = "Format"
	case event.Groups:
		next.Groups = e.Enabled
		next.Message = "Groups"
	case event.Glyph:
		next.Glyph = e.Name
		next.Message = "Glyph: " + e.Name
	case event.PlayMode:
		next.PlayMode = slices.Clone(e.Entries)
		if next.PlayMode == nil {
			next.PlayMode = []string{}
		}
		next.Message = "Play mode"
	case event.Battery:
		next.Battery = Battery{Outline: e.Outline, Charging: e.Charging, Segments: slices.Clone(e.Segments)}
		next.Message = "Battery"
	case event.Limit:
		next.Limit = Limit{Rows: slices.Clone(e.Rows), Start: e.Start, End: e.End}
		next.Message = "Limit"
	case event.Init:
		next = New()
		next.Message = "init"
	default:
		next.Message = fmt.Sprintf("Unhandled event %T", ev)
	}
	return next
}

// Replay applies events in order to a blank display.
func Replay(events []event.Event) State {
	s := New()
	for _, ev := range events {
		s = Apply(s, ev)
	}
	return s
}
