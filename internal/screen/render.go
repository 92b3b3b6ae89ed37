package screen

import (
	"fmt"
	"strings"

	"github.com/danmuck/himdisplay/internal/protocol"
)

var symbolRunes = map[string]string{
	"big :":       ":",
	"volume icon": "◁",
	"music note":  "♪",
	"folder":      "▭",
	"minidisc":    "◎",
}

// cellText maps one cell to what a terminal shows. Wide digits become
// full-width digits.
func cellText(cell string) string {
	switch {
	case cell == "":
		return " "
	case strings.HasPrefix(cell, "big ") && len(cell) == 5 && cell[4] >= '0' && cell[4] <= '9':
		return string(rune(0xFF10 + int(cell[4]-'0')))
	case strings.HasPrefix(cell, "<"):
		return "?"
	}
	if r, ok := symbolRunes[cell]; ok {
		return r
	}
	return cell
}

// RowText renders one row without markers.
func (s State) RowText(row int) string {
	if !validRow(row) {
		return ""
	}
	var sb strings.Builder
	for _, c := range s.Rows[row].Cells {
		sb.WriteString(cellText(c))
	}
	return sb.String()
}

// Render draws s as plain text: a status line, then one framed line per row.
// Inverted rows are marked with '*', the track bar row with '#'.
func Render(s State) string {
	var sb strings.Builder

	format := "--"
	switch {
	case s.Hi && s.MD:
		format = "HI MD"
	case s.Hi:
		format = "HI"
	case s.MD:
		format = "MD"
	}
	lit := 0
	for _, seg := range s.Battery.Segments {
		if seg {
			lit++
		}
	}
	charging := ""
	if s.Battery.Charging {
		charging = "+"
	}
	fmt.Fprintf(&sb, "[%s] %s mode=%s battery=%d/4%s groups=%t\n",
		format, s.Glyph, strings.Join(s.PlayMode, ","), lit, charging, s.Groups)

	edge := strings.Repeat("-", protocol.Columns)
	if s.TopBar {
		edge = strings.Repeat("=", protocol.Columns)
	}
	sb.WriteString(" +" + edge + "+\n")
	for r := range s.Rows {
		mark := " "
		if s.Rows[r].Inverted {
			mark = "*"
		}
		if s.TrackBar.Enabled && s.TrackBarRow == r {
			mark = "#"
		}
		fmt.Fprintf(&sb, "%s|%s|\n", mark, s.RowText(r))
	}
	sb.WriteString(" +" + strings.Repeat("-", protocol.Columns) + "+\n")
	return sb.String()
}
