package decoder

import (
	"fmt"
	"strings"

	"github.com/danmuck/himdisplay/internal/protocol"
	"github.com/danmuck/himdisplay/internal/protocol/event"
	"github.com/danmuck/himdisplay/internal/protocol/text"
)

// Known opcodes.
const (
	OpTopBar       byte = 0x02
	OpClearRows    byte = 0x03
	OpUnknown04    byte = 0x04
	OpInvertRows   byte = 0x05
	OpGlyph        byte = 0x06
	OpFormat       byte = 0x13
	OpBattery      byte = 0x1B
	OpUnknown20    byte = 0x20
	OpGroups       byte = 0x23
	OpUnknown24    byte = 0x24
	OpPlayMode     byte = 0x30
	OpUnknown50    byte = 0x50
	OpLimit        byte = 0x53
	OpUnknown54    byte = 0x54
	OpUnknown56    byte = 0x56
	OpScrollBar    byte = 0x68
	OpTrackBar     byte = 0x69
	OpUnknown6A    byte = 0x6A
	OpUnknown6B    byte = 0x6B
	OpUnknown75    byte = 0x75
	OpHeartbeat    byte = 0x91
	OpTextWrite    byte = 0xE0
	OpExtendedText byte = 0xE2
	OpStatusText   byte = 0xE3
)

// textLengthMask strips the flag bit from a text length byte.
const textLengthMask = 0x7F

var glyphNames = [...]string{"none", "play", "pause", "stop", "record", "ffwd", "rewind", "hold"}

var playModeNames = [...]string{"repeat", "repeat one", "shuffle", "program"}

func builtinCommands() []Registration {
	return []Registration{
		{Opcode: OpTopBar, Name: "top-bar", Length: 2, Handler: handleBar},
		{Opcode: OpClearRows, Name: "clear-rows", Length: 2, Handler: handleClear},
		{Opcode: OpUnknown04, Name: "unknown-04", Length: 2, Handler: handleRaw},
		{Opcode: OpInvertRows, Name: "invert-rows", Length: 2, Handler: handleInvert},
		{Opcode: OpGlyph, Name: "glyph", Length: 2, Handler: handleGlyph},
		{Opcode: OpFormat, Name: "format-icons", Length: 2, Handler: handleFormat},
		{Opcode: OpBattery, Name: "battery", Length: 2, Handler: handleBattery},
		{Opcode: OpUnknown20, Name: "unknown-20", Length: 2, Handler: handleRaw},
		{Opcode: OpGroups, Name: "groups", Length: 2, Handler: handleGroups},
		{Opcode: OpUnknown24, Name: "unknown-24", Length: 2, Handler: handleRaw},
		{Opcode: OpPlayMode, Name: "play-mode", Length: 2, Handler: handlePlayMode},
		{Opcode: OpUnknown50, Name: "unknown-50", Length: 5, Handler: handleRaw},
		{Opcode: OpLimit, Name: "limit", Length: 5, Handler: handleLimit},
		{Opcode: OpUnknown54, Name: "unknown-54", Length: 5, Handler: handleRaw},
		{Opcode: OpUnknown56, Name: "unknown-56", Length: 5, Handler: handleRaw},
		{Opcode: OpScrollBar, Name: "scrollbar", Length: 5, Handler: handleScrollBar},
		{Opcode: OpTrackBar, Name: "trackbar", Length: 5, Handler: handleTrackBar},
		{Opcode: OpUnknown6A, Name: "unknown-6a", Length: 5, Handler: handleRaw},
		{Opcode: OpUnknown6B, Name: "unknown-6b", Length: 5, Handler: handleRaw},
		{Opcode: OpUnknown75, Name: "unknown-75", Length: 7, Handler: handleRaw},
		{Opcode: OpHeartbeat, Name: "heartbeat", Length: 10, Handler: handleRaw},
		{Opcode: OpTextWrite, Name: "text-write", Length: 4, Handler: textWrite(0)},
		{Opcode: OpExtendedText, Name: "extended-text-write", Length: 5, Handler: handleExtendedText},
		{Opcode: OpStatusText, Name: "status-text-write", Length: 4, Handler: textWrite(4)},
	}
}

func note(env Env, cmd Command, msgs ...string) {
	env.Annotate(protocol.Annotation{
		Start:    cmd.Start,
		End:      cmd.End,
		Category: protocol.CategoryCommand,
		Messages: msgs,
	})
}

func fail(env Env, cmd Command, err error, msgs ...string) {
	if len(msgs) == 0 {
		msgs = []string{err.Error(), "!"}
	}
	env.Annotate(protocol.Annotation{
		Start:    cmd.Start,
		End:      cmd.End,
		Category: protocol.CategoryError,
		Messages: msgs,
		Err:      err,
	})
}

// handleRaw annotates commands whose meaning is not known.
func handleRaw(env Env, cmd Command) Result {
	dump := protocol.HexDump(cmd.Payload)
	note(env, cmd, fmt.Sprintf("Command: '%s'", dump), dump)
	return Complete
}

func handleBar(env Env, cmd Command) Result {
	on := cmd.Payload[1]&0x01 != 0
	env.Emit(event.Bar{Enabled: on})
	note(env, cmd, fmt.Sprintf("Top bar: %s", onOff(on)), "Bar")
	return Complete
}

func handleClear(env Env, cmd Command) Result {
	rows := rowsFromMask(cmd.Payload[1])
	env.Emit(event.Clear{Rows: rows})
	note(env, cmd, fmt.Sprintf("Clear rows %v", rows), "Clear", "C")
	return Complete
}

func handleInvert(env Env, cmd Command) Result {
	rows := rowsFromClearedMask(cmd.Payload[1])
	env.Emit(event.Invert{Rows: rows})
	note(env, cmd, fmt.Sprintf("Invert rows %v", rows), "Invert", "I")
	return Complete
}

func handleGlyph(env Env, cmd Command) Result {
	idx := int(cmd.Payload[1])
	if idx >= len(glyphNames) {
		fail(env, cmd, fmt.Errorf("%w: %d", protocol.ErrInvalidGlyph, idx),
			fmt.Sprintf("Glyph index %d out of range", idx), "Glyph?")
		return Complete
	}
	env.Emit(event.Glyph{Name: glyphNames[idx]})
	note(env, cmd, "Glyph: "+glyphNames[idx], "Glyph")
	return Complete
}

func handleFormat(env Env, cmd Command) Result {
	b := cmd.Payload[1]
	ev := event.Format{Hi: b&0x01 != 0, MD: b&0x02 != 0}
	env.Emit(ev)
	note(env, cmd, fmt.Sprintf("Format: hi %s, md %s", onOff(ev.Hi), onOff(ev.MD)), "Format")
	return Complete
}

func handleBattery(env Env, cmd Command) Result {
	b := cmd.Payload[1]
	segments := make([]bool, 4)
	lit := 0
	for i := range segments {
		segments[i] = b&(1<<i) != 0
		if segments[i] {
			lit++
		}
	}
	ev := event.Battery{
		Outline:  b&0x10 != 0,
		Charging: b&0x20 != 0,
		Segments: segments,
	}
	env.Emit(ev)
	msg := fmt.Sprintf("Battery: %d/4 segments", lit)
	if ev.Charging {
		msg += ", charging"
	}
	note(env, cmd, msg, "Battery", "B")
	return Complete
}

func handleGroups(env Env, cmd Command) Result {
	on := cmd.Payload[1]&0x01 != 0
	env.Emit(event.Groups{Enabled: on})
	note(env, cmd, fmt.Sprintf("Groups: %s", onOff(on)), "Groups")
	return Complete
}

func handlePlayMode(env Env, cmd Command) Result {
	b := cmd.Payload[1]
	entries := make([]string, 0, len(playModeNames))
	for i, name := range playModeNames {
		if b&(1<<i) != 0 {
			entries = append(entries, name)
		}
	}
	env.Emit(event.PlayMode{Entries: entries})
	note(env, cmd, fmt.Sprintf("Play mode: [%s]", strings.Join(entries, ", ")), "Mode")
	return Complete
}

func handleLimit(env Env, cmd Command) Result {
	p := cmd.Payload
	ev := event.Limit{Rows: rowsFromMask(p[1]), Start: int(p[2]), End: int(p[3])}
	env.Emit(ev)
	note(env, cmd, fmt.Sprintf("Limit rows %v to columns %d-%d", ev.Rows, ev.Start, ev.End), "Limit")
	return Complete
}

func handleScrollBar(env Env, cmd Command) Result {
	p := cmd.Payload
	ev := event.ScrollBar{From: int(p[1]), To: int(p[2]), Enabled: p[4] != 0}
	env.Emit(ev)
	note(env, cmd, fmt.Sprintf("Scrollbar %d-%d (%s)", ev.From, ev.To, onOff(ev.Enabled)), "Scrollbar")
	return Complete
}

func handleTrackBar(env Env, cmd Command) Result {
	p := cmd.Payload
	row, err := rowFromOneHot(p[1])
	if err != nil {
		fail(env, cmd, err, "Trackbar: "+err.Error(), "Trackbar?")
		return Complete
	}
	ev := event.TrackBar{Row: row, From: int(p[2]), To: int(p[3]), Enabled: p[4] != 0}
	env.Emit(ev)
	note(env, cmd, fmt.Sprintf("Trackbar row %d %d-%d (%s)", ev.Row, ev.From, ev.To, onOff(ev.Enabled)), "Trackbar")
	return Complete
}

// textLayout locates the header fields of a text write.
type textLayout struct {
	prefix         int
	rowAt          int
	lengthAt       int
	encodingAt     int
	col            int
	clearRemaining bool
}

func textWrite(col int) Handler {
	layout := textLayout{prefix: 4, rowAt: 1, lengthAt: 2, encodingAt: 3, col: col, clearRemaining: true}
	return func(env Env, cmd Command) Result {
		return writeText(env, cmd, layout)
	}
}

func handleExtendedText(env Env, cmd Command) Result {
	return writeText(env, cmd, textLayout{prefix: 5, rowAt: 1, lengthAt: 3, encodingAt: 4})
}

// writeText first runs with only the header collected and asks for the
// text bytes; the second run decodes them.
func writeText(env Env, cmd Command, l textLayout) Result {
	p := cmd.Payload
	if len(p) <= l.prefix {
		n := int(p[l.lengthAt] & textLengthMask)
		if n == 0 {
			note(env, cmd, "Empty text write (discarded)", "''")
			return Complete
		}
		return NeedMoreBytes(n)
	}

	row, err := rowFromOneHot(p[l.rowAt])
	if err != nil {
		fail(env, cmd, err, "Text write: "+err.Error(), "Row?")
		return Complete
	}
	data, issues := text.Decode(p[l.prefix:], p[l.encodingAt])
	for _, issue := range issues {
		fail(env, cmd, issue)
	}
	env.Emit(event.Display{Row: row, Col: l.col, Data: data, ClearRemaining: l.clearRemaining})

	s := data.String()
	msg := fmt.Sprintf("Write row %d col %d: '%s'", row, l.col, s)
	if strings.HasSuffix(s, "-") {
		msg += " (continues in next packet)"
	}
	note(env, cmd, msg, fmt.Sprintf("'%s'", s), "T")
	return Complete
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
