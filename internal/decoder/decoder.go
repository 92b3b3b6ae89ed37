package decoder

import (
	"fmt"

	"github.com/danmuck/himdisplay/internal/protocol"
	"github.com/danmuck/himdisplay/internal/protocol/event"
)

// State is the decoder's position in the bus framing.
type State uint8

const (
	StateIdle State = iota
	StatePrologue
	StateData
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StatePrologue:
		return "PROLOGUE"
	case StateData:
		return "DATA"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Command is a fully collected command as seen by its handler. Payload starts
// with the opcode and is only valid for the duration of the handler call.
type Command struct {
	Opcode  byte
	Name    string
	Start   protocol.Timestamp
	End     protocol.Timestamp
	Payload []byte
}

// Env is the decoder as seen by command handlers.
type Env interface {
	Emit(event.Event)
	Annotate(protocol.Annotation)
}

// Stats counts what a decoder has seen since it was created or reset.
type Stats struct {
	Bytes             uint64
	Frames            uint64
	Prologues         uint64
	ChecksumErrors    uint64
	TruncatedCommands uint64
	UnknownOpcodes    uint64
	Commands          uint64
	Events            uint64
}

type frameState struct {
	remaining int
	xor       byte
	nonZero   int
	start     protocol.Timestamp
}

type inflight struct {
	active    bool
	reg       Registration
	start     protocol.Timestamp
	end       protocol.Timestamp
	payload   []byte
	remaining int
}

// Decoder is the incremental bus state machine.
type Decoder struct {
	registry *Registry
	sink     protocol.Sink
	emitter  Emitter

	state             State
	stateStart        protocol.Timestamp
	started           bool
	prologueRemaining int
	frame             frameState
	cmd               inflight
	buf               [protocol.FrameLen]byte
	stats             Stats
}

var _ Env = (*Decoder)(nil)

// New builds an idle decoder using the default registry, discarding output
// unless a sink and emitter are supplied.
func New(opts ...Option) *Decoder {
	d := &Decoder{
		registry: DefaultRegistry(),
		sink:     protocol.Discard,
		emitter:  DiscardEvents,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Reset discards any partial frame or command and returns to a fresh stream.
func (d *Decoder) Reset() {
	d.state = StateIdle
	d.stateStart = 0
	d.started = false
	d.prologueRemaining = 0
	d.frame = frameState{}
	d.cmd = inflight{}
	d.stats = Stats{}
}

func (d *Decoder) State() State {
	return d.state
}

// InFlight reports whether a command is currently open.
func (d *Decoder) InFlight() bool {
	return d.cmd.active
}

func (d *Decoder) Stats() Stats {
	return d.stats
}

// Emit forwards a handler event to the emitter.
func (d *Decoder) Emit(ev event.Event) {
	d.stats.Events++
	d.emitter.Emit(ev)
}

// Annotate forwards a handler annotation to the sink.
func (d *Decoder) Annotate(a protocol.Annotation) {
	d.sink.Annotate(a)
}

// Decode consumes one sample.
func (d *Decoder) Decode(s protocol.Sample) {
	d.stats.Bytes++
	if protocol.IsPrintable(s.Value) {
		d.annotate(s.Start, s.End, protocol.CategoryASCII, nil, fmt.Sprintf("'%c'", s.Value))
	}
	if !d.started {
		d.started = true
		d.stateStart = s.Start
	}

	if d.state == StateIdle && d.classify(s) {
		return
	}
	switch d.state {
	case StatePrologue:
		d.prologue(s)
	case StateData:
		d.data(s)
	}
}

// DecodeAll feeds every sample in order.
func (d *Decoder) DecodeAll(samples []protocol.Sample) {
	for _, s := range samples {
		d.Decode(s)
	}
}

// classify picks the next state for a byte seen while idle. It reports true
// when the byte was consumed as a sync byte.
func (d *Decoder) classify(s protocol.Sample) bool {
	if protocol.IsSync(s.Value) {
		d.switchState(StatePrologue, s.Start)
		d.prologueRemaining = protocol.PrologueLen
		d.stats.Prologues++
		return true
	}
	d.switchState(StateData, s.Start)
	d.frame = frameState{remaining: protocol.FrameLen, start: s.Start}
	d.cmd = inflight{}
	return false
}

func (d *Decoder) prologue(s protocol.Sample) {
	d.prologueRemaining--
	if d.prologueRemaining == 0 {
		d.switchState(StateIdle, s.End)
	}
}

func (d *Decoder) data(s protocol.Sample) {
	d.frame.xor ^= s.Value
	if s.Value != 0 {
		d.frame.nonZero++
	}
	d.frame.remaining--

	d.finishCommand()
	if d.frame.remaining == 0 {
		d.endFrame(s)
		return
	}
	d.dispatch(s)
}

// finishCommand runs the handler of a command whose bytes are all in.
func (d *Decoder) finishCommand() {
	if !d.cmd.active || d.cmd.remaining > 0 {
		return
	}
	reg := d.cmd.reg
	res := reg.Handler(d, Command{
		Opcode:  reg.Opcode,
		Name:    reg.Name,
		Start:   d.cmd.start,
		End:     d.cmd.end,
		Payload: d.cmd.payload,
	})
	if n, more := res.More(); more {
		d.cmd.remaining = n
		return
	}
	d.stats.Commands++
	d.cmd = inflight{}
}

// dispatch opens a command on a registered opcode and feeds payload bytes to
// the open command. The opening byte is payload byte 0.
func (d *Decoder) dispatch(s protocol.Sample) {
	if !d.cmd.active {
		reg, ok := d.registry.Lookup(s.Value)
		switch {
		case ok:
			d.cmd = inflight{
				active:    true,
				reg:       reg,
				start:     s.Start,
				end:       s.End,
				payload:   d.buf[:0],
				remaining: reg.Length,
			}
		case s.Value != 0:
			d.stats.UnknownOpcodes++
			d.annotate(s.Start, s.End, protocol.CategoryCommand,
				fmt.Errorf("%w: 0x%02x", protocol.ErrUnknownOpcode, s.Value),
				fmt.Sprintf("Byte 0x%02x - not a valid command", s.Value), "?")
		}
	}
	if d.cmd.active && d.cmd.remaining > 0 {
		d.cmd.payload = append(d.cmd.payload, s.Value)
		d.cmd.remaining--
		d.cmd.end = s.End
	}
}

func (d *Decoder) endFrame(s protocol.Sample) {
	if d.frame.xor != protocol.FrameChecksum {
		d.stats.ChecksumErrors++
		d.annotate(d.frame.start, s.End, protocol.CategoryError,
			fmt.Errorf("%w: frame xor 0x%02x", protocol.ErrChecksumMismatch, d.frame.xor),
			fmt.Sprintf("Checksum mismatch! (xor 0x%02x)", d.frame.xor), "Checksum mismatch!", "!")
	}
	if d.frame.nonZero > protocol.DenseFrameThreshold {
		d.annotate(s.Start, s.End, protocol.CategoryDebug, nil,
			fmt.Sprintf("Debug: Dense packet (%d bytes)", d.frame.nonZero), "Dense packet")
	}
	if d.cmd.active {
		d.stats.TruncatedCommands++
		d.annotate(d.cmd.start, s.End, protocol.CategoryError,
			fmt.Errorf("%w: %s (0x%02x) missing %d bytes", protocol.ErrTruncatedCommand, d.cmd.reg.Name, d.cmd.reg.Opcode, d.cmd.remaining),
			fmt.Sprintf("Truncated %s: %d bytes missing", d.cmd.reg.Name, d.cmd.remaining), "Truncated", "!")
		d.cmd = inflight{}
	}
	d.stats.Frames++
	d.switchState(StateIdle, s.End)
}

// switchState annotates the state being left and enters next at ts.
func (d *Decoder) switchState(next State, ts protocol.Timestamp) {
	d.annotate(d.stateStart, ts, protocol.CategoryState, nil, "State: "+d.state.String(), d.state.String())
	d.stateStart = ts
	d.state = next
}

func (d *Decoder) annotate(start, end protocol.Timestamp, cat protocol.Category, err error, msgs ...string) {
	d.sink.Annotate(protocol.Annotation{
		Start:    start,
		End:      end,
		Category: cat,
		Messages: msgs,
		Err:      err,
	})
}
