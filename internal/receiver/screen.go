package receiver

import (
	"sync"

	"github.com/danmuck/himdisplay/internal/protocol/event"
	"github.com/danmuck/himdisplay/internal/screen"
)

// Stats counts what a receiver has applied.
type Stats struct {
	Applied  uint64 `json:"applied"`
	Gaps     uint64 `json:"gaps"`
	Restarts uint64 `json:"restarts"`
	Rejected uint64 `json:"rejected"`
}

// ApplyResult reports sequence anomalies seen while applying one envelope.
type ApplyResult struct {
	Missing uint64
	Restart bool
}

// seqTracker follows one producer stream. Envelopes without a stream id are
// not tracked.
type seqTracker struct {
	stream  string
	next    uint64
	started bool
}

func (t *seqTracker) observe(stream string, seq uint64) ApplyResult {
	if stream == "" {
		return ApplyResult{}
	}
	if !t.started || stream != t.stream {
		res := ApplyResult{Missing: seq, Restart: t.started}
		t.started = true
		t.stream = stream
		t.next = seq + 1
		return res
	}
	var res ApplyResult
	if seq > t.next {
		res.Missing = seq - t.next
	}
	if seq >= t.next {
		t.next = seq + 1
	}
	return res
}

// Screen is the receiver's live display plus a bounded event history.
type Screen struct {
	mu      sync.RWMutex
	state   screen.State
	history []event.Envelope
	limit   int
	seq     seqTracker
	stats   Stats
}

func NewScreen(history int) *Screen {
	if history <= 0 {
		history = 512
	}
	return &Screen{
		state: screen.New(),
		limit: history,
	}
}

// Apply folds env into the display.
func (s *Screen) Apply(env event.Envelope) ApplyResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.seq.observe(env.Stream, env.Seq)
	s.stats.Gaps += res.Missing
	if res.Restart {
		s.stats.Restarts++
	}

	s.state = screen.Apply(s.state, env.Event)
	s.stats.Applied++
	s.history = append(s.history, env)
	if over := len(s.history) - s.limit; over > 0 {
		s.history = append(s.history[:0:0], s.history[over:]...)
	}
	return res
}

func (s *Screen) reject() {
	s.mu.Lock()
	s.stats.Rejected++
	s.mu.Unlock()
}

// State returns a copy of the current display.
func (s *Screen) State() screen.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// History returns up to limit of the most recent envelopes, oldest first.
// limit <= 0 returns everything kept.
func (s *Screen) History(limit int) []event.Envelope {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := 0
	if limit > 0 && limit < len(s.history) {
		start = len(s.history) - limit
	}
	out := make([]event.Envelope, len(s.history)-start)
	copy(out, s.history[start:])
	return out
}

func (s *Screen) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Reset drops the display, history and sequence tracking.
func (s *Screen) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = screen.New()
	s.history = nil
	s.seq = seqTracker{}
}
