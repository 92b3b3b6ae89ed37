package transport

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/danmuck/himdisplay/internal/observability"
	"github.com/danmuck/himdisplay/internal/protocol/event"
)

// PublisherStats counts publisher outcomes.
type PublisherStats struct {
	Queued  uint64
	Sent    uint64
	Failed  uint64
	Dropped uint64
}

// Publisher stamps events with a stream id and sequence number and hands them
// to a Sender from a single worker, so delivery order is emission order.
// Emit blocks while the queue is full.
type Publisher struct {
	sender Sender
	logger zerolog.Logger

	mu     sync.Mutex
	stream string
	seq    uint64
	closed bool

	queue  chan event.Envelope
	cancel context.CancelFunc
	done   chan struct{}

	queued  atomic.Uint64
	sent    atomic.Uint64
	failed  atomic.Uint64
	dropped atomic.Uint64
}

func NewPublisher(sender Sender, cfg Config, logger zerolog.Logger) *Publisher {
	if sender == nil {
		sender = Discard{}
	}
	cfg = cfg.WithDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	p := &Publisher{
		sender: sender,
		logger: logger,
		stream: uuid.NewString(),
		queue:  make(chan event.Envelope, cfg.QueueSize),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go p.run(ctx)
	return p
}

// Stream returns the current stream id.
func (p *Publisher) Stream() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stream
}

// Restart begins a new stream and publishes Init as its first event.
func (p *Publisher) Restart() string {
	p.mu.Lock()
	p.stream = uuid.NewString()
	p.seq = 0
	id := p.stream
	p.mu.Unlock()
	p.Emit(event.Init{})
	return id
}

// Emit queues ev for delivery.
func (p *Publisher) Emit(ev event.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		p.dropped.Add(1)
		return
	}
	env := event.Envelope{Seq: p.seq, Stream: p.stream, Event: ev}
	p.seq++
	p.queued.Add(1)
	observability.RecordEvent("decoded", string(ev.Kind()))
	p.queue <- env
}

func (p *Publisher) run(ctx context.Context) {
	defer close(p.done)
	for env := range p.queue {
		start := time.Now()
		err := p.sender.Send(ctx, env)
		observability.RecordDelivery(p.sender.Name(), time.Since(start), err == nil)
		if err != nil {
			p.failed.Add(1)
			p.logger.Warn().
				Err(err).
				Str("transport", p.sender.Name()).
				Uint64("seq", env.Seq).
				Str("type", string(env.Event.Kind())).
				Msg("event delivery failed")
			continue
		}
		p.sent.Add(1)
	}
}

// Close stops accepting events, drains the queue and closes the sender.
// Deliveries still pending when ctx ends are abandoned.
func (p *Publisher) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	select {
	case <-p.done:
	case <-ctx.Done():
		p.cancel()
		<-p.done
	}
	p.cancel()
	return p.sender.Close()
}

func (p *Publisher) Stats() PublisherStats {
	return PublisherStats{
		Queued:  p.queued.Load(),
		Sent:    p.sent.Load(),
		Failed:  p.failed.Load(),
		Dropped: p.dropped.Load(),
	}
}
