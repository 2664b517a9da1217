package eventpublisher

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/tradeledger/internal/domain"
)

// Notification outcomes.
const (
	OutcomePublished = "published"
	OutcomeFailed    = "failed"
	OutcomeDropped   = "dropped"
)

// Publisher delivers an event to an external system.
type Publisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// Observer receives one call per notification outcome.
type Observer interface {
	ObserveNotification(eventType, outcome string)
}

// Dispatcher implements usecase.Notifier. Notify only enqueues; a worker
// started with Start delivers events to the publisher. When the buffer is full
// the event is dropped and logged.
type Dispatcher struct {
	publisher      Publisher
	observer       Observer
	logger         zerolog.Logger
	events         chan domain.Event
	publishTimeout time.Duration
	drainTimeout   time.Duration

	// mu orders Notify sends against shutdown: once stopped is set no
	// further event enters the buffer, so the final drain sees all of them.
	mu      sync.RWMutex
	stopped bool
}

// Config for Dispatcher.
type Config struct {
	Publisher      Publisher
	Observer       Observer
	Logger         zerolog.Logger
	BufferSize     int           // Events held before Notify starts dropping
	PublishTimeout time.Duration // Bound for a single Publish call
	DrainTimeout   time.Duration // Bound for flushing the buffer on shutdown
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1024
	}
	if cfg.PublishTimeout == 0 {
		cfg.PublishTimeout = 2 * time.Second
	}
	if cfg.DrainTimeout == 0 {
		cfg.DrainTimeout = 5 * time.Second
	}

	return &Dispatcher{
		publisher:      cfg.Publisher,
		observer:       cfg.Observer,
		logger:         cfg.Logger,
		events:         make(chan domain.Event, cfg.BufferSize),
		publishTimeout: cfg.PublishTimeout,
		drainTimeout:   cfg.DrainTimeout,
	}
}

// Notify enqueues event without blocking. It never fails the caller.
func (d *Dispatcher) Notify(_ context.Context, event domain.Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		d.drop(event, "dispatcher stopped")
		return
	}

	select {
	case d.events <- event:
	default:
		d.drop(event, "notification buffer full")
	}
}

// Start delivers queued events until ctx is cancelled, then flushes what is
// left in the buffer within the drain timeout.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.logger.Info().
		Int("buffer_size", cap(d.events)).
		Msg("notification dispatcher started")

	for {
		select {
		case <-ctx.Done():
			d.stop()
			d.drain(context.WithoutCancel(ctx))
			d.logger.Info().Msg("notification dispatcher shutting down")
			return ctx.Err()
		case event := <-d.events:
			d.publish(ctx, event)
		}
	}
}

func (d *Dispatcher) stop() {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
}

func (d *Dispatcher) drain(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, d.drainTimeout)
	defer cancel()

	for {
		select {
		case event := <-d.events:
			d.publish(ctx, event)
		default:
			return
		}
	}
}

func (d *Dispatcher) publish(ctx context.Context, event domain.Event) {
	ctx, cancel := context.WithTimeout(ctx, d.publishTimeout)
	defer cancel()

	if err := d.publisher.Publish(ctx, event); err != nil {
		d.logger.Error().
			Err(err).
			Str("event_id", event.ID).
			Str("event_type", event.EventType).
			Msg("failed to publish event")
		d.observe(event.EventType, OutcomeFailed)
		return
	}

	d.observe(event.EventType, OutcomePublished)
}

func (d *Dispatcher) drop(event domain.Event, reason string) {
	d.logger.Warn().
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Str("aggregate_id", event.AggregateID).
		Msg(reason)
	d.observe(event.EventType, OutcomeDropped)
}

func (d *Dispatcher) observe(eventType, outcome string) {
	if d.observer != nil {
		d.observer.ObserveNotification(eventType, outcome)
	}
}
