package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrDispatcherClosed = errors.New("events: dispatcher closed")
	ErrQueueFull        = errors.New("events: queue full")
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher interface allows event publication/subscription.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

type registry struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
}

func (r *registry) Subscribe(eventType EventType, handler EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners[eventType] = append(r.listeners[eventType], handler)
}

func (r *registry) handlers(eventType EventType) []EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]EventHandler{}, r.listeners[eventType]...)
}

// inMemoryDispatcher is a simple synchronous dispatcher.
type inMemoryDispatcher struct {
	registry
}

// NewInMemoryDispatcher creates a dispatcher that runs handlers on the publishing goroutine.
func NewInMemoryDispatcher() Dispatcher {
	return &inMemoryDispatcher{registry: registry{listeners: make(map[EventType][]EventHandler)}}
}

// Publish synchronously invokes handlers and returns the first handler error.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	var first error
	for _, handler := range d.handlers(event.Type) {
		if err := handler(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// AsyncDispatcher queues events and delivers them from a fixed worker pool.
// Publish never waits for handlers; handler failures are logged and dropped.
type AsyncDispatcher struct {
	registry
	logger *zap.Logger
	queue  chan queuedEvent
	group  *errgroup.Group

	mu     sync.RWMutex
	closed bool
}

type queuedEvent struct {
	ctx   context.Context
	event Event
}

// NewAsyncDispatcher starts workers goroutines draining a queue of queueSize events.
func NewAsyncDispatcher(logger *zap.Logger, workers, queueSize int) *AsyncDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	d := &AsyncDispatcher{
		registry: registry{listeners: make(map[EventType][]EventHandler)},
		logger:   logger,
		queue:    make(chan queuedEvent, queueSize),
		group:    &errgroup.Group{},
	}
	for i := 0; i < workers; i++ {
		d.group.Go(d.work)
	}
	return d
}

// Publish enqueues the event. The request context's values are kept but its
// cancellation is not, so delivery outlives the request.
func (d *AsyncDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.queue <- queuedEvent{ctx: context.WithoutCancel(ctx), event: event}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting events and waits for queued ones to be delivered or ctx to end.
func (d *AsyncDispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- d.group.Wait() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *AsyncDispatcher) work() error {
	for item := range d.queue {
		d.deliver(item)
	}
	return nil
}

func (d *AsyncDispatcher) deliver(item queuedEvent) {
	for _, handler := range d.handlers(item.event.Type) {
		start := time.Now()
		if err := d.safeCall(handler, item); err != nil {
			d.logger.Error("event handler failed",
				zap.String("event_id", item.event.ID),
				zap.String("event_type", string(item.event.Type)),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err))
		}
	}
}

func (d *AsyncDispatcher) safeCall(handler EventHandler, item queuedEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("event handler panicked")
			d.logger.Error("event handler panic", zap.Any("panic", r))
		}
	}()
	return handler(item.ctx, item.event)
}
