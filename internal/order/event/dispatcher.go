package event

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fekuna/omnipos-menu-service/internal/pkg/logger"
	"go.uber.org/zap"
)

// ErrDispatcherClosed is returned by Publish once Close has been called.
var ErrDispatcherClosed = errors.New("event dispatcher closed")

type Publisher interface {
	Publish(ctx context.Context, e *OrderEvent) error
}

// Dispatcher hands events to a Publisher from a single goroutine, so events
// are delivered in the order Publish accepted them.
type Dispatcher struct {
	next    Publisher
	timeout time.Duration
	logger  logger.ZapLogger

	mu     sync.RWMutex
	closed bool
	queue  chan *OrderEvent
	done   chan struct{}
}

func NewDispatcher(next Publisher, size int, timeout time.Duration, log logger.ZapLogger) *Dispatcher {
	d := &Dispatcher{
		next:    next,
		timeout: timeout,
		logger:  log,
		queue:   make(chan *OrderEvent, size),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Publish enqueues e. It blocks while the queue is full, until ctx ends.
func (d *Dispatcher) Publish(ctx context.Context, e *OrderEvent) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}

	select {
	case d.queue <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting events and waits until every queued event has been
// handed to the underlying publisher.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for e := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := d.next.Publish(ctx, e); err != nil {
			d.logger.Warn("failed to publish order event",
				zap.String("event_type", e.EventType),
				zap.Int64("order_id", e.Payload.ID),
				zap.Error(err),
			)
		}
		cancel()
	}
}
