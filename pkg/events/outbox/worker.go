package outbox

import (
	"context"
	"log/slog"
	"time"

	id "modelkit/pkg/domain"
	"modelkit/pkg/event"
	"modelkit/pkg/metrics"
	"modelkit/pkg/repository"
)

const (
	defaultInterval  = time.Second
	defaultBatchSize = 100
)

// Worker relays saved outbox events to a publisher. Each cycle reads one
// batch of unhandled events, publishes them in order and marks them
// handled. Publish failures leave the batch unmarked, so delivery is
// at-least-once and retried next cycle.
type Worker struct {
	store     repository.EventStore
	publisher repository.EventPublisher
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithInterval sets the polling interval.
func WithInterval(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithBatchSize caps the number of events relayed per cycle.
func WithBatchSize(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

// WithWorkerLogger attaches a structured logger.
func WithWorkerLogger(logger *slog.Logger) WorkerOption {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithWorkerMetrics attaches Prometheus instrumentation.
func WithWorkerMetrics(m *metrics.Metrics) WorkerOption {
	return func(w *Worker) { w.metrics = m }
}

func NewWorker(store repository.EventStore, publisher repository.EventPublisher, opts ...WorkerOption) *Worker {
	w := &Worker{
		store:     store,
		publisher: publisher,
		interval:  defaultInterval,
		batchSize: defaultBatchSize,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run polls until the context is cancelled. Relay errors are logged and
// retried on the next tick, never fatal.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.RelayOnce(ctx); err != nil {
				w.logger.ErrorContext(ctx, "outbox relay cycle failed", "error", err)
			}
		}
	}
}

// RelayOnce runs a single relay cycle. Exposed so callers can flush the
// outbox deterministically, e.g. in tests or during shutdown.
func (w *Worker) RelayOnce(ctx context.Context) error {
	start := time.Now()

	batch, err := w.store.GetUnhandled(ctx, w.batchSize)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	if err := w.publisher.PublishAll(ctx, batch); err != nil {
		w.metrics.IncrementPublishError("outbox")
		return err
	}

	eventIDs := make([]id.EventID, len(batch))
	for i, evt := range batch {
		eventIDs[i] = evt.ID
		w.metrics.IncrementEventsPublished(evt.AggregateType, evt.Name)
	}
	if err := w.store.MarkAsHandled(ctx, eventIDs...); err != nil {
		return err
	}

	w.metrics.ObserveRelayLatency(time.Since(start))
	w.logger.DebugContext(ctx, "relayed outbox batch", "count", len(batch))
	return nil
}

// StorePublisher adapts an EventStore into an EventPublisher: publishing
// saves to the outbox instead of sending. Wire it into a
// PublishingRepository to get transactional event capture with the actual
// send deferred to this package's Worker.
type StorePublisher struct {
	store repository.EventStore
}

func NewStorePublisher(store repository.EventStore) *StorePublisher {
	return &StorePublisher{store: store}
}

func (p *StorePublisher) Publish(ctx context.Context, evt event.DomainEvent) error {
	return p.store.Save(ctx, evt)
}

func (p *StorePublisher) PublishAll(ctx context.Context, evts []event.DomainEvent) error {
	return p.store.Save(ctx, evts...)
}
