// Package redisstream publishes domain events to a Redis stream via XADD.
// Lighter than a broker for single-region setups; consumers read the
// stream with consumer groups.
package redisstream

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"

	dErrors "modelkit/pkg/domain-errors"
	"modelkit/pkg/event"
	"modelkit/pkg/events"
	"modelkit/pkg/metrics"
)

// Publisher implements repository.EventPublisher over one Redis stream.
type Publisher struct {
	client  redis.Cmdable
	stream  string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Publisher) { p.metrics = m }
}

func NewPublisher(client redis.Cmdable, stream string, opts ...Option) *Publisher {
	p := &Publisher{
		client: client,
		stream: stream,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) Publish(ctx context.Context, evt event.DomainEvent) error {
	value, err := events.Encode(evt)
	if err != nil {
		return err
	}

	fields := map[string]any{
		"event":          value,
		"name":           evt.Name,
		"correlation_id": evt.Metadata.CorrelationID.String(),
	}
	if evt.AggregateID != nil {
		fields["aggregate_id"] = evt.AggregateID.String()
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{Stream: p.stream, Values: fields}).Err(); err != nil {
		p.metrics.IncrementPublishError("redisstream")
		return dErrors.Wrap(dErrors.CodeOperationFailed, "xadd event", err)
	}
	p.metrics.IncrementEventsPublished(evt.AggregateType, evt.Name)
	p.logger.DebugContext(ctx, "published event", "stream", p.stream, "event", evt.Name)
	return nil
}

// PublishAll appends events one by one, stopping at the first failure so
// the stream never holds an event whose predecessor was dropped.
func (p *Publisher) PublishAll(ctx context.Context, evts []event.DomainEvent) error {
	for _, evt := range evts {
		if err := p.Publish(ctx, evt); err != nil {
			return err
		}
	}
	return nil
}
