// Package kafka publishes domain events to a Kafka-compatible broker via
// franz-go. Records are keyed by aggregate id so all events of one
// aggregate land in one partition, preserving their relative order.
package kafka

import (
	"context"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	dErrors "modelkit/pkg/domain-errors"
	"modelkit/pkg/event"
	"modelkit/pkg/events"
	"modelkit/pkg/metrics"
)

// Publisher implements repository.EventPublisher over a franz-go client.
type Publisher struct {
	client  *kgo.Client
	topic   string
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

// NewPublisher publishes events to the given topic. The client's lifecycle
// belongs to the caller.
func NewPublisher(client *kgo.Client, topic string, opts ...Option) *Publisher {
	p := &Publisher{
		client: client,
		topic:  topic,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) Publish(ctx context.Context, evt event.DomainEvent) error {
	record, err := p.record(evt)
	if err != nil {
		return err
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		p.metrics.IncrementPublishError("kafka")
		return dErrors.Wrap(dErrors.CodeOperationFailed, "produce event", err)
	}
	p.metrics.IncrementEventsPublished(evt.AggregateType, evt.Name)
	p.logger.DebugContext(ctx, "published event", "topic", p.topic, "event", evt.Name)
	return nil
}

// PublishAll produces the batch in one synchronous call. Order within one
// aggregate is preserved by partition keying.
func (p *Publisher) PublishAll(ctx context.Context, evts []event.DomainEvent) error {
	if len(evts) == 0 {
		return nil
	}
	records := make([]*kgo.Record, len(evts))
	for i, evt := range evts {
		record, err := p.record(evt)
		if err != nil {
			return err
		}
		records[i] = record
	}
	if err := p.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
		p.metrics.IncrementPublishError("kafka")
		return dErrors.Wrap(dErrors.CodeOperationFailed, "produce event batch", err)
	}
	for _, evt := range evts {
		p.metrics.IncrementEventsPublished(evt.AggregateType, evt.Name)
	}
	p.logger.DebugContext(ctx, "published event batch", "topic", p.topic, "count", len(evts))
	return nil
}

func (p *Publisher) record(evt event.DomainEvent) (*kgo.Record, error) {
	value, err := events.Encode(evt)
	if err != nil {
		return nil, err
	}
	var key []byte
	if evt.AggregateID != nil {
		key = []byte(evt.AggregateID.String())
	}
	return &kgo.Record{
		Topic: p.topic,
		Key:   key,
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "event-name", Value: []byte(evt.Name)},
			{Key: "correlation-id", Value: []byte(evt.Metadata.CorrelationID.String())},
		},
	}, nil
}
