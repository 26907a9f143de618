package model

import (
	"context"
	"time"

	id "modelkit/pkg/domain"
	dErrors "modelkit/pkg/domain-errors"
	"modelkit/pkg/event"
)

// AggregateRoot is an entity that additionally carries an ordered log of
// domain events raised but not yet published. The log only grows through
// AddDomainEvents and is reset atomically through ClearEvents; both return
// a new value, the receiver is never mutated.
type AggregateRoot[P any] struct {
	Entity[P]
	domainEvents []event.DomainEvent
}

// DomainEvents returns the pending events in emission order. The returned
// slice is a copy; mutating it cannot affect the aggregate.
func (a AggregateRoot[P]) DomainEvents() []event.DomainEvent {
	if len(a.domainEvents) == 0 {
		return nil
	}
	out := make([]event.DomainEvent, len(a.domainEvents))
	copy(out, a.domainEvents)
	return out
}

// AddDomainEvent appends one event to the log.
func (a AggregateRoot[P]) AddDomainEvent(evt event.DomainEvent) AggregateRoot[P] {
	return a.AddDomainEvents(evt)
}

// AddDomainEvents appends events to the log in the order given. Append-only:
// existing events are never reordered or deduplicated.
func (a AggregateRoot[P]) AddDomainEvents(events ...event.DomainEvent) AggregateRoot[P] {
	if len(events) == 0 {
		return a
	}
	next := a
	merged := make([]event.DomainEvent, 0, len(a.domainEvents)+len(events))
	merged = append(merged, a.domainEvents...)
	merged = append(merged, events...)
	next.domainEvents = merged
	return next
}

// ClearEvents returns the aggregate with an empty event log. Called by the
// persistence collaborator after events have been drained and published;
// the command path never auto-clears.
func (a AggregateRoot[P]) ClearEvents() AggregateRoot[P] {
	next := a
	next.domainEvents = nil
	return next
}

// AggregateRootTrait bundles construction, queries, commands and event
// handlers for one aggregate concept. Built via NewAggregateRoot(...).Build().
type AggregateRootTrait[P any] struct {
	tag           string
	parser        PropsParser[P]
	generateID    bool
	queries       map[string]Query[P]
	commands      map[string]AggregateCommand[P, any]
	eventHandlers map[string]event.Handler
}

// Tag returns the trait's nominal discriminator.
func (t *AggregateRootTrait[P]) Tag() string { return t.tag }

// New constructs a fresh aggregate with an empty event log.
func (t *AggregateRootTrait[P]) New(ctx context.Context, raw any, opts ...NewOption) (AggregateRoot[P], error) {
	entity, err := t.entityTrait().New(ctx, raw, opts...)
	if err != nil {
		return AggregateRoot[P]{}, err
	}
	return AggregateRoot[P]{Entity: entity}, nil
}

// Parse rehydrates an aggregate from its canonical persisted snapshot. The
// event log starts empty: pending events are never persisted with state.
func (t *AggregateRootTrait[P]) Parse(ctx context.Context, snap Snapshot) (AggregateRoot[P], error) {
	entity, err := t.entityTrait().Parse(ctx, snap)
	if err != nil {
		return AggregateRoot[P]{}, err
	}
	return AggregateRoot[P]{Entity: entity}, nil
}

func (t *AggregateRootTrait[P]) entityTrait() *EntityTrait[P] {
	return &EntityTrait[P]{tag: t.tag, parser: t.parser, generateID: t.generateID}
}

// Evaluate runs a registered query against the instance's props.
func (t *AggregateRootTrait[P]) Evaluate(name string, a AggregateRoot[P]) (any, error) {
	query, ok := t.queries[name]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeMisconfigured, "query %q is not registered on %q", name, t.tag)
	}
	return query(a.Props), nil
}

// Command looks up a named command registered on the builder.
func (t *AggregateRootTrait[P]) Command(name string) (AggregateCommand[P, any], error) {
	cmd, ok := t.commands[name]
	if !ok {
		return AggregateCommand[P, any]{}, dErrors.Newf(dErrors.CodeMisconfigured,
			"command %q is not registered on %q", name, t.tag)
	}
	return cmd, nil
}

// EventHandlers returns the name-to-handler map attached at build time. The
// kernel never invokes these; dispatch is the application layer's explicit
// drain-and-dispatch step after persistence (see event.Dispatcher).
func (t *AggregateRootTrait[P]) EventHandlers() map[string]event.Handler {
	out := make(map[string]event.Handler, len(t.eventHandlers))
	for name, handler := range t.eventHandlers {
		out[name] = handler
	}
	return out
}

// AggregateReducer computes new props and newly raised events from a
// command input and the current state. A reducer detecting an invalid
// transition must fail before producing any event; failure and success are
// mutually exclusive outcomes by construction.
type AggregateReducer[P any, I any] func(ctx context.Context, input I, props P, current AggregateRoot[P], correlation id.CorrelationID) (P, []event.DomainEvent, error)

// AggregateCommand is a state-transition operator derived from an aggregate
// reducer via AsAggregateCommand.
type AggregateCommand[P any, I any] struct {
	reduce AggregateReducer[P, I]
}

// AsAggregateCommand turns a reducer into a state-transition operator that
// threads both new state and newly raised events atomically: on success the
// returned aggregate has replaced props, a refreshed updatedAt, and the
// previous event list with the new events appended in reducer order.
func AsAggregateCommand[P any, I any](reduce AggregateReducer[P, I]) AggregateCommand[P, I] {
	return AggregateCommand[P, I]{reduce: reduce}
}

// Execute runs the command against the current aggregate. All-or-nothing:
// a reducer failure leaves state and event log untouched.
func (c AggregateCommand[P, I]) Execute(ctx context.Context, current AggregateRoot[P], input I, opts ...CommandOption) (AggregateRoot[P], error) {
	correlation := resolveCorrelation(opts)

	props, events, err := c.reduce(ctx, input, current.Props, current, correlation)
	if err != nil {
		return AggregateRoot[P]{}, err
	}

	now := time.Now().UTC()
	next := current
	next.Props = props
	next.UpdatedAt = &now
	return next.AddDomainEvents(events...), nil
}
