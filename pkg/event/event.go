// Package event defines the immutable domain event record and its factory.
//
// Events are produced exclusively by aggregate command reducers and consumed
// by a publisher or event store collaborator after a successful persistence
// operation. The domain layer never mutates an event once created.
package event

import (
	"time"

	id "modelkit/pkg/domain"
)

// Metadata carries the causal trace of an event.
type Metadata struct {
	// Timestamp is the emission time, always set by the factory so causal
	// ordering reflects actual emission order even when reducers compose.
	Timestamp time.Time

	// CorrelationID is always present. The factory mints one when the
	// caller supplies none so every event is traceable.
	CorrelationID id.CorrelationID

	// CausationID points at the direct cause, when known.
	CausationID *id.CausationID

	// UserID records the acting user, when known.
	UserID *id.UserID
}

// DomainEvent is the immutable record of something that happened in the
// domain.
type DomainEvent struct {
	ID            id.EventID
	Name          string
	Metadata      Metadata
	Payload       any
	AggregateID   *id.Identifier
	AggregateType string
}

// AggregateRef is the minimal view of an aggregate the factory needs to
// stamp origin information onto an event.
type AggregateRef interface {
	Identity() id.Identifier
	GetTag() string
}

// NewParams configures event creation. Only Name is semantically required;
// the factory is total and fills in everything else.
type NewParams struct {
	Name          string
	Payload       any
	CorrelationID id.CorrelationID
	CausationID   *id.CausationID
	UserID        *id.UserID

	// Aggregate, when provided, supplies AggregateID and AggregateType.
	// Events not yet attached to an aggregate instance (e.g. integration
	// events) leave it nil.
	Aggregate AggregateRef
}

// New constructs a domain event. Pure and total: it never fails, the
// timestamp is always "now", and a missing correlation ID is generated.
func New(params NewParams) DomainEvent {
	correlation := params.CorrelationID
	if correlation.IsNil() {
		correlation = id.NewCorrelationID()
	}

	evt := DomainEvent{
		ID:   id.NewEventID(),
		Name: params.Name,
		Metadata: Metadata{
			Timestamp:     time.Now().UTC(),
			CorrelationID: correlation,
			CausationID:   params.CausationID,
			UserID:        params.UserID,
		},
		Payload: params.Payload,
	}

	if params.Aggregate != nil {
		aggregateID := params.Aggregate.Identity()
		evt.AggregateID = &aggregateID
		evt.AggregateType = params.Aggregate.GetTag()
	}

	return evt
}
