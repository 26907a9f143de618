// Package events provides the wire codec shared by the event publishers
// and the outbox store. One JSON envelope, stable across transports, so an
// event relayed through the outbox is byte-identical to one published
// directly.
package events

import (
	"encoding/json"
	"time"

	id "modelkit/pkg/domain"
	dErrors "modelkit/pkg/domain-errors"
	"modelkit/pkg/event"
)

type envelope struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Timestamp     string          `json:"timestamp"`
	CorrelationID string          `json:"correlationId"`
	CausationID   string          `json:"causationId,omitempty"`
	UserID        string          `json:"userId,omitempty"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	AggregateID   string          `json:"aggregateId,omitempty"`
	AggregateType string          `json:"aggregateType,omitempty"`
}

// Encode serializes a domain event into the shared JSON envelope.
func Encode(evt event.DomainEvent) ([]byte, error) {
	env := envelope{
		ID:            evt.ID.String(),
		Name:          evt.Name,
		Timestamp:     evt.Metadata.Timestamp.Format(time.RFC3339Nano),
		CorrelationID: evt.Metadata.CorrelationID.String(),
		AggregateType: evt.AggregateType,
	}
	if evt.Metadata.CausationID != nil {
		env.CausationID = evt.Metadata.CausationID.String()
	}
	if evt.Metadata.UserID != nil {
		env.UserID = evt.Metadata.UserID.String()
	}
	if evt.AggregateID != nil {
		env.AggregateID = evt.AggregateID.String()
	}
	if evt.Payload != nil {
		payload, err := json.Marshal(evt.Payload)
		if err != nil {
			return nil, dErrors.Wrap(dErrors.CodeOperationFailed, "encode event payload", err)
		}
		env.Payload = payload
	}

	raw, err := json.Marshal(env)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeOperationFailed, "encode event envelope", err)
	}
	return raw, nil
}

// Decode deserializes an envelope back into a domain event. The payload
// comes back as json.RawMessage: the concrete payload type is not known on
// the consuming side.
func Decode(raw []byte) (event.DomainEvent, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return event.DomainEvent{}, dErrors.Wrap(dErrors.CodeInvalidInput, "decode event envelope", err)
	}

	eventID, err := id.ParseEventID(env.ID)
	if err != nil {
		return event.DomainEvent{}, err
	}
	correlation, err := id.ParseCorrelationID(env.CorrelationID)
	if err != nil {
		return event.DomainEvent{}, err
	}
	timestamp, err := time.Parse(time.RFC3339Nano, env.Timestamp)
	if err != nil {
		return event.DomainEvent{}, dErrors.Wrap(dErrors.CodeInvalidInput, "decode event timestamp", err)
	}

	evt := event.DomainEvent{
		ID:   eventID,
		Name: env.Name,
		Metadata: event.Metadata{
			Timestamp:     timestamp,
			CorrelationID: correlation,
		},
		AggregateType: env.AggregateType,
	}
	if len(env.Payload) > 0 {
		evt.Payload = env.Payload
	}
	if env.CausationID != "" {
		causation, err := id.ParseCausationID(env.CausationID)
		if err != nil {
			return event.DomainEvent{}, err
		}
		evt.Metadata.CausationID = &causation
	}
	if env.UserID != "" {
		userID, err := id.ParseUserID(env.UserID)
		if err != nil {
			return event.DomainEvent{}, err
		}
		evt.Metadata.UserID = &userID
	}
	if env.AggregateID != "" {
		aggregateID, err := id.ParseIdentifier(env.AggregateID)
		if err != nil {
			return event.DomainEvent{}, err
		}
		evt.AggregateID = &aggregateID
	}
	return evt, nil
}
