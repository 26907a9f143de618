// Package domain provides the identifier primitives used across the kernel.
//
// Each identifier is a distinct uuid-backed type so the compiler rejects
// cross-type assignment (an EventID can never be passed where an aggregate
// Identifier is expected). Parse functions enforce validity at trust
// boundaries; New functions mint fresh identifiers.
package domain

import (
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "modelkit/pkg/domain-errors"
)

// Identifier is the opaque unique token carried by entities and aggregates.
type Identifier uuid.UUID

// CorrelationID links a chain of related commands and events across process
// boundaries.
type CorrelationID uuid.UUID

// CausationID points at the command or event that directly caused an event.
type CausationID uuid.UUID

// EventID uniquely identifies a single domain event occurrence.
type EventID uuid.UUID

// UserID identifies the acting user recorded in event metadata.
type UserID uuid.UUID

// NewIdentifier mints a fresh entity identifier.
func NewIdentifier() Identifier { return Identifier(uuid.New()) }

// NewCorrelationID mints a fresh correlation identifier.
func NewCorrelationID() CorrelationID { return CorrelationID(uuid.New()) }

// NewCausationID mints a fresh causation identifier.
func NewCausationID() CausationID { return CausationID(uuid.New()) }

// NewEventID mints a fresh event identifier.
func NewEventID() EventID { return EventID(uuid.New()) }

// NewUserID mints a fresh user identifier.
func NewUserID() UserID { return UserID(uuid.New()) }

func (i Identifier) String() string    { return uuid.UUID(i).String() }
func (i CorrelationID) String() string { return uuid.UUID(i).String() }
func (i CausationID) String() string   { return uuid.UUID(i).String() }
func (i EventID) String() string       { return uuid.UUID(i).String() }
func (i UserID) String() string        { return uuid.UUID(i).String() }

func (i Identifier) IsNil() bool    { return uuid.UUID(i) == uuid.Nil }
func (i CorrelationID) IsNil() bool { return uuid.UUID(i) == uuid.Nil }
func (i CausationID) IsNil() bool   { return uuid.UUID(i) == uuid.Nil }
func (i EventID) IsNil() bool       { return uuid.UUID(i) == uuid.Nil }
func (i UserID) IsNil() bool        { return uuid.UUID(i) == uuid.Nil }

// parseUUID enforces the shared invariant: IDs must be valid, non-nil UUIDs.
func parseUUID(raw, what string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s must not be empty", what)
	}
	if !utf8.ValidString(raw) {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s must be valid UTF-8", what)
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s must be a valid UUID", what)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s must not be the nil UUID", what)
	}
	return parsed, nil
}

// ParseIdentifier validates and returns an Identifier.
func ParseIdentifier(raw string) (Identifier, error) {
	parsed, err := parseUUID(raw, "identifier")
	if err != nil {
		return Identifier{}, err
	}
	return Identifier(parsed), nil
}

// ParseCorrelationID validates and returns a CorrelationID.
func ParseCorrelationID(raw string) (CorrelationID, error) {
	parsed, err := parseUUID(raw, "correlation id")
	if err != nil {
		return CorrelationID{}, err
	}
	return CorrelationID(parsed), nil
}

// ParseCausationID validates and returns a CausationID.
func ParseCausationID(raw string) (CausationID, error) {
	parsed, err := parseUUID(raw, "causation id")
	if err != nil {
		return CausationID{}, err
	}
	return CausationID(parsed), nil
}

// ParseEventID validates and returns an EventID.
func ParseEventID(raw string) (EventID, error) {
	parsed, err := parseUUID(raw, "event id")
	if err != nil {
		return EventID{}, err
	}
	return EventID(parsed), nil
}

// ParseUserID validates and returns a UserID.
func ParseUserID(raw string) (UserID, error) {
	parsed, err := parseUUID(raw, "user id")
	if err != nil {
		return UserID{}, err
	}
	return UserID(parsed), nil
}
