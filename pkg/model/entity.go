package model

import (
	"context"
	"time"

	id "modelkit/pkg/domain"
	dErrors "modelkit/pkg/domain-errors"
)

// Entity is a domain model with identity. The ID is immutable for the
// lifetime of the entity's logical identity: copies produced by commands
// retain it. UpdatedAt is nil until the first command execution.
type Entity[P any] struct {
	DomainModel[P]
	ID        id.Identifier
	UpdatedAt *time.Time
}

// Identity returns the entity's opaque unique token.
func (e Entity[P]) Identity() id.Identifier { return e.ID }

// IsEqual reports identity equality: two entities are equal iff tag and id
// match. Structural prop equality plays no part in entity identity.
func (e Entity[P]) IsEqual(other Entity[P]) bool {
	return e.Tag == other.Tag && e.ID == other.ID
}

// Snapshot is the canonical persisted shape an entity or aggregate is
// rehydrated from. Props pass through the full validation pipeline again on
// Parse; identity and timestamps are restored as-is.
type Snapshot struct {
	ID        id.Identifier
	Props     any
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// NewOption adjusts construction of a fresh entity or aggregate.
type NewOption func(*newOptions)

type newOptions struct {
	id        id.Identifier
	createdAt time.Time
}

// WithID supplies an identifier instead of minting one.
func WithID(identifier id.Identifier) NewOption {
	return func(o *newOptions) { o.id = identifier }
}

// WithCreatedAt supplies a creation timestamp instead of "now".
func WithCreatedAt(at time.Time) NewOption {
	return func(o *newOptions) { o.createdAt = at }
}

// EntityTrait bundles construction, queries and commands for one entity
// concept. Built via NewEntity(...).Build().
type EntityTrait[P any] struct {
	tag        string
	parser     PropsParser[P]
	generateID bool
	queries    map[string]Query[P]
	commands   map[string]EntityCommand[P, any]
}

// Tag returns the trait's nominal discriminator.
func (t *EntityTrait[P]) Tag() string { return t.tag }

// New constructs a fresh entity from raw creation input: props validated,
// identifier minted when absent (and generation enabled), createdAt
// defaulting to now.
func (t *EntityTrait[P]) New(ctx context.Context, raw any, opts ...NewOption) (Entity[P], error) {
	var options newOptions
	for _, opt := range opts {
		opt(&options)
	}

	props, err := t.parser(ctx, raw)
	if err != nil {
		return Entity[P]{}, err
	}

	identifier := options.id
	if identifier.IsNil() {
		if !t.generateID {
			return Entity[P]{}, dErrors.Newf(dErrors.CodeInvalidInput,
				"%s requires an explicit id: generation is disabled", t.tag)
		}
		identifier = id.NewIdentifier()
	}

	createdAt := options.createdAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	return Entity[P]{
		DomainModel: DomainModel[P]{Tag: t.tag, Props: props, CreatedAt: createdAt},
		ID:          identifier,
	}, nil
}

// Parse rehydrates an entity from its canonical persisted snapshot. This is
// the rehydration-vs-construction distinction the persistence layer relies
// on: pre-existing identity and timestamps are restored, props are
// re-validated.
func (t *EntityTrait[P]) Parse(ctx context.Context, snap Snapshot) (Entity[P], error) {
	props, err := t.parser(ctx, snap.Props)
	if err != nil {
		return Entity[P]{}, err
	}

	identifier := snap.ID
	if identifier.IsNil() {
		if !t.generateID {
			return Entity[P]{}, dErrors.Newf(dErrors.CodeInvalidInput,
				"%s snapshot is missing its id", t.tag)
		}
		identifier = id.NewIdentifier()
	}

	createdAt := snap.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	return Entity[P]{
		DomainModel: DomainModel[P]{Tag: t.tag, Props: props, CreatedAt: createdAt},
		ID:          identifier,
		UpdatedAt:   snap.UpdatedAt,
	}, nil
}

// Evaluate runs a registered query against the instance's props.
func (t *EntityTrait[P]) Evaluate(name string, e Entity[P]) (any, error) {
	query, ok := t.queries[name]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeMisconfigured, "query %q is not registered on %q", name, t.tag)
	}
	return query(e.Props), nil
}

// Command looks up a named command registered on the builder. Statically
// typed command inputs use AsCommand directly instead.
func (t *EntityTrait[P]) Command(name string) (EntityCommand[P, any], error) {
	cmd, ok := t.commands[name]
	if !ok {
		return EntityCommand[P, any]{}, dErrors.Newf(dErrors.CodeMisconfigured,
			"command %q is not registered on %q", name, t.tag)
	}
	return cmd, nil
}

// EntityReducer computes new props from a command input and the current
// state. Reducers are pure with respect to the entity: they signal an
// invalid transition by returning an error, never by mutating.
type EntityReducer[P any, I any] func(ctx context.Context, input I, props P, current Entity[P], correlation id.CorrelationID) (P, error)

// EntityCommand is a state-transition operator derived from a reducer via
// AsCommand.
type EntityCommand[P any, I any] struct {
	reduce EntityReducer[P, I]
}

// AsCommand turns a pure reducer into a state-transition operator. On
// success Execute returns a new entity (same id, tag and createdAt, new
// props, updatedAt set to completion time); on failure the target is left
// completely untouched and the reducer's failure propagates unchanged.
func AsCommand[P any, I any](reduce EntityReducer[P, I]) EntityCommand[P, I] {
	return EntityCommand[P, I]{reduce: reduce}
}

// CommandOption adjusts a single command execution.
type CommandOption func(*commandOptions)

type commandOptions struct {
	correlation id.CorrelationID
}

// WithCorrelationID threads an ambient correlation identifier through the
// execution. When absent one is generated so every command execution is
// traceable end to end.
func WithCorrelationID(correlation id.CorrelationID) CommandOption {
	return func(o *commandOptions) { o.correlation = correlation }
}

func resolveCorrelation(opts []CommandOption) id.CorrelationID {
	var options commandOptions
	for _, opt := range opts {
		opt(&options)
	}
	if options.correlation.IsNil() {
		return id.NewCorrelationID()
	}
	return options.correlation
}

// Execute runs the command against the current entity. All-or-nothing: no
// partial mutation is ever observable.
func (c EntityCommand[P, I]) Execute(ctx context.Context, current Entity[P], input I, opts ...CommandOption) (Entity[P], error) {
	correlation := resolveCorrelation(opts)

	props, err := c.reduce(ctx, input, current.Props, current, correlation)
	if err != nil {
		return Entity[P]{}, err
	}

	now := time.Now().UTC()
	next := current
	next.Props = props
	next.UpdatedAt = &now
	return next, nil
}
