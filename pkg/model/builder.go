package model

import (
	"errors"
	"slices"

	"github.com/samber/lo"

	dErrors "modelkit/pkg/domain-errors"
	"modelkit/pkg/event"
)

// The builders below are immutable configuration values: every With*
// transformer returns a copy, so a partially-built configuration can be
// forked into two different final traits. Duplicate names overwrite (last
// registration wins) since builder chains are often composed incrementally;
// schema and custom constructor are mutually exclusive strategies and
// setting one clears the other. All misconfiguration is surfaced loudly at
// Build time, never deferred to first use.

type traitConfig[P any] struct {
	tag        string
	schema     Schema[P]
	custom     CustomNew[P]
	invariants []Invariant[P]
	queries    map[string]Query[P]
	generateID bool
	errs       []error
}

func newTraitConfig[P any](tag string) traitConfig[P] {
	return traitConfig[P]{tag: tag, generateID: true}
}

func (c traitConfig[P]) withSchema(schema Schema[P]) traitConfig[P] {
	if schema == nil {
		return c.withError("WithSchema: schema must not be nil")
	}
	c.schema = schema
	c.custom = nil
	return c
}

func (c traitConfig[P]) withNew(custom CustomNew[P]) traitConfig[P] {
	if custom == nil {
		return c.withError("WithNew: constructor must not be nil")
	}
	c.custom = custom
	c.schema = nil
	return c
}

func (c traitConfig[P]) withInvariant(check func(P) bool, message string, code []dErrors.Code) traitConfig[P] {
	if check == nil {
		return c.withError("WithInvariant: predicate must not be nil")
	}
	inv := Invariant[P]{Check: check, Message: message}
	if len(code) > 0 {
		inv.Code = code[0]
	}
	c.invariants = append(slices.Clone(c.invariants), inv)
	return c
}

func (c traitConfig[P]) withValidator(fn func(P) error) traitConfig[P] {
	if fn == nil {
		return c.withError("WithValidator: validator must not be nil")
	}
	c.invariants = append(slices.Clone(c.invariants), Invariant[P]{Validate: fn})
	return c
}

func (c traitConfig[P]) withQuery(name string, query Query[P]) traitConfig[P] {
	if name == "" || query == nil {
		return c.withError("WithQuery: name and query must be set")
	}
	c.queries = lo.Assign(c.queries, map[string]Query[P]{name: query})
	return c
}

func (c traitConfig[P]) withError(msg string) traitConfig[P] {
	c.errs = append(slices.Clone(c.errs), dErrors.New(dErrors.CodeMisconfigured, msg))
	return c
}

// build validates the accumulated configuration and synthesizes the single
// props parser.
func (c traitConfig[P]) build() (PropsParser[P], error) {
	errs := c.errs
	if c.tag == "" {
		errs = append(slices.Clone(errs), dErrors.New(dErrors.CodeMisconfigured, "tag must not be empty"))
	}
	if c.schema == nil && c.custom == nil {
		errs = append(slices.Clone(errs), dErrors.Newf(dErrors.CodeMisconfigured,
			"%q has no parser strategy: call WithSchema or WithNew", c.tag))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return newPropsParser(c.schema, c.custom, c.invariants), nil
}

// -----------------------------------------------------------------------------
// Value object builder
// -----------------------------------------------------------------------------

// ValueObjectBuilder accumulates the configuration of a value object trait.
type ValueObjectBuilder[P any] struct {
	cfg traitConfig[P]
}

// NewValueObject starts a value object configuration for the given tag.
func NewValueObject[P any](tag string) ValueObjectBuilder[P] {
	return ValueObjectBuilder[P]{cfg: newTraitConfig[P](tag)}
}

// WithSchema sets the structural schema, clearing any custom constructor.
func (b ValueObjectBuilder[P]) WithSchema(schema Schema[P]) ValueObjectBuilder[P] {
	b.cfg = b.cfg.withSchema(schema)
	return b
}

// WithNew sets a custom constructor, clearing any schema.
func (b ValueObjectBuilder[P]) WithNew(custom CustomNew[P]) ValueObjectBuilder[P] {
	b.cfg = b.cfg.withNew(custom)
	return b
}

// WithInvariant appends a business-rule predicate; a violation yields a
// coded failure with the given message (default code INVARIANT_VIOLATION).
func (b ValueObjectBuilder[P]) WithInvariant(check func(P) bool, message string, code ...dErrors.Code) ValueObjectBuilder[P] {
	b.cfg = b.cfg.withInvariant(check, message, code)
	return b
}

// WithValidator appends a free validator returning its own coded error.
func (b ValueObjectBuilder[P]) WithValidator(fn func(P) error) ValueObjectBuilder[P] {
	b.cfg = b.cfg.withValidator(fn)
	return b
}

// WithQuery registers a named pure accessor over props.
func (b ValueObjectBuilder[P]) WithQuery(name string, query Query[P]) ValueObjectBuilder[P] {
	b.cfg = b.cfg.withQuery(name, query)
	return b
}

// Build materializes the trait or fails with every configuration error.
func (b ValueObjectBuilder[P]) Build() (*ValueObjectTrait[P], error) {
	parser, err := b.cfg.build()
	if err != nil {
		return nil, err
	}
	return &ValueObjectTrait[P]{
		tag:     b.cfg.tag,
		parser:  parser,
		queries: lo.Assign(b.cfg.queries),
	}, nil
}

// -----------------------------------------------------------------------------
// Entity builder
// -----------------------------------------------------------------------------

// EntityBuilder accumulates the configuration of an entity trait.
type EntityBuilder[P any] struct {
	cfg      traitConfig[P]
	commands map[string]EntityCommand[P, any]
}

// NewEntity starts an entity configuration for the given tag.
func NewEntity[P any](tag string) EntityBuilder[P] {
	return EntityBuilder[P]{cfg: newTraitConfig[P](tag)}
}

// WithSchema sets the structural schema, clearing any custom constructor.
func (b EntityBuilder[P]) WithSchema(schema Schema[P]) EntityBuilder[P] {
	b.cfg = b.cfg.withSchema(schema)
	return b
}

// WithNew sets a custom constructor, clearing any schema.
func (b EntityBuilder[P]) WithNew(custom CustomNew[P]) EntityBuilder[P] {
	b.cfg = b.cfg.withNew(custom)
	return b
}

// WithInvariant appends a business-rule predicate.
func (b EntityBuilder[P]) WithInvariant(check func(P) bool, message string, code ...dErrors.Code) EntityBuilder[P] {
	b.cfg = b.cfg.withInvariant(check, message, code)
	return b
}

// WithValidator appends a free validator.
func (b EntityBuilder[P]) WithValidator(fn func(P) error) EntityBuilder[P] {
	b.cfg = b.cfg.withValidator(fn)
	return b
}

// WithQuery registers a named pure accessor over props.
func (b EntityBuilder[P]) WithQuery(name string, query Query[P]) EntityBuilder[P] {
	b.cfg = b.cfg.withQuery(name, query)
	return b
}

// WithCommand registers a named state-transition reducer. Statically typed
// inputs use AsCommand directly; named commands take their input as any.
func (b EntityBuilder[P]) WithCommand(name string, reduce EntityReducer[P, any]) EntityBuilder[P] {
	if name == "" || reduce == nil {
		b.cfg = b.cfg.withError("WithCommand: name and reducer must be set")
		return b
	}
	b.commands = lo.Assign(b.commands, map[string]EntityCommand[P, any]{name: AsCommand(reduce)})
	return b
}

// WithoutIDGeneration disables identifier minting; construction then
// requires an explicit id.
func (b EntityBuilder[P]) WithoutIDGeneration() EntityBuilder[P] {
	b.cfg.generateID = false
	return b
}

// Build materializes the trait or fails with every configuration error.
func (b EntityBuilder[P]) Build() (*EntityTrait[P], error) {
	parser, err := b.cfg.build()
	if err != nil {
		return nil, err
	}
	return &EntityTrait[P]{
		tag:        b.cfg.tag,
		parser:     parser,
		generateID: b.cfg.generateID,
		queries:    lo.Assign(b.cfg.queries),
		commands:   lo.Assign(b.commands),
	}, nil
}

// -----------------------------------------------------------------------------
// Aggregate root builder
// -----------------------------------------------------------------------------

// AggregateRootBuilder accumulates the configuration of an aggregate trait.
// Event handlers can only be registered here: the transformer does not
// exist on value object or entity builders, so misuse is a compile error
// rather than a silent no-op.
type AggregateRootBuilder[P any] struct {
	cfg           traitConfig[P]
	commands      map[string]AggregateCommand[P, any]
	eventHandlers map[string]event.Handler
}

// NewAggregateRoot starts an aggregate configuration for the given tag.
func NewAggregateRoot[P any](tag string) AggregateRootBuilder[P] {
	return AggregateRootBuilder[P]{cfg: newTraitConfig[P](tag)}
}

// WithSchema sets the structural schema, clearing any custom constructor.
func (b AggregateRootBuilder[P]) WithSchema(schema Schema[P]) AggregateRootBuilder[P] {
	b.cfg = b.cfg.withSchema(schema)
	return b
}

// WithNew sets a custom constructor, clearing any schema.
func (b AggregateRootBuilder[P]) WithNew(custom CustomNew[P]) AggregateRootBuilder[P] {
	b.cfg = b.cfg.withNew(custom)
	return b
}

// WithInvariant appends a business-rule predicate.
func (b AggregateRootBuilder[P]) WithInvariant(check func(P) bool, message string, code ...dErrors.Code) AggregateRootBuilder[P] {
	b.cfg = b.cfg.withInvariant(check, message, code)
	return b
}

// WithValidator appends a free validator.
func (b AggregateRootBuilder[P]) WithValidator(fn func(P) error) AggregateRootBuilder[P] {
	b.cfg = b.cfg.withValidator(fn)
	return b
}

// WithQuery registers a named pure accessor over props.
func (b AggregateRootBuilder[P]) WithQuery(name string, query Query[P]) AggregateRootBuilder[P] {
	b.cfg = b.cfg.withQuery(name, query)
	return b
}

// WithCommand registers a named reducer that may raise domain events.
func (b AggregateRootBuilder[P]) WithCommand(name string, reduce AggregateReducer[P, any]) AggregateRootBuilder[P] {
	if name == "" || reduce == nil {
		b.cfg = b.cfg.withError("WithCommand: name and reducer must be set")
		return b
	}
	b.commands = lo.Assign(b.commands, map[string]AggregateCommand[P, any]{name: AsAggregateCommand(reduce)})
	return b
}

// WithEventHandler registers a handler for a named event. Handlers are
// attached to the built trait for the caller to dispatch after persistence;
// the kernel never invokes them.
func (b AggregateRootBuilder[P]) WithEventHandler(eventName string, handler event.Handler) AggregateRootBuilder[P] {
	if eventName == "" || handler == nil {
		b.cfg = b.cfg.withError("WithEventHandler: event name and handler must be set")
		return b
	}
	b.eventHandlers = lo.Assign(b.eventHandlers, map[string]event.Handler{eventName: handler})
	return b
}

// WithoutIDGeneration disables identifier minting.
func (b AggregateRootBuilder[P]) WithoutIDGeneration() AggregateRootBuilder[P] {
	b.cfg.generateID = false
	return b
}

// Build materializes the trait or fails with every configuration error.
func (b AggregateRootBuilder[P]) Build() (*AggregateRootTrait[P], error) {
	parser, err := b.cfg.build()
	if err != nil {
		return nil, err
	}
	return &AggregateRootTrait[P]{
		tag:           b.cfg.tag,
		parser:        parser,
		generateID:    b.cfg.generateID,
		queries:       lo.Assign(b.cfg.queries),
		commands:      lo.Assign(b.commands),
		eventHandlers: lo.Assign(b.eventHandlers),
	}, nil
}
