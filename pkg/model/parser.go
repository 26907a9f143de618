package model

import (
	"context"

	dErrors "modelkit/pkg/domain-errors"
)

// PropsParser turns raw untyped input into validated props or a coded
// failure. One parser is synthesized per trait at build time.
type PropsParser[P any] func(ctx context.Context, raw any) (P, error)

// CustomNew builds props from an arbitrary creation shape. It receives a
// reference to the trait's parse function; props only re-enter invariant
// checking if the custom constructor calls back into it, otherwise the
// constructor is solely responsible for correctness.
type CustomNew[P any] func(ctx context.Context, raw any, parse PropsParser[P]) (P, error)

// Invariant is a named business rule over validated props. Exactly one of
// Check or Validate is set: Check is a predicate paired with Message/Code,
// Validate is a free validator returning its own coded error.
type Invariant[P any] struct {
	Check    func(props P) bool
	Message  string
	Code     dErrors.Code
	Validate func(props P) error
}

func (inv Invariant[P]) run(props P) error {
	if inv.Validate != nil {
		return inv.Validate(props)
	}
	if !inv.Check(props) {
		return dErrors.NewInvariantViolation(inv.Message, inv.Code)
	}
	return nil
}

// runInvariants applies invariants in registration order; the first failure
// short-circuits. An empty list is a pass-through.
func runInvariants[P any](props P, invariants []Invariant[P]) error {
	for _, inv := range invariants {
		if err := inv.run(props); err != nil {
			return err
		}
	}
	return nil
}

// newPropsParser synthesizes the single validation pipeline for a trait:
// schema decode, then invariants. When a custom constructor is configured it
// replaces the schema phase and receives an invariant-checking parse to call
// back into. Configuring neither strategy fails fast at build time, handled
// by the builder before this is reached.
func newPropsParser[P any](schema Schema[P], custom CustomNew[P], invariants []Invariant[P]) PropsParser[P] {
	// checkOnly coerces already-shaped props and runs invariants; it is the
	// parse reference handed to custom constructors.
	checkOnly := func(_ context.Context, raw any) (P, error) {
		var zero P
		props, ok := coerce[P](raw)
		if !ok {
			return zero, dErrors.Newf(dErrors.CodeInvalidInput, "expected %T, got %T", zero, raw)
		}
		if err := runInvariants(props, invariants); err != nil {
			return zero, err
		}
		return props, nil
	}

	if custom != nil {
		return func(ctx context.Context, raw any) (P, error) {
			return custom(ctx, raw, checkOnly)
		}
	}

	return func(_ context.Context, raw any) (P, error) {
		var zero P
		props, err := schema.Decode(raw)
		if err != nil {
			return zero, err
		}
		if err := runInvariants(props, invariants); err != nil {
			return zero, err
		}
		return props, nil
	}
}
