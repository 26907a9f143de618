package model

import (
	"context"
	"reflect"
	"time"

	dErrors "modelkit/pkg/domain-errors"
)

// ValueObject is a domain model without identity. Equality is by tag plus
// deep structural equality of props; a "changed" value object is a distinct
// value.
type ValueObject[P any] struct {
	DomainModel[P]
}

// IsEqual reports structural equality: same tag and deeply equal props,
// regardless of object identity.
func (v ValueObject[P]) IsEqual(other ValueObject[P]) bool {
	return v.Tag == other.Tag && reflect.DeepEqual(v.Props, other.Props)
}

// ValueObjectTrait bundles construction and queries for one value object
// concept. Built via NewValueObject(...).Build().
type ValueObjectTrait[P any] struct {
	tag     string
	parser  PropsParser[P]
	queries map[string]Query[P]
}

// Tag returns the trait's nominal discriminator.
func (t *ValueObjectTrait[P]) Tag() string { return t.tag }

// New constructs a value object from raw creation input, running the full
// validation pipeline.
func (t *ValueObjectTrait[P]) New(ctx context.Context, raw any) (ValueObject[P], error) {
	return t.Parse(ctx, raw)
}

// Parse rehydrates a value object from its canonical shape. For value
// objects construction and rehydration coincide: there is no identity or
// update history to restore.
func (t *ValueObjectTrait[P]) Parse(ctx context.Context, raw any) (ValueObject[P], error) {
	props, err := t.parser(ctx, raw)
	if err != nil {
		return ValueObject[P]{}, err
	}
	return ValueObject[P]{
		DomainModel: DomainModel[P]{
			Tag:       t.tag,
			Props:     props,
			CreatedAt: time.Now().UTC(),
		},
	}, nil
}

// Evaluate runs a registered query against the instance's props.
func (t *ValueObjectTrait[P]) Evaluate(name string, v ValueObject[P]) (any, error) {
	query, ok := t.queries[name]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeMisconfigured, "query %q is not registered on %q", name, t.tag)
	}
	return query(v.Props), nil
}
