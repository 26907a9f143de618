// Package model is the domain-modeling kernel: immutable value objects,
// entities and aggregate roots with schema-validated construction,
// declarative invariants, pure queries, state-transition commands and
// domain-event emission.
//
// A trait bundles the operations (Parse, New, queries, commands) associated
// with one domain concept. Traits are assembled declaratively:
//
//	type EmailProps struct{ Value string }
//
//	Email, err := model.NewValueObject[EmailProps]("Email").
//		WithNew(func(ctx context.Context, raw any, parse model.PropsParser[EmailProps]) (EmailProps, error) {
//			s, _ := raw.(string)
//			return parse(ctx, EmailProps{Value: strings.ToLower(strings.TrimSpace(s))})
//		}).
//		WithInvariant(func(p EmailProps) bool { return strings.Contains(p.Value, "@") }, "value must contain '@'").
//		WithQuery("getDomain", func(p EmailProps) any {
//			return p.Value[strings.IndexByte(p.Value, '@')+1:]
//		}).
//		Build()
//
// Every instance is an independently owned immutable snapshot; commands
// always yield a new instance and never mutate in place. Expected failures
// are returned as coded error values, never panicked.
package model

import (
	"time"
)

// DomainModel is the common shape shared by all three flavors: a nominal
// tag, validated props and a creation timestamp. Props are never mutated in
// place; every transition produces a new value.
type DomainModel[P any] struct {
	Tag       string
	Props     P
	CreatedAt time.Time
}

// GetTag returns the nominal discriminator, one per domain concept.
func (m DomainModel[P]) GetTag() string { return m.Tag }

// Unpack extracts the validated props.
func (m DomainModel[P]) Unpack() P { return m.Props }

// IsEqual compares at the domain-model level: tag equality only. Value
// objects and entities override with structural and identity equality.
func (m DomainModel[P]) IsEqual(other DomainModel[P]) bool {
	return m.Tag == other.Tag
}

// Query is a pure accessor over validated props, attached to a trait by
// name and evaluated against an instance's own props.
type Query[P any] func(props P) any
