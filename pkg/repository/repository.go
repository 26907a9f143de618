// Package repository defines the persistence and publishing ports the
// domain kernel is consumed through. Implementations live under
// pkg/storage and pkg/events; the kernel itself never touches them.
package repository

import (
	"context"

	id "modelkit/pkg/domain"
	"modelkit/pkg/event"
	"modelkit/pkg/model"
)

// Query selects aggregates by exact match on props fields. Keys are JSON
// field paths as produced by the props' JSON encoding ("status",
// "address.city"); an empty query matches everything.
type Query map[string]any

// Pagination slices a result set. Page is 1-based and, when set, takes
// precedence over Skip.
type Pagination struct {
	Skip  int
	Limit int
	Page  int
}

// Offset resolves the effective number of records to skip.
func (p Pagination) Offset() int {
	if p.Page > 0 && p.Limit > 0 {
		return (p.Page - 1) * p.Limit
	}
	return p.Skip
}

// OrderBy sorts a result set by one props field path.
type OrderBy struct {
	Field string
	Desc  bool
}

// PaginatedQuery combines filtering, ordering and pagination.
type PaginatedQuery struct {
	Query      Query
	Pagination Pagination
	OrderBy    OrderBy
}

// Page is one slice of a paginated result set. Total counts all matches,
// not just the returned slice.
type Page[P any] struct {
	Items []model.AggregateRoot[P]
	Total int64
}

// Repository persists aggregates of one tag. Save upserts, Add inserts and
// fails with CONFLICT on an existing identity; lookups fail with NOT_FOUND.
// Base implementations persist state only; pending domain events are the
// publishing decorator's concern.
type Repository[P any] interface {
	Save(ctx context.Context, aggregate model.AggregateRoot[P]) (model.AggregateRoot[P], error)
	Add(ctx context.Context, aggregate model.AggregateRoot[P]) (model.AggregateRoot[P], error)
	SaveAll(ctx context.Context, aggregates []model.AggregateRoot[P]) ([]model.AggregateRoot[P], error)
	FindOne(ctx context.Context, query Query) (model.AggregateRoot[P], error)
	FindMany(ctx context.Context, query Query) ([]model.AggregateRoot[P], error)
	FindOneByID(ctx context.Context, identity id.Identifier) (model.AggregateRoot[P], error)
	FindManyPaginated(ctx context.Context, query PaginatedQuery) (Page[P], error)
	Delete(ctx context.Context, identity id.Identifier) error
}

// EventPublisher delivers domain events to the outside world. Delivery is
// at-least-once: consumers must tolerate duplicates. PublishAll preserves
// the order of the given slice.
type EventPublisher interface {
	Publish(ctx context.Context, evt event.DomainEvent) error
	PublishAll(ctx context.Context, events []event.DomainEvent) error
}

// EventStore is the transactional outbox port: events are saved in the same
// unit of work as aggregate state and relayed to a publisher afterwards.
type EventStore interface {
	Save(ctx context.Context, events ...event.DomainEvent) error
	GetUnhandled(ctx context.Context, limit int) ([]event.DomainEvent, error)
	MarkAsHandled(ctx context.Context, eventIDs ...id.EventID) error
}
