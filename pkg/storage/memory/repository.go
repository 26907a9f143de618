// Package memory provides an in-memory Repository for tests and wiring
// without a database. Matching, ordering and pagination run over the JSON
// projection of props, so filters behave like the document store's.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	id "modelkit/pkg/domain"
	dErrors "modelkit/pkg/domain-errors"
	"modelkit/pkg/model"
	"modelkit/pkg/repository"
)

type record[P any] struct {
	aggregate model.AggregateRoot[P]
	doc       map[string]any
}

// Repository stores aggregates of one tag in a mutex-guarded map. State
// only: pending events on a written aggregate are not retained, mirroring
// how durable stores persist snapshots.
type Repository[P any] struct {
	mu    sync.RWMutex
	items map[id.Identifier]record[P]
	order []id.Identifier
}

func NewRepository[P any]() *Repository[P] {
	return &Repository[P]{items: make(map[id.Identifier]record[P])}
}

// Clear drops all stored aggregates.
func (r *Repository[P]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = make(map[id.Identifier]record[P])
	r.order = nil
}

func (r *Repository[P]) Save(_ context.Context, aggregate model.AggregateRoot[P]) (model.AggregateRoot[P], error) {
	doc, err := propsDoc(aggregate.Unpack())
	if err != nil {
		return model.AggregateRoot[P]{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[aggregate.ID]; !exists {
		r.order = append(r.order, aggregate.ID)
	}
	r.items[aggregate.ID] = record[P]{aggregate: aggregate.ClearEvents(), doc: doc}
	return aggregate, nil
}

func (r *Repository[P]) Add(_ context.Context, aggregate model.AggregateRoot[P]) (model.AggregateRoot[P], error) {
	doc, err := propsDoc(aggregate.Unpack())
	if err != nil {
		return model.AggregateRoot[P]{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[aggregate.ID]; exists {
		return model.AggregateRoot[P]{}, dErrors.Newf(dErrors.CodeConflict,
			"%q with id %s already exists", aggregate.GetTag(), aggregate.ID)
	}
	r.order = append(r.order, aggregate.ID)
	r.items[aggregate.ID] = record[P]{aggregate: aggregate.ClearEvents(), doc: doc}
	return aggregate, nil
}

func (r *Repository[P]) SaveAll(ctx context.Context, aggregates []model.AggregateRoot[P]) ([]model.AggregateRoot[P], error) {
	out := make([]model.AggregateRoot[P], 0, len(aggregates))
	for _, aggregate := range aggregates {
		saved, err := r.Save(ctx, aggregate)
		if err != nil {
			return nil, err
		}
		out = append(out, saved)
	}
	return out, nil
}

func (r *Repository[P]) FindOneByID(_ context.Context, identity id.Identifier) (model.AggregateRoot[P], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.items[identity]
	if !ok {
		return model.AggregateRoot[P]{}, dErrors.Newf(dErrors.CodeNotFound, "no aggregate with id %s", identity)
	}
	return rec.aggregate, nil
}

func (r *Repository[P]) FindOne(_ context.Context, query repository.Query) (model.AggregateRoot[P], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, identity := range r.order {
		if rec := r.items[identity]; matches(rec.doc, query) {
			return rec.aggregate, nil
		}
	}
	return model.AggregateRoot[P]{}, dErrors.New(dErrors.CodeNotFound, "no aggregate matches the query")
}

func (r *Repository[P]) FindMany(_ context.Context, query repository.Query) ([]model.AggregateRoot[P], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(query), nil
}

func (r *Repository[P]) FindManyPaginated(_ context.Context, query repository.PaginatedQuery) (repository.Page[P], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.collect(query.Query)
	if query.OrderBy.Field != "" {
		r.sortBy(matched, query.OrderBy)
	}
	total := int64(len(matched))

	offset := query.Pagination.Offset()
	if offset > len(matched) {
		offset = len(matched)
	}
	matched = matched[offset:]
	if limit := query.Pagination.Limit; limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return repository.Page[P]{Items: matched, Total: total}, nil
}

func (r *Repository[P]) Delete(_ context.Context, identity id.Identifier) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[identity]; !ok {
		return dErrors.Newf(dErrors.CodeNotFound, "no aggregate with id %s", identity)
	}
	delete(r.items, identity)
	for i, existing := range r.order {
		if existing == identity {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// collect assumes the read lock is held.
func (r *Repository[P]) collect(query repository.Query) []model.AggregateRoot[P] {
	var out []model.AggregateRoot[P]
	for _, identity := range r.order {
		if rec := r.items[identity]; matches(rec.doc, query) {
			out = append(out, rec.aggregate)
		}
	}
	return out
}

// sortBy assumes the read lock is held.
func (r *Repository[P]) sortBy(items []model.AggregateRoot[P], order repository.OrderBy) {
	sort.SliceStable(items, func(i, j int) bool {
		left, _ := lookup(r.items[items[i].ID].doc, order.Field)
		right, _ := lookup(r.items[items[j].ID].doc, order.Field)
		if order.Desc {
			return less(right, left)
		}
		return less(left, right)
	})
}

func propsDoc(props any) (map[string]any, error) {
	raw, err := json.Marshal(props)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeOperationFailed, "encode props", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeOperationFailed, "decode props document", err)
	}
	return doc, nil
}

func matches(doc map[string]any, query repository.Query) bool {
	for path, want := range query {
		got, ok := lookup(doc, path)
		if !ok || !reflect.DeepEqual(got, normalize(want)) {
			return false
		}
	}
	return true
}

// lookup resolves a dotted field path within the JSON document.
func lookup(doc map[string]any, path string) (any, bool) {
	var current any = doc
	for _, part := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// normalize passes a query value through the JSON type system so it
// compares equal to the stored document's representation.
func normalize(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}

func less(a, b any) bool {
	switch left := a.(type) {
	case float64:
		right, ok := b.(float64)
		return ok && left < right
	case string:
		right, ok := b.(string)
		return ok && left < right
	case bool:
		right, ok := b.(bool)
		return ok && !left && right
	case nil:
		return b != nil
	default:
		return fmt.Sprint(a) < fmt.Sprint(b)
	}
}
