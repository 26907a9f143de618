package repository

import (
	"context"

	"golang.org/x/sync/errgroup"

	id "modelkit/pkg/domain"
	dErrors "modelkit/pkg/domain-errors"
	"modelkit/pkg/model"
)

// PublishingRepository decorates a Repository with the publish-after-persist
// boundary: writes first persist state through the inner repository, then
// drain the aggregate's pending events to the publisher. The returned
// aggregate has an empty event log. If publication fails after a successful
// persist the error is reported with code OPERATION_FAILED and the state
// write stands; pair the publisher with an outbox store when that window is
// unacceptable.
type PublishingRepository[P any] struct {
	inner     Repository[P]
	publisher EventPublisher
}

// NewPublishing wraps inner with event publication.
func NewPublishing[P any](inner Repository[P], publisher EventPublisher) *PublishingRepository[P] {
	return &PublishingRepository[P]{inner: inner, publisher: publisher}
}

func (r *PublishingRepository[P]) Save(ctx context.Context, aggregate model.AggregateRoot[P]) (model.AggregateRoot[P], error) {
	saved, err := r.inner.Save(ctx, aggregate)
	if err != nil {
		return model.AggregateRoot[P]{}, err
	}
	return r.drain(ctx, saved)
}

func (r *PublishingRepository[P]) Add(ctx context.Context, aggregate model.AggregateRoot[P]) (model.AggregateRoot[P], error) {
	added, err := r.inner.Add(ctx, aggregate)
	if err != nil {
		return model.AggregateRoot[P]{}, err
	}
	return r.drain(ctx, added)
}

// SaveAll persists the batch, then drains each aggregate's events. Events of
// distinct aggregates are independent, so they are published concurrently;
// within one aggregate emission order is preserved.
func (r *PublishingRepository[P]) SaveAll(ctx context.Context, aggregates []model.AggregateRoot[P]) ([]model.AggregateRoot[P], error) {
	saved, err := r.inner.SaveAll(ctx, aggregates)
	if err != nil {
		return nil, err
	}

	drained := make([]model.AggregateRoot[P], len(saved))
	g, gctx := errgroup.WithContext(ctx)
	for i, aggregate := range saved {
		g.Go(func() error {
			out, err := r.drain(gctx, aggregate)
			if err != nil {
				return err
			}
			drained[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return drained, nil
}

func (r *PublishingRepository[P]) drain(ctx context.Context, aggregate model.AggregateRoot[P]) (model.AggregateRoot[P], error) {
	events := aggregate.DomainEvents()
	if len(events) == 0 {
		return aggregate, nil
	}
	if err := r.publisher.PublishAll(ctx, events); err != nil {
		return model.AggregateRoot[P]{}, dErrors.Wrap(dErrors.CodeOperationFailed,
			"state persisted but event publication failed", err)
	}
	return aggregate.ClearEvents(), nil
}

func (r *PublishingRepository[P]) FindOne(ctx context.Context, query Query) (model.AggregateRoot[P], error) {
	return r.inner.FindOne(ctx, query)
}

func (r *PublishingRepository[P]) FindMany(ctx context.Context, query Query) ([]model.AggregateRoot[P], error) {
	return r.inner.FindMany(ctx, query)
}

func (r *PublishingRepository[P]) FindOneByID(ctx context.Context, identity id.Identifier) (model.AggregateRoot[P], error) {
	return r.inner.FindOneByID(ctx, identity)
}

func (r *PublishingRepository[P]) FindManyPaginated(ctx context.Context, query PaginatedQuery) (Page[P], error) {
	return r.inner.FindManyPaginated(ctx, query)
}

func (r *PublishingRepository[P]) Delete(ctx context.Context, identity id.Identifier) error {
	return r.inner.Delete(ctx, identity)
}
