// Package postgres persists aggregates as JSONB documents, one table per
// aggregate tag. Stores are transaction-aware: when the context carries a
// transaction opened by UnitOfWork, every statement enlists in it.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	id "modelkit/pkg/domain"
	dErrors "modelkit/pkg/domain-errors"
	"modelkit/pkg/metrics"
	"modelkit/pkg/model"
	"modelkit/pkg/repository"
)

const uniqueViolation = "23505"

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository is a JSONB document store for one aggregate tag. Rows hold the
// canonical snapshot (id, props, created_at, updated_at); rehydration goes
// through the trait's Parse, so stored documents are re-validated on read.
type Repository[P any] struct {
	pool    *pgxpool.Pool
	trait   *model.AggregateRootTrait[P]
	table   string
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures a Repository.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// WithLogger attaches a structured logger to the repository.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics attaches Prometheus instrumentation to the repository.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// NewRepository builds a document repository over pool for the trait's
// aggregates, stored in the given table.
func NewRepository[P any](pool *pgxpool.Pool, trait *model.AggregateRootTrait[P], table string, opts ...Option) (*Repository[P], error) {
	if !tableNamePattern.MatchString(table) {
		return nil, dErrors.Newf(dErrors.CodeMisconfigured, "invalid table name %q", table)
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return &Repository[P]{
		pool:    pool,
		trait:   trait,
		table:   table,
		logger:  o.logger,
		metrics: o.metrics,
		tracer:  otel.Tracer("modelkit/storage/postgres"),
	}, nil
}

// EnsureSchema creates the document table and its containment index.
func (r *Repository[P]) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id         uuid PRIMARY KEY,
			props      jsonb NOT NULL,
			created_at timestamptz NOT NULL,
			updated_at timestamptz
		)`, r.table)
	if _, err := r.querier(ctx).Exec(ctx, ddl); err != nil {
		return dErrors.Wrap(dErrors.CodeOperationFailed, "create table", err)
	}
	idx := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_props_idx ON %s USING gin (props jsonb_path_ops)`, r.table, r.table)
	if _, err := r.querier(ctx).Exec(ctx, idx); err != nil {
		return dErrors.Wrap(dErrors.CodeOperationFailed, "create props index", err)
	}
	r.logger.DebugContext(ctx, "document table ready", "table", r.table)
	return nil
}

func (r *Repository[P]) querier(ctx context.Context) querier {
	if tx, ok := TxFrom(ctx); ok {
		return tx
	}
	return r.pool
}

// observe opens a span and a latency timer for one repository operation.
// The returned func records the outcome; call it with the final error.
func (r *Repository[P]) observe(ctx context.Context, operation string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "repository."+operation, trace.WithAttributes(
		attribute.String("db.table", r.table),
		attribute.String("aggregate.tag", r.trait.Tag()),
	))
	return ctx, func(err error) {
		defer span.End()
		r.metrics.ObserveRepositoryLatency(r.trait.Tag(), operation, time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			r.metrics.IncrementRepositoryError(r.trait.Tag(), operation, string(dErrors.CodeOf(err)))
		}
	}
}

func (r *Repository[P]) Save(ctx context.Context, aggregate model.AggregateRoot[P]) (_ model.AggregateRoot[P], err error) {
	ctx, done := r.observe(ctx, "save")
	defer func() { done(err) }()

	props, err := json.Marshal(aggregate.Unpack())
	if err != nil {
		return model.AggregateRoot[P]{}, dErrors.Wrap(dErrors.CodeOperationFailed, "encode props", err)
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (id, props, created_at, updated_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET props = EXCLUDED.props, updated_at = EXCLUDED.updated_at`, r.table)
	if _, err = r.querier(ctx).Exec(ctx, query, aggregate.ID.String(), props, aggregate.CreatedAt, aggregate.UpdatedAt); err != nil {
		return model.AggregateRoot[P]{}, dErrors.Wrap(dErrors.CodeOperationFailed, "save aggregate", err)
	}
	return aggregate, nil
}

func (r *Repository[P]) Add(ctx context.Context, aggregate model.AggregateRoot[P]) (_ model.AggregateRoot[P], err error) {
	ctx, done := r.observe(ctx, "add")
	defer func() { done(err) }()

	props, err := json.Marshal(aggregate.Unpack())
	if err != nil {
		return model.AggregateRoot[P]{}, dErrors.Wrap(dErrors.CodeOperationFailed, "encode props", err)
	}
	query := fmt.Sprintf(`INSERT INTO %s (id, props, created_at, updated_at) VALUES ($1, $2, $3, $4)`, r.table)
	if _, err = r.querier(ctx).Exec(ctx, query, aggregate.ID.String(), props, aggregate.CreatedAt, aggregate.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			err = dErrors.Newf(dErrors.CodeConflict, "%q with id %s already exists", r.trait.Tag(), aggregate.ID)
			return model.AggregateRoot[P]{}, err
		}
		return model.AggregateRoot[P]{}, dErrors.Wrap(dErrors.CodeOperationFailed, "add aggregate", err)
	}
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

func (r *Repository[P]) FindOneByID(ctx context.Context, identity id.Identifier) (_ model.AggregateRoot[P], err error) {
	ctx, done := r.observe(ctx, "find_one_by_id")
	defer func() { done(err) }()

	query := fmt.Sprintf(`SELECT id::text, props, created_at, updated_at FROM %s WHERE id = $1`, r.table)
	row := r.querier(ctx).QueryRow(ctx, query, identity.String())
	aggregate, err := r.scan(ctx, row)
	if errors.Is(err, pgx.ErrNoRows) {
		err = dErrors.Newf(dErrors.CodeNotFound, "no %q with id %s", r.trait.Tag(), identity)
	}
	return aggregate, err
}

func (r *Repository[P]) FindOne(ctx context.Context, filter repository.Query) (_ model.AggregateRoot[P], err error) {
	ctx, done := r.observe(ctx, "find_one")
	defer func() { done(err) }()

	doc, err := containmentDoc(filter)
	if err != nil {
		return model.AggregateRoot[P]{}, err
	}
	query := fmt.Sprintf(`SELECT id::text, props, created_at, updated_at FROM %s WHERE props @> $1 ORDER BY created_at LIMIT 1`, r.table)
	row := r.querier(ctx).QueryRow(ctx, query, doc)
	aggregate, err := r.scan(ctx, row)
	if errors.Is(err, pgx.ErrNoRows) {
		err = dErrors.Newf(dErrors.CodeNotFound, "no %q matches the query", r.trait.Tag())
	}
	return aggregate, err
}

func (r *Repository[P]) FindMany(ctx context.Context, filter repository.Query) (_ []model.AggregateRoot[P], err error) {
	ctx, done := r.observe(ctx, "find_many")
	defer func() { done(err) }()

	doc, err := containmentDoc(filter)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT id::text, props, created_at, updated_at FROM %s WHERE props @> $1 ORDER BY created_at`, r.table)
	rows, err := r.querier(ctx).Query(ctx, query, doc)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeOperationFailed, "query aggregates", err)
	}
	defer rows.Close()
	return r.scanAll(ctx, rows)
}

func (r *Repository[P]) FindManyPaginated(ctx context.Context, q repository.PaginatedQuery) (_ repository.Page[P], err error) {
	ctx, done := r.observe(ctx, "find_many_paginated")
	defer func() { done(err) }()

	doc, err := containmentDoc(q.Query)
	if err != nil {
		return repository.Page[P]{}, err
	}

	var total int64
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s WHERE props @> $1`, r.table)
	if err = r.querier(ctx).QueryRow(ctx, countQuery, doc).Scan(&total); err != nil {
		return repository.Page[P]{}, dErrors.Wrap(dErrors.CodeOperationFailed, "count aggregates", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `SELECT id::text, props, created_at, updated_at FROM %s WHERE props @> $1`, r.table)
	args := []any{doc}
	if q.OrderBy.Field != "" {
		// jsonb extraction via a text[] parameter orders numbers numerically
		// and keeps the field path out of the SQL text.
		direction := "ASC"
		if q.OrderBy.Desc {
			direction = "DESC"
		}
		args = append(args, strings.Split(q.OrderBy.Field, "."))
		fmt.Fprintf(&sb, ` ORDER BY props #> $%d %s, created_at`, len(args), direction)
	} else {
		sb.WriteString(` ORDER BY created_at`)
	}
	if q.Pagination.Limit > 0 {
		args = append(args, q.Pagination.Limit)
		fmt.Fprintf(&sb, ` LIMIT $%d`, len(args))
	}
	if offset := q.Pagination.Offset(); offset > 0 {
		args = append(args, offset)
		fmt.Fprintf(&sb, ` OFFSET $%d`, len(args))
	}

	rows, err := r.querier(ctx).Query(ctx, sb.String(), args...)
	if err != nil {
		return repository.Page[P]{}, dErrors.Wrap(dErrors.CodeOperationFailed, "query aggregates", err)
	}
	defer rows.Close()

	items, err := r.scanAll(ctx, rows)
	if err != nil {
		return repository.Page[P]{}, err
	}
	return repository.Page[P]{Items: items, Total: total}, nil
}

func (r *Repository[P]) Delete(ctx context.Context, identity id.Identifier) (err error) {
	ctx, done := r.observe(ctx, "delete")
	defer func() { done(err) }()

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)
	tag, err := r.querier(ctx).Exec(ctx, query, identity.String())
	if err != nil {
		return dErrors.Wrap(dErrors.CodeOperationFailed, "delete aggregate", err)
	}
	if tag.RowsAffected() == 0 {
		err = dErrors.Newf(dErrors.CodeNotFound, "no %q with id %s", r.trait.Tag(), identity)
		return err
	}
	return nil
}

func (r *Repository[P]) scan(ctx context.Context, row pgx.Row) (model.AggregateRoot[P], error) {
	var (
		rawID     string
		rawProps  []byte
		createdAt time.Time
		updatedAt *time.Time
	)
	if err := row.Scan(&rawID, &rawProps, &createdAt, &updatedAt); err != nil {
		return model.AggregateRoot[P]{}, err
	}
	return r.rehydrate(ctx, rawID, rawProps, createdAt, updatedAt)
}

func (r *Repository[P]) scanAll(ctx context.Context, rows pgx.Rows) ([]model.AggregateRoot[P], error) {
	var out []model.AggregateRoot[P]
	for rows.Next() {
		aggregate, err := r.scan(ctx, rows)
		if err != nil {
			return nil, err
		}
		out = append(out, aggregate)
	}
	if err := rows.Err(); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeOperationFailed, "iterate rows", err)
	}
	return out, nil
}

func (r *Repository[P]) rehydrate(ctx context.Context, rawID string, rawProps []byte, createdAt time.Time, updatedAt *time.Time) (model.AggregateRoot[P], error) {
	identity, err := id.ParseIdentifier(rawID)
	if err != nil {
		return model.AggregateRoot[P]{}, dErrors.Wrap(dErrors.CodeOperationFailed, "parse stored id", err)
	}
	var props P
	if err := json.Unmarshal(rawProps, &props); err != nil {
		return model.AggregateRoot[P]{}, dErrors.Wrap(dErrors.CodeOperationFailed, "decode stored props", err)
	}
	return r.trait.Parse(ctx, model.Snapshot{
		ID:        identity,
		Props:     props,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	})
}

// containmentDoc expands dotted query paths into the nested JSON document
// used with the @> containment operator.
func containmentDoc(filter repository.Query) ([]byte, error) {
	root := make(map[string]any, len(filter))
	for path, value := range filter {
		node := root
		parts := strings.Split(path, ".")
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}
	doc, err := json.Marshal(root)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInvalidInput, "encode query", err)
	}
	return doc, nil
}
