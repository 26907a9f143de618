package outbox

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	id "modelkit/pkg/domain"
	dErrors "modelkit/pkg/domain-errors"
	"modelkit/pkg/event"
	"modelkit/pkg/events"
)

// PostgresStore persists outbox rows through database/sql. It enlists in a
// transaction bound to the context via tx.WithTx, so event rows commit or
// roll back together with the aggregate state they belong to.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type txKeyType struct{}

var txKey = txKeyType{}

// WithTx stores a SQL transaction in context for outbox writes.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// TxFrom extracts a SQL transaction from context if present.
func TxFrom(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := TxFrom(ctx); ok {
		return tx
	}
	return s.db
}

// EnsureSchema creates the outbox table.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS outbox_events (
			seq        bigserial,
			event_id   uuid PRIMARY KEY,
			payload    jsonb NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now(),
			handled_at timestamptz
		)`
	if _, err := s.execer(ctx).ExecContext(ctx, ddl); err != nil {
		return dErrors.Wrap(dErrors.CodeOperationFailed, "create outbox table", err)
	}
	idx := `CREATE INDEX IF NOT EXISTS outbox_events_unhandled_idx ON outbox_events (seq) WHERE handled_at IS NULL`
	if _, err := s.execer(ctx).ExecContext(ctx, idx); err != nil {
		return dErrors.Wrap(dErrors.CodeOperationFailed, "create outbox index", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, evts ...event.DomainEvent) error {
	for _, evt := range evts {
		payload, err := events.Encode(evt)
		if err != nil {
			return err
		}
		_, err = s.execer(ctx).ExecContext(ctx,
			`INSERT INTO outbox_events (event_id, payload, created_at) VALUES ($1, $2, $3)
			 ON CONFLICT (event_id) DO NOTHING`,
			evt.ID.String(), payload, evt.Metadata.Timestamp)
		if err != nil {
			return dErrors.Wrap(dErrors.CodeOperationFailed, fmt.Sprintf("save outbox event %s", evt.ID), err)
		}
	}
	return nil
}

func (s *PostgresStore) GetUnhandled(ctx context.Context, limit int) ([]event.DomainEvent, error) {
	// seq, not created_at: events emitted in the same microsecond must
	// still relay in insertion order.
	query := `SELECT payload FROM outbox_events WHERE handled_at IS NULL ORDER BY seq`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeOperationFailed, "query unhandled events", err)
	}
	defer rows.Close()

	var out []event.DomainEvent
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, dErrors.Wrap(dErrors.CodeOperationFailed, "scan outbox row", err)
		}
		evt, err := events.Decode(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeOperationFailed, "iterate outbox rows", err)
	}
	return out, nil
}

func (s *PostgresStore) MarkAsHandled(ctx context.Context, eventIDs ...id.EventID) error {
	if len(eventIDs) == 0 {
		return nil
	}
	raw := make([]string, len(eventIDs))
	for i, eventID := range eventIDs {
		raw[i] = eventID.String()
	}
	_, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE outbox_events SET handled_at = now() WHERE event_id = ANY($1)`, pq.Array(raw))
	if err != nil {
		return dErrors.Wrap(dErrors.CodeOperationFailed, "mark events handled", err)
	}
	return nil
}

// Pending counts saved but unhandled events.
func (s *PostgresStore) Pending(ctx context.Context) (int, error) {
	row := s.db.QueryRowContext(ctx, `SELECT count(*) FROM outbox_events WHERE handled_at IS NULL`)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, dErrors.Wrap(dErrors.CodeOperationFailed, "count pending events", err)
	}
	return n, nil
}
