package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	dErrors "modelkit/pkg/domain-errors"
)

// UnitOfWork implements uow.UnitOfWork over a pgx connection pool. Begin
// binds the opened transaction into the returned context, so every
// transaction-aware store called with that context enlists automatically.
type UnitOfWork struct {
	pool *pgxpool.Pool
}

func NewUnitOfWork(pool *pgxpool.Pool) *UnitOfWork {
	return &UnitOfWork{pool: pool}
}

func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if _, active := TxFrom(ctx); active {
		return nil, dErrors.New(dErrors.CodeConflict, "a transaction is already active on this context")
	}
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeOperationFailed, "begin transaction", err)
	}
	return WithTx(ctx, tx), nil
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	tx, ok := TxFrom(ctx)
	if !ok {
		return dErrors.New(dErrors.CodeOperationFailed, "no active transaction on context")
	}
	if err := tx.Commit(ctx); err != nil {
		return dErrors.Wrap(dErrors.CodeOperationFailed, "commit transaction", err)
	}
	return nil
}

func (u *UnitOfWork) Rollback(ctx context.Context) error {
	tx, ok := TxFrom(ctx)
	if !ok {
		return dErrors.New(dErrors.CodeOperationFailed, "no active transaction on context")
	}
	// Rollback after a successful commit is a no-op so callers can defer it.
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return dErrors.Wrap(dErrors.CodeOperationFailed, "rollback transaction", err)
	}
	return nil
}

func (u *UnitOfWork) IsActive(ctx context.Context) bool {
	_, ok := TxFrom(ctx)
	return ok
}
