// Package uow defines the unit-of-work port. A unit of work binds a
// transaction into the context so transaction-aware stores enlist
// automatically; code built against the port stays storage-agnostic.
package uow

import (
	"context"
	"errors"
	"fmt"

	dErrors "modelkit/pkg/domain-errors"
)

// UnitOfWork opens, commits and rolls back one transactional scope. Begin
// returns a derived context carrying the transaction; Commit and Rollback
// consume that context. Rollback after a successful Commit is a no-op so it
// can be deferred unconditionally.
type UnitOfWork interface {
	Begin(ctx context.Context) (context.Context, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	IsActive(ctx context.Context) bool
}

// RunInTx executes fn inside a transaction: commit on nil error, rollback
// otherwise. A rollback failure is attached to the causing error, never
// swallowed.
func RunInTx(ctx context.Context, u UnitOfWork, fn func(ctx context.Context) error) error {
	txCtx, err := u.Begin(ctx)
	if err != nil {
		return dErrors.Wrap(dErrors.CodeOperationFailed, "begin transaction", err)
	}

	if err := fn(txCtx); err != nil {
		if rbErr := u.Rollback(txCtx); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	if err := u.Commit(txCtx); err != nil {
		if rbErr := u.Rollback(txCtx); rbErr != nil {
			return errors.Join(
				dErrors.Wrap(dErrors.CodeOperationFailed, "commit transaction", err),
				fmt.Errorf("rollback: %w", rbErr),
			)
		}
		return dErrors.Wrap(dErrors.CodeOperationFailed, "commit transaction", err)
	}
	return nil
}
