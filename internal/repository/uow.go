package repository

import (
	"context"
	"database/sql"
)

// UnitOfWork scopes one logical operation's reads and writes to a single
// transaction. Handlers open one per request and defer Rollback so that
// every exit path (success, validation failure, fault, cancellation)
// releases the transaction; Rollback after Commit is a no-op.
type UnitOfWork struct {
	tx   *sql.Tx
	done bool
}

// Begin opens a unit of work on the shared store. The context bounds the
// whole operation: if the request is abandoned, the driver rolls the
// transaction back and no partial write becomes visible.
func Begin(ctx context.Context, db *sql.DB) (*UnitOfWork, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &UnitOfWork{tx: tx}, nil
}

// Commit makes the operation's writes durable. Calling it twice is safe.
func (u *UnitOfWork) Commit() error {
	if u.done {
		return nil
	}
	u.done = true
	return u.tx.Commit()
}

// Rollback discards the operation's writes. Safe to defer unconditionally.
func (u *UnitOfWork) Rollback() {
	if u.done {
		return
	}
	u.done = true
	_ = u.tx.Rollback()
}
