package repository

import (
	"context"
	"database/sql"
)

// TxRunner executes a unit of work inside a single database transaction.
// The callback receives the open *sql.Tx so that ...Tx methods from
// several repositories can participate in the same transaction.  When the
// callback returns an error the transaction is rolled back, otherwise it
// is committed; either way the transaction is always finished before
// WithTx returns.
type TxRunner struct {
	db *sql.DB
}

// NewTxRunner returns a TxRunner bound to the given database.
func NewTxRunner(db *sql.DB) *TxRunner { return &TxRunner{db: db} }

// WithTx begins a transaction, runs fn and commits when fn succeeds.  Any
// error from fn (or from commit) is returned after the rollback has been
// attempted, so callers can run their own compensations against stores
// that live outside the transaction boundary.
func (r *TxRunner) WithTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
