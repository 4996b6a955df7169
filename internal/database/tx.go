package database

import (
	"context"
	"database/sql"
)

// Tx is a transaction bound to the dialect of the pool it came from.
type Tx struct {
	*sql.Tx
	dialect string
}

// Rebind rewrites ? placeholders into the dialect's form.
func (t *Tx) Rebind(query string) string {
	return rebind(t.dialect, query)
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
// Nothing fn wrote survives unless it returns nil.
func (db *DB) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	tx := &Tx{Tx: sqlTx, dialect: db.Dialect}

	// Ensure rollback is called if we panic or return early with error
	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
