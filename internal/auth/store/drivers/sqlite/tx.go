package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/workouttracker/internal/auth/store"
)

// txStore scopes every repository to a single *sql.Tx. Lifecycle methods
// belong to the outer Store, so the ones here refuse or do nothing.
type txStore struct {
	repos

	tx *sql.Tx
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Tx(context.Context) (store.Tx, error) { return nil, store.ErrNestedTx }

func (t *txStore) WithTx(context.Context, func(store.Tx) error) error { return store.ErrNestedTx }

func (t *txStore) Ping(context.Context) error { return nil }
func (t *txStore) Close() error               { return nil }
func (t *txStore) ApplyMigrations() error     { return nil }
