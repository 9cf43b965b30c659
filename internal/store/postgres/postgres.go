// Package postgres implements store.Store on PostgreSQL through the pgx
// database/sql driver. Each entity has its own store struct wrapping the
// shared *sql.DB; Store bundles them.
package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"inkwell/internal/store"
)

// Store bundles the per-entity stores into a store.Store.
type Store struct {
	*UserStore
	*CategoryStore
	*PostStore
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// New wraps an open, migrated database.
func New(db *sql.DB) *Store {
	return &Store{
		UserStore:     NewUserStore(db),
		CategoryStore: NewCategoryStore(db),
		PostStore:     NewPostStore(db),
		db:            db,
	}
}

// Close closes the connection pool.
func (s *Store) Close(context.Context) error {
	return s.db.Close()
}

// isUniqueViolation reports whether err is a unique constraint failure.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
