package postgres

import (
	"context"
	"database/sql"
	"time"
)

type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const defaultWriteTimeout = 3 * time.Second

// sqlDB bounds every write. Journal inserts run after the event was
// dispatched and must not hold a request open on a slow database.
type sqlDB struct {
	db      *sql.DB
	timeout time.Duration
}

func NewSQLDB(db *sql.DB, timeout time.Duration) DB {
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}
	return &sqlDB{db: db, timeout: timeout}
}

func (s *sqlDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.db.ExecContext(ctx, query, args...)
}
