package postgres

import (
	"context"
	"database/sql"
	"time"
)

const defaultQueryTimeout = 10 * time.Second

// sqlRows releases the query deadline together with the cursor.
type sqlRows struct {
	*sql.Rows
	cancel context.CancelFunc
}

func (r *sqlRows) Close() error {
	defer r.cancel()
	return r.Rows.Close()
}

type sqlDB struct {
	db      *sql.DB
	timeout time.Duration
}

// NewSQLDB wraps db for the stats reader. Aggregations scan the whole
// conversions range, so each query gets its own deadline.
func NewSQLDB(db *sql.DB, timeout time.Duration) DB {
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return &sqlDB{db: db, timeout: timeout}
}

func (s *sqlDB) QueryContext(ctx context.Context, query string, args ...any) (RowScanner, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		cancel()
		return nil, err
	}
	return &sqlRows{Rows: rows, cancel: cancel}, nil
}
