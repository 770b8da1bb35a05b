package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"conversion-tracking-service/internal/metrics/core/ports"
)

// fakeRowScanner implements RowScanner for tests.
type fakeRowScanner struct {
	rows []fakeRow
	i    int
	err  error
}

type fakeRow struct {
	values []any
}

func (f *fakeRowScanner) Next() bool {
	return f.i < len(f.rows)
}

func (f *fakeRowScanner) Scan(dest ...any) error {
	if f.i >= len(f.rows) {
		return errors.New("no more rows")
	}
	row := f.rows[f.i]
	if len(dest) != len(row.values) {
		return errors.New("dest length mismatch")
	}
	for i := range dest {
		switch d := dest[i].(type) {
		case *int64:
			v, ok := row.values[i].(int64)
			if !ok {
				return errors.New("type assertion to int64 failed")
			}
			*d = v
		case *float64:
			v, ok := row.values[i].(float64)
			if !ok {
				return errors.New("type assertion to float64 failed")
			}
			*d = v
		case *string:
			v, ok := row.values[i].(string)
			if !ok {
				return errors.New("type assertion to string failed")
			}
			*d = v
		case *time.Time:
			v, ok := row.values[i].(time.Time)
			if !ok {
				return errors.New("type assertion to time.Time failed")
			}
			*d = v
		default:
			return errors.New("unsupported dest type")
		}
	}
	f.i++
	return nil
}

func (f *fakeRowScanner) Err() error {
	return f.err
}

func (f *fakeRowScanner) Close() error {
	return nil
}

type fakeDB struct {
	QueryFn   func(ctx context.Context, query string, args ...any) (RowScanner, error)
	lastQuery string
	lastArgs  []any
}

func (f *fakeDB) QueryContext(ctx context.Context, query string, args ...any) (RowScanner, error) {
	f.lastQuery = query
	f.lastArgs = args
	if f.QueryFn != nil {
		return f.QueryFn(ctx, query, args...)
	}
	return &fakeRowScanner{}, nil
}

// ------------------------------------------------------------
// NO GROUP BY
// ------------------------------------------------------------

func TestStatsRepository_NoGroupBy(t *testing.T) {
	db := &fakeDB{
		QueryFn: func(ctx context.Context, query string, args ...any) (RowScanner, error) {
			if !strings.Contains(query, "FROM conversions") {
				t.Fatalf("unexpected query: %s", query)
			}
			return &fakeRowScanner{
				rows: []fakeRow{
					{values: []any{int64(150), int64(40), int64(90), float64(4365.5)}},
				},
			}, nil
		},
	}

	repo := NewStatsRepository(db)

	res, err := repo.QueryStats(context.Background(), ports.StatsFilter{
		EventName: "CompletePayment",
		From:      100,
		To:        200,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalCount != 150 || res.UniqueVisitors != 40 || res.AttributedCount != 90 || res.TotalValue != 4365.5 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(db.lastArgs) != 3 {
		t.Fatalf("expected 3 args, got %d", len(db.lastArgs))
	}
}

// ------------------------------------------------------------
// GROUP BY CHANNEL + CHANNEL FILTER
// ------------------------------------------------------------

func TestStatsRepository_GroupByChannel(t *testing.T) {
	db := &fakeDB{
		QueryFn: func(ctx context.Context, query string, args ...any) (RowScanner, error) {
			if !strings.Contains(query, "GROUP BY channel") {
				t.Fatalf("expected channel grouping, got: %s", query)
			}
			return &fakeRowScanner{
				rows: []fakeRow{
					{values: []any{"direct", int64(10), int64(8), int64(6), float64(970)}},
					{values: []any{"queue", int64(2), int64(2), int64(1), float64(194)}},
				},
			}, nil
		},
	}

	repo := NewStatsRepository(db)

	res, err := repo.QueryStats(context.Background(), ports.StatsFilter{
		EventName: "CompletePayment",
		From:      100,
		To:        200,
		GroupBy:   "channel",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Groups) != 2 || res.Groups[0].Key != "direct" {
		t.Fatalf("unexpected groups: %+v", res.Groups)
	}
	if res.TotalCount != 12 || res.AttributedCount != 7 || res.TotalValue != 1164 {
		t.Fatalf("unexpected totals: %+v", res)
	}
}

func TestStatsRepository_ChannelFilter(t *testing.T) {
	db := &fakeDB{}
	repo := NewStatsRepository(db)

	ch := "queue"
	if _, err := repo.QueryStats(context.Background(), ports.StatsFilter{
		EventName: "CompletePayment",
		From:      100,
		To:        200,
		Channel:   &ch,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(db.lastQuery, "channel = $4") {
		t.Fatalf("expected channel predicate, got: %s", db.lastQuery)
	}
	if len(db.lastArgs) != 4 || db.lastArgs[3] != "queue" {
		t.Fatalf("unexpected args: %v", db.lastArgs)
	}
}

// ------------------------------------------------------------
// GROUP BY TIME
// ------------------------------------------------------------

func TestStatsRepository_GroupByTime(t *testing.T) {
	bucket := time.Date(2025, 12, 7, 10, 0, 0, 0, time.UTC)

	db := &fakeDB{
		QueryFn: func(ctx context.Context, query string, args ...any) (RowScanner, error) {
			if !strings.Contains(query, "date_trunc('hour', event_time)") {
				t.Fatalf("expected hourly buckets, got: %s", query)
			}
			return &fakeRowScanner{
				rows: []fakeRow{
					{values: []any{bucket, int64(3), int64(3), int64(2), float64(291)}},
				},
			}, nil
		},
	}

	repo := NewStatsRepository(db)

	res, err := repo.QueryStats(context.Background(), ports.StatsFilter{
		EventName: "CompletePayment",
		From:      100,
		To:        200,
		GroupBy:   "time",
		Interval:  "hour",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Groups) != 1 || res.Groups[0].Key != "2025-12-07T10:00:00Z" {
		t.Fatalf("unexpected groups: %+v", res.Groups)
	}
}

// ------------------------------------------------------------
// ERRORS
// ------------------------------------------------------------

func TestStatsRepository_QueryError(t *testing.T) {
	db := &fakeDB{
		QueryFn: func(ctx context.Context, query string, args ...any) (RowScanner, error) {
			return nil, errors.New("db error")
		},
	}

	repo := NewStatsRepository(db)

	if _, err := repo.QueryStats(context.Background(), ports.StatsFilter{EventName: "x", From: 1, To: 2}); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestStatsRepository_RowsError(t *testing.T) {
	db := &fakeDB{
		QueryFn: func(ctx context.Context, query string, args ...any) (RowScanner, error) {
			return &fakeRowScanner{err: errors.New("iteration failed")}, nil
		},
	}

	repo := NewStatsRepository(db)

	if _, err := repo.QueryStats(context.Background(), ports.StatsFilter{EventName: "x", From: 1, To: 2, GroupBy: "channel"}); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestStatsRepository_UnsupportedGroupBy(t *testing.T) {
	repo := NewStatsRepository(&fakeDB{})

	if _, err := repo.QueryStats(context.Background(), ports.StatsFilter{EventName: "x", From: 1, To: 2, GroupBy: "user"}); err == nil {
		t.Fatalf("expected error, got nil")
	}
}
