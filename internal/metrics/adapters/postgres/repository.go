package postgres

import (
	"context"
	"fmt"
	"time"

	"conversion-tracking-service/internal/metrics/core/domain"
	"conversion-tracking-service/internal/metrics/core/ports"
)

type RowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

type DB interface {
	QueryContext(ctx context.Context, query string, args ...any) (RowScanner, error)
}

type StatsRepository struct {
	db DB
}

func NewStatsRepository(db DB) *StatsRepository {
	return &StatsRepository{db: db}
}

var _ ports.StatsReaderPort = (*StatsRepository)(nil)

const aggregateColumns = `
    COUNT(*) AS total_count,
    COUNT(DISTINCT visitor_id) AS unique_visitors,
    COUNT(*) FILTER (WHERE attributed) AS attributed_count,
    COALESCE(SUM(value), 0) AS total_value`

func (r *StatsRepository) QueryStats(ctx context.Context, f ports.StatsFilter) (*domain.ConversionStats, error) {
	fromTime := time.Unix(f.From, 0).UTC()
	toTime := time.Unix(f.To, 0).UTC()

	where := "event_name = $1 AND event_time BETWEEN $2 AND $3"
	args := []any{f.EventName, fromTime, toTime}

	if f.Channel != nil {
		where += " AND channel = $4"
		args = append(args, *f.Channel)
	}

	result := &domain.ConversionStats{
		EventName: f.EventName,
		From:      f.From,
		To:        f.To,
		GroupBy:   f.GroupBy,
	}

	switch f.GroupBy {
	case "":
		return r.queryNoGroup(ctx, where, args, result)
	case "channel":
		query := `
SELECT
    channel,` + aggregateColumns + `
FROM conversions
WHERE ` + where + `
GROUP BY channel
ORDER BY channel`
		return r.queryGroups(ctx, query, args, result, func(rows RowScanner, g *domain.StatsGroup) error {
			return rows.Scan(&g.Key, &g.TotalCount, &g.UniqueVisitors, &g.AttributedCount, &g.TotalValue)
		})
	case "time":
		// interval is validated by the usecase ("hour" / "day")
		query := fmt.Sprintf(`
SELECT
    date_trunc('%s', event_time) AS bucket,%s
FROM conversions
WHERE %s
GROUP BY bucket
ORDER BY bucket`, f.Interval, aggregateColumns, where)
		return r.queryGroups(ctx, query, args, result, func(rows RowScanner, g *domain.StatsGroup) error {
			var ts time.Time
			if err := rows.Scan(&ts, &g.TotalCount, &g.UniqueVisitors, &g.AttributedCount, &g.TotalValue); err != nil {
				return err
			}
			g.Key = ts.UTC().Format(time.RFC3339)
			return nil
		})
	default:
		return nil, fmt.Errorf("unsupported group_by: %s", f.GroupBy)
	}
}

func (r *StatsRepository) queryNoGroup(
	ctx context.Context,
	where string,
	args []any,
	res *domain.ConversionStats,
) (*domain.ConversionStats, error) {
	query := `
SELECT` + aggregateColumns + `
FROM conversions
WHERE ` + where

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&res.TotalCount, &res.UniqueVisitors, &res.AttributedCount, &res.TotalValue); err != nil {
			return nil, err
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return res, nil
}

func (r *StatsRepository) queryGroups(
	ctx context.Context,
	query string,
	args []any,
	res *domain.ConversionStats,
	scan func(rows RowScanner, g *domain.StatsGroup) error,
) (*domain.ConversionStats, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []domain.StatsGroup
	for rows.Next() {
		var g domain.StatsGroup
		if err := scan(rows, &g); err != nil {
			return nil, err
		}
		groups = append(groups, g)

		res.TotalCount += g.TotalCount
		res.AttributedCount += g.AttributedCount
		res.TotalValue += g.TotalValue
		// a visitor seen in two groups is counted twice
		res.UniqueVisitors += g.UniqueVisitors
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	res.Groups = groups
	return res, nil
}
