package postgres

import (
	"context"

	"conversion-tracking-service/internal/journal/core/domain"
	"conversion-tracking-service/internal/journal/core/ports"

	"github.com/lib/pq"
)

type ConversionRepository struct {
	db DB
}

func NewConversionRepository(db DB) *ConversionRepository {
	return &ConversionRepository{db: db}
}

var _ ports.ConversionRepositoryPort = (*ConversionRepository)(nil)

const insertConversionSQL = `
INSERT INTO conversions (
    event_name,
    event_id,
    channel,
    visitor_id,
    page_path,
    event_time,
    content_ids,
    value,
    currency,
    attributed,
    dedupe_key
) VALUES (
    $1, $2, $3, $4, $5, $6,
    $7, $8, $9, $10, $11
)
ON CONFLICT (dedupe_key) DO NOTHING;
`

func (r *ConversionRepository) InsertConversion(ctx context.Context, c *domain.Conversion) (bool, error) {
	res, err := r.db.ExecContext(ctx, insertConversionSQL,
		c.EventName,
		c.EventID,
		c.Channel,
		nullable(c.VisitorID),
		c.PagePath,
		c.EventTime,
		pq.Array(c.ContentIDs),
		c.Value,
		nullable(c.Currency),
		c.Attributed,
		c.DedupeKey,
	)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	// rows == 0 -> already journaled (ON CONFLICT DO NOTHING)
	return rows > 0, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
