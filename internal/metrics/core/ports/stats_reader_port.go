package ports

import (
	"context"

	"conversion-tracking-service/internal/metrics/core/domain"
)

type StatsFilter struct {
	EventName string
	From      int64
	To        int64
	Channel   *string // optional
	GroupBy   string  // "", "channel", "time"
	Interval  string  // "hour" / "day", required when GroupBy = "time"
}

type StatsReaderPort interface {
	QueryStats(ctx context.Context, f StatsFilter) (*domain.ConversionStats, error)
}
