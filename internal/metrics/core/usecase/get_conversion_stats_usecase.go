package usecase

import (
	"context"
	"errors"

	"conversion-tracking-service/internal/metrics/core/domain"
	"conversion-tracking-service/internal/metrics/core/ports"
)

var (
	ErrInvalidStatsQuery = errors.New("invalid stats query")
	ErrInvalidTimeRange  = errors.New("invalid time range")
	ErrInvalidGroupBy    = errors.New("invalid group_by value")
	ErrInvalidInterval   = errors.New("invalid interval for time grouping")
	ErrInvalidChannel    = errors.New("invalid channel")
)

var validChannels = map[string]bool{
	"direct": true,
	"queue":  true,
	"lost":   true,
}

type GetConversionStatsInput struct {
	EventName string
	From      int64
	To        int64

	Channel  *string
	GroupBy  string // "", "channel", "time"
	Interval string // "hour" / "day", required for group_by=time
}

type GetConversionStatsUseCase struct {
	reader ports.StatsReaderPort
}

func NewGetConversionStatsUseCase(reader ports.StatsReaderPort) *GetConversionStatsUseCase {
	return &GetConversionStatsUseCase{reader: reader}
}

// Execute validates the query and reads the aggregates from the journal.
func (uc *GetConversionStatsUseCase) Execute(ctx context.Context, in GetConversionStatsInput) (*domain.ConversionStats, error) {
	if in.EventName == "" {
		return nil, ErrInvalidStatsQuery
	}

	if in.From <= 0 || in.To <= 0 || in.From > in.To {
		return nil, ErrInvalidTimeRange
	}

	if in.Channel != nil && !validChannels[*in.Channel] {
		return nil, ErrInvalidChannel
	}

	switch in.GroupBy {
	case "", "channel":
	case "time":
		if in.Interval != "hour" && in.Interval != "day" {
			return nil, ErrInvalidInterval
		}
	default:
		return nil, ErrInvalidGroupBy
	}

	filter := ports.StatsFilter{
		EventName: in.EventName,
		From:      in.From,
		To:        in.To,
		Channel:   in.Channel,
		GroupBy:   in.GroupBy,
		Interval:  in.Interval,
	}

	return uc.reader.QueryStats(ctx, filter)
}
