package ports

import (
	"context"

	"conversion-tracking-service/internal/journal/core/domain"
)

type ConversionRepositoryPort interface {
	// InsertConversion:
	//   created = true,  err = nil  -> new record
	//   created = false, err = nil  -> event id already journaled
	//   created = false, err != nil -> DB error
	InsertConversion(ctx context.Context, c *domain.Conversion) (created bool, err error)
}
