package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"conversion-tracking-service/internal/journal/core/domain"
	"conversion-tracking-service/internal/journal/core/ports"
)

var (
	ErrInvalidConversion = errors.New("invalid conversion")
	ErrFutureTime        = errors.New("timestamp cannot be in the future")
	ErrNegativeValue     = errors.New("value cannot be negative")
)

// maxClockSkew tolerates callers whose clock runs slightly ahead.
const maxClockSkew = 5 * time.Second

type RecordConversionUseCase struct {
	repo ports.ConversionRepositoryPort
}

func NewRecordConversionUseCase(repo ports.ConversionRepositoryPort) *RecordConversionUseCase {
	return &RecordConversionUseCase{repo: repo}
}

type RecordConversionInput struct {
	EventName  string
	EventID    string
	Channel    string
	VisitorID  string
	PagePath   string
	Timestamp  int64
	ContentIDs []string
	Value      float64
	Currency   string
	Attributed bool
}

func (uc *RecordConversionUseCase) Execute(ctx context.Context, in RecordConversionInput) (bool, error) {
	if err := uc.validateInput(in); err != nil {
		return false, err
	}

	if in.ContentIDs == nil {
		in.ContentIDs = []string{}
	}

	c := &domain.Conversion{
		EventName:  in.EventName,
		EventID:    in.EventID,
		Channel:    in.Channel,
		VisitorID:  in.VisitorID,
		PagePath:   in.PagePath,
		EventTime:  time.Unix(in.Timestamp, 0).UTC(),
		ContentIDs: in.ContentIDs,
		Value:      in.Value,
		Currency:   strings.ToUpper(in.Currency),
		Attributed: in.Attributed,
		DedupeKey:  buildDedupeKey(in),
	}

	created, err := uc.repo.InsertConversion(ctx, c)
	if err != nil {
		return false, fmt.Errorf("journal conversion %s: %w", in.EventID, err)
	}

	return created, nil
}

// The collector deduplicates on event name + event id; so does the journal.
func buildDedupeKey(in RecordConversionInput) string {
	return in.EventName + "|" + in.EventID
}

func (uc *RecordConversionUseCase) validateInput(in RecordConversionInput) error {
	if in.EventName == "" || in.EventID == "" || in.Channel == "" {
		return ErrInvalidConversion
	}

	if in.Value < 0 {
		return ErrNegativeValue
	}

	if time.Unix(in.Timestamp, 0).After(time.Now().Add(maxClockSkew)) {
		return ErrFutureTime
	}

	return nil
}
