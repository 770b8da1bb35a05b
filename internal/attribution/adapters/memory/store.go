package memory

import (
	"context"
	"sync"

	"conversion-tracking-service/internal/attribution/core/domain"
	"conversion-tracking-service/internal/attribution/core/ports"
)

// RecordStore keeps attribution records in process memory. Used for local
// runs without redis and in tests.
type RecordStore struct {
	mu      sync.Mutex
	records map[string]domain.AttributionRecord
}

func NewRecordStore() *RecordStore {
	return &RecordStore{records: map[string]domain.AttributionRecord{}}
}

var _ ports.RecordStorePort = (*RecordStore)(nil)

func (s *RecordStore) LoadRecord(_ context.Context, scope string) (domain.AttributionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[scope]
	if !ok {
		return nil, nil
	}
	return rec.Clone(), nil
}

func (s *RecordStore) SaveRecord(_ context.Context, scope string, rec domain.AttributionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[scope] = rec.Clone()
	return nil
}
