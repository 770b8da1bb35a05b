package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"conversion-tracking-service/internal/attribution/core/domain"
	"conversion-tracking-service/internal/attribution/core/ports"

	"github.com/redis/go-redis/v9"
)

type client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// SessionStore keeps the session-scoped attribution blob. Entries expire
// with the session.
type SessionStore struct {
	client client
	ttl    time.Duration
}

func NewSessionStore(c client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: c, ttl: ttl}
}

var _ ports.RecordStorePort = (*SessionStore)(nil)

func sessionKey(scope string) string {
	return domain.StoreKey + ":" + scope
}

func (s *SessionStore) LoadRecord(ctx context.Context, scope string) (domain.AttributionRecord, error) {
	raw, err := s.client.Get(ctx, sessionKey(scope)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var rec domain.AttributionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("malformed session record: %w", err)
	}
	return rec, nil
}

func (s *SessionStore) SaveRecord(ctx context.Context, scope string, rec domain.AttributionRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(scope), raw, s.ttl).Err()
}
