package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"conversion-tracking-service/internal/attribution/core/domain"
	"conversion-tracking-service/internal/attribution/core/ports"
)

// RecordRepository is the durable attribution store. One row per visitor,
// the record kept as a jsonb blob.
type RecordRepository struct {
	db DB
}

func NewRecordRepository(db DB) *RecordRepository {
	return &RecordRepository{db: db}
}

var _ ports.RecordStorePort = (*RecordRepository)(nil)

const selectRecordSQL = `
SELECT record
FROM attribution_records
WHERE store_key = $1 AND scope = $2;
`

const upsertRecordSQL = `
INSERT INTO attribution_records (
    store_key,
    scope,
    record,
    updated_at
) VALUES (
    $1, $2, $3, NOW()
)
ON CONFLICT (store_key, scope) DO UPDATE
SET record = EXCLUDED.record,
    updated_at = NOW();
`

func (r *RecordRepository) LoadRecord(ctx context.Context, scope string) (domain.AttributionRecord, error) {
	rows, err := r.db.QueryContext(ctx, selectRecordSQL, domain.StoreKey, scope)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var raw []byte
	if rows.Next() {
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(raw) == 0 {
		return nil, nil
	}

	var rec domain.AttributionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("malformed attribution record: %w", err)
	}
	return rec, nil
}

func (r *RecordRepository) SaveRecord(ctx context.Context, scope string, rec domain.AttributionRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, upsertRecordSQL, domain.StoreKey, scope, raw)
	return err
}
