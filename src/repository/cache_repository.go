package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// CacheRepository stores transformed gradebook payloads. Entries are keyed
// by a hash of the username so no plaintext identity lands in the table.
type CacheRepository struct {
	db *sql.DB
}

func NewCacheRepository(db *sql.DB) *CacheRepository {
	return &CacheRepository{db: db}
}

// UserKey derives the cache key for a username.
func UserKey(username string) string {
	sum := sha256.Sum256([]byte(username))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached payload for the key when it is younger than
// maxAge, or nil without error on a miss.
func (r *CacheRepository) Get(ctx context.Context, userKey string, reportPeriod int, maxAge time.Duration) ([]byte, error) {
	query := `
		SELECT payload
		FROM gradebook_cache
		WHERE user_hash = $1 AND report_period = $2 AND fetched_at > $3`

	var payload []byte
	err := r.db.QueryRowContext(ctx, query, userKey, reportPeriod, time.Now().Add(-maxAge)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read gradebook cache: %w", err)
	}
	return payload, nil
}

// Put stores or refreshes the payload for the key.
func (r *CacheRepository) Put(ctx context.Context, userKey string, reportPeriod int, payload []byte) error {
	query := `
		INSERT INTO gradebook_cache (user_hash, report_period, payload, fetched_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_hash, report_period)
		DO UPDATE SET payload = EXCLUDED.payload, fetched_at = now()`

	if _, err := r.db.ExecContext(ctx, query, userKey, reportPeriod, payload); err != nil {
		return fmt.Errorf("failed to write gradebook cache: %w", err)
	}
	return nil
}
