package database

import (
	"database/sql"
	"fmt"
	"time"

	"marketwatch-telegram-bot/internal/types"
)

// GetCacheEntry returns the entry for a key, or nil when none exists.
// Expiry is the caller's concern; the row is returned as stored.
func GetCacheEntry(key string) (*types.CacheEntry, error) {
	query := `SELECT cache_key, data_type, data, ttl_seconds, expires_at FROM cache_entries WHERE cache_key = ?;`

	var e types.CacheEntry
	err := DB.QueryRow(query, key).Scan(&e.CacheKey, &e.DataType, &e.Data, &e.TTLSeconds, &e.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache entry %s: %w", key, err)
	}
	return &e, nil
}

// PutCacheEntry creates or fully replaces the entry for a key.
func PutCacheEntry(key, dataType, data string, ttl time.Duration, expiresAt time.Time) error {
	query := `
	INSERT OR REPLACE INTO cache_entries (cache_key, data_type, data, ttl_seconds, expires_at)
	VALUES (?, ?, ?, ?, ?);`

	_, err := DB.Exec(query, key, dataType, data, int64(ttl.Seconds()), expiresAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to put cache entry %s: %w", key, err)
	}
	return nil
}

// DeleteCacheEntry removes the entry for a key; deleting a missing key is a no-op.
func DeleteCacheEntry(key string) error {
	_, err := DB.Exec(`DELETE FROM cache_entries WHERE cache_key = ?;`, key)
	if err != nil {
		return fmt.Errorf("failed to delete cache entry %s: %w", key, err)
	}
	return nil
}

// DeleteExpiredCacheEntries removes every entry past its expiry and returns
// how many were deleted.
func DeleteExpiredCacheEntries(now time.Time) (int64, error) {
	res, err := DB.Exec(`DELETE FROM cache_entries WHERE expires_at <= ?;`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired cache entries: %w", err)
	}
	return res.RowsAffected()
}
