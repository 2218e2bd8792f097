// Package marketcache memoizes upstream fetches for a TTL window. Entries
// live in the cache_entries table so they survive restarts and stay
// inspectable; the in-process per-key locks give concurrent callers
// single-flight semantics (one compute, everyone else reuses the result).
package marketcache

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"marketwatch-telegram-bot/internal/database"
)

// ComputeFunc produces the payload for a missing or expired key. It may
// perform network I/O and may fail; a failure writes nothing.
type ComputeFunc func() (map[string]string, error)

type Cache struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex

	// now is swappable for expiry tests
	now func() time.Time
}

func New() *Cache {
	return &Cache{
		locks: make(map[string]*sync.Mutex),
		now:   time.Now,
	}
}

func (c *Cache) keyLock(key string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.locks[key]
	if !ok {
		l = &sync.Mutex{}
		c.locks[key] = l
	}
	return l
}

// GetOrCompute returns the live cached payload for key, or invokes compute
// exactly once among concurrent callers and stores the result for ttl.
// A compute failure propagates to the caller and leaves any existing entry
// untouched.
func (c *Cache) GetOrCompute(key, dataType string, ttl time.Duration, compute ComputeFunc) (map[string]string, error) {
	l := c.keyLock(key)
	l.Lock()
	defer l.Unlock()

	entry, err := database.GetCacheEntry(key)
	if err != nil {
		return nil, errors.Wrap(err, "cache read failed")
	}

	now := c.now()
	if entry.Live(now) {
		var data map[string]string
		if err := json.Unmarshal([]byte(entry.Data), &data); err == nil {
			log.Debugf("cache hit for %s", key)
			return data, nil
		}
		// unreadable payload: fall through and recompute
		log.Warnf("⚠️ Discarding unreadable cache entry for %s", key)
	}

	data, err := compute()
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Wrap(err, "cache payload not serializable")
	}
	if err := database.PutCacheEntry(key, dataType, string(raw), ttl, now.Add(ttl)); err != nil {
		return nil, errors.Wrap(err, "cache write failed")
	}
	return data, nil
}

// Forget drops the entry for key; forgetting a missing key is a no-op.
func (c *Cache) Forget(key string) error {
	l := c.keyLock(key)
	l.Lock()
	defer l.Unlock()

	return database.DeleteCacheEntry(key)
}

// ClearExpired removes every expired entry and returns how many went.
// Intended for a slower cadence than the monitor's poll interval.
func (c *Cache) ClearExpired() (int64, error) {
	return database.DeleteExpiredCacheEntries(c.now())
}
