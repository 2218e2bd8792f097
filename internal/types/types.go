package types

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Condition names the comparison an alert applies to the current price.
type Condition string

const (
	ConditionAbove        Condition = "above"
	ConditionBelow        Condition = "below"
	ConditionEquals       Condition = "equals"
	ConditionCrossesAbove Condition = "crosses_above"
	ConditionCrossesBelow Condition = "crosses_below"
)

// Valid reports whether c is one of the supported alert conditions.
func (c Condition) Valid() bool {
	switch c {
	case ConditionAbove, ConditionBelow, ConditionEquals, ConditionCrossesAbove, ConditionCrossesBelow:
		return true
	}
	return false
}

// Alert is a persisted watch condition. ChatID is NULL for system-wide
// alerts, which are routed to the configured broadcast channel.
type Alert struct {
	ID          int64           `json:"id"`
	ChatID      sql.NullInt64   `json:"chat_id"`
	AlertType   string          `json:"alert_type"` // only "price" is evaluated by the monitor
	Symbol      string          `json:"symbol"`
	Condition   Condition       `json:"condition"`
	Target      decimal.Decimal `json:"target_value"`
	IsActive    bool            `json:"is_active"`
	IsTriggered bool            `json:"is_triggered"`
	TriggeredAt sql.NullString  `json:"triggered_at"`
	Message     sql.NullString  `json:"message"`
	Repeat      bool            `json:"repeat"`
	CreatedAt   string          `json:"created_at"`
}

// CacheEntry is a memoized fetch result. ExpiresAt is a unix timestamp.
type CacheEntry struct {
	CacheKey   string `json:"cache_key"`
	DataType   string `json:"data_type"`
	Data       string `json:"data"` // JSON-encoded string map
	TTLSeconds int64  `json:"ttl"`
	ExpiresAt  int64  `json:"expires_at"`
}

// Live reports whether the entry is still usable at the given time.
func (e *CacheEntry) Live(now time.Time) bool {
	return e != nil && now.Unix() < e.ExpiresAt
}

// NormalizedPrice is the in-memory quote produced by a price source.
// It is never persisted verbatim; only the cache payload and rendered
// alert messages survive it.
type NormalizedPrice struct {
	Symbol     string
	Price      decimal.Decimal
	Change24h  *decimal.Decimal
	MarketType string
	FetchedAt  time.Time
}
