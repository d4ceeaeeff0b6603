package database

import (
	"strconv"
	"sync"
	"time"
)

// Record id prefixes, one per entity type.
const (
	PrefixUser         = "user_"
	PrefixProject      = "proj_"
	PrefixSession      = "sess_"
	PrefixTask         = "task_"
	PrefixNotification = "notif_"
)

// IDGenerator builds record ids as a type prefix followed by the wall clock
// in Unix milliseconds. Two ids of the same type taken in the same
// millisecond are identical; the primary key constraint rejects the second
// insert with ErrConflict.
type IDGenerator struct {
	mu  sync.RWMutex
	now func() time.Time
}

// NewIDGenerator returns a generator reading time from now.
func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

// SetClock swaps the time source.
func (g *IDGenerator) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	g.mu.Lock()
	g.now = now
	g.mu.Unlock()
}

// NewID returns prefix + current milliseconds.
func (g *IDGenerator) NewID(prefix string) string {
	id, _ := g.Next(prefix)
	return id
}

// Next returns a new id together with the UTC instant it was derived from,
// so callers can stamp created_at with the same reading.
func (g *IDGenerator) Next(prefix string) (string, time.Time) {
	g.mu.RLock()
	now := g.now().UTC()
	g.mu.RUnlock()
	return prefix + strconv.FormatInt(now.UnixMilli(), 10), now
}
