package store

import (
	"sync"
	"time"
)

// Memory is an in-process Counters implementation. Expiry is lazy: expired
// entries are treated as absent on read and overwritten on the next write.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

type entry struct {
	value     Value
	expiresAt time.Time
}

// NewMemory creates an empty in-memory counter store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Incr adds to a bucket and resets its expiry to ttl from now.
func (m *Memory) Incr(key string, count int64, cost float64, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	e, ok := m.entries[key]
	if !ok || !e.expiresAt.After(now) {
		e = &entry{}
		m.entries[key] = e
	}
	e.value.Count += count
	e.value.Cost += cost
	e.expiresAt = now.Add(ttl)
	return nil
}

// Get returns the bucket value, or zero if missing or expired.
func (m *Memory) Get(key string) (Value, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || !e.expiresAt.After(m.now()) {
		return Value{}, nil
	}
	return e.value, nil
}

// Sweep removes expired entries. Callers may run it periodically; reads are
// correct without it.
func (m *Memory) Sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, e := range m.entries {
		if !e.expiresAt.After(now) {
			delete(m.entries, k)
		}
	}
}
