// Package health tracks per-provider consecutive failures and flips a
// provider unavailable once the failure threshold is reached. There is no
// half-open probing: a tripped provider stays excluded until an explicit
// reset, which trades fast recovery for operational simplicity and avoids
// flapping.
package health

import (
	"sort"
	"sync"
	"time"
)

// DefaultThreshold is the consecutive-failure count that trips a provider.
const DefaultThreshold = 3

// ProviderHealth is a point-in-time view of one provider's record.
type ProviderHealth struct {
	ProviderID          string    `json:"provider_id"`
	Available           bool      `json:"available"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastFailure         time.Time `json:"last_failure,omitzero"`
}

// Monitor holds one record per provider, each independently locked.
type Monitor struct {
	threshold int

	mu      sync.RWMutex
	records map[string]*record
}

type record struct {
	mu          sync.Mutex
	failures    int
	lastFailure time.Time
	tripped     bool
}

// NewMonitor creates a monitor with the given trip threshold.
func NewMonitor(threshold int) *Monitor {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Monitor{
		threshold: threshold,
		records:   make(map[string]*record),
	}
}

// RecordSuccess resets the provider's failure count and restores
// availability if it had been tripped.
func (m *Monitor) RecordSuccess(providerID string) {
	r := m.record(providerID)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = 0
	r.tripped = false
}

// RecordFailure increments the consecutive-failure count and trips the
// provider once the threshold is reached.
func (m *Monitor) RecordFailure(providerID string, now time.Time) {
	r := m.record(providerID)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures++
	r.lastFailure = now
	if r.failures >= m.threshold {
		r.tripped = true
	}
}

// IsAvailable reports whether a provider may be selected. Providers with no
// record yet are available.
func (m *Monitor) IsAvailable(providerID string) bool {
	m.mu.RLock()
	r, ok := m.records[providerID]
	m.mu.RUnlock()
	if !ok {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.tripped
}

// Reset clears the record for one provider.
func (m *Monitor) Reset(providerID string) {
	m.mu.RLock()
	r, ok := m.records[providerID]
	m.mu.RUnlock()
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = 0
	r.lastFailure = time.Time{}
	r.tripped = false
}

// ResetAll clears every record, restoring availability for all providers.
// Operator-triggered after a known outage has ended.
func (m *Monitor) ResetAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make(map[string]*record)
}

// Snapshot returns the current health of every tracked provider, ordered by
// provider id.
func (m *Monitor) Snapshot() []ProviderHealth {
	m.mu.RLock()
	out := make([]ProviderHealth, 0, len(m.records))
	for id, r := range m.records {
		r.mu.Lock()
		out = append(out, ProviderHealth{
			ProviderID:          id,
			Available:           !r.tripped,
			ConsecutiveFailures: r.failures,
			LastFailure:         r.lastFailure,
		})
		r.mu.Unlock()
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ProviderID < out[j].ProviderID })
	return out
}

func (m *Monitor) record(providerID string) *record {
	m.mu.RLock()
	r, ok := m.records[providerID]
	m.mu.RUnlock()
	if ok {
		return r
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok = m.records[providerID]; ok {
		return r
	}
	r = &record{}
	m.records[providerID] = r
	return r
}
