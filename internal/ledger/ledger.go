// Package ledger records billed requests and maintains rolling usage
// aggregates per tenant, provider, and globally.
package ledger

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/everstacklabs/relay/internal/store"
)

// Retention is how long aggregate buckets live without further writes.
const Retention = 31 * 24 * time.Hour

// Scope identifies what an aggregate bucket sums over.
type Scope string

const (
	ScopeGlobal   Scope = "global"
	ScopeTenant   Scope = "tenant"
	ScopeProvider Scope = "provider"
)

// Period identifies the calendar bucket of an aggregate.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// Record is one immutable ledger entry, written exactly once per billed
// attempt.
type Record struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenant_id"`
	ProviderID string    `json:"provider_id"`
	Capability string    `json:"capability"`
	Units      float64   `json:"units"`
	Cost       float64   `json:"cost"`
	CreatedAt  time.Time `json:"created_at"`
}

// Ledger appends usage records and keeps rolling aggregates in the counter
// store. Both sinks are best-effort: a store or database outage must never
// surface to a caller whose provider call already succeeded.
type Ledger struct {
	counters store.Counters
	db       *DB // optional
}

// New creates a ledger. db may be nil, in which case only aggregates are
// kept.
func New(counters store.Counters, db *DB) *Ledger {
	return &Ledger{counters: counters, db: db}
}

// Write appends the record and atomically increments the aggregate buckets
// it touches: global/day, global/month, tenant/day, tenant/month,
// provider/day. Each increment resets the bucket's expiry to the retention
// window. Failures are logged and swallowed.
func (l *Ledger) Write(rec Record) Record {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	buckets := []string{
		Key(ScopeGlobal, PeriodDay, "", rec.CreatedAt),
		Key(ScopeGlobal, PeriodMonth, "", rec.CreatedAt),
		Key(ScopeTenant, PeriodDay, rec.TenantID, rec.CreatedAt),
		Key(ScopeTenant, PeriodMonth, rec.TenantID, rec.CreatedAt),
		Key(ScopeProvider, PeriodDay, rec.ProviderID, rec.CreatedAt),
	}
	for _, key := range buckets {
		if err := l.counters.Incr(key, 1, rec.Cost, Retention); err != nil {
			slog.Warn("usage aggregate increment failed", "bucket", key, "error", err)
		}
	}

	if l.db != nil {
		if err := l.db.insert(rec); err != nil {
			slog.Warn("usage record insert failed", "record", rec.ID, "error", err)
		}
	}

	return rec
}

// Aggregate returns the running totals for a bucket at now, zero if the
// bucket has expired or never existed.
func (l *Ledger) Aggregate(scope Scope, period Period, key string, now time.Time) store.Value {
	v, err := l.counters.Get(Key(scope, period, key, now))
	if err != nil {
		slog.Warn("usage aggregate read failed", "scope", scope, "period", period, "error", err)
		return store.Value{}
	}
	return v
}

// RecentRecords returns the newest ledger entries for a tenant, or nil when
// no durable record store is configured.
func (l *Ledger) RecentRecords(tenantID string, limit int) ([]Record, error) {
	if l.db == nil {
		return nil, nil
	}
	return l.db.RecentRecords(tenantID, limit)
}

// Key builds the counter-store key for an aggregate bucket. The global scope
// ignores key.
func Key(scope Scope, period Period, key string, at time.Time) string {
	stamp := at.UTC().Format("2006-01-02")
	if period == PeriodMonth {
		stamp = at.UTC().Format("2006-01")
	}
	if scope == ScopeGlobal {
		return fmt.Sprintf("usage:global:%s:%s", period, stamp)
	}
	return fmt.Sprintf("usage:%s:%s:%s:%s", scope, period, key, stamp)
}
