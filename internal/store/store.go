// Package store defines the counter-store collaborator used by the usage
// ledger: atomic bucket increments with per-key expiry. The in-memory
// implementation here serves single-process deployments; the interface keeps
// a shared store (Redis or similar) a drop-in swap.
package store

import "time"

// Value is the running total held by one bucket.
type Value struct {
	Count int64   `json:"count"`
	Cost  float64 `json:"cost"`
}

// Counters is the minimal contract the ledger needs. Incr must be atomic at
// bucket granularity and must reset the bucket's expiry to ttl from now.
type Counters interface {
	// Incr adds count and cost to the bucket, creating it if absent.
	Incr(key string, count int64, cost float64, ttl time.Duration) error
	// Get returns the bucket's value, or a zero Value if the bucket has
	// expired or never existed.
	Get(key string) (Value, error)
}
