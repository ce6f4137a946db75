// Package engine wires admission, selection, dispatch, accounting, and
// alerting into the single entry point callers use.
package engine

import (
	"context"
	"time"

	"github.com/everstacklabs/relay/internal/alert"
	"github.com/everstacklabs/relay/internal/catalog"
	"github.com/everstacklabs/relay/internal/health"
	"github.com/everstacklabs/relay/internal/ledger"
	"github.com/everstacklabs/relay/internal/policy"
	"github.com/everstacklabs/relay/internal/provider"
	"github.com/everstacklabs/relay/internal/quota"
	"github.com/everstacklabs/relay/internal/ratelimit"
	"github.com/everstacklabs/relay/internal/store"
)

// DefaultCallTimeout bounds one upstream provider call.
const DefaultCallTimeout = 60 * time.Second

// TierResolver is the tenant/plan lookup collaborator.
type TierResolver interface {
	Tier(ctx context.Context, tenantID string) (string, error)
}

// StaticTiers resolves tiers from a fixed assignment map.
type StaticTiers struct {
	Assignments map[string]string
	Default     string
}

func (s StaticTiers) Tier(_ context.Context, tenantID string) (string, error) {
	if tier, ok := s.Assignments[tenantID]; ok {
		return tier, nil
	}
	if s.Default != "" {
		return s.Default, nil
	}
	return "free", nil
}

// GeneratorLookup resolves a generator name to an implementation. The
// default is the global provider registry; tests inject their own.
type GeneratorLookup func(name string) (provider.Generator, error)

// Request is one caller request.
type Request struct {
	TenantID   string
	Capability catalog.Capability
	Prompt     string
	Preference policy.Preference
	// Tier overrides the resolver when set (caller-supplied tier).
	Tier string
}

// Result describes a successful dispatch.
type Result struct {
	ProviderID string  `json:"provider_id"`
	Content    string  `json:"content"`
	Units      float64 `json:"units_consumed"`
	Cost       float64 `json:"cost"`
}

// Engine owns the shared routing state.
type Engine struct {
	registry *catalog.Registry
	governor *ratelimit.Governor
	health   *health.Monitor
	ledger   *ledger.Ledger
	quota    *quota.Enforcer
	selector *policy.Selector
	alerts   *alert.Emitter
	tiers    TierResolver

	lookup      GeneratorLookup
	callTimeout time.Duration
	now         func() time.Time
}

// Option configures the Engine.
type Option func(*Engine)

// WithCallTimeout bounds each upstream call.
func WithCallTimeout(d time.Duration) Option {
	return func(e *Engine) { e.callTimeout = d }
}

// WithGeneratorLookup overrides generator resolution.
func WithGeneratorLookup(fn GeneratorLookup) Option {
	return func(e *Engine) { e.lookup = fn }
}

// WithClock overrides the engine clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an engine over its collaborators.
func New(reg *catalog.Registry, gov *ratelimit.Governor, mon *health.Monitor,
	led *ledger.Ledger, enf *quota.Enforcer, sel *policy.Selector,
	alerts *alert.Emitter, tiers TierResolver, opts ...Option) *Engine {

	e := &Engine{
		registry:    reg,
		governor:    gov,
		health:      mon,
		ledger:      led,
		quota:       enf,
		selector:    sel,
		alerts:      alerts,
		tiers:       tiers,
		lookup:      provider.Get,
		callTimeout: DefaultCallTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// UsageSummary returns the rolling totals for a tenant and period.
func (e *Engine) UsageSummary(tenantID string, period ledger.Period) store.Value {
	return e.ledger.Aggregate(ledger.ScopeTenant, period, tenantID, e.now())
}

// RecentRecords returns the newest ledger entries for a tenant.
func (e *Engine) RecentRecords(tenantID string, limit int) ([]ledger.Record, error) {
	return e.ledger.RecentRecords(tenantID, limit)
}

// ProviderHealth returns the current health of every tracked provider.
func (e *Engine) ProviderHealth() []health.ProviderHealth {
	return e.health.Snapshot()
}

// ResetProviderHealth restores availability for one provider, or for all
// providers when id is empty.
func (e *Engine) ResetProviderHealth(providerID string) {
	if providerID == "" {
		e.health.ResetAll()
		return
	}
	e.health.Reset(providerID)
}
