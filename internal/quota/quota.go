// Package quota admits or rejects requests against a tenant's plan limits
// before any dispatch work happens.
package quota

import (
	"time"

	"github.com/everstacklabs/relay/internal/catalog"
	"github.com/everstacklabs/relay/internal/ledger"
)

// Rejection reasons. These are read-only checks against already-committed
// aggregates; a narrow race between concurrent requests near a limit is an
// accepted soft-limit tradeoff.
const (
	ReasonCapabilityNotAllowed = "capability_not_allowed"
	ReasonDailyRequestLimit    = "daily_request_limit"
	ReasonMonthlyCostLimit     = "monthly_cost_limit"
)

// Limits are the static per-tier plan limits.
type Limits struct {
	MaxRequestsPerDay int      `mapstructure:"max_requests_per_day" yaml:"max_requests_per_day"`
	MaxCostPerMonth   float64  `mapstructure:"max_cost_per_month" yaml:"max_cost_per_month"`
	Capabilities      []string `mapstructure:"capabilities" yaml:"capabilities"` // explicit set, or "all"
}

// Allows reports whether the plan permits a capability class.
func (l Limits) Allows(c catalog.Capability) bool {
	for _, allowed := range l.Capabilities {
		if allowed == "all" || allowed == string(c) {
			return true
		}
	}
	return false
}

// Plans maps tier name to limits.
type Plans map[string]Limits

// DefaultPlans returns the stock tier definitions.
func DefaultPlans() Plans {
	return Plans{
		"free": {
			MaxRequestsPerDay: 10,
			MaxCostPerMonth:   5.0,
			Capabilities:      []string{"text"},
		},
		"premium": {
			MaxRequestsPerDay: 100,
			MaxCostPerMonth:   50.0,
			Capabilities:      []string{"text", "image"},
		},
		"enterprise": {
			MaxRequestsPerDay: 1000,
			MaxCostPerMonth:   500.0,
			Capabilities:      []string{"all"},
		},
	}
}

// Decision is the outcome of an admission check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Enforcer checks plan limits against ledger aggregates.
type Enforcer struct {
	plans  Plans
	ledger *ledger.Ledger
}

// NewEnforcer creates an enforcer over the given plans and ledger.
func NewEnforcer(plans Plans, l *ledger.Ledger) *Enforcer {
	return &Enforcer{plans: plans, ledger: l}
}

// Limits returns the plan limits for a tier, falling back to the free tier
// for unknown tiers.
func (e *Enforcer) Limits(tier string) Limits {
	if l, ok := e.plans[tier]; ok {
		return l
	}
	return e.plans["free"]
}

// Admit checks capability, daily request count, and monthly cost, in that
// order, and returns the first rejection.
func (e *Enforcer) Admit(tenantID, tier string, c catalog.Capability, now time.Time) Decision {
	limits := e.Limits(tier)

	if !limits.Allows(c) {
		return Decision{Reason: ReasonCapabilityNotAllowed}
	}

	day := e.ledger.Aggregate(ledger.ScopeTenant, ledger.PeriodDay, tenantID, now)
	if day.Count >= int64(limits.MaxRequestsPerDay) {
		return Decision{Reason: ReasonDailyRequestLimit}
	}

	month := e.ledger.Aggregate(ledger.ScopeTenant, ledger.PeriodMonth, tenantID, now)
	if month.Cost >= limits.MaxCostPerMonth {
		return Decision{Reason: ReasonMonthlyCostLimit}
	}

	return Decision{Allowed: true}
}
