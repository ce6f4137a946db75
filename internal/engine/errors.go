package engine

import "fmt"

// Reason codes for dispatch failures. Quota rejections and
// no_provider_available are surfaced immediately and never retried;
// all_providers_exhausted is the only failure that warrants "try again
// later" messaging to callers.
type Reason string

const (
	ReasonCapabilityNotAllowed  Reason = "capability_not_allowed"
	ReasonDailyRequestLimit     Reason = "daily_request_limit"
	ReasonMonthlyCostLimit      Reason = "monthly_cost_limit"
	ReasonNoProviderAvailable   Reason = "no_provider_available"
	ReasonAllProvidersExhausted Reason = "all_providers_exhausted"
)

// Error is a typed dispatch failure.
type Error struct {
	Reason Reason
}

func (e *Error) Error() string {
	return fmt.Sprintf("dispatch failed: %s", e.Reason)
}

// QuotaRejection reports whether the reason is a pre-dispatch quota
// rejection.
func (r Reason) QuotaRejection() bool {
	switch r {
	case ReasonCapabilityNotAllowed, ReasonDailyRequestLimit, ReasonMonthlyCostLimit:
		return true
	}
	return false
}
