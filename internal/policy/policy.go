// Package policy ranks eligible providers for a request.
package policy

import (
	"sort"

	"github.com/everstacklabs/relay/internal/catalog"
	"github.com/everstacklabs/relay/internal/health"
)

// Preference steers candidate ordering.
type Preference string

const (
	PreferenceCostEffective Preference = "cost_effective"
	PreferenceHighQuality   Preference = "high_quality"
	PreferenceBalanced      Preference = "balanced" // default
)

// Known reports whether p is a recognized preference.
func (p Preference) Known() bool {
	switch p {
	case PreferenceCostEffective, PreferenceHighQuality, PreferenceBalanced:
		return true
	}
	return false
}

// Ceilings caps cost-per-unit by tier. Tiers absent from the map are
// unrestricted.
type Ceilings map[string]float64

// DefaultCeilings mirrors the stock tier pricing filters.
func DefaultCeilings() Ceilings {
	return Ceilings{
		"free":    0.01,
		"premium": 0.05,
	}
}

// Selector filters the registry to providers a tenant may use and orders
// them by preference.
type Selector struct {
	registry *catalog.Registry
	health   *health.Monitor
	ceilings Ceilings
}

// NewSelector creates a selector.
func NewSelector(reg *catalog.Registry, mon *health.Monitor, ceilings Ceilings) *Selector {
	return &Selector{registry: reg, health: mon, ceilings: ceilings}
}

// WithinCeiling reports whether a tier's cost ceiling permits a descriptor.
func (s *Selector) WithinCeiling(d *catalog.Descriptor, tier string) bool {
	ceiling, ok := s.ceilings[tier]
	return !ok || d.CostPerUnit <= ceiling
}

// Eligible reports whether a descriptor is usable for a tier right now:
// within the tier's cost ceiling and currently available.
func (s *Selector) Eligible(d *catalog.Descriptor, tier string) bool {
	return s.WithinCeiling(d, tier) && s.health.IsAvailable(d.ID)
}

// Select returns an ordered candidate list for a capability class, tier, and
// preference. An empty result means no provider is available.
func (s *Selector) Select(c catalog.Capability, tier string, pref Preference) []string {
	var candidates []*catalog.Descriptor
	for _, id := range s.registry.ListByCapability(c) {
		d, err := s.registry.Get(id)
		if err != nil {
			continue
		}
		if s.Eligible(d, tier) {
			candidates = append(candidates, d)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	switch pref {
	case PreferenceCostEffective:
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].CostPerUnit < candidates[j].CostPerUnit
		})
	case PreferenceHighQuality:
		// Registry order is already descending quality.
	default:
		return balanced(candidates)
	}

	return ids(candidates)
}

// balanced sorts by ascending cost and promotes the median element to
// primary, keeping the rest in cost order as the fallback tail.
func balanced(candidates []*catalog.Descriptor) []string {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].CostPerUnit < candidates[j].CostPerUnit
	})

	mid := len(candidates) / 2
	ordered := make([]*catalog.Descriptor, 0, len(candidates))
	ordered = append(ordered, candidates[mid])
	ordered = append(ordered, candidates[:mid]...)
	ordered = append(ordered, candidates[mid+1:]...)
	return ids(ordered)
}

func ids(descs []*catalog.Descriptor) []string {
	out := make([]string, len(descs))
	for i, d := range descs {
		out[i] = d.ID
	}
	return out
}
