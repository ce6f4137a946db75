package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/everstacklabs/relay/internal/catalog"
	"github.com/everstacklabs/relay/internal/ledger"
	"github.com/everstacklabs/relay/internal/policy"
	"github.com/everstacklabs/relay/internal/provider"
)

// Dispatch admits, ranks, and executes one request: quota check, policy
// ranking, then a strictly sequential walk of the candidate chain. At most
// one ledger write happens per call, on the first successful attempt.
func (e *Engine) Dispatch(ctx context.Context, req Request) (*Result, error) {
	tier := req.Tier
	if tier == "" {
		resolved, err := e.tiers.Tier(ctx, req.TenantID)
		if err != nil {
			slog.Warn("tier lookup failed, using free tier", "tenant", req.TenantID, "error", err)
			resolved = "free"
		}
		tier = resolved
	}

	pref := req.Preference
	if !pref.Known() {
		pref = policy.PreferenceBalanced
	}

	now := e.now()
	if dec := e.quota.Admit(req.TenantID, tier, req.Capability, now); !dec.Allowed {
		slog.Info("request rejected by quota",
			"tenant", req.TenantID, "tier", tier, "capability", req.Capability, "reason", dec.Reason)
		return nil, &Error{Reason: Reason(dec.Reason)}
	}

	primaries := e.selector.Select(req.Capability, tier, pref)
	if len(primaries) == 0 {
		return nil, &Error{Reason: ReasonNoProviderAvailable}
	}

	candidates := e.expandFallbacks(primaries, req.Capability, tier)

	for _, id := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("dispatch cancelled: %w", err)
		}

		// Fallback entries added after ranking may have tripped since.
		if !e.health.IsAvailable(id) {
			continue
		}

		desc, err := e.registry.Get(id)
		if err != nil {
			return nil, err
		}

		// A rate-limited candidate is skipped, not failed.
		if !e.governor.TryAdmit(id, desc.RateLimit, e.now()) {
			slog.Debug("candidate rate limited, skipping", "provider", id)
			continue
		}

		resp, err := e.attempt(ctx, desc, req)
		if err != nil {
			e.health.RecordFailure(id, e.now())
			slog.Warn("provider attempt failed", "provider", id, "error", err)
			continue
		}

		e.health.RecordSuccess(id)

		cost := resp.Units * desc.CostPerUnit
		rec := e.ledger.Write(ledger.Record{
			TenantID:   req.TenantID,
			ProviderID: id,
			Capability: string(req.Capability),
			Units:      resp.Units,
			Cost:       cost,
			CreatedAt:  e.now().UTC(),
		})
		e.alerts.Evaluate(rec, e.quota.Limits(tier).MaxCostPerMonth)

		slog.Info("dispatch complete",
			"tenant", req.TenantID, "provider", id, "units", resp.Units, "cost", cost)

		return &Result{
			ProviderID: id,
			Content:    resp.Content,
			Units:      resp.Units,
			Cost:       cost,
		}, nil
	}

	slog.Error("all candidates exhausted",
		"tenant", req.TenantID, "capability", req.Capability, "candidates", len(candidates))
	return nil, &Error{Reason: ReasonAllProvidersExhausted}
}

// attempt performs one bounded upstream call. A timeout is a failure like
// any other: it feeds the health monitor and advances fallback.
func (e *Engine) attempt(ctx context.Context, desc *catalog.Descriptor, req Request) (*provider.Response, error) {
	gen, err := e.lookup(desc.Generator)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	return gen.Generate(callCtx, provider.Request{
		ProviderID: desc.ID,
		Capability: desc.Capability,
		Prompt:     req.Prompt,
		MaxUnits:   desc.MaxUnits,
	})
}

// expandFallbacks appends each ranked candidate's configured fallback chain,
// deduplicated, keeping only same-capability entries within the tier's cost
// ceiling. Health is rechecked per attempt, not here. Fallback order is
// fixed by configuration, not adaptive.
func (e *Engine) expandFallbacks(primaries []string, c catalog.Capability, tier string) []string {
	seen := make(map[string]bool, len(primaries))
	var out []string

	add := func(id string) {
		if seen[id] {
			return
		}
		d, err := e.registry.Get(id)
		if err != nil || d.Capability != c || !e.selector.WithinCeiling(d, tier) {
			return
		}
		seen[id] = true
		out = append(out, id)
	}

	for _, id := range primaries {
		add(id)
		if d, err := e.registry.Get(id); err == nil {
			for _, fb := range d.Fallbacks {
				add(fb)
			}
		}
	}
	return out
}
