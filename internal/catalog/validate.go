package catalog

import "fmt"

// Validate checks descriptor invariants and returns one message per issue.
// An empty result means the catalog is usable.
func Validate(descs []Descriptor) []string {
	var issues []string

	seen := make(map[string]bool, len(descs))
	for _, d := range descs {
		if d.ID == "" {
			issues = append(issues, "provider with empty id")
			continue
		}
		if seen[d.ID] {
			issues = append(issues, fmt.Sprintf("%s: duplicate provider id", d.ID))
		}
		seen[d.ID] = true
	}

	for _, d := range descs {
		if !d.Capability.Known() {
			issues = append(issues, fmt.Sprintf("%s: unknown capability %q", d.ID, d.Capability))
		}
		if d.Generator == "" {
			issues = append(issues, fmt.Sprintf("%s: missing generator", d.ID))
		}
		if d.CostPerUnit < 0 {
			issues = append(issues, fmt.Sprintf("%s: negative cost_per_unit %g", d.ID, d.CostPerUnit))
		}
		if d.QualityScore < 0 || d.QualityScore > 1 {
			issues = append(issues, fmt.Sprintf("%s: quality_score %g outside [0,1]", d.ID, d.QualityScore))
		}
		if d.RateLimit <= 0 {
			issues = append(issues, fmt.Sprintf("%s: rate_limit must be positive", d.ID))
		}
		for _, fb := range d.Fallbacks {
			if fb == d.ID {
				issues = append(issues, fmt.Sprintf("%s: fallback list contains itself", d.ID))
			}
			if !seen[fb] {
				issues = append(issues, fmt.Sprintf("%s: fallback %q not in catalog", d.ID, fb))
			}
		}
	}

	return issues
}
