package catalog

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Registry is an immutable lookup table of provider descriptors, built once
// at startup. Mutable per-provider state (rate windows, health records) lives
// elsewhere, keyed by provider id.
type Registry struct {
	providers    map[string]*Descriptor
	byCapability map[Capability][]string
}

// NewRegistry builds a registry from descriptors, validating invariants.
func NewRegistry(descs []Descriptor) (*Registry, error) {
	if issues := Validate(descs); len(issues) > 0 {
		return nil, fmt.Errorf("invalid catalog: %s", issues[0])
	}

	r := &Registry{
		providers:    make(map[string]*Descriptor, len(descs)),
		byCapability: make(map[Capability][]string),
	}

	for i := range descs {
		d := descs[i]
		r.providers[d.ID] = &d
		r.byCapability[d.Capability] = append(r.byCapability[d.Capability], d.ID)
	}

	// Reverse index ordered by descending quality for cheap ranked iteration.
	for cap, ids := range r.byCapability {
		sort.SliceStable(ids, func(i, j int) bool {
			return r.providers[ids[i]].QualityScore > r.providers[ids[j]].QualityScore
		})
		r.byCapability[cap] = ids
	}

	return r, nil
}

// Get returns the descriptor for a provider id. An unknown id is a
// programming error: descriptors are never removed at runtime.
func (r *Registry) Get(id string) (*Descriptor, error) {
	d, ok := r.providers[id]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", id)
	}
	return d, nil
}

// ListByCapability returns provider ids for a capability class, ordered by
// descending quality score. The returned slice must not be mutated.
func (r *Registry) ListByCapability(c Capability) []string {
	return r.byCapability[c]
}

// IDs returns all provider ids in lexical order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of providers in the registry.
func (r *Registry) Len() int { return len(r.providers) }

// Load reads provider descriptors from a catalog YAML file.
func Load(path string) ([]Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	if len(f.Providers) == 0 {
		return nil, fmt.Errorf("catalog %s contains no providers", path)
	}

	return f.Providers, nil
}
