package provider

import (
	"fmt"
	"sync"
)

var (
	mu         sync.RWMutex
	generators = make(map[string]Generator)
)

// Register adds a generator to the global registry.
func Register(g Generator) {
	mu.Lock()
	defer mu.Unlock()
	generators[g.Name()] = g
}

// Get returns a generator by name.
func Get(name string) (Generator, error) {
	mu.RLock()
	defer mu.RUnlock()
	g, ok := generators[name]
	if !ok {
		return nil, fmt.Errorf("unknown generator: %s", name)
	}
	return g, nil
}

// List returns all registered generator names.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(generators))
	for name := range generators {
		names = append(names, name)
	}
	return names
}
