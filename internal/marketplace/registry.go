package marketplace

import "sort"

// Registry maps marketplace identifiers to their adapters.
type Registry struct {
	adapters map[string]Marketplace
}

// NewRegistry returns a registry with all built-in marketplaces registered.
func NewRegistry() *Registry {
	r := &Registry{adapters: make(map[string]Marketplace)}
	r.Register(NewKwork())
	r.Register(NewFreelanceHunt())
	return r
}

// Register adds an adapter under its own name, replacing any previous entry.
func (r *Registry) Register(m Marketplace) {
	r.adapters[m.Name()] = m
}

// Lookup resolves a marketplace identifier. Unknown identifiers are a
// configuration error surfaced to the caller before any scraping starts.
func (r *Registry) Lookup(name string) (Marketplace, error) {
	m, ok := r.adapters[name]
	if !ok {
		return nil, &UnknownError{Name: name}
	}
	return m, nil
}

// Names returns the registered identifiers in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
