package sources

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages site sources. Registration happens at startup;
// lookups are lock-free afterwards.
type Registry struct {
	sources sync.Map
}

// NewRegistry creates an empty source registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a source. The ID must be non-empty and unused.
func (r *Registry) Register(src Source) error {
	id := src.ID()
	if id == "" {
		return fmt.Errorf("source ID cannot be empty")
	}
	if _, loaded := r.sources.LoadOrStore(id, src); loaded {
		return fmt.Errorf("source %q already registered", id)
	}
	return nil
}

// Unregister removes a source.
func (r *Registry) Unregister(siteID string) {
	r.sources.Delete(siteID)
}

// Get retrieves a source by site ID.
func (r *Registry) Get(siteID string) (Source, bool) {
	val, ok := r.sources.Load(siteID)
	if !ok {
		return nil, false
	}
	return val.(Source), true
}

// List returns registered site IDs in sorted order.
func (r *Registry) List() []string {
	var ids []string
	r.sources.Range(func(key, _ any) bool {
		ids = append(ids, key.(string))
		return true
	})
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered sources.
func (r *Registry) Len() int {
	n := 0
	r.sources.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
