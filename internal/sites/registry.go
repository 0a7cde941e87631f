package sites

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownSite is returned by Lookup for site IDs the registry does
// not carry. A miss never falls back to a default vector.
var ErrUnknownSite = errors.New("unknown site")

// Registry maps site IDs to capability vectors. It is built once at
// startup and read-only afterward, so lookups need no locking.
type Registry struct {
	records map[string]Capabilities
}

// NewRegistry builds a registry from the given records. Duplicate site
// IDs and invalid records are rejected.
func NewRegistry(records []Capabilities) (*Registry, error) {
	m := make(map[string]Capabilities, len(records))
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, err
		}
		if _, dup := m[rec.SiteID]; dup {
			return nil, fmt.Errorf("duplicate site_id %q", rec.SiteID)
		}
		m[rec.SiteID] = rec
	}
	return &Registry{records: m}, nil
}

// Builtin returns a registry holding only the builtin site table.
func Builtin() *Registry {
	r, err := NewRegistry(builtinSites)
	if err != nil {
		// The builtin table is validated by tests; a bad entry is a
		// programming error, not a runtime condition.
		panic(err)
	}
	return r
}

// Lookup returns the capability vector for siteID. The result is a
// copy; callers cannot mutate registry state through it.
func (r *Registry) Lookup(siteID string) (Capabilities, error) {
	rec, ok := r.records[siteID]
	if !ok {
		return Capabilities{}, fmt.Errorf("%w: %s", ErrUnknownSite, siteID)
	}
	return rec, nil
}

// Has reports whether siteID is registered.
func (r *Registry) Has(siteID string) bool {
	_, ok := r.records[siteID]
	return ok
}

// List returns all records sorted by site ID.
func (r *Registry) List() []Capabilities {
	out := make([]Capabilities, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SiteID < out[j].SiteID })
	return out
}

// Len returns the number of registered sites.
func (r *Registry) Len() int {
	return len(r.records)
}

// Encrypted returns the IDs of all sites whose payloads need the
// unlock bridge, sorted.
func (r *Registry) Encrypted() []string {
	var out []string
	for id, rec := range r.records {
		if rec.RequiresDecryption {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
