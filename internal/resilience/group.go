package resilience

import "sync"

// Group manages one breaker per key, created lazily with shared
// settings. The fetch layer keys by site so one misbehaving host
// cannot open the circuit for the rest.
type Group struct {
	settings Settings
	breakers sync.Map // key -> *Breaker
}

// NewGroup creates a breaker group with shared settings.
func NewGroup(settings Settings) *Group {
	return &Group{settings: settings}
}

// Get returns the breaker for key, creating it on first use.
func (g *Group) Get(key string) *Breaker {
	if b, ok := g.breakers.Load(key); ok {
		return b.(*Breaker)
	}
	created := New(key, g.settings)
	actual, _ := g.breakers.LoadOrStore(key, created)
	return actual.(*Breaker)
}

// Do runs an error-only request through the breaker for key.
func (g *Group) Do(key string, req func() error) error {
	return g.Get(key).Do(req)
}

// States returns a snapshot of every breaker's current state.
func (g *Group) States() map[string]State {
	out := make(map[string]State)
	g.breakers.Range(func(k, v interface{}) bool {
		out[k.(string)] = v.(*Breaker).State()
		return true
	})
	return out
}
