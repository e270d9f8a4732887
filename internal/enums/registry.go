package enums

// Registry holds every grouping registered during one run, keyed by the
// enum's declared name. The first registration of a name wins and entries
// are never updated. It is not safe for concurrent use.
type Registry struct {
	byName map[string]*Grouping
	order  []*Grouping
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Grouping)}
}

// Has reports whether name is already registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Get returns the grouping registered under name.
func (r *Registry) Get(name string) (*Grouping, bool) {
	g, ok := r.byName[name]
	return g, ok
}

// Insert registers g under g.Name. It returns false and leaves the registry
// untouched if the name is empty, already present, or g has no members.
func (r *Registry) Insert(g *Grouping) bool {
	if g == nil || g.Name == "" || len(g.Members) == 0 {
		return false
	}
	if r.Has(g.Name) {
		return false
	}
	r.byName[g.Name] = g
	r.order = append(r.order, g)
	return true
}

// Len returns the number of registered groupings.
func (r *Registry) Len() int {
	return len(r.order)
}

// Groupings returns the registered groupings in registration order.
func (r *Registry) Groupings() []*Grouping {
	out := make([]*Grouping, len(r.order))
	copy(out, r.order)
	return out
}
