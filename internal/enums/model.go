// Package enums turns enum declarations found in parsed headers into
// deduplicated, prefix-trimmed groupings and prints them as enum blocks.
package enums

// Member is one enum constant after name canonicalization.
type Member struct {
	Name  string
	Value int64
}

// Grouping is one source enum declaration. Members keep declaration order;
// the emitter's value elision depends on adjacency.
type Grouping struct {
	Name    string
	Members []Member
}

// Names returns the member names in order.
func (g *Grouping) Names() []string {
	names := make([]string, len(g.Members))
	for i, m := range g.Members {
		names[i] = m.Name
	}
	return names
}
