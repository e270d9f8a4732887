package symbols

// VisitResult tells VisitChildren whether to keep iterating.
type VisitResult int

const (
	VisitContinue VisitResult = iota
	VisitBreak
)

// Cursor is one node of a parsed file's structural tree.
type Cursor interface {
	// Kind classifies the node.
	Kind() Kind

	// DisplayName is the node's identifier, or "" if it has none.
	DisplayName() string

	// ConstantValue is the integral value of an enum constant. ok is false
	// for other kinds and for constants whose value could not be computed.
	ConstantValue() (value int64, ok bool)

	// Position is where the node starts.
	Position() Position

	// VisitChildren calls fn once per direct child in source order until fn
	// returns VisitBreak. Grandchildren are not visited.
	VisitChildren(fn func(child Cursor) VisitResult)
}

// Unit is the parse state of a single file. It must be closed once the
// file has been traversed; cursors obtained from it are invalid afterwards.
type Unit interface {
	Root() Cursor

	// HasErrors reports whether the parser had to recover from syntax
	// errors. Declarations near an error may be missing.
	HasErrors() bool

	Close() error
}

// Provider parses files into traversable units.
type Provider interface {
	// Parse returns the unit for path, or an error if no tree could be built.
	Parse(path string) (Unit, error)
}
