package symbols

import "fmt"

// Kind classifies a cursor in a parsed header.
type Kind int

const (
	KindOther            Kind = 0
	KindEnumDecl         Kind = 1
	KindEnumConstantDecl Kind = 2
)

// Position is a location in a source file.
type Position struct {
	Line   int // 1-based
	Column int // 0-based
}

// String formats the position as line:column.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
