// Package symbolstest provides an in-memory cursor tree for tests that
// should not depend on a real parser.
package symbolstest

import (
	"errors"
	"fmt"

	"github.com/mesdx/hdrenum/internal/symbols"
)

// Node is a fake cursor. Build trees with the constructors below.
type Node struct {
	NodeKind symbols.Kind
	Name     string
	Value    int64
	HasValue bool
	Pos      symbols.Position
	Children []*Node

	// Visits counts VisitChildren calls on this node.
	Visits int
}

// TU returns a translation-unit-like root.
func TU(children ...*Node) *Node {
	return &Node{NodeKind: symbols.KindOther, Children: children}
}

// Other returns an unclassified node, e.g. a struct or preprocessor block.
func Other(children ...*Node) *Node {
	return &Node{NodeKind: symbols.KindOther, Children: children}
}

// Enum returns an enum declaration whose constants sit under an
// intermediate list node, the way real syntax trees nest them.
func Enum(name string, constants ...*Node) *Node {
	return &Node{
		NodeKind: symbols.KindEnumDecl,
		Name:     name,
		Children: []*Node{Other(constants...)},
	}
}

// Const returns an enum constant with a known value.
func Const(name string, value int64) *Node {
	return &Node{NodeKind: symbols.KindEnumConstantDecl, Name: name, Value: value, HasValue: true}
}

// Unknown returns an enum constant whose value could not be computed.
func Unknown(name string) *Node {
	return &Node{NodeKind: symbols.KindEnumConstantDecl, Name: name}
}

func (n *Node) Kind() symbols.Kind         { return n.NodeKind }
func (n *Node) DisplayName() string        { return n.Name }
func (n *Node) Position() symbols.Position { return n.Pos }

func (n *Node) ConstantValue() (int64, bool) {
	if n.NodeKind != symbols.KindEnumConstantDecl || !n.HasValue {
		return 0, false
	}
	return n.Value, true
}

func (n *Node) VisitChildren(fn func(symbols.Cursor) symbols.VisitResult) {
	n.Visits++
	for _, c := range n.Children {
		if fn(c) == symbols.VisitBreak {
			return
		}
	}
}

// ErrNoSuchFile is returned by Provider.Parse for unknown paths.
var ErrNoSuchFile = errors.New("no such file")

// Provider serves fake trees by path and records unit lifetimes.
type Provider struct {
	Files map[string]*Node

	// SyntaxErrors marks paths whose units report HasErrors.
	SyntaxErrors map[string]bool

	Parsed []string
	Open   int // units parsed but not yet closed
}

// Parse returns a unit for a registered path.
func (p *Provider) Parse(path string) (symbols.Unit, error) {
	root, ok := p.Files[path]
	if !ok {
		return nil, fmt.Errorf("parse %s: %w", path, ErrNoSuchFile)
	}
	p.Parsed = append(p.Parsed, path)
	p.Open++
	return &unit{root: root, p: p, errors: p.SyntaxErrors[path]}, nil
}

type unit struct {
	root   *Node
	p      *Provider
	errors bool
	closed bool
}

func (u *unit) Root() symbols.Cursor { return u.root }
func (u *unit) HasErrors() bool      { return u.errors }

func (u *unit) Close() error {
	if !u.closed {
		u.closed = true
		u.p.Open--
	}
	return nil
}
