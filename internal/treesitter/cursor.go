package treesitter

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mesdx/hdrenum/internal/symbols"
)

// cursor adapts a tree-sitter node to symbols.Cursor.
type cursor struct {
	node *tree_sitter.Node
	u    *Unit
}

func (c *cursor) Kind() symbols.Kind {
	switch c.node.Kind() {
	case "enum_specifier":
		return symbols.KindEnumDecl
	case "enumerator":
		return symbols.KindEnumConstantDecl
	default:
		return symbols.KindOther
	}
}

func (c *cursor) DisplayName() string {
	if name := c.node.ChildByFieldName("name"); name != nil {
		return name.Utf8Text(c.u.src)
	}
	if c.node.Kind() == "enum_specifier" {
		return c.u.typedefs[c.node.StartByte()]
	}
	return ""
}

func (c *cursor) ConstantValue() (int64, bool) {
	if c.node.Kind() != "enumerator" {
		return 0, false
	}
	v, ok := c.u.values[c.node.StartByte()]
	return v, ok
}

func (c *cursor) Position() symbols.Position {
	p := c.node.StartPosition()
	return symbols.Position{Line: int(p.Row) + 1, Column: int(p.Column)}
}

func (c *cursor) VisitChildren(fn func(symbols.Cursor) symbols.VisitResult) {
	count := c.node.NamedChildCount()
	for i := uint(0); i < count; i++ {
		child := c.node.NamedChild(i)
		if child == nil || (child.Kind() == "enumerator" && c.u.inactive[child.StartByte()]) {
			continue
		}
		if fn(&cursor{node: child, u: c.u}) == symbols.VisitBreak {
			return
		}
	}
}
