package enums

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/mesdx/hdrenum/internal/symbols"
)

// Stats counts what a collection pass did with each enum declaration.
type Stats struct {
	Registered   int // new groupings added to the registry
	Anonymous    int // enum declarations without a name
	Duplicate    int // names already in the registry
	Empty        int // declarations with no usable constants
	UnknownValue int // constants whose value the provider could not compute
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Registered += o.Registered
	s.Anonymous += o.Anonymous
	s.Duplicate += o.Duplicate
	s.Empty += o.Empty
	s.UnknownValue += o.UnknownValue
}

// Collector finds enum declarations under a cursor and registers them.
type Collector struct {
	registry *Registry
	logger   *log.Logger
}

// NewCollector returns a collector that registers into reg. A nil logger
// discards diagnostics.
func NewCollector(reg *Registry, logger *log.Logger) *Collector {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Collector{registry: reg, logger: logger}
}

// Collect walks every descendant of root and registers each named enum
// declaration not already in the registry.
func (c *Collector) Collect(root symbols.Cursor) Stats {
	var stats Stats
	walk(root, func(cur symbols.Cursor) bool {
		if cur.Kind() == symbols.KindEnumDecl {
			c.collectEnum(cur, &stats)
			return false
		}
		return true
	})
	return stats
}

func (c *Collector) collectEnum(decl symbols.Cursor, stats *Stats) {
	name := decl.DisplayName()
	if name == "" {
		stats.Anonymous++
		c.logger.Debug("skipping anonymous enum", "pos", decl.Position())
		return
	}
	if c.registry.Has(name) {
		stats.Duplicate++
		c.logger.Debug("enum already registered", "enum", name, "pos", decl.Position())
		return
	}

	g := &Grouping{Name: name}
	walk(decl, func(cur symbols.Cursor) bool {
		if cur.Kind() != symbols.KindEnumConstantDecl {
			return true
		}
		constName := cur.DisplayName()
		value, ok := cur.ConstantValue()
		if !ok {
			stats.UnknownValue++
			c.logger.Warn("cannot compute enum constant value", "enum", name, "constant", constName, "pos", cur.Position())
			return false
		}
		if constName != "" {
			g.Members = append(g.Members, Member{Name: constName, Value: value})
		}
		return false
	})

	if stripped := TrimCommonPrefix(g.Members); stripped > 0 {
		c.logger.Debug("trimmed common prefix", "enum", name, "bytes", stripped)
	}
	if len(g.Members) == 0 {
		stats.Empty++
		c.logger.Debug("skipping empty enum", "enum", name, "pos", decl.Position())
		return
	}
	c.registry.Insert(g)
	stats.Registered++
}

// walk calls fn for every descendant of cur, parents before children.
// Children of a node are skipped when fn returns false for it.
func walk(cur symbols.Cursor, fn func(symbols.Cursor) bool) {
	cur.VisitChildren(func(child symbols.Cursor) symbols.VisitResult {
		if fn(child) {
			walk(child, fn)
		}
		return symbols.VisitContinue
	})
}
