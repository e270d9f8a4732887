package treesitter

import (
	"fmt"
	"os"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mesdx/hdrenum/internal/symbols"
)

// Options tune how declarations are reported.
type Options struct {
	// TypedefNames names an anonymous enum after the typedef that declares
	// it, e.g. "typedef enum { A, B } Mode;" becomes Mode.
	TypedefNames bool
}

// Provider parses C headers with tree-sitter.
type Provider struct {
	opts Options
}

// NewProvider returns a provider, failing if the C grammar is unavailable.
func NewProvider(opts Options) (*Provider, error) {
	if err := VerifyLanguages(RequiredLanguages()); err != nil {
		return nil, err
	}
	return &Provider{opts: opts}, nil
}

// Parse reads and parses path.
func (p *Provider) Parse(path string) (symbols.Unit, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return p.ParseSource(path, src)
}

// ParseSource parses src as the contents of path. Enum constant values are
// computed here, before any cursor is handed out.
func (p *Provider) ParseSource(path string, src []byte) (*Unit, error) {
	lang, err := LoadLanguage(LanguageForPath(path))
	if err != nil {
		return nil, fmt.Errorf("load language: %w", err)
	}

	parser := tree_sitter.NewParser()
	if err := parser.SetLanguage(lang.TSLanguage()); err != nil {
		parser.Close()
		return nil, fmt.Errorf("set language: %w", err)
	}

	tree := parser.Parse(src, nil)
	if tree == nil {
		parser.Close()
		return nil, fmt.Errorf("parse %s: no tree produced", path)
	}

	u := &Unit{
		src:      src,
		parser:   parser,
		tree:     tree,
		values:   make(map[uint]int64),
		inactive: make(map[uint]bool),
		typedefs: make(map[uint]string),
	}
	u.resolve(p.opts)
	return u, nil
}

// Unit is one parsed file. Close releases the tree and the parser.
type Unit struct {
	src    []byte
	parser *tree_sitter.Parser
	tree   *tree_sitter.Tree

	// values maps an enumerator's start byte to its computed value.
	values   map[uint]int64
	// inactive holds the start bytes of enumerators in dropped #if arms.
	inactive map[uint]bool
	// typedefs maps an anonymous enum_specifier's start byte to its typedef name.
	typedefs map[uint]string

	// scratch trees built while evaluating macro bodies
	scratch []*tree_sitter.Tree
}

// Root returns the translation unit cursor.
func (u *Unit) Root() symbols.Cursor {
	return &cursor{node: u.tree.RootNode(), u: u}
}

// HasErrors reports whether the syntax tree contains error nodes.
func (u *Unit) HasErrors() bool {
	return u.tree != nil && u.tree.RootNode().HasError()
}

// Close frees the tree-sitter resources. It is safe to call more than once.
func (u *Unit) Close() error {
	for _, t := range u.scratch {
		t.Close()
	}
	u.scratch = nil
	if u.tree != nil {
		u.tree.Close()
		u.tree = nil
	}
	if u.parser != nil {
		u.parser.Close()
		u.parser = nil
	}
	return nil
}

// resolve computes every enumerator value in document order, and the
// typedef names of anonymous enums when requested.
func (u *Unit) resolve(opts Options) {
	root := u.tree.RootNode()
	ev := newEvaluator(u)

	eachNode(root, func(n *tree_sitter.Node) {
		switch n.Kind() {
		case "preproc_def", "preproc_function_def":
			ev.addMacro(n, u.src)
		}
	})

	eachNode(root, func(n *tree_sitter.Node) {
		switch n.Kind() {
		case "enum_specifier":
			if body := n.ChildByFieldName("body"); body != nil {
				ev.resolveEnumerators(body, u.src, u.values, u.inactive)
			}
		case "type_definition":
			if opts.TypedefNames {
				u.recordTypedef(n)
			}
		}
	})
}

func (u *Unit) recordTypedef(n *tree_sitter.Node) {
	typ := n.ChildByFieldName("type")
	if typ == nil || typ.Kind() != "enum_specifier" || typ.ChildByFieldName("name") != nil {
		return
	}
	decl := n.ChildByFieldName("declarator")
	if decl == nil || decl.Kind() != "type_identifier" {
		return
	}
	u.typedefs[typ.StartByte()] = decl.Utf8Text(u.src)
}

// eachNode calls fn for n and every named descendant, in document order.
func eachNode(n *tree_sitter.Node, fn func(*tree_sitter.Node)) {
	fn(n)
	count := n.NamedChildCount()
	for i := uint(0); i < count; i++ {
		if child := n.NamedChild(i); child != nil {
			eachNode(child, fn)
		}
	}
}
