package treesitter

import (
	"math"
	"strconv"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// evaluator computes C integer constant expressions over enum initializers.
// Identifiers resolve to enumerators seen earlier in the file, then to
// object-like macros.
type evaluator struct {
	u      *Unit
	consts map[string]int64

	defined   map[string]bool
	macros    map[string]string
	macroVals map[string]macroResult
	expanding map[string]bool

	// directive is set while evaluating an #if condition, where unknown
	// identifiers are 0 and enumerators are not visible.
	directive     bool
	directiveVals map[string]macroResult
}

type macroResult struct {
	v  int64
	ok bool
}

func newEvaluator(u *Unit) *evaluator {
	return &evaluator{
		u:             u,
		consts:        make(map[string]int64),
		defined:       make(map[string]bool),
		macros:        make(map[string]string),
		macroVals:     make(map[string]macroResult),
		expanding:     make(map[string]bool),
		directiveVals: make(map[string]macroResult),
	}
}

// addMacro records a #define. Function-like macros only count as defined.
func (e *evaluator) addMacro(n *tree_sitter.Node, src []byte) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return
	}
	e.defined[name.Utf8Text(src)] = true
	if n.Kind() != "preproc_def" {
		return
	}
	value := n.ChildByFieldName("value")
	if value == nil {
		return
	}
	body := strings.TrimSpace(value.Utf8Text(src))
	if body == "" {
		return
	}
	e.macros[name.Utf8Text(src)] = body
}

// sequence is the implicit value of the next enumerator.
type sequence struct {
	next int64
	ok   bool
}

// resolveEnumerators assigns a value to every enumerator in list. An
// enumerator without an initializer follows its predecessor; one that
// follows an unknown value is unknown too. Enumerators in conditional arms
// the preprocessor would drop are recorded in inactive and take no value.
func (e *evaluator) resolveEnumerators(list *tree_sitter.Node, src []byte, out map[uint]int64, inactive map[uint]bool) {
	seq := &sequence{ok: true}
	e.resolveItems(list, nil, src, out, inactive, seq, true)
}

// resolveItems walks the enumerators under parent in document order,
// descending into nested conditionals. skip is the parent's alternative
// arm, which resolveConditional handles itself.
func (e *evaluator) resolveItems(parent, skip *tree_sitter.Node, src []byte, out map[uint]int64, inactive map[uint]bool, seq *sequence, active bool) {
	count := parent.NamedChildCount()
	for i := uint(0); i < count; i++ {
		n := parent.NamedChild(i)
		if n == nil || (skip != nil && n.StartByte() == skip.StartByte()) {
			continue
		}
		switch n.Kind() {
		case "enumerator":
			if !active {
				inactive[n.StartByte()] = true
				continue
			}
			e.resolveEnumerator(n, src, out, seq)
		case "preproc_if", "preproc_ifdef":
			e.resolveConditional(n, src, out, inactive, seq, active)
		}
	}
}

// resolveConditional keeps the first arm whose condition holds and marks
// the others inactive. A condition that cannot be evaluated holds.
func (e *evaluator) resolveConditional(n *tree_sitter.Node, src []byte, out map[uint]int64, inactive map[uint]bool, seq *sequence, active bool) {
	taken := !active
	for arm := n; arm != nil; {
		alt := arm.ChildByFieldName("alternative")
		armActive := false
		if !taken {
			armActive = e.condition(arm, src)
			taken = armActive
		}
		e.resolveItems(arm, alt, src, out, inactive, seq, armActive)
		arm = alt
	}
}

func (e *evaluator) resolveEnumerator(n *tree_sitter.Node, src []byte, out map[uint]int64, seq *sequence) {
	v, ok := seq.next, seq.ok
	if init := n.ChildByFieldName("value"); init != nil {
		v, ok = e.eval(init, src)
	}
	if ok {
		v, ok = narrow(v)
	}

	if name := n.ChildByFieldName("name"); name != nil {
		if ok {
			e.consts[name.Utf8Text(src)] = v
		} else {
			delete(e.consts, name.Utf8Text(src))
		}
	}
	if ok {
		out[n.StartByte()] = v
	}
	seq.next, seq.ok = v+1, ok
}

// condition reports whether a conditional arm is kept.
func (e *evaluator) condition(arm *tree_sitter.Node, src []byte) bool {
	switch arm.Kind() {
	case "preproc_else":
		return true
	case "preproc_ifdef", "preproc_elifdef":
		name := arm.ChildByFieldName("name")
		if name == nil {
			return true
		}
		defined := e.defined[name.Utf8Text(src)]
		if kw := arm.Child(0); kw != nil && strings.HasSuffix(kw.Kind(), "ndef") {
			return !defined
		}
		return defined
	case "preproc_if", "preproc_elif":
		cond := arm.ChildByFieldName("condition")
		if cond == nil {
			return true
		}
		e.directive = true
		v, ok := e.eval(cond, src)
		e.directive = false
		return !ok || v != 0
	}
	return true
}

// narrow reduces v to a 32-bit int the way a C int cast does. Values that
// do not fit in 32 bits at all are rejected.
func narrow(v int64) (int64, bool) {
	if v < math.MinInt32 || v > math.MaxUint32 {
		return 0, false
	}
	return int64(int32(uint32(v))), true
}

func (e *evaluator) eval(n *tree_sitter.Node, src []byte) (int64, bool) {
	switch n.Kind() {
	case "number_literal":
		return parseNumber(n.Utf8Text(src))
	case "char_literal":
		return parseChar(n.Utf8Text(src))
	case "true":
		return 1, true
	case "false":
		return 0, true
	case "identifier":
		return e.lookup(n.Utf8Text(src))
	case "parenthesized_expression":
		if inner := firstExpression(n); inner != nil {
			return e.eval(inner, src)
		}
	case "cast_expression":
		if value := n.ChildByFieldName("value"); value != nil {
			return e.eval(value, src)
		}
	case "unary_expression":
		return e.evalUnary(n, src)
	case "binary_expression":
		return e.evalBinary(n, src)
	case "conditional_expression":
		return e.evalConditional(n, src)
	case "preproc_defined":
		if e.directive {
			if name := firstExpression(n); name != nil {
				return boolInt(e.defined[name.Utf8Text(src)]), true
			}
		}
	}
	return 0, false
}

func (e *evaluator) evalUnary(n *tree_sitter.Node, src []byte) (int64, bool) {
	op := n.ChildByFieldName("operator")
	arg := n.ChildByFieldName("argument")
	if op == nil || arg == nil {
		return 0, false
	}
	v, ok := e.eval(arg, src)
	if !ok {
		return 0, false
	}
	switch op.Kind() {
	case "+":
		return v, true
	case "-":
		if v == math.MinInt64 {
			return 0, false
		}
		return -v, true
	case "~":
		return ^v, true
	case "!":
		return boolInt(v == 0), true
	}
	return 0, false
}

func (e *evaluator) evalBinary(n *tree_sitter.Node, src []byte) (int64, bool) {
	op := n.ChildByFieldName("operator")
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	if op == nil || left == nil || right == nil {
		return 0, false
	}
	l, ok := e.eval(left, src)
	if !ok {
		return 0, false
	}
	r, ok := e.eval(right, src)
	if !ok {
		return 0, false
	}

	switch op.Kind() {
	case "+":
		return addInt64(l, r)
	case "-":
		return subInt64(l, r)
	case "*":
		return mulInt64(l, r)
	case "/":
		if r == 0 || (l == math.MinInt64 && r == -1) {
			return 0, false
		}
		return l / r, true
	case "%":
		if r == 0 || (l == math.MinInt64 && r == -1) {
			return 0, false
		}
		return l % r, true
	case "<<":
		if r < 0 || r >= 64 {
			return 0, false
		}
		v := l << uint(r)
		if v>>uint(r) != l {
			return 0, false
		}
		return v, true
	case ">>":
		if r < 0 || r >= 64 {
			return 0, false
		}
		return l >> uint(r), true
	case "&":
		return l & r, true
	case "|":
		return l | r, true
	case "^":
		return l ^ r, true
	case "&&":
		return boolInt(l != 0 && r != 0), true
	case "||":
		return boolInt(l != 0 || r != 0), true
	case "==":
		return boolInt(l == r), true
	case "!=":
		return boolInt(l != r), true
	case "<":
		return boolInt(l < r), true
	case "<=":
		return boolInt(l <= r), true
	case ">":
		return boolInt(l > r), true
	case ">=":
		return boolInt(l >= r), true
	}
	return 0, false
}

func (e *evaluator) evalConditional(n *tree_sitter.Node, src []byte) (int64, bool) {
	cond := n.ChildByFieldName("condition")
	then := n.ChildByFieldName("consequence")
	alt := n.ChildByFieldName("alternative")
	if cond == nil || then == nil || alt == nil {
		return 0, false
	}
	c, ok := e.eval(cond, src)
	if !ok {
		return 0, false
	}
	if c != 0 {
		return e.eval(then, src)
	}
	return e.eval(alt, src)
}

func (e *evaluator) lookup(name string) (int64, bool) {
	if e.directive {
		if !e.defined[name] {
			return 0, true
		}
		return e.expandMacro(name)
	}
	if v, ok := e.consts[name]; ok {
		return v, true
	}
	return e.expandMacro(name)
}

// expandMacro evaluates an object-like macro by parsing its body as the
// initializer of a throwaway enumerator.
func (e *evaluator) expandMacro(name string) (int64, bool) {
	cache := e.macroVals
	if e.directive {
		cache = e.directiveVals
	}
	if r, ok := cache[name]; ok {
		return r.v, r.ok
	}
	body, ok := e.macros[name]
	if !ok || e.expanding[name] || e.u.parser == nil {
		return 0, false
	}
	e.expanding[name] = true
	defer delete(e.expanding, name)

	src := []byte("enum hdrenum_macro { hdrenum_value = " + body + "\n};\n")
	tree := e.u.parser.Parse(src, nil)
	if tree == nil {
		return 0, false
	}
	e.u.scratch = append(e.u.scratch, tree)

	var v int64
	found := false
	ok = false
	eachNode(tree.RootNode(), func(n *tree_sitter.Node) {
		if found || n.Kind() != "enumerator" {
			return
		}
		found = true
		if init := n.ChildByFieldName("value"); init != nil {
			v, ok = e.eval(init, src)
		}
	})
	cache[name] = macroResult{v: v, ok: ok}
	return v, ok
}

func firstExpression(n *tree_sitter.Node) *tree_sitter.Node {
	count := n.NamedChildCount()
	for i := uint(0); i < count; i++ {
		if child := n.NamedChild(i); child != nil && child.Kind() != "comment" {
			return child
		}
	}
	return nil
}

// parseNumber parses a C integer literal: decimal, 0x hex, 0b binary or
// leading-zero octal, with optional u/l suffixes and ' separators.
func parseNumber(text string) (int64, bool) {
	s := strings.ReplaceAll(text, "'", "")
	s = strings.TrimRight(s, "uUlLzZ")
	if s == "" {
		return 0, false
	}

	base := 10
	digits := s
	switch {
	case len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X"):
		base, digits = 16, s[2:]
	case len(s) > 2 && (s[:2] == "0b" || s[:2] == "0B"):
		base, digits = 2, s[2:]
	case len(s) > 1 && s[0] == '0':
		base, digits = 8, s[1:]
	}

	u, err := strconv.ParseUint(digits, base, 64)
	if err != nil || u > math.MaxInt64 {
		return 0, false
	}
	return int64(u), true
}

// parseChar decodes a C character literal such as 'a', '\n', '\x1b' or '\0'.
func parseChar(text string) (int64, bool) {
	start := strings.IndexByte(text, '\'')
	end := strings.LastIndexByte(text, '\'')
	if start < 0 || end <= start+1 {
		return 0, false
	}
	body := text[start+1 : end]

	if body[0] != '\\' {
		r := []rune(body)
		if len(r) != 1 {
			return 0, false
		}
		return int64(r[0]), true
	}

	esc := body[1:]
	if esc == "" {
		return 0, false
	}
	switch esc[0] {
	case 'x':
		v, err := strconv.ParseUint(esc[1:], 16, 32)
		return int64(v), err == nil
	case '0', '1', '2', '3', '4', '5', '6', '7':
		if len(esc) > 3 {
			return 0, false
		}
		v, err := strconv.ParseUint(esc, 8, 32)
		return int64(v), err == nil
	}
	if len(esc) != 1 {
		return 0, false
	}
	switch esc[0] {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case 'a':
		return '\a', true
	case 'b':
		return '\b', true
	case 'f':
		return '\f', true
	case 'v':
		return '\v', true
	case '\\', '\'', '"', '?':
		return int64(esc[0]), true
	}
	return 0, false
}

// addInt64, subInt64 and mulInt64 report ok=false when the result does
// not fit in an int64.
func addInt64(a, b int64) (int64, bool) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, false
	}
	return s, true
}

func subInt64(a, b int64) (int64, bool) {
	d := a - b
	if (b > 0 && d > a) || (b < 0 && d < a) {
		return 0, false
	}
	return d, true
}

func mulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	p := a * b
	if p/b != a {
		return 0, false
	}
	return p, true
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
