package treesitter

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesdx/hdrenum/internal/symbols"
)

type enumInfo struct {
	name   string
	consts []constInfo
}

type constInfo struct {
	name  string
	value int64
	ok    bool
}

// enumsIn parses src and returns every enum declaration with its constants,
// walking the cursor tree the way the collector does.
func enumsIn(t *testing.T, opts Options, src string) []enumInfo {
	t.Helper()
	p, err := NewProvider(opts)
	require.NoError(t, err)

	u, err := p.ParseSource("test.h", []byte(src))
	require.NoError(t, err)
	defer u.Close()

	var out []enumInfo
	var walk func(c symbols.Cursor, cur *enumInfo)
	walk = func(c symbols.Cursor, cur *enumInfo) {
		c.VisitChildren(func(child symbols.Cursor) symbols.VisitResult {
			switch child.Kind() {
			case symbols.KindEnumDecl:
				out = append(out, enumInfo{name: child.DisplayName()})
				walk(child, &out[len(out)-1])
				return symbols.VisitContinue
			case symbols.KindEnumConstantDecl:
				v, ok := child.ConstantValue()
				cur.consts = append(cur.consts, constInfo{child.DisplayName(), v, ok})
			}
			walk(child, cur)
			return symbols.VisitContinue
		})
	}
	walk(u.Root(), nil)
	return out
}

func values(e enumInfo) []int64 {
	var vs []int64
	for _, c := range e.consts {
		vs = append(vs, c.value)
	}
	return vs
}

func TestProviderFindsEnums(t *testing.T) {
	got := enumsIn(t, Options{}, `
enum Status { STATUS_OK = 0, STATUS_FAIL = 1, STATUS_RETRY = 10 };
enum Color { RED, GREEN, BLUE };
`)
	require.Len(t, got, 2)
	assert.Equal(t, "Status", got[0].name)
	assert.Equal(t, []constInfo{{"STATUS_OK", 0, true}, {"STATUS_FAIL", 1, true}, {"STATUS_RETRY", 10, true}}, got[0].consts)
	assert.Equal(t, "Color", got[1].name)
	assert.Equal(t, []int64{0, 1, 2}, values(got[1]))
}

func TestProviderImplicitValues(t *testing.T) {
	got := enumsIn(t, Options{}, `enum E { A = 5, B, C, D = -2, E2, F = 0x10, G };`)
	require.Len(t, got, 1)
	assert.Equal(t, []int64{5, 6, 7, -2, -1, 16, 17}, values(got[0]))
}

func TestProviderConstantExpressions(t *testing.T) {
	got := enumsIn(t, Options{}, `
#define BASE 0x100
#define SHIFTED (BASE << 2)
enum Flags {
	F_NONE = 0,
	F_A = 1 << 0,
	F_B = 1u << 1,
	F_AB = F_A | F_B,
	F_MASK = ~0 & 0xff,
	F_CHAR = 'A',
	F_NL = '\n',
	F_OCT = 010,
	F_BIN = 0b101,
	F_MACRO = BASE + 1,
	F_NESTED = SHIFTED,
	F_COND = (F_A > 0) ? 7 : 9,
	F_CAST = (int)3,
	F_NEG = -(4 * 2),
	F_LOGIC = !0 && 1,
};`)
	require.Len(t, got, 1)
	assert.Equal(t,
		[]int64{0, 1, 2, 3, 255, 65, 10, 8, 5, 257, 1024, 7, 3, -8, 1},
		values(got[0]))
	for _, c := range got[0].consts {
		assert.True(t, c.ok, c.name)
	}
}

func TestProviderReferencesEarlierEnum(t *testing.T) {
	got := enumsIn(t, Options{}, `
enum A { A_FIRST = 3, A_LAST = 9 };
enum B { B_START = A_LAST + 1, B_NEXT };
`)
	require.Len(t, got, 2)
	assert.Equal(t, []int64{10, 11}, values(got[1]))
}

func TestProviderUnknownValues(t *testing.T) {
	got := enumsIn(t, Options{}, `
enum U { U_A = sizeof(int), U_B, U_C = 4, U_D = missing_symbol, U_E = 1 / 0, U_F = 7 };
`)
	require.Len(t, got, 1)
	oks := make([]bool, len(got[0].consts))
	for i, c := range got[0].consts {
		oks[i] = c.ok
	}
	assert.Equal(t, []bool{false, false, true, false, false, true}, oks)
	assert.Equal(t, int64(4), got[0].consts[2].value)
	assert.Equal(t, int64(7), got[0].consts[5].value)
}

func TestProviderNarrowsToInt32(t *testing.T) {
	got := enumsIn(t, Options{}, `enum W { W_HIGH = 0x80000000, W_ALL = 0xFFFFFFFF, W_BIG = 0x100000000 };`)
	require.Len(t, got, 1)
	c := got[0].consts
	assert.Equal(t, constInfo{"W_HIGH", -2147483648, true}, c[0])
	assert.Equal(t, constInfo{"W_ALL", -1, true}, c[1])
	assert.False(t, c[2].ok)
}

func TestProviderConditionalElse(t *testing.T) {
	got := enumsIn(t, Options{}, `
enum Fmt {
#if BIG
	FMT_X = 5,
#else
	FMT_X = 6,
#endif
	FMT_Y
};
`)
	require.Len(t, got, 1)
	assert.Equal(t, []constInfo{{"FMT_X", 6, true}, {"FMT_Y", 7, true}}, got[0].consts)
}

func TestProviderConditionalIfdef(t *testing.T) {
	got := enumsIn(t, Options{}, `
#define HAVE_EXTRA
enum Opt {
	OPT_A,
#ifdef HAVE_EXTRA
	OPT_B,
#endif
#ifndef HAVE_EXTRA
	OPT_NO,
#endif
#ifdef MISSING
	OPT_GONE,
#endif
	OPT_C,
};
`)
	require.Len(t, got, 1)
	assert.Equal(t, []constInfo{{"OPT_A", 0, true}, {"OPT_B", 1, true}, {"OPT_C", 2, true}}, got[0].consts)
}

func TestProviderConditionalElif(t *testing.T) {
	got := enumsIn(t, Options{}, `
#define LEVEL 2
enum Lvl {
#if LEVEL == 1
	LVL_ONE = 1,
#elif defined(LEVEL) && LEVEL > 1
	LVL_MANY = 10,
#else
	LVL_NONE = 0,
#endif
	LVL_NEXT,
};
`)
	require.Len(t, got, 1)
	assert.Equal(t, []constInfo{{"LVL_MANY", 10, true}, {"LVL_NEXT", 11, true}}, got[0].consts)
}

func TestProviderOverflowIsUnknown(t *testing.T) {
	got := enumsIn(t, Options{}, `
enum O {
	O_MUL = 0x100000000 * 0x100000000,
	O_ADD = 0x7fffffffffffffff + 1,
	O_SHL = 1 << 63,
	O_SUB = -0x7fffffffffffffff - 2,
	O_OK = 3
};
`)
	require.Len(t, got, 1)
	oks := make([]bool, len(got[0].consts))
	for i, c := range got[0].consts {
		oks[i] = c.ok
	}
	assert.Equal(t, []bool{false, false, false, false, true}, oks)
	assert.Equal(t, int64(3), got[0].consts[4].value)
}

func TestCheckedArithmetic(t *testing.T) {
	tests := []struct {
		name string
		fn   func(a, b int64) (int64, bool)
		a, b int64
		want int64
		ok   bool
	}{
		{"add", addInt64, 2, 3, 5, true},
		{"add overflow", addInt64, math.MaxInt64, 1, 0, false},
		{"add underflow", addInt64, math.MinInt64, -1, 0, false},
		{"sub", subInt64, 2, 5, -3, true},
		{"sub overflow", subInt64, math.MinInt64, 1, 0, false},
		{"mul", mulInt64, -4, 6, -24, true},
		{"mul zero", mulInt64, 0, math.MinInt64, 0, true},
		{"mul overflow", mulInt64, 1 << 32, 1 << 32, 0, false},
		{"mul min by -1", mulInt64, math.MinInt64, -1, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.fn(tt.a, tt.b)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestProviderNestedScopes(t *testing.T) {
	got := enumsIn(t, Options{}, `
#ifdef HAVE_THING
enum Guarded { G_ONE = 1 };
#endif
struct holder {
	enum Inner { IN_X, IN_Y } field;
};
void f(void) {
	enum Local { L_Q = 4 } local;
}
`)
	var names []string
	for _, e := range got {
		names = append(names, e.name)
	}
	assert.Equal(t, []string{"Guarded", "Inner", "Local"}, names)
}

func TestProviderAnonymousAndTypedef(t *testing.T) {
	src := `
typedef enum { MODE_ON, MODE_OFF } Mode;
enum { LOOSE_A };
typedef enum Named { N_A } NamedAlias;
`
	plain := enumsIn(t, Options{}, src)
	require.Len(t, plain, 3)
	assert.Equal(t, "", plain[0].name)
	assert.Equal(t, "", plain[1].name)
	assert.Equal(t, "Named", plain[2].name)

	named := enumsIn(t, Options{TypedefNames: true}, src)
	require.Len(t, named, 3)
	assert.Equal(t, "Mode", named[0].name)
	assert.Equal(t, "", named[1].name)
	assert.Equal(t, "Named", named[2].name)
}

func TestProviderForwardDeclarationHasNoConstants(t *testing.T) {
	got := enumsIn(t, Options{}, `enum Fwd; void g(enum Fwd f);`)
	require.NotEmpty(t, got)
	for _, e := range got {
		assert.Equal(t, "Fwd", e.name)
		assert.Empty(t, e.consts)
	}
}

func TestProviderParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.h")
	require.NoError(t, os.WriteFile(path, []byte("enum Only { ONLY_A = 2 };\n"), 0o644))

	p, err := NewProvider(Options{})
	require.NoError(t, err)
	u, err := p.Parse(path)
	require.NoError(t, err)
	assert.Equal(t, symbols.KindOther, u.Root().Kind())
	require.NoError(t, u.Close())
	require.NoError(t, u.Close())
}

func TestProviderHasErrors(t *testing.T) {
	p, err := NewProvider(Options{})
	require.NoError(t, err)

	good, err := p.ParseSource("good.h", []byte("enum A { A_X };\n"))
	require.NoError(t, err)
	defer good.Close()
	assert.False(t, good.HasErrors())

	bad, err := p.ParseSource("bad.h", []byte("enum A { A_X = };\nint (;\n"))
	require.NoError(t, err)
	defer bad.Close()
	assert.True(t, bad.HasErrors())
}

func TestProviderMissingFile(t *testing.T) {
	p, err := NewProvider(Options{})
	require.NoError(t, err)
	_, err = p.Parse(filepath.Join(t.TempDir(), "nope.h"))
	assert.Error(t, err)
}

func TestProviderPositions(t *testing.T) {
	p, err := NewProvider(Options{})
	require.NoError(t, err)
	u, err := p.ParseSource("pos.h", []byte("\n\n  enum P { P_A };\n"))
	require.NoError(t, err)
	defer u.Close()

	decl := findKind(u.Root(), symbols.KindEnumDecl)
	require.NotNil(t, decl)
	pos := decl.Position()
	assert.Equal(t, symbols.Position{Line: 3, Column: 2}, pos)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"0", 0, true},
		{"42", 42, true},
		{"42u", 42, true},
		{"42UL", 42, true},
		{"0x1F", 31, true},
		{"0XffLL", 255, true},
		{"017", 15, true},
		{"0b11", 3, true},
		{"1'000", 1000, true},
		{"1.5", 0, false},
		{"1e3", 0, false},
		{"0xFFFFFFFFFFFFFFFF", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseNumber(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}

func TestParseChar(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{`'a'`, 'a', true},
		{`'\n'`, 10, true},
		{`'\0'`, 0, true},
		{`'\x1b'`, 27, true},
		{`'\177'`, 127, true},
		{`'\''`, 39, true},
		{`L'z'`, 'z', true},
		{`''`, 0, false},
		{`'ab'`, 0, false},
	}
	for _, tt := range tests {
		got, ok := parseChar(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}

func findKind(c symbols.Cursor, kind symbols.Kind) symbols.Cursor {
	var found symbols.Cursor
	c.VisitChildren(func(child symbols.Cursor) symbols.VisitResult {
		if child.Kind() == kind {
			found = child
		} else {
			found = findKind(child, kind)
		}
		if found != nil {
			return symbols.VisitBreak
		}
		return symbols.VisitContinue
	})
	return found
}
