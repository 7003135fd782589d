package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/ki/internal/ast"
	"github.com/cwbudde/ki/internal/diag"
	"github.com/cwbudde/ki/internal/loader"
	"github.com/cwbudde/ki/internal/parser"
	"github.com/stretchr/testify/require"
)

func parseSrc(t *testing.T, src string) (*ast.Program, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag("test.ki")
	p := parser.New(src, bag)
	prog := p.ParseProgram()
	require.False(t, bag.HasErrors(), "unexpected parse diagnostics: %v", bag.Items)
	return prog, bag
}

// TestResolveUndefinedSymbol covers spec scenario 5: a reference to an
// undeclared name is a resolver error, not a checker one.
func TestResolveUndefinedSymbol(t *testing.T) {
	prog, bag := parseSrc(t, `fn main() -> i64 { let x: i64 = undefined_var return x }`)
	ld := loader.New(t.TempDir(), bag)

	_, ok := Resolve(prog, bag, ld)
	require.False(t, ok)
	require.True(t, bag.HasErrors())

	var found bool
	for _, d := range bag.Errors() {
		if d.Message == "undefined symbol 'undefined_var'" {
			found = true
		}
	}
	require.True(t, found, "expected 'undefined symbol' diagnostic, got %v", bag.Errors())
}

// TestResolveShadowing covers the shadowing property of spec §8: an inner
// scope's binding of the same name resolves references in its body to the
// inner symbol, not the outer one.
func TestResolveShadowing(t *testing.T) {
	prog, bag := parseSrc(t, `fn main() -> i32 {
	let x: i32 = 1
	{
		let x: i32 = 2
		return x
	}
}`)
	ld := loader.New(t.TempDir(), bag)
	info, ok := Resolve(prog, bag, ld)
	require.True(t, ok, "unexpected diagnostics: %v", bag.Items)

	var innerID, outerID int
	for _, sym := range info.Table.All() {
		if sym == nil || sym.Name != "x" {
			continue
		}
		if outerID == 0 {
			outerID = int(sym.ID)
		} else {
			innerID = int(sym.ID)
		}
	}
	require.NotZero(t, outerID)
	require.NotZero(t, innerID)
	require.NotEqual(t, outerID, innerID, "shadowed declarations must be distinct symbols")
}

// TestResolveSoundness checks that every resolved identifier reference
// points at a symbol present in the table. Info does not record each
// reference's own scope, so the test does not check that the symbol's
// scope is an ancestor of it.
func TestResolveSoundness(t *testing.T) {
	prog, bag := parseSrc(t, `fn add(a: i32, b: i32) -> i32 { return a + b }
fn main() -> i32 { return add(1, 2) }`)
	ld := loader.New(t.TempDir(), bag)
	info, ok := Resolve(prog, bag, ld)
	require.True(t, ok, "unexpected diagnostics: %v", bag.Items)
	require.NotEmpty(t, info.Idents)

	for ident, symID := range info.Idents {
		sym := info.Table.Symbol(symID)
		require.NotNil(t, sym, "identifier %q resolved to a missing symbol", ident.Name)
	}
}

// TestResolvePrivateImport covers spec scenario 8: importing a symbol that
// was declared without `pub` from another module is a resolver error.
func TestResolvePrivateImport(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a"), 0o755))
	lib := "module a.b\nfn Foo() -> i32 { return 1 }\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "b.ki"), []byte(lib), 0o644))

	prog, bag := parseSrc(t, `import a.b.{ Foo }
fn main() -> i32 { return Foo() }`)
	ld := loader.New(root, bag)

	_, ok := Resolve(prog, bag, ld)
	require.False(t, ok)

	var found bool
	for _, d := range bag.Errors() {
		if d.Message == "cannot import private symbol 'Foo'" {
			found = true
		}
	}
	require.True(t, found, "expected 'cannot import private symbol' diagnostic, got %v", bag.Errors())
}
