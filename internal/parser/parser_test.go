package parser

import (
	"testing"

	"github.com/cwbudde/ki/internal/ast"
	"github.com/cwbudde/ki/internal/diag"
	"github.com/stretchr/testify/require"
)

func TestParseFuncDecl(t *testing.T) {
	bag := diag.NewBag("test.ki")
	p := New("fn factorial(n: i32) -> i32 { if n <= 1 { return 1 } return n * factorial(n - 1) }", bag)
	prog := p.ParseProgram()

	require.False(t, bag.HasErrors(), "unexpected parse diagnostics: %v", bag.Items)
	require.Len(t, prog.Decls, 1)

	fn, ok := prog.Decls[0].(*ast.FuncDecl)
	require.True(t, ok, "expected *ast.FuncDecl, got %T", prog.Decls[0])
	require.Equal(t, "factorial", fn.Name)
	require.False(t, fn.Effect)
	require.Len(t, fn.Params, 1)
	require.Equal(t, "n", fn.Params[0].Name)
	require.Len(t, fn.Body.Stmts, 2)
}

func TestParseEffectFunc(t *testing.T) {
	bag := diag.NewBag("test.ki")
	p := New("effect fn main() -> i32 { std.io.println(\"hi\") return 0 }", bag)
	prog := p.ParseProgram()

	require.False(t, bag.HasErrors())
	require.Len(t, prog.Decls, 1)
	fn := prog.Decls[0].(*ast.FuncDecl)
	require.True(t, fn.Effect)
}

func TestParseSumType(t *testing.T) {
	bag := diag.NewBag("test.ki")
	p := New("type Color = Red | Green | Blue", bag)
	prog := p.ParseProgram()

	require.False(t, bag.HasErrors())
	require.Len(t, prog.Decls, 1)
	td := prog.Decls[0].(*ast.TypeDecl)
	require.Equal(t, ast.SumType, td.Kind)
	require.Len(t, td.Variants, 3)
	require.Equal(t, "Red", td.Variants[0].Name)
	require.Equal(t, "Blue", td.Variants[2].Name)
}

func TestParseModuleAndImport(t *testing.T) {
	bag := diag.NewBag("test.ki")
	p := New("module a.b\nimport c.d.{ Foo, Bar as Baz }\n", bag)
	prog := p.ParseProgram()

	require.False(t, bag.HasErrors())
	require.NotNil(t, prog.Module)
	require.Equal(t, []string{"a", "b"}, prog.Module.Path)
	require.Len(t, prog.Imports, 1)
	require.Equal(t, []string{"c", "d"}, prog.Imports[0].Path)
	require.Len(t, prog.Imports[0].Items, 2)
	require.Equal(t, "Bar", prog.Imports[0].Items[1].Name)
	require.Equal(t, "Baz", prog.Imports[0].Items[1].Alias)
}

func TestParseErrorRecoversAndReports(t *testing.T) {
	bag := diag.NewBag("test.ki")
	p := New("fn broken(", bag)
	p.ParseProgram()
	require.True(t, bag.HasErrors(), "expected a parse diagnostic for an unterminated parameter list")
}

func TestParseMatchStatement(t *testing.T) {
	bag := diag.NewBag("test.ki")
	src := `fn main() -> i32 {
	let xs: List[(i32, i32)] = Cons((1, 10), Cons((2, 20), Nil))
	match xs {
		Cons(e, r) => { return e.0 }
		Nil => { return 0 }
	}
}`
	p := New(src, bag)
	prog := p.ParseProgram()
	require.False(t, bag.HasErrors(), "unexpected diagnostics: %v", bag.Items)
	require.Len(t, prog.Decls, 1)

	fn := prog.Decls[0].(*ast.FuncDecl)
	require.Len(t, fn.Body.Stmts, 2)

	match, ok := fn.Body.Stmts[1].(*ast.MatchStmt)
	require.True(t, ok, "expected *ast.MatchStmt, got %T", fn.Body.Stmts[1])
	require.Len(t, match.Arms, 2)
}
