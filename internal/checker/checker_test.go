package checker

import (
	"testing"

	"github.com/cwbudde/ki/internal/ast"
	"github.com/cwbudde/ki/internal/diag"
	"github.com/cwbudde/ki/internal/loader"
	"github.com/cwbudde/ki/internal/parser"
	"github.com/cwbudde/ki/internal/resolver"
	"github.com/stretchr/testify/require"
)

func checkSrc(t *testing.T, src string) (*Info, bool, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag("test.ki")
	prog := parser.New(src, bag).ParseProgram()
	require.False(t, bag.HasErrors(), "unexpected parse diagnostics: %v", bag.Items)

	ld := loader.New(t.TempDir(), bag)
	res, ok := resolver.Resolve(prog, bag, ld)
	require.True(t, ok, "unexpected resolver diagnostics: %v", bag.Items)

	info, chkOK := Check(bag, res)
	return info, chkOK, bag
}

// TestNonExhaustiveMatch covers spec scenario 6: a match over a closed sum
// type missing a variant is a type-checker error, not a runtime one.
func TestNonExhaustiveMatch(t *testing.T) {
	_, ok, bag := checkSrc(t, `type Color = Red | Green | Blue
fn describe(c: Color) -> string {
	match c {
		Red => { return "r" }
		Green => { return "g" }
	}
}`)
	require.False(t, ok)

	var found bool
	for _, d := range bag.Errors() {
		if d.Message == "match is not exhaustive: missing case(s) Blue" {
			found = true
		}
	}
	require.True(t, found, "expected exhaustiveness diagnostic, got %v", bag.Errors())
}

// TestExhaustiveMatchPasses is the positive counterpart: covering every
// variant must not trip the exhaustiveness check.
func TestExhaustiveMatchPasses(t *testing.T) {
	_, ok, bag := checkSrc(t, `type Color = Red | Green | Blue
fn describe(c: Color) -> string {
	match c {
		Red => { return "r" }
		Green => { return "g" }
		Blue => { return "b" }
	}
}`)
	require.True(t, ok, "unexpected diagnostics: %v", bag.Items)
}

// TestEffectDisciplineViolation covers spec scenario 7: a pure function
// cannot call an effectful std primitive.
func TestEffectDisciplineViolation(t *testing.T) {
	_, ok, bag := checkSrc(t, `fn bad() -> i32 { std.io.println("x") return 0 }`)
	require.False(t, ok)

	var found bool
	for _, d := range bag.Errors() {
		if d.Message == "cannot call an effect function from a pure function" {
			found = true
		}
	}
	require.True(t, found, "expected effect-discipline diagnostic, got %v", bag.Errors())
}

// TestEffectFuncMayCallEffects is the positive counterpart.
func TestEffectFuncMayCallEffects(t *testing.T) {
	_, ok, bag := checkSrc(t, `effect fn good() -> i32 { std.io.println("x") return 0 }`)
	require.True(t, ok, "unexpected diagnostics: %v", bag.Items)
}

// TestTypePreservation checks spec §8's type-preservation property: the
// checker records a resolved type for every typed expression, and integer
// literals default to i32 absent a suffix.
func TestTypePreservation(t *testing.T) {
	info, ok, bag := checkSrc(t, `fn main() -> i32 { return 1 + 2 }`)
	require.True(t, ok, "unexpected diagnostics: %v", bag.Items)

	var found bool
	for expr, typ := range info.ExprTypes {
		if _, isBinOp := expr.(*ast.Binary); isBinOp {
			require.Equal(t, "i32", typ.String())
			found = true
		}
	}
	require.True(t, found, "expected a typed BinaryExpr in ExprTypes")
}
