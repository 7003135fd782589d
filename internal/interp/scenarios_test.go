package interp

import (
	"bytes"
	"testing"

	"github.com/cwbudde/ki/internal/checker"
	"github.com/cwbudde/ki/internal/diag"
	"github.com/cwbudde/ki/internal/loader"
	"github.com/cwbudde/ki/internal/parser"
	"github.com/cwbudde/ki/internal/resolver"
	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/require"
)

// compile runs src through the full front end (parse, resolve, check) the
// same way cmd/ki's runFrontEnd does, failing the test immediately if any
// stage reports a diagnostic the caller didn't expect.
func compile(t *testing.T, src string) (*resolver.Info, *checker.Info, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag("test.ki")
	prog := parser.New(src, bag).ParseProgram()
	require.False(t, bag.HasErrors(), "parse diagnostics: %v", bag.Items)

	ld := loader.New(t.TempDir(), bag)
	res, ok := resolver.Resolve(prog, bag, ld)
	require.True(t, ok, "resolver diagnostics: %v", bag.Items)

	chk, ok := checker.Check(bag, res)
	require.True(t, ok, "checker diagnostics: %v", bag.Items)
	return res, chk, bag
}

// run compiles and executes src, returning the interpreter's Run result.
func run(t *testing.T, src string) (*Interp, Value, error) {
	t.Helper()
	res, chk, _ := compile(t, src)
	in := New(res, chk)
	var out bytes.Buffer
	in.Stdout = &out
	v, err := in.Run()
	return in, v, err
}

// Scenario 1 (spec §8): a bare return of a constant exits with that value.
func TestScenarioReturnConstant(t *testing.T) {
	_, v, err := run(t, `fn main() -> i32 { return 42 }`)
	require.NoError(t, err)
	require.Equal(t, IntValue{Val: 42}, v)
}

// Scenario 2: ordinary (non-tail) recursion computes factorial(5) = 120.
func TestScenarioFactorial(t *testing.T) {
	_, v, err := run(t, `fn factorial(n: i32) -> i32 { if n <= 1 { return 1 } return n * factorial(n - 1) }
fn main() -> i32 { return factorial(5) }`)
	require.NoError(t, err)
	iv, ok := v.(IntValue)
	require.True(t, ok, "expected IntValue, got %T", v)
	require.Equal(t, int64(120), iv.Val)
}

// Scenario 3: countdown recurses via a direct tail call ("return
// countdown(n-1)"). At depth 2000 this would blow maxCallDepth (1024) if
// the tail-call trampoline in call() didn't actually fire for this call
// shape; this test is the only thing standing between that regression
// and a silent pass.
func TestScenarioTailCallDoesNotOverflow(t *testing.T) {
	_, v, err := run(t, `fn countdown(n: i64) -> i64 { if n <= 0 { return 0 } return countdown(n - 1) }
fn main() -> i64 { return countdown(2000) }`)
	require.NoError(t, err)
	iv, ok := v.(IntValue)
	require.True(t, ok, "expected IntValue, got %T", v)
	require.Equal(t, int64(0), iv.Val)
}

// TestTailCallRespectsDepthBound confirms the trampoline's depth guard
// still fires for genuinely non-tail recursion, so the countdown test
// above isn't passing merely because maxCallDepth went unenforced.
func TestTailCallRespectsDepthBound(t *testing.T) {
	_, _, err := run(t, `fn sum(n: i64) -> i64 { if n <= 0 { return 0 } return n + sum(n - 1) }
fn main() -> i64 { return sum(2000) }`)
	require.Error(t, err, "non-tail recursion past maxCallDepth must fail, not overflow the Go stack")

	rerr, ok := err.(*RuntimeError)
	require.True(t, ok, "expected *RuntimeError, got %T", err)
	require.Equal(t, ErrStackOverflow, rerr.Kind)
}

// Scenario 4: pattern matching over a Cons/Nil list, destructuring a tuple
// element out of the head.
func TestScenarioListPatternMatch(t *testing.T) {
	_, v, err := run(t, `fn main() -> i32 {
	let xs: List[(i32, i32)] = Cons((1, 10), Cons((2, 20), Nil))
	match xs {
		Cons(e, r) => { return e.0 }
		Nil => { return 0 }
	}
}`)
	require.NoError(t, err)
	iv, ok := v.(IntValue)
	require.True(t, ok, "expected IntValue, got %T", v)
	require.Equal(t, int64(1), iv.Val)
}

// Scenario 5: an undefined reference is a resolver failure; the program
// never reaches the checker or interpreter.
func TestScenarioUndefinedSymbolFailsResolve(t *testing.T) {
	bag := diag.NewBag("test.ki")
	prog := parser.New(`fn main() -> i64 { let x: i64 = undefined_var return x }`, bag).ParseProgram()
	ld := loader.New(t.TempDir(), bag)
	_, ok := resolver.Resolve(prog, bag, ld)
	require.False(t, ok)

	snaps.MatchSnapshot(t, "undefined_symbol_diagnostic", bag.Errors()[0].Format(false, ""))
}

// Scenario 6: a non-exhaustive match over a closed sum type is a
// type-checker failure.
func TestScenarioNonExhaustiveMatchFailsCheck(t *testing.T) {
	bag := diag.NewBag("test.ki")
	prog := parser.New(`type Color = Red | Green | Blue
fn describe(c: Color) -> string {
	match c {
		Red => { return "r" }
		Green => { return "g" }
	}
}`, bag).ParseProgram()
	ld := loader.New(t.TempDir(), bag)
	res, ok := resolver.Resolve(prog, bag, ld)
	require.True(t, ok, "unexpected resolver diagnostics: %v", bag.Items)

	_, ok = checker.Check(bag, res)
	require.False(t, ok)
	snaps.MatchSnapshot(t, "non_exhaustive_match_diagnostic", bag.Errors()[0].Format(false, ""))
}

// Scenario 7: calling an effect function from a pure function is an
// effect-discipline violation caught by the checker.
func TestScenarioEffectViolationFailsCheck(t *testing.T) {
	bag := diag.NewBag("test.ki")
	prog := parser.New(`fn bad() -> i32 { std.io.println("x") return 0 }`, bag).ParseProgram()
	ld := loader.New(t.TempDir(), bag)
	res, ok := resolver.Resolve(prog, bag, ld)
	require.True(t, ok, "unexpected resolver diagnostics: %v", bag.Items)

	_, ok = checker.Check(bag, res)
	require.False(t, ok)
	snaps.MatchSnapshot(t, "effect_violation_diagnostic", bag.Errors()[0].Format(false, ""))
}

// TestScenarioPrintlnCapturesStdout exercises an effect function's
// observable side effect: std.io.println must write to the interpreter's
// Stdout, not the process's, so embedders (and tests) can capture it.
func TestScenarioPrintlnCapturesStdout(t *testing.T) {
	in, _, err := run(t, `effect fn main() -> i32 { std.io.println("hello") return 0 }`)
	require.NoError(t, err)
	snaps.MatchSnapshot(t, "println_stdout", in.Stdout.(*bytes.Buffer).String())
}
