package checker

import (
	"github.com/cwbudde/ki/internal/ast"
	"github.com/cwbudde/ki/internal/diag"
	"github.com/cwbudde/ki/internal/types"
)

// checkExhaustive reports a missing case for a match over a closed subject
// type, per spec §4.4's exhaustiveness requirement. It is necessarily
// conservative: it recognizes an unconditional catch-all (wildcard or bare
// identifier pattern, with no guard) and, failing that, enumerates the
// named cases a sum/bool/Option/Result/List subject requires; any other
// subject shape (numeric, string, record, tuple) has no finite case set
// and is accepted as long as at least one arm is present.
func (c *Checker) checkExhaustive(span diag.Span, subject types.Type, arms []ast.MatchArm) {
	if types.IsError(subject) {
		return
	}
	if len(arms) == 0 {
		c.errf(span, "match has no arms")
		return
	}
	if hasCatchAll(arms) {
		return
	}

	var required []string
	switch s := subject.(type) {
	case types.Named:
		if s.Def.Kind != types.SumDef {
			return
		}
		for _, v := range s.Def.Variants {
			required = append(required, v.Name)
		}
	case types.Option:
		required = []string{"Some", "None"}
	case types.Result:
		required = []string{"Ok", "Err"}
	case types.List:
		required = []string{"Cons", "Nil"}
	case types.Primitive:
		if s.Name != "bool" {
			return
		}
		required = []string{"true", "false"}
	default:
		return
	}

	covered := map[string]bool{}
	for _, arm := range arms {
		collectCovered(arm.Pattern, covered)
	}
	var missing []string
	for _, name := range required {
		if !covered[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		c.errf(span, "match is not exhaustive: missing case(s) %s", joinNames(missing))
	}
}

func hasCatchAll(arms []ast.MatchArm) bool {
	for _, arm := range arms {
		if arm.Guard != nil {
			continue
		}
		switch arm.Pattern.(type) {
		case *ast.WildcardPattern, *ast.IdentPattern:
			return true
		}
	}
	return false
}

// collectCovered records which named case(s) pat rules out of the
// "missing" set: a constructor/literal pattern names its case directly, an
// or-pattern covers every alternative's case, a typed pattern is judged by
// its inner pattern, and anything else (binding, guarded) is conservatively
// treated as not deciding a case.
func collectCovered(pat ast.Pattern, covered map[string]bool) {
	switch p := pat.(type) {
	case *ast.ConstructorPattern:
		covered[p.Name] = true
	case *ast.LiteralPattern:
		if b, ok := p.Value.(*ast.BoolLit); ok {
			if b.Value {
				covered["true"] = true
			} else {
				covered["false"] = true
			}
		}
	case *ast.OrPattern:
		for _, alt := range p.Alternatives {
			collectCovered(alt, covered)
		}
	case *ast.GuardedPattern:
		// a guard may fail at runtime, so it never decides a case on its own
	case *ast.TypedPattern:
		collectCovered(p.Inner, covered)
	}
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}
