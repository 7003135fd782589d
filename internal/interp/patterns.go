package interp

import "github.com/cwbudde/ki/internal/ast"

// bindPattern is the irrefutable form used by let/for/top-level let: the
// checker already verified the pattern cannot fail against val's type, so
// any mismatch here is a bug, not a user-facing match failure.
func (in *Interp) bindPattern(pat ast.Pattern, val Value, env *Environment) {
	if !in.matchPattern(pat, val, env) {
		panic(rtErr(ErrMatchFailed, pat.Span(), "irrefutable pattern failed to bind"))
	}
}

// matchPattern tests val against pat, binding any names pat introduces
// into env as a side effect of a successful match. Bindings made during a
// failed match are harmless: the caller discards env on failure (match
// arms each get a fresh child environment).
func (in *Interp) matchPattern(pat ast.Pattern, val Value, env *Environment) bool {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		return true
	case *ast.RestPattern:
		return true
	case *ast.IdentPattern:
		env.Define(p.Name, val)
		return true
	case *ast.TypedPattern:
		return in.matchPattern(p.Inner, val, env)
	case *ast.LiteralPattern:
		lit := in.Eval(p.Value, env)
		return valuesEqual(lit, val)
	case *ast.ConstructorPattern:
		return in.matchConstructorPattern(p, val, env)
	case *ast.RecordPattern:
		return in.matchRecordPattern(p, val, env)
	case *ast.TuplePattern:
		tv, ok := val.(TupleValue)
		if !ok || len(tv.Elems) != len(p.Elems) {
			return false
		}
		for i, sub := range p.Elems {
			if !in.matchPattern(sub, tv.Elems[i], env) {
				return false
			}
		}
		return true
	case *ast.OrPattern:
		for _, alt := range p.Alternatives {
			if in.matchPattern(alt, val, env) {
				return true
			}
		}
		return false
	case *ast.GuardedPattern:
		if !in.matchPattern(p.Inner, val, env) {
			return false
		}
		return asBool(in.Eval(p.Guard, env))
	case *ast.RangePattern:
		return in.matchRangePattern(p, val, env)
	}
	return false
}

func (in *Interp) matchConstructorPattern(p *ast.ConstructorPattern, val Value, env *Environment) bool {
	vv, ok := val.(*VariantValue)
	if !ok || vv.Name != p.Name {
		return false
	}
	if len(p.Positional) > 0 {
		if len(p.Positional) != len(vv.Positional) {
			return false
		}
		for i, sub := range p.Positional {
			if !in.matchPattern(sub, vv.Positional[i], env) {
				return false
			}
		}
		return true
	}
	for _, f := range p.Named {
		fv, ok := vv.Named[f.Name]
		if !ok {
			return false
		}
		if !in.matchPattern(f.Pattern, fv, env) {
			return false
		}
	}
	return true
}

func (in *Interp) matchRecordPattern(p *ast.RecordPattern, val Value, env *Environment) bool {
	rv, ok := val.(*RecordValue)
	if !ok {
		return false
	}
	if p.TypeName != "" && rv.TypeName != p.TypeName {
		return false
	}
	for _, f := range p.Fields {
		fv, ok := rv.Fields[f.Name]
		if !ok {
			return false
		}
		if !in.matchPattern(f.Pattern, fv, env) {
			return false
		}
	}
	return true
}

func (in *Interp) matchRangePattern(p *ast.RangePattern, val Value, env *Environment) bool {
	var lo, hi int64
	if p.Start != nil {
		lo = asInt(in.Eval(p.Start, env))
	}
	if p.End != nil {
		hi = asInt(in.Eval(p.End, env))
	}
	var cur int64
	switch v := val.(type) {
	case IntValue:
		cur = v.Val
	case CharValue:
		cur = int64(v.Val)
	default:
		return false
	}
	if p.Inclusive {
		return cur >= lo && cur <= hi
	}
	return cur >= lo && cur < hi
}
