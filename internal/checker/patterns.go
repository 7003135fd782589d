package checker

import (
	"github.com/cwbudde/ki/internal/ast"
	"github.com/cwbudde/ki/internal/types"
)

// checkPattern recursively types a pattern against subject, binding every
// identifier it introduces (via the resolver's Patterns map) and reporting
// a shape mismatch. Constructor names are resolved here against subject's
// type, the one place the checker has enough information to know which
// sum type's variants are in play (mirrors resolver.bindPattern's note).
func (c *Checker) checkPattern(pat ast.Pattern, subject types.Type) {
	switch p := pat.(type) {
	case *ast.WildcardPattern, *ast.RestPattern:
		// binds nothing
	case *ast.LiteralPattern:
		lit := c.checkExpr(p.Value)
		if !types.IsError(lit) && !types.IsError(subject) && !types.Assignable(subject, lit) {
			c.errf(p.Span(), "pattern literal has type %s, expected %s", lit.String(), subject.String())
		}
	case *ast.IdentPattern:
		if symID, ok := c.res.Patterns[p]; ok {
			c.symbolTypes[symID] = subject
		}
	case *ast.TypedPattern:
		want := c.resolveTypeExpr(p.Type)
		if !types.IsError(subject) && !types.Assignable(want, subject) {
			c.errf(p.Span(), "pattern annotated %s but matched value has type %s", want.String(), subject.String())
		}
		c.bindPattern(p.Inner, want)
	case *ast.ConstructorPattern:
		c.checkConstructorPattern(p, subject)
	case *ast.RecordPattern:
		c.checkRecordPattern(p, subject)
	case *ast.TuplePattern:
		tup, ok := subject.(types.Tuple)
		if !ok {
			if !types.IsError(subject) {
				c.errf(p.Span(), "tuple pattern requires a tuple, got %s", subject.String())
			}
			for _, e := range p.Elems {
				c.bindPattern(e, types.Error{})
			}
			return
		}
		if len(tup.Elems) != len(p.Elems) {
			c.errf(p.Span(), "tuple pattern expects %d element(s), got %d", len(tup.Elems), len(p.Elems))
		}
		for i, e := range p.Elems {
			elemT := types.Type(types.Error{})
			if i < len(tup.Elems) {
				elemT = tup.Elems[i]
			}
			c.bindPattern(e, elemT)
		}
	case *ast.OrPattern:
		for _, alt := range p.Alternatives {
			c.checkPattern(alt, subject)
		}
	case *ast.GuardedPattern:
		c.checkPattern(p.Inner, subject)
		g := c.checkExpr(p.Guard)
		if !types.IsError(g) && !g.Equals(types.Bool) {
			c.errf(p.Guard.Span(), "pattern guard must be bool, got %s", g.String())
		}
	case *ast.RangePattern:
		if p.Start != nil {
			c.checkExpr(p.Start)
		}
		if p.End != nil {
			c.checkExpr(p.End)
		}
	}
}

// checkBuiltinCtorPattern handles spec's built-in sum constructors (Some, None, Ok,
// Err, Cons, Nil) usable as patterns against Option/Result/List subjects
// without a user type declaration backing them.
func (c *Checker) checkBuiltinCtorPattern(p *ast.ConstructorPattern, subject types.Type) bool {
	switch subj := subject.(type) {
	case types.Option:
		switch p.Name {
		case "Some":
			if len(p.Positional) == 1 {
				c.bindPattern(p.Positional[0], subj.Elem)
			} else {
				c.errf(p.Span(), "'Some' expects 1 argument, got %d", len(p.Positional))
			}
			return true
		case "None":
			return true
		}
	case types.Result:
		switch p.Name {
		case "Ok":
			if len(p.Positional) == 1 {
				c.bindPattern(p.Positional[0], subj.Ok)
			} else {
				c.errf(p.Span(), "'Ok' expects 1 argument, got %d", len(p.Positional))
			}
			return true
		case "Err":
			if len(p.Positional) == 1 {
				c.bindPattern(p.Positional[0], subj.Err)
			} else {
				c.errf(p.Span(), "'Err' expects 1 argument, got %d", len(p.Positional))
			}
			return true
		}
	case types.List:
		switch p.Name {
		case "Cons":
			if len(p.Positional) == 2 {
				c.bindPattern(p.Positional[0], subj.Elem)
				c.bindPattern(p.Positional[1], subj)
			} else {
				c.errf(p.Span(), "'Cons' expects 2 arguments, got %d", len(p.Positional))
			}
			return true
		case "Nil":
			return true
		}
	}
	return false
}

func (c *Checker) checkConstructorPattern(p *ast.ConstructorPattern, subject types.Type) {
	if c.checkBuiltinCtorPattern(p, subject) {
		return
	}
	named, ok := subject.(types.Named)
	if !ok {
		if !types.IsError(subject) {
			c.errf(p.Span(), "constructor pattern '%s' requires a sum type, got %s", p.Name, subject.String())
		}
		c.bindConstructorFallback(p)
		return
	}
	var variant types.Variant
	found := false
	for _, v := range named.Def.Variants {
		if v.Name == p.Name {
			variant, found = v, true
			break
		}
	}
	if !found {
		c.errf(p.Span(), "'%s' has no variant '%s'", named.Def.Name, p.Name)
		c.bindConstructorFallback(p)
		return
	}
	subst := genericBindings(named)
	if len(p.Positional) != len(variant.Positional) {
		c.errf(p.Span(), "variant '%s' expects %d argument(s), got %d", p.Name, len(variant.Positional), len(p.Positional))
	}
	for i, sub := range p.Positional {
		want := types.Type(types.Error{})
		if i < len(variant.Positional) {
			want = substitute(variant.Positional[i], subst)
		}
		c.bindPattern(sub, want)
	}
	for _, f := range p.Named {
		want := types.Type(types.Error{})
		for _, vf := range variant.Named {
			if vf.Name == f.Name {
				want = substitute(vf.Type, subst)
				break
			}
		}
		c.bindPattern(f.Pattern, want)
	}
}

func (c *Checker) bindConstructorFallback(p *ast.ConstructorPattern) {
	for _, sub := range p.Positional {
		c.bindPattern(sub, types.Error{})
	}
	for _, f := range p.Named {
		c.bindPattern(f.Pattern, types.Error{})
	}
}

func (c *Checker) checkRecordPattern(p *ast.RecordPattern, subject types.Type) {
	named, ok := subject.(types.Named)
	if !ok {
		if !types.IsError(subject) {
			c.errf(p.Span(), "record pattern requires a record, got %s", subject.String())
		}
		for _, f := range p.Fields {
			c.bindPattern(f.Pattern, types.Error{})
		}
		return
	}
	if p.TypeName != "" && p.TypeName != named.Def.Name {
		c.errf(p.Span(), "record pattern annotated '%s' but matched value has type '%s'", p.TypeName, named.Def.Name)
	}
	subst := genericBindings(named)
	for _, f := range p.Fields {
		field, ok := named.Def.FieldByName(f.Name)
		if !ok {
			c.errf(p.Span(), "'%s' has no field '%s'", named.Def.Name, f.Name)
			c.bindPattern(f.Pattern, types.Error{})
			continue
		}
		c.bindPattern(f.Pattern, substitute(field.Type, subst))
	}
	if !p.Rest {
		seen := make(map[string]bool, len(p.Fields))
		for _, f := range p.Fields {
			seen[f.Name] = true
		}
		for _, df := range named.Def.Fields {
			if !seen[df.Name] {
				c.errf(p.Span(), "record pattern missing field '%s'", df.Name)
			}
		}
	}
}
