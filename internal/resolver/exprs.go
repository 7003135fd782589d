package resolver

import (
	"github.com/cwbudde/ki/internal/ast"
	"github.com/cwbudde/ki/internal/symtab"
)

// resolveExpr resolves every Ident/SelfExpr reachable from e into scope,
// recursing into every operand. It never reports "not a value" or type
// errors — those are the type checker's job; the resolver's diagnostics
// here are "undefined symbol", a `self` outside a trait or impl method,
// and duplicate bindings among closure parameters or match-arm patterns.
func (r *Resolver) resolveExpr(e ast.Expr, scope symtab.ScopeID) {
	if e == nil {
		return
	}
	switch x := e.(type) {
	case *ast.IntLit, *ast.FloatLit, *ast.StringLit, *ast.CharLit, *ast.BoolLit:
		// leaves, nothing to resolve
	case *ast.Ident:
		if sym, ok := r.table.Lookup(scope, x.Name); ok {
			r.idents[x] = sym.ID
		} else {
			r.errf(x.Span(), "undefined symbol '%s'", x.Name)
		}
		for _, ta := range x.TypeArgs {
			r.resolveTypeExpr(ta, scope)
		}
	case *ast.SelfExpr:
		if implScope, ok := r.nearestSelfScope(scope); ok {
			r.selfs[x] = implScope
		} else {
			r.errf(x.Span(), "'self' is only valid inside a trait or impl method")
		}
	case *ast.Binary:
		r.resolveExpr(x.Left, scope)
		r.resolveExpr(x.Right, scope)
	case *ast.Unary:
		r.resolveExpr(x.Operand, scope)
	case *ast.FieldAccess:
		r.resolveExpr(x.Target, scope)
	case *ast.IndexAccess:
		r.resolveExpr(x.Target, scope)
		r.resolveExpr(x.Index, scope)
	case *ast.TupleAccess:
		r.resolveExpr(x.Target, scope)
	case *ast.Call:
		r.resolveExpr(x.Callee, scope)
		for _, a := range x.Args {
			r.resolveExpr(a, scope)
		}
		for _, ta := range x.TypeArgs {
			r.resolveTypeExpr(ta, scope)
		}
	case *ast.MethodCall:
		r.resolveExpr(x.Receiver, scope)
		for _, a := range x.Args {
			r.resolveExpr(a, scope)
		}
		for _, ta := range x.TypeArgs {
			r.resolveTypeExpr(ta, scope)
		}
	case *ast.Closure:
		closScope := r.table.NewScope(scope, symtab.FunctionScope)
		cs := r.table.Scope(closScope)
		cs.Effect = x.Effect
		cs.SelfOK = r.table.Scope(scope).SelfOK
		for _, p := range x.Params {
			r.defineOrError(closScope, &symtab.Symbol{Name: p.Name, Kind: symtab.SymVariable, TypeExpr: p.Type})
		}
		if x.ReturnType != nil {
			r.resolveTypeExpr(x.ReturnType, scope)
		}
		r.resolveBlockIn(x.Body, closScope, x.Effect)
	case *ast.MatchExpr:
		r.resolveExpr(x.Subject, scope)
		for _, arm := range x.Arms {
			armScope := r.table.NewScope(scope, symtab.BlockScope)
			r.bindPattern(arm.Pattern, armScope, false)
			if arm.Guard != nil {
				r.resolveExpr(arm.Guard, armScope)
			}
			if arm.Body.Expr != nil {
				r.resolveExpr(arm.Body.Expr, armScope)
			} else if arm.Body.Block != nil {
				for _, s := range arm.Body.Block.Stmts {
					r.resolveStmt(s, armScope)
				}
			}
		}
	case *ast.TupleLit:
		for _, el := range x.Elems {
			r.resolveExpr(el, scope)
		}
	case *ast.ArrayLit:
		for _, el := range x.Elems {
			r.resolveExpr(el, scope)
		}
	case *ast.RecordLit:
		if x.Type != nil {
			r.resolveTypeExpr(x.Type, scope)
		}
		for _, f := range x.Fields {
			r.resolveExpr(f.Value, scope)
		}
	case *ast.VariantCtor:
		for _, a := range x.Args {
			r.resolveExpr(a, scope)
		}
	case *ast.Cast:
		r.resolveExpr(x.Value, scope)
		r.resolveTypeExpr(x.Type, scope)
	case *ast.RangeExpr:
		r.resolveExpr(x.Start, scope)
		r.resolveExpr(x.End, scope)
	case *ast.Grouped:
		r.resolveExpr(x.Inner, scope)
	case *ast.InterpString:
		for _, part := range x.Parts {
			if part.Expr != nil {
				r.resolveExpr(part.Expr, scope)
			}
		}
	case *ast.TryExpr:
		r.resolveExpr(x.Value, scope)
	case *ast.CoalesceExpr:
		r.resolveExpr(x.Value, scope)
		r.resolveExpr(x.Default, scope)
	}
}

// nearestSelfScope walks outward for the nearest scope whose SelfOK flag
// is set, stopping at the first FunctionScope/ImplScope/TraitScope
// boundary that clears it (a closure nested in a free function is never
// inside a method, even if it lexically sits inside one further out that
// happens to also not be a method).
func (r *Resolver) nearestSelfScope(scope symtab.ScopeID) (symtab.ScopeID, bool) {
	cur := scope
	for {
		s := r.table.Scope(cur)
		if s.Kind == symtab.ImplScope || s.Kind == symtab.TraitScope {
			return cur, true
		}
		if s.Kind == symtab.FunctionScope && !s.SelfOK {
			return 0, false
		}
		if !s.HasParent {
			return 0, false
		}
		cur = s.Parent
	}
}

func (r *Resolver) resolveTypeExpr(t ast.TypeExpr, scope symtab.ScopeID) {
	if t == nil {
		return
	}
	switch x := t.(type) {
	case *ast.GenericType:
		for _, a := range x.Args {
			r.resolveTypeExpr(a, scope)
		}
	case *ast.PathType:
		for _, a := range x.Args {
			r.resolveTypeExpr(a, scope)
		}
	case *ast.FuncType:
		for _, p := range x.Params {
			r.resolveTypeExpr(p, scope)
		}
		r.resolveTypeExpr(x.Return, scope)
	case *ast.TupleType:
		for _, e := range x.Elems {
			r.resolveTypeExpr(e, scope)
		}
	case *ast.ArrayType:
		r.resolveTypeExpr(x.Elem, scope)
	case *ast.IOType:
		r.resolveTypeExpr(x.Inner, scope)
	case *ast.ResultType:
		r.resolveTypeExpr(x.Ok, scope)
		r.resolveTypeExpr(x.Err, scope)
	case *ast.OptionType:
		r.resolveTypeExpr(x.Inner, scope)
	}
	// PrimitiveType, NamedType, SelfType, InferredType name nothing the
	// resolver needs to look up: NamedType is validated against the type
	// registry by the checker, which has the canonical Def table.
}
