package resolver

import (
	"github.com/cwbudde/ki/internal/ast"
	"github.com/cwbudde/ki/internal/symtab"
)

// bindPattern defines every identifier a pattern introduces directly in
// scope (patterns never open their own scope; the let/var/for/match-arm
// that owns the pattern already did). Constructor/variant names inside
// the pattern are left unresolved here — the type checker resolves them
// against the subject's type, since that's the only place enough type
// information exists to know which sum type's variants to look through.
func (r *Resolver) bindPattern(pat ast.Pattern, scope symtab.ScopeID, defaultMutable bool) {
	switch p := pat.(type) {
	case *ast.WildcardPattern, *ast.RestPattern:
		// nothing to bind
	case *ast.LiteralPattern:
		r.resolveExpr(p.Value, scope)
	case *ast.IdentPattern:
		id, _ := r.defineOrError(scope, &symtab.Symbol{Name: p.Name, Kind: symtab.SymVariable, Span: p.Span(), Mutable: p.Mutable || defaultMutable})
		r.pats[p] = id
	case *ast.TypedPattern:
		r.resolveTypeExpr(p.Type, scope)
		r.bindPattern(p.Inner, scope, defaultMutable)
	case *ast.ConstructorPattern:
		for _, sub := range p.Positional {
			r.bindPattern(sub, scope, defaultMutable)
		}
		for _, f := range p.Named {
			r.bindPattern(f.Pattern, scope, defaultMutable)
		}
	case *ast.RecordPattern:
		for _, f := range p.Fields {
			r.bindPattern(f.Pattern, scope, defaultMutable)
		}
	case *ast.TuplePattern:
		for _, e := range p.Elems {
			r.bindPattern(e, scope, defaultMutable)
		}
	case *ast.OrPattern:
		for _, alt := range p.Alternatives {
			r.bindPattern(alt, scope, defaultMutable)
		}
	case *ast.GuardedPattern:
		r.bindPattern(p.Inner, scope, defaultMutable)
		r.resolveExpr(p.Guard, scope)
	case *ast.RangePattern:
		r.resolveExpr(p.Start, scope)
		r.resolveExpr(p.End, scope)
	}
}
