package resolver

import (
	"github.com/cwbudde/ki/internal/ast"
	"github.com/cwbudde/ki/internal/symtab"
)

// pass2Decls walks every declaration's body, now that pass1 has populated
// every scope's top-level names (spec §4.3's "pass 2 — body resolution").
func (r *Resolver) pass2Decls(prog *ast.Program, scope symtab.ScopeID) {
	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *ast.FuncDecl:
			r.resolveFuncDecl(decl, scope, false)
		case *ast.TraitDecl:
			traitScope := r.table.NewScope(scope, symtab.TraitScope)
			r.table.Scope(traitScope).SelfOK = true
			for _, m := range decl.Methods {
				if m.Body != nil {
					r.resolveFuncDecl(m, traitScope, true)
				}
			}
		case *ast.ConstDecl:
			r.resolveExpr(decl.Value, scope)
		case *ast.TopLevelLet:
			r.resolveExpr(decl.Value, scope)
		case *ast.TestDecl:
			r.resolveBlockIn(decl.Body, r.table.NewScope(scope, symtab.FunctionScope), false)
		}
	}
	r.resolveImplsOwnedBy(prog, scope)
}

// resolveImplsOwnedBy resolves the method bodies of every impl block
// declared directly in prog (pass1 already created each impl's scope and
// appended it to r.table.Impls when it walked prog.Decls).
func (r *Resolver) resolveImplsOwnedBy(prog *ast.Program, scope symtab.ScopeID) {
	for _, d := range prog.Decls {
		implDecl, ok := d.(*ast.ImplDecl)
		if !ok {
			continue
		}
		entry := r.implEntryFor(implDecl)
		if entry == nil {
			continue
		}
		for _, g := range genericsOfTarget(implDecl) {
			r.table.Define(entry.Scope, &symtab.Symbol{Name: g, Kind: symtab.SymTypeParam})
		}
		for _, m := range implDecl.Methods {
			if m.Body != nil {
				r.resolveFuncDecl(m, entry.Scope, true)
			}
		}
	}
}

func (r *Resolver) implEntryFor(d *ast.ImplDecl) *symtab.ImplEntry {
	for _, e := range r.table.Impls {
		if e.Decl == d {
			return e
		}
	}
	return nil
}

// genericsOfTarget returns nil: an impl target's type arguments (`impl
// Trait for Box[T]`) define no type parameters in the impl scope, so impls
// are treated as non-generic.
func genericsOfTarget(d *ast.ImplDecl) []string { return nil }

func (r *Resolver) resolveFuncDecl(fn *ast.FuncDecl, outer symtab.ScopeID, inImpl bool) {
	fnScope := r.table.NewScope(outer, symtab.FunctionScope)
	fs := r.table.Scope(fnScope)
	fs.Effect = fn.Effect
	fs.SelfOK = inImpl

	for _, g := range fn.Generics {
		r.defineOrError(fnScope, &symtab.Symbol{Name: g.Name, Kind: symtab.SymTypeParam, Bounds: g.Bounds})
	}
	for _, p := range fn.Params {
		r.defineOrError(fnScope, &symtab.Symbol{Name: p.Name, Kind: symtab.SymVariable, TypeExpr: p.Type, Mutable: false})
	}
	if fn.Body != nil {
		r.resolveBlockIn(fn.Body, fnScope, fn.Effect)
	}
}

// resolveBlockIn resolves stmts directly into scope rather than opening a
// further child scope; used for function/closure bodies, where the scope
// holding the parameters IS the body's scope.
func (r *Resolver) resolveBlockIn(block *ast.Block, scope symtab.ScopeID, effect bool) {
	prev := r.currentFunc
	r.currentFunc = &funcCtx{parent: prev, effect: effect}
	for _, s := range block.Stmts {
		r.resolveStmt(s, scope)
	}
	r.currentFunc = prev
}

// resolveBlock opens a fresh child BlockScope (spec §4.3: "if-then,
// if-else, for, while, loop, match arms, explicit blocks, closures ...
// enters a block scope").
func (r *Resolver) resolveBlock(block *ast.Block, outer symtab.ScopeID) symtab.ScopeID {
	scope := r.table.NewScope(outer, symtab.BlockScope)
	for _, s := range block.Stmts {
		r.resolveStmt(s, scope)
	}
	return scope
}
