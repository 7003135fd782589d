package resolver

import (
	"github.com/cwbudde/ki/internal/ast"
	"github.com/cwbudde/ki/internal/symtab"
)

func (r *Resolver) resolveStmt(s ast.Stmt, scope symtab.ScopeID) {
	switch st := s.(type) {
	case *ast.LetStmt:
		r.resolveExpr(st.Init, scope)
		if st.Type != nil {
			r.resolveTypeExpr(st.Type, scope)
		}
		r.bindPatternTyped(st.Pattern, st.Type, scope, false, false)
	case *ast.VarStmt:
		if st.Init != nil {
			r.resolveExpr(st.Init, scope)
		}
		if st.Type != nil {
			r.resolveTypeExpr(st.Type, scope)
		}
		id, _ := r.defineOrError(scope, &symtab.Symbol{Name: st.Name, Kind: symtab.SymVariable, Span: st.Span(), TypeExpr: st.Type, Mutable: true})
		r.vars[st] = id
	case *ast.Assignment:
		r.resolveAssignTarget(st.Target, scope)
		r.resolveExpr(st.Value, scope)
	case *ast.IfStmt:
		r.resolveExpr(st.Cond, scope)
		r.resolveBlock(st.Then, scope)
		switch e := st.Else.(type) {
		case nil:
		case *ast.Block:
			r.resolveBlock(e, scope)
		case *ast.IfStmt:
			r.resolveStmt(e, scope)
		}
	case *ast.ForStmt:
		r.resolveExpr(st.Iterable, scope)
		bodyScope := r.table.NewScope(scope, symtab.BlockScope)
		r.bindPattern(st.Pattern, bodyScope, false)
		for _, inner := range st.Body.Stmts {
			r.resolveStmt(inner, bodyScope)
		}
	case *ast.WhileStmt:
		r.resolveExpr(st.Cond, scope)
		r.resolveLoopBlock(st.Body, scope)
	case *ast.LoopStmt:
		r.resolveLoopBlock(st.Body, scope)
	case *ast.MatchStmt:
		r.resolveExpr(st.Subject, scope)
		for _, arm := range st.Arms {
			armScope := r.table.NewScope(scope, symtab.BlockScope)
			r.bindPattern(arm.Pattern, armScope, false)
			if arm.Guard != nil {
				r.resolveExpr(arm.Guard, armScope)
			}
			if arm.Body.Block != nil {
				for _, inner := range arm.Body.Block.Stmts {
					r.resolveStmt(inner, armScope)
				}
			} else if arm.Body.Expr != nil {
				r.resolveExpr(arm.Body.Expr, armScope)
			}
		}
	case *ast.ReturnStmt:
		if st.Value != nil {
			r.resolveExpr(st.Value, scope)
		}
	case *ast.BreakStmt:
		if st.Value != nil {
			r.resolveExpr(st.Value, scope)
		}
	case *ast.ExprStmt:
		r.resolveExpr(st.Expr, scope)
	case *ast.Block:
		r.resolveBlock(st, scope)
	}
}

func (r *Resolver) resolveLoopBlock(body *ast.Block, outer symtab.ScopeID) {
	prev := r.currentFunc
	if prev != nil {
		loopCtx := *prev
		loopCtx.loop = true
		r.currentFunc = &loopCtx
	}
	r.resolveBlock(body, outer)
	r.currentFunc = prev
}

// resolveAssignTarget resolves an assignment's left-hand side and, for a
// bare identifier target, verifies the binding is mutable (spec §4.3's
// "verifies the target exists and ... that its binding is mutable").
func (r *Resolver) resolveAssignTarget(target ast.Expr, scope symtab.ScopeID) {
	switch t := target.(type) {
	case *ast.Ident:
		sym, ok := r.table.Lookup(scope, t.Name)
		if !ok {
			r.errf(t.Span(), "undefined symbol '%s'", t.Name)
			return
		}
		r.idents[t] = sym.ID
		if sym.Kind == symtab.SymVariable && !sym.Mutable {
			r.errf(t.Span(), "cannot assign to immutable binding '%s'", t.Name)
		} else if sym.Kind == symtab.SymConst {
			r.errf(t.Span(), "cannot assign to constant '%s'", t.Name)
		} else if sym.Kind == symtab.SymFunction {
			r.errf(t.Span(), "cannot assign to function '%s'", t.Name)
		}
	case *ast.FieldAccess:
		r.resolveExpr(t.Target, scope)
	case *ast.IndexAccess:
		r.resolveExpr(t.Target, scope)
		r.resolveExpr(t.Index, scope)
	default:
		r.resolveExpr(target, scope)
	}
}
