package checker

import (
	"github.com/cwbudde/ki/internal/ast"
	"github.com/cwbudde/ki/internal/types"
)

// checkBlockStmts checks every statement of a block in order, opening no
// new Checker scope of its own: scoping was already resolved by
// internal/resolver, so the checker only needs to visit nodes and record
// types (spec §4.4).
func (c *Checker) checkBlockStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		c.checkStmt(s)
	}
}

func (c *Checker) checkStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.LetStmt:
		c.checkLetStmt(st)
	case *ast.VarStmt:
		c.checkVarStmt(st)
	case *ast.Assignment:
		c.checkAssignment(st)
	case *ast.IfStmt:
		c.checkIfStmt(st)
	case *ast.ForStmt:
		c.checkForStmt(st)
	case *ast.WhileStmt:
		cond := c.checkExpr(st.Cond)
		if !types.IsError(cond) && !cond.Equals(types.Bool) {
			c.errf(st.Cond.Span(), "'while' condition must be bool, got %s", cond.String())
		}
		c.checkBlockStmts(st.Body.Stmts)
	case *ast.LoopStmt:
		c.checkBlockStmts(st.Body.Stmts)
	case *ast.MatchStmt:
		c.checkMatchStmt(st)
	case *ast.ReturnStmt:
		c.checkReturnStmt(st)
	case *ast.BreakStmt:
		if st.Value != nil {
			c.checkExpr(st.Value)
		}
	case *ast.ExprStmt:
		c.checkExpr(st.Expr)
	case *ast.Block:
		c.checkBlockStmts(st.Stmts)
	}
}

func (c *Checker) checkLetStmt(st *ast.LetStmt) {
	val := c.checkExpr(st.Init)
	want := val
	if st.Type != nil {
		want = c.resolveTypeExpr(st.Type)
		if !types.IsError(val) && !types.Assignable(want, val) {
			c.errf(st.Init.Span(), "'let' declared as %s but initializer has type %s", want.String(), val.String())
		}
	}
	c.bindPattern(st.Pattern, want)
}

func (c *Checker) checkVarStmt(st *ast.VarStmt) {
	var val types.Type
	if st.Init != nil {
		val = c.checkExpr(st.Init)
	}
	want := val
	if st.Type != nil {
		want = c.resolveTypeExpr(st.Type)
		if val != nil && !types.IsError(val) && !types.Assignable(want, val) {
			c.errf(st.Span(), "'var %s' declared as %s but initializer has type %s", st.Name, want.String(), val.String())
		}
	}
	if want == nil {
		want = types.Error{}
	}
	if id, ok := c.res.Vars[st]; ok {
		c.symbolTypes[id] = want
	}
}

// bindPattern records the type of every identifier a `let` pattern
// introduces or recurses for a destructuring pattern, via checkPattern.
func (c *Checker) bindPattern(pat ast.Pattern, t types.Type) {
	if id, ok := pat.(*ast.IdentPattern); ok {
		if symID, ok := c.res.Patterns[id]; ok {
			c.symbolTypes[symID] = t
		}
		return
	}
	c.checkPattern(pat, t)
}

func (c *Checker) checkAssignment(st *ast.Assignment) {
	target := c.checkExpr(st.Target)
	val := c.checkExpr(st.Value)
	if id, ok := st.Target.(*ast.Ident); ok {
		if symID, bound := c.res.Idents[id]; bound {
			if sym := c.table.Symbol(symID); sym != nil && !sym.Mutable {
				c.errf(st.Span(), "cannot assign to immutable binding '%s'", sym.Name)
			}
		}
	}
	if !types.IsError(target) && !types.IsError(val) && !types.Assignable(target, val) {
		c.errf(st.Span(), "cannot assign %s to a binding of type %s", val.String(), target.String())
	}
}

func (c *Checker) checkIfStmt(st *ast.IfStmt) {
	cond := c.checkExpr(st.Cond)
	if !types.IsError(cond) && !cond.Equals(types.Bool) {
		c.errf(st.Cond.Span(), "'if' condition must be bool, got %s", cond.String())
	}
	c.checkBlockStmts(st.Then.Stmts)
	if st.Else != nil {
		c.checkStmt(st.Else)
	}
}

func (c *Checker) checkForStmt(st *ast.ForStmt) {
	iterable := c.checkExpr(st.Iterable)
	var elem types.Type
	switch it := iterable.(type) {
	case types.List:
		elem = it.Elem
	case types.Array:
		elem = it.Elem
	case types.Tuple:
		// a RangeExpr's resolved type: (i32, i32)
		elem = types.I32
	default:
		if !types.IsError(iterable) {
			c.errf(st.Iterable.Span(), "'for' requires an iterable, got %s", iterable.String())
		}
		elem = types.Error{}
	}
	c.bindPattern(st.Pattern, elem)
	c.checkBlockStmts(st.Body.Stmts)
}

func (c *Checker) checkMatchStmt(st *ast.MatchStmt) {
	subject := c.checkExpr(st.Subject)
	for _, arm := range st.Arms {
		c.checkPattern(arm.Pattern, subject)
		if arm.Guard != nil {
			g := c.checkExpr(arm.Guard)
			if !types.IsError(g) && !g.Equals(types.Bool) {
				c.errf(arm.Guard.Span(), "match guard must be bool, got %s", g.String())
			}
		}
		if arm.Body.Expr != nil {
			c.checkExpr(arm.Body.Expr)
		} else if arm.Body.Block != nil {
			c.checkBlockStmts(arm.Body.Block.Stmts)
		}
	}
	c.checkExhaustive(st.Span(), subject, st.Arms)
}

func (c *Checker) checkReturnStmt(st *ast.ReturnStmt) {
	var val types.Type = types.Void
	if st.Value != nil {
		val = c.checkExpr(st.Value)
	}
	if c.cur == nil {
		return
	}
	if c.cur.inferRet {
		if c.cur.ret == nil {
			c.cur.ret = val
			return
		}
		if !types.IsError(val) && !types.IsError(c.cur.ret) && !c.cur.ret.Equals(val) {
			c.errf(st.Span(), "inconsistent return types: %s and %s", c.cur.ret.String(), val.String())
		}
		return
	}
	if c.cur.ret != nil && !types.IsError(val) && !types.Assignable(c.cur.ret, val) {
		c.errf(st.Span(), "return type mismatch: expected %s, got %s", c.cur.ret.String(), val.String())
	}
}
