package checker

import (
	"github.com/cwbudde/ki/internal/ast"
	"github.com/cwbudde/ki/internal/types"
)

// checkAll type-checks every function body, const initializer, top-level
// let, and test across every resolved module, now that buildRegistries
// has populated every type/trait/impl (spec §4.4's "function checking").
func (c *Checker) checkAll() {
	for _, ps := range c.res.Programs {
		for _, d := range ps.Program.Decls {
			switch decl := d.(type) {
			case *ast.FuncDecl:
				c.checkFuncDecl(decl, nil)
			case *ast.TraitDecl:
				self := types.TypeParam{Name: "Self"}
				for _, m := range decl.Methods {
					if m.Body != nil {
						c.checkFuncDecl(m, self)
					}
				}
			case *ast.ImplDecl:
				info := c.implByDecl(decl)
				if info == nil {
					continue
				}
				for _, m := range decl.Methods {
					if m.Body != nil {
						c.checkFuncDecl(m, info.Target)
					}
				}
			case *ast.ConstDecl:
				c.checkConstDecl(decl)
			case *ast.TopLevelLet:
				c.checkTopLevelLet(decl)
			case *ast.TestDecl:
				prev := c.cur
				c.cur = &funcState{effect: true, ret: types.Void}
				c.checkBlockStmts(decl.Body.Stmts)
				c.cur = prev
			}
		}
	}
}

func (c *Checker) implByDecl(decl *ast.ImplDecl) *ImplInfo {
	for _, impl := range c.impls {
		if impl.Decl == decl {
			return impl
		}
	}
	return nil
}

func (c *Checker) checkConstDecl(decl *ast.ConstDecl) {
	val := c.checkExpr(decl.Value)
	if decl.Type == nil {
		return
	}
	want := c.resolveTypeExpr(decl.Type)
	if !types.IsError(val) && !types.Assignable(want, val) {
		c.errf(decl.Value.Span(), "const '%s' declared as %s but initializer has type %s", decl.Name, want.String(), val.String())
	}
}

func (c *Checker) checkTopLevelLet(decl *ast.TopLevelLet) {
	val := c.checkExpr(decl.Value)
	want := val
	if decl.Type != nil {
		want = c.resolveTypeExpr(decl.Type)
		if !types.IsError(val) && !types.Assignable(want, val) {
			c.errf(decl.Value.Span(), "'let' declared as %s but initializer has type %s", want.String(), val.String())
		}
	}
	c.bindTopLevelPattern(decl.Pattern, want)
}

// bindTopLevelPattern records the type of every identifier a top-level
// `let` pattern introduces, keyed by the SymbolID the resolver already
// assigned it (resolver.Info.Patterns).
func (c *Checker) bindTopLevelPattern(pat ast.Pattern, t types.Type) {
	if id, ok := pat.(*ast.IdentPattern); ok {
		if symID, ok := c.res.Patterns[id]; ok {
			c.symbolTypes[symID] = t
		}
		return
	}
	c.checkPattern(pat, t)
}

// checkFuncDecl type-checks one function or method body. self, when
// non-nil, is bound as the generic parameter named "Self" for the
// duration of the check (a trait default method sees the abstract
// TypeParam; an impl method sees its concrete target).
func (c *Checker) checkFuncDecl(fn *ast.FuncDecl, self types.Type) {
	generics := map[string]types.Type{}
	for _, g := range fn.Generics {
		generics[g.Name] = types.TypeParam{Name: g.Name, Bounds: g.Bounds}
	}
	if self != nil {
		generics["Self"] = self
	}
	c.pushGenerics(generics)
	defer c.popGenerics()

	ret := c.resolveTypeExpr(fn.ReturnType)
	prev := c.cur
	c.cur = &funcState{effect: fn.Effect, ret: ret, self: self}
	if fn.Body != nil {
		c.checkBlockStmts(fn.Body.Stmts)
	}
	c.cur = prev
}
