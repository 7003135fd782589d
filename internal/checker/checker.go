// Package checker implements the type checker of spec §4.4: it walks the
// resolved Program, assigns a resolved types.Type to every expression,
// verifies typing/effect/visibility/exhaustiveness constraints, and
// records enough about every user type and impl block for the
// interpreter to dispatch methods and match patterns at runtime.
package checker

import (
	"github.com/cwbudde/ki/internal/ast"
	"github.com/cwbudde/ki/internal/diag"
	"github.com/cwbudde/ki/internal/resolver"
	"github.com/cwbudde/ki/internal/symtab"
	"github.com/cwbudde/ki/internal/types"
)

// ImplInfo is one resolved `impl [Trait for] Target` block: Target is
// canonical, and Methods maps a method name to its ast.FuncDecl (the
// interpreter evaluates the body directly; the checker only needs the
// signature, recomputed on demand from FuncDecl).
type ImplInfo struct {
	TraitName string
	Target    types.Type
	TargetKey string // Target.String(), used as the map key for dispatch
	Decl      *ast.ImplDecl
	Methods   map[string]*ast.FuncDecl
}

// Info is the checker's output, consumed by the interpreter.
type Info struct {
	Table       *symtab.Table
	ExprTypes   map[ast.Expr]types.Type
	SymbolTypes map[symtab.SymbolID]types.Type
	Defs        map[string]*types.Def
	Traits      map[string]*types.TraitDef
	Impls       []*ImplInfo
}

// MethodFor looks up an inherent or trait method named name usable on a
// value of type target, preferring an inherent impl (no trait name) over
// a trait impl when both exist.
func (info *Info) MethodFor(target types.Type, name string) (*ast.FuncDecl, *ImplInfo, bool) {
	key := target.String()
	var traitHit *ast.FuncDecl
	var traitImpl *ImplInfo
	for _, impl := range info.Impls {
		if impl.TargetKey != key {
			continue
		}
		fn, ok := impl.Methods[name]
		if !ok {
			continue
		}
		if impl.TraitName == "" {
			return fn, impl, true
		}
		traitHit, traitImpl = fn, impl
	}
	if traitHit != nil {
		return traitHit, traitImpl, true
	}
	return nil, nil, false
}

type funcState struct {
	effect   bool
	ret      types.Type
	self     types.Type
	inferRet bool // closures with no explicit return type: ret is filled in by the first ReturnStmt checked
}

// Checker walks a resolved Program and types it.
type Checker struct {
	bag   *diag.Bag
	table *symtab.Table
	res   *resolver.Info

	exprTypes   map[ast.Expr]types.Type
	symbolTypes map[symtab.SymbolID]types.Type
	defs        map[string]*types.Def
	traits      map[string]*types.TraitDef
	impls       []*ImplInfo

	implTargets map[symtab.ScopeID]types.Type // ImplScope -> resolved target, for `Self`
	moduleTypes map[symtab.ScopeID]types.Module
	stdType     types.Module

	generics []map[string]types.Type
	cur      *funcState
}

// New creates a Checker over the resolver's output.
func New(bag *diag.Bag, res *resolver.Info) *Checker {
	return &Checker{
		bag:         bag,
		table:       res.Table,
		res:         res,
		exprTypes:   make(map[ast.Expr]types.Type),
		symbolTypes: make(map[symtab.SymbolID]types.Type),
		defs:        make(map[string]*types.Def),
		traits:      make(map[string]*types.TraitDef),
		implTargets: make(map[symtab.ScopeID]types.Type),
		moduleTypes: make(map[symtab.ScopeID]types.Module),
		stdType:     buildStdModule(),
	}
}

func (c *Checker) errf(span diag.Span, format string, args ...any) {
	c.bag.Errorf("checker", span, format, args...)
}

// methodFor is Info.MethodFor, usable mid-check before Info exists.
func (c *Checker) methodFor(target types.Type, name string) (*ast.FuncDecl, *ImplInfo, bool) {
	key := target.String()
	var traitHit *ast.FuncDecl
	var traitImpl *ImplInfo
	for _, impl := range c.impls {
		if impl.TargetKey != key {
			continue
		}
		fn, ok := impl.Methods[name]
		if !ok {
			continue
		}
		if impl.TraitName == "" {
			return fn, impl, true
		}
		traitHit, traitImpl = fn, impl
	}
	if traitHit != nil {
		return traitHit, traitImpl, true
	}
	return nil, nil, false
}

// Check runs the full pass: build type/trait/impl registries across every
// resolved module, then type-check every function, const, and top-level
// let. It returns the accumulated Info and whether checking succeeded
// (no Error-severity diagnostic emitted).
func Check(bag *diag.Bag, res *resolver.Info) (*Info, bool) {
	c := New(bag, res)
	c.buildRegistries()
	c.checkAll()

	ok := !bag.HasErrors()
	return &Info{
		Table:       c.table,
		ExprTypes:   c.exprTypes,
		SymbolTypes: c.symbolTypes,
		Defs:        c.defs,
		Traits:      c.traits,
		Impls:       c.impls,
	}, ok
}

func (c *Checker) pushGenerics(names map[string]types.Type) {
	c.generics = append(c.generics, names)
}

func (c *Checker) popGenerics() {
	c.generics = c.generics[:len(c.generics)-1]
}

func (c *Checker) lookupGeneric(name string) (types.Type, bool) {
	for i := len(c.generics) - 1; i >= 0; i-- {
		if t, ok := c.generics[i][name]; ok {
			return t, true
		}
	}
	return nil, false
}

func (c *Checker) setExprType(e ast.Expr, t types.Type) types.Type {
	c.exprTypes[e] = t
	return t
}

// TypeOf is exported so tests can probe the inferred type of a sub-tree
// after Check has run.
func (info *Info) TypeOf(e ast.Expr) (types.Type, bool) {
	t, ok := info.ExprTypes[e]
	return t, ok
}
