package checker

import (
	"strings"

	"github.com/cwbudde/ki/internal/ast"
	"github.com/cwbudde/ki/internal/symtab"
	"github.com/cwbudde/ki/internal/types"
)

// buildRegistries runs before any expression is typed: it declares every
// user type, trait, and impl across every resolved module so forward and
// mutually-recursive references (a sum type whose variant holds another
// type declared later in the file, a trait method returning Self, …)
// resolve regardless of declaration order.
func (c *Checker) buildRegistries() {
	for _, ps := range c.res.Programs {
		for _, d := range ps.Program.Decls {
			if td, ok := d.(*ast.TypeDecl); ok {
				c.defs[td.Name] = &types.Def{Name: td.Name, Generics: genericNames(td.Generics), Public: td.Public}
			}
		}
	}
	for _, ps := range c.res.Programs {
		for _, d := range ps.Program.Decls {
			if td, ok := d.(*ast.TypeDecl); ok {
				c.populateDef(td)
			}
		}
	}
	for _, ps := range c.res.Programs {
		for _, d := range ps.Program.Decls {
			if tr, ok := d.(*ast.TraitDecl); ok {
				c.traits[tr.Name] = c.buildTraitDef(tr)
			}
		}
	}
	for _, entry := range c.table.Impls {
		c.buildImpl(entry)
	}
}

func genericNames(gs []ast.GenericParam) []string {
	out := make([]string, len(gs))
	for i, g := range gs {
		out[i] = g.Name
	}
	return out
}

func (c *Checker) populateDef(td *ast.TypeDecl) {
	def := c.defs[td.Name]
	genericSet := map[string]types.Type{}
	for _, g := range def.Generics {
		genericSet[g] = types.TypeParam{Name: g}
	}
	c.pushGenerics(genericSet)
	defer c.popGenerics()

	switch td.Kind {
	case ast.SumType:
		def.Kind = types.SumDef
		for _, v := range td.Variants {
			variant := types.Variant{Name: v.Name}
			for _, p := range v.Positional {
				variant.Positional = append(variant.Positional, c.resolveTypeExpr(p))
			}
			for _, f := range v.Named {
				variant.Named = append(variant.Named, types.Field{Name: f.Name, Type: c.resolveTypeExpr(f.Type)})
			}
			def.Variants = append(def.Variants, variant)
		}
	case ast.ProductType:
		def.Kind = types.ProductDef
		for _, f := range td.Fields {
			def.Fields = append(def.Fields, types.Field{Name: f.Name, Type: c.resolveTypeExpr(f.Type)})
		}
	case ast.AliasType:
		def.Kind = types.AliasDef
		def.Alias = c.resolveTypeExpr(td.Alias)
	}
}

func (c *Checker) buildTraitDef(tr *ast.TraitDecl) *types.TraitDef {
	td := &types.TraitDef{Name: tr.Name, Supers: tr.Supers, Methods: map[string]types.Func{}, Public: tr.Public}
	selfSet := map[string]types.Type{"Self": types.TypeParam{Name: "Self"}}
	c.pushGenerics(selfSet)
	defer c.popGenerics()
	for _, m := range tr.Methods {
		td.Methods[m.Name] = c.funcSignature(m)
	}
	return td
}

func (c *Checker) buildImpl(entry *symtab.ImplEntry) {
	impl := entry.Decl
	target := c.resolveTypeExpr(impl.Target)
	c.implTargets[entry.Scope] = target
	info := &ImplInfo{
		TraitName: impl.Trait,
		Target:    target,
		TargetKey: target.String(),
		Decl:      impl,
		Methods:   map[string]*ast.FuncDecl{},
	}
	for _, m := range impl.Methods {
		info.Methods[m.Name] = m
	}
	c.impls = append(c.impls, info)
}

// resolveTypeExpr converts a syntactic TypeExpr into its canonical
// types.Type, consulting the in-scope generic parameters first (spec
// §4.4's "Resolved types parallel AST types but are fully canonical").
func (c *Checker) resolveTypeExpr(t ast.TypeExpr) types.Type {
	if t == nil {
		return types.Void
	}
	switch x := t.(type) {
	case *ast.PrimitiveType:
		if p, ok := types.LookupPrimitive(x.Name); ok {
			return p
		}
		c.errf(x.Span(), "unknown primitive type '%s'", x.Name)
		return types.Error{}
	case *ast.NamedType:
		if tp, ok := c.lookupGeneric(x.Name); ok {
			return tp
		}
		if def, ok := c.defs[x.Name]; ok {
			return types.Named{Def: def}
		}
		c.errf(x.Span(), "unknown type '%s'", x.Name)
		return types.Error{}
	case *ast.GenericType:
		if def, ok := c.defs[x.BaseName]; ok {
			args := make([]types.Type, len(x.Args))
			for i, a := range x.Args {
				args[i] = c.resolveTypeExpr(a)
			}
			return types.Named{Def: def, Args: args}
		}
		switch x.BaseName {
		case "List":
			if len(x.Args) == 1 {
				return types.List{Elem: c.resolveTypeExpr(x.Args[0])}
			}
		case "Option":
			if len(x.Args) == 1 {
				return types.Option{Elem: c.resolveTypeExpr(x.Args[0])}
			}
		case "Result":
			if len(x.Args) == 2 {
				return types.Result{Ok: c.resolveTypeExpr(x.Args[0]), Err: c.resolveTypeExpr(x.Args[1])}
			}
		case "IO":
			if len(x.Args) == 1 {
				return types.IO{Elem: c.resolveTypeExpr(x.Args[0])}
			}
		}
		c.errf(x.Span(), "unknown generic type '%s'", x.BaseName)
		return types.Error{}
	case *ast.PathType:
		name := x.Segments[len(x.Segments)-1]
		if def, ok := c.defs[name]; ok {
			args := make([]types.Type, len(x.Args))
			for i, a := range x.Args {
				args[i] = c.resolveTypeExpr(a)
			}
			return types.Named{Def: def, Args: args}
		}
		c.errf(x.Span(), "unknown type '%s'", strings.Join(x.Segments, "."))
		return types.Error{}
	case *ast.FuncType:
		params := make([]types.Type, len(x.Params))
		for i, p := range x.Params {
			params[i] = c.resolveTypeExpr(p)
		}
		return types.Func{Params: params, Return: c.resolveTypeExpr(x.Return), Effect: x.Effect}
	case *ast.TupleType:
		elems := make([]types.Type, len(x.Elems))
		for i, e := range x.Elems {
			elems[i] = c.resolveTypeExpr(e)
		}
		return types.Tuple{Elems: elems}
	case *ast.ArrayType:
		size := -1
		if x.Size != nil {
			size = *x.Size
		}
		return types.Array{Elem: c.resolveTypeExpr(x.Elem), Size: size}
	case *ast.SelfType:
		if self, ok := c.lookupGeneric("Self"); ok {
			return self
		}
		c.errf(x.Span(), "'Self' is only valid inside a trait or impl block")
		return types.Error{}
	case *ast.IOType:
		return types.IO{Elem: c.resolveTypeExpr(x.Inner)}
	case *ast.ResultType:
		return types.Result{Ok: c.resolveTypeExpr(x.Ok), Err: c.resolveTypeExpr(x.Err)}
	case *ast.OptionType:
		return types.Option{Elem: c.resolveTypeExpr(x.Inner)}
	case *ast.InferredType:
		return types.Error{}
	}
	return types.Error{}
}

// funcSignature computes a Func type from a declaration's parameter and
// return annotations, without checking its body.
func (c *Checker) funcSignature(fn *ast.FuncDecl) types.Func {
	genericSet := map[string]types.Type{}
	for _, g := range fn.Generics {
		genericSet[g.Name] = types.TypeParam{Name: g.Name, Bounds: g.Bounds}
	}
	c.pushGenerics(genericSet)
	defer c.popGenerics()

	params := make([]types.Type, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = c.resolveTypeExpr(p.Type)
	}
	ret := c.resolveTypeExpr(fn.ReturnType)
	return types.Func{Params: params, Return: ret, Effect: fn.Effect}
}

// substitute replaces every TypeParam in t whose name is a key of subst.
func substitute(t types.Type, subst map[string]types.Type) types.Type {
	switch x := t.(type) {
	case types.TypeParam:
		if r, ok := subst[x.Name]; ok {
			return r
		}
		return x
	case types.Named:
		if len(x.Args) == 0 {
			return x
		}
		args := make([]types.Type, len(x.Args))
		for i, a := range x.Args {
			args[i] = substitute(a, subst)
		}
		return types.Named{Def: x.Def, Args: args}
	case types.Tuple:
		elems := make([]types.Type, len(x.Elems))
		for i, e := range x.Elems {
			elems[i] = substitute(e, subst)
		}
		return types.Tuple{Elems: elems}
	case types.Array:
		return types.Array{Elem: substitute(x.Elem, subst), Size: x.Size}
	case types.Func:
		params := make([]types.Type, len(x.Params))
		for i, p := range x.Params {
			params[i] = substitute(p, subst)
		}
		return types.Func{Params: params, Return: substitute(x.Return, subst), Effect: x.Effect}
	case types.Option:
		return types.Option{Elem: substitute(x.Elem, subst)}
	case types.Result:
		return types.Result{Ok: substitute(x.Ok, subst), Err: substitute(x.Err, subst)}
	case types.IO:
		return types.IO{Elem: substitute(x.Elem, subst)}
	case types.List:
		return types.List{Elem: substitute(x.Elem, subst)}
	default:
		return t
	}
}

// unify walks declared (a type that may mention TypeParams) against
// actual (a concrete inferred type), recording a binding in subst for
// every TypeParam it finds aligned with a concrete sub-type. It is a
// best-effort structural matcher, not a full inference engine: a
// TypeParam that never appears in a matchable position
// among the call's arguments is left unresolved and substitute() leaves
// it as-is, which later fails the return-type Assignable check loudly
// rather than silently guessing wrong.
func unify(declared, actual types.Type, subst map[string]types.Type) {
	switch d := declared.(type) {
	case types.TypeParam:
		if _, ok := subst[d.Name]; !ok {
			subst[d.Name] = actual
		}
	case types.Named:
		a, ok := actual.(types.Named)
		if !ok || len(a.Args) != len(d.Args) {
			return
		}
		for i := range d.Args {
			unify(d.Args[i], a.Args[i], subst)
		}
	case types.Tuple:
		a, ok := actual.(types.Tuple)
		if !ok || len(a.Elems) != len(d.Elems) {
			return
		}
		for i := range d.Elems {
			unify(d.Elems[i], a.Elems[i], subst)
		}
	case types.Array:
		a, ok := actual.(types.Array)
		if !ok {
			return
		}
		unify(d.Elem, a.Elem, subst)
	case types.Option:
		a, ok := actual.(types.Option)
		if !ok {
			return
		}
		unify(d.Elem, a.Elem, subst)
	case types.Result:
		a, ok := actual.(types.Result)
		if !ok {
			return
		}
		unify(d.Ok, a.Ok, subst)
		unify(d.Err, a.Err, subst)
	case types.IO:
		a, ok := actual.(types.IO)
		if !ok {
			return
		}
		unify(d.Elem, a.Elem, subst)
	case types.List:
		a, ok := actual.(types.List)
		if !ok {
			return
		}
		unify(d.Elem, a.Elem, subst)
	case types.Func:
		a, ok := actual.(types.Func)
		if !ok || len(a.Params) != len(d.Params) {
			return
		}
		for i := range d.Params {
			unify(d.Params[i], a.Params[i], subst)
		}
		unify(d.Return, a.Return, subst)
	}
}
