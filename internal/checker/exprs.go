package checker

import (
	"github.com/cwbudde/ki/internal/ast"
	"github.com/cwbudde/ki/internal/diag"
	"github.com/cwbudde/ki/internal/symtab"
	"github.com/cwbudde/ki/internal/types"
)

// checkExpr assigns and returns e's resolved type, recursing into every
// operand first so a type error deep in a sub-expression still lets
// checking continue outward with the Error marker (spec §4.4,
// "diagnostic recovery").
func (c *Checker) checkExpr(e ast.Expr) types.Type {
	switch x := e.(type) {
	case *ast.IntLit:
		return c.setExprType(e, intLitType(x.Suffix))
	case *ast.FloatLit:
		return c.setExprType(e, floatLitType(x.Suffix))
	case *ast.StringLit:
		return c.setExprType(e, types.String)
	case *ast.CharLit:
		return c.setExprType(e, types.Char)
	case *ast.BoolLit:
		return c.setExprType(e, types.Bool)
	case *ast.Ident:
		return c.setExprType(e, c.checkIdent(x))
	case *ast.SelfExpr:
		return c.setExprType(e, c.checkSelf(x))
	case *ast.Binary:
		return c.setExprType(e, c.checkBinary(x))
	case *ast.Unary:
		return c.setExprType(e, c.checkUnary(x))
	case *ast.FieldAccess:
		return c.setExprType(e, c.checkFieldAccess(x))
	case *ast.IndexAccess:
		return c.setExprType(e, c.checkIndexAccess(x))
	case *ast.TupleAccess:
		return c.setExprType(e, c.checkTupleAccess(x))
	case *ast.Call:
		return c.setExprType(e, c.checkCall(x))
	case *ast.MethodCall:
		return c.setExprType(e, c.checkMethodCall(x))
	case *ast.Closure:
		return c.setExprType(e, c.checkClosure(x))
	case *ast.MatchExpr:
		return c.setExprType(e, c.checkMatchExpr(x))
	case *ast.TupleLit:
		elems := make([]types.Type, len(x.Elems))
		for i, el := range x.Elems {
			elems[i] = c.checkExpr(el)
		}
		return c.setExprType(e, types.Tuple{Elems: elems})
	case *ast.ArrayLit:
		return c.setExprType(e, c.checkArrayLit(x))
	case *ast.RecordLit:
		return c.setExprType(e, c.checkRecordLit(x))
	case *ast.VariantCtor:
		return c.setExprType(e, c.checkVariantCtor(x))
	case *ast.Cast:
		c.checkExpr(x.Value)
		return c.setExprType(e, c.resolveTypeExpr(x.Type))
	case *ast.RangeExpr:
		if x.Start != nil {
			c.checkExpr(x.Start)
		}
		if x.End != nil {
			c.checkExpr(x.End)
		}
		return c.setExprType(e, types.Tuple{Elems: []types.Type{types.I32, types.I32}})
	case *ast.Grouped:
		return c.setExprType(e, c.checkExpr(x.Inner))
	case *ast.InterpString:
		for _, part := range x.Parts {
			if part.Expr != nil {
				c.checkExpr(part.Expr)
			}
		}
		return c.setExprType(e, types.String)
	case *ast.TryExpr:
		return c.setExprType(e, c.checkTryExpr(x))
	case *ast.CoalesceExpr:
		return c.setExprType(e, c.checkCoalesce(x))
	}
	return c.setExprType(e, types.Error{})
}

func intLitType(suffix string) types.Type {
	if suffix == "" {
		return types.I32
	}
	if p, ok := types.LookupPrimitive(suffix); ok {
		return p
	}
	return types.I32
}

func floatLitType(suffix string) types.Type {
	if suffix == "" {
		return types.F64
	}
	if p, ok := types.LookupPrimitive(suffix); ok {
		return p
	}
	return types.F64
}

func (c *Checker) checkIdent(x *ast.Ident) types.Type {
	id, ok := c.res.Idents[x]
	if !ok {
		return types.Error{}
	}
	sym := c.table.Symbol(id)
	if sym == nil {
		return types.Error{}
	}
	switch sym.Kind {
	case symtab.SymModule:
		if sym.Name == "std" {
			return c.stdType
		}
		return c.moduleType(sym.ModuleScope, sym.Name)
	case symtab.SymImportAlias:
		return c.importAliasType(sym)
	default:
		return c.symbolType(sym)
	}
}

func (c *Checker) importAliasType(sym *symtab.Symbol) types.Type {
	if sym.Target != 0 {
		return c.symbolType(c.table.Symbol(sym.Target))
	}
	return c.moduleType(sym.ModuleScope, sym.Name)
}

// moduleType builds (and caches) the Module type of a user module reached
// through an import, by typing every public top-level symbol in its scope
// — the same "nested record of values" model spec §4.3 gives `std`.
func (c *Checker) moduleType(scope symtab.ScopeID, name string) types.Module {
	if m, ok := c.moduleTypes[scope]; ok {
		return m
	}
	m := types.Module{Path: name, Members: map[string]types.Type{}}
	for symName, id := range c.table.Scope(scope).Names {
		sym := c.table.Symbol(id)
		if sym == nil || !sym.Public {
			continue
		}
		m.Members[symName] = c.symbolType(sym)
	}
	c.moduleTypes[scope] = m
	return m
}

func (c *Checker) checkSelf(x *ast.SelfExpr) types.Type {
	scope, ok := c.res.Selfs[x]
	if !ok {
		return types.Error{}
	}
	if target, ok := c.implTargets[scope]; ok {
		return target
	}
	if self, ok := c.lookupGeneric("Self"); ok {
		return self
	}
	return types.Error{}
}

var arithOps = map[string]bool{"+": true, "-": true, "*": true, "/": true, "%": true}
var cmpOps = map[string]bool{"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true}
var logicOps = map[string]bool{"and": true, "or": true}

func (c *Checker) checkBinary(x *ast.Binary) types.Type {
	left := c.checkExpr(x.Left)
	right := c.checkExpr(x.Right)

	switch {
	case x.Op == "+" && left.Equals(types.String) && right.Equals(types.String):
		return types.String
	case arithOps[x.Op]:
		lp, lok := left.(types.Primitive)
		rp, rok := right.(types.Primitive)
		if types.IsError(left) || types.IsError(right) {
			return types.Error{}
		}
		if !lok || !rok || (!lp.IsInteger() && !lp.IsFloat()) || !lp.Equals(rp) {
			c.errf(x.Span(), "operator '%s' requires two operands of the same numeric type, got %s and %s", x.Op, left.String(), right.String())
			return types.Error{}
		}
		return lp
	case x.Op == "is", x.Op == "in":
		// variant/membership tests: typed bool regardless of operand shape.
		return types.Bool
	case cmpOps[x.Op]:
		if !types.IsError(left) && !types.IsError(right) && !left.Equals(right) {
			c.errf(x.Span(), "cannot compare %s with %s", left.String(), right.String())
		}
		return types.Bool
	case logicOps[x.Op]:
		if !types.IsError(left) && !left.Equals(types.Bool) {
			c.errf(x.Left.Span(), "operand of '%s' must be bool, got %s", x.Op, left.String())
		}
		if !types.IsError(right) && !right.Equals(types.Bool) {
			c.errf(x.Right.Span(), "operand of '%s' must be bool, got %s", x.Op, right.String())
		}
		return types.Bool
	default:
		c.errf(x.Span(), "unknown operator '%s'", x.Op)
		return types.Error{}
	}
}

func (c *Checker) checkUnary(x *ast.Unary) types.Type {
	operand := c.checkExpr(x.Operand)
	switch x.Op {
	case "-":
		if p, ok := operand.(types.Primitive); ok && (p.IsInteger() || p.IsFloat()) {
			return p
		}
		if !types.IsError(operand) {
			c.errf(x.Span(), "unary '-' requires a numeric operand, got %s", operand.String())
		}
		return types.Error{}
	case "not":
		if !types.IsError(operand) && !operand.Equals(types.Bool) {
			c.errf(x.Span(), "'not' requires a bool operand, got %s", operand.String())
		}
		return types.Bool
	}
	c.errf(x.Span(), "unknown unary operator '%s'", x.Op)
	return types.Error{}
}

func (c *Checker) checkFieldAccess(x *ast.FieldAccess) types.Type {
	target := c.checkExpr(x.Target)
	switch t := target.(type) {
	case types.Module:
		if m, ok := t.Members[x.Name]; ok {
			return m
		}
		c.errf(x.Span(), "'%s' has no member '%s'", t.Path, x.Name)
		return types.Error{}
	case types.Named:
		if f, ok := t.Def.FieldByName(x.Name); ok {
			return substitute(f.Type, genericBindings(t))
		}
		c.errf(x.Span(), "'%s' has no field '%s'", t.Def.Name, x.Name)
		return types.Error{}
	default:
		if types.IsError(target) {
			return types.Error{}
		}
		c.errf(x.Span(), "%s is not a record", target.String())
		return types.Error{}
	}
}

// genericBindings reconstructs Def.Generics -> Args for substituting a
// field's declared type (which may mention the Def's own TypeParams) at
// the instantiated Named's concrete arguments.
func genericBindings(n types.Named) map[string]types.Type {
	subst := map[string]types.Type{}
	for i, g := range n.Def.Generics {
		if i < len(n.Args) {
			subst[g] = n.Args[i]
		}
	}
	return subst
}

func (c *Checker) checkIndexAccess(x *ast.IndexAccess) types.Type {
	target := c.checkExpr(x.Target)
	index := c.checkExpr(x.Index)
	if !types.IsError(index) {
		if p, ok := index.(types.Primitive); !ok || !p.IsInteger() {
			c.errf(x.Index.Span(), "index must be an integer, got %s", index.String())
		}
	}
	switch t := target.(type) {
	case types.Array:
		return t.Elem
	default:
		if types.IsError(target) {
			return types.Error{}
		}
		c.errf(x.Span(), "%s is not indexable", target.String())
		return types.Error{}
	}
}

func (c *Checker) checkTupleAccess(x *ast.TupleAccess) types.Type {
	target := c.checkExpr(x.Target)
	tup, ok := target.(types.Tuple)
	if !ok {
		if !types.IsError(target) {
			c.errf(x.Span(), "%s is not a tuple", target.String())
		}
		return types.Error{}
	}
	if x.Index < 0 || x.Index >= len(tup.Elems) {
		c.errf(x.Span(), "tuple access .%d out of range for a %d-element tuple", x.Index, len(tup.Elems))
		return types.Error{}
	}
	return tup.Elems[x.Index]
}

func (c *Checker) checkCall(x *ast.Call) types.Type {
	args := make([]types.Type, len(x.Args))
	for i, a := range x.Args {
		args[i] = c.checkExpr(a)
	}

	// A bare Ident callee naming a sum-type variant constructor is sugar
	// for VariantCtor; the resolver leaves variant names unbound so this
	// is the first place enough information exists to recognize one.
	if id, ok := x.Callee.(*ast.Ident); ok {
		if _, bound := c.res.Idents[id]; !bound {
			if def, variant, ok := c.findVariant(id.Name); ok {
				return c.checkVariantArgs(x.Span(), def, variant, args)
			}
		}
	}

	callee := c.checkExpr(x.Callee)
	fn, ok := callee.(types.Func)
	if !ok {
		if !types.IsError(callee) {
			c.errf(x.Span(), "%s is not callable", callee.String())
		}
		return types.Error{}
	}
	if fn.Effect && (c.cur == nil || !c.cur.effect) {
		c.errf(x.Span(), "cannot call an effect function from a pure function")
	}
	return c.checkArgsAgainst(x.Span(), fn, args)
}

func (c *Checker) checkArgsAgainst(span diag.Span, fn types.Func, args []types.Type) types.Type {
	if len(args) != len(fn.Params) {
		c.errf(span, "expected %d argument(s), got %d", len(fn.Params), len(args))
		return types.Error{}
	}
	subst := map[string]types.Type{}
	for i, p := range fn.Params {
		unify(p, args[i], subst)
	}
	for i, p := range fn.Params {
		want := substitute(p, subst)
		if !types.IsError(args[i]) && !types.Assignable(want, args[i]) {
			c.errf(span, "argument %d: expected %s, got %s", i+1, want.String(), args[i].String())
		}
	}
	return substitute(fn.Return, subst)
}

func (c *Checker) findVariant(name string) (*types.Def, types.Variant, bool) {
	for _, def := range c.defs {
		if def.Kind != types.SumDef {
			continue
		}
		if v, ok := def.VariantByName(name); ok {
			return def, v, true
		}
	}
	return nil, types.Variant{}, false
}

func (c *Checker) checkVariantArgs(span diag.Span, def *types.Def, v types.Variant, args []types.Type) types.Type {
	if len(v.Positional) != len(args) {
		c.errf(span, "variant '%s' expects %d argument(s), got %d", v.Name, len(v.Positional), len(args))
	} else {
		for i, want := range v.Positional {
			if !types.IsError(args[i]) && !types.Assignable(want, args[i]) {
				c.errf(span, "variant '%s' argument %d: expected %s, got %s", v.Name, i+1, want.String(), args[i].String())
			}
		}
	}
	return types.Named{Def: def}
}

func (c *Checker) checkVariantCtor(x *ast.VariantCtor) types.Type {
	args := make([]types.Type, len(x.Args))
	for i, a := range x.Args {
		args[i] = c.checkExpr(a)
	}
	if t, ok := c.checkBuiltinCtor(x, args); ok {
		return t
	}
	def, v, ok := c.findVariant(x.Name)
	if !ok {
		c.errf(x.Span(), "unknown variant '%s'", x.Name)
		return types.Error{}
	}
	return c.checkVariantArgs(x.Span(), def, v, args)
}

// checkBuiltinCtor types spec's built-in sum constructors: Some/None,
// Ok/Err, Cons/Nil. Their payload type is whatever argument is actually
// supplied (no declared signature to unify against), matching how a
// literal's type is read off the literal itself.
func (c *Checker) checkBuiltinCtor(x *ast.VariantCtor, args []types.Type) (types.Type, bool) {
	switch x.Name {
	case "Some":
		if len(args) != 1 {
			c.errf(x.Span(), "'Some' expects 1 argument, got %d", len(args))
			return types.Error{}, true
		}
		return types.Option{Elem: args[0]}, true
	case "None":
		return types.Option{Elem: types.Error{}}, true
	case "Ok":
		if len(args) != 1 {
			c.errf(x.Span(), "'Ok' expects 1 argument, got %d", len(args))
			return types.Error{}, true
		}
		return types.Result{Ok: args[0], Err: types.Error{}}, true
	case "Err":
		if len(args) != 1 {
			c.errf(x.Span(), "'Err' expects 1 argument, got %d", len(args))
			return types.Error{}, true
		}
		return types.Result{Ok: types.Error{}, Err: args[0]}, true
	case "Cons":
		if len(args) != 2 {
			c.errf(x.Span(), "'Cons' expects 2 arguments, got %d", len(args))
			return types.Error{}, true
		}
		return types.List{Elem: args[0]}, true
	case "Nil":
		return types.List{Elem: types.Error{}}, true
	}
	return nil, false
}

// builtinMethods is the fixed method-name surface spec §4.5 dispatches
// directly at runtime rather than through a trait impl.
var builtinMethods = map[string]func(recv types.Type) (types.Type, bool){
	"len": func(recv types.Type) (types.Type, bool) {
		switch recv.(type) {
		case types.Array, types.List:
			return types.I32, true
		}
		if recv.Equals(types.String) {
			return types.I32, true
		}
		return nil, false
	},
	"is_some": optionPredicate,
	"is_none": optionPredicate,
	"is_ok":   resultPredicate,
	"is_err":  resultPredicate,
	"unwrap": func(recv types.Type) (types.Type, bool) {
		switch r := recv.(type) {
		case types.Option:
			return r.Elem, true
		case types.Result:
			return r.Ok, true
		}
		return nil, false
	},
	"unwrap_or": func(recv types.Type) (types.Type, bool) {
		switch r := recv.(type) {
		case types.Option:
			return r.Elem, true
		case types.Result:
			return r.Ok, true
		}
		return nil, false
	},
}

func optionPredicate(recv types.Type) (types.Type, bool) {
	_, ok := recv.(types.Option)
	if !ok {
		return nil, false
	}
	return types.Bool, true
}

func resultPredicate(recv types.Type) (types.Type, bool) {
	_, ok := recv.(types.Result)
	if !ok {
		return nil, false
	}
	return types.Bool, true
}

func (c *Checker) checkMethodCall(x *ast.MethodCall) types.Type {
	recv := c.checkExpr(x.Receiver)
	args := make([]types.Type, len(x.Args))
	for i, a := range x.Args {
		args[i] = c.checkExpr(a)
	}

	if mod, ok := recv.(types.Module); ok {
		member, ok := mod.Members[x.Name]
		if !ok {
			c.errf(x.Span(), "'%s' has no member '%s'", mod.Path, x.Name)
			return types.Error{}
		}
		fn, ok := member.(types.Func)
		if !ok {
			c.errf(x.Span(), "'%s.%s' is not a function", mod.Path, x.Name)
			return types.Error{}
		}
		if fn.Effect && (c.cur == nil || !c.cur.effect) {
			c.errf(x.Span(), "cannot call an effect function from a pure function")
		}
		return c.checkArgsAgainst(x.Span(), fn, args)
	}

	if builder, ok := builtinMethods[x.Name]; ok {
		if ret, ok := builder(recv); ok {
			return ret
		}
	}

	if fn, impl, ok := c.methodFor(recv, x.Name); ok {
		generics := map[string]types.Type{"Self": impl.Target}
		c.pushGenerics(generics)
		sig := c.funcSignature(fn)
		c.popGenerics()
		return c.checkArgsAgainst(x.Span(), sig, args)
	}

	if named, ok := recv.(types.Named); ok {
		if f, ok := named.Def.FieldByName(x.Name); ok {
			if fn, ok := f.Type.(types.Func); ok {
				return c.checkArgsAgainst(x.Span(), fn, args)
			}
		}
	}

	if !types.IsError(recv) {
		c.errf(x.Span(), "unknown method '%s' on %s", x.Name, recv.String())
	}
	return types.Error{}
}

func (c *Checker) checkClosure(x *ast.Closure) types.Type {
	params := make([]types.Type, len(x.Params))
	for i, p := range x.Params {
		params[i] = c.resolveTypeExpr(p.Type)
	}
	var ret types.Type
	infer := x.ReturnType == nil
	if !infer {
		ret = c.resolveTypeExpr(x.ReturnType)
	}

	prev := c.cur
	c.cur = &funcState{effect: x.Effect, ret: ret, inferRet: infer}
	c.checkBlockStmts(x.Body.Stmts)
	if c.cur.inferRet && c.cur.ret == nil {
		c.cur.ret = types.Void
	}
	ret = c.cur.ret
	c.cur = prev

	return types.Func{Params: params, Return: ret, Effect: x.Effect}
}

func (c *Checker) checkArrayLit(x *ast.ArrayLit) types.Type {
	if len(x.Elems) == 0 {
		return types.Array{Elem: types.Error{}, Size: 0}
	}
	first := c.checkExpr(x.Elems[0])
	for _, el := range x.Elems[1:] {
		t := c.checkExpr(el)
		if !types.IsError(t) && !types.Assignable(first, t) {
			c.errf(el.Span(), "array element type mismatch: expected %s, got %s", first.String(), t.String())
		}
	}
	return types.Array{Elem: first, Size: len(x.Elems)}
}

func (c *Checker) checkRecordLit(x *ast.RecordLit) types.Type {
	values := make(map[string]types.Type, len(x.Fields))
	for _, f := range x.Fields {
		values[f.Name] = c.checkExpr(f.Value)
	}
	if x.Type == nil {
		fields := make([]types.Field, len(x.Fields))
		for i, f := range x.Fields {
			fields[i] = types.Field{Name: f.Name, Type: values[f.Name]}
		}
		return types.Named{Def: &types.Def{Name: "", Kind: types.ProductDef, Fields: fields}}
	}
	named, ok := c.resolveTypeExpr(x.Type).(types.Named)
	if !ok {
		c.errf(x.Span(), "'%s' is not a record type", x.Type)
		return types.Error{}
	}
	for _, f := range named.Def.Fields {
		got, ok := values[f.Name]
		if !ok {
			c.errf(x.Span(), "missing field '%s' in '%s' literal", f.Name, named.Def.Name)
			continue
		}
		want := substitute(f.Type, genericBindings(named))
		if !types.IsError(got) && !types.Assignable(want, got) {
			c.errf(x.Span(), "field '%s': expected %s, got %s", f.Name, want.String(), got.String())
		}
	}
	for name := range values {
		if _, ok := named.Def.FieldByName(name); !ok {
			c.errf(x.Span(), "'%s' has no field '%s'", named.Def.Name, name)
		}
	}
	return named
}

func (c *Checker) checkMatchExpr(x *ast.MatchExpr) types.Type {
	subject := c.checkExpr(x.Subject)
	var result types.Type
	for _, arm := range x.Arms {
		c.checkPattern(arm.Pattern, subject)
		if arm.Guard != nil {
			g := c.checkExpr(arm.Guard)
			if !types.IsError(g) && !g.Equals(types.Bool) {
				c.errf(arm.Guard.Span(), "match guard must be bool, got %s", g.String())
			}
		}
		var armType types.Type
		if arm.Body.Expr != nil {
			armType = c.checkExpr(arm.Body.Expr)
		} else if arm.Body.Block != nil {
			armType = c.checkBlockValue(arm.Body.Block)
		}
		if result == nil {
			result = armType
		} else if armType != nil && !types.IsError(armType) && !types.IsError(result) && !result.Equals(armType) {
			c.errf(x.Span(), "match arms have incompatible types: %s and %s", result.String(), armType.String())
		}
	}
	c.checkExhaustive(x.Span(), subject, x.Arms)
	if result == nil {
		return types.Void
	}
	return result
}

// checkBlockValue checks a block used as a match arm's value; its "value"
// is an implicit-return convention the parser enforces, so the checker
// only needs the type of a trailing ExprStmt/ReturnStmt.
func (c *Checker) checkBlockValue(b *ast.Block) types.Type {
	var last types.Type
	for i, s := range b.Stmts {
		if i == len(b.Stmts)-1 {
			switch st := s.(type) {
			case *ast.ExprStmt:
				last = c.checkExpr(st.Expr)
				continue
			case *ast.ReturnStmt:
				c.checkStmt(st)
				continue
			}
		}
		c.checkStmt(s)
	}
	if last == nil {
		return types.Void
	}
	return last
}

func (c *Checker) checkTryExpr(x *ast.TryExpr) types.Type {
	val := c.checkExpr(x.Value)
	if c.cur == nil {
		c.errf(x.Span(), "'?' is only legal inside a function")
		return types.Error{}
	}
	if !c.cur.effect {
		c.errf(x.Span(), "'?' propagates early return and is only legal inside an effect function")
	}
	switch v := val.(type) {
	case types.Option:
		if ret, ok := c.cur.ret.(types.Option); !ok || !ret.Elem.Equals(v.Elem) {
			c.errf(x.Span(), "'?' on Option requires the enclosing function to return a compatible Option")
		}
		return v.Elem
	case types.Result:
		if ret, ok := c.cur.ret.(types.Result); !ok || !ret.Err.Equals(v.Err) {
			c.errf(x.Span(), "'?' on Result requires the enclosing function to return a compatible Result")
		}
		return v.Ok
	default:
		if !types.IsError(val) {
			c.errf(x.Span(), "'?' requires an Option or Result, got %s", val.String())
		}
		return types.Error{}
	}
}

func (c *Checker) checkCoalesce(x *ast.CoalesceExpr) types.Type {
	val := c.checkExpr(x.Value)
	def := c.checkExpr(x.Default)
	switch v := val.(type) {
	case types.Option:
		if !types.IsError(def) && !types.Assignable(v.Elem, def) {
			c.errf(x.Span(), "'??' default must be %s, got %s", v.Elem.String(), def.String())
		}
		return v.Elem
	case types.Result:
		if !types.IsError(def) && !types.Assignable(v.Ok, def) {
			c.errf(x.Span(), "'??' default must be %s, got %s", v.Ok.String(), def.String())
		}
		return v.Ok
	default:
		if !types.IsError(val) {
			c.errf(x.Span(), "'??' requires an Option or Result, got %s", val.String())
		}
		return types.Error{}
	}
}

