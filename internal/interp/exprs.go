package interp

import (
	"fmt"

	"github.com/cwbudde/ki/internal/ast"
	"github.com/cwbudde/ki/internal/diag"
)

// Eval evaluates e in env. Runtime failures are raised by panicking with a
// *RuntimeError; call() and safeRegisterTopLevel() are the only places that
// recover, so the bulk of the evaluator can be written as straight-line Go
// rather than threading an error return through every recursive call (spec §4.5's
// evaluator has no partial-evaluation requirement to preserve on failure).
func (in *Interp) Eval(e ast.Expr, env *Environment) Value {
	switch x := e.(type) {
	case *ast.IntLit:
		return IntValue{Val: x.Value, Suffix: x.Suffix}
	case *ast.FloatLit:
		return FloatValue{Val: x.Value, Suffix: x.Suffix}
	case *ast.StringLit:
		return StringValue{Val: x.Value}
	case *ast.CharLit:
		return CharValue{Val: x.Value}
	case *ast.BoolLit:
		return BoolValue{Val: x.Value}
	case *ast.Ident:
		v, ok := env.Get(x.Name)
		if !ok {
			panic(rtErr(ErrUndefinedVariable, x.Span(), "undefined variable '%s'", x.Name))
		}
		return v
	case *ast.SelfExpr:
		v, ok := env.Get("self")
		if !ok {
			panic(rtErr(ErrUndefinedVariable, x.Span(), "'self' used outside a method"))
		}
		return v
	case *ast.Binary:
		return in.evalBinary(x, env)
	case *ast.Unary:
		return in.evalUnary(x, env)
	case *ast.FieldAccess:
		return in.evalFieldAccess(x, env)
	case *ast.IndexAccess:
		return in.evalIndexAccess(x, env)
	case *ast.TupleAccess:
		t := in.Eval(x.Target, env)
		tv, ok := t.(TupleValue)
		if !ok || x.Index < 0 || x.Index >= len(tv.Elems) {
			panic(rtErr(ErrIndexOutOfBounds, x.Span(), "tuple has no element %d", x.Index))
		}
		return tv.Elems[x.Index]
	case *ast.Call:
		return in.evalCall(x, env)
	case *ast.MethodCall:
		return in.evalMethodCall(x, env)
	case *ast.Closure:
		return in.evalClosure(x, env)
	case *ast.MatchExpr:
		return in.evalMatchExpr(x, env)
	case *ast.TupleLit:
		elems := make([]Value, len(x.Elems))
		for i, el := range x.Elems {
			elems[i] = in.Eval(el, env)
		}
		return TupleValue{Elems: elems}
	case *ast.ArrayLit:
		elems := make([]Value, len(x.Elems))
		for i, el := range x.Elems {
			elems[i] = in.Eval(el, env)
		}
		return &ArrayValue{Elems: elems}
	case *ast.RecordLit:
		return in.evalRecordLit(x, env)
	case *ast.VariantCtor:
		return in.evalVariantCtor(x, env)
	case *ast.Cast:
		return in.evalCast(x, env)
	case *ast.RangeExpr:
		panic(rtErr(ErrInvalidOperation, x.Span(), "range expression used outside 'for'"))
	case *ast.Grouped:
		return in.Eval(x.Inner, env)
	case *ast.InterpString:
		return in.evalInterpString(x, env)
	case *ast.TryExpr:
		return in.evalTryExpr(x, env)
	case *ast.CoalesceExpr:
		return in.evalCoalesceExpr(x, env)
	}
	panic(rtErr(ErrInvalidOperation, e.Span(), "cannot evaluate %T", e))
}

func (in *Interp) evalFieldAccess(x *ast.FieldAccess, env *Environment) Value {
	t := in.Eval(x.Target, env)
	switch rv := t.(type) {
	case *RecordValue:
		if v, ok := rv.Fields[x.Name]; ok {
			return v
		}
	case *VariantValue:
		if rv.Named != nil {
			if v, ok := rv.Named[x.Name]; ok {
				return v
			}
		}
	case *ModuleValue:
		if v, ok := rv.Members[x.Name]; ok {
			return v
		}
	}
	panic(rtErr(ErrFieldNotFound, x.Span(), "no field '%s' on %s", x.Name, t.Kind()))
}

func (in *Interp) evalIndexAccess(x *ast.IndexAccess, env *Environment) Value {
	t := in.Eval(x.Target, env)
	idx := in.Eval(x.Index, env)
	i := int(asInt(idx))
	switch arr := t.(type) {
	case *ArrayValue:
		if i < 0 || i >= len(arr.Elems) {
			panic(rtErr(ErrIndexOutOfBounds, x.Span(), "index %d out of bounds (length %d)", i, len(arr.Elems)))
		}
		return arr.Elems[i]
	case StringValue:
		runes := []rune(arr.Val)
		if i < 0 || i >= len(runes) {
			panic(rtErr(ErrIndexOutOfBounds, x.Span(), "index %d out of bounds (length %d)", i, len(runes)))
		}
		return CharValue{Val: runes[i]}
	}
	panic(rtErr(ErrTypeMismatch, x.Span(), "cannot index %s", t.Kind()))
}

func (in *Interp) evalCall(x *ast.Call, env *Environment) Value {
	calleeVal := in.Eval(x.Callee, env)
	cl, ok := calleeVal.(*ClosureValue)
	if !ok {
		panic(rtErr(ErrNotCallable, x.Span(), "%s is not callable", calleeVal.Kind()))
	}
	args := make([]Value, len(x.Args))
	for i, a := range x.Args {
		args[i] = in.Eval(a, env)
	}
	v, err := in.call(cl, args, x.Span())
	if err != nil {
		panic(err)
	}
	return v
}

func (in *Interp) evalClosure(x *ast.Closure, env *Environment) Value {
	params := make([]string, len(x.Params))
	for i, p := range x.Params {
		params[i] = p.Name
	}
	return &ClosureValue{Params: params, Effect: x.Effect, Body: x.Body, Env: env}
}

func (in *Interp) evalRecordLit(x *ast.RecordLit, env *Environment) Value {
	typeName := ""
	if x.Type != nil {
		typeName = typeExprName(x.Type)
	}
	rv := NewRecordValue(typeName)
	for _, f := range x.Fields {
		rv.Set(f.Name, in.Eval(f.Value, env))
	}
	return rv
}

func (in *Interp) evalVariantCtor(x *ast.VariantCtor, env *Environment) Value {
	if v, ok := in.evalBuiltinCtor(x, env); ok {
		return v
	}
	args := make([]Value, len(x.Args))
	for i, a := range x.Args {
		args[i] = in.Eval(a, env)
	}
	typeName := in.variantTypeName(x.Name)
	return &VariantValue{TypeName: typeName, Name: x.Name, Positional: args}
}

// evalBuiltinCtor constructs the six runtime constructors spec §4.6 lists
// as built-ins rather than user sum-type variants.
func (in *Interp) evalBuiltinCtor(x *ast.VariantCtor, env *Environment) (Value, bool) {
	switch x.Name {
	case "Some":
		return some(in.Eval(x.Args[0], env)), true
	case "None":
		return none(), true
	case "Ok":
		return ok(in.Eval(x.Args[0], env)), true
	case "Err":
		return errV(in.Eval(x.Args[0], env)), true
	case "Cons":
		return cons(in.Eval(x.Args[0], env), in.Eval(x.Args[1], env)), true
	case "Nil":
		return nilList(), true
	}
	return nil, false
}

func (in *Interp) variantTypeName(ctor string) string {
	if name, ok := in.variantOwner[ctor]; ok {
		return name
	}
	return ""
}

func (in *Interp) evalCast(x *ast.Cast, env *Environment) Value {
	v := in.Eval(x.Value, env)
	target := typeExprName(x.Type)
	switch target {
	case "i8", "i16", "i32", "i64", "u8", "u16", "u32", "u64", "int":
		return IntValue{Val: asInt(v)}
	case "f32", "f64", "float":
		return FloatValue{Val: asFloat(v)}
	case "string":
		return StringValue{Val: v.String()}
	}
	return v
}

func (in *Interp) evalInterpString(x *ast.InterpString, env *Environment) Value {
	out := ""
	for _, part := range x.Parts {
		if part.Expr == nil {
			out += part.Literal
			continue
		}
		out += in.Eval(part.Expr, env).String()
	}
	return StringValue{Val: out}
}

// evalTryExpr implements `?`: Some/Ok unwraps, None/Err returns early from
// the enclosing function by panicking a *tryPropagation carrying the
// None/Err value, which call()'s trampoline recovers (spec §4.5, "'?'
// short-circuits: on None/Err it returns the same value from the
// enclosing function immediately").
func (in *Interp) evalTryExpr(x *ast.TryExpr, env *Environment) Value {
	v := in.Eval(x.Value, env)
	vv, ok := v.(*VariantValue)
	if !ok {
		panic(rtErr(ErrTypeMismatch, x.Span(), "'?' used on non-Option/Result value"))
	}
	switch vv.Name {
	case "Some", "Ok":
		return vv.Positional[0]
	case "None", "Err":
		panic(&tryPropagation{value: vv})
	}
	panic(rtErr(ErrTypeMismatch, x.Span(), "'?' used on non-Option/Result value"))
}

// tryPropagation unwinds the Go stack from a `?` up to the nearest call()
// frame, which converts it into that call's return value.
type tryPropagation struct{ value *VariantValue }

func (in *Interp) evalCoalesceExpr(x *ast.CoalesceExpr, env *Environment) Value {
	v := in.Eval(x.Value, env)
	vv, ok := v.(*VariantValue)
	if !ok {
		return v
	}
	switch vv.Name {
	case "Some", "Ok":
		return vv.Positional[0]
	case "None", "Err":
		return in.Eval(x.Default, env)
	}
	return v
}

func (in *Interp) evalMatchExpr(x *ast.MatchExpr, env *Environment) Value {
	subject := in.Eval(x.Subject, env)
	for _, arm := range x.Arms {
		armEnv := NewEnclosedEnvironment(env)
		if !in.matchPattern(arm.Pattern, subject, armEnv) {
			continue
		}
		if arm.Guard != nil && !asBool(in.Eval(arm.Guard, armEnv)) {
			continue
		}
		if arm.Body.Expr != nil {
			return in.Eval(arm.Body.Expr, armEnv)
		}
		sig := in.execBlock(arm.Body.Block.Stmts, armEnv)
		if sig.kind == sigReturn {
			panic(&returnPropagation{sig: sig})
		}
		return VoidValue{}
	}
	panic(rtErr(ErrMatchFailed, x.Span(), "no arm matched subject %s", subject.String()))
}

// returnPropagation carries a `return` encountered inside a match
// expression's block-bodied arm up to the enclosing call() frame.
type returnPropagation struct{ sig signal }

func typeExprName(t ast.TypeExpr) string {
	switch te := t.(type) {
	case *ast.NamedType:
		return te.Name
	case *ast.PrimitiveType:
		return te.Name
	case *ast.GenericType:
		return te.BaseName
	}
	return ""
}

func asBool(v Value) bool {
	b, ok := v.(BoolValue)
	if !ok {
		panic(rtErr(ErrTypeMismatch, diag.Span{}, "expected bool, got %s", v.Kind()))
	}
	return b.Val
}

func asInt(v Value) int64 {
	switch x := v.(type) {
	case IntValue:
		return x.Val
	case CharValue:
		return int64(x.Val)
	}
	panic(rtErr(ErrTypeMismatch, diag.Span{}, "expected int, got %s", v.Kind()))
}

func asFloat(v Value) float64 {
	switch x := v.(type) {
	case FloatValue:
		return x.Val
	case IntValue:
		return float64(x.Val)
	}
	panic(rtErr(ErrTypeMismatch, diag.Span{}, "expected float, got %s", v.Kind()))
}

// valuesEqual implements structural equality over runtime values, used by
// literal/constant patterns, `==`/`!=`, and MapValue key lookup.
func valuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case IntValue:
		bv, ok := b.(IntValue)
		return ok && av.Val == bv.Val
	case FloatValue:
		bv, ok := b.(FloatValue)
		return ok && av.Val == bv.Val
	case StringValue:
		bv, ok := b.(StringValue)
		return ok && av.Val == bv.Val
	case CharValue:
		bv, ok := b.(CharValue)
		return ok && av.Val == bv.Val
	case BoolValue:
		bv, ok := b.(BoolValue)
		return ok && av.Val == bv.Val
	case VoidValue:
		_, ok := b.(VoidValue)
		return ok
	case TupleValue:
		bv, ok := b.(TupleValue)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !valuesEqual(av.Elems[i], bv.Elems[i]) {
				return false
			}
		}
		return true
	case *ArrayValue:
		bv, ok := b.(*ArrayValue)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !valuesEqual(av.Elems[i], bv.Elems[i]) {
				return false
			}
		}
		return true
	case *RecordValue:
		bv, ok := b.(*RecordValue)
		if !ok || len(av.Order) != len(bv.Order) {
			return false
		}
		for _, name := range av.Order {
			bf, ok := bv.Fields[name]
			if !ok || !valuesEqual(av.Fields[name], bf) {
				return false
			}
		}
		return true
	case *VariantValue:
		bv, ok := b.(*VariantValue)
		if !ok || av.Name != bv.Name || len(av.Positional) != len(bv.Positional) {
			return false
		}
		for i := range av.Positional {
			if !valuesEqual(av.Positional[i], bv.Positional[i]) {
				return false
			}
		}
		return true
	}
	return fmt.Sprintf("%p", a) == fmt.Sprintf("%p", b)
}
