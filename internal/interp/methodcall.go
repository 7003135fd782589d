package interp

import "github.com/cwbudde/ki/internal/ast"

// evalMethodCall mirrors checker.checkMethodCall's dispatch order: module
// member call, then a handful of built-in methods on Option/Result/List/
// array/string, then a user impl method, then a record field holding a
// closure.
func (in *Interp) evalMethodCall(x *ast.MethodCall, env *Environment) Value {
	recvVal := in.Eval(x.Receiver, env)
	args := make([]Value, len(x.Args))
	for i, a := range x.Args {
		args[i] = in.Eval(a, env)
	}

	if mod, ok := recvVal.(*ModuleValue); ok {
		member, ok := mod.Members[x.Name]
		if !ok {
			panic(rtErr(ErrFieldNotFound, x.Span(), "'%s' has no member '%s'", mod.Path, x.Name))
		}
		cl, ok := member.(*ClosureValue)
		if !ok {
			panic(rtErr(ErrNotCallable, x.Span(), "'%s.%s' is not a function", mod.Path, x.Name))
		}
		v, err := in.call(cl, args, x.Span())
		if err != nil {
			panic(err)
		}
		return v
	}

	if v, ok := in.evalBuiltinMethod(x, recvVal, args); ok {
		return v
	}

	if fn, ok := in.methodFor(runtimeTypeName(recvVal), x.Name); ok {
		cl := in.methodClosureOf(fn)
		v, err := in.call(cl, append([]Value{recvVal}, args...), x.Span())
		if err != nil {
			panic(err)
		}
		return v
	}

	if rec, ok := recvVal.(*RecordValue); ok {
		if member, ok := rec.Fields[x.Name]; ok {
			if cl, ok := member.(*ClosureValue); ok {
				v, err := in.call(cl, args, x.Span())
				if err != nil {
					panic(err)
				}
				return v
			}
		}
	}

	panic(rtErr(ErrNotCallable, x.Span(), "unknown method '%s' on %s", x.Name, recvVal.Kind()))
}

// evalBuiltinMethod implements the handful of methods the checker treats
// as built-in rather than user-defined (spec §4.6's Option/Result/List
// surface exposed as methods, not only as std functions).
func (in *Interp) evalBuiltinMethod(x *ast.MethodCall, recv Value, args []Value) (Value, bool) {
	switch x.Name {
	case "len":
		switch r := recv.(type) {
		case *ArrayValue:
			return IntValue{Val: int64(len(r.Elems))}, true
		case StringValue:
			return IntValue{Val: int64(len([]rune(r.Val)))}, true
		case *VariantValue:
			if elems, ok := listToSlice(r); ok {
				return IntValue{Val: int64(len(elems))}, true
			}
		}
	case "is_some":
		if vv, ok := recv.(*VariantValue); ok {
			return BoolValue{Val: vv.Name == "Some"}, true
		}
	case "is_none":
		if vv, ok := recv.(*VariantValue); ok {
			return BoolValue{Val: vv.Name == "None"}, true
		}
	case "is_ok":
		if vv, ok := recv.(*VariantValue); ok {
			return BoolValue{Val: vv.Name == "Ok"}, true
		}
	case "is_err":
		if vv, ok := recv.(*VariantValue); ok {
			return BoolValue{Val: vv.Name == "Err"}, true
		}
	case "unwrap":
		if vv, ok := recv.(*VariantValue); ok {
			switch vv.Name {
			case "Some", "Ok":
				return vv.Positional[0], true
			case "None", "Err":
				panic(rtErr(ErrInvalidOperation, x.Span(), "called unwrap on %s", vv.Name))
			}
		}
	case "unwrap_or":
		if vv, ok := recv.(*VariantValue); ok {
			switch vv.Name {
			case "Some", "Ok":
				return vv.Positional[0], true
			case "None", "Err":
				return args[0], true
			}
		}
	}
	return nil, false
}

func runtimeTypeName(v Value) string {
	switch rv := v.(type) {
	case *RecordValue:
		return rv.TypeName
	case *VariantValue:
		return rv.TypeName
	}
	return v.Kind()
}
