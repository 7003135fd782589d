package interp

import (
	"github.com/cwbudde/ki/internal/ast"
)

// execBlock runs stmts in env (the caller decides whether env is a fresh
// child scope or the same frame), stopping early on the first signal that
// isn't sigNone (spec §4.5, "block creates a fresh environment").
func (in *Interp) execBlock(stmts []ast.Stmt, env *Environment) signal {
	for _, s := range stmts {
		if sig := in.execStmt(s, env); sig.kind != sigNone {
			return sig
		}
	}
	return noSignal
}

func (in *Interp) execStmt(s ast.Stmt, env *Environment) signal {
	switch st := s.(type) {
	case *ast.LetStmt:
		val := in.Eval(st.Init, env)
		in.bindPattern(st.Pattern, val, env)
		return noSignal
	case *ast.VarStmt:
		var val Value = VoidValue{}
		if st.Init != nil {
			val = in.Eval(st.Init, env)
		}
		env.Define(st.Name, val)
		return noSignal
	case *ast.Assignment:
		in.execAssignment(st, env)
		return noSignal
	case *ast.IfStmt:
		cond := in.Eval(st.Cond, env)
		if asBool(cond) {
			return in.execBlock(st.Then.Stmts, NewEnclosedEnvironment(env))
		}
		if st.Else != nil {
			return in.execStmt(st.Else, env)
		}
		return noSignal
	case *ast.Block:
		return in.execBlock(st.Stmts, NewEnclosedEnvironment(env))
	case *ast.ForStmt:
		return in.execForStmt(st, env)
	case *ast.WhileStmt:
		return in.execWhileStmt(st, env)
	case *ast.LoopStmt:
		for {
			sig := in.execBlock(st.Body.Stmts, NewEnclosedEnvironment(env))
			switch sig.kind {
			case sigBreak:
				if sig.label == "" {
					return noSignal
				}
				return sig
			case sigReturn:
				return sig
			}
		}
	case *ast.MatchStmt:
		return in.execMatchStmt(st, env)
	case *ast.ReturnStmt:
		return in.execReturnStmt(st, env)
	case *ast.BreakStmt:
		var val Value = VoidValue{}
		if st.Value != nil {
			val = in.Eval(st.Value, env)
		}
		return signal{kind: sigBreak, value: val, label: st.Label}
	case *ast.ExprStmt:
		in.Eval(st.Expr, env)
		return noSignal
	}
	return noSignal
}

func (in *Interp) execAssignment(st *ast.Assignment, env *Environment) {
	val := in.Eval(st.Value, env)
	switch target := st.Target.(type) {
	case *ast.Ident:
		if err := env.Set(target.Name, val); err != nil {
			panic(rtErr(ErrUndefinedVariable, st.Span(), "%s", err))
		}
	case *ast.FieldAccess:
		recv := in.Eval(target.Target, env)
		rec, ok := recv.(*RecordValue)
		if !ok {
			panic(rtErr(ErrFieldNotFound, st.Span(), "assignment target is not a record"))
		}
		rec.Set(target.Name, val)
	case *ast.IndexAccess:
		recv := in.Eval(target.Target, env)
		idx := in.Eval(target.Index, env)
		i := int(asInt(idx))
		switch arr := recv.(type) {
		case *ArrayValue:
			if i < 0 || i >= len(arr.Elems) {
				panic(rtErr(ErrIndexOutOfBounds, st.Span(), "index %d out of bounds (length %d)", i, len(arr.Elems)))
			}
			arr.Elems[i] = val
		default:
			panic(rtErr(ErrTypeMismatch, st.Span(), "cannot index-assign into %s", recv.Kind()))
		}
	default:
		panic(rtErr(ErrInvalidOperation, st.Span(), "invalid assignment target"))
	}
}

func (in *Interp) execForStmt(st *ast.ForStmt, env *Environment) signal {
	items, err := in.iterate(st.Iterable, env)
	if err != nil {
		panic(err)
	}
	for _, item := range items {
		loopEnv := NewEnclosedEnvironment(env)
		in.bindPattern(st.Pattern, item, loopEnv)
		sig := in.execBlock(st.Body.Stmts, loopEnv)
		switch sig.kind {
		case sigBreak:
			if sig.label == "" {
				return noSignal
			}
			return sig
		case sigReturn:
			return sig
		}
	}
	return noSignal
}

// iterate materializes an iterable expression's elements: arrays and
// tuples directly, strings as one-character-each ArrayValue-less rune
// iteration via a CharValue slice, list Cons/Nil chains via listToSlice,
// and the sentinel range tuple spec's RangeExpr produces.
func (in *Interp) iterate(e ast.Expr, env *Environment) ([]Value, *RuntimeError) {
	if rng, ok := e.(*ast.RangeExpr); ok {
		start, end := int64(0), int64(0)
		if rng.Start != nil {
			start = asInt(in.Eval(rng.Start, env))
		}
		if rng.End != nil {
			end = asInt(in.Eval(rng.End, env))
		}
		if rng.Inclusive {
			end++
		}
		out := make([]Value, 0, max64(end-start, 0))
		for i := start; i < end; i++ {
			out = append(out, IntValue{Val: i})
		}
		return out, nil
	}
	v := in.Eval(e, env)
	switch it := v.(type) {
	case *ArrayValue:
		return it.Elems, nil
	case TupleValue:
		return it.Elems, nil
	case StringValue:
		runes := []rune(it.Val)
		out := make([]Value, len(runes))
		for i, r := range runes {
			out[i] = CharValue{Val: r}
		}
		return out, nil
	case *VariantValue:
		if elems, ok := listToSlice(it); ok {
			return elems, nil
		}
	}
	return nil, rtErr(ErrTypeMismatch, e.Span(), "%s is not iterable", v.Kind())
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func (in *Interp) execWhileStmt(st *ast.WhileStmt, env *Environment) signal {
	for asBool(in.Eval(st.Cond, env)) {
		sig := in.execBlock(st.Body.Stmts, NewEnclosedEnvironment(env))
		switch sig.kind {
		case sigBreak:
			if sig.label == "" {
				return noSignal
			}
			return sig
		case sigReturn:
			return sig
		}
	}
	return noSignal
}

func (in *Interp) execMatchStmt(st *ast.MatchStmt, env *Environment) signal {
	subject := in.Eval(st.Subject, env)
	for _, arm := range st.Arms {
		armEnv := NewEnclosedEnvironment(env)
		if !in.matchPattern(arm.Pattern, subject, armEnv) {
			continue
		}
		if arm.Guard != nil && !asBool(in.Eval(arm.Guard, armEnv)) {
			continue
		}
		if arm.Body.Expr != nil {
			in.Eval(arm.Body.Expr, armEnv)
			return noSignal
		}
		return in.execBlock(arm.Body.Block.Stmts, armEnv)
	}
	panic(rtErr(ErrMatchFailed, st.Span(), "no arm matched subject %s", subject.String()))
}

// execReturnStmt evaluates the return value, detecting the direct-call
// tail-position case spec §4.5 requires be trampolined rather than
// recursed: `return f(...)` where f evaluates to a ki closure becomes a
// tailCall signal instead of an ordinary nested call() invocation.
func (in *Interp) execReturnStmt(st *ast.ReturnStmt, env *Environment) signal {
	if st.Value == nil {
		return signal{kind: sigReturn, value: VoidValue{}}
	}
	if call, ok := st.Value.(*ast.Call); ok {
		if cl, args, ok := in.tryTailCall(call, env); ok {
			return signal{kind: sigReturn, tail: &tailCall{Closure: cl, Args: args}}
		}
	}
	return signal{kind: sigReturn, value: in.Eval(st.Value, env)}
}

// tryTailCall evaluates call's callee and arguments and reports whether
// the callee is a non-native ki closure (native/built-in calls are never
// trampolined — there's no user call frame to elide).
func (in *Interp) tryTailCall(call *ast.Call, env *Environment) (*ClosureValue, []Value, bool) {
	calleeVal := in.Eval(call.Callee, env)
	cl, ok := calleeVal.(*ClosureValue)
	if !ok || cl.Native != nil {
		return nil, nil, false
	}
	args := make([]Value, len(call.Args))
	for i, a := range call.Args {
		args[i] = in.Eval(a, env)
	}
	return cl, args, true
}
