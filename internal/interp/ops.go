package interp

import (
	"strings"

	"github.com/cwbudde/ki/internal/ast"
)

func (in *Interp) evalBinary(x *ast.Binary, env *Environment) Value {
	switch x.Op {
	case "and":
		if !asBool(in.Eval(x.Left, env)) {
			return BoolValue{Val: false}
		}
		return BoolValue{Val: asBool(in.Eval(x.Right, env))}
	case "or":
		if asBool(in.Eval(x.Left, env)) {
			return BoolValue{Val: true}
		}
		return BoolValue{Val: asBool(in.Eval(x.Right, env))}
	case "is":
		return in.evalIsOp(x, env)
	case "in":
		return in.evalInOp(x, env)
	}

	left := in.Eval(x.Left, env)
	right := in.Eval(x.Right, env)

	switch x.Op {
	case "==":
		return BoolValue{Val: valuesEqual(left, right)}
	case "!=":
		return BoolValue{Val: !valuesEqual(left, right)}
	case "<", "<=", ">", ">=":
		return in.evalComparison(x, left, right)
	case "+":
		if ls, ok := left.(StringValue); ok {
			rs, ok := right.(StringValue)
			if !ok {
				panic(rtErr(ErrTypeMismatch, x.Span(), "cannot add string and %s", right.Kind()))
			}
			return StringValue{Val: ls.Val + rs.Val}
		}
		return in.evalArith(x, left, right)
	case "-", "*", "/", "%":
		return in.evalArith(x, left, right)
	}
	panic(rtErr(ErrInvalidOperation, x.Span(), "unknown operator '%s'", x.Op))
}

func (in *Interp) evalComparison(x *ast.Binary, left, right Value) Value {
	lf, rf, ok := bothNumeric(left, right)
	if !ok {
		panic(rtErr(ErrTypeMismatch, x.Span(), "cannot compare %s with %s", left.Kind(), right.Kind()))
	}
	var result bool
	switch x.Op {
	case "<":
		result = lf < rf
	case "<=":
		result = lf <= rf
	case ">":
		result = lf > rf
	case ">=":
		result = lf >= rf
	}
	return BoolValue{Val: result}
}

func bothNumeric(left, right Value) (float64, float64, bool) {
	lf, lok := numeric(left)
	rf, rok := numeric(right)
	return lf, rf, lok && rok
}

func numeric(v Value) (float64, bool) {
	switch x := v.(type) {
	case IntValue:
		return float64(x.Val), true
	case FloatValue:
		return x.Val, true
	case CharValue:
		return float64(x.Val), true
	}
	return 0, false
}

// evalArith implements +,-,*,/,% over int and float operands, raising
// ErrDivisionByZero rather than following Go's float Inf/NaN behavior or
// panicking on integer division, per spec §4.5's "Failure" list.
func (in *Interp) evalArith(x *ast.Binary, left, right Value) Value {
	if li, ok := left.(IntValue); ok {
		ri, ok := right.(IntValue)
		if !ok {
			panic(rtErr(ErrTypeMismatch, x.Span(), "operator '%s' requires operands of the same type", x.Op))
		}
		return in.evalIntArith(x, li, ri)
	}
	if lf, ok := left.(FloatValue); ok {
		rf, ok := right.(FloatValue)
		if !ok {
			panic(rtErr(ErrTypeMismatch, x.Span(), "operator '%s' requires operands of the same type", x.Op))
		}
		return in.evalFloatArith(x, lf, rf)
	}
	panic(rtErr(ErrTypeMismatch, x.Span(), "operator '%s' requires numeric operands, got %s", x.Op, left.Kind()))
}

func (in *Interp) evalIntArith(x *ast.Binary, l, r IntValue) Value {
	suffix := l.Suffix
	if suffix == "" {
		suffix = r.Suffix
	}
	switch x.Op {
	case "+":
		return IntValue{Val: l.Val + r.Val, Suffix: suffix}
	case "-":
		return IntValue{Val: l.Val - r.Val, Suffix: suffix}
	case "*":
		return IntValue{Val: l.Val * r.Val, Suffix: suffix}
	case "/":
		if r.Val == 0 {
			panic(rtErr(ErrDivisionByZero, x.Span(), "division by zero"))
		}
		return IntValue{Val: l.Val / r.Val, Suffix: suffix}
	case "%":
		if r.Val == 0 {
			panic(rtErr(ErrDivisionByZero, x.Span(), "division by zero"))
		}
		return IntValue{Val: l.Val % r.Val, Suffix: suffix}
	}
	panic(rtErr(ErrInvalidOperation, x.Span(), "unknown integer operator '%s'", x.Op))
}

func (in *Interp) evalFloatArith(x *ast.Binary, l, r FloatValue) Value {
	suffix := l.Suffix
	if suffix == "" {
		suffix = r.Suffix
	}
	switch x.Op {
	case "+":
		return FloatValue{Val: l.Val + r.Val, Suffix: suffix}
	case "-":
		return FloatValue{Val: l.Val - r.Val, Suffix: suffix}
	case "*":
		return FloatValue{Val: l.Val * r.Val, Suffix: suffix}
	case "/":
		if r.Val == 0 {
			panic(rtErr(ErrDivisionByZero, x.Span(), "division by zero"))
		}
		return FloatValue{Val: l.Val / r.Val, Suffix: suffix}
	}
	panic(rtErr(ErrInvalidOperation, x.Span(), "unknown float operator '%s'", x.Op))
}

// evalIsOp implements the `is` variant test, e.g. `result is Ok`. The right
// operand names a variant (or record type) rather than an evaluable
// expression, so it is read directly off the Ident/FieldAccess AST rather
// than evaluated through the environment.
func (in *Interp) evalIsOp(x *ast.Binary, env *Environment) Value {
	left := in.Eval(x.Left, env)
	name := variantNameOf(x.Right)
	switch lv := left.(type) {
	case *VariantValue:
		return BoolValue{Val: lv.Name == name}
	case *RecordValue:
		return BoolValue{Val: lv.TypeName == name}
	}
	return BoolValue{Val: false}
}

func variantNameOf(e ast.Expr) string {
	switch x := e.(type) {
	case *ast.Ident:
		return x.Name
	case *ast.FieldAccess:
		return x.Name
	}
	return ""
}

// evalInOp implements membership: `x in xs` over arrays, lists, and
// substring search over strings.
func (in *Interp) evalInOp(x *ast.Binary, env *Environment) Value {
	needle := in.Eval(x.Left, env)
	haystack := in.Eval(x.Right, env)
	switch hs := haystack.(type) {
	case *ArrayValue:
		for _, e := range hs.Elems {
			if valuesEqual(e, needle) {
				return BoolValue{Val: true}
			}
		}
		return BoolValue{Val: false}
	case StringValue:
		ns, ok := needle.(StringValue)
		if !ok {
			panic(rtErr(ErrTypeMismatch, x.Span(), "'in' over a string requires a string operand"))
		}
		return BoolValue{Val: strings.Contains(hs.Val, ns.Val)}
	case *VariantValue:
		elems, ok := listToSlice(hs)
		if !ok {
			break
		}
		for _, e := range elems {
			if valuesEqual(e, needle) {
				return BoolValue{Val: true}
			}
		}
		return BoolValue{Val: false}
	}
	panic(rtErr(ErrTypeMismatch, x.Span(), "'in' requires an array, list, or string"))
}

func (in *Interp) evalUnary(x *ast.Unary, env *Environment) Value {
	v := in.Eval(x.Operand, env)
	switch x.Op {
	case "-":
		switch n := v.(type) {
		case IntValue:
			return IntValue{Val: -n.Val, Suffix: n.Suffix}
		case FloatValue:
			return FloatValue{Val: -n.Val, Suffix: n.Suffix}
		}
		panic(rtErr(ErrTypeMismatch, x.Span(), "unary '-' requires a numeric operand, got %s", v.Kind()))
	case "not":
		return BoolValue{Val: !asBool(v)}
	}
	panic(rtErr(ErrInvalidOperation, x.Span(), "unknown unary operator '%s'", x.Op))
}
