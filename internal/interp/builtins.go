package interp

import (
	"fmt"
	"strconv"
	"strings"
)

// installBuiltins defines every free-standing built-in spec §4.6 lists,
// directly in the global environment so a call site sees them exactly
// like any other bound function value. Kept inside this package (rather
// than a separate internal/builtins package) because every built-in needs
// direct access to Interp/Value/Environment, and those types belong here;
// a separate package would just re-import this one.
func installBuiltins(env *Environment) {
	def := func(name string, effect bool, fn NativeFunc) {
		env.Define(name, &ClosureValue{Name: name, Effect: effect, Native: fn})
	}

	def("print", true, builtinPrint(false))
	def("println", true, builtinPrint(true))
	def("type_of", false, builtinTypeOf)
	def("to_string", false, builtinToString)
	def("to_int", false, builtinToInt)
	def("to_float", false, builtinToFloat)
	def("abs", false, builtinAbs)
	def("min", false, builtinMin)
	def("max", false, builtinMax)
	def("len", false, builtinLen)
	def("push", false, builtinPush)
	def("pop", false, builtinPop)
	def("head", false, builtinHead)
	def("tail", false, builtinTail)
	def("empty", false, builtinEmpty)
	def("reverse", false, builtinReverse)
	def("split", false, builtinSplit)
	def("join", false, builtinJoin)
	def("trim", false, builtinTrim)
	def("contains", false, builtinContains)
	def("starts_with", false, builtinStartsWith)
	def("ends_with", false, builtinEndsWith)
	def("assert", true, builtinAssert)
	def("assert_eq", true, builtinAssertEq)
	def("to_json", false, builtinToJSON)
	def("from_json", false, builtinFromJSON)
}

func builtinPrint(newline bool) NativeFunc {
	return func(in *Interp, args []Value) (Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.String()
		}
		out := strings.Join(parts, " ")
		if newline {
			fmt.Fprintln(in.Stdout, out)
		} else {
			fmt.Fprint(in.Stdout, out)
		}
		return VoidValue{}, nil
	}
}

func builtinTypeOf(in *Interp, args []Value) (Value, error) {
	return StringValue{Val: runtimeTypeName(args[0])}, nil
}

func builtinToString(in *Interp, args []Value) (Value, error) {
	return StringValue{Val: args[0].String()}, nil
}

func builtinToInt(in *Interp, args []Value) (Value, error) {
	switch v := args[0].(type) {
	case IntValue:
		return v, nil
	case FloatValue:
		return IntValue{Val: int64(v.Val)}, nil
	case StringValue:
		n, err := strconv.ParseInt(strings.TrimSpace(v.Val), 10, 64)
		if err != nil {
			return none(), nil
		}
		return some(IntValue{Val: n}), nil
	case CharValue:
		return IntValue{Val: int64(v.Val)}, nil
	}
	return nil, fmt.Errorf("to_int: unsupported argument type %s", args[0].Kind())
}

func builtinToFloat(in *Interp, args []Value) (Value, error) {
	switch v := args[0].(type) {
	case FloatValue:
		return v, nil
	case IntValue:
		return FloatValue{Val: float64(v.Val)}, nil
	case StringValue:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Val), 64)
		if err != nil {
			return none(), nil
		}
		return some(FloatValue{Val: f}), nil
	}
	return nil, fmt.Errorf("to_float: unsupported argument type %s", args[0].Kind())
}

func builtinAbs(in *Interp, args []Value) (Value, error) {
	switch v := args[0].(type) {
	case IntValue:
		if v.Val < 0 {
			return IntValue{Val: -v.Val, Suffix: v.Suffix}, nil
		}
		return v, nil
	case FloatValue:
		if v.Val < 0 {
			return FloatValue{Val: -v.Val, Suffix: v.Suffix}, nil
		}
		return v, nil
	}
	return nil, fmt.Errorf("abs: unsupported argument type %s", args[0].Kind())
}

func builtinMin(in *Interp, args []Value) (Value, error) {
	la, lok := numeric(args[0])
	rb, rok := numeric(args[1])
	if !lok || !rok {
		return nil, fmt.Errorf("min: arguments must be numeric")
	}
	if la <= rb {
		return args[0], nil
	}
	return args[1], nil
}

func builtinMax(in *Interp, args []Value) (Value, error) {
	la, lok := numeric(args[0])
	rb, rok := numeric(args[1])
	if !lok || !rok {
		return nil, fmt.Errorf("max: arguments must be numeric")
	}
	if la >= rb {
		return args[0], nil
	}
	return args[1], nil
}

func builtinLen(in *Interp, args []Value) (Value, error) {
	switch v := args[0].(type) {
	case *ArrayValue:
		return IntValue{Val: int64(len(v.Elems))}, nil
	case StringValue:
		return IntValue{Val: int64(len([]rune(v.Val)))}, nil
	case *VariantValue:
		if elems, ok := listToSlice(v); ok {
			return IntValue{Val: int64(len(elems))}, nil
		}
	}
	return nil, fmt.Errorf("len: unsupported argument type %s", args[0].Kind())
}

// builtinPush covers both arrays and Cons/Nil lists, returning a new
// value rather than mutating (spec's "immutable element array").
func builtinPush(in *Interp, args []Value) (Value, error) {
	switch v := args[0].(type) {
	case *ArrayValue:
		elems := append(append([]Value{}, v.Elems...), args[1])
		return &ArrayValue{Elems: elems}, nil
	case *VariantValue:
		if elems, ok := listToSlice(v); ok {
			return sliceToList(append(append([]Value{}, elems...), args[1])), nil
		}
	}
	return nil, fmt.Errorf("push: unsupported argument type %s", args[0].Kind())
}

func builtinPop(in *Interp, args []Value) (Value, error) {
	switch v := args[0].(type) {
	case *ArrayValue:
		if len(v.Elems) == 0 {
			return none(), nil
		}
		elems := append([]Value{}, v.Elems[:len(v.Elems)-1]...)
		return some(&ArrayValue{Elems: elems}), nil
	case *VariantValue:
		if elems, ok := listToSlice(v); ok {
			if len(elems) == 0 {
				return none(), nil
			}
			return some(sliceToList(elems[:len(elems)-1])), nil
		}
	}
	return nil, fmt.Errorf("pop: unsupported argument type %s", args[0].Kind())
}

func builtinHead(in *Interp, args []Value) (Value, error) {
	switch v := args[0].(type) {
	case *ArrayValue:
		if len(v.Elems) == 0 {
			return none(), nil
		}
		return some(v.Elems[0]), nil
	case *VariantValue:
		if v.Name == "Cons" {
			return some(v.Positional[0]), nil
		}
		if v.Name == "Nil" {
			return none(), nil
		}
	}
	return nil, fmt.Errorf("head: unsupported argument type %s", args[0].Kind())
}

func builtinTail(in *Interp, args []Value) (Value, error) {
	switch v := args[0].(type) {
	case *ArrayValue:
		if len(v.Elems) == 0 {
			return none(), nil
		}
		return some(&ArrayValue{Elems: append([]Value{}, v.Elems[1:]...)}), nil
	case *VariantValue:
		if v.Name == "Cons" {
			return some(v.Positional[1]), nil
		}
		if v.Name == "Nil" {
			return none(), nil
		}
	}
	return nil, fmt.Errorf("tail: unsupported argument type %s", args[0].Kind())
}

func builtinEmpty(in *Interp, args []Value) (Value, error) {
	switch v := args[0].(type) {
	case *ArrayValue:
		return BoolValue{Val: len(v.Elems) == 0}, nil
	case *VariantValue:
		return BoolValue{Val: v.Name == "Nil"}, nil
	case StringValue:
		return BoolValue{Val: v.Val == ""}, nil
	}
	return nil, fmt.Errorf("empty: unsupported argument type %s", args[0].Kind())
}

func builtinReverse(in *Interp, args []Value) (Value, error) {
	switch v := args[0].(type) {
	case *ArrayValue:
		out := make([]Value, len(v.Elems))
		for i, e := range v.Elems {
			out[len(out)-1-i] = e
		}
		return &ArrayValue{Elems: out}, nil
	case *VariantValue:
		if elems, ok := listToSlice(v); ok {
			out := make([]Value, len(elems))
			for i, e := range elems {
				out[len(out)-1-i] = e
			}
			return sliceToList(out), nil
		}
	case StringValue:
		runes := []rune(v.Val)
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return StringValue{Val: string(runes)}, nil
	}
	return nil, fmt.Errorf("reverse: unsupported argument type %s", args[0].Kind())
}

func builtinSplit(in *Interp, args []Value) (Value, error) {
	s, ok1 := args[0].(StringValue)
	sep, ok2 := args[1].(StringValue)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("split: expects two strings")
	}
	parts := strings.Split(s.Val, sep.Val)
	elems := make([]Value, len(parts))
	for i, p := range parts {
		elems[i] = StringValue{Val: p}
	}
	return &ArrayValue{Elems: elems}, nil
}

func builtinJoin(in *Interp, args []Value) (Value, error) {
	arr, ok1 := args[0].(*ArrayValue)
	sep, ok2 := args[1].(StringValue)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("join: expects an array and a string")
	}
	parts := make([]string, len(arr.Elems))
	for i, e := range arr.Elems {
		s, ok := e.(StringValue)
		if !ok {
			return nil, fmt.Errorf("join: array element is not a string")
		}
		parts[i] = s.Val
	}
	return StringValue{Val: strings.Join(parts, sep.Val)}, nil
}

func builtinTrim(in *Interp, args []Value) (Value, error) {
	s, ok := args[0].(StringValue)
	if !ok {
		return nil, fmt.Errorf("trim: expects a string")
	}
	return StringValue{Val: strings.TrimSpace(s.Val)}, nil
}

func builtinContains(in *Interp, args []Value) (Value, error) {
	s, ok := args[0].(StringValue)
	if !ok {
		return nil, fmt.Errorf("contains: expects a string")
	}
	sub, ok := args[1].(StringValue)
	if !ok {
		return nil, fmt.Errorf("contains: expects a string")
	}
	return BoolValue{Val: strings.Contains(s.Val, sub.Val)}, nil
}

func builtinStartsWith(in *Interp, args []Value) (Value, error) {
	s, ok := args[0].(StringValue)
	if !ok {
		return nil, fmt.Errorf("starts_with: expects a string")
	}
	prefix, ok := args[1].(StringValue)
	if !ok {
		return nil, fmt.Errorf("starts_with: expects a string")
	}
	return BoolValue{Val: strings.HasPrefix(s.Val, prefix.Val)}, nil
}

func builtinEndsWith(in *Interp, args []Value) (Value, error) {
	s, ok := args[0].(StringValue)
	if !ok {
		return nil, fmt.Errorf("ends_with: expects a string")
	}
	suffix, ok := args[1].(StringValue)
	if !ok {
		return nil, fmt.Errorf("ends_with: expects a string")
	}
	return BoolValue{Val: strings.HasSuffix(s.Val, suffix.Val)}, nil
}

func builtinAssert(in *Interp, args []Value) (Value, error) {
	cond, ok := args[0].(BoolValue)
	if !ok {
		return nil, fmt.Errorf("assert: expects a bool")
	}
	if !cond.Val {
		msg := "assertion failed"
		if len(args) > 1 {
			if s, ok := args[1].(StringValue); ok {
				msg = s.Val
			}
		}
		return nil, &RuntimeError{Kind: ErrAssertionFailed, Message: msg}
	}
	return VoidValue{}, nil
}

func builtinAssertEq(in *Interp, args []Value) (Value, error) {
	if !valuesEqual(args[0], args[1]) {
		return nil, &RuntimeError{
			Kind:    ErrAssertionFailed,
			Message: fmt.Sprintf("assertion failed: %s != %s", args[0].String(), args[1].String()),
		}
	}
	return VoidValue{}, nil
}
