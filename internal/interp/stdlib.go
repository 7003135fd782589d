package interp

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/maruel/natural"
	"golang.org/x/text/unicode/norm"
)

// normalizedRunes puts s in Unicode Normalization Form C before slicing it
// into runes, so an index into std.string's char-based API lands on the
// same scalar a composed form and a decomposed form of the "same" text
// would both expect (spec §4.7's std.string operating "scalar-wise").
func normalizedRunes(s string) []rune {
	return []rune(norm.NFC.String(s))
}

// installStdlib builds the `std` module tree, backing every signature
// checker/stdlib_sigs.go registers (spec §4.7): each leaf is a native
// closure over the same Value/Environment model the rest of the
// evaluator uses, so calling `std.list.map` is indistinguishable from
// calling a user function once resolved.
func installStdlib(in *Interp, env *Environment) {
	native := func(name string, effect bool, fn NativeFunc) *ClosureValue {
		return &ClosureValue{Name: name, Effect: effect, Native: fn}
	}
	mod := func(path string, members map[string]Value) *ModuleValue {
		return &ModuleValue{Path: path, Members: members}
	}

	io := mod("std.io", map[string]Value{
		"print":     native("print", true, builtinPrint(false)),
		"println":   native("println", true, builtinPrint(true)),
		"eprint":    native("eprint", true, stdEprint(false)),
		"eprintln":  native("eprintln", true, stdEprint(true)),
		"read_line": native("read_line", true, stdReadLine),
	})

	list := mod("std.list", map[string]Value{
		"empty":      native("empty", false, func(in *Interp, a []Value) (Value, error) { return nilList(), nil }),
		"singleton":  native("singleton", false, func(in *Interp, a []Value) (Value, error) { return cons(a[0], nilList()), nil }),
		"cons":       native("cons", false, func(in *Interp, a []Value) (Value, error) { return cons(a[0], a[1]), nil }),
		"map":        native("map", false, stdListMap),
		"filter":     native("filter", false, stdListFilter),
		"fold":       native("fold", false, stdListFold),
		"fold_right": native("fold_right", false, stdListFoldRight),
		"head":       native("head", false, stdListHead),
		"tail":       native("tail", false, stdListTail),
		"find":       native("find", false, stdListFind),
		"any":        native("any", false, stdListAny),
		"all":        native("all", false, stdListAll),
		"length":     native("length", false, stdListLength),
		"reverse":    native("reverse", false, stdListReverse),
		"concat":     native("concat", false, stdListConcat),
		"flatten":    native("flatten", false, stdListFlatten),
		"take":       native("take", false, stdListTake),
		"drop":       native("drop", false, stdListDrop),
		"zip":        native("zip", false, stdListZip),
	})

	option := mod("std.option", map[string]Value{
		"map":       native("map", false, stdOptionMap),
		"and_then":  native("and_then", false, stdOptionAndThen),
		"unwrap_or": native("unwrap_or", false, stdUnwrapOr),
		"is_some":   native("is_some", false, stdVariantIs("Some")),
		"is_none":   native("is_none", false, stdVariantIs("None")),
	})

	result := mod("std.result", map[string]Value{
		"map":       native("map", false, stdResultMap),
		"map_err":   native("map_err", false, stdResultMapErr),
		"and_then":  native("and_then", false, stdResultAndThen),
		"unwrap_or": native("unwrap_or", false, stdUnwrapOr),
		"is_ok":     native("is_ok", false, stdVariantIs("Ok")),
		"is_err":    native("is_err", false, stdVariantIs("Err")),
	})

	strMod := mod("std.string", map[string]Value{
		"length":      native("length", false, builtinLen),
		"split": native("split", false, func(in *Interp, a []Value) (Value, error) {
			v, err := builtinSplit(in, a)
			if err != nil {
				return nil, err
			}
			return sliceToList(v.(*ArrayValue).Elems), nil
		}),
		"trim":        native("trim", false, builtinTrim),
		"concat":      native("concat", false, stdStringConcat),
		"contains":    native("contains", false, builtinContains),
		"starts_with": native("starts_with", false, builtinStartsWith),
		"ends_with":   native("ends_with", false, builtinEndsWith),
		"to_upper":    native("to_upper", false, stdToUpper),
		"to_lower":    native("to_lower", false, stdToLower),
		"replace":     native("replace", false, stdReplace),
		"substring":   native("substring", false, stdSubstring),
		"char_at":     native("char_at", false, stdCharAt),
		"index_of":    native("index_of", false, stdIndexOf),
		"chars":       native("chars", false, stdChars),
		"parse_int":   native("parse_int", false, stdParseInt),
	})

	fs := mod("std.fs", map[string]Value{
		"read_file":  native("read_file", true, stdReadFile),
		"write_file": native("write_file", true, stdWriteFile),
		"exists":     native("exists", true, stdExists),
		"remove":     native("remove", true, stdRemove),
	})

	builder := mod("std.builder", map[string]Value{
		"new":          native("new", false, func(in *Interp, a []Value) (Value, error) { return &BuilderValue{}, nil }),
		"append":       native("append", false, stdBuilderAppend),
		"append_char":  native("append_char", false, stdBuilderAppend),
		"append_int":   native("append_int", false, stdBuilderAppend),
		"append_float": native("append_float", false, stdBuilderAppend),
		"build":        native("build", false, func(in *Interp, a []Value) (Value, error) { return StringValue{Val: a[0].(*BuilderValue).String()}, nil }),
		"clear":        native("clear", false, func(in *Interp, a []Value) (Value, error) { return &BuilderValue{}, nil }),
		"length":       native("length", false, func(in *Interp, a []Value) (Value, error) { return IntValue{Val: int64(len(a[0].(*BuilderValue).String()))}, nil }),
	})

	mapMod := mod("std.map", map[string]Value{
		"new":      native("new", false, func(in *Interp, a []Value) (Value, error) { return &MapValue{}, nil }),
		"put":      native("put", false, stdMapPut),
		"get":      native("get", false, stdMapGet),
		"contains": native("contains", false, stdMapContains),
		"remove":   native("remove", false, stdMapRemove),
		"keys":     native("keys", false, stdMapKeys),
		"values":   native("values", false, stdMapValues),
		"entries":  native("entries", false, stdMapEntries),
		"size":     native("size", false, func(in *Interp, a []Value) (Value, error) { return IntValue{Val: int64(len(a[0].(*MapValue).Entries))}, nil }),
		"is_empty": native("is_empty", false, func(in *Interp, a []Value) (Value, error) { return BoolValue{Val: len(a[0].(*MapValue).Entries) == 0}, nil }),
	})

	char := mod("std.char", map[string]Value{
		"from_i32": native("from_i32", false, func(in *Interp, a []Value) (Value, error) { return CharValue{Val: rune(asInt(a[0]))}, nil }),
		"to_i32":   native("to_i32", false, func(in *Interp, a []Value) (Value, error) { return IntValue{Val: int64(a[0].(CharValue).Val)}, nil }),
	})

	math := mod("std.math", map[string]Value{
		"trunc_to_i64": native("trunc_to_i64", false, func(in *Interp, a []Value) (Value, error) { return IntValue{Val: int64(asFloat(a[0]))}, nil }),
	})

	timeMod := mod("std.time", map[string]Value{
		"now":     native("now", true, func(in *Interp, a []Value) (Value, error) { return IntValue{Val: time.Now().UnixMilli()}, nil }),
		"sleep":   native("sleep", true, stdSleep),
		"elapsed": native("elapsed", true, func(in *Interp, a []Value) (Value, error) { return IntValue{Val: time.Now().UnixMilli() - asInt(a[0])}, nil }),
	})

	assertMod := mod("std.assert", map[string]Value{
		"assert":    native("assert", true, builtinAssert),
		"assert_eq": native("assert_eq", true, builtinAssertEq),
	})

	env.Define("std", mod("std", map[string]Value{
		"io": io, "list": list, "option": option, "result": result,
		"string": strMod, "fs": fs, "builder": builder, "map": mapMod,
		"char": char, "math": math, "time": timeMod, "assert": assertMod,
	}))
}

func stdEprint(newline bool) NativeFunc {
	return func(in *Interp, args []Value) (Value, error) {
		if newline {
			fmt.Fprintln(in.Stderr, args[0].String())
		} else {
			fmt.Fprint(in.Stderr, args[0].String())
		}
		return VoidValue{}, nil
	}
}

func stdReadLine(in *Interp, args []Value) (Value, error) {
	var line string
	_, err := fmt.Fscanln(in.Stdin, &line)
	if err != nil {
		return StringValue{}, nil
	}
	return StringValue{Val: line}, nil
}

func (in *Interp) callFn(fn Value, args []Value) Value {
	cl, ok := fn.(*ClosureValue)
	if !ok {
		panic(rtErr(ErrNotCallable, diagZero, "%s is not callable", fn.Kind()))
	}
	v, err := in.call(cl, args, diagZero)
	if err != nil {
		panic(err)
	}
	return v
}

func stdListMap(in *Interp, args []Value) (Value, error) {
	elems, _ := listToSlice(args[0])
	out := make([]Value, len(elems))
	for i, e := range elems {
		out[i] = in.callFn(args[1], []Value{e})
	}
	return sliceToList(out), nil
}

func stdListFilter(in *Interp, args []Value) (Value, error) {
	elems, _ := listToSlice(args[0])
	var out []Value
	for _, e := range elems {
		if asBool(in.callFn(args[1], []Value{e})) {
			out = append(out, e)
		}
	}
	return sliceToList(out), nil
}

func stdListFold(in *Interp, args []Value) (Value, error) {
	elems, _ := listToSlice(args[0])
	acc := args[1]
	for _, e := range elems {
		acc = in.callFn(args[2], []Value{acc, e})
	}
	return acc, nil
}

func stdListFoldRight(in *Interp, args []Value) (Value, error) {
	elems, _ := listToSlice(args[0])
	acc := args[1]
	for i := len(elems) - 1; i >= 0; i-- {
		acc = in.callFn(args[2], []Value{elems[i], acc})
	}
	return acc, nil
}

func stdListHead(in *Interp, args []Value) (Value, error) {
	elems, _ := listToSlice(args[0])
	if len(elems) == 0 {
		return none(), nil
	}
	return some(elems[0]), nil
}

func stdListTail(in *Interp, args []Value) (Value, error) {
	vv := args[0].(*VariantValue)
	if vv.Name == "Nil" {
		return none(), nil
	}
	return some(vv.Positional[1]), nil
}

func stdListFind(in *Interp, args []Value) (Value, error) {
	elems, _ := listToSlice(args[0])
	for _, e := range elems {
		if asBool(in.callFn(args[1], []Value{e})) {
			return some(e), nil
		}
	}
	return none(), nil
}

func stdListAny(in *Interp, args []Value) (Value, error) {
	elems, _ := listToSlice(args[0])
	for _, e := range elems {
		if asBool(in.callFn(args[1], []Value{e})) {
			return BoolValue{Val: true}, nil
		}
	}
	return BoolValue{Val: false}, nil
}

func stdListAll(in *Interp, args []Value) (Value, error) {
	elems, _ := listToSlice(args[0])
	for _, e := range elems {
		if !asBool(in.callFn(args[1], []Value{e})) {
			return BoolValue{Val: false}, nil
		}
	}
	return BoolValue{Val: true}, nil
}

func stdListLength(in *Interp, args []Value) (Value, error) {
	elems, _ := listToSlice(args[0])
	return IntValue{Val: int64(len(elems))}, nil
}

func stdListReverse(in *Interp, args []Value) (Value, error) {
	elems, _ := listToSlice(args[0])
	out := make([]Value, len(elems))
	for i, e := range elems {
		out[len(out)-1-i] = e
	}
	return sliceToList(out), nil
}

func stdListConcat(in *Interp, args []Value) (Value, error) {
	a, _ := listToSlice(args[0])
	b, _ := listToSlice(args[1])
	return sliceToList(append(append([]Value{}, a...), b...)), nil
}

func stdListFlatten(in *Interp, args []Value) (Value, error) {
	outer, _ := listToSlice(args[0])
	var flat []Value
	for _, inner := range outer {
		elems, _ := listToSlice(inner)
		flat = append(flat, elems...)
	}
	return sliceToList(flat), nil
}

func stdListTake(in *Interp, args []Value) (Value, error) {
	elems, _ := listToSlice(args[0])
	n := int(asInt(args[1]))
	if n > len(elems) {
		n = len(elems)
	}
	if n < 0 {
		n = 0
	}
	return sliceToList(append([]Value{}, elems[:n]...)), nil
}

func stdListDrop(in *Interp, args []Value) (Value, error) {
	elems, _ := listToSlice(args[0])
	n := int(asInt(args[1]))
	if n > len(elems) {
		n = len(elems)
	}
	if n < 0 {
		n = 0
	}
	return sliceToList(append([]Value{}, elems[n:]...)), nil
}

func stdListZip(in *Interp, args []Value) (Value, error) {
	a, _ := listToSlice(args[0])
	b, _ := listToSlice(args[1])
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	out := make([]Value, n)
	for i := 0; i < n; i++ {
		out[i] = TupleValue{Elems: []Value{a[i], b[i]}}
	}
	return sliceToList(out), nil
}

func stdOptionMap(in *Interp, args []Value) (Value, error) {
	vv := args[0].(*VariantValue)
	if vv.Name == "None" {
		return vv, nil
	}
	return some(in.callFn(args[1], []Value{vv.Positional[0]})), nil
}

func stdOptionAndThen(in *Interp, args []Value) (Value, error) {
	vv := args[0].(*VariantValue)
	if vv.Name == "None" {
		return vv, nil
	}
	return in.callFn(args[1], []Value{vv.Positional[0]}), nil
}

func stdUnwrapOr(in *Interp, args []Value) (Value, error) {
	vv := args[0].(*VariantValue)
	switch vv.Name {
	case "Some", "Ok":
		return vv.Positional[0], nil
	default:
		return args[1], nil
	}
}

func stdVariantIs(name string) NativeFunc {
	return func(in *Interp, args []Value) (Value, error) {
		vv, ok := args[0].(*VariantValue)
		return BoolValue{Val: ok && vv.Name == name}, nil
	}
}

func stdResultMap(in *Interp, args []Value) (Value, error) {
	vv := args[0].(*VariantValue)
	if vv.Name == "Err" {
		return vv, nil
	}
	return ok(in.callFn(args[1], []Value{vv.Positional[0]})), nil
}

func stdResultMapErr(in *Interp, args []Value) (Value, error) {
	vv := args[0].(*VariantValue)
	if vv.Name == "Ok" {
		return vv, nil
	}
	return errV(in.callFn(args[1], []Value{vv.Positional[0]})), nil
}

func stdResultAndThen(in *Interp, args []Value) (Value, error) {
	vv := args[0].(*VariantValue)
	if vv.Name == "Err" {
		return vv, nil
	}
	return in.callFn(args[1], []Value{vv.Positional[0]}), nil
}

func stdStringConcat(in *Interp, args []Value) (Value, error) {
	return StringValue{Val: args[0].(StringValue).Val + args[1].(StringValue).Val}, nil
}

func stdToUpper(in *Interp, args []Value) (Value, error) {
	return StringValue{Val: strings.ToUpper(norm.NFC.String(args[0].(StringValue).Val))}, nil
}

func stdToLower(in *Interp, args []Value) (Value, error) {
	return StringValue{Val: strings.ToLower(norm.NFC.String(args[0].(StringValue).Val))}, nil
}

func stdReplace(in *Interp, args []Value) (Value, error) {
	s := args[0].(StringValue).Val
	old := args[1].(StringValue).Val
	newS := args[2].(StringValue).Val
	return StringValue{Val: strings.ReplaceAll(s, old, newS)}, nil
}

func stdSubstring(in *Interp, args []Value) (Value, error) {
	runes := normalizedRunes(args[0].(StringValue).Val)
	start := int(asInt(args[1]))
	end := int(asInt(args[2]))
	if start < 0 {
		start = 0
	}
	if end > len(runes) {
		end = len(runes)
	}
	if start > end {
		start = end
	}
	return StringValue{Val: string(runes[start:end])}, nil
}

func stdCharAt(in *Interp, args []Value) (Value, error) {
	runes := normalizedRunes(args[0].(StringValue).Val)
	i := int(asInt(args[1]))
	if i < 0 || i >= len(runes) {
		return CharValue{}, fmt.Errorf("char_at: index %d out of bounds", i)
	}
	return CharValue{Val: runes[i]}, nil
}

func stdIndexOf(in *Interp, args []Value) (Value, error) {
	s := norm.NFC.String(args[0].(StringValue).Val)
	sub := norm.NFC.String(args[1].(StringValue).Val)
	idx := strings.Index(s, sub)
	if idx < 0 {
		return none(), nil
	}
	return some(IntValue{Val: int64(len([]rune(s[:idx])))}), nil
}

func stdChars(in *Interp, args []Value) (Value, error) {
	runes := normalizedRunes(args[0].(StringValue).Val)
	out := make([]Value, len(runes))
	for i, r := range runes {
		out[i] = CharValue{Val: r}
	}
	return sliceToList(out), nil
}

func stdParseInt(in *Interp, args []Value) (Value, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(args[0].(StringValue).Val), 10, 32)
	if err != nil {
		return errV(StringValue{Val: "invalid integer"}), nil
	}
	return ok(IntValue{Val: n}), nil
}

func stdReadFile(in *Interp, args []Value) (Value, error) {
	data, err := os.ReadFile(args[0].(StringValue).Val)
	if err != nil {
		return errV(StringValue{Val: err.Error()}), nil
	}
	return ok(StringValue{Val: string(data)}), nil
}

func stdWriteFile(in *Interp, args []Value) (Value, error) {
	path := args[0].(StringValue).Val
	content := args[1].(StringValue).Val
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errV(StringValue{Val: err.Error()}), nil
	}
	return ok(VoidValue{}), nil
}

func stdExists(in *Interp, args []Value) (Value, error) {
	_, err := os.Stat(args[0].(StringValue).Val)
	return BoolValue{Val: err == nil}, nil
}

func stdRemove(in *Interp, args []Value) (Value, error) {
	if err := os.Remove(args[0].(StringValue).Val); err != nil {
		return errV(StringValue{Val: err.Error()}), nil
	}
	return ok(VoidValue{}), nil
}

func stdSleep(in *Interp, args []Value) (Value, error) {
	time.Sleep(time.Duration(asInt(args[0])) * time.Millisecond)
	return VoidValue{}, nil
}

func stdBuilderAppend(in *Interp, args []Value) (Value, error) {
	b := args[0].(*BuilderValue)
	parts := append(append([]string{}, b.Parts...), args[1].String())
	return &BuilderValue{Parts: parts}, nil
}

func stdMapPut(in *Interp, args []Value) (Value, error) {
	m := args[0].(*MapValue)
	entries := append([]MapEntry{}, m.Entries...)
	if i, found := m.find(args[1]); found {
		entries[i].Val = args[2]
	} else {
		entries = append(entries, MapEntry{Key: args[1], Val: args[2]})
	}
	return &MapValue{Entries: entries}, nil
}

func stdMapGet(in *Interp, args []Value) (Value, error) {
	m := args[0].(*MapValue)
	if i, found := m.find(args[1]); found {
		return some(m.Entries[i].Val), nil
	}
	return none(), nil
}

func stdMapContains(in *Interp, args []Value) (Value, error) {
	m := args[0].(*MapValue)
	_, found := m.find(args[1])
	return BoolValue{Val: found}, nil
}

func stdMapRemove(in *Interp, args []Value) (Value, error) {
	m := args[0].(*MapValue)
	var out []MapEntry
	for _, e := range m.Entries {
		if !valuesEqual(e.Key, args[1]) {
			out = append(out, e)
		}
	}
	return &MapValue{Entries: out}, nil
}

// naturalOrder returns m's entries sorted by natural string order when
// every key is a string (so "item2" sorts before "item10" the way a
// person reading the output would expect), falling back to insertion
// order for maps keyed by anything else.
func naturalOrder(m *MapValue) []MapEntry {
	entries := append([]MapEntry{}, m.Entries...)
	keys := make([]string, len(entries))
	for i, e := range entries {
		s, ok := e.Key.(StringValue)
		if !ok {
			return entries
		}
		keys[i] = s.Val
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return natural.Less(keys[i], keys[j])
	})
	return entries
}

func stdMapKeys(in *Interp, args []Value) (Value, error) {
	m := args[0].(*MapValue)
	entries := naturalOrder(m)
	out := make([]Value, len(entries))
	for i, e := range entries {
		out[i] = e.Key
	}
	return sliceToList(out), nil
}

func stdMapValues(in *Interp, args []Value) (Value, error) {
	m := args[0].(*MapValue)
	entries := naturalOrder(m)
	out := make([]Value, len(entries))
	for i, e := range entries {
		out[i] = e.Val
	}
	return sliceToList(out), nil
}

func stdMapEntries(in *Interp, args []Value) (Value, error) {
	m := args[0].(*MapValue)
	entries := naturalOrder(m)
	out := make([]Value, len(entries))
	for i, e := range entries {
		out[i] = TupleValue{Elems: []Value{e.Key, e.Val}}
	}
	return sliceToList(out), nil
}
