// Package interp implements the tree-walking evaluator of spec §4.5: it
// walks a resolved and checked Program, evaluating expressions and
// statements against an environment chain exactly mirroring the
// teacher's runtime/environment.go design (a case-sensitive variant of
// it, since this language has no case-insensitivity requirement).
package interp

import (
	"fmt"
	"strings"

	"github.com/cwbudde/ki/internal/ast"
)

// Value is any runtime value the interpreter produces. Kind distinguishes
// the tagged sum spec §4.5 describes; String renders it for print/println
// and string interpolation.
type Value interface {
	Kind() string
	String() string
}

type IntValue struct {
	Val    int64
	Suffix string // "" means the default i32; kept through arithmetic and negation, not shown by String
}

func (v IntValue) Kind() string   { return "int" }
func (v IntValue) String() string { return fmt.Sprintf("%d", v.Val) }

type FloatValue struct {
	Val    float64
	Suffix string
}

func (v FloatValue) Kind() string   { return "float" }
func (v FloatValue) String() string { return fmt.Sprintf("%g", v.Val) }

type StringValue struct{ Val string }

func (v StringValue) Kind() string   { return "string" }
func (v StringValue) String() string { return v.Val }

type CharValue struct{ Val rune }

func (v CharValue) Kind() string   { return "char" }
func (v CharValue) String() string { return string(v.Val) }

type BoolValue struct{ Val bool }

func (v BoolValue) Kind() string   { return "bool" }
func (v BoolValue) String() string { return fmt.Sprintf("%t", v.Val) }

type VoidValue struct{}

func (VoidValue) Kind() string   { return "void" }
func (VoidValue) String() string { return "void" }

type TupleValue struct{ Elems []Value }

func (v TupleValue) Kind() string { return "tuple" }
func (v TupleValue) String() string {
	parts := make([]string, len(v.Elems))
	for i, e := range v.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// ArrayValue is a fixed-size, value-semantics array: every mutating
// built-in (push, reverse, ...) returns a new ArrayValue rather than
// mutating Elems in place, matching spec's "immutable element array".
type ArrayValue struct{ Elems []Value }

func (v ArrayValue) Kind() string { return "array" }
func (v ArrayValue) String() string {
	parts := make([]string, len(v.Elems))
	for i, e := range v.Elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// RecordValue is an ordered name-to-value map, optionally nominal
// (TypeName non-empty for a `Point{...}` literal, empty for an untyped
// `{...}` literal).
type RecordValue struct {
	TypeName string
	Order    []string
	Fields   map[string]Value
}

func NewRecordValue(typeName string) *RecordValue {
	return &RecordValue{TypeName: typeName, Fields: map[string]Value{}}
}

func (v *RecordValue) Set(name string, val Value) {
	if _, ok := v.Fields[name]; !ok {
		v.Order = append(v.Order, name)
	}
	v.Fields[name] = val
}

func (v *RecordValue) Kind() string { return "record" }
func (v *RecordValue) String() string {
	parts := make([]string, len(v.Order))
	for i, name := range v.Order {
		parts[i] = fmt.Sprintf("%s: %s", name, v.Fields[name].String())
	}
	prefix := v.TypeName
	return fmt.Sprintf("%s{%s}", prefix, strings.Join(parts, ", "))
}

// NativeFunc is a built-in/stdlib function implemented in Go rather than
// as a ki closure: the interpreter calls it directly instead of binding
// params into a fresh environment and walking a Block.
type NativeFunc func(in *Interp, args []Value) (Value, error)

// ClosureValue is a function value: either Body (a ki closure/function
// body) or Native (a Go-implemented built-in), never both. Env is the
// environment captured at creation time, so the function can still see
// whatever was in scope when it was defined (spec §4.5, "Closures").
type ClosureValue struct {
	Name   string
	Params []string
	Effect bool
	Body   *ast.Block
	Env    *Environment
	Native NativeFunc
}

func (v *ClosureValue) Kind() string   { return "function" }
func (v *ClosureValue) String() string { return fmt.Sprintf("<fn %s>", nameOr(v.Name, "anonymous")) }

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

// VariantValue is spec's "generic variant (name + optional tuple-or-record
// payload)", used uniformly for user-declared sum type values and for the
// built-in Some/None/Ok/Err/Cons/Nil constructors — spec models both the
// same way, so one runtime representation covers both.
type VariantValue struct {
	TypeName   string // user sum type's Def.Name; empty for a built-in constructor
	Name       string
	Positional []Value
	Named      map[string]Value
}

func (v *VariantValue) Kind() string { return "variant" }
func (v *VariantValue) String() string {
	if len(v.Positional) == 0 && v.Named == nil {
		return v.Name
	}
	if v.Named != nil {
		parts := make([]string, 0, len(v.Named))
		for name, val := range v.Named {
			parts = append(parts, fmt.Sprintf("%s: %s", name, val.String()))
		}
		return fmt.Sprintf("%s{%s}", v.Name, strings.Join(parts, ", "))
	}
	parts := make([]string, len(v.Positional))
	for i, a := range v.Positional {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", v.Name, strings.Join(parts, ", "))
}

func some(v Value) *VariantValue  { return &VariantValue{Name: "Some", Positional: []Value{v}} }
func none() *VariantValue         { return &VariantValue{Name: "None"} }
func ok(v Value) *VariantValue    { return &VariantValue{Name: "Ok", Positional: []Value{v}} }
func errV(v Value) *VariantValue  { return &VariantValue{Name: "Err", Positional: []Value{v}} }
func cons(h, t Value) *VariantValue {
	return &VariantValue{Name: "Cons", Positional: []Value{h, t}}
}
func nilList() *VariantValue { return &VariantValue{Name: "Nil"} }

// listToSlice flattens a Cons/Nil chain into a Go slice, in order.
func listToSlice(v Value) ([]Value, bool) {
	var out []Value
	cur := v
	for {
		vv, ok := cur.(*VariantValue)
		if !ok {
			return nil, false
		}
		switch vv.Name {
		case "Nil":
			return out, true
		case "Cons":
			out = append(out, vv.Positional[0])
			cur = vv.Positional[1]
		default:
			return nil, false
		}
	}
}

// sliceToList builds a Cons/Nil chain from a Go slice, in order (so index
// 0 of elems becomes the head).
func sliceToList(elems []Value) *VariantValue {
	result := nilList()
	for i := len(elems) - 1; i >= 0; i-- {
		result = cons(elems[i], result)
	}
	return result
}

// IOValue is the IO(wrapped) kind of spec's runtime value sum. The
// evaluator returns an effect call's result directly, so no evaluation
// path constructs an IOValue.
type IOValue struct{ Inner Value }

func (v IOValue) Kind() string   { return "io" }
func (v IOValue) String() string { return v.Inner.String() }

// MapEntry is one key/value pair of a MapValue, kept in insertion order so
// std.map.keys/values/entries are deterministic.
type MapEntry struct {
	Key Value
	Val Value
}

// MapValue backs std.map: an immutable association list. Small maps are
// the expected scale for a scripting language's sample programs, and
// keeping it a plain slice means key equality just reuses valuesEqual
// rather than needing every key type to be Go-hashable.
type MapValue struct{ Entries []MapEntry }

func (v *MapValue) Kind() string { return "map" }
func (v *MapValue) String() string {
	parts := make([]string, len(v.Entries))
	for i, e := range v.Entries {
		parts[i] = fmt.Sprintf("%s: %s", e.Key.String(), e.Val.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (v *MapValue) find(key Value) (int, bool) {
	for i, e := range v.Entries {
		if valuesEqual(e.Key, key) {
			return i, true
		}
	}
	return -1, false
}

// BuilderValue backs std.builder: an immutable sequence of rendered
// fragments, joined lazily by build().
type BuilderValue struct{ Parts []string }

func (v *BuilderValue) Kind() string   { return "builder" }
func (v *BuilderValue) String() string { return strings.Join(v.Parts, "") }

// ModuleValue is a resolved `std.*` module: a nominal record of native or
// declared functions and nested submodules, mirroring types.Module
// exactly so FieldAccess/MethodCall dispatch sees the same shape the
// checker already validated.
type ModuleValue struct {
	Path    string
	Members map[string]Value
}

func (v *ModuleValue) Kind() string   { return "module" }
func (v *ModuleValue) String() string { return v.Path }

// RefValue is the "mutable reference cell" of spec's runtime value sum. A
// var binding's storage is shared through its Environment (a closure
// captures the Environment pointer), so no evaluation path constructs a
// RefValue.
type RefValue struct{ Val Value }

func (v *RefValue) Kind() string   { return "ref" }
func (v *RefValue) String() string { return v.Val.String() }
