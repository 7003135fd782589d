// Package types defines the checker's resolved type representation: the
// canonical form every AST TypeExpr is reduced to before two types can be
// compared for compatibility. Unlike ast.TypeExpr (syntax, one node per
// written annotation), a types.Type is semantic — two differently-written
// annotations that mean the same thing resolve to the same Type.
package types

import (
	"fmt"
	"strings"
)

// Type is implemented by every resolved type. Equals is structural, not
// pointer identity, so two Named values referring to the same Def with
// equal Args compare equal even when built from different call sites.
type Type interface {
	String() string
	Equals(other Type) bool
}

// Error is the checker's recovery marker. It must never be reported as a
// type mismatch against anything: once an expression has been assigned
// Error, the checker has already emitted a diagnostic for it, and every
// further diagnostic that would involve it is suppressed so one root
// cause doesn't cascade into a wall of errors (see spec §4.4, §9).
type Error struct{}

func (Error) String() string       { return "<error>" }
func (Error) Equals(other Type) bool {
	_, ok := other.(Error)
	return ok
}

// IsError reports whether t is the recovery marker.
func IsError(t Type) bool {
	_, ok := t.(Error)
	return ok
}

// Primitive is one of the fixed-width scalar types, bool, char, string, or
// void.
type Primitive struct {
	Name string // "i8".."i128", "u8".."u128", "f32", "f64", "bool", "char", "string", "void"
}

func (p Primitive) String() string { return p.Name }
func (p Primitive) Equals(other Type) bool {
	o, ok := other.(Primitive)
	return ok && o.Name == p.Name
}

var (
	I8     = Primitive{"i8"}
	I16    = Primitive{"i16"}
	I32    = Primitive{"i32"}
	I64    = Primitive{"i64"}
	I128   = Primitive{"i128"}
	U8     = Primitive{"u8"}
	U16    = Primitive{"u16"}
	U32    = Primitive{"u32"}
	U64    = Primitive{"u64"}
	U128   = Primitive{"u128"}
	F32    = Primitive{"f32"}
	F64    = Primitive{"f64"}
	Bool   = Primitive{"bool"}
	Char   = Primitive{"char"}
	String = Primitive{"string"}
	Void   = Primitive{"void"}
)

var primitiveNames = map[string]Primitive{
	"i8": I8, "i16": I16, "i32": I32, "i64": I64, "i128": I128,
	"u8": U8, "u16": U16, "u32": U32, "u64": U64, "u128": U128,
	"f32": F32, "f64": F64, "bool": Bool, "char": Char, "string": String, "void": Void,
}

// LookupPrimitive returns the Primitive named by name, if any.
func LookupPrimitive(name string) (Primitive, bool) {
	p, ok := primitiveNames[name]
	return p, ok
}

func (p Primitive) IsInteger() bool {
	switch p.Name {
	case "i8", "i16", "i32", "i64", "i128", "u8", "u16", "u32", "u64", "u128":
		return true
	}
	return false
}

func (p Primitive) IsUnsigned() bool { return len(p.Name) > 0 && p.Name[0] == 'u' }
func (p Primitive) IsFloat() bool    { return p.Name == "f32" || p.Name == "f64" }

// DefKind distinguishes the three shapes a user type declaration can take.
type DefKind int

const (
	SumDef DefKind = iota
	ProductDef
	AliasDef
)

// Field is one named, typed field of a product type, a variant's named
// payload, or a record literal/pattern.
type Field struct {
	Name string
	Type Type
}

// Variant is one case of a sum type.
type Variant struct {
	Name       string
	Positional []Type // set when the variant has a tuple-shaped payload
	Named      []Field
}

// Def is a user type declaration's canonical definition, shared by every
// Named value that instantiates it. Two Named types are the same type iff
// they point at the same Def.
type Def struct {
	Name     string
	Generics []string
	Kind     DefKind
	Variants []Variant // SumDef
	Fields   []Field   // ProductDef
	Alias    Type      // AliasDef
	Public   bool
}

func (d *Def) VariantByName(name string) (Variant, bool) {
	for _, v := range d.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

func (d *Def) FieldByName(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Named is a reference to a user-defined type, instantiated with concrete
// type arguments for Def's generic parameters (Args is empty for a
// non-generic type).
type Named struct {
	Def  *Def
	Args []Type
}

func (n Named) String() string {
	if len(n.Args) == 0 {
		return n.Def.Name
	}
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s[%s]", n.Def.Name, strings.Join(parts, ", "))
}

func (n Named) Equals(other Type) bool {
	o, ok := other.(Named)
	if !ok || o.Def != n.Def || len(o.Args) != len(n.Args) {
		return false
	}
	for i := range n.Args {
		if !n.Args[i].Equals(o.Args[i]) {
			return false
		}
	}
	return true
}

// TypeParam is a generic parameter in scope inside a function, type, or
// trait body. Equality is by name: within one declaration's checking, a
// type parameter only ever compares equal to itself.
type TypeParam struct {
	Name   string
	Bounds []string
}

func (t TypeParam) String() string { return t.Name }
func (t TypeParam) Equals(other Type) bool {
	o, ok := other.(TypeParam)
	return ok && o.Name == t.Name
}

// Tuple is a fixed-arity product of anonymous element types.
type Tuple struct {
	Elems []Type
}

func (t Tuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
}

func (t Tuple) Equals(other Type) bool {
	o, ok := other.(Tuple)
	if !ok || len(o.Elems) != len(t.Elems) {
		return false
	}
	for i := range t.Elems {
		if !t.Elems[i].Equals(o.Elems[i]) {
			return false
		}
	}
	return true
}

// Array is an element type with an optional compile-time size; Size is
// -1 for a dynamically-sized array.
type Array struct {
	Elem Type
	Size int
}

func (a Array) String() string {
	if a.Size < 0 {
		return fmt.Sprintf("[%s]", a.Elem.String())
	}
	return fmt.Sprintf("[%s; %d]", a.Elem.String(), a.Size)
}

func (a Array) Equals(other Type) bool {
	o, ok := other.(Array)
	return ok && a.Size == o.Size && a.Elem.Equals(o.Elem)
}

// Func is a function/closure type. Effect marks whether calling it may
// perform side effects (see spec §4.4).
type Func struct {
	Params []Type
	Return Type
	Effect bool
}

func (f Func) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	prefix := "fn"
	if f.Effect {
		prefix = "effect fn"
	}
	return fmt.Sprintf("%s(%s) -> %s", prefix, strings.Join(parts, ", "), f.Return.String())
}

func (f Func) Equals(other Type) bool {
	o, ok := other.(Func)
	if !ok || f.Effect != o.Effect || len(f.Params) != len(o.Params) || !f.Return.Equals(o.Return) {
		return false
	}
	for i := range f.Params {
		if !f.Params[i].Equals(o.Params[i]) {
			return false
		}
	}
	return true
}

// Option is `Option[T]`.
type Option struct{ Elem Type }

func (o Option) String() string { return fmt.Sprintf("Option[%s]", o.Elem.String()) }
func (o Option) Equals(other Type) bool {
	v, ok := other.(Option)
	return ok && o.Elem.Equals(v.Elem)
}

// Result is `Result[T, E]`.
type Result struct{ Ok, Err Type }

func (r Result) String() string { return fmt.Sprintf("Result[%s, %s]", r.Ok.String(), r.Err.String()) }
func (r Result) Equals(other Type) bool {
	v, ok := other.(Result)
	return ok && r.Ok.Equals(v.Ok) && r.Err.Equals(v.Err)
}

// IO is `IO[T]`, the effect-function result wrapper.
type IO struct{ Elem Type }

func (i IO) String() string { return fmt.Sprintf("IO[%s]", i.Elem.String()) }
func (i IO) Equals(other Type) bool {
	v, ok := other.(IO)
	return ok && i.Elem.Equals(v.Elem)
}

// List is the built-in `Cons`/`Nil` singly-linked list, `List[T]`.
type List struct{ Elem Type }

func (l List) String() string { return fmt.Sprintf("List[%s]", l.Elem.String()) }
func (l List) Equals(other Type) bool {
	v, ok := other.(List)
	return ok && l.Elem.Equals(v.Elem)
}

// Module is the type of a standard-library namespace value: spec §6 models
// `std` as a nested record whose fields are themselves records of function
// values, so `std.io.println` is plain field access followed by a call —
// Module gives that record shape a canonical Type without inventing a new
// syntax form, mirroring how Named backs a user record.
type Module struct {
	Path    string // dotted, e.g. "std.io"; "std" itself for the root
	Members map[string]Type
}

func (m Module) String() string { return m.Path }
func (m Module) Equals(other Type) bool {
	o, ok := other.(Module)
	return ok && o.Path == m.Path
}

// TraitDef is a trait declaration's canonical signature set.
type TraitDef struct {
	Name    string
	Supers  []string
	Methods map[string]Func
	Public  bool
}

// ImplEntry records one `impl [Trait for] Target { ... }` block, keyed by
// (TraitName, Target) for method dispatch. TraitName is empty for an
// inherent impl.
type ImplEntry struct {
	TraitName string
	Target    Type
	Methods   map[string]*Func // signatures; bodies live on the resolved ast.FuncDecl kept alongside in the checker/interp registries
}

// Assignable reports whether a value of type from may be used where want
// is expected. Equality is exact except that Error absorbs on either side
// (a node already marked Error must not trigger a second diagnostic).
func Assignable(want, from Type) bool {
	if IsError(want) || IsError(from) {
		return true
	}
	return want.Equals(from)
}
