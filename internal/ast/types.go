package ast

import "github.com/cwbudde/ki/internal/diag"

// PrimitiveType names a built-in scalar type: i8..i128, u8..u128, f32, f64,
// bool, char, string, or void.
type PrimitiveType struct {
	Base
	Name string
}

func NewPrimitiveType(span diag.Span, name string) *PrimitiveType {
	return &PrimitiveType{Base: NewBase(span), Name: name}
}

// NamedType is a bare type name with no generic arguments, e.g. `Color`.
type NamedType struct {
	Base
	Name string
}

func NewNamedType(span diag.Span, name string) *NamedType {
	return &NamedType{Base: NewBase(span), Name: name}
}

// GenericType is a name applied to type arguments, e.g. `List[i32]`.
type GenericType struct {
	Base
	BaseName string
	Args     []TypeExpr
}

// PathType is a dotted module path optionally applied to type arguments,
// e.g. `std.list.List[i32]` or `a.b.Color`.
type PathType struct {
	Base
	Segments []string
	Args     []TypeExpr
}

// FuncType is a function type, e.g. `fn(i32, string) -> bool` or, when
// Effect is set, `effect fn(i32) -> IO[void]`.
type FuncType struct {
	Base
	Params []TypeExpr
	Return TypeExpr
	Effect bool
}

// TupleType is a fixed-arity tuple of element types.
type TupleType struct {
	Base
	Elems []TypeExpr
}

// ArrayType is an element type with an optional compile-time size; Size is
// nil for a dynamically-sized array.
type ArrayType struct {
	Base
	Elem TypeExpr
	Size *int
}

// SelfType is the `Self` type, legal only inside a trait or impl block.
type SelfType struct {
	Base
}

// IOType is `IO[T]`, the effect-function result wrapper.
type IOType struct {
	Base
	Inner TypeExpr
}

// ResultType is `Result[T, E]`.
type ResultType struct {
	Base
	Ok  TypeExpr
	Err TypeExpr
}

// OptionType is `Option[T]`.
type OptionType struct {
	Base
	Inner TypeExpr
}

// InferredType is the `_` placeholder type; it is only legal where the
// checker can recover the type from context (e.g. an array literal with at
// least one element).
type InferredType struct {
	Base
}

func (*PrimitiveType) typeNode() {}
func (*NamedType) typeNode()     {}
func (*GenericType) typeNode()   {}
func (*PathType) typeNode()      {}
func (*FuncType) typeNode()      {}
func (*TupleType) typeNode()     {}
func (*ArrayType) typeNode()     {}
func (*SelfType) typeNode()      {}
func (*IOType) typeNode()        {}
func (*ResultType) typeNode()    {}
func (*OptionType) typeNode()    {}
func (*InferredType) typeNode()  {}
