package ast

import "github.com/cwbudde/ki/internal/diag"

// IntLit is an integer literal with an optional width/signedness suffix
// (`42i64`, `7u8`); an empty Suffix defaults to a 32-bit signed integer.
type IntLit struct {
	Base
	Value  int64
	Suffix string
}

// FloatLit is a floating-point literal with an optional suffix (`1.5f32`);
// an empty Suffix defaults to 64-bit.
type FloatLit struct {
	Base
	Value  float64
	Suffix string
}

// StringLit is a non-interpolated string literal.
type StringLit struct {
	Base
	Value string
}

// CharLit is a single Unicode scalar value literal.
type CharLit struct {
	Base
	Value rune
}

// BoolLit is `true` or `false`.
type BoolLit struct {
	Base
	Value bool
}

// Ident is a reference to a binding, optionally with explicit generic
// arguments (`make[i32](0)`).
type Ident struct {
	Base
	Name     string
	TypeArgs []TypeExpr
}

// SelfExpr is the `self` receiver reference inside a method body.
type SelfExpr struct {
	Base
}

// Binary is a binary operator application. Op is the lexeme ("+", "==",
// "and", "is", "in", ...).
type Binary struct {
	Base
	Op    string
	Left  Expr
	Right Expr
}

// Unary is a prefix operator application ("-" or "not").
type Unary struct {
	Base
	Op      string
	Operand Expr
}

// FieldAccess is `target.name`.
type FieldAccess struct {
	Base
	Target Expr
	Name   string
}

// IndexAccess is `target[index]`.
type IndexAccess struct {
	Base
	Target Expr
	Index  Expr
}

// TupleAccess is `target.N`, the positional tuple projection.
type TupleAccess struct {
	Base
	Target Expr
	Index  int
}

// Call is a direct function call, optionally with explicit generic
// arguments.
type Call struct {
	Base
	Callee   Expr
	TypeArgs []TypeExpr
	Args     []Expr
}

// MethodCall is `receiver.name(args)`, dispatched through the resolved
// trait impl for the receiver's type (or, for built-in methods, handled
// directly by the interpreter).
type MethodCall struct {
	Base
	Receiver Expr
	Name     string
	TypeArgs []TypeExpr
	Args     []Expr
}

// Param is one closure or function parameter.
type Param struct {
	Name string
	Type TypeExpr
}

// Closure is a function-literal expression. Body is always a block; a
// single-expression closure is sugar the parser desugars into a block
// whose only statement is an implicit return.
type Closure struct {
	Base
	Params     []Param
	ReturnType TypeExpr
	Effect     bool
	Body       *Block
}

// MatchArmBody is either a single expression (match-expression arms) or a
// statement block (match-statement arms); exactly one of Expr/Block is set.
type MatchArmBody struct {
	Expr  Expr
	Block *Block
}

// MatchArm is one `pattern [if guard] => body` arm of a match.
type MatchArm struct {
	Pattern Pattern
	Guard   Expr // nil if no guard
	Body    MatchArmBody
}

// MatchExpr evaluates Subject once and runs the body of the first arm
// whose pattern (and guard, if any) matches.
type MatchExpr struct {
	Base
	Subject Expr
	Arms    []MatchArm
}

// TupleLit is a tuple literal `(a, b, c)`; a single-element tuple is
// written `(a,)` to disambiguate from a grouped expression.
type TupleLit struct {
	Base
	Elems []Expr
}

// ArrayLit is an array literal `[a, b, c]`.
type ArrayLit struct {
	Base
	Elems []Expr
}

// RecordFieldInit is one `name: value` initializer in a record literal.
type RecordFieldInit struct {
	Name  string
	Value Expr
}

// RecordLit is a record literal, optionally annotated with its nominal
// type (`Point{x: 1, y: 2}` vs. the untyped `{x: 1, y: 2}`).
type RecordLit struct {
	Base
	Type   TypeExpr // nil for an untyped/anonymous record literal
	Fields []RecordFieldInit
}

// VariantCtor is a sum-type constructor application, e.g. `Some(42)` or
// `Nil`.
type VariantCtor struct {
	Base
	Name string
	Args []Expr // empty for a nullary variant
}

// Cast is an explicit `expr as Type` conversion.
type Cast struct {
	Base
	Value Expr
	Type  TypeExpr
}

// RangeExpr is `start..end` or `start..=end`; Start and End may each be
// nil for an open range, legal only where context supplies the missing
// bound (array slicing is not in scope; ranges are consumed by `for`).
type RangeExpr struct {
	Base
	Start     Expr
	End       Expr
	Inclusive bool
}

// Grouped is a parenthesized expression kept distinct from TupleLit so
// pretty-printing and round-tripping preserve the source shape.
type Grouped struct {
	Base
	Inner Expr
}

// InterpPart is one segment of an interpolated string: either a literal
// run of text or an embedded expression.
type InterpPart struct {
	Literal string
	Expr    Expr // nil when this part is a literal run
}

// InterpString is a `"... ${expr} ..."` interpolated string literal.
type InterpString struct {
	Base
	Parts []InterpPart
}

// TryExpr is `expr?`: on Option/Result failure it returns early from the
// enclosing effect function.
type TryExpr struct {
	Base
	Value Expr
}

// CoalesceExpr is `expr ?? default`: unwraps Some/Ok or evaluates Default.
type CoalesceExpr struct {
	Base
	Value   Expr
	Default Expr
}

func (*IntLit) exprNode()       {}
func (*FloatLit) exprNode()     {}
func (*StringLit) exprNode()    {}
func (*CharLit) exprNode()      {}
func (*BoolLit) exprNode()      {}
func (*Ident) exprNode()        {}
func (*SelfExpr) exprNode()     {}
func (*Binary) exprNode()       {}
func (*Unary) exprNode()        {}
func (*FieldAccess) exprNode()  {}
func (*IndexAccess) exprNode()  {}
func (*TupleAccess) exprNode()  {}
func (*Call) exprNode()         {}
func (*MethodCall) exprNode()   {}
func (*Closure) exprNode()      {}
func (*MatchExpr) exprNode()    {}
func (*TupleLit) exprNode()     {}
func (*ArrayLit) exprNode()     {}
func (*RecordLit) exprNode()    {}
func (*VariantCtor) exprNode()  {}
func (*Cast) exprNode()         {}
func (*RangeExpr) exprNode()    {}
func (*Grouped) exprNode()      {}
func (*InterpString) exprNode() {}
func (*TryExpr) exprNode()      {}
func (*CoalesceExpr) exprNode() {}

func NewIntLit(span diag.Span, v int64, suffix string) *IntLit {
	return &IntLit{Base: NewBase(span), Value: v, Suffix: suffix}
}

func NewIdent(span diag.Span, name string) *Ident {
	return &Ident{Base: NewBase(span), Name: name}
}
