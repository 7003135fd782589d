package ast

// GenericParam is one `[T: Bound + Bound]` type parameter.
type GenericParam struct {
	Name   string
	Bounds []string
}

// WhereClause is one `where T: Bound` constraint trailing a function or
// impl header.
type WhereClause struct {
	TypeParam string
	Bound     string
}

// FuncDecl declares a function or method. Body is nil for a trait method
// signature with no default implementation.
type FuncDecl struct {
	Base
	Name       string
	Doc        string // text of an immediately preceding `///` comment, if any
	Generics   []GenericParam
	Params     []Param
	ReturnType TypeExpr
	Effect     bool
	Public     bool
	Body       *Block
	Where      []WhereClause
}

// FieldDef is one `name: Type` field of a product type or record pattern.
type FieldDef struct {
	Name string
	Type TypeExpr
}

// VariantDef is one case of a sum type: either a tuple-shaped payload
// (Positional) or a record-shaped payload (Named), or neither for a unit
// variant.
type VariantDef struct {
	Name       string
	Positional []TypeExpr
	Named      []FieldDef
}

// TypeDeclKind distinguishes the three forms `type Name = ...` can take.
type TypeDeclKind int

const (
	SumType TypeDeclKind = iota
	ProductType
	AliasType
)

// TypeDecl declares a sum type, a product (record) type, or a type alias.
type TypeDecl struct {
	Base
	Name     string
	Generics []GenericParam
	Kind     TypeDeclKind
	Variants []VariantDef // set when Kind == SumType
	Fields   []FieldDef   // set when Kind == ProductType
	Alias    TypeExpr     // set when Kind == AliasType
	Public   bool
}

// TraitDecl declares a trait: a set of method signatures, some with
// default bodies, plus a list of super-traits it requires.
type TraitDecl struct {
	Base
	Name    string
	Supers  []string
	Methods []*FuncDecl
	Public  bool
}

// ImplDecl implements Trait (or, if Trait is empty, an inherent impl) for
// Target.
type ImplDecl struct {
	Base
	Trait   string
	Target  TypeExpr
	Methods []*FuncDecl
	Where   []WhereClause
}

// ModuleDecl is the optional `module a.b.c` declaration at the top of a
// file.
type ModuleDecl struct {
	Base
	Path []string
}

// ImportItem is one imported name, with an optional `as` alias.
type ImportItem struct {
	Name  string
	Alias string // empty if not aliased
}

// ImportDecl is `import a.b.{Foo, Bar as Baz}` or the bare-module form
// `import a.b` (Items is empty; the leaf module name itself is bound).
type ImportDecl struct {
	Base
	Path  []string
	Items []ImportItem
}

// ConstDecl declares a module-level compile-time constant.
type ConstDecl struct {
	Base
	Name   string
	Type   TypeExpr
	Value  Expr
	Public bool
}

// TopLevelLet declares a module-level `let` binding, evaluated once when
// the interpreter registers top-level declarations.
type TopLevelLet struct {
	Base
	Pattern Pattern
	Type    TypeExpr
	Value   Expr
	Public  bool
}

// TestDecl declares a `test "name" { ... }` block, run by tooling outside
// the core pipeline's scope; the checker and interpreter still validate
// and can execute its body like any other function with no parameters.
type TestDecl struct {
	Base
	Name string
	Body *Block
}

func (*FuncDecl) declNode()    {}
func (*TypeDecl) declNode()    {}
func (*TraitDecl) declNode()   {}
func (*ImplDecl) declNode()    {}
func (*ModuleDecl) declNode()  {}
func (*ImportDecl) declNode()  {}
func (*ConstDecl) declNode()   {}
func (*TopLevelLet) declNode() {}
func (*TestDecl) declNode()    {}
