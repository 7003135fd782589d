// Package ast defines the immutable syntax tree produced by the parser.
// Every node family (Expr, Stmt, Pattern, TypeExpr, Decl) carries a Span for
// diagnostics. The parser builds nodes with ordinary Go allocation; the
// Program holds an arena, but no node is allocated through it.
package ast

import (
	"github.com/cwbudde/ki/internal/arena"
	"github.com/cwbudde/ki/internal/diag"
)

// Node is implemented by every AST node.
type Node interface {
	Span() diag.Span
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Pattern is a pattern node, matched against a value in a let binding,
// function parameter, or match arm.
type Pattern interface {
	Node
	patternNode()
}

// TypeExpr is a syntactic type annotation.
type TypeExpr interface {
	Node
	typeNode()
}

// Decl is a top-level or trait/impl-member declaration.
type Decl interface {
	Node
	declNode()
}

// Base embeds a Span into every concrete node without repeating the
// accessor method on each one.
type Base struct {
	span diag.Span
}

func (b Base) Span() diag.Span { return b.span }

func NewBase(span diag.Span) Base { return Base{span: span} }

// Program is the parser's output: a module path (if declared), the import
// list, the top-level declarations, and the parser's arena (no node is
// allocated through it).
type Program struct {
	Arena   *arena.Arena
	Module  *ModuleDecl // nil if the file has no `module` declaration
	Imports []*ImportDecl
	Decls   []Decl
}
