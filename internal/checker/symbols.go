package checker

import (
	"github.com/cwbudde/ki/internal/symtab"
	"github.com/cwbudde/ki/internal/types"
)

// symbolType resolves the type of any non-module symbol, memoized by
// SymbolID so a variable referenced many times across a function body only
// resolves its annotation once (spec §4.4's "Resolved types parallel AST
// types but are fully canonical").
func (c *Checker) symbolType(sym *symtab.Symbol) types.Type {
	if sym == nil {
		return types.Error{}
	}
	if t, ok := c.symbolTypes[sym.ID]; ok {
		return t
	}
	var t types.Type
	switch sym.Kind {
	case symtab.SymFunction:
		t = c.funcSignature(sym.FuncDecl)
	case symtab.SymVariable, symtab.SymConst:
		if sym.TypeExpr != nil {
			t = c.resolveTypeExpr(sym.TypeExpr)
		} else {
			// No annotation: the declaring VarStmt/LetStmt/ConstDecl checks
			// its initializer first and caches the inferred type here before
			// any reference can observe it, except for a forward reference,
			// which has no sound type to report.
			t = types.Error{}
		}
	case symtab.SymTypeParam:
		if bound, ok := c.lookupGeneric(sym.Name); ok {
			t = bound
		} else {
			t = types.TypeParam{Name: sym.Name, Bounds: sym.Bounds}
		}
	case symtab.SymTypeDef:
		if def, ok := c.defs[sym.Name]; ok {
			t = types.Named{Def: def}
		} else {
			t = types.Error{}
		}
	default:
		t = types.Error{}
	}
	c.symbolTypes[sym.ID] = t
	return t
}
