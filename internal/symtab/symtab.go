// Package symtab implements the scope tree and symbol table described in
// spec §3: every scope has an integer identifier (0 is always the global
// scope), a parent pointer, and a name-to-symbol map; every symbol records
// its own span, visibility, and kind-specific payload. The resolver
// (internal/resolver) builds this structure; the checker and interpreter
// only read it.
package symtab

import (
	"github.com/cwbudde/ki/internal/ast"
	"github.com/cwbudde/ki/internal/diag"
)

// ScopeID identifies a Scope. 0 is always the global scope.
type ScopeID int

// SymbolID identifies a Symbol. 0 is never issued and marks "no symbol".
type SymbolID int

// ScopeKind classifies a Scope.
type ScopeKind int

const (
	GlobalScope ScopeKind = iota
	ModuleScope
	FunctionScope
	BlockScope
	TraitScope
	ImplScope
	GenericsScope
)

// Scope is one lexical region. Names maps an identifier spelled in this
// scope to the Symbol it denotes; lookups that miss walk Parent.
type Scope struct {
	ID       ScopeID
	Kind     ScopeKind
	Parent   ScopeID
	HasParent bool
	Names    map[string]SymbolID
	Children []ScopeID

	// Effect/SelfOK let the resolver and checker answer "is `self`
	// legal here" and "is an effect call legal here" without re-walking the
	// AST; they are set once when the scope is created.
	Effect bool
	SelfOK bool
}

// SymbolKind classifies a Symbol.
type SymbolKind int

const (
	SymVariable SymbolKind = iota
	SymFunction
	SymTypeDef
	SymTraitDef
	SymModule
	SymTypeParam
	SymImportAlias
	SymConst
)

func (k SymbolKind) String() string {
	switch k {
	case SymVariable:
		return "variable"
	case SymFunction:
		return "function"
	case SymTypeDef:
		return "type"
	case SymTraitDef:
		return "trait"
	case SymModule:
		return "module"
	case SymTypeParam:
		return "type parameter"
	case SymImportAlias:
		return "import"
	case SymConst:
		return "const"
	default:
		return "symbol"
	}
}

// Symbol is the resolved identity of one declared or imported name.
// Only the fields relevant to Kind are populated; the rest are zero.
type Symbol struct {
	ID     SymbolID
	Name   string
	Kind   SymbolKind
	Scope  ScopeID
	Span   diag.Span
	Public bool
	Doc    string

	// SymVariable / SymConst
	TypeExpr ast.TypeExpr // explicit annotation; nil when the binding has none
	Mutable  bool
	ConstVal ast.Expr // SymConst: top-level initializer, evaluated once at session start

	// SymFunction
	FuncDecl *ast.FuncDecl

	// SymTypeDef
	TypeDecl *ast.TypeDecl

	// SymTraitDef
	TraitDecl *ast.TraitDecl

	// SymModule
	ModulePath  []string
	ModuleScope ScopeID

	// SymTypeParam
	Bounds []string

	// SymImportAlias
	ImportPath []string
	ImportItem string   // leaf name inside the module, empty for a bare-module import
	Target     SymbolID // resolved symbol inside the module scope; 0 for a bare-module alias
}

// ImplEntry records one `impl [Trait for] Target { ... }` block as parsed;
// Target and the trait bounds are resolved into types.Type lazily by the
// checker, which is the first stage that needs canonical types.
type ImplEntry struct {
	Decl  *ast.ImplDecl
	Scope ScopeID
}

// Table owns every Scope and Symbol for one resolved program (and, once
// cross-module imports are followed, every module transitively reachable
// from it).
type Table struct {
	scopes  []*Scope
	symbols []*Symbol
	Impls   []*ImplEntry
	// ModulesByPath maps a dotted module path ("a.b.c") to the ScopeID
	// that owns its top-level declarations, so import resolution only
	// parses and resolves a given module once.
	ModulesByPath map[string]ScopeID
}

// New creates a Table with scope 0 already allocated as the global scope.
func New() *Table {
	t := &Table{ModulesByPath: make(map[string]ScopeID)}
	t.scopes = append(t.scopes, &Scope{ID: 0, Kind: GlobalScope, Names: make(map[string]SymbolID)})
	t.symbols = append(t.symbols, nil) // index 0 unused: SymbolID 0 means "none"
	return t
}

// NewScope allocates a fresh child scope of parent and returns its ID.
func (t *Table) NewScope(parent ScopeID, kind ScopeKind) ScopeID {
	id := ScopeID(len(t.scopes))
	s := &Scope{ID: id, Kind: kind, Parent: parent, HasParent: true, Names: make(map[string]SymbolID)}
	t.scopes = append(t.scopes, s)
	t.scopes[parent].Children = append(t.scopes[parent].Children, id)
	return id
}

func (t *Table) Scope(id ScopeID) *Scope { return t.scopes[id] }

func (t *Table) Symbol(id SymbolID) *Symbol {
	if id <= 0 || int(id) >= len(t.symbols) {
		return nil
	}
	return t.symbols[id]
}

// All returns every symbol ever defined in the table, in definition order.
// Used by tooling (e.g. `ki check --json`) that wants to walk the whole
// program's symbols rather than look one up by name.
func (t *Table) All() []*Symbol {
	return t.symbols[1:]
}

// Define inserts sym into scope under sym.Name, assigning it a fresh ID.
// It reports a duplicate (false, existing-ID) if the name is already bound
// directly in this scope (shadowing an outer scope is always fine).
func (t *Table) Define(scope ScopeID, sym *Symbol) (SymbolID, bool) {
	s := t.scopes[scope]
	if existing, ok := s.Names[sym.Name]; ok {
		return existing, false
	}
	id := SymbolID(len(t.symbols))
	sym.ID = id
	sym.Scope = scope
	t.symbols = append(t.symbols, sym)
	s.Names[sym.Name] = id
	return id, true
}

// LookupLocal finds name defined directly in scope, without walking parents.
func (t *Table) LookupLocal(scope ScopeID, name string) (*Symbol, bool) {
	id, ok := t.scopes[scope].Names[name]
	if !ok {
		return nil, false
	}
	return t.symbols[id], true
}

// Lookup walks from scope outward through Parent links until name is
// found, returning the nearest (innermost) definition.
func (t *Table) Lookup(scope ScopeID, name string) (*Symbol, bool) {
	cur := scope
	for {
		s := t.scopes[cur]
		if id, ok := s.Names[name]; ok {
			return t.symbols[id], true
		}
		if !s.HasParent {
			return nil, false
		}
		cur = s.Parent
	}
}

// IsAncestor reports whether ancestor is scope itself or an ancestor of it
// via Parent links — the soundness property spec §8 requires of every
// resolved reference.
func (t *Table) IsAncestor(ancestor, scope ScopeID) bool {
	cur := scope
	for {
		if cur == ancestor {
			return true
		}
		s := t.scopes[cur]
		if !s.HasParent {
			return false
		}
		cur = s.Parent
	}
}
