// Package resolver implements the two-pass symbol resolver of spec §4.3:
// pass 1 collects every top-level declaration into a scope without
// entering bodies; pass 2 walks bodies and initializer expressions,
// resolving every identifier reference and building the nested block/
// function scopes that the type checker and interpreter later traverse.
package resolver

import (
	"strings"

	"github.com/cwbudde/ki/internal/ast"
	"github.com/cwbudde/ki/internal/diag"
	"github.com/cwbudde/ki/internal/symtab"
)

// Loader maps a dotted module path to its parsed Program. The concrete
// filesystem implementation lives in internal/loader so this package has
// no knowledge of paths, extensions, or project manifests (see spec §6).
type Loader interface {
	Load(path []string) (*ast.Program, error)
}

// Info is the resolver's full output: the populated symbol table, the
// scope each reference resolved into, and the per-node resolution map the
// checker and interpreter use to turn an Ident or SelfExpr back into its
// Symbol without re-walking scopes.
type Info struct {
	Table      *symtab.Table
	EntryScope symtab.ScopeID
	Idents     map[*ast.Ident]symtab.SymbolID
	Selfs      map[*ast.SelfExpr]symtab.ScopeID // maps to the enclosing impl/trait scope, for Self-type lookup
	Patterns   map[*ast.IdentPattern]symtab.SymbolID
	Vars       map[*ast.VarStmt]symtab.SymbolID
	// Programs lists the entry program followed by every module
	// transitively loaded while resolving it, in load order, each paired
	// with the scope that owns its top-level declarations. The checker
	// and interpreter both need to walk every module's declarations, not
	// just the entry file's.
	Programs []ProgramScope
}

// ProgramScope pairs a parsed Program with the scope pass 1 declared its
// top-level names into.
type ProgramScope struct {
	Program *ast.Program
	Scope   symtab.ScopeID
}

// Resolver carries the shared state across one entry program and every
// module it transitively imports: one Table, one Loader, one cycle
// detector, so a module imported from two different files is only parsed
// and resolved once (spec §4.3's "fixed point" over the import DAG).
type Resolver struct {
	bag     *diag.Bag
	table   *symtab.Table
	loader  Loader
	loading map[string]bool
	done    map[string]symtab.ScopeID
	idents  map[*ast.Ident]symtab.SymbolID
	selfs   map[*ast.SelfExpr]symtab.ScopeID
	pats    map[*ast.IdentPattern]symtab.SymbolID
	vars    map[*ast.VarStmt]symtab.SymbolID

	currentFunc    *funcCtx
	pendingImports []pendingImport
	programs       []ProgramScope
}

type pendingImport struct {
	decl  *ast.ImportDecl
	scope symtab.ScopeID
}

// funcCtx tracks the innermost enclosing function/closure so `return`,
// effect discipline, and `self` legality can be checked without threading
// extra parameters through every resolve call.
type funcCtx struct {
	parent *funcCtx
	effect bool
	inImpl bool
	loop   bool
}

// New creates a Resolver. bag collects every diagnostic from every module
// visited during the run (entry program plus transitive imports).
func New(bag *diag.Bag, loader Loader) *Resolver {
	r := &Resolver{
		bag:     bag,
		table:   symtab.New(),
		loader:  loader,
		loading: make(map[string]bool),
		done:    make(map[string]symtab.ScopeID),
		idents:  make(map[*ast.Ident]symtab.SymbolID),
		selfs:   make(map[*ast.SelfExpr]symtab.ScopeID),
		pats:    make(map[*ast.IdentPattern]symtab.SymbolID),
		vars:    make(map[*ast.VarStmt]symtab.SymbolID),
	}
	r.defineStdNamespace()
	return r
}

// defineStdNamespace binds the implicit `std` root so references like
// `std.io.println` resolve the leading identifier without the resolver
// needing to understand the standard library's shape; std.* field/method
// chains are validated by the checker and interpreter instead (spec
// §4.3's "reserved root namespace marker").
func (r *Resolver) defineStdNamespace() {
	r.table.Define(0, &symtab.Symbol{
		Name: "std", Kind: symtab.SymModule, Public: true,
		ModulePath: []string{"std"},
	})
}

// Table returns the shared symbol table accumulated so far.
func (r *Resolver) Table() *symtab.Table { return r.table }

func (r *Resolver) errf(span diag.Span, format string, args ...any) {
	r.bag.Errorf("resolver", span, format, args...)
}

// Resolve runs both passes over prog, resolving its imports recursively
// through the Loader, and returns the Info a checker can consume. prog's
// module path is the dotted path declared by `module a.b.c`, or nil for an
// entry file with no module declaration (it still gets its own scope, a
// direct child of global, so its top-level names don't leak into global).
func Resolve(prog *ast.Program, bag *diag.Bag, loader Loader) (*Info, bool) {
	r := New(bag, loader)
	scope := r.resolveProgram(prog, modulePathOf(prog))
	ok := !bag.HasErrors()
	return &Info{
		Table:      r.table,
		EntryScope: scope,
		Idents:     r.idents,
		Selfs:      r.selfs,
		Patterns:   r.pats,
		Vars:       r.vars,
		Programs:   r.programs,
	}, ok
}

func modulePathOf(prog *ast.Program) []string {
	if prog.Module == nil {
		return nil
	}
	return prog.Module.Path
}

// resolveProgram registers prog's own module scope (or reuses an
// already-resolved one keyed by dotted path, for the fixed-point property
// of spec §2) and runs both passes over it.
func (r *Resolver) resolveProgram(prog *ast.Program, modPath []string) symtab.ScopeID {
	key := strings.Join(modPath, ".")
	if key != "" {
		if existing, ok := r.done[key]; ok {
			return existing
		}
	}

	scope := r.table.NewScope(0, symtab.ModuleScope)
	if key != "" {
		r.table.ModulesByPath[key] = scope
		r.done[key] = scope
	}

	savedPending := r.pendingImports
	r.pendingImports = nil

	r.programs = append(r.programs, ProgramScope{Program: prog, Scope: scope})

	r.pass1Decls(prog, scope)
	for _, imp := range prog.Imports {
		r.pendingImports = append(r.pendingImports, pendingImport{decl: imp, scope: scope})
	}
	r.resolveImports()
	r.pass2Decls(prog, scope)

	r.pendingImports = savedPending
	return scope
}

// pass1Decls defines a symbol for every top-level declaration without
// entering any body, per spec §4.3.
func (r *Resolver) pass1Decls(prog *ast.Program, scope symtab.ScopeID) {
	for _, d := range prog.Decls {
		r.declareTopLevel(d, scope)
	}
}

func (r *Resolver) declareTopLevel(d ast.Decl, scope symtab.ScopeID) {
	switch decl := d.(type) {
	case *ast.FuncDecl:
		r.defineOrError(scope, &symtab.Symbol{
			Name: decl.Name, Kind: symtab.SymFunction, Span: decl.Span(),
			Public: decl.Public, FuncDecl: decl, Doc: decl.Doc,
		})
	case *ast.TypeDecl:
		r.defineOrError(scope, &symtab.Symbol{
			Name: decl.Name, Kind: symtab.SymTypeDef, Span: decl.Span(),
			Public: decl.Public, TypeDecl: decl,
		})
	case *ast.TraitDecl:
		r.defineOrError(scope, &symtab.Symbol{
			Name: decl.Name, Kind: symtab.SymTraitDef, Span: decl.Span(),
			Public: decl.Public, TraitDecl: decl,
		})
	case *ast.ImplDecl:
		implScope := r.table.NewScope(scope, symtab.ImplScope)
		r.table.Scope(implScope).SelfOK = true
		r.table.Impls = append(r.table.Impls, &symtab.ImplEntry{Decl: decl, Scope: implScope})
	case *ast.ConstDecl:
		r.defineOrError(scope, &symtab.Symbol{
			Name: decl.Name, Kind: symtab.SymConst, Span: decl.Span(),
			Public: decl.Public, TypeExpr: decl.Type, ConstVal: decl.Value,
		})
	case *ast.TopLevelLet:
		r.bindPatternTyped(decl.Pattern, decl.Type, scope, decl.Public, false)
	case *ast.TestDecl:
		r.defineOrError(scope, &symtab.Symbol{
			Name: "test " + decl.Name, Kind: symtab.SymFunction, Span: decl.Span(),
			FuncDecl: &ast.FuncDecl{Base: decl.Base, Name: decl.Name, Body: decl.Body,
				ReturnType: nil, Effect: true},
		})
	case *ast.ModuleDecl, *ast.ImportDecl:
		// handled by the caller (module path / import queue), not a scope symbol
	}
}

func (r *Resolver) defineOrError(scope symtab.ScopeID, sym *symtab.Symbol) (symtab.SymbolID, bool) {
	id, ok := r.table.Define(scope, sym)
	if !ok {
		r.errf(sym.Span, "duplicate definition of '%s' in this scope", sym.Name)
	}
	return id, ok
}

// resolveImports drains the pending-import queue, following each import
// through the Loader as needed and detecting import cycles (spec §4.3).
func (r *Resolver) resolveImports() {
	pending := r.pendingImports
	r.pendingImports = nil
	for _, p := range pending {
		r.resolveImport(p.decl, p.scope)
	}
}

func (r *Resolver) resolveImport(imp *ast.ImportDecl, scope symtab.ScopeID) {
	key := strings.Join(imp.Path, ".")

	modScope, ok := r.table.ModulesByPath[key]
	if !ok {
		if r.loading[key] {
			r.errf(imp.Span(), "circular dependency involving module '%s'", key)
			return
		}
		if r.loader == nil {
			r.errf(imp.Span(), "module '%s' not found (no loader configured)", key)
			return
		}
		childProg, err := r.loader.Load(imp.Path)
		if err != nil {
			r.errf(imp.Span(), "module '%s' not found: %s", key, err)
			return
		}
		r.loading[key] = true
		modScope = r.resolveProgram(childProg, imp.Path)
		delete(r.loading, key)
	}

	if len(imp.Items) == 0 {
		// bare `import a.b`: bind the leaf segment to the module itself.
		leaf := imp.Path[len(imp.Path)-1]
		r.defineOrError(scope, &symtab.Symbol{
			Name: leaf, Kind: symtab.SymImportAlias, Span: imp.Span(),
			ImportPath: imp.Path, ModuleScope: modScope, Public: false,
		})
		return
	}

	for _, item := range imp.Items {
		target, ok := r.table.LookupLocal(modScope, item.Name)
		if !ok {
			r.errf(imp.Span(), "module '%s' has no member '%s'", key, item.Name)
			continue
		}
		if !target.Public {
			r.errf(imp.Span(), "cannot import private symbol '%s'", item.Name)
			continue
		}
		name := item.Name
		if item.Alias != "" {
			name = item.Alias
		}
		r.defineOrError(scope, &symtab.Symbol{
			Name: name, Kind: symtab.SymImportAlias, Span: imp.Span(),
			ImportPath: imp.Path, ImportItem: item.Name, Target: target.ID,
		})
	}
}

// bindPatternTyped binds pat like bindPattern, but additionally attaches
// an explicit top-level type annotation to every identifier it
// introduces directly (not to sub-bindings inside a typed sub-pattern,
// which already carry their own annotation) — used for `let`/top-level
// `let`, where a single Type applies to the whole pattern.
func (r *Resolver) bindPatternTyped(pat ast.Pattern, typeExpr ast.TypeExpr, scope symtab.ScopeID, public, defaultMutable bool) {
	if id, ok := pat.(*ast.IdentPattern); ok {
		symID, _ := r.defineOrError(scope, &symtab.Symbol{
			Name: id.Name, Kind: symtab.SymVariable, Span: id.Span(),
			Public: public, TypeExpr: typeExpr, Mutable: id.Mutable || defaultMutable,
		})
		r.pats[id] = symID
		return
	}
	r.bindPattern(pat, scope, defaultMutable)
}
