// Package loader implements the filesystem module loader of spec §6: it
// maps a dotted import path to a source file under a configurable root,
// reads it, and hands the bytes to the parser. It implements
// resolver.Loader so the resolver never touches the filesystem directly.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/ki/internal/ast"
	"github.com/cwbudde/ki/internal/diag"
	"github.com/cwbudde/ki/internal/parser"
)

// Loader resolves a dotted module path ("a.b.c") to "<root>/a/b/c.ki",
// reads it, and parses it. Parse diagnostics from a loaded module are
// added to the shared Bag passed to New, so a syntax error deep in an
// imported file surfaces next to every other diagnostic in one run.
type Loader struct {
	Root string
	Bag  *diag.Bag

	cache map[string]*ast.Program
}

// New creates a Loader rooted at root; relative import paths resolve
// against it (default "." per spec §6, overridable via --root or the
// `root:` key in ki.yaml — see LoadConfig in config.go).
func New(root string, bag *diag.Bag) *Loader {
	if root == "" {
		root = "."
	}
	return &Loader{Root: root, Bag: bag, cache: make(map[string]*ast.Program)}
}

// Load implements resolver.Loader.
func (l *Loader) Load(path []string) (*ast.Program, error) {
	key := strings.Join(path, ".")
	if prog, ok := l.cache[key]; ok {
		return prog, nil
	}

	file := l.FilePath(path)
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}

	bag := l.Bag
	if bag == nil {
		bag = diag.NewBag(file)
	}
	sub := diag.NewBag(file)
	p := parser.New(string(src), sub)
	prog := p.ParseProgram()
	for _, d := range sub.Items {
		bag.Add(d)
	}

	l.cache[key] = prog
	return prog, nil
}

// FilePath maps a dotted import path to its file path: the default
// `./<segments>.ki` convention of spec §6, segments joined by the host's
// directory separator under Root.
func (l *Loader) FilePath(path []string) string {
	segs := append([]string{l.Root}, path...)
	rel := filepath.Join(segs...)
	return rel + ".ki"
}
