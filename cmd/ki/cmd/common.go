package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cwbudde/ki/internal/checker"
	"github.com/cwbudde/ki/internal/diag"
	"github.com/cwbudde/ki/internal/loader"
	"github.com/cwbudde/ki/internal/parser"
	"github.com/cwbudde/ki/internal/resolver"
)

// resolveRoot picks the module search root: the --root flag wins, then
// ki.yaml's root: key (read from the current directory), then ".".
func resolveRoot() string {
	if rootDir != "" {
		return rootDir
	}
	cfg, err := loader.LoadConfig("ki.yaml")
	if err == nil && cfg.Root != "" {
		return cfg.Root
	}
	return "."
}

// readSource reads path, or "-" / empty for stdin.
func readSource(path string) (string, string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), "<stdin>", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), path, nil
}

// writeOutput sends s to --output's file if set, otherwise stdout.
func writeOutput(s string) error {
	if outFile == "" {
		fmt.Println(s)
		return nil
	}
	return os.WriteFile(outFile, []byte(s+"\n"), 0o644)
}

// reportDiagnostics renders bag's contents to stderr: one JSON array with
// --json, otherwise the caret-annotated text format, colorized unless
// --color=false. Returns whether any Error-severity diagnostic was seen.
func reportDiagnostics(bag *diag.Bag, source string) bool {
	if len(bag.Items) == 0 {
		return bag.HasErrors()
	}
	if jsonOut {
		doc, err := bag.JSON()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		} else {
			fmt.Fprintln(os.Stderr, doc)
		}
		return bag.HasErrors()
	}
	for _, d := range bag.Items {
		fmt.Fprintln(os.Stderr, d.Format(useColor, source))
	}
	return bag.HasErrors()
}

// pipelineResult carries every stage's output far enough for `run` and
// `check` to share one front-end walk.
type pipelineResult struct {
	bag    *diag.Bag
	res    *resolver.Info
	chk    *checker.Info
	source string
}

// runFrontEnd parses filename (or stdin), then resolves and type-checks it
// against modules under root, mirroring checker.Check's own two-phase
// contract (spec §4.3/§4.4): resolution failures short-circuit checking.
func runFrontEnd(filename string) (*pipelineResult, error) {
	source, name, err := readSource(filename)
	if err != nil {
		return nil, err
	}

	bag := diag.NewBag(name)
	p := parser.New(source, bag)
	prog := p.ParseProgram()

	root := resolveRoot()
	if filename != "" && filename != "-" {
		if dir := filepath.Dir(filename); dir != "." && rootDir == "" {
			root = dir
		}
	}
	ld := loader.New(root, bag)

	res, resOK := resolver.Resolve(prog, bag, ld)
	result := &pipelineResult{bag: bag, res: res, source: source}
	if !resOK {
		return result, nil
	}

	chk, _ := checker.Check(bag, res)
	result.chk = chk
	return result, nil
}
