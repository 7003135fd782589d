package cmd

import (
	"fmt"
	"strings"

	"github.com/cwbudde/ki/internal/diag"
	"github.com/cwbudde/ki/internal/parser"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a ki source file and print its declarations",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runParseCmd,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParseCmd(_ *cobra.Command, args []string) error {
	var filename string
	if len(args) == 1 {
		filename = args[0]
	}
	source, name, err := readSource(filename)
	if err != nil {
		return err
	}

	bag := diag.NewBag(name)
	p := parser.New(source, bag)
	prog := p.ParseProgram()

	var sb strings.Builder
	if prog.Module != nil {
		fmt.Fprintf(&sb, "module %s\n", strings.Join(prog.Module.Path, "."))
	}
	for _, imp := range prog.Imports {
		fmt.Fprintf(&sb, "import %s\n", strings.Join(imp.Path, "."))
	}
	for _, d := range prog.Decls {
		fmt.Fprintf(&sb, "%T: %+v\n", d, d)
	}

	hadErr := reportDiagnostics(bag, source)
	if err := writeOutput(strings.TrimRight(sb.String(), "\n")); err != nil {
		return err
	}
	if hadErr {
		return fmt.Errorf("parsing failed")
	}
	return nil
}
