package cmd

import (
	"fmt"
	"strings"

	"github.com/cwbudde/ki/internal/diag"
	"github.com/cwbudde/ki/internal/lexer"
	"github.com/spf13/cobra"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [file]",
	Short: "Print the token stream for a ki source file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTokenize,
}

func init() {
	rootCmd.AddCommand(tokenizeCmd)
}

func runTokenize(_ *cobra.Command, args []string) error {
	var filename string
	if len(args) == 1 {
		filename = args[0]
	}
	source, name, err := readSource(filename)
	if err != nil {
		return err
	}

	bag := diag.NewBag(name)
	l := lexer.New(source, bag)

	var sb strings.Builder
	for {
		tok := l.Next()
		fmt.Fprintf(&sb, "%-16s %-10q @%s\n", tok.Kind, tok.Lexeme, tok.Span.Start)
		if tok.Kind == lexer.EOF {
			break
		}
	}

	reportDiagnostics(bag, source)
	return writeOutput(strings.TrimRight(sb.String(), "\n"))
}
