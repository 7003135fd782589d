package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags).
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	rootDir   string
	useColor  bool
	jsonOut   bool
	outFile   string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "ki",
	Short: "ki language front end",
	Long: `ki is a small statically-typed functional language.

This tool exposes the front end's individual stages so each can be
inspected on its own:

  ki tokenize   print the token stream
  ki parse      print the parsed AST
  ki check      resolve and type-check a program
  ki run        check and execute a program`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "module search root (default \".\", or ki.yaml's root:)")
	rootCmd.PersistentFlags().BoolVar(&useColor, "color", true, "colorize diagnostic output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "emit diagnostics as a JSON array instead of text")
	rootCmd.PersistentFlags().StringVarP(&outFile, "output", "o", "", "write output to this file instead of stdout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose diagnostics to stderr")
}
