// Command ki is the front end for the language described by the internal
// packages: lex, parse, check, and run a .ki program.
package main

import (
	"fmt"
	"os"

	"github.com/cwbudde/ki/cmd/ki/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
