package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/ki/internal/interp"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Check and execute a ki program",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(_ *cobra.Command, args []string) error {
	var filename string
	if len(args) == 1 {
		filename = args[0]
	}

	result, err := runFrontEnd(filename)
	if err != nil {
		return err
	}
	if reportDiagnostics(result.bag, result.source) || result.chk == nil {
		return fmt.Errorf("compilation failed with %d error(s)", len(result.bag.Errors()))
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "running %s\n", filename)
	}

	in := interp.New(result.res, result.chk)
	_, runErr := in.Run()
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "runtime error: %s\n", runErr)
		return fmt.Errorf("execution failed")
	}
	return nil
}
