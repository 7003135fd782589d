package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"
)

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Resolve and type-check a ki program without running it",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(_ *cobra.Command, args []string) error {
	var filename string
	if len(args) == 1 {
		filename = args[0]
	}

	result, err := runFrontEnd(filename)
	if err != nil {
		return err
	}

	hadErr := reportDiagnostics(result.bag, result.source)
	if hadErr {
		return fmt.Errorf("check failed with %d error(s)", len(result.bag.Errors()))
	}

	if jsonOut && result.res != nil {
		doc, err := docCommentsJSON(result)
		if err != nil {
			return err
		}
		return writeOutput(doc)
	}
	return writeOutput("ok")
}

// docCommentsJSON surfaces every symbol's documentation comment (spec
// §4.1's doc-comment token, carried onto symtab.Symbol.Doc) so editor
// tooling driving `ki check --json` can show hover text without
// re-parsing the source itself.
func docCommentsJSON(result *pipelineResult) (string, error) {
	doc := "[]"
	i := 0
	for _, sym := range result.res.Table.All() {
		if sym == nil || sym.Doc == "" {
			continue
		}
		prefix := fmt.Sprintf("%d.", i)
		var err error
		if doc, err = sjson.Set(doc, prefix+"name", sym.Name); err != nil {
			return "", err
		}
		if doc, err = sjson.Set(doc, prefix+"kind", sym.Kind.String()); err != nil {
			return "", err
		}
		if doc, err = sjson.Set(doc, prefix+"doc", sym.Doc); err != nil {
			return "", err
		}
		i++
	}
	return doc, nil
}
