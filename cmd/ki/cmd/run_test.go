package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// withCLIState resets the package-level flag globals to known defaults
// before a test and restores their prior values afterward, the same way
// the teacher's CLI tests save/restore os.Args and package vars around a
// direct, in-process command invocation.
func withCLIState(t *testing.T) {
	t.Helper()
	oldRoot, oldColor, oldJSON, oldOut, oldVerbose := rootDir, useColor, jsonOut, outFile, verbose
	rootDir, useColor, jsonOut, outFile, verbose = "", false, false, "", false
	t.Cleanup(func() {
		rootDir, useColor, jsonOut, outFile, verbose = oldRoot, oldColor, oldJSON, oldOut, oldVerbose
	})
}

func writeScript(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "main.ki")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestRunCheckSucceeds(t *testing.T) {
	withCLIState(t)
	path := writeScript(t, `fn main() -> i32 { return 42 }`)

	err := runCheck(checkCmd, []string{path})
	require.NoError(t, err)
}

func TestRunCheckReportsResolverError(t *testing.T) {
	withCLIState(t)
	path := writeScript(t, `fn main() -> i64 { let x: i64 = undefined_var return x }`)

	err := runCheck(checkCmd, []string{path})
	require.Error(t, err)
}

func TestRunRunExecutesProgram(t *testing.T) {
	withCLIState(t)
	path := writeScript(t, `fn factorial(n: i32) -> i32 { if n <= 1 { return 1 } return n * factorial(n - 1) }
fn main() -> i32 { return factorial(5) }`)

	err := runRun(runCmd, []string{path})
	require.NoError(t, err)
}

func TestRunRunFailsOnCheckError(t *testing.T) {
	withCLIState(t)
	path := writeScript(t, `type Color = Red | Green | Blue
fn describe(c: Color) -> string {
	match c {
		Red => { return "r" }
		Green => { return "g" }
	}
}
effect fn main() -> i32 { return 0 }`)

	err := runRun(runCmd, []string{path})
	require.Error(t, err)
}

func TestRunCheckJSONEmitsDocComments(t *testing.T) {
	withCLIState(t)
	jsonOut = true
	outPath := filepath.Join(t.TempDir(), "out.json")
	outFile = outPath
	path := writeScript(t, "/// the entry point\neffect fn main() -> i32 { return 0 }")

	err := runCheck(checkCmd, []string{path})
	require.NoError(t, err)

	data, readErr := os.ReadFile(outPath)
	require.NoError(t, readErr)
	require.Contains(t, string(data), "the entry point")
}
