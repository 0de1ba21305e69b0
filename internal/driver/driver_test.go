package driver_test

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/mna/minicc/internal/driver"
	"github.com/mna/minicc/internal/filetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var updateLexGolden = flag.Bool("test.update-lex-tests", false, "update internal/driver/testdata/lex golden files")

func testContext(*testing.T) context.Context { return context.Background() }

func writeSource(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.c")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func stdio() (mainer.Stdio, *bytes.Buffer, *bytes.Buffer) {
	var out, errb bytes.Buffer
	return mainer.Stdio{Stdin: bytes.NewReader(nil), Stdout: &out, Stderr: &errb}, &out, &errb
}

func TestCompileStopAtLexPrintsTokens(t *testing.T) {
	src := writeSource(t, "int main(void) { return 2; }")
	sio, out, _ := stdio()
	err := driver.Compile(testContext(t), sio, "", []string{src}, "lex", false)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "int")
	assert.Contains(t, out.String(), "return")
}

func TestCompileStopAtParsePrintsAST(t *testing.T) {
	src := writeSource(t, "int main(void) { return 2; }")
	sio, out, _ := stdio()
	err := driver.Compile(testContext(t), sio, "", []string{src}, "parse", false)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "FuncDecl main")
}

func TestCompileStopAtValidateRejectsSemanticError(t *testing.T) {
	src := writeSource(t, "int main(void) { return f(); }")
	sio, _, _ := stdio()
	err := driver.Compile(testContext(t), sio, "", []string{src}, "validate", false)
	require.Error(t, err)
}

func TestCompileStopAtTackyPrintsIR(t *testing.T) {
	src := writeSource(t, "int main(void) { return 2; }")
	sio, out, _ := stdio()
	err := driver.Compile(testContext(t), sio, "", []string{src}, "tacky", false)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "function main")
}

func TestCompileStopAtCodegenPrintsLegalizedIR(t *testing.T) {
	src := writeSource(t, "int main(void) { int a = 1; int b = 2; return a + b; }")
	sio, out, _ := stdio()
	err := driver.Compile(testContext(t), sio, "", []string{src}, "codegen", false)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "function main")
}

func TestCompileStopAtStageNeverTouchesDisk(t *testing.T) {
	src := writeSource(t, "int main(void) { return 2; }")
	sio, _, _ := stdio()
	err := driver.Compile(testContext(t), sio, "", []string{src}, "codegen", false)
	require.NoError(t, err)
	_, statErr := os.Stat(src[:len(src)-2] + ".s")
	assert.True(t, os.IsNotExist(statErr))
}

func TestCompileRejectsLexError(t *testing.T) {
	src := writeSource(t, "int main(void) { return @; }")
	sio, _, _ := stdio()
	err := driver.Compile(testContext(t), sio, "", []string{src}, "lex", false)
	require.Error(t, err)
}

// TestCompileLexGolden runs every .c file under testdata/lex through the
// --lex stop-at stage and diffs the token dump against its checked-in
// .want file, in the same SourceFiles/DiffOutput style the teacher's
// scanner and parser tests use. Run with -test.update-lex-tests to refresh
// the golden files after an intentional token-format change.
func TestCompileLexGolden(t *testing.T) {
	dir := "testdata/lex"
	for _, fi := range filetest.SourceFiles(t, dir, ".c") {
		fi := fi
		t.Run(fi.Name(), func(t *testing.T) {
			sio, out, _ := stdio()
			err := driver.Compile(testContext(t), sio, "", []string{filepath.Join(dir, fi.Name())}, "lex", false)
			require.NoError(t, err)
			filetest.DiffOutput(t, fi, out.String(), dir, updateLexGolden)
		})
	}
}
