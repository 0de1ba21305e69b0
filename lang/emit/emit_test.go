package emit_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mna/minicc/lang/codegen"
	"github.com/mna/minicc/lang/emit"
	"github.com/mna/minicc/lang/labeler"
	"github.com/mna/minicc/lang/mint"
	"github.com/mna/minicc/lang/parser"
	"github.com/mna/minicc/lang/resolver"
	"github.com/mna/minicc/lang/tacky"
	"github.com/mna/minicc/lang/typecheck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emitSrc(t *testing.T, src string) string {
	t.Helper()
	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	m := mint.New()
	require.NoError(t, resolver.Resolve(prog, m))
	require.NoError(t, labeler.Label(prog, m))
	table, err := typecheck.Check(prog)
	require.NoError(t, err)
	tac := tacky.Lower(prog, table, m)
	asm := codegen.Select(tac)
	codegen.Legalize(asm)

	var buf bytes.Buffer
	require.NoError(t, emit.Emit(&buf, asm, table))
	return buf.String()
}

func TestEmitFunctionPrologueAndEpilogue(t *testing.T) {
	out := emitSrc(t, "int main(void) { return 2; }")
	assert.Contains(t, out, "\t.globl main\n")
	assert.Contains(t, out, "main:\n")
	assert.Contains(t, out, "\tpushq %rbp\n")
	assert.Contains(t, out, "\tmovq %rsp, %rbp\n")
	assert.Contains(t, out, "\tmovq %rbp, %rsp\n")
	assert.Contains(t, out, "\tpopq %rbp\n")
	assert.Contains(t, out, "\tret\n")
}

func TestEmitEndsWithNoteGNUStack(t *testing.T) {
	out := emitSrc(t, "int main(void) { return 0; }")
	assert.True(t, strings.HasSuffix(out, ".section .note.GNU-stack,\"\",@progbits\n"))
}

func TestEmitCallToExternalFunctionUsesPLT(t *testing.T) {
	out := emitSrc(t, "extern int putchar(int c); int main(void) { putchar(65); return 0; }")
	assert.Contains(t, out, "call putchar@PLT\n")
}

func TestEmitCallToLocalFunctionOmitsPLT(t *testing.T) {
	out := emitSrc(t, "int f(void) { return 1; } int main(void) { return f(); }")
	assert.Contains(t, out, "call f\n")
	assert.NotContains(t, out, "call f@PLT")
}

func TestEmitStaticVarWithInitializerGoesInData(t *testing.T) {
	out := emitSrc(t, "int g = 5; int main(void) { return g; }")
	assert.Contains(t, out, "\t.data\n")
	assert.Contains(t, out, "\t.long 5\n")
}

func TestEmitTentativeStaticVarGoesInBss(t *testing.T) {
	out := emitSrc(t, "int g; int main(void) { return g; }")
	assert.Contains(t, out, "\t.bss\n")
	assert.Contains(t, out, "\t.zero 4\n")
}

func TestEmitSetCCUsesByteWidthRegister(t *testing.T) {
	// instruction selection always gives SetCC a pseudo (stack) destination,
	// so a register destination is built directly here.
	prog := &codegen.Program{TopLevel: []codegen.TopLevel{&codegen.Function{
		Name: "f",
		Body: []codegen.Instr{codegen.SetCCInstr{Cond: codegen.E, Dst: codegen.Reg{Register: codegen.AX}}},
	}}}
	var buf bytes.Buffer
	require.NoError(t, emit.Emit(&buf, prog, typecheck.NewTable()))
	assert.Contains(t, buf.String(), "\tsete %al\n")
}

func TestEmitVariableShiftCountUsesCL(t *testing.T) {
	out := emitSrc(t, "int main(void) { int a = 1; int b = 2; return a << b; }")
	assert.Contains(t, out, "sall %cl, ")
	assert.NotContains(t, out, "%r10b")
	assert.NotContains(t, out, "%r11b")
}

func TestEmitConstantShiftCountUsesImmediate(t *testing.T) {
	out := emitSrc(t, "int main(void) { int a = 1; return a >> 3; }")
	assert.Contains(t, out, "sarl $3, ")
}
