package codegen_test

import (
	"testing"

	"github.com/mna/minicc/lang/codegen"
	"github.com/mna/minicc/lang/labeler"
	"github.com/mna/minicc/lang/mint"
	"github.com/mna/minicc/lang/parser"
	"github.com/mna/minicc/lang/resolver"
	"github.com/mna/minicc/lang/tacky"
	"github.com/mna/minicc/lang/typecheck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileSrc(t *testing.T, src string) *codegen.Program {
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
	return asm
}

func mainFunction(t *testing.T, p *codegen.Program) *codegen.Function {
	t.Helper()
	for _, tl := range p.TopLevel {
		if fn, ok := tl.(*codegen.Function); ok && fn.Name == "main" {
			return fn
		}
	}
	t.Fatal("no main function in compiled program")
	return nil
}

func TestSelectReturnConstant(t *testing.T) {
	fn := mainFunction(t, compileSrc(t, "int main(void) { return 2; }"))
	last := fn.Body[len(fn.Body)-1]
	_, ok := last.(codegen.RetInstr)
	assert.True(t, ok)
}

func TestLegalizeAssignsDistinctStackSlots(t *testing.T) {
	fn := mainFunction(t, compileSrc(t, "int main(void) { int a = 1; int b = 2; return a + b; }"))
	seen := map[int]bool{}
	for _, instr := range fn.Body {
		if mv, ok := instr.(codegen.MovInstr); ok {
			if s, ok := mv.Dst.(codegen.Stack); ok {
				seen[s.Offset] = true
			}
		}
	}
	assert.GreaterOrEqual(t, len(seen), 2)
}

func TestLegalizeNoPseudoOperandsSurvive(t *testing.T) {
	fn := mainFunction(t, compileSrc(t, "int main(void) { int a = 1; return -a; }"))
	for _, instr := range fn.Body {
		assertNoPseudo(t, instr)
	}
}

func assertNoPseudo(t *testing.T, instr codegen.Instr) {
	t.Helper()
	check := func(o codegen.Operand) {
		_, ok := o.(codegen.Pseudo)
		assert.False(t, ok, "pseudo operand leaked into legalized instruction: %#v", instr)
	}
	switch instr := instr.(type) {
	case codegen.MovInstr:
		check(instr.Src)
		check(instr.Dst)
	case codegen.UnaryInstr:
		check(instr.Dst)
	case codegen.BinaryInstr:
		check(instr.Src)
		check(instr.Dst)
	case codegen.CmpInstr:
		check(instr.Src)
		check(instr.Dst)
	case codegen.IdivInstr:
		check(instr.Operand)
	case codegen.SetCCInstr:
		check(instr.Dst)
	case codegen.PushInstr:
		check(instr.Operand)
	}
}

func TestLegalizeFrameSizeIsSixteenByteAligned(t *testing.T) {
	fn := mainFunction(t, compileSrc(t, "int main(void) { int a = 1; return a; }"))
	require.NotEmpty(t, fn.Body)
	alloc, ok := fn.Body[0].(codegen.AllocateStackInstr)
	require.True(t, ok)
	assert.Equal(t, 0, alloc.Bytes%16)
}

func TestLegalizeMemToMemMovGoesThroughScratchReg(t *testing.T) {
	fn := mainFunction(t, compileSrc(t, "int main(void) { int a = 1; int b = a; return b; }"))
	for i, instr := range fn.Body {
		mv, ok := instr.(codegen.MovInstr)
		if !ok {
			continue
		}
		_, srcStack := mv.Src.(codegen.Stack)
		_, dstStack := mv.Dst.(codegen.Stack)
		if srcStack && dstStack {
			t.Fatalf("mov %d: both operands in memory, legalizer should have split it", i)
		}
	}
}

func TestSelectDivideUsesCdqAndIdiv(t *testing.T) {
	fn := mainFunction(t, compileSrc(t, "int main(void) { return 4 / 2; }"))
	var sawCdq, sawIdiv bool
	for _, instr := range fn.Body {
		switch instr.(type) {
		case codegen.CdqInstr:
			sawCdq = true
		case codegen.IdivInstr:
			sawIdiv = true
		}
	}
	assert.True(t, sawCdq)
	assert.True(t, sawIdiv)
}

func TestLegalizeVariableShiftCountGoesThroughCX(t *testing.T) {
	fn := mainFunction(t, compileSrc(t, "int main(void) { int a = 1; int b = 2; return a << b; }"))
	var sawShift bool
	for _, instr := range fn.Body {
		bin, ok := instr.(codegen.BinaryInstr)
		if !ok || bin.Op != codegen.Shl {
			continue
		}
		sawShift = true
		reg, ok := bin.Src.(codegen.Reg)
		require.True(t, ok, "shift count operand must be a register, got %#v", bin.Src)
		assert.Equal(t, codegen.CX, reg.Register)
	}
	assert.True(t, sawShift)
}

func TestLegalizeConstantShiftCountStaysImmediate(t *testing.T) {
	fn := mainFunction(t, compileSrc(t, "int main(void) { int a = 1; return a >> 3; }"))
	var sawShift bool
	for _, instr := range fn.Body {
		bin, ok := instr.(codegen.BinaryInstr)
		if !ok || bin.Op != codegen.Shr {
			continue
		}
		sawShift = true
		_, ok := bin.Src.(codegen.Imm)
		assert.True(t, ok, "constant shift count should stay an immediate, got %#v", bin.Src)
	}
	assert.True(t, sawShift)
}

func TestSelectCallSplitsRegisterAndStackArgs(t *testing.T) {
	fn := mainFunction(t, compileSrc(t, `int f(int a, int b, int c, int d, int e, int f, int g);
	int main(void) { return f(1,2,3,4,5,6,7); }`))
	var sawPush, sawCall bool
	for _, instr := range fn.Body {
		switch instr.(type) {
		case codegen.PushInstr:
			sawPush = true
		case codegen.CallInstr:
			sawCall = true
		}
	}
	assert.True(t, sawPush)
	assert.True(t, sawCall)
}
