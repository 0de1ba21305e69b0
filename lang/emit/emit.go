// Package emit serializes a legalized pseudo-assembly program (lang/codegen)
// to textual GNU-assembler AT&T syntax, the compiler's final output stage
// before an external toolchain assembles and links it.
package emit

import (
	"fmt"
	"io"

	"github.com/mna/minicc/lang/codegen"
	"github.com/mna/minicc/lang/typecheck"
)

// Emit writes prog as AT&T assembly to w. table is consulted to decide
// whether a Call target is defined in this translation unit (plain `call`)
// or must be resolved through the PLT (`call NAME@PLT`), per the emitter's
// symbol table contract.
func Emit(w io.Writer, prog *codegen.Program, table *typecheck.Table) error {
	e := &emitter{w: w, table: table}
	for _, tl := range prog.TopLevel {
		switch tl := tl.(type) {
		case *codegen.Function:
			e.emitFunction(tl)
		case *codegen.StaticVar:
			e.emitStaticVar(tl)
		}
	}
	e.printf(".section .note.GNU-stack,\"\",@progbits\n")
	return e.err
}

type emitter struct {
	w     io.Writer
	table *typecheck.Table
	err   error
}

func (e *emitter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func (e *emitter) isLocallyDefined(name string) bool {
	sym, ok := e.table.Get(name)
	if !ok {
		return false
	}
	fa, ok := sym.Attrs.(*typecheck.FuncAttr)
	return ok && fa.Defined
}

func (e *emitter) emitFunction(fn *codegen.Function) {
	if fn.Global {
		e.printf("\t.globl %s\n", fn.Name)
	}
	e.printf("%s:\n", fn.Name)
	e.printf("\tpushq %%rbp\n")
	e.printf("\tmovq %%rsp, %%rbp\n")
	for _, instr := range fn.Body {
		e.emitInstr(instr)
	}
}

func (e *emitter) emitStaticVar(sv *codegen.StaticVar) {
	if sv.Global {
		e.printf("\t.globl %s\n", sv.Name)
	}
	if sv.Init == 0 {
		e.printf("\t.bss\n")
		e.printf("\t.align 4\n")
		e.printf("%s:\n", sv.Name)
		e.printf("\t.zero 4\n")
		return
	}
	e.printf("\t.data\n")
	e.printf("\t.align 4\n")
	e.printf("%s:\n", sv.Name)
	e.printf("\t.long %d\n", sv.Init)
}

func (e *emitter) emitInstr(instr codegen.Instr) {
	switch instr := instr.(type) {
	case codegen.MovInstr:
		e.printf("\tmovl %s, %s\n", operand(instr.Src, 4), operand(instr.Dst, 4))

	case codegen.UnaryInstr:
		e.printf("\t%sl %s\n", instr.Op, operand(instr.Dst, 4))

	case codegen.BinaryInstr:
		e.emitBinary(instr)

	case codegen.CmpInstr:
		e.printf("\tcmpl %s, %s\n", operand(instr.Src, 4), operand(instr.Dst, 4))

	case codegen.IdivInstr:
		e.printf("\tidivl %s\n", operand(instr.Operand, 4))

	case codegen.CdqInstr:
		e.printf("\tcdq\n")

	case codegen.JmpInstr:
		e.printf("\tjmp .L%s\n", instr.Target)

	case codegen.JmpCCInstr:
		e.printf("\tj%s .L%s\n", instr.Cond, instr.Target)

	case codegen.SetCCInstr:
		e.printf("\tset%s %s\n", instr.Cond, operand(instr.Dst, 1))

	case codegen.LabelInstr:
		e.printf(".L%s:\n", instr.Name)

	case codegen.AllocateStackInstr:
		e.printf("\tsubq $%d, %%rsp\n", instr.Bytes)

	case codegen.DeallocateStackInstr:
		e.printf("\taddq $%d, %%rsp\n", instr.Bytes)

	case codegen.PushInstr:
		e.printf("\tpushq %s\n", operand(instr.Operand, 8))

	case codegen.CallInstr:
		if e.isLocallyDefined(instr.Name) {
			e.printf("\tcall %s\n", instr.Name)
		} else {
			e.printf("\tcall %s@PLT\n", instr.Name)
		}

	case codegen.RetInstr:
		e.printf("\tmovq %%rbp, %%rsp\n")
		e.printf("\tpopq %%rbp\n")
		e.printf("\tret\n")

	default:
		panic("emit: unhandled codegen.Instr kind")
	}
}

// imul's two-operand form rejects a memory destination, but Legalize
// already guaranteed that never reaches us; shift instructions whose count
// is not an immediate must count through %cl, which Legalize's fixUpBinary
// already arranged by routing a non-immediate count through CX specifically,
// never the generic R10/R11 scratch registers.
func (e *emitter) emitBinary(instr codegen.BinaryInstr) {
	switch instr.Op {
	case codegen.Shl, codegen.Shr:
		e.printf("\t%sl %s, %s\n", instr.Op, operand(instr.Src, 1), operand(instr.Dst, 4))
	default:
		e.printf("\t%sl %s, %s\n", instr.Op, operand(instr.Src, 4), operand(instr.Dst, 4))
	}
}

// operand renders o in AT&T syntax at the given byte width (1, 4, or 8).
func operand(o codegen.Operand, width int) string {
	switch o := o.(type) {
	case codegen.Imm:
		return fmt.Sprintf("$%d", o.Value)
	case codegen.Reg:
		return regName(o.Register, width)
	case codegen.Stack:
		return fmt.Sprintf("%d(%%rbp)", o.Offset)
	case codegen.Data:
		return o.Name + "(%rip)"
	default:
		panic("emit: unresolved pseudo operand reached the emitter")
	}
}

var regNames8 = map[codegen.Register]string{
	codegen.AX: "al", codegen.CX: "cl", codegen.DX: "dl",
	codegen.DI: "dil", codegen.SI: "sil",
	codegen.R8: "r8b", codegen.R9: "r9b", codegen.R10: "r10b", codegen.R11: "r11b",
	codegen.SP: "spl",
}

var regNames32 = map[codegen.Register]string{
	codegen.AX: "eax", codegen.CX: "ecx", codegen.DX: "edx",
	codegen.DI: "edi", codegen.SI: "esi",
	codegen.R8: "r8d", codegen.R9: "r9d", codegen.R10: "r10d", codegen.R11: "r11d",
	codegen.SP: "esp",
}

var regNames64 = map[codegen.Register]string{
	codegen.AX: "rax", codegen.CX: "rcx", codegen.DX: "rdx",
	codegen.DI: "rdi", codegen.SI: "rsi",
	codegen.R8: "r8", codegen.R9: "r9", codegen.R10: "r10", codegen.R11: "r11",
	codegen.SP: "rsp",
}

func regName(r codegen.Register, width int) string {
	var names map[codegen.Register]string
	switch width {
	case 1:
		names = regNames8
	case 8:
		names = regNames64
	default:
		names = regNames32
	}
	return "%" + names[r]
}
