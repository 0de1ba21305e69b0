package codegen

import "github.com/mna/minicc/lang/tacky"

// Select translates a lowered TAC program into pseudo-assembly: one pass of
// local, mechanical per-instruction rules, with no register allocation yet
// (every TAC variable becomes a Pseudo operand, resolved to a stack slot by
// Legalize).
func Select(prog *tacky.Program) *Program {
	out := &Program{}
	for _, tl := range prog.TopLevel {
		switch tl := tl.(type) {
		case *tacky.Function:
			out.TopLevel = append(out.TopLevel, selectFunction(tl))
		case *tacky.StaticVar:
			out.TopLevel = append(out.TopLevel, &StaticVar{Name: tl.Name, Global: tl.Global, Init: tl.Init})
		}
	}
	return out
}

// fcomp holds the instruction-selection state for a single function: the
// selected instructions accumulated so far.
type fcomp struct {
	instrs []Instr
}

func (f *fcomp) emit(i Instr) { f.instrs = append(f.instrs, i) }

func selectFunction(fn *tacky.Function) *Function {
	f := &fcomp{}

	for i, param := range fn.Params {
		dst := Pseudo{Name: param}
		if reg, ok := ArgRegister(i); ok {
			f.emit(MovInstr{Src: Reg{Register: reg}, Dst: dst})
		} else {
			// arguments beyond the sixth arrive on the stack, above the return
			// address the caller pushed; +16 skips it and the saved %rbp.
			offset := 16 + (i-len(argRegisters))*8
			f.emit(MovInstr{Src: Stack{Offset: offset}, Dst: dst})
		}
	}

	for _, instr := range fn.Body {
		f.selectInstr(instr)
	}

	return &Function{Name: fn.Name, Global: fn.Global, Body: f.instrs}
}

func selectVal(v tacky.Val) Operand {
	switch v := v.(type) {
	case tacky.Constant:
		return Imm{Value: v.Value}
	case tacky.Var:
		return Pseudo{Name: v.Name}
	default:
		panic("codegen: unhandled tacky.Val kind")
	}
}

func (f *fcomp) selectInstr(instr tacky.Instruction) {
	switch instr := instr.(type) {
	case tacky.ReturnInstr:
		f.emit(MovInstr{Src: selectVal(instr.Val), Dst: Reg{Register: AX}})
		f.emit(RetInstr{})

	case tacky.UnaryInstr:
		f.selectUnary(instr)

	case tacky.BinaryInstr:
		f.selectBinary(instr)

	case tacky.CopyInstr:
		f.emit(MovInstr{Src: selectVal(instr.Src), Dst: selectVal(instr.Dst)})

	case tacky.JumpInstr:
		f.emit(JmpInstr{Target: instr.Target})

	case tacky.JumpIfZeroInstr:
		f.emit(CmpInstr{Src: Imm{Value: 0}, Dst: selectVal(instr.Cond)})
		f.emit(JmpCCInstr{Cond: E, Target: instr.Target})

	case tacky.JumpIfNotZeroInstr:
		f.emit(CmpInstr{Src: Imm{Value: 0}, Dst: selectVal(instr.Cond)})
		f.emit(JmpCCInstr{Cond: NE, Target: instr.Target})

	case tacky.JumpIfEqualInstr:
		f.emit(CmpInstr{Src: selectVal(instr.V2), Dst: selectVal(instr.V1)})
		f.emit(JmpCCInstr{Cond: E, Target: instr.Target})

	case tacky.LabelInstr:
		f.emit(LabelInstr{Name: instr.Name})

	case tacky.CallInstr:
		f.selectCall(instr)

	default:
		panic("codegen: unhandled tacky.Instruction kind")
	}
}

// relationalCond maps a TAC relational BinaryOp to the CondCode that tests
// the same relation after a Cmp.
var relationalCond = map[tacky.BinaryOp]CondCode{
	tacky.Equal:          E,
	tacky.NotEqual:       NE,
	tacky.LessThan:       L,
	tacky.LessOrEqual:    LE,
	tacky.GreaterThan:    G,
	tacky.GreaterOrEqual: GE,
}

func (f *fcomp) selectUnary(instr tacky.UnaryInstr) {
	src := selectVal(instr.Src)
	dst := selectVal(instr.Dst)

	if instr.Op == tacky.Not {
		f.emit(CmpInstr{Src: Imm{Value: 0}, Dst: src})
		f.emit(MovInstr{Src: Imm{Value: 0}, Dst: dst})
		f.emit(SetCCInstr{Cond: E, Dst: dst})
		return
	}

	f.emit(MovInstr{Src: src, Dst: dst})
	op := Neg
	if instr.Op == tacky.Complement {
		op = Not
	}
	f.emit(UnaryInstr{Op: op, Dst: dst})
}

func (f *fcomp) selectBinary(instr tacky.BinaryInstr) {
	src1 := selectVal(instr.Src1)
	src2 := selectVal(instr.Src2)
	dst := selectVal(instr.Dst)

	if cond, ok := relationalCond[instr.Op]; ok {
		f.emit(CmpInstr{Src: src2, Dst: src1})
		f.emit(MovInstr{Src: Imm{Value: 0}, Dst: dst})
		f.emit(SetCCInstr{Cond: cond, Dst: dst})
		return
	}

	if instr.Op == tacky.Divide || instr.Op == tacky.Remainder {
		f.emit(MovInstr{Src: src1, Dst: Reg{Register: AX}})
		f.emit(CdqInstr{})
		f.emit(IdivInstr{Operand: src2})
		result := AX
		if instr.Op == tacky.Remainder {
			result = DX
		}
		f.emit(MovInstr{Src: Reg{Register: result}, Dst: dst})
		return
	}

	op := arithmeticOp(instr.Op)
	f.emit(MovInstr{Src: src1, Dst: dst})
	f.emit(BinaryInstr{Op: op, Src: src2, Dst: dst})
}

func arithmeticOp(op tacky.BinaryOp) BinaryOp {
	switch op {
	case tacky.Add:
		return Add
	case tacky.Subtract:
		return Sub
	case tacky.Multiply:
		return Mult
	case tacky.BitAnd:
		return BitAnd
	case tacky.BitOr:
		return BitOr
	case tacky.BitXor:
		return BitXor
	case tacky.LeftShift:
		return Shl
	case tacky.RightShift:
		return Shr
	default:
		panic("codegen: not an arithmetic/bitwise/shift BinaryOp")
	}
}

// selectCall splits arguments between the six argument registers and an
// overflow pushed on the stack (in reverse, so the first overflow argument
// ends up at the lowest address), padding the stack to a 16-byte boundary
// first when an odd number of words would otherwise be pushed.
func (f *fcomp) selectCall(instr tacky.CallInstr) {
	var regArgs, stackArgs []tacky.Val
	for i, a := range instr.Args {
		if i < len(argRegisters) {
			regArgs = append(regArgs, a)
		} else {
			stackArgs = append(stackArgs, a)
		}
	}

	padding := 0
	if len(stackArgs)%2 != 0 {
		padding = 8
		f.emit(AllocateStackInstr{Bytes: padding})
	}

	for i, a := range regArgs {
		reg, _ := ArgRegister(i)
		f.emit(MovInstr{Src: selectVal(a), Dst: Reg{Register: reg}})
	}

	for i := len(stackArgs) - 1; i >= 0; i-- {
		operand := selectVal(stackArgs[i])
		switch operand.(type) {
		case Imm, Reg:
			f.emit(PushInstr{Operand: operand})
		default:
			// push only accepts an immediate, register, or memory operand of
			// exactly 8 bytes; our pseudos/stack slots are 4-byte ints, so widen
			// through a register first.
			f.emit(MovInstr{Src: operand, Dst: Reg{Register: AX}})
			f.emit(PushInstr{Operand: Reg{Register: AX}})
		}
	}

	f.emit(CallInstr{Name: instr.Name})

	bytesToDeallocate := 8*len(stackArgs) + padding
	if bytesToDeallocate > 0 {
		f.emit(DeallocateStackInstr{Bytes: bytesToDeallocate})
	}

	f.emit(MovInstr{Src: Reg{Register: AX}, Dst: selectVal(instr.Dst)})
}
