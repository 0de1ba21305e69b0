package codegen

// Legalize assigns every Pseudo operand a stack slot and rewrites operand
// combinations the hardware does not support (memory-to-memory moves,
// immediate divisors, a multiply whose destination is memory, comparisons
// with too many memory/immediate operands) through the scratch registers
// R10/R11, which instruction selection never otherwise touches.
func Legalize(prog *Program) {
	for _, tl := range prog.TopLevel {
		fn, ok := tl.(*Function)
		if !ok {
			continue
		}
		frameSize := assignStackSlots(fn)
		fn.Body = fixUp(fn.Body, frameSize)
	}
}

// assignStackSlots replaces every distinct Pseudo name with a Stack operand,
// assigning slots in first-occurrence order, 4 bytes apiece, and returns the
// total frame size rounded up to a 16-byte boundary as required before any
// call instruction.
func assignStackSlots(fn *Function) int {
	offsets := make(map[string]int)
	next := 0

	resolve := func(o Operand) Operand {
		p, ok := o.(Pseudo)
		if !ok {
			return o
		}
		off, ok := offsets[p.Name]
		if !ok {
			next -= 4
			off = next
			offsets[p.Name] = off
		}
		return Stack{Offset: off}
	}

	for i, instr := range fn.Body {
		fn.Body[i] = mapOperands(instr, resolve)
	}

	size := -next
	if rem := size % 16; rem != 0 {
		size += 16 - rem
	}
	return size
}

// mapOperands rewrites every operand of instr via resolve, leaving the
// instruction's shape otherwise untouched.
func mapOperands(instr Instr, resolve func(Operand) Operand) Instr {
	switch instr := instr.(type) {
	case MovInstr:
		return MovInstr{Src: resolve(instr.Src), Dst: resolve(instr.Dst)}
	case UnaryInstr:
		return UnaryInstr{Op: instr.Op, Dst: resolve(instr.Dst)}
	case BinaryInstr:
		return BinaryInstr{Op: instr.Op, Src: resolve(instr.Src), Dst: resolve(instr.Dst)}
	case CmpInstr:
		return CmpInstr{Src: resolve(instr.Src), Dst: resolve(instr.Dst)}
	case IdivInstr:
		return IdivInstr{Operand: resolve(instr.Operand)}
	case SetCCInstr:
		return SetCCInstr{Cond: instr.Cond, Dst: resolve(instr.Dst)}
	case PushInstr:
		return PushInstr{Operand: resolve(instr.Operand)}
	default:
		return instr
	}
}

func isMemory(o Operand) bool {
	switch o.(type) {
	case Stack, Data:
		return true
	default:
		return false
	}
}

// fixUp rewrites instructions the assembler would reject, prepending the
// frame's AllocateStackInstr first.
func fixUp(body []Instr, frameSize int) []Instr {
	out := make([]Instr, 0, len(body)+1)
	if frameSize > 0 {
		out = append(out, AllocateStackInstr{Bytes: frameSize})
	}

	for _, instr := range body {
		switch instr := instr.(type) {
		case MovInstr:
			if isMemory(instr.Src) && isMemory(instr.Dst) {
				out = append(out,
					MovInstr{Src: instr.Src, Dst: Reg{Register: R10}},
					MovInstr{Src: Reg{Register: R10}, Dst: instr.Dst},
				)
				continue
			}
			out = append(out, instr)

		case IdivInstr:
			if _, ok := instr.Operand.(Imm); ok {
				out = append(out,
					MovInstr{Src: instr.Operand, Dst: Reg{Register: R10}},
					IdivInstr{Operand: Reg{Register: R10}},
				)
				continue
			}
			out = append(out, instr)

		case BinaryInstr:
			out = append(out, fixUpBinary(instr)...)

		case CmpInstr:
			out = append(out, fixUpCmp(instr)...)

		default:
			out = append(out, instr)
		}
	}
	return out
}

// fixUpBinary handles the binary shapes the hardware rejects: Shl/Shr with a
// non-immediate count, which must sit specifically in CX (not the generic
// R10 scratch register, since sal/sar only accept an immediate or %cl as the
// count, never another register or memory); Add/Sub (and the remaining
// bitwise ops, which share the same two-memory-operand restriction) with
// both operands in memory, routed through R10; and Mult, whose destination
// must never be memory, routed through R11.
func fixUpBinary(instr BinaryInstr) []Instr {
	if instr.Op == Shl || instr.Op == Shr {
		if _, ok := instr.Src.(Imm); !ok {
			return []Instr{
				MovInstr{Src: instr.Src, Dst: Reg{Register: CX}},
				BinaryInstr{Op: instr.Op, Src: Reg{Register: CX}, Dst: instr.Dst},
			}
		}
		return []Instr{instr}
	}
	if instr.Op == Mult && isMemory(instr.Dst) {
		return []Instr{
			MovInstr{Src: instr.Dst, Dst: Reg{Register: R11}},
			BinaryInstr{Op: Mult, Src: instr.Src, Dst: Reg{Register: R11}},
			MovInstr{Src: Reg{Register: R11}, Dst: instr.Dst},
		}
	}
	if isMemory(instr.Src) && isMemory(instr.Dst) {
		return []Instr{
			MovInstr{Src: instr.Src, Dst: Reg{Register: R10}},
			BinaryInstr{Op: instr.Op, Src: Reg{Register: R10}, Dst: instr.Dst},
		}
	}
	return []Instr{instr}
}

// fixUpCmp handles two shapes: both operands in memory (via R10), and an
// immediate second ("Dst") operand, which cmp's encoding forbids (via R11).
func fixUpCmp(instr CmpInstr) []Instr {
	if isMemory(instr.Src) && isMemory(instr.Dst) {
		return []Instr{
			MovInstr{Src: instr.Src, Dst: Reg{Register: R10}},
			CmpInstr{Src: Reg{Register: R10}, Dst: instr.Dst},
		}
	}
	if _, ok := instr.Dst.(Imm); ok {
		return []Instr{
			MovInstr{Src: instr.Dst, Dst: Reg{Register: R11}},
			CmpInstr{Src: instr.Src, Dst: Reg{Register: R11}},
		}
	}
	return []Instr{instr}
}
