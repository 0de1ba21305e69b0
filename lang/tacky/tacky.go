// Package tacky defines the three-address code (TAC) intermediate
// representation and the lowering pass from the typed AST to it. It is
// adapted from the original source's one-function-only tacker module,
// generalized to every statement and expression this compiler's C subset
// supports (loops, switch, calls, compound assignment, short-circuit
// logical operators) and to a whole program of functions and file-scope
// statics rather than a single function.
package tacky

import "github.com/mna/minicc/lang/token"

// UnaryOp is a TAC unary operator.
type UnaryOp int

const (
	Negate UnaryOp = iota
	Complement
	Not
)

// BinaryOp is a TAC binary operator. && and || have no BinaryOp: they are
// expanded into jumps during lowering.
type BinaryOp int

const (
	Add BinaryOp = iota
	Subtract
	Multiply
	Divide
	Remainder
	BitAnd
	BitOr
	BitXor
	LeftShift
	RightShift
	Equal
	NotEqual
	LessThan
	LessOrEqual
	GreaterThan
	GreaterOrEqual
)

// unaryOpFor and binaryOpFor translate a source token into its TAC
// operator counterpart.
func unaryOpFor(t token.Token) UnaryOp {
	switch t {
	case token.MINUS:
		return Negate
	case token.TILDE:
		return Complement
	case token.BANG:
		return Not
	default:
		panic("tacky: not a unary operator token")
	}
}

func binaryOpFor(t token.Token) BinaryOp {
	switch t {
	case token.PLUS:
		return Add
	case token.MINUS:
		return Subtract
	case token.STAR:
		return Multiply
	case token.SLASH:
		return Divide
	case token.PERCENT:
		return Remainder
	case token.AMP:
		return BitAnd
	case token.PIPE:
		return BitOr
	case token.CARET:
		return BitXor
	case token.SHL:
		return LeftShift
	case token.SHR:
		return RightShift
	case token.EQEQ:
		return Equal
	case token.BANGEQ:
		return NotEqual
	case token.LT:
		return LessThan
	case token.LE:
		return LessOrEqual
	case token.GT:
		return GreaterThan
	case token.GE:
		return GreaterOrEqual
	default:
		panic("tacky: not a binary operator token")
	}
}

// Val is a TAC value: either a literal constant or a reference to a named
// variable (a resolved source local or a compiler-generated temporary).
type Val interface{ valNode() }

// Constant is a literal integer value.
type Constant struct{ Value int64 }

func (Constant) valNode() {}

// Var names a source-language local (by its resolver-assigned unique name)
// or a compiler temporary ("temp.N").
type Var struct{ Name string }

func (Var) valNode() {}

// Instruction is one TAC instruction.
type Instruction interface{ instrNode() }

type ReturnInstr struct{ Val Val }

func (ReturnInstr) instrNode() {}

type UnaryInstr struct {
	Op       UnaryOp
	Src, Dst Val
}

func (UnaryInstr) instrNode() {}

type BinaryInstr struct {
	Op         BinaryOp
	Src1, Src2 Val
	Dst        Val
}

func (BinaryInstr) instrNode() {}

type CopyInstr struct{ Src, Dst Val }

func (CopyInstr) instrNode() {}

type JumpInstr struct{ Target string }

func (JumpInstr) instrNode() {}

type JumpIfZeroInstr struct {
	Cond   Val
	Target string
}

func (JumpIfZeroInstr) instrNode() {}

type JumpIfNotZeroInstr struct {
	Cond   Val
	Target string
}

func (JumpIfNotZeroInstr) instrNode() {}

type JumpIfEqualInstr struct {
	V1, V2 Val
	Target string
}

func (JumpIfEqualInstr) instrNode() {}

type LabelInstr struct{ Name string }

func (LabelInstr) instrNode() {}

type CallInstr struct {
	Name string
	Args []Val
	Dst  Val
}

func (CallInstr) instrNode() {}

// TopLevel is either *Function or *StaticVar.
type TopLevel interface{ topLevelNode() }

// Function is a lowered function definition.
type Function struct {
	Name       string
	Global     bool
	Params     []string
	Body       []Instruction
}

func (*Function) topLevelNode() {}

// StaticVar is a lowered file-scope or local-static variable.
type StaticVar struct {
	Name   string
	Global bool
	Init   int64
}

func (*StaticVar) topLevelNode() {}

// Program is the whole lowered compilation unit.
type Program struct {
	TopLevel []TopLevel
}
