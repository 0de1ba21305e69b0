package tacky

import (
	"github.com/mna/minicc/lang/ast"
	"github.com/mna/minicc/lang/mint"
	"github.com/mna/minicc/lang/token"
	"github.com/mna/minicc/lang/typecheck"
)

// Lower turns a resolved, labeled, type-checked program into TAC. Function
// bodies are lowered in source order; static variables (file-scope and
// local `static`) are then emitted from the symbol table in first-
// declaration order, since only the table holds their final merged
// initial value.
func Lower(prog *ast.Program, table *typecheck.Table, m *mint.Mint) *Program {
	l := &lowerer{table: table, mint: m}

	out := &Program{}
	for _, d := range prog.Decls {
		fd, ok := d.(*ast.FuncDecl)
		if !ok || fd.Body == nil {
			continue
		}
		out.TopLevel = append(out.TopLevel, l.lowerFunction(fd))
	}
	for _, name := range table.Names() {
		sym, _ := table.Get(name)
		sa, ok := sym.Attrs.(*typecheck.StaticAttr)
		if !ok || sa.Init.Kind == typecheck.NoInitializer {
			continue
		}
		var v int64
		if sa.Init.Kind == typecheck.Initial {
			v = sa.Init.Value
		}
		out.TopLevel = append(out.TopLevel, &StaticVar{Name: name, Global: sa.Global, Init: v})
	}
	return out
}

type lowerer struct {
	table *typecheck.Table
	mint  *mint.Mint
	instr []Instruction
}

func (l *lowerer) emit(i Instruction) { l.instr = append(l.instr, i) }

func (l *lowerer) lowerFunction(fd *ast.FuncDecl) *Function {
	l.instr = nil
	sym, _ := l.table.Get(fd.Name)
	fa, _ := sym.Attrs.(*typecheck.FuncAttr)
	global := fa == nil || fa.Global

	l.lowerBlock(fd.Body)
	// every function body falls off the end with an implicit "return 0",
	// matching C's undefined-but-must-not-crash behavior for main and the
	// convenience of not special-casing a missing trailing return.
	l.emit(ReturnInstr{Val: Constant{0}})

	return &Function{Name: fd.Name, Global: global, Params: fd.Params, Body: l.instr}
}

func (l *lowerer) lowerBlock(b *ast.Block) {
	for _, item := range b.Items {
		switch item := item.(type) {
		case *ast.DeclItem:
			l.lowerLocalDecl(item.Decl)
		case *ast.StmtItem:
			l.lowerStmt(item.Stmt)
		}
	}
}

// lowerLocalDecl only has work to do for ordinary (automatic-duration)
// variable declarations with an initializer: statics are materialized
// separately from the symbol table, and externs/function prototypes have
// no runtime effect here.
func (l *lowerer) lowerLocalDecl(d ast.Decl) {
	vd, ok := d.(*ast.VarDecl)
	if !ok || vd.Storage != ast.NoStorage || vd.Init == nil {
		return
	}
	v := l.lowerExpr(vd.Init)
	l.emit(CopyInstr{Src: v, Dst: Var{Name: vd.Name}})
}

func (l *lowerer) lowerStmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.ReturnStmt:
		v := l.lowerExpr(s.Expr)
		l.emit(ReturnInstr{Val: v})

	case *ast.ExprStmt:
		l.lowerExpr(s.Expr)

	case *ast.NullStmt:
		// no-op

	case *ast.IfStmt:
		l.lowerIfStmt(s)

	case *ast.CompoundStmt:
		l.lowerBlock(s.Block)

	case *ast.WhileStmt:
		l.lowerWhileStmt(s)

	case *ast.DoWhileStmt:
		l.lowerDoWhileStmt(s)

	case *ast.ForStmt:
		l.lowerForStmt(s)

	case *ast.BreakStmt:
		l.emit(JumpInstr{Target: "break_" + s.Label})

	case *ast.ContinueStmt:
		l.emit(JumpInstr{Target: "continue_" + s.Label})

	case *ast.SwitchStmt:
		l.lowerSwitchStmt(s)

	default:
		panic("tacky: unhandled statement kind")
	}
}

func (l *lowerer) lowerIfStmt(s *ast.IfStmt) {
	cond := l.lowerExpr(s.Cond)
	if s.Else == nil {
		end := l.mint.Label("if_end")
		l.emit(JumpIfZeroInstr{Cond: cond, Target: end})
		l.lowerStmt(s.Then)
		l.emit(LabelInstr{Name: end})
		return
	}
	elseLbl := l.mint.Label("else")
	end := l.mint.Label("if_end")
	l.emit(JumpIfZeroInstr{Cond: cond, Target: elseLbl})
	l.lowerStmt(s.Then)
	l.emit(JumpInstr{Target: end})
	l.emit(LabelInstr{Name: elseLbl})
	l.lowerStmt(s.Else)
	l.emit(LabelInstr{Name: end})
}

func (l *lowerer) lowerWhileStmt(s *ast.WhileStmt) {
	contLbl := "continue_" + s.Label
	breakLbl := "break_" + s.Label
	l.emit(LabelInstr{Name: contLbl})
	cond := l.lowerExpr(s.Cond)
	l.emit(JumpIfZeroInstr{Cond: cond, Target: breakLbl})
	l.lowerStmt(s.Body)
	l.emit(JumpInstr{Target: contLbl})
	l.emit(LabelInstr{Name: breakLbl})
}

func (l *lowerer) lowerDoWhileStmt(s *ast.DoWhileStmt) {
	startLbl := l.mint.Label("dowhile_start")
	contLbl := "continue_" + s.Label
	breakLbl := "break_" + s.Label
	l.emit(LabelInstr{Name: startLbl})
	l.lowerStmt(s.Body)
	l.emit(LabelInstr{Name: contLbl})
	cond := l.lowerExpr(s.Cond)
	l.emit(JumpIfNotZeroInstr{Cond: cond, Target: startLbl})
	l.emit(LabelInstr{Name: breakLbl})
}

func (l *lowerer) lowerForStmt(s *ast.ForStmt) {
	switch init := s.Init.(type) {
	case *ast.ForInitDecl:
		l.lowerLocalDecl(init.Decl)
	case *ast.ForInitExpr:
		if init.Expr != nil {
			l.lowerExpr(init.Expr)
		}
	}

	startLbl := l.mint.Label("for_start")
	contLbl := "continue_" + s.Label
	breakLbl := "break_" + s.Label

	l.emit(LabelInstr{Name: startLbl})
	if s.Cond != nil {
		cond := l.lowerExpr(s.Cond)
		l.emit(JumpIfZeroInstr{Cond: cond, Target: breakLbl})
	}
	l.lowerStmt(s.Body)
	l.emit(LabelInstr{Name: contLbl})
	if s.Post != nil {
		l.lowerExpr(s.Post)
	}
	l.emit(JumpInstr{Target: startLbl})
	l.emit(LabelInstr{Name: breakLbl})
}

func (l *lowerer) lowerSwitchStmt(s *ast.SwitchStmt) {
	breakLbl := "break_" + s.Label
	v := l.lowerExpr(s.Value)

	caseLabels := make([]string, len(s.Cases))
	for i, c := range s.Cases {
		lbl := l.mint.Label("case")
		caseLabels[i] = lbl
		l.emit(JumpIfEqualInstr{V1: v, V2: Constant{c.Value}, Target: lbl})
	}
	var defaultLbl string
	if s.Default != nil {
		defaultLbl = l.mint.Label("default")
		l.emit(JumpInstr{Target: defaultLbl})
	} else {
		l.emit(JumpInstr{Target: breakLbl})
	}

	for i, c := range s.Cases {
		l.emit(LabelInstr{Name: caseLabels[i]})
		l.lowerBlock(c.Body)
	}
	if s.Default != nil {
		l.emit(LabelInstr{Name: defaultLbl})
		l.lowerBlock(s.Default)
	}
	l.emit(LabelInstr{Name: breakLbl})
}

func (l *lowerer) lowerExpr(e ast.Expr) Val {
	switch e := e.(type) {
	case *ast.ConstExpr:
		return Constant{e.Value}

	case *ast.VarExpr:
		return Var{Name: e.Name}

	case *ast.UnaryExpr:
		src := l.lowerExpr(e.Operand)
		dst := Var{Name: l.mint.Temp()}
		l.emit(UnaryInstr{Op: unaryOpFor(e.Op), Src: src, Dst: dst})
		return dst

	case *ast.BinaryExpr:
		switch e.Op {
		case token.AMPAMP:
			return l.lowerLogicalAnd(e)
		case token.PIPEPIPE:
			return l.lowerLogicalOr(e)
		default:
			src1 := l.lowerExpr(e.Left)
			src2 := l.lowerExpr(e.Right)
			dst := Var{Name: l.mint.Temp()}
			l.emit(BinaryInstr{Op: binaryOpFor(e.Op), Src1: src1, Src2: src2, Dst: dst})
			return dst
		}

	case *ast.AssignExpr:
		return l.lowerAssign(e)

	case *ast.ConditionalExpr:
		return l.lowerConditional(e)

	case *ast.CallExpr:
		args := make([]Val, len(e.Args))
		for i, a := range e.Args {
			args[i] = l.lowerExpr(a)
		}
		dst := Var{Name: l.mint.Temp()}
		l.emit(CallInstr{Name: e.Name, Args: args, Dst: dst})
		return dst

	default:
		panic("tacky: unhandled expression kind")
	}
}

func (l *lowerer) lowerLogicalAnd(e *ast.BinaryExpr) Val {
	falseLbl := l.mint.Label("and_false")
	endLbl := l.mint.Label("and_end")
	result := Var{Name: l.mint.Temp()}

	v1 := l.lowerExpr(e.Left)
	l.emit(JumpIfZeroInstr{Cond: v1, Target: falseLbl})
	v2 := l.lowerExpr(e.Right)
	l.emit(JumpIfZeroInstr{Cond: v2, Target: falseLbl})
	l.emit(CopyInstr{Src: Constant{1}, Dst: result})
	l.emit(JumpInstr{Target: endLbl})
	l.emit(LabelInstr{Name: falseLbl})
	l.emit(CopyInstr{Src: Constant{0}, Dst: result})
	l.emit(LabelInstr{Name: endLbl})
	return result
}

func (l *lowerer) lowerLogicalOr(e *ast.BinaryExpr) Val {
	trueLbl := l.mint.Label("or_true")
	endLbl := l.mint.Label("or_end")
	result := Var{Name: l.mint.Temp()}

	v1 := l.lowerExpr(e.Left)
	l.emit(JumpIfNotZeroInstr{Cond: v1, Target: trueLbl})
	v2 := l.lowerExpr(e.Right)
	l.emit(JumpIfNotZeroInstr{Cond: v2, Target: trueLbl})
	l.emit(CopyInstr{Src: Constant{0}, Dst: result})
	l.emit(JumpInstr{Target: endLbl})
	l.emit(LabelInstr{Name: trueLbl})
	l.emit(CopyInstr{Src: Constant{1}, Dst: result})
	l.emit(LabelInstr{Name: endLbl})
	return result
}

func (l *lowerer) lowerAssign(e *ast.AssignExpr) Val {
	lhs := Var{Name: e.Target.(*ast.VarExpr).Name}
	rhs := l.lowerExpr(e.Value)

	if op, ok := e.Op.CompoundOp(); ok {
		tmp := Var{Name: l.mint.Temp()}
		l.emit(BinaryInstr{Op: binaryOpFor(op), Src1: lhs, Src2: rhs, Dst: tmp})
		l.emit(CopyInstr{Src: tmp, Dst: lhs})
		return lhs
	}
	l.emit(CopyInstr{Src: rhs, Dst: lhs})
	return lhs
}

func (l *lowerer) lowerConditional(e *ast.ConditionalExpr) Val {
	elseLbl := l.mint.Label("cond_else")
	endLbl := l.mint.Label("cond_end")
	result := Var{Name: l.mint.Temp()}

	cond := l.lowerExpr(e.Cond)
	l.emit(JumpIfZeroInstr{Cond: cond, Target: elseLbl})
	thenV := l.lowerExpr(e.Then)
	l.emit(CopyInstr{Src: thenV, Dst: result})
	l.emit(JumpInstr{Target: endLbl})
	l.emit(LabelInstr{Name: elseLbl})
	elseV := l.lowerExpr(e.Else)
	l.emit(CopyInstr{Src: elseV, Dst: result})
	l.emit(LabelInstr{Name: endLbl})
	return result
}
