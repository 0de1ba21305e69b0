package ast

import (
	"fmt"
	"io"
	"strings"
)

// Printer pretty-prints an AST as an indented tree, one node per line. It is
// driven by Walk/Visitor like the teacher project's printer, but since
// nodes here carry no source positions there is nothing to print but the
// per-node label.
type Printer struct {
	Output io.Writer
}

// Print pretty-prints the AST rooted at n.
func (p *Printer) Print(n Node) error {
	pp := &printer{w: p.Output}
	Walk(pp, n)
	return pp.err
}

type printer struct {
	w     io.Writer
	depth int
	err   error
}

func (p *printer) Visit(n Node, dir VisitDirection) Visitor {
	if dir == VisitExit || p.err != nil {
		p.depth--
		return nil
	}
	p.depth++
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, "%s%s\n", strings.Repeat(". ", p.depth-1), label(n))
	}
	return p
}

// label returns a short one-line description of n's own data, excluding its
// children (which Walk will print on subsequent lines).
func label(n Node) string {
	switch n := n.(type) {
	case *Program:
		return "Program"
	case *Block:
		return "Block"
	case *DeclItem:
		return "DeclItem"
	case *StmtItem:
		return "StmtItem"
	case *FuncDecl:
		return fmt.Sprintf("FuncDecl %s(%s) storage=%s proto=%v", n.Name, strings.Join(n.Params, ", "), n.Storage, n.Body == nil)
	case *VarDecl:
		return fmt.Sprintf("VarDecl %s storage=%s", n.Name, n.Storage)
	case *ReturnStmt:
		return "ReturnStmt"
	case *ExprStmt:
		return "ExprStmt"
	case *NullStmt:
		return "NullStmt"
	case *IfStmt:
		return fmt.Sprintf("IfStmt has_else=%v", n.Else != nil)
	case *CompoundStmt:
		return "CompoundStmt"
	case *WhileStmt:
		return fmt.Sprintf("WhileStmt label=%s", n.Label)
	case *DoWhileStmt:
		return fmt.Sprintf("DoWhileStmt label=%s", n.Label)
	case *ForStmt:
		return fmt.Sprintf("ForStmt label=%s", n.Label)
	case *ForInitDecl:
		return "ForInitDecl"
	case *ForInitExpr:
		return "ForInitExpr"
	case *BreakStmt:
		return fmt.Sprintf("BreakStmt label=%s", n.Label)
	case *ContinueStmt:
		return fmt.Sprintf("ContinueStmt label=%s", n.Label)
	case *CaseClause:
		return fmt.Sprintf("CaseClause %d", n.Value)
	case *SwitchStmt:
		return fmt.Sprintf("SwitchStmt label=%s cases=%d default=%v", n.Label, len(n.Cases), n.Default != nil)
	case *VarExpr:
		return fmt.Sprintf("VarExpr %s", n.Name)
	case *ConstExpr:
		return fmt.Sprintf("ConstExpr %d", n.Value)
	case *UnaryExpr:
		return fmt.Sprintf("UnaryExpr %s", n.Op.GoString())
	case *BinaryExpr:
		return fmt.Sprintf("BinaryExpr %s", n.Op.GoString())
	case *AssignExpr:
		return fmt.Sprintf("AssignExpr %s", n.Op.GoString())
	case *ConditionalExpr:
		return "ConditionalExpr"
	case *CallExpr:
		return fmt.Sprintf("CallExpr %s/%d", n.Name, len(n.Args))
	default:
		return fmt.Sprintf("%T", n)
	}
}
