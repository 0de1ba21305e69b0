// Package labeler binds every break and continue statement to the label of
// its enclosing construct and mints a unique label for every loop and
// switch. It is adapted from the original loop-only labeler to also cover
// switch: break targets the innermost loop OR switch, while continue only
// ever targets the innermost loop, even when a switch sits between it and
// the continue statement.
package labeler

import (
	"errors"

	"github.com/mna/minicc/lang/ast"
	"github.com/mna/minicc/lang/mint"
)

// Label walks prog in place, filling in the Label field of every loop and
// switch statement and the Label field of every break/continue.
func Label(prog *ast.Program, m *mint.Mint) error {
	l := &labeler{mint: m}
	for _, d := range prog.Decls {
		fd, ok := d.(*ast.FuncDecl)
		if !ok || fd.Body == nil {
			continue
		}
		if err := l.labelBlock(fd.Body, "", ""); err != nil {
			return err
		}
	}
	return nil
}

type labeler struct {
	mint *mint.Mint
}

// labelBlock labels every statement in b. breakLabel is the label a bare
// break should target (innermost loop or switch); continueLabel is the
// label a bare continue should target (innermost loop only).
func (l *labeler) labelBlock(b *ast.Block, breakLabel, continueLabel string) error {
	for _, item := range b.Items {
		if s, ok := item.(*ast.StmtItem); ok {
			if err := l.labelStmt(s.Stmt, breakLabel, continueLabel); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *labeler) labelStmt(s ast.Stmt, breakLabel, continueLabel string) error {
	switch s := s.(type) {
	case *ast.CompoundStmt:
		return l.labelBlock(s.Block, breakLabel, continueLabel)

	case *ast.IfStmt:
		if err := l.labelStmt(s.Then, breakLabel, continueLabel); err != nil {
			return err
		}
		if s.Else != nil {
			return l.labelStmt(s.Else, breakLabel, continueLabel)
		}
		return nil

	case *ast.WhileStmt:
		lbl := l.mint.Label("while")
		s.Label = lbl
		return l.labelStmt(s.Body, lbl, lbl)

	case *ast.DoWhileStmt:
		lbl := l.mint.Label("dowhile")
		s.Label = lbl
		return l.labelStmt(s.Body, lbl, lbl)

	case *ast.ForStmt:
		lbl := l.mint.Label("for")
		s.Label = lbl
		return l.labelStmt(s.Body, lbl, lbl)

	case *ast.SwitchStmt:
		lbl := l.mint.Label("switch")
		s.Label = lbl
		for _, c := range s.Cases {
			// continueLabel is passed through unchanged: continue inside a
			// switch still targets the enclosing loop, never the switch.
			if err := l.labelBlock(c.Body, lbl, continueLabel); err != nil {
				return err
			}
		}
		if s.Default != nil {
			if err := l.labelBlock(s.Default, lbl, continueLabel); err != nil {
				return err
			}
		}
		return nil

	case *ast.BreakStmt:
		if breakLabel == "" {
			return errors.New("break statement outside of loop or switch")
		}
		s.Label = breakLabel
		return nil

	case *ast.ContinueStmt:
		if continueLabel == "" {
			return errors.New("continue statement outside of loop")
		}
		s.Label = continueLabel
		return nil

	case *ast.ReturnStmt, *ast.ExprStmt, *ast.NullStmt:
		return nil

	default:
		return errors.New("labeler: unhandled statement kind")
	}
}
