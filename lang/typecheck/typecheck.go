// Package typecheck performs the second, linkage-aware semantic pass: it
// builds the symbol table, resolves each file-scope and static variable's
// initial value per the tentative-definition merge rules, and checks every
// expression's use against its declared type and arity.
package typecheck

import (
	"fmt"

	"github.com/mna/minicc/lang/ast"
)

// Error reports a type-checking failure.
type Error struct{ Msg string }

func (e *Error) Error() string { return e.Msg }

func errorf(format string, args ...any) error { return &Error{Msg: fmt.Sprintf(format, args...)} }

// Check type-checks prog (already identifier-resolved and labeled) and
// returns the resulting symbol table, or the first semantic error found.
func Check(prog *ast.Program) (*Table, error) {
	table := NewTable()
	for _, d := range prog.Decls {
		var err error
		switch d := d.(type) {
		case *ast.FuncDecl:
			err = checkFuncDecl(d, table)
		case *ast.VarDecl:
			err = checkFileScopeVarDecl(d, table)
		}
		if err != nil {
			return nil, err
		}
	}
	return table, nil
}

func checkFuncDecl(fd *ast.FuncDecl, table *Table) error {
	typ := FuncType(len(fd.Params))
	hasBody := fd.Body != nil
	global := fd.Storage != ast.Static

	if existing, ok := table.Get(fd.Name); ok {
		if existing.Type != typ {
			return errorf("incompatible function declarations: %s", fd.Name)
		}
		fa := existing.Attrs.(*FuncAttr)
		if fa.Defined && hasBody {
			return errorf("function is defined more than once: %s", fd.Name)
		}
		if fa.Global && !global {
			return errorf("static function declaration follows non-static declaration: %s", fd.Name)
		}
		fa.Defined = fa.Defined || hasBody
		fa.Global = fa.Global && global
	} else {
		table.Set(fd.Name, &Symbol{Type: typ, Attrs: &FuncAttr{Defined: hasBody, Global: global}})
	}

	if !hasBody {
		return nil
	}
	for _, param := range fd.Params {
		table.Set(param, &Symbol{Type: IntType, Attrs: &LocalAttr{}})
	}
	return checkBlock(fd.Body, table)
}

func checkFileScopeVarDecl(vd *ast.VarDecl, table *Table) error {
	var init InitialValue
	switch {
	case vd.Init != nil:
		lit, ok := vd.Init.(*ast.ConstExpr)
		if !ok {
			return errorf("file-scope variable initializer must be a constant: %s", vd.Name)
		}
		init = InitialValue{Kind: Initial, Value: lit.Value}
	case vd.Storage == ast.Extern:
		init = InitialValue{Kind: NoInitializer}
	default:
		init = InitialValue{Kind: Tentative}
	}
	global := vd.Storage != ast.Static

	existing, ok := table.Get(vd.Name)
	if !ok {
		table.Set(vd.Name, &Symbol{Type: IntType, Attrs: &StaticAttr{Init: init, Global: global}})
		return nil
	}
	if existing.Type.Kind != IntKind {
		return errorf("function redeclared as variable: %s", vd.Name)
	}
	sa := existing.Attrs.(*StaticAttr)
	if vd.Storage == ast.Extern {
		global = sa.Global
	} else if sa.Global != global {
		return errorf("conflicting linkage for variable: %s", vd.Name)
	}
	merged, err := mergeInitial(sa.Init, init, vd.Name)
	if err != nil {
		return err
	}
	sa.Init = merged
	sa.Global = global
	return nil
}

func mergeInitial(old, new_ InitialValue, name string) (InitialValue, error) {
	switch {
	case old.Kind == Initial && new_.Kind == Initial:
		return InitialValue{}, errorf("conflicting file-scope definitions for variable: %s", name)
	case old.Kind == Initial:
		return old, nil
	case new_.Kind == Initial:
		return new_, nil
	case old.Kind == Tentative || new_.Kind == Tentative:
		return InitialValue{Kind: Tentative}, nil
	default:
		return InitialValue{Kind: NoInitializer}, nil
	}
}

func checkBlock(b *ast.Block, table *Table) error {
	for _, item := range b.Items {
		var err error
		switch item := item.(type) {
		case *ast.DeclItem:
			err = checkLocalDecl(item.Decl, table)
		case *ast.StmtItem:
			err = checkStmt(item.Stmt, table)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func checkLocalDecl(d ast.Decl, table *Table) error {
	switch d := d.(type) {
	case *ast.VarDecl:
		return checkLocalVarDecl(d, table)
	case *ast.FuncDecl:
		return checkFuncDecl(d, table) // resolver already rejected a body/static here
	default:
		return errorf("unknown declaration kind %T", d)
	}
}

func checkLocalVarDecl(vd *ast.VarDecl, table *Table) error {
	switch vd.Storage {
	case ast.Extern:
		if vd.Init != nil {
			return errorf("extern local variable cannot have an initializer: %s", vd.Name)
		}
		return checkFileScopeVarDecl(&ast.VarDecl{Name: vd.Name, Storage: ast.Extern}, table)

	case ast.Static:
		var k int64
		if vd.Init != nil {
			lit, ok := vd.Init.(*ast.ConstExpr)
			if !ok {
				return errorf("static local variable initializer must be a constant: %s", vd.Name)
			}
			k = lit.Value
		}
		table.Set(vd.Name, &Symbol{Type: IntType, Attrs: &StaticAttr{Init: InitialValue{Kind: Initial, Value: k}, Global: false}})
		return nil

	default:
		table.Set(vd.Name, &Symbol{Type: IntType, Attrs: &LocalAttr{}})
		if vd.Init != nil {
			return checkExpr(vd.Init, table)
		}
		return nil
	}
}

func checkStmt(s ast.Stmt, table *Table) error {
	switch s := s.(type) {
	case *ast.ReturnStmt:
		return checkExpr(s.Expr, table)
	case *ast.ExprStmt:
		return checkExpr(s.Expr, table)
	case *ast.NullStmt:
		return nil
	case *ast.IfStmt:
		if err := checkExpr(s.Cond, table); err != nil {
			return err
		}
		if err := checkStmt(s.Then, table); err != nil {
			return err
		}
		if s.Else != nil {
			return checkStmt(s.Else, table)
		}
		return nil
	case *ast.CompoundStmt:
		return checkBlock(s.Block, table)
	case *ast.WhileStmt:
		if err := checkExpr(s.Cond, table); err != nil {
			return err
		}
		return checkStmt(s.Body, table)
	case *ast.DoWhileStmt:
		if err := checkStmt(s.Body, table); err != nil {
			return err
		}
		return checkExpr(s.Cond, table)
	case *ast.ForStmt:
		return checkForStmt(s, table)
	case *ast.BreakStmt, *ast.ContinueStmt:
		return nil
	case *ast.SwitchStmt:
		return checkSwitchStmt(s, table)
	default:
		return errorf("unknown statement kind %T", s)
	}
}

func checkForStmt(s *ast.ForStmt, table *Table) error {
	switch init := s.Init.(type) {
	case *ast.ForInitDecl:
		if init.Decl.Storage != ast.NoStorage {
			return errorf("storage class specifier not allowed on for-loop init declaration")
		}
		if err := checkLocalVarDecl(init.Decl, table); err != nil {
			return err
		}
	case *ast.ForInitExpr:
		if init.Expr != nil {
			if err := checkExpr(init.Expr, table); err != nil {
				return err
			}
		}
	}
	if s.Cond != nil {
		if err := checkExpr(s.Cond, table); err != nil {
			return err
		}
	}
	if s.Post != nil {
		if err := checkExpr(s.Post, table); err != nil {
			return err
		}
	}
	return checkStmt(s.Body, table)
}

func checkSwitchStmt(s *ast.SwitchStmt, table *Table) error {
	if err := checkExpr(s.Value, table); err != nil {
		return err
	}
	for _, c := range s.Cases {
		if err := checkBlock(c.Body, table); err != nil {
			return err
		}
	}
	if s.Default != nil {
		return checkBlock(s.Default, table)
	}
	return nil
}

func checkExpr(e ast.Expr, table *Table) error {
	switch e := e.(type) {
	case *ast.VarExpr:
		sym, ok := table.Get(e.Name)
		if !ok {
			return errorf("undeclared variable: %s", e.Name)
		}
		if sym.Type.Kind != IntKind {
			return errorf("function name used as variable: %s", e.Name)
		}
		return nil
	case *ast.ConstExpr:
		return nil
	case *ast.UnaryExpr:
		return checkExpr(e.Operand, table)
	case *ast.BinaryExpr:
		if err := checkExpr(e.Left, table); err != nil {
			return err
		}
		return checkExpr(e.Right, table)
	case *ast.AssignExpr:
		if err := checkExpr(e.Target, table); err != nil {
			return err
		}
		return checkExpr(e.Value, table)
	case *ast.ConditionalExpr:
		if err := checkExpr(e.Cond, table); err != nil {
			return err
		}
		if err := checkExpr(e.Then, table); err != nil {
			return err
		}
		return checkExpr(e.Else, table)
	case *ast.CallExpr:
		sym, ok := table.Get(e.Name)
		if !ok {
			return errorf("undeclared function: %s", e.Name)
		}
		if sym.Type.Kind != FuncKind {
			return errorf("variable used as function: %s", e.Name)
		}
		if sym.Type.Arity != len(e.Args) {
			return errorf("function called with the wrong number of arguments: %s", e.Name)
		}
		for _, a := range e.Args {
			if err := checkExpr(a, table); err != nil {
				return err
			}
		}
		return nil
	default:
		return errorf("unknown expression kind %T", e)
	}
}
