// Package resolver implements identifier resolution: it rewrites every
// local variable to a program-unique name and tags declarations that carry
// linkage (file-scope names and block-scope externs), so that later passes
// never have to reason about lexical scope again.
//
// Scoping is modeled the same way _examples/mna-nenuphar/lang/resolver does
// it: a chain of blocks, each holding its own bindings map and a pointer to
// its enclosing block, with the resolver's current block swapped in and out
// on push/pop as it walks the tree. A name is looked up by walking the
// chain outward; a declaration only ever conflicts with a binding already
// present in the current block, never an outer one.
package resolver

import (
	"fmt"

	"github.com/mna/minicc/lang/ast"
	"github.com/mna/minicc/lang/mint"
)

// Error reports an identifier-resolution failure (duplicate declaration,
// undeclared reference, invalid lvalue, conflicting linkage).
type Error struct{ Msg string }

func (e *Error) Error() string { return e.Msg }

func errorf(format string, args ...any) error { return &Error{Msg: fmt.Sprintf(format, args...)} }

// binding is what a block remembers about one name declared in it.
type binding struct {
	uniqueName string
	hasLinkage bool
}

// block is one lexical scope: file scope, a function body, a compound
// statement, a for-loop header, or a switch/case body.
type block struct {
	parent   *block
	bindings map[string]*binding
}

// Resolve rewrites prog in place: every VarExpr/CallExpr/AssignExpr target
// is renamed to its unique name, and every local VarDecl is renamed unless
// it has linkage. m mints the fresh ".uN" suffixes.
func Resolve(prog *ast.Program, m *mint.Mint) error {
	r := &resolver{mint: m}
	return r.resolveProgram(prog)
}

type resolver struct {
	mint *mint.Mint
	env  *block
}

func (r *resolver) push() {
	r.env = &block{parent: r.env, bindings: make(map[string]*binding)}
}

func (r *resolver) pop() { r.env = r.env.parent }

// bind declares name in the current block, returning its binding so the
// caller can fill in the unique name. existing reports whether name was
// already bound in this same block (not an outer one).
func (r *resolver) bind(name string) (bd *binding, existing bool) {
	if bd, ok := r.env.bindings[name]; ok {
		return bd, true
	}
	bd = &binding{}
	r.env.bindings[name] = bd
	return bd, false
}

// use looks up name by walking the block chain outward from the current
// block, the same way a free reference in the teacher's resolver finds its
// enclosing binding.
func (r *resolver) use(name string) (*binding, bool) {
	for b := r.env; b != nil; b = b.parent {
		if bd, ok := b.bindings[name]; ok {
			return bd, true
		}
	}
	return nil, false
}

func (r *resolver) resolveProgram(prog *ast.Program) error {
	r.push() // file scope, never popped
	// file-scope pre-pass: every top-level name is installed before any
	// function body is resolved, so forward references and mutual
	// recursion between top-level functions work.
	for _, d := range prog.Decls {
		switch d := d.(type) {
		case *ast.FuncDecl:
			r.bindFileScope(d.Name)
		case *ast.VarDecl:
			r.bindFileScope(d.Name)
		}
	}

	for _, d := range prog.Decls {
		fd, ok := d.(*ast.FuncDecl)
		if !ok || fd.Body == nil {
			continue
		}
		r.push()
		for i, param := range fd.Params {
			unique := r.mint.Var(param)
			bd, _ := r.bind(param)
			bd.uniqueName = unique
			fd.Params[i] = unique
		}
		if err := r.resolveBlockItems(fd.Body.Items); err != nil {
			return err
		}
		r.pop()
	}
	return nil
}

// bindFileScope records a top-level name with its source spelling as its
// own unique name; file-scope names are never mangled and always carry
// linkage.
func (r *resolver) bindFileScope(name string) {
	bd, _ := r.bind(name)
	bd.uniqueName = name
	bd.hasLinkage = true
}

func (r *resolver) resolveBlock(b *ast.Block) error {
	r.push()
	err := r.resolveBlockItems(b.Items)
	r.pop()
	return err
}

func (r *resolver) resolveBlockItems(items []ast.BlockItem) error {
	for _, item := range items {
		switch item := item.(type) {
		case *ast.DeclItem:
			if err := r.resolveLocalDecl(item.Decl); err != nil {
				return err
			}
		case *ast.StmtItem:
			if err := r.resolveStmt(item.Stmt); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *resolver) resolveLocalDecl(d ast.Decl) error {
	switch d := d.(type) {
	case *ast.VarDecl:
		return r.resolveLocalVarDecl(d)
	case *ast.FuncDecl:
		return r.resolveLocalFuncDecl(d)
	default:
		return errorf("unknown declaration kind %T", d)
	}
}

func (r *resolver) resolveLocalVarDecl(d *ast.VarDecl) error {
	if existing, dup := r.env.bindings[d.Name]; dup {
		if !(existing.hasLinkage && d.Storage == ast.Extern) {
			return errorf("variable %q redeclared in this block", d.Name)
		}
	}

	if d.Storage == ast.Extern {
		// externs keep their source name and always carry linkage; the
		// initializer (if any, which the type checker rejects) is resolved
		// against the scope as it stood before this declaration.
		if d.Init != nil {
			if err := r.resolveExpr(d.Init); err != nil {
				return err
			}
		}
		bd, _ := r.bind(d.Name)
		bd.uniqueName = d.Name
		bd.hasLinkage = true
		return nil
	}

	// resolve the initializer before the new name becomes visible, so
	// "int x = x;" refers to an outer/undeclared x, not to itself.
	if d.Init != nil {
		if err := r.resolveExpr(d.Init); err != nil {
			return err
		}
	}
	unique := r.mint.Var(d.Name)
	bd, _ := r.bind(d.Name)
	bd.uniqueName = unique
	d.Name = unique
	return nil
}

func (r *resolver) resolveLocalFuncDecl(d *ast.FuncDecl) error {
	if d.Body != nil {
		return errorf("function %q defined at block scope", d.Name)
	}
	if d.Storage == ast.Static {
		return errorf("function %q declared static at block scope", d.Name)
	}
	if existing, dup := r.bind(d.Name); dup && !existing.hasLinkage {
		return errorf("%q redeclared as function in this block", d.Name)
	}
	bd, _ := r.bind(d.Name)
	bd.uniqueName = d.Name
	bd.hasLinkage = true
	return nil
}

func (r *resolver) resolveStmt(s ast.Stmt) error {
	switch s := s.(type) {
	case *ast.ReturnStmt:
		return r.resolveExpr(s.Expr)
	case *ast.ExprStmt:
		return r.resolveExpr(s.Expr)
	case *ast.NullStmt:
		return nil
	case *ast.IfStmt:
		if err := r.resolveExpr(s.Cond); err != nil {
			return err
		}
		if err := r.resolveStmt(s.Then); err != nil {
			return err
		}
		if s.Else != nil {
			return r.resolveStmt(s.Else)
		}
		return nil
	case *ast.CompoundStmt:
		return r.resolveBlock(s.Block)
	case *ast.WhileStmt:
		if err := r.resolveExpr(s.Cond); err != nil {
			return err
		}
		return r.resolveStmt(s.Body)
	case *ast.DoWhileStmt:
		if err := r.resolveStmt(s.Body); err != nil {
			return err
		}
		return r.resolveExpr(s.Cond)
	case *ast.ForStmt:
		return r.resolveForStmt(s)
	case *ast.BreakStmt, *ast.ContinueStmt:
		return nil
	case *ast.SwitchStmt:
		return r.resolveSwitchStmt(s)
	default:
		return errorf("unknown statement kind %T", s)
	}
}

func (r *resolver) resolveForStmt(s *ast.ForStmt) error {
	r.push()
	defer r.pop()

	switch init := s.Init.(type) {
	case *ast.ForInitDecl:
		if init.Decl.Storage != ast.NoStorage {
			return errorf("storage class specifier not allowed on for-loop init declaration")
		}
		if err := r.resolveLocalVarDecl(init.Decl); err != nil {
			return err
		}
	case *ast.ForInitExpr:
		if init.Expr != nil {
			if err := r.resolveExpr(init.Expr); err != nil {
				return err
			}
		}
	}
	if s.Cond != nil {
		if err := r.resolveExpr(s.Cond); err != nil {
			return err
		}
	}
	if s.Post != nil {
		if err := r.resolveExpr(s.Post); err != nil {
			return err
		}
	}
	return r.resolveStmt(s.Body)
}

func (r *resolver) resolveSwitchStmt(s *ast.SwitchStmt) error {
	if err := r.resolveExpr(s.Value); err != nil {
		return err
	}
	for _, c := range s.Cases {
		if err := r.resolveBlock(c.Body); err != nil {
			return err
		}
	}
	if s.Default != nil {
		if err := r.resolveBlock(s.Default); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) resolveExpr(e ast.Expr) error {
	switch e := e.(type) {
	case *ast.VarExpr:
		bd, ok := r.use(e.Name)
		if !ok {
			return errorf("undeclared variable %q", e.Name)
		}
		e.Name = bd.uniqueName
		return nil
	case *ast.ConstExpr:
		return nil
	case *ast.UnaryExpr:
		return r.resolveExpr(e.Operand)
	case *ast.BinaryExpr:
		if err := r.resolveExpr(e.Left); err != nil {
			return err
		}
		return r.resolveExpr(e.Right)
	case *ast.AssignExpr:
		if _, ok := e.Target.(*ast.VarExpr); !ok {
			return errorf("invalid assignment target")
		}
		if err := r.resolveExpr(e.Target); err != nil {
			return err
		}
		return r.resolveExpr(e.Value)
	case *ast.ConditionalExpr:
		if err := r.resolveExpr(e.Cond); err != nil {
			return err
		}
		if err := r.resolveExpr(e.Then); err != nil {
			return err
		}
		return r.resolveExpr(e.Else)
	case *ast.CallExpr:
		bd, ok := r.use(e.Name)
		if !ok {
			return errorf("undeclared function %q", e.Name)
		}
		e.Name = bd.uniqueName
		for _, a := range e.Args {
			if err := r.resolveExpr(a); err != nil {
				return err
			}
		}
		return nil
	default:
		return errorf("unknown expression kind %T", e)
	}
}
