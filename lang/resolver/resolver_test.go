package resolver_test

import (
	"testing"

	"github.com/mna/minicc/lang/ast"
	"github.com/mna/minicc/lang/mint"
	"github.com/mna/minicc/lang/parser"
	"github.com/mna/minicc/lang/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolve(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	require.NoError(t, resolver.Resolve(prog, mint.New()))
	return prog
}

func TestResolveRenamesLocals(t *testing.T) {
	prog := resolve(t, "int main(void) { int x = 1; int y = 2; return x+y; }")
	fd := prog.Decls[0].(*ast.FuncDecl)
	vd0 := fd.Body.Items[0].(*ast.DeclItem).Decl.(*ast.VarDecl)
	vd1 := fd.Body.Items[1].(*ast.DeclItem).Decl.(*ast.VarDecl)
	assert.NotEqual(t, "x", vd0.Name)
	assert.NotEqual(t, "y", vd1.Name)
	assert.NotEqual(t, vd0.Name, vd1.Name)

	ret := fd.Body.Items[2].(*ast.StmtItem).Stmt.(*ast.ReturnStmt)
	bin := ret.Expr.(*ast.BinaryExpr)
	assert.Equal(t, vd0.Name, bin.Left.(*ast.VarExpr).Name)
	assert.Equal(t, vd1.Name, bin.Right.(*ast.VarExpr).Name)
}

func TestResolveRejectsDuplicateInSameBlock(t *testing.T) {
	prog, err := parser.Parse([]byte("int main(void) { int x = 1; int x = 2; return x; }"))
	require.NoError(t, err)
	err = resolver.Resolve(prog, mint.New())
	require.Error(t, err)
}

func TestResolveAllowsShadowingInNestedBlock(t *testing.T) {
	prog := resolve(t, "int main(void) { int x = 1; { int x = 2; } return x; }")
	fd := prog.Decls[0].(*ast.FuncDecl)
	outer := fd.Body.Items[0].(*ast.DeclItem).Decl.(*ast.VarDecl)
	inner := fd.Body.Items[1].(*ast.StmtItem).Stmt.(*ast.CompoundStmt)
	innerDecl := inner.Block.Items[0].(*ast.DeclItem).Decl.(*ast.VarDecl)
	assert.NotEqual(t, outer.Name, innerDecl.Name)

	ret := fd.Body.Items[2].(*ast.StmtItem).Stmt.(*ast.ReturnStmt)
	assert.Equal(t, outer.Name, ret.Expr.(*ast.VarExpr).Name)
}

func TestResolveRejectsUndeclaredVariable(t *testing.T) {
	prog, err := parser.Parse([]byte("int main(void) { return x; }"))
	require.NoError(t, err)
	err = resolver.Resolve(prog, mint.New())
	require.Error(t, err)
}

func TestResolveRejectsInvalidAssignmentTarget(t *testing.T) {
	prog, err := parser.Parse([]byte("int main(void) { int x = 1; 1 = x; return 0; }"))
	require.NoError(t, err)
	err = resolver.Resolve(prog, mint.New())
	require.Error(t, err)
}

func TestResolveExternLocalsKeepSourceName(t *testing.T) {
	prog := resolve(t, "extern int g; int main(void) { extern int g; return g; }")
	fd := prog.Decls[1].(*ast.FuncDecl)
	vd := fd.Body.Items[0].(*ast.DeclItem).Decl.(*ast.VarDecl)
	assert.Equal(t, "g", vd.Name)
	ret := fd.Body.Items[1].(*ast.StmtItem).Stmt.(*ast.ReturnStmt)
	assert.Equal(t, "g", ret.Expr.(*ast.VarExpr).Name)
}

func TestResolveRejectsBlockScopeFunctionDefinition(t *testing.T) {
	prog, err := parser.Parse([]byte("int main(void) { int f(void) { return 0; } return f(); }"))
	require.NoError(t, err)
	err = resolver.Resolve(prog, mint.New())
	require.Error(t, err)
}

func TestResolveForLoopOwnsInitScope(t *testing.T) {
	prog := resolve(t, "int main(void) { int sum = 0; for (int i = 0; i < 5; i = i + 1) sum = sum + i; return sum; }")
	fd := prog.Decls[0].(*ast.FuncDecl)
	forStmt := fd.Body.Items[1].(*ast.StmtItem).Stmt.(*ast.ForStmt)
	init := forStmt.Init.(*ast.ForInitDecl)
	assert.NotEqual(t, "i", init.Decl.Name)
}
