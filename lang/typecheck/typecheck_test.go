package typecheck_test

import (
	"testing"

	"github.com/mna/minicc/lang/ast"
	"github.com/mna/minicc/lang/labeler"
	"github.com/mna/minicc/lang/mint"
	"github.com/mna/minicc/lang/parser"
	"github.com/mna/minicc/lang/resolver"
	"github.com/mna/minicc/lang/typecheck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frontEnd(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	m := mint.New()
	require.NoError(t, resolver.Resolve(prog, m))
	require.NoError(t, labeler.Label(prog, m))
	return prog
}

func TestCheckFunctionArityMatch(t *testing.T) {
	prog := frontEnd(t, "int f(int a, int b); int main(void) { return f(1,2); }")
	_, err := typecheck.Check(prog)
	require.NoError(t, err)
}

func TestCheckRejectsArityMismatch(t *testing.T) {
	prog := frontEnd(t, "int f(int a); int main(void) { return f(1,2); }")
	_, err := typecheck.Check(prog)
	require.Error(t, err)
}

func TestCheckRejectsIncompatibleRedeclaration(t *testing.T) {
	prog := frontEnd(t, "int f(int a); int f(int a, int b) { return a+b; }")
	_, err := typecheck.Check(prog)
	require.Error(t, err)
}

func TestCheckRejectsDoubleDefinition(t *testing.T) {
	prog := frontEnd(t, "int f(void) { return 1; } int f(void) { return 2; }")
	_, err := typecheck.Check(prog)
	require.Error(t, err)
}

func TestCheckFileScopeTentativeThenInitialized(t *testing.T) {
	prog := frontEnd(t, "int g; int g = 5; int main(void) { return g; }")
	table, err := typecheck.Check(prog)
	require.NoError(t, err)
	sym, ok := table.Get("g")
	require.True(t, ok)
	sa := sym.Attrs.(*typecheck.StaticAttr)
	assert.Equal(t, typecheck.Initial, sa.Init.Kind)
	assert.EqualValues(t, 5, sa.Init.Value)
}

func TestCheckRejectsConflictingInitializers(t *testing.T) {
	prog := frontEnd(t, "int g = 1; int g = 2; int main(void) { return g; }")
	_, err := typecheck.Check(prog)
	require.Error(t, err)
}

func TestCheckRejectsNonConstantFileScopeInitializer(t *testing.T) {
	prog := frontEnd(t, "int y; static int x = y; int main(void) { return x; }")
	_, err := typecheck.Check(prog)
	require.Error(t, err)
}

func TestCheckRejectsExternLocalInitializer(t *testing.T) {
	prog := frontEnd(t, "int main(void) { extern int x; return x; }")
	_, err := typecheck.Check(prog)
	require.NoError(t, err)

	prog2, err := parser.Parse([]byte("int main(void) { extern int x = 1; return x; }"))
	require.NoError(t, err)
	m := mint.New()
	require.NoError(t, resolver.Resolve(prog2, m))
	require.NoError(t, labeler.Label(prog2, m))
	_, err = typecheck.Check(prog2)
	require.Error(t, err)
}

func TestCheckLocalStaticDefaultsToZero(t *testing.T) {
	prog := frontEnd(t, "int main(void) { static int x; return x; }")
	table, err := typecheck.Check(prog)
	require.NoError(t, err)
	fd := prog.Decls[0].(*ast.FuncDecl)
	vd := fd.Body.Items[0].(*ast.DeclItem).Decl.(*ast.VarDecl)
	sym, ok := table.Get(vd.Name)
	require.True(t, ok)
	sa := sym.Attrs.(*typecheck.StaticAttr)
	assert.Equal(t, typecheck.Initial, sa.Init.Kind)
	assert.EqualValues(t, 0, sa.Init.Value)
}

func TestCheckCallOnUndeclaredFunction(t *testing.T) {
	// the resolver already rejects this source, so the checker is run on the
	// parsed program directly.
	prog, err := parser.Parse([]byte("int main(void) { return f(); }"))
	require.NoError(t, err)
	_, err = typecheck.Check(prog)
	require.Error(t, err)
}
