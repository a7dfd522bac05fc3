package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sysyc/internal/ast"
	"sysyc/internal/lexer"
	"sysyc/internal/parser"
)

func parse(t *testing.T, src string) *ast.CompUnit {
	t.Helper()
	toks, err := lexer.NewScanner(src).ScanTokens()
	require.NoError(t, err)
	cu, err := parser.NewParser(toks).ParseCompUnit()
	require.NoError(t, err)
	return cu
}

func TestParseGlobalConstAndFunc(t *testing.T) {
	cu := parse(t, `
const int N = 10;
int arr[N];
int main() {
  int x = 1 + 2 * 3;
  return x;
}
`)
	require.Len(t, cu.Items, 3)

	decl, ok := cu.Items[0].(*ast.Decl)
	require.True(t, ok)
	assert.True(t, decl.Const)
	assert.Equal(t, "N", decl.Defs[0].Ident)

	arrDecl, ok := cu.Items[1].(*ast.Decl)
	require.True(t, ok)
	assert.False(t, arrDecl.Const)
	require.Len(t, arrDecl.Defs[0].Dims, 1)

	fn, ok := cu.Items[2].(*ast.FuncDef)
	require.True(t, ok)
	assert.Equal(t, "int", fn.RetType)
	assert.Equal(t, "main", fn.Ident)
	require.Len(t, fn.Body.Items, 2)
}

func TestParseIfWhileBreakContinue(t *testing.T) {
	cu := parse(t, `
int f(int n) {
  while (n < 10) {
    if (n == 5) break; else continue;
  }
  return n;
}
`)
	fn := cu.Items[0].(*ast.FuncDef)
	ws, ok := fn.Body.Items[0].(*ast.WhileStmt)
	require.True(t, ok)
	blk, ok := ws.Body.(*ast.BlockStmt)
	require.True(t, ok)
	ifs, ok := blk.Body.Items[0].(*ast.IfStmt)
	require.True(t, ok)
	_, isBreak := ifs.Then.(*ast.BreakStmt)
	assert.True(t, isBreak)
	_, isContinue := ifs.Else.(*ast.ContinueStmt)
	assert.True(t, isContinue)
}

func TestParseArrayAssignAndCall(t *testing.T) {
	cu := parse(t, `
int main() {
  int a[2][3];
  a[0][1] = getint();
  putint(a[0][1]);
  return 0;
}
`)
	fn := cu.Items[0].(*ast.FuncDef)
	decl := fn.Body.Items[0].(*ast.Decl)
	require.Len(t, decl.Defs[0].Dims, 2)

	assign := fn.Body.Items[1].(*ast.AssignStmt)
	assert.Equal(t, "a", assign.Target.Ident)
	require.Len(t, assign.Target.Indices, 2)
	_, isCall := assign.Value.(*ast.CallExp)
	assert.True(t, isCall)

	exprStmt := fn.Body.Items[2].(*ast.ExpStmt)
	call, ok := exprStmt.Exp.(*ast.CallExp)
	require.True(t, ok)
	assert.Equal(t, "putint", call.Ident)
}

func TestParseLogicalShortCircuitPrecedence(t *testing.T) {
	cu := parse(t, `
int main() {
  int x = 1 || 2 && 3;
  return 0;
}
`)
	fn := cu.Items[0].(*ast.FuncDef)
	decl := fn.Body.Items[0].(*ast.Decl)
	bin := decl.Defs[0].Init.Exp.(*ast.BinaryExp)
	assert.Equal(t, "||", bin.Op)
	rhs, ok := bin.Rhs.(*ast.BinaryExp)
	require.True(t, ok)
	assert.Equal(t, "&&", rhs.Op)
}

func TestParseNestedInitVal(t *testing.T) {
	cu := parse(t, `int a[2][2] = {{1, 2}, {3}};`)
	decl := cu.Items[0].(*ast.Decl)
	init := decl.Defs[0].Init
	require.Len(t, init.List, 2)
	require.Len(t, init.List[0].List, 2)
	require.Len(t, init.List[1].List, 1)
}
