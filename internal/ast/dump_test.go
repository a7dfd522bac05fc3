package ast_test

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

func TestDumpShowsFunctionAndControlFlowShape(t *testing.T) {
	cu := parse(t, `
int main() {
  int x = 1;
  if (x < 2) {
    return x;
  } else {
    return 0;
  }
}
`)
	out := ast.Dump(cu)
	assert.Contains(t, out, "FuncDef int main()")
	assert.Contains(t, out, "If (x < 2)")
	assert.Contains(t, out, "Else")
	assert.Contains(t, out, "Return x")
	assert.Contains(t, out, "Return 0")
}

func TestDumpRendersArrayDeclAndCall(t *testing.T) {
	cu := parse(t, `
int main() {
  int a[2] = {1, 2};
  putint(a[0]);
  return 0;
}
`)
	out := ast.Dump(cu)
	assert.Contains(t, out, "Def a[2]")
	assert.Contains(t, out, "ExpStmt putint(a[0])")
}
