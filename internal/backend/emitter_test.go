package backend_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sysyc/internal/backend"
	"sysyc/internal/frontend"
	"sysyc/internal/koopa"
	"sysyc/internal/lexer"
	"sysyc/internal/parser"
	"sysyc/internal/rawprogram"
)

func emitAsm(t *testing.T, src string) string {
	t.Helper()
	toks, err := lexer.NewScanner(src).ScanTokens()
	require.NoError(t, err)
	cu, err := parser.NewParser(toks).ParseCompUnit()
	require.NoError(t, err)
	prog, err := frontend.Compile(cu)
	require.NoError(t, err)
	raw, err := rawprogram.Parse(koopa.Print(prog))
	require.NoError(t, err)
	return backend.Emit(raw)
}

func TestEmitProducesCallableMainLabel(t *testing.T) {
	asm := emitAsm(t, `int main() { return 0; }`)
	assert.Contains(t, asm, ".globl main")
	assert.Contains(t, asm, "main:")
	assert.Contains(t, asm, "ret")
}

func TestEmitLeafFunctionNeverSavesRa(t *testing.T) {
	asm := emitAsm(t, `int id(int x) { return x; }
int main() { return id(1); }`)
	idx := strings.Index(asm, "id:")
	require.NotEqual(t, -1, idx)
	next := strings.Index(asm[idx:], ".globl")
	body := asm[idx:]
	if next != -1 {
		body = asm[idx : idx+next]
	}
	assert.NotContains(t, body, "ra,")
}

func TestEmitCallSequenceSavesRa(t *testing.T) {
	asm := emitAsm(t, `int side(int x) { return x + 1; }
int main() { return side(side(1)); }`)
	assert.Contains(t, asm, "call side")
	assert.Contains(t, asm, "ra,")
}

func TestEmitGlobalArrayDataSection(t *testing.T) {
	asm := emitAsm(t, `int g[3] = {1, 2, 3};
int main() { return g[0]; }`)
	assert.Contains(t, asm, ".data")
	assert.Contains(t, asm, "g:")
	assert.Contains(t, asm, ".word 1")
	assert.Contains(t, asm, ".word 2")
	assert.Contains(t, asm, ".word 3")
}

func TestEmitDeclarationsContributeNoCode(t *testing.T) {
	asm := emitAsm(t, `int main() { putint(1); return 0; }`)
	assert.NotContains(t, asm, "putint:")
	assert.Contains(t, asm, "call putint")
}
