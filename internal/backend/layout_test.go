package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sysyc/internal/rawprogram"
	"sysyc/internal/types"
)

func TestAnalyzeLeafFunctionElidesRaSlot(t *testing.T) {
	retVal := &rawprogram.Value{Kind: rawprogram.KindInteger, Int: 0}
	ret := &rawprogram.Value{Kind: rawprogram.KindReturn, RetVal: retVal, HasRetVal: true}
	block := &rawprogram.Block{Name: "entry", Insts: []*rawprogram.Value{ret}}
	fn := &rawprogram.Func{Name: "leaf", RetType: &types.I32{}, Blocks: []*rawprogram.Block{block}}

	l := analyze(fn)
	assert.True(t, l.isLeaf)
	assert.Equal(t, 0, l.raOffset)
}

func TestAnalyzeNonLeafFunctionReservesRaSlotAboveValueArea(t *testing.T) {
	callee := &rawprogram.Func{Name: "callee", RetType: &types.I32{}, IsDecl: true}
	call := &rawprogram.Value{Kind: rawprogram.KindCall, Callee: callee, Typ: &types.I32{}}
	ret := &rawprogram.Value{Kind: rawprogram.KindReturn, RetVal: call, HasRetVal: true}
	block := &rawprogram.Block{Name: "entry", Insts: []*rawprogram.Value{call, ret}}
	fn := &rawprogram.Func{Name: "caller", RetType: &types.I32{}, Blocks: []*rawprogram.Block{block}}

	l := analyze(fn)
	assert.False(t, l.isLeaf)
	assert.Greater(t, l.frameSize, l.raOffset)
	assert.Equal(t, 0, l.frameSize%16)
}

func TestAnalyzeWideCallReservesOutgoingArgArea(t *testing.T) {
	callee := &rawprogram.Func{Name: "wide", RetType: &types.Unit{}, IsDecl: true}
	args := make([]*rawprogram.Value, 10)
	for i := range args {
		args[i] = &rawprogram.Value{Kind: rawprogram.KindInteger, Int: int32(i)}
	}
	call := &rawprogram.Value{Kind: rawprogram.KindCall, Callee: callee, Args: args, Typ: &types.Unit{}}
	ret := &rawprogram.Value{Kind: rawprogram.KindReturn}
	block := &rawprogram.Block{Name: "entry", Insts: []*rawprogram.Value{call, ret}}
	fn := &rawprogram.Func{Name: "caller", RetType: &types.Unit{}, Blocks: []*rawprogram.Block{block}}

	l := analyze(fn)
	// Two args (8 and 9) overflow the register file, so the frame must
	// carry at least 8 bytes of outgoing-argument space below every
	// other offset analyze hands out.
	assert.GreaterOrEqual(t, l.raOffset, 8)
}

func TestFrameSizeIsAlways16ByteAligned(t *testing.T) {
	for n := 0; n < 40; n++ {
		got := roundUp16(n)
		assert.Equal(t, 0, got%16, "roundUp16(%d) = %d not 16-aligned", n, got)
		assert.GreaterOrEqual(t, got, n)
	}
}

func TestInRange12Boundaries(t *testing.T) {
	assert.True(t, inRange12(2047))
	assert.True(t, inRange12(-2048))
	assert.False(t, inRange12(2048))
	assert.False(t, inRange12(-2049))
}
