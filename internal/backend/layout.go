// Package backend lowers a parsed raw program (internal/rawprogram)
// to RV32 assembly text. It gives every SSA result that needs one a
// fixed stack slot and never holds a value in a register across
// instructions — operands are always reloaded into t0/t1 and results
// always spilled back out, the same "no register allocator" shape the
// reference toolchain's own code generator documents as its starting
// point before any optimization pass runs.
package backend

import (
	"sysyc/internal/rawprogram"
	"sysyc/internal/types"
)

func sizeOf(t types.Type) int {
	switch v := t.(type) {
	case *types.I32:
		return 4
	case *types.Pointer:
		return 4
	case *types.Array:
		return v.Len * sizeOf(v.Elem)
	case *types.Unit:
		return 0
	default:
		return 4
	}
}

func roundUp16(n int) int {
	if n%16 == 0 {
		return n
	}
	return n + (16 - n%16)
}

// funcLayout is the stack-frame plan a function is lowered against: a
// 4-byte cell per SSA result that needs one, a backing data region
// per alloc (sized to the whole array for an array local, not just a
// pointer), an outgoing-argument area sized to the widest call this
// function makes, and a return-address slot elided entirely for a
// leaf function.
//
// Frame layout, lowest address (sp) to highest:
//
//	[outgoing call args][value slots and alloc payloads][ra, if any]
type funcLayout struct {
	valueSlot map[*rawprogram.Value]int
	allocData map[*rawprogram.Value]int
	frameSize int
	isLeaf    bool
	raOffset  int
}

func analyze(fn *rawprogram.Func) *funcLayout {
	l := &funcLayout{valueSlot: map[*rawprogram.Value]int{}, allocData: map[*rawprogram.Value]int{}}

	cursor := 0
	claim := func(n int) int {
		off := cursor
		cursor += n
		return off
	}

	hasCall := false
	maxArgs := 0
	for _, b := range fn.Blocks {
		for _, v := range b.Insts {
			switch v.Kind {
			case rawprogram.KindAlloc:
				l.allocData[v] = claim(sizeOf(v.PointedType))
				l.valueSlot[v] = claim(4)
			case rawprogram.KindLoad, rawprogram.KindGetPtr, rawprogram.KindBinary:
				l.valueSlot[v] = claim(4)
			case rawprogram.KindCall:
				hasCall = true
				if !v.Callee.IsVoid() {
					l.valueSlot[v] = claim(4)
				}
				if len(v.Args) > maxArgs {
					maxArgs = len(v.Args)
				}
			}
		}
	}
	l.isLeaf = !hasCall

	overflow := 0
	if maxArgs > 8 {
		overflow = 4 * (maxArgs - 8)
	}
	for v, off := range l.valueSlot {
		l.valueSlot[v] = off + overflow
	}
	for v, off := range l.allocData {
		l.allocData[v] = off + overflow
	}

	frameRaw := overflow + cursor
	if !l.isLeaf {
		l.raOffset = frameRaw
		frameRaw += 4
	}
	l.frameSize = roundUp16(frameRaw)
	return l
}
