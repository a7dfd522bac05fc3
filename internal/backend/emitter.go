package backend

import (
	"fmt"
	"strings"

	"sysyc/internal/rawprogram"
	"sysyc/internal/types"
)

var argRegs = [8]string{"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7"}

// Emit lowers a whole parsed program to RV32 assembly text: the data
// section for every global, then the text section for every defined
// function (external declarations contribute no code of their own).
func Emit(prog *rawprogram.Program) string {
	var sb strings.Builder
	emitGlobals(&sb, prog.Globals)
	sb.WriteString("  .text\n")
	for _, fn := range prog.Funcs {
		if fn.IsDecl {
			continue
		}
		emitFunc(&sb, fn)
	}
	return sb.String()
}

type emitter struct {
	sb     *strings.Builder
	fn     *rawprogram.Func
	layout *funcLayout
}

func emitFunc(sb *strings.Builder, fn *rawprogram.Func) {
	l := analyze(fn)
	fmt.Fprintf(sb, "  .globl %s\n", fn.Name)
	fmt.Fprintf(sb, "%s:\n", fn.Name)

	e := &emitter{sb: sb, fn: fn, layout: l}
	e.prologue()
	for _, b := range fn.Blocks {
		fmt.Fprintf(sb, "%s:\n", blockLabel(fn, b))
		for _, inst := range b.Insts {
			e.instruction(inst)
		}
	}
	sb.WriteString("\n")
}

func blockLabel(fn *rawprogram.Func, b *rawprogram.Block) string {
	return fn.Name + "_" + b.Name
}

func (e *emitter) prologue() {
	if e.layout.frameSize > 0 {
		emitAdjustSP(e.sb, -e.layout.frameSize)
	}
	if !e.layout.isLeaf {
		emitStoreWord(e.sb, "ra", "sp", e.layout.raOffset)
	}
}

func (e *emitter) epilogue() {
	if !e.layout.isLeaf {
		emitLoadWord(e.sb, "ra", "sp", e.layout.raOffset)
	}
	if e.layout.frameSize > 0 {
		emitAdjustSP(e.sb, e.layout.frameSize)
	}
}

// materializeValue loads v's runtime value into dstReg: an immediate,
// an incoming parameter (register or caller's stack overflow area), a
// global's address, or a previously computed result read back from
// its stack slot.
func (e *emitter) materializeValue(v *rawprogram.Value, dstReg string) {
	switch v.Kind {
	case rawprogram.KindInteger:
		line(e.sb, "li %s, %d", dstReg, v.Int)
	case rawprogram.KindFuncArgRef:
		if v.ArgIndex < 8 {
			line(e.sb, "mv %s, %s", dstReg, argRegs[v.ArgIndex])
		} else {
			off := e.layout.frameSize + 4*(v.ArgIndex-8)
			emitLoadWord(e.sb, dstReg, "sp", off)
		}
	case rawprogram.KindGlobalAlloc:
		line(e.sb, "la %s, %s", dstReg, v.Name)
	default:
		off, ok := e.layout.valueSlot[v]
		if !ok {
			line(e.sb, "li %s, 0", dstReg)
			return
		}
		emitLoadWord(e.sb, dstReg, "sp", off)
	}
}

func (e *emitter) storeResult(v *rawprogram.Value, srcReg string) {
	off, ok := e.layout.valueSlot[v]
	if !ok {
		return
	}
	emitStoreWord(e.sb, srcReg, "sp", off)
}

func (e *emitter) instruction(v *rawprogram.Value) {
	switch v.Kind {
	case rawprogram.KindAlloc:
		e.alloc(v)
	case rawprogram.KindLoad:
		e.load(v)
	case rawprogram.KindStore:
		e.store(v)
	case rawprogram.KindGetPtr:
		e.getPtr(v)
	case rawprogram.KindBinary:
		e.binary(v)
	case rawprogram.KindBranch:
		e.branch(v)
	case rawprogram.KindJump:
		line(e.sb, "j %s", blockLabel(e.fn, v.JumpTarget))
	case rawprogram.KindCall:
		e.call(v)
	case rawprogram.KindReturn:
		e.ret(v)
	}
}

func (e *emitter) alloc(v *rawprogram.Value) {
	emitAddSPOffset(e.sb, "t0", e.layout.allocData[v])
	e.storeResult(v, "t0")
}

func (e *emitter) load(v *rawprogram.Value) {
	e.materializeValue(v.A, "t0")
	line(e.sb, "lw t1, 0(t0)")
	e.storeResult(v, "t1")
}

func (e *emitter) store(v *rawprogram.Value) {
	e.materializeValue(v.A, "t0")
	e.materializeValue(v.B, "t1")
	line(e.sb, "sw t0, 0(t1)")
}

// getPtr lowers both getelemptr and plain getptr the same way: the
// two forms differ only in what v.Typ's pointee tells us to scale the
// index by (an array's element type for getelemptr, the same type
// the base pointer already addresses for getptr).
func (e *emitter) getPtr(v *rawprogram.Value) {
	e.materializeValue(v.A, "t0")
	e.materializeValue(v.B, "t1")
	elemSize := sizeOf(v.Typ.(*types.Pointer).Base)
	line(e.sb, "li t2, %d", elemSize)
	line(e.sb, "mul t1, t1, t2")
	line(e.sb, "add t0, t0, t1")
	e.storeResult(v, "t0")
}

func (e *emitter) binary(v *rawprogram.Value) {
	e.materializeValue(v.A, "t0")
	e.materializeValue(v.B, "t1")
	switch v.Op {
	case rawprogram.BinAdd:
		line(e.sb, "add t0, t0, t1")
	case rawprogram.BinSub:
		line(e.sb, "sub t0, t0, t1")
	case rawprogram.BinMul:
		line(e.sb, "mul t0, t0, t1")
	case rawprogram.BinDiv:
		line(e.sb, "div t0, t0, t1")
	case rawprogram.BinMod:
		line(e.sb, "rem t0, t0, t1")
	case rawprogram.BinEq:
		line(e.sb, "xor t0, t0, t1")
		line(e.sb, "seqz t0, t0")
	case rawprogram.BinNe:
		line(e.sb, "xor t0, t0, t1")
		line(e.sb, "snez t0, t0")
	case rawprogram.BinLt:
		line(e.sb, "slt t0, t0, t1")
	case rawprogram.BinGt:
		line(e.sb, "slt t0, t1, t0")
	case rawprogram.BinLe:
		line(e.sb, "slt t0, t1, t0")
		line(e.sb, "xori t0, t0, 1")
	case rawprogram.BinGe:
		line(e.sb, "slt t0, t0, t1")
		line(e.sb, "xori t0, t0, 1")
	case rawprogram.BinAnd:
		line(e.sb, "and t0, t0, t1")
	case rawprogram.BinOr:
		line(e.sb, "or t0, t0, t1")
	case rawprogram.BinXor:
		line(e.sb, "xor t0, t0, t1")
	}
	e.storeResult(v, "t0")
}

func (e *emitter) branch(v *rawprogram.Value) {
	e.materializeValue(v.Cond, "t0")
	line(e.sb, "bnez t0, %s", blockLabel(e.fn, v.TrueBlock))
	line(e.sb, "j %s", blockLabel(e.fn, v.FalseBlock))
}

func (e *emitter) call(v *rawprogram.Value) {
	for i, arg := range v.Args {
		if i >= 8 {
			break
		}
		e.materializeValue(arg, argRegs[i])
	}
	for i := 8; i < len(v.Args); i++ {
		e.materializeValue(v.Args[i], "t0")
		emitStoreWord(e.sb, "t0", "sp", 4*(i-8))
	}
	line(e.sb, "call %s", v.Callee.Name)
	if !v.Callee.IsVoid() {
		e.storeResult(v, "a0")
	}
}

func (e *emitter) ret(v *rawprogram.Value) {
	if v.HasRetVal {
		e.materializeValue(v.RetVal, "a0")
	}
	e.epilogue()
	line(e.sb, "ret")
}
