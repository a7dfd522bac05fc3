package koopa

import (
	"fmt"
	"strings"

	"sysyc/internal/types"
)

// OpCode tags the instruction variant. Each variant carries only the
// operands it needs; variants that never produce a result leave Dst
// nil instead of threading an optional sentinel through every case.
type OpCode int

const (
	OpAlloc OpCode = iota
	OpLoad
	OpStore
	OpGetElemPtr
	OpGetPtr
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpXor
	OpBr
	OpJump
	OpRet
	OpCall
)

var binaryMnemonic = map[OpCode]string{
	OpAdd: "add", OpSub: "sub", OpMul: "mul", OpDiv: "div", OpMod: "mod",
	OpEq: "eq", OpNe: "ne", OpLt: "lt", OpLe: "le", OpGt: "gt", OpGe: "ge",
	OpAnd: "and", OpOr: "or", OpXor: "xor",
}

// IsBinary reports whether op is one of the arithmetic/comparison/
// bitwise binary opcodes, which always produce an SSA result.
func IsBinary(op OpCode) bool {
	_, ok := binaryMnemonic[op]
	return ok
}

// IsTerminator reports whether op closes a basic block.
func IsTerminator(op OpCode) bool {
	return op == OpBr || op == OpJump || op == OpRet
}

// Instruction is the tagged union over the Koopa opcode set.
type Instruction struct {
	Op OpCode

	// Dst is the SSA result this instruction defines, or nil for
	// instructions that produce no value (store, br, jump, ret, and
	// call against a void callee).
	Dst *Operand

	// Lhs/Rhs hold the two source operands for binary ops, and double
	// up for the other two-operand shapes: (value, address) for
	// store, (base, index) for getelemptr/getptr.
	Lhs Operand
	Rhs Operand
	// HasRhs distinguishes load (one operand) and alloc (zero) from
	// the two-operand shapes above.
	HasRhs bool

	// PointedType is the type alloc reserves storage for.
	PointedType types.Type

	// Cond is the branch condition for OpBr.
	Cond Operand
	// TrueLabel/FalseLabel are OpBr's successor block names (without
	// the leading '%').
	TrueLabel  string
	FalseLabel string

	// Target is OpJump's successor block name.
	Target string

	// RetVal is OpRet's optional return operand.
	RetVal    Operand
	HasRetVal bool

	// Callee/Args describe an OpCall.
	Callee string
	Args   []Operand
}

// Alloc builds an `alloc` instruction whose result is bound to dst.
func Alloc(dst Operand, pointed types.Type) Instruction {
	return Instruction{Op: OpAlloc, Dst: &dst, PointedType: pointed}
}

// Load builds a `load` instruction reading from src.
func Load(dst Operand, src Operand) Instruction {
	return Instruction{Op: OpLoad, Dst: &dst, Lhs: src}
}

// Store builds a `store` instruction writing value into addr.
func Store(value, addr Operand) Instruction {
	return Instruction{Op: OpStore, Lhs: value, Rhs: addr, HasRhs: true}
}

// GetElemPtr builds a `getelemptr` instruction: dst = base[index],
// descending one dimension of an array type.
func GetElemPtr(dst Operand, base, index Operand) Instruction {
	return Instruction{Op: OpGetElemPtr, Dst: &dst, Lhs: base, Rhs: index, HasRhs: true}
}

// GetPtr builds a `getptr` instruction: dst = base[index] through a
// pointer rather than an array.
func GetPtr(dst Operand, base, index Operand) Instruction {
	return Instruction{Op: OpGetPtr, Dst: &dst, Lhs: base, Rhs: index, HasRhs: true}
}

// Binary builds a binary arithmetic/comparison/bitwise instruction.
func Binary(op OpCode, dst Operand, lhs, rhs Operand) Instruction {
	if !IsBinary(op) {
		panic(fmt.Sprintf("koopa: %v is not a binary opcode", op))
	}
	return Instruction{Op: op, Dst: &dst, Lhs: lhs, Rhs: rhs, HasRhs: true}
}

// Br builds a conditional branch.
func Br(cond Operand, trueLabel, falseLabel string) Instruction {
	return Instruction{Op: OpBr, Cond: cond, TrueLabel: trueLabel, FalseLabel: falseLabel}
}

// Jump builds an unconditional jump.
func Jump(target string) Instruction {
	return Instruction{Op: OpJump, Target: target}
}

// Ret builds a return; pass HasValue=false for a void return.
func Ret(value Operand, hasValue bool) Instruction {
	return Instruction{Op: OpRet, RetVal: value, HasRetVal: hasValue}
}

// Call builds a call instruction. dst is nil when the callee is void.
func Call(dst *Operand, callee string, args []Operand) Instruction {
	return Instruction{Op: OpCall, Dst: dst, Callee: callee, Args: args}
}

// String renders one instruction using Koopa's textual grammar. The
// caller is responsible for the two-space indent each line needs.
func (in Instruction) String() string {
	switch in.Op {
	case OpAlloc:
		return fmt.Sprintf("%s = alloc %s", in.Dst.String(), in.PointedType.String())
	case OpLoad:
		return fmt.Sprintf("%s = load %s", in.Dst.String(), in.Lhs.String())
	case OpStore:
		return fmt.Sprintf("store %s, %s", in.Lhs.String(), in.Rhs.String())
	case OpGetElemPtr:
		return fmt.Sprintf("%s = getelemptr %s, %s", in.Dst.String(), in.Lhs.String(), in.Rhs.String())
	case OpGetPtr:
		return fmt.Sprintf("%s = getptr %s, %s", in.Dst.String(), in.Lhs.String(), in.Rhs.String())
	case OpBr:
		return fmt.Sprintf("br %s, %%%s, %%%s", in.Cond.String(), in.TrueLabel, in.FalseLabel)
	case OpJump:
		return fmt.Sprintf("jump %%%s", in.Target)
	case OpRet:
		if in.HasRetVal {
			return fmt.Sprintf("ret %s", in.RetVal.String())
		}
		return "ret"
	case OpCall:
		args := make([]string, len(in.Args))
		for i, a := range in.Args {
			args[i] = a.String()
		}
		call := fmt.Sprintf("call @%s(%s)", in.Callee, strings.Join(args, ", "))
		if in.Dst != nil {
			return fmt.Sprintf("%s = %s", in.Dst.String(), call)
		}
		return call
	default:
		if mnemonic, ok := binaryMnemonic[in.Op]; ok {
			return fmt.Sprintf("%s = %s %s, %s", in.Dst.String(), mnemonic, in.Lhs.String(), in.Rhs.String())
		}
		return "<bad-instruction>"
	}
}
