// Package koopa models the typed, SSA-like Koopa intermediate
// representation: operands, instructions, basic blocks and functions,
// plus their textual emission.
//
// The shape of this package echoes the removed internal/bytecode package's flat
// instruction stream alongside a constant pool: here the "constants"
// are typed SSA operands instead of untracked interface{} values, and
// the tagged union is the instruction opcode instead of an expression
// kind.
package koopa

import (
	"fmt"

	"sysyc/internal/types"
)

// OperandKind discriminates what an Operand's associated value means.
type OperandKind int

const (
	// OpInt is a literal 32-bit immediate.
	OpInt OperandKind = iota
	// OpTemp is an SSA temporary, printed "%name_k".
	OpTemp
	// OpLocal is a named local pointer, printed "@ident_k".
	OpLocal
	// OpGlobal is a named global symbol, printed "@ident".
	OpGlobal
	// OpBlock is a basic-block label, printed "%label_k".
	OpBlock
)

// Operand is a cheap, copy-by-value pair of (associated value, type).
type Operand struct {
	Kind OperandKind
	Int  int32
	Name string
	Typ  types.Type
}

// Int32 builds a literal integer operand of type i32.
func Int32(v int32) Operand {
	return Operand{Kind: OpInt, Int: v, Typ: &types.I32{}}
}

// Temp builds a named SSA temporary operand with the given type.
func Temp(name string, t types.Type) Operand {
	return Operand{Kind: OpTemp, Name: name, Typ: t}
}

// Local builds a named local-pointer operand.
func Local(name string, t types.Type) Operand {
	return Operand{Kind: OpLocal, Name: name, Typ: t}
}

// Global builds a named global-symbol operand.
func Global(name string, t types.Type) Operand {
	return Operand{Kind: OpGlobal, Name: name, Typ: t}
}

// Block builds a basic-block label operand.
func Block(name string) Operand {
	return Operand{Kind: OpBlock, Name: name, Typ: &types.Label{}}
}

// IsImmediate reports whether the operand is a literal integer.
func (o Operand) IsImmediate() bool { return o.Kind == OpInt }

// IsAddress reports whether the operand denotes a memory address:
// alloc results, getelemptr/getptr results and globals are all
// pointer-typed and therefore addresses.
func (o Operand) IsAddress() bool {
	_, ok := o.Typ.(*types.Pointer)
	return ok
}

// String renders the operand exactly as Koopa text expects: either
// the literal integer or the name verbatim.
func (o Operand) String() string {
	switch o.Kind {
	case OpInt:
		return fmt.Sprintf("%d", o.Int)
	case OpTemp:
		return "%" + o.Name
	case OpLocal, OpGlobal:
		return "@" + o.Name
	case OpBlock:
		return "%" + o.Name
	default:
		return "<bad-operand>"
	}
}
