package rawprogram

import "sysyc/internal/types"

// ValueKind tags what role a Value plays: a literal, a reference to a
// function parameter, or the result of one specific instruction form.
type ValueKind int

const (
	KindInteger ValueKind = iota
	KindFuncArgRef
	KindGlobalAlloc
	KindAlloc
	KindLoad
	KindStore
	KindGetPtr
	KindBinary
	KindBranch
	KindJump
	KindCall
	KindReturn
)

// BinaryOp mirrors the IR's binary operator set.
type BinaryOp int

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
	BinAnd
	BinOr
	BinXor
)

var binaryOpByName = map[string]BinaryOp{
	"add": BinAdd, "sub": BinSub, "mul": BinMul, "div": BinDiv, "mod": BinMod,
	"eq": BinEq, "ne": BinNe, "lt": BinLt, "le": BinLe, "gt": BinGt, "ge": BinGe,
	"and": BinAnd, "or": BinOr, "xor": BinXor,
}

// Value is one instruction result, or a reference to one: the raw-
// program analog of a koopa_raw_value. Every Value a back end walks
// either defines something (Kind != KindInteger/KindFuncArgRef) or
// stands for a literal/parameter, and every operand slot below points
// at a Value that was already parsed earlier in program order — Koopa
// text never forward-references a value, only a block label.
type Value struct {
	// Name is the identifier after % or @ for anything that has one;
	// empty for unnamed values (currently none — every instruction
	// that produces a result is parsed with the %name the printer
	// always assigns it).
	Name string
	Typ  types.Type
	Kind ValueKind

	Int      int32 // KindInteger
	ArgIndex int   // KindFuncArgRef: position among the owning Func's Params

	PointedType types.Type // KindAlloc / KindGlobalAlloc
	GlobalInit  InitValue  // KindGlobalAlloc

	// A/B are the two operand slots binary, load, store and getptr
	// instructions share: load uses A as its source; store uses A as
	// the stored value and B as the destination address; getptr (both
	// getelemptr and plain getptr) uses A as the base and B as the
	// index; binary uses A/B as its two operands.
	A *Value
	B *Value

	IsElem bool // getelemptr vs a plain pointer getptr, valid when Kind == KindGetPtr

	Op BinaryOp // KindBinary

	Cond                  *Value // KindBranch
	TrueBlock, FalseBlock *Block // KindBranch
	JumpTarget            *Block // KindJump

	Callee *Func    // KindCall
	Args   []*Value // KindCall

	RetVal    *Value // KindReturn
	HasRetVal bool

	// UsedBy counts how many operand slots across the whole program
	// point at this Value. Computed once parsing finishes.
	UsedBy int
}

// InitValue mirrors the IR package's own reshaped-initializer tree;
// redefined here rather than imported so this package never needs to
// reach back into internal/koopa for anything but the text grammar it
// already documents.
type InitValue struct {
	Zero  bool
	Int   int32
	Elems []InitValue
}

// IsLeaf reports whether this node is a scalar (zero or integer)
// rather than an aggregate of children.
func (v InitValue) IsLeaf() bool { return v.Elems == nil }

// Block is a maximal instruction run ending in exactly one terminator
// (the last element of Insts is always a KindBranch, KindJump or
// KindReturn Value).
type Block struct {
	Name  string
	Func  *Func
	Insts []*Value
}

// Func is either an external declaration (IsDecl, no Blocks) or a
// full definition with an ordered block list, entry block first.
type Func struct {
	Name    string
	Params  []*Value // KindFuncArgRef values, parameter order
	RetType types.Type
	Blocks  []*Block
	IsDecl  bool
}

// IsVoid reports whether calling Func yields no value.
func (f *Func) IsVoid() bool {
	_, ok := f.RetType.(*types.Unit)
	return ok
}

// Program is the whole parsed translation unit: declarations and
// definitions in source order, plus the distinct list of global
// variables a back end must emit into its data section.
type Program struct {
	Funcs   []*Func
	Globals []*Value // KindGlobalAlloc values, source order
}
