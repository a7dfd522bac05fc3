package koopa

import (
	"strconv"
	"strings"

	"sysyc/internal/types"
)

// InitValue is the canonical, already-reshaped form an array
// initializer takes once it reaches global or local emission: either
// a zero-fill, a leaf integer, or an ordered list of child
// InitValues. The reshaper (internal/reshape) is what produces trees
// in this shape from a raw SysY initializer plus a declared type.
type InitValue struct {
	Zero  bool
	Int   int32
	Elems []InitValue
}

// ZeroInit returns the "zeroinit" sentinel value.
func ZeroInit() InitValue { return InitValue{Zero: true} }

// IntInit wraps a leaf integer.
func IntInit(v int32) InitValue { return InitValue{Int: v} }

// AggInit wraps an ordered list of children.
func AggInit(elems []InitValue) InitValue { return InitValue{Elems: elems} }

// IsLeaf reports whether this node is a scalar integer (as opposed to
// an aggregate of children).
func (v InitValue) IsLeaf() bool { return v.Elems == nil }

// String renders the initializer the way `global @name = alloc T, <init>`
// expects: a literal, zeroinit, or a brace-nested aggregate.
func (v InitValue) String() string {
	if v.Zero {
		return "zeroinit"
	}
	if v.IsLeaf() {
		return strconv.FormatInt(int64(v.Int), 10)
	}
	parts := make([]string, len(v.Elems))
	for i, e := range v.Elems {
		parts[i] = e.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// GlobalDecl is a top-level `global @name = alloc T, <init>`.
type GlobalDecl struct {
	Name string
	Typ  types.Type
	Init InitValue
}
