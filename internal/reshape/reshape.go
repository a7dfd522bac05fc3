// Package reshape canonicalizes a raw SysY aggregate initializer
// against a declared array shape, producing the strictly nested,
// zero-padded tree that both the global initializer printer and the
// per-element local store emitter consume.
//
// The shape of the algorithm — a stack of per-level buffers that
// cascade a completed group up into its parent level — echoes the
// two-pass collect-then-cascade walk the HoistingCompiler of the
// removed internal/compiler package ran over nested statement lists; here the
// "collection" is array elements instead of function declarations.
package reshape

import (
	cerr "sysyc/internal/errors"
	"sysyc/internal/koopa"
)

// Node is the raw (unreshaped) initializer tree the front end builds
// while walking a SysY InitVal: a leaf integer, or an ordered list of
// children (possibly itself containing further nested lists).
type Node struct {
	IsLeaf   bool
	Value    int32
	Children []Node
}

// Leaf wraps a constant-folded integer.
func Leaf(v int32) Node { return Node{IsLeaf: true, Value: v} }

// Agg wraps an explicit `{ ... }` child list.
func Agg(children []Node) Node { return Node{Children: children} }

// Reshape canonicalizes init against shape (outermost dimension
// first). The result always has depth len(shape) and exactly
// product(shape) leaves; positions the input left unspecified are
// zero.
func Reshape(shape []int, init Node) (koopa.InitValue, error) {
	n := len(shape)
	if n == 0 {
		if init.IsLeaf {
			return koopa.IntInit(init.Value), nil
		}
		return koopa.IntInit(0), nil
	}

	reversed := make([]int, n)
	for i, d := range shape {
		reversed[n-1-i] = d
	}

	buf := make([][]koopa.InitValue, n+1)

	cascade := func(from int) {
		level := from
		for level < n && len(buf[level]) == reversed[level] {
			boxed := koopa.AggInit(buf[level])
			buf[level] = nil
			buf[level+1] = append(buf[level+1], boxed)
			level++
		}
	}

	depthShape := func(level int) []int { return shape[n-level:] }

	var pushNode func(node Node) error
	pushNode = func(node Node) error {
		if node.IsLeaf {
			if len(buf[0]) >= reversed[0] {
				return cerr.NewShapeMismatch("too many elements for array dimension of size %d", reversed[0])
			}
			buf[0] = append(buf[0], koopa.IntInit(node.Value))
			cascade(0)
			return nil
		}

		lowest := -1
		for i := 0; i < n; i++ {
			if len(buf[i]) > 0 {
				lowest = i
				break
			}
		}
		var target []int
		if lowest <= 0 {
			target = shape[1:]
		} else {
			target = shape[n-lowest:]
		}
		sub, err := Reshape(target, node)
		if err != nil {
			return err
		}
		level := len(target)
		if level >= len(buf) || len(buf[level]) >= reversed[level] {
			return cerr.NewShapeMismatch("too many elements for array dimension of size %d", reversed[level])
		}
		buf[level] = append(buf[level], sub)
		cascade(level)
		return nil
	}

	for i, child := range init.Children {
		if len(buf[n]) > 0 {
			return koopa.InitValue{}, cerr.NewShapeMismatch("initializer has more elements than the declared shape (element %d is out of bounds)", i)
		}
		if err := pushNode(child); err != nil {
			return koopa.InitValue{}, err
		}
	}

	var zeroShape func(dims []int) koopa.InitValue
	zeroShape = func(dims []int) koopa.InitValue {
		if len(dims) == 0 {
			return koopa.IntInit(0)
		}
		elems := make([]koopa.InitValue, dims[0])
		rest := zeroShape(dims[1:])
		for i := range elems {
			elems[i] = rest
		}
		return koopa.AggInit(elems)
	}

	for len(buf[n]) == 0 {
		lowest := -1
		for i := 0; i < n; i++ {
			if len(buf[i]) > 0 {
				lowest = i
				break
			}
		}
		level := lowest
		if level < 0 {
			level = 0
		}
		for len(buf[level]) < reversed[level] {
			buf[level] = append(buf[level], zeroShape(depthShape(level)))
		}
		cascade(level)
	}

	return buf[n][0], nil
}
