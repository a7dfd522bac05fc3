package frontend

import (
	"sysyc/internal/ast"
	cerr "sysyc/internal/errors"
	"sysyc/internal/koopa"
	"sysyc/internal/reshape"
	"sysyc/internal/scope"
	"sysyc/internal/types"
)

// toReshapeNode constant-folds every leaf of a SysY InitVal tree into
// a reshape.Node, for the compile-time-only paths: global declarations
// and const arrays of any scope (global initializers must be
// compile-time constants).
func toReshapeNode(sc *scope.Scope, iv *ast.InitVal) (reshape.Node, error) {
	if iv.Exp != nil {
		v, err := computeConstVal(sc, iv.Exp)
		if err != nil {
			return reshape.Node{}, err
		}
		return reshape.Leaf(v), nil
	}
	children := make([]reshape.Node, len(iv.List))
	for i, c := range iv.List {
		n, err := toReshapeNode(sc, c)
		if err != nil {
			return reshape.Node{}, err
		}
		children[i] = n
	}
	return reshape.Agg(children), nil
}

// expTree mirrors reshape.Node but keeps unevaluated expressions at
// its leaves instead of folded integers, for local (non-const) array
// initializers whose elements may read runtime values. A nil Exp
// leaf denotes an implicit zero-fill.
type expTree struct {
	isLeaf bool
	exp    ast.Exp
	elems  []expTree
}

// reshapeExpTree canonicalizes a local array initializer against its
// declared shape using the identical buffer-cascade algorithm as
// internal/reshape.Reshape, generalized to runtime expression
// leaves since reshape.Node is int32-only and local initializers are
// not required to be compile-time constant.
func reshapeExpTree(shape []int, children []*ast.InitVal) (expTree, error) {
	n := len(shape)
	if n == 0 {
		if len(children) == 1 && children[0].Exp != nil {
			return expTree{isLeaf: true, exp: children[0].Exp}, nil
		}
		return expTree{isLeaf: true}, nil
	}

	reversed := make([]int, n)
	for i, d := range shape {
		reversed[n-1-i] = d
	}
	buf := make([][]expTree, n+1)

	cascade := func(from int) {
		level := from
		for level < n && len(buf[level]) == reversed[level] {
			boxed := expTree{elems: buf[level]}
			buf[level] = nil
			buf[level+1] = append(buf[level+1], boxed)
			level++
		}
	}
	depthShape := func(level int) []int { return shape[n-level:] }

	var pushChild func(iv *ast.InitVal) error
	pushChild = func(iv *ast.InitVal) error {
		if iv.Exp != nil {
			if len(buf[0]) >= reversed[0] {
				return cerr.NewShapeMismatch("too many elements for array dimension of size %d", reversed[0])
			}
			buf[0] = append(buf[0], expTree{isLeaf: true, exp: iv.Exp})
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
		sub, err := reshapeExpTree(target, iv.List)
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

	for i, child := range children {
		if len(buf[n]) > 0 {
			return expTree{}, cerr.NewShapeMismatch("initializer has more elements than the declared shape (element %d is out of bounds)", i)
		}
		if err := pushChild(child); err != nil {
			return expTree{}, err
		}
	}

	var zeroShape func(dims []int) expTree
	zeroShape = func(dims []int) expTree {
		if len(dims) == 0 {
			return expTree{isLeaf: true}
		}
		elems := make([]expTree, dims[0])
		rest := zeroShape(dims[1:])
		for i := range elems {
			elems[i] = rest
		}
		return expTree{elems: elems}
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

// flattenExpTree walks a reshaped expTree in row-major order into a
// flat slice of leaf expressions; a nil entry denotes an implicit
// zero.
func flattenExpTree(t expTree) []ast.Exp {
	if t.isLeaf {
		return []ast.Exp{t.exp}
	}
	var out []ast.Exp
	for _, e := range t.elems {
		out = append(out, flattenExpTree(e)...)
	}
	return out
}

// flattenInitValue walks an already-reshaped koopa.InitValue in
// row-major order into its leaf integers.
func flattenInitValue(v koopa.InitValue) []int32 {
	if v.IsLeaf() {
		return []int32{v.Int}
	}
	var out []int32
	for _, e := range v.Elems {
		out = append(out, flattenInitValue(e)...)
	}
	return out
}

// coordsFromFlat unravels a row-major flat index against dims
// (outermost dimension first).
func coordsFromFlat(idx int, dims []int) []int {
	coords := make([]int, len(dims))
	for i := len(dims) - 1; i >= 0; i-- {
		coords[i] = idx % dims[i]
		idx /= dims[i]
	}
	return coords
}

// storeFlatInit emits the getelemptr chain and store for every
// element of an array at addr, in row-major order, descending one
// array dimension per coordinate exactly as an indexed LVal would
// — the per-element getelemptr/store emitter for local initializers.
func storeFlatInit(ctx *Context, addr koopa.Operand, dims []int, value func(flatIdx int) (koopa.Operand, error)) error {
	fn := ctx.fn()
	total := 1
	for _, d := range dims {
		total *= d
	}
	for idx := 0; idx < total; idx++ {
		coords := coordsFromFlat(idx, dims)
		cur := addr
		var curType types.Type = typeFromDims(dims)
		for _, c := range coords {
			arr := curType.(*types.Array)
			dst := koopa.Temp(fn.GetKoopaVarName("init_ptr"), types.NewPointer(arr.Elem))
			fn.AppendInstr(koopa.GetElemPtr(dst, cur, koopa.Int32(int32(c))))
			cur = dst
			curType = arr.Elem
		}
		val, err := value(idx)
		if err != nil {
			return err
		}
		fn.AppendInstr(koopa.Store(val, cur))
	}
	return nil
}

// storeArrayInitConst stores every element of an already-reshaped
// compile-time initializer (a global or local const array).
func storeArrayInitConst(ctx *Context, addr koopa.Operand, dims []int, v koopa.InitValue) error {
	flat := flattenInitValue(v)
	return storeFlatInit(ctx, addr, dims, func(idx int) (koopa.Operand, error) {
		return koopa.Int32(flat[idx]), nil
	})
}

// storeArrayInitRuntime stores every element of a local (non-const)
// array's reshaped initializer, lowering each leaf expression in
// place; an implicit zero leaf stores the literal 0.
func storeArrayInitRuntime(ctx *Context, addr koopa.Operand, dims []int, t expTree) error {
	flat := flattenExpTree(t)
	return storeFlatInit(ctx, addr, dims, func(idx int) (koopa.Operand, error) {
		if flat[idx] == nil {
			return koopa.Int32(0), nil
		}
		return lowerExp(ctx, flat[idx])
	})
}
