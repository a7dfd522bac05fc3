package frontend

import (
	"sysyc/internal/ast"
	"sysyc/internal/koopa"
	"sysyc/internal/reshape"
	"sysyc/internal/scope"
	"sysyc/internal/types"
)

// lowerGlobalDecl is the InsertSymbol mode for top-level declarations:
// fold the shape and (for const, or for any declared initializer) the
// initializer at compile time, emit a `global`, and bind the
// identifier.
func lowerGlobalDecl(ctx *Context, prog *koopa.Program, decl *ast.Decl) error {
	for _, def := range decl.Defs {
		dims, err := evalConstDims(ctx.Scope, def.Dims)
		if err != nil {
			return err
		}
		varType := typeFromDims(dims)

		var init koopa.InitValue
		var scalarVal int32
		switch {
		case def.Init == nil:
			if len(dims) == 0 {
				init = koopa.IntInit(0)
			} else {
				init = koopa.ZeroInit()
			}
		case len(dims) == 0:
			scalarVal, err = computeConstVal(ctx.Scope, def.Init.Exp)
			if err != nil {
				return err
			}
			init = koopa.IntInit(scalarVal)
		default:
			node, err := toReshapeNode(ctx.Scope, def.Init)
			if err != nil {
				return err
			}
			init, err = reshape.Reshape(dims, node)
			if err != nil {
				return err
			}
		}

		addr := koopa.Global(def.Ident, types.NewPointer(varType))
		prog.Globals = append(prog.Globals, &koopa.GlobalDecl{Name: def.Ident, Typ: varType, Init: init})

		v := scope.Variable{Typ: varType, IsConst: decl.Const, Addr: addr}
		if decl.Const && len(dims) == 0 {
			v.ConstVal = scalarVal
		}
		ctx.Scope.InsertVar(def.Ident, v)
	}
	return nil
}

// lowerLocalDecl is the InsertSymbol mode for block-scoped
// declarations. A const scalar is recorded and inlined with no
// storage at all; every other form gets a hoisted `alloc` and, if an
// initializer is present, the corresponding stores.
func lowerLocalDecl(ctx *Context, decl *ast.Decl) error {
	fn := ctx.fn()
	for _, def := range decl.Defs {
		dims, err := evalConstDims(ctx.Scope, def.Dims)
		if err != nil {
			return err
		}
		varType := typeFromDims(dims)

		if decl.Const && len(dims) == 0 {
			v, err := computeConstVal(ctx.Scope, def.Init.Exp)
			if err != nil {
				return err
			}
			ctx.Scope.InsertVar(def.Ident, scope.Variable{Typ: varType, IsConst: true, ConstVal: v})
			continue
		}

		addr := koopa.Local(fn.GetKoopaVarName(def.Ident), types.NewPointer(varType))
		fn.AppendAllocToEntry(koopa.Alloc(addr, varType))
		ctx.Scope.InsertVar(def.Ident, scope.Variable{Typ: varType, IsConst: decl.Const, Addr: addr})

		if def.Init == nil {
			continue
		}
		if len(dims) == 0 {
			val, err := lowerExp(ctx, def.Init.Exp)
			if err != nil {
				return err
			}
			fn.AppendInstr(koopa.Store(val, addr))
			continue
		}

		if decl.Const {
			node, err := toReshapeNode(ctx.Scope, def.Init)
			if err != nil {
				return err
			}
			reshaped, err := reshape.Reshape(dims, node)
			if err != nil {
				return err
			}
			if err := storeArrayInitConst(ctx, addr, dims, reshaped); err != nil {
				return err
			}
		} else {
			tree, err := reshapeExpTree(dims, def.Init.List)
			if err != nil {
				return err
			}
			if err := storeArrayInitRuntime(ctx, addr, dims, tree); err != nil {
				return err
			}
		}
	}
	return nil
}
