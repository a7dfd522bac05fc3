// Package frontend lowers a SysY AST (internal/ast) to a Koopa IR
// program (internal/koopa), using plain functions that type-switch
// over the AST's tagged union instead of double-dispatched visitor
// methods, one function per traversal mode: Dump (this file and
// stmt.go), DumpExp (expr.go), ComputeConstVal (const.go), and
// InsertSymbol (decl.go).
//
// Function signatures are hoisted in a first pass before any body is
// lowered, in the same two-pass shape as the HoistingCompiler of the
// removed internal/compiler package, so forward and mutually recursive calls resolve
// without a separate forward-declaration syntax.
package frontend

import (
	"sysyc/internal/ast"
	"sysyc/internal/koopa"
	"sysyc/internal/scope"
	"sysyc/internal/types"
)

// Context is the compilation context threaded through every lowering
// call: the live scope stack and, while a function body is being
// lowered, that function's in-progress block graph.
type Context struct {
	Scope *scope.Scope
}

func (ctx *Context) fn() *koopa.Function { return ctx.Scope.CurrentFunc() }

// Compile lowers a whole translation unit to a Koopa IR program.
func Compile(cu *ast.CompUnit) (*koopa.Program, error) {
	ctx := &Context{Scope: scope.New()}
	prog := koopa.NewProgram()

	for _, item := range cu.Items {
		fd, ok := item.(*ast.FuncDef)
		if !ok {
			continue
		}
		paramTypes := make([]types.Type, len(fd.Params))
		for i := range fd.Params {
			paramTypes[i] = &types.I32{}
		}
		ctx.Scope.RegisterSignature(&scope.FuncSignature{
			Ident:  fd.Ident,
			Params: paramTypes,
			Ret:    retType(fd.RetType),
		})
	}

	for _, item := range cu.Items {
		switch v := item.(type) {
		case *ast.Decl:
			if err := lowerGlobalDecl(ctx, prog, v); err != nil {
				return nil, err
			}
		case *ast.FuncDef:
			fn, err := lowerFuncDef(ctx, v)
			if err != nil {
				return nil, err
			}
			prog.Funcs = append(prog.Funcs, fn)
		}
	}
	return prog, nil
}

// lowerFuncDef enters a fresh Function, synthesizes the parameter and
// return-slot storage the entry block needs, lowers the body, then
// closes out the function with the jump-to-end/epilogue shape
// described below.
func lowerFuncDef(ctx *Context, fd *ast.FuncDef) (*koopa.Function, error) {
	paramNames := make([]string, len(fd.Params))
	paramTypes := make([]types.Type, len(fd.Params))
	for i, p := range fd.Params {
		paramNames[i] = p.Ident
		paramTypes[i] = &types.I32{}
	}
	ret := retType(fd.RetType)
	fn := ctx.Scope.EnterFunc(fd.Ident, paramNames, paramTypes, ret)
	defer ctx.Scope.ExitFunc()

	if !fn.IsVoid() {
		slot := koopa.Local(fn.GetKoopaVarName("ret"), types.NewPointer(&types.I32{}))
		fn.AppendAllocToEntry(koopa.Alloc(slot, &types.I32{}))
		fn.ReturnSlot = &slot
	}
	ctx.Scope.AllocAndStoreForParams(fn, paramNames)

	bodyLabel := fn.GetKoopaVarName("basic_block")
	if err := fn.EndCurrentBlockByInstr(koopa.Jump(bodyLabel), true, bodyLabel); err != nil {
		return nil, err
	}

	ctx.Scope.PushBlock()
	for _, item := range fd.Body.Items {
		if err := lowerBlockItem(ctx, item); err != nil {
			ctx.Scope.PopBlock()
			return nil, err
		}
	}
	ctx.Scope.PopBlock()

	if !fn.CurrentTerminated() {
		if err := fn.EndCurrentBlockByInstr(koopa.Jump(fn.End.Name), false, ""); err != nil {
			return nil, err
		}
	}

	if fn.IsVoid() {
		if err := fn.TerminateEnd(koopa.Ret(koopa.Operand{}, false)); err != nil {
			return nil, err
		}
	} else {
		result := koopa.Temp(fn.GetKoopaVarName("ret_val"), &types.I32{})
		fn.AppendEndInstr(koopa.Load(result, *fn.ReturnSlot))
		if err := fn.TerminateEnd(koopa.Ret(result, true)); err != nil {
			return nil, err
		}
	}
	return fn, nil
}
