package frontend

import (
	"sysyc/internal/ast"
	cerr "sysyc/internal/errors"
	"sysyc/internal/koopa"
)

func lowerBlockItem(ctx *Context, item ast.BlockItem) error {
	if decl, ok := item.(*ast.Decl); ok {
		return lowerLocalDecl(ctx, decl)
	}
	return lowerStmt(ctx, item.(ast.Stmt))
}

func lowerStmt(ctx *Context, s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.AssignStmt:
		return lowerAssign(ctx, n)
	case *ast.ExpStmt:
		return lowerExpStmt(ctx, n)
	case *ast.BlockStmt:
		ctx.Scope.PushBlock()
		defer ctx.Scope.PopBlock()
		for _, item := range n.Body.Items {
			if err := lowerBlockItem(ctx, item); err != nil {
				return err
			}
		}
		return nil
	case *ast.IfStmt:
		return lowerIf(ctx, n)
	case *ast.WhileStmt:
		return lowerWhile(ctx, n)
	case *ast.BreakStmt:
		return lowerBreak(ctx)
	case *ast.ContinueStmt:
		return lowerContinue(ctx)
	case *ast.ReturnStmt:
		return lowerReturn(ctx, n)
	default:
		return cerr.New(cerr.InvalidOperator, "unsupported statement form")
	}
}

func lowerAssign(ctx *Context, n *ast.AssignStmt) error {
	v, err := ctx.Scope.GetVarByIdent(n.Target.Ident)
	if err != nil {
		return withPos(err, n.Target.Pos)
	}
	if v.IsConst {
		return cerr.NewTypeMismatch("cannot assign to const %q", n.Target.Ident)
	}
	addr, remType, err := lvalAddress(ctx, n.Target)
	if err != nil {
		return err
	}
	if isArrayType(remType) {
		return cerr.NewTypeMismatch("cannot assign to whole array %q", n.Target.Ident)
	}
	val, err := lowerExp(ctx, n.Value)
	if err != nil {
		return err
	}
	ctx.fn().AppendInstr(koopa.Store(val, addr))
	return nil
}

func lowerExpStmt(ctx *Context, n *ast.ExpStmt) error {
	if n.Exp == nil {
		return nil
	}
	if call, ok := n.Exp.(*ast.CallExp); ok {
		_, err := lowerCallRaw(ctx, call)
		return err
	}
	_, err := lowerExp(ctx, n.Exp)
	return err
}

// lowerIf implements the `if` shape: a branch to a fresh
// true-block and either a fresh else-block or the shared end label,
// each arm jumping to the end label unless its current block is
// already terminated. After a nested return/break/continue the
// current block is that statement's open placeholder, so the jump
// lands there.
func lowerIf(ctx *Context, n *ast.IfStmt) error {
	fn := ctx.fn()
	cond, err := lowerExp(ctx, n.Cond)
	if err != nil {
		return err
	}

	trueLabel := fn.GetKoopaVarName("true_block")
	endLabel := fn.GetKoopaVarName("end_if")
	falseTarget := endLabel
	elseLabel := ""
	if n.Else != nil {
		elseLabel = fn.GetKoopaVarName("else_block")
		falseTarget = elseLabel
	}

	if err := fn.EndCurrentBlockByInstr(koopa.Br(cond, trueLabel, falseTarget), false, ""); err != nil {
		return err
	}

	if _, err := fn.NewBasicBlock(trueLabel); err != nil {
		return err
	}
	ctx.Scope.PushBlock()
	err = lowerStmt(ctx, n.Then)
	ctx.Scope.PopBlock()
	if err != nil {
		return err
	}
	if !fn.CurrentTerminated() {
		if err := fn.EndCurrentBlockByInstr(koopa.Jump(endLabel), false, ""); err != nil {
			return err
		}
	}

	if n.Else != nil {
		if _, err := fn.NewBasicBlock(elseLabel); err != nil {
			return err
		}
		ctx.Scope.PushBlock()
		err = lowerStmt(ctx, n.Else)
		ctx.Scope.PopBlock()
		if err != nil {
			return err
		}
		if !fn.CurrentTerminated() {
			if err := fn.EndCurrentBlockByInstr(koopa.Jump(endLabel), false, ""); err != nil {
				return err
			}
		}
	}

	_, err = fn.NewBasicBlock(endLabel)
	return err
}

// lowerWhile implements the `while` shape: an entry block that
// re-evaluates the condition every iteration, a body block, and the
// after-loop label break targets.
func lowerWhile(ctx *Context, n *ast.WhileStmt) error {
	fn := ctx.fn()
	entryLabel := fn.GetKoopaVarName("while_entry")
	bodyLabel := fn.GetKoopaVarName("while_body")
	afterLabel := fn.GetKoopaVarName("end_while")

	if err := fn.EndCurrentBlockByInstr(koopa.Jump(entryLabel), true, entryLabel); err != nil {
		return err
	}
	cond, err := lowerExp(ctx, n.Cond)
	if err != nil {
		return err
	}
	if err := fn.EndCurrentBlockByInstr(koopa.Br(cond, bodyLabel, afterLabel), false, ""); err != nil {
		return err
	}

	if _, err := fn.NewBasicBlock(bodyLabel); err != nil {
		return err
	}
	fn.EnterLoop(entryLabel, afterLabel)
	ctx.Scope.PushBlock()
	err = lowerStmt(ctx, n.Body)
	ctx.Scope.PopBlock()
	fn.ExitLoop()
	if err != nil {
		return err
	}
	if !fn.CurrentTerminated() {
		if err := fn.EndCurrentBlockByInstr(koopa.Jump(entryLabel), false, ""); err != nil {
			return err
		}
	}

	_, err = fn.NewBasicBlock(afterLabel)
	return err
}

func lowerBreak(ctx *Context) error {
	fn := ctx.fn()
	_, after, ok := fn.CurrentLoopInfo()
	if !ok {
		return cerr.NewLoopContextError("break")
	}
	dead := fn.GetKoopaVarName("while_body")
	return fn.EndCurrentBlockByInstr(koopa.Jump(after), true, dead)
}

func lowerContinue(ctx *Context) error {
	fn := ctx.fn()
	entry, _, ok := fn.CurrentLoopInfo()
	if !ok {
		return cerr.NewLoopContextError("continue")
	}
	dead := fn.GetKoopaVarName("while_body")
	return fn.EndCurrentBlockByInstr(koopa.Jump(entry), true, dead)
}

func lowerReturn(ctx *Context, n *ast.ReturnStmt) error {
	fn := ctx.fn()
	if n.Value != nil {
		val, err := lowerExp(ctx, n.Value)
		if err != nil {
			return err
		}
		fn.AppendInstr(koopa.Store(val, *fn.ReturnSlot))
	}
	dead := fn.GetKoopaVarName("after_ret")
	return fn.EndCurrentBlockByInstr(koopa.Jump(fn.End.Name), true, dead)
}
