package frontend

import (
	"sysyc/internal/ast"
	cerr "sysyc/internal/errors"
	"sysyc/internal/koopa"
	"sysyc/internal/types"
)

// lvalAddress walks an LVal's index chain, emitting one `getelemptr`
// per index, and returns the resulting address together with
// the type it points to: i32 when every declared dimension has been
// consumed, or an array type for a partial (intermediate) index.
func lvalAddress(ctx *Context, lval *ast.LVal) (koopa.Operand, types.Type, error) {
	v, err := ctx.Scope.GetVarByIdent(lval.Ident)
	if err != nil {
		return koopa.Operand{}, nil, withPos(err, lval.Pos)
	}
	if v.IsConst && !isArrayType(v.Typ) {
		return koopa.Operand{}, nil, cerr.NewTypeMismatch("%q is a constant and has no address", lval.Ident)
	}
	fn := ctx.fn()
	addr := v.Addr
	curType := v.Typ
	for _, idxExp := range lval.Indices {
		arr, ok := curType.(*types.Array)
		if !ok {
			return koopa.Operand{}, nil, cerr.NewTypeMismatch("%q is not an array and cannot be indexed", lval.Ident)
		}
		idxOp, err := lowerExp(ctx, idxExp)
		if err != nil {
			return koopa.Operand{}, nil, err
		}
		dst := koopa.Temp(fn.GetKoopaVarName("elem_ptr"), types.NewPointer(arr.Elem))
		fn.AppendInstr(koopa.GetElemPtr(dst, addr, idxOp))
		addr = dst
		curType = arr.Elem
	}
	return addr, curType, nil
}

// decayArrayAddr converts the address of a whole array (or a
// partially indexed sub-array) into a pointer to its first element —
// the array-to-pointer decay SysY performs when an array is passed
// where a pointer parameter (the standard library's `*i32`
// parameters) is expected.
func decayArrayAddr(ctx *Context, addr koopa.Operand, curType types.Type) (koopa.Operand, error) {
	arr, ok := curType.(*types.Array)
	if !ok {
		return addr, nil
	}
	fn := ctx.fn()
	dst := koopa.Temp(fn.GetKoopaVarName("decay_ptr"), types.NewPointer(arr.Elem))
	fn.AppendInstr(koopa.GetElemPtr(dst, addr, koopa.Int32(0)))
	return dst, nil
}

// lowerLValRead lowers an LVal used as an r-value: an inlined
// constant for a const scalar, otherwise the address followed by a
// `load`. An LVal that still addresses an array (a bare or partially
// indexed array) is a TypeMismatch here.
func lowerLValRead(ctx *Context, lval *ast.LVal) (koopa.Operand, error) {
	v, err := ctx.Scope.GetVarByIdent(lval.Ident)
	if err != nil {
		return koopa.Operand{}, withPos(err, lval.Pos)
	}
	if v.IsConst && !isArrayType(v.Typ) && len(lval.Indices) == 0 {
		return koopa.Int32(v.ConstVal), nil
	}
	addr, remType, err := lvalAddress(ctx, lval)
	if err != nil {
		return koopa.Operand{}, err
	}
	if isArrayType(remType) {
		return koopa.Operand{}, cerr.NewTypeMismatch("array %q used where a scalar is required", lval.Ident)
	}
	fn := ctx.fn()
	dst := koopa.Temp(fn.GetKoopaVarName("load"), &types.I32{})
	fn.AppendInstr(koopa.Load(dst, addr))
	return dst, nil
}

var binaryOpcodes = map[string]koopa.OpCode{
	"+": koopa.OpAdd, "-": koopa.OpSub, "*": koopa.OpMul, "/": koopa.OpDiv, "%": koopa.OpMod,
	"==": koopa.OpEq, "!=": koopa.OpNe, "<": koopa.OpLt, ">": koopa.OpGt, "<=": koopa.OpLe, ">=": koopa.OpGe,
}

// lowerExp is the DumpExp traversal mode: lower an expression to an
// Operand, emitting instructions into the current block as a side
// effect.
func lowerExp(ctx *Context, e ast.Exp) (koopa.Operand, error) {
	switch n := e.(type) {
	case *ast.Number:
		return koopa.Int32(n.Value), nil
	case *ast.LVal:
		return lowerLValRead(ctx, n)
	case *ast.UnaryExp:
		return lowerUnary(ctx, n)
	case *ast.BinaryExp:
		if n.Op == "&&" || n.Op == "||" {
			return lowerShortCircuit(ctx, n)
		}
		return lowerBinary(ctx, n)
	case *ast.CallExp:
		dst, err := lowerCallRaw(ctx, n)
		if err != nil {
			return koopa.Operand{}, err
		}
		if dst == nil {
			return koopa.Operand{}, cerr.NewTypeMismatch("void call to %q used as a value", n.Ident)
		}
		return *dst, nil
	default:
		return koopa.Operand{}, cerr.New(cerr.InvalidOperator, "unsupported expression form")
	}
}

func lowerUnary(ctx *Context, n *ast.UnaryExp) (koopa.Operand, error) {
	x, err := lowerExp(ctx, n.X)
	if err != nil {
		return koopa.Operand{}, err
	}
	fn := ctx.fn()
	switch n.Op {
	case "+":
		return x, nil
	case "-":
		dst := koopa.Temp(fn.GetKoopaVarName("neg"), &types.I32{})
		fn.AppendInstr(koopa.Binary(koopa.OpSub, dst, koopa.Int32(0), x))
		return dst, nil
	case "!":
		dst := koopa.Temp(fn.GetKoopaVarName("not"), &types.I32{})
		fn.AppendInstr(koopa.Binary(koopa.OpEq, dst, x, koopa.Int32(0)))
		return dst, nil
	default:
		return koopa.Operand{}, cerr.New(cerr.InvalidOperator, "unrecognized unary operator %q", n.Op)
	}
}

func lowerBinary(ctx *Context, n *ast.BinaryExp) (koopa.Operand, error) {
	lhs, err := lowerExp(ctx, n.Lhs)
	if err != nil {
		return koopa.Operand{}, err
	}
	rhs, err := lowerExp(ctx, n.Rhs)
	if err != nil {
		return koopa.Operand{}, err
	}
	op, ok := binaryOpcodes[n.Op]
	if !ok {
		return koopa.Operand{}, cerr.New(cerr.InvalidOperator, "unrecognized binary operator %q", n.Op)
	}
	fn := ctx.fn()
	dst := koopa.Temp(fn.GetKoopaVarName("binop"), &types.I32{})
	fn.AppendInstr(koopa.Binary(op, dst, lhs, rhs))
	return dst, nil
}

// lowerShortCircuit materializes `&&`/`||` as explicit control flow so
// the right operand's side effects never execute once the left
// operand has settled the result.
func lowerShortCircuit(ctx *Context, n *ast.BinaryExp) (koopa.Operand, error) {
	fn := ctx.fn()
	slot := koopa.Local(fn.GetKoopaVarName("logic_result"), types.NewPointer(&types.I32{}))
	fn.AppendAllocToEntry(koopa.Alloc(slot, &types.I32{}))

	lhs, err := lowerExp(ctx, n.Lhs)
	if err != nil {
		return koopa.Operand{}, err
	}
	normLhs := koopa.Temp(fn.GetKoopaVarName("logic_lhs"), &types.I32{})
	fn.AppendInstr(koopa.Binary(koopa.OpNe, normLhs, lhs, koopa.Int32(0)))
	fn.AppendInstr(koopa.Store(normLhs, slot))

	rhsLabel := fn.GetKoopaVarName("logic_rhs")
	endLabel := fn.GetKoopaVarName("logic_end")
	trueLabel, falseLabel := rhsLabel, endLabel
	if n.Op == "||" {
		trueLabel, falseLabel = endLabel, rhsLabel
	}
	if err := fn.EndCurrentBlockByInstr(koopa.Br(normLhs, trueLabel, falseLabel), false, ""); err != nil {
		return koopa.Operand{}, err
	}

	if _, err := fn.NewBasicBlock(rhsLabel); err != nil {
		return koopa.Operand{}, err
	}
	rhs, err := lowerExp(ctx, n.Rhs)
	if err != nil {
		return koopa.Operand{}, err
	}
	normRhs := koopa.Temp(fn.GetKoopaVarName("logic_rhs_norm"), &types.I32{})
	fn.AppendInstr(koopa.Binary(koopa.OpNe, normRhs, rhs, koopa.Int32(0)))
	fn.AppendInstr(koopa.Store(normRhs, slot))
	if err := fn.EndCurrentBlockByInstr(koopa.Jump(endLabel), false, ""); err != nil {
		return koopa.Operand{}, err
	}

	if _, err := fn.NewBasicBlock(endLabel); err != nil {
		return koopa.Operand{}, err
	}
	result := koopa.Temp(fn.GetKoopaVarName("logic_val"), &types.I32{})
	fn.AppendInstr(koopa.Load(result, slot))
	return result, nil
}

// lowerCallRaw evaluates r-param expressions left to right and emits
// `call`. It returns nil when the callee is void.
func lowerCallRaw(ctx *Context, n *ast.CallExp) (*koopa.Operand, error) {
	sig, err := ctx.Scope.GetFuncTypeByIdent(n.Ident)
	if err != nil {
		return nil, withPos(err, n.Pos)
	}
	fn := ctx.fn()
	args := make([]koopa.Operand, len(n.Args))
	for i, argExp := range n.Args {
		var paramType types.Type
		if i < len(sig.Params) {
			paramType = sig.Params[i]
		}
		if _, wantsPointer := paramType.(*types.Pointer); wantsPointer {
			lval, ok := argExp.(*ast.LVal)
			if !ok {
				return nil, cerr.NewTypeMismatch("argument %d to %q must be an array", i, n.Ident)
			}
			addr, remType, err := lvalAddress(ctx, lval)
			if err != nil {
				return nil, err
			}
			addr, err = decayArrayAddr(ctx, addr, remType)
			if err != nil {
				return nil, err
			}
			args[i] = addr
			continue
		}
		op, err := lowerExp(ctx, argExp)
		if err != nil {
			return nil, err
		}
		args[i] = op
	}
	var dst *koopa.Operand
	if _, isVoid := sig.Ret.(*types.Unit); !isVoid {
		d := koopa.Temp(fn.GetKoopaVarName("call"), &types.I32{})
		dst = &d
	}
	fn.AppendInstr(koopa.Call(dst, n.Ident, args))
	return dst, nil
}
