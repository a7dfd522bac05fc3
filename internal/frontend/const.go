package frontend

import (
	"sysyc/internal/ast"
	cerr "sysyc/internal/errors"
	"sysyc/internal/scope"
)

// computeConstVal is the ComputeConstVal traversal mode: a pure
// constant folder over the integer operators. It fails the moment it
// would need a runtime value — a non-constant identifier, an array
// read, or a function call.
func computeConstVal(sc *scope.Scope, e ast.Exp) (int32, error) {
	switch n := e.(type) {
	case *ast.Number:
		return n.Value, nil
	case *ast.LVal:
		v, err := sc.GetVarByIdent(n.Ident)
		if err != nil {
			return 0, withPos(err, n.Pos)
		}
		if !v.IsConst {
			return 0, cerr.NewTypeMismatch("%q is not a compile-time constant", n.Ident)
		}
		if len(n.Indices) == 0 {
			if isArrayType(v.Typ) {
				return 0, cerr.NewTypeMismatch("array %q used where a scalar is required", n.Ident)
			}
			return v.ConstVal, nil
		}
		return 0, cerr.NewTypeMismatch("indexing %q is not supported in a constant expression", n.Ident)
	case *ast.UnaryExp:
		x, err := computeConstVal(sc, n.X)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case "+":
			return x, nil
		case "-":
			return 0 - x, nil
		case "!":
			return boolToInt(x == 0), nil
		default:
			return 0, cerr.New(cerr.InvalidOperator, "unrecognized unary operator %q", n.Op)
		}
	case *ast.BinaryExp:
		lhs, err := computeConstVal(sc, n.Lhs)
		if err != nil {
			return 0, err
		}
		rhs, err := computeConstVal(sc, n.Rhs)
		if err != nil {
			return 0, err
		}
		return evalBinaryConst(n.Op, lhs, rhs)
	case *ast.CallExp:
		return 0, cerr.NewTypeMismatch("function call %q is not allowed in a constant expression", n.Ident)
	default:
		return 0, cerr.New(cerr.InvalidOperator, "unsupported expression in constant context")
	}
}

func evalBinaryConst(op string, lhs, rhs int32) (int32, error) {
	switch op {
	case "+":
		return lhs + rhs, nil
	case "-":
		return lhs - rhs, nil
	case "*":
		return lhs * rhs, nil
	case "/":
		if rhs == 0 {
			return 0, cerr.New(cerr.InvalidOperator, "division by zero in constant expression")
		}
		return lhs / rhs, nil
	case "%":
		if rhs == 0 {
			return 0, cerr.New(cerr.InvalidOperator, "modulo by zero in constant expression")
		}
		return lhs % rhs, nil
	case "==":
		return boolToInt(lhs == rhs), nil
	case "!=":
		return boolToInt(lhs != rhs), nil
	case "<":
		return boolToInt(lhs < rhs), nil
	case ">":
		return boolToInt(lhs > rhs), nil
	case "<=":
		return boolToInt(lhs <= rhs), nil
	case ">=":
		return boolToInt(lhs >= rhs), nil
	case "&&":
		return boolToInt(lhs != 0 && rhs != 0), nil
	case "||":
		return boolToInt(lhs != 0 || rhs != 0), nil
	default:
		return 0, cerr.New(cerr.InvalidOperator, "unrecognized binary operator %q", op)
	}
}

func boolToInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// evalConstDims folds each declared array dimension expression to an
// int, in outer-to-inner order.
func evalConstDims(sc *scope.Scope, dims []ast.Exp) ([]int, error) {
	out := make([]int, len(dims))
	for i, d := range dims {
		v, err := computeConstVal(sc, d)
		if err != nil {
			return nil, err
		}
		out[i] = int(v)
	}
	return out, nil
}
