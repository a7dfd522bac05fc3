package frontend

import "sysyc/internal/types"

func retType(sysyType string) types.Type {
	if sysyType == "void" {
		return &types.Unit{}
	}
	return &types.I32{}
}

func isArrayType(t types.Type) bool {
	_, ok := t.(*types.Array)
	return ok
}

func typeFromDims(dims []int) types.Type {
	if len(dims) == 0 {
		return &types.I32{}
	}
	return types.ArrayOfDims(&types.I32{}, dims)
}
