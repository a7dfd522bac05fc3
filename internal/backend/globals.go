package backend

import (
	"fmt"
	"strings"

	"sysyc/internal/rawprogram"
	"sysyc/internal/types"
)

func emitGlobals(sb *strings.Builder, globals []*rawprogram.Value) {
	if len(globals) == 0 {
		return
	}
	sb.WriteString("  .data\n")
	for _, g := range globals {
		fmt.Fprintf(sb, "  .globl %s\n", g.Name)
		fmt.Fprintf(sb, "%s:\n", g.Name)
		emitInit(sb, g.GlobalInit, g.PointedType)
	}
	sb.WriteString("\n")
}

func emitInit(sb *strings.Builder, v rawprogram.InitValue, t types.Type) {
	if v.IsLeaf() {
		if v.Zero {
			line(sb, ".zero %d", sizeOf(t))
		} else {
			line(sb, ".word %d", v.Int)
		}
		return
	}
	var elemType types.Type = &types.I32{}
	if arr, ok := t.(*types.Array); ok {
		elemType = arr.Elem
	}
	for _, e := range v.Elems {
		emitInit(sb, e, elemType)
	}
}
