package ast

import (
	"fmt"
	"strings"
)

// Dump renders a whole translation unit as an indented S-expression
// tree, one line per node — the same closed type-switch shape the
// front end's lowering passes use, reused here for -debug output
// instead of a separate visitor interface.
func Dump(cu *CompUnit) string {
	var sb strings.Builder
	for _, item := range cu.Items {
		dumpTopLevel(&sb, 0, item)
	}
	return sb.String()
}

func indent(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
}

func dumpTopLevel(sb *strings.Builder, depth int, item TopLevel) {
	switch v := item.(type) {
	case *Decl:
		dumpDecl(sb, depth, v)
	case *FuncDef:
		indent(sb, depth)
		fmt.Fprintf(sb, "FuncDef %s %s(", v.RetType, v.Ident)
		for i, p := range v.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(p.Ident)
		}
		sb.WriteString(")\n")
		dumpBlock(sb, depth+1, v.Body)
	}
}

func dumpDecl(sb *strings.Builder, depth int, d *Decl) {
	indent(sb, depth)
	kind := "Decl"
	if d.Const {
		kind = "ConstDecl"
	}
	sb.WriteString(kind + "\n")
	for _, def := range d.Defs {
		indent(sb, depth+1)
		fmt.Fprintf(sb, "Def %s", def.Ident)
		for _, dim := range def.Dims {
			sb.WriteString("[")
			sb.WriteString(dumpExpInline(dim))
			sb.WriteString("]")
		}
		sb.WriteString("\n")
		if def.Init != nil {
			dumpInitVal(sb, depth+2, def.Init)
		}
	}
}

func dumpInitVal(sb *strings.Builder, depth int, iv *InitVal) {
	indent(sb, depth)
	if iv.Exp != nil {
		fmt.Fprintf(sb, "= %s\n", dumpExpInline(iv.Exp))
		return
	}
	sb.WriteString("{\n")
	for _, child := range iv.List {
		dumpInitVal(sb, depth+1, child)
	}
	indent(sb, depth)
	sb.WriteString("}\n")
}

func dumpBlock(sb *strings.Builder, depth int, b *Block) {
	indent(sb, depth)
	sb.WriteString("Block\n")
	for _, item := range b.Items {
		dumpBlockItem(sb, depth+1, item)
	}
}

func dumpBlockItem(sb *strings.Builder, depth int, item BlockItem) {
	switch v := item.(type) {
	case *Decl:
		dumpDecl(sb, depth, v)
	case *AssignStmt:
		indent(sb, depth)
		fmt.Fprintf(sb, "Assign %s = %s\n", dumpExpInline(v.Target), dumpExpInline(v.Value))
	case *ExpStmt:
		indent(sb, depth)
		fmt.Fprintf(sb, "ExpStmt %s\n", dumpExpInline(v.Exp))
	case *BlockStmt:
		dumpBlock(sb, depth, v.Body)
	case *IfStmt:
		indent(sb, depth)
		fmt.Fprintf(sb, "If %s\n", dumpExpInline(v.Cond))
		dumpBlockItem(sb, depth+1, v.Then)
		if v.Else != nil {
			indent(sb, depth)
			sb.WriteString("Else\n")
			dumpBlockItem(sb, depth+1, v.Else)
		}
	case *WhileStmt:
		indent(sb, depth)
		fmt.Fprintf(sb, "While %s\n", dumpExpInline(v.Cond))
		dumpBlockItem(sb, depth+1, v.Body)
	case *BreakStmt:
		indent(sb, depth)
		sb.WriteString("Break\n")
	case *ContinueStmt:
		indent(sb, depth)
		sb.WriteString("Continue\n")
	case *ReturnStmt:
		indent(sb, depth)
		if v.Value == nil {
			sb.WriteString("Return\n")
			return
		}
		fmt.Fprintf(sb, "Return %s\n", dumpExpInline(v.Value))
	}
}

func dumpExpInline(e Exp) string {
	if e == nil {
		return "<empty>"
	}
	switch v := e.(type) {
	case *Number:
		return fmt.Sprintf("%d", v.Value)
	case *LVal:
		s := v.Ident
		for _, idx := range v.Indices {
			s += "[" + dumpExpInline(idx) + "]"
		}
		return s
	case *BinaryExp:
		return fmt.Sprintf("(%s %s %s)", dumpExpInline(v.Lhs), v.Op, dumpExpInline(v.Rhs))
	case *UnaryExp:
		return fmt.Sprintf("(%s%s)", v.Op, dumpExpInline(v.X))
	case *CallExp:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = dumpExpInline(a)
		}
		return fmt.Sprintf("%s(%s)", v.Ident, strings.Join(args, ", "))
	default:
		return "<?>"
	}
}
