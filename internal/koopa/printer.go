package koopa

import (
	"fmt"
	"strings"
)

// Print renders the whole program as Koopa IR text: library
// declarations, then globals, then function definitions, in that
// order (globals must precede code for forward references).
func Print(p *Program) string {
	var sb strings.Builder
	for _, d := range p.Decls {
		sb.WriteString(printDecl(d))
		sb.WriteString("\n")
	}
	if len(p.Decls) > 0 {
		sb.WriteString("\n")
	}
	for _, g := range p.Globals {
		sb.WriteString(printGlobal(g))
		sb.WriteString("\n")
	}
	if len(p.Globals) > 0 {
		sb.WriteString("\n")
	}
	for i, f := range p.Funcs {
		sb.WriteString(PrintFunction(f))
		if i != len(p.Funcs)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func printDecl(d Decl) string {
	params := make([]string, len(d.Sig.Params))
	for i, t := range d.Sig.Params {
		params[i] = t.String()
	}
	return fmt.Sprintf("decl @%s(%s): %s", d.Name, strings.Join(params, ", "), d.Sig.Ret.String())
}

func printGlobal(g *GlobalDecl) string {
	return fmt.Sprintf("global @%s = alloc %s, %s", g.Name, g.Typ.String(), g.Init.String())
}

// PrintFunction renders a single function definition, including its
// parameter list and every non-dead block in entry/ordinary/end order.
func PrintFunction(f *Function) string {
	var sb strings.Builder
	params := make([]string, len(f.ParamNames))
	for i, name := range f.ParamNames {
		params[i] = fmt.Sprintf("@%s: %s", name, f.ParamTypes[i].String())
	}
	sb.WriteString(fmt.Sprintf("fun @%s(%s): %s {\n", f.Name, strings.Join(params, ", "), f.RetType.String()))
	for _, b := range f.Finalize() {
		sb.WriteString(printBlock(b))
	}
	sb.WriteString("}\n")
	return sb.String()
}

func printBlock(b *BasicBlock) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%%%s:\n", b.Name))
	for _, in := range b.Instrs {
		sb.WriteString("  ")
		sb.WriteString(in.String())
		sb.WriteString("\n")
	}
	if b.Term != nil {
		sb.WriteString("  ")
		sb.WriteString(b.Term.String())
		sb.WriteString("\n")
	}
	return sb.String()
}
