package frontend

import (
	"sysyc/internal/ast"
	cerr "sysyc/internal/errors"
)

// withPos pins a source location onto a CompileError at the point
// where the failing identifier was referenced, rather than leaving it
// bare the way the scope package itself must (Scope never sees an
// ast.Pos — only identifiers).
func withPos(err error, pos ast.Pos) error {
	if ce, ok := err.(*cerr.CompileError); ok {
		return ce.WithLocation("", pos.Line, pos.Col)
	}
	return err
}
