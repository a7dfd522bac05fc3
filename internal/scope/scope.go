// Package scope implements the compiler's symbol tables: a stack of
// identifier maps, the function signature registry, and the
// per-Function unique-name counters that the Koopa emitter relies on.
// It plays the role the removed internal/compiler package's StmtCompiler gave its
// embedded environment chain, generalized from a single flat scope to
// an explicit stack that also tracks constant values for inlining.
package scope

import (
	cerr "sysyc/internal/errors"
	"sysyc/internal/koopa"
	"sysyc/internal/types"
)

// Variable is what a Scope binds an identifier to. A const scalar
// carries no storage at all — ConstVal is inlined at every use. Every
// other binding (plain scalar, const array, plain array, parameter)
// has real storage, and Addr is its pointer-typed address operand.
type Variable struct {
	Typ      types.Type
	IsConst  bool
	Addr     koopa.Operand
	ConstVal int32 // valid iff IsConst and Typ is a scalar i32
}

// FuncSignature is what the call-site lowering needs to know about a
// callee: its Koopa-level parameter/return types.
type FuncSignature struct {
	Ident  string
	Params []types.Type
	Ret    types.Type
}

// Scope is a stack of {ident -> Variable} maps, bottommost being
// global, plus the process-wide function signature registry.
type Scope struct {
	maps   []map[string]Variable
	sigs   map[string]*FuncSignature
	fn     *koopa.Function
	curRet types.Type
}

// New returns a Scope with only the global map pushed, pre-registered
// with the standard library's signatures.
func New() *Scope {
	s := &Scope{
		maps: []map[string]Variable{make(map[string]Variable)},
		sigs: make(map[string]*FuncSignature),
	}
	for _, d := range koopa.StdlibSignatures() {
		s.sigs[d.Name] = &FuncSignature{Ident: d.Name, Params: d.Sig.Params, Ret: d.Sig.Ret}
	}
	return s
}

func (s *Scope) PushBlock() { s.maps = append(s.maps, make(map[string]Variable)) }

func (s *Scope) PopBlock() { s.maps = s.maps[:len(s.maps)-1] }

// GetVarByIdent searches innermost-first.
func (s *Scope) GetVarByIdent(ident string) (Variable, error) {
	for i := len(s.maps) - 1; i >= 0; i-- {
		if v, ok := s.maps[i][ident]; ok {
			return v, nil
		}
	}
	return Variable{}, cerr.NewUnknownIdent(ident)
}

// InsertVar inserts into the innermost map. Shadowing across scopes is
// allowed; a second insert of the same ident within the same scope
// overwrites the first — callers must not rely on that silently
// succeeding twice for a legitimate program (SysY itself forbids
// re-declaring an ident in one block; neither this package nor the
// front end checks for it).
func (s *Scope) InsertVar(ident string, v Variable) {
	s.maps[len(s.maps)-1][ident] = v
}

// RegisterSignature adds a function to the call-site registry.
func (s *Scope) RegisterSignature(sig *FuncSignature) {
	s.sigs[sig.Ident] = sig
}

// GetFuncTypeByIdent looks up a previously registered signature.
func (s *Scope) GetFuncTypeByIdent(ident string) (*FuncSignature, error) {
	sig, ok := s.sigs[ident]
	if !ok {
		return nil, cerr.NewUnknownIdent(ident)
	}
	return sig, nil
}

// EnterFunc allocates a fresh Function and pushes a function-level
// scope on top of the global scope (discarding any stale block
// scopes from a previous function). It pre-registers every
// already-known global identifier and every registered function
// signature into the new Function's name counters, so emitted %
// names can never collide with a source identifier that happens to
// look like a counter stem.
func (s *Scope) EnterFunc(ident string, paramNames []string, paramTypes []types.Type, ret types.Type) *koopa.Function {
	fn := koopa.NewFunction(ident, paramNames, paramTypes, ret)
	for name := range s.maps[0] {
		fn.Reserve(name)
	}
	for name := range s.sigs {
		fn.Reserve(name)
	}
	s.maps = s.maps[:1]
	s.maps = append(s.maps, make(map[string]Variable))
	s.fn = fn
	s.curRet = ret
	return fn
}

// ExitFunc clears the active function context.
func (s *Scope) ExitFunc() {
	s.maps = s.maps[:1]
	s.fn = nil
	s.curRet = nil
}

// CurrentFunc returns the Function being lowered, or nil at global
// scope.
func (s *Scope) CurrentFunc() *koopa.Function { return s.fn }

// CurrentReturnType returns the enclosing function's Koopa return
// type.
func (s *Scope) CurrentReturnType() types.Type { return s.curRet }

// AllocAndStoreForParams synthesizes, for each formal parameter, an
// `alloc` in the entry block plus a `store` of the incoming parameter
// operand into that local slot, then registers the local under the
// source identifier — giving parameters the same memory-backed
// semantics as other locals.
func (s *Scope) AllocAndStoreForParams(fn *koopa.Function, sourceNames []string) {
	for i, sourceName := range sourceNames {
		paramType := fn.ParamTypes[i]
		slot := koopa.Local(fn.GetKoopaVarName(sourceName), types.NewPointer(paramType))
		fn.AppendAllocToEntry(koopa.Alloc(slot, paramType))
		fn.AppendInstr(koopa.Store(koopa.Local(fn.ParamNames[i], paramType), slot))
		s.InsertVar(sourceName, Variable{Typ: paramType, Addr: slot})
	}
}
