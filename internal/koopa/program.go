package koopa

import "sysyc/internal/types"

// Decl is an external function declaration with no body: the standard
// library surface, printed ahead of user definitions.
type Decl struct {
	Name string
	Sig  *types.Function
}

// Program is the whole compiled unit: library declarations, globals,
// and the user's function definitions in source order.
type Program struct {
	Decls   []Decl
	Globals []*GlobalDecl
	Funcs   []*Function
}

// NewProgram returns an empty program pre-seeded with the standard
// library declarations.
func NewProgram() *Program {
	p := &Program{}
	for _, sig := range StdlibSignatures() {
		p.Decls = append(p.Decls, sig)
	}
	return p
}

// StdlibSignatures is the bit-exact standard-library surface every
// compiled program links against.
func StdlibSignatures() []Decl {
	i32 := func() types.Type { return &types.I32{} }
	ptrI32 := func() types.Type { return types.NewPointer(&types.I32{}) }
	unit := func() types.Type { return &types.Unit{} }
	return []Decl{
		{Name: "getint", Sig: &types.Function{Params: nil, Ret: i32()}},
		{Name: "getch", Sig: &types.Function{Params: nil, Ret: i32()}},
		{Name: "getarray", Sig: &types.Function{Params: []types.Type{ptrI32()}, Ret: i32()}},
		{Name: "putint", Sig: &types.Function{Params: []types.Type{i32()}, Ret: unit()}},
		{Name: "putch", Sig: &types.Function{Params: []types.Type{i32()}, Ret: unit()}},
		{Name: "putarray", Sig: &types.Function{Params: []types.Type{i32(), ptrI32()}, Ret: unit()}},
		{Name: "starttime", Sig: &types.Function{Params: nil, Ret: unit()}},
		{Name: "stoptime", Sig: &types.Function{Params: nil, Ret: unit()}},
	}
}
