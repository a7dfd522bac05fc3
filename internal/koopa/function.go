package koopa

import (
	"fmt"

	cerr "sysyc/internal/errors"
	"sysyc/internal/types"
)

// loopFrame records the two jump targets break/continue resolve to.
type loopFrame struct {
	entry string // continue target
	after string // break target
}

// Function owns everything the front end mutates while lowering a
// single SysY function definition: its blocks, its per-stem name
// counters and its loop-context stack, in the same spirit as the
// StmtCompiler of the removed internal/compiler package keeping locals, the current chunk,
// and a parent link all on one mutable struct threaded through the
// visitor — generalized here from a single flat bytecode buffer to an
// explicit block graph, since Koopa is a true block-structured IR
// rather than a linear jump-patched stream.
type Function struct {
	Name       string
	ParamNames []string
	ParamTypes []types.Type
	RetType    types.Type

	Entry *BasicBlock
	Order []*BasicBlock // ordinary blocks, insertion order
	End   *BasicBlock

	// ReturnSlot is the entry-block alloc every `return e;` stores
	// into; nil for void functions.
	ReturnSlot *Operand

	current  *BasicBlock
	counters map[string]int
	loops    []loopFrame
}

// NewFunction allocates a fresh Function with its entry and end
// blocks created but not yet terminated.
func NewFunction(name string, paramNames []string, paramTypes []types.Type, ret types.Type) *Function {
	f := &Function{
		Name:       name,
		ParamNames: paramNames,
		ParamTypes: paramTypes,
		RetType:    ret,
		counters:   make(map[string]int),
	}
	f.Entry = newBasicBlock("entry")
	f.End = newBasicBlock("end")
	f.current = f.Entry
	return f
}

// GetKoopaVarName returns a process-unique name for stem within this
// function: the first call for a given stem returns "stem_0", the
// next "stem_1", and so on.
func (f *Function) GetKoopaVarName(stem string) string {
	n := f.counters[stem]
	f.counters[stem] = n + 1
	return fmt.Sprintf("%s_%d", stem, n)
}

// Reserve bumps stem's counter without handing back a name. Used at
// function entry to pre-register every already-known global and
// signature identifier, so a later synthetic name can never collide
// with one of them.
func (f *Function) Reserve(stem string) {
	f.GetKoopaVarName(stem)
}

// AppendInstr pushes a non-terminator instruction onto the current
// block.
func (f *Function) AppendInstr(instr Instruction) {
	f.current.append(instr)
}

// AppendAllocToEntry hoists an `alloc` into the entry block regardless
// of which block is syntactically current, establishing the invariant
// that address-taking precedes all uses.
func (f *Function) AppendAllocToEntry(instr Instruction) {
	f.Entry.append(instr)
}

// EndCurrentBlockByInstr sets the terminator of the current block,
// then either opens a fresh named block as current (createNew=true)
// or leaves the just-terminated block as current, for the caller to
// follow with NewBasicBlock. It is an error to terminate an
// already-terminated block.
func (f *Function) EndCurrentBlockByInstr(term Instruction, createNew bool, newName string) error {
	if f.current.Terminated() {
		return cerr.NewBlockTerminationError("block %q is already terminated", f.current.Name)
	}
	f.current.terminate(term)
	if !createNew {
		return nil
	}
	if newName == "" {
		newName = f.GetKoopaVarName("basic_block")
	}
	nb := newBasicBlock(newName)
	f.Order = append(f.Order, nb)
	f.current = nb
	return nil
}

// NewBasicBlock finalizes the current block (which must already be
// terminated) and starts a fresh one as current, returning its name.
func (f *Function) NewBasicBlock(name string) (string, error) {
	if !f.current.Terminated() {
		return "", cerr.NewBlockTerminationError("cannot open a new block: %q has no terminator", f.current.Name)
	}
	if name == "" {
		name = f.GetKoopaVarName("basic_block")
	}
	nb := newBasicBlock(name)
	f.Order = append(f.Order, nb)
	f.current = nb
	return name, nil
}

// CurrentBlockName returns the name of the block currently being
// appended to.
func (f *Function) CurrentBlockName() string { return f.current.Name }

// CurrentTerminated reports whether the current block already has a
// terminator (used by the front end to detect and skip dead code that
// would otherwise double-terminate a block).
func (f *Function) CurrentTerminated() bool { return f.current.Terminated() }

// EnterLoop pushes a new loop context; break targets after, continue
// targets entry.
func (f *Function) EnterLoop(entry, after string) {
	f.loops = append(f.loops, loopFrame{entry: entry, after: after})
}

// ExitLoop pops the innermost loop context.
func (f *Function) ExitLoop() {
	if len(f.loops) == 0 {
		return
	}
	f.loops = f.loops[:len(f.loops)-1]
}

// CurrentLoopInfo returns the innermost loop's (continue, break)
// targets. ok is false when used outside any loop.
func (f *Function) CurrentLoopInfo() (entry, after string, ok bool) {
	if len(f.loops) == 0 {
		return "", "", false
	}
	top := f.loops[len(f.loops)-1]
	return top.entry, top.after, true
}

// Finalize returns the printable block list in the canonical
// order: entry block, then ordinary blocks in insertion order, then
// end block — dropping any ordinary block that accumulated neither
// instructions nor a terminator (dead placeholder blocks left behind
// by break/continue/return).
func (f *Function) Finalize() []*BasicBlock {
	blocks := make([]*BasicBlock, 0, len(f.Order)+2)
	blocks = append(blocks, f.Entry)
	for _, b := range f.Order {
		if b.Empty() {
			continue
		}
		blocks = append(blocks, b)
	}
	blocks = append(blocks, f.End)
	return blocks
}

// AppendEndInstr appends a non-terminator instruction to the end
// block (the epilogue a ret statement's `load`, if any, lives in).
func (f *Function) AppendEndInstr(instr Instruction) {
	f.End.append(instr)
}

// TerminateEnd sets the end block's terminator, normally its `ret`.
func (f *Function) TerminateEnd(term Instruction) error {
	if f.End.Terminated() {
		return cerr.NewBlockTerminationError("end block of %q is already terminated", f.Name)
	}
	f.End.terminate(term)
	return nil
}

// Signature returns this function's Koopa call/declaration type.
func (f *Function) Signature() *types.Function {
	return &types.Function{Params: f.ParamTypes, Ret: f.RetType}
}

// IsVoid reports whether the function returns no value.
func (f *Function) IsVoid() bool {
	_, ok := f.RetType.(*types.Unit)
	return ok
}
