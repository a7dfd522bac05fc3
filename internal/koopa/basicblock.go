package koopa

// BasicBlock is a maximal straight-line instruction sequence ending in
// exactly one terminator. A block with no instructions and no
// terminator is dead weight and is dropped at emission time rather
// than printed (see Function.Finalize and PrintFunction).
type BasicBlock struct {
	Name   string
	Instrs []Instruction
	Term   *Instruction
}

func newBasicBlock(name string) *BasicBlock {
	return &BasicBlock{Name: name}
}

// Terminated reports whether the block already has its terminator.
func (b *BasicBlock) Terminated() bool {
	return b.Term != nil
}

// Empty reports whether the block has accumulated neither
// instructions nor a terminator — the "dead block" case produced by
// break/continue/return placeholder blocks that nothing ever jumps
// into.
func (b *BasicBlock) Empty() bool {
	return len(b.Instrs) == 0 && b.Term == nil
}

func (b *BasicBlock) append(instr Instruction) {
	b.Instrs = append(b.Instrs, instr)
}

func (b *BasicBlock) terminate(term Instruction) {
	t := term
	b.Term = &t
}
