package rawprogram

import (
	cerr "sysyc/internal/errors"
	"sysyc/internal/types"
)

type parser struct {
	toks []token
	pos  int

	globalsByName map[string]*Value
	funcsByName   map[string]*Func
	prog          *Program
}

// Parse reads Koopa IR text and returns the flattened, typed view a
// back end walks. It accepts exactly the grammar internal/koopa.Print
// emits; it does not attempt to recover from malformed input.
func Parse(src string) (*Program, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{
		toks:          toks,
		globalsByName: map[string]*Value{},
		funcsByName:   map[string]*Func{},
		prog:          &Program{},
	}
	if err := p.parseProgram(); err != nil {
		return nil, err
	}
	computeUsedBy(p.prog)
	return p.prog, nil
}

func (p *parser) cur() token { return p.toks[p.pos] }

func (p *parser) peekKind(offset int) tokenKind {
	idx := p.pos + offset
	if idx >= len(p.toks) {
		return tokEOF
	}
	return p.toks[idx].kind
}

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(k tokenKind, what string) (token, error) {
	if p.cur().kind != k {
		return token{}, unexpected(p.cur(), what)
	}
	return p.advance(), nil
}

func (p *parser) parseProgram() error {
	for p.cur().kind != tokEOF {
		if p.cur().kind != tokIdent {
			return unexpected(p.cur(), "'decl', 'global' or 'fun'")
		}
		switch p.cur().text {
		case "decl":
			if err := p.parseDecl(); err != nil {
				return err
			}
		case "global":
			if err := p.parseGlobal(); err != nil {
				return err
			}
		case "fun":
			if err := p.parseFunc(); err != nil {
				return err
			}
		default:
			return unexpected(p.cur(), "'decl', 'global' or 'fun'")
		}
	}
	return nil
}

func (p *parser) parseType() (types.Type, error) {
	switch {
	case p.cur().kind == tokStar:
		p.advance()
		base, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return types.NewPointer(base), nil
	case p.cur().kind == tokLBracket:
		p.advance()
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokComma, "','"); err != nil {
			return nil, err
		}
		lenTok, err := p.expect(tokInt, "array length")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRBracket, "']'"); err != nil {
			return nil, err
		}
		return types.NewArray(elem, int(lenTok.ival)), nil
	case p.cur().kind == tokIdent && p.cur().text == "i32":
		p.advance()
		return &types.I32{}, nil
	case p.cur().kind == tokIdent && p.cur().text == "unit":
		p.advance()
		return &types.Unit{}, nil
	default:
		return nil, unexpected(p.cur(), "a type")
	}
}

func (p *parser) parseDecl() error {
	p.advance() // "decl"
	nameTok, err := p.expect(tokGlobal, "@name")
	if err != nil {
		return err
	}
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return err
	}
	var params []types.Type
	for p.cur().kind != tokRParen {
		t, err := p.parseType()
		if err != nil {
			return err
		}
		params = append(params, t)
		if p.cur().kind != tokComma {
			break
		}
		p.advance()
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return err
	}
	if _, err := p.expect(tokColon, "':'"); err != nil {
		return err
	}
	ret, err := p.parseType()
	if err != nil {
		return err
	}
	fn := &Func{Name: nameTok.text, RetType: ret, IsDecl: true}
	for i, t := range params {
		fn.Params = append(fn.Params, &Value{Kind: KindFuncArgRef, Typ: t, ArgIndex: i})
	}
	p.funcsByName[fn.Name] = fn
	p.prog.Funcs = append(p.prog.Funcs, fn)
	return nil
}

func (p *parser) parseInitValue() (InitValue, error) {
	switch {
	case p.cur().kind == tokIdent && p.cur().text == "zeroinit":
		p.advance()
		return InitValue{Zero: true}, nil
	case p.cur().kind == tokInt:
		t := p.advance()
		return InitValue{Int: t.ival}, nil
	case p.cur().kind == tokLBrace:
		p.advance()
		var elems []InitValue
		for p.cur().kind != tokRBrace {
			e, err := p.parseInitValue()
			if err != nil {
				return InitValue{}, err
			}
			elems = append(elems, e)
			if p.cur().kind != tokComma {
				break
			}
			p.advance()
		}
		if _, err := p.expect(tokRBrace, "'}'"); err != nil {
			return InitValue{}, err
		}
		if elems == nil {
			elems = []InitValue{}
		}
		return InitValue{Elems: elems}, nil
	default:
		return InitValue{}, unexpected(p.cur(), "an initializer")
	}
}

func (p *parser) parseGlobal() error {
	p.advance() // "global"
	nameTok, err := p.expect(tokGlobal, "@name")
	if err != nil {
		return err
	}
	if _, err := p.expect(tokEquals, "'='"); err != nil {
		return err
	}
	if p.cur().kind != tokIdent || p.cur().text != "alloc" {
		return unexpected(p.cur(), "'alloc'")
	}
	p.advance()
	pointed, err := p.parseType()
	if err != nil {
		return err
	}
	if _, err := p.expect(tokComma, "','"); err != nil {
		return err
	}
	init, err := p.parseInitValue()
	if err != nil {
		return err
	}
	v := &Value{
		Name:        nameTok.text,
		Kind:        KindGlobalAlloc,
		Typ:         types.NewPointer(pointed),
		PointedType: pointed,
		GlobalInit:  init,
	}
	p.globalsByName[v.Name] = v
	p.prog.Globals = append(p.prog.Globals, v)
	return nil
}

func (p *parser) parseFunc() error {
	p.advance() // "fun"
	nameTok, err := p.expect(tokGlobal, "@name")
	if err != nil {
		return err
	}
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return err
	}
	var paramNames []string
	var paramTypes []types.Type
	for p.cur().kind != tokRParen {
		pn, err := p.expect(tokGlobal, "@param")
		if err != nil {
			return err
		}
		if _, err := p.expect(tokColon, "':'"); err != nil {
			return err
		}
		t, err := p.parseType()
		if err != nil {
			return err
		}
		paramNames = append(paramNames, pn.text)
		paramTypes = append(paramTypes, t)
		if p.cur().kind != tokComma {
			break
		}
		p.advance()
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return err
	}
	if _, err := p.expect(tokColon, "':'"); err != nil {
		return err
	}
	ret, err := p.parseType()
	if err != nil {
		return err
	}

	fn := &Func{Name: nameTok.text, RetType: ret}
	for i, t := range paramTypes {
		fn.Params = append(fn.Params, &Value{Name: paramNames[i], Kind: KindFuncArgRef, Typ: t, ArgIndex: i})
	}
	p.funcsByName[fn.Name] = fn
	p.prog.Funcs = append(p.prog.Funcs, fn)

	if _, err := p.expect(tokLBrace, "'{'"); err != nil {
		return err
	}

	// First pass: collect block labels in order, so a branch/jump
	// earlier in the text can target a block defined later.
	bodyStart := p.pos
	var blockOrder []string
	for p.cur().kind != tokRBrace {
		if p.cur().kind == tokTemp && p.peekKind(1) == tokColon {
			blockOrder = append(blockOrder, p.cur().text)
		}
		p.advance()
	}
	p.pos = bodyStart

	blocks := map[string]*Block{}
	for _, name := range blockOrder {
		b := &Block{Name: name, Func: fn}
		blocks[name] = b
		fn.Blocks = append(fn.Blocks, b)
	}

	valuesByName := map[string]*Value{}
	for i, pn := range paramNames {
		valuesByName[pn] = fn.Params[i]
	}

	var cur *Block
	for p.cur().kind != tokRBrace {
		if p.cur().kind == tokTemp && p.peekKind(1) == tokColon {
			nameTok := p.advance()
			p.advance() // ':'
			cur = blocks[nameTok.text]
			continue
		}
		if cur == nil {
			return unexpected(p.cur(), "a block label")
		}
		inst, err := p.parseInstruction(valuesByName, blocks)
		if err != nil {
			return err
		}
		cur.Insts = append(cur.Insts, inst)
	}
	if _, err := p.expect(tokRBrace, "'}'"); err != nil {
		return err
	}
	return nil
}

func (p *parser) parseOperand(vals map[string]*Value) (*Value, error) {
	switch p.cur().kind {
	case tokInt:
		t := p.advance()
		return &Value{Kind: KindInteger, Int: t.ival, Typ: &types.I32{}}, nil
	case tokTemp:
		t := p.advance()
		v, ok := vals[t.text]
		if !ok {
			return nil, cerr.New(cerr.ParseError, "reference to undefined value %%%s", t.text)
		}
		return v, nil
	case tokGlobal:
		t := p.advance()
		// @name is a parameter or a named local first, a global otherwise.
		if v, ok := vals[t.text]; ok {
			return v, nil
		}
		v, ok := p.globalsByName[t.text]
		if !ok {
			return nil, cerr.New(cerr.ParseError, "reference to undefined global @%s", t.text)
		}
		return v, nil
	default:
		return nil, unexpected(p.cur(), "an operand")
	}
}

func (p *parser) parseCall(vals map[string]*Value) (*Value, error) {
	nameTok, err := p.expect(tokGlobal, "@callee")
	if err != nil {
		return nil, err
	}
	callee, ok := p.funcsByName[nameTok.text]
	if !ok {
		return nil, cerr.New(cerr.ParseError, "call to unknown function @%s", nameTok.text)
	}
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return nil, err
	}
	var args []*Value
	for p.cur().kind != tokRParen {
		a, err := p.parseOperand(vals)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.cur().kind != tokComma {
			break
		}
		p.advance()
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}
	return &Value{Kind: KindCall, Callee: callee, Args: args, Typ: callee.RetType}, nil
}

func (p *parser) parseRHS(vals map[string]*Value, blocks map[string]*Block) (*Value, error) {
	if p.cur().kind != tokIdent {
		return nil, unexpected(p.cur(), "an instruction keyword")
	}
	word := p.cur().text
	if op, ok := binaryOpByName[word]; ok {
		p.advance()
		lhs, err := p.parseOperand(vals)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokComma, "','"); err != nil {
			return nil, err
		}
		rhs, err := p.parseOperand(vals)
		if err != nil {
			return nil, err
		}
		return &Value{Kind: KindBinary, Op: op, A: lhs, B: rhs, Typ: &types.I32{}}, nil
	}
	switch word {
	case "alloc":
		p.advance()
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &Value{Kind: KindAlloc, PointedType: t, Typ: types.NewPointer(t)}, nil
	case "load":
		p.advance()
		src, err := p.parseOperand(vals)
		if err != nil {
			return nil, err
		}
		return &Value{Kind: KindLoad, A: src, Typ: pointeeType(src.Typ)}, nil
	case "getelemptr":
		p.advance()
		base, err := p.parseOperand(vals)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokComma, "','"); err != nil {
			return nil, err
		}
		idx, err := p.parseOperand(vals)
		if err != nil {
			return nil, err
		}
		return &Value{Kind: KindGetPtr, IsElem: true, A: base, B: idx, Typ: types.NewPointer(arrayElemType(base.Typ))}, nil
	case "getptr":
		p.advance()
		base, err := p.parseOperand(vals)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokComma, "','"); err != nil {
			return nil, err
		}
		idx, err := p.parseOperand(vals)
		if err != nil {
			return nil, err
		}
		return &Value{Kind: KindGetPtr, IsElem: false, A: base, B: idx, Typ: base.Typ}, nil
	case "call":
		p.advance()
		return p.parseCall(vals)
	}
	return nil, unexpected(p.cur(), "an instruction keyword")
}

func (p *parser) parseInstruction(vals map[string]*Value, blocks map[string]*Block) (*Value, error) {
	if p.cur().kind == tokTemp || p.cur().kind == tokGlobal {
		nameTok := p.advance()
		if _, err := p.expect(tokEquals, "'='"); err != nil {
			return nil, err
		}
		v, err := p.parseRHS(vals, blocks)
		if err != nil {
			return nil, err
		}
		v.Name = nameTok.text
		vals[v.Name] = v
		return v, nil
	}
	if p.cur().kind != tokIdent {
		return nil, unexpected(p.cur(), "an instruction")
	}
	switch p.cur().text {
	case "store":
		p.advance()
		val, err := p.parseOperand(vals)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokComma, "','"); err != nil {
			return nil, err
		}
		dst, err := p.parseOperand(vals)
		if err != nil {
			return nil, err
		}
		return &Value{Kind: KindStore, A: val, B: dst}, nil
	case "br":
		p.advance()
		cond, err := p.parseOperand(vals)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokComma, "','"); err != nil {
			return nil, err
		}
		tTok, err := p.expect(tokTemp, "true-branch label")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokComma, "','"); err != nil {
			return nil, err
		}
		fTok, err := p.expect(tokTemp, "false-branch label")
		if err != nil {
			return nil, err
		}
		tb, ok := blocks[tTok.text]
		if !ok {
			return nil, cerr.New(cerr.ParseError, "branch to unknown block %%%s", tTok.text)
		}
		fb, ok := blocks[fTok.text]
		if !ok {
			return nil, cerr.New(cerr.ParseError, "branch to unknown block %%%s", fTok.text)
		}
		return &Value{Kind: KindBranch, Cond: cond, TrueBlock: tb, FalseBlock: fb}, nil
	case "jump":
		p.advance()
		tTok, err := p.expect(tokTemp, "jump target label")
		if err != nil {
			return nil, err
		}
		tb, ok := blocks[tTok.text]
		if !ok {
			return nil, cerr.New(cerr.ParseError, "jump to unknown block %%%s", tTok.text)
		}
		return &Value{Kind: KindJump, JumpTarget: tb}, nil
	case "ret":
		p.advance()
		switch p.cur().kind {
		case tokInt, tokTemp, tokGlobal:
			v, err := p.parseOperand(vals)
			if err != nil {
				return nil, err
			}
			return &Value{Kind: KindReturn, RetVal: v, HasRetVal: true}, nil
		default:
			return &Value{Kind: KindReturn}, nil
		}
	case "call":
		p.advance()
		return p.parseCall(vals)
	default:
		return nil, unexpected(p.cur(), "a statement keyword")
	}
}

func pointeeType(t types.Type) types.Type {
	if ptr, ok := t.(*types.Pointer); ok {
		return ptr.Base
	}
	return &types.I32{}
}

func arrayElemType(t types.Type) types.Type {
	ptr, ok := t.(*types.Pointer)
	if !ok {
		return &types.I32{}
	}
	arr, ok := ptr.Base.(*types.Array)
	if !ok {
		return ptr.Base
	}
	return arr.Elem
}

func computeUsedBy(prog *Program) {
	mark := func(v *Value) {
		if v != nil {
			v.UsedBy++
		}
	}
	for _, fn := range prog.Funcs {
		for _, b := range fn.Blocks {
			for _, v := range b.Insts {
				switch v.Kind {
				case KindLoad:
					mark(v.A)
				case KindStore, KindGetPtr, KindBinary:
					mark(v.A)
					mark(v.B)
				case KindBranch:
					mark(v.Cond)
				case KindCall:
					for _, a := range v.Args {
						mark(a)
					}
				case KindReturn:
					if v.HasRetVal {
						mark(v.RetVal)
					}
				}
			}
		}
	}
}
