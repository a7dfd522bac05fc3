// Package parser is a recursive-descent SysY parser that builds
// internal/ast nodes from the internal/lexer token stream: a Parser
// struct carrying tokens/current plus match/check/consume/advance/peek
// helpers, and a binary-expression parser driven by a precedence
// table.
package parser

import (
	"fmt"

	"sysyc/internal/ast"
	"sysyc/internal/lexer"
)

var precedence = map[lexer.TokenType]int{
	lexer.TokenOrOr:   1,
	lexer.TokenAndAnd: 2,
	lexer.TokenEq:     3,
	lexer.TokenNe:     3,
	lexer.TokenLt:     3,
	lexer.TokenGt:     3,
	lexer.TokenLe:     3,
	lexer.TokenGe:     3,
	lexer.TokenPlus:   4,
	lexer.TokenMinus:  4,
	lexer.TokenStar:   5,
	lexer.TokenSlash:  5,
	lexer.TokenPercent: 5,
}

var binaryOps = map[lexer.TokenType]string{
	lexer.TokenOrOr:    "||",
	lexer.TokenAndAnd:  "&&",
	lexer.TokenEq:      "==",
	lexer.TokenNe:       "!=",
	lexer.TokenLt:      "<",
	lexer.TokenGt:      ">",
	lexer.TokenLe:      "<=",
	lexer.TokenGe:      ">=",
	lexer.TokenPlus:    "+",
	lexer.TokenMinus:   "-",
	lexer.TokenStar:    "*",
	lexer.TokenSlash:   "/",
	lexer.TokenPercent: "%",
}

// Parser turns a token stream into a *ast.CompUnit.
type Parser struct {
	tokens  []lexer.Token
	current int
}

func NewParser(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

func (p *Parser) ParseCompUnit() (*ast.CompUnit, error) {
	cu := &ast.CompUnit{}
	for !p.isAtEnd() {
		item, err := p.topLevel()
		if err != nil {
			return nil, err
		}
		cu.Items = append(cu.Items, item)
	}
	return cu, nil
}

// topLevel disambiguates `(int|void) ident (` (a FuncDef) from
// `const? int ident (= | [ | ,| ;` (a Decl) by looking past the type
// and identifier. A leading `const` always starts a Decl.
func (p *Parser) topLevel() (ast.TopLevel, error) {
	pos := p.pos()
	isConst := p.match(lexer.TokenConst)
	if isConst {
		decl, err := p.declAfterConst(pos)
		return decl, err
	}

	if p.check(lexer.TokenVoid) {
		return p.funcDef(pos)
	}
	if !p.check(lexer.TokenInt) {
		return nil, p.errorf("expected a declaration or function definition")
	}
	// TokenInt ident ( -> function; TokenInt ident anything else -> decl.
	if p.checkAt(1, lexer.TokenIdent) && p.checkAt(2, lexer.TokenLParen) {
		return p.funcDef(pos)
	}
	return p.declAfterConst(pos)
}

func (p *Parser) declAfterConst(pos ast.Pos) (*ast.Decl, error) {
	isConst := p.previousIs(lexer.TokenConst)
	if !p.match(lexer.TokenInt) {
		return nil, p.errorf("expected 'int' in declaration")
	}
	decl := &ast.Decl{Const: isConst, Pos: pos}
	for {
		def, err := p.def(isConst)
		if err != nil {
			return nil, err
		}
		decl.Defs = append(decl.Defs, def)
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	if _, err := p.consume(lexer.TokenSemicolon, "expected ';' after declaration"); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *Parser) def(isConst bool) (*ast.Def, error) {
	pos := p.pos()
	ident, err := p.consume(lexer.TokenIdent, "expected identifier")
	if err != nil {
		return nil, err
	}
	def := &ast.Def{Ident: ident.Lexeme, Pos: pos}
	for p.match(lexer.TokenLBracket) {
		dim, err := p.expression()
		if err != nil {
			return nil, err
		}
		def.Dims = append(def.Dims, dim)
		if _, err := p.consume(lexer.TokenRBracket, "expected ']'"); err != nil {
			return nil, err
		}
	}
	if isConst {
		if _, err := p.consume(lexer.TokenAssign, "const declarations require an initializer"); err != nil {
			return nil, err
		}
		init, err := p.initVal()
		if err != nil {
			return nil, err
		}
		def.Init = init
	} else if p.match(lexer.TokenAssign) {
		init, err := p.initVal()
		if err != nil {
			return nil, err
		}
		def.Init = init
	}
	return def, nil
}

func (p *Parser) initVal() (*ast.InitVal, error) {
	if p.match(lexer.TokenLBrace) {
		iv := &ast.InitVal{List: []*ast.InitVal{}}
		if !p.check(lexer.TokenRBrace) {
			for {
				child, err := p.initVal()
				if err != nil {
					return nil, err
				}
				iv.List = append(iv.List, child)
				if !p.match(lexer.TokenComma) {
					break
				}
			}
		}
		if _, err := p.consume(lexer.TokenRBrace, "expected '}'"); err != nil {
			return nil, err
		}
		return iv, nil
	}
	exp, err := p.expression()
	if err != nil {
		return nil, err
	}
	return &ast.InitVal{Exp: exp}, nil
}

func (p *Parser) funcDef(pos ast.Pos) (*ast.FuncDef, error) {
	var retType string
	switch {
	case p.match(lexer.TokenVoid):
		retType = "void"
	case p.match(lexer.TokenInt):
		retType = "int"
	default:
		return nil, p.errorf("expected 'int' or 'void' return type")
	}
	ident, err := p.consume(lexer.TokenIdent, "expected function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokenLParen, "expected '('"); err != nil {
		return nil, err
	}
	var params []ast.Param
	if !p.check(lexer.TokenRParen) {
		for {
			ppos := p.pos()
			if _, err := p.consume(lexer.TokenInt, "expected 'int' parameter type"); err != nil {
				return nil, err
			}
			pname, err := p.consume(lexer.TokenIdent, "expected parameter name")
			if err != nil {
				return nil, err
			}
			params = append(params, ast.Param{Ident: pname.Lexeme, Pos: ppos})
			if !p.match(lexer.TokenComma) {
				break
			}
		}
	}
	if _, err := p.consume(lexer.TokenRParen, "expected ')'"); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &ast.FuncDef{RetType: retType, Ident: ident.Lexeme, Params: params, Body: body, Pos: pos}, nil
}

func (p *Parser) block() (*ast.Block, error) {
	if _, err := p.consume(lexer.TokenLBrace, "expected '{'"); err != nil {
		return nil, err
	}
	b := &ast.Block{}
	for !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
		item, err := p.blockItem()
		if err != nil {
			return nil, err
		}
		b.Items = append(b.Items, item)
	}
	if _, err := p.consume(lexer.TokenRBrace, "expected '}'"); err != nil {
		return nil, err
	}
	return b, nil
}

func (p *Parser) blockItem() (ast.BlockItem, error) {
	if p.check(lexer.TokenConst) || p.check(lexer.TokenInt) {
		pos := p.pos()
		isConst := p.match(lexer.TokenConst)
		return p.declAfterConst2(pos, isConst)
	}
	return p.statement()
}

func (p *Parser) declAfterConst2(pos ast.Pos, isConst bool) (*ast.Decl, error) {
	if !p.match(lexer.TokenInt) {
		return nil, p.errorf("expected 'int' in declaration")
	}
	decl := &ast.Decl{Const: isConst, Pos: pos}
	for {
		def, err := p.def(isConst)
		if err != nil {
			return nil, err
		}
		decl.Defs = append(decl.Defs, def)
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	if _, err := p.consume(lexer.TokenSemicolon, "expected ';' after declaration"); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *Parser) statement() (ast.Stmt, error) {
	pos := p.pos()
	switch {
	case p.check(lexer.TokenLBrace):
		b, err := p.block()
		if err != nil {
			return nil, err
		}
		return &ast.BlockStmt{Body: b, Pos: pos}, nil
	case p.match(lexer.TokenIf):
		return p.ifStatement(pos)
	case p.match(lexer.TokenWhile):
		return p.whileStatement(pos)
	case p.match(lexer.TokenBreak):
		if _, err := p.consume(lexer.TokenSemicolon, "expected ';' after 'break'"); err != nil {
			return nil, err
		}
		return &ast.BreakStmt{Pos: pos}, nil
	case p.match(lexer.TokenContinue):
		if _, err := p.consume(lexer.TokenSemicolon, "expected ';' after 'continue'"); err != nil {
			return nil, err
		}
		return &ast.ContinueStmt{Pos: pos}, nil
	case p.match(lexer.TokenReturn):
		return p.returnStatement(pos)
	case p.match(lexer.TokenSemicolon):
		return &ast.ExpStmt{Pos: pos}, nil
	}
	return p.assignOrExpStatement(pos)
}

func (p *Parser) ifStatement(pos ast.Pos) (ast.Stmt, error) {
	if _, err := p.consume(lexer.TokenLParen, "expected '(' after 'if'"); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokenRParen, "expected ')' after condition"); err != nil {
		return nil, err
	}
	then, err := p.statement()
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStmt{Cond: cond, Then: then, Pos: pos}
	if p.match(lexer.TokenElse) {
		els, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmt.Else = els
	}
	return stmt, nil
}

func (p *Parser) whileStatement(pos ast.Pos) (ast.Stmt, error) {
	if _, err := p.consume(lexer.TokenLParen, "expected '(' after 'while'"); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokenRParen, "expected ')' after condition"); err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Cond: cond, Body: body, Pos: pos}, nil
}

func (p *Parser) returnStatement(pos ast.Pos) (ast.Stmt, error) {
	if p.match(lexer.TokenSemicolon) {
		return &ast.ReturnStmt{Pos: pos}, nil
	}
	val, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokenSemicolon, "expected ';' after return value"); err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{Value: val, Pos: pos}, nil
}

// assignOrExpStatement disambiguates `LVal = Exp ;` from a bare
// expression statement by speculatively parsing an LVal and checking
// for '=' — SysY's grammar requires exactly this lookahead since both
// forms start with an identifier.
func (p *Parser) assignOrExpStatement(pos ast.Pos) (ast.Stmt, error) {
	if p.check(lexer.TokenIdent) {
		save := p.current
		lval, ok := p.tryLVal()
		if ok && p.check(lexer.TokenAssign) {
			p.advance()
			val, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(lexer.TokenSemicolon, "expected ';' after assignment"); err != nil {
				return nil, err
			}
			return &ast.AssignStmt{Target: lval, Value: val, Pos: pos}, nil
		}
		p.current = save
	}
	exp, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokenSemicolon, "expected ';' after expression"); err != nil {
		return nil, err
	}
	return &ast.ExpStmt{Exp: exp, Pos: pos}, nil
}

func (p *Parser) tryLVal() (*ast.LVal, bool) {
	if !p.check(lexer.TokenIdent) {
		return nil, false
	}
	pos := p.pos()
	ident := p.advance()
	lval := &ast.LVal{Ident: ident.Lexeme, Pos: pos}
	for p.match(lexer.TokenLBracket) {
		idx, err := p.expression()
		if err != nil {
			return nil, false
		}
		if !p.match(lexer.TokenRBracket) {
			return nil, false
		}
		lval.Indices = append(lval.Indices, idx)
	}
	return lval, true
}

func (p *Parser) expression() (ast.Exp, error) {
	return p.parseBinary(1)
}

func (p *Parser) parseBinary(minPrec int) (ast.Exp, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tt := p.peek().Type
		prec, ok := precedence[tt]
		if !ok || prec < minPrec {
			return lhs, nil
		}
		pos := p.pos()
		p.advance()
		rhs, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		lhs = &ast.BinaryExp{Op: binaryOps[tt], Lhs: lhs, Rhs: rhs, Pos: pos}
	}
}

func (p *Parser) parseUnary() (ast.Exp, error) {
	pos := p.pos()
	switch {
	case p.match(lexer.TokenPlus):
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExp{Op: "+", X: x, Pos: pos}, nil
	case p.match(lexer.TokenMinus):
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExp{Op: "-", X: x, Pos: pos}, nil
	case p.match(lexer.TokenNot):
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExp{Op: "!", X: x, Pos: pos}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Exp, error) {
	pos := p.pos()
	switch {
	case p.match(lexer.TokenLParen):
		exp, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.TokenRParen, "expected ')'"); err != nil {
			return nil, err
		}
		return exp, nil
	case p.check(lexer.TokenNum):
		tok := p.advance()
		v, err := parseIntLiteral(tok.Lexeme)
		if err != nil {
			return nil, p.errorf("invalid integer literal %q: %v", tok.Lexeme, err)
		}
		return &ast.Number{Value: v, Pos: pos}, nil
	case p.check(lexer.TokenIdent):
		ident := p.advance()
		if p.match(lexer.TokenLParen) {
			var args []ast.Exp
			if !p.check(lexer.TokenRParen) {
				for {
					arg, err := p.expression()
					if err != nil {
						return nil, err
					}
					args = append(args, arg)
					if !p.match(lexer.TokenComma) {
						break
					}
				}
			}
			if _, err := p.consume(lexer.TokenRParen, "expected ')' after arguments"); err != nil {
				return nil, err
			}
			return &ast.CallExp{Ident: ident.Lexeme, Args: args, Pos: pos}, nil
		}
		lval := &ast.LVal{Ident: ident.Lexeme, Pos: pos}
		for p.match(lexer.TokenLBracket) {
			idx, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(lexer.TokenRBracket, "expected ']'"); err != nil {
				return nil, err
			}
			lval.Indices = append(lval.Indices, idx)
		}
		return lval, nil
	}
	return nil, p.errorf("unexpected token %s", p.peek().Type)
}

func parseIntLiteral(lexeme string) (int32, error) {
	var v int64
	var err error
	if len(lexeme) > 1 && (lexeme[1] == 'x' || lexeme[1] == 'X') {
		_, err = fmt.Sscanf(lexeme[2:], "%x", &v)
	} else {
		_, err = fmt.Sscanf(lexeme, "%d", &v)
	}
	return int32(v), err
}

func (p *Parser) pos() ast.Pos {
	t := p.peek()
	return ast.Pos{Line: t.Line, Col: t.Col}
}

func (p *Parser) match(t lexer.TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) previousIs(t lexer.TokenType) bool {
	if p.current == 0 {
		return false
	}
	return p.tokens[p.current-1].Type == t
}

func (p *Parser) consume(t lexer.TokenType, msg string) (lexer.Token, error) {
	if p.check(t) {
		return p.advance(), nil
	}
	return lexer.Token{}, p.errorf("%s (got %s %q)", msg, p.peek().Type, p.peek().Lexeme)
}

func (p *Parser) check(t lexer.TokenType) bool {
	if p.isAtEnd() {
		return t == lexer.TokenEOF
	}
	return p.peek().Type == t
}

func (p *Parser) checkAt(offset int, t lexer.TokenType) bool {
	i := p.current + offset
	if i >= len(p.tokens) {
		return false
	}
	return p.tokens[i].Type == t
}

func (p *Parser) advance() lexer.Token {
	tok := p.peek()
	if !p.isAtEnd() {
		p.current++
	}
	return tok
}

func (p *Parser) peek() lexer.Token {
	if p.current >= len(p.tokens) {
		return lexer.Token{Type: lexer.TokenEOF}
	}
	return p.tokens[p.current]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == lexer.TokenEOF
}

func (p *Parser) errorf(format string, args ...any) error {
	t := p.peek()
	return fmt.Errorf("parse error at line %d, col %d: %s", t.Line, t.Col, fmt.Sprintf(format, args...))
}
