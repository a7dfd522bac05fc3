// Package rawprogram reconstructs a typed, flattened view of a Koopa
// IR program from its textual form: the same shape the reference
// toolchain's koopa_parse_from_string/koopa_build_raw_program pair
// hands a back end, rebuilt here because nothing in the surrounding
// ecosystem speaks Koopa's text grammar. internal/backend walks the
// Program this package returns instead of touching the IR package's
// own function/block/instruction types directly, so the two halves of
// the compiler stay decoupled exactly the way the reference toolchain
// decouples IR construction from code generation.
package rawprogram

import (
	"strconv"

	cerr "sysyc/internal/errors"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent    // bare word: alloc, load, fun, decl, i32, unit, ret, jump, br, call, global, store, getptr, getelemptr, and, or, xor, add, sub, mul, div, mod, eq, ne, lt, le, gt, ge, zeroinit
	tokTemp     // %name (a block label or an SSA value name)
	tokGlobal   // @name
	tokInt      // signed decimal literal
	tokLParen
	tokRParen
	tokLBrace
	tokRBrace
	tokLBracket
	tokRBracket
	tokColon
	tokComma
	tokEquals
	tokStar
)

type token struct {
	kind tokenKind
	text string
	ival int32
}

type lexer struct {
	src  string
	pos  int
	toks []token
}

func lex(src string) ([]token, error) {
	l := &lexer{src: src}
	for {
		l.skipSpaceAndComments()
		if l.pos >= len(l.src) {
			l.toks = append(l.toks, token{kind: tokEOF})
			return l.toks, nil
		}
		c := l.src[l.pos]
		switch {
		case c == '(':
			l.emit(tokLParen, "(")
		case c == ')':
			l.emit(tokRParen, ")")
		case c == '{':
			l.emit(tokLBrace, "{")
		case c == '}':
			l.emit(tokRBrace, "}")
		case c == '[':
			l.emit(tokLBracket, "[")
		case c == ']':
			l.emit(tokRBracket, "]")
		case c == ':':
			l.emit(tokColon, ":")
		case c == ',':
			l.emit(tokComma, ",")
		case c == '=':
			l.emit(tokEquals, "=")
		case c == '*':
			l.emit(tokStar, "*")
		case c == '%':
			if err := l.lexSigil(tokTemp, '%'); err != nil {
				return nil, err
			}
		case c == '@':
			if err := l.lexSigil(tokGlobal, '@'); err != nil {
				return nil, err
			}
		case c == '-' || isDigit(c):
			l.lexNumber()
		case isIdentStart(c):
			l.lexIdent()
		default:
			return nil, cerr.New(cerr.ParseError, "unexpected character %q while parsing Koopa text", c)
		}
	}
}

func (l *lexer) emit(k tokenKind, text string) {
	l.toks = append(l.toks, token{kind: k, text: text})
	l.pos += len(text)
}

func (l *lexer) skipSpaceAndComments() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			l.pos++
			continue
		}
		if c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/' {
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
			continue
		}
		break
	}
}

func (l *lexer) lexSigil(k tokenKind, sigil byte) error {
	l.pos++
	nameStart := l.pos
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.pos++
	}
	if l.pos == nameStart {
		return cerr.New(cerr.ParseError, "bare %q with no following name", sigil)
	}
	l.toks = append(l.toks, token{kind: k, text: l.src[nameStart:l.pos]})
	return nil
}

func (l *lexer) lexNumber() {
	start := l.pos
	if l.src[l.pos] == '-' {
		l.pos++
	}
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	text := l.src[start:l.pos]
	v, _ := strconv.ParseInt(text, 10, 64)
	l.toks = append(l.toks, token{kind: tokInt, text: text, ival: int32(v)})
}

func (l *lexer) lexIdent() {
	start := l.pos
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.pos++
	}
	l.toks = append(l.toks, token{kind: tokIdent, text: l.src[start:l.pos]})
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

func (t token) String() string {
	switch t.kind {
	case tokTemp:
		return "%" + t.text
	case tokGlobal:
		return "@" + t.text
	case tokInt:
		return t.text
	case tokEOF:
		return "<eof>"
	default:
		return t.text
	}
}

func unexpected(tok token, want string) error {
	return cerr.New(cerr.ParseError, "unexpected token %s, expected %s", tok, want)
}
