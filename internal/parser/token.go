package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tpglitch/BatPU-2-SE/internal/isa"
)

// tokenType defines the type of a lexed token.
type tokenType uint8

const (
	tokenEOF tokenType = iota
	tokenNewline
	tokenIdent
	tokenNumber
	tokenChar
	tokenComma
	tokenColon
	tokenLParen
	tokenRParen
	tokenOperator
)

func (t tokenType) String() string {
	switch t {
	case tokenEOF:
		return "end of file"
	case tokenNewline:
		return "end of line"
	case tokenIdent:
		return "identifier"
	case tokenNumber:
		return "number"
	case tokenChar:
		return "character"
	case tokenComma:
		return "','"
	case tokenColon:
		return "':'"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	default:
		return "operator"
	}
}

type token struct {
	typ   tokenType
	text  string
	value int // numeric value of number and character tokens
	pos   Pos
}

func (t token) describe() string {
	switch t.typ {
	case tokenIdent, tokenNumber, tokenOperator:
		return fmt.Sprintf("'%s'", t.text)
	case tokenChar:
		return fmt.Sprintf("character %s", t.text)
	default:
		return t.typ.String()
	}
}

// operators ordered so that longer operators are matched first.
var operators = []string{"<<", ">>", "!=", ">=", "+", "-", "*", "%", "&", "|", "^", "~", "=", "<"}

// lexer splits source text into tokens. Comments are dropped, newlines are kept
// as statement separators.
type lexer struct {
	file string
	src  string
	off  int
	line int
	col  int
}

func newLexer(file, src string) *lexer {
	return &lexer{
		file: file,
		src:  src,
		line: 1,
		col:  1,
	}
}

func (l *lexer) pos() Pos {
	return Pos{File: l.file, Line: l.line, Column: l.col}
}

func (l *lexer) advance(n int) {
	for i := 0; i < n && l.off < len(l.src); i++ {
		if l.src[l.off] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.off++
	}
}

func (l *lexer) peekByte(offset int) byte {
	if l.off+offset >= len(l.src) {
		return 0
	}
	return l.src[l.off+offset]
}

func (l *lexer) skipComment() {
	for l.off < len(l.src) && l.src[l.off] != '\n' {
		l.advance(1)
	}
}

// next returns the next token of the source.
func (l *lexer) next() (token, error) {
	for l.off < len(l.src) {
		c := l.src[l.off]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			l.advance(1)
		case c == '/' || c == ';' || c == '#':
			l.skipComment()
		default:
			return l.lexToken()
		}
	}
	return token{typ: tokenEOF, pos: l.pos()}, nil
}

func (l *lexer) lexToken() (token, error) {
	start := l.pos()
	c := l.src[l.off]

	switch {
	case c == '\n':
		l.advance(1)
		return token{typ: tokenNewline, text: "\n", pos: start}, nil
	case c == ',':
		l.advance(1)
		return token{typ: tokenComma, text: ",", pos: start}, nil
	case c == ':':
		l.advance(1)
		return token{typ: tokenColon, text: ":", pos: start}, nil
	case c == '(':
		l.advance(1)
		return token{typ: tokenLParen, text: "(", pos: start}, nil
	case c == ')':
		l.advance(1)
		return token{typ: tokenRParen, text: ")", pos: start}, nil
	case c == '"' || c == '\'':
		return l.lexChar(start)
	case isDigit(c):
		return l.lexNumber(start)
	case isIdentStart(c):
		return l.lexIdent(start), nil
	}

	for _, op := range operators {
		if strings.HasPrefix(l.src[l.off:], op) {
			l.advance(len(op))
			return token{typ: tokenOperator, text: op, pos: start}, nil
		}
	}
	return token{}, &SyntaxError{Pos: start, Cause: fmt.Sprintf("unexpected character %q", c)}
}

func (l *lexer) lexIdent(start Pos) token {
	begin := l.off
	for l.off < len(l.src) && isIdentPart(l.src[l.off]) {
		l.advance(1)
	}
	return token{typ: tokenIdent, text: strings.ToLower(l.src[begin:l.off]), pos: start}
}

func (l *lexer) lexNumber(start Pos) (token, error) {
	begin := l.off
	for l.off < len(l.src) && isIdentPart(l.src[l.off]) {
		l.advance(1)
	}
	text := l.src[begin:l.off]

	value, err := parseNumber(text)
	if err != nil {
		return token{}, &SyntaxError{Pos: start, Cause: fmt.Sprintf("invalid number '%s'", text)}
	}
	return token{typ: tokenNumber, text: text, value: value, pos: start}, nil
}

// parseNumber parses decimal numbers and numbers prefixed with 0x, 0b or 0o.
// A leading zero does not select octal.
func parseNumber(text string) (int, error) {
	lower := strings.ToLower(text)
	base := 10
	switch {
	case strings.HasPrefix(lower, "0x"):
		base = 16
		lower = lower[2:]
	case strings.HasPrefix(lower, "0b"):
		base = 2
		lower = lower[2:]
	case strings.HasPrefix(lower, "0o"):
		base = 8
		lower = lower[2:]
	}
	lower = strings.ReplaceAll(lower, "_", "")

	value, err := strconv.ParseInt(lower, base, 32)
	if err != nil {
		return 0, fmt.Errorf("parsing number: %w", err)
	}
	return int(value), nil
}

func (l *lexer) lexChar(start Pos) (token, error) {
	quote := l.src[l.off]
	l.advance(1)

	if l.off >= len(l.src) || l.src[l.off] == '\n' {
		return token{}, &SyntaxError{Pos: start, Cause: "unterminated character literal"}
	}
	if l.src[l.off] == quote {
		return token{}, &SyntaxError{Pos: start, Cause: "empty character literal"}
	}

	c := rune(l.src[l.off])
	l.advance(1)
	if l.peekByte(0) != quote {
		return token{}, &SyntaxError{Pos: start, Cause: "unterminated character literal"}
	}
	l.advance(1)

	value, ok := isa.Character(c)
	if !ok {
		return token{}, &SyntaxError{Pos: start, Cause: fmt.Sprintf("unsupported display character %q", c)}
	}
	text := string([]byte{quote, byte(c), quote})
	return token{typ: tokenChar, text: text, value: value, pos: start}, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' || c == '.'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
