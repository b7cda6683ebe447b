// Package parser turns BatPU-2 assembly source text into statements.
package parser

import (
	"fmt"
	"iter"
	"strings"

	"github.com/tpglitch/BatPU-2-SE/internal/isa"
)

// SyntaxError is returned for malformed source text.
type SyntaxError struct {
	Pos   Pos
	Cause string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: syntax error: %s", e.Pos, e.Cause)
}

// binary operator precedences, higher binds stronger.
var precedence = map[string]int{
	"|":  1,
	"^":  2,
	"&":  3,
	"<<": 4,
	">>": 4,
	"+":  5,
	"-":  5,
	"*":  6,
	"%":  6,
}

// conditionOperators can be used as bare operand to name a branch condition.
var conditionOperators = map[string]struct{}{
	"=":  {},
	"!=": {},
	">=": {},
	"<":  {},
}

// Parse returns a lazy sequence of the statements of the source. The sequence
// can be ranged over multiple times, every iteration parses the source from
// the start. Parsing stops at the first error, which is yielded as last element.
func Parse(file, src string) iter.Seq2[Statement, error] {
	return func(yield func(Statement, error) bool) {
		p := &parser{lex: newLexer(file, src)}
		for !p.done {
			statements, err := p.parseLine()
			if err != nil {
				yield(Statement{}, err)
				return
			}
			for _, statement := range statements {
				if !yield(statement, nil) {
					return
				}
			}
		}
	}
}

// ParseAll parses the complete source and returns all statements.
func ParseAll(file, src string) ([]Statement, error) {
	var statements []Statement
	for statement, err := range Parse(file, src) {
		if err != nil {
			return nil, err
		}
		statements = append(statements, statement)
	}
	return statements, nil
}

type parser struct {
	lex  *lexer
	tok  token
	peek bool
	done bool
}

func (p *parser) next() (token, error) {
	if p.peek {
		p.peek = false
		return p.tok, nil
	}
	tok, err := p.lex.next()
	if err != nil {
		return token{}, err
	}
	p.tok = tok
	return tok, nil
}

func (p *parser) lookahead() (token, error) {
	if p.peek {
		return p.tok, nil
	}
	tok, err := p.next()
	if err != nil {
		return token{}, err
	}
	p.peek = true
	return tok, nil
}

func isLineEnd(tok token) bool {
	return tok.typ == tokenNewline || tok.typ == tokenEOF
}

// parseLine parses one source line, which can result in a label statement,
// an instruction or directive statement, both or none for empty lines.
func (p *parser) parseLine() ([]Statement, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	switch tok.typ {
	case tokenEOF:
		p.done = true
		return nil, nil
	case tokenNewline:
		return nil, nil
	case tokenIdent:
	default:
		return nil, &SyntaxError{Pos: tok.pos, Cause: fmt.Sprintf("unexpected %s at start of statement", tok.describe())}
	}

	var statements []Statement

	isLabel, err := p.isLabel(tok)
	if err != nil {
		return nil, err
	}
	if isLabel {
		label, err := p.parseLabel(tok)
		if err != nil {
			return nil, err
		}
		statements = append(statements, label)

		tok, err = p.next()
		if err != nil {
			return nil, err
		}
		if isLineEnd(tok) {
			p.done = tok.typ == tokenEOF
			return statements, nil
		}
		if tok.typ != tokenIdent {
			return nil, &SyntaxError{Pos: tok.pos, Cause: fmt.Sprintf("unexpected %s after label", tok.describe())}
		}
		second, err := p.isLabel(tok)
		if err != nil {
			return nil, err
		}
		if second {
			return nil, &SyntaxError{Pos: tok.pos, Cause: "a line can define at most one label"}
		}
	}

	statement, err := p.parseStatement(tok)
	if err != nil {
		return nil, err
	}
	return append(statements, statement), nil
}

// isLabel returns whether the identifier defines a label, either by a leading
// dot or a trailing colon.
func (p *parser) isLabel(tok token) (bool, error) {
	if strings.HasPrefix(tok.text, ".") {
		return true, nil
	}
	next, err := p.lookahead()
	if err != nil {
		return false, err
	}
	return next.typ == tokenColon, nil
}

func (p *parser) parseLabel(tok token) (Statement, error) {
	next, err := p.lookahead()
	if err != nil {
		return Statement{}, err
	}
	if next.typ == tokenColon {
		if _, err := p.next(); err != nil {
			return Statement{}, err
		}
	}

	if err := checkSymbolName(tok); err != nil {
		return Statement{}, err
	}
	return Statement{Kind: LabelStatement, Name: tok.text, Pos: tok.pos}, nil
}

func checkSymbolName(tok token) error {
	bare := strings.TrimPrefix(tok.text, ".")
	if bare == "" {
		return &SyntaxError{Pos: tok.pos, Cause: "missing symbol name"}
	}
	if isa.IsReserved(bare) {
		return &SyntaxError{Pos: tok.pos, Cause: fmt.Sprintf("'%s' is a reserved word and can not be used as symbol name", tok.text)}
	}
	return nil
}

func (p *parser) parseStatement(tok token) (Statement, error) {
	if isa.IsDirective(tok.text) {
		return p.parseDirective(tok)
	}

	args, err := p.parseOperands()
	if err != nil {
		return Statement{}, err
	}
	return Statement{Kind: InstructionStatement, Name: tok.text, Args: args, Pos: tok.pos}, nil
}

func (p *parser) parseDirective(tok token) (Statement, error) {
	statement := Statement{Kind: DirectiveStatement, Name: tok.text, Pos: tok.pos}
	arity := isa.DirectiveArity[tok.text]

	var err error
	switch {
	case tok.text == isa.Define:
		statement.Args, err = p.parseDefine(tok)
	case arity[1] == 1:
		statement.Args, err = p.parseSingleExpression()
	default:
		statement.Args, err = p.parseOperands()
	}
	if err != nil {
		return Statement{}, err
	}

	count := len(statement.Args)
	if count < arity[0] || (arity[1] >= 0 && count > arity[1]) {
		return Statement{}, &SyntaxError{Pos: tok.pos, Cause: arityCause(tok.text, arity, count)}
	}
	return statement, nil
}

func arityCause(name string, arity [2]int, count int) string {
	switch {
	case arity[1] < 0:
		return fmt.Sprintf("directive '%s' expects at least %d argument(s), got %d", name, arity[0], count)
	case arity[0] == arity[1]:
		return fmt.Sprintf("directive '%s' expects %d argument(s), got %d", name, arity[0], count)
	default:
		return fmt.Sprintf("directive '%s' expects %d to %d arguments, got %d", name, arity[0], arity[1], count)
	}
}

// parseDefine parses the name and value expression of a constant definition.
func (p *parser) parseDefine(directive token) ([]Operand, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	if isLineEnd(tok) {
		p.done = tok.typ == tokenEOF
		return nil, nil
	}
	if tok.typ != tokenIdent {
		return nil, &SyntaxError{Pos: tok.pos, Cause: fmt.Sprintf("expected constant name after '%s', got %s", directive.text, tok.describe())}
	}
	if err := checkSymbolName(tok); err != nil {
		return nil, err
	}
	name := Operand{Kind: SymbolRefOperand, Name: tok.text, Pos: tok.pos}

	value, err := p.parseSingleExpression()
	if err != nil {
		return nil, err
	}
	return append([]Operand{name}, value...), nil
}

// parseSingleExpression parses the rest of the line as one expression that can
// use binary operators without enclosing parentheses.
func (p *parser) parseSingleExpression() ([]Operand, error) {
	tok, err := p.lookahead()
	if err != nil {
		return nil, err
	}
	if isLineEnd(tok) {
		return nil, p.endLine()
	}

	expr, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	operand, err := makeOperand(expr)
	if err != nil {
		return nil, err
	}
	if err := p.endLine(); err != nil {
		return nil, err
	}
	return []Operand{operand}, nil
}

// parseOperands parses a comma or whitespace separated operand list until the
// end of the line. Operands containing binary operators need to be put in
// parentheses, "ldi r1 1 -2" are three operands.
func (p *parser) parseOperands() ([]Operand, error) {
	var operands []Operand
	expectOperand := false

	for {
		tok, err := p.lookahead()
		if err != nil {
			return nil, err
		}

		switch {
		case isLineEnd(tok):
			if expectOperand {
				return nil, &SyntaxError{Pos: tok.pos, Cause: "missing operand after ','"}
			}
			return operands, p.endLine()

		case tok.typ == tokenComma:
			if expectOperand || len(operands) == 0 {
				return nil, &SyntaxError{Pos: tok.pos, Cause: "missing operand before ','"}
			}
			if _, err := p.next(); err != nil {
				return nil, err
			}
			expectOperand = true
			continue
		}

		expr, err := p.parseUnary(true)
		if err != nil {
			return nil, err
		}
		operand, err := makeOperand(expr)
		if err != nil {
			return nil, err
		}
		operands = append(operands, operand)
		expectOperand = false

		next, err := p.lookahead()
		if err != nil {
			return nil, err
		}
		// a '-' after an operand starts the next negative operand
		if next.typ == tokenOperator && next.text != "-" {
			if _, ok := precedence[next.text]; ok {
				return nil, &SyntaxError{Pos: next.pos,
					Cause: fmt.Sprintf("unexpected operator '%s', put expressions in parentheses", next.text)}
			}
		}
	}
}

// endLine consumes the end of the statement.
func (p *parser) endLine() error {
	tok, err := p.next()
	if err != nil {
		return err
	}
	switch tok.typ {
	case tokenNewline:
		return nil
	case tokenEOF:
		p.done = true
		return nil
	case tokenRParen:
		return &SyntaxError{Pos: tok.pos, Cause: "unmatched ')'"}
	default:
		return &SyntaxError{Pos: tok.pos, Cause: fmt.Sprintf("unexpected %s at end of statement", tok.describe())}
	}
}

// parseExpr parses a binary expression using precedence climbing.
func (p *parser) parseExpr(minPrecedence int) (Expr, error) {
	left, err := p.parseUnary(false)
	if err != nil {
		return nil, err
	}

	for {
		tok, err := p.lookahead()
		if err != nil {
			return nil, err
		}
		prec, ok := precedence[tok.text]
		if tok.typ != tokenOperator || !ok || prec <= minPrecedence {
			return left, nil
		}
		if _, err := p.next(); err != nil {
			return nil, err
		}

		right, err := p.parseExpr(prec)
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: tok.text, X: left, Y: right, At: left.Pos()}
	}
}

// parseUnary parses prefix operators and a primary expression. Condition
// operators are accepted as symbol names when parsing a top level operand.
func (p *parser) parseUnary(operand bool) (Expr, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}

	switch tok.typ {
	case tokenNumber, tokenChar:
		return &Number{Value: tok.value, At: tok.pos}, nil

	case tokenIdent:
		if index, ok := isa.Register(tok.text); ok {
			return &Register{Index: index, At: tok.pos}, nil
		}
		return &Ident{Name: tok.text, At: tok.pos}, nil

	case tokenLParen:
		expr, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		closing, err := p.next()
		if err != nil {
			return nil, err
		}
		if closing.typ != tokenRParen {
			return nil, &SyntaxError{Pos: tok.pos, Cause: fmt.Sprintf("missing closing ')', got %s", closing.describe())}
		}
		return expr, nil

	case tokenOperator:
		if tok.text == "-" || tok.text == "~" {
			x, err := p.parseUnary(false)
			if err != nil {
				return nil, err
			}
			return &Unary{Op: tok.text, X: x, At: tok.pos}, nil
		}
		if _, ok := conditionOperators[tok.text]; ok && operand {
			return &Ident{Name: tok.text, At: tok.pos}, nil
		}
	}

	return nil, &SyntaxError{Pos: tok.pos, Cause: fmt.Sprintf("unexpected %s in operand", tok.describe())}
}

// makeOperand classifies the expression and rejects registers that are used
// inside of expressions.
func makeOperand(e Expr) (Operand, error) {
	if _, ok := e.(*Register); !ok {
		if pos, found := findRegister(e); found {
			return Operand{}, &SyntaxError{Pos: pos, Cause: "register can not be used in an expression"}
		}
	}
	return newOperand(e, e.Pos()), nil
}

func findRegister(e Expr) (Pos, bool) {
	switch x := e.(type) {
	case *Register:
		return x.At, true
	case *Unary:
		return findRegister(x.X)
	case *Binary:
		if pos, ok := findRegister(x.X); ok {
			return pos, true
		}
		return findRegister(x.Y)
	}
	return Pos{}, false
}
