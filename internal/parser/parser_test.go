package parser

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestParseStatements(t *testing.T) {
	src := `
; BatPU style program
define max 10
.loop ldi r1, max   // load
      adi r1 -1
loop2: brh ne .loop
       jmp (loop2 + 1)
dw 1, 0x10 0b11 "a"
`
	statements, err := ParseAll("test.as", src)
	assert.NoError(t, err)
	assert.Len(t, statements, 8)

	assert.Equal(t, DirectiveStatement, statements[0].Kind)
	assert.Equal(t, "define", statements[0].Name)
	assert.Equal(t, "max", statements[0].Args[0].Name)
	assert.Equal(t, ImmediateOperand, statements[0].Args[1].Kind)
	assert.Equal(t, 10, statements[0].Args[1].Value)

	assert.Equal(t, LabelStatement, statements[1].Kind)
	assert.Equal(t, ".loop", statements[1].Name)
	assert.Equal(t, 4, statements[1].Pos.Line)

	ldi := statements[2]
	assert.Equal(t, InstructionStatement, ldi.Kind)
	assert.Equal(t, "ldi", ldi.Name)
	assert.Len(t, ldi.Args, 2)
	assert.Equal(t, RegisterOperand, ldi.Args[0].Kind)
	assert.Equal(t, 1, ldi.Args[0].Value)
	assert.Equal(t, SymbolRefOperand, ldi.Args[1].Kind)
	assert.Equal(t, "max", ldi.Args[1].Name)

	adi := statements[3]
	assert.Equal(t, ImmediateOperand, adi.Args[1].Kind)
	assert.Equal(t, -1, adi.Args[1].Value)

	assert.Equal(t, "loop2", statements[4].Name)
	assert.Equal(t, "ne", statements[5].Args[0].Name)

	jmp := statements[6]
	assert.Equal(t, ExpressionOperand, jmp.Args[0].Kind)
	assert.Equal(t, []string{"loop2"}, Refs(jmp.Args[0].Expr))

	dw := statements[7]
	assert.Len(t, dw.Args, 4)
	assert.Equal(t, 16, dw.Args[1].Value)
	assert.Equal(t, 3, dw.Args[2].Value)
	assert.Equal(t, 1, dw.Args[3].Value)
}

func TestParseNegativeOperands(t *testing.T) {
	tests := []struct {
		src   string
		count int
		value int
	}{
		{"ldi r1 -128", 2, -128},
		{"adi r2 -1", 2, -1},
		{"lod r1 r2 -1", 3, -1},
		{"lod r1, r2, -8", 3, -8},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			statements, err := ParseAll("", tt.src)
			assert.NoError(t, err)
			assert.Len(t, statements, 1)

			args := statements[0].Args
			assert.Len(t, args, tt.count)
			last := args[len(args)-1]
			assert.Equal(t, ImmediateOperand, last.Kind)
			assert.Equal(t, tt.value, last.Value)
		})
	}
}

func TestParseCaseInsensitive(t *testing.T) {
	statements, err := ParseAll("", "START: LDI R0, 5\n  JMP Start")
	assert.NoError(t, err)
	assert.Len(t, statements, 3)
	assert.Equal(t, "start", statements[0].Name)
	assert.Equal(t, "ldi", statements[1].Name)
	assert.Equal(t, "start", statements[2].Args[0].Name)
}

func TestParseConditionOperators(t *testing.T) {
	statements, err := ParseAll("", "brh >= .x\nbrh != .x\nbrh < .x\n.x hlt")
	assert.NoError(t, err)
	assert.Equal(t, ">=", statements[0].Args[0].Name)
	assert.Equal(t, "!=", statements[1].Args[0].Name)
	assert.Equal(t, "<", statements[2].Args[0].Name)
}

func TestParseExpressionPrecedence(t *testing.T) {
	statements, err := ParseAll("", "define x 1 + 2 * 3 << 1 | 1")
	assert.NoError(t, err)

	value, err := Eval(statements[0].Args[1].Expression(), func(string, Pos) (int, error) {
		return 0, errors.New("unexpected symbol")
	})
	assert.NoError(t, err)
	assert.Equal(t, (1+2*3)<<1|1, value)
}

func TestParseRestartable(t *testing.T) {
	seq := Parse("", "nop\nhlt\n")

	var first, second []string
	for statement, err := range seq {
		assert.NoError(t, err)
		first = append(first, statement.Name)
	}
	for statement, err := range seq {
		assert.NoError(t, err)
		second = append(second, statement.Name)
	}
	assert.Equal(t, []string{"nop", "hlt"}, first)
	assert.Equal(t, first, second)
}

//nolint:funlen // test functions can be long
func TestParseSyntaxErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		line   int
		column int
		cause  string
	}{
		{
			name:   "unterminated parenthesis",
			src:    "jmp (start + 1\n",
			line:   1,
			column: 5,
			cause:  "missing closing ')'",
		},
		{
			name:   "unterminated character",
			src:    "ldi r1 \"a\n",
			line:   1,
			column: 8,
			cause:  "unterminated character literal",
		},
		{
			name:   "two labels on one line",
			src:    "a: b: nop",
			line:   1,
			column: 4,
			cause:  "at most one label",
		},
		{
			name:   "reserved label name",
			src:    "\nadd: nop",
			line:   2,
			column: 1,
			cause:  "reserved word",
		},
		{
			name:   "register label name",
			src:    ".r3 nop",
			line:   1,
			column: 1,
			cause:  "reserved word",
		},
		{
			name:   "directive arity",
			src:    "org 1\norg",
			line:   2,
			column: 1,
			cause:  "expects 1 argument",
		},
		{
			name:   "unparenthesized expression",
			src:    "ldi r1 1 + 2",
			line:   1,
			column: 10,
			cause:  "put expressions in parentheses",
		},
		{
			name:   "register in expression",
			src:    "ldi r1 (r2 + 1)",
			line:   1,
			column: 9,
			cause:  "register can not be used",
		},
		{
			name:   "dangling comma",
			src:    "add r1, r2,",
			line:   1,
			column: 12,
			cause:  "missing operand",
		},
		{
			name:   "invalid number",
			src:    "ldi r1 12ab",
			line:   1,
			column: 8,
			cause:  "invalid number",
		},
		{
			name:   "unknown character",
			src:    "ldi r1 $5",
			line:   1,
			column: 8,
			cause:  "unexpected character",
		},
		{
			name:   "unsupported display character",
			src:    "ldi r1 '@'",
			line:   1,
			column: 8,
			cause:  "unsupported display character",
		},
		{
			name:   "unmatched closing parenthesis",
			src:    "org 5)",
			line:   1,
			column: 6,
			cause:  "unmatched ')'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAll("", tt.src)
			assert.Error(t, err)

			var syntaxErr *SyntaxError
			assert.True(t, errors.As(err, &syntaxErr))
			assert.Equal(t, tt.line, syntaxErr.Pos.Line)
			assert.Equal(t, tt.column, syntaxErr.Pos.Column)
			assert.ErrorContains(t, err, tt.cause)
		})
	}
}

func TestParseCommentsAndBlankLines(t *testing.T) {
	src := "\n\n   # only a comment\n/ another\nnop ; trailing\n\n"
	statements, err := ParseAll("", src)
	assert.NoError(t, err)
	assert.Len(t, statements, 1)
	assert.Equal(t, 5, statements[0].Pos.Line)
}

func TestEvalErrors(t *testing.T) {
	resolve := func(string, Pos) (int, error) { return 0, nil }

	tests := []struct {
		src  string
		want string
	}{
		{"define a 1 % 0", "modulo by zero"},
		{"define b 1 << 40", "invalid shift count"},
		{"define c 0x40000000 * 0x40000000 * 16 + 5", "overflow"},
		{"define d 0x7fffffff + 1", "overflow"},
		{"define e -0x7fffffff - 2", "overflow"},
		{"define f 1 << 31", "overflow"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			statements, err := ParseAll("", tt.src)
			assert.NoError(t, err)

			_, err = Eval(statements[0].Args[1].Expression(), resolve)
			var evalErr *EvalError
			assert.True(t, errors.As(err, &evalErr))
			assert.ErrorContains(t, err, tt.want)
		})
	}

	statements, err := ParseAll("", "define g 0x7fffffff\ndefine h -0x7fffffff - 1")
	assert.NoError(t, err)
	for _, statement := range statements {
		_, err = Eval(statement.Args[1].Expression(), resolve)
		assert.NoError(t, err)
	}
}
