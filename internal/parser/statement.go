package parser

import (
	"fmt"
	"strings"
)

// Pos is a source position.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Kind defines the type of a statement.
type Kind uint8

const (
	LabelStatement Kind = iota
	DirectiveStatement
	InstructionStatement
)

func (k Kind) String() string {
	switch k {
	case LabelStatement:
		return "label"
	case DirectiveStatement:
		return "directive"
	default:
		return "instruction"
	}
}

// Statement is a parsed source statement. Name contains the label name, the
// directive name or the instruction mnemonic, all lower case.
type Statement struct {
	Kind Kind
	Name string
	Args []Operand
	Pos  Pos
}

func (s Statement) String() string {
	if s.Kind == LabelStatement {
		return s.Name + ":"
	}
	if len(s.Args) == 0 {
		return s.Name
	}
	args := make([]string, len(s.Args))
	for i, arg := range s.Args {
		args[i] = arg.String()
	}
	return s.Name + " " + strings.Join(args, ", ")
}

// OperandKind defines the type of an operand.
type OperandKind uint8

const (
	RegisterOperand OperandKind = iota
	ImmediateOperand
	SymbolRefOperand
	ExpressionOperand
)

func (k OperandKind) String() string {
	switch k {
	case RegisterOperand:
		return "register"
	case ImmediateOperand:
		return "immediate"
	case SymbolRefOperand:
		return "symbol reference"
	default:
		return "expression"
	}
}

// Operand is an argument of an instruction or directive.
type Operand struct {
	Kind  OperandKind
	Value int    // register index or immediate value
	Name  string // referenced symbol name
	Expr  Expr   // expression tree of expression operands
	Pos   Pos
}

// Expression returns the operand as expression tree, register operands
// return nil.
func (o Operand) Expression() Expr {
	switch o.Kind {
	case ImmediateOperand:
		return &Number{Value: o.Value, At: o.Pos}
	case SymbolRefOperand:
		return &Ident{Name: o.Name, At: o.Pos}
	case ExpressionOperand:
		return o.Expr
	default:
		return nil
	}
}

func (o Operand) String() string {
	switch o.Kind {
	case RegisterOperand:
		return fmt.Sprintf("r%d", o.Value)
	case ImmediateOperand:
		return fmt.Sprintf("%d", o.Value)
	case SymbolRefOperand:
		return o.Name
	default:
		return o.Expr.String()
	}
}

// newOperand classifies a parsed expression as operand.
func newOperand(e Expr, pos Pos) Operand {
	switch x := e.(type) {
	case *Number:
		return Operand{Kind: ImmediateOperand, Value: x.Value, Pos: pos}
	case *Register:
		return Operand{Kind: RegisterOperand, Value: x.Index, Pos: pos}
	case *Ident:
		return Operand{Kind: SymbolRefOperand, Name: x.Name, Pos: pos}
	case *Unary:
		if n, ok := x.X.(*Number); ok && x.Op == "-" {
			return Operand{Kind: ImmediateOperand, Value: -n.Value, Pos: pos}
		}
	}
	return Operand{Kind: ExpressionOperand, Expr: e, Pos: pos}
}
