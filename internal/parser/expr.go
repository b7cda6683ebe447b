package parser

import (
	"fmt"
	"math"
)

// Expr is a node of an operand expression tree.
type Expr interface {
	Pos() Pos
	String() string
}

// Number is a numeric or character literal.
type Number struct {
	Value int
	At    Pos
}

// Ident references a symbol.
type Ident struct {
	Name string
	At   Pos
}

// Register references a register, it is only valid as a complete operand.
type Register struct {
	Index int
	At    Pos
}

// Unary is a prefix operator expression.
type Unary struct {
	Op string
	X  Expr
	At Pos
}

// Binary is an infix operator expression.
type Binary struct {
	Op   string
	X, Y Expr
	At   Pos
}

func (n *Number) Pos() Pos   { return n.At }
func (n *Ident) Pos() Pos    { return n.At }
func (n *Register) Pos() Pos { return n.At }
func (n *Unary) Pos() Pos    { return n.At }
func (n *Binary) Pos() Pos   { return n.At }

func (n *Number) String() string   { return fmt.Sprintf("%d", n.Value) }
func (n *Ident) String() string    { return n.Name }
func (n *Register) String() string { return fmt.Sprintf("r%d", n.Index) }
func (n *Unary) String() string    { return n.Op + n.X.String() }
func (n *Binary) String() string {
	return "(" + n.X.String() + " " + n.Op + " " + n.Y.String() + ")"
}

// EvalError is returned for expressions that can not be evaluated, like a
// modulo by zero.
type EvalError struct {
	Pos   Pos
	Cause string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Cause)
}

// Resolver returns the value of a referenced symbol.
type Resolver func(name string, pos Pos) (int, error)

// Eval evaluates the expression, symbols are resolved using the passed resolver.
func Eval(e Expr, resolve Resolver) (int, error) {
	switch x := e.(type) {
	case *Number:
		return x.Value, nil

	case *Ident:
		return resolve(x.Name, x.At)

	case *Register:
		return 0, &EvalError{Pos: x.At, Cause: "register can not be used as value"}

	case *Unary:
		value, err := Eval(x.X, resolve)
		if err != nil {
			return 0, err
		}
		if x.Op == "~" {
			return ^value, nil
		}
		return checkRange(x.At, -int64(value))

	case *Binary:
		left, err := Eval(x.X, resolve)
		if err != nil {
			return 0, err
		}
		right, err := Eval(x.Y, resolve)
		if err != nil {
			return 0, err
		}
		return evalBinary(x, left, right)

	default:
		return 0, fmt.Errorf("unsupported expression type %T", e)
	}
}

// checkRange limits all values to the 32 bit range of number literals. Both
// operands are inside that range, so the 64 bit results can not wrap.
func checkRange(pos Pos, value int64) (int, error) {
	if value < math.MinInt32 || value > math.MaxInt32 {
		return 0, &EvalError{Pos: pos, Cause: fmt.Sprintf("overflow, value %d exceeds 32 bits", value)}
	}
	return int(value), nil
}

func evalBinary(x *Binary, left, right int) (int, error) {
	switch x.Op {
	case "+":
		return checkRange(x.At, int64(left)+int64(right))
	case "-":
		return checkRange(x.At, int64(left)-int64(right))
	case "*":
		return checkRange(x.At, int64(left)*int64(right))
	case "%":
		if right == 0 {
			return 0, &EvalError{Pos: x.At, Cause: "modulo by zero"}
		}
		return left % right, nil
	case "&":
		return left & right, nil
	case "|":
		return left | right, nil
	case "^":
		return left ^ right, nil
	case "<<", ">>":
		if right < 0 || right > 31 {
			return 0, &EvalError{Pos: x.At, Cause: fmt.Sprintf("invalid shift count %d", right)}
		}
		if x.Op == "<<" {
			return checkRange(x.At, int64(left)<<right)
		}
		return left >> right, nil
	default:
		return 0, &EvalError{Pos: x.At, Cause: fmt.Sprintf("unsupported operator '%s'", x.Op)}
	}
}

// Refs returns the names of all symbols referenced by the expression in
// order of appearance.
func Refs(e Expr) []string {
	var names []string
	var walk func(Expr)
	walk = func(e Expr) {
		switch x := e.(type) {
		case *Ident:
			names = append(names, x.Name)
		case *Unary:
			walk(x.X)
		case *Binary:
			walk(x.X)
			walk(x.Y)
		}
	}
	walk(e)
	return names
}
