package encoder

import (
	"fmt"

	"github.com/tpglitch/BatPU-2-SE/internal/parser"
)

// UnknownMnemonicError is returned for an instruction that is not part of the
// instruction set.
type UnknownMnemonicError struct {
	Mnemonic string
	Pos      parser.Pos
}

func (e *UnknownMnemonicError) Error() string {
	return fmt.Sprintf("%s: unknown mnemonic '%s'", e.Pos, e.Mnemonic)
}

// ArityError is returned when an instruction has the wrong number of operands.
type ArityError struct {
	Mnemonic string
	Min, Max int
	Got      int
	Pos      parser.Pos
}

func (e *ArityError) Error() string {
	if e.Min == e.Max {
		return fmt.Sprintf("%s: '%s' expects %d operand(s), got %d", e.Pos, e.Mnemonic, e.Min, e.Got)
	}
	return fmt.Sprintf("%s: '%s' expects %d to %d operands, got %d", e.Pos, e.Mnemonic, e.Min, e.Max, e.Got)
}

// OperandKindError is returned when an operand can not be used for a field,
// like a number for a register field.
type OperandKindError struct {
	Mnemonic string
	Field    string
	Kind     parser.OperandKind
	Pos      parser.Pos
}

func (e *OperandKindError) Error() string {
	return fmt.Sprintf("%s: '%s' field %s does not accept a %s operand", e.Pos, e.Mnemonic, e.Field, e.Kind)
}

// OperandRangeError is returned for an operand value that does not fit into
// its field.
type OperandRangeError struct {
	Mnemonic string
	Field    string
	Min, Max int
	Value    int
	Pos      parser.Pos
}

func (e *OperandRangeError) Error() string {
	return fmt.Sprintf("%s: '%s' %s value %d out of range %d..%d", e.Pos, e.Mnemonic, e.Field, e.Value, e.Min, e.Max)
}

// AddressDriftError signals that the encoder computed a different address for a
// statement than pass 1 of the symbol table builder did.
type AddressDriftError struct {
	Index    int
	Expected int
	Actual   int
	Pos      parser.Pos
}

func (e *AddressDriftError) Error() string {
	return fmt.Sprintf("%s: internal error: address drift at statement %d, pass 1 assigned %d but encoder computed %d",
		e.Pos, e.Index, e.Expected, e.Actual)
}
