package symbols

import (
	"fmt"
	"strings"

	"github.com/tpglitch/BatPU-2-SE/internal/parser"
)

// DuplicateSymbolError is returned when a symbol name is defined twice in the
// same scope.
type DuplicateSymbolError struct {
	Name     string
	Pos      parser.Pos
	Previous parser.Pos
}

func (e *DuplicateSymbolError) Error() string {
	return fmt.Sprintf("%s: symbol '%s' already defined at %s", e.Pos, e.Name, e.Previous)
}

// UndefinedSymbolError is returned when a referenced symbol is not defined.
type UndefinedSymbolError struct {
	Name string
	Pos  parser.Pos
}

func (e *UndefinedSymbolError) Error() string {
	return fmt.Sprintf("%s: undefined symbol '%s'", e.Pos, e.Name)
}

// CircularDefinitionError is returned when constants depend on each other.
type CircularDefinitionError struct {
	Cycle []string // names of the constants forming the cycle, first name repeated at the end
	Pos   parser.Pos
}

func (e *CircularDefinitionError) Error() string {
	return fmt.Sprintf("%s: circular constant definition %s", e.Pos, strings.Join(e.Cycle, " -> "))
}

// MemoryOverflowError is returned when the address counter moves past the end
// of the instruction memory.
type MemoryOverflowError struct {
	Address int
	Limit   int
	Pos     parser.Pos
}

func (e *MemoryOverflowError) Error() string {
	return fmt.Sprintf("%s: address %d exceeds the instruction memory of %d words", e.Pos, e.Address, e.Limit)
}

// OriginError is returned for an origin directive with an invalid target.
type OriginError struct {
	Target  int
	Current int
	Pos     parser.Pos
	Cause   string
}

func (e *OriginError) Error() string {
	return fmt.Sprintf("%s: invalid address %d at address %d: %s", e.Pos, e.Target, e.Current, e.Cause)
}

// DirectiveArgumentError is returned for an align or reserve directive with an
// invalid argument.
type DirectiveArgumentError struct {
	Directive string
	Value     int
	Pos       parser.Pos
	Cause     string
}

func (e *DirectiveArgumentError) Error() string {
	return fmt.Sprintf("%s: invalid '%s' argument %d: %s", e.Pos, e.Directive, e.Value, e.Cause)
}
