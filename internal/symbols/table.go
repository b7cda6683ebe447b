// Package symbols builds the symbol table of an assembly program in two passes.
package symbols

import (
	"github.com/tpglitch/BatPU-2-SE/internal/isa"
	"github.com/tpglitch/BatPU-2-SE/internal/parser"
)

// Kind defines the type of a symbol.
type Kind uint8

const (
	Label Kind = iota
	Constant
	Builtin
)

func (k Kind) String() string {
	switch k {
	case Label:
		return "label"
	case Constant:
		return "constant"
	default:
		return "builtin"
	}
}

// Symbol is a resolved symbol.
type Symbol struct {
	Name  string
	Kind  Kind
	Value int
	Pos   parser.Pos // definition position, empty for builtins
}

// Table is the read-only symbol table of a program. Program symbols shadow
// builtin symbols of the same name.
type Table struct {
	builtin *Scope[Symbol]
	program *Scope[Symbol]

	layout []int // address of every statement before it was processed
	origin int
	end    int
	limit  int
}

func newBuiltinScope() *Scope[Symbol] {
	scope := NewScope[Symbol]()
	for _, builtin := range isa.Builtins() {
		scope.Add(builtin.Name, Symbol{Name: builtin.Name, Kind: Builtin, Value: builtin.Value})
	}
	return scope
}

// Get returns the symbol with the given name.
func (t *Table) Get(name string) (Symbol, bool) {
	if sym, ok := t.program.Get(name); ok {
		return sym, true
	}
	return t.builtin.Get(name)
}

// Lookup returns the value of the symbol, pos is the position of the
// referencing statement that is used for the error.
func (t *Table) Lookup(name string, pos parser.Pos) (int, error) {
	sym, ok := t.Get(name)
	if !ok {
		return 0, &UndefinedSymbolError{Name: name, Pos: pos}
	}
	return sym.Value, nil
}

// Resolver returns a resolver that looks up symbols in the table.
func (t *Table) Resolver() parser.Resolver {
	return t.Lookup
}

// Len returns the number of program symbols.
func (t *Table) Len() int {
	return t.program.Len()
}

// Export returns all program symbols ordered by value, symbols with the same
// value are ordered by name.
func (t *Table) Export() []Symbol {
	return t.program.SortedBy(func(a, b Symbol) bool {
		if a.Value != b.Value {
			return a.Value < b.Value
		}
		return a.Name < b.Name
	})
}

// Address returns the address assigned in pass 1 to the statement at the
// given index.
func (t *Table) Address(index int) (int, bool) {
	if index < 0 || index >= len(t.layout) {
		return 0, false
	}
	return t.layout[index], true
}

// Origin returns the start address of the program.
func (t *Table) Origin() int {
	return t.origin
}

// End returns the address following the last statement.
func (t *Table) End() int {
	return t.end
}

// Limit returns the number of addressable words.
func (t *Table) Limit() int {
	return t.limit
}
