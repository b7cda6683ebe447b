package symbols

import (
	"fmt"

	"github.com/tpglitch/BatPU-2-SE/internal/isa"
	"github.com/tpglitch/BatPU-2-SE/internal/parser"
)

// Counter is the running address counter. Pass 1 and the encoder step the same
// counter type over the statements so that both compute identical addresses.
type Counter struct {
	address int
	limit   int
	emitted bool
}

// NewCounter returns a counter starting at the origin. The limit is the number
// of addressable words.
func NewCounter(origin, limit int) (*Counter, error) {
	if origin < 0 || origin > limit {
		return nil, &OriginError{Target: origin, Current: 0, Cause: fmt.Sprintf("origin outside of memory 0..%d", limit)}
	}
	return &Counter{
		address: origin,
		limit:   limit,
	}, nil
}

// Address returns the current address.
func (c *Counter) Address() int {
	return c.address
}

// Width returns the number of address units that the statement emits. Widths
// only depend on the statement shape, never on operand values.
func Width(statement parser.Statement) int {
	switch statement.Kind {
	case parser.InstructionStatement:
		if shape, ok := isa.Lookup(statement.Name); ok {
			return shape.Width
		}
		return isa.InstructionWidth
	case parser.DirectiveStatement:
		if statement.Name == isa.Dw {
			return len(statement.Args)
		}
	}
	return 0
}

// Step advances the counter over the statement. Arguments of directives that
// move the counter are evaluated using the resolver.
func (c *Counter) Step(statement parser.Statement, resolve parser.Resolver) error {
	if statement.Kind == parser.DirectiveStatement {
		switch statement.Name {
		case isa.Org:
			return c.org(statement, resolve)
		case isa.Align:
			return c.align(statement, resolve)
		case isa.Reserve:
			return c.reserve(statement, resolve)
		}
	}

	width := Width(statement)
	if width == 0 {
		return nil
	}
	return c.advance(statement, width, true)
}

func (c *Counter) advance(statement parser.Statement, units int, emit bool) error {
	next := c.address + units
	if next > c.limit {
		return &MemoryOverflowError{Address: next - 1, Limit: c.limit, Pos: statement.Pos}
	}
	c.address = next
	if emit {
		c.emitted = true
	}
	return nil
}

func argument(statement parser.Statement, resolve parser.Resolver) (int, error) {
	value, err := parser.Eval(statement.Args[0].Expression(), resolve)
	if err != nil {
		return 0, fmt.Errorf("evaluating '%s' argument: %w", statement.Name, err)
	}
	return value, nil
}

// org moves the counter. Once a word is emitted it can only move forward, gaps
// left by earlier org or reserve directives stay unfilled.
func (c *Counter) org(statement parser.Statement, resolve parser.Resolver) error {
	target, err := argument(statement, resolve)
	if err != nil {
		return err
	}

	switch {
	case target < 0:
		return &OriginError{Target: target, Current: c.address, Pos: statement.Pos, Cause: "negative origin"}
	case target > c.limit:
		return &MemoryOverflowError{Address: target, Limit: c.limit, Pos: statement.Pos}
	case c.emitted && target < c.address:
		return &OriginError{Target: target, Current: c.address, Pos: statement.Pos,
			Cause: "origin can not move backwards after words were emitted"}
	}

	c.address = target
	return nil
}

func (c *Counter) align(statement parser.Statement, resolve parser.Resolver) error {
	alignment, err := argument(statement, resolve)
	if err != nil {
		return err
	}
	if alignment < 1 || alignment&(alignment-1) != 0 {
		return &DirectiveArgumentError{Directive: statement.Name, Value: alignment, Pos: statement.Pos,
			Cause: "alignment has to be a positive power of two"}
	}

	aligned := (c.address + alignment - 1) &^ (alignment - 1)
	return c.advance(statement, aligned-c.address, false)
}

func (c *Counter) reserve(statement parser.Statement, resolve parser.Resolver) error {
	count, err := argument(statement, resolve)
	if err != nil {
		return err
	}
	if count < 0 {
		return &DirectiveArgumentError{Directive: statement.Name, Value: count, Pos: statement.Pos,
			Cause: "reserved word count can not be negative"}
	}
	return c.advance(statement, count, false)
}
