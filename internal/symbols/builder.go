package symbols

import (
	"fmt"
	"slices"

	"github.com/retroenv/retrogolib/set"
	"github.com/tpglitch/BatPU-2-SE/internal/isa"
	"github.com/tpglitch/BatPU-2-SE/internal/parser"
)

// Options controls the symbol table builder.
type Options struct {
	Origin int // start address of the program
	Limit  int // number of addressable words, defaults to the BatPU-2 memory size
}

type constantDefinition struct {
	name string
	expr parser.Expr
	pos  parser.Pos
}

type builder struct {
	builtin *Scope[Symbol]
	labels  *Scope[Symbol]

	definitions *Scope[constantDefinition]
	labelNames  set.Set[string] // all label names, defined or not yet reached by pass 1
	values      map[string]int
	resolved    set.Set[string]
	visiting    []string
}

// Build creates the symbol table of the statements. Pass 1 assigns addresses
// to all labels, pass 2 evaluates all constants.
func Build(statements []parser.Statement, opts Options) (*Table, error) {
	if opts.Limit == 0 {
		opts.Limit = isa.MemorySize
	}

	b := &builder{
		builtin:     newBuiltinScope(),
		labels:      NewScope[Symbol](),
		definitions: NewScope[constantDefinition](),
		labelNames:  set.New[string](),
		values:      make(map[string]int),
		resolved:    set.New[string](),
	}

	if err := b.collectDefinitions(statements); err != nil {
		return nil, err
	}

	layout, end, err := b.assignAddresses(statements, opts)
	if err != nil {
		return nil, fmt.Errorf("pass 1: %w", err)
	}

	program, err := b.resolveConstants()
	if err != nil {
		return nil, fmt.Errorf("pass 2: %w", err)
	}

	return &Table{
		builtin: b.builtin,
		program: program,
		layout:  layout,
		origin:  opts.Origin,
		end:     end,
		limit:   opts.Limit,
	}, nil
}

// collectDefinitions collects all constant definitions before the passes so
// that constants can be used before their definition. Label names are
// collected as well, a label shadows a builtin of the same name everywhere.
func (b *builder) collectDefinitions(statements []parser.Statement) error {
	for _, statement := range statements {
		if statement.Kind == parser.LabelStatement {
			b.labelNames.Add(statement.Name)
			continue
		}
		if statement.Kind != parser.DirectiveStatement || statement.Name != isa.Define {
			continue
		}

		name := statement.Args[0].Name
		definition := constantDefinition{
			name: name,
			expr: statement.Args[1].Expression(),
			pos:  statement.Pos,
		}
		if previous, ok := b.definitions.Get(name); ok {
			return &DuplicateSymbolError{Name: name, Pos: statement.Pos, Previous: previous.pos}
		}
		b.definitions.Add(name, definition)
	}
	return nil
}

// assignAddresses is pass 1, it walks all statements with a running address
// counter and defines a label symbol for every label statement.
func (b *builder) assignAddresses(statements []parser.Statement, opts Options) ([]int, int, error) {
	counter, err := NewCounter(opts.Origin, opts.Limit)
	if err != nil {
		return nil, 0, err
	}

	layout := make([]int, len(statements))
	for i, statement := range statements {
		layout[i] = counter.Address()

		if statement.Kind == parser.LabelStatement {
			if err := b.defineLabel(statement, counter.Address()); err != nil {
				return nil, 0, err
			}
			continue
		}

		if err := counter.Step(statement, b.resolve); err != nil {
			return nil, 0, err
		}
	}
	return layout, counter.Address(), nil
}

func (b *builder) defineLabel(statement parser.Statement, address int) error {
	if previous, ok := b.labels.Get(statement.Name); ok {
		return &DuplicateSymbolError{Name: statement.Name, Pos: statement.Pos, Previous: previous.Pos}
	}
	if definition, ok := b.definitions.Get(statement.Name); ok {
		return &DuplicateSymbolError{Name: statement.Name, Pos: statement.Pos, Previous: definition.pos}
	}

	b.labels.Add(statement.Name, Symbol{
		Name:  statement.Name,
		Kind:  Label,
		Value: address,
		Pos:   statement.Pos,
	})
	return nil
}

// resolveConstants is pass 2, it evaluates all constants in definition order and
// returns the program scope containing labels and constants.
func (b *builder) resolveConstants() (*Scope[Symbol], error) {
	program := NewScope[Symbol]()
	for _, label := range b.labels.Ordered() {
		program.Add(label.Name, label)
	}

	for _, definition := range b.definitions.Ordered() {
		value, err := b.evaluate(definition.name, definition.pos)
		if err != nil {
			return nil, err
		}
		program.Add(definition.name, Symbol{
			Name:  definition.name,
			Kind:  Constant,
			Value: value,
			Pos:   definition.pos,
		})
	}
	return program, nil
}

// resolve returns the value of a symbol. During pass 1 only labels that are
// defined before the referencing statement are known, a reference to a later
// label is undefined even if a builtin has the same name.
func (b *builder) resolve(name string, pos parser.Pos) (int, error) {
	if label, ok := b.labels.Get(name); ok {
		return label.Value, nil
	}
	if b.labelNames.Contains(name) {
		return 0, &UndefinedSymbolError{Name: name, Pos: pos}
	}
	if b.definitions.Has(name) {
		return b.evaluate(name, pos)
	}
	if builtin, ok := b.builtin.Get(name); ok {
		return builtin.Value, nil
	}
	return 0, &UndefinedSymbolError{Name: name, Pos: pos}
}

// evaluate returns the value of a constant. The visiting stack detects
// circular definitions, resolved values are cached.
func (b *builder) evaluate(name string, pos parser.Pos) (int, error) {
	if b.resolved.Contains(name) {
		return b.values[name], nil
	}

	if index := slices.Index(b.visiting, name); index >= 0 {
		cycle := append(slices.Clone(b.visiting[index:]), name)
		return 0, &CircularDefinitionError{Cycle: cycle, Pos: pos}
	}

	definition, _ := b.definitions.Get(name)
	b.visiting = append(b.visiting, name)
	value, err := parser.Eval(definition.expr, b.resolve)
	b.visiting = b.visiting[:len(b.visiting)-1]
	if err != nil {
		return 0, err
	}

	b.values[name] = value
	b.resolved.Add(name)
	return value, nil
}
