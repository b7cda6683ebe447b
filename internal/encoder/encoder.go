// Package encoder encodes parsed statements into BatPU-2 machine code words.
package encoder

import (
	"context"
	"fmt"
	"runtime"

	"github.com/tpglitch/BatPU-2-SE/internal/isa"
	"github.com/tpglitch/BatPU-2-SE/internal/parser"
	"github.com/tpglitch/BatPU-2-SE/internal/program"
	"github.com/tpglitch/BatPU-2-SE/internal/symbols"
	"golang.org/x/sync/errgroup"
)

// Options controls the encoder.
type Options struct {
	Workers int // number of statements encoded in parallel, defaults to the CPU count
}

// job is a statement that emits words.
type job struct {
	address   int
	statement parser.Statement
}

// Assemble encodes all instruction and data statements. The symbol table has to
// be built from the same statements. The result is ordered by address.
func Assemble(ctx context.Context, statements []parser.Statement, table *symbols.Table, opts Options) ([]program.Word, error) {
	jobs, err := layout(statements, table)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([][]program.Word, len(jobs))
	errs := make([]error, len(jobs))
	labelTargets := labelAddresses(statements, table)

	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(workers)
	for i, jb := range jobs {
		grp.Go(func() error {
			if err := grpCtx.Err(); err != nil {
				return err
			}
			results[i], errs[i] = encodeStatement(jb, table, labelTargets)
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, fmt.Errorf("encoding statements: %w", err)
	}

	// report the error of the first failing statement to stay deterministic
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	var words []program.Word
	for _, result := range results {
		words = append(words, result...)
	}
	return words, nil
}

// layout steps the address counter over all statements the same way pass 1
// does and verifies that every statement gets the address of pass 1.
func layout(statements []parser.Statement, table *symbols.Table) ([]job, error) {
	counter, err := symbols.NewCounter(table.Origin(), table.Limit())
	if err != nil {
		return nil, err
	}

	var jobs []job
	for i, statement := range statements {
		address := counter.Address()
		expected, ok := table.Address(i)
		if !ok || expected != address {
			return nil, &AddressDriftError{Index: i, Expected: expected, Actual: address, Pos: statement.Pos}
		}

		if statement.Kind == parser.LabelStatement {
			continue
		}
		if err := counter.Step(statement, table.Resolver()); err != nil {
			return nil, err
		}
		if symbols.Width(statement) > 0 {
			jobs = append(jobs, job{address: address, statement: statement})
		}
	}

	if counter.Address() != table.End() {
		return nil, &AddressDriftError{Index: len(statements), Expected: table.End(), Actual: counter.Address()}
	}
	return jobs, nil
}

func labelAddresses(statements []parser.Statement, table *symbols.Table) map[int]struct{} {
	targets := make(map[int]struct{})
	for i, statement := range statements {
		if statement.Kind != parser.LabelStatement {
			continue
		}
		if address, ok := table.Address(i); ok {
			targets[address] = struct{}{}
		}
	}
	return targets
}

func encodeStatement(jb job, table *symbols.Table, labelTargets map[int]struct{}) ([]program.Word, error) {
	var words []program.Word
	var err error
	if jb.statement.Kind == parser.DirectiveStatement {
		words, err = encodeData(jb, table)
	} else {
		var word program.Word
		word, err = encodeInstruction(jb, table)
		words = []program.Word{word}
	}
	if err != nil {
		return nil, err
	}

	for i := range words {
		if _, ok := labelTargets[words[i].Address]; ok {
			words[i].SetType(program.LabelTarget)
		}
	}
	return words, nil
}

func encodeData(jb job, table *symbols.Table) ([]program.Word, error) {
	words := make([]program.Word, 0, len(jb.statement.Args))
	for i, arg := range jb.statement.Args {
		value, err := resolveField(jb.statement.Name, isa.DataWord, arg, table)
		if err != nil {
			return nil, err
		}
		words = append(words, program.Word{
			Address: jb.address + i,
			Width:   1,
			Value:   isa.DataWord.Pack(value),
			Type:    program.DataWord,
			Pos:     arg.Pos,
		})
	}
	return words, nil
}

func encodeInstruction(jb job, table *symbols.Table) (program.Word, error) {
	statement := jb.statement
	shape, ok := isa.Lookup(statement.Name)
	if !ok {
		return program.Word{}, &UnknownMnemonicError{Mnemonic: statement.Name, Pos: statement.Pos}
	}

	lower, upper := shape.Arity()
	if len(statement.Args) < lower || len(statement.Args) > upper {
		return program.Word{}, &ArityError{Mnemonic: shape.Name, Min: lower, Max: upper, Got: len(statement.Args), Pos: statement.Pos}
	}

	value := shape.Encode()
	for _, op := range shape.Operands {
		fieldValue := op.Fixed
		if op.Index >= 0 && op.Index < len(statement.Args) {
			var err error
			fieldValue, err = resolveField(shape.Name, op.Field, statement.Args[op.Index], table)
			if err != nil {
				return program.Word{}, err
			}
		}
		value |= op.Field.Pack(fieldValue)
	}

	return program.Word{
		Address: jb.address,
		Width:   shape.Width,
		Value:   value,
		Type:    program.InstructionWord,
		Pos:     statement.Pos,
	}, nil
}

// resolveField returns the validated value of the operand for the field.
func resolveField(mnemonic string, field isa.Field, operand parser.Operand, table *symbols.Table) (int, error) {
	isRegister := operand.Kind == parser.RegisterOperand
	if (field.Kind == isa.RegisterField) != isRegister {
		return 0, &OperandKindError{Mnemonic: mnemonic, Field: field.Name, Kind: operand.Kind, Pos: operand.Pos}
	}

	value := operand.Value
	if !isRegister {
		var err error
		value, err = parser.Eval(operand.Expression(), table.Resolver())
		if err != nil {
			return 0, err
		}
	}

	if value < field.Min || value > field.Max {
		return 0, &OperandRangeError{
			Mnemonic: mnemonic,
			Field:    field.Name,
			Min:      field.Min,
			Max:      field.Max,
			Value:    value,
			Pos:      operand.Pos,
		}
	}
	return value, nil
}
