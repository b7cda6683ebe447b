// Package pipeline orchestrates the assembler workflow stages.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrogolib/log"
	"github.com/tpglitch/BatPU-2-SE/internal/app"
	"github.com/tpglitch/BatPU-2-SE/internal/detector"
	"github.com/tpglitch/BatPU-2-SE/internal/encoder"
	"github.com/tpglitch/BatPU-2-SE/internal/loader"
	"github.com/tpglitch/BatPU-2-SE/internal/options"
	"github.com/tpglitch/BatPU-2-SE/internal/parser"
	"github.com/tpglitch/BatPU-2-SE/internal/program"
	"github.com/tpglitch/BatPU-2-SE/internal/schematic"
	"github.com/tpglitch/BatPU-2-SE/internal/symbols"
	"github.com/tpglitch/BatPU-2-SE/internal/verification"
	"github.com/tpglitch/BatPU-2-SE/internal/writer"
)

// Pipeline orchestrates the complete assembler workflow.
type Pipeline struct {
	logger   *log.Logger
	detector *detector.Detector
	loader   *loader.Loader
	dump     io.Writer // destination of the debug dump
}

// New creates a new assembler pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger:   logger,
		detector: detector.New(logger),
		loader:   loader.New(),
		dump:     os.Stderr,
	}
}

// Execute runs the complete assembler pipeline.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program, asmOpts options.Assembler, writer io.Writer) (*program.Program, error) {
	src, err := p.loader.Load(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("loading source: %w", err)
	}

	return p.ExecuteWithSource(ctx, opts.Input, src, opts, asmOpts, writer)
}

// ExecuteWithSource runs the assembler pipeline with source code that is already in memory.
// This is useful for testing and programmatic usage.
func (p *Pipeline) ExecuteWithSource(ctx context.Context, name, src string, opts options.Program,
	asmOpts options.Assembler, output io.Writer) (*program.Program, error) {

	statements, err := parser.ParseAll(name, src)
	if err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}

	table, err := symbols.Build(statements, symbols.Options{Origin: asmOpts.Origin})
	if err != nil {
		return nil, fmt.Errorf("building symbol table: %w", err)
	}
	p.logger.Debug("Symbol table built",
		log.Int("statements", len(statements)),
		log.Int("symbols", table.Len()),
		log.Int("end", table.End()))

	if opts.Dump {
		if err := app.Dump(p.dump, statements, table.Export()); err != nil {
			return nil, fmt.Errorf("dumping statements: %w", err)
		}
	}

	words, err := encoder.Assemble(ctx, statements, table, encoder.Options{Workers: asmOpts.Workers})
	if err != nil {
		return nil, fmt.Errorf("encoding: %w", err)
	}
	result := program.New(words, table)

	outputFormat := p.detector.Detect(asmOpts, opts.Output)
	if err := p.writeProgram(result, outputFormat, asmOpts, output); err != nil {
		return nil, err
	}
	if err := p.writeSymbols(result, opts.Symbols); err != nil {
		return nil, err
	}
	if err := p.writeSchematic(ctx, result, opts.Schematic, asmOpts.Schematic); err != nil {
		return nil, err
	}

	app.PrintInfo(p.logger, opts, result)

	// Verify output (if requested)
	if opts.Verify {
		if err := verification.VerifyOutput(p.logger, opts, outputFormat, result); err != nil {
			return nil, fmt.Errorf("verification failed: %w", err)
		}
		p.logger.Info("Verification successful")
	}

	return result, nil
}

func (p *Pipeline) writeProgram(result *program.Program, outputFormat string, asmOpts options.Assembler, output io.Writer) error {
	w := writer.New(result, output, writer.Options{ByteOrder: asmOpts.Schematic.ByteOrder})
	if err := w.Write(outputFormat); err != nil {
		return fmt.Errorf("writing program: %w", err)
	}
	return nil
}

// writeSymbols writes the symbol listing file if a file name is given.
func (p *Pipeline) writeSymbols(result *program.Program, path string) error {
	if path == "" {
		return nil
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating symbol file '%s': %w", path, err)
	}
	defer func() { _ = file.Close() }()

	if err := writer.New(result, file, writer.Options{}).WriteSymbols(); err != nil {
		return fmt.Errorf("writing symbols: %w", err)
	}
	return nil
}

// writeSchematic generates and writes the schematic file if a file name is given.
func (p *Pipeline) writeSchematic(ctx context.Context, result *program.Program, path string, opts schematic.Options) error {
	if path == "" {
		return nil
	}

	schem, err := schematic.Make(ctx, result.Words, opts)
	if err != nil {
		return fmt.Errorf("generating schematic: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating schematic file '%s': %w", path, err)
	}
	defer func() { _ = file.Close() }()

	size, err := schem.WriteTo(file)
	if err != nil {
		return fmt.Errorf("writing schematic: %w", err)
	}

	p.logger.Debug("Schematic written",
		log.String("file", path),
		log.Int("palette", len(schem.Palette)),
		log.Int("width", schem.Header.Dims[0]),
		log.Int("height", schem.Header.Dims[1]),
		log.Int("length", schem.Header.Dims[2]),
		log.Int("bytes", int(size)))
	return nil
}
