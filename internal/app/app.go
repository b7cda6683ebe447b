// Package app provides the main application helpers for the assembler.
package app

import (
	"fmt"
	"io"

	"github.com/k0kubun/pp/v3"
	"github.com/retroenv/retrogolib/log"
	"github.com/tpglitch/BatPU-2-SE/internal/options"
	"github.com/tpglitch/BatPU-2-SE/internal/parser"
	"github.com/tpglitch/BatPU-2-SE/internal/program"
	"github.com/tpglitch/BatPU-2-SE/internal/symbols"
)

// PrintInfo prints the information about the input file and the assembled program.
func PrintInfo(logger *log.Logger, opts options.Program, app *program.Program) {
	if opts.Quiet {
		return
	}

	logger.Info("Assembled BatPU-2 program",
		log.String("file", opts.Input),
		log.Int("words", len(app.Words)),
		log.Int("symbols", len(app.Symbols)),
		log.Int("end", app.End),
		log.Hex("crc32", app.Checksums.Words),
	)
	if free := app.Limit - app.LastUsedAddress(); free < app.Limit/16 {
		logger.Warn("Program memory is almost full", log.Int("free", free))
	}
}

// Dump pretty prints the parsed statements and the program symbols for
// debugging.
func Dump(w io.Writer, statements []parser.Statement, syms []symbols.Symbol) error {
	printer := pp.New()
	printer.SetColoringEnabled(false)
	printer.SetExportedOnly(true)

	if _, err := fmt.Fprintf(w, "statements (%d):\n", len(statements)); err != nil {
		return fmt.Errorf("writing dump header: %w", err)
	}
	for _, statement := range statements {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", statement.Pos, statement); err != nil {
			return fmt.Errorf("writing statement: %w", err)
		}
	}

	if _, err := fmt.Fprintf(w, "symbols (%d):\n", len(syms)); err != nil {
		return fmt.Errorf("writing dump header: %w", err)
	}
	if _, err := printer.Fprintln(w, syms); err != nil {
		return fmt.Errorf("writing symbols: %w", err)
	}
	return nil
}
