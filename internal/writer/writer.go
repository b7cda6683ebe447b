// Package writer implements the program and symbol file writing functionality.
package writer

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/tpglitch/BatPU-2-SE/internal/format"
	"github.com/tpglitch/BatPU-2-SE/internal/program"
	"github.com/tpglitch/BatPU-2-SE/internal/schematic"
)

// Writer implements program file writing functionality.
type Writer struct {
	app     *program.Program
	options Options
	writer  io.Writer
}

// Options of the writer.
type Options struct {
	ByteOrder schematic.ByteOrder // byte order of the binary format
}

// New creates a new writer.
func New(app *program.Program, writer io.Writer, options Options) *Writer {
	return &Writer{
		app:     app,
		options: options,
		writer:  writer,
	}
}

// Write outputs the program in the given format.
func (w Writer) Write(name string) error {
	switch name {
	case format.MachineCode:
		return w.WriteMachineCode()
	case format.Hex:
		return w.WriteHex()
	case format.Binary:
		return w.WriteBinary()
	default:
		return fmt.Errorf("unsupported format '%s'", name)
	}
}

// WriteMachineCode writes one 16 digit binary word per line for every address
// from 0 up to the last used address, gaps are written as zero words.
func (w Writer) WriteMachineCode() error {
	for _, word := range w.image() {
		if _, err := fmt.Fprintf(w.writer, "%s\n", word.Bits()); err != nil {
			return fmt.Errorf("writing machine code word: %w", err)
		}
	}
	return nil
}

// WriteHex writes one 4 digit hex word per line with the same density as the
// machine code format.
func (w Writer) WriteHex() error {
	for _, word := range w.image() {
		if _, err := fmt.Fprintf(w.writer, "%04x\n", word.Value); err != nil {
			return fmt.Errorf("writing hex word: %w", err)
		}
	}
	return nil
}

// WriteBinary writes 2 bytes per word in the configured byte order.
func (w Writer) WriteBinary() error {
	image := w.image()
	buf := make([]byte, 0, 2*len(image))
	for _, word := range image {
		if w.options.ByteOrder == schematic.BigEndian {
			buf = binary.BigEndian.AppendUint16(buf, word.Value)
		} else {
			buf = binary.LittleEndian.AppendUint16(buf, word.Value)
		}
	}
	if _, err := w.writer.Write(buf); err != nil {
		return fmt.Errorf("writing binary words: %w", err)
	}
	return nil
}

// WriteSymbols writes the symbol listing with one "name kind value" line per
// program symbol, ordered by value.
func (w Writer) WriteSymbols() error {
	if err := w.WriteCommentHeader(); err != nil {
		return err
	}

	for _, sym := range w.app.Symbols {
		if _, err := fmt.Fprintf(w.writer, "%s %s %d\n", sym.Name, sym.Kind, sym.Value); err != nil {
			return fmt.Errorf("writing symbol: %w", err)
		}
	}
	return nil
}

// WriteCommentHeader writes the CRC32 checksum and the address range of the
// program as comments to the output.
func (w Writer) WriteCommentHeader() error {
	if _, err := fmt.Fprintf(w.writer, "; Words CRC32 checksum: %08x\n", w.app.Checksums.Words); err != nil {
		return fmt.Errorf("writing words checksum: %w", err)
	}
	if _, err := fmt.Fprintf(w.writer, "; Address range: %d-%d\n\n", w.app.Origin, w.app.End); err != nil {
		return fmt.Errorf("writing address range: %w", err)
	}
	return nil
}

func (w Writer) image() []program.Word {
	return program.Fill(w.app.Words, w.app.LastUsedAddress())
}
