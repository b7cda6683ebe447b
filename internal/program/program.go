// Package program represents an assembled BatPU-2 program.
package program

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/tpglitch/BatPU-2-SE/internal/parser"
	"github.com/tpglitch/BatPU-2-SE/internal/symbols"
)

// Word is an encoded instruction or data word.
type Word struct {
	Address int
	Width   int // width in address units
	Value   uint16
	Type    WordType
	Pos     parser.Pos // source position of the statement that emitted the word
}

// Bits returns the payload of the word as 16 character binary string.
func (w Word) Bits() string {
	return fmt.Sprintf("%016b", w.Value)
}

// Checksums contains the CRC32 checksum to identify the encoded program.
type Checksums struct {
	Words uint32
}

// Program defines an assembled program with its symbols.
type Program struct {
	Words   []Word
	Symbols []symbols.Symbol

	Origin int // start address of the program
	End    int // address following the last statement
	Limit  int // number of addressable words

	Checksums Checksums
}

// New creates a new program from the encoded words and the symbol table.
func New(words []Word, table *symbols.Table) *Program {
	return &Program{
		Words:     words,
		Symbols:   table.Export(),
		Origin:    table.Origin(),
		End:       table.End(),
		Limit:     table.Limit(),
		Checksums: Checksums{Words: Checksum(words)},
	}
}

// Checksum calculates the CRC32 checksum over the addresses and values of all words.
func Checksum(words []Word) uint32 {
	buf := make([]byte, 0, len(words)*4)
	for _, word := range words {
		buf = binary.BigEndian.AppendUint16(buf, uint16(word.Address))
		buf = binary.BigEndian.AppendUint16(buf, word.Value)
	}
	return crc32.ChecksumIEEE(buf)
}
