package schematic

import (
	"fmt"
	"math"

	"github.com/tpglitch/BatPU-2-SE/internal/isa"
)

// Unit defines how many cells a word is split into.
type Unit string

// supported units.
const (
	UnitBit  Unit = "bit"  // 16 cells per word
	UnitByte Unit = "byte" // 2 cells per word
)

// ByteOrder defines the order of the two bytes of a word.
type ByteOrder string

// supported byte orders.
const (
	LittleEndian ByteOrder = "little"
	BigEndian    ByteOrder = "big"
)

// FormatVersion is the version of the placement scheme stored in the metadata.
const FormatVersion = 2

// Vocabulary defines the block names used for the cell types.
type Vocabulary struct {
	Empty string // unoccupied cell
	Zero  string // bit 0
	One   string // bit 1, gets a facing property by row parity
	Byte  string // byte cell, gets a value property
}

// DefaultVocabulary returns the blocks used by the BatPU-2 program memory.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Empty: "minecraft:air",
		Zero:  "minecraft:purple_wool",
		One:   "minecraft:repeater",
		Byte:  "batpu:byte",
	}
}

// Options controls the schematic generation.
type Options struct {
	Unit      Unit
	ByteOrder ByteOrder

	Columns int // words per row
	XStride int // distance between two words of a row
	YStride int // distance between two cells of a word
	ZStride int // distance between two rows
	ByteGap int // additional distance between two bytes of a word

	Origin     [3]int // offset of the schematic when pasted
	PaletteCap int    // maximum palette size, 0 for no limit
	Fill       bool   // pad all unused addresses up to Limit with zero words
	Limit      int    // number of addressable words, defaults to the BatPU-2 memory size
	Workers    int    // number of words decomposed in parallel

	Vocabulary Vocabulary
}

// DefaultOptions returns the placement of the BatPU-2 program memory.
func DefaultOptions() Options {
	return Options{
		Unit:       UnitBit,
		ByteOrder:  LittleEndian,
		Columns:    32,
		XStride:    2,
		YStride:    2,
		ZStride:    2,
		ByteGap:    2,
		Fill:       true,
		Limit:      isa.MemorySize,
		Vocabulary: DefaultVocabulary(),
	}
}

// unitsPerWord returns the number of cells of a word and the number of cells
// per byte.
func (o Options) unitsPerWord() (int, int) {
	if o.Unit == UnitByte {
		return 2, 1
	}
	return 16, 8
}

func (o Options) validate() error {
	switch o.Unit {
	case UnitBit, UnitByte:
	default:
		return &OptionsError{Field: "unit", Value: string(o.Unit), Cause: "expected bit or byte"}
	}

	switch o.ByteOrder {
	case LittleEndian, BigEndian:
	default:
		return &OptionsError{Field: "byte order", Value: string(o.ByteOrder), Cause: "expected little or big"}
	}

	positive := []struct {
		name  string
		value int
	}{
		{"columns", o.Columns},
		{"x stride", o.XStride},
		{"y stride", o.YStride},
		{"z stride", o.ZStride},
	}
	for _, p := range positive {
		if p.value < 1 {
			return &OptionsError{Field: p.name, Value: fmt.Sprint(p.value), Cause: "has to be at least 1"}
		}
	}

	if o.ByteGap < 0 {
		return &OptionsError{Field: "byte gap", Value: fmt.Sprint(o.ByteGap), Cause: "can not be negative"}
	}
	if o.PaletteCap < 0 {
		return &OptionsError{Field: "palette cap", Value: fmt.Sprint(o.PaletteCap), Cause: "can not be negative"}
	}
	if o.Limit < 0 || o.Limit > math.MaxUint16+1 {
		return &OptionsError{Field: "limit", Value: fmt.Sprint(o.Limit), Cause: "outside of the 16 bit address space"}
	}

	v := o.Vocabulary
	if v.Empty == "" || v.Zero == "" || v.One == "" || v.Byte == "" {
		return &OptionsError{Field: "vocabulary", Value: fmt.Sprintf("%+v", v), Cause: "all block names have to be set"}
	}
	return nil
}
