// Package options contains the program options.
package options

import (
	"strings"

	"github.com/tpglitch/BatPU-2-SE/internal/schematic"
)

// Parameters contains file path options.
type Parameters struct {
	Input     string `flag:"i" usage:"input assembly file"`
	Output    string `flag:"o" usage:"output program file (default: stdout)"`
	Schematic string `flag:"schem" usage:"output schematic file"`
	Symbols   string `flag:"sym" usage:"output symbol listing file"`
	Config    string `flag:"c" usage:"CUE config file"`
	Batch     string `flag:"batch" usage:"batch process files matching pattern (e.g. *.as)"`
}

// Flags contains behavior options.
type Flags struct {
	Format  string `flag:"f" usage:"program output format: mc, hex, bin (default: auto-detect)"`
	Verify  bool   `flag:"verify" usage:"verify the written outputs by decoding them and comparing to the program"`
	Dump    bool   `flag:"dump" usage:"print parsed statements and symbols"`
	Workers int    `flag:"workers" usage:"number of parallel workers (default: CPU count)"`
	Debug   bool   `flag:"debug" usage:"enable debug logging"`
	Quiet   bool   `flag:"q" usage:"quiet mode"`
}

// SchematicFlags contains schematic placement options.
type SchematicFlags struct {
	Origin     int    `flag:"origin" usage:"start address of the program"`
	Unit       string `flag:"unit" usage:"schematic cell unit: bit, byte" default:"bit"`
	ByteOrder  string `flag:"byteorder" usage:"byte order of words: little, big" default:"little"`
	Columns    int    `flag:"columns" usage:"words per schematic row" default:"32"`
	PaletteCap int    `flag:"cap" usage:"maximum schematic palette size, 0 for no limit"`
	NoFill     bool   `flag:"nofill" usage:"do not pad unused memory with zero words"`
}

// Program options of the assembler.
type Program struct {
	Parameters
	Flags
	SchematicFlags
}

// Assembler defines options to control the assembler stages.
type Assembler struct {
	Origin    int    // start address of the program
	Format    string // program output format
	Workers   int
	Schematic schematic.Options
}

// NewAssembler returns assembler options with the default schematic placement
// updated by the program options.
func NewAssembler(opts Program) Assembler {
	schem := schematic.DefaultOptions()
	schem.Workers = opts.Workers
	schem.Fill = !opts.NoFill
	schem.PaletteCap = opts.PaletteCap
	if opts.Unit != "" {
		schem.Unit = schematic.Unit(strings.ToLower(opts.Unit))
	}
	if opts.ByteOrder != "" {
		schem.ByteOrder = schematic.ByteOrder(strings.ToLower(opts.ByteOrder))
	}
	if opts.Columns != 0 {
		schem.Columns = opts.Columns
	}

	return Assembler{
		Origin:    opts.Origin,
		Format:    strings.ToLower(opts.Format),
		Workers:   opts.Workers,
		Schematic: schem,
	}
}
