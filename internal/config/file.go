package config

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/retroenv/retrogolib/set"
	"github.com/tpglitch/BatPU-2-SE/internal/options"
	"github.com/tpglitch/BatPU-2-SE/internal/schematic"
)

// schema of the config file, unknown fields are rejected.
const schema = `
origin?:  int & >=0 & <=1024
format?:  "mc" | "hex" | "bin"
workers?: int & >=0
schematic?: close({
	unit?:       "bit" | "byte"
	byteOrder?:  "little" | "big"
	columns?:    int & >=1
	xStride?:    int & >=1
	yStride?:    int & >=1
	zStride?:    int & >=1
	byteGap?:    int & >=0
	origin?:     [int, int, int]
	paletteCap?: int & >=0
	fill?:       bool
	vocabulary?: close({
		empty?: string
		zero?:  string
		one?:   string
		byte?:  string
	})
})
`

// File contains the settings of a config file, unset fields are nil.
type File struct {
	Origin    *int           `json:"origin"`
	Format    *string        `json:"format"`
	Workers   *int           `json:"workers"`
	Schematic *SchematicFile `json:"schematic"`
}

// SchematicFile contains the schematic placement settings of a config file.
type SchematicFile struct {
	Unit       *string         `json:"unit"`
	ByteOrder  *string         `json:"byteOrder"`
	Columns    *int            `json:"columns"`
	XStride    *int            `json:"xStride"`
	YStride    *int            `json:"yStride"`
	ZStride    *int            `json:"zStride"`
	ByteGap    *int            `json:"byteGap"`
	Origin     []int           `json:"origin"`
	PaletteCap *int            `json:"paletteCap"`
	Fill       *bool           `json:"fill"`
	Vocabulary *VocabularyFile `json:"vocabulary"`
}

// VocabularyFile contains the block names of a config file.
type VocabularyFile struct {
	Empty *string `json:"empty"`
	Zero  *string `json:"zero"`
	One   *string `json:"one"`
	Byte  *string `json:"byte"`
}

// Load reads a CUE config file and validates it against the schema.
func Load(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(path, content)
}

// Parse compiles the CUE config content and validates it against the schema.
func Parse(filename string, content []byte) (*File, error) {
	ctx := cuecontext.New()
	schemaValue := ctx.CompileString("close({" + schema + "})")
	if err := schemaValue.Err(); err != nil {
		return nil, fmt.Errorf("compiling config schema: %w", err)
	}

	value := ctx.CompileBytes(content, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("compiling config file: %w", err)
	}

	unified := schemaValue.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validating config file: %w", err)
	}

	var file File
	if err := unified.Decode(&file); err != nil {
		return nil, fmt.Errorf("decoding config file: %w", err)
	}
	return &file, nil
}

// Apply updates the assembler options with the settings of the config file.
// Settings whose command line flag is contained in explicit are skipped, flags
// take precedence over the config file.
func (f *File) Apply(opts *options.Assembler, explicit set.Set[string]) {
	assign(&opts.Origin, f.Origin, explicit, "origin")
	assign(&opts.Format, f.Format, explicit, "f")
	assign(&opts.Workers, f.Workers, explicit, "workers")
	if f.Workers != nil && !explicit.Contains("workers") {
		opts.Schematic.Workers = *f.Workers
	}

	if f.Schematic == nil {
		return
	}
	s := f.Schematic
	schem := &opts.Schematic

	if s.Unit != nil && !explicit.Contains("unit") {
		schem.Unit = schematic.Unit(*s.Unit)
	}
	if s.ByteOrder != nil && !explicit.Contains("byteorder") {
		schem.ByteOrder = schematic.ByteOrder(*s.ByteOrder)
	}
	assign(&schem.Columns, s.Columns, explicit, "columns")
	assign(&schem.PaletteCap, s.PaletteCap, explicit, "cap")
	assign(&schem.XStride, s.XStride, explicit, "")
	assign(&schem.YStride, s.YStride, explicit, "")
	assign(&schem.ZStride, s.ZStride, explicit, "")
	assign(&schem.ByteGap, s.ByteGap, explicit, "")
	if s.Fill != nil && !explicit.Contains("nofill") {
		schem.Fill = *s.Fill
	}
	if len(s.Origin) == 3 {
		schem.Origin = [3]int{s.Origin[0], s.Origin[1], s.Origin[2]}
	}

	if v := s.Vocabulary; v != nil {
		assign(&schem.Vocabulary.Empty, v.Empty, explicit, "")
		assign(&schem.Vocabulary.Zero, v.Zero, explicit, "")
		assign(&schem.Vocabulary.One, v.One, explicit, "")
		assign(&schem.Vocabulary.Byte, v.Byte, explicit, "")
	}
}

// assign sets the target to the config value if it is set and the flag was
// not passed explicitly. An empty flag name means that no flag exists.
func assign[T any](target *T, value *T, explicit set.Set[string], flag string) {
	if value == nil {
		return
	}
	if flag != "" && explicit.Contains(flag) {
		return
	}
	*target = *value
}
