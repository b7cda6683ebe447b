// Package schematic renders encoded program words as a Sponge schematic that
// can be pasted into the program memory of a BatPU-2 Minecraft build.
package schematic

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"slices"

	"github.com/tpglitch/BatPU-2-SE/internal/program"
	"golang.org/x/sync/errgroup"
)

// Header contains the extent and placement offset of the schematic.
type Header struct {
	Version int
	Dims    [3]int // width (x), height (y), length (z)
	Origin  [3]int
}

// Metadata describes the program stored in the schematic.
type Metadata struct {
	FormatVersion int
	Words         int    // number of placed words including fill words
	Checksum      uint32 // CRC32 of the placed words
	Placement     Options
}

// Schematic is a dense arena of cells indexed by (y*length + z)*width + x.
type Schematic struct {
	Header   Header
	Palette  []CellType
	Cells    []Cell
	Metadata Metadata
}

// placedUnit is a cell of a word with its local coordinate.
type placedUnit struct {
	coord    [3]int
	cellType CellType
	state    uint8
}

// Make creates the schematic of the words. The words are placed by address,
// palette entries are added in order of their first use.
func Make(ctx context.Context, words []program.Word, opts Options) (*Schematic, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	words = slices.Clone(words)
	slices.SortStableFunc(words, func(a, b program.Word) int {
		return a.Address - b.Address
	})
	for _, word := range words {
		if word.Address < 0 {
			return nil, fmt.Errorf("word at %s has negative address %d", word.Pos, word.Address)
		}
	}
	if err := checkDuplicates(words, opts); err != nil {
		return nil, err
	}
	if opts.Fill {
		words = program.Fill(words, opts.Limit)
	}

	units, err := decompose(ctx, words, opts)
	if err != nil {
		return nil, err
	}

	s := &Schematic{
		Header: Header{
			Version: 2,
			Origin:  opts.Origin,
		},
		Metadata: Metadata{
			FormatVersion: FormatVersion,
			Words:         len(words),
			Checksum:      program.Checksum(words),
			Placement:     opts,
		},
	}
	if err := s.build(words, units, opts); err != nil {
		return nil, err
	}
	return s, nil
}

// checkDuplicates reports the first address that is used by two words, the
// words have to be sorted by address.
func checkDuplicates(words []program.Word, opts Options) error {
	for i := 1; i < len(words); i++ {
		if words[i].Address == words[i-1].Address {
			return &PlacementCollisionError{
				Address: words[i].Address,
				Other:   words[i-1].Address,
				Coord:   opts.place(words[i].Address, 0),
			}
		}
	}
	return nil
}

// decompose splits all words into placed units in parallel.
func decompose(ctx context.Context, words []program.Word, opts Options) ([][]placedUnit, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	units := make([][]placedUnit, len(words))
	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(workers)
	for i, word := range words {
		grp.Go(func() error {
			if err := grpCtx.Err(); err != nil {
				return err
			}
			units[i] = decomposeWord(word, opts)
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, fmt.Errorf("decomposing words: %w", err)
	}
	return units, nil
}

func decomposeWord(word program.Word, opts Options) []placedUnit {
	row := word.Address / opts.Columns
	values := opts.unitValues(word.Value)
	units := make([]placedUnit, len(values))
	for u, value := range values {
		cellType, state := opts.cellType(value, row)
		units[u] = placedUnit{
			coord:    opts.place(word.Address, u),
			cellType: cellType,
			state:    state,
		}
	}
	return units
}

// build merges the placed units in address order into the palette and the
// cell arena.
func (s *Schematic) build(words []program.Word, units [][]placedUnit, opts Options) error {
	var dims [3]int
	for _, wordUnits := range units {
		for _, unit := range wordUnits {
			for axis := range 3 {
				dims[axis] = max(dims[axis], unit.coord[axis]+1)
			}
		}
	}
	for axis, size := range dims {
		if size > math.MaxInt16 {
			return &OptionsError{Field: "placement", Value: fmt.Sprint(dims),
				Cause: fmt.Sprintf("axis %d exceeds the maximum schematic size", axis)}
		}
	}
	s.Header.Dims = dims

	palette := newPalette(opts)
	s.Cells = make([]Cell, dims[0]*dims[1]*dims[2])
	owners := make(map[[3]int]int, len(s.Cells))

	for i, wordUnits := range units {
		address := words[i].Address
		for _, unit := range wordUnits {
			if other, ok := owners[unit.coord]; ok {
				return &PlacementCollisionError{Address: address, Other: other, Coord: unit.coord}
			}
			owners[unit.coord] = address

			index, err := palette.add(unit.cellType, address)
			if err != nil {
				return err
			}
			s.Cells[s.index(unit.coord)] = Cell{Type: index, State: unit.state}
		}
	}

	s.Palette = palette.types
	return nil
}

// index returns the arena index of a local coordinate.
func (s *Schematic) index(coord [3]int) int {
	width, length := s.Header.Dims[0], s.Header.Dims[2]
	return (coord[1]*length+coord[2])*width + coord[0]
}

// At returns the cell at the local coordinate, cells outside of the extent
// are empty.
func (s *Schematic) At(x, y, z int) Cell {
	dims := s.Header.Dims
	if x < 0 || y < 0 || z < 0 || x >= dims[0] || y >= dims[1] || z >= dims[2] {
		return Cell{}
	}
	return s.Cells[s.index([3]int{x, y, z})]
}
