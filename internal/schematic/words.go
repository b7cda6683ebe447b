package schematic

import (
	"fmt"

	"github.com/tpglitch/BatPU-2-SE/internal/program"
)

// Words recovers the placed words from the cells using the inverse placement
// of the stored options. Slots without any cell are skipped.
func (s *Schematic) Words() ([]program.Word, error) {
	opts := s.Metadata.Placement
	dims := s.Header.Dims
	if dims[0] == 0 || dims[1] == 0 || dims[2] == 0 {
		return nil, nil
	}

	count, _ := opts.unitsPerWord()
	columns := min(opts.Columns, (dims[0]-1)/opts.XStride+1)
	rows := (dims[2]-1)/opts.ZStride + 1

	var words []program.Word
	units := make([]int, count)
	for row := range rows {
		for col := range columns {
			slot := row*opts.Columns + col
			placed, err := s.readSlot(slot, units)
			if err != nil {
				return nil, err
			}
			if !placed {
				continue
			}

			words = append(words, program.Word{
				Address: slot,
				Width:   1,
				Value:   opts.wordValue(units),
				Type:    program.DataWord,
			})
		}
	}
	return words, nil
}

// readSlot reads the unit values of the slot into units and returns whether
// the slot contains a word.
func (s *Schematic) readSlot(slot int, units []int) (bool, error) {
	opts := s.Metadata.Placement
	present := 0
	for u := range units {
		coord := opts.place(slot, u)
		cell := s.At(coord[0], coord[1], coord[2])
		if cell.Type < 0 || cell.Type >= len(s.Palette) {
			return false, fmt.Errorf("cell at %v references unknown palette index %d", coord, cell.Type)
		}

		value := s.Palette[cell.Type].Value
		if value != empty {
			present++
		}
		units[u] = value
	}

	switch present {
	case 0:
		return false, nil
	case len(units):
		return true, nil
	default:
		return false, fmt.Errorf("word at address %d is incomplete, %d of %d cells are set", slot, present, len(units))
	}
}
