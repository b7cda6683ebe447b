package schematic

import (
	"fmt"
	"strconv"
	"strings"
)

// empty is the value of the cell type that represents no unit.
const empty = -1

// CellType is an entry of the palette.
type CellType struct {
	Block string // block state descriptor
	Value int    // unit value that the cell type represents
}

// Cell is a single cell of the schematic arena.
type Cell struct {
	Type  int   // palette index
	State uint8 // orientation, 1 for cells in odd rows
}

// place returns the local coordinate of the unit of the word stored in the slot.
func (o Options) place(slot, unit int) [3]int {
	_, perByte := o.unitsPerWord()
	col := slot % o.Columns
	row := slot / o.Columns
	y := (unit/perByte)*(perByte*o.YStride+o.ByteGap) + (unit%perByte)*o.YStride
	return [3]int{col * o.XStride, y, row * o.ZStride}
}

// wordBytes returns the two bytes of the word in the configured byte order.
func (o Options) wordBytes(value uint16) [2]byte {
	if o.ByteOrder == BigEndian {
		return [2]byte{byte(value >> 8), byte(value)}
	}
	return [2]byte{byte(value), byte(value >> 8)}
}

// unitValues splits the word into its unit values, bits of a byte are ordered
// most significant bit first.
func (o Options) unitValues(value uint16) []int {
	b := o.wordBytes(value)
	if o.Unit == UnitByte {
		return []int{int(b[0]), int(b[1])}
	}

	bits := make([]int, 16)
	for i := range 2 {
		for bit := range 8 {
			bits[i*8+bit] = int(b[i]>>(7-bit)) & 1
		}
	}
	return bits
}

// wordValue joins unit values to a word, it is the inverse of unitValues.
func (o Options) wordValue(units []int) uint16 {
	var b [2]byte
	if o.Unit == UnitByte {
		b = [2]byte{byte(units[0]), byte(units[1])}
	} else {
		for i, value := range units {
			b[i/8] |= byte(value&1) << (7 - i%8)
		}
	}

	if o.ByteOrder == BigEndian {
		return uint16(b[0])<<8 | uint16(b[1])
	}
	return uint16(b[1])<<8 | uint16(b[0])
}

// cellType returns the cell type and state for a unit value of a word in the
// given row.
func (o Options) cellType(value, row int) (CellType, uint8) {
	v := o.Vocabulary
	if o.Unit == UnitByte {
		return CellType{Block: fmt.Sprintf("%s[value=%d]", v.Byte, value), Value: value}, 0
	}

	state := uint8(row % 2)
	if value == 0 {
		return CellType{Block: v.Zero, Value: 0}, state
	}
	facing := "north"
	if state == 1 {
		facing = "south"
	}
	return CellType{Block: fmt.Sprintf("%s[facing=%s]", v.One, facing), Value: 1}, state
}

func (o Options) emptyType() CellType {
	return CellType{Block: o.Vocabulary.Empty, Value: empty}
}

// parseCellType returns the cell type of a block descriptor read from a
// schematic file.
func (o Options) parseCellType(block string) (CellType, error) {
	v := o.Vocabulary
	switch {
	case block == v.Empty:
		return o.emptyType(), nil
	case block == v.Zero:
		return CellType{Block: block, Value: 0}, nil
	case strings.HasPrefix(block, v.One+"["):
		return CellType{Block: block, Value: 1}, nil
	case strings.HasPrefix(block, v.Byte+"[value=") && strings.HasSuffix(block, "]"):
		text := strings.TrimSuffix(strings.TrimPrefix(block, v.Byte+"[value="), "]")
		value, err := strconv.Atoi(text)
		if err != nil || value < 0 || value > 255 {
			return CellType{}, fmt.Errorf("invalid byte cell type '%s'", block)
		}
		return CellType{Block: block, Value: value}, nil
	default:
		return CellType{}, fmt.Errorf("unsupported cell type '%s'", block)
	}
}
