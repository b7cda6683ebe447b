package schematic

// palette assigns indexes to distinct cell types, index 0 is the empty type.
type palette struct {
	cap     int
	types   []CellType
	indexes map[string]int
}

func newPalette(opts Options) *palette {
	p := &palette{
		cap:     opts.PaletteCap,
		indexes: make(map[string]int),
	}
	empty := opts.emptyType()
	p.types = append(p.types, empty)
	p.indexes[empty.Block] = 0
	return p
}

// add returns the index of the cell type and inserts it if it is not part of
// the palette yet.
func (p *palette) add(cellType CellType, address int) (int, error) {
	if index, ok := p.indexes[cellType.Block]; ok {
		return index, nil
	}
	if p.cap > 0 && len(p.types) >= p.cap {
		return 0, &PaletteOverflowError{Cap: p.cap, Block: cellType.Block, Address: address}
	}

	index := len(p.types)
	p.types = append(p.types, cellType)
	p.indexes[cellType.Block] = index
	return index, nil
}
