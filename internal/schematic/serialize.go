package schematic

import (
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/tpglitch/BatPU-2-SE/internal/nbt"
)

const (
	spongeVersion = 2
	dataVersion   = 2975 // Minecraft 1.18.2
	rootName      = "Schematic"
	metadataKey   = "BatPU"
)

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// WriteTo writes the schematic as gzip compressed Sponge schematic. The gzip
// header does not contain a modification time, the output only depends on the
// schematic content.
func (s *Schematic) WriteTo(w io.Writer) (int64, error) {
	counter := &countingWriter{w: w}
	gz := gzip.NewWriter(counter)

	if err := nbt.Encode(gz, rootName, s.compound()); err != nil {
		return counter.n, fmt.Errorf("encoding schematic: %w", err)
	}
	if err := gz.Close(); err != nil {
		return counter.n, fmt.Errorf("compressing schematic: %w", err)
	}
	return counter.n, nil
}

func (s *Schematic) compound() *nbt.Compound {
	palette := nbt.NewCompound()
	for i, cellType := range s.Palette {
		palette.Set(cellType.Block, int32(i))
	}

	blockData := make([]byte, 0, len(s.Cells))
	for _, cell := range s.Cells {
		blockData = binary.AppendUvarint(blockData, uint64(cell.Type))
	}

	dims := s.Header.Dims
	origin := s.Header.Origin
	return nbt.NewCompound().
		Set("Version", int32(spongeVersion)).
		Set("DataVersion", int32(dataVersion)).
		Set("Width", int16(dims[0])).
		Set("Height", int16(dims[1])).
		Set("Length", int16(dims[2])).
		Set("Offset", []int32{int32(origin[0]), int32(origin[1]), int32(origin[2])}).
		Set("PaletteMax", int32(len(s.Palette))).
		Set("Palette", palette).
		Set("BlockData", blockData).
		Set("Metadata", nbt.NewCompound().Set(metadataKey, s.Metadata.compound()))
}

func (m Metadata) compound() *nbt.Compound {
	o := m.Placement
	v := o.Vocabulary
	return nbt.NewCompound().
		Set("FormatVersion", int32(m.FormatVersion)).
		Set("Words", int32(m.Words)).
		Set("Checksum", int64(m.Checksum)).
		Set("Unit", string(o.Unit)).
		Set("ByteOrder", string(o.ByteOrder)).
		Set("Columns", int32(o.Columns)).
		Set("XStride", int32(o.XStride)).
		Set("YStride", int32(o.YStride)).
		Set("ZStride", int32(o.ZStride)).
		Set("ByteGap", int32(o.ByteGap)).
		Set("PaletteCap", int32(o.PaletteCap)).
		Set("Fill", boolByte(o.Fill)).
		Set("Limit", int32(o.Limit)).
		Set("Vocabulary", nbt.NewCompound().
			Set("Empty", v.Empty).
			Set("Zero", v.Zero).
			Set("One", v.One).
			Set("Byte", v.Byte))
}

func boolByte(b bool) int8 {
	if b {
		return 1
	}
	return 0
}

// Decode reads a gzip compressed schematic that was written by WriteTo.
func Decode(r io.Reader) (*Schematic, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening gzip stream: %w", err)
	}
	defer func() { _ = gz.Close() }()

	_, root, err := nbt.Decode(gz)
	if err != nil {
		return nil, fmt.Errorf("decoding nbt data: %w", err)
	}

	version, err := root.GetInt("Version")
	if err != nil {
		return nil, err
	}
	if version != spongeVersion {
		return nil, fmt.Errorf("unsupported schematic version %d", version)
	}

	metadata, err := decodeMetadata(root)
	if err != nil {
		return nil, fmt.Errorf("decoding metadata: %w", err)
	}

	s := &Schematic{
		Header:   Header{Version: int(version)},
		Metadata: metadata,
	}
	if err := s.decodeHeader(root); err != nil {
		return nil, err
	}
	if err := s.decodePalette(root); err != nil {
		return nil, fmt.Errorf("decoding palette: %w", err)
	}
	if err := s.decodeBlockData(root); err != nil {
		return nil, fmt.Errorf("decoding block data: %w", err)
	}
	return s, nil
}

func (s *Schematic) decodeHeader(root *nbt.Compound) error {
	for i, name := range []string{"Width", "Height", "Length"} {
		value, err := root.GetShort(name)
		if err != nil {
			return err
		}
		if value < 0 {
			return fmt.Errorf("invalid %s %d", name, value)
		}
		s.Header.Dims[i] = int(value)
	}

	offset, err := root.GetIntArray("Offset")
	if err != nil {
		return err
	}
	if len(offset) != 3 {
		return fmt.Errorf("offset has %d components, expected 3", len(offset))
	}
	for i, value := range offset {
		s.Header.Origin[i] = int(value)
	}
	return nil
}

func decodeMetadata(root *nbt.Compound) (Metadata, error) {
	wrapper, err := root.GetCompound("Metadata")
	if err != nil {
		return Metadata{}, err
	}
	c, err := wrapper.GetCompound(metadataKey)
	if err != nil {
		return Metadata{}, err
	}

	ints := map[string]*int{}
	var m Metadata
	o := &m.Placement
	ints["FormatVersion"] = &m.FormatVersion
	ints["Words"] = &m.Words
	ints["Columns"] = &o.Columns
	ints["XStride"] = &o.XStride
	ints["YStride"] = &o.YStride
	ints["ZStride"] = &o.ZStride
	ints["ByteGap"] = &o.ByteGap
	ints["PaletteCap"] = &o.PaletteCap
	ints["Limit"] = &o.Limit
	for name, target := range ints {
		value, err := c.GetInt(name)
		if err != nil {
			return Metadata{}, err
		}
		*target = int(value)
	}
	if m.FormatVersion != FormatVersion {
		return Metadata{}, fmt.Errorf("unsupported placement format version %d", m.FormatVersion)
	}

	checksum, err := c.GetLong("Checksum")
	if err != nil {
		return Metadata{}, err
	}
	m.Checksum = uint32(checksum)

	fill, err := c.GetByte("Fill")
	if err != nil {
		return Metadata{}, err
	}
	o.Fill = fill != 0

	unit, err := c.GetString("Unit")
	if err != nil {
		return Metadata{}, err
	}
	byteOrder, err := c.GetString("ByteOrder")
	if err != nil {
		return Metadata{}, err
	}
	o.Unit = Unit(unit)
	o.ByteOrder = ByteOrder(byteOrder)

	vocabulary, err := c.GetCompound("Vocabulary")
	if err != nil {
		return Metadata{}, err
	}
	for name, target := range map[string]*string{
		"Empty": &o.Vocabulary.Empty,
		"Zero":  &o.Vocabulary.Zero,
		"One":   &o.Vocabulary.One,
		"Byte":  &o.Vocabulary.Byte,
	} {
		if *target, err = vocabulary.GetString(name); err != nil {
			return Metadata{}, err
		}
	}

	if err := o.validate(); err != nil {
		return Metadata{}, err
	}
	return m, nil
}

func (s *Schematic) decodePalette(root *nbt.Compound) error {
	palette, err := root.GetCompound("Palette")
	if err != nil {
		return err
	}

	s.Palette = make([]CellType, palette.Len())
	seen := make([]bool, palette.Len())
	for _, block := range palette.Names() {
		index, err := palette.GetInt(block)
		if err != nil {
			return err
		}
		if index < 0 || int(index) >= len(s.Palette) || seen[index] {
			return fmt.Errorf("invalid palette index %d for '%s'", index, block)
		}
		cellType, err := s.Metadata.Placement.parseCellType(block)
		if err != nil {
			return err
		}
		s.Palette[index] = cellType
		seen[index] = true
	}
	return nil
}

func (s *Schematic) decodeBlockData(root *nbt.Compound) error {
	data, err := root.GetByteArray("BlockData")
	if err != nil {
		return err
	}

	dims := s.Header.Dims
	expected := dims[0] * dims[1] * dims[2]
	bits := s.Metadata.Placement.Unit == UnitBit
	s.Cells = make([]Cell, 0, expected)
	for len(data) > 0 {
		if len(s.Cells) == expected {
			return fmt.Errorf("more than %d cells", expected)
		}
		value, n := binary.Uvarint(data)
		if n <= 0 {
			return errors.New("invalid varint")
		}
		if value >= uint64(len(s.Palette)) {
			return fmt.Errorf("palette index %d out of range", value)
		}
		data = data[n:]

		var state uint8
		if bits && s.Palette[value].Value != empty {
			z := len(s.Cells) / dims[0] % dims[2]
			state = uint8(z / s.Metadata.Placement.ZStride % 2)
		}
		s.Cells = append(s.Cells, Cell{Type: int(value), State: state})
	}

	if len(s.Cells) != expected {
		return fmt.Errorf("got %d cells, expected %d", len(s.Cells), expected)
	}
	return nil
}
