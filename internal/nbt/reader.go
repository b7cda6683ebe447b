package nbt

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	maxDepth       = 512
	maxArrayLength = 1 << 24
)

var errTooDeep = errors.New("maximum nesting depth exceeded")

type decoder struct {
	r     *bufio.Reader
	depth int
}

// Decode reads an uncompressed root compound and returns its name.
func Decode(r io.Reader) (string, *Compound, error) {
	dec := &decoder{r: bufio.NewReader(r)}

	tag, err := dec.r.ReadByte()
	if err != nil {
		return "", nil, fmt.Errorf("reading root tag: %w", err)
	}
	if Tag(tag) != TagCompound {
		return "", nil, fmt.Errorf("root tag is of type %s, expected %s", Tag(tag), TagCompound)
	}

	name, err := dec.string()
	if err != nil {
		return "", nil, fmt.Errorf("reading root name: %w", err)
	}
	root, err := dec.compound()
	if err != nil {
		return "", nil, fmt.Errorf("reading root compound: %w", err)
	}
	return name, root, nil
}

func (d *decoder) read(data any) error {
	return binary.Read(d.r, binary.BigEndian, data)
}

func (d *decoder) length() (int, error) {
	var length int32
	if err := d.read(&length); err != nil {
		return 0, err
	}
	if length < 0 || length > maxArrayLength {
		return 0, fmt.Errorf("invalid length %d", length)
	}
	return int(length), nil
}

func (d *decoder) string() (string, error) {
	var length uint16
	if err := d.read(&length); err != nil {
		return "", err
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func (d *decoder) compound() (*Compound, error) {
	d.depth++
	defer func() { d.depth-- }()
	if d.depth > maxDepth {
		return nil, errTooDeep
	}

	c := NewCompound()
	for {
		tag, err := d.r.ReadByte()
		if err != nil {
			return nil, err
		}
		if Tag(tag) == TagEnd {
			return c, nil
		}

		name, err := d.string()
		if err != nil {
			return nil, err
		}
		value, err := d.payload(Tag(tag))
		if err != nil {
			return nil, fmt.Errorf("entry '%s': %w", name, err)
		}
		c.Set(name, value)
	}
}

func (d *decoder) payload(tag Tag) (any, error) {
	switch tag {
	case TagByte:
		b, err := d.r.ReadByte()
		return int8(b), err
	case TagShort:
		var v int16
		err := d.read(&v)
		return v, err
	case TagInt:
		var v int32
		err := d.read(&v)
		return v, err
	case TagLong:
		var v int64
		err := d.read(&v)
		return v, err
	case TagFloat:
		var v uint32
		err := d.read(&v)
		return math.Float32frombits(v), err
	case TagDouble:
		var v uint64
		err := d.read(&v)
		return math.Float64frombits(v), err
	case TagByteArray:
		length, err := d.length()
		if err != nil {
			return nil, err
		}
		v := make([]byte, length)
		_, err = io.ReadFull(d.r, v)
		return v, err
	case TagString:
		return d.string()
	case TagIntArray:
		length, err := d.length()
		if err != nil {
			return nil, err
		}
		v := make([]int32, length)
		err = d.read(v)
		return v, err
	case TagLongArray:
		length, err := d.length()
		if err != nil {
			return nil, err
		}
		v := make([]int64, length)
		err = d.read(v)
		return v, err
	case TagList:
		return d.list()
	case TagCompound:
		return d.compound()
	default:
		return nil, fmt.Errorf("unsupported tag type %s", tag)
	}
}

func (d *decoder) list() (*List, error) {
	d.depth++
	defer func() { d.depth-- }()
	if d.depth > maxDepth {
		return nil, errTooDeep
	}

	typ, err := d.r.ReadByte()
	if err != nil {
		return nil, err
	}
	length, err := d.length()
	if err != nil {
		return nil, err
	}
	if Tag(typ) == TagEnd && length > 0 {
		return nil, errors.New("list of end tags is not empty")
	}

	l := &List{Type: Tag(typ), Items: make([]any, 0, length)}
	for i := range length {
		item, err := d.payload(l.Type)
		if err != nil {
			return nil, fmt.Errorf("list item %d: %w", i, err)
		}
		l.Items = append(l.Items, item)
	}
	return l, nil
}
