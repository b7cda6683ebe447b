package nbt

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

type encoder struct {
	w   *bufio.Writer
	err error
}

// Encode writes the root compound with the given name. The output is not
// compressed.
func Encode(w io.Writer, name string, root *Compound) error {
	enc := &encoder{w: bufio.NewWriter(w)}
	enc.byte(byte(TagCompound))
	enc.string(name)
	if err := enc.compound(root); err != nil {
		return err
	}
	if enc.err != nil {
		return fmt.Errorf("writing nbt data: %w", enc.err)
	}
	if err := enc.w.Flush(); err != nil {
		return fmt.Errorf("flushing nbt data: %w", err)
	}
	return nil
}

func (e *encoder) write(data any) {
	if e.err != nil {
		return
	}
	e.err = binary.Write(e.w, binary.BigEndian, data)
}

func (e *encoder) byte(b byte) {
	if e.err != nil {
		return
	}
	e.err = e.w.WriteByte(b)
}

func (e *encoder) string(s string) {
	e.write(uint16(len(s)))
	if e.err != nil {
		return
	}
	_, e.err = e.w.WriteString(s)
}

func (e *encoder) compound(c *Compound) error {
	for _, entry := range c.entries {
		tag, err := tagOf(entry.value)
		if err != nil {
			return fmt.Errorf("entry '%s': %w", entry.name, err)
		}
		e.byte(byte(tag))
		e.string(entry.name)
		if err := e.payload(entry.value); err != nil {
			return fmt.Errorf("entry '%s': %w", entry.name, err)
		}
	}
	e.byte(byte(TagEnd))
	return nil
}

func (e *encoder) payload(value any) error {
	switch v := value.(type) {
	case int8:
		e.byte(byte(v))
	case int16, int32, int64:
		e.write(v)
	case float32:
		e.write(math.Float32bits(v))
	case float64:
		e.write(math.Float64bits(v))
	case []byte:
		e.write(int32(len(v)))
		e.write(v)
	case string:
		if len(v) > math.MaxUint16 {
			return fmt.Errorf("string of length %d exceeds maximum length", len(v))
		}
		e.string(v)
	case []int32:
		e.write(int32(len(v)))
		e.write(v)
	case []int64:
		e.write(int32(len(v)))
		e.write(v)
	case *List:
		return e.list(v)
	case *Compound:
		return e.compound(v)
	default:
		return fmt.Errorf("unsupported value type %T", value)
	}
	return nil
}

func (e *encoder) list(l *List) error {
	typ := l.Type
	if len(l.Items) == 0 {
		typ = TagEnd
	}
	e.byte(byte(typ))
	e.write(int32(len(l.Items)))
	for i, item := range l.Items {
		tag, err := tagOf(item)
		if err != nil {
			return fmt.Errorf("list item %d: %w", i, err)
		}
		if tag != l.Type {
			return fmt.Errorf("list item %d is of type %s, expected %s", i, tag, l.Type)
		}
		if err := e.payload(item); err != nil {
			return fmt.Errorf("list item %d: %w", i, err)
		}
	}
	return nil
}
