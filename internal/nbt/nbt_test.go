package nbt

import (
	"bytes"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestEncodeKnownBytes(t *testing.T) {
	root := NewCompound().
		Set("a", int8(1)).
		Set("b", int16(0x0203))

	var buf bytes.Buffer
	assert.NoError(t, Encode(&buf, "r", root))

	expected := []byte{
		byte(TagCompound), 0, 1, 'r',
		byte(TagByte), 0, 1, 'a', 1,
		byte(TagShort), 0, 1, 'b', 2, 3,
		byte(TagEnd),
	}
	assert.Equal(t, expected, buf.Bytes())
}

func TestRoundTrip(t *testing.T) {
	child := NewCompound().Set("minecraft:air", int32(0))
	list := &List{Type: TagString, Items: []any{"x", "y"}}
	root := NewCompound().
		Set("Version", int32(2)).
		Set("Fill", int8(1)).
		Set("Width", int16(16)).
		Set("Long", int64(-5)).
		Set("Float", float32(1.5)).
		Set("Double", 2.25).
		Set("Offset", []int32{1, -2, 3}).
		Set("Longs", []int64{7}).
		Set("BlockData", []byte{0, 1, 2}).
		Set("Name", "schematic").
		Set("Palette", child).
		Set("List", list)

	var buf bytes.Buffer
	assert.NoError(t, Encode(&buf, "Schematic", root))

	name, decoded, err := Decode(&buf)
	assert.NoError(t, err)
	assert.Equal(t, "Schematic", name)
	assert.Equal(t, root.Names(), decoded.Names())

	version, err := decoded.GetInt("Version")
	assert.NoError(t, err)
	assert.Equal(t, int32(2), version)

	fill, err := decoded.GetByte("Fill")
	assert.NoError(t, err)
	assert.Equal(t, int8(1), fill)

	offset, err := decoded.GetIntArray("Offset")
	assert.NoError(t, err)
	assert.Equal(t, []int32{1, -2, 3}, offset)

	data, err := decoded.GetByteArray("BlockData")
	assert.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2}, data)

	palette, err := decoded.GetCompound("Palette")
	assert.NoError(t, err)
	air, err := palette.GetInt("minecraft:air")
	assert.NoError(t, err)
	assert.Equal(t, int32(0), air)

	value, ok := decoded.Get("List")
	assert.True(t, ok)
	decodedList, ok := value.(*List)
	assert.True(t, ok)
	assert.Equal(t, []any{"x", "y"}, decodedList.Items)
}

func TestSetKeepsPosition(t *testing.T) {
	c := NewCompound().Set("a", int32(1)).Set("b", int32(2)).Set("a", int32(3))
	assert.Equal(t, []string{"a", "b"}, c.Names())
	value, err := c.GetInt("a")
	assert.NoError(t, err)
	assert.Equal(t, int32(3), value)
}

func TestGetErrors(t *testing.T) {
	c := NewCompound().Set("a", int32(1))

	_, err := c.GetShort("missing")
	assert.ErrorContains(t, err, "missing short entry 'missing'")

	_, err = c.GetString("a")
	assert.ErrorContains(t, err, "is of type int, expected string")
}

func TestEncodeErrors(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, "", NewCompound().Set("bad", 1))
	assert.ErrorContains(t, err, "unsupported value type int")

	list := &List{Type: TagInt, Items: []any{int32(1), "x"}}
	err = Encode(&buf, "", NewCompound().Set("list", list))
	assert.ErrorContains(t, err, "list item 1 is of type string, expected int")
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		err   string
	}{
		{"empty", nil, "reading root tag"},
		{"wrong root", []byte{byte(TagInt), 0, 0}, "root tag is of type int"},
		{"truncated", []byte{byte(TagCompound), 0, 0, byte(TagInt), 0, 1, 'a', 0}, "reading root compound"},
		{"negative length", []byte{byte(TagCompound), 0, 0, byte(TagByteArray), 0, 0, 0xff, 0xff, 0xff, 0xff}, "invalid length -1"},
		{"unknown tag", []byte{byte(TagCompound), 0, 0, 99, 0, 0}, "unsupported tag type tag(99)"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, _, err := Decode(bytes.NewReader(test.input))
			assert.ErrorContains(t, err, test.err)
		})
	}
}
