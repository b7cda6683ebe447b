// Package nbt implements the subset of the Minecraft Named Binary Tag format
// that is needed to read and write schematic files.
//
// Compounds keep the insertion order of their entries so that encoding the
// same tree always results in the same bytes.
package nbt

import (
	"fmt"
)

// Tag is the type identifier of an encoded value.
type Tag byte

// tag types.
const (
	TagEnd Tag = iota
	TagByte
	TagShort
	TagInt
	TagLong
	TagFloat
	TagDouble
	TagByteArray
	TagString
	TagList
	TagCompound
	TagIntArray
	TagLongArray
)

var tagNames = map[Tag]string{
	TagEnd:       "end",
	TagByte:      "byte",
	TagShort:     "short",
	TagInt:       "int",
	TagLong:      "long",
	TagFloat:     "float",
	TagDouble:    "double",
	TagByteArray: "byte array",
	TagString:    "string",
	TagList:      "list",
	TagCompound:  "compound",
	TagIntArray:  "int array",
	TagLongArray: "long array",
}

func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tag(%d)", byte(t))
}

// List is a list of values that all have the same tag type.
type List struct {
	Type  Tag
	Items []any
}

type entry struct {
	name  string
	value any
}

// Compound is an ordered set of named values. Supported value types are int8,
// int16, int32, int64, float32, float64, []byte, string, []int32, []int64,
// *List and *Compound.
type Compound struct {
	entries []entry
	index   map[string]int
}

// NewCompound returns an empty compound.
func NewCompound() *Compound {
	return &Compound{
		index: make(map[string]int),
	}
}

// Set stores the value under the name. Setting an existing name replaces the
// value but keeps its position.
func (c *Compound) Set(name string, value any) *Compound {
	if i, ok := c.index[name]; ok {
		c.entries[i].value = value
		return c
	}
	c.index[name] = len(c.entries)
	c.entries = append(c.entries, entry{name: name, value: value})
	return c
}

// Get returns the value stored under the name.
func (c *Compound) Get(name string) (any, bool) {
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}
	return c.entries[i].value, true
}

// Len returns the number of entries.
func (c *Compound) Len() int {
	return len(c.entries)
}

// Names returns the entry names in insertion order.
func (c *Compound) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.name
	}
	return names
}

// GetByte returns the byte value stored under the name, NBT stores booleans
// as bytes.
func (c *Compound) GetByte(name string) (int8, error) {
	return get[int8](c, name, TagByte)
}

// GetShort returns the short value stored under the name.
func (c *Compound) GetShort(name string) (int16, error) {
	return get[int16](c, name, TagShort)
}

// GetInt returns the int value stored under the name.
func (c *Compound) GetInt(name string) (int32, error) {
	return get[int32](c, name, TagInt)
}

// GetLong returns the long value stored under the name.
func (c *Compound) GetLong(name string) (int64, error) {
	return get[int64](c, name, TagLong)
}

// GetString returns the string value stored under the name.
func (c *Compound) GetString(name string) (string, error) {
	return get[string](c, name, TagString)
}

// GetByteArray returns the byte array stored under the name.
func (c *Compound) GetByteArray(name string) ([]byte, error) {
	return get[[]byte](c, name, TagByteArray)
}

// GetIntArray returns the int array stored under the name.
func (c *Compound) GetIntArray(name string) ([]int32, error) {
	return get[[]int32](c, name, TagIntArray)
}

// GetCompound returns the child compound stored under the name.
func (c *Compound) GetCompound(name string) (*Compound, error) {
	return get[*Compound](c, name, TagCompound)
}

func get[T any](c *Compound, name string, tag Tag) (T, error) {
	var zero T
	value, ok := c.Get(name)
	if !ok {
		return zero, fmt.Errorf("missing %s entry '%s'", tag, name)
	}
	typed, ok := value.(T)
	if !ok {
		actual, _ := tagOf(value)
		return zero, fmt.Errorf("entry '%s' is of type %s, expected %s", name, actual, tag)
	}
	return typed, nil
}

// tagOf returns the tag type of a supported value.
func tagOf(value any) (Tag, error) {
	switch value.(type) {
	case int8:
		return TagByte, nil
	case int16:
		return TagShort, nil
	case int32:
		return TagInt, nil
	case int64:
		return TagLong, nil
	case float32:
		return TagFloat, nil
	case float64:
		return TagDouble, nil
	case []byte:
		return TagByteArray, nil
	case string:
		return TagString, nil
	case *List:
		return TagList, nil
	case *Compound:
		return TagCompound, nil
	case []int32:
		return TagIntArray, nil
	case []int64:
		return TagLongArray, nil
	default:
		return TagEnd, fmt.Errorf("unsupported value type %T", value)
	}
}
