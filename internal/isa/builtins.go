package isa

import "strings"

// Builtin is a predefined symbol of the BatPU-2 environment.
type Builtin struct {
	Name  string
	Value int
}

// conditions of the brh instruction, all aliases of a row share the value.
var conditions = [][]string{
	{"eq", "=", "z", "zero"},
	{"ne", "!=", "nz", "notzero"},
	{"ge", ">=", "c", "carry"},
	{"lt", "<", "nc", "notcarry"},
}

// PortBase is the memory address of the first I/O port.
const PortBase = 240

var ports = []string{
	"pixel_x",
	"pixel_y",
	"draw_pixel",
	"clear_pixel",
	"load_pixel",
	"buffer_screen",
	"clear_screen_buffer",
	"write_char",
	"buffer_chars",
	"clear_chars_buffer",
	"show_number",
	"clear_number",
	"signed_mode",
	"unsigned_mode",
	"rng",
	"controller_input",
}

// Characters lists the characters of the character display in the order of their codes.
const Characters = " abcdefghijklmnopqrstuvwxyz.!?"

// Builtins returns all predefined symbols in a stable order.
func Builtins() []Builtin {
	var builtins []Builtin
	for value, aliases := range conditions {
		for _, name := range aliases {
			builtins = append(builtins, Builtin{Name: name, Value: value})
		}
	}
	for i, name := range ports {
		builtins = append(builtins, Builtin{Name: name, Value: PortBase + i})
	}
	return builtins
}

// Character returns the display code of the character.
func Character(c rune) (int, bool) {
	index := strings.IndexRune(Characters, toLower(c))
	if index < 0 {
		return 0, false
	}
	return index, true
}

func toLower(c rune) rune {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}
