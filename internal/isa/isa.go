// Package isa contains the BatPU-2 instruction set definition.
//
// Every mnemonic maps to a Shape that declares the opcode and the bit field layout
// of the encoded 16 bit word. Pseudo instructions are shapes that reference a real
// opcode and fill some of its fields from the operands of the pseudo instruction or
// from fixed values.
package isa

import "strings"

const (
	// WordBits is the size of an instruction word in bits.
	WordBits = 16
	// MemorySize is the number of instruction words addressable by the CPU.
	MemorySize = 1024
	// RegisterCount is the number of general purpose registers.
	RegisterCount = 16
	// InstructionWidth is the number of address units an instruction occupies.
	InstructionWidth = 1
)

// FieldKind defines how an operand of a field is interpreted.
type FieldKind uint8

const (
	RegisterField FieldKind = iota // register index r0..r15
	ValueField                     // resolved integer value
)

// Field describes a bit field of an encoded instruction.
type Field struct {
	Name  string
	Kind  FieldKind
	Shift int // bit position of the least significant bit
	Bits  int

	// Min and Max define the accepted operand range. Negative values are stored
	// as two's complement in the field.
	Min int
	Max int
}

// Mask returns the mask of the field value before shifting.
func (f Field) Mask() uint16 {
	return uint16(1<<f.Bits - 1)
}

// Pack returns the value placed at the field position. The value has to be
// validated against the field range before.
func (f Field) Pack(value int) uint16 {
	return (uint16(value) & f.Mask()) << f.Shift
}

// Operand describes where the value of a field comes from. A field is either
// filled from an operand of the statement or from a fixed value.
type Operand struct {
	Field    Field
	Index    int  // index of the statement operand, -1 if Fixed is used
	Fixed    int  // fixed field value
	Optional bool // operand can be omitted, Fixed is used as default then
}

// Shape defines an instruction with its opcode and encoded field layout.
type Shape struct {
	Name     string
	Opcode   uint8
	Width    int // width in address units
	Operands []Operand
	Pseudo   bool
}

// Arity returns the minimum and maximum number of statement operands.
func (s Shape) Arity() (int, int) {
	var lower, upper int
	for _, op := range s.Operands {
		if op.Index < 0 {
			continue
		}
		if op.Index+1 > upper {
			upper = op.Index + 1
		}
		if !op.Optional && op.Index+1 > lower {
			lower = op.Index + 1
		}
	}
	return lower, upper
}

// opcodes of the BatPU-2.
const (
	Nop uint8 = iota
	Hlt
	Add
	Sub
	Nor
	And
	Xor
	Rsh
	Ldi
	Adi
	Jmp
	Brh
	Cal
	Ret
	Lod
	Str
)

// field layouts shared by the instructions.
var (
	RegA      = Field{Name: "reg A", Kind: RegisterField, Shift: 8, Bits: 4, Min: 0, Max: 15}
	RegB      = Field{Name: "reg B", Kind: RegisterField, Shift: 4, Bits: 4, Min: 0, Max: 15}
	RegC      = Field{Name: "reg C", Kind: RegisterField, Shift: 0, Bits: 4, Min: 0, Max: 15}
	Immediate = Field{Name: "immediate", Kind: ValueField, Shift: 0, Bits: 8, Min: -128, Max: 255}
	Address   = Field{Name: "address", Kind: ValueField, Shift: 0, Bits: 10, Min: 0, Max: MemorySize - 1}
	Condition = Field{Name: "condition", Kind: ValueField, Shift: 10, Bits: 2, Min: 0, Max: 3}
	Offset    = Field{Name: "offset", Kind: ValueField, Shift: 0, Bits: 4, Min: -8, Max: 7}
	DataWord  = Field{Name: "data word", Kind: ValueField, Shift: 0, Bits: 16, Min: -32768, Max: 65535}
)

func op(field Field, index int) Operand {
	return Operand{Field: field, Index: index}
}

func fixed(field Field, value int) Operand {
	return Operand{Field: field, Index: -1, Fixed: value}
}

func optional(field Field, index, def int) Operand {
	return Operand{Field: field, Index: index, Fixed: def, Optional: true}
}

func shape(name string, opcode uint8, operands ...Operand) Shape {
	return Shape{Name: name, Opcode: opcode, Width: InstructionWidth, Operands: operands}
}

func pseudo(name string, opcode uint8, operands ...Operand) Shape {
	s := shape(name, opcode, operands...)
	s.Pseudo = true
	return s
}

// Shapes maps all supported mnemonics to their instruction shape.
var Shapes = map[string]Shape{
	"nop": shape("nop", Nop),
	"hlt": shape("hlt", Hlt),
	"add": shape("add", Add, op(RegA, 0), op(RegB, 1), op(RegC, 2)),
	"sub": shape("sub", Sub, op(RegA, 0), op(RegB, 1), op(RegC, 2)),
	"nor": shape("nor", Nor, op(RegA, 0), op(RegB, 1), op(RegC, 2)),
	"and": shape("and", And, op(RegA, 0), op(RegB, 1), op(RegC, 2)),
	"xor": shape("xor", Xor, op(RegA, 0), op(RegB, 1), op(RegC, 2)),
	"rsh": shape("rsh", Rsh, op(RegA, 0), op(RegC, 1)),
	"ldi": shape("ldi", Ldi, op(RegA, 0), op(Immediate, 1)),
	"adi": shape("adi", Adi, op(RegA, 0), op(Immediate, 1)),
	"jmp": shape("jmp", Jmp, op(Address, 0)),
	"brh": shape("brh", Brh, op(Condition, 0), op(Address, 1)),
	"cal": shape("cal", Cal, op(Address, 0)),
	"ret": shape("ret", Ret),
	"lod": shape("lod", Lod, op(RegA, 0), op(RegB, 1), optional(Offset, 2, 0)),
	"str": shape("str", Str, op(RegA, 0), op(RegB, 1), optional(Offset, 2, 0)),

	"cmp": pseudo("cmp", Sub, op(RegA, 0), op(RegB, 1), fixed(RegC, 0)),
	"mov": pseudo("mov", Add, op(RegA, 0), fixed(RegB, 0), op(RegC, 1)),
	"lsh": pseudo("lsh", Add, op(RegA, 0), op(RegB, 0), op(RegC, 1)),
	"inc": pseudo("inc", Adi, op(RegA, 0), fixed(Immediate, 1)),
	"dec": pseudo("dec", Adi, op(RegA, 0), fixed(Immediate, -1)),
	"not": pseudo("not", Nor, op(RegA, 0), fixed(RegB, 0), op(RegC, 1)),
	"neg": pseudo("neg", Sub, fixed(RegA, 0), op(RegB, 0), op(RegC, 1)),
}

// Lookup returns the shape of the given mnemonic, the lookup is case-insensitive.
func Lookup(mnemonic string) (Shape, bool) {
	s, ok := Shapes[strings.ToLower(mnemonic)]
	return s, ok
}

// Encode packs the opcode into the upper 4 bits of an instruction word.
func (s Shape) Encode() uint16 {
	return uint16(s.Opcode) << 12
}

// Directive names.
const (
	Define  = "define"
	Org     = "org"
	Align   = "align"
	Reserve = "reserve"
	Dw      = "dw"
)

// DirectiveArity maps the directive names to the minimum and maximum argument count,
// a maximum of -1 allows any number of arguments.
var DirectiveArity = map[string][2]int{
	Define:  {2, 2},
	Org:     {1, 1},
	Align:   {1, 1},
	Reserve: {1, 1},
	Dw:      {1, -1},
}

// IsDirective returns whether the name is a directive.
func IsDirective(name string) bool {
	_, ok := DirectiveArity[strings.ToLower(name)]
	return ok
}

// Register returns the index of the register name r0..r15.
func Register(name string) (int, bool) {
	name = strings.ToLower(name)
	if len(name) < 2 || len(name) > 3 || name[0] != 'r' {
		return 0, false
	}
	index := 0
	for _, c := range name[1:] {
		if c < '0' || c > '9' {
			return 0, false
		}
		index = index*10 + int(c-'0')
	}
	if len(name) == 3 && name[1] == '0' {
		return 0, false
	}
	if index >= RegisterCount {
		return 0, false
	}
	return index, true
}

// IsReserved returns whether the name is reserved and can not be used as symbol name.
func IsReserved(name string) bool {
	name = strings.ToLower(name)
	if _, ok := Shapes[name]; ok {
		return true
	}
	if IsDirective(name) {
		return true
	}
	_, ok := Register(name)
	return ok
}
