package program

// WordType defines the type of a program word.
type WordType uint8

// word types.
const (
	UnknownWord     WordType = 0
	InstructionWord WordType = 1 << iota
	DataWord
	FillWord    // zero word padding unused memory
	LabelTarget // address is the destination of a label
)

// IsType returns whether the word is of given type.
func (w *Word) IsType(typ WordType) bool {
	return w.Type&typ != 0
}

// SetType sets the type of the word.
func (w *Word) SetType(typ WordType) {
	w.Type |= typ
}

// ClearType unsets the type of the word.
func (w *Word) ClearType(typ WordType) {
	mask := ^(typ)
	w.Type &= mask
}
