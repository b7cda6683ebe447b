package schematic

import "fmt"

// PaletteOverflowError is returned when a schematic needs more distinct cell
// types than the configured palette cap allows.
type PaletteOverflowError struct {
	Cap     int
	Block   string // first cell type that did not fit
	Address int
}

func (e *PaletteOverflowError) Error() string {
	return fmt.Sprintf("palette overflow at address %d: cell type '%s' exceeds the palette cap of %d entries",
		e.Address, e.Block, e.Cap)
}

// PlacementCollisionError is returned when two cells are placed at the same
// coordinate, this happens for duplicate word addresses.
type PlacementCollisionError struct {
	Address int
	Other   int
	Coord   [3]int
}

func (e *PlacementCollisionError) Error() string {
	return fmt.Sprintf("placement collision at %v: address %d overlaps address %d", e.Coord, e.Address, e.Other)
}

// OptionsError is returned for invalid placement options.
type OptionsError struct {
	Field string
	Value string
	Cause string
}

func (e *OptionsError) Error() string {
	return fmt.Sprintf("invalid schematic option %s '%s': %s", e.Field, e.Value, e.Cause)
}
