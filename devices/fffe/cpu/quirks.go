package cpu

// Quirks selects between behaviours on which historical interpreters disagree.
// The zero value matches the COSMAC VIP interpreter.
type Quirks struct {
	// ShiftInPlace makes SHR and SHL shift VX itself instead of storing
	// the shifted VY into VX.
	ShiftInPlace bool

	// ClipSprites drops sprite pixels past the right and bottom display
	// edges instead of wrapping them around.
	ClipSprites bool

	// KeepIndex leaves I unchanged after the register dump and load
	// instructions instead of advancing it past the transferred range.
	KeepIndex bool
}
