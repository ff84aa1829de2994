package devices

// Memory defines read access to the system's memory bank.
type Memory interface {
	// Len returns the number of addressable bytes.
	Len() int

	// U8 returns the unsigned 8-bit value at the given address.
	U8(addr int) int

	// U16 returns the big-endian 16-bit value at the given address.
	U16(addr int) int

	// Read reads len(p) bytes from memory into p, starting at the given address.
	Read(address int, p []byte)
}

// Bus defines the machine state a peripheral may touch between cycles.
type Bus interface {
	// Pixels returns the display buffer in row-major order, one byte
	// per pixel holding 0 or 1. The slice must not be retained.
	Pixels() []byte

	// Redraw reports whether the display changed since the last ClearRedraw.
	Redraw() bool
	ClearRedraw()

	// SetKey sets the pressed state of hex key k.
	SetKey(k int, pressed bool)

	// SoundActive reports whether the sound timer is running.
	SoundActive() bool
}
