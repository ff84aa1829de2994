package cpu

import (
	"github.com/hexaflex/c8vm/arch"
	"github.com/hexaflex/c8vm/devices"
)

const (
	MemorySize     = 0x1000                    // Total memory capacity.
	AddressMask    = MemorySize - 1            // Mask applied to index-relative addresses.
	ProgramStart   = 0x200                     // Load address and initial PC.
	MaxProgramSize = MemorySize - ProgramStart // Largest image that fits in memory.
	GlyphBase      = 0x000                     // Address of the hex digit glyph table.
	GlyphSize      = 5                         // Bytes per glyph.
	GlyphTableSize = GlyphSize * 16            // Bytes in the glyph table.
	StackSize      = 16                        // Call stack depth.
)

var _ devices.Memory = Memory(nil)

// Memory defines the system's memory bank.
type Memory []byte

// Len returns the number of addressable bytes.
func (m Memory) Len() int {
	return len(m)
}

// SetU8 sets the 8-bit value at the given address.
func (m Memory) SetU8(addr, value int) {
	m[addr] = byte(value)
}

// U8 returns the 8-bit value at the given address.
func (m Memory) U8(addr int) int {
	return int(m[addr])
}

// SetU16 sets the big-endian 16-bit value at the given address.
func (m Memory) SetU16(addr, value int) {
	m[addr] = byte(value >> 8)
	m[addr+1] = byte(value)
}

// U16 returns the big-endian 16-bit value at the given address.
func (m Memory) U16(addr int) int {
	return int(uint16(m[addr])<<8 | uint16(m[addr+1]))
}

// Write writes len(p) bytes from p into memory, starting at the given address.
func (m Memory) Write(address int, p []byte) {
	copy(m[address:], p)
}

// Read reads len(p) bytes from memory into p, starting at the given address.
func (m Memory) Read(address int, p []byte) {
	copy(p, m[address:])
}

// fetch reads the instruction word at pc.
func (m Memory) fetch(pc uint16) (uint16, bool) {
	if int(pc)+1 >= len(m) {
		return 0, false
	}
	return arch.Word(m[pc], m[pc+1]), true
}

// glyphs holds the 4x5 bitmaps for the hex digits 0 through F.
var glyphs = [GlyphTableSize]byte{
	0xf0, 0x90, 0x90, 0x90, 0xf0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xf0, 0x10, 0xf0, 0x80, 0xf0, // 2
	0xf0, 0x10, 0xf0, 0x10, 0xf0, // 3
	0x90, 0x90, 0xf0, 0x10, 0x10, // 4
	0xf0, 0x80, 0xf0, 0x10, 0xf0, // 5
	0xf0, 0x80, 0xf0, 0x90, 0xf0, // 6
	0xf0, 0x10, 0x20, 0x40, 0x40, // 7
	0xf0, 0x90, 0xf0, 0x90, 0xf0, // 8
	0xf0, 0x90, 0xf0, 0x10, 0xf0, // 9
	0xf0, 0x90, 0xf0, 0x90, 0x90, // A
	0xe0, 0x90, 0xe0, 0x90, 0xe0, // B
	0xf0, 0x80, 0x80, 0x80, 0xf0, // C
	0xe0, 0x90, 0x90, 0x90, 0xe0, // D
	0xf0, 0x80, 0xf0, 0x80, 0xf0, // E
	0xf0, 0x80, 0xf0, 0x80, 0x80, // F
}
