package arch

// InstructionSize is the size of every instruction word in bytes.
const InstructionSize = 2

// Fields holds the nibble fields of a single instruction word.
type Fields struct {
	Word  uint16 // Raw instruction word.
	Class uint8  // Bits 12-15.
	X     uint8  // Bits 8-11: register index.
	Y     uint8  // Bits 4-7: register index.
	N     uint8  // Bits 0-3: immediate nibble.
	NN    uint8  // Bits 0-7: immediate byte.
	NNN   uint16 // Bits 0-11: immediate address.
}

// Decode splits the given instruction word into its fields.
func Decode(word uint16) Fields {
	return Fields{
		Word:  word,
		Class: uint8(word >> 12),
		X:     uint8(word>>8) & 0xf,
		Y:     uint8(word>>4) & 0xf,
		N:     uint8(word) & 0xf,
		NN:    uint8(word),
		NNN:   word & 0xfff,
	}
}

// Word assembles an instruction word from big-endian bytes hi and lo.
func Word(hi, lo byte) uint16 {
	return uint16(hi)<<8 | uint16(lo)
}
