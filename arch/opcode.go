// Package arch defines the CHIP-8 instruction set along with
// some related helper functions.
package arch

// Opcode identifies a concrete instruction after decoding.
type Opcode int

// Known opcodes. The comment holds the instruction word pattern.
const (
	Invalid Opcode = iota

	CLS // 00E0
	RET // 00EE

	JP   // 1NNN
	CALL // 2NNN
	JPV0 // BNNN

	SEB  // 3XNN
	SNEB // 4XNN
	SEV  // 5XY0
	SNEV // 9XY0

	LDB  // 6XNN
	ADDB // 7XNN

	LDV  // 8XY0
	OR   // 8XY1
	AND  // 8XY2
	XOR  // 8XY3
	ADDV // 8XY4
	SUB  // 8XY5
	SHR  // 8XY6
	SUBN // 8XY7
	SHL  // 8XYE

	LDI // ANNN
	RND // CXNN
	DRW // DXYN

	SKP  // EX9E
	SKNP // EXA1

	LDVDT // FX07
	LDK   // FX0A
	LDDT  // FX15
	LDST  // FX18
	ADDI  // FX1E
	LDF   // FX29
	LDBCD // FX33
	LDMV  // FX55
	LDVM  // FX65
)

// Lookup resolves decoded fields into a concrete opcode.
// Returns false if the instruction word is not assigned.
func Lookup(f Fields) (Opcode, bool) {
	switch f.Class {
	case 0x0:
		if f.X != 0 || f.Y != 0xe {
			return Invalid, false
		}
		switch f.N {
		case 0x0:
			return CLS, true
		case 0xe:
			return RET, true
		}
	case 0x1:
		return JP, true
	case 0x2:
		return CALL, true
	case 0x3:
		return SEB, true
	case 0x4:
		return SNEB, true
	case 0x5:
		if f.N == 0 {
			return SEV, true
		}
	case 0x6:
		return LDB, true
	case 0x7:
		return ADDB, true
	case 0x8:
		switch f.N {
		case 0x0:
			return LDV, true
		case 0x1:
			return OR, true
		case 0x2:
			return AND, true
		case 0x3:
			return XOR, true
		case 0x4:
			return ADDV, true
		case 0x5:
			return SUB, true
		case 0x6:
			return SHR, true
		case 0x7:
			return SUBN, true
		case 0xe:
			return SHL, true
		}
	case 0x9:
		if f.N == 0 {
			return SNEV, true
		}
	case 0xa:
		return LDI, true
	case 0xb:
		return JPV0, true
	case 0xc:
		return RND, true
	case 0xd:
		return DRW, true
	case 0xe:
		switch f.NN {
		case 0x9e:
			return SKP, true
		case 0xa1:
			return SKNP, true
		}
	case 0xf:
		switch f.NN {
		case 0x07:
			return LDVDT, true
		case 0x0a:
			return LDK, true
		case 0x15:
			return LDDT, true
		case 0x18:
			return LDST, true
		case 0x1e:
			return ADDI, true
		case 0x29:
			return LDF, true
		case 0x33:
			return LDBCD, true
		case 0x55:
			return LDMV, true
		case 0x65:
			return LDVM, true
		}
	}

	return Invalid, false
}

// Name returns the mnemonic for the given opcode.
// Returns false if the opcode is not recognized.
func Name(op Opcode) (string, bool) {
	switch op {
	case CLS:
		return "CLS", true
	case RET:
		return "RET", true

	case JP, JPV0:
		return "JP", true
	case CALL:
		return "CALL", true

	case SEB, SEV:
		return "SE", true
	case SNEB, SNEV:
		return "SNE", true

	case LDB, LDV, LDI, LDVDT, LDK, LDDT, LDST, LDF, LDBCD, LDMV, LDVM:
		return "LD", true
	case ADDB, ADDV, ADDI:
		return "ADD", true
	case OR:
		return "OR", true
	case AND:
		return "AND", true
	case XOR:
		return "XOR", true
	case SUB:
		return "SUB", true
	case SHR:
		return "SHR", true
	case SUBN:
		return "SUBN", true
	case SHL:
		return "SHL", true

	case RND:
		return "RND", true
	case DRW:
		return "DRW", true

	case SKP:
		return "SKP", true
	case SKNP:
		return "SKNP", true
	}

	return "", false
}

// IsSkip returns true for the conditional skip instructions.
func IsSkip(op Opcode) bool {
	switch op {
	case SEB, SNEB, SEV, SNEV, SKP, SKNP:
		return true
	}
	return false
}

// IsJump returns true for instructions after which execution never
// falls through to the next word.
func IsJump(op Opcode) bool {
	switch op {
	case JP, JPV0, RET:
		return true
	}
	return false
}
