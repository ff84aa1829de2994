// Package disasm renders CHIP-8 instruction words as assembly text.
//
// Mnemonics follow the common CHIP-8 reference notation with `$` prefixed
// hexadecimal operands:
//
//	LD V1, $2A
//	DRW V0, V1, $5
//	LD [I], V3
//
// Words which do not encode a known instruction are rendered as data.
package disasm

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/hexaflex/c8vm/arch"
	"github.com/hexaflex/c8vm/devices"
)

// Format returns the assembly text for the given instruction.
// Unassigned words yield a `DW` data directive.
func Format(f arch.Fields) string {
	op, ok := arch.Lookup(f)
	if !ok {
		return fmt.Sprintf("DW $%04X", f.Word)
	}

	name, _ := arch.Name(op)
	vx := arch.RegisterName(int(f.X))
	vy := arch.RegisterName(int(f.Y))

	switch op {
	case arch.CLS, arch.RET:
		return name
	case arch.JP, arch.CALL:
		return fmt.Sprintf("%s $%03X", name, f.NNN)
	case arch.JPV0:
		return fmt.Sprintf("%s V0, $%03X", name, f.NNN)
	case arch.SEB, arch.SNEB, arch.LDB, arch.ADDB, arch.RND:
		return fmt.Sprintf("%s %s, $%02X", name, vx, f.NN)
	case arch.SEV, arch.SNEV, arch.LDV, arch.OR, arch.AND, arch.XOR,
		arch.ADDV, arch.SUB, arch.SHR, arch.SUBN, arch.SHL:
		return fmt.Sprintf("%s %s, %s", name, vx, vy)
	case arch.LDI:
		return fmt.Sprintf("%s I, $%03X", name, f.NNN)
	case arch.DRW:
		return fmt.Sprintf("%s %s, %s, $%X", name, vx, vy, f.N)
	case arch.SKP, arch.SKNP:
		return fmt.Sprintf("%s %s", name, vx)
	case arch.LDVDT:
		return fmt.Sprintf("%s %s, DT", name, vx)
	case arch.LDK:
		return fmt.Sprintf("%s %s, K", name, vx)
	case arch.LDDT:
		return fmt.Sprintf("%s DT, %s", name, vx)
	case arch.LDST:
		return fmt.Sprintf("%s ST, %s", name, vx)
	case arch.ADDI:
		return fmt.Sprintf("%s I, %s", name, vx)
	case arch.LDF:
		return fmt.Sprintf("%s F, %s", name, vx)
	case arch.LDBCD:
		return fmt.Sprintf("%s B, %s", name, vx)
	case arch.LDMV:
		return fmt.Sprintf("%s [I], %s", name, vx)
	case arch.LDVM:
		return fmt.Sprintf("%s %s, [I]", name, vx)
	}

	return fmt.Sprintf("DW $%04X", f.Word)
}

// Line returns a single listing line for the word at addr.
func Line(addr int, word uint16) string {
	return fmt.Sprintf("%03X  %04X  %s", addr, word, Format(arch.Decode(word)))
}

// Listing writes the disassembly of memory in the range [from, to) to w.
// The range is clipped to the memory size. A trailing odd byte is
// written as a `DB` data directive.
//
// Lines following a skip are indented, and a blank line follows
// every instruction execution can not fall through.
func Listing(w io.Writer, mem devices.Memory, from, to int) error {
	if to > mem.Len() {
		to = mem.Len()
	}
	if from < 0 {
		from = 0
	}

	var sb strings.Builder
	var skipped bool

	for addr := from; addr < to; addr += arch.InstructionSize {
		if addr+1 >= to {
			fmt.Fprintf(&sb, "%03X  %02X    DB $%02X\n", addr, mem.U8(addr), mem.U8(addr))
			break
		}

		word := uint16(mem.U16(addr))
		f := arch.Decode(word)
		op, _ := arch.Lookup(f)

		if skipped {
			sb.WriteByte(' ')
		}
		sb.WriteString(Line(addr, word))
		sb.WriteByte('\n')

		if arch.IsJump(op) && !skipped {
			sb.WriteByte('\n')
		}
		skipped = arch.IsSkip(op)
	}

	_, err := io.WriteString(w, sb.String())
	return errors.Wrapf(err, "write listing")
}
