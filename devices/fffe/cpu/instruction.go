package cpu

import (
	"github.com/hexaflex/c8vm/arch"
)

// Instruction defines decoded instruction data.
type Instruction struct {
	arch.Fields
	IP     uint16      // Instruction address.
	Opcode arch.Opcode // Resolved opcode.
}

// Decode decodes the instruction at address pc from the given memory bank.
func (i *Instruction) Decode(m Memory, pc uint16) error {
	i.IP = pc
	i.Opcode = arch.Invalid

	word, ok := m.fetch(pc)
	if !ok {
		i.Fields = arch.Fields{}
		return NewError(i, ErrAddressRange, "fetch beyond %03x", len(m)-1)
	}

	i.Fields = arch.Decode(word)

	op, ok := arch.Lookup(i.Fields)
	if !ok {
		return NewError(i, ErrDecode, "")
	}

	i.Opcode = op
	return nil
}
