package cpu

import (
	"github.com/hexaflex/c8vm/arch"
)

// exec executes the decoded instruction. Every handler leaves pc pointing
// at the next instruction to run.
func (c *CPU) exec(instr *Instruction) error {
	v := &c.v
	x := instr.X
	y := instr.Y
	nn := instr.NN
	nnn := instr.NNN

	switch instr.Opcode {
	case arch.CLS:
		c.display.Clear()
	case arch.RET:
		if c.sp == 0 {
			return NewError(instr, ErrStackUnderflow, "")
		}
		c.sp--
		c.pc = c.stack[c.sp] + 2
		return nil

	case arch.JP:
		c.pc = nnn
		return nil
	case arch.CALL:
		if c.sp == StackSize {
			return NewError(instr, ErrStackOverflow, "depth %d", StackSize)
		}
		c.stack[c.sp] = c.pc
		c.sp++
		c.pc = nnn
		return nil
	case arch.JPV0:
		c.pc = nnn + uint16(v[0])
		return nil

	case arch.SEB:
		c.skipIf(v[x] == nn)
		return nil
	case arch.SNEB:
		c.skipIf(v[x] != nn)
		return nil
	case arch.SEV:
		c.skipIf(v[x] == v[y])
		return nil
	case arch.SNEV:
		c.skipIf(v[x] != v[y])
		return nil
	case arch.SKP:
		c.skipIf(c.keypad.Pressed(int(v[x])))
		return nil
	case arch.SKNP:
		c.skipIf(!c.keypad.Pressed(int(v[x])))
		return nil

	case arch.LDB:
		v[x] = nn
	case arch.ADDB:
		v[x] += nn

	case arch.LDV:
		v[x] = v[y]
	case arch.OR:
		v[x] |= v[y]
	case arch.AND:
		v[x] &= v[y]
	case arch.XOR:
		v[x] ^= v[y]
	case arch.ADDV:
		sum := int(v[x]) + int(v[y])
		v[arch.FlagRegister] = flag(sum > 0xff)
		v[x] = byte(sum)
	case arch.SUB:
		a, b := v[x], v[y]
		v[arch.FlagRegister] = flag(a >= b)
		v[x] = a - b
	case arch.SUBN:
		a, b := v[x], v[y]
		v[arch.FlagRegister] = flag(b >= a)
		v[x] = b - a
	case arch.SHR:
		src := c.shiftSource(instr)
		v[arch.FlagRegister] = src & 1
		v[x] = src >> 1
	case arch.SHL:
		src := c.shiftSource(instr)
		v[arch.FlagRegister] = src >> 7
		v[x] = src << 1

	case arch.LDI:
		c.i = nnn
	case arch.ADDI:
		c.i = (c.i + uint16(v[x])) & AddressMask
	case arch.LDF:
		c.i = (GlyphBase + uint16(v[x])*GlyphSize) & AddressMask
	case arch.RND:
		v[x] = byte(c.rng.Intn(0x100)) & nn

	case arch.DRW:
		var sprite [15]byte
		rows := sprite[:instr.N]
		for r := range rows {
			rows[r] = byte(c.memory.U8(c.indexed(r)))
		}
		collision := c.display.Draw(int(v[x]), int(v[y]), rows, c.quirks.ClipSprites)
		v[arch.FlagRegister] = flag(collision)

	case arch.LDVDT:
		v[x] = c.timers.Delay
	case arch.LDDT:
		c.timers.Delay = v[x]
	case arch.LDST:
		c.timers.Sound = v[x]
	case arch.LDK:
		c.state = WaitingForKey
		c.waitReg = x
		return nil

	case arch.LDBCD:
		c.memory.SetU8(c.indexed(0), int(v[x]/100))
		c.memory.SetU8(c.indexed(1), int(v[x]/10%10))
		c.memory.SetU8(c.indexed(2), int(v[x]%10))
	case arch.LDMV:
		for r := 0; r <= int(x); r++ {
			c.memory.SetU8(c.indexed(r), int(v[r]))
		}
		c.advanceIndex(x)
	case arch.LDVM:
		for r := 0; r <= int(x); r++ {
			v[r] = byte(c.memory.U8(c.indexed(r)))
		}
		c.advanceIndex(x)

	default:
		return NewError(instr, ErrDecode, "no handler")
	}

	c.pc += 2
	return nil
}

// skipIf advances pc past the next instruction if cond holds,
// otherwise to the next instruction.
func (c *CPU) skipIf(cond bool) {
	if cond {
		c.pc += 4
	} else {
		c.pc += 2
	}
}

// shiftSource returns the operand of SHR and SHL for the selected quirks.
func (c *CPU) shiftSource(instr *Instruction) byte {
	if c.quirks.ShiftInPlace {
		return c.v[instr.X]
	}
	return c.v[instr.Y]
}

// indexed returns the address I+offset, wrapped to the address space.
func (c *CPU) indexed(offset int) int {
	return (int(c.i) + offset) & AddressMask
}

// advanceIndex moves I past the x+1 bytes a register dump or load touched.
func (c *CPU) advanceIndex(x uint8) {
	if !c.quirks.KeepIndex {
		c.i = (c.i + uint16(x) + 1) & AddressMask
	}
}

func flag(v bool) byte {
	if v {
		return 1
	}
	return 0
}
