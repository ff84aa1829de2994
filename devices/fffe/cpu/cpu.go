// Package cpu implements the CHIP-8 CPU and the machine state it owns.
package cpu

import (
	"io"
	"log"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/hexaflex/c8vm/devices"
	"github.com/hexaflex/c8vm/devices/fffe/clock"
)

// TraceFunc represents a callback handler for debug trace output.
type TraceFunc func(*Instruction)

// Random is the source for the RND instruction. *rand.Rand satisfies it.
type Random interface {
	Intn(n int) int
}

// State defines the execution state of the CPU.
type State int

// Known execution states.
const (
	Running       State = iota // Fetching and executing instructions.
	WaitingForKey              // Suspended by LD Vx, K until a key goes down.
	Halted                     // Stopped by a fatal error.
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case WaitingForKey:
		return "waiting for key"
	case Halted:
		return "halted"
	}
	return "unknown"
}

// CPU implements the runtime.
type CPU struct {
	devices     devices.Map     // Connected peripherals.
	trace       TraceFunc       // Handler for debug trace output.
	beep        func()          // Handler for the sound cue.
	rng         Random          // Random number generator.
	clock       Clock           // Timer tick source.
	quirks      Quirks          // Selected compatibility behaviour.
	memory      Memory          // System memory.
	instr       Instruction     // Decoded instruction data.
	v           [16]byte        // General purpose registers V0-VF.
	i           uint16          // Index register.
	pc          uint16          // Program counter.
	stack       [StackSize]uint16
	sp          int
	timers      Timers
	display     Display
	keypad      Keypad
	state       State
	waitReg     uint8  // Target register while in WaitingForKey.
	err         error  // Fatal error which halted the cpu.
	initialized uint32 // Is there a valid machine state?
}

var _ devices.Bus = &CPU{}

// New creates a new CPU.
// Optionally with the given debug trace handler.
func New(trace TraceFunc) *CPU {
	if trace == nil {
		trace = func(*Instruction) { /* nop */ }
	}

	return &CPU{
		trace:  trace,
		beep:   func() { /* nop */ },
		memory: make(Memory, MemorySize),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		clock:  clock.New(TimerRate),
	}
}

// ID returns the cpu's device ID.
func (c *CPU) ID() devices.ID {
	return devices.NewID(0xfffe, 0x0001)
}

// Connect connects the given hardware peripheral to the system.
// Returns false if the given device type is already connected.
func (c *CPU) Connect(dev devices.Device) bool {
	return c.devices.Connect(dev)
}

// SetRandom replaces the random source used by RND.
func (c *CPU) SetRandom(r Random) { c.rng = r }

// SetClock replaces the timer tick source.
func (c *CPU) SetClock(clk Clock) { c.clock = clk }

// SetQuirks selects compatibility behaviour.
func (c *CPU) SetQuirks(q Quirks) { c.quirks = q }

// SetBeep sets the handler called whenever the sound timer runs out.
func (c *CPU) SetBeep(f func()) {
	if f == nil {
		f = func() { /* nop */ }
	}
	c.beep = f
}

// Startup resets all machine state, loads the glyph table and initializes
// connected peripherals.
// Returns an error if the cpu is already running. Use Shutdown() first.
func (c *CPU) Startup() error {
	if !atomic.CompareAndSwapUint32(&c.initialized, 0, 1) {
		return errors.New(c.ID().String() + " cpu is already started")
	}

	log.Println(c.ID(), "startup")
	for i := range c.memory {
		c.memory[i] = 0
	}

	c.memory.Write(GlyphBase, glyphs[:])
	c.v = [16]byte{}
	c.i = 0
	c.pc = ProgramStart
	c.stack = [StackSize]uint16{}
	c.sp = 0
	c.timers = Timers{}
	c.display = Display{}
	c.keypad = Keypad{}
	c.state = Running
	c.err = nil

	return c.devices.Startup()
}

// Shutdown cleans up internal resources.
func (c *CPU) Shutdown() error {
	if !atomic.CompareAndSwapUint32(&c.initialized, 1, 0) {
		return nil
	}
	log.Println(c.ID(), "shutdown")
	return c.devices.Shutdown()
}

// Load reads a raw program image from r into memory at ProgramStart.
// Returns an error wrapping ErrLoad if the image does not fit.
func (c *CPU) Load(r io.Reader) error {
	if atomic.LoadUint32(&c.initialized) == 0 {
		return errors.New(c.ID().String() + " cpu is not started")
	}

	program, err := io.ReadAll(io.LimitReader(r, MaxProgramSize+1))
	if err != nil {
		return errors.Wrapf(err, "read program")
	}

	if len(program) > MaxProgramSize {
		return errors.Wrapf(ErrLoad, "image exceeds %d bytes", MaxProgramSize)
	}

	c.memory.Write(ProgramStart, program)
	log.Printf("%s loaded %d bytes at %03x", c.ID(), len(program), ProgramStart)
	return nil
}

// Step performs a single execution step.
// Returns io.EOF if the cpu is not started. Once a fatal error occurred,
// every call returns that error.
//
// Step never blocks: while waiting for a key it only polls the keypad.
func (c *CPU) Step() error {
	if atomic.LoadUint32(&c.initialized) == 0 {
		return io.EOF
	}

	switch c.state {
	case Halted:
		return c.err

	case WaitingForKey:
		if key, ok := c.keypad.justPressed(); ok {
			c.v[c.waitReg] = byte(key)
			c.pc += 2
			c.state = Running
		}

	case Running:
		instr := &c.instr

		if err := instr.Decode(c.memory, c.pc); err != nil {
			return c.halt(err)
		}

		c.trace(instr)

		if err := c.exec(instr); err != nil {
			return c.halt(err)
		}
	}

	for n := c.clock.Ticks(); n > 0; n-- {
		if c.timers.Tick() {
			c.beep()
		}
	}

	c.keypad.latch()
	return nil
}

// Sync hands the peripheral bus to every connected device.
// The host calls it between cycles.
func (c *CPU) Sync() {
	c.devices.Update(c)
}

// halt stops execution with the given fatal error.
func (c *CPU) halt(err error) error {
	c.state = Halted
	c.err = err
	log.Println(c.ID(), "halted:", err)
	return err
}

// State returns the current execution state.
func (c *CPU) State() State {
	return c.state
}

// Memory returns the cpu's internal memory bank.
func (c *CPU) Memory() Memory {
	return c.memory
}

// Pixels returns the display buffer.
func (c *CPU) Pixels() []byte {
	return c.display.Pixels()
}

// Redraw reports whether the display changed since it was last consumed.
func (c *CPU) Redraw() bool {
	return c.display.Redraw()
}

// ClearRedraw marks the display as consumed.
func (c *CPU) ClearRedraw() {
	c.display.ClearRedraw()
}

// SetKey sets the pressed state of hex key k.
func (c *CPU) SetKey(k int, pressed bool) {
	c.keypad.Set(k, pressed)
}

// SoundActive returns true while the sound timer is running.
func (c *CPU) SoundActive() bool {
	return c.timers.SoundActive()
}

// Registers holds a snapshot of the register file.
type Registers struct {
	V     [16]byte
	I     uint16
	PC    uint16
	SP    int
	Stack [StackSize]uint16
	DT    uint8
	ST    uint8
}

// Registers returns a snapshot of the register file and timers.
func (c *CPU) Registers() Registers {
	return Registers{
		V:     c.v,
		I:     c.i,
		PC:    c.pc,
		SP:    c.sp,
		Stack: c.stack,
		DT:    c.timers.Delay,
		ST:    c.timers.Sound,
	}
}
