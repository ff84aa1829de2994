package cpu

import (
	"bytes"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/pkg/errors"

	"github.com/hexaflex/c8vm/devices"
)

// manualClock hands out the ticks queued in n on the next call.
type manualClock struct {
	n int
}

func (m *manualClock) Ticks() int {
	n := m.n
	m.n = 0
	return n
}

type fixedRandom byte

func (r fixedRandom) Intn(n int) int { return int(r) % n }

func program(words ...uint16) []byte {
	p := make([]byte, 0, len(words)*2)
	for _, w := range words {
		p = append(p, byte(w>>8), byte(w))
	}
	return p
}

// newTestCPU returns a started cpu with a deterministic clock and random
// source, with the given instruction words loaded.
func newTestCPU(t *testing.T, words ...uint16) *CPU {
	t.Helper()

	c := New(nil)
	c.SetClock(&manualClock{})
	c.SetRandom(fixedRandom(0xab))

	if err := c.Startup(); err != nil {
		t.Fatalf("Startup failure: %v", err)
	}
	t.Cleanup(func() { c.Shutdown() })

	if len(words) > 0 {
		if err := c.Load(bytes.NewReader(program(words...))); err != nil {
			t.Fatalf("Load failure: %v", err)
		}
	}
	return c
}

func step(t *testing.T, c *CPU) {
	t.Helper()
	if err := c.Step(); err != nil {
		t.Fatalf("Step failure at %03x: %v", c.pc, err)
	}
}

func TestStartup(t *testing.T) {
	c := newTestCPU(t)

	if diff := cmp.Diff(glyphs[:], []byte(c.memory[GlyphBase:GlyphBase+GlyphTableSize])); diff != "" {
		t.Fatalf("glyph table mismatch (-want +have):\n%s", diff)
	}

	want := Registers{PC: ProgramStart}
	if diff := cmp.Diff(want, c.Registers()); diff != "" {
		t.Fatalf("initial registers mismatch (-want +have):\n%s", diff)
	}

	if c.State() != Running {
		t.Fatalf("expected running state; have %v", c.State())
	}

	if err := c.Startup(); err == nil {
		t.Fatalf("expected error on second Startup")
	}
}

func TestStartupResets(t *testing.T) {
	c := newTestCPU(t, 0x6a12, 0xa123, 0x2300)
	step(t, c)
	step(t, c)
	step(t, c)
	c.memory.SetU8(GlyphBase, 0)

	c.Shutdown()
	if err := c.Startup(); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(Registers{PC: ProgramStart}, c.Registers()); diff != "" {
		t.Fatalf("registers survived restart (-want +have):\n%s", diff)
	}
	if c.memory.U8(GlyphBase) != int(glyphs[0]) {
		t.Fatalf("glyph table not restored")
	}
	if c.memory.U8(ProgramStart) != 0 {
		t.Fatalf("program memory not cleared")
	}
}

func TestLoad(t *testing.T) {
	c := newTestCPU(t)

	image := bytes.Repeat([]byte{0x12}, MaxProgramSize)
	image[len(image)-1] = 0x34
	if err := c.Load(bytes.NewReader(image)); err != nil {
		t.Fatalf("max size image rejected: %v", err)
	}
	if c.memory.U8(MemorySize-1) != 0x34 {
		t.Fatalf("image not loaded up to the end of memory")
	}

	image = append(image, 0)
	err := c.Load(bytes.NewReader(image))
	if !errors.Is(err, ErrLoad) {
		t.Fatalf("expected ErrLoad for oversized image; have %v", err)
	}
}

func TestLoadBeforeStartup(t *testing.T) {
	c := New(nil)
	if err := c.Load(bytes.NewReader(program(0x00e0))); err == nil {
		t.Fatalf("expected error loading into a stopped cpu")
	}
}

func TestStepBeforeStartup(t *testing.T) {
	c := New(nil)
	if err := c.Step(); err != io.EOF {
		t.Fatalf("expected io.EOF; have %v", err)
	}
}

func TestFetchBigEndian(t *testing.T) {
	var traced []uint16
	c := New(func(i *Instruction) { traced = append(traced, i.Word) })
	c.SetClock(&manualClock{})
	if err := c.Startup(); err != nil {
		t.Fatal(err)
	}
	defer c.Shutdown()

	c.Load(bytes.NewReader([]byte{0x6a, 0xcd}))
	step(t, c)

	if diff := cmp.Diff([]uint16{0x6acd}, traced); diff != "" {
		t.Fatalf("trace mismatch (-want +have):\n%s", diff)
	}
	if c.v[0xa] != 0xcd {
		t.Fatalf("want VA=cd; have %02x", c.v[0xa])
	}
}

func TestStackOverflow(t *testing.T) {
	c := newTestCPU(t, 0x2200)

	for i := 0; i < StackSize; i++ {
		step(t, c)
	}

	err := c.Step()
	if !errors.Is(err, ErrStackOverflow) {
		t.Fatalf("expected ErrStackOverflow; have %v", err)
	}
	if c.State() != Halted {
		t.Fatalf("expected halted state; have %v", c.State())
	}
}

func TestStackUnderflow(t *testing.T) {
	c := newTestCPU(t, 0x00ee)

	err := c.Step()
	if !errors.Is(err, ErrStackUnderflow) {
		t.Fatalf("expected ErrStackUnderflow; have %v", err)
	}
}

func TestDecodeError(t *testing.T) {
	c := newTestCPU(t, 0xffff)

	err := c.Step()
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode; have %v", err)
	}

	var ce *Error
	if !errors.As(err, &ce) {
		t.Fatalf("expected *Error; have %T", err)
	}
	if ce.IP != ProgramStart || ce.Word != 0xffff {
		t.Fatalf("error carries wrong instruction: %v", ce)
	}

	if c.State() != Halted {
		t.Fatalf("expected halted state; have %v", c.State())
	}
	if again := c.Step(); again != err {
		t.Fatalf("expected the same error on the next step; have %v", again)
	}
}

func TestFetchPastEnd(t *testing.T) {
	//   LD V0, $0f
	//   JP V0, $ff0
	c := newTestCPU(t, 0x600f, 0xbff0)
	step(t, c)
	step(t, c)

	err := c.Step()
	if !errors.Is(err, ErrAddressRange) {
		t.Fatalf("expected ErrAddressRange; have %v", err)
	}
}

func TestTimers(t *testing.T) {
	//   LD V0, $03
	//   LD DT, V0
	//   LD ST, V0
	//   LD V1, DT
	//   JP $208
	c := newTestCPU(t, 0x6003, 0xf015, 0xf018, 0xf107, 0x1208)
	clk := &manualClock{}
	c.SetClock(clk)

	var beeps int
	c.SetBeep(func() { beeps++ })

	step(t, c)
	step(t, c)
	step(t, c)
	step(t, c)

	if c.v[1] != 3 {
		t.Fatalf("want V1=3; have %d", c.v[1])
	}

	clk.n = 2
	step(t, c)
	if r := c.Registers(); r.DT != 1 || r.ST != 1 || beeps != 0 || !c.SoundActive() {
		t.Fatalf("after 2 ticks: DT=%d ST=%d beeps=%d", r.DT, r.ST, beeps)
	}

	clk.n = 1
	step(t, c)
	if r := c.Registers(); r.DT != 0 || r.ST != 0 {
		t.Fatalf("after 3 ticks: DT=%d ST=%d", r.DT, r.ST)
	}
	if beeps != 1 {
		t.Fatalf("expected one beep; have %d", beeps)
	}
	if c.SoundActive() {
		t.Fatalf("expected sound to be inactive")
	}

	clk.n = 5
	step(t, c)
	if beeps != 1 {
		t.Fatalf("expected no beep from an idle sound timer; have %d", beeps)
	}
}

func TestTimerTick(t *testing.T) {
	tm := Timers{Delay: 0, Sound: 2}

	if tm.Tick() {
		t.Fatalf("cue fired early")
	}
	if !tm.Tick() {
		t.Fatalf("cue did not fire when sound reached 0")
	}
	if tm.Tick() {
		t.Fatalf("cue fired while idle")
	}
	if tm.Delay != 0 || tm.Sound != 0 {
		t.Fatalf("timers went below 0: %+v", tm)
	}
}

func TestWaitForKey(t *testing.T) {
	//   LD V3, K
	//   LD V4, $01
	c := newTestCPU(t, 0xf30a, 0x6401)

	// A key held down before the wait does not satisfy it.
	c.SetKey(7, true)
	step(t, c)
	if c.State() != WaitingForKey {
		t.Fatalf("expected waiting state; have %v", c.State())
	}

	for i := 0; i < 3; i++ {
		step(t, c)
	}
	if c.State() != WaitingForKey || c.pc != 0x200 {
		t.Fatalf("held key released the wait: state=%v pc=%03x", c.State(), c.pc)
	}

	c.SetKey(0xc, true)
	step(t, c)

	if c.State() != Running {
		t.Fatalf("expected running state; have %v", c.State())
	}
	if c.v[3] != 0xc {
		t.Fatalf("want V3=c; have %x", c.v[3])
	}
	if c.pc != 0x202 {
		t.Fatalf("want PC=202; have %03x", c.pc)
	}

	step(t, c)
	if c.v[4] != 1 {
		t.Fatalf("execution did not resume")
	}
}

func TestWaitForKeyLowestWins(t *testing.T) {
	c := newTestCPU(t, 0xf00a)
	step(t, c)

	c.SetKey(0xe, true)
	c.SetKey(0x9, true)
	c.SetKey(0xb, true)
	step(t, c)

	if c.v[0] != 9 {
		t.Fatalf("want V0=9; have %x", c.v[0])
	}
}

func TestWaitForKeyRepress(t *testing.T) {
	c := newTestCPU(t, 0xf00a)

	c.SetKey(2, true)
	step(t, c)
	step(t, c)

	c.SetKey(2, false)
	step(t, c)
	if c.State() != WaitingForKey {
		t.Fatalf("release satisfied the wait")
	}

	c.SetKey(2, true)
	step(t, c)
	if c.State() != Running || c.v[0] != 2 {
		t.Fatalf("re-press did not satisfy the wait: state=%v V0=%d", c.State(), c.v[0])
	}
}

func TestLDPropertyIsExact(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("LD Vx, nn sets Vx and advances pc", prop.ForAll(
		func(x, nn uint8) bool {
			x &= 0xf
			c := newTestCPU(t, 0x6000|uint16(x)<<8|uint16(nn))
			before := c.v

			step(t, c)

			want := before
			want[x] = nn
			return c.v == want && c.pc == ProgramStart+2
		},
		gen.UInt8(), gen.UInt8(),
	))

	properties.Property("ADD Vx, nn wraps and leaves VF alone", prop.ForAll(
		func(a, b uint8) bool {
			//   LD VF, $5a
			//   LD V1, a
			//   ADD V1, b
			c := newTestCPU(t, 0x6f5a, 0x6100|uint16(a), 0x7100|uint16(b))
			step(t, c)
			step(t, c)
			step(t, c)
			return c.v[1] == a+b && c.v[0xf] == 0x5a
		},
		gen.UInt8(), gen.UInt8(),
	))

	properties.Property("ADD Vx, Vy sets carry", prop.ForAll(
		func(a, b uint8) bool {
			//   LD V1, a
			//   LD V2, b
			//   ADD V1, V2
			c := newTestCPU(t, 0x6100|uint16(a), 0x6200|uint16(b), 0x8124)
			step(t, c)
			step(t, c)
			step(t, c)
			return c.v[1] == a+b && c.v[0xf] == flag(int(a)+int(b) > 0xff)
		},
		gen.UInt8(), gen.UInt8(),
	))

	properties.TestingRun(t)
}

func TestRegistersSnapshot(t *testing.T) {
	//   LD V5, $42
	//   LD I, $abc
	//   CALL $300
	c := newTestCPU(t, 0x6542, 0xaabc, 0x2300)
	step(t, c)
	step(t, c)
	step(t, c)

	want := Registers{
		I:     0xabc,
		PC:    0x300,
		SP:    1,
		Stack: [StackSize]uint16{0x204},
	}
	want.V[5] = 0x42

	if diff := cmp.Diff(want, c.Registers()); diff != "" {
		t.Fatalf("registers mismatch (-want +have):\n%s", diff)
	}
}

type testDevice struct {
	updates int
	redraw  bool
}

func (d *testDevice) ID() devices.ID  { return devices.NewID(0xfffe, 0xffff) }
func (d *testDevice) Startup() error  { return nil }
func (d *testDevice) Shutdown() error { return nil }
func (d *testDevice) Update(b devices.Bus) {
	d.updates++
	d.redraw = b.Redraw()
	b.ClearRedraw()
	b.SetKey(1, true)
}

func TestSync(t *testing.T) {
	//   LD I, $000
	//   DRW V0, V0, $1
	c := newTestCPU(t)
	dev := &testDevice{}
	if !c.Connect(dev) {
		t.Fatalf("Connect failed")
	}
	if c.Connect(&testDevice{}) {
		t.Fatalf("duplicate device accepted")
	}

	c.Load(bytes.NewReader(program(0xa000, 0xd001)))
	step(t, c)
	step(t, c)

	c.Sync()

	if dev.updates != 1 || !dev.redraw {
		t.Fatalf("device saw updates=%d redraw=%v", dev.updates, dev.redraw)
	}
	if c.Redraw() {
		t.Fatalf("redraw flag not cleared by the consumer")
	}
	if !c.keypad.Pressed(1) {
		t.Fatalf("device key state did not reach the keypad")
	}
}

func TestDisplayDraw(t *testing.T) {
	var d Display

	if d.Draw(62, 31, []byte{0xc0, 0xc0}, false) {
		t.Fatalf("unexpected collision on an empty display")
	}

	for _, p := range [][2]int{{62, 31}, {63, 31}, {62, 0}, {63, 0}} {
		if d.Pixel(p[0], p[1]) != 1 {
			t.Fatalf("pixel %v not set", p)
		}
	}

	d.Clear()
	d.Draw(63, 31, []byte{0xc0, 0xc0}, false)
	for _, p := range [][2]int{{63, 31}, {0, 31}, {63, 0}, {0, 0}} {
		if d.Pixel(p[0], p[1]) != 1 {
			t.Fatalf("wrapped pixel %v not set", p)
		}
	}
}

func TestDisplayClip(t *testing.T) {
	var d Display
	d.Draw(63, 31, []byte{0xc0, 0xc0}, true)

	var lit int
	for _, p := range d.Pixels() {
		lit += int(p)
	}
	if lit != 1 || d.Pixel(63, 31) != 1 {
		t.Fatalf("clipped sprite lit %d pixels", lit)
	}
}

func TestDisplayOriginWraps(t *testing.T) {
	var d Display
	d.Draw(66, 33, []byte{0x80}, true)

	if d.Pixel(2, 1) != 1 {
		t.Fatalf("origin did not wrap")
	}
}

func TestDisplayRedraw(t *testing.T) {
	var d Display
	if d.Redraw() {
		t.Fatalf("fresh display wants a redraw")
	}

	d.Draw(0, 0, nil, false)
	if !d.Redraw() {
		t.Fatalf("draw did not set redraw")
	}

	d.ClearRedraw()
	if d.Redraw() {
		t.Fatalf("ClearRedraw did not clear")
	}
}

func TestKeypadMasksKeys(t *testing.T) {
	var k Keypad
	k.Set(0x13, true)

	if !k.Pressed(3) {
		t.Fatalf("key index not masked on Set")
	}
	if !k.Pressed(0xf3) {
		t.Fatalf("key index not masked on Pressed")
	}
}
