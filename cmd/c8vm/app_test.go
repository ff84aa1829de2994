package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/hexaflex/c8vm/devices/fffe/cpu"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func writeImage(t *testing.T, p []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.ch8")
	if err := os.WriteFile(path, p, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestControllerStep(t *testing.T) {
	//   LD V0, $2A
	//   DW $FFFF
	path := writeImage(t, []byte{0x60, 0x2a, 0xff, 0xff})

	c := NewCPUController(nil, 500)
	defer c.Shutdown()

	if err := c.Load(path); err != nil {
		t.Fatal(err)
	}

	c.Start()
	if err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if c.CPU().Registers().V[0] != 0x2a {
		t.Fatalf("instruction not executed")
	}

	err := c.Step()
	if !errors.Is(err, cpu.ErrDecode) {
		t.Fatalf("expected ErrDecode; have %v", err)
	}
	if c.Running() {
		t.Fatalf("controller still running after a fatal error")
	}
	if c.Frequency() != 0 {
		t.Fatalf("stopped controller reports a frequency")
	}
}

func TestControllerLoadErrors(t *testing.T) {
	c := NewCPUController(nil, 500)
	defer c.Shutdown()

	if err := c.Load(filepath.Join(t.TempDir(), "missing.ch8")); err == nil {
		t.Fatalf("expected error for a missing image")
	}

	path := writeImage(t, make([]byte, cpu.MaxProgramSize+1))
	if err := c.Load(path); !errors.Is(err, cpu.ErrLoad) {
		t.Fatalf("expected ErrLoad; have %v", err)
	}
}

func TestControllerAdvanceWhileStopped(t *testing.T) {
	path := writeImage(t, []byte{0x12, 0x00})

	c := NewCPUController(nil, 500)
	defer c.Shutdown()

	if err := c.Load(path); err != nil {
		t.Fatal(err)
	}

	if err := c.Advance(); err != nil {
		t.Fatal(err)
	}
	if c.cycleCount != 0 {
		t.Fatalf("stopped controller executed %d cycles", c.cycleCount)
	}
}

func TestFormatRegisters(t *testing.T) {
	var r cpu.Registers
	r.V[0xa] = 0x12
	r.I = 0x123
	r.PC = 0x200
	r.SP = 1
	r.Stack[0] = 0x2fe

	mem := make(cpu.Memory, cpu.MemorySize)
	mem.SetU16(0x200, 0xd015)

	have := formatRegisters(r, mem)

	for _, want := range []string{
		"VA=12",
		"I=123 PC=200 SP=1",
		"stack=[2fe]",
		"200  D015  DRW V0, V1, $5",
	} {
		if !strings.Contains(have, want) {
			t.Errorf("missing %q in:\n%s", want, have)
		}
	}
}

func TestPrettyFrequency(t *testing.T) {
	for _, tt := range []struct {
		hz   float64
		want string
	}{
		{700, "700.00 Hz"},
		{1500, "1.50 KHz"},
		{2e6, "2.00 MHz"},
		{3e9, "3.00 GHz"},
	} {
		if have := prettyFrequency(tt.hz); have != tt.want {
			t.Errorf("%v: want %q; have %q", tt.hz, tt.want, have)
		}
	}
}
