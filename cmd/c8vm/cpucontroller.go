package main

import (
	"io"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/hexaflex/c8vm/devices"
	"github.com/hexaflex/c8vm/devices/fffe/cpu"
)

// CPUController controls the execution of a CPU.
type CPUController struct {
	cpu        *cpu.CPU
	hz         int // Target instructions per second.
	start      time.Time
	cycleCount uint64
	running    bool
}

// NewCPUController creates a new CPU controller running at hz instructions per second.
func NewCPUController(trace cpu.TraceFunc, hz int, devices ...devices.Device) *CPUController {
	cpu := cpu.New(trace)

	for _, dev := range devices {
		cpu.Connect(dev)
	}

	if hz < 1 {
		hz = 1
	}

	return &CPUController{
		cpu: cpu,
		hz:  hz,
	}
}

// CPU returns the controlled cpu.
func (c *CPUController) CPU() *cpu.CPU {
	return c.cpu
}

// Running returns true if the CPU is currently running.
func (c *CPUController) Running() bool {
	return c.running
}

// Frequency returns the current clock frequency in herz.
func (c *CPUController) Frequency() float64 {
	if !c.running {
		return 0
	}
	return float64(c.cycleCount) / time.Since(c.start).Seconds()
}

// ToggleRun starts or stops program execution.
func (c *CPUController) ToggleRun() {
	c.setRunning(!c.running)
}

// Start begins execution of the program.
func (c *CPUController) Start() {
	c.setRunning(true)
}

// Stop pauses execution of the program.
func (c *CPUController) Stop() {
	c.setRunning(false)
}

// Advance performs every execution step which is due at the configured
// frequency. A backlog of more than a tenth of a second is dropped.
func (c *CPUController) Advance() error {
	if !c.running {
		return nil
	}

	elapsed := time.Since(c.start)
	due := int64(elapsed.Seconds()*float64(c.hz)) - int64(c.cycleCount)

	if limit := int64(c.hz/10 + 1); due > limit {
		c.start = c.start.Add(time.Duration(due-limit) * time.Second / time.Duration(c.hz))
		due = limit
	}

	for ; due > 0 && c.running; due-- {
		if err := c.Step(); err != nil {
			return err
		}
	}

	return nil
}

// Step performs a single exection step and hands the bus to the peripherals.
func (c *CPUController) Step() error {
	c.cycleCount++

	err := c.cpu.Step()
	c.cpu.Sync()

	if err != nil {
		c.setRunning(false)
		if err != io.EOF {
			return err
		}
	}

	return nil
}

// Memory returns the cpu's internal memory bank.
func (c *CPUController) Memory() devices.Memory {
	return c.cpu.Memory()
}

// Load resets the cpu and loads the program image at the given path.
func (c *CPUController) Load(path string) error {
	fd, err := os.Open(path)
	if err != nil {
		return err
	}

	defer fd.Close()

	c.Stop()
	c.cpu.Shutdown()

	if err := c.cpu.Startup(); err != nil {
		return err
	}

	return errors.Wrapf(c.cpu.Load(fd), "load %s", path)
}

// Shutdown disposes of CPU and peripheral resources.
func (c *CPUController) Shutdown() error {
	c.Stop()
	return c.cpu.Shutdown()
}

// setRunning determines of the CPU is running or is paused.
func (c *CPUController) setRunning(v bool) {
	c.running = v
	c.start = time.Now()
	c.cycleCount = 0
}
