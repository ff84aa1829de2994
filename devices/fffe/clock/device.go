// Package clock implements the tick sources which drive the delay and sound timers.
package clock

import (
	"time"

	"github.com/hexaflex/c8vm/devices"
)

// Device is a wall clock which converts elapsed real time into ticks
// of a fixed rate.
type Device struct {
	now      func() time.Time // Time source.
	period   time.Duration    // Duration of one tick.
	last     time.Time        // Start of the current, incomplete tick.
	maxTicks int              // Upper bound for a single Ticks call.
}

var _ devices.Device = &Device{}

// New creates a wall clock ticking rate times per second.
func New(rate int) *Device {
	return NewWithTime(rate, time.Now)
}

// NewWithTime creates a wall clock with the given time source.
func NewWithTime(rate int, now func() time.Time) *Device {
	if rate <= 0 {
		rate = 1
	}
	return &Device{
		now:      now,
		period:   time.Second / time.Duration(rate),
		maxTicks: rate,
	}
}

// ID returns the device id.
func (d *Device) ID() devices.ID {
	return devices.NewID(0xfffe, 0x0005)
}

// Startup restarts the clock at the current time.
func (d *Device) Startup() error {
	d.last = d.now()
	return nil
}

// Shutdown is a no-op.
func (d *Device) Shutdown() error {
	return nil
}

// Update is a no-op. The clock does not touch the bus.
func (d *Device) Update(devices.Bus) {}

// Ticks returns the number of whole periods elapsed since the previous call.
// A long stall, such as the host pausing execution, yields at most one
// second worth of ticks.
func (d *Device) Ticks() int {
	now := d.now()
	if d.last.IsZero() {
		d.last = now
		return 0
	}

	n := int(now.Sub(d.last) / d.period)
	if n <= 0 {
		return 0
	}

	d.last = d.last.Add(time.Duration(n) * d.period)

	if n > d.maxTicks {
		d.last = now
		n = d.maxTicks
	}

	return n
}
