// Package tty implements a display and keypad on a text terminal.
//
// Two pixel rows share one character cell, drawn with half-block glyphs.
// Terminals report key presses but not releases, so a key stays down
// for HoldTime after its last press or repeat.
package tty

import (
	"bufio"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/hexaflex/c8vm/devices"
)

// Display dimensions in pixels.
const (
	DisplayWidth  = 64
	DisplayHeight = 32
)

// HoldTime is how long a key stays down after the terminal reported it.
const HoldTime = 200 * time.Millisecond

// Control bytes.
const (
	keyEscape = 0x1b
	keyCtrlC  = 0x03
)

// Keyboard layout, matching the windowed keypad.
var keymap = map[byte]int{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xc,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xd,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xe,
	'z': 0xa, 'x': 0x0, 'c': 0xb, 'v': 0xf,
}

// Device drives a raw-mode terminal.
type Device struct {
	in       io.Reader
	out      *bufio.Writer
	fd       int         // Terminal file descriptor, or -1.
	oldState *term.State // Terminal state to restore on shutdown.
	input    chan []byte
	now      func() time.Time
	held     [16]time.Time // Release deadline per key.
	quit     uint32
	bell     uint32
}

var _ devices.Device = &Device{}

// New creates a terminal device reading keys from in and drawing to out.
// Raw mode is only entered if in is a terminal.
func New(in io.Reader, out io.Writer) *Device {
	fd := -1
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd = int(f.Fd())
	}

	return &Device{
		in:  in,
		out: bufio.NewWriterSize(out, 4096),
		fd:  fd,
		now: time.Now,
	}
}

// ID returns the device id.
func (d *Device) ID() devices.ID {
	return devices.NewID(0xfffe, 0x0006)
}

// Startup switches the terminal to raw mode and starts reading keys.
func (d *Device) Startup() error {
	if d.fd >= 0 {
		state, err := term.MakeRaw(d.fd)
		if err != nil {
			return errors.Wrapf(err, "failed to set raw mode")
		}
		d.oldState = state

		if w, h, err := term.GetSize(d.fd); err == nil && (w < DisplayWidth || h < DisplayHeight/2) {
			log.Printf("%s terminal is %dx%d; %dx%d needed", d.ID(), w, h, DisplayWidth, DisplayHeight/2)
		}
	}

	atomic.StoreUint32(&d.quit, 0)
	d.input = make(chan []byte, 64)
	go d.read(d.input)

	// Hide the cursor and clear the screen.
	d.out.WriteString("\x1b[?25l\x1b[2J")
	return d.out.Flush()
}

// Shutdown restores the terminal.
func (d *Device) Shutdown() error {
	d.out.WriteString("\x1b[0m\x1b[?25h\r\n")
	err := d.out.Flush()

	if d.oldState != nil {
		if rerr := term.Restore(d.fd, d.oldState); rerr != nil {
			err = errors.Wrapf(rerr, "failed to restore terminal")
		}
		d.oldState = nil
	}

	return err
}

// Update feeds pending key presses to the bus and redraws the frame
// if it changed.
func (d *Device) Update(b devices.Bus) {
	now := d.now()

drain:
	for {
		select {
		case chunk := <-d.input:
			d.handle(chunk, now)
		default:
			break drain
		}
	}

	for k, until := range d.held {
		b.SetKey(k, now.Before(until))
	}

	if b.Redraw() {
		render(d.out, b.Pixels())
		b.ClearRedraw()
	}

	if atomic.SwapUint32(&d.bell, 0) == 1 {
		d.out.WriteByte('\a')
	}

	d.out.Flush()
}

// Beep rings the terminal bell on the next Update.
func (d *Device) Beep() {
	atomic.StoreUint32(&d.bell, 1)
}

// Quit returns true once the user asked to leave with Esc or Ctrl-C.
func (d *Device) Quit() bool {
	return atomic.LoadUint32(&d.quit) == 1
}

// read forwards raw input to ch until the reader fails.
func (d *Device) read(ch chan<- []byte) {
	buf := make([]byte, 64)
	for {
		n, err := d.in.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			ch <- chunk
		}
		if err != nil {
			return
		}
	}
}

// handle interprets one chunk of terminal input.
func (d *Device) handle(chunk []byte, now time.Time) {
	// A lone escape is the Esc key, a longer sequence is a function
	// or cursor key which has no meaning here.
	if len(chunk) > 1 && chunk[0] == keyEscape {
		return
	}

	for _, c := range chunk {
		switch c {
		case keyEscape, keyCtrlC:
			atomic.StoreUint32(&d.quit, 1)
			continue
		}

		if k, ok := keymap[lower(c)]; ok {
			d.held[k] = now.Add(HoldTime)
		}
	}
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

// render draws the frame at the top left of the terminal.
func render(w io.Writer, pixels []byte) {
	var sb strings.Builder
	sb.Grow(DisplayWidth*DisplayHeight*2 + 16)
	sb.WriteString("\x1b[H")

	for y := 0; y < DisplayHeight; y += 2 {
		top := pixels[y*DisplayWidth:]
		bottom := pixels[(y+1)*DisplayWidth:]

		for x := 0; x < DisplayWidth; x++ {
			switch {
			case top[x] != 0 && bottom[x] != 0:
				sb.WriteString("█")
			case top[x] != 0:
				sb.WriteString("▀")
			case bottom[x] != 0:
				sb.WriteString("▄")
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("\r\n")
	}

	io.WriteString(w, sb.String())
}
