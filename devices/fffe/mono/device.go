// Package mono implements the monochrome 64x32 display.
package mono

import (
	"github.com/go-gl/gl/v4.2-core/gl"
	"github.com/pkg/errors"

	"github.com/hexaflex/c8vm/devices"
)

// Display dimensions in pixels.
const (
	DisplayWidth  = 64
	DisplayHeight = 32
)

// Default colours in RGB565 format.
const (
	DefaultForeground = 0xffff
	DefaultBackground = 0x0000
)

// Device renders the machine's frame buffer as a full-window texture.
type Device struct {
	frame       [DisplayWidth * DisplayHeight]byte
	fg          [4]float32
	bg          [4]float32
	shader      uint32
	vao         uint32
	vbo         uint32
	tex         uint32
	dirty       bool // Frame changed since the last upload.
	initialized bool
}

var _ devices.Device = &Device{}

// New creates a new display with the given RGB565 foreground and
// background colours.
func New(fg, bg int) *Device {
	var d Device
	n2f(fg, d.fg[:])
	n2f(bg, d.bg[:])
	return &d
}

// ID returns the device identifier.
func (d *Device) ID() devices.ID {
	return devices.NewID(0xfffe, 0x0002)
}

// Startup initializes device resources. It requires a current GL context.
func (d *Device) Startup() error {
	var err error

	d.shader, err = compileProgram(vertex, fragment)
	if err != nil {
		return errors.Wrapf(err, "failed to compile shaders")
	}

	gl.UseProgram(d.shader)

	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)

	gl.GenBuffers(1, &d.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)

	vertAttrib := uint32(gl.GetAttribLocation(d.shader, glStr("vertPos")))
	texCoordAttrib := uint32(gl.GetAttribLocation(d.shader, glStr("vertTexCoord")))

	gl.EnableVertexAttribArray(vertAttrib)
	gl.VertexAttribPointer(vertAttrib, 3, gl.FLOAT, false, 5*4, gl.PtrOffset(0))

	gl.EnableVertexAttribArray(texCoordAttrib)
	gl.VertexAttribPointer(texCoordAttrib, 2, gl.FLOAT, false, 5*4, gl.PtrOffset(3*4))

	gl.Uniform4fv(gl.GetUniformLocation(d.shader, glStr("foreground")), 1, &d.fg[0])
	gl.Uniform4fv(gl.GetUniformLocation(d.shader, glStr("background")), 1, &d.bg[0])

	d.tex = makeTexture()
	d.dirty = true
	d.initialized = true
	return nil
}

// Shutdown clears up device resources.
func (d *Device) Shutdown() error {
	if !d.initialized {
		return nil
	}

	d.initialized = false
	gl.DeleteTextures(1, &d.tex)
	gl.DeleteBuffers(1, &d.vbo)
	gl.DeleteVertexArrays(1, &d.vao)
	gl.DeleteProgram(d.shader)
	return nil
}

// Update copies the machine's frame if it changed and marks it consumed.
func (d *Device) Update(b devices.Bus) {
	if !b.Redraw() {
		return
	}

	copy(d.frame[:], b.Pixels())
	d.dirty = true
	b.ClearRedraw()
}

// Draw renders the display contents.
func (d *Device) Draw() {
	if !d.initialized {
		return
	}

	if d.dirty {
		uploadTexture(d.tex, gl.R8, DisplayWidth, DisplayHeight, gl.RED, gl.UNSIGNED_BYTE, d.frame[:])
		d.dirty = false
	}

	gl.UseProgram(d.shader)
	gl.BindVertexArray(d.vao)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, d.tex)

	gl.DrawArrays(gl.TRIANGLES, 0, 6)
}

// n2f sets p to the RGBA representation of the RGB565 color in n.
func n2f(n int, p []float32) {
	p[0] = float32((n>>11)&31) / 31
	p[1] = float32((n>>5)&63) / 63
	p[2] = float32(n&31) / 31
	p[3] = 1
}

var quadVertices = []float32{
	//  X, Y, Z, U, V
	-1.0, -1.0, 0.0, 0.0, 1.0,
	1.0, -1.0, 0.0, 1.0, 1.0,
	-1.0, 1.0, 0.0, 0.0, 0.0,
	1.0, -1.0, 0.0, 1.0, 1.0,
	1.0, 1.0, 0.0, 1.0, 0.0,
	-1.0, 1.0, 0.0, 0.0, 0.0,
}
