package cpu

// Display dimensions in pixels.
const (
	DisplayWidth  = 64
	DisplayHeight = 32
)

// Display holds the monochrome frame buffer, one byte per pixel.
type Display struct {
	pixels [DisplayWidth * DisplayHeight]byte
	redraw bool
}

// Pixels returns the frame buffer in row-major order.
func (d *Display) Pixels() []byte {
	return d.pixels[:]
}

// Pixel returns the value of the pixel at x, y.
func (d *Display) Pixel(x, y int) byte {
	return d.pixels[y*DisplayWidth+x]
}

// Redraw reports whether the frame changed since the last ClearRedraw.
func (d *Display) Redraw() bool {
	return d.redraw
}

// ClearRedraw marks the current frame as consumed.
func (d *Display) ClearRedraw() {
	d.redraw = false
}

// Clear sets every pixel to 0.
func (d *Display) Clear() {
	d.pixels = [DisplayWidth * DisplayHeight]byte{}
	d.redraw = true
}

// Draw XORs the 8-pixel wide sprite rows onto the frame with the top left
// corner at x, y. The origin always wraps around the frame. Pixels past the
// right or bottom edge wrap as well unless clip is set, in which case they
// are dropped.
//
// Returns true if any pixel went from 1 to 0.
func (d *Display) Draw(x, y int, sprite []byte, clip bool) bool {
	x %= DisplayWidth
	y %= DisplayHeight

	var collision bool

	for row, bits := range sprite {
		py := y + row
		if py >= DisplayHeight {
			if clip {
				break
			}
			py %= DisplayHeight
		}

		for col := 0; col < 8; col++ {
			if bits&(0x80>>col) == 0 {
				continue
			}

			px := x + col
			if px >= DisplayWidth {
				if clip {
					break
				}
				px %= DisplayWidth
			}

			p := &d.pixels[py*DisplayWidth+px]
			if *p == 1 {
				collision = true
			}
			*p ^= 1
		}
	}

	d.redraw = true
	return collision
}
