package mono

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type testBus struct {
	pixels  []byte
	redraw  bool
	cleared int
}

func (b *testBus) Pixels() []byte             { return b.pixels }
func (b *testBus) Redraw() bool               { return b.redraw }
func (b *testBus) ClearRedraw()               { b.redraw = false; b.cleared++ }
func (b *testBus) SetKey(k int, pressed bool) {}
func (b *testBus) SoundActive() bool          { return false }

func TestUpdate(t *testing.T) {
	d := New(DefaultForeground, DefaultBackground)
	d.dirty = false

	b := &testBus{pixels: make([]byte, DisplayWidth*DisplayHeight)}
	b.pixels[0] = 1
	b.pixels[len(b.pixels)-1] = 1

	d.Update(b)
	if d.dirty || b.cleared != 0 {
		t.Fatalf("frame consumed without a redraw")
	}

	b.redraw = true
	d.Update(b)

	if !d.dirty {
		t.Fatalf("frame not marked for upload")
	}
	if b.redraw || b.cleared != 1 {
		t.Fatalf("redraw flag not cleared")
	}
	if diff := cmp.Diff(b.pixels, d.frame[:]); diff != "" {
		t.Fatalf("frame mismatch (-want +have):\n%s", diff)
	}
}

func TestDrawBeforeStartup(t *testing.T) {
	d := New(DefaultForeground, DefaultBackground)
	d.Draw()

	if err := d.Shutdown(); err != nil {
		t.Fatal(err)
	}
}

func TestColors(t *testing.T) {
	for _, tt := range []struct {
		rgb565 int
		want   [4]float32
	}{
		{0x0000, [4]float32{0, 0, 0, 1}},
		{0xffff, [4]float32{1, 1, 1, 1}},
		{0xf800, [4]float32{1, 0, 0, 1}},
		{0x07e0, [4]float32{0, 1, 0, 1}},
		{0x001f, [4]float32{0, 0, 1, 1}},
	} {
		var have [4]float32
		n2f(tt.rgb565, have[:])
		if have != tt.want {
			t.Errorf("%04x: want %v; have %v", tt.rgb565, tt.want, have)
		}
	}

	d := New(0xf800, 0x001f)
	if d.fg != [4]float32{1, 0, 0, 1} || d.bg != [4]float32{0, 0, 1, 1} {
		t.Fatalf("colours not applied: fg=%v bg=%v", d.fg, d.bg)
	}
}
