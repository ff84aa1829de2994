package cpu

// KeyCount is the number of keys on the hex keypad.
const KeyCount = 16

// Keypad holds the pressed state of the 16 hex keys.
type Keypad struct {
	keys [KeyCount]bool
	prev [KeyCount]bool // State at the end of the previous cycle.
}

// Set sets the pressed state of key k. Only the low nibble of k is used.
func (k *Keypad) Set(key int, pressed bool) {
	k.keys[key&0xf] = pressed
}

// Pressed returns true if key k is held down.
func (k *Keypad) Pressed(key int) bool {
	return k.keys[key&0xf]
}

// latch records the current state for edge detection in the next cycle.
func (k *Keypad) latch() {
	k.prev = k.keys
}

// justPressed returns the lowest key which went down since the last latch.
func (k *Keypad) justPressed() (int, bool) {
	for key, down := range k.keys {
		if down && !k.prev[key] {
			return key, true
		}
	}
	return 0, false
}
