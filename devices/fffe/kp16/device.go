// Package kp16 implements the 16-key hex keypad, fed by the host
// keyboard and an optional gamepad.
package kp16

import (
	"log"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/hexaflex/c8vm/devices"
)

// KeyCount is the number of keys on the hex keypad.
const KeyCount = 16

// Keyboard layout. The left side of a QWERTY keyboard maps onto the
// original keypad:
//
//	1 2 3 4      1 2 3 C
//	Q W E R  ->  4 5 6 D
//	A S D F      7 8 9 E
//	Z X C V      A 0 B F
var keymap = [KeyCount]glfw.Key{
	0x0: glfw.KeyX,
	0x1: glfw.Key1,
	0x2: glfw.Key2,
	0x3: glfw.Key3,
	0x4: glfw.KeyQ,
	0x5: glfw.KeyW,
	0x6: glfw.KeyE,
	0x7: glfw.KeyA,
	0x8: glfw.KeyS,
	0x9: glfw.KeyD,
	0xa: glfw.KeyZ,
	0xb: glfw.KeyC,
	0xc: glfw.Key4,
	0xd: glfw.KeyR,
	0xe: glfw.KeyF,
	0xf: glfw.KeyV,
}

// Gamepad layout. Most programs steer with 2/4/6/8 and act with 5.
var buttonmap = map[glfw.GamepadButton]int{
	glfw.ButtonDpadUp:    0x2,
	glfw.ButtonDpadLeft:  0x4,
	glfw.ButtonDpadRight: 0x6,
	glfw.ButtonDpadDown:  0x8,
	glfw.ButtonA:         0x5,
	glfw.ButtonB:         0x0,
}

// KeySource reports the state of host keyboard keys. *glfw.Window satisfies it.
type KeySource interface {
	GetKey(key glfw.Key) glfw.Action
}

// Device polls the host keyboard and gamepad between cycles and
// forwards the hex key state to the machine.
type Device struct {
	keys    KeySource
	joy     glfw.Joystick
	gamepad bool // A gamepad is connected.
}

var _ devices.Device = &Device{}

// New creates a new keypad reading keys from the given source.
func New(keys KeySource) *Device {
	return &Device{keys: keys}
}

// ID returns the device id.
func (d *Device) ID() devices.ID {
	return devices.NewID(0xfffe, 0x0003)
}

// Startup detects any connected gamepad.
func (d *Device) Startup() error {
	glfw.SetJoystickCallback(d.configure)

	for joy := glfw.Joystick1; joy <= glfw.JoystickLast; joy++ {
		if joy.Present() && joy.IsGamepad() {
			d.configure(joy, glfw.Connected)
			break
		}
	}

	return nil
}

// Shutdown clears up device resources.
func (d *Device) Shutdown() error {
	glfw.SetJoystickCallback(nil)
	d.gamepad = false
	return nil
}

// Update forwards the current key state to the bus.
func (d *Device) Update(b devices.Bus) {
	pressed := keyboardKeys(d.keys)

	if d.gamepad {
		pad := gamepadKeys(d.joy.GetGamepadState())
		for k := range pressed {
			pressed[k] = pressed[k] || pad[k]
		}
	}

	for k, down := range pressed {
		b.SetKey(k, down)
	}
}

// configure is called whenever a joystick is connected or disconnected from the system.
func (d *Device) configure(joy glfw.Joystick, event glfw.PeripheralEvent) {
	d.gamepad = event == glfw.Connected && joy.IsGamepad()
	d.joy = joy

	if d.gamepad {
		log.Println(d.ID(), "gamepad connected")
	} else {
		log.Println(d.ID(), "gamepad disconnected")
	}
}

// keyboardKeys returns the hex keys held down on the keyboard.
func keyboardKeys(src KeySource) [KeyCount]bool {
	var pressed [KeyCount]bool
	if src == nil {
		return pressed
	}

	for k, key := range keymap {
		action := src.GetKey(key)
		pressed[k] = action == glfw.Press || action == glfw.Repeat
	}
	return pressed
}

// gamepadKeys returns the hex keys held down on the gamepad.
func gamepadKeys(state *glfw.GamepadState) [KeyCount]bool {
	var pressed [KeyCount]bool
	if state == nil {
		return pressed
	}

	for btn, k := range buttonmap {
		if state.Buttons[btn] == glfw.Press {
			pressed[k] = true
		}
	}
	return pressed
}
