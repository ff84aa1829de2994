package main

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/go-gl/gl/v4.2-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"

	"github.com/hexaflex/c8vm/devices"
	"github.com/hexaflex/c8vm/devices/fffe/clock"
	"github.com/hexaflex/c8vm/devices/fffe/cpu"
	"github.com/hexaflex/c8vm/devices/fffe/kp16"
	"github.com/hexaflex/c8vm/devices/fffe/mono"
	"github.com/hexaflex/c8vm/disasm"
)

// App defines application context.
type App struct {
	config       *Config        // Application configuration.
	window       *glfw.Window   // OpenGL/GLFW context.
	cpu          *CPUController // VM with program to be run.
	display      *mono.Device   // Virtual display peripheral.
	keypad       *kp16.Device   // Virtual keypad peripheral.
	titleUpdated time.Time      // Value used to periodically update window title.
	lastRendered time.Time      // Last time a frame was rendered.
}

// NewApp creates a new application instance using the given configuration.
func NewApp(config *Config) *App {
	return &App{config: config}
}

// Run runs the application and does not return until it is finished
// or an error occured during initialization.
func (a *App) Run() error {
	if a.config.Terminal {
		return a.runTerminal()
	}

	if err := a.initGL(); err != nil {
		return err
	}

	defer a.dispose()

	a.display = mono.New(a.config.Foreground, a.config.Background)
	a.keypad = kp16.New(a.window)
	a.cpu = a.newController(a.display, a.keypad)
	a.cpu.CPU().SetBeep(func() { fmt.Print("\a") })

	log.Println(Version())
	printHelp()

	if err := a.loadProgram(); err != nil {
		return err
	}

	if !a.config.Debug {
		a.cpu.Start()
	}

	for !a.window.ShouldClose() {
		a.mainLoop()
	}

	return nil
}

// newController creates the cpu controller and applies the machine configuration.
func (a *App) newController(devs ...devices.Device) *CPUController {
	c := NewCPUController(a.printTrace, a.config.Frequency, devs...)
	c.CPU().SetQuirks(a.config.Quirks)

	if a.config.Seed != 0 {
		c.CPU().SetRandom(rand.New(rand.NewSource(a.config.Seed)))
	}

	if a.config.TimerCycles > 0 {
		c.CPU().SetClock(clock.NewCycles(a.config.TimerCycles))
	}

	return c
}

// mainLoop performs all main loop operations.
func (a *App) mainLoop() {
	if err := a.cpu.Advance(); err != nil {
		log.Println(err)
		a.printRegisters()
	}

	// Periodically render display contents.
	if time.Since(a.lastRendered) >= time.Second/60 {
		a.lastRendered = time.Now()
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
		a.display.Draw()
		a.window.SwapBuffers()
	}

	// Periodically update the window title to show the current cpu clock frequency.
	if time.Since(a.titleUpdated) >= time.Second*2 {
		a.titleUpdated = time.Now()
		freq := prettyFrequency(a.cpu.Frequency())
		a.window.SetTitle(fmt.Sprintf("%s %s - %s - %v", AppName, AppVersion, freq, a.cpu.CPU().State()))
	}

	// Sleep until input arrives or the next batch of cycles is due.
	glfw.WaitEventsTimeout(0.001)
}

// dispose ensures openGL/GLFW and other resources are cleaned up.
func (a *App) dispose() {
	if a.cpu != nil {
		a.cpu.Shutdown()
	}

	if a.window != nil {
		a.window.Destroy()
		a.window = nil
	}

	glfw.Terminate()
}

func (a *App) keyCallback(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}

	var err error

	switch key {
	case glfw.KeyEscape:
		a.window.SetShouldClose(true)
	case glfw.KeyF1:
		printHelp()
	case glfw.KeyF2:
		a.config.Debug = !a.config.Debug
		log.Println("debug mode:", a.config.Debug)
	case glfw.KeyF5:
		err = a.loadProgram()
		if err == nil && !a.config.Debug {
			a.cpu.Start()
		}
	case glfw.KeySpace:
		a.cpu.ToggleRun()
	case glfw.KeyF6:
		if !a.cpu.Running() {
			err = a.cpu.Step()
			if a.config.Debug {
				a.printRegisters()
			}
		}
	case glfw.KeyF7:
		a.config.PrintTrace = !a.config.PrintTrace
	}

	if err != nil {
		log.Println(err)
	}
}

// initGL initializes GLFW and openGL.
func (a *App) initGL() error {
	err := glfw.Init()
	if err != nil {
		return errors.Wrapf(err, "glfw.Init failed")
	}

	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.Visible, glfw.True)
	glfw.WindowHint(glfw.Focused, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 2)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	var monitor *glfw.Monitor

	width := mono.DisplayWidth * a.config.ScaleFactor
	height := mono.DisplayHeight * a.config.ScaleFactor

	if a.config.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
		mode := monitor.GetVideoMode()

		width = mode.Width
		height = mode.Height

		glfw.WindowHint(glfw.Decorated, glfw.False)
		glfw.WindowHint(glfw.Maximized, glfw.True)
	} else {
		glfw.WindowHint(glfw.Decorated, glfw.True)
		glfw.WindowHint(glfw.Maximized, glfw.False)
	}

	a.window, err = glfw.CreateWindow(width, height, AppName, monitor, nil)
	if err != nil {
		a.dispose()
		return errors.Wrapf(err, "glfw.CreateWindow failed")
	}

	a.window.MakeContextCurrent()
	a.window.SetKeyCallback(a.keyCallback)

	glfw.SwapInterval(0)

	err = gl.Init()
	if err != nil {
		a.dispose()
		return errors.Wrapf(err, "gl.Init failed")
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.ClearColor(0, 0, 0, 1.0)
	return nil
}

// loadProgram loads the current program from disk and restarts the cpu.
func (a *App) loadProgram() error {
	log.Println("loading", a.config.Image)
	return a.cpu.Load(a.config.Image)
}

// printTrace prints instruction trace data. This can be toggled
// on off through a.config.PrintTrace.
func (a *App) printTrace(i *cpu.Instruction) {
	if !a.config.PrintTrace {
		return
	}
	fmt.Println(disasm.Line(int(i.IP), i.Word))
}

// printRegisters writes the register file and the next instruction to stdout.
func (a *App) printRegisters() {
	fmt.Print(formatRegisters(a.cpu.CPU().Registers(), a.cpu.Memory()))
}

// formatRegisters renders a register snapshot along with the instruction at PC.
func formatRegisters(r cpu.Registers, mem devices.Memory) string {
	var sb strings.Builder
	sb.Grow(200)

	for i, v := range r.V {
		fmt.Fprintf(&sb, "V%X=%02x ", i, v)
		if i == 7 {
			sb.WriteString("\n")
		}
	}

	fmt.Fprintf(&sb, "\nI=%03x PC=%03x SP=%d DT=%02x ST=%02x", r.I, r.PC, r.SP, r.DT, r.ST)

	if r.SP > 0 {
		fmt.Fprintf(&sb, " stack=%03x", r.Stack[:r.SP])
	}

	sb.WriteString("\n")

	if int(r.PC)+1 < mem.Len() {
		sb.WriteString(disasm.Line(int(r.PC), uint16(mem.U16(int(r.PC)))))
		sb.WriteString("\n")
	}

	return sb.String()
}

// printHelp writes a short overview of supported shortcut keys to stdout.
func printHelp() {
	var sb strings.Builder
	sb.WriteString("shortcut keys:\n")
	sb.WriteString(" ESC      Exit the program.\n")
	sb.WriteString(" F1       Display this help.\n")
	sb.WriteString(" F2       Enable/Disable debug mode.\n")
	sb.WriteString(" F5       (re)load the program from disk and reset the cpu.\n")
	sb.WriteString(" SPACE    Start/Stop program execution.\n")
	sb.WriteString(" F6       Perform a single execution step while stopped.\n")
	sb.WriteString(" F7       Enable/Disable debug trace output.\n")
	sb.WriteString("keypad:\n")
	sb.WriteString(" 1 2 3 4      1 2 3 C\n")
	sb.WriteString(" Q W E R  ->  4 5 6 D\n")
	sb.WriteString(" A S D F      7 8 9 E\n")
	sb.WriteString(" Z X C V      A 0 B F")
	log.Println(sb.String())
}

// prettyFrequency returns a human-readable version of the given clock frequency in herz.
func prettyFrequency(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%.2f GHz", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.2f MHz", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.2f KHz", v/1e3)
	default:
		return fmt.Sprintf("%.2f Hz", v)
	}
}
