package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hexaflex/c8vm/devices/fffe/cpu"
	"github.com/hexaflex/c8vm/devices/fffe/mono"
)

// Config defines program configuration.
type Config struct {
	Image       string     // Path to the program image to load.
	ScaleFactor int        // Amount by which each pixel is scaled.
	Fullscreen  bool       // Run in fullscreen?
	Debug       bool       // Start paused and dump registers after each manual step.
	PrintTrace  bool       // Print instruction trace data?
	Terminal    bool       // Run in the terminal instead of a window.
	Frequency   int        // Instructions executed per second.
	TimerCycles int        // If > 0, timers tick once per this many cycles instead of following wall time.
	Seed        int64      // Seed for RND. 0 picks one from the current time.
	Foreground  int        // RGB565 colour for lit pixels.
	Background  int        // RGB565 colour for dark pixels.
	Quirks      cpu.Quirks // Compatibility behaviour.
}

// parseArgs parses command line arguments as applicable.
//
// If an error occurred, this exits the program with an appropriate message.
// When version information is requested, it is printed to stdout and the program ends cleanly.
func parseArgs() *Config {
	var c Config
	c.ScaleFactor = 10
	c.Frequency = 700
	c.Foreground = mono.DefaultForeground
	c.Background = mono.DefaultBackground

	flag.Usage = func() {
		fmt.Printf("%s [options] <image file>\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.IntVar(&c.ScaleFactor, "scale", c.ScaleFactor, "Pixel scale factor for the display.")
	flag.BoolVar(&c.Fullscreen, "fullscreen", c.Fullscreen, "Run the display in fullscreen or windowed mode.")
	flag.BoolVar(&c.Debug, "debug", c.Debug, "Run in debug mode: start paused and dump registers after each step.")
	flag.BoolVar(&c.PrintTrace, "trace", c.PrintTrace, "Print a disassembly line for every executed instruction.")
	flag.BoolVar(&c.Terminal, "tty", c.Terminal, "Run in the terminal instead of a window.")
	flag.IntVar(&c.Frequency, "hz", c.Frequency, "Instructions executed per second.")
	flag.IntVar(&c.TimerCycles, "timer-cycles", c.TimerCycles, "Tick the timers once per this many cycles instead of at 60 Hz wall time.")
	flag.Int64Var(&c.Seed, "seed", c.Seed, "Seed for the random number generator. 0 uses the current time.")
	flag.BoolVar(&c.Quirks.ShiftInPlace, "quirk-shift", c.Quirks.ShiftInPlace, "SHR/SHL shift VX in place, ignoring VY.")
	flag.BoolVar(&c.Quirks.ClipSprites, "quirk-clip", c.Quirks.ClipSprites, "Clip sprites at the display edges instead of wrapping.")
	flag.BoolVar(&c.Quirks.KeepIndex, "quirk-keep-index", c.Quirks.KeepIndex, "LD [I], VX and LD VX, [I] leave I unchanged.")
	flag.IntVar(&c.Foreground, "fg", c.Foreground, "Foreground colour in RGB565 format.")
	flag.IntVar(&c.Background, "bg", c.Background, "Background colour in RGB565 format.")

	version := flag.Bool("version", false, "Display version information.")
	flag.Parse()

	if *version {
		fmt.Println(Version())
		os.Exit(0)
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	if c.Frequency < 1 || c.ScaleFactor < 1 {
		fmt.Fprintln(os.Stderr, "-hz and -scale must be positive")
		os.Exit(1)
	}

	c.Image = flag.Arg(0)
	return &c
}
