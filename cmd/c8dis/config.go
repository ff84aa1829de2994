package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hexaflex/c8vm/devices/fffe/cpu"
)

// Config defines program configuration.
type Config struct {
	Input  string // Program image to disassemble.
	Output string // Path to store output in. Empty means stdout.
	Origin int    // Load address of the image.
	Bytes  int    // Number of bytes to list. 0 lists everything.
}

// parseArgs parses command line arguments as applicable.
//
// If an error occurred, this exits the program with an appropriate message.
// When version information is requested, it is printed to stdout and the program ends cleanly.
func parseArgs() *Config {
	var c Config
	c.Origin = cpu.ProgramStart

	flag.Usage = func() {
		fmt.Printf("%s [options] <image file>\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.StringVar(&c.Output, "out", c.Output, "Output file. Defaults to stdout.")
	flag.IntVar(&c.Origin, "origin", c.Origin, "Address at which the image is loaded.")
	flag.IntVar(&c.Bytes, "bytes", c.Bytes, "Number of bytes to disassemble. 0 means the whole image.")
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

	c.Input = flag.Arg(0)
	return &c
}
