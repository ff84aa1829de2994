package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/hexaflex/c8vm/devices/fffe/cpu"
	"github.com/hexaflex/c8vm/disasm"
)

func main() {
	config := parseArgs()

	image, err := os.ReadFile(config.Input)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	w, close := makeWriter(config)
	defer close()

	if err := disassemble(w, image, config.Origin, config.Bytes); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// disassemble places image into memory at origin and writes a listing
// of its first limit bytes to w. A limit of 0 lists the whole image.
func disassemble(w io.Writer, image []byte, origin, limit int) error {
	if origin < 0 || origin+len(image) > cpu.MemorySize {
		return errors.Wrapf(cpu.ErrLoad, "%d bytes at %03x", len(image), origin)
	}

	size := len(image)
	if limit > 0 && limit < size {
		size = limit
	}

	mem := make(cpu.Memory, cpu.MemorySize)
	mem.Write(origin, image)

	return disasm.Listing(w, mem, origin, origin+size)
}

// makeWriter creates an output writer and a cleanup function for it.
func makeWriter(c *Config) (io.Writer, func()) {
	if c.Output == "" {
		return os.Stdout, func() {}
	}

	if dir, _ := filepath.Split(c.Output); dir != "" {
		err := os.MkdirAll(dir, 0744)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	fd, err := os.Create(c.Output)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	return fd, func() { fd.Close() }
}
