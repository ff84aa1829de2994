package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hexaflex/c8vm/devices/fffe/tty"
)

// runTerminal runs the program on the terminal until the user quits,
// a signal arrives or the cpu halts.
func (a *App) runTerminal() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	screen := tty.New(os.Stdin, os.Stdout)
	a.cpu = a.newController(screen)
	a.cpu.CPU().SetBeep(screen.Beep)

	if err := a.loadProgram(); err != nil {
		a.cpu.Shutdown()
		return err
	}

	defer a.cpu.Shutdown()

	a.cpu.Start()

	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	for !screen.Quit() {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if err := a.cpu.Advance(); err != nil {
			a.cpu.Shutdown()
			log.Print(formatRegisters(a.cpu.CPU().Registers(), a.cpu.Memory()))
			return err
		}
	}

	return nil
}
