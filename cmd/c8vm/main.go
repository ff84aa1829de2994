package main

import (
	"log"
	"runtime"
)

func init() {
	// glfw must run on the main thread.
	runtime.LockOSThread()
}

func main() {
	err := NewApp(parseArgs()).Run()
	if err != nil {
		log.Fatal(err)
	}
}
