package go_func_utils

import (
	"log"
	"runtime/debug"
	"sync"
)

// SafeGo runs fn on a new goroutine named name. A panic is written to logger with
// its stack before being re-raised, because the terminal dashboard swallows
// anything printed to stdout/stderr while it owns the screen.
func SafeGo(logger *log.Logger, name string, fn func()) {
	go run(logger, name, fn)
}

// SafeGoWait is SafeGo tracked by wg, for goroutines the caller must wait for
func SafeGoWait(wg *sync.WaitGroup, logger *log.Logger, name string, fn func()) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		run(logger, name, fn)
	}()
}

func run(logger *log.Logger, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Printf("PANIC in %s: %v\n%s", name, r, debug.Stack())
			panic(r)
		}
	}()
	fn()
}
