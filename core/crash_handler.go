package core

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"

	"github.com/gdamore/tcell/v2"
)

var (
	crashMu     sync.Mutex
	crashScreen tcell.Screen

	// Replaced in tests
	crashOutput io.Writer = os.Stderr
	exitFunc              = os.Exit
)

// SetCrashScreen registers the screen restored before a crash report is printed, nil clears it
func SetCrashScreen(s tcell.Screen) {
	crashMu.Lock()
	defer crashMu.Unlock()
	crashScreen = s
}

// HandleCrash restores the terminal, prints the panic value with its stack and exits with status 1
func HandleCrash(r any) {
	if r == nil {
		return
	}

	crashMu.Lock()
	s := crashScreen
	crashScreen = nil
	crashMu.Unlock()

	// Raw mode must be left before anything reaches stderr
	if s != nil {
		s.Fini()
	}

	fmt.Fprintf(crashOutput, "\n\x1b[31mCRASH DETECTED: %v\x1b[0m\n", r)
	fmt.Fprintf(crashOutput, "Stack Trace:\n%s\n", debug.Stack())

	exitFunc(1)
}

// Go runs fn in a new goroutine whose panics go through HandleCrash
// Use this instead of the 'go' keyword for anything running while the screen is active
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}
