// License: GPLv3 Copyright: 2026, Kovid Goyal, <kovid at kovidgoyal.net>

//go:build windows

package tty

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/term"
)

// ConsoleController changes the mode of the console input handle
type ConsoleController struct{}

func (self ConsoleController) fd() int { return int(os.Stdin.Fd()) }

func (self ConsoleController) Current() (*term.State, error) {
	s, err := term.GetState(self.fd())
	if err != nil {
		return nil, fmt.Errorf("Failed to read console mode: %w", err)
	}
	return s, nil
}

func (self ConsoleController) MakeRaw(original *term.State) error {
	// the returned state is the same one Current() just read
	if _, err := term.MakeRaw(self.fd()); err != nil {
		return fmt.Errorf("Failed to put console into raw mode: %w", err)
	}
	return nil
}

func (self ConsoleController) Restore(saved *term.State) error {
	if err := term.Restore(self.fd(), saved); err != nil {
		return fmt.Errorf("Failed to restore console mode: %w", err)
	}
	return nil
}

var default_raw_mode = sync.OnceValue(func() *RawMode[*term.State] {
	return NewRawMode[*term.State](ConsoleController{})
})

// DefaultRawMode is the process wide raw mode state of the console
func DefaultRawMode() RawModeSwitch {
	return default_raw_mode()
}
