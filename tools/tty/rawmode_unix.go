// License: GPLv3 Copyright: 2026, Kovid Goyal, <kovid at kovidgoyal.net>

//go:build linux || darwin || freebsd || openbsd || netbsd || dragonfly

package tty

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

var _ = fmt.Print

// TermiosController changes the mode of the controlling terminal, or of
// STDIN when there is no controlling terminal. While raw, it holds the
// terminal open and the state stack of that Term has the mode to go back to.
type TermiosController struct {
	raw *Term
}

func (self *TermiosController) with_term(callback func(*Term) error) error {
	if self.raw != nil {
		return callback(self.raw)
	}
	term, err := OpenControllingTermOrStdin()
	if err != nil {
		return err
	}
	defer term.Close()
	return callback(term)
}

func (self *TermiosController) Current() (ans unix.Termios, err error) {
	err = self.with_term(func(t *Term) error {
		if err := t.Tcgetattr(&ans); err != nil {
			return fmt.Errorf("Failed to read terminal mode: %w", err)
		}
		return nil
	})
	return
}

func (self *TermiosController) MakeRaw(original unix.Termios) error {
	if self.raw != nil {
		return nil
	}
	term, err := OpenControllingTermOrStdin()
	if err != nil {
		return err
	}
	if err = term.ApplyOperations(TCSANOW, func(t *unix.Termios) { *t = original }, SetRaw); err != nil {
		term.Close()
		return fmt.Errorf("Failed to put terminal into raw mode: %w", err)
	}
	self.raw = term
	return nil
}

func (self *TermiosController) Restore(saved unix.Termios) error {
	if self.raw == nil {
		return self.with_term(func(t *Term) error {
			if err := t.Tcsetattr(TCSANOW, &saved); err != nil {
				return fmt.Errorf("Failed to restore terminal mode: %w", err)
			}
			return nil
		})
	}
	// TCSANOW so that unread replies and keystrokes are not discarded
	if err := self.raw.Restore(TCSANOW); err != nil {
		return fmt.Errorf("Failed to restore terminal mode: %w", err)
	}
	_ = self.raw.Close()
	self.raw = nil
	return nil
}

var default_raw_mode = sync.OnceValue(func() *RawMode[unix.Termios] {
	return NewRawMode[unix.Termios](&TermiosController{})
})

// DefaultRawMode is the process wide raw mode state of the controlling terminal
func DefaultRawMode() RawModeSwitch {
	return default_raw_mode()
}
