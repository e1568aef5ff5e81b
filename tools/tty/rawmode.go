// License: GPLv3 Copyright: 2026, Kovid Goyal, <kovid at kovidgoyal.net>

package tty

import (
	"sync"
)

// ModeController reads and writes the input mode of a terminal. S is the
// platform representation of the mode, termios on unix.
type ModeController[S any] interface {
	// Current returns the mode the terminal is in right now
	Current() (S, error)
	// MakeRaw derives raw mode from original and applies it
	MakeRaw(original S) error
	// Restore applies a previously saved mode
	Restore(saved S) error
}

// RawModeSwitch is the part of RawMode that callers negotiating with the
// terminal need.
type RawModeSwitch interface {
	// Enter enables raw mode and reports whether this call is what turned it
	// on, as opposed to it already being on.
	Enter() (entered bool, err error)
	Enable() error
	Disable() error
	IsEnabled() bool
}

// RawMode tracks whether the terminal is in raw mode and the mode to go back
// to. Enabling twice keeps the mode saved by the first call, disabling when
// not raw does nothing.
type RawMode[S any] struct {
	mu         sync.Mutex
	controller ModeController[S]
	saved      *S
}

func NewRawMode[S any](controller ModeController[S]) *RawMode[S] {
	return &RawMode[S]{controller: controller}
}

func (self *RawMode[S]) IsEnabled() bool {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.saved != nil
}

func (self *RawMode[S]) Enter() (entered bool, err error) {
	self.mu.Lock()
	defer self.mu.Unlock()
	if self.saved != nil {
		return false, nil
	}
	original, err := self.controller.Current()
	if err != nil {
		return false, err
	}
	if err = self.controller.MakeRaw(original); err != nil {
		return false, err
	}
	// only remember the original once the terminal is actually raw
	self.saved = &original
	return true, nil
}

func (self *RawMode[S]) Enable() error {
	_, err := self.Enter()
	return err
}

func (self *RawMode[S]) Disable() error {
	self.mu.Lock()
	defer self.mu.Unlock()
	if self.saved == nil {
		return nil
	}
	if err := self.controller.Restore(*self.saved); err != nil {
		// keep the saved mode so a later Disable() can retry
		return err
	}
	self.saved = nil
	return nil
}

// Saved returns the mode that Disable() will restore, if raw mode is active.
func (self *RawMode[S]) Saved() (ans S, ok bool) {
	self.mu.Lock()
	defer self.mu.Unlock()
	if self.saved != nil {
		return *self.saved, true
	}
	return
}

// WithRawMode runs callback with the terminal in raw mode. If raw mode was
// not already active it is entered before and left after callback, even when
// callback fails. The error from callback takes precedence.
func WithRawMode(rm RawModeSwitch, callback func() error) (err error) {
	entered, err := rm.Enter()
	if err != nil {
		return err
	}
	if !entered {
		return callback()
	}
	defer func() {
		if derr := rm.Disable(); err == nil {
			err = derr
		}
	}()
	return callback()
}

// EnableRawMode puts the controlling terminal into raw mode
func EnableRawMode() error {
	return DefaultRawMode().Enable()
}

// DisableRawMode restores the mode the controlling terminal was in before
// the first call to EnableRawMode()
func DisableRawMode() error {
	return DefaultRawMode().Disable()
}

func IsRawModeEnabled() bool {
	return DefaultRawMode().IsEnabled()
}
