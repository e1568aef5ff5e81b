// License: GPLv3 Copyright: 2026, Kovid Goyal, <kovid at kovidgoyal.net>

package capabilities

import (
	"fmt"
	"os"

	"github.com/kovidgoyal/termprobe/tools/tty"
	"github.com/kovidgoyal/termprobe/tools/tui/event"
)

var _ = fmt.Print

// ErrTimeout is returned when the terminal does not answer a query at all.
// errors.Is(err, os.ErrDeadlineExceeded) is true for it.
var ErrTimeout = fmt.Errorf("terminal did not reply in time: %w", os.ErrDeadlineExceeded)

// TerminalFeatures is the answer to the combined query. Fields the terminal
// did not report are nil or SynchronizedOutputUnknown.
type TerminalFeatures struct {
	KeyboardEnhancementFlags *event.KeyboardEnhancementFlags
	SynchronizedOutputMode   event.SynchronizedOutputMode
	ThemeMode                *event.ThemeMode
}

func (self TerminalFeatures) SupportsKeyboardEnhancement() bool {
	return self.KeyboardEnhancementFlags != nil
}

func (self TerminalFeatures) SupportsSynchronizedOutput() bool {
	return self.SynchronizedOutputMode != event.SynchronizedOutputUnknown
}

// Querier is the set of capability queries, answered either by negotiating
// with the terminal using escape codes or natively by the platform console.
type Querier interface {
	QueryKeyboardEnhancementFlags() (*event.KeyboardEnhancementFlags, error)
	SupportsKeyboardEnhancement() (bool, error)
	SupportsSynchronizedOutput() (bool, error)
	QueryTerminalThemeMode() (*event.ThemeMode, error)
	TerminalFeatures() (TerminalFeatures, error)
}

func QueryKeyboardEnhancementFlags() (*event.KeyboardEnhancementFlags, error) {
	q, err := default_querier()
	if err != nil {
		return nil, err
	}
	return q.QueryKeyboardEnhancementFlags()
}

func SupportsKeyboardEnhancement() (bool, error) {
	q, err := default_querier()
	if err != nil {
		return false, err
	}
	return q.SupportsKeyboardEnhancement()
}

func SupportsSynchronizedOutput() (bool, error) {
	q, err := default_querier()
	if err != nil {
		return false, err
	}
	return q.SupportsSynchronizedOutput()
}

func QueryTerminalThemeMode() (*event.ThemeMode, error) {
	q, err := default_querier()
	if err != nil {
		return nil, err
	}
	return q.QueryTerminalThemeMode()
}

func QueryTerminalFeatures() (TerminalFeatures, error) {
	q, err := default_querier()
	if err != nil {
		return TerminalFeatures{}, err
	}
	return q.TerminalFeatures()
}

func EnableRawMode() error   { return tty.EnableRawMode() }
func DisableRawMode() error  { return tty.DisableRawMode() }
func IsRawModeEnabled() bool { return tty.IsRawModeEnabled() }
