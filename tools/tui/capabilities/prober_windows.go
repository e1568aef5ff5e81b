// License: GPLv3 Copyright: 2026, Kovid Goyal, <kovid at kovidgoyal.net>

package capabilities

import (
	"fmt"

	"github.com/kovidgoyal/termprobe/tools/tui/event"
)

var _ = fmt.Print

// ConsoleQuerier answers queries for the Windows console, which does not
// implement any of the queried protocols, so no negotiation is needed.
type ConsoleQuerier struct{}

func (ConsoleQuerier) QueryKeyboardEnhancementFlags() (*event.KeyboardEnhancementFlags, error) {
	return nil, nil
}

func (ConsoleQuerier) SupportsKeyboardEnhancement() (bool, error) { return false, nil }
func (ConsoleQuerier) SupportsSynchronizedOutput() (bool, error)  { return false, nil }

func (ConsoleQuerier) QueryTerminalThemeMode() (*event.ThemeMode, error) { return nil, nil }

func (ConsoleQuerier) TerminalFeatures() (TerminalFeatures, error) {
	return TerminalFeatures{}, nil
}

func default_querier() (Querier, error) { return ConsoleQuerier{}, nil }
