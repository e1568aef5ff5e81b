// License: GPLv3 Copyright: 2026, Kovid Goyal, <kovid at kovidgoyal.net>

//go:build linux || darwin || freebsd || openbsd || netbsd || dragonfly

package capabilities

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/kovidgoyal/termprobe/tools/tty"
	"github.com/kovidgoyal/termprobe/tools/tui/event"
	"github.com/kovidgoyal/termprobe/tools/utils"
)

var _ = fmt.Print

type stdout_writer struct{ io.Writer }

func (stdout_writer) Close() error { return nil }

// TerminalOutput opens the controlling terminal for writing, falling back to
// STDOUT if it cannot be opened
func TerminalOutput(logger log.Logger) func() (io.WriteCloser, error) {
	return func() (io.WriteCloser, error) {
		t, err := tty.OpenControllingTerm()
		if err != nil {
			level.Debug(utils.LoggerOrNop(logger)).Log("msg", "writing queries to STDOUT", "err", err)
			return stdout_writer{os.Stdout}, nil
		}
		return t, nil
	}
}

// NewTerminalProber creates a Prober reading replies from the controlling
// terminal. The terminal stays open for the lifetime of the Prober.
func NewTerminalProber(logger log.Logger) (*Prober, error) {
	term, err := tty.OpenControllingTermOrStdin()
	if err != nil {
		return nil, fmt.Errorf("Failed to open the controlling terminal: %w", err)
	}
	reader := event.NewReader(term)
	reader.Logger = utils.LoggerOrNop(logger)
	ans := NewProber(reader, TerminalOutput(logger))
	ans.Logger = reader.Logger
	return ans, nil
}

var default_prober = sync.OnceValues(func() (*Prober, error) {
	return NewTerminalProber(nil)
})

func default_querier() (Querier, error) {
	p, err := default_prober()
	if err != nil {
		return nil, err
	}
	return p, nil
}
