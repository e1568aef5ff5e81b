// License: GPLv3 Copyright: 2026, Kovid Goyal, <kovid at kovidgoyal.net>

package capabilities

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/kovidgoyal/termprobe/tools/tty"
	"github.com/kovidgoyal/termprobe/tools/tui/event"
	"github.com/kovidgoyal/termprobe/tools/utils"
)

var _ = fmt.Print

const DefaultTimeout = 2000 * time.Millisecond

// Every query is followed by a DA1 request, whose reply marks the end of the
// replies to the query.
const (
	da1_query                 = "\x1b[c"
	keyboard_flags_query      = "\x1b[?u"
	synchronized_output_query = "\x1b[?2026$p"
	theme_mode_query          = "\x1b[?996n"

	KeyboardEnhancementProbe = keyboard_flags_query + da1_query
	SynchronizedOutputProbe  = synchronized_output_query + da1_query
	ThemeModeProbe           = theme_mode_query + da1_query
	TerminalFeaturesProbe    = keyboard_flags_query + synchronized_output_query + theme_mode_query + da1_query
)

// Pause between retries after a failed read, so a broken input does not spin
const retry_interval = 10 * time.Millisecond

// Prober answers capability queries by writing escape codes to the terminal
// and waiting for the replies to arrive on Source.
type Prober struct {
	Source event.Source
	// Output opens the stream the queries are written to, it is closed after
	// every query
	Output  func() (io.WriteCloser, error)
	RawMode tty.RawModeSwitch
	// Defaults to DefaultTimeout
	Timeout time.Duration
	Logger  log.Logger

	query_lock sync.Mutex
}

func NewProber(source event.Source, output func() (io.WriteCloser, error)) *Prober {
	return &Prober{Source: source, Output: output, RawMode: tty.DefaultRawMode(), Timeout: DefaultTimeout, Logger: log.NewNopLogger()}
}

func (self *Prober) timeout() time.Duration {
	if self.Timeout > 0 {
		return self.Timeout
	}
	return DefaultTimeout
}

func (self *Prober) raw_mode() tty.RawModeSwitch {
	if self.RawMode == nil {
		return tty.DefaultRawMode()
	}
	return self.RawMode
}

func (self *Prober) send(probe string) error {
	w, err := self.Output()
	if err != nil {
		return fmt.Errorf("Failed to open the terminal for writing: %w", err)
	}
	defer w.Close()
	if _, err = io.WriteString(w, probe); err != nil {
		return fmt.Errorf("Failed to write query to the terminal: %w", err)
	}
	return nil
}

// query sends probe with the terminal in raw mode and feeds events matching
// filter to handle until it returns true. Queries are serialized since they
// all end with the same DA1 reply.
func (self *Prober) query(name, probe string, filter event.Filter, handle func(event.InternalEvent, time.Time) bool) error {
	self.query_lock.Lock()
	defer self.query_lock.Unlock()
	logger := utils.LoggerOrNop(self.Logger)
	start := time.Now()
	err := tty.WithRawMode(self.raw_mode(), func() error {
		if err := self.send(probe); err != nil {
			return err
		}
		return self.await(name, filter, time.Now().Add(self.timeout()), handle)
	})
	level.Debug(logger).Log("msg", "query finished", "query", name, "elapsed", time.Since(start), "err", err)
	return err
}

func (self *Prober) await(name string, filter event.Filter, deadline time.Time, handle func(event.InternalEvent, time.Time) bool) error {
	logger := utils.LoggerOrNop(self.Logger)
	retry := func(op string, err error) {
		level.Debug(logger).Log("msg", "reading reply failed, retrying", "query", name, "op", op, "err", err)
		if remaining := time.Until(deadline); remaining > 0 {
			time.Sleep(min(remaining, retry_interval))
		}
	}
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		found, err := self.Source.Poll(remaining, filter)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				break
			}
			retry("poll", err)
			continue
		}
		if !found {
			break
		}
		ev, err := self.Source.Read(filter)
		if err != nil {
			retry("read", err)
			continue
		}
		if handle(ev, deadline) {
			return nil
		}
	}
	return fmt.Errorf("%s query: %w", name, ErrTimeout)
}

// drain_beacon removes the DA1 reply that follows a feature reply so it is
// not mistaken for the end of a later query
func (self *Prober) drain_beacon(name string, deadline time.Time) {
	found, err := self.Source.Poll(max(0, time.Until(deadline)), event.PrimaryDeviceAttributesFilter)
	if found && err == nil {
		_, err = self.Source.Read(event.PrimaryDeviceAttributesFilter)
	}
	if err != nil || !found {
		level.Debug(utils.LoggerOrNop(self.Logger)).Log("msg", "no DA1 reply after feature reply", "query", name, "err", err)
	}
}

// QueryKeyboardEnhancementFlags returns the progressive enhancement flags of
// the kitty keyboard protocol currently in effect, nil if the terminal does
// not support the protocol
func (self *Prober) QueryKeyboardEnhancementFlags() (ans *event.KeyboardEnhancementFlags, err error) {
	const name = "keyboard enhancement flags"
	err = self.query(name, KeyboardEnhancementProbe, event.KeyboardEnhancementFlagsFilter, func(ev event.InternalEvent, deadline time.Time) bool {
		switch ev := ev.(type) {
		case event.KeyboardEnhancementFlagsReply:
			flags := ev.Flags
			ans = &flags
			self.drain_beacon(name, deadline)
			return true
		case event.PrimaryDeviceAttributes:
			return true
		}
		return false
	})
	if err != nil {
		ans = nil
	}
	return
}

// SupportsKeyboardEnhancement does not distinguish between a terminal that
// does not support the protocol and one that reports no flags set, use
// QueryKeyboardEnhancementFlags() for that.
func (self *Prober) SupportsKeyboardEnhancement() (bool, error) {
	flags, err := self.QueryKeyboardEnhancementFlags()
	return flags != nil, err
}

func (self *Prober) SupportsSynchronizedOutput() (ans bool, err error) {
	const name = "synchronized output"
	err = self.query(name, SynchronizedOutputProbe, event.SynchronizedOutputModeFilter, func(ev event.InternalEvent, deadline time.Time) bool {
		switch ev := ev.(type) {
		case event.SynchronizedOutputModeReply:
			ans = ev.Mode != event.SynchronizedOutputUnknown
			self.drain_beacon(name, deadline)
			return true
		case event.PrimaryDeviceAttributes:
			return true
		}
		return false
	})
	if err != nil {
		ans = false
	}
	return
}

// QueryTerminalThemeMode returns whether the terminal uses a dark or light
// color scheme, nil if the terminal cannot report it
func (self *Prober) QueryTerminalThemeMode() (ans *event.ThemeMode, err error) {
	const name = "theme mode"
	err = self.query(name, ThemeModeProbe, event.ThemeModeFilter, func(ev event.InternalEvent, deadline time.Time) bool {
		switch ev := ev.(type) {
		case event.UserEvent:
			if tm, ok := ev.Event.(event.ThemeModeChanged); ok {
				mode := tm.Mode
				ans = &mode
				self.drain_beacon(name, deadline)
				return true
			}
		case event.PrimaryDeviceAttributes:
			return true
		}
		return false
	})
	if err != nil {
		ans = nil
	}
	return
}

// TerminalFeatures sends all the queries at once, paying for a single round
// trip, and collects replies until the DA1 reply
func (self *Prober) TerminalFeatures() (ans TerminalFeatures, err error) {
	err = self.query("terminal features", TerminalFeaturesProbe, event.TerminalFeaturesFilter, func(ev event.InternalEvent, deadline time.Time) bool {
		switch ev := ev.(type) {
		case event.KeyboardEnhancementFlagsReply:
			flags := ev.Flags
			ans.KeyboardEnhancementFlags = &flags
		case event.SynchronizedOutputModeReply:
			ans.SynchronizedOutputMode = ev.Mode
		case event.UserEvent:
			if tm, ok := ev.Event.(event.ThemeModeChanged); ok {
				mode := tm.Mode
				ans.ThemeMode = &mode
			}
		case event.PrimaryDeviceAttributes:
			return true
		}
		return false
	})
	if err != nil {
		ans = TerminalFeatures{}
	}
	return
}
