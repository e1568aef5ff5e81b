// License: GPLv3 Copyright: 2026, Kovid Goyal, <kovid at kovidgoyal.net>

// Package event models the input arriving from a terminal: user input as
// well as the replies terminals send to queries, and provides the machinery
// to wait for and pick out specific replies from that shared stream.
package event

import (
	"fmt"
	"strings"
)

var _ = fmt.Print

// Event is input meant for the application. The set of implementations is
// closed.
type Event interface {
	is_event()
}

type Modifiers uint8

const (
	SHIFT Modifiers = 1 << iota
	ALT
	CTRL
	SUPER
)

func (self Modifiers) String() string {
	var parts []string
	for _, x := range []struct {
		m    Modifiers
		name string
	}{{CTRL, "ctrl"}, {ALT, "alt"}, {SHIFT, "shift"}, {SUPER, "super"}} {
		if self&x.m != 0 {
			parts = append(parts, x.name)
		}
	}
	return strings.Join(parts, "+")
}

type KeyEvent struct {
	// Name of the key, for example: a, enter, escape, up, f1
	Key  string
	Mods Modifiers
	// Text the key would generate, empty for functional keys
	Text string
}

type MouseEvent struct {
	// The undecoded SGR mouse report
	Raw string
}

type ResizeEvent struct {
	Columns, Rows uint16
}

type PasteEvent struct {
	Text string
}

type FocusEvent struct {
	Gained bool
}

type ThemeMode uint8

const (
	ThemeDark ThemeMode = iota + 1
	ThemeLight
)

func (self ThemeMode) String() string {
	switch self {
	case ThemeDark:
		return "dark"
	case ThemeLight:
		return "light"
	}
	return "unknown"
}

type ThemeModeChanged struct {
	Mode ThemeMode
}

func (KeyEvent) is_event()         {}
func (MouseEvent) is_event()       {}
func (ResizeEvent) is_event()      {}
func (PasteEvent) is_event()       {}
func (FocusEvent) is_event()       {}
func (ThemeModeChanged) is_event() {}

type KeyboardEnhancementFlags uint8

const (
	DisambiguateEscapeCodes KeyboardEnhancementFlags = 1 << iota
	ReportEventTypes
	ReportAlternateKeys
	ReportAllKeysAsEscapeCodes
	ReportAssociatedText

	AllKeyboardEnhancementFlags = DisambiguateEscapeCodes | ReportEventTypes | ReportAlternateKeys | ReportAllKeysAsEscapeCodes | ReportAssociatedText
)

var keyboard_flag_names = [...]string{
	"disambiguate_escape_codes", "report_event_types", "report_alternate_keys",
	"report_all_keys_as_escape_codes", "report_associated_text",
}

func (self KeyboardEnhancementFlags) Has(f KeyboardEnhancementFlags) bool {
	return self&f == f
}

// Names returns the names of the set flags, in bit order
func (self KeyboardEnhancementFlags) Names() []string {
	ans := make([]string, 0, len(keyboard_flag_names))
	for i, name := range keyboard_flag_names {
		if self&(1<<i) != 0 {
			ans = append(ans, name)
		}
	}
	return ans
}

func (self KeyboardEnhancementFlags) String() string {
	if self == 0 {
		return "none"
	}
	return strings.Join(self.Names(), "|")
}

type SynchronizedOutputMode uint8

const (
	SynchronizedOutputUnknown SynchronizedOutputMode = iota
	SynchronizedOutputSet
	SynchronizedOutputReset
)

// SynchronizedOutputModeFromDECRPM maps the status value of a DECRPM reply.
// 1 and 2 mean set and reset, 0 (not recognized), 3 and 4 (permanently
// set/reset) are all treated as unknown.
func SynchronizedOutputModeFromDECRPM(status int) SynchronizedOutputMode {
	switch status {
	case 1:
		return SynchronizedOutputSet
	case 2:
		return SynchronizedOutputReset
	}
	return SynchronizedOutputUnknown
}

func (self SynchronizedOutputMode) String() string {
	switch self {
	case SynchronizedOutputSet:
		return "set"
	case SynchronizedOutputReset:
		return "reset"
	}
	return "unknown"
}

// InternalEvent is everything that can arrive from the terminal: user input
// wrapped in UserEvent and replies to queries. The set of implementations is
// closed.
type InternalEvent interface {
	is_internal_event()
}

type UserEvent struct {
	Event Event
}

// CursorPosition is zero based
type CursorPosition struct {
	Row, Col uint16
}

type KeyboardEnhancementFlagsReply struct {
	Flags KeyboardEnhancementFlags
}

// PrimaryDeviceAttributes is the reply to the DA1 query. It is sent after
// every other query as nearly every terminal answers it, so receiving it
// means the terminal has processed all queries sent before it.
type PrimaryDeviceAttributes struct{}

type SynchronizedOutputModeReply struct {
	Mode SynchronizedOutputMode
}

func (UserEvent) is_internal_event()                     {}
func (CursorPosition) is_internal_event()                {}
func (KeyboardEnhancementFlagsReply) is_internal_event() {}
func (PrimaryDeviceAttributes) is_internal_event()       {}
func (SynchronizedOutputModeReply) is_internal_event()   {}
