// License: GPLv3 Copyright: 2026, Kovid Goyal, <kovid at kovidgoyal.net>

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/hako/durafmt"
	"gopkg.in/yaml.v3"

	"github.com/kovidgoyal/termprobe/tools/tui/capabilities"
	"github.com/kovidgoyal/termprobe/tools/tui/event"
)

var _ = fmt.Print

type KeyboardReport struct {
	Supported bool     `json:"supported" yaml:"supported"`
	Flags     []string `json:"flags,omitempty" yaml:"flags,omitempty"`
}

type SynchronizedOutputReport struct {
	Supported bool   `json:"supported" yaml:"supported"`
	Mode      string `json:"mode,omitempty" yaml:"mode,omitempty"`
}

type RawModeReport struct {
	EnabledBefore bool `json:"enabled_before" yaml:"enabled_before"`
	Enabled       bool `json:"enabled" yaml:"enabled"`
	Restored      bool `json:"restored" yaml:"restored"`
}

// Report is what the queries found out, sections for queries that were not
// run are nil
type Report struct {
	Terminal            string                    `json:"terminal,omitempty" yaml:"terminal,omitempty"`
	KeyboardEnhancement *KeyboardReport           `json:"keyboard_enhancement,omitempty" yaml:"keyboard_enhancement,omitempty"`
	SynchronizedOutput  *SynchronizedOutputReport `json:"synchronized_output,omitempty" yaml:"synchronized_output,omitempty"`
	// empty when the query was run but the terminal did not report a theme
	ThemeMode *string        `json:"theme_mode,omitempty" yaml:"theme_mode,omitempty"`
	RawMode   *RawModeReport `json:"raw_mode,omitempty" yaml:"raw_mode,omitempty"`
	Elapsed   time.Duration  `json:"-" yaml:"-"`
	ElapsedMs int64          `json:"elapsed_ms" yaml:"elapsed_ms"`
}

// RawModeFailed is true when the raw mode check ran and raw mode could not be
// entered, or was not left again
func (self *Report) RawModeFailed() bool {
	if self.RawMode == nil {
		return false
	}
	return !self.RawMode.Enabled || !(self.RawMode.EnabledBefore || self.RawMode.Restored)
}

func (self *Report) SetKeyboardFlags(flags *event.KeyboardEnhancementFlags) {
	self.KeyboardEnhancement = &KeyboardReport{Supported: flags != nil}
	if flags != nil {
		self.KeyboardEnhancement.Flags = flags.Names()
	}
}

func (self *Report) SetSynchronizedOutput(supported bool, mode event.SynchronizedOutputMode) {
	self.SynchronizedOutput = &SynchronizedOutputReport{Supported: supported}
	if mode != event.SynchronizedOutputUnknown {
		self.SynchronizedOutput.Mode = mode.String()
	}
}

func (self *Report) SetThemeMode(mode *event.ThemeMode) {
	q := ""
	if mode != nil {
		q = mode.String()
	}
	self.ThemeMode = &q
}

func (self *Report) SetFeatures(f capabilities.TerminalFeatures) {
	self.SetKeyboardFlags(f.KeyboardEnhancementFlags)
	self.SetSynchronizedOutput(f.SupportsSynchronizedOutput(), f.SynchronizedOutputMode)
	self.SetThemeMode(f.ThemeMode)
}

func (self *Report) SetElapsed(d time.Duration) {
	self.Elapsed = d
	self.ElapsedMs = d.Milliseconds()
}

var label_fmt = color.New(color.Bold).SprintFunc()
var yes_fmt = color.New(color.FgGreen).SprintFunc()
var no_fmt = color.New(color.FgRed).SprintFunc()
var dim_fmt = color.New(color.Faint).SprintFunc()

func yes_no(b bool) string {
	if b {
		return yes_fmt("yes")
	}
	return no_fmt("no")
}

func (self *Report) WriteText(w io.Writer) error {
	var b strings.Builder
	line := func(label, val string) { fmt.Fprintf(&b, "%s: %s\n", label_fmt(label), val) }
	if self.Terminal != "" {
		line("Terminal", self.Terminal)
	}
	if k := self.KeyboardEnhancement; k != nil {
		val := yes_no(k.Supported)
		if k.Supported {
			flags := "none"
			if len(k.Flags) > 0 {
				flags = strings.Join(k.Flags, ", ")
			}
			val += dim_fmt(" (flags: " + flags + ")")
		}
		line("Keyboard enhancement", val)
	}
	if s := self.SynchronizedOutput; s != nil {
		val := yes_no(s.Supported)
		if s.Mode != "" {
			val += dim_fmt(" (mode: " + s.Mode + ")")
		}
		line("Synchronized output", val)
	}
	if self.ThemeMode != nil {
		val := *self.ThemeMode
		if val == "" {
			val = no_fmt("not reported")
		}
		line("Theme mode", val)
	}
	if r := self.RawMode; r != nil {
		line("Raw mode before", yes_no(r.EnabledBefore))
		line("Raw mode enabled", yes_no(r.Enabled))
		line("Raw mode restored", yes_no(r.Restored))
	}
	line("Time taken", durafmt.Parse(self.Elapsed).LimitFirstN(2).String())
	_, err := io.WriteString(w, b.String())
	return err
}

func (self *Report) Write(w io.Writer, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(self)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(self); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		return self.WriteText(w)
	}
	return fmt.Errorf("Unknown output format: %s", format)
}
