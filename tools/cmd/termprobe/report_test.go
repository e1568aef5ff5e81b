// License: GPLv3 Copyright: 2026, Kovid Goyal, <kovid at kovidgoyal.net>

package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/kovidgoyal/termprobe/tools/tui/capabilities"
	"github.com/kovidgoyal/termprobe/tools/tui/event"
)

var _ = fmt.Print

func test_report() *Report {
	flags := event.DisambiguateEscapeCodes | event.ReportAssociatedText
	dark := event.ThemeDark
	r := &Report{Terminal: "kitty"}
	r.SetFeatures(capabilities.TerminalFeatures{KeyboardEnhancementFlags: &flags, SynchronizedOutputMode: event.SynchronizedOutputSet, ThemeMode: &dark})
	r.SetElapsed(1500 * time.Millisecond)
	return r
}

func TestReportText(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = orig }()

	var b strings.Builder
	if err := test_report().Write(&b, "text"); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	expected := []string{
		"Terminal: kitty",
		"Keyboard enhancement: yes (flags: disambiguate_escape_codes, report_associated_text)",
		"Synchronized output: yes (mode: set)",
		"Theme mode: dark",
	}
	if diff := cmp.Diff(expected, lines[:len(lines)-1]); diff != "" {
		t.Fatalf("Unexpected report:\n%s", diff)
	}
	if !strings.HasPrefix(lines[len(lines)-1], "Time taken: 1 second") {
		t.Fatalf("Unexpected time taken: %#v", lines[len(lines)-1])
	}

	r := Report{}
	r.SetFeatures(capabilities.TerminalFeatures{})
	b.Reset()
	r.WriteText(&b)
	for _, q := range []string{"Keyboard enhancement: no\n", "Synchronized output: no\n", "Theme mode: not reported\n"} {
		if !strings.Contains(b.String(), q) {
			t.Fatalf("%#v not in report:\n%s", q, b.String())
		}
	}
	if strings.Contains(b.String(), "Terminal:") || strings.Contains(b.String(), "Raw mode") {
		t.Fatalf("Report has sections that were not queried:\n%s", b.String())
	}
}

func TestReportStructured(t *testing.T) {
	r := test_report()
	var b strings.Builder
	if err := r.Write(&b, "json"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), `"theme_mode": "dark"`) || !strings.Contains(b.String(), `"elapsed_ms": 1500`) {
		t.Fatalf("Unexpected JSON report:\n%s", b.String())
	}
	var back Report
	if err := json.Unmarshal([]byte(b.String()), &back); err != nil {
		t.Fatal(err)
	}
	back.Elapsed = r.Elapsed
	if diff := cmp.Diff(r, &back); diff != "" {
		t.Fatalf("JSON report does not have all fields:\n%s", diff)
	}

	b.Reset()
	if err := r.Write(&b, "yaml"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), "mode: set\n") || strings.Contains(b.String(), "raw_mode") {
		t.Fatalf("Unexpected YAML report:\n%s", b.String())
	}
	back = Report{}
	if err := yaml.Unmarshal([]byte(b.String()), &back); err != nil {
		t.Fatal(err)
	}
	back.Elapsed = r.Elapsed
	if diff := cmp.Diff(r, &back); diff != "" {
		t.Fatalf("YAML report does not have all fields:\n%s", diff)
	}

	if err := r.Write(&b, "xml"); err == nil {
		t.Fatalf("Unknown format not rejected")
	}
}

func TestRawModeFailed(t *testing.T) {
	for _, tc := range []struct {
		rr     *RawModeReport
		failed bool
	}{
		{nil, false},
		{&RawModeReport{Enabled: true, Restored: true}, false},
		{&RawModeReport{EnabledBefore: true, Enabled: true}, false},
		{&RawModeReport{}, true},
		{&RawModeReport{Enabled: true}, true},
	} {
		r := Report{RawMode: tc.rr}
		if r.RawModeFailed() != tc.failed {
			t.Fatalf("Wrong failure status for %#v", tc.rr)
		}
	}
}

func TestTerminalProgram(t *testing.T) {
	env := func(vals map[string]string) func(string) string {
		return func(k string) string { return vals[k] }
	}
	if q := terminal_program(env(map[string]string{"TERM_PROGRAM": "WezTerm", "TERM_PROGRAM_VERSION": "2024"})); q != "WezTerm 2024" {
		t.Fatalf("Unexpected terminal: %#v", q)
	}
	if q := terminal_program(env(map[string]string{"KITTY_WINDOW_ID": "1"})); q != "kitty" {
		t.Fatalf("Unexpected terminal: %#v", q)
	}
	if q := first_non_shell([]string{"-zsh", "/usr/bin/sudo", "tmux: server", "alacritty"}); q != "tmux: server" {
		t.Fatalf("Unexpected terminal: %#v", q)
	}
	if q := first_non_shell([]string{"bash", "login"}); q != "" {
		t.Fatalf("Unexpected terminal: %#v", q)
	}
}
