// License: GPLv3 Copyright: 2026, Kovid Goyal, <kovid at kovidgoyal.net>

package event

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var _ = fmt.Print

func TestFilterTruthTable(t *testing.T) {
	events := []struct {
		name string
		ev   InternalEvent
	}{
		{"resize", UserEvent{ResizeEvent{Columns: 10, Rows: 10}}},
		{"key", UserEvent{KeyEvent{Key: "a", Text: "a"}}},
		{"theme", UserEvent{ThemeModeChanged{Mode: ThemeDark}}},
		{"cursor", CursorPosition{}},
		{"kbd", KeyboardEnhancementFlagsReply{Flags: DisambiguateEscapeCodes}},
		{"da1", PrimaryDeviceAttributes{}},
		{"sync", SynchronizedOutputModeReply{Mode: SynchronizedOutputSet}},
	}
	expected := map[Filter][]string{
		CursorPositionFilter:           {"cursor"},
		KeyboardEnhancementFlagsFilter: {"kbd", "da1"},
		PrimaryDeviceAttributesFilter:  {"da1"},
		ThemeModeFilter:                {"theme", "da1"},
		SynchronizedOutputModeFilter:   {"da1", "sync"},
		TerminalFeaturesFilter:         {"theme", "kbd", "da1", "sync"},
		EventFilter:                    {"resize", "key", "theme"},
		InternalEventFilter:            {"resize", "key", "theme", "cursor", "kbd", "da1", "sync"},
		Filter(200):                    nil,
	}
	for f, names := range expected {
		var actual []string
		for _, e := range events {
			if f.Eval(e.ev) {
				actual = append(actual, e.name)
			}
		}
		if diff := cmp.Diff(names, actual); diff != "" {
			t.Fatalf("%s accepted the wrong events:\n%s", f, diff)
		}
		if f.Eval(nil) {
			t.Fatalf("%s accepted a nil event", f)
		}
	}
}

func TestCursorPositionFilter(t *testing.T) {
	if !CursorPositionFilter.Eval(CursorPosition{0, 0}) {
		t.Fatalf("CursorPositionFilter rejected a cursor position")
	}
	if CursorPositionFilter.Eval(UserEvent{ResizeEvent{10, 10}}) {
		t.Fatalf("CursorPositionFilter accepted a resize event")
	}
}

func TestFlagNames(t *testing.T) {
	f := DisambiguateEscapeCodes | ReportAlternateKeys
	if diff := cmp.Diff("disambiguate_escape_codes|report_alternate_keys", f.String()); diff != "" {
		t.Fatal(diff)
	}
	if KeyboardEnhancementFlags(0).String() != "none" {
		t.Fatalf("Empty flags not reported as none")
	}
	if !AllKeyboardEnhancementFlags.Has(ReportAssociatedText | ReportEventTypes) {
		t.Fatalf("Has() failed")
	}
	if diff := cmp.Diff([]SynchronizedOutputMode{SynchronizedOutputUnknown, SynchronizedOutputSet, SynchronizedOutputReset, SynchronizedOutputUnknown, SynchronizedOutputUnknown},
		[]SynchronizedOutputMode{SynchronizedOutputModeFromDECRPM(0), SynchronizedOutputModeFromDECRPM(1), SynchronizedOutputModeFromDECRPM(2), SynchronizedOutputModeFromDECRPM(3), SynchronizedOutputModeFromDECRPM(4)}); diff != "" {
		t.Fatalf("DECRPM status mapping wrong:\n%s", diff)
	}
}
