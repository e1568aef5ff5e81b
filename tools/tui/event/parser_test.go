// License: GPLv3 Copyright: 2026, Kovid Goyal, <kovid at kovidgoyal.net>

package event

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var _ = fmt.Print

func TestParser(t *testing.T) {
	var actual []InternalEvent
	p := Parser{HandleEvent: func(ev InternalEvent) { actual = append(actual, ev) }}

	test := func(raw string, expected ...InternalEvent) {
		t.Helper()
		p.Reset()
		actual = nil
		p.ParseString(raw)
		if diff := cmp.Diff(expected, actual); diff != "" {
			t.Fatalf("Failed to parse %#v:\n%s", raw, diff)
		}
	}
	key := func(k string, mods Modifiers, text string) InternalEvent {
		return UserEvent{KeyEvent{Key: k, Mods: mods, Text: text}}
	}

	// replies
	test("\x1b[?7u", KeyboardEnhancementFlagsReply{Flags: DisambiguateEscapeCodes | ReportEventTypes | ReportAlternateKeys})
	test("\x1b[?0u", KeyboardEnhancementFlagsReply{})
	test("\x1b[?255u", KeyboardEnhancementFlagsReply{Flags: AllKeyboardEnhancementFlags})
	test("\x1b[?62;22c", PrimaryDeviceAttributes{})
	test("\x1b[?1;2c", PrimaryDeviceAttributes{})
	test("\x1b[5;10R", CursorPosition{Row: 4, Col: 9})
	test("\x1b[?2026;1$y", SynchronizedOutputModeReply{Mode: SynchronizedOutputSet})
	test("\x1b[?2026;2$y", SynchronizedOutputModeReply{Mode: SynchronizedOutputReset})
	test("\x1b[?2026;0$y", SynchronizedOutputModeReply{Mode: SynchronizedOutputUnknown})
	test("\x1b[?2004;1$y")
	test("\x1b[?997;1n", UserEvent{ThemeModeChanged{Mode: ThemeDark}})
	test("\x1b[?997;2n", UserEvent{ThemeModeChanged{Mode: ThemeLight}})
	test("\x1b[?u\x1b[?2026;2$y\x1b[?997;2n\x1b[?64;1c",
		KeyboardEnhancementFlagsReply{}, SynchronizedOutputModeReply{Mode: SynchronizedOutputReset},
		UserEvent{ThemeModeChanged{Mode: ThemeLight}}, PrimaryDeviceAttributes{})

	// user input mixed with replies
	test("a\x1b[?1u\x1b[Ab", key("a", 0, "a"), KeyboardEnhancementFlagsReply{Flags: DisambiguateEscapeCodes}, key("up", 0, ""), key("b", 0, "b"))
	test("\r\t\x7f\x03", key("enter", 0, ""), key("tab", 0, ""), key("backspace", 0, ""), key("c", CTRL, ""))
	test("\x1b[1;5C\x1b[3~\x1b[15;2~\x1bOP\x1b[Z", key("right", CTRL, ""), key("delete", 0, ""), key("f5", SHIFT, ""), key("f1", 0, ""), key("tab", SHIFT, ""))
	test("\x1b[97u\x1b[97;5u\x1b[13u\x1b[97;2;65u", key("a", 0, "a"), key("a", CTRL, ""), key("enter", 0, ""), key("a", SHIFT, "A"))
	test("\x1bx", key("x", ALT, ""))
	test("\x1b\x1b", key("escape", 0, ""))
	test("é€", key("é", 0, "é"), key("€", 0, "€"))
	test("\x1b[I\x1b[O", UserEvent{FocusEvent{Gained: true}}, UserEvent{FocusEvent{Gained: false}})
	test("\x1b[<0;3;4M", UserEvent{MouseEvent{Raw: "\x1b[<0;3;4M"}})
	test("\x1b[200~a\x1b[b\x1b[201~c", UserEvent{PasteEvent{Text: "a\x1b[b"}}, key("c", 0, "c"))

	// swallowed escape codes
	test("\x1b]11;rgb:0000/0000/0000\x1b\\x", key("x", 0, "x"))
	test("\x1bP>|kitty\x1b\\\x1b]2;t\x07y", key("y", 0, "y"))
	test("\x1b[?1;2;3z")

	// an unterminated CSI does not swallow the escape code after it
	test("\x1b[?1\x1b[?3u", KeyboardEnhancementFlagsReply{Flags: DisambiguateEscapeCodes | ReportEventTypes})
	test("\x1b[1;$\x1b[?62c", PrimaryDeviceAttributes{})
}

func TestParserSplitInput(t *testing.T) {
	var actual []InternalEvent
	p := Parser{HandleEvent: func(ev InternalEvent) { actual = append(actual, ev) }}
	for _, b := range []byte("\x1b[?15u\x1b[?62c") {
		p.ParseByte(b)
	}
	if diff := cmp.Diff([]InternalEvent{KeyboardEnhancementFlagsReply{Flags: 15}, PrimaryDeviceAttributes{}}, actual); diff != "" {
		t.Fatalf("Byte at a time parsing failed:\n%s", diff)
	}
	actual = nil
	p.ParseString("\x1b")
	if !p.PendingEscape() || len(actual) != 0 {
		t.Fatalf("Lone ESC not held back")
	}
	p.FlushPendingEscape()
	if diff := cmp.Diff([]InternalEvent{UserEvent{KeyEvent{Key: "escape"}}}, actual); diff != "" {
		t.Fatalf("Flushing a lone ESC failed:\n%s", diff)
	}
	actual = nil
	p.ParseString("\xe2\x82")
	p.ParseString("\xac")
	if diff := cmp.Diff([]InternalEvent{UserEvent{KeyEvent{Key: "€", Text: "€"}}}, actual); diff != "" {
		t.Fatalf("Split UTF-8 failed:\n%s", diff)
	}
}
