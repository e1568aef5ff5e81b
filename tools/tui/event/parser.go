// License: GPLv3 Copyright: 2026, Kovid Goyal, <kovid at kovidgoyal.net>

package event

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

var _ = fmt.Print

type parser_state uint8
type csi_state uint8
type csi_char_type uint8

var bracketed_paste_start = []byte("200~")
var bracketed_paste_end = []byte("\x1b[201~")

const (
	normal parser_state = iota
	esc
	csi
	ss3
	st_or_bel
	esc_st
	bracketed_paste
)

const (
	parameter csi_state = iota
	intermediate
)

const (
	unknown_csi_char csi_char_type = iota
	parameter_csi_char
	intermediate_csi_char
	final_csi_char
)

// Parser turns the bytes a terminal sends into events. It keeps state
// between calls to Parse() so escape codes may be split across reads.
// Escape codes that are neither keys nor replies this package knows about
// are dropped.
type Parser struct {
	state          parser_state
	csi_state      csi_state
	current_buffer []byte
	utf8_pending   []byte

	// Called for every decoded event, in order
	HandleEvent func(InternalEvent)
}

func (self *Parser) emit(ev InternalEvent) {
	if self.HandleEvent != nil {
		self.HandleEvent(ev)
	}
}

func (self *Parser) emit_user(ev Event) { self.emit(UserEvent{ev}) }

func (self *Parser) Reset() {
	self.state = normal
	self.csi_state = parameter
	self.current_buffer = self.current_buffer[:0]
	self.utf8_pending = self.utf8_pending[:0]
}

// PendingEscape is true when the last byte seen was an ESC that could be
// either the escape key or the start of an escape code.
func (self *Parser) PendingEscape() bool { return self.state == esc }

// FlushPendingEscape reports a pending ESC as the escape key
func (self *Parser) FlushPendingEscape() {
	if self.state == esc {
		self.Reset()
		self.emit_user(KeyEvent{Key: "escape"})
	}
}

func (self *Parser) ParseString(s string) {
	self.Parse([]byte(s))
}

func (self *Parser) Parse(data []byte) {
	for _, b := range data {
		self.ParseByte(b)
	}
}

func csi_type(ch byte) csi_char_type {
	if (0x30 <= ch && ch <= 0x3f) || ch == '-' {
		return parameter_csi_char
	}
	if 0x40 <= ch && ch <= 0x7E {
		return final_csi_char
	}
	if 0x20 <= ch && ch <= 0x2F {
		return intermediate_csi_char
	}
	return unknown_csi_char
}

func (self *Parser) ParseByte(b byte) {
	switch self.state {
	case normal:
		self.parse_text_byte(b)
	case esc:
		self.state = normal
		switch b {
		case '[':
			self.state = csi
			self.csi_state = parameter
		case 'O':
			self.state = ss3
		case 'P', ']', '^', '_', 'X':
			self.state = st_or_bel
		case 0x1b:
			self.emit_user(KeyEvent{Key: "escape"})
			self.state = esc
		default:
			if b >= 0x20 && b < 0x7f {
				self.emit_user(KeyEvent{Key: string(rune(b)), Mods: ALT})
			} else {
				self.parse_text_byte(b)
			}
		}
	case csi:
		if b == 0x1b {
			// unterminated CSI, the ESC starts a new escape code
			self.Reset()
			self.state = esc
			return
		}
		self.current_buffer = append(self.current_buffer, b)
		switch self.csi_state {
		case parameter:
			switch csi_type(b) {
			case intermediate_csi_char:
				self.csi_state = intermediate
			case final_csi_char:
				self.dispatch_csi()
			case unknown_csi_char:
				self.Reset()
			}
		case intermediate:
			switch csi_type(b) {
			case parameter_csi_char, unknown_csi_char:
				self.Reset()
			case final_csi_char:
				self.dispatch_csi()
			}
		}
	case ss3:
		self.Reset()
		if name := ss3_keys[b]; name != "" {
			self.emit_user(KeyEvent{Key: name})
		}
	case st_or_bel:
		// string escape codes (OSC, DCS, APC, ...) are not replies to any of
		// our queries, swallow them
		switch b {
		case 0x07:
			self.Reset()
		case 0x1b:
			self.state = esc_st
		}
	case esc_st:
		if b == '\\' {
			self.Reset()
		} else if b != 0x1b {
			self.state = st_or_bel
		}
	case bracketed_paste:
		self.current_buffer = append(self.current_buffer, b)
		if bytes.HasSuffix(self.current_buffer, bracketed_paste_end) {
			text := string(self.current_buffer[:len(self.current_buffer)-len(bracketed_paste_end)])
			self.Reset()
			self.emit_user(PasteEvent{Text: text})
		}
	}
}

func (self *Parser) parse_text_byte(b byte) {
	if b < utf8.RuneSelf {
		// a truncated multibyte sequence is dropped
		self.utf8_pending = self.utf8_pending[:0]
		if b == 0x1b {
			self.state = esc
			return
		}
		self.dispatch_rune(rune(b))
		return
	}
	self.utf8_pending = append(self.utf8_pending, b)
	for len(self.utf8_pending) > 0 && utf8.FullRune(self.utf8_pending) {
		r, sz := utf8.DecodeRune(self.utf8_pending)
		self.utf8_pending = self.utf8_pending[sz:]
		if r == utf8.RuneError && sz == 1 {
			continue
		}
		self.dispatch_rune(r)
	}
}

func (self *Parser) dispatch_rune(r rune) {
	switch {
	case r == '\r':
		self.emit_user(KeyEvent{Key: "enter"})
	case r == '\t':
		self.emit_user(KeyEvent{Key: "tab"})
	case r == 0x7f || r == 0x08:
		self.emit_user(KeyEvent{Key: "backspace"})
	case r == 0:
		self.emit_user(KeyEvent{Key: "space", Mods: CTRL})
	case r < 0x1b:
		self.emit_user(KeyEvent{Key: string('a' + r - 1), Mods: CTRL})
	case r < 0x20:
		self.emit_user(KeyEvent{Key: string('4' + r - 0x1c), Mods: CTRL})
	default:
		self.emit_user(KeyEvent{Key: string(r), Text: string(r)})
	}
}

var ss3_keys = map[byte]string{
	'A': "up", 'B': "down", 'C': "right", 'D': "left", 'H': "home", 'F': "end",
	'P': "f1", 'Q': "f2", 'R': "f3", 'S': "f4",
}

var letter_keys = map[byte]string{
	'A': "up", 'B': "down", 'C': "right", 'D': "left", 'H': "home", 'F': "end",
	'P': "f1", 'Q': "f2", 'S': "f4", 'Z': "tab",
}

var tilde_keys = map[int]string{
	1: "home", 2: "insert", 3: "delete", 4: "end", 5: "page_up", 6: "page_down", 7: "home", 8: "end",
	11: "f1", 12: "f2", 13: "f3", 14: "f4", 15: "f5", 17: "f6", 18: "f7", 19: "f8", 20: "f9", 21: "f10",
	23: "f11", 24: "f12",
}

var csi_u_keys = map[int]string{
	9: "tab", 13: "enter", 27: "escape", 127: "backspace",
}

// first_int parses the leading number of a sub-parameter list like 5:3
func first_int(s string, def int) int {
	s, _, _ = strings.Cut(s, ":")
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func mods_from_param(params []string, idx int) Modifiers {
	if idx < len(params) {
		if m := first_int(params[idx], 1); m > 1 {
			return Modifiers(m - 1)
		}
	}
	return 0
}

func (self *Parser) dispatch_csi() {
	raw := self.current_buffer
	self.current_buffer = nil
	self.Reset()
	if bytes.Equal(raw, bracketed_paste_start) {
		self.state = bracketed_paste
		return
	}
	final := raw[len(raw)-1]
	body := string(raw[:len(raw)-1])
	if ev := decode_reply(final, body); ev != nil {
		self.emit(ev)
		return
	}
	if ev := decode_key(final, body); ev != nil {
		self.emit_user(*ev)
		return
	}
	switch final {
	case 'I', 'O':
		if body == "" {
			self.emit_user(FocusEvent{Gained: final == 'I'})
		}
	case 'M', 'm':
		if strings.HasPrefix(body, "<") {
			self.emit_user(MouseEvent{Raw: "\x1b[" + string(raw)})
		}
	}
}

// decode_reply recognizes the replies to the queries sent by package
// capabilities
func decode_reply(final byte, body string) InternalEvent {
	switch final {
	case 'u':
		// CSI ? flags u
		if rest, found := strings.CutPrefix(body, "?"); found {
			if n, err := strconv.Atoi(rest); err == nil && n >= 0 {
				return KeyboardEnhancementFlagsReply{Flags: KeyboardEnhancementFlags(n) & AllKeyboardEnhancementFlags}
			}
		}
	case 'c':
		// CSI ? 6x ; attrs c
		if strings.HasPrefix(body, "?") {
			return PrimaryDeviceAttributes{}
		}
	case 'R':
		// CSI row ; col R
		if row, col, found := strings.Cut(body, ";"); found {
			r, rerr := strconv.ParseUint(row, 10, 16)
			c, cerr := strconv.ParseUint(col, 10, 16)
			if rerr == nil && cerr == nil && r > 0 && c > 0 {
				return CursorPosition{Row: uint16(r - 1), Col: uint16(c - 1)}
			}
		}
	case 'y':
		// DECRPM: CSI ? mode ; status $ y
		if rest, found := strings.CutPrefix(body, "?"); found {
			if rest, found = strings.CutSuffix(rest, "$"); found {
				if mode, status, found := strings.Cut(rest, ";"); found && mode == "2026" {
					if s, err := strconv.Atoi(status); err == nil {
						return SynchronizedOutputModeReply{Mode: SynchronizedOutputModeFromDECRPM(s)}
					}
				}
			}
		}
	case 'n':
		// CSI ? 997 ; 1|2 n
		switch body {
		case "?997;1":
			return UserEvent{ThemeModeChanged{Mode: ThemeDark}}
		case "?997;2":
			return UserEvent{ThemeModeChanged{Mode: ThemeLight}}
		}
	}
	return nil
}

func decode_key(final byte, body string) *KeyEvent {
	if strings.HasPrefix(body, "?") || strings.HasPrefix(body, "<") || strings.HasPrefix(body, ">") {
		return nil
	}
	params := strings.Split(body, ";")
	switch final {
	case '~':
		if name := tilde_keys[first_int(params[0], 0)]; name != "" {
			return &KeyEvent{Key: name, Mods: mods_from_param(params, 1)}
		}
	case 'u':
		code := first_int(params[0], -1)
		if code < 0 {
			return nil
		}
		ans := KeyEvent{Mods: mods_from_param(params, 1)}
		if name := csi_u_keys[code]; name != "" {
			ans.Key = name
		} else {
			ans.Key = string(rune(code))
		}
		if len(params) > 2 {
			var text strings.Builder
			for cp := range strings.SplitSeq(params[2], ":") {
				if n, err := strconv.Atoi(cp); err == nil {
					text.WriteRune(rune(n))
				}
			}
			ans.Text = text.String()
		} else if ans.Mods&^SHIFT == 0 && csi_u_keys[code] == "" {
			ans.Text = ans.Key
		}
		return &ans
	default:
		if name := letter_keys[final]; name != "" {
			ans := KeyEvent{Key: name, Mods: mods_from_param(params, 1)}
			if final == 'Z' {
				ans.Mods |= SHIFT
			}
			return &ans
		}
	}
	return nil
}
