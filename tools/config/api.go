// License: GPLv3 Copyright: 2023, Kovid Goyal, <kovid at kovidgoyal.net>

package config

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/kovidgoyal/termprobe/tools/utils"
)

var _ = fmt.Print

type ConfigLine struct {
	Src_file, Line string
	Line_number    int
	Err            error
}

func (self ConfigLine) String() string {
	return fmt.Sprintf("%s:%d: %s", self.Src_file, self.Line_number, self.Err)
}

type ConfigParser struct {
	LineHandler     func(key, val string) error
	CommentsHandler func(line string) error
	SourceHandler   func(text, path string)

	bad_lines     []ConfigLine
	seen_includes map[string]bool
	override_env  []string
}

type Scanner interface {
	Scan() bool
	Text() string
	Err() error
}

// BadLines are the lines that could not be parsed or that LineHandler rejected
func (self *ConfigParser) BadLines() []ConfigLine {
	return self.bad_lines
}

var key_pat = sync.OnceValue(func() *regexp.Regexp {
	return regexp.MustCompile(`^([a-zA-Z][a-zA-Z0-9_-]*)\s+(.+)$`)
})

const max_include_depth = 32

func new_line_scanner(r io.Reader) *bufio.Scanner {
	s := bufio.NewScanner(r)
	s.Split(func(data []byte, at_eof bool) (int, []byte, error) {
		advance, token, err := bufio.ScanLines(data, at_eof)
		return advance, bytes.TrimRight(token, "\r"), err
	})
	return s
}

func (self *ConfigParser) bad_line(name, line string, lnum int, err error) {
	self.bad_lines = append(self.bad_lines, ConfigLine{Src_file: name, Line: line, Line_number: lnum, Err: err})
}

func (self *ConfigParser) parse(scanner Scanner, name, base_path_for_includes string, depth int) error {
	if self.seen_includes[name] { // avoid include loops
		return nil
	}
	self.seen_includes[name] = true

	recurse := func(r io.Reader, nname, base_path_for_includes string) error {
		if depth > max_include_depth {
			return fmt.Errorf("Too many nested include directives while processing config file: %s", name)
		}
		return self.parse(new_line_scanner(r), nname, base_path_for_includes, depth+1)
	}

	make_absolute := func(path string) (string, error) {
		if path == "" {
			return "", fmt.Errorf("Empty include paths not allowed")
		}
		path = utils.Expanduser(path)
		if !filepath.IsAbs(path) {
			path = filepath.Join(base_path_for_includes, path)
		}
		return path, nil
	}

	include_files := func(paths ...string) error {
		for _, incpath := range paths {
			raw, err := os.ReadFile(incpath)
			if err == nil {
				if err = recurse(bytes.NewReader(raw), incpath, filepath.Dir(incpath)); err != nil {
					return err
				}
			} else if !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("Failed to process include %#v with error: %w", incpath, err)
			}
		}
		return nil
	}

	lnum := 0
	next_line_num := 0
	next_line := ""
	var line string

	for {
		if next_line != "" {
			line = next_line
		} else {
			if !scanner.Scan() {
				break
			}
			line = strings.TrimLeft(scanner.Text(), " \t")
			next_line_num++
			if line == "" {
				continue
			}
		}
		lnum = next_line_num
		next_line = ""
		if scanner.Scan() {
			next_line = strings.TrimLeft(scanner.Text(), " \t")
			next_line_num++
			// continuation lines start with a backslash
			for strings.HasPrefix(next_line, `\`) {
				line += next_line[1:]
				next_line = ""
				if scanner.Scan() {
					next_line = strings.TrimLeft(scanner.Text(), " \t")
					next_line_num++
				}
			}
		}

		if line[0] == '#' {
			if self.CommentsHandler != nil {
				if err := self.CommentsHandler(line); err != nil {
					self.bad_line(name, line, lnum, err)
				}
			}
			continue
		}
		if key_pat().FindStringSubmatch(line) == nil {
			self.bad_line(name, line, lnum, fmt.Errorf("Invalid config line: %#v", line))
			continue
		}
		key, val := line, ""
		if i := strings.IndexAny(line, " \t"); i > -1 {
			key, val = line[:i], strings.TrimSpace(line[i+1:])
		}
		switch key {
		default:
			if err := self.LineHandler(key, val); err != nil {
				self.bad_line(name, line, lnum, err)
			}
		case "include":
			if aval, err := make_absolute(val); err == nil {
				if err = include_files(aval); err != nil {
					return err
				}
			} else {
				self.bad_line(name, line, lnum, err)
			}
		case "globinclude":
			aval, err := make_absolute(val)
			var matches []string
			if err == nil {
				matches, err = filepath.Glob(aval)
			}
			if err != nil {
				self.bad_line(name, line, lnum, err)
			} else if err = include_files(matches...); err != nil {
				return err
			}
		case "envinclude":
			env := self.override_env
			if env == nil {
				env = os.Environ()
			}
			for _, x := range env {
				key, eval, _ := strings.Cut(x, "=")
				if is_match, err := filepath.Match(val, key); is_match && err == nil {
					if err := recurse(strings.NewReader(eval), "<env var: "+key+">", base_path_for_includes); err != nil {
						return err
					}
				}
			}
		}
	}
	return scanner.Err()
}

func (self *ConfigParser) ParseFiles(paths ...string) error {
	for _, path := range paths {
		path = utils.Abspath(utils.Expanduser(path))
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		self.seen_includes = make(map[string]bool)
		if err = self.parse(new_line_scanner(bytes.NewReader(raw)), path, filepath.Dir(path), 0); err != nil {
			return err
		}
		if self.SourceHandler != nil {
			self.SourceHandler(string(raw), path)
		}
	}
	return nil
}

const SYSTEM_CONF_DIR = "/etc/xdg/termprobe"

// LoadConfig parses the system wide config file, then either paths or, if
// none are given, the config file in utils.ConfigDir(), then the overrides.
// Missing files are ignored.
func (self *ConfigParser) LoadConfig(paths []string, overrides []string) (err error) {
	add_if_exists := func(q string) error {
		if err := self.ParseFiles(q); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}
	if err = add_if_exists(filepath.Join(SYSTEM_CONF_DIR, utils.ConfigFileName)); err != nil {
		return err
	}
	if len(paths) == 0 {
		paths = []string{filepath.Join(utils.ConfigDir(), utils.ConfigFileName)}
	}
	for _, path := range paths {
		if err = add_if_exists(path); err != nil {
			return err
		}
	}
	if len(overrides) > 0 {
		return self.ParseOverrides(overrides...)
	}
	return
}

type LinesScanner struct {
	lines   []string
	current string
}

func (self *LinesScanner) Scan() bool {
	if len(self.lines) == 0 {
		return false
	}
	self.current = self.lines[0]
	self.lines = self.lines[1:]
	return true
}

func (self *LinesScanner) Text() string {
	return self.current
}

func (self *LinesScanner) Err() error {
	return nil
}

// ParseOverrides parses lines of the form key=value or key value
func (self *ConfigParser) ParseOverrides(overrides ...string) error {
	lines := make([]string, len(overrides))
	for i, x := range overrides {
		lines[i] = strings.Replace(x, "=", " ", 1)
	}
	self.seen_includes = make(map[string]bool)
	return self.parse(&LinesScanner{lines: lines}, "<overrides>", utils.ConfigDir(), 0)
}
