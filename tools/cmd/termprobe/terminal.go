// License: GPLv3 Copyright: 2026, Kovid Goyal, <kovid at kovidgoyal.net>

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

var _ = fmt.Print

var shells = map[string]bool{
	"sh": true, "bash": true, "zsh": true, "fish": true, "dash": true, "ksh": true, "mksh": true,
	"tcsh": true, "csh": true, "nu": true, "elvish": true, "xonsh": true, "pwsh": true, "login": true,
	"sudo": true, "su": true, "doas": true, "env": true, "termprobe": true,
}

const max_ancestors = 8

// process_name strips the login shell marker and any path
func process_name(name string) string {
	return strings.TrimPrefix(filepath.Base(strings.TrimSpace(name)), "-")
}

// first_non_shell returns the first name that is not a shell or a program
// commonly used to run one
func first_non_shell(names []string) string {
	for _, name := range names {
		if q := process_name(name); q != "" && !shells[strings.TrimSuffix(strings.ToLower(q), ".exe")] {
			return q
		}
	}
	return ""
}

func ancestor_names() (ans []string) {
	p, err := process.NewProcess(int32(os.Getppid()))
	for i := 0; err == nil && p != nil && p.Pid > 1 && i < max_ancestors; i++ {
		if name, nerr := p.Name(); nerr == nil {
			ans = append(ans, name)
		}
		p, err = p.Parent()
	}
	return
}

// terminal_program makes a best effort guess at the terminal emulator this
// process is running in
func terminal_program(getenv func(string) string) string {
	if q := getenv("TERM_PROGRAM"); q != "" {
		if v := getenv("TERM_PROGRAM_VERSION"); v != "" {
			q += " " + v
		}
		return q
	}
	if getenv("KITTY_WINDOW_ID") != "" {
		return "kitty"
	}
	if q := first_non_shell(ancestor_names()); q != "" {
		return q
	}
	return getenv("TERM")
}
