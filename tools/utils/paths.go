// License: GPLv3 Copyright: 2022, Kovid Goyal, <kovid at kovidgoyal.net>

package utils

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

func Expanduser(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		usr, err := user.Current()
		if err == nil {
			home = usr.HomeDir
		}
	}
	if home == "" {
		return path
	}
	if path == "~" {
		return home
	}
	path = strings.ReplaceAll(path, string(os.PathSeparator), "/")
	parts := strings.Split(path, "/")
	if parts[0] == "~" {
		parts[0] = home
	} else if uname := parts[0][1:]; uname != "" {
		if u, err := user.Lookup(uname); err == nil && u.HomeDir != "" {
			parts[0] = u.HomeDir
		}
	}
	return strings.Join(parts, string(os.PathSeparator))
}

func Abspath(path string) string {
	q, err := filepath.Abs(path)
	if err == nil {
		return q
	}
	return path
}

const ConfigFileName = "termprobe.conf"

// ConfigDir is the directory termprobe.conf is looked up in. The first
// location that already has a config file wins, otherwise the first
// candidate location is used.
var ConfigDir = sync.OnceValue(func() string {
	if q := os.Getenv("TERMPROBE_CONFIG_DIRECTORY"); q != "" {
		return Abspath(Expanduser(q))
	}
	var locations []string
	if q := os.Getenv("XDG_CONFIG_HOME"); q != "" {
		locations = append(locations, q)
	}
	locations = append(locations, Expanduser("~/.config"))
	if runtime.GOOS == "darwin" {
		locations = append(locations, Expanduser("~/Library/Preferences"))
	}
	for _, loc := range locations {
		q := filepath.Join(loc, "termprobe")
		if _, err := os.Stat(filepath.Join(q, ConfigFileName)); err == nil {
			return q
		}
	}
	return filepath.Join(locations[0], "termprobe")
})
