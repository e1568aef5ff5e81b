// License: GPLv3 Copyright: 2026, Kovid Goyal, <kovid at kovidgoyal.net>

package utils

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

var _ = fmt.Print

var LogLevelNames = []string{"debug", "info", "warn", "error"}

func level_option(name string) (level.Option, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return level.AllowDebug(), nil
	case "info":
		return level.AllowInfo(), nil
	case "warn", "warning":
		return level.AllowWarn(), nil
	case "error":
		return level.AllowError(), nil
	case "none", "off":
		return level.AllowNone(), nil
	}
	return nil, fmt.Errorf("Unknown log level: %#v valid levels are: %s", name, strings.Join(LogLevelNames, ", "))
}

// NewLogger returns a logfmt logger writing to w that drops records below
// the named level. Records carry a UTC timestamp and the calling location.
func NewLogger(w io.Writer, level_name string) (log.Logger, error) {
	opt, err := level_option(level_name)
	if err != nil {
		return nil, err
	}
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = level.NewFilter(logger, opt)
	return log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller), nil
}

// LoggerOrNop returns l, or a logger that discards everything when l is nil.
func LoggerOrNop(l log.Logger) log.Logger {
	if l == nil {
		return log.NewNopLogger()
	}
	return l
}
