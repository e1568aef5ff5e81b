// License: GPLv3 Copyright: 2026, Kovid Goyal, <kovid at kovidgoyal.net>

//go:build linux || darwin || freebsd || openbsd || netbsd || dragonfly

package main

import (
	"fmt"

	"github.com/go-kit/log"

	"github.com/kovidgoyal/termprobe/tools/config"
	"github.com/kovidgoyal/termprobe/tools/tty"
	"github.com/kovidgoyal/termprobe/tools/tui/capabilities"
)

var _ = fmt.Print

func new_querier(opts *config.ProbeOptions, logger log.Logger) (capabilities.Querier, error) {
	if opts.TTYPath != "" {
		tty.SetCtermid(opts.TTYPath)
	}
	p, err := capabilities.NewTerminalProber(logger)
	if err != nil {
		return nil, err
	}
	p.Timeout = opts.QueryTimeout
	return p, nil
}
