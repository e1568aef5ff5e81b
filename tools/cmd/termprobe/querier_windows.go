// License: GPLv3 Copyright: 2026, Kovid Goyal, <kovid at kovidgoyal.net>

package main

import (
	"github.com/go-kit/log"

	"github.com/kovidgoyal/termprobe/tools/config"
	"github.com/kovidgoyal/termprobe/tools/tui/capabilities"
)

func new_querier(opts *config.ProbeOptions, logger log.Logger) (capabilities.Querier, error) {
	return capabilities.ConsoleQuerier{}, nil
}
