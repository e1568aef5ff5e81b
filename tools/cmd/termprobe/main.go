// License: GPLv3 Copyright: 2026, Kovid Goyal, <kovid at kovidgoyal.net>

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kovidgoyal/termprobe/tools/cli"
	"github.com/kovidgoyal/termprobe/tools/config"
	"github.com/kovidgoyal/termprobe/tools/tui/capabilities"
	"github.com/kovidgoyal/termprobe/tools/utils"
)

var _ = fmt.Print

type flags struct {
	config_paths []string
	overrides    []string
	timeout      time.Duration
	log_level    *string
	format       *string
	tty_path     string
}

type probe_func func(q capabilities.Querier, r *Report) error

type session struct {
	opts    *config.ProbeOptions
	logger  log.Logger
	querier capabilities.Querier
}

func (self *flags) apply(cmd *cobra.Command, opts *config.ProbeOptions) {
	f := cmd.Flags()
	if f.Changed("timeout") {
		opts.QueryTimeout = self.timeout
	}
	if f.Changed("log-level") {
		opts.LogLevel = *self.log_level
	}
	if f.Changed("format") {
		opts.OutputFormat = *self.format
	}
	if f.Changed("tty") {
		opts.TTYPath = self.tty_path
	}
}

func (self *flags) setup(cmd *cobra.Command) (*session, error) {
	opts, bad_lines, err := config.LoadProbeOptions(self.config_paths, self.overrides)
	if err != nil {
		return nil, err
	}
	self.apply(cmd, opts)
	if opts.QueryTimeout <= 0 {
		return nil, fmt.Errorf("The query timeout must be positive, not: %s", opts.QueryTimeout)
	}
	logger, err := utils.NewLogger(os.Stderr, opts.LogLevel)
	if err != nil {
		return nil, err
	}
	for _, bl := range bad_lines {
		level.Warn(logger).Log("msg", "ignoring invalid config line", "file", bl.Src_file, "line", bl.Line_number, "err", bl.Err)
	}
	level.Debug(logger).Log("msg", "options loaded", "config_files", strings.Join(opts.ConfigFiles, ":"), "timeout", opts.QueryTimeout, "tty", opts.TTYPath, "format", opts.OutputFormat)
	return &session{opts: opts, logger: logger}, nil
}

func (self *session) run(probes ...probe_func) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) && !cli.StdoutIsTerminal() {
		level.Warn(self.logger).Log("msg", "neither STDIN nor STDOUT is a terminal, queries will go to the controlling terminal if there is one")
	}
	q, err := new_querier(self.opts, self.logger)
	if err != nil {
		return err
	}
	r := Report{Terminal: terminal_program(os.Getenv)}
	start := time.Now()
	for _, p := range probes {
		if err = p(q, &r); err != nil {
			return err
		}
	}
	r.SetElapsed(time.Since(start))
	if err = r.Write(os.Stdout, self.opts.OutputFormat); err != nil {
		return err
	}
	if r.RawModeFailed() {
		// the report already says what went wrong
		return &cli.ExitCodeError{Code: 1}
	}
	return nil
}

func probe_all(q capabilities.Querier, r *Report) error {
	f, err := q.TerminalFeatures()
	if err == nil {
		r.SetFeatures(f)
	}
	return err
}

func probe_keyboard(q capabilities.Querier, r *Report) error {
	flags, err := q.QueryKeyboardEnhancementFlags()
	if err == nil {
		r.SetKeyboardFlags(flags)
	}
	return err
}

func probe_sync(q capabilities.Querier, r *Report) error {
	supported, err := q.SupportsSynchronizedOutput()
	if err == nil {
		r.SynchronizedOutput = &SynchronizedOutputReport{Supported: supported}
	}
	return err
}

func probe_theme(q capabilities.Querier, r *Report) error {
	mode, err := q.QueryTerminalThemeMode()
	if err == nil {
		r.SetThemeMode(mode)
	}
	return err
}

// probe_raw_mode enables and disables raw mode, checking that the state is
// tracked correctly
func probe_raw_mode(q capabilities.Querier, r *Report) (err error) {
	rr := RawModeReport{EnabledBefore: capabilities.IsRawModeEnabled()}
	r.RawMode = &rr
	if rr.EnabledBefore {
		rr.Enabled = true
		return nil
	}
	if err = capabilities.EnableRawMode(); err != nil {
		return err
	}
	rr.Enabled = capabilities.IsRawModeEnabled()
	if err = capabilities.DisableRawMode(); err != nil {
		return err
	}
	rr.Restored = !capabilities.IsRawModeEnabled()
	return nil
}

func main() {
	f := flags{}
	root := cli.CreateCommand(&cobra.Command{
		Use:   "termprobe [options] [command]",
		Short: "Query the terminal for the optional features it supports",
		Long: "Query the terminal for the optional features it supports: the kitty keyboard protocol, synchronized output and reporting of the dark/light color theme. " +
			"With no command, all features are queried at once.\n\n" +
			"Options are read from :file:`termprobe.conf`, then from the environment variables :envvar:`TERMPROBE_QUERY_TIMEOUT` and :envvar:`TERMPROBE_LOG_LEVEL`, then from the command line.",
		Args: cobra.NoArgs,
	})
	cli.Init(root)
	pf := root.PersistentFlags()
	pf.StringArrayVarP(&f.config_paths, "config", "c", nil, "Path to a config file to use instead of the default :file:`termprobe.conf`. Can be specified multiple times.")
	pf.StringArrayVarP(&f.overrides, "override", "o", nil, "Override individual config options, for example: :code:`-o query_timeout=0.5`. Can be specified multiple times.")
	pf.DurationVarP(&f.timeout, "timeout", "t", capabilities.DefaultTimeout, "How long to wait for the terminal to reply to a query.")
	pf.StringVar(&f.tty_path, "tty", "", "The terminal device to query, defaults to the controlling terminal.")
	f.log_level = cli.PersistentChoices(root, "log-level", "Log messages at or above this level to STDERR.", "warn", "debug", "info", "error")
	f.format = cli.PersistentChoices(root, "format", "The format of the report.", config.OutputFormats...)

	runner := func(probes ...probe_func) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			s, err := f.setup(cmd)
			if err != nil {
				return err
			}
			return s.run(probes...)
		}
	}
	root.RunE = runner(probe_all)
	for _, c := range []*cobra.Command{
		{Use: "all", Short: "Query all features at once, waiting for a single round trip", RunE: runner(probe_all)},
		{Use: "keyboard", Short: "Query the kitty keyboard protocol flags in effect", RunE: runner(probe_keyboard)},
		{Use: "sync", Short: "Query support for synchronized output", RunE: runner(probe_sync)},
		{Use: "theme", Short: "Query whether the terminal uses a dark or light color theme", RunE: runner(probe_theme)},
		{Use: "raw-mode", Short: "Check that raw mode can be entered and left", RunE: runner(probe_raw_mode)},
	} {
		c.Args = cobra.NoArgs
		root.AddCommand(cli.CreateCommand(c))
	}
	cli.Exec(root)
}
