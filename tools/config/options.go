// License: GPLv3 Copyright: 2026, Kovid Goyal, <kovid at kovidgoyal.net>

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kovidgoyal/termprobe/tools/utils"
)

var _ = fmt.Print

var OutputFormats = []string{"text", "json", "yaml"}

const (
	TimeoutEnvVar  = "TERMPROBE_QUERY_TIMEOUT"
	LogLevelEnvVar = "TERMPROBE_LOG_LEVEL"
)

type ProbeOptions struct {
	// How long to wait for the terminal to answer a query
	QueryTimeout time.Duration
	// The terminal device to query, empty for the controlling terminal
	TTYPath      string
	LogLevel     string
	OutputFormat string
	// The config files that were read, in order
	ConfigFiles []string
}

func DefaultProbeOptions() *ProbeOptions {
	return &ProbeOptions{QueryTimeout: 2 * time.Second, LogLevel: "warn", OutputFormat: "text"}
}

// Set is a ConfigParser LineHandler
func (self *ProbeOptions) Set(key, val string) (err error) {
	switch key {
	case "query_timeout":
		var d time.Duration
		if d, err = PositiveDuration(val); err == nil {
			self.QueryTimeout = d
		}
	case "tty_path":
		self.TTYPath = utils.Expanduser(val)
	case "log_level":
		var q string
		if q, err = ParseChoice(val, utils.LogLevelNames...); err == nil {
			self.LogLevel = q
		}
	case "output_format":
		var q string
		if q, err = ParseChoice(val, OutputFormats...); err == nil {
			self.OutputFormat = q
		}
	default:
		err = fmt.Errorf("Unknown option: %s", key)
	}
	return
}

// ApplyEnv overrides options from the environment, getenv is os.Getenv if nil
func (self *ProbeOptions) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}
	for key, env_var := range map[string]string{"query_timeout": TimeoutEnvVar, "log_level": LogLevelEnvVar} {
		if val := strings.TrimSpace(getenv(env_var)); val != "" {
			if err := self.Set(key, val); err != nil {
				return fmt.Errorf("Invalid value in the environment variable %s: %w", env_var, err)
			}
		}
	}
	return nil
}

// LoadProbeOptions reads the config files, see ConfigParser.LoadConfig, then
// the environment, then overrides of the form key=value. Lines with errors
// are skipped and returned.
func LoadProbeOptions(paths []string, overrides []string) (*ProbeOptions, []ConfigLine, error) {
	ans := DefaultProbeOptions()
	p := ConfigParser{LineHandler: ans.Set, SourceHandler: func(_, path string) { ans.ConfigFiles = append(ans.ConfigFiles, path) }}
	if err := p.LoadConfig(paths, nil); err != nil {
		return nil, nil, err
	}
	if err := ans.ApplyEnv(nil); err != nil {
		return nil, p.BadLines(), err
	}
	if len(overrides) > 0 {
		if err := p.ParseOverrides(overrides...); err != nil {
			return nil, p.BadLines(), err
		}
	}
	return ans, p.BadLines(), nil
}
