// License: GPLv3 Copyright: 2023, Kovid Goyal, <kovid at kovidgoyal.net>

package config

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

var _ = fmt.Print

// ParseDuration accepts either a number of seconds, as used throughout the
// config file, or a Go duration such as 500ms
func ParseDuration(val string) (time.Duration, error) {
	val = strings.TrimSpace(val)
	if secs, err := strconv.ParseFloat(val, 64); err == nil {
		if math.IsNaN(secs) || math.IsInf(secs, 0) {
			return 0, fmt.Errorf("Invalid duration: %#v", val)
		}
		ns := secs * float64(time.Second)
		if math.Abs(ns) >= math.MaxInt64 {
			return 0, fmt.Errorf("The duration %#v is too large", val)
		}
		return time.Duration(ns), nil
	}
	ans, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("Invalid duration: %#v", val)
	}
	return ans, nil
}

func PositiveDuration(val string) (time.Duration, error) {
	ans, err := ParseDuration(val)
	if err == nil && ans <= 0 {
		err = fmt.Errorf("The duration %#v is not positive", val)
	}
	return ans, err
}

// ParseChoice returns val lowercased if it is one of choices
func ParseChoice(val string, choices ...string) (string, error) {
	q := strings.ToLower(strings.TrimSpace(val))
	if slices.Contains(choices, q) {
		return q, nil
	}
	return "", fmt.Errorf("%#v is not a valid choice, must be one of: %s", val, strings.Join(choices, ", "))
}
