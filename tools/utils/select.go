// License: GPLv3 Copyright: 2022, Kovid Goyal, <kovid at kovidgoyal.net>

//go:build unix

package utils

import (
	"errors"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// WaitForRead blocks until fd has data to read or timeout elapses. A negative
// timeout waits forever. Returns false, nil on timeout.
func WaitForRead(fd int, timeout time.Duration) (bool, error) {
	if fd < 0 {
		return false, os.ErrInvalid
	}
	var read, write, in_err unix.FdSet
	read.Set(fd)
	in_err.Set(fd)
	n, err := Select(fd+1, &read, &write, &in_err, timeout)
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return false, nil
		}
		return false, err
	}
	return n > 0, nil
}
