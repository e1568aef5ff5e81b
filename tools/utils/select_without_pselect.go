//go:build darwin

package utils

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// Go unix does not wrap pselect on darwin

func Select(nfd int, r *unix.FdSet, w *unix.FdSet, e *unix.FdSet, timeout time.Duration) (n int, err error) {
	if timeout < 0 {
		for {
			q, qerr := unix.Select(nfd, r, w, e, nil)
			if qerr != unix.EINTR {
				return q, qerr
			}
		}
	}
	deadline := time.Now().Add(timeout)
	for {
		t := max(time.Until(deadline), 0)
		tv := NsecToTimeval(t)
		q, qerr := unix.Select(nfd, r, w, e, &tv)
		if qerr == unix.EINTR {
			if time.Now().After(deadline) {
				return 0, os.ErrDeadlineExceeded
			}
			continue
		}
		return q, qerr
	}
}
