//go:build unix && !darwin

package utils

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

func Select(nfd int, r *unix.FdSet, w *unix.FdSet, e *unix.FdSet, timeout time.Duration) (n int, err error) {
	if timeout < 0 {
		for {
			q, qerr := unix.Pselect(nfd, r, w, e, nil, nil)
			if qerr != unix.EINTR {
				return q, qerr
			}
		}
	}
	deadline := time.Now().Add(timeout)
	for {
		t := max(time.Until(deadline), 0)
		ts := NsecToTimespec(t)
		q, qerr := unix.Pselect(nfd, r, w, e, &ts, nil)
		if qerr == unix.EINTR {
			if time.Now().After(deadline) {
				return 0, os.ErrDeadlineExceeded
			}
			continue
		}
		return q, qerr
	}
}
