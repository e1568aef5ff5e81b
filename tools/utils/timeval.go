//go:build unix

package utils

import (
	"time"

	"golang.org/x/sys/unix"
)

func NsecToTimeval(d time.Duration) unix.Timeval {
	return unix.NsecToTimeval(int64(d))
}

func NsecToTimespec(d time.Duration) unix.Timespec {
	return unix.NsecToTimespec(int64(d))
}
