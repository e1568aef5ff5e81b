// License: GPLv3 Copyright: 2022, Kovid Goyal, <kovid at kovidgoyal.net>

//go:build darwin || freebsd || openbsd || netbsd || dragonfly

package tty

import (
	"golang.org/x/sys/unix"
)

func Tcgetattr(fd int, argp *unix.Termios) error {
	t, err := unix.IoctlGetTermios(fd, unix.TIOCGETA)
	if err != nil {
		return err
	}
	*argp = *t
	return nil
}

func Tcsetattr(fd int, action uintptr, argp *unix.Termios) error {
	var request uint
	switch action {
	case TCSANOW:
		request = unix.TIOCSETA
	case TCSADRAIN:
		request = unix.TIOCSETAW
	case TCSAFLUSH:
		request = unix.TIOCSETAF
	default:
		return unix.EINVAL
	}
	return unix.IoctlSetTermios(fd, request, argp)
}
