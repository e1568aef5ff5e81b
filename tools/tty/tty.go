// License: GPLv3 Copyright: 2022, Kovid Goyal, <kovid at kovidgoyal.net>

//go:build linux || darwin || freebsd || openbsd || netbsd || dragonfly

package tty

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/kovidgoyal/termprobe/tools/utils"
)

const (
	TCSANOW   = 0
	TCSADRAIN = 1
	TCSAFLUSH = 2
)

type Term struct {
	os_file *os.File
	states  []unix.Termios
}

func eintr_retry_noret(f func() error) error {
	for {
		qerr := f()
		if qerr == unix.EINTR {
			continue
		}
		return qerr
	}
}

func eintr_retry_intret(f func() (int, error)) (int, error) {
	for {
		q, qerr := f()
		if qerr == unix.EINTR {
			continue
		}
		return q, qerr
	}
}

func IsTerminal(fd uintptr) bool {
	var t unix.Termios
	err := eintr_retry_noret(func() error { return Tcgetattr(int(fd), &t) })
	return err == nil
}

type TermiosOperation func(t *unix.Termios)

// SetRaw replicates cfmakeraw(3), Go does not wrap it as it is not in POSIX
var SetRaw TermiosOperation = func(t *unix.Termios) {
	t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	t.Oflag &^= unix.OPOST
	t.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	t.Cflag &^= unix.CSIZE | unix.PARENB
	t.Cflag |= unix.CS8
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0
}

// WrapTerm takes ownership of fd, it is closed by Close()
func WrapTerm(fd int, name string, operations ...TermiosOperation) (self *Term, err error) {
	if name == "" {
		name = fmt.Sprintf("<fd: %d>", fd)
	}
	os_file := os.NewFile(uintptr(fd), name)
	if os_file == nil {
		return nil, os.ErrInvalid
	}
	self = &Term{os_file: os_file}
	if err = self.ApplyOperations(TCSANOW, operations...); err != nil {
		self.Close()
		self = nil
	}
	return
}

// BorrowTerm wraps a duplicate of an fd owned by someone else, such as STDIN.
// Only the duplicate is ever closed, fd stays open.
func BorrowTerm(fd int, name string, operations ...TermiosOperation) (*Term, error) {
	dup, err := eintr_retry_intret(func() (int, error) { return unix.FcntlInt(uintptr(fd), unix.F_DUPFD_CLOEXEC, 0) })
	if err != nil {
		return nil, &os.PathError{Op: "dup", Path: name, Err: err}
	}
	return WrapTerm(dup, name, operations...)
}

func OpenTerm(name string, operations ...TermiosOperation) (self *Term, err error) {
	fd, err := eintr_retry_intret(func() (int, error) {
		return unix.Open(name, unix.O_NOCTTY|unix.O_CLOEXEC|unix.O_NDELAY|unix.O_RDWR, 0666)
	})
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: name, Err: err}
	}
	return WrapTerm(fd, name, operations...)
}

var ctermid_lock sync.Mutex
var ctermid = "/dev/tty"

// Ctermid is the path of the controlling terminal. Go does not wrap ctermid()
func Ctermid() string {
	ctermid_lock.Lock()
	defer ctermid_lock.Unlock()
	return ctermid
}

// SetCtermid overrides the path returned by Ctermid(), an empty path restores
// the default.
func SetCtermid(path string) {
	ctermid_lock.Lock()
	defer ctermid_lock.Unlock()
	if path == "" {
		path = "/dev/tty"
	}
	ctermid = path
}

func OpenControllingTerm(operations ...TermiosOperation) (self *Term, err error) {
	return OpenTerm(Ctermid(), operations...)
}

// OpenControllingTermOrStdin opens the controlling terminal, falling back to
// STDIN when that is itself a terminal.
func OpenControllingTermOrStdin(operations ...TermiosOperation) (*Term, error) {
	t, err := OpenControllingTerm(operations...)
	if err == nil {
		return t, nil
	}
	if fd := os.Stdin.Fd(); IsTerminal(fd) {
		return BorrowTerm(int(fd), "<stdin>", operations...)
	}
	return nil, err
}

func (self *Term) Fd() int {
	if self.os_file == nil {
		return -1
	}
	return int(self.os_file.Fd())
}

func (self *Term) Close() error {
	if self.os_file == nil {
		return nil
	}
	err := eintr_retry_noret(func() error { return self.os_file.Close() })
	self.os_file = nil
	return err
}

func (self *Term) Tcgetattr(ans *unix.Termios) error {
	return eintr_retry_noret(func() error { return Tcgetattr(self.Fd(), ans) })
}

func (self *Term) Tcsetattr(when uintptr, ans *unix.Termios) error {
	return eintr_retry_noret(func() error { return Tcsetattr(self.Fd(), when, ans) })
}

func (self *Term) set_termios_attrs(when uintptr, modify func(*unix.Termios)) (err error) {
	var state unix.Termios
	if err = self.Tcgetattr(&state); err != nil {
		return
	}
	new_state := state
	modify(&new_state)
	if err = self.Tcsetattr(when, &new_state); err == nil {
		self.states = append(self.states, state)
	}
	return
}

func (self *Term) ApplyOperations(when uintptr, operations ...TermiosOperation) (err error) {
	if len(operations) == 0 {
		return
	}
	return self.set_termios_attrs(when, func(t *unix.Termios) {
		for _, op := range operations {
			op(t)
		}
	})
}

func (self *Term) PopStateWhen(when uintptr) (err error) {
	if len(self.states) == 0 {
		return nil
	}
	idx := len(self.states) - 1
	if err = self.Tcsetattr(when, &self.states[idx]); err == nil {
		self.states = self.states[:idx]
	}
	return
}

// Restore puts the terminal back into the mode it was in before the first
// ApplyOperations(). On failure the saved modes are kept so it can be retried.
func (self *Term) Restore(when uintptr) error {
	if len(self.states) == 0 {
		return nil
	}
	self.states = self.states[:1]
	return self.PopStateWhen(when)
}

func is_temporary_read_error(err error) bool {
	return errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK)
}

// ReadWithTimeout waits at most d for data and reads what is available.
// Returns os.ErrDeadlineExceeded if nothing arrived in time. A negative d
// waits forever.
func (self *Term) ReadWithTimeout(b []byte, d time.Duration) (n int, err error) {
	deadline := time.Now().Add(d)
	for {
		remaining := d
		if d >= 0 {
			if remaining = time.Until(deadline); remaining < 0 {
				remaining = 0
			}
		}
		ready, err := utils.WaitForRead(self.Fd(), remaining)
		if err != nil {
			return 0, err
		}
		if !ready {
			return 0, os.ErrDeadlineExceeded
		}
		n, err = self.os_file.Read(b)
		if err != nil && is_temporary_read_error(err) && n <= 0 {
			// spurious wakeup, for example another thread consumed the data
			continue
		}
		if n == 0 && err == nil {
			err = io.EOF
		}
		return n, err
	}
}

func (self *Term) Read(b []byte) (n int, err error) {
	return self.ReadWithTimeout(b, -1)
}

func (self *Term) Write(b []byte) (int, error) {
	return self.os_file.Write(b)
}

func (self *Term) WriteString(b string) (int, error) {
	return self.os_file.WriteString(b)
}
