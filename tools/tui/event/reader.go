// License: GPLv3 Copyright: 2026, Kovid Goyal, <kovid at kovidgoyal.net>

package event

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/kovidgoyal/termprobe/tools/utils"
)

var _ = fmt.Print

// Source is a stream of events that can be waited on selectively
type Source interface {
	// Poll waits at most timeout for an event accepted by filter to be
	// available. A negative timeout waits forever. Returns false if the
	// timeout elapsed without a matching event.
	Poll(timeout time.Duration, filter Filter) (bool, error)
	// Read blocks until an event accepted by filter is available, removes it
	// from the stream and returns it. Events not accepted by filter are left
	// in the stream in their original order.
	Read(filter Filter) (InternalEvent, error)
}

// Input is a byte stream with reads that can time out, satisfied by *tty.Term
type Input interface {
	// ReadWithTimeout returns os.ErrDeadlineExceeded if no data arrived in time
	ReadWithTimeout(b []byte, timeout time.Duration) (int, error)
}

// How long to wait after an ESC for the rest of an escape code before
// deciding it was the escape key
const EscapeTimeout = 50 * time.Millisecond

const read_buffer_size = 4096

// Reader is a Source that decodes events from an Input and queues them until
// they are read. It is safe for concurrent use, but a goroutine blocked in
// Poll() or Read() holds up all others.
type Reader struct {
	mu     sync.Mutex
	input  Input
	parser Parser
	queue  []InternalEvent
	buf    []byte

	Logger log.Logger
}

func NewReader(input Input) *Reader {
	ans := &Reader{input: input, buf: make([]byte, read_buffer_size), Logger: log.NewNopLogger()}
	ans.parser.HandleEvent = func(ev InternalEvent) { ans.queue = append(ans.queue, ev) }
	return ans
}

// Push appends an event to the queue, for events that do not come from the
// input, such as resizes signalled by SIGWINCH.
func (self *Reader) Push(ev InternalEvent) {
	self.mu.Lock()
	defer self.mu.Unlock()
	self.queue = append(self.queue, ev)
}

// Pending returns the number of decoded events not yet read
func (self *Reader) Pending() int {
	self.mu.Lock()
	defer self.mu.Unlock()
	return len(self.queue)
}

func (self *Reader) index_of(filter Filter) int {
	for i, ev := range self.queue {
		if filter.Eval(ev) {
			return i
		}
	}
	return -1
}

// fill reads and decodes more input, waiting at most timeout for it.
// Returns false, nil if nothing arrived in time.
func (self *Reader) fill(timeout time.Duration) (bool, error) {
	n, err := self.input.ReadWithTimeout(self.buf, timeout)
	if n > 0 {
		self.parser.Parse(self.buf[:n])
		if self.parser.PendingEscape() {
			m, merr := self.input.ReadWithTimeout(self.buf, EscapeTimeout)
			if m > 0 {
				self.parser.Parse(self.buf[:m])
			} else if merr == nil || errors.Is(merr, os.ErrDeadlineExceeded) {
				self.parser.FlushPendingEscape()
			}
		}
	}
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrDeadlineExceeded):
		return n > 0, nil
	case errors.Is(err, io.EOF):
		self.parser.FlushPendingEscape()
		return n > 0, io.EOF
	}
	return n > 0, fmt.Errorf("Failed to read from terminal: %w", err)
}

func (self *Reader) poll(timeout time.Duration, filter Filter) (int, error) {
	var deadline time.Time
	if timeout >= 0 {
		deadline = time.Now().Add(timeout)
	}
	for attempt := 0; ; attempt++ {
		if idx := self.index_of(filter); idx > -1 {
			return idx, nil
		}
		wait := time.Duration(-1)
		if timeout >= 0 {
			if wait = time.Until(deadline); wait <= 0 {
				if attempt > 0 {
					return -1, nil
				}
				// a zero timeout still picks up input that is already there
				wait = 0
			}
		}
		if _, err := self.fill(wait); err != nil {
			if idx := self.index_of(filter); idx > -1 {
				return idx, nil
			}
			return -1, err
		}
	}
}

func (self *Reader) Poll(timeout time.Duration, filter Filter) (bool, error) {
	self.mu.Lock()
	defer self.mu.Unlock()
	idx, err := self.poll(timeout, filter)
	return idx > -1, err
}

func (self *Reader) Read(filter Filter) (InternalEvent, error) {
	self.mu.Lock()
	defer self.mu.Unlock()
	idx, err := self.poll(-1, filter)
	if err != nil {
		return nil, err
	}
	ev := self.queue[idx]
	self.queue = append(self.queue[:idx], self.queue[idx+1:]...)
	level.Debug(utils.LoggerOrNop(self.Logger)).Log("msg", "event read", "filter", filter, "event", fmt.Sprintf("%#v", ev), "pending", len(self.queue))
	return ev, nil
}

// ReadEvent returns the next user input event, skipping over any query
// replies, which stay queued.
func (self *Reader) ReadEvent() (Event, error) {
	ev, err := self.Read(EventFilter)
	if err != nil {
		return nil, err
	}
	return ev.(UserEvent).Event, nil
}
