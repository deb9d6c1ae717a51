// SPDX-License-Identifier: Unlicense OR MIT

// Package evloop implements the poll-based single-threaded event loop the
// compositor root runs on: one blocking golang.org/x/sys/unix.Poll call
// per iteration over a set of registered file descriptors, plus a
// self-pipe so code running outside the poll call (a protocol handler
// scheduling a repaint from a different goroutine, for instance) can wake
// it immediately rather than waiting out the current timeout. This mirrors
// the notify-pipe pattern in the teacher's platform event loops, ported
// from the raw syscall package to golang.org/x/sys/unix.
package evloop

import (
	"sync"

	"golang.org/x/sys/unix"
)

// FDHandler is called when its registered fd has pending events.
type FDHandler func()

// Loop is a single-threaded, poll-based event loop. It is not safe for
// concurrent Run calls; Wakeup and AddFD/RemoveFD are safe to call from
// other goroutines while Run is blocked in poll.
type Loop struct {
	mu       sync.Mutex
	fds      []unix.PollFd
	handlers []FDHandler

	notifyR, notifyW int
}

// New returns a Loop with its wakeup self-pipe already registered.
func New() (*Loop, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		return nil, err
	}
	l := &Loop{notifyR: fds[0], notifyW: fds[1]}
	l.AddFD(l.notifyR, unix.POLLIN, l.drainNotify)
	return l, nil
}

// drainNotify empties the self-pipe after a wakeup. The loop doesn't care
// how many bytes accumulated — only that it was woken at least once.
func (l *Loop) drainNotify() {
	var buf [64]byte
	for {
		n, err := unix.Read(l.notifyR, buf[:])
		if n <= 0 || err != nil {
			return
		}
	}
}

// AddFD registers fd for the given poll event mask, calling h when ready.
func (l *Loop) AddFD(fd int, events int16, h FDHandler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fds = append(l.fds, unix.PollFd{Fd: int32(fd), Events: events})
	l.handlers = append(l.handlers, h)
}

// RemoveFD unregisters fd. A no-op if fd was never added.
func (l *Loop) RemoveFD(fd int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, pf := range l.fds {
		if int(pf.Fd) == fd {
			l.fds = append(l.fds[:i], l.fds[i+1:]...)
			l.handlers = append(l.handlers[:i], l.handlers[i+1:]...)
			return
		}
	}
}

// Wakeup interrupts a blocked Run call immediately, for use from outside
// the goroutine driving the loop.
func (l *Loop) Wakeup() {
	one := [1]byte{1}
	_, err := unix.Write(l.notifyW, one[:])
	for err == unix.EAGAIN {
		// The pipe is already full of pending wakeups; one is enough.
		return
	}
}

// Run blocks in a single poll call for up to timeoutMS (-1 blocks
// forever, 0 returns immediately) and dispatches every ready fd's
// handler. The compositor root computes timeoutMS itself from its next
// repaint/batching deadline; Run has no timing policy of its own.
func (l *Loop) Run(timeoutMS int) error {
	l.mu.Lock()
	fds := make([]unix.PollFd, len(l.fds))
	copy(fds, l.fds)
	handlers := make([]FDHandler, len(l.handlers))
	copy(handlers, l.handlers)
	l.mu.Unlock()

	if len(fds) == 0 {
		return nil
	}
	n, err := unix.Poll(fds, timeoutMS)
	if err != nil {
		if err == unix.EINTR {
			return nil
		}
		return err
	}
	if n == 0 {
		return nil
	}
	for i, pf := range fds {
		if pf.Revents&(unix.POLLIN|unix.POLLERR|unix.POLLHUP) != 0 {
			handlers[i]()
		}
	}
	return nil
}

// Close releases the self-pipe. Registered fds remain the caller's
// responsibility to close.
func (l *Loop) Close() error {
	unix.Close(l.notifyW)
	return unix.Close(l.notifyR)
}
