//go:build linux

package main

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// epollSource reads one input device using epoll.
//
// The device fd is registered edge-triggered, so every wakeup must be followed
// by reads until EAGAIN. An eventfd is registered next to it so Wake can
// unblock a pending Wait during shutdown.
type epollSource struct {
	path string

	fd     int
	epfd   int
	wakefd int

	buf    []byte
	events []unix.EpollEvent

	closeOnce sync.Once
}

// openEpollSource opens the device node non-blocking and registers it with a
// new epoll instance.
func openEpollSource(path string) (*epollSource, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrDeviceOpenFailed, path, err)
	}

	s := &epollSource{
		path:   path,
		fd:     fd,
		epfd:   -1,
		wakefd: -1,
		buf:    make([]byte, rawEventSize*defaultMaxEventsPerRead),
		events: make([]unix.EpollEvent, 2),
	}

	if err := s.register(); err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: %w", ErrReadinessRegistrationFailed, err)
	}
	return s, nil
}

func (s *epollSource) register() error {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return fmt.Errorf("epoll_create1: %w", err)
	}
	s.epfd = epfd

	wakefd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		return fmt.Errorf("eventfd: %w", err)
	}
	s.wakefd = wakefd

	devEvent := unix.EpollEvent{
		Events: unix.EPOLLIN | unix.EPOLLET,
		Fd:     int32(s.fd),
	}
	if err := unix.EpollCtl(s.epfd, unix.EPOLL_CTL_ADD, s.fd, &devEvent); err != nil {
		return fmt.Errorf("epoll_ctl_add device fd=%d: %w", s.fd, err)
	}

	wakeEvent := unix.EpollEvent{
		Events: unix.EPOLLIN,
		Fd:     int32(s.wakefd),
	}
	if err := unix.EpollCtl(s.epfd, unix.EPOLL_CTL_ADD, s.wakefd, &wakeEvent); err != nil {
		return fmt.Errorf("epoll_ctl_add eventfd=%d: %w", s.wakefd, err)
	}
	return nil
}

// Wait blocks until the device is readable or Wake has been called.
// It returns errSourceWoken in the latter case.
func (s *epollSource) Wait() error {
	for {
		n, err := unix.EpollWait(s.epfd, s.events, -1)
		if err != nil {
			// Interrupted system call (e.g. signal delivery)
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("epoll_wait: %w", err)
		}

		woken := false
		for i := 0; i < n; i++ {
			ev := s.events[i]
			if int(ev.Fd) == s.wakefd {
				woken = true
				continue
			}
			if ev.Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
				return fmt.Errorf("device error/hangup: %s (fd=%d)", s.path, s.fd)
			}
		}
		if woken {
			return errSourceWoken
		}
		if n > 0 {
			return nil
		}
	}
}

// ReadAvailable drains the device until the kernel reports EAGAIN.
func (s *epollSource) ReadAvailable() ([]RawEvent, error) {
	var out []RawEvent
	for {
		n, err := unix.Read(s.fd, s.buf)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) {
				return out, nil
			}
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return out, fmt.Errorf("read from %s: %w", s.path, err)
		}
		if n == 0 {
			return out, fmt.Errorf("read from %s: device closed", s.path)
		}

		events, err := decodeEvents(s.buf[:n])
		out = append(out, events...)
		if err != nil {
			// evdev never splits records; treat it as a broken device
			return out, err
		}
	}
}

// Wake unblocks a concurrent Wait.
func (s *epollSource) Wake() error {
	var one [8]byte
	one[0] = 1 // eventfd counters are host-endian; all supported targets are little-endian
	if _, err := unix.Write(s.wakefd, one[:]); err != nil && !errors.Is(err, unix.EAGAIN) {
		return fmt.Errorf("eventfd write: %w", err)
	}
	return nil
}

// Close releases the device, the eventfd and the epoll instance.
func (s *epollSource) Close() error {
	s.closeOnce.Do(func() {
		if s.epfd >= 0 {
			unix.Close(s.epfd)
		}
		if s.wakefd >= 0 {
			unix.Close(s.wakefd)
		}
		if s.fd >= 0 {
			unix.Close(s.fd)
		}
	})
	return nil
}
