//go:build unix

// Package sockopt provides socket-option control hooks for listeners.
package sockopt

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// ReuseAddr is a net.ListenConfig Control hook that sets SO_REUSEADDR
// before bind, so a listener can rebind an address still held by sockets
// in TIME_WAIT.
func ReuseAddr(network, address string, c syscall.RawConn) error {
	var sockErr error
	if err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	}); err != nil {
		return err
	}
	return sockErr
}
