//go:build !unix

// Package sockopt provides socket-option control hooks for listeners.
package sockopt

import "syscall"

// ReuseAddr is a no-op on platforms where SO_REUSEADDR either does not
// exist or carries different semantics.
func ReuseAddr(network, address string, c syscall.RawConn) error {
	return nil
}
