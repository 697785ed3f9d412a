// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import "net"

// halfCloser is implemented by *net.TCPConn and *net.UnixConn.
type halfCloser interface {
	CloseRead() error
	CloseWrite() error
}

// Shutdown shuts down both directions of every connection and then
// closes it. Any goroutine blocked reading or writing one of them
// returns promptly with EOF or an error. Errors are ignored: the usual
// caller is tearing down a pair that its peer task may already have
// torn down.
func Shutdown(connections ...net.Conn) {
	for _, connection := range connections {
		if connection == nil {
			continue
		}
		if closer, ok := connection.(halfCloser); ok {
			_ = closer.CloseWrite()
			_ = closer.CloseRead()
		}
		_ = connection.Close()
	}
}
