// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// AdoptConn converts an inherited file descriptor into a net.Conn.
//
// The launching service promises that fd is a connected stream socket.
// AdoptConn checks that promise instead of trusting it: a terminal or
// any descriptor that is not a SOCK_STREAM socket is rejected, so a
// binary started by hand fails at startup rather than writing its
// announcement somewhere nobody is listening.
//
// net.FileConn duplicates the descriptor; the original is closed before
// returning.
func AdoptConn(fd uintptr, name string) (net.Conn, error) {
	descriptor := int(fd)
	if term.IsTerminal(descriptor) {
		return nil, fmt.Errorf("fd %d (%s) is a terminal, not a socket (this binary must be started by the listening service)", descriptor, name)
	}

	socketType, err := unix.GetsockoptInt(descriptor, unix.SOL_SOCKET, unix.SO_TYPE)
	if err != nil {
		return nil, fmt.Errorf("fd %d (%s) is not a socket: %w", descriptor, name, err)
	}
	if socketType != unix.SOCK_STREAM {
		return nil, fmt.Errorf("fd %d (%s) is not a stream socket (SO_TYPE %d)", descriptor, name, socketType)
	}

	file := os.NewFile(fd, name)
	if file == nil {
		return nil, fmt.Errorf("fd %d (%s) is not available", descriptor, name)
	}
	connection, err := net.FileConn(file)
	file.Close()
	if err != nil {
		return nil, fmt.Errorf("opening %s on fd %d: %w", name, descriptor, err)
	}
	return connection, nil
}
