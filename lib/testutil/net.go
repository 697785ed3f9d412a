// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"net"
	"testing"
)

// Listen binds a TCP listener on an ephemeral loopback port. The
// listener is closed when the test completes.
func Listen(t *testing.T) net.Listener {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { listener.Close() })
	return listener
}

// TCPPair returns the two ends of one loopback TCP connection: the
// dialing side and the accepted side. Both are closed when the test
// completes.
func TCPPair(t *testing.T) (dialed, accepted *net.TCPConn) {
	t.Helper()
	listener := Listen(t)

	type acceptResult struct {
		connection net.Conn
		err        error
	}
	results := make(chan acceptResult, 1)
	go func() {
		connection, err := listener.Accept()
		results <- acceptResult{connection, err}
	}()

	connection, err := net.Dial("tcp", listener.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	result := <-results
	if result.err != nil {
		connection.Close()
		t.Fatalf("accept: %v", result.err)
	}
	t.Cleanup(func() {
		connection.Close()
		result.connection.Close()
	})
	return connection.(*net.TCPConn), result.connection.(*net.TCPConn)
}

// Dial connects to address over TCP. The connection is closed when the
// test completes.
func Dial(t *testing.T, address string) *net.TCPConn {
	t.Helper()
	connection, err := net.Dial("tcp", address)
	if err != nil {
		t.Fatalf("dial %s: %v", address, err)
	}
	t.Cleanup(func() { connection.Close() })
	return connection.(*net.TCPConn)
}
