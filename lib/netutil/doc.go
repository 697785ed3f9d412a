// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides the socket plumbing underneath the relay.
//
// [AdoptConn] turns a file descriptor inherited from the launching
// service into a net.Conn, refusing anything that is not a connected
// stream socket. [Shutdown] tears down both halves of one or more
// connections so that every goroutine blocked on them returns.
// [IsExpectedCloseError] classifies the errors that normal teardown
// produces so they are not reported as failures.
package netutil
