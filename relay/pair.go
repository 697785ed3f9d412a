// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"net"

	"github.com/bureau-foundation/rezprox/lib/netutil"
)

// Class distinguishes the single control pair from media pairs.
type Class int

const (
	// Control is the first pair of the session. Its health gates the
	// whole process.
	Control Class = iota

	// Media pairs come and go for the rest of the session.
	Media
)

func (c Class) String() string {
	switch c {
	case Control:
		return "control"
	case Media:
		return "media"
	default:
		return "unknown"
	}
}

// Pair is one caller connection bridged to one callee connection.
type Pair struct {
	// ID numbers pairs in acceptance order, starting at 1.
	ID uint64

	Class  Class
	Caller net.Conn
	Callee net.Conn
}

// Shutdown tears down both connections of the pair.
func (p Pair) Shutdown() {
	netutil.Shutdown(p.Caller, p.Callee)
}
