// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"

	"github.com/bureau-foundation/rezprox/lib/watchdog"
)

// Acceptor pairs connections from the caller and callee listeners. The
// listeners are shared for the whole session and are only ever used to
// Accept.
type Acceptor struct {
	Caller net.Listener
	Callee net.Listener

	// Stall, if set, is reset to FirstLegTicks before waiting for the
	// caller side and to SecondLegTicks before waiting for the callee
	// side. A caller whose partner never arrives therefore ends the
	// session after SecondLegTicks; the blocked Accept is not
	// abandoned.
	Stall          *watchdog.Watchdog
	FirstLegTicks  int
	SecondLegTicks int

	Logger *slog.Logger

	pairs atomic.Uint64
}

func (a *Acceptor) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// Accept blocks until one connection has arrived on each listener,
// caller first, and returns them as a Pair of the given class. If the
// callee side fails, the caller connection already accepted is closed.
func (a *Acceptor) Accept(class Class) (Pair, error) {
	if a.Stall != nil {
		a.Stall.Reset(a.FirstLegTicks)
	}
	caller, err := a.Caller.Accept()
	if err != nil {
		return Pair{}, fmt.Errorf("accepting %s caller connection: %w", class, err)
	}

	id := a.pairs.Add(1)
	logger := a.logger().With("pair", id, "class", class.String())
	logger.Info("caller connected", "remote_addr", caller.RemoteAddr())

	if a.Stall != nil {
		a.Stall.Reset(a.SecondLegTicks)
	}
	callee, err := a.Callee.Accept()
	if err != nil {
		caller.Close()
		return Pair{}, fmt.Errorf("accepting %s callee connection for pair %d: %w", class, id, err)
	}
	logger.Info("callee connected", "remote_addr", callee.RemoteAddr())

	return Pair{ID: id, Class: class, Caller: caller, Callee: callee}, nil
}
