// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package relay moves bytes between the caller and callee sides of a
// rendezvous session.
//
// An [Acceptor] pairs connections from the caller and callee listeners
// strictly by arrival order on each listener: the i-th caller connection
// is always paired with the i-th callee connection. The caller side is
// accepted first. There is no matching state; a caller whose callee
// never arrives stalls the acceptor, and the acceptor's stall watchdog
// turns that stall into the end of the session.
//
// [StartTunnel] relays one [Pair] with two mirrored [Shovel] goroutines,
// one per direction. The goroutines are never joined by the session;
// each owns the read half of one connection and the write half of the
// other, and either one shutting the pair down makes the other return.
//
// The failure [Policy] distinguishes the two classes of pair:
//
//   - [Strict] (the control pair): any end-of-stream or I/O error ends
//     the whole session through the [process.Terminator]. A clean close
//     ends it with [process.ExitClean]; an error with
//     [process.ExitFatal]. Each direction also resets its own idle
//     watchdog before every read, so a control channel that stops
//     producing heartbeats is treated like a broken one.
//   - [Lenient] (media pairs): end-of-stream or an error shuts down both
//     connections of that pair and nothing else.
//
// Bytes are never inspected or reframed.
package relay
