// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import "sync/atomic"

// Stats counts pairs and bytes across the session. Tunnels register
// with it but it holds no references to them; it exists for logging.
// A nil *Stats is valid and counts nothing.
type Stats struct {
	activePairs atomic.Int64
	totalPairs  atomic.Int64
	bytes       atomic.Int64
}

// ActivePairs returns the number of tunnels with at least one direction
// still relaying.
func (s *Stats) ActivePairs() int64 {
	if s == nil {
		return 0
	}
	return s.activePairs.Load()
}

// TotalPairs returns the number of tunnels started.
func (s *Stats) TotalPairs() int64 {
	if s == nil {
		return 0
	}
	return s.totalPairs.Load()
}

// Bytes returns the number of bytes relayed in both directions of every
// tunnel.
func (s *Stats) Bytes() int64 {
	if s == nil {
		return 0
	}
	return s.bytes.Load()
}

func (s *Stats) pairStarted() {
	if s == nil {
		return
	}
	s.activePairs.Add(1)
	s.totalPairs.Add(1)
}

func (s *Stats) pairFinished() {
	if s == nil {
		return
	}
	s.activePairs.Add(-1)
}

func (s *Stats) addBytes(n int) {
	if s == nil || n <= 0 {
		return
	}
	s.bytes.Add(int64(n))
}
