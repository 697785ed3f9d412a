// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/bureau-foundation/rezprox/lib/clock"
	"github.com/bureau-foundation/rezprox/lib/process"
	"github.com/bureau-foundation/rezprox/lib/watchdog"
)

// TunnelOptions configures the two shovels of a tunnel.
type TunnelOptions struct {
	Policy Policy

	// IdleTicks is the per-direction idle limit under Strict.
	IdleTicks int

	// Tick and Clock drive the idle watchdogs under Strict.
	Tick  time.Duration
	Clock clock.Clock

	// Terminator is required under Strict.
	Terminator process.Terminator

	Stats      *Stats
	BufferSize int
	Logger     *slog.Logger
}

// Tunnel is a running full-duplex relay of one Pair. The session does
// not hold on to tunnels; the handle exists so that callers who want to
// can observe completion.
type Tunnel struct {
	pair           Pair
	done           chan struct{}
	callerToCallee atomic.Int64
	calleeToCaller atomic.Int64
}

// StartTunnel starts the mirrored shovels for pair and returns without
// waiting for them. Under Strict each direction gets its own idle
// watchdog, stopped when that direction's shovel returns.
func StartTunnel(pair Pair, options TunnelOptions) (*Tunnel, error) {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("pair", pair.ID, "class", pair.Class.String())

	forward := &Shovel{
		Source:      pair.Caller,
		Destination: pair.Callee,
		Direction:   "caller->callee",
	}
	backward := &Shovel{
		Source:      pair.Callee,
		Destination: pair.Caller,
		Direction:   "callee->caller",
	}
	shovels := []*Shovel{forward, backward}

	for _, shovel := range shovels {
		shovel.Policy = options.Policy
		shovel.Terminator = options.Terminator
		shovel.Stats = options.Stats
		shovel.BufferSize = options.BufferSize
		shovel.Logger = logger
	}

	if options.Policy == Strict {
		if options.Terminator == nil {
			return nil, fmt.Errorf("relay: strict tunnel for pair %d requires a Terminator", pair.ID)
		}
		for index, shovel := range shovels {
			idle, err := watchdog.New(watchdog.Config{
				Name:       fmt.Sprintf("%s %s idle", pair.Class, shovel.Direction),
				Ticks:      options.IdleTicks,
				Tick:       options.Tick,
				Clock:      options.Clock,
				Terminator: options.Terminator,
				Logger:     logger,
			})
			if err != nil {
				for _, started := range shovels[:index] {
					started.Watchdog.Stop()
				}
				return nil, fmt.Errorf("relay: starting idle watchdog: %w", err)
			}
			shovel.Watchdog = idle
			shovel.IdleTicks = options.IdleTicks
		}
	}

	tunnel := &Tunnel{pair: pair, done: make(chan struct{})}
	options.Stats.pairStarted()

	var waitGroup sync.WaitGroup
	waitGroup.Add(2)
	go func() {
		defer waitGroup.Done()
		tunnel.callerToCallee.Store(tunnel.run(forward))
	}()
	go func() {
		defer waitGroup.Done()
		tunnel.calleeToCaller.Store(tunnel.run(backward))
	}()
	go func() {
		waitGroup.Wait()
		options.Stats.pairFinished()
		logger.Info("pair closed",
			"caller_to_callee", humanize.Bytes(uint64(tunnel.callerToCallee.Load())),
			"callee_to_caller", humanize.Bytes(uint64(tunnel.calleeToCaller.Load())),
			"active_pairs", options.Stats.ActivePairs(),
		)
		close(tunnel.done)
	}()

	return tunnel, nil
}

func (t *Tunnel) run(shovel *Shovel) int64 {
	if shovel.Watchdog != nil {
		defer shovel.Watchdog.Stop()
	}
	return shovel.Run()
}

// Pair returns the relayed pair.
func (t *Tunnel) Pair() Pair { return t.pair }

// Done is closed once both directions have stopped relaying.
func (t *Tunnel) Done() <-chan struct{} { return t.done }

// Bytes returns the bytes relayed in each direction. The values are
// final once Done is closed.
func (t *Tunnel) Bytes() (callerToCallee, calleeToCaller int64) {
	return t.callerToCallee.Load(), t.calleeToCaller.Load()
}
