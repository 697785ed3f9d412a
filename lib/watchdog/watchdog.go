// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package watchdog

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/rezprox/lib/clock"
	"github.com/bureau-foundation/rezprox/lib/process"
)

// DefaultTick is the countdown granularity used when Config.Tick is zero.
const DefaultTick = time.Second

// Config describes one watchdog instance.
type Config struct {
	// Name identifies the liveness domain ("lifetime", "rendezvous",
	// "control caller->callee"). Required.
	Name string

	// Ticks is the initial countdown. A watchdog created with zero
	// ticks fires immediately.
	Ticks int

	// Tick is the countdown granularity. Defaults to DefaultTick.
	Tick time.Duration

	// Clock drives the countdown. Defaults to clock.Real().
	Clock clock.Clock

	// Terminator receives the expiry. Required.
	Terminator process.Terminator

	// Logger receives reset, stop, and countdown records. If nil,
	// slog.Default() is used.
	Logger *slog.Logger

	// OnChange, if set, is called from the watchdog goroutine with the
	// new remaining count after every reset and every decrement.
	OnChange func(remaining int)
}

// Watchdog is a running countdown. Create one with New.
type Watchdog struct {
	name       string
	tick       time.Duration
	clock      clock.Clock
	terminator process.Terminator
	logger     *slog.Logger
	onChange   func(int)

	// resets holds at most one pending countdown; a newer Reset
	// replaces an unconsumed older one.
	resets chan int

	stop     chan struct{}
	stopOnce sync.Once
	stopped  atomic.Bool

	done      chan struct{}
	remaining atomic.Int64
	fired     atomic.Bool
}

// New starts a watchdog goroutine counting down from config.Ticks.
func New(config Config) (*Watchdog, error) {
	if config.Name == "" {
		return nil, fmt.Errorf("watchdog: Name is required")
	}
	if config.Terminator == nil {
		return nil, fmt.Errorf("watchdog %s: Terminator is required", config.Name)
	}
	if config.Ticks < 0 {
		return nil, fmt.Errorf("watchdog %s: negative initial ticks %d", config.Name, config.Ticks)
	}

	watchdog := &Watchdog{
		name:       config.Name,
		tick:       config.Tick,
		clock:      config.Clock,
		terminator: config.Terminator,
		logger:     config.Logger,
		onChange:   config.OnChange,
		resets:     make(chan int, 1),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	if watchdog.tick <= 0 {
		watchdog.tick = DefaultTick
	}
	if watchdog.clock == nil {
		watchdog.clock = clock.Real()
	}
	if watchdog.logger == nil {
		watchdog.logger = slog.Default()
	}
	watchdog.logger = watchdog.logger.With("watchdog", config.Name)
	watchdog.remaining.Store(int64(config.Ticks))

	// Register the ticker before returning so that callers using a
	// fake clock can advance it without racing the goroutine.
	ticker := watchdog.clock.NewTicker(watchdog.tick)
	go watchdog.run(ticker, config.Ticks)
	return watchdog, nil
}

// Name returns the watchdog's liveness domain name.
func (w *Watchdog) Name() string { return w.name }

// Reset installs a countdown of ticks, replacing whatever remained. A
// zero value is ignored; a negative value stops the watchdog. Reset
// never blocks and is a no-op once the watchdog has stopped or fired.
func (w *Watchdog) Reset(ticks int) {
	switch {
	case ticks == 0:
		return
	case ticks < 0:
		w.Stop()
		return
	}
	if w.stopped.Load() {
		return
	}
	for {
		select {
		case w.resets <- ticks:
			return
		default:
		}
		// Drop the unconsumed older countdown and retry.
		select {
		case <-w.resets:
		default:
		}
	}
}

// Stop ends the countdown without firing. Safe to call more than once
// and from any goroutine.
func (w *Watchdog) Stop() {
	w.stopOnce.Do(func() {
		w.stopped.Store(true)
		close(w.stop)
	})
}

// Done is closed when the watchdog goroutine exits, either by Stop or by
// firing.
func (w *Watchdog) Done() <-chan struct{} { return w.done }

// Remaining returns the current countdown value.
func (w *Watchdog) Remaining() int { return int(w.remaining.Load()) }

// Fired reports whether the watchdog reached zero.
func (w *Watchdog) Fired() bool { return w.fired.Load() }

func (w *Watchdog) run(ticker *clock.Ticker, remaining int) {
	defer close(w.done)
	defer ticker.Stop()

	for {
		if remaining <= 0 {
			w.fire()
			return
		}
		select {
		case <-w.stop:
			w.logger.Info("watchdog stopped", "remaining", remaining)
			return
		case ticks := <-w.resets:
			ticker.Reset(w.tick)
			remaining = ticks
			w.logger.Debug("watchdog reset", "ticks", ticks)
			w.changed(remaining)
		case <-ticker.C:
			remaining--
			w.logger.Debug("watchdog tick", "remaining", remaining)
			w.changed(remaining)
		}
	}
}

func (w *Watchdog) changed(remaining int) {
	w.remaining.Store(int64(remaining))
	if w.onChange != nil {
		w.onChange(remaining)
	}
}

func (w *Watchdog) fire() {
	// A Stop that raced the final tick wins: the owner already decided
	// this domain is finished.
	if w.stopped.Load() {
		w.logger.Info("watchdog stopped", "remaining", 0)
		return
	}
	w.stopped.Store(true)
	w.fired.Store(true)
	w.logger.Warn("watchdog expired")
	w.terminator.Terminate(process.ExitFatal, w.name+" watchdog expired")
}
