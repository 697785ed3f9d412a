// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/bureau-foundation/rezprox/lib/clock"
	"github.com/bureau-foundation/rezprox/lib/config"
	"github.com/bureau-foundation/rezprox/lib/process"
	"github.com/bureau-foundation/rezprox/lib/watchdog"
	"github.com/bureau-foundation/rezprox/lib/xfer"
	"github.com/bureau-foundation/rezprox/relay"
)

// State names a phase of the session, for logging.
type State string

const (
	Bootstrap     State = "bootstrap"
	StartupWait   State = "startup_wait"
	ControlActive State = "control_active"
	MediaLoop     State = "media_loop"
)

// Supervisor runs one session.
type Supervisor struct {
	// Config supplies the bind address and watchdog thresholds.
	Config config.Config

	// Announce receives the announcement. In production this is the
	// stream inherited from the launching service.
	Announce io.Writer

	// Terminator ends the session. Required.
	Terminator process.Terminator

	// Clock drives every watchdog. Defaults to clock.Real().
	Clock clock.Clock

	// Stats, if set, counts pairs and bytes across the session.
	Stats *relay.Stats

	// Logger receives structured log output. If nil, slog.Default()
	// is used.
	Logger *slog.Logger

	mu         sync.Mutex
	state      State
	caller     net.Listener
	callee     net.Listener
	lifetime   *watchdog.Watchdog
	rendezvous *watchdog.Watchdog
}

func (s *Supervisor) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Supervisor) clock() clock.Clock {
	if s.Clock != nil {
		return s.Clock
	}
	return clock.Real()
}

func (s *Supervisor) tick() time.Duration {
	return time.Duration(s.Config.Tick)
}

// State returns the phase the session is in.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Supervisor) enter(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	s.logger().Info("session state", "state", string(state))
}

// CallerAddr returns the caller listener's address, or nil before Run
// has bound it.
func (s *Supervisor) CallerAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.caller == nil {
		return nil
	}
	return s.caller.Addr()
}

// CalleeAddr returns the callee listener's address, or nil before Run
// has bound it.
func (s *Supervisor) CalleeAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.callee == nil {
		return nil
	}
	return s.callee.Addr()
}

// Run executes the session. It returns ctx.Err() once ctx is cancelled,
// or an error if bootstrap fails or a listener stops accepting. The
// caller decides what a returned error means for the process; the
// session's own endings go through the Terminator and do not make Run
// return.
//
// On return both listeners are closed and the supervisor's watchdogs
// are stopped. Tunnels already started are left to their own teardown.
func (s *Supervisor) Run(ctx context.Context) error {
	if s.Terminator == nil {
		return fmt.Errorf("session: Terminator is required")
	}
	if s.Announce == nil {
		return fmt.Errorf("session: Announce is required")
	}
	if err := s.Config.Validate(); err != nil {
		return fmt.Errorf("session: %w", err)
	}

	s.enter(Bootstrap)
	lifetime, err := s.newWatchdog("lifetime", s.Config.Timeouts.Bootstrap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.lifetime = lifetime
	s.mu.Unlock()
	defer s.shutdown()

	stopOnCancel := context.AfterFunc(ctx, s.closeListeners)
	defer stopOnCancel()

	if err := s.bind(); err != nil {
		return err
	}
	if ctx.Err() != nil {
		// Cancellation may have fired before the listeners existed.
		return ctx.Err()
	}
	if err := s.announce(); err != nil {
		return err
	}

	s.enter(StartupWait)
	lifetime.Reset(s.Config.Timeouts.StartupGrace)

	acceptor := &relay.Acceptor{
		Caller: s.caller,
		Callee: s.callee,
		Logger: s.logger(),
	}
	control, err := acceptor.Accept(relay.Control)
	if err != nil {
		return s.acceptError(ctx, err)
	}

	s.enter(ControlActive)
	if _, err := relay.StartTunnel(control, relay.TunnelOptions{
		Policy:     relay.Strict,
		IdleTicks:  s.Config.Timeouts.ControlIdle,
		Tick:       s.tick(),
		Clock:      s.clock(),
		Terminator: s.Terminator,
		Stats:      s.Stats,
		Logger:     s.logger(),
	}); err != nil {
		control.Shutdown()
		return fmt.Errorf("starting control tunnel: %w", err)
	}
	lifetime.Reset(s.Config.Timeouts.Lifetime)

	s.enter(MediaLoop)
	rendezvous, err := s.newWatchdog("rendezvous", s.Config.Timeouts.FirstLeg)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.rendezvous = rendezvous
	s.mu.Unlock()

	acceptor.Stall = rendezvous
	acceptor.FirstLegTicks = s.Config.Timeouts.FirstLeg
	acceptor.SecondLegTicks = s.Config.Timeouts.SecondLeg

	for {
		pair, err := acceptor.Accept(relay.Media)
		if err != nil {
			return s.acceptError(ctx, err)
		}
		if _, err := relay.StartTunnel(pair, relay.TunnelOptions{
			Policy: relay.Lenient,
			Stats:  s.Stats,
			Logger: s.logger(),
		}); err != nil {
			pair.Shutdown()
			s.logger().Warn("dropping media pair", "pair", pair.ID, "error", err)
			continue
		}
		s.logger().Info("media pair relaying",
			"pair", pair.ID,
			"active_pairs", s.Stats.ActivePairs(),
			"total_pairs", s.Stats.TotalPairs(),
		)
	}
}

func (s *Supervisor) newWatchdog(name string, ticks int) (*watchdog.Watchdog, error) {
	dog, err := watchdog.New(watchdog.Config{
		Name:       name,
		Ticks:      ticks,
		Tick:       s.tick(),
		Clock:      s.clock(),
		Terminator: s.Terminator,
		Logger:     s.logger(),
	})
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	return dog, nil
}

// bind opens both listeners with OS-assigned ports.
func (s *Supervisor) bind() error {
	address := s.Config.ListenAddress()

	caller, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("binding caller listener on %s: %w", address, err)
	}
	callee, err := net.Listen("tcp", address)
	if err != nil {
		caller.Close()
		return fmt.Errorf("binding callee listener on %s: %w", address, err)
	}

	s.mu.Lock()
	s.caller = caller
	s.callee = callee
	s.mu.Unlock()

	s.logger().Info("listeners bound",
		"caller_addr", caller.Addr().String(),
		"callee_addr", callee.Addr().String(),
	)
	return nil
}

// announce writes the listener addresses to the coordinator.
func (s *Supervisor) announce() error {
	message, err := xfer.Announcement(s.caller.Addr().String(), s.callee.Addr().String())
	if err != nil {
		return fmt.Errorf("building announcement: %w", err)
	}
	if _, err := io.WriteString(s.Announce, message); err != nil {
		return fmt.Errorf("writing announcement: %w", err)
	}
	s.logger().Info("announced", "message", message)
	return nil
}

// acceptError converts an accept failure caused by cancellation into
// ctx.Err().
func (s *Supervisor) acceptError(ctx context.Context, err error) error {
	if ctx.Err() != nil && errors.Is(err, net.ErrClosed) {
		return ctx.Err()
	}
	return err
}

func (s *Supervisor) closeListeners() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.caller != nil {
		s.caller.Close()
	}
	if s.callee != nil {
		s.callee.Close()
	}
}

func (s *Supervisor) shutdown() {
	s.closeListeners()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lifetime != nil {
		s.lifetime.Stop()
	}
	if s.rendezvous != nil {
		s.rendezvous.Stop()
	}
}
