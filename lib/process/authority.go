// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"log/slog"
	"sync"
)

// Terminator ends the session. Implementations must be safe for
// concurrent use and must return promptly: callers include watchdog
// goroutines and relay loops that are about to abandon their work.
type Terminator interface {
	Terminate(code int, reason string)
}

// Authority is the process's single shutdown authority. The first call
// to Terminate records its code and reason and closes Done; later calls
// are logged and otherwise ignored.
type Authority struct {
	// Logger receives the termination record. If nil, slog.Default()
	// is used.
	Logger *slog.Logger

	once   sync.Once
	mu     sync.Mutex
	done   chan struct{}
	code   int
	reason string
}

// NewAuthority returns an Authority that logs to logger.
func NewAuthority(logger *slog.Logger) *Authority {
	return &Authority{Logger: logger, done: make(chan struct{})}
}

func (a *Authority) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

func (a *Authority) init() {
	a.mu.Lock()
	if a.done == nil {
		a.done = make(chan struct{})
	}
	a.mu.Unlock()
}

// Terminate requests the end of the process with the given exit code.
func (a *Authority) Terminate(code int, reason string) {
	a.init()
	first := false
	a.once.Do(func() {
		first = true
		a.mu.Lock()
		a.code = code
		a.reason = reason
		a.mu.Unlock()

		if code == ExitClean {
			a.logger().Info("session terminating", "exit_code", code, "reason", reason)
		} else {
			a.logger().Error("session terminating", "exit_code", code, "reason", reason)
		}
		close(a.done)
	})
	if !first {
		a.logger().Debug("termination already in progress",
			"exit_code", code,
			"reason", reason,
		)
	}
}

// Done is closed by the first call to Terminate.
func (a *Authority) Done() <-chan struct{} {
	a.init()
	return a.done
}

// Code returns the exit code recorded by the first Terminate call, or
// ExitClean if Terminate has not been called.
func (a *Authority) Code() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.code
}

// Reason returns the reason recorded by the first Terminate call.
func (a *Authority) Reason() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reason
}
