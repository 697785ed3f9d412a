// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package watchdog provides the countdown timer that bounds every wait
// in a rezprox session.
//
// A [Watchdog] counts down once per tick (one second in production).
// [Watchdog.Reset] installs a fresh countdown and restarts the tick
// phase; [Watchdog.Stop] ends the countdown without consequence. When
// the count reaches zero the watchdog reports to its
// [process.Terminator] with [process.ExitFatal]: expiry is never local
// to the goroutine that owns the watchdog, it ends the whole session.
//
// The session runs several independent instances, one per liveness
// domain: the lifetime cap (which also guards bootstrap and the startup
// grace period), the rendezvous stall guard, and one idle guard per
// direction of the control tunnel. Each instance carries a name so logs
// and the termination reason identify which one fired.
package watchdog
