// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package session runs one rendezvous relay session from bootstrap to
// termination.
//
// A [Supervisor] walks through four states:
//
//  1. Bootstrap: bind the caller and callee listeners on the configured
//     address with OS-assigned ports, and write the announcement
//     (lib/xfer) to the coordinator's stream. The lifetime watchdog
//     starts here with the bootstrap threshold.
//  2. StartupWait: reset the lifetime watchdog to the startup grace
//     period and accept the control pair.
//  3. ControlActive: relay the control pair with two strict shovels,
//     each guarded by its own idle watchdog, and reset the lifetime
//     watchdog to the hard lifetime cap. Nothing resets it again.
//  4. MediaLoop: accept media pairs forever, guarded by the rendezvous
//     stall watchdog, starting a lenient tunnel for each and never
//     waiting for one to finish.
//
// The session has no natural end. It is over when a watchdog fires or
// the control tunnel closes, both of which go to the
// [process.Terminator]. [Supervisor.Run] itself returns only when its
// context is cancelled or a listener fails.
package session
