// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Rezprox is a per-session TCP rendezvous relay. A coordinating service
// launches one process per call:
//
//	rezprox -c <dir>
//
// with a connected stream socket on fd 0. The relay changes into <dir>,
// reads cfg/HostIP (and the optional cfg/rezprox.yaml), binds one
// listener for the caller and one for the callee, and writes both
// addresses to fd 0 as a single announcement. The first caller/callee
// pair is the control pair; every later pair carries media.
//
// The process ends when the control pair closes (exit 0), or when any
// watchdog fires, the control pair fails, or startup fails (exit 1).
//
// Environment variables:
//
//	REZPROX_LOG_LEVEL  debug, info, warn or error (default: info)
package main
