// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads rezprox configuration from its working directory.
//
// Two files are consulted, both relative to the directory the process
// was told to run in:
//
//   - cfg/HostIP holds the address to bind the caller and callee
//     listeners on, as a single line. If it is missing, unreadable, or
//     blank, [DefaultBindAddress] is used.
//   - cfg/rezprox.yaml optionally overrides the watchdog thresholds.
//     Unknown keys are rejected. A missing file leaves the defaults in
//     place; a malformed one is an error.
//
// The default thresholds in [Default] are representative values, not
// settled production numbers. Every one of them can be tuned in the
// YAML file without a rebuild.
package config
