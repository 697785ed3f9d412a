// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version carries build information for the rezprox binary.
//
// Three package-level variables are injected at build time via
// -ldflags -X:
//
//   - [GitCommit] -- short git SHA of the build
//   - [GitDirty] -- "true" if there were uncommitted changes
//   - [BuildTime] -- UTC timestamp of the build
//
// [Version] is set manually for releases. When nothing is injected the
// defaults are "unknown" and "0.1.0-dev", which is what development
// builds and test runs report.
//
// [Info] formats the one-line string printed for --version; [Print]
// writes it prefixed with the binary name.
package version
