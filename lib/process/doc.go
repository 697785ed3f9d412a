// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process owns how rezprox ends.
//
// Any goroutine may decide that the session is over: a watchdog that
// counted down to zero, a control shovel that saw end-of-stream or an
// I/O error, an accept loop whose listener failed. None of them call
// os.Exit themselves. They report to a single [Authority] through the
// [Terminator] interface; the first report wins, and the binary's main
// goroutine exits with the recorded code as soon as [Authority.Done]
// closes. There is no drain: in-flight relays are cut off by the exit.
//
// [Fatal] covers the narrower case of errors in main() before the
// structured logger or the authority exists.
package process
