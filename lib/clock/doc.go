// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source for the watchdogs.
//
// Production code uses Real(). Tests use Fake(), whose time moves only
// when Advance is called, so a countdown of n ticks can be driven one
// tick at a time without sleeping.
//
// A goroutine that creates a ticker on a FakeClock registers a pending
// waiter. Call WaitForTimers before Advance so the advance cannot race
// ahead of the registration:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	dog := watchdog.New(watchdog.Config{Clock: fake, ...})
//	fake.WaitForTimers(1)
//	fake.Advance(time.Second)
package clock
