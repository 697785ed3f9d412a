// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/rezprox/lib/clock"
	"github.com/bureau-foundation/rezprox/lib/process"
	"github.com/bureau-foundation/rezprox/lib/testutil"
	"github.com/bureau-foundation/rezprox/lib/watchdog"
)

type acceptResult struct {
	pair Pair
	err  error
}

func acceptAsync(acceptor *Acceptor, class Class) <-chan acceptResult {
	results := make(chan acceptResult, 1)
	go func() {
		pair, err := acceptor.Accept(class)
		results <- acceptResult{pair, err}
	}()
	return results
}

// readTag reads len(want) bytes from connection and compares them.
func readTag(t *testing.T, connection net.Conn, want string) {
	t.Helper()
	got := make([]byte, len(want))
	if _, err := io.ReadFull(connection, got); err != nil {
		t.Fatalf("reading tag %q: %v", want, err)
	}
	if string(got) != want {
		t.Fatalf("tag = %q, want %q", got, want)
	}
}

func TestAcceptorPairsByArrivalOrder(t *testing.T) {
	acceptor := &Acceptor{
		Caller: testutil.Listen(t),
		Callee: testutil.Listen(t),
		Logger: quietLogger(),
	}

	// Callees connect before callers; pairing still follows per-listener
	// arrival order, not global order.
	for _, tag := range []string{"E1", "E2"} {
		testutil.Dial(t, acceptor.Callee.Addr().String()).Write([]byte(tag))
	}
	for _, tag := range []string{"C1", "C2"} {
		testutil.Dial(t, acceptor.Caller.Addr().String()).Write([]byte(tag))
	}

	for index, want := range []struct{ caller, callee string }{{"C1", "E1"}, {"C2", "E2"}} {
		pair, err := acceptor.Accept(Media)
		if err != nil {
			t.Fatalf("Accept: %v", err)
		}
		defer pair.Shutdown()
		if pair.ID != uint64(index+1) {
			t.Errorf("pair ID = %d, want %d", pair.ID, index+1)
		}
		if pair.Class != Media {
			t.Errorf("pair class = %v, want media", pair.Class)
		}
		readTag(t, pair.Caller, want.caller)
		readTag(t, pair.Callee, want.callee)
	}
}

func TestAcceptorWaitsForCallerFirst(t *testing.T) {
	acceptor := &Acceptor{
		Caller: testutil.Listen(t),
		Callee: testutil.Listen(t),
		Logger: quietLogger(),
	}
	results := acceptAsync(acceptor, Control)

	testutil.Dial(t, acceptor.Callee.Addr().String())
	select {
	case result := <-results:
		t.Fatalf("Accept returned with only the callee connected: %+v", result)
	case <-time.After(100 * time.Millisecond): //nolint:realclock bounded negative assertion
	}

	testutil.Dial(t, acceptor.Caller.Addr().String())
	result := testutil.RequireReceive(t, results, 5*time.Second, "waiting for pair")
	if result.err != nil {
		t.Fatalf("Accept: %v", result.err)
	}
	result.pair.Shutdown()
}

func TestAcceptorStallWatchdog(t *testing.T) {
	fakeClock := clock.Fake(epoch)
	authority := process.NewAuthority(quietLogger())
	changes := make(chan int, 64)
	stall, err := watchdog.New(watchdog.Config{
		Name:       "rendezvous",
		Ticks:      3600,
		Clock:      fakeClock,
		Terminator: authority,
		Logger:     quietLogger(),
		OnChange:   func(remaining int) { changes <- remaining },
	})
	if err != nil {
		t.Fatalf("watchdog.New: %v", err)
	}
	defer stall.Stop()

	acceptor := &Acceptor{
		Caller:         testutil.Listen(t),
		Callee:         testutil.Listen(t),
		Stall:          stall,
		FirstLegTicks:  3600,
		SecondLegTicks: 2,
		Logger:         quietLogger(),
	}
	acceptAsync(acceptor, Media)

	if got := testutil.RequireReceive(t, changes, 5*time.Second, "first leg reset"); got != 3600 {
		t.Fatalf("first leg countdown = %d, want 3600", got)
	}

	// The caller shows up; its callee never does.
	testutil.Dial(t, acceptor.Caller.Addr().String())
	if got := testutil.RequireReceive(t, changes, 5*time.Second, "second leg reset"); got != 2 {
		t.Fatalf("second leg countdown = %d, want 2", got)
	}

	for want := 1; want >= 0; want-- {
		fakeClock.Advance(time.Second)
		if got := testutil.RequireReceive(t, changes, 5*time.Second, "tick"); got != want {
			t.Fatalf("remaining = %d, want %d", got, want)
		}
	}
	testutil.RequireClosed(t, authority.Done(), 5*time.Second, "stalled rendezvous should end the session")
	if !strings.Contains(authority.Reason(), "rendezvous") {
		t.Errorf("reason = %q, want the rendezvous watchdog", authority.Reason())
	}
}

func TestAcceptorCalleeFailureClosesCaller(t *testing.T) {
	acceptor := &Acceptor{
		Caller: testutil.Listen(t),
		Callee: testutil.Listen(t),
		Logger: quietLogger(),
	}
	results := acceptAsync(acceptor, Media)

	callerClient := testutil.Dial(t, acceptor.Caller.Addr().String())
	// Give Accept time to move on to the callee listener before
	// closing it; either way the call must fail and release the caller.
	time.Sleep(50 * time.Millisecond) //nolint:realclock OS accept ordering
	acceptor.Callee.Close()

	result := testutil.RequireReceive(t, results, 5*time.Second, "waiting for Accept to fail")
	if result.err == nil {
		t.Fatal("expected error after callee listener closed")
	}
	if !errors.Is(result.err, net.ErrClosed) {
		t.Errorf("error = %v, want net.ErrClosed", result.err)
	}

	callerClient.SetReadDeadline(time.Now().Add(5 * time.Second)) //nolint:realclock socket deadline
	if _, err := callerClient.Read(make([]byte, 1)); err == nil {
		t.Fatal("caller connection still open after failed rendezvous")
	}
}

func TestAcceptorCallerFailure(t *testing.T) {
	caller := testutil.Listen(t)
	acceptor := &Acceptor{
		Caller: caller,
		Callee: testutil.Listen(t),
		Logger: quietLogger(),
	}
	caller.Close()
	if _, err := acceptor.Accept(Control); !errors.Is(err, net.ErrClosed) {
		t.Fatalf("Accept error = %v, want net.ErrClosed", err)
	}
}
