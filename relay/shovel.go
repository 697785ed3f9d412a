// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"

	"github.com/dustin/go-humanize"

	"github.com/bureau-foundation/rezprox/lib/netutil"
	"github.com/bureau-foundation/rezprox/lib/process"
	"github.com/bureau-foundation/rezprox/lib/watchdog"
)

// DefaultBufferSize is the read buffer used when Shovel.BufferSize is
// zero.
const DefaultBufferSize = 32 * 1024

// Policy selects how a shovel reacts to end-of-stream and errors.
type Policy int

const (
	// Lenient shuts down the pair and returns.
	Lenient Policy = iota

	// Strict ends the session.
	Strict
)

func (p Policy) String() string {
	if p == Strict {
		return "strict"
	}
	return "lenient"
}

// Shovel copies bytes one way, from Source to Destination, until
// end-of-stream or an error. It is always run alongside a mirrored
// Shovel covering the other direction of the same Pair.
type Shovel struct {
	Source      net.Conn
	Destination net.Conn
	Policy      Policy

	// Direction labels log records and termination reasons, for
	// example "caller->callee".
	Direction string

	// Watchdog is reset to IdleTicks before every read. Required for
	// Strict, ignored for Lenient.
	Watchdog  *watchdog.Watchdog
	IdleTicks int

	// Terminator ends the session under Strict. Required for Strict.
	Terminator process.Terminator

	// Stats, if set, accumulates relayed bytes.
	Stats *Stats

	// BufferSize is the read buffer size. Defaults to
	// DefaultBufferSize.
	BufferSize int

	// Logger receives the end-of-relay record. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

func (s *Shovel) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Run relays until the source ends or either side fails, and returns
// the number of bytes written to Destination. Under Strict, the session
// has been told to terminate by the time Run returns.
func (s *Shovel) Run() int64 {
	bufferSize := s.BufferSize
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	buffer := make([]byte, bufferSize)

	var copied int64
	for {
		if s.Policy == Strict && s.Watchdog != nil {
			s.Watchdog.Reset(s.IdleTicks)
		}

		count, readError := s.Source.Read(buffer)
		if count > 0 {
			written, writeError := s.Destination.Write(buffer[:count])
			copied += int64(written)
			s.Stats.addBytes(written)
			if writeError != nil {
				s.finish(copied, "write", writeError)
				return copied
			}
		}
		if readError != nil {
			s.finish(copied, "read", readError)
			return copied
		}
	}
}

// finish applies the policy to the error that ended the relay. A read
// returning io.EOF is a clean close; everything else is a failure,
// though under Lenient the usual teardown errors are only logged at
// debug level.
func (s *Shovel) finish(copied int64, operation string, err error) {
	logger := s.logger().With(
		"direction", s.Direction,
		"policy", s.Policy.String(),
		"bytes", humanize.Bytes(uint64(copied)),
	)
	clean := operation == "read" && errors.Is(err, io.EOF)

	if s.Policy == Strict {
		// Terminate before tearing the pair down: the mirrored shovel
		// would otherwise see the shutdown as an error and could record
		// a failure ahead of this clean close.
		if clean {
			logger.Info("control connection closed")
			s.Terminator.Terminate(process.ExitClean, fmt.Sprintf("control connection closed (%s)", s.Direction))
		} else {
			logger.Error("control connection failed", "operation", operation, "error", err)
			s.Terminator.Terminate(process.ExitFatal, fmt.Sprintf("control %s %s failed: %v", s.Direction, operation, err))
		}
		netutil.Shutdown(s.Source, s.Destination)
		return
	}

	// The mirrored shovel shares these connections; shutting both down
	// makes it return instead of waiting on a peer that is gone.
	netutil.Shutdown(s.Source, s.Destination)
	if clean || netutil.IsExpectedCloseError(err) {
		logger.Debug("media relay ended", "operation", operation, "reason", err)
		return
	}
	logger.Warn("media relay failed", "operation", operation, "error", err)
}
