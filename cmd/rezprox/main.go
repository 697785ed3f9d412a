// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/rezprox/lib/config"
	"github.com/bureau-foundation/rezprox/lib/netutil"
	"github.com/bureau-foundation/rezprox/lib/process"
	"github.com/bureau-foundation/rezprox/lib/version"
	"github.com/bureau-foundation/rezprox/relay"
	"github.com/bureau-foundation/rezprox/session"
)

// coordinatorFD is where the launching service passes its connected
// stream. The announcement is the only thing written to it.
const coordinatorFD = 0

const logLevelEnv = "REZPROX_LOG_LEVEL"

var errUsage = errors.New("usage: rezprox -c <dir>")

func main() {
	code, err := run(os.Args[1:])
	if err != nil {
		process.Fatal(err)
	}
	os.Exit(code)
}

// invocation is the parsed command line.
type invocation struct {
	directory   string
	showVersion bool
}

// parseArgs accepts exactly "-c <dir>", or "--version" on its own.
func parseArgs(args []string) (invocation, error) {
	// Handle --version before flag parsing to match the other binaries.
	if len(args) == 1 && args[0] == "--version" {
		return invocation{showVersion: true}, nil
	}
	if len(args) != 2 || args[0] != "-c" {
		return invocation{}, errUsage
	}

	var parsed invocation
	flagSet := pflag.NewFlagSet("rezprox", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVarP(&parsed.directory, "directory", "c", "", "working directory holding cfg/")
	if err := flagSet.Parse(args); err != nil {
		return invocation{}, fmt.Errorf("%w: %v", errUsage, err)
	}
	if flagSet.NArg() != 0 || parsed.directory == "" {
		return invocation{}, errUsage
	}
	return parsed, nil
}

// newLogger builds the process logger. An empty level means info.
func newLogger(output io.Writer, level string) (*slog.Logger, error) {
	var parsed slog.Level
	if level != "" {
		if err := parsed.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("%s: %w", logLevelEnv, err)
		}
	}
	handler := slog.NewTextHandler(output, &slog.HandlerOptions{Level: parsed})
	return slog.New(handler).With("session", uuid.NewString()), nil
}

func run(args []string) (int, error) {
	parsed, err := parseArgs(args)
	if err != nil {
		return 0, err
	}
	if parsed.showVersion {
		version.Print(os.Stdout, "rezprox")
		return process.ExitClean, nil
	}

	if err := os.Chdir(parsed.directory); err != nil {
		return 0, fmt.Errorf("changing to %s: %w", parsed.directory, err)
	}

	logger, err := newLogger(os.Stderr, os.Getenv(logLevelEnv))
	if err != nil {
		return 0, err
	}
	slog.SetDefault(logger)

	configuration, err := config.Load(".")
	if err != nil {
		return 0, err
	}

	coordinator, err := netutil.AdoptConn(coordinatorFD, "coordinator")
	if err != nil {
		return 0, err
	}
	defer coordinator.Close()

	logger.Info("rezprox starting",
		"version", version.Info(),
		"directory", parsed.directory,
		"bind_address", configuration.BindAddress,
		"tick", configuration.Tick.String(),
	)

	authority := process.NewAuthority(logger)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats := &relay.Stats{}
	supervisor := &session.Supervisor{
		Config:     configuration,
		Announce:   coordinator,
		Terminator: authority,
		Stats:      stats,
		Logger:     logger,
	}
	go func() {
		err := supervisor.Run(ctx)
		switch {
		case ctx.Err() != nil:
			authority.Terminate(process.ExitFatal, "interrupted by signal")
		case err != nil:
			authority.Terminate(process.ExitFatal, err.Error())
		}
	}()

	<-authority.Done()
	logger.Info("rezprox exiting",
		"code", authority.Code(),
		"reason", authority.Reason(),
		"state", string(supervisor.State()),
		"total_pairs", stats.TotalPairs(),
	)
	return authority.Code(), nil
}
