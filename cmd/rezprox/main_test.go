// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    invocation
		wantErr bool
	}{
		{name: "directory", args: []string{"-c", "/var/lib/rezprox/42"}, want: invocation{directory: "/var/lib/rezprox/42"}},
		{name: "version", args: []string{"--version"}, want: invocation{showVersion: true}},
		{name: "no arguments", args: nil, wantErr: true},
		{name: "missing directory", args: []string{"-c"}, wantErr: true},
		{name: "wrong flag", args: []string{"-d", "/tmp"}, wantErr: true},
		{name: "long flag", args: []string{"--directory", "/tmp"}, wantErr: true},
		{name: "extra argument", args: []string{"-c", "/tmp", "extra"}, wantErr: true},
		{name: "empty directory", args: []string{"-c", ""}, wantErr: true},
		{name: "version with others", args: []string{"--version", "-c"}, wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := parseArgs(test.args)
			if test.wantErr {
				if !errors.Is(err, errUsage) {
					t.Fatalf("parseArgs(%q) error = %v, want usage error", test.args, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseArgs(%q): %v", test.args, err)
			}
			if got != test.want {
				t.Errorf("parseArgs(%q) = %+v, want %+v", test.args, got, test.want)
			}
		})
	}
}

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		level     string
		debugSeen bool
		infoSeen  bool
	}{
		{level: "", debugSeen: false, infoSeen: true},
		{level: "debug", debugSeen: true, infoSeen: true},
		{level: "INFO", debugSeen: false, infoSeen: true},
		{level: "warn", debugSeen: false, infoSeen: false},
	}
	for _, test := range tests {
		t.Run("level="+test.level, func(t *testing.T) {
			var output bytes.Buffer
			logger, err := newLogger(&output, test.level)
			if err != nil {
				t.Fatalf("newLogger: %v", err)
			}
			logger.Debug("debug record")
			logger.Info("info record")
			text := output.String()
			if got := strings.Contains(text, "debug record"); got != test.debugSeen {
				t.Errorf("debug record logged = %v, want %v", got, test.debugSeen)
			}
			if got := strings.Contains(text, "info record"); got != test.infoSeen {
				t.Errorf("info record logged = %v, want %v", got, test.infoSeen)
			}
			if test.infoSeen && !strings.Contains(text, "session=") {
				t.Errorf("records carry no session ID: %q", text)
			}
		})
	}
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	var output bytes.Buffer
	if _, err := newLogger(&output, "chatty"); err == nil || !strings.Contains(err.Error(), logLevelEnv) {
		t.Fatalf("newLogger error = %v, want an error naming %s", err, logLevelEnv)
	}
}
