// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// File locations relative to the working directory.
const (
	HostIPPath = "cfg/HostIP"
	TuningPath = "cfg/rezprox.yaml"
)

// DefaultBindAddress is used when cfg/HostIP does not provide one.
const DefaultBindAddress = "127.0.0.1"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete rezprox configuration.
type Config struct {
	// BindAddress is the host or IP both listeners bind on, with an
	// OS-assigned port each.
	BindAddress string `yaml:"bind_address"`

	// Tick is the watchdog countdown granularity. Every threshold in
	// Timeouts is a number of ticks.
	Tick Duration `yaml:"tick"`

	Timeouts Timeouts `yaml:"timeouts"`
}

// Timeouts holds the watchdog thresholds, in ticks.
type Timeouts struct {
	// Bootstrap bounds binding the listeners and writing the
	// announcement.
	Bootstrap int `yaml:"bootstrap"`

	// StartupGrace bounds the wait for the control pair.
	StartupGrace int `yaml:"startup_grace"`

	// Lifetime is the hard cap installed once the control pair is up.
	// Nothing extends it.
	Lifetime int `yaml:"lifetime"`

	// ControlIdle is how long either direction of the control tunnel
	// may go without reading anything.
	ControlIdle int `yaml:"control_idle"`

	// FirstLeg bounds the wait for the caller side of a media pair.
	FirstLeg int `yaml:"first_leg"`

	// SecondLeg bounds the wait for the callee side once the caller
	// side has connected.
	SecondLeg int `yaml:"second_leg"`
}

// Duration is a time.Duration that unmarshals from a Go duration string
// such as "1s" or "250ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var text string
	if err := node.Decode(&text); err != nil {
		return fmt.Errorf("line %d: duration must be a string like \"1s\": %w", node.Line, err)
	}
	parsed, err := time.ParseDuration(text)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// String formats d the way time.Duration does.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Default returns the configuration used when no files are present.
func Default() Config {
	return Config{
		BindAddress: DefaultBindAddress,
		Tick:        Duration(time.Second),
		Timeouts: Timeouts{
			Bootstrap:    4,
			StartupGrace: 30,
			Lifetime:     3600,
			ControlIdle:  180,
			FirstLeg:     3600,
			SecondLeg:    10,
		},
	}
}

// Load reads the configuration rooted at directory. Fields absent from
// the tuning file keep their defaults; cfg/HostIP, when present and
// non-blank, takes precedence over bind_address in the tuning file.
func Load(directory string) (Config, error) {
	config := Default()

	data, err := os.ReadFile(filepath.Join(directory, TuningPath))
	switch {
	case err == nil:
		if err := decodeTuning(data, &config); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", TuningPath, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("reading %s: %w", TuningPath, err)
	}

	if address, ok := readHostIP(filepath.Join(directory, HostIPPath)); ok {
		config.BindAddress = address
	}
	if config.BindAddress == "" {
		config.BindAddress = DefaultBindAddress
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// decodeTuning decodes YAML over config, rejecting unknown keys. An
// empty document is not an error.
func decodeTuning(data []byte, config *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// readHostIP returns the first line of path with surrounding whitespace
// removed. Any read failure, or a blank line, reports false.
func readHostIP(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	line, _, _ := strings.Cut(string(data), "\n")
	line = strings.TrimSpace(line)
	return line, line != ""
}

// Validate checks that every threshold is usable.
func (c Config) Validate() error {
	if time.Duration(c.Tick) <= 0 {
		return fmt.Errorf("%w: tick must be positive, got %v", ErrInvalid, time.Duration(c.Tick))
	}
	if strings.ContainsAny(c.BindAddress, " \t") {
		return fmt.Errorf("%w: bind address %q contains whitespace", ErrInvalid, c.BindAddress)
	}
	thresholds := []struct {
		name  string
		ticks int
	}{
		{"bootstrap", c.Timeouts.Bootstrap},
		{"startup_grace", c.Timeouts.StartupGrace},
		{"lifetime", c.Timeouts.Lifetime},
		{"control_idle", c.Timeouts.ControlIdle},
		{"first_leg", c.Timeouts.FirstLeg},
		{"second_leg", c.Timeouts.SecondLeg},
	}
	for _, threshold := range thresholds {
		if threshold.ticks <= 0 {
			return fmt.Errorf("%w: timeouts.%s must be positive, got %d", ErrInvalid, threshold.name, threshold.ticks)
		}
	}
	return nil
}

// ListenAddress returns the address to pass to net.Listen: the bind
// address with an OS-assigned port.
func (c Config) ListenAddress() string {
	return net.JoinHostPort(c.BindAddress, "0")
}
