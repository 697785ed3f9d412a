// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package xfer

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestEncodeString(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "empty", value: "", want: "00"},
		{name: "single digit length", value: "abc", want: "03abc"},
		{name: "address", value: "127.0.0.1:51000", want: "15127.0.0.1:51000"},
		{name: "maximum length", value: strings.Repeat("x", 99), want: "99" + strings.Repeat("x", 99)},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := EncodeString(test.value)
			if err != nil {
				t.Fatalf("EncodeString: %v", err)
			}
			if got != test.want {
				t.Errorf("EncodeString(%q) = %q, want %q", test.value, got, test.want)
			}
		})
	}
}

func TestEncodeStringAllLengths(t *testing.T) {
	for length := 0; length <= MaxFieldLength; length++ {
		value := strings.Repeat("a", length)
		got, err := EncodeString(value)
		if err != nil {
			t.Fatalf("EncodeString(len %d): %v", length, err)
		}
		want := fmt.Sprintf("%02d", length) + value
		if got != want {
			t.Fatalf("EncodeString(len %d) = %q, want %q", length, got, want)
		}
	}
}

func TestEncodeStringTooLong(t *testing.T) {
	_, err := EncodeString(strings.Repeat("x", 100))
	if !errors.Is(err, ErrFieldTooLong) {
		t.Fatalf("EncodeString(100 bytes) error = %v, want ErrFieldTooLong", err)
	}
}

func TestEncodeLength(t *testing.T) {
	tests := []struct {
		length int
		want   string
	}{
		{length: 0, want: "010"},
		{length: 9, want: "019"},
		{length: 15, want: "0215"},
		{length: 21, want: "0221"},
		{length: 100, want: "03100"},
	}

	for _, test := range tests {
		got, err := EncodeLength(test.length)
		if err != nil {
			t.Fatalf("EncodeLength(%d): %v", test.length, err)
		}
		if got != test.want {
			t.Errorf("EncodeLength(%d) = %q, want %q", test.length, got, test.want)
		}
	}
}

func TestEncodeLengthNegative(t *testing.T) {
	if _, err := EncodeLength(-1); err == nil {
		t.Fatal("expected error for negative length")
	}
}

func TestAnnouncement(t *testing.T) {
	caller := "127.0.0.1:51000"
	callee := "127.0.0.1:51001"

	got, err := Announcement(caller, callee)
	if err != nil {
		t.Fatalf("Announcement: %v", err)
	}

	want := "0901202" + "0215" + caller + "02" + "0215" + callee
	if got != want {
		t.Fatalf("Announcement = %q, want %q", got, want)
	}
	if !strings.HasPrefix(got, "0901202") {
		t.Errorf("announcement does not start with the vector header: %q", got)
	}
}

func TestAnnouncementMixedLengths(t *testing.T) {
	got, err := Announcement("10.0.0.1:80", "[::1]:40000")
	if err != nil {
		t.Fatalf("Announcement: %v", err)
	}
	want := "0901202" + "0211" + "10.0.0.1:80" + "02" + "0211" + "[::1]:40000"
	if got != want {
		t.Fatalf("Announcement = %q, want %q", got, want)
	}
}

func TestAnnouncementRejectsOversizedAddress(t *testing.T) {
	long := strings.Repeat("h", 120) + ":1"
	if _, err := Announcement(long, "127.0.0.1:1"); !errors.Is(err, ErrFieldTooLong) {
		t.Fatalf("caller: error = %v, want ErrFieldTooLong", err)
	}
	if _, err := Announcement("127.0.0.1:1", long); !errors.Is(err, ErrFieldTooLong) {
		t.Fatalf("callee: error = %v, want ErrFieldTooLong", err)
	}
}
